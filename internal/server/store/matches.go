package store

import (
	"context"
	"database/sql"
	"fmt"

	"cthulhu/internal/game"
)

// Stats 是單一帳號的累計戰績
type Stats struct {
	GamesPlayed       int `json:"gamesPlayed"`
	GamesWon          int `json:"gamesWon"`
	InvestigatorGames int `json:"investigatorGames"`
	CultistGames      int `json:"cultistGames"`
}

// RecordMatch 寫入一局的結果與每位玩家的身份；同一局重複寫入會被忽略
func (s *Store) RecordMatch(ctx context.Context, res game.MatchResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("開始交易失敗: %w", err)
	}
	defer tx.Rollback() // nolint

	inserted, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO matches(id, room_code, winner, rounds, elder_signs_found, elder_signs_total, finished_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.RoomCode, res.Winner.String(), res.Rounds, res.ElderSignsFound, res.ElderSignsTotal, res.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("寫入對局失敗: %w", err)
	}
	if n, err := inserted.RowsAffected(); err != nil {
		return fmt.Errorf("取得寫入筆數失敗: %w", err)
	} else if n == 0 {
		return nil
	}

	for seat, p := range res.Players {
		var userID sql.NullInt64
		if p.AccountID > 0 {
			userID = sql.NullInt64{Int64: p.AccountID, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_players(match_id, seat, name, role, is_bot, user_id, won) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			res.ID, seat, p.Name, p.Role.String(), p.IsBot, userID, p.Won,
		); err != nil {
			return fmt.Errorf("寫入對局玩家失敗: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交交易失敗: %w", err)
	}

	s.invalidateStats(res.Players)
	return nil
}

func (s *Store) invalidateStats(players []game.MatchPlayer) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.statsGen++
	if s.stats == nil {
		return
	}
	for _, p := range players {
		if p.AccountID > 0 {
			s.stats.Delete(p.AccountID)
		}
	}
}

func (s *Store) statsGeneration() uint64 {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.statsGen
}

// cacheStats 只在查詢開始後沒有新對局寫入時回填快取
func (s *Store) cacheStats(userID int64, st Stats, gen uint64) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if s.stats == nil || s.statsGen != gen {
		return
	}
	s.stats.Add(userID, st)
}

// Stats 回傳帳號的累計戰績，結果會被快取到下一次寫入為止
func (s *Store) Stats(ctx context.Context, userID int64) (Stats, error) {
	if s.stats != nil {
		if v, ok := s.stats.Get(userID); ok {
			return v.(Stats), nil
		}
	}

	gen := s.statsGeneration()
	st, err := s.queryStats(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	s.cacheStats(userID, st, gen)
	return st, nil
}

func (s *Store) queryStats(ctx context.Context, userID int64) (Stats, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT
  COUNT(*),
  COALESCE(SUM(won), 0),
  COALESCE(SUM(CASE WHEN role = 'investigator' THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN role = 'cultist' THEN 1 ELSE 0 END), 0)
FROM match_players WHERE user_id = ?`, userID)

	var st Stats
	if err := row.Scan(&st.GamesPlayed, &st.GamesWon, &st.InvestigatorGames, &st.CultistGames); err != nil {
		return Stats{}, fmt.Errorf("查詢戰績失敗: %w", err)
	}
	return st, nil
}
