package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"cthulhu/internal/cache"
)

var (
	ErrUserExists         = errors.New("帳號已存在")
	ErrInvalidCredentials = errors.New("帳號或密碼錯誤")
	ErrInvalidSession     = errors.New("會話無效或已過期")
)

const defaultSessionTTL = 30 * 24 * time.Hour

// Store 保存帳號、登入會話與已結束對局的戰績
type Store struct {
	db    *sql.DB
	stats cache.Cache

	// statsGen 每次寫入對局就遞增；查詢期間有寫入時不回填快取
	statsMu  sync.Mutex
	statsGen uint64
}

type User struct {
	ID       int64
	Username string
	Created  time.Time
}

// New 開啟 sqlite 資料庫並建立資料表；stats 可為 nil，表示不快取戰績
func New(dbPath string, stats cache.Cache) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db 路徑不可為空")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("建立資料目錄失敗: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("開啟資料庫失敗: %w", err)
	}

	store := &Store{db: db, stats: stats}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE COLLATE NOCASE,
  password_hash TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  created_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expiry ON sessions(expires_at);
CREATE TABLE IF NOT EXISTS matches (
  id TEXT PRIMARY KEY,
  room_code TEXT NOT NULL,
  winner TEXT NOT NULL,
  rounds INTEGER NOT NULL,
  elder_signs_found INTEGER NOT NULL,
  elder_signs_total INTEGER NOT NULL,
  finished_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS match_players (
  match_id TEXT NOT NULL,
  seat INTEGER NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL,
  is_bot INTEGER NOT NULL,
  user_id INTEGER,
  won INTEGER NOT NULL,
  PRIMARY KEY(match_id, seat),
  FOREIGN KEY(match_id) REFERENCES matches(id) ON DELETE CASCADE,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_match_players_user ON match_players(user_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("初始化資料表失敗: %w", err)
	}
	return nil
}

func (s *Store) CreateUser(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("帳號不可為空")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("密碼長度至少 6 碼")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("加密密碼失敗: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO users(username, password_hash) VALUES(?, ?)`, username, string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("建立使用者失敗: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("取得使用者 ID 失敗: %w", err)
	}

	return &User{ID: id, Username: username, Created: time.Now()}, nil
}

func (s *Store) Authenticate(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("帳號不可為空")
	}

	row := s.db.QueryRow(`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
	var (
		id      int64
		name    string
		hash    string
		created time.Time
	)
	if err := row.Scan(&id, &name, &hash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("查詢使用者失敗: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &User{ID: id, Username: name, Created: created}, nil
}

// CreateSession 建立登入會話，ttl 小於等於 0 時使用 30 天
func (s *Store) CreateSession(userID int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	token, err := randomToken(32)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	exp := now.Add(ttl)
	if _, err := s.db.Exec(`INSERT INTO sessions(token, user_id, created_at, expires_at) VALUES(?, ?, ?, ?)`, token, userID, now, exp); err != nil {
		return "", fmt.Errorf("建立會話失敗: %w", err)
	}

	return token, nil
}

func (s *Store) GetUserBySession(token string) (*User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidSession
	}

	row := s.db.QueryRow(`SELECT u.id, u.username, u.created_at FROM sessions s JOIN users u ON u.id = s.user_id WHERE s.token = ? AND s.expires_at > ?`, token, time.Now().UTC())
	var (
		id       int64
		username string
		created  time.Time
	)
	if err := row.Scan(&id, &username, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("查詢會話失敗: %w", err)
	}

	return &User{ID: id, Username: username, Created: created}, nil
}

// CleanupExpiredSessions 刪除過期會話，回傳刪除筆數
func (s *Store) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("清理過期會話失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("取得清理筆數失敗: %w", err)
	}
	return n, nil
}

func randomToken(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成亂數 token 失敗: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
