// Package archive 以 bbolt 保存已結束對局的完整紀錄
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"cthulhu/internal/game"
	"cthulhu/internal/logging"
)

var matchesBucket = []byte("matches")

var ErrNotFound = errors.New("match not found")

type Archive struct {
	db *bolt.DB
}

func Open(ctx context.Context, path string) (*Archive, error) {
	logger := logging.FromContext(ctx)
	logger.Infow("opening match archive", "path", path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(matchesBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close(ctx context.Context) error {
	logging.FromContext(ctx).Infof("closing match archive")
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// RecordMatch 以對局編號為鍵寫入結果，已存在時覆寫
func (a *Archive) RecordMatch(ctx context.Context, res game.MatchResult) error {
	if res.ID == "" {
		return fmt.Errorf("match result without id")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := a.db.Begin(true)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() // nolint

	bytes, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := tx.Bucket(matchesBucket).Put([]byte(res.ID), bytes); err != nil {
		return fmt.Errorf("put to bucket: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (a *Archive) Get(id string) (game.MatchResult, error) {
	var res game.MatchResult
	err := a.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(matchesBucket).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &res); err != nil {
			return fmt.Errorf("json unmarshal: %w", err)
		}
		return nil
	})
	if err != nil {
		return game.MatchResult{}, err
	}
	return res, nil
}
