// Package config 從環境變數讀取伺服器設定
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const Prefix = "CTHULHU"

// Config 對應 CTHULHU_ 開頭的環境變數
type Config struct {
	Addr    string `envconfig:"ADDR" default:":3000"`
	WebDir  string `envconfig:"WEB_DIR" default:"web"`
	DataDir string `envconfig:"DATA_DIR" default:"data"`
	Debug   bool   `envconfig:"DEBUG" default:"false"`

	CacheSize  int           `envconfig:"CACHE_SIZE" default:"1024"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	BotDeclareDelay     time.Duration `envconfig:"BOT_DECLARE_DELAY" default:"500ms"`
	BotDeclareStagger   time.Duration `envconfig:"BOT_DECLARE_STAGGER" default:"300ms"`
	BotInvestigateDelay time.Duration `envconfig:"BOT_INVESTIGATE_DELAY" default:"800ms"`

	MessageRate  float64 `envconfig:"MESSAGE_RATE" default:"10"`
	MessageBurst int     `envconfig:"MESSAGE_BURST" default:"20"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load 讀取並檢查設定
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("processing the config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}
	if c.MessageRate <= 0 || c.MessageBurst <= 0 {
		return fmt.Errorf("message rate and burst must be positive")
	}
	if c.BotDeclareDelay < 0 || c.BotDeclareStagger < 0 || c.BotInvestigateDelay < 0 {
		return fmt.Errorf("bot delays cannot be negative")
	}
	return nil
}

// SQLitePath 回傳帳號與戰績資料庫的路徑
func (c Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "cthulhu.db")
}

// ArchivePath 回傳對局紀錄封存檔的路徑
func (c Config) ArchivePath() string {
	return filepath.Join(c.DataDir, "matches.bolt")
}
