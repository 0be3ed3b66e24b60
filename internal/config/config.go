package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// ServerConfig controls HTTP bind address and routing.
type ServerConfig struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Subpath string `json:"subpath"` // "" or a path starting with '/', e.g. "/vocabbie"
}

// CorpusConfig selects the backing store for the read-only words table.
type CorpusConfig struct {
	Driver      string `json:"driver"`       // "sqlite" (default) or "postgres"
	DSN         string `json:"dsn"`          // file path for sqlite, connection string for postgres
	CacheSize   int    `json:"cache_size"`   // LRU entries, 0 = default
	MaxOpenConn int    `json:"max_open_conn"` // pooled connection bound, 0 = default
}

// SessionConfig controls the in-memory session store and its sweeper.
type SessionConfig struct {
	IdleTimeoutSeconds int `json:"idle_timeout_seconds"` // 0 = default (3000s)
	SweepIntervalSeconds int `json:"sweep_interval_seconds"` // 0 = default (60s)
}

// TyvConfig points at the optional ONNX model backing the recall-tyv modality.
type TyvConfig struct {
	Enabled   bool   `json:"enabled"`
	ModelPath string `json:"model_path"`
}

type Config struct {
	Server  ServerConfig  `json:"server"`
	Corpus  CorpusConfig  `json:"corpus"`
	Session SessionConfig `json:"session"`
	Tyv     TyvConfig     `json:"tyv"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads the JSON config file from disk (singleton, like the
// rest of this codebase's bootstrap order).
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		applyDefaults(&c)
		cfg = &c
	})
	return cfg, cfgErr
}

// ResetConfigForTest resets the singleton state (for testing only).
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}

func applyDefaults(c *Config) {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Corpus.Driver == "" {
		c.Corpus.Driver = "sqlite"
	}
	if c.Corpus.DSN == "" {
		c.Corpus.DSN = "corpus.sqlite3"
	}
	if c.Corpus.CacheSize == 0 {
		c.Corpus.CacheSize = 70000 // slightly above the ~68178-row corpus
	}
	if c.Corpus.MaxOpenConn == 0 {
		c.Corpus.MaxOpenConn = 8
	}
	if c.Session.IdleTimeoutSeconds == 0 {
		c.Session.IdleTimeoutSeconds = 3000
	}
	if c.Session.SweepIntervalSeconds == 0 {
		c.Session.SweepIntervalSeconds = 60
	}
}
