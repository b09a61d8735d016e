// Package config loads the sketchtrail configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/pkg/adapters/redis"
	"github.com/aretw0/sketchtrail/pkg/domain"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "sketchtrail.yaml"

// Store backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the root of the configuration file.
type Config struct {
	Store   StoreConfig   `yaml:"store" json:"store"`
	Session SessionConfig `yaml:"session" json:"session"`
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	Render  RenderConfig  `yaml:"render" json:"render"`
}

// StoreConfig selects where session graphs are persisted.
type StoreConfig struct {
	Backend string      `yaml:"backend" json:"backend"`
	Path    string      `yaml:"path" json:"path"`
	Redis   RedisConfig `yaml:"redis" json:"redis"`
	// EncryptionKey is a base64 AES-256 key. Empty disables encryption at rest.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// SessionConfig holds defaults for new sessions.
type SessionConfig struct {
	MoveInterval time.Duration       `yaml:"move_interval" json:"move_interval"`
	Toolbar      sketchtrail.Toolbar `yaml:"toolbar" json:"toolbar"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr    string `yaml:"addr" json:"addr"`
	Metrics bool   `yaml:"metrics" json:"metrics"`
}

// RenderConfig sizes PNG snapshots.
type RenderConfig struct {
	Width      int    `yaml:"width" json:"width"`
	Height     int    `yaml:"height" json:"height"`
	Background string `yaml:"background" json:"background"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    ".sketchtrail/sessions",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: redis.DefaultPrefix,
			},
		},
		Session: SessionConfig{
			MoveInterval: sketchtrail.DefaultMoveInterval,
			Toolbar:      sketchtrail.DefaultToolbar,
		},
		HTTP: HTTPConfig{
			Addr:    ":8080",
			Metrics: true,
		},
		Render: RenderConfig{
			Width:      800,
			Height:     600,
			Background: "#ffffff",
		},
	}
}

// Load reads a YAML or JSON configuration file over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Session.MoveInterval < 0 {
		return fmt.Errorf("move_interval cannot be negative")
	}
	switch c.Session.Toolbar.Tool {
	case domain.ToolPen, domain.ToolHighlighter, domain.ToolEraser:
	default:
		return fmt.Errorf("unknown toolbar tool %q", c.Session.Toolbar.Tool)
	}
	if c.Session.Toolbar.Width <= 0 {
		return fmt.Errorf("toolbar width must be positive")
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	return nil
}

// SessionOptions converts the session section into Session options.
func (c Config) SessionOptions() []sketchtrail.Option {
	return []sketchtrail.Option{
		sketchtrail.WithMoveInterval(c.Session.MoveInterval),
		sketchtrail.WithToolbar(c.Session.Toolbar),
	}
}
