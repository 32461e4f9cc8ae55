// Package config loads trainer settings from an optional YAML file and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/caller"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/orchestrator"
)

// #region types

// Backend names a conversational transport.
type Backend string

const (
	BackendGemini  Backend = "gemini"
	BackendGRPC    Backend = "grpc"
	BackendFixture Backend = "fixture"
)

// Config is the full trainer configuration.
type Config struct {
	Caller  CallerConfig  `yaml:"caller"`
	Voice   VoiceConfig   `yaml:"voice"`
	Session SessionConfig `yaml:"session"`

	DBPath    string `yaml:"db_path"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	HTTPAddr  string `yaml:"http_addr"`
}

// CallerConfig selects and tunes the conversational backend.
type CallerConfig struct {
	Backend      Backend       `yaml:"backend"`
	APIKey       string        `yaml:"api_key"`
	TurnModel    string        `yaml:"turn_model"`
	PersonaModel string        `yaml:"persona_model"`
	GRPCAddr     string        `yaml:"grpc_addr"`
	FixturePath  string        `yaml:"fixture"`
	MinInterval  time.Duration `yaml:"min_interval"`
	MaxAttempts  int           `yaml:"max_attempts"`
	BackoffBase  time.Duration `yaml:"backoff_base"`
}

// VoiceConfig configures speech output.
type VoiceConfig struct {
	APIKey string   `yaml:"api_key"`
	Player []string `yaml:"player"` // command reading audio on stdin, e.g. [mpv, --no-video, -]
}

// SessionConfig holds the per-call constants.
type SessionConfig struct {
	InitialScore     int           `yaml:"initial_score"`
	InitialBalance   float64       `yaml:"initial_balance"`
	MaxTurns         int           `yaml:"max_turns"`
	BreachAlertDelay time.Duration `yaml:"breach_alert_delay"`
	ListenDebounce   time.Duration `yaml:"listen_debounce"`
	PulseDuration    time.Duration `yaml:"pulse_duration"`
}

// #endregion types

// #region defaults

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	cc := caller.DefaultConfig()
	oc := orchestrator.DefaultConfig()
	return Config{
		Caller: CallerConfig{
			Backend:      BackendGemini,
			TurnModel:    cc.TurnModel,
			PersonaModel: cc.PersonaModel,
			GRPCAddr:     "localhost:50061",
			MinInterval:  3 * time.Second,
			MaxAttempts:  cc.MaxAttempts,
			BackoffBase:  cc.BackoffBase,
		},
		Session: SessionConfig{
			InitialScore:     oc.InitialScore,
			InitialBalance:   oc.InitialBalance,
			MaxTurns:         oc.MaxTurns,
			BreachAlertDelay: oc.BreachAlertDelay,
			ListenDebounce:   oc.ListenDebounce,
			PulseDuration:    oc.PulseDuration,
		},
		LogLevel:  "info",
		LogFormat: "text",
		HTTPAddr:  ":8080",
	}
}

// #endregion defaults

// #region load

// Load reads path over the defaults (an empty path skips the file), then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from GEMINI_API_KEY, GEMINI_MODEL,
// GEMINI_PERSONA_MODEL, CALLER_BACKEND, CALLER_GRPC_ADDR, CALLER_FIXTURE,
// CALLER_MIN_INTERVAL_MS, ELEVENLABS_API_KEY, VISHING_DB, LOG_LEVEL,
// LOG_FORMAT and HTTP_ADDR.
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set("GEMINI_API_KEY", &c.Caller.APIKey)
	set("GEMINI_MODEL", &c.Caller.TurnModel)
	set("GEMINI_PERSONA_MODEL", &c.Caller.PersonaModel)
	set("CALLER_GRPC_ADDR", &c.Caller.GRPCAddr)
	set("CALLER_FIXTURE", &c.Caller.FixturePath)
	set("ELEVENLABS_API_KEY", &c.Voice.APIKey)
	set("VISHING_DB", &c.DBPath)
	set("LOG_LEVEL", &c.LogLevel)
	set("LOG_FORMAT", &c.LogFormat)
	set("HTTP_ADDR", &c.HTTPAddr)

	if v := getenv("CALLER_BACKEND"); v != "" {
		c.Caller.Backend = Backend(strings.ToLower(v))
	}
	if v := getenv("CALLER_MIN_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			c.Caller.MinInterval = time.Duration(ms) * time.Millisecond
		}
	}
}

// Validate rejects settings the trainer cannot run with.
func (c Config) Validate() error {
	switch c.Caller.Backend {
	case BackendGemini, BackendGRPC, BackendFixture:
	default:
		return fmt.Errorf("unknown caller backend %q", c.Caller.Backend)
	}
	if c.Caller.Backend == BackendGRPC && c.Caller.GRPCAddr == "" {
		return fmt.Errorf("grpc backend needs an address")
	}
	if c.Caller.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.Caller.MaxAttempts)
	}
	if c.Session.MaxTurns < 1 {
		return fmt.Errorf("max_turns must be at least 1, got %d", c.Session.MaxTurns)
	}
	if c.Session.InitialScore < 0 || c.Session.InitialBalance < 0 {
		return fmt.Errorf("initial score and balance must not be negative")
	}
	return nil
}

// #endregion load

// #region projections

// CallerSettings projects the caller client settings.
func (c Config) CallerSettings() caller.Config {
	cc := caller.DefaultConfig()
	cc.TurnModel = c.Caller.TurnModel
	cc.PersonaModel = c.Caller.PersonaModel
	cc.MaxAttempts = c.Caller.MaxAttempts
	cc.BackoffBase = c.Caller.BackoffBase
	return cc
}

// SessionSettings projects the controller settings.
func (c Config) SessionSettings() orchestrator.Config {
	s := c.Session
	return orchestrator.Config{
		InitialScore:     s.InitialScore,
		InitialBalance:   s.InitialBalance,
		MaxTurns:         s.MaxTurns,
		BreachAlertDelay: s.BreachAlertDelay,
		ListenDebounce:   s.ListenDebounce,
		PulseDuration:    s.PulseDuration,
	}
}

// #endregion projections
