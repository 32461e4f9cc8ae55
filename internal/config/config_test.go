package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Caller.Backend != BackendGemini || cfg.Caller.MinInterval != 3*time.Second {
		t.Errorf("unexpected caller defaults %+v", cfg.Caller)
	}
	if cfg.Session.InitialScore != 1000 || cfg.Session.InitialBalance != 10000 || cfg.Session.MaxTurns != 5 {
		t.Errorf("unexpected session defaults %+v", cfg.Session)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trainer.yaml")
	yml := `
caller:
  backend: grpc
  grpc_addr: sidecar:9000
  min_interval: 1500ms
  max_attempts: 4
session:
  max_turns: 7
  breach_alert_delay: 1s
voice:
  player: [mpv, --no-video, "-"]
db_path: calls.db
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CALLER_GRPC_ADDR", "override:9001")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Caller.Backend != BackendGRPC || cfg.Caller.GRPCAddr != "override:9001" {
		t.Errorf("env should win over file: %+v", cfg.Caller)
	}
	if cfg.Caller.MinInterval != 1500*time.Millisecond || cfg.Caller.MaxAttempts != 4 {
		t.Errorf("file values not applied: %+v", cfg.Caller)
	}
	if cfg.Session.MaxTurns != 7 || cfg.Session.BreachAlertDelay != time.Second || cfg.Session.InitialScore != 1000 {
		t.Errorf("session merge wrong: %+v", cfg.Session)
	}
	if diff := cmp.Diff([]string{"mpv", "--no-video", "-"}, cfg.Voice.Player); diff != "" {
		t.Errorf("player mismatch (-want +got):\n%s", diff)
	}
	if cfg.DBPath != "calls.db" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected db/log %q %q", cfg.DBPath, cfg.LogLevel)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":         "k",
		"GEMINI_MODEL":           "turn-m",
		"GEMINI_PERSONA_MODEL":   "persona-m",
		"CALLER_BACKEND":         "FIXTURE",
		"CALLER_FIXTURE":         "call.yaml",
		"CALLER_MIN_INTERVAL_MS": "250",
		"ELEVENLABS_API_KEY":     "v",
		"VISHING_DB":             "x.db",
		"LOG_FORMAT":             "json",
		"HTTP_ADDR":              ":9999",
	}
	cfg := DefaultConfig()
	cfg.applyEnv(func(k string) string { return env[k] })

	if cfg.Caller.APIKey != "k" || cfg.Caller.TurnModel != "turn-m" || cfg.Caller.PersonaModel != "persona-m" {
		t.Errorf("gemini overrides missing: %+v", cfg.Caller)
	}
	if cfg.Caller.Backend != BackendFixture || cfg.Caller.FixturePath != "call.yaml" {
		t.Errorf("backend overrides missing: %+v", cfg.Caller)
	}
	if cfg.Caller.MinInterval != 250*time.Millisecond {
		t.Errorf("interval override missing: %v", cfg.Caller.MinInterval)
	}
	if cfg.Voice.APIKey != "v" || cfg.DBPath != "x.db" || cfg.LogFormat != "json" || cfg.HTTPAddr != ":9999" {
		t.Errorf("misc overrides missing: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"backend":  func(c *Config) { c.Caller.Backend = "carrier-pigeon" },
		"grpc":     func(c *Config) { c.Caller.Backend = BackendGRPC; c.Caller.GRPCAddr = "" },
		"attempts": func(c *Config) { c.Caller.MaxAttempts = 0 },
		"turns":    func(c *Config) { c.Session.MaxTurns = 0 },
		"balance":  func(c *Config) { c.Session.InitialBalance = -1 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestProjections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Caller.MaxAttempts = 5
	cfg.Session.MaxTurns = 3
	if got := cfg.CallerSettings(); got.MaxAttempts != 5 || got.TurnMaxTokens != 1024 {
		t.Errorf("caller projection wrong: %+v", got)
	}
	if got := cfg.SessionSettings(); got.MaxTurns != 3 || got.InitialBalance != 10000 {
		t.Errorf("session projection wrong: %+v", got)
	}
}
