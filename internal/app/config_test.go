package app_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raysh454/ethicheck/internal/app"
	"github.com/raysh454/ethicheck/internal/webclient"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Monitor.PollInterval != time.Second || cfg.Risk.Timeout != 10*time.Second || cfg.Server.ListenAddr != ":8080" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ethicheck.yaml")
	yml := `
risk:
  endpoint: https://risk.example.com/api/v1/assess
  timeout: 3s
monitor:
  poll_interval: 250ms
webclient:
  backend: nethttp
  timeout: 5s
benchmark:
  db_path: /tmp/from-yaml.db
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(app.EnvDBPath, "/tmp/from-env.db")
	t.Setenv(app.EnvRiskToken, "tok")

	cfg, err := app.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Risk.Endpoint != "https://risk.example.com/api/v1/assess" || cfg.Risk.Timeout != 3*time.Second {
		t.Errorf("risk section not loaded: %+v", cfg.Risk)
	}
	if cfg.Monitor.PollInterval != 250*time.Millisecond {
		t.Errorf("poll interval = %s", cfg.Monitor.PollInterval)
	}
	if cfg.WebClient.Client != webclient.ClientNetHTTP || cfg.WebClient.Timeout != 5*time.Second {
		t.Errorf("webclient section not loaded: %+v", cfg.WebClient)
	}
	if cfg.Benchmark.DBPath != "/tmp/from-env.db" || cfg.Risk.Token != "tok" {
		t.Errorf("env did not override: db=%q token=%q", cfg.Benchmark.DBPath, cfg.Risk.Token)
	}
	if cfg.AI.Model != "gemini-2.0-flash" {
		t.Errorf("defaults lost for unset sections: %q", cfg.AI.Model)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := app.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Monitor.PollInterval != time.Second {
		t.Errorf("expected defaults, got %+v", cfg.Monitor)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()
	env := map[string]string{
		app.EnvRiskEndpoint: " https://x.example/assess ",
		app.EnvGeminiKey:    "key",
		app.EnvListenAddr:   ":9999",
		app.EnvLogLevel:     "",
	}
	cfg := app.DefaultConfig()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Risk.Endpoint != "https://x.example/assess" || cfg.AI.APIKey != "key" || cfg.Server.ListenAddr != ":9999" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("blank env value should not override, got %q", cfg.Logging.Level)
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*app.Config)
	}{
		{"zero poll interval", func(c *app.Config) { c.Monitor.PollInterval = 0 }},
		{"negative poll interval", func(c *app.Config) { c.Monitor.PollInterval = -time.Second }},
		{"unknown backend", func(c *app.Config) { c.WebClient.Client = "lynx" }},
		{"relative endpoint", func(c *app.Config) { c.Risk.Endpoint = "/api/v1/assess" }},
		{"non-http endpoint", func(c *app.Config) { c.Risk.Endpoint = "ftp://risk.example.com/x" }},
		{"bad log format", func(c *app.Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		cfg := app.DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, app.ErrInvalidConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidConfig", tt.name, err)
		}
	}
}
