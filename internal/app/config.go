package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/webclient"
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Environment variables that override the YAML file.
const (
	EnvRiskEndpoint = "ETHICHECK_RISK_ENDPOINT"
	EnvRiskToken    = "ETHICHECK_RISK_TOKEN"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvListenAddr   = "ETHICHECK_LISTEN_ADDR"
	EnvDBPath       = "ETHICHECK_DB_PATH"
	EnvLogLevel     = "ETHICHECK_LOG_LEVEL"
)

// Config is the runtime configuration shared by every command.
type Config struct {
	Risk      assessor.RemoteConfig `yaml:"risk"`
	Monitor   MonitorConfig         `yaml:"monitor"`
	WebClient webclient.Config      `yaml:"webclient"`
	Server    ServerConfig          `yaml:"server"`
	Benchmark BenchmarkConfig       `yaml:"benchmark"`
	AI        AIConfig              `yaml:"ai"`
	Logging   LoggingConfig         `yaml:"logging"`
}

type MonitorConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

type ServerConfig struct {
	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type BenchmarkConfig struct {
	// DBPath is the SQLite file. Empty disables the local benchmark.
	DBPath   string `yaml:"db_path"`
	SeedFile string `yaml:"seed_file"`
}

type AIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | zap
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		Risk: assessor.RemoteConfig{
			Timeout: assessor.DefaultRemoteTimeout,
		},
		Monitor: MonitorConfig{
			PollInterval: time.Second,
		},
		WebClient: webclient.Config{
			Client:  webclient.ClientNetHTTP,
			Timeout: 30 * time.Second,
		},
		Server: ServerConfig{
			ListenAddr:     ":8080",
			AllowedOrigins: []string{"*"},
		},
		AI: AIConfig{
			Model: "gemini-2.0-flash",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "zap",
		},
	}
}

// Load reads path (a missing file yields defaults), then .env, then the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	// .env is optional.
	_ = godotenv.Load()
	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvRiskEndpoint, &c.Risk.Endpoint)
	set(EnvRiskToken, &c.Risk.Token)
	set(EnvGeminiKey, &c.AI.APIKey)
	set(EnvListenAddr, &c.Server.ListenAddr)
	set(EnvDBPath, &c.Benchmark.DBPath)
	set(EnvLogLevel, &c.Logging.Level)
}

// Validate reports the first problem wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Monitor.PollInterval <= 0 {
		return fmt.Errorf("%w: monitor.poll_interval must be positive, got %s", ErrInvalidConfig, c.Monitor.PollInterval)
	}
	if c.Risk.Timeout < 0 {
		return fmt.Errorf("%w: risk.timeout must not be negative", ErrInvalidConfig)
	}
	if c.WebClient.Client == "" {
		c.WebClient.Client = webclient.ClientNetHTTP
	}
	if !webclient.IsRegistered(string(c.WebClient.Client)) {
		return fmt.Errorf("%w: unknown webclient backend %q (have %s)", ErrInvalidConfig,
			c.WebClient.Client, strings.Join(webclient.ListBackends(), ", "))
	}
	if c.Risk.Endpoint != "" {
		u, err := url.Parse(c.Risk.Endpoint)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: risk.endpoint must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.Risk.Endpoint)
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "zap":
	default:
		return fmt.Errorf("%w: logging.format must be json or zap, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}
