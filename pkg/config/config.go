package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// FileName is the optional config file read from the working directory.
const FileName = "docgraph.toml"

// EnvPrefix prefixes environment overrides, e.g. DOCGRAPH_BACKEND=sqlite.
const EnvPrefix = "DOCGRAPH_"

// Backend names accepted in the backend key.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Backend     string        `koanf:"backend"`
	Database    string        `koanf:"database"`
	Graph       string        `koanf:"graph"`
	Vertices    string        `koanf:"vertices"`
	Edges       string        `koanf:"edges"`
	Verbosity   string        `koanf:"verbosity"`
	VerboseCnt  int           `koanf:"verbose"`
	JSONLogs    bool          `koanf:"json"`
	QuietPeriod time.Duration `koanf:"quiet-period"`
	MaxWait     time.Duration `koanf:"max-wait"`
}

// Defaults returns the lowest-priority configuration layer.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"backend":      BackendSQLite,
		"database":     "docgraph.db",
		"graph":        "graph",
		"vertices":     "vertices",
		"edges":        "edges",
		"verbosity":    "",
		"verbose":      0,
		"json":         false,
		"quiet-period": 500 * time.Millisecond,
		"max-wait":     5 * time.Second,
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return LoadFile(FileName, f)
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider(path), toml.Parser())

	// 3. Environment Variables
	// DOCGRAPH_QUIET_PERIOD maps to quiet-period
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Database == "" {
			return fmt.Errorf("backend %s needs a database path", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendMemory, BackendSQLite)
	}
	if c.Vertices == "" || c.Edges == "" {
		return fmt.Errorf("vertex and edge collection names must not be empty")
	}
	if c.Vertices == c.Edges {
		return fmt.Errorf("vertex and edge collections must differ, both are %q", c.Vertices)
	}
	if c.QuietPeriod <= 0 || c.MaxWait <= 0 {
		return fmt.Errorf("quiet-period and max-wait must be positive")
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
