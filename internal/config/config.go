package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fmgvault/internal/vault"
)

// FileName is the config file looked up in the output directory when no
// explicit path is given.
const FileName = "fmgvault.yaml"

// Config holds all fmgvault configuration.
type Config struct {
	// Directory names inside the vault
	Vault vault.Dirs `yaml:"vault"`

	Generation GenerationConfig `yaml:"generation"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GenerationConfig configures a conversion run.
type GenerationConfig struct {
	Workers        int    `yaml:"workers"` // 0 = one per CPU
	Timeout        string `yaml:"timeout"` // empty = no deadline
	IncludeRemoved bool   `yaml:"include_removed"`
	SkipUnchanged  bool   `yaml:"skip_unchanged"`
}

// LedgerConfig configures the SQLite run ledger.
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // relative paths are resolved against the output directory
}

// WatchConfig configures the input watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Vault: vault.DefaultDirs(),

		Generation: GenerationConfig{
			Workers:       0,
			Timeout:       "",
			SkipUnchanged: true,
		},

		Ledger: LedgerConfig{
			Enabled: true,
		},

		Watch: WatchConfig{
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			DebugMode: false,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve picks the config file: explicit wins, otherwise FileName inside
// output.
func Resolve(explicit, output string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(output, FileName)
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("FMGVAULT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FMGVAULT_WORKERS: %w", err)
		}
		c.Generation.Workers = n
	}
	if v := os.Getenv("FMGVAULT_TIMEOUT"); v != "" {
		c.Generation.Timeout = v
	}
	if v := os.Getenv("FMGVAULT_LEDGER"); v != "" {
		switch strings.ToLower(v) {
		case "off", "false", "0", "none":
			c.Ledger.Enabled = false
		default:
			c.Ledger.Enabled = true
			c.Ledger.Path = v
		}
	}
	if v := os.Getenv("FMGVAULT_DEBUG"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FMGVAULT_DEBUG: %w", err)
		}
		c.Logging.DebugMode = on
	}
	return nil
}

// GetTimeout returns the run deadline, zero when unset or unparsable.
func (c *Config) GetTimeout() time.Duration {
	if c.Generation.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Generation.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// GetDebounce returns the watcher debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// LedgerPath resolves the ledger file against the output directory. An
// empty path uses the layout's default location.
func (c *Config) LedgerPath(layout *vault.Layout) string {
	switch {
	case c.Ledger.Path == "":
		return layout.LedgerPath()
	case filepath.IsAbs(c.Ledger.Path):
		return c.Ledger.Path
	default:
		return filepath.Join(layout.Root, c.Ledger.Path)
	}
}

// ValidLevels lists the accepted logging levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Generation.Workers < 0 {
		return fmt.Errorf("generation.workers must not be negative (got %d)", c.Generation.Workers)
	}
	if c.Generation.Timeout != "" {
		d, err := time.ParseDuration(c.Generation.Timeout)
		if err != nil {
			return fmt.Errorf("generation.timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("generation.timeout must not be negative (got %s)", c.Generation.Timeout)
		}
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("watch.debounce: %w", err)
		}
	}
	if err := validateDirs(c.Vault); err != nil {
		return err
	}

	validLevel := false
	for _, l := range ValidLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	return c.Logging.validateCategories()
}

// validateDirs requires every vault directory to be a single, non-empty,
// distinct path element.
func validateDirs(d vault.Dirs) error {
	v := reflect.ValueOf(d)
	typ := v.Type()
	seen := make(map[string]string)
	for i := 0; i < v.NumField(); i++ {
		key := strings.Split(typ.Field(i).Tag.Get("yaml"), ",")[0]
		name := v.Field(i).String()
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("vault.%s must not be empty", key)
		}
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return fmt.Errorf("vault.%s must be a single directory name (got %q)", key, name)
		}
		if other, dup := seen[name]; dup && !differentParents(key, other) {
			return fmt.Errorf("vault.%s and vault.%s are both %q", other, key, name)
		}
		seen[name] = key
	}
	return nil
}

// differentParents reports whether two directory keys live under different
// parents, in which case the same name is harmless.
func differentParents(a, b string) bool {
	top := map[string]bool{"world": true, "assets": true, "map_data": true}
	return top[a] != top[b]
}
