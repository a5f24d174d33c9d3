package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all patentlake settings.
const envPrefix = "PATENTLAKE"

// newViper builds a pre-configured Viper instance: YAML file type,
// PATENTLAKE_ env prefix, automatic env binding, and a key replacer mapping
// "." to "_" so nested keys like "storage.path" resolve to
// "PATENTLAKE_STORAGE_PATH".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the YAML file at configPath, merges PATENTLAKE_* environment
// overrides, applies defaults, resolves secrets from the environment, and
// validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from PATENTLAKE_* environment
// variables with no config file, the preferred strategy for containerised
// deployments.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)
	resolveSecrets(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// resolveSecrets fills API keys from the environment.  Keys are deliberately
// not read from the config file so they never end up committed alongside it.
// SERPAPI_KEY and OPENAI_API_KEY are honoured as fallbacks for compatibility
// with the upstream tools that use those names.
func resolveSecrets(cfg *Config) {
	if cfg.Fetch.APIKey == "" {
		cfg.Fetch.APIKey = firstEnv("PATENTLAKE_FETCH_API_KEY", "SERPAPI_KEY")
	}
	if cfg.Agent.APIKey == "" {
		cfg.Agent.APIKey = firstEnv("PATENTLAKE_AGENT_API_KEY", "OPENAI_API_KEY")
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val
		}
	}
	return ""
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified.  Intended for hot-reloading
// non-critical settings such as log level; callers apply only the safe subset
// at runtime.  If the changed file fails to parse or validate, onChange is
// not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; errors are surfaced by Load, which callers run first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad wraps Load and panics on any error.  Intended for main() where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
