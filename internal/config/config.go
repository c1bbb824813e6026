// Package config loads engine configuration from defaults, an optional
// config file in the Sidekick home directory, and SIDEKICK_* environment
// variables (highest precedence).
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sidekick/internal/contract"
)

// HomeDirName is the per-user Sidekick directory under $HOME.
const HomeDirName = ".sidekick"

// Config holds the engine tunables.
type Config struct {
	// DebounceMS is the quiet window after the last filesystem event
	// before a workspace refresh fires.
	DebounceMS int `mapstructure:"debounce_ms"`

	// ContractDir is the companion directory name inside each workspace
	// root. Override only when the agent side is configured to match.
	ContractDir string `mapstructure:"contract_dir"`

	// LogLevel is the zerolog level name (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Bridge controls the local WebSocket event bridge.
	Bridge BridgeConfig `mapstructure:"bridge"`
}

// BridgeConfig configures the local event bridge that external tools
// (editor status bars, scripts) can subscribe to.
type BridgeConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Debounce returns the debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debounce_ms", 300)
	v.SetDefault("contract_dir", contract.DirName)
	v.SetDefault("log_level", "info")
	v.SetDefault("bridge.enabled", true)
	v.SetDefault("bridge.port", 9316)
}

// Default returns the built-in defaults without consulting any sources.
func Default() *Config {
	return &Config{
		DebounceMS:  300,
		ContractDir: contract.DirName,
		LogLevel:    "info",
		Bridge:      BridgeConfig{Enabled: true, Port: 9316},
	}
}

// HomeDir returns the Sidekick home directory, creating it if needed.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, HomeDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads configuration with precedence: environment variables over the
// optional config file over built-in defaults. A missing config file is not
// an error.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SIDEKICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = 300
	}
	if cfg.ContractDir == "" {
		cfg.ContractDir = contract.DirName
	}
	return &cfg, nil
}
