package client

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// AppConfig is the terminal client configuration.
type AppConfig struct {
	// ServerURL is the root URL of the todonest API.
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`

	// Token is the saved bearer token from the last login.
	Token string `mapstructure:"token" yaml:"token"`

	// Theme selects the terminal color theme.
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todonest/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "todonest", "config.yaml")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		ServerURL: "http://localhost:8080",
		Theme:     "default",
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file returns the default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file at path, creating
// parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server_url", cfg.ServerURL)
	v.Set("token", cfg.Token)
	v.Set("theme", cfg.Theme)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
