package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// ShowCompleted controls whether completed tasks appear in the
	// task list by default. The completed status filter still shows
	// them regardless.
	ShowCompleted bool `mapstructure:"show_completed" yaml:"show_completed"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// DatabasePath is the location of the local SQLite database.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// LogPath is the location of the application log file.
	LogPath string `mapstructure:"log_path" yaml:"log_path"`

	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskmaster/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskmaster", "config.yaml")
}

// defaultDataDir returns the directory holding the database and log file.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "taskmaster")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dataDir := defaultDataDir()
	return &AppConfig{
		DatabasePath: filepath.Join(dataDir, "taskmaster.db"),
		LogPath:      filepath.Join(dataDir, "taskmaster.log"),
		Display: DisplayConfig{
			ShowCompleted: true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	dataDir := defaultDataDir()
	v.SetDefault("database_path", filepath.Join(dataDir, "taskmaster.db"))
	v.SetDefault("log_path", filepath.Join(dataDir, "taskmaster.log"))
	v.SetDefault("display.show_completed", true)

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

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database_path", cfg.DatabasePath)
	v.Set("log_path", cfg.LogPath)
	v.Set("display.show_completed", cfg.Display.ShowCompleted)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
