package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/eleven-am/inventory/internal/database"
	"github.com/eleven-am/inventory/internal/logger"
)

const (
	defaultConfigFile = "inventory.yaml"
	envPrefix         = "INVENTORY"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

var configLocations = []string{"inventory.yaml", "inventory.yml", ".inventory.yaml", ".inventory.yml"}

// Config represents the inventory.yaml configuration structure
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	Database struct {
		Driver string `yaml:"driver" mapstructure:"driver"`
		URL    string `yaml:"url" mapstructure:"url"`
	} `yaml:"database" mapstructure:"database"`

	Log struct {
		Level      string `yaml:"level" mapstructure:"level"`
		File       string `yaml:"file,omitempty" mapstructure:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb,omitempty" mapstructure:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups,omitempty" mapstructure:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days,omitempty" mapstructure:"max_age_days"`
		Compress   bool   `yaml:"compress,omitempty" mapstructure:"compress"`
	} `yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration written by `inventory init`
func DefaultConfig() *Config {
	cfg := &Config{Version: "1"}
	cfg.Database.Driver = database.DriverSQLite
	cfg.Database.URL = database.DefaultSQLiteURL
	cfg.Log.Level = "warn"
	cfg.Log.MaxSizeMB = 10
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 28
	return cfg
}

// LoadConfig reads configuration from path (or the first default location
// that exists), .env files and INVENTORY_* environment variables. A missing
// file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("database.driver", defaults.Database.Driver)
	v.SetDefault("database.url", defaults.Database.URL)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", defaults.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", defaults.Log.MaxBackups)
	v.SetDefault("log.max_age_days", defaults.Log.MaxAgeDays)
	v.SetDefault("log.compress", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if path == "" {
		path = GetConfigPath()
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			logger.Config().Debug("config file not found, using defaults", "path", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// GetConfigPath returns $INVENTORY_CONFIG or the first default location found
func GetConfigPath() string {
	if path := os.Getenv("INVENTORY_CONFIG"); path != "" {
		return path
	}

	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// SaveConfig writes cfg as YAML
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = defaultConfigFile
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
