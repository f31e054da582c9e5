package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/atinylittleshell/clinicdesk/internal/core"
	"github.com/atinylittleshell/clinicdesk/pkg/suggestinput"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "CLINICDESK"

type Config struct {
	DBPath       string `mapstructure:"db_path"`
	LogFile      string `mapstructure:"log_file"`
	LogLevel     string `mapstructure:"log_level"`
	CleanLogFile bool   `mapstructure:"clean_log_file"`
	CatalogFile  string `mapstructure:"catalog_file"`
	MaxItems     int    `mapstructure:"max_items"`
	MaxHeight    int    `mapstructure:"max_height"`
	RecentLimit  int    `mapstructure:"recent_limit"`
}

// Load reads configuration from defaults, the config file and CLINICDESK_*
// environment variables, in increasing priority. A missing config file is not
// an error; an explicit configFile that cannot be read is.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", core.RegistryFile())
	v.SetDefault("log_file", core.LogFile())
	v.SetDefault("log_level", "info")
	v.SetDefault("clean_log_file", false)
	v.SetDefault("catalog_file", "")
	v.SetDefault("max_items", suggestinput.DefaultMaxItems)
	v.SetDefault("max_height", suggestinput.DefaultMaxHeight)
	v.SetDefault("recent_limit", 200)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigFile(core.ConfigFile())
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.MaxItems <= 0 {
		cfg.MaxItems = suggestinput.DefaultMaxItems
	}
	if cfg.MaxHeight <= 0 {
		cfg.MaxHeight = suggestinput.DefaultMaxHeight
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 200
	}

	return cfg, nil
}

// ZapLevel parses LogLevel, falling back to info.
func (c *Config) ZapLevel() zap.AtomicLevel {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		level = zap.NewAtomicLevel()
	}
	return level
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}
