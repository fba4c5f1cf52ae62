package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"go_todo/store"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Gemini   GeminiConfig
	Alarm    AlarmConfig
	Logger   LoggerConfig
	Metrics  MetricsConfig
}

type DatabaseConfig struct {
	Path string
}

type GeminiConfig struct {
	APIKey        string
	Model         string
	APIURL        string
	Timeout       time.Duration
	RatePerMinute int
	CacheTTL      time.Duration
}

type AlarmConfig struct {
	SoundFile string
	Player    string // command line, e.g. "paplay" or "aplay -q"
}

type LoggerConfig struct {
	Level    string
	Encoding string
	File     string // empty or "stderr" logs to stderr
}

type MetricsConfig struct {
	Addr string // empty disables the /metrics endpoint
}

// Load reads config.yaml from ./config, . and ~/.go_todo, then applies
// GO_TODO_* environment overrides. A missing file is not an error. If
// file is non-empty it is read instead of searching.
func Load(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".go_todo"))
		}
	}

	v.SetEnvPrefix("GO_TODO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.Database.Path = v.GetString("database.path")
	if cfg.Database.Path == "" {
		path, err := store.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		cfg.Database.Path = path
	}
	path, err := store.ExpandPath(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand database path: %w", err)
	}
	cfg.Database.Path = path

	cfg.Gemini.APIKey = v.GetString("gemini.api_key")
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	cfg.Gemini.Model = v.GetString("gemini.model")
	cfg.Gemini.APIURL = v.GetString("gemini.api_url")
	cfg.Gemini.Timeout = v.GetDuration("gemini.timeout")
	cfg.Gemini.RatePerMinute = v.GetInt("gemini.rate_per_minute")
	cfg.Gemini.CacheTTL = v.GetDuration("gemini.cache_ttl")

	cfg.Alarm.SoundFile = v.GetString("alarm.sound_file")
	if cfg.Alarm.SoundFile != "" {
		if cfg.Alarm.SoundFile, err = store.ExpandPath(cfg.Alarm.SoundFile); err != nil {
			return nil, fmt.Errorf("failed to expand sound file path: %w", err)
		}
	}
	cfg.Alarm.Player = v.GetString("alarm.player")

	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.File = v.GetString("logger.file")
	if cfg.Logger.File == "" {
		cfg.Logger.File = filepath.Join(filepath.Dir(cfg.Database.Path), "go_todo.log")
	}

	cfg.Metrics.Addr = v.GetString("metrics.addr")

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.api_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.timeout", "30s")
	v.SetDefault("gemini.rate_per_minute", 15)
	v.SetDefault("gemini.cache_ttl", "10m")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
}
