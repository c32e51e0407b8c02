package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const DefaultPort = 8000

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	LogLevel       string        `mapstructure:"log_level"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	SlowPolicy     string        `mapstructure:"slow_policy"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
	RoomIdleTTL    time.Duration `mapstructure:"room_idle_ttl"`
	ReapInterval   time.Duration `mapstructure:"reap_interval"`
	RemoveOnReject bool          `mapstructure:"remove_on_reject"`
	SampleSize     int           `mapstructure:"sample_size"`
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Load reads config/config.<CONFIG_ENV>.yaml when present, then applies
// environment overrides on top of the defaults.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return load(fmt.Sprintf("config/config.%s.yaml", env))
}

func load(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("slow_policy", "drop")
	v.SetDefault("rate_limit", 50)
	v.SetDefault("rate_burst", 100)
	v.SetDefault("room_idle_ttl", "0s")
	v.SetDefault("reap_interval", "1m")
	v.SetDefault("remove_on_reject", false)
	v.SetDefault("sample_size", 5)

	_ = v.BindEnv("port", "SOCKET_IO_PORT", "PORT")
	_ = v.BindEnv("mode", "MODE")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("room_idle_ttl", "ROOM_IDLE_TTL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Info().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Dur("room_idle_ttl", cfg.RoomIdleTTL).Msg("config ready")
	return &cfg, nil
}
