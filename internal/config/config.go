package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dukerupert/outplay/internal/database"
)

// EnvPrefix is prepended to every environment override, e.g.
// OUTPLAY_DATABASE_DSN for database.dsn.
const EnvPrefix = "OUTPLAY"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Weather  WeatherConfig  `mapstructure:"weather"`
}

type ServerConfig struct {
	Port                string        `mapstructure:"port"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	CORSOrigins         []string      `mapstructure:"cors_origins"`
	CompletionRateLimit int           `mapstructure:"completion_rate_limit"`
	// TrustedProxy makes rate limiting key on CF-Connecting-IP or
	// X-Forwarded-For instead of the socket address.
	TrustedProxy        bool          `mapstructure:"trusted_proxy"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WeatherConfig struct {
	Latitude        string `mapstructure:"latitude"`
	Longitude       string `mapstructure:"longitude"`
	TemperatureUnit string `mapstructure:"temperature_unit"`
}

// Load reads configuration from defaults, an optional YAML file, a .env
// file and OUTPLAY_* environment variables, later sources winning.
// An empty configPath searches for outplay.yaml in . and ./config.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		configPath = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("outplay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	// PORT is what most hosting platforms set.
	if os.Getenv(EnvPrefix+"_SERVER_PORT") == "" && !v.InConfig("server.port") {
		if port := os.Getenv("PORT"); port != "" {
			v.Set("server.port", port)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Server.CORSOrigins = splitOrigins(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3001")
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.completion_rate_limit", 60)
	v.SetDefault("server.trusted_proxy", false)

	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.dsn", "outplay.db")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("weather.latitude", "")
	v.SetDefault("weather.longitude", "")
	v.SetDefault("weather.temperature_unit", "fahrenheit")
}

// splitOrigins accepts both a YAML list and a comma-separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", database.DriverSQLite, database.DriverPostgres, c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if c.Database.MaxOpenConns < 0 {
		return errors.New("database.max_open_conns must be >= 0")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %q", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	if c.Server.CompletionRateLimit < 0 {
		return errors.New("server.completion_rate_limit must be >= 0")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Weather.TemperatureUnit {
	case "fahrenheit", "celsius":
	default:
		return fmt.Errorf("weather.temperature_unit must be fahrenheit or celsius, got %q", c.Weather.TemperatureUnit)
	}
	return nil
}
