package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. WAYPOINT_ROUTES.
const EnvPrefix = "WAYPOINT"

// Settings holds the process configuration shared by every command.
type Settings struct {
	Routes    string
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	HTTP      HTTPSettings
	Redis     RedisSettings
	History   HistorySettings
}

// HTTPSettings configures the serve command.
type HTTPSettings struct {
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisSettings configures durable session histories. An empty Addr keeps them in memory.
type RedisSettings struct {
	Addr       string
	Password   string
	DB         int
	Prefix     string
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// HistorySettings configures what served sessions record in their native history.
type HistorySettings struct {
	// RedactParams are patterns of query parameter names whose values are masked.
	RedactParams []string `mapstructure:"redact_params"`
	// EncryptionKey is a base64 AES-256 key encrypting recorded URLs.
	EncryptionKey string `mapstructure:"encryption_key"`
}

// NewViper returns a viper instance with defaults and environment overrides.
// When configFile is set it is read; otherwise ./waypoint.{yaml,json,toml} is used if present.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("routes", "routes.yaml")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "waypoint:")
	v.SetDefault("redis.session_ttl", 24*time.Hour)
	v.SetDefault("history.redact_params", []string{})
	v.SetDefault("history.encryption_key", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("waypoint")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// LoadSettings decodes v into Settings.
func LoadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return s, nil
}

// Logger builds the process logger from the settings.
func (s Settings) Logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(s.LogFormat)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(stderr, level, format), nil
}

// HostMiddleware builds the middleware wrapping every served session's host:
// redaction first, so masked values are what gets encrypted.
func (s Settings) HostMiddleware() ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(s.History.RedactParams) > 0 {
		pii, err := middleware.NewPIIMiddleware(s.History.RedactParams)
		if err != nil {
			return nil, fmt.Errorf("history.redact_params: %w", err)
		}
		mws = append(mws, pii)
	}
	if s.History.EncryptionKey != "" {
		key, err := middleware.ParseKey(s.History.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("history.encryption_key: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, fmt.Errorf("history.encryption_key: %w", err)
		}
		mws = append(mws, enc)
	}
	return mws, nil
}
