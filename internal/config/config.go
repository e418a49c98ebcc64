package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// AppConfig is the complete service configuration. Values come from
// defaults, then config.yml (if present), then the environment.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Cache    CacheConfig    `yaml:"cache"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr" validate:"required"`
	GinMode        string   `yaml:"gin_mode" validate:"omitempty,oneof=debug release test"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL         string `yaml:"url"`
	Host        string `yaml:"host" validate:"required_without=URL"`
	Port        string `yaml:"port" validate:"required_without=URL"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Name        string `yaml:"name" validate:"required_without=URL"`
	SSLMode     string `yaml:"sslmode"`
	TimeZone    string `yaml:"timezone"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret" validate:"required,min=8"`
	TokenTTL         time.Duration `yaml:"token_ttl" validate:"gt=0"`
	AllowAdminSignup bool          `yaml:"allow_admin_signup"`
}

type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=text json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
	Compress   bool   `yaml:"compress"`
}

type CacheConfig struct {
	Size int           `yaml:"size" validate:"gte=0"`
	TTL  time.Duration `yaml:"ttl" validate:"gte=0"`
}

// Default returns the configuration used when nothing is overridden.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Addr: "0.0.0.0:8080", GinMode: "release"},
		Database: DatabaseConfig{
			Host:        "localhost",
			Port:        "5432",
			User:        "postgres",
			Password:    "password",
			Name:        "bus_tracker",
			SSLMode:     "disable",
			TimeZone:    "UTC",
			AutoMigrate: true,
		},
		Auth: AuthConfig{JWTSecret: "supersecret", TokenTTL: 72 * time.Hour},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			File:       "./logs/app.log",
			MaxSizeMB:  10,
			MaxBackups: 7,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Cache: CacheConfig{Size: 1000, TTL: 30 * time.Second},
	}
}

// Load builds the configuration. A missing yaml file or .env file is not
// an error.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			logrus.WithField("path", path).Debug("config file not found, using defaults and environment")
		default:
			return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found – relying on env vars")
	}
	if err := applyEnv(&cfg); err != nil {
		return AppConfig{}, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	setString(&cfg.Server.Addr, "SERVER_ADDR")
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		cfg.Server.Addr = "0.0.0.0:" + port
	}
	setString(&cfg.Server.GinMode, "GIN_MODE")
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Database.TimeZone, "DB_TIMEZONE")

	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Log.File, "LOG_FILE")

	if err := setBool(&cfg.Database.AutoMigrate, "DB_AUTO_MIGRATE"); err != nil {
		return err
	}
	if err := setBool(&cfg.Auth.AllowAdminSignup, "ALLOW_ADMIN_SIGNUP"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Auth.TokenTTL, "TOKEN_TTL"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Cache.TTL, "CACHE_TTL"); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("CACHE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CACHE_SIZE: %w", err)
		}
		cfg.Cache.Size = n
	}
	return nil
}

// setString overrides dst when key is set to a non-empty value.
func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
