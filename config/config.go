package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var (
	ErrMissingJWTSecret   = errors.New("JWT secret is not configured (set JWT_SECRET)")
	ErrMissingDatabaseURI = errors.New("database URI is not configured (set MONGO_URI)")
)

type Config struct {
	Env string `yaml:"env"`

	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	// Sessions always last utils.SessionTTL; only the signing key is
	// configurable.
	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	LoginLimit struct {
		MaxAttempts   int `yaml:"maxAttempts"`
		WindowSeconds int `yaml:"windowSeconds"`
	} `yaml:"loginLimit"`

	SMTP struct {
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		SenderEmail string `yaml:"senderEmail"`
		SenderName  string `yaml:"senderName"`
	} `yaml:"smtp"`
}

// LoadConfig reads the YAML file at path (when it exists), loads a .env file
// if one is present and lets environment variables override both.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	applyEnv(cfg)
	return cfg, nil
}

// Validate reports the first required setting that is missing.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	if strings.TrimSpace(c.Database.URI) == "" {
		return ErrMissingDatabaseURI
	}
	return nil
}

// IsDevelopment is true only for env "development", the one mode where
// cookies are not marked Secure.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func defaults() *Config {
	cfg := &Config{Env: EnvDevelopment}
	cfg.Server.Port = 3000
	cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	cfg.LoginLimit.MaxAttempts = 10
	cfg.LoginLimit.WindowSeconds = 15 * 60
	cfg.SMTP.Port = 587
	cfg.SMTP.SenderName = "CodeArena"
	return cfg
}

func applyEnv(cfg *Config) {
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.Database.URI, "MONGO_URI")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.SenderEmail, "SMTP_SENDER_EMAIL")
	setInt(&cfg.Server.Port, "PORT")
	setInt(&cfg.Redis.DB, "REDIS_DB")
	setInt(&cfg.SMTP.Port, "SMTP_PORT")
	setInt(&cfg.LoginLimit.MaxAttempts, "LOGIN_MAX_ATTEMPTS")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.Server.CORSOrigins = origins
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}
