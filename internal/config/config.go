package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	C4C      C4CConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Mail     MailConfig
	Sync     SyncConfig
	HTTP     HTTPConfig
	Log      LogConfig
}

type C4CConfig struct {
	BaseURL  string        `validate:"required,url"`
	User     string        `validate:"required"`
	Password string        `validate:"required"`
	Timeout  time.Duration `validate:"gte=0"`
}

type DatabaseConfig struct {
	URL string `validate:"required"`
}

// RabbitMQConfig is optional: an empty URL disables inspection publishing.
type RabbitMQConfig struct {
	URL string `validate:"omitempty,url"`
}

type MailConfig struct {
	Host       string
	Port       int `validate:"gte=0,lte=65535"`
	User       string
	Password   string
	From       string   `validate:"omitempty,email"`
	Recipients []string `validate:"dive,email"`
}

type SyncConfig struct {
	Interval             time.Duration `validate:"gt=0"`
	RefreshWindow        time.Duration `validate:"gt=0"`
	FirstRunWindow       time.Duration `validate:"gt=0"`
	ExcludedEmployeeUUID []string
}

type HTTPConfig struct {
	Port           int `validate:"gt=0,lte=65535"`
	AllowedOrigins []string
	// BehindProxy trusts X-Real-IP / X-Forwarded-For for client addresses.
	BehindProxy bool
}

type LogConfig struct {
	Level  string `validate:"omitempty,oneof=debug info warn error"`
	Format string `validate:"omitempty,oneof=json console"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		C4C: C4CConfig{
			BaseURL:  strings.TrimRight(os.Getenv("C4C_BASE_URL"), "/"),
			User:     os.Getenv("C4C_USER"),
			Password: os.Getenv("C4C_PASSWORD"),
		},
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		RabbitMQ: RabbitMQConfig{URL: os.Getenv("RABBITMQ_URL")},
		Mail: MailConfig{
			Host:       os.Getenv("MAIL_HOST"),
			User:       os.Getenv("MAIL_USER"),
			Password:   os.Getenv("MAIL_PASS"),
			From:       os.Getenv("MAIL_FROM"),
			Recipients: splitList(os.Getenv("INSPECTION_RECIPIENTS")),
		},
		Sync: SyncConfig{
			ExcludedEmployeeUUID: splitList(os.Getenv("EMPLOYEE_EXCLUDED_UUIDS")),
		},
		HTTP: HTTPConfig{
			AllowedOrigins: splitList(os.Getenv("OPS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  os.Getenv("LOG_LEVEL"),
			Format: os.Getenv("LOG_FORMAT"),
		},
	}

	var err error
	if cfg.C4C.Timeout, err = durationEnv("C4C_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.Sync.Interval, err = durationEnv("SYNC_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Sync.RefreshWindow, err = durationEnv("REFRESH_WINDOW", 35*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Sync.FirstRunWindow, err = durationEnv("FIRST_RUN_WINDOW", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Mail.Port, err = intEnv("MAIL_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.HTTP.Port, err = intEnv("HTTP_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.HTTP.BehindProxy, err = boolEnv("OPS_BEHIND_PROXY", false); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags on the loaded configuration.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
