package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const DefaultLanguageCode = "en"

type Config struct {
	Database Database `yaml:"database"`
	HTTP     HTTP     `yaml:"http"`
	Auth     Auth     `yaml:"auth"`
	Prices   Prices   `yaml:"prices"`
	Images   Images   `yaml:"images"`
	Telegram Telegram `yaml:"telegram"`
	Logger   Logger   `yaml:"logger"`
}

type Database struct {
	Host     string `env:"DB_HOST" env-default:"localhost" yaml:"host"`
	Port     int    `env:"DB_PORT" env-default:"5432" yaml:"port"`
	User     string `env:"DB_USER" env-default:"postgres" yaml:"user"`
	Password string `env:"DB_PASSWORD" env-default:"postgres" yaml:"password"`
	Name     string `env:"DB_NAME" env-default:"postgres" yaml:"name"`
	SSLMode  string `env:"DB_SSL_MODE" env-default:"disable" yaml:"ssl-mode"`
}

func (d *Database) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func (d *Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode) //nolint:nosprintfhostport // it's ok
}

type HTTP struct {
	Addr           string   `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-default:"*" yaml:"allowed_origins"`
	DevMode        bool     `env:"HTTP_DEV_MODE" env-default:"false" yaml:"dev_mode"`
}

type Auth struct {
	AccessCode    string        `env:"ADMIN_ACCESS_CODE" env-default:"" yaml:"access_code"`
	SessionSecret string        `env:"SESSION_SECRET" env-default:"" yaml:"session_secret"`
	SessionTTL    time.Duration `env:"SESSION_TTL" env-default:"168h" yaml:"session_ttl"`
	SecureCookie  bool          `env:"SECURE_COOKIE" env-default:"false" yaml:"secure_cookie"`
	CronSecret    string        `env:"CRON_SECRET" env-default:"" yaml:"cron_secret"`
}

type Prices struct {
	GoldAPIKey     string        `env:"GOLDAPI_KEY" env-default:"" yaml:"goldapi_key"`
	GoldAPIURL     string        `env:"GOLDAPI_URL" env-default:"https://www.goldapi.io" yaml:"goldapi_url"`
	FxURL          string        `env:"FX_URL" env-default:"https://api.frankfurter.app" yaml:"fx_url"`
	Currency       string        `env:"PRICE_CURRENCY" env-default:"PHP" yaml:"currency"`
	CurrencySymbol string        `env:"PRICE_CURRENCY_SYMBOL" env-default:"₱" yaml:"currency_symbol"`
	Schedule       string        `env:"PRICE_SCHEDULE" env-default:"0 8 * * *" yaml:"schedule"`
	Timezone       string        `env:"PRICE_TIMEZONE" env-default:"Asia/Manila" yaml:"timezone"`
	RequestTimeout time.Duration `env:"PRICE_REQUEST_TIMEOUT" env-default:"15s" yaml:"request_timeout"`
}

// Location returns the scheduler time zone, falling back to UTC+8 when tzdata is unavailable.
func (p *Prices) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.FixedZone(p.Timezone, 8*3600)
	}
	return loc
}

type Images struct {
	Bucket          string `env:"IMAGES_BUCKET" env-default:"" yaml:"bucket"`
	Region          string `env:"IMAGES_REGION" env-default:"auto" yaml:"region"`
	Endpoint        string `env:"IMAGES_ENDPOINT" env-default:"" yaml:"endpoint"`
	AccessKeyID     string `env:"IMAGES_ACCESS_KEY_ID" env-default:"" yaml:"access_key_id"`
	SecretAccessKey string `env:"IMAGES_SECRET_ACCESS_KEY" env-default:"" yaml:"secret_access_key"`
	PublicURL       string `env:"IMAGES_PUBLIC_URL" env-default:"" yaml:"public_url"`
}

type Telegram struct {
	Token       string `env:"TELEGRAM_TOKEN" env-default:"" yaml:"token"`
	AdminChatID int64  `env:"TELEGRAM_ADMIN_CHAT_ID" env-default:"0" yaml:"admin_chat_id"`
	Language    string `env:"TELEGRAM_LANGUAGE" env-default:"en" yaml:"language"`
}

type Logger struct {
	Level           string     `env:"LOG_LEVEL" env-default:"info" yaml:"level"`
	ParsedSlogLevel slog.Level `yaml:"-"`
	GORMLevel       string     `env:"LOG_GORM_LEVEL" env-default:"info" yaml:"gorm_level"`
	ParsedGORMLevel slog.Level `yaml:"-"`
}

// MustLoad loads config from a file. Variables from .env and .env.local are exported first,
// so they take part in the env overrides.
func MustLoad(configPath string) *Config {
	for _, envFile := range []string{".env.local", ".env"} {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			panic(fmt.Errorf("cannot read %s: %w", envFile, err))
		}
	}

	cnf := &Config{}

	var err error
	if _, statErr := os.Stat(configPath); statErr == nil {
		err = cleanenv.ReadConfig(configPath, cnf)
	} else {
		err = cleanenv.ReadEnv(cnf)
	}
	if err != nil {
		panic(fmt.Errorf("cannot read config: %w", err))
	}

	cnf.Logger.ParsedGORMLevel = parseGORMLevel(cnf.Logger.GORMLevel)
	cnf.Logger.ParsedSlogLevel = parseSlogLevel(cnf.Logger.Level)

	return cnf
}

func parseGORMLevel(level string) slog.Level {
	switch level {
	case "silent":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
