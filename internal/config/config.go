// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Default values.
const (
	DefaultAddr            = ":8080"
	DefaultDBDriver        = "sqlite"
	DefaultDBDSN           = "./data/todoapi.db"
	DefaultIssuer          = "todo-api"
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
	DefaultLogLevel        = "info"
	DefaultCORSOrigin      = "http://localhost:5173"
)

// ErrNoSecret возвращается Validate, когда не задан JWT_SECRET
var ErrNoSecret = errors.New("jwt_secret is empty (set JWT_SECRET)")

// Config holds the full configuration for the service.
type Config struct {
	Addr string `toml:"addr"`

	// Database
	DBDriver string `toml:"db_driver"` // sqlite или postgres
	DBDSN    string `toml:"db_dsn"`

	// Auth
	JWTSecret       string   `toml:"jwt_secret"`
	Issuer          string   `toml:"issuer"`
	AccessTokenTTL  Duration `toml:"access_token_ttl"`
	RefreshTokenTTL Duration `toml:"refresh_token_ttl"`
	BcryptCost      int      `toml:"bcrypt_cost"`

	CORSOrigins []string `toml:"cors_origins"`
	LogLevel    string   `toml:"log_level"`
}

// Duration разбирает строки вида "1h30m" из TOML
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns a Config with defaults applied.
func Default() Config {
	return Config{
		Addr:            DefaultAddr,
		DBDriver:        DefaultDBDriver,
		DBDSN:           DefaultDBDSN,
		Issuer:          DefaultIssuer,
		AccessTokenTTL:  Duration{DefaultAccessTokenTTL},
		RefreshTokenTTL: Duration{DefaultRefreshTokenTTL},
		BcryptCost:      bcrypt.DefaultCost,
		CORSOrigins:     []string{DefaultCORSOrigin},
		LogLevel:        DefaultLogLevel,
	}
}

// Load собирает конфигурацию: значения по умолчанию, TOML-файл, .env и переменные окружения.
// path может быть пустым; тогда берётся TODO_CONFIG, если задан.
func Load(path string) (Config, error) {
	cfg := Default()

	// .env необязателен; уже заданные переменные окружения не перезаписываются
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("TODO_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TODO_ADDR"); v != "" {
		cfg.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.DBDriver = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DBDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.Issuer = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ACCESS_TOKEN_TTL: %w", err)
		}
		cfg.AccessTokenTTL = Duration{d}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REFRESH_TOKEN_TTL: %w", err)
		}
		cfg.RefreshTokenTTL = Duration{d}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = n
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.CORSOrigins = splitOrigins(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate проверяет согласованность настроек
func (c Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("db_driver must be sqlite or postgres, got %q", c.DBDriver))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("db_dsn is empty"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, ErrNoSecret)
	}
	if c.AccessTokenTTL.Duration <= 0 {
		errs = append(errs, errors.New("access_token_ttl must be positive"))
	}
	if c.RefreshTokenTTL.Duration <= 0 {
		errs = append(errs, errors.New("refresh_token_ttl must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	return errors.Join(errs...)
}

// OnlyMissingSecret сообщает, что единственная проблема конфигурации - пустой секрет.
// Утилитам, которые не выдают токены, этого достаточно для работы.
func OnlyMissingSecret(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		return len(errs) == 1 && errors.Is(errs[0], ErrNoSecret)
	}
	return errors.Is(err, ErrNoSecret)
}

func splitOrigins(s string) []string {
	var origins []string
	for _, p := range strings.Split(s, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
