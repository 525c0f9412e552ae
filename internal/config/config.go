package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures all runtime configuration. Values resolve in the order
// defaults, then the optional YAML file named by CONFIG_FILE, then environment.
type Config struct {
	Port              string
	DBURL             string
	JWTSecret         string
	TokenTTLMinutes   int
	BcryptCost        int
	RedisURL          string
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int
}

// fileConfig mirrors the YAML schema. Zero values leave the default in place.
type fileConfig struct {
	Server struct {
		Port             string `yaml:"port"`
		ReadTimeoutSecs  int    `yaml:"read_timeout_secs"`
		WriteTimeoutSecs int    `yaml:"write_timeout_secs"`
		IdleTimeoutSecs  int    `yaml:"idle_timeout_secs"`
	} `yaml:"server"`
	Database struct {
		URL              string `yaml:"url"`
		MaxConns         int    `yaml:"max_conns"`
		MinConns         int    `yaml:"min_conns"`
		MaxConnIdleSecs  int    `yaml:"max_conn_idle_secs"`
		MaxConnLifeSecs  int    `yaml:"max_conn_lifetime_secs"`
		ConnTimeoutSecs  int    `yaml:"conn_timeout_secs"`
		StatementCacheSz int    `yaml:"statement_cache_capacity"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret       string `yaml:"jwt_secret"`
		TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
		BcryptCost      int    `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
}

func defaults() Config {
	return Config{
		Port:              "8080",
		TokenTTLMinutes:   24 * 60,
		BcryptCost:        10,
		ReadTimeoutSecs:   15,
		WriteTimeoutSecs:  15,
		IdleTimeoutSecs:   60,
		DBMaxConns:        20,
		DBMinConns:        2,
		DBMaxIdleSecs:     300,
		DBMaxLifeSecs:     3600,
		DBConnTimeoutSecs: 10,
		DBStatementCache:  256,
	}
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load resolves configuration, applying defaults and validation.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBURL = getEnv("DB_URL", cfg.DBURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTLMinutes = getEnvInt("TOKEN_TTL_MINUTES", cfg.TokenTTLMinutes)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.ReadTimeoutSecs = getEnvInt("SERVER_READ_TIMEOUT", cfg.ReadTimeoutSecs)
	cfg.WriteTimeoutSecs = getEnvInt("SERVER_WRITE_TIMEOUT", cfg.WriteTimeoutSecs)
	cfg.IdleTimeoutSecs = getEnvInt("SERVER_IDLE_TIMEOUT", cfg.IdleTimeoutSecs)
	cfg.DBMaxConns = getEnvInt("DB_MAX_CONNS", cfg.DBMaxConns)
	cfg.DBMinConns = getEnvInt("DB_MIN_CONNS", cfg.DBMinConns)
	cfg.DBMaxIdleSecs = getEnvInt("DB_MAX_CONN_IDLE_SECS", cfg.DBMaxIdleSecs)
	cfg.DBMaxLifeSecs = getEnvInt("DB_MAX_CONN_LIFETIME_SECS", cfg.DBMaxLifeSecs)
	cfg.DBConnTimeoutSecs = getEnvInt("DB_CONN_TIMEOUT_SECS", cfg.DBConnTimeoutSecs)
	cfg.DBStatementCache = getEnvInt("DB_STATEMENT_CACHE_CAPACITY", cfg.DBStatementCache)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	if cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if cfg.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	return nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
	}

	setString(&cfg.Port, f.Server.Port)
	setInt(&cfg.ReadTimeoutSecs, f.Server.ReadTimeoutSecs)
	setInt(&cfg.WriteTimeoutSecs, f.Server.WriteTimeoutSecs)
	setInt(&cfg.IdleTimeoutSecs, f.Server.IdleTimeoutSecs)
	setString(&cfg.DBURL, f.Database.URL)
	setInt(&cfg.DBMaxConns, f.Database.MaxConns)
	setInt(&cfg.DBMinConns, f.Database.MinConns)
	setInt(&cfg.DBMaxIdleSecs, f.Database.MaxConnIdleSecs)
	setInt(&cfg.DBMaxLifeSecs, f.Database.MaxConnLifeSecs)
	setInt(&cfg.DBConnTimeoutSecs, f.Database.ConnTimeoutSecs)
	setInt(&cfg.DBStatementCache, f.Database.StatementCacheSz)
	setString(&cfg.JWTSecret, f.Auth.JWTSecret)
	setInt(&cfg.TokenTTLMinutes, f.Auth.TokenTTLMinutes)
	setInt(&cfg.BcryptCost, f.Auth.BcryptCost)
	setString(&cfg.RedisURL, f.Redis.URL)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
