package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"kicker-api/packages/core/services"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	RedisURL       string
	LeaderboardTTL time.Duration

	CORSOrigins []string

	StaleMatchCron  string
	StaleMatchAfter time.Duration

	MidSeasonJoinPolicy services.MidSeasonJoinPolicy

	LogLevel  string
	LogFormat string

	envFileMissing bool
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	envFileLoaded := godotenv.Load() == nil

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnv("DB_NAME", "kicker"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		RedisURL:       os.Getenv("REDIS_URL"),
		CORSOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		StaleMatchCron: getEnv("STALE_MATCH_CRON", "0 0 * * * *"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.LeaderboardTTL, err = getDuration("LEADERBOARD_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.StaleMatchAfter, err = getDuration("STALE_MATCH_AFTER", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.StaleMatchAfter <= 0 {
		return nil, fmt.Errorf("STALE_MATCH_AFTER must be positive")
	}
	if cfg.MidSeasonJoinPolicy, err = services.ParseMidSeasonJoinPolicy(os.Getenv("MID_SEASON_JOIN_POLICY")); err != nil {
		return nil, fmt.Errorf("MID_SEASON_JOIN_POLICY: %w", err)
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}

	// Reported by the caller once the logger exists.
	cfg.envFileMissing = !envFileLoaded
	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DSN returns DATABASE_URL, or a key/value DSN built from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBName, c.DBSSLMode)
	if c.DBPassword != "" {
		dsn += " password=" + c.DBPassword
	}
	return dsn
}

func (c *Config) AllowAllOrigins() bool {
	return len(c.CORSOrigins) == 0 || (len(c.CORSOrigins) == 1 && c.CORSOrigins[0] == "*")
}

// EnvFileMissing reports whether no .env file was found by Load.
func (c *Config) EnvFileMissing() bool {
	return c.envFileMissing
}
