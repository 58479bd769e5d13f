package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"club-pass-go/pkg/logger"
)

type Config struct {
	HTTPPort       string
	Env            string
	AllowedOrigins []string
	DB             DBConfig
	Auth           AuthConfig
	Scan           ScanConfig
	Admin          AdminConfig
}

type DBConfig struct {
	Driver          string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	SessionTTL time.Duration
	TokenBytes int
}

type ScanConfig struct {
	SigningSecret string
	PassTTL       time.Duration
	PointsAward   int64
	DedupWindow   time.Duration
}

type AdminConfig struct {
	SeedIdentifier string
	SeedPassword   string
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "club_pass"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			Path:            getEnv("DB_PATH", "club_pass.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			SessionTTL: getEnvDuration("AUTH_SESSION_TTL", 30*24*time.Hour),
			TokenBytes: getEnvInt("AUTH_TOKEN_BYTES", 32),
		},
		Scan: ScanConfig{
			SigningSecret: getEnv("SCAN_SIGNING_SECRET", ""),
			PassTTL:       getEnvDuration("SCAN_PASS_TTL", 90*24*time.Hour),
			PointsAward:   int64(getEnvInt("SCAN_POINTS_AWARD", 10)),
			DedupWindow:   getEnvDuration("SCAN_DEDUP_WINDOW", 24*time.Hour),
		},
		Admin: AdminConfig{
			SeedIdentifier: getEnv("ADMIN_SEED_IDENTIFIER", ""),
			SeedPassword:   getEnv("ADMIN_SEED_PASSWORD", ""),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = fallback
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
