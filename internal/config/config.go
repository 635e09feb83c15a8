package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the application needs. It is built once
// at process start and passed by reference into the components that need it;
// nothing reads the environment after Load returns.
type Config struct {
	Port        string
	MetricsPort string
	Env         string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// AllowedOrigins is the exact list of frontend origins permitted to send
	// credentialed requests. A wildcard entry is rejected at load time because
	// credentialed cookies and "*" are incompatible.
	AllowedOrigins []string

	// ReferralReward is the number of coins credited to each side of a
	// successful referral redemption.
	ReferralReward int

	// ShareBaseURL is the frontend signup URL embedded in referral share links.
	ShareBaseURL string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load builds the immutable application configuration from the environment.
func Load() (*Config, error) {
	LoadEnv()

	cfg := &Config{
		Port:        GetEnv("PORT", "3000"),
		MetricsPort: GetEnv("METRICS_PORT", "9090"),
		Env:         GetEnv("ENV", "development"),

		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBUser:     GetEnv("DB_USER", "postgres"),
		DBPassword: GetEnv("DB_PASSWORD", "postgres"),
		DBName:     GetEnv("DB_NAME", "wagmi"),
		DBPort:     GetEnv("DB_PORT", "5432"),

		DBMaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		DBConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		DBConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),

		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),

		JWTSecret:  GetEnv("JWT_SECRET", ""),
		AccessTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		ReferralReward: GetIntEnv("REFERRAL_REWARD_COINS", 10),
		ShareBaseURL:   GetEnv("SHARE_BASE_URL", "http://localhost:3001/login"),
	}

	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", "http://localhost:3001"), ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			return nil, errors.New("wildcard origin is not allowed with credentialed cookies")
		}
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		log.Println("JWT_SECRET not set, using development default")
		cfg.JWTSecret = "wagmi-dev-secret"
	}

	return cfg, nil
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
