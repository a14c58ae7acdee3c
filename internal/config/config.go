// Package config loads process configuration from the environment once at
// startup. The resulting struct is passed explicitly to the components that
// need it; nothing reads the environment after Load returns.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Cache
	RedisURL      string
	StockCacheTTL time.Duration

	// Upstreams
	PolygonAPIKey      string
	PolygonBaseURL     string
	MarketWatchBaseURL string
}

// Load loads configuration from environment variables, reading a .env file
// first if one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "stockpulse"),
		DBPassword: getEnv("DB_PASSWORD", "stockpulse"),
		DBName:     getEnv("DB_NAME", "stockpulse"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		PolygonAPIKey:      getEnv("POLYGON_API_KEY", ""),
		PolygonBaseURL:     getEnv("POLYGON_BASE_URL", "https://api.polygon.io"),
		MarketWatchBaseURL: getEnv("MARKETWATCH_BASE_URL", "https://www.marketwatch.com"),
	}

	// Cache TTL is configured in seconds.
	ttlStr := getEnv("STOCK_CACHE_TTL", "30")
	ttlSecs, err := strconv.Atoi(ttlStr)
	if err != nil || ttlSecs <= 0 {
		log.Printf("Warning: invalid STOCK_CACHE_TTL value '%s', falling back to 30s\n", ttlStr)
		ttlSecs = 30
	}
	config.StockCacheTTL = time.Duration(ttlSecs) * time.Second

	return config, nil
}

// PostgresURL returns the database connection string in URL form, as
// expected by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// PostgresDSN returns the database connection string in keyword form, as
// expected by the GORM postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
