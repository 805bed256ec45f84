package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Dataset sources understood by the loader.
const (
	SourceEmbedded = "embedded"
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	HTTPAddr string

	DatasetSource string
	DatasetPath   string
	DatasetLabel  string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresTable    string

	HistogramBins int
	ChartHeight   int
	SessionTTL    time.Duration
	MaxRetries    int

	ChromeBin string
	LogDebug  bool
}

// Load reads the .env file (if any) and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8050"),

		DatasetSource: strings.ToLower(getEnv("DATASET_SOURCE", SourceEmbedded)),
		DatasetPath:   getEnv("DATASET_PATH", ""),
		DatasetLabel:  getEnv("DATASET_LABEL", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "winedash"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "winedash"),
		PostgresDB:       getEnv("POSTGRES_DB", "winedash"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTable:    getEnv("POSTGRES_TABLE", "wine"),

		HistogramBins: getEnvInt("HISTOGRAM_BINS", 50),
		ChartHeight:   getEnvInt("CHART_HEIGHT", 400),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
		MaxRetries:    getEnvInt("MAX_RETRIES", 3),

		ChromeBin: getEnv("CHROME_BIN", ""),
		LogDebug:  getEnvBool("LOG_DEBUG", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
