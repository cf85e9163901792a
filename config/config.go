package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredentials is returned by Validate when the valuation-site
// account is not configured.
var ErrMissingCredentials = errors.New("config: MANSION_REVIEW_EMAIL and MANSION_REVIEW_PASSWORD must be set (create a .env file)")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Email    string
	Password string

	MaxItems int
	MaxPages int

	Headless        bool
	ChromeBin       string
	PageTimeout     time.Duration
	LoginTimeout    time.Duration
	PollInterval    time.Duration
	RateLimitMs     int
	ValuationDetail bool

	OutputDir        string
	ExportCSV        bool
	ExportPartial    bool
	BlankUnmeasured  bool
	DestinationLabel string
	Debug            bool

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Email:    os.Getenv("MANSION_REVIEW_EMAIL"),
		Password: os.Getenv("MANSION_REVIEW_PASSWORD"),

		MaxItems: getEnvInt("MAX_ITEMS", 100),
		MaxPages: getEnvInt("MAX_PAGES", 10),

		Headless:        getEnvBool("HEADLESS", true),
		ChromeBin:       getEnv("CHROME_BIN", ""),
		PageTimeout:     time.Duration(getEnvInt("PAGE_TIMEOUT_SEC", 30)) * time.Second,
		LoginTimeout:    time.Duration(getEnvInt("LOGIN_TIMEOUT_SEC", 30)) * time.Second,
		PollInterval:    time.Duration(getEnvInt("POLL_INTERVAL_MS", 500)) * time.Millisecond,
		RateLimitMs:     getEnvInt("RATE_LIMIT_MS", 0),
		ValuationDetail: getEnvBool("VALUATION_FROM_DETAIL", false),

		OutputDir:        getEnv("OUTPUT_DIR", "./output"),
		ExportCSV:        getEnvBool("EXPORT_CSV", true),
		ExportPartial:    getEnvBool("EXPORT_PARTIAL_ON_FAILURE", false),
		BlankUnmeasured:  getEnvBool("BLANK_UNMEASURED", false),
		DestinationLabel: getEnv("DESTINATION_LABEL", "東京都_マンション"),
		Debug:            getEnvBool("DEBUG", true),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "realestate_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// Validate checks the settings that must be present before any crawling
// begins.
func (c *Config) Validate() error {
	if c.Email == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	if c.MaxItems <= 0 || c.MaxPages <= 0 {
		return errors.New("config: MAX_ITEMS and MAX_PAGES must be positive")
	}
	if c.PageTimeout <= 0 || c.LoginTimeout <= 0 || c.PollInterval <= 0 {
		return errors.New("config: PAGE_TIMEOUT_SEC, LOGIN_TIMEOUT_SEC and POLL_INTERVAL_MS must be positive")
	}
	return nil
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
