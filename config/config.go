package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // STORE_TIMEZONE must resolve in slim containers

	"github.com/joho/godotenv"
)

// Storage backends for print-ready documents
const (
	StorageLocal = "local"
	StorageDrive = "drive"
)

// Config holds the service configuration read from the environment
type Config struct {
	Port            string
	DatabaseURL     string
	Storage         string
	StorageDir      string
	PublicBaseURL   string
	DriveFolderID   string
	CredentialsPath string
	SizeTablePath   string
	FetchTimeout    time.Duration
	FetchConcurrent int
	PrintTimeout    time.Duration
	ChromePath      string
	Location        *time.Location
	PreviewDPI      float64
}

// LoadEnv loads a .env file in development (ignores error if file doesn't exist).
// In production, variables should be set directly.
func LoadEnv() {
	if os.Getenv("ENV") == "production" {
		return
	}
	// Use Overload to ensure .env values override system environment variables
	envPath := ".env"
	if err := godotenv.Overload(envPath); err != nil {
		log.Printf("Warning: .env file not found at %s, using system environment variables", envPath)
		return
	}
	log.Printf("Successfully loaded environment variables from %s (overriding system variables)", envPath)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := getenv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

// databaseURL returns DATABASE_URL or builds a connection string from individual variables
func databaseURL() string {
	if connStr := getenv("DATABASE_URL", ""); connStr != "" {
		return connStr
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return ""
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, getenv("DB_PORT", "5432"), user, os.Getenv("DB_PASSWORD"), dbname, getenv("DB_SSLMODE", "disable"))
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Port:            strings.TrimPrefix(getenv("PORT", "8080"), ":"), // PORT from Render doesn't include the colon
		DatabaseURL:     databaseURL(),
		Storage:         strings.ToLower(getenv("PRINT_STORAGE", StorageLocal)),
		StorageDir:      getenv("PRINT_STORAGE_DIR", "storage"),
		PublicBaseURL:   getenv("PUBLIC_BASE_URL", ""),
		DriveFolderID:   getenv("DRIVE_FOLDER_ID", ""),
		CredentialsPath: getenv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		SizeTablePath:   getenv("SIZE_TABLE_PATH", ""),
		ChromePath:      getenv("CHROME_PATH", ""),
	}

	var err error
	if cfg.FetchTimeout, err = durationEnv("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.PrintTimeout, err = durationEnv("PRINT_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrent, err = intEnv("FETCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}

	dpi, err := intEnv("PREVIEW_DPI", 300)
	if err != nil {
		return nil, err
	}
	cfg.PreviewDPI = float64(dpi)

	tz := getenv("STORE_TIMEZONE", "Europe/London")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEZONE %q: %w", tz, err)
	}

	switch cfg.Storage {
	case StorageLocal:
	case StorageDrive:
		if cfg.DriveFolderID == "" {
			return nil, fmt.Errorf("DRIVE_FOLDER_ID is required when PRINT_STORAGE=drive")
		}
		if cfg.CredentialsPath == "" {
			return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS is required when PRINT_STORAGE=drive")
		}
	default:
		return nil, fmt.Errorf("PRINT_STORAGE must be %q or %q, got %q", StorageLocal, StorageDrive, cfg.Storage)
	}

	return cfg, nil
}
