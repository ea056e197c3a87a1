package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	EmailAddress  string
	EmailPassword string
	SMTPServer    string
	SMTPPort      int
	SweepInterval time.Duration
}

// Load reads configuration from a .env file (if present) and the
// process environment, applying defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getenv("PORT", "5000"),
		DBPath:        getenv("DB_PATH", "budget.db"),
		JWTSecret:     getenv("JWT_SECRET", "change_me_please"),
		EmailAddress:  os.Getenv("EMAIL_ADDRESS"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
		SMTPServer:    getenv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:      getenvInt("SMTP_PORT", 465),
		SweepInterval: getenvDuration("SWEEP_INTERVAL", 24*time.Hour),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
