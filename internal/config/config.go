package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by VOWSUITE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("VOWSUITE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func JWTSecret() string {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		return "change-me-to-secure-secret"
	}
	return s
}

// JWTExpiry returns the bearer token lifetime.
// Defaults to 3 hours if JWT_EXP_HOURS is not set.
func JWTExpiry() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("JWT_EXP_HOURS"))
	if err != nil || hours <= 0 {
		return 3 * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LoginRateLimit returns the number of login attempts allowed per IP per
// window. Defaults to 10.
func LoginRateLimit() int {
	n, err := strconv.Atoi(os.Getenv("LOGIN_RATE_LIMIT"))
	if err != nil || n <= 0 {
		return 10
	}
	return n
}

// LoginRateWindow returns the login throttling window.
// Defaults to 1 minute.
func LoginRateWindow() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("LOGIN_RATE_WINDOW_SECONDS"))
	if err != nil || secs <= 0 {
		return time.Minute
	}
	return time.Duration(secs) * time.Second
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}
