package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	HTTPAddr         string
	AppBaseURL       string
	AuthCookieSecure bool

	// InvitationSecret keys the HMAC applied to invitation tokens before
	// they are stored. Changing it invalidates every outstanding token.
	InvitationSecret string

	// AdminToken is the shared secret for operator endpoints under
	// /api/admin. The endpoints stay disabled while it is empty.
	AdminToken string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	SweepInterval string

	Groups GroupConfig
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	cfg := Config{
		AppName:          getenv("APP_SERVICE", "huddle"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		AppBaseURL:       strings.TrimRight(getenv("APP_BASE_URL", "http://localhost:8080"), "/"),
		AuthCookieSecure: authCookieSecure,
		InvitationSecret: strings.TrimSpace(getenv("INVITATION_SECRET", "dev-invitation-secret")),
		AdminToken:       strings.TrimSpace(getenv("ADMIN_API_TOKEN", "")),
		DBType:           getenv("DATABASE_TYPE", "postgres"),
		DBHost:           getenv("DATABASE_HOST", "localhost"),
		DBPort:           getenv("DATABASE_PORT", "5432"),
		DBName:           getenv("DATABASE_NAME", "huddle"),
		DBUser:           getenv("DATABASE_USER", "postgres"),
		DBPassword:       getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:        getenv("DATABASE_SSLMODE", "disable"),
		RedisAddr:        strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		RedisDB:          getenvInt("REDIS_DB", 0),
		SMTPHost:         strings.TrimSpace(getenv("SMTP_HOST", "")),
		SMTPPort:         getenvInt("SMTP_PORT", 587),
		SMTPUsername:     getenv("SMTP_USERNAME", ""),
		SMTPPassword:     getenv("SMTP_PASSWORD", ""),
		SMTPFrom:         getenv("SMTP_FROM", "no-reply@huddle.local"),
		SMTPFromName:     getenv("SMTP_FROM_NAME", "Huddle"),
		SweepInterval:    getenv("INVITATION_SWEEP_INTERVAL", "1h"),
		Groups:           loadGroupConfig(),
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
