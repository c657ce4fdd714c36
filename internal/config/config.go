package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every runtime setting the server needs, loaded once at startup.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	TokenExpiry time.Duration
	FrontendURL string

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string
}

// LoadConfig reads configuration from the environment, with a .env file as an
// optional source for local development.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, reading configuration from environment")
	}

	expiry, err := time.ParseDuration(getEnv("TOKEN_EXPIRY", "24h"))
	if err != nil {
		logrus.WithError(err).Warn("Invalid TOKEN_EXPIRY, falling back to 24h")
		expiry = 24 * time.Hour
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "gamerater"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenExpiry: expiry,
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPSender:   os.Getenv("SMTP_SENDER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
