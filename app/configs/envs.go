package configs

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type ENV struct {
	Port       string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret string

	EmailHost     string
	EmailPort     string
	EmailUsername string
	EmailPassword string
	EmailFrom     string

	// ContactRecipient receives contact-form notifications.
	ContactRecipient string
	// ClientURL is the frontend origin used in password-reset links.
	ClientURL string
}

// LoadEnv reads .env when present, then the process environment. The
// result is constructed once in main and injected into the components
// that need it.
func LoadEnv() ENV {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: No .env file found")
	}

	return ENV{
		Port:             getEnv("APP_PORT", ":8080"),
		DBHost:           os.Getenv("DB_HOST"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBPort:           getEnv("DB_PORT", "3306"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		EmailHost:        os.Getenv("EMAIL_HOST"),
		EmailPort:        getEnv("EMAIL_PORT", "587"),
		EmailUsername:    os.Getenv("EMAIL_USERNAME"),
		EmailPassword:    os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:        getEnv("EMAIL_FROM", os.Getenv("EMAIL_USERNAME")),
		ContactRecipient: os.Getenv("EMAIL_CONTACT_TO"),
		ClientURL:        os.Getenv("CLIENT_URL"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MailConfigured reports whether outbound email can be attempted at all.
func (e ENV) MailConfigured() bool {
	return e.EmailHost != "" && e.EmailUsername != "" && e.EmailPassword != ""
}
