package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBName    string
	JWTKey    string
	SaltRound int

	EmailSender string
	Password    string // SMTP Password

	SendGridAPIKey string // Preferred email provider; SMTP is the fallback

	SMSApiKey   string
	SMSApiURL   string
	SMSSenderID string

	WebhookURL    string // Outbound event webhook (empty disables it)
	WebhookSecret string

	SweepCronSpec string // Nightly progress consistency sweep
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	// Initialize AppConfig with values from environment variables
	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		DBName:    getEnv("DB_NAME", "learnhub.db"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		EmailSender: getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:    getEnv("PASSWORD", "defaultSecret"),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		SMSApiKey:   getEnv("SMS_API_KEY", ""),
		SMSApiURL:   getEnv("SMS_API_URL", "https://www.fast2sms.com/dev/bulkV2"),
		SMSSenderID: getEnv("SMS_SENDER_ID", "LRNHUB"),

		WebhookURL:    getEnv("EVENT_WEBHOOK_URL", ""),
		WebhookSecret: getEnv("EVENT_WEBHOOK_SECRET", ""),

		SweepCronSpec: getEnv("SWEEP_CRON_SPEC", "30 2 * * *"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.DBName == "learnhub.db" {
		log.Println("Warning: Using default DBName. Update it in your environment.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
