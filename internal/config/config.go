package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds environment-based settings. Database URL and the trigger
// secret are mandatory; every notification channel and the redis cache are
// optional and disable themselves when unset.
type Config struct {
	ServerAddress  string
	DatabaseURL    string
	MigrationsPath string
	CronSecret     string

	AmadeusBaseURL      string
	AmadeusClientID     string
	AmadeusClientSecret string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPSender   string
	AlertEmailTo string

	TelegramBotToken string
	TelegramChatID   int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	cronSecret := os.Getenv("CRON_SECRET")
	if cronSecret == "" {
		return nil, fmt.Errorf("CRON_SECRET is required")
	}
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}
	migrations := os.Getenv("MIGRATIONS_PATH")
	if migrations == "" {
		migrations = "./migrations"
	}

	cfg := &Config{
		ServerAddress:  addr,
		DatabaseURL:    dbURL,
		MigrationsPath: migrations,
		CronSecret:     cronSecret,

		AmadeusBaseURL:      os.Getenv("AMADEUS_BASE_URL"),
		AmadeusClientID:     os.Getenv("AMADEUS_CLIENT_ID"),
		AmadeusClientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPSender:   os.Getenv("SMTP_SENDER"),
		AlertEmailTo: os.Getenv("ALERT_EMAIL_TO"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	cfg.SMTPPort = 587
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			cfg.SMTPPort = parsed
		}
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		if parsed, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			cfg.TelegramChatID = parsed
		}
	}
	return cfg, nil
}
