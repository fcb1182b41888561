package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	MongoURL string
	MongoDB  string

	// Stripe. When StripeSecretKey is empty the service runs with the mock
	// payment gateway; no real charges can be made.
	StripeSecretKey string
	Currency        string

	JWTSecret string

	// Best-effort admin notification over SMTP.
	AdminEmail string
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string

	// Optional order event fan-out.
	KafkaBrokers     []string
	OrderEventsTopic string
	SNSTopicArn      string

	// Optional product read cache.
	RedisURL string
}

func LoadConfig() (*Config, error) {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("APP_ENV", "development"),
		MongoURL:         getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:          getEnv("MONGO_DB", "estore"),
		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		Currency:         strings.ToLower(getEnv("CURRENCY", "usd")),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		OrderEventsTopic: getEnv("ORDER_EVENTS_TOPIC", "order.events"),
		SNSTopicArn:      os.Getenv("SNS_ORDER_TOPIC_ARN"),
		RedisURL:         os.Getenv("REDIS_URL"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
