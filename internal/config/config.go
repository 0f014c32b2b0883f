package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	applog "pujcovna/internal/log"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	SeedDemo bool
	Currency string

	JWTSecret    string
	AccessTTLMin int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL string

	HTTPTimeout time.Duration

	InvoicingURL          string
	InvoicingClientID     string
	InvoicingClientSecret string
	InvoicingDueDays      int

	ShippingURL            string
	ShippingAPIKey         string
	ShippingSenderID       string
	ShippingDefaultWeightG int
}

// Load reads the environment (optionally seeded from a .env file in the
// working directory) and applies defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:     getenv("PORT", "8080"),
		DBDSN:    getenv("DB_DSN", "pujcovna.db"), // sqlite file in project root
		LogFile:  getenv("LOG_FILE", "./pujcovna.log"),
		SeedDemo: getenv("SEED_DEMO", "true") == "true",
		Currency: getenv("CURRENCY", "CZK"),

		JWTSecret:    getenv("JWT_SECRET", "dev-secret-change-me"),
		AccessTTLMin: atoi(getenv("ACCESS_TOKEN_TTL_MIN", "480"), 480),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       atoi(getenv("REDIS_DB", "0"), 0),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		HTTPTimeout: parseDur(getenv("HTTP_TIMEOUT", "5s"), 5*time.Second),

		InvoicingURL:          os.Getenv("INVOICING_URL"),
		InvoicingClientID:     os.Getenv("INVOICING_CLIENT_ID"),
		InvoicingClientSecret: os.Getenv("INVOICING_CLIENT_SECRET"),
		InvoicingDueDays:      atoi(getenv("INVOICING_DUE_DAYS", "14"), 14),

		ShippingURL:            os.Getenv("SHIPPING_URL"),
		ShippingAPIKey:         os.Getenv("SHIPPING_API_KEY"),
		ShippingSenderID:       os.Getenv("SHIPPING_SENDER_ID"),
		ShippingDefaultWeightG: atoi(getenv("SHIPPING_DEFAULT_WEIGHT_G", "1500"), 1500),
	}

	applog.WithFields(map[string]any{
		"port":      cfg.Port,
		"db_dsn":    cfg.DBDSN,
		"log_file":  cfg.LogFile,
		"redis":     cfg.RedisAddr != "",
		"rabbitmq":  cfg.RabbitMQURL != "",
		"invoicing": cfg.InvoicingURL != "",
		"shipping":  cfg.ShippingURL != "",
	}).Info("config loaded")
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseDur(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
