package config

import (
	"os"
	"strconv"
	"time"
)

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	From          string
	FromName      string
	TLSMode       string // "", "tls", "starttls"
	SkipVerifyTLS bool
}

type Config struct {
	ListenAddr string
	DBDSN      string

	// Oturum
	SessionCookie string
	SessionTTL    time.Duration
	SecureCookies bool

	// Fiyatlandırma
	Currency               string
	FlatShippingCents      int
	FreeShippingOverCents  int
	DefaultTaxRatePercent  int
	LowStockThreshold      int
	AnalyticsTopN          int

	// Analytics cache (opsiyonel)
	RedisAddr string

	SMTP SMTPConfig

	BaseURL string
}

// Load reads the environment into a Config. Missing values fall back to
// development defaults; prod sets real env vars (godotenv is loaded in main).
func Load() Config {
	return Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBDSN:      os.Getenv("DB_DSN"),

		SessionCookie: getEnv("SESSION_COOKIE", "sid"),
		SessionTTL:    getDuration("SESSION_TTL", 30*24*time.Hour),
		SecureCookies: getBool("SECURE_COOKIES", false),

		Currency:              getEnv("CURRENCY", "TND"),
		FlatShippingCents:     getInt("FLAT_SHIPPING_CENTS", 700),
		FreeShippingOverCents: getInt("FREE_SHIPPING_OVER_CENTS", 20000),
		DefaultTaxRatePercent: getInt("DEFAULT_TAX_RATE_PERCENT", 0),
		LowStockThreshold:     getInt("LOW_STOCK_THRESHOLD", 5),
		AnalyticsTopN:         getInt("ANALYTICS_TOP_N", 5),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		SMTP: SMTPConfig{
			Host:          getEnv("SMTP_HOST", "localhost"),
			Port:          getEnv("SMTP_PORT", "1025"),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			From:          getEnv("SMTP_FROM", "no-reply@deltafashion.local"),
			FromName:      getEnv("SMTP_FROM_NAME", "Delta Fashion"),
			TLSMode:       os.Getenv("SMTP_TLS_MODE"),
			SkipVerifyTLS: getBool("SMTP_SKIP_VERIFY_TLS", false),
		},

		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
