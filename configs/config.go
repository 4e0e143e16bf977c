package config

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	loadOnce sync.Once
	env      *viper.Viper
)

func load() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Warn(".env file not found, reading from system environment variables")
	}

	env = viper.New()
	env.AutomaticEnv()
	env.SetDefault("PORT", "8080")
	env.SetDefault("APP_NAME", "Tutor Bazar")
	env.SetDefault("CLIENT_DOMAIN", "http://localhost:5173")
	env.SetDefault("CHECKOUT_CURRENCY", "usd")
	env.SetDefault("PROVIDER_TIMEOUT", "10s")
	env.SetDefault("CONFIRMATION_CACHE_TTL", "10m")
	env.SetDefault("RECONCILE_REPORT_SCHEDULE", "*/30 * * * *")
	env.SetDefault("LOG_LEVEL", "info")
}

// Config returns the raw string value for key, reading .env on first use.
func Config(key string) string {
	loadOnce.Do(load)
	return env.GetString(key)
}

type Settings struct {
	Port                    string
	AppName                 string
	DatabaseURL             string
	JWTSecret               string
	StripeSecret            string
	ClientDomain            string
	CheckoutCurrency        string
	RedisAddr               string
	ProviderTimeout         time.Duration
	ConfirmationCacheTTL    time.Duration
	ReconcileReportSchedule string
	LogLevel                slog.Level
}

func Load() Settings {
	loadOnce.Do(load)

	return Settings{
		Port:                    env.GetString("PORT"),
		AppName:                 env.GetString("APP_NAME"),
		DatabaseURL:             env.GetString("DATABASE_URL"),
		JWTSecret:               env.GetString("JWT_SECRET"),
		StripeSecret:            env.GetString("STRIPE_SECRET"),
		ClientDomain:            strings.TrimRight(env.GetString("CLIENT_DOMAIN"), "/"),
		CheckoutCurrency:        strings.ToLower(env.GetString("CHECKOUT_CURRENCY")),
		RedisAddr:               env.GetString("REDIS_ADDR"),
		ProviderTimeout:         env.GetDuration("PROVIDER_TIMEOUT"),
		ConfirmationCacheTTL:    env.GetDuration("CONFIRMATION_CACHE_TTL"),
		ReconcileReportSchedule: env.GetString("RECONCILE_REPORT_SCHEDULE"),
		LogLevel:                parseLevel(env.GetString("LOG_LEVEL")),
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
