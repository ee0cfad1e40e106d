package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
)

const (
	StoreMySQL    = "mysql"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	AppHost string
	AppPort string
	AppURL  string
	Dev     bool

	StoreDriver string
	DB          DBConfig
	Mongo       MongoConfig
	Cache       CacheConfig

	FirebaseProjectID       string
	FirebaseCredentialsFile string
	AdminEmails             []string

	Stripe StripeConfig

	WeatherAPIKey   string
	WeatherBaseURL  string
	WeatherCacheTTL time.Duration

	PixelID          string
	PixelAccessToken string

	MetricsUser     string
	MetricsPassword string
	APIRateLimit    int
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type MongoConfig struct {
	URI      string
	Database string
}

type CacheConfig struct {
	Host     string
	Port     string
	Password string
}

type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	PublishableKey string
	// PricePlans maps a provider price id to an internal plan label.
	PricePlans map[string]string
}

// Load reads the configuration once. env.SetupEnvFile must run first.
func Load() Config {
	driver := strings.ToLower(env.GetEnv("STORE_DRIVER", StoreMySQL))
	defaultPort := "3306"
	if driver == StorePostgres {
		defaultPort = "5432"
	}

	return Config{
		AppHost: env.GetEnv("APP_HOST", "localhost"),
		AppPort: env.GetEnv("APP_PORT", "4000"),
		AppURL:  strings.TrimRight(env.GetEnv("APP_URL", "http://localhost:4000"), "/"),
		Dev:     env.IsDev(),

		StoreDriver: driver,
		DB: DBConfig{
			Host:     env.GetEnv("DB_HOST", "127.0.0.1"),
			Port:     env.GetEnv("DB_PORT", defaultPort),
			User:     env.GetEnv("DB_USER", ""),
			Password: env.GetEnv("DB_PASSWORD", ""),
			Name:     env.GetEnv("DB_NAME", "newsdesk"),
		},
		Mongo: MongoConfig{
			URI:      env.GetEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: env.GetEnv("MONGO_DATABASE", "newsdesk"),
		},
		Cache: CacheConfig{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     env.GetEnv("CACHE_PORT", "6379"),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
		},

		FirebaseProjectID:       env.GetEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: env.GetEnv("FIREBASE_CREDENTIALS_FILE", ""),
		AdminEmails:             env.GetEnvList("ADMIN_EMAILS"),

		Stripe: StripeConfig{
			SecretKey:      env.GetEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:  env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
			PublishableKey: env.GetEnv("STRIPE_PUBLISHABLE_KEY", ""),
			PricePlans: ParsePricePlans(
				env.GetEnv("STRIPE_PRICE_PLANS", ""),
				env.GetEnv("STRIPE_BASIC_PRICE_ID", ""),
				env.GetEnv("STRIPE_PRO_PRICE_ID", ""),
			),
		},

		WeatherAPIKey:   env.GetEnv("OPENWEATHER_API_KEY", ""),
		WeatherBaseURL:  env.GetEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		WeatherCacheTTL: env.GetEnvDuration("WEATHER_CACHE_TTL", 10*time.Minute),

		PixelID:          env.GetEnv("FACEBOOK_PIXEL_ID", ""),
		PixelAccessToken: env.GetEnv("FACEBOOK_ACCESS_TOKEN", ""),

		MetricsUser:     env.GetEnv("METRICS_USER", "admin"),
		MetricsPassword: env.GetEnv("METRICS_PASSWORD", ""),
		APIRateLimit:    env.GetEnvInt("API_RATE_LIMIT", 60),
	}
}

// ParsePricePlans merges "price_a=basic,price_b=pro" with the two dedicated
// price id variables. Dedicated variables win on conflict.
func ParsePricePlans(table, basicPriceID, proPriceID string) map[string]string {
	plans := map[string]string{}
	for _, pair := range strings.Split(table, ",") {
		priceID, plan, ok := strings.Cut(strings.TrimSpace(pair), "=")
		priceID, plan = strings.TrimSpace(priceID), strings.ToLower(strings.TrimSpace(plan))
		if !ok || priceID == "" || plan == "" {
			continue
		}
		plans[priceID] = plan
	}
	if id := strings.TrimSpace(basicPriceID); id != "" {
		plans[id] = "basic"
	}
	if id := strings.TrimSpace(proPriceID); id != "" {
		plans[id] = "pro"
	}
	return plans
}

// NewLogger builds the application logger: text in dev, JSON elsewhere.
func (c Config) NewLogger() *slog.Logger {
	if c.Dev {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
