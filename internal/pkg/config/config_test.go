package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
)

func TestParsePricePlans(t *testing.T) {
	t.Parallel()

	plans := ParsePricePlans(" price_1=Basic, broken, =pro, price_2=pro,price_3=basic", "price_3", "")
	assert.Equal(t, map[string]string{
		"price_1": "basic",
		"price_2": "pro",
		"price_3": "basic",
	}, plans)

	plans = ParsePricePlans("", "pb", "pp")
	assert.Equal(t, map[string]string{"pb": "basic", "pp": "pro"}, plans)
}

func TestLoadDefaults(t *testing.T) {
	env.Env = map[string]string{
		"STORE_DRIVER":      "Postgres",
		"APP_URL":           "https://news.example.com/",
		"ADMIN_EMAILS":      "a@example.com,b@example.com",
		"WEATHER_CACHE_TTL": "5m",
	}
	t.Cleanup(func() { env.Env = nil })

	cfg := Load()
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "https://news.example.com", cfg.AppURL)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.AdminEmails)
	assert.Equal(t, 5*time.Minute, cfg.WeatherCacheTTL)
	assert.Equal(t, 60, cfg.APIRateLimit)
	assert.NotNil(t, cfg.NewLogger())
}
