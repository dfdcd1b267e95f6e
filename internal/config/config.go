package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"workshop-manager/internal/core"
	"workshop-manager/internal/store"
)

// Config is the full configuration surface of the server process.
type Config struct {
	DatabaseURL    string
	ServerPort     string
	AllowedOrigins string
	OpenAIKey      string

	Settings            core.Settings
	ProductDeletePolicy store.DeletePolicy
	InvoiceQtyRounding  core.RoundingMode
}

// Load reads the environment (optionally seeded from .env) into a Config.
// OPENAI_API_KEY may be absent; the assistant then reports itself
// unavailable while the rest of the dashboard keeps working.
func Load() (*Config, error) {
	// Missing .env files are fine; configuration may come from the
	// environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ServerPort:     getenvWithDefault("SERVER_PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		Settings:       core.DefaultSettings(),
	}

	if raw := os.Getenv("TAX_RATE"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TAX_RATE %q: %w", raw, err)
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("TAX_RATE must be in [0, 1), got %s", rate)
		}
		cfg.Settings.TaxRate = rate
	}
	if currency := os.Getenv("CURRENCY"); currency != "" {
		cfg.Settings.Currency = currency
	}

	policy, err := store.ParseDeletePolicy(os.Getenv("PRODUCT_DELETE_POLICY"))
	if err != nil {
		return nil, err
	}
	cfg.ProductDeletePolicy = policy

	switch mode := os.Getenv("INVOICE_QTY_ROUNDING"); mode {
	case "", string(core.RoundFloor):
		cfg.InvoiceQtyRounding = core.RoundFloor
	case string(core.RoundNearest):
		cfg.InvoiceQtyRounding = core.RoundNearest
	default:
		return nil, fmt.Errorf("unknown INVOICE_QTY_ROUNDING %q", mode)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the required fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be provided")
	}
	if c.ServerPort == "" {
		return errors.New("SERVER_PORT must not be empty")
	}
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
