package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Scraping
	BCVURL         string
	BinanceAPIURL  string
	ScrapeTimeout  time.Duration
	MarketTimezone string

	// Scheduler
	EnableScheduler bool

	// API rate limiting
	RateLimitPeriod   time.Duration
	RateLimitRequests int64
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("BCV_URL", "https://www.bcv.org.ve/")
	viper.SetDefault("BINANCE_P2P_URL", "https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search")
	viper.SetDefault("SCRAPE_TIMEOUT", "10s")
	viper.SetDefault("MARKET_TIMEZONE", "America/Caracas")
	viper.SetDefault("ENABLE_SCHEDULER", true)
	viper.SetDefault("RATE_LIMIT_PERIOD", "15m")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.BCVURL = viper.GetString("BCV_URL")
	cfg.BinanceAPIURL = viper.GetString("BINANCE_P2P_URL")
	cfg.MarketTimezone = viper.GetString("MARKET_TIMEZONE")
	cfg.EnableScheduler = viper.GetBool("ENABLE_SCHEDULER")
	cfg.RateLimitRequests = viper.GetInt64("RATE_LIMIT_REQUESTS")

	scrapeTimeoutStr := viper.GetString("SCRAPE_TIMEOUT")
	scrapeTimeout, err := time.ParseDuration(scrapeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_TIMEOUT %q: %w", scrapeTimeoutStr, err)
	}
	cfg.ScrapeTimeout = scrapeTimeout

	rateLimitPeriodStr := viper.GetString("RATE_LIMIT_PERIOD")
	rateLimitPeriod, err := time.ParseDuration(rateLimitPeriodStr)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PERIOD %q: %w", rateLimitPeriodStr, err)
	}
	cfg.RateLimitPeriod = rateLimitPeriod

	return cfg, nil
}
