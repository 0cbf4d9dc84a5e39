package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRiseThreshold is used when settings.rise_threshold is missing or invalid.
const DefaultRiseThreshold = 2.0

const (
	defaultRequestsPerMinute = 60
	defaultMarketOpenHour    = 15
)

// Config holds all application configuration.
type Config struct {
	Finnhub struct {
		BaseURL           string `yaml:"base_url"`
		APIKey            string `yaml:"api_key"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	} `yaml:"finnhub"`
	Exchange struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		BaseCurrency   string  `yaml:"base_currency"`
		TargetCurrency string  `yaml:"target_currency"`
		FallbackRate   float64 `yaml:"fallback_rate"`
	} `yaml:"exchange"`
	Symbols struct {
		NewStockFile string `yaml:"new_stock_file"`
		MyStockFile  string `yaml:"my_stock_file"`
	} `yaml:"symbols"`
	Settings struct {
		// RiseThresholdRaw is kept as text so a non-numeric value can fall
		// back to the default instead of failing the whole file.
		RiseThresholdRaw string  `yaml:"rise_threshold"`
		RiseThreshold    float64 `yaml:"-"`
	} `yaml:"settings"`
	Storage struct {
		Dir    string `yaml:"dir"`
		Prefix string `yaml:"prefix"`
		Alias  string `yaml:"alias"`
	} `yaml:"storage"`
	Timezone string `yaml:"timezone"`
	Schedule struct {
		CollectCron string `yaml:"collect_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken       string `yaml:"bot_token"`
		ChatID         string `yaml:"chat_id"`
		SendScreenshot bool   `yaml:"send_screenshot"`
	} `yaml:"telegram"`
	Viewer struct {
		Addr           string `yaml:"addr"`
		MarketName     string `yaml:"market_name"`
		MarketOpenHour int    `yaml:"market_open_hour"`
	} `yaml:"viewer"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	// Numeric defaults are set before decoding so an explicit zero survives.
	cfg := &Config{}
	cfg.Finnhub.RequestsPerMinute = defaultRequestsPerMinute
	cfg.Viewer.MarketOpenHour = defaultMarketOpenHour

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Finnhub.APIKey = v
	}
	if v := os.Getenv("EXCHANGE_RATE_API_KEY"); v != "" {
		cfg.Exchange.APIKey = v
	}
	if v := os.Getenv("RISE_THRESHOLD"); v != "" {
		cfg.Settings.RiseThresholdRaw = v
	}
	if v := os.Getenv("SNAPSHOT_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_COLLECT"); v != "" {
		cfg.Schedule.CollectCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("VIEWER_ADDR"); v != "" {
		cfg.Viewer.Addr = v
	}

	cfg.Settings.RiseThreshold = parseRiseThreshold(cfg.Settings.RiseThresholdRaw)

	// Defaults
	if cfg.Finnhub.BaseURL == "" {
		cfg.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if cfg.Finnhub.RequestsPerMinute <= 0 {
		log.Printf("[WARN] invalid finnhub.requests_per_minute %d, using default %d", cfg.Finnhub.RequestsPerMinute, defaultRequestsPerMinute)
		cfg.Finnhub.RequestsPerMinute = defaultRequestsPerMinute
	}
	if cfg.Exchange.FallbackRate < 0 {
		log.Printf("[WARN] invalid exchange.fallback_rate %v, ignored", cfg.Exchange.FallbackRate)
		cfg.Exchange.FallbackRate = 0
	}
	if cfg.Exchange.BaseURL == "" {
		cfg.Exchange.BaseURL = "https://v6.exchangerate-api.com/v6"
	}
	if cfg.Exchange.BaseCurrency == "" {
		cfg.Exchange.BaseCurrency = "USD"
	}
	if cfg.Exchange.TargetCurrency == "" {
		cfg.Exchange.TargetCurrency = "EUR"
	}
	if cfg.Symbols.NewStockFile == "" {
		cfg.Symbols.NewStockFile = "new_stocks.txt"
	}
	if cfg.Symbols.MyStockFile == "" {
		cfg.Symbols.MyStockFile = "my_stock.txt"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "."
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "stock_data_output"
	}
	if cfg.Storage.Alias == "" {
		cfg.Storage.Alias = "1"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "CET"
	}
	if cfg.Viewer.Addr == "" {
		cfg.Viewer.Addr = "127.0.0.1:5000"
	}
	if cfg.Viewer.MarketName == "" {
		cfg.Viewer.MarketName = "NASDAQ"
	}
	if cfg.Viewer.MarketOpenHour < 0 || cfg.Viewer.MarketOpenHour > 23 {
		log.Printf("[WARN] invalid viewer.market_open_hour %d, using default %d", cfg.Viewer.MarketOpenHour, defaultMarketOpenHour)
		cfg.Viewer.MarketOpenHour = defaultMarketOpenHour
	}

	return cfg, nil
}

func parseRiseThreshold(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		log.Printf("[WARN] settings.rise_threshold not set, using default %.1f", DefaultRiseThreshold)
		return DefaultRiseThreshold
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("[WARN] invalid settings.rise_threshold %q, using default %.1f", raw, DefaultRiseThreshold)
		return DefaultRiseThreshold
	}
	return v
}

// Validate checks the fields the collector needs.
func (c *Config) Validate() error {
	if c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required")
	}
	if c.Exchange.APIKey == "" && c.Exchange.FallbackRate <= 0 {
		return fmt.Errorf("exchange.api_key or exchange.fallback_rate is required")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Viewer.MarketOpenHour < 0 || c.Viewer.MarketOpenHour > 23 {
		return fmt.Errorf("viewer.market_open_hour must be between 0 and 23")
	}
	return nil
}
