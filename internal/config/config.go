package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	MailNone     = "none"
	MailSendGrid = "sendgrid"
	MailResend   = "resend"
)

type Config struct {
	Port         string        `yaml:"port"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	CookieSecure bool          `yaml:"cookie_secure"`

	Store   StoreConfig   `yaml:"store"`
	Redis   RedisConfig   `yaml:"redis"`
	NATS    NATSConfig    `yaml:"nats"`
	Mail    MailConfig    `yaml:"mail"`
	HTTP    HTTPConfig    `yaml:"http"`
	Market  MarketConfig  `yaml:"market"`
	Logging LoggingConfig `yaml:"logging"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	DatabaseURL   string `yaml:"database_url"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

type RedisConfig struct {
	URL         string        `yaml:"url"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MailConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Sender   string `yaml:"sender"`
}

type HTTPConfig struct {
	CORSOrigins   []string `yaml:"cors_origins"`
	AuthRequired  bool     `yaml:"auth_required"`
	AuthRateLimit float64  `yaml:"auth_rate_limit"`
	AuthRateBurst int      `yaml:"auth_rate_burst"`
}

// MarketConfig holds the upstream endpoints and the revenue heuristics.
// The revenue rates are business placeholders, not derived constants.
type MarketConfig struct {
	CoinGeckoBaseURL string        `yaml:"coingecko_base_url"`
	LlamaBaseURL     string        `yaml:"llama_base_url"`
	UpstreamTimeout  time.Duration `yaml:"upstream_timeout"`
	ReferenceAsset   string        `yaml:"reference_asset"`
	ReferenceFiat    string        `yaml:"reference_fiat"`
	CEXPageSize      int           `yaml:"cex_page_size"`
	DEXRevenueRate   float64       `yaml:"dex_revenue_rate"`
	CEXRevenueRate   float64       `yaml:"cex_revenue_rate"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		Port:     "5000",
		TokenTTL: 24 * time.Hour,
		Store: StoreConfig{
			Driver:        StoreSQLite,
			DatabaseURL:   "cryptopulse.db",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "cryptopulse",
		},
		Redis: RedisConfig{SnapshotTTL: 24 * time.Hour},
		Mail:  MailConfig{Provider: MailNone},
		HTTP: HTTPConfig{
			CORSOrigins:   []string{"*"},
			AuthRateLimit: 5,
			AuthRateBurst: 10,
		},
		Market: MarketConfig{
			CoinGeckoBaseURL: "https://api.coingecko.com/api/v3",
			LlamaBaseURL:     "https://api.llama.fi",
			UpstreamTimeout:  10 * time.Second,
			ReferenceAsset:   "bitcoin",
			ReferenceFiat:    "usd",
			CEXPageSize:      100,
			DEXRevenueRate:   0.002,
			CEXRevenueRate:   0.001,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration: defaults, then the optional YAML file named
// by CONFIG_FILE, then environment variables. A .env file is read first when
// present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env")
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = GetEnvAsString("PORT", c.Port)
	c.JWTSecret = GetEnvAsString("JWT_SECRET", c.JWTSecret)
	c.TokenTTL = GetEnvAsDuration("TOKEN_TTL", c.TokenTTL)
	c.CookieSecure = GetEnvAsBool("COOKIE_SECURE", c.CookieSecure)

	c.Store.Driver = GetEnvAsString("STORE_DRIVER", c.Store.Driver)
	c.Store.DatabaseURL = GetEnvAsString("DATABASE_URL", c.Store.DatabaseURL)
	c.Store.MongoURI = GetEnvAsString("MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDatabase = GetEnvAsString("MONGO_DATABASE", c.Store.MongoDatabase)

	c.Redis.URL = GetEnvAsString("REDIS_URL", c.Redis.URL)
	c.Redis.SnapshotTTL = GetEnvAsDuration("SNAPSHOT_TTL", c.Redis.SnapshotTTL)
	c.NATS.URL = GetEnvAsString("NATS_URL", c.NATS.URL)

	c.Mail.Provider = GetEnvAsString("MAIL_PROVIDER", c.Mail.Provider)
	c.Mail.APIKey = GetEnvAsString("EMAIL_API_KEY", c.Mail.APIKey)
	c.Mail.Sender = GetEnvAsString("EMAIL_SENDER", c.Mail.Sender)

	c.HTTP.CORSOrigins = GetEnvAsList("CORS_ORIGINS", c.HTTP.CORSOrigins)
	c.HTTP.AuthRequired = GetEnvAsBool("AUTH_REQUIRED", c.HTTP.AuthRequired)
	c.HTTP.AuthRateLimit = GetEnvAsFloat("AUTH_RATE_LIMIT", c.HTTP.AuthRateLimit)
	c.HTTP.AuthRateBurst = GetEnvAsInt("AUTH_RATE_BURST", c.HTTP.AuthRateBurst)

	c.Market.CoinGeckoBaseURL = GetEnvAsString("COINGECKO_BASE_URL", c.Market.CoinGeckoBaseURL)
	c.Market.LlamaBaseURL = GetEnvAsString("LLAMA_BASE_URL", c.Market.LlamaBaseURL)
	c.Market.UpstreamTimeout = GetEnvAsDuration("UPSTREAM_TIMEOUT", c.Market.UpstreamTimeout)
	c.Market.ReferenceAsset = GetEnvAsString("REFERENCE_ASSET", c.Market.ReferenceAsset)
	c.Market.ReferenceFiat = GetEnvAsString("REFERENCE_FIAT", c.Market.ReferenceFiat)
	c.Market.CEXPageSize = GetEnvAsInt("CEX_PAGE_SIZE", c.Market.CEXPageSize)
	c.Market.DEXRevenueRate = GetEnvAsFloat("DEX_REVENUE_RATE", c.Market.DEXRevenueRate)
	c.Market.CEXRevenueRate = GetEnvAsFloat("CEX_REVENUE_RATE", c.Market.CEXRevenueRate)

	c.Logging.Level = GetEnvAsString("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = GetEnvAsString("LOG_FORMAT", c.Logging.Format)
}

// Validate checks that required fields are set and values are in range.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be > 0")
	}

	switch c.Store.Driver {
	case StoreSQLite, StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url is required for driver %q", c.Store.Driver)
		}
	case StoreMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" {
			return errors.New("store.mongo_uri and store.mongo_database are required for driver \"mongo\"")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Mail.Provider {
	case MailNone, "":
	case MailSendGrid, MailResend:
		if c.Mail.APIKey == "" || c.Mail.Sender == "" {
			return fmt.Errorf("mail provider %q needs EMAIL_API_KEY and EMAIL_SENDER", c.Mail.Provider)
		}
	default:
		return fmt.Errorf("unknown mail provider %q", c.Mail.Provider)
	}

	if c.HTTP.AuthRateLimit < 0 || c.HTTP.AuthRateBurst < 0 {
		return errors.New("auth rate limit and burst must be >= 0")
	}

	m := c.Market
	if m.CoinGeckoBaseURL == "" || m.LlamaBaseURL == "" {
		return errors.New("market upstream base urls are required")
	}
	if m.ReferenceAsset == "" || m.ReferenceFiat == "" {
		return errors.New("market.reference_asset and market.reference_fiat are required")
	}
	if m.CEXPageSize < 1 || m.CEXPageSize > 250 {
		return fmt.Errorf("market.cex_page_size must be between 1 and 250, got %d", m.CEXPageSize)
	}
	if m.DEXRevenueRate < 0 || m.CEXRevenueRate < 0 {
		return errors.New("market revenue rates must be >= 0")
	}
	if m.UpstreamTimeout <= 0 {
		return errors.New("market.upstream_timeout must be > 0")
	}
	return nil
}
