package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Reasoning   ReasoningConfig  `mapstructure:"reasoning"`
	Engine      EngineConfig     `mapstructure:"engine"`
	Analysts    AnalystsConfig   `mapstructure:"analysts"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Telegram    TelegramConfig   `mapstructure:"telegram"`
	Security    SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ReasoningConfig configures the external reasoning/summarization sidecar.
type ReasoningConfig struct {
	ServiceURL string `mapstructure:"service_url"`
	Timeout    int    `mapstructure:"timeout"`
	Model      string `mapstructure:"model"`
}

// EngineConfig carries the consensus engine's tunable heuristics. The
// dampening factors and score thresholds are tuning knobs rather than
// principled constants, so they are all overridable.
type EngineConfig struct {
	AgentTimeout                string   `mapstructure:"agent_timeout"`
	RiskThreshold               float64  `mapstructure:"risk_threshold"`
	RiskDampeningFactor         float64  `mapstructure:"risk_dampening_factor"`
	DisagreementMargin          int      `mapstructure:"disagreement_margin"`
	DisagreementDampeningFactor float64  `mapstructure:"disagreement_dampening_factor"`
	BuyThreshold                float64  `mapstructure:"buy_threshold"`
	SellThreshold               float64  `mapstructure:"sell_threshold"`
	HighRiskAssets              []string `mapstructure:"high_risk_assets"`
}

// AnalystsConfig holds the ambient inputs the built-in analyst committee
// reads at construction time.
type AnalystsConfig struct {
	GDPGrowth        float64  `mapstructure:"gdp_growth"`
	InflationRate    float64  `mapstructure:"inflation_rate"`
	UnemploymentRate float64  `mapstructure:"unemployment_rate"`
	PolicyRate       float64  `mapstructure:"policy_rate"`
	PolicyRateTrend  float64  `mapstructure:"policy_rate_trend"`
	GeopoliticalRisk float64  `mapstructure:"geopolitical_risk"`
	Hotspots         []string `mapstructure:"hotspots"`
	NewsSentiment    float64  `mapstructure:"news_sentiment"`
	TechnicalSymbols []string `mapstructure:"technical_symbols"`
}

type MarketDataConfig struct {
	ServiceURL string `mapstructure:"service_url"`
	Timeout    int    `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	ConsensusTTL string `mapstructure:"consensus_ttl"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type SecurityConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
	JWTExpiry string `mapstructure:"jwt_expiry"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("security.jwt_secret", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind JWT_SECRET environment variable: %w", err)
	}
	if err := viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind TELEGRAM_BOT_TOKEN environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Reasoning.ServiceURL == "" {
		return errors.New("reasoning.service_url is required")
	}
	if _, err := time.ParseDuration(c.Engine.AgentTimeout); err != nil {
		return fmt.Errorf("invalid engine.agent_timeout: %w", err)
	}
	if c.Engine.RiskDampeningFactor <= 0 || c.Engine.RiskDampeningFactor > 1 {
		return fmt.Errorf("engine.risk_dampening_factor must be in (0, 1], got %v", c.Engine.RiskDampeningFactor)
	}
	if c.Engine.DisagreementDampeningFactor <= 0 || c.Engine.DisagreementDampeningFactor > 1 {
		return fmt.Errorf("engine.disagreement_dampening_factor must be in (0, 1], got %v", c.Engine.DisagreementDampeningFactor)
	}
	if c.Engine.DisagreementMargin < 0 {
		return fmt.Errorf("engine.disagreement_margin must be >= 0, got %d", c.Engine.DisagreementMargin)
	}
	if c.Engine.BuyThreshold <= 0 {
		return fmt.Errorf("engine.buy_threshold must be positive, got %v", c.Engine.BuyThreshold)
	}
	if c.Engine.SellThreshold >= 0 {
		return fmt.Errorf("engine.sell_threshold must be negative, got %v", c.Engine.SellThreshold)
	}
	if c.Security.JWTExpiry != "" {
		if _, err := time.ParseDuration(c.Security.JWTExpiry); err != nil {
			return fmt.Errorf("invalid security.jwt_expiry: %w", err)
		}
	}
	if c.Redis.ConsensusTTL != "" {
		if _, err := time.ParseDuration(c.Redis.ConsensusTTL); err != nil {
			return fmt.Errorf("invalid redis.consensus_ttl: %w", err)
		}
	}
	return nil
}

// AgentTimeoutDuration returns the parsed per-agent timeout. Load has
// already validated the string.
func (c *EngineConfig) AgentTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.AgentTimeout)
	return d
}

// ConsensusTTLDuration returns the parsed cache TTL for consensus decisions.
func (c *RedisConfig) ConsensusTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.ConsensusTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Reasoning sidecar
	viper.SetDefault("reasoning.service_url", "http://localhost:3100")
	viper.SetDefault("reasoning.timeout", 45)
	viper.SetDefault("reasoning.model", "default")

	// Engine heuristics
	viper.SetDefault("engine.agent_timeout", "30s")
	viper.SetDefault("engine.risk_threshold", 0.8)
	viper.SetDefault("engine.risk_dampening_factor", 0.8)
	viper.SetDefault("engine.disagreement_margin", 1)
	viper.SetDefault("engine.disagreement_dampening_factor", 0.8)
	viper.SetDefault("engine.buy_threshold", 0.3)
	viper.SetDefault("engine.sell_threshold", -0.3)
	viper.SetDefault("engine.high_risk_assets", []string{"stocks", "equities", "growth", "emerging_markets", "crypto"})

	// Built-in analyst committee inputs
	viper.SetDefault("analysts.gdp_growth", 2.1)
	viper.SetDefault("analysts.inflation_rate", 2.8)
	viper.SetDefault("analysts.unemployment_rate", 4.1)
	viper.SetDefault("analysts.policy_rate", 4.25)
	viper.SetDefault("analysts.policy_rate_trend", -0.25)
	viper.SetDefault("analysts.geopolitical_risk", 0.35)
	viper.SetDefault("analysts.hotspots", []string{})
	viper.SetDefault("analysts.news_sentiment", 0.1)
	viper.SetDefault("analysts.technical_symbols", []string{"SPY"})

	// Market data sidecar (feeds the technical analyst only)
	viper.SetDefault("market_data.service_url", "http://localhost:3001")
	viper.SetDefault("market_data.timeout", 15)

	// Database (decision history, optional)
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "consilium")
	viper.SetDefault("database.sslmode", "disable")

	// Redis (latest-decision cache, optional)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.consensus_ttl", "1h")

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", "")

	// Security
	viper.SetDefault("security.jwt_secret", "")
	viper.SetDefault("security.jwt_expiry", "24h")
}
