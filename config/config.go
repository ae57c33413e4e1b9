package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"elena-agent/service"
)

// Config holds the full application configuration.
type Config struct {
	Server ServerConfig   `yaml:"server" mapstructure:"server"`
	Store  StoreConfig    `yaml:"store" mapstructure:"store"`
	Cache  CacheConfig    `yaml:"cache" mapstructure:"cache"`
	OpenAI OpenAIConfig   `yaml:"openai" mapstructure:"openai"`
	Log    LogConfig      `yaml:"log" mapstructure:"log"`
	Policy service.Policy `yaml:"policy" mapstructure:"policy"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port               int           `yaml:"port" mapstructure:"port"`
	ReadTimeout        time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	AllowedOrigins     []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int           `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	ProfileTimeout     time.Duration `yaml:"profile_timeout" mapstructure:"profile_timeout"`
}

// StoreConfig selects where profiles and timelines live.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// CacheConfig configures the profile cache.
type CacheConfig struct {
	Driver     string        `yaml:"driver" mapstructure:"driver"`
	RedisAddr  string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	ProfileTTL time.Duration `yaml:"profile_ttl" mapstructure:"profile_ttl"`
}

// OpenAIConfig holds the narration LLM settings. An empty key disables it.
type OpenAIConfig struct {
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Model     string        `yaml:"model" mapstructure:"model"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AIConfig converts the OpenAI section for the service layer.
func (c OpenAIConfig) AIConfig() service.AIConfig {
	return service.AIConfig{
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Model:     c.Model,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}

// Load reads configuration from .env, an optional elena.yaml and ELENA_*
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("elena")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ELENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit_per_minute", 30)
	v.SetDefault("server.rate_limit_burst", 5)
	v.SetDefault("server.profile_timeout", 3*time.Second)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.profile_ttl", 10*time.Minute)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", 30*time.Second)
	v.SetDefault("openai.max_tokens", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	setPolicyDefaults(v, service.DefaultPolicy())

	// OPENAI_API_KEY is honoured for compatibility with the hosted functions.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		v.SetDefault("openai.api_key", key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setPolicyDefaults(v *viper.Viper, p service.Policy) {
	tiers := make([]map[string]any, 0, len(p.APRTiers))
	for _, t := range p.APRTiers {
		tiers = append(tiers, map[string]any{"min_score": t.MinScore, "apr": t.APR})
	}
	v.SetDefault("policy.apr_tiers", tiers)
	v.SetDefault("policy.floor_apr", p.FloorAPR)
	v.SetDefault("policy.default_apr", p.DefaultAPR)
	v.SetDefault("policy.default_tax_rate", p.DefaultTaxRate)
	v.SetDefault("policy.default_insurance_annual", p.DefaultInsuranceAnnual)
	v.SetDefault("policy.default_hoa_monthly", p.DefaultHOAMonthly)
	v.SetDefault("policy.housing_cap_fraction", p.HousingCapFraction)
	v.SetDefault("policy.pi_buffer", p.PIBuffer)
	v.SetDefault("policy.five_down_factor", p.FiveDownFactor)
	v.SetDefault("policy.cushion_low", p.CushionLow)
	v.SetDefault("policy.cushion_good", p.CushionGood)
	v.SetDefault("policy.grade_a_ratio", p.GradeARatio)
	v.SetDefault("policy.grade_a_minus_ratio", p.GradeAMinusRatio)
	v.SetDefault("policy.grade_b_plus_ratio", p.GradeBPlusRatio)
	v.SetDefault("policy.min_term_years", p.MinTermYears)
	v.SetDefault("policy.max_term_years", p.MaxTermYears)
	v.SetDefault("policy.default_term_years", p.DefaultTermYears)
	v.SetDefault("policy.min_credit_score", p.MinCreditScore)
	v.SetDefault("policy.max_credit_score", p.MaxCreditScore)
	v.SetDefault("policy.default_loan_type", p.DefaultLoanType)
	v.SetDefault("policy.target_price_rounding", p.TargetPriceRounding)
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return eris.New("config: server.port must be greater than 0")
	}
	if c.Server.RateLimitPerMinute <= 0 || c.Server.RateLimitBurst <= 0 {
		return eris.New("config: server rate limits must be greater than 0")
	}
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required for the postgres driver")
		}
	default:
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return eris.Errorf("config: unknown cache.driver %q", c.Cache.Driver)
	}
	if err := c.Policy.Validate(); err != nil {
		return eris.Wrap(err, "config")
	}
	return nil
}

func loadEnvFile() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return eris.Wrapf(err, "config: load env file %s", envFile)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return eris.Wrap(err, "config: load .env")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
