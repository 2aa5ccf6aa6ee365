package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Storefront StorefrontConfig `yaml:"storefront" mapstructure:"storefront"`
	Matcher    MatcherConfig    `yaml:"matcher" mapstructure:"matcher"`
	Lexicon    LexiconConfig    `yaml:"lexicon" mapstructure:"lexicon"`
	Dietary    DietaryConfig    `yaml:"dietary" mapstructure:"dietary"`
	Prices     PricesConfig     `yaml:"prices" mapstructure:"prices"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// StorefrontConfig configures the search-gateway client.
type StorefrontConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// MatcherConfig configures product scoring and selection.
type MatcherConfig struct {
	PreferOrganic     bool    `yaml:"prefer_organic" mapstructure:"prefer_organic"`
	SmartOrganic      bool    `yaml:"smart_organic" mapstructure:"smart_organic"`
	PreferBudget      bool    `yaml:"prefer_budget" mapstructure:"prefer_budget"`
	OrganicThreshold  float64 `yaml:"organic_threshold" mapstructure:"organic_threshold"`
	SmartOrganicBonus int     `yaml:"smart_organic_bonus" mapstructure:"smart_organic_bonus"`
	SmartOrganicMalus int     `yaml:"smart_organic_malus" mapstructure:"smart_organic_malus"`
	MaxAlternatives   int     `yaml:"max_alternatives" mapstructure:"max_alternatives"`
	Concurrency       int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// LexiconConfig points at an optional YAML file merged over the built-in
// keyword and translation tables.
type LexiconConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DietaryConfig holds standing household constraints applied to every run.
type DietaryConfig struct {
	Allergies []string `yaml:"allergies" mapstructure:"allergies"`
	Dietary   []string `yaml:"dietary" mapstructure:"dietary"`
}

// PricesConfig configures price-history housekeeping.
type PricesConfig struct {
	RetentionDays int     `yaml:"retention_days" mapstructure:"retention_days"`
	AlertDiscount float64 `yaml:"alert_discount" mapstructure:"alert_discount"`
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SHOPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "shopper.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("storefront.rate_limit", 3.0)
	v.SetDefault("matcher.organic_threshold", 15.0)
	v.SetDefault("matcher.smart_organic_bonus", 60)
	v.SetDefault("matcher.smart_organic_malus", -15)
	v.SetDefault("matcher.max_alternatives", 3)
	v.SetDefault("matcher.concurrency", 5)
	v.SetDefault("prices.retention_days", 90)
	v.SetDefault("prices.alert_discount", 10.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command mode depends on and returns every
// problem at once. Modes: "match" (store + matcher), "serve" (adds port).
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "match", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	if c.Matcher.Concurrency < 1 || c.Matcher.Concurrency > 50 {
		problems = append(problems, "matcher.concurrency must be between 1 and 50")
	}
	if c.Matcher.MaxAlternatives < 0 {
		problems = append(problems, "matcher.max_alternatives must be >= 0")
	}
	if c.Matcher.OrganicThreshold < 0 {
		problems = append(problems, "matcher.organic_threshold must be >= 0")
	}
	if c.Prices.RetentionDays < 1 {
		problems = append(problems, "prices.retention_days must be >= 1")
	}

	if mode == "serve" && c.Server.Port <= 0 {
		problems = append(problems, "server.port must be > 0")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
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
