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
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig configures the third-party site client.
type SourceConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	SearchPath  string  `yaml:"search_path" mapstructure:"search_path"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// StoreConfig configures the PocketBase record store.
type StoreConfig struct {
	BaseURL               string `yaml:"base_url" mapstructure:"base_url"`
	Token                 string `yaml:"token" mapstructure:"token"`
	PerfumeCollection     string `yaml:"perfume_collection" mapstructure:"perfume_collection"`
	EquivalenceCollection string `yaml:"equivalence_collection" mapstructure:"equivalence_collection"`
}

// CacheConfig configures the local detail-page cache. An empty path
// disables caching.
type CacheConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// IngestConfig configures pipeline behavior.
type IngestConfig struct {
	Concurrency           int    `yaml:"concurrency" mapstructure:"concurrency"`
	PreferFullDescription bool   `yaml:"prefer_full_description" mapstructure:"prefer_full_description"`
	PrecheckTitles        bool   `yaml:"precheck_titles" mapstructure:"precheck_titles"`
	TermsFile             string `yaml:"terms_file" mapstructure:"terms_file"`
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
	v.SetEnvPrefix("PERFUMES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.base_url", "https://dupesradar.com")
	v.SetDefault("source.search_path", "/wp-content/plugins/ajax-search-for-woocommerce-premium/includes/Engines/TNTSearchMySQL/Endpoints/search.php")
	v.SetDefault("source.user_agent", "tienda-perfumes/1.0")
	v.SetDefault("source.timeout_secs", 15)
	v.SetDefault("source.rate_per_sec", 2.0)
	v.SetDefault("source.burst", 4)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("store.base_url", "http://localhost:8080")
	v.SetDefault("store.perfume_collection", "perfumes")
	v.SetDefault("store.equivalence_collection", "equivalencias")
	v.SetDefault("cache.path", "pages.db")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("ingest.concurrency", 4)
	v.SetDefault("ingest.prefer_full_description", true)
	v.SetDefault("ingest.precheck_titles", true)
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
