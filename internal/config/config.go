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
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Crawl     CrawlConfig     `yaml:"crawl" mapstructure:"crawl"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// OutputConfig configures result persistence.
type OutputConfig struct {
	File            string `yaml:"file" mapstructure:"file"`
	CheckpointFile  string `yaml:"checkpoint_file" mapstructure:"checkpoint_file"`
	CheckpointEvery int    `yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
}

// CrawlConfig configures website fetching and contact-page discovery.
type CrawlConfig struct {
	TimeoutSecs       int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRequestsPerSec int `yaml:"max_requests_per_sec" mapstructure:"max_requests_per_sec"`
	MaxSitemaps       int `yaml:"max_sitemaps" mapstructure:"max_sitemaps"`
	MaxSitemapURLs    int `yaml:"max_sitemap_urls" mapstructure:"max_sitemap_urls"`
}

// ScoringConfig configures relevance analysis.
type ScoringConfig struct {
	Industry     string `yaml:"industry" mapstructure:"industry"`
	ProfilesFile string `yaml:"profiles_file" mapstructure:"profiles_file"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	CacheFile     string `yaml:"cache_file" mapstructure:"cache_file"`
	FetchDetails  bool   `yaml:"fetch_details" mapstructure:"fetch_details"`
	PerQueryLimit int    `yaml:"per_query_limit" mapstructure:"per_query_limit"`
}

// AnthropicConfig holds Anthropic API settings for administrator lookup.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	EnableAdmin bool   `yaml:"enable_admin" mapstructure:"enable_admin"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers"`
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
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("output.file", "risultati.csv")
	v.SetDefault("output.checkpoint_file", "checkpoint.json")
	v.SetDefault("output.checkpoint_every", 25)
	v.SetDefault("crawl.timeout_secs", 12)
	v.SetDefault("crawl.max_requests_per_sec", 10)
	v.SetDefault("crawl.max_sitemaps", 30)
	v.SetDefault("crawl.max_sitemap_urls", 20000)
	v.SetDefault("scoring.industry", "fotovoltaico")
	v.SetDefault("scoring.profiles_file", "")
	// Keys default to empty so the LEADGEN_PLACES_KEY and LEADGEN_ANTHROPIC_KEY
	// environment variables are picked up during unmarshal.
	v.SetDefault("places.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("places.cache_file", "places_cache.db")
	v.SetDefault("places.fetch_details", true)
	v.SetDefault("places.per_query_limit", 20)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.enable_admin", false)
	v.SetDefault("batch.max_workers", 10)
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
