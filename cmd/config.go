package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/spigell/job-recommender/internal/customsearch"
	"github.com/spigell/job-recommender/internal/enrich"
	"github.com/spigell/job-recommender/internal/ingestion"
	"github.com/spigell/job-recommender/internal/normalize"
	"github.com/spigell/job-recommender/internal/pipeline"
	"github.com/spigell/job-recommender/internal/query"
)

const (
	envGeminiAPIKey = "GEMINI_API_KEY"
	envGoogleAPIKey = "GOOGLE_API_KEY"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

type Config struct {
	AI      AIConfig        `mapstructure:"ai"`
	Search  SearchConfig    `mapstructure:"search"`
	Scrape  enrich.Config   `mapstructure:"scrape"`
	Exclude ExcludeConfig   `mapstructure:"exclude"`
	Output  pipeline.Limits `mapstructure:"output"`
	Server  ServerConfig    `mapstructure:"server"`
	Storage StorageConfig   `mapstructure:"storage"`
}

type AIConfig struct {
	Provider string       `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key" json:"-"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxLogLength int           `mapstructure:"max-log-length" validate:"gte=0"`
}

type SearchConfig struct {
	APIKeyFile string              `mapstructure:"api-key-file"`
	Google     customsearch.Config `mapstructure:"google"`
	Query      query.Config        `mapstructure:"query"`
	Results    normalize.Config    `mapstructure:"results"`
}

type ExcludeConfig struct {
	Companies []string `mapstructure:"companies"`
	// File lists application URLs that were already handled, one per line.
	File string `mapstructure:"file"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type StorageConfig struct {
	S3 ingestion.S3Config `mapstructure:"s3"`
}

func setDefaults() {
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", 60*time.Second)
	viper.SetDefault("ai.gemini.max-log-length", 1000)

	viper.SetDefault("search.google.results-per-page", 10)
	viper.SetDefault("search.google.pages-per-query", 1)
	viper.SetDefault("search.google.page-delay", time.Second)
	viper.SetDefault("search.google.timeout", 15*time.Second)
	viper.SetDefault("search.query.max-skills", query.DefaultMaxSkills)
	viper.SetDefault("search.query.max-interests", query.DefaultMaxInterests)
	viper.SetDefault("search.results.vocabulary-skills", false)

	viper.SetDefault("scrape.enabled", false)
	viper.SetDefault("scrape.timeout", enrich.DefaultTimeout)
	viper.SetDefault("scrape.concurrency", enrich.DefaultConcurrency)

	viper.SetDefault("output.max-jobs", 20)
	viper.SetDefault("output.max-internships", 10)

	viper.SetDefault("server.address", ":8080")
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
