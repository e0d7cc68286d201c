package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/ai"
	"github.com/spigell/job-recommender/internal/ai/gemini"
	"github.com/spigell/job-recommender/internal/customsearch"
	"github.com/spigell/job-recommender/internal/enrich"
	"github.com/spigell/job-recommender/internal/filtering"
	"github.com/spigell/job-recommender/internal/ingestion"
	"github.com/spigell/job-recommender/internal/logger"
	"github.com/spigell/job-recommender/internal/normalize"
	"github.com/spigell/job-recommender/internal/pipeline"
	"github.com/spigell/job-recommender/internal/query"
	"github.com/spigell/job-recommender/internal/secrets"
)

// setup builds the logger and loads the config. Both failures are fatal.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-recommender", zap.String("version", version))

	// secrets are tagged json:"-"
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

func newExtractor(ctx context.Context, cfg AIConfig, log *zap.Logger) (ai.ProfileExtractor, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   envGeminiAPIKey,
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	if err != nil {
		return nil, err
	}

	extractor, err := gemini.NewExtractor(generator, logger.WithCommonFields(log.Named("extractor"), "gemini", generator.Model()), cfg.Gemini.MaxLogLength)
	if err != nil {
		return nil, err
	}
	return extractor, nil
}

func newSearcher(cfg SearchConfig, log *zap.Logger) (*customsearch.Client, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "google api key",
		File:  cfg.APIKeyFile,
		Value: cfg.Google.APIKey,
		Env:   envGoogleAPIKey,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Google.EngineID) == "" {
		return nil, errors.New("search engine id is not configured (set search.google.engine-id or SEARCH_ENGINE_ID)")
	}

	google := cfg.Google
	google.APIKey = apiKey

	return customsearch.New(logger.WithCommonFields(log.Named("search"), normalize.Provider, ""), google), nil
}

func newExclusions(cfg ExcludeConfig) ([]filtering.Filter, error) {
	file, err := filtering.NewExcludeFile(cfg.File)
	if err != nil {
		return nil, err
	}
	steps := []filtering.Filter{filtering.NewCompanies(cfg.Companies), file}
	if len(cfg.Companies) == 0 {
		filtering.DisableByName(steps, filtering.CompaniesName, "no companies configured")
	}
	if strings.TrimSpace(cfg.File) == "" {
		filtering.DisableByName(steps, filtering.ExcludeFileName, "exclude file is not set")
	}
	return steps, nil
}

// newPipeline wires every component. The extractor is optional unless withExtractor is
// set: without a model key the pipeline still serves manual profiles.
func newPipeline(ctx context.Context, cfg *Config, log *zap.Logger, withExtractor bool) (*pipeline.Pipeline, error) {
	searcher, err := newSearcher(cfg.Search, log)
	if err != nil {
		return nil, fmt.Errorf("job search: %w", err)
	}

	exclusions, err := newExclusions(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	for _, status := range filtering.Describe(exclusions) {
		log.Debug("exclusion",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	deps := pipeline.Deps{
		Builder:    query.NewBuilder(cfg.Search.Query),
		Searcher:   searcher,
		Normalizer: normalize.New(cfg.Search.Results, log.Named("normalize")),
		Enricher:   enrich.New(cfg.Scrape, log.Named("scrape")),
		Exclusions: exclusions,
		Logger:     log.Named("pipeline"),
	}

	extractor, err := newExtractor(ctx, cfg.AI, log)
	switch {
	case err == nil:
		deps.Extractor = extractor
	case withExtractor:
		return nil, fmt.Errorf("profile extractor: %w", err)
	default:
		log.Warn("resume extraction is disabled, only manual profiles are accepted", zap.Error(err))
	}

	return pipeline.New(deps, cfg.Output)
}

// newLoader creates a document loader. The S3 client is only built for s3:// locations.
func newLoader(ctx context.Context, cfg StorageConfig, location string, log *zap.Logger) (*ingestion.Loader, error) {
	if _, _, ok := ingestion.ParseS3URL(location); !ok {
		return ingestion.NewLoader(nil, log), nil
	}

	client, err := ingestion.NewS3Client(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	return ingestion.NewLoader(client, log), nil
}
