// Package pipeline runs one recommendation: profile extraction, query building,
// provider search, normalization, optional enrichment, scoring and ranking.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spigell/job-recommender/internal/ai"
	"github.com/spigell/job-recommender/internal/filtering"
	"github.com/spigell/job-recommender/internal/ingestion"
	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/logger"
	"github.com/spigell/job-recommender/internal/normalize"
	"github.com/spigell/job-recommender/internal/query"
	"github.com/spigell/job-recommender/internal/ranking"
	"github.com/spigell/job-recommender/internal/scoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Searcher fetches every page of provider results for a single query.
type Searcher interface {
	SearchPages(ctx context.Context, q jobs.Query) ([]normalize.Batch, error)
}

// Enricher adds details to normalized postings. Implementations must not mutate their input.
type Enricher interface {
	Enabled() bool
	Enrich(ctx context.Context, postings []*jobs.Posting) []*jobs.Posting
}

// Limits caps the presented lists. Zero or negative means unlimited.
type Limits struct {
	MaxJobs        int `mapstructure:"max-jobs" validate:"gte=0"`
	MaxInternships int `mapstructure:"max-internships" validate:"gte=0"`
}

// Deps holds the pipeline components. Extractor may be nil for manual-only use and
// Enricher may be nil when scraping is off. Exclusions run after enrichment, so they
// see scraped company names.
type Deps struct {
	Extractor  ai.ProfileExtractor
	Builder    *query.Builder
	Searcher   Searcher
	Normalizer *normalize.Normalizer
	Enricher   Enricher
	Exclusions []filtering.Filter
	Logger     *zap.Logger
}

// Pipeline is safe for concurrent runs; it holds no per-run state.
type Pipeline struct {
	extractor  ai.ProfileExtractor
	builder    *query.Builder
	searcher   Searcher
	normalizer *normalize.Normalizer
	enricher   Enricher
	exclusions []filtering.Filter
	limits     Limits
	logger     *zap.Logger
}

// Result is everything one run produced, ready for presentation.
type Result struct {
	RunID       string                `json:"run_id"`
	Profile     *jobs.Profile         `json:"profile"`
	Queries     []jobs.Query          `json:"queries"`
	Ranked      []*jobs.ScoredPosting `json:"-"`
	Jobs        []*jobs.ScoredPosting `json:"jobs"`
	Internships []*jobs.ScoredPosting `json:"internships"`
	Stats       normalize.Stats       `json:"stats"`
}

func New(deps Deps, limits Limits) (*Pipeline, error) {
	if deps.Builder == nil {
		return nil, errors.New("query builder is required")
	}
	if deps.Searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if deps.Normalizer == nil {
		return nil, errors.New("normalizer is required")
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Pipeline{
		extractor:  deps.Extractor,
		builder:    deps.Builder,
		searcher:   deps.Searcher,
		normalizer: deps.Normalizer,
		enricher:   deps.Enricher,
		exclusions: deps.Exclusions,
		limits:     limits,
		logger:     log,
	}, nil
}

// Extract turns resume text into a profile. It never retries.
func (p *Pipeline) Extract(ctx context.Context, text string) (*jobs.Profile, error) {
	if p.extractor == nil {
		return nil, &jobs.ExtractionFailure{Reason: "resume extraction is not configured"}
	}
	return p.extractor.Extract(ctx, text)
}

// ExtractDocument reads the text of an uploaded document and extracts a profile from it.
func (p *Pipeline) ExtractDocument(ctx context.Context, doc *ingestion.Document) (*jobs.Profile, error) {
	text, err := DocumentText(doc)
	if err != nil {
		return nil, err
	}
	return p.Extract(ctx, text)
}

// DocumentText returns the cleaned document text. Unreadable or unsupported documents
// are reported as ExtractionFailure so callers can offer manual entry.
func DocumentText(doc *ingestion.Document) (string, error) {
	if doc == nil {
		return "", &jobs.ExtractionFailure{Reason: "no resume document given"}
	}

	text, err := doc.Text()
	if err != nil {
		reason := "resume document could not be read"
		if errors.Is(err, ingestion.ErrUnsupportedFormat) {
			reason = "resume must be a PDF, DOCX or plain text file"
		}
		return "", &jobs.ExtractionFailure{Reason: reason, Cause: err}
	}
	return text, nil
}

// FromResume runs the full pipeline starting from resume text.
func (p *Pipeline) FromResume(ctx context.Context, text string) (*Result, error) {
	profile, err := p.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	return p.FromProfile(ctx, profile)
}

// FromDocument runs the full pipeline starting from an uploaded document.
func (p *Pipeline) FromDocument(ctx context.Context, doc *ingestion.Document) (*Result, error) {
	profile, err := p.ExtractDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	return p.FromProfile(ctx, profile)
}

// FromProfile runs the search, scoring and ranking steps for an already normalized profile.
func (p *Pipeline) FromProfile(ctx context.Context, profile *jobs.Profile) (*Result, error) {
	runID := uuid.NewString()
	log := logger.WithRunID(p.logger, runID)

	queries, err := p.builder.Build(profile, "")
	if err != nil {
		return nil, err
	}
	log.Info("built search queries", zap.Int("count", len(queries)))

	batches, err := p.search(ctx, queries, log)
	if err != nil {
		return nil, err
	}

	postings, stats, err := p.normalizer.Normalize(ctx, batches)
	if err != nil {
		return nil, err
	}
	log.Info("normalized postings", zap.Int("count", len(postings)), zap.Int("received", stats.Received))

	if p.enricher != nil && p.enricher.Enabled() {
		postings = p.enricher.Enrich(ctx, postings)
		log.Debug("enriched postings", zap.Int("count", len(postings)))
	}

	postings, reports, err := filtering.Run(ctx, filtering.Deps{Logger: log}, p.exclusions, postings)
	if err != nil {
		return nil, fmt.Errorf("exclude postings: %w", err)
	}
	for _, r := range reports {
		stats.Excluded += r.Dropped
	}
	stats.Emitted = len(postings)

	ranked := ranking.Rank(scoring.ScoreAll(profile, postings))
	regular, internships := ranking.Partition(ranked, p.limits.MaxJobs, p.limits.MaxInternships)

	log.Info("ranked postings",
		zap.Int("jobs", len(regular)),
		zap.Int("internships", len(internships)),
	)

	return &Result{
		RunID:       runID,
		Profile:     profile,
		Queries:     queries,
		Ranked:      ranked,
		Jobs:        regular,
		Internships: internships,
		Stats:       stats,
	}, nil
}

// search runs every query concurrently and returns the batches in query order, so
// discovery order does not depend on which call finished first. The first failing
// query cancels the rest and fails the run.
func (p *Pipeline) search(ctx context.Context, queries []jobs.Query, log *zap.Logger) ([]normalize.Batch, error) {
	results := make([][]normalize.Batch, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			batches, err := p.searcher.SearchPages(gctx, q)
			if err != nil {
				log.Warn("search failed", zap.String("location", q.Location), zap.Error(err))
				return err
			}
			log.Debug("search finished", zap.String("location", q.Location), zap.Int("pages", len(batches)))
			results[i] = batches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []normalize.Batch
	for _, batches := range results {
		merged = append(merged, batches...)
	}
	return merged, nil
}

// Len returns the number of presented postings.
func (r *Result) Len() int {
	return len(r.Jobs) + len(r.Internships)
}

// DumpToTmpFile writes the result as indented JSON to a new temporary file and returns its name.
func (r *Result) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "recommendations_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return file.Name(), nil
}
