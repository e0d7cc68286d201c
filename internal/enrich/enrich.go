// Package enrich reads company, location and salary from live posting pages.
package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-recommender/internal/jobs"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultConcurrency = 4
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	maxPageSize = 2 << 20
)

// Config controls page scraping.
type Config struct {
	Enabled     bool          `mapstructure:"enabled"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency" validate:"gte=0"`
	UserAgent   string        `mapstructure:"user-agent"`
}

// Details are the values read from a posting page. Empty fields were not found.
type Details struct {
	Company  string
	Location string
	Salary   string
}

// Enricher scrapes posting pages.
type Enricher struct {
	cfg        Config
	logger     *zap.Logger
	HTTPClient *http.Client
}

// New creates an enricher, filling zero config values with defaults.
func New(cfg Config, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Enricher{
		cfg:        cfg,
		logger:     logger,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether scraping is switched on.
func (e *Enricher) Enabled() bool {
	return e != nil && e.cfg.Enabled
}

// Enrich returns the postings with scraped values overriding the provider ones.
// Postings whose page cannot be fetched or parsed are returned unchanged. The input
// postings are never modified.
func (e *Enricher) Enrich(ctx context.Context, postings []*jobs.Posting) []*jobs.Posting {
	result := append([]*jobs.Posting(nil), postings...)
	if !e.Enabled() || len(postings) == 0 {
		return result
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	enriched := 0
	found := make([]bool, len(postings))
	for i, posting := range postings {
		g.Go(func() error {
			details, err := e.Scrape(gCtx, posting.ApplicationURL, posting.Platform)
			if err != nil {
				e.logger.Debug("scrape failed, keeping listing data",
					zap.String("posting_id", posting.ID),
					zap.Error(err),
				)
				return nil
			}
			if details == (Details{}) {
				return nil
			}
			result[i] = apply(posting, details)
			found[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for _, ok := range found {
		if ok {
			enriched++
		}
	}
	e.logger.Debug("enriched postings", zap.Int("total", len(postings)), zap.Int("enriched", enriched))

	return result
}

// Scrape fetches the page and reads the details with the platform selectors.
func (e *Enricher) Scrape(ctx context.Context, pageURL string, platform jobs.Platform) (Details, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Details{}, fmt.Errorf("not an http url: %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Details{}, err
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return Details{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Details{}, fmt.Errorf("bad status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return Details{}, fmt.Errorf("parse page: %w", err)
	}

	return ParseDetails(platform, doc), nil
}

func apply(p *jobs.Posting, d Details) *jobs.Posting {
	cp := p.Clone()
	if d.Company != "" {
		cp.Company = d.Company
	}
	if d.Location != "" {
		cp.Location = d.Location
	}
	if d.Salary != "" {
		cp.Salary = d.Salary
	}
	return cp
}
