package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/filtering"
	"github.com/spigell/job-recommender/internal/jobs"
)

// Config controls the field-level fallbacks.
type Config struct {
	// VocabularySkills fills required skills from vocabulary mentions when a listing
	// carries no structured skills.
	VocabularySkills bool     `mapstructure:"vocabulary-skills"`
	Vocabulary       []string `mapstructure:"vocabulary"`
}

// Batch is one decoded provider page together with the query that produced it.
type Batch struct {
	Query    jobs.Query
	Envelope *Envelope
}

// Stats counts what happened to the received items. Skipped items are never surfaced
// to the user. Excluded is filled by the caller that runs the exclusion filters.
type Stats struct {
	Received   int `json:"received"`
	Skipped    int `json:"skipped"`
	MissingURL int `json:"missing_url"`
	Duplicates int `json:"duplicates"`
	Excluded   int `json:"excluded"`
	Emitted    int `json:"emitted"`
}

// Normalizer converts decoded provider pages into postings.
type Normalizer struct {
	cfg        Config
	vocabulary *Vocabulary
	logger     *zap.Logger
}

// New creates a normalizer.
func New(cfg Config, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	terms := cfg.Vocabulary
	if len(terms) == 0 {
		terms = DefaultVocabulary
	}

	return &Normalizer{
		cfg:        cfg,
		vocabulary: NewVocabulary(terms),
		logger:     logger,
	}
}

// Normalize converts every item of every batch in order, drops postings without an
// application URL and de-duplicates the concatenated set once.
// Zero items give an empty, non-nil result.
func (n *Normalizer) Normalize(ctx context.Context, batches []Batch) ([]*jobs.Posting, Stats, error) {
	var stats Stats
	postings := make([]*jobs.Posting, 0)

	for _, batch := range batches {
		if batch.Envelope == nil {
			continue
		}
		stats.Skipped += batch.Envelope.Skipped
		stats.Received += len(batch.Envelope.Items) + batch.Envelope.Skipped
		for _, item := range batch.Envelope.Items {
			postings = append(postings, n.Posting(item, batch.Query))
		}
	}

	steps := []filtering.Filter{filtering.NewApplicationURL(), filtering.NewDedup()}
	result, reports, err := filtering.Run(ctx, filtering.Deps{Logger: n.logger}, steps, postings)
	if err != nil {
		return nil, stats, fmt.Errorf("filter postings: %w", err)
	}

	stats.MissingURL = filtering.Dropped(reports, filtering.ApplicationURLName)
	stats.Duplicates = filtering.Dropped(reports, filtering.DedupName)
	stats.Emitted = len(result)

	n.logger.Debug("normalized postings",
		zap.Int("received", stats.Received),
		zap.Int("skipped", stats.Skipped),
		zap.Int("missing_url", stats.MissingURL),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("emitted", stats.Emitted),
	)

	return result, stats, nil
}

// Posting maps one item onto a posting, falling back field by field. Unknown text
// fields are left empty. The returned posting may lack an application URL.
func (n *Normalizer) Posting(item Item, query jobs.Query) *jobs.Posting {
	link := SanitizeLink(item.Link)
	meta := firstJobPosting(item.PageMap)
	snippet := collapse(item.Snippet)
	title := firstNonEmpty(collapse(item.Title), collapse(meta.Title))
	platform := jobs.DetectPlatform(link)

	p := &jobs.Posting{
		ID:             postingID(item.CacheID, link),
		Title:          title,
		Snippet:        snippet,
		ApplicationURL: link,
		Platform:       platform,
		Source:         jobs.SourceHost(link),
		Kind:           jobs.KindJob,
		RequiredSkills: SplitSkills(meta.Skills),
	}

	p.Company = firstNonEmpty(
		collapse(meta.HiringOrganization),
		collapse(metaTag(item.PageMap, "og:site_name")),
		CompanyFromTitle(title),
		CompanyFromSnippet(snippet),
	)
	p.Location = firstNonEmpty(
		collapse(meta.JobLocation),
		LocationFromSnippet(snippet),
		query.Location,
	)
	p.Salary = firstNonEmpty(collapse(meta.BaseSalary), SalaryFromSnippet(snippet))

	if query.Location != "" {
		p.Locations = []string{query.Location}
	}
	if len(p.RequiredSkills) == 0 && n.cfg.VocabularySkills {
		p.RequiredSkills = n.vocabulary.Match(title + "\n" + snippet)
	}
	if IsInternship(title, platform) {
		p.Kind = jobs.KindInternship
	}

	return p
}

// postingID prefers the provider id and otherwise derives a stable id from the link.
func postingID(cacheID, link string) string {
	if id := strings.TrimSpace(cacheID); id != "" {
		return id
	}
	if link == "" {
		return ""
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
}

func firstJobPosting(pm PageMap) JobPostingMeta {
	if len(pm.JobPosting) == 0 {
		return JobPostingMeta{}
	}
	return pm.JobPosting[0]
}

func metaTag(pm PageMap, name string) string {
	for _, tags := range pm.MetaTags {
		if value, ok := tags[name]; ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
