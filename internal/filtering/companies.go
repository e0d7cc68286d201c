package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
)

// CompaniesName is the name of the company exclusion step.
const CompaniesName = "excluded_companies"

type companiesFilter struct {
	companies map[string]struct{}
	disabled  string
}

// NewCompanies creates a filter that removes postings from the configured companies.
// Company names are compared case-insensitively.
func NewCompanies(companies []string) Filter {
	set := make(map[string]struct{}, len(companies))
	for _, c := range companies {
		if c = normalizeCompany(c); c != "" {
			set[c] = struct{}{}
		}
	}
	return &companiesFilter{companies: set}
}

func (f *companiesFilter) Name() string { return CompaniesName }

func (f *companiesFilter) Disable(reason string) { f.disabled = reason }

func (f *companiesFilter) IsEnabled() bool { return f.disabled == "" }

func (f *companiesFilter) Apply(_ context.Context, deps Deps, postings []*jobs.Posting) ([]*jobs.Posting, Step, error) {
	initial := len(postings)
	if len(f.companies) == 0 {
		return postings, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	var excluded []string
	left, dropped := keep(postings, func(p *jobs.Posting) bool {
		if _, ok := f.companies[normalizeCompany(p.Company)]; ok {
			excluded = append(excluded, p.ID)
			return false
		}
		return true
	})

	if deps.Logger != nil && dropped > 0 {
		deps.Logger.Info("excluding postings based on companies",
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", len(left)),
		)
	}

	return left, Step{Initial: initial, Dropped: dropped, Left: len(left)}, nil
}

func (f *companiesFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.disabled,
		Details: map[string]string{"companies": itoa(len(f.companies))},
	}
}

func normalizeCompany(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
