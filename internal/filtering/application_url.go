package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
)

// ApplicationURLName is the name of the step dropping postings nobody can apply to.
const ApplicationURLName = "application_url"

type applicationURLFilter struct{}

// NewApplicationURL creates a filter that removes postings without an application URL.
func NewApplicationURL() Filter {
	return &applicationURLFilter{}
}

func (f *applicationURLFilter) Name() string { return ApplicationURLName }

func (f *applicationURLFilter) Disable(string) {}

func (f *applicationURLFilter) IsEnabled() bool { return true }

func (f *applicationURLFilter) Apply(_ context.Context, deps Deps, postings []*jobs.Posting) ([]*jobs.Posting, Step, error) {
	initial := len(postings)
	left, dropped := keep(postings, func(p *jobs.Posting) bool {
		return p.ApplicationURL != ""
	})

	if deps.Logger != nil && dropped > 0 {
		deps.Logger.Debug("skipping postings without application url", zap.Int("skipped", dropped))
	}

	return left, Step{Initial: initial, Dropped: dropped, Left: len(left)}, nil
}
