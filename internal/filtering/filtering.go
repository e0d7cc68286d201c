package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
)

// Filter represents a single filtering step applied to normalized postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, postings []*jobs.Posting) ([]*jobs.Posting, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Report is a step result tagged with the filter name.
type Report struct {
	Name string
	Step
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the remaining postings
// together with a report for every enabled step.
func Run(ctx context.Context, deps Deps, steps []Filter, postings []*jobs.Posting) ([]*jobs.Posting, []Report, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reports := make([]Report, 0, len(steps))
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		next, info, err := step.Apply(ctx, deps, postings)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		postings = next
		reports = append(reports, Report{Name: step.Name(), Step: info})
	}

	return postings, reports, nil
}

// Dropped returns how many postings the named step removed, or zero if it did not run.
func Dropped(reports []Report, name string) int {
	for _, r := range reports {
		if r.Name == name {
			return r.Dropped
		}
	}
	return 0
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns the postings accepted by fn and the number of dropped ones.
func keep(postings []*jobs.Posting, fn func(*jobs.Posting) bool) ([]*jobs.Posting, int) {
	result := make([]*jobs.Posting, 0, len(postings))
	for _, p := range postings {
		if fn(p) {
			result = append(result, p)
		}
	}
	return result, len(postings) - len(result)
}
