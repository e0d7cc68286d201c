package ai

import (
	"context"

	"github.com/spigell/job-recommender/internal/jobs"
)

// ProfileExtractor turns raw resume text into a candidate profile.
// Implementations fail with *jobs.ExtractionFailure or *jobs.ExternalCallTimeout.
type ProfileExtractor interface {
	Extract(ctx context.Context, text string) (*jobs.Profile, error)
}
