// Package scoring computes explainable set-overlap compatibility between a profile and postings.
package scoring

import (
	"fmt"
	"strings"

	"github.com/spigell/job-recommender/internal/jobs"
)

const (
	// UnknownSkillsScore is used when a listing carries no skill data.
	UnknownSkillsScore = 0.5
	// UnknownSkillsRationale accompanies UnknownSkillsScore.
	UnknownSkillsRationale = "Skill data unavailable from listing; manual review recommended."

	maxMatchedExamples = 3
	maxMissingExamples = 2
)

// Score compares the profile skills with the posting required skills.
func Score(profile *jobs.Profile, posting *jobs.Posting) *jobs.ScoredPosting {
	required := jobs.NormalizeSkills(posting.RequiredSkills)
	if len(required) == 0 {
		return &jobs.ScoredPosting{
			Posting:       posting,
			Score:         UnknownSkillsScore,
			MatchedSkills: []string{},
			MissingSkills: []string{},
			Rationale:     UnknownSkillsRationale,
		}
	}

	candidate := map[string]struct{}{}
	if profile != nil {
		candidate = profile.SkillSet()
	}

	matched := make([]string, 0, len(required))
	missing := make([]string, 0, len(required))
	for _, skill := range required {
		if _, ok := candidate[skill]; ok {
			matched = append(matched, skill)
			continue
		}
		missing = append(missing, skill)
	}

	return &jobs.ScoredPosting{
		Posting:       posting,
		Score:         clamp(float64(len(matched)) / float64(len(required))),
		MatchedSkills: matched,
		MissingSkills: missing,
		Rationale:     Rationale(matched, missing),
	}
}

// ScoreAll scores every posting in discovery order.
func ScoreAll(profile *jobs.Profile, postings []*jobs.Posting) []*jobs.ScoredPosting {
	scored := make([]*jobs.ScoredPosting, 0, len(postings))
	for _, posting := range postings {
		scored = append(scored, Score(profile, posting))
	}
	return scored
}

// Rationale renders the explanation from the matched and missing skills alone.
// matched and missing together make up the required skills.
func Rationale(matched, missing []string) string {
	total := len(matched) + len(missing)
	if total == 0 {
		return UnknownSkillsRationale
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Matches %d of %d required skills", len(matched), total)
	if len(matched) > 0 {
		fmt.Fprintf(&b, " (e.g., %s)", strings.Join(head(matched, maxMatchedExamples), ", "))
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "; missing: %s", strings.Join(head(missing, maxMissingExamples), ", "))
	}
	b.WriteString(".")

	return b.String()
}

func head(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
