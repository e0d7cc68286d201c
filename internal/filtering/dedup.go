package filtering

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/job-recommender/internal/jobs"
)

// DedupName is the name of the de-duplication step.
const DedupName = "dedup"

type dedupFilter struct{}

// NewDedup creates a filter that collapses postings with the same title, company and
// application URL. The first-seen posting is kept and the location tags of its
// duplicates are appended to its Locations. Postings sharing an ID with an earlier,
// different posting get a numeric suffix so IDs stay unique.
func NewDedup() Filter {
	return &dedupFilter{}
}

func (f *dedupFilter) Name() string { return DedupName }

func (f *dedupFilter) Disable(string) {}

func (f *dedupFilter) IsEnabled() bool { return true }

func (f *dedupFilter) Apply(_ context.Context, _ Deps, postings []*jobs.Posting) ([]*jobs.Posting, Step, error) {
	result := Dedup(postings)
	return result, Step{Initial: len(postings), Dropped: len(postings) - len(result), Left: len(result)}, nil
}

// DedupKey identifies a posting across provider calls.
func DedupKey(p *jobs.Posting) string {
	return strings.ToLower(strings.TrimSpace(p.Title)) + "|" +
		strings.ToLower(strings.TrimSpace(p.Company)) + "|" +
		strings.TrimSpace(p.ApplicationURL)
}

// Dedup runs once over the concatenated result set. Running it on its own output
// returns an equal set.
func Dedup(postings []*jobs.Posting) []*jobs.Posting {
	result := make([]*jobs.Posting, 0, len(postings))
	byKey := make(map[string]int, len(postings))
	ids := make(map[string]struct{}, len(postings))
	merged := make(map[int]bool)

	for _, p := range postings {
		key := DedupKey(p)
		if idx, ok := byKey[key]; ok {
			if !merged[idx] {
				result[idx] = result[idx].Clone()
				merged[idx] = true
			}
			result[idx].Locations = appendMissing(result[idx].Locations, p.Locations...)
			continue
		}

		if _, taken := ids[p.ID]; taken && p.ID != "" {
			p = p.Clone()
			p.ID = uniqueID(p.ID, ids)
		}
		ids[p.ID] = struct{}{}

		byKey[key] = len(result)
		result = append(result, p)
	}

	return result
}

func uniqueID(id string, taken map[string]struct{}) string {
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

func appendMissing(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if strings.EqualFold(existing, v) {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
