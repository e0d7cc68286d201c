// Package ranking orders scored postings for presentation.
package ranking

import (
	"sort"

	"github.com/spigell/job-recommender/internal/jobs"
)

// Rank returns a new slice ordered by score, then matched skill count, then platform
// priority. Postings that tie on all three keep their discovery order.
func Rank(scored []*jobs.ScoredPosting) []*jobs.ScoredPosting {
	ranked := append([]*jobs.ScoredPosting(nil), scored...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})
	return ranked
}

func less(a, b *jobs.ScoredPosting) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if len(a.MatchedSkills) != len(b.MatchedSkills) {
		return len(a.MatchedSkills) > len(b.MatchedSkills)
	}
	return a.Posting.Platform.Priority() < b.Posting.Platform.Priority()
}

// Partition splits ranked postings into jobs and internships, keeping the order and
// capping each list. A non-positive cap means no limit.
func Partition(ranked []*jobs.ScoredPosting, maxJobs, maxInternships int) (regular, internships []*jobs.ScoredPosting) {
	regular = []*jobs.ScoredPosting{}
	internships = []*jobs.ScoredPosting{}

	for _, sp := range ranked {
		if sp.Posting.Kind == jobs.KindInternship {
			if maxInternships <= 0 || len(internships) < maxInternships {
				internships = append(internships, sp)
			}
			continue
		}
		if maxJobs <= 0 || len(regular) < maxJobs {
			regular = append(regular, sp)
		}
	}

	return regular, internships
}
