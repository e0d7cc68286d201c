// Package query turns a candidate profile into job-search provider queries.
package query

import (
	"sort"
	"strings"

	"github.com/spigell/job-recommender/internal/jobs"
)

const (
	// DefaultMaxSkills keeps the keyword list well under the provider's 32-term query limit.
	DefaultMaxSkills = 5
	// DefaultMaxInterests is the number of job titles added after the skills.
	DefaultMaxInterests = 3
)

// Config controls keyword selection.
type Config struct {
	MaxSkills    int `mapstructure:"max-skills"`
	MaxInterests int `mapstructure:"max-interests"`
}

// Builder builds search queries from profiles.
type Builder struct {
	maxSkills    int
	maxInterests int
}

func NewBuilder(cfg Config) *Builder {
	if cfg.MaxSkills <= 0 {
		cfg.MaxSkills = DefaultMaxSkills
	}
	if cfg.MaxInterests <= 0 {
		cfg.MaxInterests = DefaultMaxInterests
	}

	return &Builder{
		maxSkills:    cfg.MaxSkills,
		maxInterests: cfg.MaxInterests,
	}
}

// Build returns one query per preferred location, or a single global query when the
// profile has no locations. pageToken is copied into every query.
func (b *Builder) Build(profile *jobs.Profile, pageToken string) ([]jobs.Query, error) {
	if profile.IsEmpty() {
		return nil, &jobs.EmptyProfileError{}
	}

	keywords := b.Keywords(profile)
	if len(keywords) == 0 {
		return nil, &jobs.EmptyProfileError{}
	}

	if len(profile.PreferredLocations) == 0 {
		return []jobs.Query{{Keywords: keywords, PageToken: pageToken}}, nil
	}

	queries := make([]jobs.Query, 0, len(profile.PreferredLocations))
	for _, location := range profile.PreferredLocations {
		queries = append(queries, jobs.Query{
			Keywords:  append([]string(nil), keywords...),
			Location:  location,
			PageToken: pageToken,
		})
	}

	return queries, nil
}

// Keywords picks the most specific skills followed by the first job interests.
func (b *Builder) Keywords(profile *jobs.Profile) []string {
	skills := BySpecificity(profile.Skills)
	if len(skills) > b.maxSkills {
		skills = skills[:b.maxSkills]
	}

	keywords := make([]string, 0, len(skills)+b.maxInterests)
	seen := make(map[string]struct{}, cap(keywords))
	add := func(value string) {
		value = strings.TrimSpace(value)
		key := strings.ToLower(value)
		if value == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keywords = append(keywords, value)
	}

	for _, skill := range skills {
		add(skill)
	}

	added := 0
	for _, interest := range profile.JobInterests {
		if added == b.maxInterests {
			break
		}
		before := len(keywords)
		add(interest)
		if len(keywords) > before {
			added++
		}
	}

	return keywords
}

// BySpecificity orders multi-word skill phrases before single words, keeping the
// original order inside each group.
func BySpecificity(skills []string) []string {
	ordered := append([]string(nil), skills...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return isPhrase(ordered[i]) && !isPhrase(ordered[j])
	})
	return ordered
}

func isPhrase(skill string) bool {
	return len(strings.Fields(skill)) > 1
}
