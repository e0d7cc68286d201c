package jobs

import (
	"strings"
)

// Experience levels recognised in extracted and manual profiles.
const (
	LevelEntry  = "entry"
	LevelMid    = "mid"
	LevelSenior = "senior"
)

// ExperienceRange is an inclusive range of years of professional experience.
type ExperienceRange struct {
	Min float64 `json:"min_years"`
	Max float64 `json:"max_years"`
}

// Profile is the normalized candidate profile every downstream component works on.
// It is built once per run and never modified afterwards.
type Profile struct {
	Skills             []string         `json:"skills"`
	ExperienceYears    *ExperienceRange `json:"experience_years,omitempty"`
	ExperienceLevel    string           `json:"experience_level,omitempty"`
	JobInterests       []string         `json:"job_interests"`
	PreferredLocations []string         `json:"preferred_locations"`
}

// NewProfile builds a profile from manually entered fields, applying the same
// normalization rules as extraction. It does not reject empty skills.
func NewProfile(skills, interests, locations []string, level string) *Profile {
	return &Profile{
		Skills:             NormalizeSkills(skills),
		ExperienceLevel:    NormalizeLevel(level),
		JobInterests:       uniqueTrimmed(interests),
		PreferredLocations: uniqueTrimmed(locations),
	}
}

// IsEmpty reports whether the profile has nothing to search on.
func (p *Profile) IsEmpty() bool {
	return p == nil || (len(p.Skills) == 0 && len(p.JobInterests) == 0)
}

// SkillSet returns the profile skills as a lookup set.
func (p *Profile) SkillSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Skills))
	for _, skill := range p.Skills {
		set[skill] = struct{}{}
	}
	return set
}

// NormalizeSkill lower-cases a skill and collapses its whitespace.
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.Join(strings.Fields(skill), " "))
}

// NormalizeSkills normalizes every skill and drops empty entries and duplicates,
// keeping the first occurrence order.
func NormalizeSkills(skills []string) []string {
	result := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		normalized := NormalizeSkill(skill)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

// NormalizeLevel maps free-form level text onto one of the known levels.
// Unknown values yield an empty string.
func NormalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LevelEntry, "junior", "intern", "fresher", "entry-level", "entry level":
		return LevelEntry
	case LevelMid, "middle", "intermediate", "mid-level", "mid level":
		return LevelMid
	case LevelSenior, "lead", "principal", "staff", "senior-level", "senior level":
		return LevelSenior
	default:
		return ""
	}
}

// SplitList splits comma separated user input into trimmed non-empty values.
func SplitList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// uniqueTrimmed keeps the first spelling of every case-insensitively unique value.
func uniqueTrimmed(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.Join(strings.Fields(value), " ")
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
