package normalize

import (
	"regexp"
	"strings"

	"github.com/spigell/job-recommender/internal/jobs"
)

// DefaultVocabulary is the technical vocabulary searched in listings that carry no
// structured skill data.
var DefaultVocabulary = []string{
	"python", "java", "javascript", "react", "sql", "aws", "docker", "kubernetes", "git",
	"machine learning", "ai", "data analysis", "pandas", "numpy", "tensorflow", "pytorch",
	"tableau", "power bi", "agile", "scrum",
}

const maxVocabularySkills = 10

var (
	salaryPattern = regexp.MustCompile(
		`(\$|USD|EUR|₹|INR)?\s*([\d,]+\s*(?:to|-)?\s*[\d,]+)\s*(?:per|a)\s*(?:year|month|annum|hr|hour)` +
			`|(\d{1,3}(?:,\d{3})?(?:-\d{1,3}(?:,\d{3})?)?)\s*(LPA|lakh|crore)`)
	locationPattern   = regexp.MustCompile(`\b(?:in|at|near)\s+([A-Z][a-z]+(?:,\s*[A-Z]{2})?|[A-Z][a-z]+(?:,\s*[A-Z][a-z]+)*)`)
	companyPattern    = regexp.MustCompile(`(\w+ Inc\.|\w+ Corporation|\w+ Ltd\.|\w+ Solutions)`)
	internshipPattern = regexp.MustCompile(`(?i)\b(?:intern|interns|internship|internships|trainee|trainees)\b`)
	titleSeparators   = []string{" - ", " – ", " | "}
)

// SanitizeLink returns the trimmed link, or an empty string for placeholders
// such as "#" and "none".
func SanitizeLink(link string) string {
	cleaned := strings.TrimSpace(link)
	if cleaned == "#" || strings.EqualFold(cleaned, "none") || strings.EqualFold(cleaned, "null") {
		return ""
	}
	return cleaned
}

// SalaryFromSnippet finds a salary expression such as "50,000 per year" or "6 LPA".
func SalaryFromSnippet(snippet string) string {
	return strings.TrimSpace(salaryPattern.FindString(snippet))
}

// LocationFromSnippet finds a capitalized place name after "in", "at" or "near".
func LocationFromSnippet(snippet string) string {
	match := locationPattern.FindStringSubmatch(snippet)
	if match == nil {
		return ""
	}
	return match[1]
}

// CompanyFromTitle returns the last part of titles like "Python Developer - Acme".
func CompanyFromTitle(title string) string {
	for _, sep := range titleSeparators {
		if idx := strings.LastIndex(title, sep); idx >= 0 {
			if company := strings.TrimSpace(title[idx+len(sep):]); company != "" {
				return company
			}
		}
	}
	return ""
}

// CompanyFromSnippet finds names ending in Inc., Corporation, Ltd. or Solutions.
func CompanyFromSnippet(snippet string) string {
	return companyPattern.FindString(snippet)
}

// IsInternship reports whether a posting is an internship by its title or platform.
func IsInternship(title string, platform jobs.Platform) bool {
	return platform == jobs.PlatformInternshala || internshipPattern.MatchString(title)
}

// Vocabulary matches whole-word mentions of known skills in free text.
type Vocabulary struct {
	terms    []string
	patterns []*regexp.Regexp
}

// NewVocabulary compiles the terms after skill normalization.
func NewVocabulary(terms []string) *Vocabulary {
	normalized := jobs.NormalizeSkills(terms)
	v := &Vocabulary{
		terms:    normalized,
		patterns: make([]*regexp.Regexp, 0, len(normalized)),
	}
	for _, term := range normalized {
		phrase := strings.ReplaceAll(regexp.QuoteMeta(term), " ", `\s+`)
		v.patterns = append(v.patterns, regexp.MustCompile(`(?i)(?:^|[^\pL\pN])`+phrase+`(?:$|[^\pL\pN])`))
	}
	return v
}

// Match returns the mentioned terms in vocabulary order, at most ten.
func (v *Vocabulary) Match(text string) []string {
	found := []string{}
	if v == nil {
		return found
	}
	for i, pattern := range v.patterns {
		if len(found) == maxVocabularySkills {
			break
		}
		if pattern.MatchString(text) {
			found = append(found, v.terms[i])
		}
	}
	return found
}

// SplitSkills splits a structured skills field on commas, semicolons and bullets.
func SplitSkills(field string) []string {
	parts := strings.FieldsFunc(field, func(r rune) bool {
		return r == ',' || r == ';' || r == '•' || r == '\n'
	})
	return jobs.NormalizeSkills(parts)
}
