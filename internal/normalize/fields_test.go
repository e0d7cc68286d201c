package normalize

import (
	"testing"

	"github.com/spigell/job-recommender/internal/jobs"
)

func TestSanitizeLink(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                         "",
		"  ":                       "",
		"#":                        "",
		"None":                     "",
		"null":                     "",
		" https://example.com/a  ": "https://example.com/a",
	}

	for input, want := range tests {
		if got := SanitizeLink(input); got != want {
			t.Errorf("SanitizeLink(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSnippetFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		snippet string
		title   string
		salary  string
		loc     string
		company string
	}{
		{
			name:    "us style",
			snippet: "Join Initech Solutions in Austin, TX. $90,000 to 120,000 per year.",
			salary:  "$90,000 to 120,000 per year",
			loc:     "Austin, TX",
			company: "Initech Solutions",
		},
		{
			name:    "lpa",
			snippet: "Openings at Mumbai with 6-12 LPA",
			salary:  "6-12 LPA",
			loc:     "Mumbai",
		},
		{
			name:    "title company",
			title:   "Python Developer - Hooli",
			snippet: "great place",
			company: "Hooli",
		},
		{
			name:    "hyphenated title without separator",
			title:   "Front-end Developer",
			snippet: "nothing",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SalaryFromSnippet(tt.snippet); got != tt.salary {
				t.Errorf("salary = %q, want %q", got, tt.salary)
			}
			if got := LocationFromSnippet(tt.snippet); got != tt.loc {
				t.Errorf("location = %q, want %q", got, tt.loc)
			}
			company := CompanyFromTitle(tt.title)
			if company == "" {
				company = CompanyFromSnippet(tt.snippet)
			}
			if company != tt.company {
				t.Errorf("company = %q, want %q", company, tt.company)
			}
		})
	}
}

func TestIsInternship(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title    string
		platform jobs.Platform
		want     bool
	}{
		{"Software Engineering Intern", jobs.PlatformLinkedIn, true},
		{"Summer Internship 2025", jobs.PlatformOther, true},
		{"Graduate Trainee", jobs.PlatformIndeed, true},
		{"International Sales Manager", jobs.PlatformOther, false},
		{"Marketing Executive", jobs.PlatformInternshala, true},
		{"Senior Go Developer", jobs.PlatformNaukri, false},
	}

	for _, tt := range tests {
		if got := IsInternship(tt.title, tt.platform); got != tt.want {
			t.Errorf("IsInternship(%q, %s) = %v, want %v", tt.title, tt.platform, got, tt.want)
		}
	}
}

func TestVocabularyMatch(t *testing.T) {
	t.Parallel()

	v := NewVocabulary(DefaultVocabulary)

	got := v.Match("We maintain AI tooling in Python,\nPower  BI dashboards and SQL; JavaScript preferred.")
	want := []string{"python", "javascript", "sql", "ai", "power bi"}
	if len(got) != len(want) {
		t.Fatalf("Match() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Match() = %v, want %v", got, want)
		}
	}

	if got := v.Match("maintained email campaigns"); len(got) != 0 {
		t.Errorf("Match() matched inside words: %v", got)
	}

	var nilVocabulary *Vocabulary
	if got := nilVocabulary.Match("python"); len(got) != 0 {
		t.Errorf("nil vocabulary matched %v", got)
	}
}

func TestSplitSkills(t *testing.T) {
	t.Parallel()

	got := SplitSkills("Python, SQL; aws • python\nDocker ")
	want := []string{"python", "sql", "aws", "docker"}
	if len(got) != len(want) {
		t.Fatalf("SplitSkills() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SplitSkills() = %v, want %v", got, want)
		}
	}
}
