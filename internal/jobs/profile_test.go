package jobs

import (
	"reflect"
	"testing"
)

func TestNormalizeSkills(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  []string
		expect []string
	}{
		{
			name:   "lower-cases and trims",
			input:  []string{"  Python ", "SQL"},
			expect: []string{"python", "sql"},
		},
		{
			name:   "collapses duplicates keeping first order",
			input:  []string{"Go", "python", "go", "GO "},
			expect: []string{"go", "python"},
		},
		{
			name:   "collapses inner whitespace",
			input:  []string{"Machine   Learning", "machine learning"},
			expect: []string{"machine learning"},
		},
		{
			name:   "drops blanks",
			input:  []string{"", "   ", "aws"},
			expect: []string{"aws"},
		},
		{
			name:   "nil input",
			input:  nil,
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeSkills(tt.input); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestNewProfileNormalizesManualInput(t *testing.T) {
	profile := NewProfile(
		[]string{"Python", " python", "React"},
		[]string{"Data Scientist", "data scientist", " Backend  Developer "},
		[]string{"Berlin", "berlin", "", "Remote"},
		"Junior",
	)

	if !reflect.DeepEqual(profile.Skills, []string{"python", "react"}) {
		t.Fatalf("unexpected skills: %v", profile.Skills)
	}
	if !reflect.DeepEqual(profile.JobInterests, []string{"Data Scientist", "Backend Developer"}) {
		t.Fatalf("unexpected interests: %v", profile.JobInterests)
	}
	if !reflect.DeepEqual(profile.PreferredLocations, []string{"Berlin", "Remote"}) {
		t.Fatalf("unexpected locations: %v", profile.PreferredLocations)
	}
	if profile.ExperienceLevel != LevelEntry {
		t.Fatalf("expected entry level, got %q", profile.ExperienceLevel)
	}
}

func TestNewProfileAllowsEmptyFields(t *testing.T) {
	profile := NewProfile(nil, nil, nil, "")
	if !profile.IsEmpty() {
		t.Fatalf("expected empty profile")
	}

	var nilProfile *Profile
	if !nilProfile.IsEmpty() {
		t.Fatalf("expected nil profile to be empty")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" Python, React ,, Machine Learning ,")
	expect := []string{"Python", "React", "Machine Learning"}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}

	if got := SplitList("   "); len(got) != 0 {
		t.Fatalf("expected no values, got %v", got)
	}
}

func TestNormalizeLevel(t *testing.T) {
	cases := map[string]string{
		"Entry":   LevelEntry,
		" mid ":   LevelMid,
		"SENIOR":  LevelSenior,
		"lead":    LevelSenior,
		"wizard":  "",
		"":        "",
		"fresher": LevelEntry,
	}
	for input, expect := range cases {
		if got := NormalizeLevel(input); got != expect {
			t.Fatalf("NormalizeLevel(%q) = %q, expected %q", input, got, expect)
		}
	}
}
