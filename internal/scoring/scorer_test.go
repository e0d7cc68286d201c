package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-recommender/internal/jobs"
)

func TestScorePartialMatch(t *testing.T) {
	profile := jobs.NewProfile([]string{"python", "sql"}, nil, nil, "")
	posting := &jobs.Posting{ID: "1", RequiredSkills: []string{"python", "sql", "aws"}}

	scored := Score(profile, posting)

	assert.InDelta(t, 2.0/3.0, scored.Score, 1e-9)
	assert.Equal(t, []string{"python", "sql"}, scored.MatchedSkills)
	assert.Equal(t, []string{"aws"}, scored.MissingSkills)
	assert.Equal(t, "Matches 2 of 3 required skills (e.g., python, sql); missing: aws.", scored.Rationale)
	assert.Same(t, posting, scored.Posting)
}

func TestScoreUnknownSkills(t *testing.T) {
	profile := jobs.NewProfile([]string{"go"}, nil, nil, "")

	for _, required := range [][]string{nil, {}, {"  ", ""}} {
		scored := Score(profile, &jobs.Posting{RequiredSkills: required})
		assert.Equal(t, 0.5, scored.Score)
		assert.Empty(t, scored.MatchedSkills)
		assert.Empty(t, scored.MissingSkills)
		assert.Equal(t, UnknownSkillsRationale, scored.Rationale)
	}
}

func TestScoreNormalizesRequiredSkills(t *testing.T) {
	profile := jobs.NewProfile([]string{"Docker"}, nil, nil, "")
	scored := Score(profile, &jobs.Posting{RequiredSkills: []string{" DOCKER", "docker"}})

	assert.Equal(t, 1.0, scored.Score)
	assert.Equal(t, "Matches 1 of 1 required skills (e.g., docker).", scored.Rationale)
}

func TestScoreNoMatch(t *testing.T) {
	profile := jobs.NewProfile([]string{"java"}, nil, nil, "")
	scored := Score(profile, &jobs.Posting{RequiredSkills: []string{"go", "rust", "c"}})

	assert.Equal(t, 0.0, scored.Score)
	assert.Equal(t, "Matches 0 of 3 required skills; missing: go, rust.", scored.Rationale)
}

func TestScoreBoundsAndFullMatchProperty(t *testing.T) {
	vocabulary := []string{"go", "sql", "aws", "docker", "react"}

	// Walk every candidate/required subset pair of the vocabulary.
	for c := 0; c < 1<<len(vocabulary); c++ {
		for r := 1; r < 1<<len(vocabulary); r++ {
			candidate := subset(vocabulary, c)
			required := subset(vocabulary, r)

			scored := Score(jobs.NewProfile(candidate, nil, nil, ""), &jobs.Posting{RequiredSkills: required})

			require.GreaterOrEqual(t, scored.Score, 0.0)
			require.LessOrEqual(t, scored.Score, 1.0)

			isSubset := r&c == r
			require.Equal(t, isSubset, scored.Score == 1.0, "candidate=%v required=%v", candidate, required)
			require.Equal(t, len(required), len(scored.MatchedSkills)+len(scored.MissingSkills))
			require.Equal(t, Rationale(scored.MatchedSkills, scored.MissingSkills), scored.Rationale)
			require.False(t, math.IsNaN(scored.Score))
		}
	}
}

func TestRationaleLimitsExamples(t *testing.T) {
	got := Rationale([]string{"a", "b", "c", "d"}, []string{"e", "f", "g"})
	assert.Equal(t, "Matches 4 of 7 required skills (e.g., a, b, c); missing: e, f.", got)
}

func TestScoreAllKeepsOrder(t *testing.T) {
	profile := jobs.NewProfile([]string{"go"}, nil, nil, "")
	postings := []*jobs.Posting{{ID: "a"}, {ID: "b", RequiredSkills: []string{"go"}}, {ID: "c"}}

	scored := ScoreAll(profile, postings)
	require.Len(t, scored, 3)
	for i, s := range scored {
		assert.Equal(t, postings[i].ID, s.Posting.ID)
	}
}

func subset(values []string, mask int) []string {
	result := []string{}
	for i, v := range values {
		if mask&(1<<i) != 0 {
			result = append(result, v)
		}
	}
	return result
}
