package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-recommender/internal/jobs"
)

func TestBuildSingleGlobalQuery(t *testing.T) {
	builder := NewBuilder(Config{})
	profile := jobs.NewProfile([]string{"Python", "SQL"}, []string{"Data Analyst"}, nil, "")

	queries, err := builder.Build(profile, "")
	require.NoError(t, err)
	require.Len(t, queries, 1)

	assert.Equal(t, []string{"python", "sql", "Data Analyst"}, queries[0].Keywords)
	assert.Empty(t, queries[0].Location)
	assert.Empty(t, queries[0].PageToken)
}

func TestBuildFansOutPerLocation(t *testing.T) {
	builder := NewBuilder(Config{})
	profile := jobs.NewProfile([]string{"go"}, nil, []string{"Berlin", "Remote", "berlin"}, "")

	queries, err := builder.Build(profile, "11")
	require.NoError(t, err)
	require.Len(t, queries, 2)

	assert.Equal(t, "Berlin", queries[0].Location)
	assert.Equal(t, "Remote", queries[1].Location)
	for _, q := range queries {
		assert.Equal(t, []string{"go"}, q.Keywords)
		assert.Equal(t, "11", q.PageToken)
	}

	queries[0].Keywords[0] = "mutated"
	assert.Equal(t, "go", queries[1].Keywords[0], "queries must not share keyword slices")
}

func TestKeywordsPreferSpecificSkillsAndLimit(t *testing.T) {
	builder := NewBuilder(Config{MaxSkills: 3, MaxInterests: 1})
	profile := jobs.NewProfile(
		[]string{"python", "sql", "machine learning", "aws", "power bi"},
		[]string{"ML Engineer", "Data Scientist"},
		nil,
		"",
	)

	assert.Equal(t, []string{"machine learning", "power bi", "python", "ML Engineer"}, builder.Keywords(profile))
}

func TestKeywordsFallBackToSkillsWithoutInterests(t *testing.T) {
	builder := NewBuilder(Config{})
	profile := jobs.NewProfile([]string{"react", "typescript"}, nil, nil, "")

	assert.Equal(t, []string{"react", "typescript"}, builder.Keywords(profile))
}

func TestKeywordsUseInterestsWhenSkillsAreEmpty(t *testing.T) {
	builder := NewBuilder(Config{})
	profile := jobs.NewProfile(nil, []string{"Product Manager"}, nil, "")

	queries, err := builder.Build(profile, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Product Manager"}, queries[0].Keywords)
}

func TestKeywordsSkipInterestsDuplicatingSkills(t *testing.T) {
	builder := NewBuilder(Config{MaxInterests: 1})
	profile := jobs.NewProfile([]string{"devops"}, []string{"DevOps", "SRE"}, nil, "")

	assert.Equal(t, []string{"devops", "SRE"}, builder.Keywords(profile))
}

func TestBuildFailsOnEmptyProfile(t *testing.T) {
	builder := NewBuilder(Config{})

	_, err := builder.Build(jobs.NewProfile(nil, nil, []string{"Berlin"}, ""), "")
	var empty *jobs.EmptyProfileError
	require.True(t, errors.As(err, &empty))

	_, err = builder.Build(nil, "")
	require.True(t, errors.As(err, &empty))
}

func TestBuildNeverFailsWithSkills(t *testing.T) {
	builder := NewBuilder(Config{MaxSkills: 2, MaxInterests: 2})

	for n := 1; n <= 12; n++ {
		skills := make([]string, 0, n)
		for i := 0; i < n; i++ {
			skills = append(skills, fmt.Sprintf("skill %d", i))
		}
		for _, locations := range [][]string{nil, {"Pune"}, {"Pune", "Delhi"}} {
			queries, err := builder.Build(jobs.NewProfile(skills, nil, locations, ""), "")
			require.NoError(t, err)
			require.NotEmpty(t, queries)
			for _, q := range queries {
				require.NotEmpty(t, q.Keywords)
			}
		}
	}
}

func TestBySpecificityIsStable(t *testing.T) {
	got := BySpecificity([]string{"go", "data analysis", "sql", "machine learning", "aws"})
	assert.Equal(t, []string{"data analysis", "machine learning", "go", "sql", "aws"}, got)
}
