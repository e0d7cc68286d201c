package normalize

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spigell/job-recommender/internal/filtering"
	"github.com/spigell/job-recommender/internal/jobs"
)

func TestNormalizeFieldFallbacks(t *testing.T) {
	env := loadPage(t)
	n := New(Config{VocabularySkills: true}, zaptest.NewLogger(t))

	postings, stats, err := n.Normalize(context.Background(), []Batch{{Query: jobs.Query{Keywords: []string{"python"}}, Envelope: env}})
	require.NoError(t, err)
	require.Len(t, postings, 3)

	assert.Equal(t, Stats{Received: 5, Skipped: 1, MissingURL: 1, Emitted: 3}, stats)

	linkedin := postings[0]
	assert.Equal(t, "li-1", linkedin.ID)
	assert.Equal(t, "Machine Learning Engineer - Acme", linkedin.Title)
	assert.Equal(t, "Acme Analytics", linkedin.Company)
	assert.Equal(t, "Bengaluru, India", linkedin.Location)
	assert.Equal(t, "12 LPA", linkedin.Salary)
	assert.Equal(t, []string{"python", "sql", "aws"}, linkedin.RequiredSkills)
	assert.Equal(t, jobs.PlatformLinkedIn, linkedin.Platform)
	assert.Equal(t, "linkedin.com", linkedin.Source)
	assert.Equal(t, jobs.KindJob, linkedin.Kind)
	assert.Empty(t, linkedin.Locations)

	intern := postings[1]
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceURL, []byte(intern.ApplicationURL)).String(), intern.ID)
	assert.Equal(t, "Internshala", intern.Company)
	assert.Equal(t, "Pune", intern.Location)
	assert.Equal(t, []string{"tableau", "power bi"}, intern.RequiredSkills)
	assert.Equal(t, jobs.KindInternship, intern.Kind)
	assert.Equal(t, jobs.PlatformInternshala, intern.Platform)

	indeed := postings[2]
	assert.Empty(t, indeed.Title)
	assert.Equal(t, "Globex Corporation", indeed.Company)
	assert.Equal(t, "50,000 per month", indeed.Salary)
	assert.Empty(t, indeed.Location)
	assert.Empty(t, indeed.RequiredSkills)
	assert.Equal(t, jobs.PlatformIndeed, indeed.Platform)
}

func TestNormalizeWithoutVocabulary(t *testing.T) {
	n := New(Config{VocabularySkills: false}, nil)
	env := loadPage(t)

	postings, _, err := n.Normalize(context.Background(), []Batch{{Envelope: env}})
	require.NoError(t, err)

	assert.Equal(t, []string{"python", "sql", "aws"}, postings[0].RequiredSkills, "structured skills are always used")
	assert.Empty(t, postings[1].RequiredSkills)
}

func TestNormalizeMergesFanOut(t *testing.T) {
	env := loadPage(t)
	n := New(Config{VocabularySkills: true}, zaptest.NewLogger(t))

	batches := []Batch{
		{Query: jobs.Query{Location: "Berlin"}, Envelope: env},
		{Query: jobs.Query{Location: "Remote"}, Envelope: env},
		{Query: jobs.Query{Location: "Remote"}, Envelope: nil},
	}

	postings, stats, err := n.Normalize(context.Background(), batches)
	require.NoError(t, err)

	require.Len(t, postings, 3)
	for _, p := range postings {
		assert.Equal(t, []string{"Berlin", "Remote"}, p.Locations)
	}
	assert.Equal(t, "Bengaluru, India", postings[0].Location)
	assert.Equal(t, "Pune", postings[1].Location)
	assert.Equal(t, "Globex Corporation", postings[2].Company)
	assert.Equal(t, Stats{Received: 10, Skipped: 2, MissingURL: 2, Duplicates: 3, Emitted: 3}, stats)
}

func TestNormalizeIsDeterministicAndIdempotent(t *testing.T) {
	env := loadPage(t)
	n := New(Config{VocabularySkills: true}, nil)
	batches := []Batch{
		{Query: jobs.Query{Location: "Pune"}, Envelope: env},
		{Query: jobs.Query{Location: "Delhi"}, Envelope: env},
	}

	first, _, err := n.Normalize(context.Background(), batches)
	require.NoError(t, err)
	second, _, err := n.Normalize(context.Background(), batches)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, filtering.Dedup(first))
}

func TestNormalizeZeroResults(t *testing.T) {
	env, err := Decode([]byte(`{"searchInformation": {"totalResults": "0"}}`))
	require.NoError(t, err)

	postings, stats, err := New(Config{}, nil).Normalize(context.Background(), []Batch{{Envelope: env}})
	require.NoError(t, err)
	assert.NotNil(t, postings)
	assert.Empty(t, postings)
	assert.Equal(t, Stats{}, stats)
}
