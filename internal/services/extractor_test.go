package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPersonalFields(t *testing.T) {
	gen := newFakeGenerator().on(markerPersonal,
		"```json\n{\"telephone\": \"+39 333 1234567\", \"city\": \"Milan\"}\n```")
	extractor := NewFieldExtractor(gen, time.Second)

	res := extractor.ExtractPersonalFields(context.Background(), "cv text")

	require.False(t, res.Degraded())
	require.NotNil(t, res.Value.Phone)
	assert.Equal(t, "+39 333 1234567", *res.Value.Phone)
	require.NotNil(t, res.Value.City)
	assert.Equal(t, "Milan", *res.Value.City)
	assert.Nil(t, res.Value.Birthdate)
	assert.Contains(t, gen.promptWith(markerPersonal), "cv text")
}

func TestExtractQualifications(t *testing.T) {
	gen := newFakeGenerator().on(markerQualifications, `Here you go:
{"education_summary": "MSc Computer Science", "job_history_summary": null, "skills": "- Go\n- PostgreSQL"}`)
	extractor := NewFieldExtractor(gen, time.Second)

	res := extractor.ExtractQualifications(context.Background(), "cv text")

	require.False(t, res.Degraded())
	require.NotNil(t, res.Value.EducationSummary)
	assert.Equal(t, "MSc Computer Science", *res.Value.EducationSummary)
	assert.Nil(t, res.Value.JobHistorySummary)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, res.Value.Skills)
}

func TestExtractQualificationsDegrades(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{name: "refusal", gen: newFakeGenerator().on(markerQualifications, "I cannot help with that")},
		{name: "invalid json", gen: newFakeGenerator().on(markerQualifications, `{"skills": [1, 2,}`)},
		{name: "backend error", gen: newFakeGenerator().fail(markerQualifications, errors.New("quota exceeded"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewFieldExtractor(tt.gen, time.Second).ExtractQualifications(context.Background(), "cv text")

			assert.True(t, res.Degraded())
			assert.Nil(t, res.Value.EducationSummary)
			assert.Nil(t, res.Value.JobHistorySummary)
			assert.Nil(t, res.Value.Skills)
		})
	}
}

func TestExtractPersonalFieldsTimeout(t *testing.T) {
	gen := &blockingGenerator{}
	extractor := NewFieldExtractor(gen, 20*time.Millisecond)

	res := extractor.ExtractPersonalFields(context.Background(), "cv text")

	assert.True(t, res.Degraded())
	assert.ErrorIs(t, res.Cause, context.DeadlineExceeded)
}

type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
