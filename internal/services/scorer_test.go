package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name          string
		reply         string
		wantScore     float64
		wantRationale string
	}{
		{name: "in range", reply: `{"vote": 7, "consideration": "solid match"}`, wantScore: 7, wantRationale: "solid match"},
		{name: "clamped high", reply: `{"vote": 13, "consideration": "great fit"}`, wantScore: 10, wantRationale: "great fit"},
		{name: "clamped low", reply: `{"vote": -2, "consideration": "no overlap"}`, wantScore: 1, wantRationale: "no overlap"},
		{name: "numeric string", reply: "```json\n{\"vote\": \"8.5\", \"consideration\": \"good\"}\n```", wantScore: 8.5, wantRationale: "good"},
		{name: "missing consideration", reply: `{"vote": 6}`, wantScore: 6, wantRationale: RationaleMissing},
		{name: "null consideration", reply: `{"vote": 6, "consideration": null}`, wantScore: 6, wantRationale: RationaleMissing},
		{name: "verbatim consideration", reply: `{"vote": 4, "consideration": "  none  "}`, wantScore: 4, wantRationale: "  none  "},
		{name: "placeholder word kept", reply: `{"vote": 3, "consideration": "n/a"}`, wantScore: 3, wantRationale: "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newFakeGenerator().on(markerScoring, tt.reply)

			got := NewScorer(gen, time.Second).Score(context.Background(), "summary", "profile")

			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantRationale, got.Rationale)
			assert.False(t, got.Sentinel())
		})
	}
}

func TestScoreSentinel(t *testing.T) {
	tests := []struct {
		name   string
		gen    *fakeGenerator
		prefix string
	}{
		{name: "no json", gen: newFakeGenerator().on(markerScoring, "I think they are a 7"), prefix: "Unable to parse evaluation"},
		{name: "bad json", gen: newFakeGenerator().on(markerScoring, `{"vote": 7,, }`), prefix: "Unable to parse evaluation"},
		{name: "missing vote", gen: newFakeGenerator().on(markerScoring, `{"consideration": "fine"}`), prefix: "Unable to parse evaluation"},
		{name: "non numeric vote", gen: newFakeGenerator().on(markerScoring, `{"vote": "high"}`), prefix: "Unable to parse evaluation"},
		{name: "backend error", gen: newFakeGenerator().fail(markerScoring, errors.New("boom")), prefix: "Evaluation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewScorer(tt.gen, time.Second).Score(context.Background(), "summary", "profile")

			assert.Equal(t, 0.0, got.Score)
			assert.True(t, got.Sentinel())
			assert.True(t, strings.HasPrefix(got.Rationale, tt.prefix), got.Rationale)
		})
	}
}

func TestScorePromptCarriesProfileAndSummary(t *testing.T) {
	gen := newFakeGenerator().on(markerScoring, `{"vote": 5, "consideration": "ok"}`)

	NewScorer(gen, time.Second).Score(context.Background(), "Backend dev from Rome", "Needs Go")

	prompt := gen.promptWith(markerScoring)
	assert.Contains(t, prompt, "Profile Wanted:\nNeeds Go")
	assert.Contains(t, prompt, "Candidate:\nBackend dev from Rome")
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 1.0, ClampScore(0.2))
	assert.Equal(t, 10.0, ClampScore(10.01))
	assert.Equal(t, 4.5, ClampScore(4.5))
}
