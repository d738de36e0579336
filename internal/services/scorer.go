package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"alfredoptarigan/screenly/internal/models"
)

// RationaleMissing is used when a valid vote comes without a consideration.
const RationaleMissing = "Unable to evaluate"

type ScoreResult struct {
	Score     float64
	Rationale string
}

// Sentinel reports whether scoring failed and Score is the 0.0 marker.
func (r ScoreResult) Sentinel() bool {
	return r.Score == models.SentinelScore
}

type Scorer interface {
	Score(ctx context.Context, summary, profileText string) ScoreResult
}

type scorer struct {
	generator     TextGenerator
	promptBuilder *PromptBuilder
	timeout       time.Duration
}

func NewScorer(generator TextGenerator, timeout time.Duration) Scorer {
	return &scorer{
		generator:     generator,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
	}
}

// Score never fails. The result is either clamped into [1, 10] or the sentinel
// 0.0 with a rationale describing what went wrong.
func (s *scorer) Score(ctx context.Context, summary, profileText string) ScoreResult {
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.generator.Generate(callCtx, s.promptBuilder.BuildScoringPrompt(summary, profileText))
	if err != nil {
		slog.WarnContext(ctx, "⚠️ scoring call failed", "error", err)
		return sentinel(fmt.Sprintf("Evaluation failed: %v", err))
	}

	result, err := parseScore(response)
	if err != nil {
		slog.WarnContext(ctx, "⚠️ scoring reply unusable", "error", err)
		return sentinel(fmt.Sprintf("Unable to parse evaluation: %v", err))
	}

	return result
}

func parseScore(response string) (ScoreResult, error) {
	var reply map[string]json.RawMessage
	if err := parseJSONResponse(response, &reply); err != nil {
		return ScoreResult{}, err
	}

	vote, err := parseNumber(reply["vote"])
	if err != nil {
		return ScoreResult{}, fmt.Errorf("vote: %w", err)
	}

	return ScoreResult{Score: ClampScore(vote), Rationale: parseRationale(reply["consideration"])}, nil
}

// parseRationale keeps a string consideration exactly as written. Only an
// absent or null value falls back to RationaleMissing.
func parseRationale(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return RationaleMissing
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var coerced optString
	if err := json.Unmarshal(raw, &coerced); err == nil && coerced.Value != nil {
		return *coerced.Value
	}
	return RationaleMissing
}

// ClampScore moves an out-of-range vote to the nearest bound.
func ClampScore(vote float64) float64 {
	switch {
	case vote < models.MinScore:
		return models.MinScore
	case vote > models.MaxScore:
		return models.MaxScore
	default:
		return vote
	}
}

func sentinel(rationale string) ScoreResult {
	return ScoreResult{Score: models.SentinelScore, Rationale: strings.TrimSpace(rationale)}
}
