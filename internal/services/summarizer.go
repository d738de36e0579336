package services

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// SummaryPlaceholder is stored when no summary could be generated.
const SummaryPlaceholder = "Unable to generate summary"

type Summarizer interface {
	Summarize(ctx context.Context, fields CandidateFields) string
}

type summarizer struct {
	generator     TextGenerator
	promptBuilder *PromptBuilder
	timeout       time.Duration
}

func NewSummarizer(generator TextGenerator, timeout time.Duration) Summarizer {
	return &summarizer{
		generator:     generator,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
	}
}

// Summarize always returns some text. Backend failures yield SummaryPlaceholder.
func (s *summarizer) Summarize(ctx context.Context, fields CandidateFields) string {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	summary, err := s.generator.Generate(ctx, s.promptBuilder.BuildSummaryPrompt(fields))
	if err != nil {
		slog.WarnContext(ctx, "⚠️ summary generation failed", "error", err)
		return SummaryPlaceholder
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return SummaryPlaceholder
	}

	return summary
}
