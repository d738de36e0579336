package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type PersonalFields struct {
	Phone     *string
	City      *string
	Birthdate *string
}

type Qualifications struct {
	EducationSummary  *string
	JobHistorySummary *string
	Skills            []string
}

// CandidateFields is everything the summary prompt needs.
type CandidateFields struct {
	City              *string
	Birthdate         *string
	EducationSummary  *string
	JobHistorySummary *string
	Skills            []string
}

type FieldExtractor interface {
	ExtractPersonalFields(ctx context.Context, cvText string) Result[PersonalFields]
	ExtractQualifications(ctx context.Context, cvText string) Result[Qualifications]
}

type fieldExtractor struct {
	generator     TextGenerator
	promptBuilder *PromptBuilder
	timeout       time.Duration
}

func NewFieldExtractor(generator TextGenerator, timeout time.Duration) FieldExtractor {
	return &fieldExtractor{
		generator:     generator,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
	}
}

type personalReply struct {
	Telephone optString `json:"telephone"`
	City      optString `json:"city"`
	Birthdate optString `json:"birthdate"`
}

type qualificationsReply struct {
	EducationSummary  optString  `json:"education_summary"`
	JobHistorySummary optString  `json:"job_history_summary"`
	Skills            stringList `json:"skills"`
}

// ExtractPersonalFields implements FieldExtractor.
func (f *fieldExtractor) ExtractPersonalFields(ctx context.Context, cvText string) Result[PersonalFields] {
	var reply personalReply
	if err := f.ask(ctx, f.promptBuilder.BuildPersonalFieldsPrompt(cvText), &reply); err != nil {
		slog.WarnContext(ctx, "⚠️ personal field extraction degraded", "error", err)
		return degraded[PersonalFields](fmt.Errorf("personal fields: %w", err))
	}

	return ok(PersonalFields{
		Phone:     reply.Telephone.Value,
		City:      reply.City.Value,
		Birthdate: reply.Birthdate.Value,
	})
}

// ExtractQualifications implements FieldExtractor.
func (f *fieldExtractor) ExtractQualifications(ctx context.Context, cvText string) Result[Qualifications] {
	var reply qualificationsReply
	if err := f.ask(ctx, f.promptBuilder.BuildQualificationsPrompt(cvText), &reply); err != nil {
		slog.WarnContext(ctx, "⚠️ qualification extraction degraded", "error", err)
		return degraded[Qualifications](fmt.Errorf("qualifications: %w", err))
	}

	return ok(Qualifications{
		EducationSummary:  reply.EducationSummary.Value,
		JobHistorySummary: reply.JobHistorySummary.Value,
		Skills:            []string(reply.Skills),
	})
}

func (f *fieldExtractor) ask(ctx context.Context, prompt string, target interface{}) error {
	ctx, cancel := withTimeout(ctx, f.timeout)
	defer cancel()

	response, err := f.generator.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("failed to generate: %w", err)
	}

	return parseJSONResponse(response, target)
}

// withTimeout bounds a single external call. A zero timeout means no bound.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
