package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/screenly/internal/models"
	"alfredoptarigan/screenly/internal/repositories"
)

var (
	// ErrApplicationBusy means another run currently holds the application.
	ErrApplicationBusy = errors.New("application is already being processed")
	// ErrMissingCVText means the application has no extracted CV text to work from.
	ErrMissingCVText = errors.New("application has no CV text")
)

// PipelineService runs extraction, summary, scoring and export for one application.
type PipelineService interface {
	// Process claims the application from submitted, failed or evaluated and runs it.
	Process(ctx context.Context, applicationID uuid.UUID) error
	// ProcessSubmitted runs the application only if it is still submitted.
	// Anything else is skipped without error.
	ProcessSubmitted(ctx context.Context, applicationID uuid.UUID) error
}

type pipelineService struct {
	appRepo    repositories.ApplicationRepository
	evalRepo   repositories.EvaluationRepository
	extractor  FieldExtractor
	summarizer Summarizer
	scorer     Scorer
	profiles   *ProfileChain
	sheet      SpreadsheetBackend
	timeout    time.Duration
}

// NewPipelineService wires the pipeline. sheet may be nil when no spreadsheet
// backend is configured.
func NewPipelineService(
	appRepo repositories.ApplicationRepository,
	evalRepo repositories.EvaluationRepository,
	extractor FieldExtractor,
	summarizer Summarizer,
	scorer Scorer,
	profiles *ProfileChain,
	sheet SpreadsheetBackend,
	timeout time.Duration,
) PipelineService {
	return &pipelineService{
		appRepo:    appRepo,
		evalRepo:   evalRepo,
		extractor:  extractor,
		summarizer: summarizer,
		scorer:     scorer,
		profiles:   profiles,
		sheet:      sheet,
		timeout:    timeout,
	}
}

// Process implements PipelineService.
func (p *pipelineService) Process(ctx context.Context, applicationID uuid.UUID) error {
	return p.run(ctx, applicationID, models.SourcesOf(models.ApplicationProcessing))
}

// ProcessSubmitted implements PipelineService.
func (p *pipelineService) ProcessSubmitted(ctx context.Context, applicationID uuid.UUID) error {
	err := p.run(ctx, applicationID, []models.ApplicationStatus{models.ApplicationSubmitted})
	if errors.Is(err, errNotClaimable) || errors.Is(err, ErrApplicationBusy) {
		slog.DebugContext(ctx, "skipping application that is no longer submitted", "application_id", applicationID)
		return nil
	}
	return err
}

var errNotClaimable = errors.New("application is not in a claimable status")

func (p *pipelineService) run(ctx context.Context, applicationID uuid.UUID, from []models.ApplicationStatus) error {
	app, err := p.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return err
	}

	if strings.TrimSpace(app.CVText) == "" {
		return fmt.Errorf("application %s: %w", applicationID, ErrMissingCVText)
	}

	if err := p.claim(ctx, app, from); err != nil {
		return err
	}

	slog.InfoContext(ctx, "🔄 Processing application", "application_id", app.ID, "job_role", app.JobRole)

	eval, err := p.evaluate(ctx, app)
	if err != nil {
		return p.fail(ctx, app.ID, err)
	}

	slog.InfoContext(ctx, "✅ Application evaluated",
		"application_id", app.ID,
		"score", eval.Score,
	)

	p.export(ctx, app, eval)

	return nil
}

// claim moves the application to processing. Finding it already processing,
// or losing the race for it, is ErrApplicationBusy.
func (p *pipelineService) claim(ctx context.Context, app *models.Application, from []models.ApplicationStatus) error {
	if app.Status == models.ApplicationProcessing {
		return fmt.Errorf("application %s: %w", app.ID, ErrApplicationBusy)
	}
	if !containsStatus(from, app.Status) {
		return fmt.Errorf("application %s is %s: %w", app.ID, app.Status, errNotClaimable)
	}

	err := p.appRepo.TransitionStatus(ctx, app.ID, from, models.ApplicationProcessing)
	if errors.Is(err, repositories.ErrStatusConflict) {
		return fmt.Errorf("application %s: %w", app.ID, ErrApplicationBusy)
	}
	if err != nil {
		return err
	}

	app.Status = models.ApplicationProcessing
	return nil
}

// evaluate covers every step between claiming and the final status change.
// Any error it returns marks the application failed.
func (p *pipelineService) evaluate(ctx context.Context, app *models.Application) (*models.Evaluation, error) {
	if err := p.evalRepo.SetStatusByApplication(ctx, app.ID, models.EvaluationProcessing); err != nil {
		return nil, err
	}

	var (
		personal       Result[PersonalFields]
		qualifications Result[Qualifications]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		personal = p.extractor.ExtractPersonalFields(gctx, app.CVText)
		return nil
	})
	g.Go(func() error {
		qualifications = p.extractor.ExtractQualifications(gctx, app.CVText)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mergeFields(app, personal.Value, qualifications.Value)
	if err := p.appRepo.UpdateExtracted(ctx, app); err != nil {
		return nil, err
	}

	summary := p.summarizer.Summarize(ctx, CandidateFields{
		City:              app.City,
		Birthdate:         app.Birthdate,
		EducationSummary:  app.EducationSummary,
		JobHistorySummary: app.JobHistorySummary,
		Skills:            app.Skills,
	})

	profileText, source := p.profiles.Resolve(ctx, app)
	if source == "" {
		slog.WarnContext(ctx, "⚠️ No job profile found, scoring against empty requirements",
			"application_id", app.ID,
			"job_role", app.JobRole,
		)
	}

	score := p.scorer.Score(ctx, summary, profileText)

	eval := &models.Evaluation{
		ApplicationID:       app.ID,
		Summary:             summary,
		Score:               score.Score,
		Rationale:           score.Rationale,
		ProfileRequirements: profileText,
		Status:              models.EvaluationCompleted,
		EvaluatedAt:         time.Now(),
	}
	if err := p.evalRepo.Upsert(ctx, eval); err != nil {
		return nil, err
	}

	err := p.appRepo.TransitionStatus(ctx, app.ID,
		[]models.ApplicationStatus{models.ApplicationProcessing}, models.ApplicationEvaluated)
	if err != nil {
		return nil, err
	}
	app.Status = models.ApplicationEvaluated

	return eval, nil
}

// fail records the failure and returns the wrapped cause. The writes use a
// context that survives cancellation of the run.
func (p *pipelineService) fail(ctx context.Context, applicationID uuid.UUID, cause error) error {
	cleanupCtx := context.WithoutCancel(ctx)

	err := p.appRepo.TransitionStatus(cleanupCtx, applicationID,
		[]models.ApplicationStatus{models.ApplicationProcessing}, models.ApplicationFailed)
	if err != nil {
		slog.ErrorContext(ctx, "❌ Failed to mark application failed", "application_id", applicationID, "error", err)
	}

	if err := p.evalRepo.SetStatusByApplication(cleanupCtx, applicationID, models.EvaluationFailed); err != nil {
		slog.ErrorContext(ctx, "❌ Failed to mark evaluation failed", "application_id", applicationID, "error", err)
	}

	slog.ErrorContext(ctx, "❌ Application processing failed", "application_id", applicationID, "error", cause)

	return fmt.Errorf("failed to process application %s: %w", applicationID, cause)
}

// export is best effort. Failures are logged and never change the outcome.
func (p *pipelineService) export(ctx context.Context, app *models.Application, eval *models.Evaluation) {
	if p.sheet == nil {
		return
	}

	exportCtx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	rowRef, err := p.sheet.ExportRow(exportCtx, NewExportRow(app, eval))
	if err != nil {
		slog.WarnContext(ctx, "⚠️ Spreadsheet export failed", "application_id", app.ID, "error", err)
		return
	}

	if err := p.evalRepo.MarkExported(ctx, eval.ID, rowRef); err != nil {
		slog.WarnContext(ctx, "⚠️ Failed to record spreadsheet export", "application_id", app.ID, "error", err)
		return
	}

	eval.Exported = true
	eval.ExportRowRef = &rowRef
}

// mergeFields copies extracted values onto the application. Absent values keep
// what is stored, and a phone given at submission is never replaced.
func mergeFields(app *models.Application, personal PersonalFields, qualifications Qualifications) {
	if app.Phone == nil || strings.TrimSpace(*app.Phone) == "" {
		app.Phone = personal.Phone
	}
	if personal.City != nil {
		app.City = personal.City
	}
	if personal.Birthdate != nil {
		app.Birthdate = personal.Birthdate
	}
	if qualifications.EducationSummary != nil {
		app.EducationSummary = qualifications.EducationSummary
	}
	if qualifications.JobHistorySummary != nil {
		app.JobHistorySummary = qualifications.JobHistorySummary
	}
	if len(qualifications.Skills) > 0 {
		app.Skills = qualifications.Skills
	}
}

func containsStatus(statuses []models.ApplicationStatus, status models.ApplicationStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
