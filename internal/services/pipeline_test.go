package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"alfredoptarigan/screenly/internal/models"
	"alfredoptarigan/screenly/internal/repositories"
	"alfredoptarigan/screenly/internal/testutil"
)

const (
	personalReplyJSON       = `{"telephone": "+44 20 7946 0000", "city": "London", "birthdate": "10/12/1815"}`
	qualificationsReplyJSON = `{"education_summary": "Private tutoring in mathematics", "job_history_summary": "Analytical Engine notes", "skills": ["Mathematics", "Algorithms"]}`
	summaryReply            = "Ada is a London mathematician who wrote the first algorithm."
	scoringReply            = `{"vote": 8, "consideration": "Strong analytical background"}`
)

type pipelineFixture struct {
	db       *gorm.DB
	appRepo  repositories.ApplicationRepository
	evalRepo repositories.EvaluationRepository
	gen      *fakeGenerator
	sheet    *fakeSpreadsheet
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	db := testutil.NewDB(t)
	return &pipelineFixture{
		db:       db,
		appRepo:  repositories.NewApplicationRepository(db),
		evalRepo: repositories.NewEvaluationRepository(db),
		gen: newFakeGenerator().
			on(markerPersonal, personalReplyJSON).
			on(markerQualifications, qualificationsReplyJSON).
			on(markerSummary, summaryReply).
			on(markerScoring, scoringReply),
		sheet: &fakeSpreadsheet{},
	}
}

func (f *pipelineFixture) pipeline(resolvers ...ProfileResolver) PipelineService {
	if len(resolvers) == 0 {
		resolvers = []ProfileResolver{&fakeResolver{name: "fixed", text: "Mathematician with programming aptitude", found: true}}
	}
	return NewPipelineService(
		f.appRepo,
		f.evalRepo,
		NewFieldExtractor(f.gen, time.Second),
		NewSummarizer(f.gen, time.Second),
		NewScorer(f.gen, time.Second),
		NewProfileChain(time.Second, resolvers...),
		f.sheet,
		time.Second,
	)
}

func TestPipelineProcess(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	app := testutil.SeedApplication(t, f.db, "Analyst")

	require.NoError(t, f.pipeline().Process(ctx, app.ID))

	stored, err := f.appRepo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationEvaluated, stored.Status)
	assert.NotNil(t, stored.ProcessedAt)
	require.NotNil(t, stored.City)
	assert.Equal(t, "London", *stored.City)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, "+44 20 7946 0000", *stored.Phone)
	assert.Equal(t, []string{"Mathematics", "Algorithms"}, []string(stored.Skills))

	eval, err := f.evalRepo.FindByApplicationID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EvaluationCompleted, eval.Status)
	assert.Equal(t, summaryReply, eval.Summary)
	assert.Equal(t, 8.0, eval.Score)
	assert.Equal(t, "Strong analytical background", eval.Rationale)
	assert.Equal(t, "Mathematician with programming aptitude", eval.ProfileRequirements)
	assert.True(t, eval.Exported)
	require.NotNil(t, eval.ExportRowRef)
	assert.Equal(t, "Results!A2:L2", *eval.ExportRowRef)

	require.Len(t, f.sheet.exported, 1)
	assert.Equal(t, "Ada Lovelace", f.sheet.exported[0].Name)

	scoring := f.gen.promptWith(markerScoring)
	assert.Contains(t, scoring, summaryReply)
	assert.Contains(t, scoring, "Mathematician with programming aptitude")
}

func TestPipelineKeepsSubmittedPhone(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	app := testutil.SeedApplication(t, f.db, "Analyst", func(a *models.Application) {
		a.Phone = testutil.Ptr("+1 555 0100")
	})

	require.NoError(t, f.pipeline().Process(ctx, app.ID))

	stored, err := f.appRepo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, "+1 555 0100", *stored.Phone)
}

func TestPipelineExportFailureKeepsEvaluation(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.sheet.exportErr = errors.New("sheets quota exceeded")
	app := testutil.SeedApplication(t, f.db, "Analyst")

	require.NoError(t, f.pipeline().Process(ctx, app.ID))

	stored, err := f.appRepo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationEvaluated, stored.Status)

	eval, err := f.evalRepo.FindByApplicationID(ctx, app.ID)
	require.NoError(t, err)
	assert.False(t, eval.Exported)
	assert.Nil(t, eval.ExportRowRef)
}

func TestPipelineDegradedExtractionStillScores(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.gen = newFakeGenerator().
		on(markerPersonal, personalReplyJSON).
		fail(markerQualifications, errors.New("model overloaded")).
		on(markerSummary, summaryReply).
		on(markerScoring, scoringReply)
	app := testutil.SeedApplication(t, f.db, "Analyst")

	require.NoError(t, f.pipeline().Process(ctx, app.ID))

	prompt := f.gen.promptWith(markerSummary)
	assert.Contains(t, prompt, "Educational qualification: "+MissingValue)
	assert.Contains(t, prompt, "Job History: "+MissingValue)
	assert.Contains(t, prompt, "City: London")

	eval, err := f.evalRepo.FindByApplicationID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, eval.Score)
}

func TestPipelineScoringFailureUsesSentinel(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.gen = newFakeGenerator().
		on(markerPersonal, personalReplyJSON).
		on(markerQualifications, qualificationsReplyJSON).
		on(markerSummary, summaryReply).
		on(markerScoring, "I would rather not say")
	app := testutil.SeedApplication(t, f.db, "Analyst")

	require.NoError(t, f.pipeline().Process(ctx, app.ID))

	eval, err := f.evalRepo.FindByApplicationID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SentinelScore, eval.Score)
	assert.True(t, eval.IsSentinel())
	assert.NotEmpty(t, eval.Rationale)
}

func TestPipelineNoProfileScoresAgainstEmptyRequirements(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	app := testutil.SeedApplication(t, f.db, "Analyst")

	require.NoError(t, f.pipeline(&fakeResolver{name: "empty"}).Process(ctx, app.ID))

	eval, err := f.evalRepo.FindByApplicationID(ctx, app.ID)
	require.NoError(t, err)
	assert.Empty(t, eval.ProfileRequirements)
	assert.GreaterOrEqual(t, eval.Score, models.MinScore)
	assert.LessOrEqual(t, eval.Score, models.MaxScore)
}

func TestPipelineReprocessKeepsSingleEvaluation(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	app := testutil.SeedApplication(t, f.db, "Analyst")
	pipeline := f.pipeline()

	require.NoError(t, pipeline.Process(ctx, app.ID))
	first, err := f.evalRepo.FindByApplicationID(ctx, app.ID)
	require.NoError(t, err)

	_, err = f.evalRepo.Review(ctx, app.ID, &repositories.ReviewData{
		HRScore:    9,
		HRDecision: models.DecisionInterview,
	})
	require.NoError(t, err)

	require.NoError(t, pipeline.Process(ctx, app.ID))
	second, err := f.evalRepo.FindByApplicationID(ctx, app.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.EvaluatedAt.Before(first.EvaluatedAt))
	assert.True(t, second.HRReviewed)
	require.NotNil(t, second.HRScore)
	assert.Equal(t, 9.0, *second.HRScore)

	var count int64
	require.NoError(t, f.db.Model(&models.Evaluation{}).Where("application_id = ?", app.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPipelineBusy(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	app := testutil.SeedApplication(t, f.db, "Analyst", func(a *models.Application) {
		a.Status = models.ApplicationProcessing
	})

	err := f.pipeline().Process(ctx, app.ID)
	assert.ErrorIs(t, err, ErrApplicationBusy)

	assert.NoError(t, f.pipeline().ProcessSubmitted(ctx, app.ID))
	assert.Empty(t, f.gen.prompts)
}

func TestPipelineSkipsEvaluatedInBackground(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	app := testutil.SeedApplication(t, f.db, "Analyst", func(a *models.Application) {
		a.Status = models.ApplicationEvaluated
	})

	require.NoError(t, f.pipeline().ProcessSubmitted(ctx, app.ID))
	assert.Empty(t, f.gen.prompts)

	stored, err := f.appRepo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationEvaluated, stored.Status)
}

func TestPipelineMissingCVText(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	app := testutil.SeedApplication(t, f.db, "Analyst", func(a *models.Application) {
		a.CVText = "  "
	})

	err := f.pipeline().Process(ctx, app.ID)
	assert.ErrorIs(t, err, ErrMissingCVText)

	stored, err := f.appRepo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationSubmitted, stored.Status)
}

func TestPipelineUnknownApplication(t *testing.T) {
	f := newPipelineFixture(t)
	err := f.pipeline().Process(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

type failingUpsertRepo struct {
	repositories.EvaluationRepository
}

func (failingUpsertRepo) Upsert(ctx context.Context, eval *models.Evaluation) error {
	return errors.New("disk full")
}

func TestPipelineFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.evalRepo = failingUpsertRepo{EvaluationRepository: f.evalRepo}
	app := testutil.SeedApplication(t, f.db, "Analyst")

	err := f.pipeline().Process(ctx, app.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	stored, err := f.appRepo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationFailed, stored.Status)
	assert.Empty(t, f.sheet.exported)
}
