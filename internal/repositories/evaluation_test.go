package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/screenly/internal/models"
	"alfredoptarigan/screenly/internal/testutil"
)

func TestUpsertKeepsRowAndHRFields(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewEvaluationRepository(db)
	app := testutil.SeedApplication(t, db, "Backend Engineer")

	first := &models.Evaluation{
		ApplicationID: app.ID,
		Summary:       "first summary",
		Score:         6,
		Rationale:     "decent",
		Status:        models.EvaluationCompleted,
		EvaluatedAt:   time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.Upsert(ctx, first))
	require.NotEqual(t, uuid.Nil, first.ID)

	_, err := repo.Review(ctx, app.ID, &ReviewData{
		HRScore:    8,
		HRNotes:    testutil.Ptr("strong interview"),
		HRDecision: models.DecisionInterview,
	})
	require.NoError(t, err)

	second := &models.Evaluation{
		ApplicationID: app.ID,
		Summary:       "second summary",
		Score:         9,
		Rationale:     "great fit",
		Status:        models.EvaluationCompleted,
		EvaluatedAt:   time.Now(),
	}
	require.NoError(t, repo.Upsert(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "second summary", second.Summary)
	assert.Equal(t, 9.0, second.Score)
	assert.True(t, second.EvaluatedAt.After(first.EvaluatedAt))
	assert.True(t, second.HRReviewed)
	require.NotNil(t, second.HRDecision)
	assert.Equal(t, models.DecisionInterview, *second.HRDecision)

	var count int64
	require.NoError(t, db.Model(&models.Evaluation{}).Where("application_id = ?", app.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReviewNeverTouchesAIScore(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewEvaluationRepository(db)
	app := testutil.SeedApplication(t, db, "Backend Engineer")

	require.NoError(t, repo.Upsert(ctx, &models.Evaluation{
		ApplicationID: app.ID,
		Score:         4,
		Status:        models.EvaluationCompleted,
		EvaluatedAt:   time.Now(),
	}))

	reviewed, err := repo.Review(ctx, app.ID, &ReviewData{HRScore: 9, HRDecision: models.DecisionAccept})
	require.NoError(t, err)
	assert.Equal(t, 4.0, reviewed.Score)
	require.NotNil(t, reviewed.HRScore)
	assert.Equal(t, 9.0, *reviewed.HRScore)
	assert.NotNil(t, reviewed.ReviewedAt)

	_, err = repo.Review(ctx, uuid.New(), &ReviewData{HRScore: 5, HRDecision: models.DecisionReject})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatusByApplicationWithoutEvaluation(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEvaluationRepository(db)

	assert.NoError(t, repo.SetStatusByApplication(context.Background(), uuid.New(), models.EvaluationFailed))
}

func TestMarkExportedAndStats(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewEvaluationRepository(db)

	for _, score := range []float64{models.SentinelScore, 7, 9} {
		app := testutil.SeedApplication(t, db, "Backend Engineer")
		eval := &models.Evaluation{
			ApplicationID: app.ID,
			Score:         score,
			Status:        models.EvaluationCompleted,
			EvaluatedAt:   time.Now(),
		}
		require.NoError(t, repo.Upsert(ctx, eval))

		if score == 9 {
			require.NoError(t, repo.MarkExported(ctx, eval.ID, "Results!A2:L2"))
			stored, err := repo.FindByApplicationID(ctx, app.ID)
			require.NoError(t, err)
			assert.True(t, stored.Exported)
			require.NotNil(t, stored.ExportRowRef)
			assert.Equal(t, "Results!A2:L2", *stored.ExportRowRef)
		}
	}

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.HighScore)
	assert.InDelta(t, 8.0, stats.AverageScore, 0.0001)

	evals, total, err := repo.List(ctx, models.ListQuery{Page: 1, PerPage: 2, Status: string(models.EvaluationCompleted)})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, evals, 2)
}
