package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/screenly/internal/models"
)

type EvaluationRepository interface {
	Upsert(ctx context.Context, eval *models.Evaluation) error
	FindByApplicationID(ctx context.Context, applicationID uuid.UUID) (*models.Evaluation, error)
	SetStatusByApplication(ctx context.Context, applicationID uuid.UUID, status models.EvaluationStatus) error
	Review(ctx context.Context, applicationID uuid.UUID, review *ReviewData) (*models.Evaluation, error)
	MarkExported(ctx context.Context, id uuid.UUID, rowRef string) error
	List(ctx context.Context, q models.ListQuery) ([]models.Evaluation, int64, error)
	Stats(ctx context.Context) (*EvaluationStats, error)
}

type ReviewData struct {
	HRScore    float64
	HRNotes    *string
	HRDecision models.HRDecision
	ReviewedBy *string
}

type EvaluationStats struct {
	Total        int64
	HighScore    int64
	AverageScore float64
}

// HighScoreThreshold is the AI score from which a candidate counts as strong.
const HighScoreThreshold = 7.0

// aiColumns are the only columns an upsert may overwrite on an existing row.
var aiColumns = []string{
	"summary",
	"score",
	"rationale",
	"profile_requirements",
	"status",
	"evaluated_at",
	"updated_at",
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Upsert inserts the evaluation or, when one already exists for the same
// application, overwrites its AI columns. eval is reloaded from storage so the
// caller sees the surviving row's ID and HR fields.
func (r *evaluationRepository) Upsert(ctx context.Context, eval *models.Evaluation) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "application_id"}},
			DoUpdates: clause.AssignmentColumns(aiColumns),
		}).
		Create(eval).Error
	if err != nil {
		return fmt.Errorf("failed to upsert evaluation: %w", err)
	}

	stored, err := r.FindByApplicationID(ctx, eval.ApplicationID)
	if err != nil {
		return err
	}
	*eval = *stored

	return nil
}

// FindByApplicationID implements EvaluationRepository.
func (r *evaluationRepository) FindByApplicationID(ctx context.Context, applicationID uuid.UUID) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation for application %s: %w", applicationID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}

// SetStatusByApplication updates the evaluation status if an evaluation exists.
// Having none yet is not an error.
func (r *evaluationRepository) SetStatusByApplication(ctx context.Context, applicationID uuid.UUID, status models.EvaluationStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Evaluation{}).
		Where("application_id = ?", applicationID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update evaluation status: %w", result.Error)
	}
	return nil
}

// Review writes the HR columns. The AI score is never touched here.
func (r *evaluationRepository) Review(ctx context.Context, applicationID uuid.UUID, review *ReviewData) (*models.Evaluation, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Evaluation{}).
		Where("application_id = ?", applicationID).
		Updates(map[string]interface{}{
			"hr_reviewed": true,
			"hr_score":    review.HRScore,
			"hr_notes":    review.HRNotes,
			"hr_decision": review.HRDecision,
			"reviewed_by": review.ReviewedBy,
			"reviewed_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to review evaluation: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("evaluation for application %s: %w", applicationID, ErrNotFound)
	}

	return r.FindByApplicationID(ctx, applicationID)
}

// MarkExported implements EvaluationRepository.
func (r *evaluationRepository) MarkExported(ctx context.Context, id uuid.UUID, rowRef string) error {
	result := r.db.WithContext(ctx).Model(&models.Evaluation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"exported":       true,
			"export_row_ref": rowRef,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark evaluation exported: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
	}

	return nil
}

// List implements EvaluationRepository.
func (r *evaluationRepository) List(ctx context.Context, q models.ListQuery) ([]models.Evaluation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Evaluation{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count evaluations: %w", err)
	}

	var evals []models.Evaluation
	err := query.
		Order("evaluated_at DESC").
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&evals).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list evaluations: %w", err)
	}

	return evals, total, nil
}

// Stats counts evaluations. The average leaves out sentinel scores.
func (r *evaluationRepository) Stats(ctx context.Context) (*EvaluationStats, error) {
	var stats EvaluationStats
	db := r.db.WithContext(ctx).Model(&models.Evaluation{})

	if err := db.Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count evaluations: %w", err)
	}

	err := r.db.WithContext(ctx).Model(&models.Evaluation{}).
		Where("score >= ?", HighScoreThreshold).
		Count(&stats.HighScore).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count high scores: %w", err)
	}

	var avg struct {
		Average *float64
	}
	err = r.db.WithContext(ctx).Model(&models.Evaluation{}).
		Select("AVG(score) AS average").
		Where("score <> ?", models.SentinelScore).
		Scan(&avg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to average scores: %w", err)
	}
	if avg.Average != nil {
		stats.AverageScore = *avg.Average
	}

	return &stats, nil
}
