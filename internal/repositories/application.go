package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/screenly/internal/models"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	List(ctx context.Context, q models.ListQuery) ([]models.Application, int64, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from []models.ApplicationStatus, to models.ApplicationStatus) error
	UpdateExtracted(ctx context.Context, app *models.Application) error
	FindSubmitted(ctx context.Context, limit int) ([]models.Application, error)
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create implements ApplicationRepository.
func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// FindByID implements ApplicationRepository.
func (r *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &app, nil
}

// List implements ApplicationRepository.
func (r *applicationRepository) List(ctx context.Context, q models.ListQuery) ([]models.Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Application{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.JobRole != "" {
		query = query.Where("job_role = ?", q.JobRole)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	var apps []models.Application
	err := query.
		Order("submitted_at DESC").
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&apps).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, total, nil
}

// TransitionStatus moves the application to `to` only if its stored status is one
// of `from`. A miss is reported as ErrNotFound or ErrStatusConflict.
func (r *applicationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []models.ApplicationStatus, to models.ApplicationStatus) error {
	if len(from) == 0 {
		return fmt.Errorf("no source status given for transition to %s", to)
	}
	for _, f := range from {
		if !f.CanTransitionTo(to) {
			return fmt.Errorf("illegal transition %s -> %s", f, to)
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	if to == models.ApplicationEvaluated {
		updates["processed_at"] = now
	}

	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update application status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return r.missReason(ctx, id)
	}

	return nil
}

// UpdateExtracted writes the AI-derived fields of a claimed application.
func (r *applicationRepository) UpdateExtracted(ctx context.Context, app *models.Application) error {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status = ?", app.ID, models.ApplicationProcessing).
		Updates(map[string]interface{}{
			"phone":               app.Phone,
			"city":                app.City,
			"birthdate":           app.Birthdate,
			"education_summary":   app.EducationSummary,
			"job_history_summary": app.JobHistorySummary,
			"skills":              app.Skills,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update extracted fields: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return r.missReason(ctx, app.ID)
	}

	return nil
}

// FindSubmitted implements ApplicationRepository.
func (r *applicationRepository) FindSubmitted(ctx context.Context, limit int) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("status = ? AND cv_text <> ''", models.ApplicationSubmitted).
		Order("submitted_at ASC").
		Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find submitted applications: %w", err)
	}
	return apps, nil
}

// CountByStatus implements ApplicationRepository.
func (r *applicationRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	var rows []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
	}

	counts := make(map[models.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountByRole implements ApplicationRepository.
func (r *applicationRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		JobRole string
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("job_role, COUNT(*) AS count").
		Group("job_role").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count applications by role: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.JobRole] = row.Count
	}
	return counts, nil
}

func (r *applicationRepository) missReason(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check application: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("application %s: %w", id, ErrStatusConflict)
}
