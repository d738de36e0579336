package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/screenly/internal/models"
)

type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	FindOrCreateByRole(ctx context.Context, role string) (*models.Job, error)
	FindProfileByID(ctx context.Context, id uuid.UUID) (*models.JobProfile, error)
	FindProfileByRole(ctx context.Context, role string) (*models.JobProfile, error)
	ListProfiles(ctx context.Context) ([]models.JobProfile, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// FindByID implements JobRepository.
func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

// FindOrCreateByRole returns the first active job whose title contains role
// (case-insensitive), creating "<role> Position" when there is none.
func (r *jobRepository) FindOrCreateByRole(ctx context.Context, role string) (*models.Job, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, errors.New("job role is empty")
	}

	var job models.Job
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND LOWER(title) LIKE ?", true, "%"+strings.ToLower(role)+"%").
		Order("created_at ASC").
		First(&job).Error
	if err == nil {
		return &job, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find job: %w", err)
	}

	job = models.Job{
		Title:       role + " Position",
		Description: "Position for " + role,
		Role:        role,
		IsActive:    true,
	}

	// Link the profile for this role up front when one exists.
	if profile, err := r.FindProfileByRole(ctx, role); err == nil {
		job.JobProfileID = &profile.ID
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return &job, nil
}

// FindProfileByID implements JobRepository.
func (r *jobRepository) FindProfileByID(ctx context.Context, id uuid.UUID) (*models.JobProfile, error) {
	var profile models.JobProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job profile %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find job profile: %w", err)
	}
	return &profile, nil
}

// FindProfileByRole matches the role exactly, case included.
func (r *jobRepository) FindProfileByRole(ctx context.Context, role string) (*models.JobProfile, error) {
	var profile models.JobProfile
	if err := r.db.WithContext(ctx).Where("role = ?", role).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job profile %q: %w", role, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find job profile: %w", err)
	}
	return &profile, nil
}

// ListProfiles implements JobRepository.
func (r *jobRepository) ListProfiles(ctx context.Context) ([]models.JobProfile, error) {
	var profiles []models.JobProfile
	if err := r.db.WithContext(ctx).Order("role ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list job profiles: %w", err)
	}
	return profiles, nil
}
