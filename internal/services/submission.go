package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/screenly/internal/models"
	"alfredoptarigan/screenly/internal/repositories"
)

var (
	ErrUnsupportedFile = errors.New("only PDF files are accepted")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
)

type SubmitInput struct {
	Name     string
	Email    string
	Phone    string
	JobRole  string
	Filename string
	Data     []byte
}

// Enqueuer hands a stored application to background processing.
type Enqueuer interface {
	EnqueueJob(applicationID uuid.UUID)
}

type SubmissionService interface {
	// Submit extracts the CV text, stores the file and creates a submitted
	// application. Nothing is persisted when text extraction fails.
	Submit(ctx context.Context, in SubmitInput) (*models.Application, error)
}

type submissionService struct {
	appRepo     repositories.ApplicationRepository
	jobRepo     repositories.JobRepository
	extractor   TextExtractor
	storage     DocumentStorage
	queue       Enqueuer
	maxFileSize int64
	timeout     time.Duration
}

func NewSubmissionService(
	appRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	extractor TextExtractor,
	storage DocumentStorage,
	queue Enqueuer,
	maxFileSize int64,
	timeout time.Duration,
) SubmissionService {
	return &submissionService{
		appRepo:     appRepo,
		jobRepo:     jobRepo,
		extractor:   extractor,
		storage:     storage,
		queue:       queue,
		maxFileSize: maxFileSize,
		timeout:     timeout,
	}
}

// Submit implements SubmissionService.
func (s *submissionService) Submit(ctx context.Context, in SubmitInput) (*models.Application, error) {
	if strings.ToLower(filepath.Ext(in.Filename)) != ".pdf" {
		return nil, ErrUnsupportedFile
	}
	if s.maxFileSize > 0 && int64(len(in.Data)) > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	text, err := s.extractor.ExtractText(ctx, in.Data)
	if err != nil {
		return nil, err
	}

	job, err := s.jobRepo.FindOrCreateByRole(ctx, in.JobRole)
	if err != nil {
		return nil, err
	}

	ref, err := s.save(ctx, in)
	if err != nil {
		return nil, err
	}

	app := &models.Application{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		JobID:      job.ID,
		JobRole:    strings.TrimSpace(in.JobRole),
		CVFilename: filepath.Base(in.Filename),
		CVFileRef:  ref,
		CVText:     text,
		Status:     models.ApplicationSubmitted,
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		app.Phone = &phone
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
			slog.WarnContext(ctx, "⚠️ Failed to remove orphaned CV", "ref", ref, "error", delErr)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "📥 Application submitted",
		"application_id", app.ID,
		"job_role", app.JobRole,
		"chars", len(text),
	)

	if s.queue != nil {
		s.queue.EnqueueJob(app.ID)
	}

	return app, nil
}

func (s *submissionService) save(ctx context.Context, in SubmitInput) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ref, err := s.storage.Save(ctx, in.Filename, in.Data)
	if err != nil {
		return "", fmt.Errorf("failed to store CV: %w", err)
	}
	return ref, nil
}
