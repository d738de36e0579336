package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationSubmitted  ApplicationStatus = "submitted"
	ApplicationProcessing ApplicationStatus = "processing"
	ApplicationEvaluated  ApplicationStatus = "evaluated"
	ApplicationFailed     ApplicationStatus = "failed"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationSubmitted:  {ApplicationProcessing},
	ApplicationProcessing: {ApplicationEvaluated, ApplicationFailed},
	ApplicationFailed:     {ApplicationProcessing},
	ApplicationEvaluated:  {ApplicationProcessing},
}

// CanTransitionTo reports whether s -> next is an allowed move of the status machine.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SourcesOf lists every status from which next can be reached.
func SourcesOf(next ApplicationStatus) []ApplicationStatus {
	var sources []ApplicationStatus
	for _, from := range []ApplicationStatus{
		ApplicationSubmitted,
		ApplicationProcessing,
		ApplicationEvaluated,
		ApplicationFailed,
	} {
		if from.CanTransitionTo(next) {
			sources = append(sources, from)
		}
	}
	return sources
}

func (s ApplicationStatus) Valid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

type Application struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string                      `gorm:"type:text;not null" json:"name"`
	Email             string                      `gorm:"type:text;not null;index" json:"email"`
	Phone             *string                     `gorm:"type:text" json:"phone,omitempty"`
	City              *string                     `gorm:"type:text" json:"city,omitempty"`
	Birthdate         *string                     `gorm:"type:text" json:"birthdate,omitempty"`
	JobID             uuid.UUID                   `gorm:"type:uuid;not null;index" json:"job_id"`
	JobRole           string                      `gorm:"type:text;not null;index" json:"job_role"`
	CVFilename        string                      `gorm:"type:text" json:"cv_filename"`
	CVFileRef         string                      `gorm:"type:text" json:"cv_file_ref"`
	CVText            string                      `gorm:"type:text" json:"-"`
	EducationSummary  *string                     `gorm:"type:text" json:"education_summary,omitempty"`
	JobHistorySummary *string                     `gorm:"type:text" json:"job_history_summary,omitempty"`
	Skills            datatypes.JSONSlice[string] `json:"skills,omitempty"`
	Status            ApplicationStatus           `gorm:"type:varchar(20);not null;default:'submitted';index" json:"status"`
	SubmittedAt       time.Time                   `gorm:"autoCreateTime" json:"submitted_at"`
	ProcessedAt       *time.Time                  `json:"processed_at,omitempty"`
	UpdatedAt         time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Job *Job `gorm:"foreignKey:JobID" json:"-"`
}

func (Application) TableName() string {
	return "applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = ApplicationSubmitted
	}
	return nil
}
