package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvaluationStatus string

const (
	EvaluationPending    EvaluationStatus = "pending"
	EvaluationProcessing EvaluationStatus = "processing"
	EvaluationCompleted  EvaluationStatus = "completed"
	EvaluationFailed     EvaluationStatus = "failed"
)

type HRDecision string

const (
	DecisionAccept    HRDecision = "accept"
	DecisionReject    HRDecision = "reject"
	DecisionInterview HRDecision = "interview"
	DecisionPending   HRDecision = "pending"
)

const (
	MinScore = 1.0
	MaxScore = 10.0
	// SentinelScore marks an evaluation whose score could not be parsed.
	SentinelScore = 0.0
)

type Evaluation struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"application_id"`
	Summary             string           `gorm:"type:text" json:"summary"`
	Score               float64          `gorm:"not null;default:0" json:"score"`
	Rationale           string           `gorm:"type:text" json:"rationale"`
	ProfileRequirements string           `gorm:"type:text" json:"profile_requirements"`
	Status              EvaluationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	EvaluatedAt         time.Time        `json:"evaluated_at"`

	// HR review, written only by the review endpoint
	HRReviewed bool        `gorm:"not null;default:false" json:"hr_reviewed"`
	HRScore    *float64    `json:"hr_score,omitempty"`
	HRNotes    *string     `gorm:"type:text" json:"hr_notes,omitempty"`
	HRDecision *HRDecision `gorm:"type:varchar(20)" json:"hr_decision,omitempty"`
	ReviewedBy *string     `gorm:"type:text" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time  `json:"reviewed_at,omitempty"`

	Exported     bool    `gorm:"not null;default:false" json:"exported"`
	ExportRowRef *string `gorm:"type:text" json:"export_row_ref,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Application *Application `gorm:"foreignKey:ApplicationID" json:"-"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}

func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsSentinel reports whether the AI score is the parse-failure marker.
func (e *Evaluation) IsSentinel() bool {
	return e.Score == SentinelScore
}
