package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Job struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"type:text;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Role         string     `gorm:"type:text;not null;index" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	JobProfileID *uuid.UUID `gorm:"type:uuid" json:"job_profile_id,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	JobProfile *JobProfile `gorm:"foreignKey:JobProfileID" json:"-"`
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

type JobProfile struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Role                  string    `gorm:"type:text;not null;uniqueIndex" json:"role"`
	ProfileWanted         string    `gorm:"type:text;not null" json:"profile_wanted"`
	RequiredSkills        *string   `gorm:"type:text" json:"required_skills,omitempty"`
	ExperienceLevel       *string   `gorm:"type:text" json:"experience_level,omitempty"`
	EducationRequirements *string   `gorm:"type:text" json:"education_requirements,omitempty"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (JobProfile) TableName() string {
	return "job_profiles"
}

func (p *JobProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// RequirementsText renders the profile as the text handed to the scorer.
// The wanted profile comes first; the optional sections follow only when set.
func (p *JobProfile) RequirementsText() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(p.ProfileWanted))

	section := func(label string, v *string) {
		if v == nil || strings.TrimSpace(*v) == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(*v))
	}
	section("Required Skills", p.RequiredSkills)
	section("Experience Level", p.ExperienceLevel)
	section("Education Requirements", p.EducationRequirements)

	return b.String()
}
