package services

import (
	"context"
	"strings"
	"time"

	"alfredoptarigan/screenly/internal/models"
)

// SpreadsheetBackend exports evaluation rows and looks up job profiles by role.
type SpreadsheetBackend interface {
	// ExportRow appends one evaluation and returns a reference to the written row.
	ExportRow(ctx context.Context, row ExportRow) (string, error)
	// LookupProfile returns nil, nil when no row matches role.
	LookupProfile(ctx context.Context, role string) (*models.JobProfile, error)
}

// ExportHeader is the column layout of the results sheet.
var ExportHeader = []string{
	"DATE", "NAME", "PHONE", "CITY", "EMAIL", "BIRTHDATE",
	"EDUCATIONAL", "JOB HISTORY", "SKILLS", "SUMMARY",
	"VOTE", "CONSIDERATION",
}

type ExportRow struct {
	Date       time.Time
	Name       string
	Email      string
	Phone      *string
	City       *string
	Birthdate  *string
	Education  *string
	JobHistory *string
	Skills     []string
	Summary    string
	Score      float64
	Rationale  string
}

// NewExportRow flattens an evaluated application into a results row.
func NewExportRow(app *models.Application, eval *models.Evaluation) ExportRow {
	return ExportRow{
		Date:       eval.EvaluatedAt,
		Name:       app.Name,
		Email:      app.Email,
		Phone:      app.Phone,
		City:       app.City,
		Birthdate:  app.Birthdate,
		Education:  app.EducationSummary,
		JobHistory: app.JobHistorySummary,
		Skills:     app.Skills,
		Summary:    eval.Summary,
		Score:      eval.Score,
		Rationale:  eval.Rationale,
	}
}

// Cells renders the row in ExportHeader order.
func (r ExportRow) Cells() []interface{} {
	return []interface{}{
		r.Date.Format("02/01/2006"),
		r.Name,
		strings.ReplaceAll(deref(r.Phone), "+", ""),
		deref(r.City),
		r.Email,
		deref(r.Birthdate),
		deref(r.Education),
		deref(r.JobHistory),
		FormatBullets(r.Skills),
		r.Summary,
		r.Score,
		r.Rationale,
	}
}

const (
	columnRequiredSkills        = "Required Skills"
	columnExperienceLevel       = "Experience Level"
	columnEducationRequirements = "Education Requirements"
)

// findProfile scans a sheet whose first row holds column names and returns the
// first row whose role column equals role exactly.
func findProfile(rows [][]string, role, roleColumn, wantedColumn string) *models.JobProfile {
	if len(rows) == 0 {
		return nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}

	roleIdx, hasRole := index[roleColumn]
	wantedIdx, hasWanted := index[wantedColumn]
	if !hasRole || !hasWanted {
		return nil
	}

	cell := func(row []string, column string) *string {
		i, found := index[column]
		if !found || i >= len(row) {
			return nil
		}
		v := strings.TrimSpace(row[i])
		if v == "" {
			return nil
		}
		return &v
	}

	for _, row := range rows[1:] {
		if roleIdx >= len(row) || strings.TrimSpace(row[roleIdx]) != role {
			continue
		}

		profile := &models.JobProfile{Role: role}
		if wantedIdx < len(row) {
			profile.ProfileWanted = strings.TrimSpace(row[wantedIdx])
		}
		profile.RequiredSkills = cell(row, columnRequiredSkills)
		profile.ExperienceLevel = cell(row, columnExperienceLevel)
		profile.EducationRequirements = cell(row, columnEducationRequirements)
		return profile
	}

	return nil
}

// ExtractSpreadsheetID accepts a full Google Sheets URL or a bare ID.
func ExtractSpreadsheetID(url string) string {
	const marker = "/spreadsheets/d/"

	start := strings.Index(url, marker)
	if start < 0 {
		return strings.TrimSpace(url)
	}

	id := url[start+len(marker):]
	if end := strings.IndexAny(id, "/#?"); end >= 0 {
		id = id[:end]
	}
	return id
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
