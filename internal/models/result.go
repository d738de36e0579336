package models

type ApplyRequest struct {
	Name    string `form:"name" validate:"required,max=200"`
	Email   string `form:"email" validate:"required,email"`
	Phone   string `form:"phone" validate:"omitempty,max=50"`
	JobRole string `form:"job_role" validate:"required,max=200"`
}

type ApplyResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ReviewRequest struct {
	HRScore    float64 `json:"hr_score" validate:"gte=1,lte=10"`
	HRNotes    *string `json:"hr_notes"`
	HRDecision string  `json:"hr_decision" validate:"required,oneof=accept reject interview pending"`
	ReviewedBy *string `json:"reviewed_by"`
}

type ListQuery struct {
	Page    int    `query:"page" json:"page" validate:"gte=1"`
	PerPage int    `query:"per_page" json:"per_page" validate:"gte=1,lte=100"`
	Status  string `query:"status" json:"status" validate:"omitempty"`
	JobRole string `query:"job_role" json:"job_role"`
}

type ListResponse[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

type ApplicationDetail struct {
	Application
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

type DashboardStats struct {
	TotalApplications     int64            `json:"total_applications"`
	SubmittedApplications int64            `json:"submitted_applications"`
	EvaluatedApplications int64            `json:"evaluated_applications"`
	FailedApplications    int64            `json:"failed_applications"`
	TotalEvaluations      int64            `json:"total_evaluations"`
	HighScoreCandidates   int64            `json:"high_score_candidates"`
	AverageScore          float64          `json:"average_score"`
	ApplicationsByRole    map[string]int64 `json:"applications_by_role"`
	SpreadsheetAvailable  bool             `json:"spreadsheet_available"`
}
