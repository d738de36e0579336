package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/screenly/internal/models"
	"alfredoptarigan/screenly/internal/repositories"
	"alfredoptarigan/screenly/internal/validator"
)

const defaultPerPage = 20

type ResultHandler struct {
	appRepo              repositories.ApplicationRepository
	evalRepo             repositories.EvaluationRepository
	validator            *validator.Validator
	spreadsheetAvailable bool
}

func NewResultHandler(
	appRepo repositories.ApplicationRepository,
	evalRepo repositories.EvaluationRepository,
	validator *validator.Validator,
	spreadsheetAvailable bool,
) *ResultHandler {
	return &ResultHandler{
		appRepo:              appRepo,
		evalRepo:             evalRepo,
		validator:            validator,
		spreadsheetAvailable: spreadsheetAvailable,
	}
}

// HandleListApplications handles GET /candidates/applications
func (h *ResultHandler) HandleListApplications(c *fiber.Ctx) error {
	q, err := h.listQuery(c)
	if err != nil {
		return err
	}

	if q.Status != "" && !models.ApplicationStatus(q.Status).Valid() {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid status filter")
	}

	apps, total, err := h.appRepo.List(c.UserContext(), q)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list applications")
	}

	return c.JSON(models.ListResponse[models.Application]{
		Items:   apps,
		Total:   total,
		Page:    q.Page,
		PerPage: q.PerPage,
	})
}

// HandleGetApplication handles GET /candidates/applications/:id
func (h *ResultHandler) HandleGetApplication(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	app, err := h.appRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Application not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load application")
	}

	detail := models.ApplicationDetail{Application: *app}

	// Applications still waiting for the pipeline have no evaluation yet.
	eval, err := h.evalRepo.FindByApplicationID(ctx, id)
	switch {
	case err == nil:
		detail.Evaluation = eval
	case !errors.Is(err, repositories.ErrNotFound):
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load evaluation")
	}

	return c.JSON(detail)
}

// HandleListEvaluations handles GET /hr/evaluations
func (h *ResultHandler) HandleListEvaluations(c *fiber.Ctx) error {
	q, err := h.listQuery(c)
	if err != nil {
		return err
	}

	evals, total, err := h.evalRepo.List(c.UserContext(), q)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list evaluations")
	}

	return c.JSON(models.ListResponse[models.Evaluation]{
		Items:   evals,
		Total:   total,
		Page:    q.Page,
		PerPage: q.PerPage,
	})
}

// HandleDashboard handles GET /hr/dashboard
func (h *ResultHandler) HandleDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()

	byStatus, err := h.appRepo.CountByStatus(ctx)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	byRole, err := h.appRepo.CountByRole(ctx)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	evalStats, err := h.evalRepo.Stats(ctx)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	stats := models.DashboardStats{
		SubmittedApplications: byStatus[models.ApplicationSubmitted],
		EvaluatedApplications: byStatus[models.ApplicationEvaluated],
		FailedApplications:    byStatus[models.ApplicationFailed],
		TotalEvaluations:      evalStats.Total,
		HighScoreCandidates:   evalStats.HighScore,
		AverageScore:          evalStats.AverageScore,
		ApplicationsByRole:    byRole,
		SpreadsheetAvailable:  h.spreadsheetAvailable,
	}
	for _, n := range byStatus {
		stats.TotalApplications += n
	}

	return c.JSON(stats)
}

func (h *ResultHandler) listQuery(c *fiber.Ctx) (models.ListQuery, error) {
	q := models.ListQuery{Page: 1, PerPage: defaultPerPage}
	if err := c.QueryParser(&q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := h.validator.Validate(&q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, validator.Describe(err))
	}
	return q, nil
}
