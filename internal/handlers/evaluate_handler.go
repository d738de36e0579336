package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/screenly/internal/models"
	"alfredoptarigan/screenly/internal/repositories"
	"alfredoptarigan/screenly/internal/services"
	"alfredoptarigan/screenly/internal/validator"
)

type EvaluationHandler struct {
	evalRepo  repositories.EvaluationRepository
	pipeline  services.PipelineService
	validator *validator.Validator
}

func NewEvaluationHandler(
	evalRepo repositories.EvaluationRepository,
	pipeline services.PipelineService,
	validator *validator.Validator,
) *EvaluationHandler {
	return &EvaluationHandler{
		evalRepo:  evalRepo,
		pipeline:  pipeline,
		validator: validator,
	}
}

// HandleGetEvaluation handles GET /candidates/applications/:id/evaluation
func (h *EvaluationHandler) HandleGetEvaluation(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	eval, err := h.evalRepo.FindByApplicationID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Evaluation not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load evaluation")
	}

	return c.JSON(eval)
}

// HandleReview handles POST /candidates/applications/:id/review
func (h *EvaluationHandler) HandleReview(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req models.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	if err := h.validator.Validate(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, validator.Describe(err))
	}

	eval, err := h.evalRepo.Review(c.UserContext(), id, &repositories.ReviewData{
		HRScore:    req.HRScore,
		HRNotes:    req.HRNotes,
		HRDecision: models.HRDecision(req.HRDecision),
		ReviewedBy: req.ReviewedBy,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Evaluation not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "failed to save review")
	}

	return c.JSON(eval)
}

// HandleReprocess handles POST /candidates/applications/:id/reprocess.
// The pipeline runs inside the request.
func (h *EvaluationHandler) HandleReprocess(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if err := h.pipeline.Process(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Application not found")
		case errors.Is(err, services.ErrApplicationBusy):
			return errorJSON(c, fiber.StatusConflict, "Application is already being processed")
		case errors.Is(err, services.ErrMissingCVText):
			return errorJSON(c, fiber.StatusUnprocessableEntity, "Application has no CV text to evaluate")
		case errors.Is(err, repositories.ErrStatusConflict):
			return errorJSON(c, fiber.StatusConflict, "Application cannot be reprocessed from its current status")
		}
		slog.ErrorContext(ctx, "❌ Reprocess failed", "application_id", id, "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}

	eval, err := h.evalRepo.FindByApplicationID(ctx, id)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load evaluation")
	}

	return c.JSON(eval)
}
