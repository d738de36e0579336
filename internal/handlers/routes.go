package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Register mounts every endpoint under router, normally the /api/v1 group.
func Register(router fiber.Router, upload *UploadHandler, evaluation *EvaluationHandler, result *ResultHandler, health *HealthHandler) {
	router.Get("/health", health.HandleHealth)

	candidates := router.Group("/candidates")
	candidates.Post("/apply", upload.HandleApply)
	candidates.Get("/applications", result.HandleListApplications)
	candidates.Get("/applications/:id", result.HandleGetApplication)
	candidates.Get("/applications/:id/evaluation", evaluation.HandleGetEvaluation)
	candidates.Post("/applications/:id/review", evaluation.HandleReview)
	candidates.Post("/applications/:id/reprocess", evaluation.HandleReprocess)

	hr := router.Group("/hr")
	hr.Get("/evaluations", result.HandleListEvaluations)
	hr.Get("/dashboard", result.HandleDashboard)
}

// ErrorHandler renders errors that escape a handler as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status := "healthy"
	code := fiber.StatusOK

	if err := h.ping(c.UserContext()); err != nil {
		status = "unhealthy"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"time":   time.Now(),
	})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func errorJSON(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": msg,
	})
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid application ID format")
	}
	return id, nil
}
