package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/screenly/internal/models"
	"alfredoptarigan/screenly/internal/services"
	"alfredoptarigan/screenly/internal/validator"
)

type UploadHandler struct {
	submission  services.SubmissionService
	validator   *validator.Validator
	maxFileSize int64
}

func NewUploadHandler(
	submission services.SubmissionService,
	validator *validator.Validator,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		submission:  submission,
		validator:   validator,
		maxFileSize: maxFileSize,
	}
}

// HandleApply handles POST /candidates/apply
func (h *UploadHandler) HandleApply(c *fiber.Ctx) error {
	var req models.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "failed to parse multipart form")
	}

	if err := h.validator.Validate(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, validator.Describe(err))
	}

	cvFile, err := c.FormFile("cv_file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "cv_file is required")
	}

	if h.maxFileSize > 0 && cvFile.Size > h.maxFileSize {
		return errorJSON(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("CV file too large. Max size: %d bytes", h.maxFileSize))
	}

	f, err := cvFile.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "failed to read cv_file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "failed to read cv_file")
	}

	app, err := h.submission.Submit(c.UserContext(), services.SubmitInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		JobRole:  req.JobRole,
		Filename: cvFile.Filename,
		Data:     data,
	})
	if err != nil {
		var extractionErr *services.ExtractionError
		switch {
		case errors.As(err, &extractionErr):
			return errorJSON(c, fiber.StatusUnprocessableEntity, "could not read text from the uploaded CV")
		case errors.Is(err, services.ErrUnsupportedFile):
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrFileTooLarge):
			return errorJSON(c, fiber.StatusRequestEntityTooLarge, err.Error())
		}
		slog.ErrorContext(c.UserContext(), "❌ Submission failed", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "failed to submit application")
	}

	return c.Status(fiber.StatusAccepted).JSON(models.ApplyResponse{
		ID:     app.ID.String(),
		Status: string(app.Status),
	})
}
