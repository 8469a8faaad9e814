package handler

import (
	"io"
	"strings"

	"studysphere/internal/dto"
	"studysphere/internal/logger"
	"studysphere/internal/service"
	"studysphere/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DocumentHandler handles document upload and study HTTP requests.
type DocumentHandler struct {
	documents service.DocumentService
	study     service.StudyService
	validator *validation.Validator
}

// NewDocumentHandler creates a new DocumentHandler instance.
func NewDocumentHandler(documents service.DocumentService, study service.StudyService) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		study:     study,
		validator: validation.NewValidator(),
	}
}

// Upload handles POST /api/upload. The PDF arrives as multipart form field
// "pdf".
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "No PDF file provided",
		})
	}

	if fileHeader.Header.Get("Content-Type") != "application/pdf" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Only PDF files are allowed",
		})
	}
	if errs := h.validator.ValidatePDFUpload(fileHeader.Size); len(errs) > 0 {
		return errs
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Get().Error("Failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to read uploaded file",
		})
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		logger.Get().Error("Failed to read uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to read uploaded file",
		})
	}

	resp, err := h.documents.Upload(c.Context(), service.UploadInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Summarize handles POST /api/summarize.
func (h *DocumentHandler) Summarize(c *fiber.Ctx) error {
	var req dto.SummarizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body",
		})
	}
	if req.DocumentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Document ID is required",
		})
	}

	resp, err := h.study.Summarize(c.Context(), req.DocumentID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Quiz handles POST /api/quiz.
func (h *DocumentHandler) Quiz(c *fiber.Ctx) error {
	var req dto.QuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body",
		})
	}
	if req.DocumentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Document ID is required",
		})
	}
	if errs := h.validator.ValidateQuestionCount(req.QuestionCount); len(errs) > 0 {
		return errs
	}

	resp, err := h.study.GenerateQuiz(c.Context(), req.DocumentID, req.QuestionCount)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Question handles POST /api/question.
func (h *DocumentHandler) Question(c *fiber.Ctx) error {
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Question is required",
		})
	}

	// document_id is optional here: the ask strategy works against the whole
	// knowledge box, and the filtered rungs skip themselves without an id.
	resp, err := h.study.AnswerQuestion(c.Context(), req.DocumentID, req.Question)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
