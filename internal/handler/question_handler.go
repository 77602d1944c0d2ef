package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerflow/assessment-backend/internal/questionbank"
	"github.com/careerflow/assessment-backend/internal/response"
	"github.com/careerflow/assessment-backend/internal/service"
)

// QuestionHandler handles admin question bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func bankSlugParam(c *gin.Context) (string, bool) {
	slug := c.Param("slug")
	for _, known := range questionbank.KnownSlugs {
		if slug == known {
			return slug, true
		}
	}
	response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	return "", false
}

// ListBanks godoc
// GET /api/v1/admin/banks
// Returns the known bank slugs with stored question counts.
func (h *QuestionHandler) ListBanks(c *gin.Context) {
	banks, err := h.questionService.ListBanks(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banks": banks})
}

// ListQuestions godoc
// GET /api/v1/admin/banks/:slug/questions
// Returns a bank's questions, answer keys included (admin only).
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	slug, ok := bankSlugParam(c)
	if !ok {
		return
	}

	questions, err := h.questionService.ListByBank(c.Request.Context(), slug)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ImportBank godoc
// PUT /api/v1/admin/banks/:slug
// Replaces a bank with the posted JSON array of questions.
func (h *QuestionHandler) ImportBank(c *gin.Context) {
	slug, ok := bankSlugParam(c)
	if !ok {
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 4<<20))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	count, err := h.questionService.ImportBank(c.Request.Context(), slug, raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, map[string]string{"bank": err.Error()})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"imported": count})
}
