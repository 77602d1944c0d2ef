package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerflow/assessment-backend/internal/response"
	"github.com/careerflow/assessment-backend/internal/service"
)

// CareerHandler serves the career path catalog.
type CareerHandler struct {
	careerService *service.CareerService
}

// NewCareerHandler creates a new CareerHandler.
func NewCareerHandler(careerService *service.CareerService) *CareerHandler {
	return &CareerHandler{careerService: careerService}
}

// List godoc
// GET /api/v1/careers
func (h *CareerHandler) List(c *gin.Context) {
	careers, err := h.careerService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"careers": careers})
}

// Get godoc
// GET /api/v1/careers/:career_id
func (h *CareerHandler) Get(c *gin.Context) {
	career, err := h.careerService.GetByID(c.Request.Context(), c.Param("career_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"career": career})
}
