package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerflow/assessment-backend/internal/middleware"
	"github.com/careerflow/assessment-backend/internal/model"
	"github.com/careerflow/assessment-backend/internal/response"
	"github.com/careerflow/assessment-backend/internal/service"
	"github.com/careerflow/assessment-backend/internal/validator"
)

// TrainingHandler handles roadmap endpoints.
type TrainingHandler struct {
	trainingService *service.TrainingService
}

// NewTrainingHandler creates a new TrainingHandler.
func NewTrainingHandler(trainingService *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

func failTraining(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrModuleLocked):
		response.Fail(c, http.StatusForbidden, response.ErrModuleLocked)
	case errors.Is(err, service.ErrUnknownModule):
		response.Fail(c, http.StatusNotFound, response.ErrUnknownModule)
	case errors.Is(err, service.ErrCareerUnknown):
		response.Fail(c, http.StatusNotFound, response.ErrCareerUnknown)
	case errors.Is(err, service.ErrCareerNotSet):
		response.Fail(c, http.StatusConflict, response.ErrCareerNotSet)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// GetRoadmap godoc
// GET /api/v1/training/roadmap
// Returns the authenticated user's module layout.
func (h *TrainingHandler) GetRoadmap(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	modules, err := h.trainingService.GetRoadmap(c.Request.Context(), claims.UserID)
	if err != nil {
		failTraining(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// SelectCareer godoc
// POST /api/v1/training/career
// Confirms a career path, completing career_path and unlocking the skill test.
func (h *TrainingHandler) SelectCareer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SelectCareerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	modules, err := h.trainingService.SelectCareer(c.Request.Context(), claims.UserID, req.CareerID)
	if err != nil {
		failTraining(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// GetSelectedCareer godoc
// GET /api/v1/training/career
// Returns the user's confirmed career path.
func (h *TrainingHandler) GetSelectedCareer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	career, err := h.trainingService.SelectedCareer(c.Request.Context(), claims.UserID)
	if err != nil {
		failTraining(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"career": career})
}

// CompleteModule godoc
// POST /api/v1/training/modules/complete
// Marks a non-test module completed and activates the next one.
func (h *TrainingHandler) CompleteModule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CompleteModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	modules, err := h.trainingService.CompleteModule(c.Request.Context(), claims.UserID, req.ModuleID, nil)
	if err != nil {
		failTraining(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// Reset godoc
// POST /api/v1/training/reset
// Clears the user's roadmap progress and career selection.
func (h *TrainingHandler) Reset(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	modules, err := h.trainingService.Reset(c.Request.Context(), claims.UserID)
	if err != nil {
		failTraining(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}
