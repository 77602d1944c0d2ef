package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careerflow/assessment-backend/internal/engine"
	"github.com/careerflow/assessment-backend/internal/middleware"
	"github.com/careerflow/assessment-backend/internal/model"
	"github.com/careerflow/assessment-backend/internal/response"
	"github.com/careerflow/assessment-backend/internal/service"
	"github.com/careerflow/assessment-backend/internal/validator"
)

// AssessmentHandler handles the proctored test REST endpoints.
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentService *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

// failAssessment translates service and engine errors into envelope codes.
func failAssessment(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrSessionInProgress):
		response.Fail(c, http.StatusConflict, response.ErrSessionInProgress)
	case errors.Is(err, service.ErrBankUnavailable), errors.Is(err, engine.ErrNoQuestions):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrBankUnavailable)
	case errors.Is(err, service.ErrModuleLocked):
		response.Fail(c, http.StatusForbidden, response.ErrModuleLocked)
	case errors.Is(err, service.ErrCareerNotSet):
		response.Fail(c, http.StatusConflict, response.ErrCareerNotSet)
	case errors.Is(err, engine.ErrNotRunning):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotRunning)
	case errors.Is(err, engine.ErrNotFinished):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotFinished)
	case errors.Is(err, engine.ErrAcknowledged):
		response.Fail(c, http.StatusConflict, response.ErrSessionAcknowledged)
	case errors.Is(err, engine.ErrNoSelection):
		response.Fail(c, http.StatusBadRequest, response.ErrNoSelection)
	case errors.Is(err, engine.ErrInvalidOption):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
	case errors.Is(err, engine.ErrFullscreenDenied):
		response.Fail(c, http.StatusPreconditionFailed, response.ErrFullscreenRequired)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func sessionParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// Start godoc
// POST /api/v1/assessment/sessions
// Starts a proctored test session and returns the first question.
func (h *AssessmentHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartAssessmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.assessmentService.Start(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failAssessment(c, err)
		return
	}

	response.Success(c, http.StatusCreated, state)
}

// GetState godoc
// GET /api/v1/assessment/sessions/:session_id
// Returns the running-session snapshot for reconnecting clients.
func (h *AssessmentHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	state, err := h.assessmentService.State(sessionID, claims.UserID)
	if err != nil {
		failAssessment(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Answer godoc
// POST /api/v1/assessment/sessions/:session_id/answers
// Submits the selected option for the current question.
func (h *AssessmentHandler) Answer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	next, err := h.assessmentService.Answer(c.Request.Context(), sessionID, claims.UserID, *req.Selected)
	if err != nil {
		failAssessment(c, err)
		return
	}

	if next == nil {
		// Terminal transition; the client fetches the summary next.
		state, err := h.assessmentService.State(sessionID, claims.UserID)
		if err != nil {
			failAssessment(c, err)
			return
		}
		response.Success(c, http.StatusOK, state)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": next})
}

// ReportEvent godoc
// POST /api/v1/assessment/sessions/:session_id/events
// Reports a client-observed integrity event.
func (h *AssessmentHandler) ReportEvent(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var req model.ProctorEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	notice, err := h.assessmentService.ReportEvent(c.Request.Context(), sessionID, claims.UserID, engine.EventKind(req.Kind))
	if err != nil {
		failAssessment(c, err)
		return
	}

	state, err := h.assessmentService.State(sessionID, claims.UserID)
	if err != nil {
		failAssessment(c, err)
		return
	}

	payload := gin.H{"state": state}
	if notice != nil {
		payload["warning"] = gin.H{
			"message": notice.String(),
			"count":   notice.Count,
			"limit":   notice.Limit,
		}
	}
	response.Success(c, http.StatusOK, payload)
}

// GetSummary godoc
// GET /api/v1/assessment/sessions/:session_id/summary
// Returns the score report of a finished session.
func (h *AssessmentHandler) GetSummary(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	summary, err := h.assessmentService.Summary(sessionID, claims.UserID)
	if err != nil {
		failAssessment(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// Acknowledge godoc
// POST /api/v1/assessment/sessions/:session_id/ack
// Confirms the summary was viewed; advances the roadmap and releases the session.
func (h *AssessmentHandler) Acknowledge(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	if err := h.assessmentService.Acknowledge(c.Request.Context(), sessionID, claims.UserID); err != nil {
		failAssessment(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
