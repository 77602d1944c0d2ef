package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/careerflow/assessment-backend/internal/config"
	"github.com/careerflow/assessment-backend/internal/middleware"
	"github.com/careerflow/assessment-backend/internal/response"
	"github.com/careerflow/assessment-backend/internal/service"
)

const keepAliveInterval = 30 * time.Second

// MonitorHandler serves the admin proctoring views.
type MonitorHandler struct {
	rdb            *redis.Client
	monitorService *service.MonitorService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, monitorService *service.MonitorService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// GetBoard godoc
// GET /api/v1/admin/monitor/sessions
// Returns all running sessions with live counters.
func (h *MonitorHandler) GetBoard(c *gin.Context) {
	entries, err := h.monitorService.GetBoard(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sessions": entries})
}

// GetRecentEvents godoc
// GET /api/v1/admin/monitor/events
// Returns the latest counted violations across all sessions.
func (h *MonitorHandler) GetRecentEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.monitorService.GetRecentEvents(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

// GetSessionEvents godoc
// GET /api/v1/admin/monitor/sessions/:session_id/events
// Returns the full proctor event log for one session.
func (h *MonitorHandler) GetSessionEvents(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	events, err := h.monitorService.GetSessionEvents(c.Request.Context(), sessionID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

// MonitorSessionSSE godoc
// GET /api/v1/admin/monitor/sessions/:session_id/stream
// Streams a session's live violation feed over SSE.
func (h *MonitorHandler) MonitorSessionSSE(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.ProctorChannel(sessionID.String()))
	defer pubsub.Close()

	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Str("session_id", sessionID.String()).Msg("Admin attached to live proctor SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("session_id", sessionID.String()).Msg("Admin detached from live proctor SSE")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}
