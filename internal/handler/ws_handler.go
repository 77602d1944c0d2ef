package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/careerflow/assessment-backend/internal/engine"
	"github.com/careerflow/assessment-backend/internal/middleware"
	"github.com/careerflow/assessment-backend/internal/service"
	ws "github.com/careerflow/assessment-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live assessment session over WebSocket.
type WSHandler struct {
	assessmentService *service.AssessmentService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(assessmentService *service.AssessmentService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		assessmentService: assessmentService,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/assessment/:session_id/stream
// Bidirectional stream for one live session: the client sends answers and
// integrity events, the server pushes questions, warnings, ticks and the
// terminal summary.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	// Validate ownership before paying for the upgrade.
	state, err := h.assessmentService.State(sessionID, claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("session_id", sessionID.String()).
		Logger()

	// All writes funnel through one serialized writer; the push-relay
	// goroutine and the read loop share the connection.
	writer := ws.NewWriter(conn)

	pushes, unsubscribe, err := h.assessmentService.Subscribe(sessionID, claims.UserID)
	if err != nil {
		writer.WriteError("session not found")
		return
	}
	defer unsubscribe()

	wsLog.Info().Msg("Client connected")

	// Initial snapshot so reconnecting clients resume mid-question.
	writer.WriteJSON(ws.EventQuestion, state)

	// Writer goroutine: relays service pushes until the connection or the
	// subscription ends.
	writerCtx, cancelWriter := context.WithCancel(c.Request.Context())
	defer cancelWriter()
	go func() {
		for {
			select {
			case <-writerCtx.Done():
				return
			case push, ok := <-pushes:
				if !ok {
					return
				}
				if err := writer.WriteJSON(ws.Event(push.Event), push.Data); err != nil {
					return
				}
			}
		}
	}()

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(writer, sessionID, claims.UserID, &msg)
		case ws.ActionEvent:
			h.handleEvent(writer, sessionID, claims.UserID, &msg)
		case ws.ActionAck:
			if err := h.assessmentService.Acknowledge(context.Background(), sessionID, claims.UserID); err != nil {
				writer.WriteError(err.Error())
				continue
			}
			wsLog.Info().Msg("Session acknowledged")
			return
		case ws.ActionPing:
			writer.WriteJSON(ws.EventPong, nil)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			writer.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// handleAnswer submits the selected option. Question pushes reach the
// client through the subscription; only errors are written here.
func (h *WSHandler) handleAnswer(writer *ws.Writer, sessionID uuid.UUID, userID int, msg *ws.RequestPayload) {
	if msg.Selected == nil {
		writer.WriteError("selected is required")
		return
	}
	if _, err := h.assessmentService.Answer(context.Background(), sessionID, userID, *msg.Selected); err != nil {
		writer.WriteError(err.Error())
	}
}

// handleEvent reports a client-observed integrity event. Warning pushes
// reach the client through the subscription.
func (h *WSHandler) handleEvent(writer *ws.Writer, sessionID uuid.UUID, userID int, msg *ws.RequestPayload) {
	if msg.Kind == "" {
		writer.WriteError("kind is required")
		return
	}
	if _, err := h.assessmentService.ReportEvent(context.Background(), sessionID, userID, engine.EventKind(msg.Kind)); err != nil {
		writer.WriteError(err.Error())
	}
}
