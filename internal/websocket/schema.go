package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	// ActionAnswer stages and submits an option for the current question.
	ActionAnswer Action = "answer"
	// ActionEvent reports a client-observed integrity event.
	ActionEvent Action = "event"
	// ActionAck acknowledges the summary and returns to the roadmap.
	ActionAck Action = "ack"
	ActionPing Action = "ping"
)

// RequestPayload is the single client message shape; fields are used
// per-action.
type RequestPayload struct {
	Action   Action `json:"action"`
	Selected *int   `json:"selected,omitempty"` // answer
	Kind     string `json:"kind,omitempty"`     // event
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	// EventQuestion carries the next question to present.
	EventQuestion Event = "question"
	// EventWarning carries a violation notice ("Violation (...). Attempt n/3.").
	EventWarning Event = "warning"
	// EventTick carries the remaining seconds once per second.
	EventTick Event = "tick"
	// EventFinished signals the terminal state with the finish reason.
	EventFinished Event = "finished"
	// EventSummary carries the final score report.
	EventSummary Event = "summary"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// ResponsePayload is the server message envelope.
type ResponsePayload struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ErrorResponse is the server error envelope.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
