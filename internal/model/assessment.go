package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates persisted assessment session states.
// Engine-side "idle" sessions are never persisted; a row is created
// when the test actually starts.
type SessionStatus string

const (
	SessionStatusRunning  SessionStatus = "RUNNING"
	SessionStatusFinished SessionStatus = "FINISHED"
)

// AssessmentSession is one persisted test attempt.
type AssessmentSession struct {
	ID             uuid.UUID     `json:"id"`
	UserID         int           `json:"user_id"`
	CareerID       string        `json:"career_id"`
	ModuleID       string        `json:"module_id"`
	Status         SessionStatus `json:"status"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     *time.Time    `json:"finished_at,omitempty"`
	FinalScore     *int          `json:"final_score,omitempty"`
	ViolationCount int           `json:"violation_count"`
	FinishReason   *string       `json:"finish_reason,omitempty"`
}

// SessionAnswer is one logged answer within a session, persisted
// asynchronously by the answer-log worker.
type SessionAnswer struct {
	SessionID      uuid.UUID  `json:"session_id"`
	QuestionNumber int        `json:"question_number"`
	QuestionID     int        `json:"question_id"`
	Difficulty     Difficulty `json:"difficulty"`
	Selected       int        `json:"selected"`
	Correct        bool       `json:"correct"`
	AnsweredAt     time.Time  `json:"answered_at"`
}

// ProctorEvent is a persisted integrity record. Counted is false for
// suppressed-only events such as context-menu blocks.
type ProctorEvent struct {
	ID         int64     `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	UserID     int       `json:"user_id"`
	Kind       string    `json:"kind"`
	Reason     string    `json:"reason"`
	Counted    bool      `json:"counted"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StartAssessmentRequest is the payload for starting a test session.
type StartAssessmentRequest struct {
	ModuleID          string `json:"module_id" binding:"required,oneof=skill_test aptitude communication hr_round"`
	FullscreenGranted bool   `json:"fullscreen_granted"`
}

// AnswerRequest is the payload for answering the current question.
type AnswerRequest struct {
	Selected *int `json:"selected" binding:"required,min=0"`
}

// ProctorEventRequest is the payload for a client-reported integrity event.
type ProctorEventRequest struct {
	Kind string `json:"kind" binding:"required,oneof=visibility_hidden copy paste shortcut fullscreen_exit context_menu"`
}
