package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published by the engine
const (
	EventTestCreated      = "test.created"
	EventSessionStarted   = "session.started"
	EventSessionEvaluated = "session.evaluated"
	EventSessionCancelled = "session.cancelled"
)

// Event is the envelope for every message the engine publishes
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with the engine's identity stamped on
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "exam-engine",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events. Publishing is best-effort at the
// call sites: a failed publish never fails the business operation.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// TestCreatedEvent is emitted after a test definition is published
type TestCreatedEvent struct {
	TestID        string `json:"test_id"`
	Title         string `json:"title"`
	CreatedBy     string `json:"created_by"`
	QuestionCount int    `json:"question_count"`
}

// SessionStartedEvent is emitted when a fresh session is created
type SessionStartedEvent struct {
	SessionID     string `json:"session_id"`
	UserID        string `json:"user_id"`
	TestID        string `json:"test_id"`
	AttemptNumber int    `json:"attempt_number"`
}

// SessionCancelledEvent is emitted when a user cancels an active session
type SessionCancelledEvent struct {
	SessionID     string `json:"session_id"`
	UserID        string `json:"user_id"`
	TestID        string `json:"test_id"`
	AttemptNumber int    `json:"attempt_number"`
}

// SessionEvaluatedEvent is emitted once per evaluated session
type SessionEvaluatedEvent struct {
	SessionID     string  `json:"session_id"`
	UserID        string  `json:"user_id"`
	TestID        string  `json:"test_id"`
	AttemptNumber int     `json:"attempt_number"`
	TotalMarks    float64 `json:"total_marks"`
	Accuracy      float64 `json:"accuracy"`
	CorrectCount  int     `json:"correct_count"`
	WrongCount    int     `json:"wrong_count"`
	SkippedCount  int     `json:"skipped_count"`
}
