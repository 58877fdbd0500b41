package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationJob is queued when a wizard session starts generating. Ticket ties
// the result back to the wizard attempt that asked for it.
type GenerationJob struct {
	ID         uuid.UUID    `json:"id"`
	SessionID  uuid.UUID    `json:"sessionId"`
	OwnerID    uuid.UUID    `json:"ownerId"`
	Ticket     string       `json:"ticket"`
	Config     CourseConfig `json:"config"`
	EnqueuedAt time.Time    `json:"enqueuedAt"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	JobID     uuid.UUID `json:"jobId"`
	SessionID uuid.UUID `json:"sessionId"`
	Step      int       `json:"step"`
	Task      string    `json:"task"`
	StepName  string    `json:"stepName"`
}

type CompletedEvent struct {
	JobID     uuid.UUID `json:"jobId"`
	SessionID uuid.UUID `json:"sessionId"`
	CourseID  uuid.UUID `json:"courseId"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"jobId"`
	SessionID    uuid.UUID `json:"sessionId"`
	ErrorCode    string    `json:"errorCode"`
	ErrorMessage string    `json:"errorMessage"`
	Details      string    `json:"details,omitempty"`
}

// APIError is the flat error envelope returned by every endpoint.
type APIError struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Details   string            `json:"details,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}
