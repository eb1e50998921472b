package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the contest service
const (
	EventUserRegistered  = "user.registered"
	EventUserInvited     = "user.invited"
	EventRatingSubmitted = "rating.submitted"
	EventImageUploaded   = "image.uploaded"
)

// Event is the envelope every published message shares
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope around a typed payload
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "contest-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher abstracts the broker so services can be tested without one
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// ===== EVENT PAYLOADS =====

type UserRegisteredEvent struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	UserType string    `json:"user_type"`
	Category string    `json:"category"`
}

type UserInvitedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	InvitedBy uuid.UUID `json:"invited_by"`
}

type RatingSubmittedEvent struct {
	EvaluatorID     uuid.UUID `json:"evaluator_id"`
	EvaluatedUserID uuid.UUID `json:"evaluated_user_id"`
	Category        string    `json:"category"`
	CriteriaCount   int       `json:"criteria_count"`
	Overwrite       bool      `json:"overwrite"`
}

type ImageUploadedEvent struct {
	ImageID     uuid.UUID `json:"image_id"`
	UserID      uuid.UUID `json:"user_id"`
	Subcategory string    `json:"subcategory"`
	Size        int64     `json:"size"`
}
