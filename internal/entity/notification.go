package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationLeadAssigned = "lead_assigned"
	NotificationClientReady  = "client_ready"
	NotificationHandoff      = "handoff"
)

// Notification is the record the emitter produces for an affected user when
// an assignment, conversion or handoff happens. Delivery is best-effort; a
// failed notification never rolls back the mutation that triggered it.
type Notification struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNotification(userID int, kind, title, message string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
