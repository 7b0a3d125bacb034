package events

import "time"

// Event types
const (
	AccountCreated = "account.created"
	AccountUpdated = "account.updated"
	AccountDeleted = "account.deleted"
)

// Stream names
const (
	AccountEventsStream = "account.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type AccountCreatedEvent struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

type AccountUpdatedEvent struct {
	AccountID     string `json:"accountId"`
	Email         string `json:"email"`
	PreviousEmail string `json:"previousEmail,omitempty"`
	Name          string `json:"name"`
}

type AccountDeletedEvent struct {
	Email string `json:"email"`
}
