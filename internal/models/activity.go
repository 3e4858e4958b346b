package models

import "time"

// Activity actions
const (
	ActionBookCreated = "BOOK_CREATED"
	ActionBookUpdated = "BOOK_UPDATED"
	ActionBookDeleted = "BOOK_DELETED"
)

// Entity types
const (
	EntityBook = "BOOK"
)

type Activity struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   *int64    `json:"entityId,omitempty"`
	Details    *string   `json:"details,omitempty"` // JSON, схема зависит от action
	UserID     string    `json:"userId"`
	UserEmail  string    `json:"userEmail"`
	Timestamp  time.Time `json:"timestamp"`
}

// Actor is the verified principal performing a mutation.
type Actor struct {
	UserID string
	Email  string
}

// DisplayEmail returns the email, falling back to the user id when the token had no email claim.
func (a Actor) DisplayEmail() string {
	if a.Email == "" {
		return a.UserID
	}
	return a.Email
}

// UpdateDetails is the details payload of a BOOK_UPDATED activity.
type UpdateDetails struct {
	Before *BookSnapshot `json:"before,omitempty"`
	After  BookSnapshot  `json:"after"`
}
