package events

import (
	"context"

	"github.com/book-catalog/backend/internal/models"
)

const (
	EventActivityAppended = "activity_appended"

	ChannelActivity = "events:activity"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(Event)) error
}

func NewActivityEvent(a *models.Activity) Event {
	payload := map[string]any{
		"id":         a.ID,
		"action":     a.Action,
		"entityType": a.EntityType,
		"userId":     a.UserID,
		"userEmail":  a.UserEmail,
		"timestamp":  a.Timestamp,
	}
	if a.EntityID != nil {
		payload["entityId"] = *a.EntityID
	}
	if a.Details != nil {
		payload["details"] = *a.Details
	}
	return Event{Type: EventActivityAppended, Payload: payload}
}

// NopPublisher drops events; used when redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
