package services

import (
	"context"

	"github.com/book-catalog/backend/internal/models"
)

type ActivityService struct {
	activities ActivityLog
}

func NewActivityService(activities ActivityLog) *ActivityService {
	return &ActivityService{activities: activities}
}

// Recent returns the newest activities across all users, capped by the log.
func (s *ActivityService) Recent(ctx context.Context) ([]models.Activity, error) {
	return s.activities.ListAll(ctx)
}

func (s *ActivityService) ByUser(ctx context.Context, userID string) ([]models.Activity, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "userId", Message: "must not be empty"}
	}
	return s.activities.ListByUser(ctx, userID)
}
