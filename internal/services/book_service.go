package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/book-catalog/backend/internal/events"
	"github.com/book-catalog/backend/internal/metrics"
	"github.com/book-catalog/backend/internal/models"
	"github.com/book-catalog/backend/internal/repositories"
	"go.uber.org/zap"
)

type BookStore interface {
	Create(ctx context.Context, name, description string) (*models.Book, error)
	FindAll(ctx context.Context) ([]models.Book, error)
	FindByID(ctx context.Context, id int64) (*models.Book, error)
	Update(ctx context.Context, id int64, name, description string) (*models.Book, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type ActivityLog interface {
	Append(ctx context.Context, p repositories.AppendParams) (*models.Activity, error)
	ListAll(ctx context.Context) ([]models.Activity, error)
	ListByUser(ctx context.Context, userID string) ([]models.Activity, error)
}

// BookService runs book mutations and records each confirmed one in the activity log.
//
// The two stores are not covered by one transaction: the "before" snapshot is read separately from
// the write, and a crash between a write and its append leaves the write unlogged. An activity is
// only appended after the write it describes has succeeded.
type BookService struct {
	books      BookStore
	activities ActivityLog
	publisher  events.Publisher
	log        *zap.Logger
}

func NewBookService(
	books BookStore,
	activities ActivityLog,
	publisher events.Publisher,
	log *zap.Logger,
) *BookService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &BookService{
		books:      books,
		activities: activities,
		publisher:  publisher,
		log:        log,
	}
}

func (s *BookService) List(ctx context.Context) ([]models.Book, error) {
	return s.books.FindAll(ctx)
}

// Get returns nil without error when the book does not exist.
func (s *BookService) Get(ctx context.Context, id int64) (*models.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return b, err
}

func (s *BookService) Create(ctx context.Context, actor models.Actor, name, description string) (*models.Book, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	book, err := s.books.Create(ctx, name, description)
	if err != nil {
		metrics.BookMutationsTotal.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("create book: %w", err)
	}
	metrics.BookMutationsTotal.WithLabelValues("create", "ok").Inc()

	if err := s.record(ctx, actor, models.ActionBookCreated, book.ID, book.Snapshot()); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) Update(ctx context.Context, actor models.Actor, id int64, name, description string) (*models.Book, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	var before *models.BookSnapshot
	current, err := s.books.FindByID(ctx, id)
	switch {
	case err == nil:
		snap := current.Snapshot()
		before = &snap
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("load book %d: %w", id, err)
	}

	updated, err := s.books.Update(ctx, id, name, description)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.BookMutationsTotal.WithLabelValues("update", "not_found").Inc()
			return nil, &NotFoundError{Entity: "Book", ID: id}
		}
		metrics.BookMutationsTotal.WithLabelValues("update", "error").Inc()
		return nil, fmt.Errorf("update book %d: %w", id, err)
	}
	metrics.BookMutationsTotal.WithLabelValues("update", "ok").Inc()

	details := models.UpdateDetails{Before: before, After: updated.Snapshot()}
	if err := s.record(ctx, actor, models.ActionBookUpdated, id, details); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete reports false for a missing id instead of failing.
func (s *BookService) Delete(ctx context.Context, actor models.Actor, id int64) (bool, error) {
	var snap *models.BookSnapshot
	current, err := s.books.FindByID(ctx, id)
	switch {
	case err == nil:
		v := current.Snapshot()
		snap = &v
	case !errors.Is(err, repositories.ErrNotFound):
		return false, fmt.Errorf("load book %d: %w", id, err)
	}

	removed, err := s.books.Delete(ctx, id)
	if err != nil {
		metrics.BookMutationsTotal.WithLabelValues("delete", "error").Inc()
		return false, fmt.Errorf("delete book %d: %w", id, err)
	}
	if !removed || snap == nil {
		metrics.BookMutationsTotal.WithLabelValues("delete", "not_found").Inc()
		return false, nil
	}
	metrics.BookMutationsTotal.WithLabelValues("delete", "ok").Inc()

	if err := s.record(ctx, actor, models.ActionBookDeleted, id, *snap); err != nil {
		return false, err
	}
	return true, nil
}

func (s *BookService) record(ctx context.Context, actor models.Actor, action string, bookID int64, details any) error {
	a, err := s.activities.Append(ctx, repositories.AppendParams{
		Action:     action,
		EntityType: models.EntityBook,
		EntityID:   &bookID,
		Details:    details,
		UserID:     actor.UserID,
		UserEmail:  actor.DisplayEmail(),
	})
	if err != nil {
		s.log.Error("activity append failed after book mutation",
			zap.String("action", action),
			zap.Int64("book_id", bookID),
			zap.String("user_id", actor.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("append activity: %w", err)
	}
	metrics.ActivitiesAppendedTotal.WithLabelValues(action).Inc()

	if err := s.publisher.Publish(ctx, events.ChannelActivity, events.NewActivityEvent(a)); err != nil {
		s.log.Warn("failed to publish activity event", zap.Int64("activity_id", a.ID), zap.Error(err))
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	return nil
}
