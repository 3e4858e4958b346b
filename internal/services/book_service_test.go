package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/book-catalog/backend/internal/events"
	"github.com/book-catalog/backend/internal/metrics"
	"github.com/book-catalog/backend/internal/models"
	"github.com/book-catalog/backend/internal/repositories"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	u1 = models.Actor{UserID: "auth0|u1", Email: "u1@example.com"}
	u2 = models.Actor{UserID: "auth0|u2"}
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, _ string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type failingLog struct {
	ActivityLog
}

func (failingLog) Append(context.Context, repositories.AppendParams) (*models.Activity, error) {
	return nil, errors.New("disk full")
}

type fixture struct {
	svc        *BookService
	books      *repositories.BookRepo
	activities *repositories.ActivityRepo
	pub        *capturePublisher
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(repositories.Records()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		books:      repositories.NewBookRepo(db),
		activities: repositories.NewActivityRepo(db),
		pub:        &capturePublisher{},
	}
	f.svc = NewBookService(f.books, f.activities, f.pub, zap.NewNop())
	return f
}

func (f *fixture) allActivities(t *testing.T) []models.Activity {
	t.Helper()
	all, err := f.activities.ListAll(context.Background())
	require.NoError(t, err)
	return all
}

func decode(t *testing.T, a models.Activity, v any) {
	t.Helper()
	require.NotNil(t, a.Details)
	require.NoError(t, json.Unmarshal([]byte(*a.Details), v))
}

func TestCreate_LogsActivity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	book, err := f.svc.Create(ctx, u1, "Dune", "Sci-fi novel")
	require.NoError(t, err)
	assert.NotZero(t, book.ID)

	books, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, *book, books[0])

	acts := f.allActivities(t)
	require.Len(t, acts, 1)
	a := acts[0]
	assert.Equal(t, models.ActionBookCreated, a.Action)
	assert.Equal(t, models.EntityBook, a.EntityType)
	require.NotNil(t, a.EntityID)
	assert.Equal(t, book.ID, *a.EntityID)
	assert.Equal(t, u1.UserID, a.UserID)
	assert.Equal(t, u1.Email, a.UserEmail)

	var snap models.BookSnapshot
	decode(t, a, &snap)
	assert.Equal(t, models.BookSnapshot{Name: "Dune", Description: "Sci-fi novel"}, snap)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, events.EventActivityAppended, f.pub.events[0].Type)
}

func TestCreate_RejectsEmptyName(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), u1, "  ", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.allActivities(t))
}

func TestUpdate_LogsBeforeAndAfter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	book, err := f.svc.Create(ctx, u1, "Dune", "Sci-fi novel")
	require.NoError(t, err)
	other, err := f.svc.Create(ctx, u1, "Emma", "Austen")
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, u2, book.ID, "Dune", "Sci-fi classic")
	require.NoError(t, err)
	assert.Equal(t, "Sci-fi classic", updated.Description)

	books, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, *updated, books[0])
	assert.Equal(t, *other, books[1], "other books untouched")

	acts := f.allActivities(t)
	require.Len(t, acts, 3)
	a := acts[0]
	assert.Equal(t, models.ActionBookUpdated, a.Action)
	assert.Equal(t, u2.UserID, a.UserID)
	assert.Equal(t, u2.UserID, a.UserEmail, "no email claim falls back to user id")

	var d models.UpdateDetails
	decode(t, a, &d)
	require.NotNil(t, d.Before)
	assert.Equal(t, "Dune", d.Before.Name)
	assert.Equal(t, "Sci-fi novel", d.Before.Description)
	assert.Equal(t, "Sci-fi classic", d.After.Description)
}

func TestUpdate_MissingBookIsNotFound(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Update(context.Background(), u1, 99, "x", "y")
	require.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Book with ID 99 not found.", nf.Error())
	assert.Empty(t, f.allActivities(t))
}

func TestDelete_LogsLastKnownState(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	book, err := f.svc.Create(ctx, u1, "Dune", "Sci-fi novel")
	require.NoError(t, err)

	removed, err := f.svc.Delete(ctx, u1, book.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	books, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	acts := f.allActivities(t)
	require.Len(t, acts, 2)
	a := acts[0]
	assert.Equal(t, models.ActionBookDeleted, a.Action)
	require.NotNil(t, a.EntityID)
	assert.Equal(t, book.ID, *a.EntityID)

	var snap models.BookSnapshot
	decode(t, a, &snap)
	assert.Equal(t, "Dune", snap.Name)
}

func TestDelete_MissingBookReturnsFalse(t *testing.T) {
	f := setup(t)

	removed, err := f.svc.Delete(context.Background(), u1, 12345)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, f.allActivities(t))
	assert.Empty(t, f.pub.events)
}

func TestGet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	book, err := f.svc.Create(ctx, u1, "Dune", "Sci-fi novel")
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book, got)

	got, err = f.svc.Get(ctx, book.ID+1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAppendFailurePropagates(t *testing.T) {
	f := setup(t)
	svc := NewBookService(f.books, failingLog{f.activities}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), u1, "Dune", "Sci-fi novel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	books, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 1, "the mutation itself stays durable")
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := setup(t)
	f.pub.err = errors.New("redis down")

	_, err := f.svc.Create(context.Background(), u1, "Dune", "Sci-fi novel")
	require.NoError(t, err)
	assert.Len(t, f.allActivities(t), 1)
}

func TestScenario_CreateUpdateDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	book, err := f.svc.Create(ctx, u1, "Dune", "Sci-fi novel")
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, u2, book.ID, "Dune", "Sci-fi classic")
	require.NoError(t, err)
	removed, err := f.svc.Delete(ctx, u1, book.ID)
	require.NoError(t, err)
	require.True(t, removed)

	acts := f.allActivities(t)
	require.Len(t, acts, 3)
	assert.Equal(t, models.ActionBookDeleted, acts[0].Action)
	assert.Equal(t, models.ActionBookUpdated, acts[1].Action)
	assert.Equal(t, models.ActionBookCreated, acts[2].Action)
	for i := 1; i < len(acts); i++ {
		assert.False(t, acts[i].Timestamp.After(acts[i-1].Timestamp))
	}

	var deleted models.BookSnapshot
	decode(t, acts[0], &deleted)
	assert.Equal(t, models.BookSnapshot{Name: "Dune", Description: "Sci-fi classic"}, deleted)

	mine, err := NewActivityService(f.activities).ByUser(ctx, u1.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func mutations(operation, result string) float64 {
	return testutil.ToFloat64(metrics.BookMutationsTotal.WithLabelValues(operation, result))
}

func appended(action string) float64 {
	return testutil.ToFloat64(metrics.ActivitiesAppendedTotal.WithLabelValues(action))
}

func TestMetrics_MutationResults(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	createOK, updateOK, updateMissing := mutations("create", "ok"), mutations("update", "ok"), mutations("update", "not_found")
	deleteOK, deleteMissing := mutations("delete", "ok"), mutations("delete", "not_found")
	created, updated, deleted := appended(models.ActionBookCreated), appended(models.ActionBookUpdated), appended(models.ActionBookDeleted)

	_, err := f.svc.Update(ctx, u1, 404, "x", "y")
	require.ErrorIs(t, err, ErrNotFound)
	removed, err := f.svc.Delete(ctx, u1, 404)
	require.NoError(t, err)
	require.False(t, removed)

	assert.Equal(t, updateMissing+1, mutations("update", "not_found"))
	assert.Equal(t, deleteMissing+1, mutations("delete", "not_found"))
	assert.Equal(t, updateOK, mutations("update", "ok"))
	assert.Equal(t, deleteOK, mutations("delete", "ok"))
	assert.Equal(t, updated, appended(models.ActionBookUpdated))
	assert.Equal(t, deleted, appended(models.ActionBookDeleted))

	book, err := f.svc.Create(ctx, u1, "Dune", "Sci-fi novel")
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, u1, book.ID, "Dune", "Sci-fi classic")
	require.NoError(t, err)
	_, err = f.svc.Delete(ctx, u1, book.ID)
	require.NoError(t, err)

	assert.Equal(t, createOK+1, mutations("create", "ok"))
	assert.Equal(t, updateOK+1, mutations("update", "ok"))
	assert.Equal(t, deleteOK+1, mutations("delete", "ok"))
	assert.Equal(t, created+1, appended(models.ActionBookCreated))
	assert.Equal(t, updated+1, appended(models.ActionBookUpdated))
	assert.Equal(t, deleted+1, appended(models.ActionBookDeleted))
}

func TestMetrics_AppendFailureIsNotCounted(t *testing.T) {
	f := setup(t)
	svc := NewBookService(f.books, failingLog{f.activities}, nil, zap.NewNop())
	before := appended(models.ActionBookCreated)

	_, err := svc.Create(context.Background(), u1, "Dune", "Sci-fi novel")
	require.Error(t, err)
	assert.Equal(t, before, appended(models.ActionBookCreated))
}
