package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/book-catalog/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecentActivityLimit caps ListAll; older rows stay reachable through ListByUser.
const RecentActivityLimit = 100

type activityRecord struct {
	ID         int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Action     string         `gorm:"column:action;size:64;not null"`
	EntityType string         `gorm:"column:entity_type;size:64;not null"`
	EntityID   *int64         `gorm:"column:entity_id"`
	Details    datatypes.JSON `gorm:"column:details"`
	UserID     string         `gorm:"column:user_id;size:255;not null;index"`
	UserEmail  string         `gorm:"column:user_email;size:255;not null"`
	Timestamp  time.Time      `gorm:"column:timestamp;not null;index"`
}

func (activityRecord) TableName() string { return "activity" }

func (r *activityRecord) toModel() models.Activity {
	a := models.Activity{
		ID:         r.ID,
		Action:     r.Action,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		UserID:     r.UserID,
		UserEmail:  r.UserEmail,
		Timestamp:  r.Timestamp,
	}
	if len(r.Details) > 0 {
		d := string(r.Details)
		a.Details = &d
	}
	return a
}

type AppendParams struct {
	Action     string
	EntityType string
	EntityID   *int64
	Details    any
	UserID     string
	UserEmail  string
}

type ActivityRepo struct {
	db *gorm.DB

	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewActivityRepo(db *gorm.DB) *ActivityRepo {
	return &ActivityRepo{db: db, now: time.Now}
}

// stamp never goes backwards even if the wall clock does.
func (r *ActivityRepo) stamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.now().UTC()
	if t.Before(r.last) {
		t = r.last
	}
	r.last = t
	return t
}

// Append serializes details, stamps the write time and stores the row. Rows are never updated afterwards.
func (r *ActivityRepo) Append(ctx context.Context, p AppendParams) (*models.Activity, error) {
	rec := activityRecord{
		Action:     p.Action,
		EntityType: p.EntityType,
		EntityID:   p.EntityID,
		UserID:     p.UserID,
		UserEmail:  p.UserEmail,
	}
	if rec.UserEmail == "" {
		rec.UserEmail = p.UserID
	}
	if p.Details != nil {
		data, err := json.Marshal(p.Details)
		if err != nil {
			return nil, fmt.Errorf("marshal activity details: %w", err)
		}
		rec.Details = datatypes.JSON(data)
	}
	rec.Timestamp = r.stamp()

	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	a := rec.toModel()
	return &a, nil
}

// ListAll returns the newest RecentActivityLimit rows, newest first.
func (r *ActivityRepo) ListAll(ctx context.Context) ([]models.Activity, error) {
	return r.list(r.db.WithContext(ctx).Limit(RecentActivityLimit))
}

// ListByUser returns every row of one user, newest first.
func (r *ActivityRepo) ListByUser(ctx context.Context, userID string) ([]models.Activity, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *ActivityRepo) list(q *gorm.DB) ([]models.Activity, error) {
	var recs []activityRecord
	err := q.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.Activity, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out, nil
}
