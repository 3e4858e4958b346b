package repositories

import (
	"context"
	"errors"

	"github.com/book-catalog/backend/internal/models"
	"gorm.io/gorm"
)

type bookRecord struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string `gorm:"column:name;not null"`
	Description string `gorm:"column:description;type:text;not null"`
}

func (bookRecord) TableName() string { return "book" }

func (r *bookRecord) toModel() models.Book {
	return models.Book{ID: r.ID, Name: r.Name, Description: r.Description}
}

type BookRepo struct {
	db *gorm.DB
}

func NewBookRepo(db *gorm.DB) *BookRepo {
	return &BookRepo{db: db}
}

func (r *BookRepo) Create(ctx context.Context, name, description string) (*models.Book, error) {
	rec := bookRecord{Name: name, Description: description}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	b := rec.toModel()
	return &b, nil
}

// FindAll returns every book in insertion (id) order.
func (r *BookRepo) FindAll(ctx context.Context) ([]models.Book, error) {
	var recs []bookRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}

	books := make([]models.Book, 0, len(recs))
	for i := range recs {
		books = append(books, recs[i].toModel())
	}
	return books, nil
}

func (r *BookRepo) FindByID(ctx context.Context, id int64) (*models.Book, error) {
	var rec bookRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b := rec.toModel()
	return &b, nil
}

// Update overwrites both fields and returns the stored row; a missing id surfaces as ErrNotFound
// from the lookup that follows the write.
func (r *BookRepo) Update(ctx context.Context, id int64, name, description string) (*models.Book, error) {
	err := r.db.WithContext(ctx).
		Model(&bookRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description}).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Delete reports whether a row was actually removed.
func (r *BookRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&bookRecord{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
