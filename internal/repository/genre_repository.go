package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/yamdb/backend/internal/models"
	"gorm.io/gorm"
)

type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) Create(ctx context.Context, genre *models.Genre) error {
	return translate(r.db.WithContext(ctx).Create(genre).Error)
}

// GetBySlug returns (nil, nil) when the slug is unknown.
func (r *GenreRepository) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var genre models.Genre
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&genre).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &genre, nil
}

// GetBySlugs resolves every slug it can; callers compare lengths to find
// unknown ones.
func (r *GenreRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	var genres []models.Genre
	if len(slugs) == 0 {
		return genres, nil
	}
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&genres).Error
	return genres, err
}

func (r *GenreRepository) List(ctx context.Context, search string, page Page) ([]models.Genre, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Genre{})
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var genres []models.Genre
	if err := page.apply(q).Order("name ASC").Find(&genres).Error; err != nil {
		return nil, 0, err
	}
	return genres, total, nil
}

// DeleteBySlug removes the genre and detaches it from every title.
func (r *GenreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var genre models.Genre
		if err := tx.Where("slug = ?", slug).First(&genre).Error; err != nil {
			return translate(err)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", genre.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&genre).Error
	})
}
