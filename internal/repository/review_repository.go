package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yamdb/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListByTitle returns one page of a title's reviews, newest first.
func (r *ReviewRepository) ListByTitle(ctx context.Context, titleID uint, page Page) ([]models.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := page.apply(q).
		Preload("Author").
		Order("pub_date DESC").
		Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// GetByID looks the review up inside its title and returns (nil, nil) when
// either does not match.
func (r *ReviewRepository) GetByID(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// ExistsForAuthor reports whether author already reviewed the title.
func (r *ReviewRepository) ExistsForAuthor(ctx context.Context, titleID uint, authorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the review. A second review of the same title by the same
// author violates the unique index and yields ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error)
}

// Update writes text and score; title, author and pub_date never change.
func (r *ReviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).
		Model(review).
		Omit(clause.Associations).
		Select("text", "score").
		Updates(review).Error
	return translate(err)
}

func (r *ReviewRepository) Delete(ctx context.Context, review *models.Review) error {
	return translate(r.db.WithContext(ctx).Delete(&models.Review{}, review.ID).Error)
}
