package repository

import (
	"context"
	"errors"

	"github.com/yamdb/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) ListByReview(ctx context.Context, reviewID uint, page Page) ([]models.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := page.apply(q).
		Preload("Author").
		Order("pub_date DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// GetByID returns (nil, nil) when the comment does not belong to the review.
func (r *CommentRepository) GetByID(ctx context.Context, reviewID, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND review_id = ?", commentID, reviewID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).
		Model(comment).
		Omit(clause.Associations).
		Select("text").
		Updates(comment).Error
	return translate(err)
}

func (r *CommentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Delete(&models.Comment{}, comment.ID).Error)
}
