package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/permission"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

type CommentService struct {
	commentRepo *repository.CommentRepository
	reviewRepo  *repository.ReviewRepository
}

func NewCommentService(commentRepo *repository.CommentRepository, reviewRepo *repository.ReviewRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

func (s *CommentService) List(ctx context.Context, titleID, reviewID uint, page repository.Page) (Page[models.Comment], error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return Page[models.Comment]{}, err
	}
	comments, total, err := s.commentRepo.ListByReview(ctx, reviewID, page)
	if err != nil {
		logger.Log.Error("Failed to list comments", zap.Uint("review_id", reviewID), zap.Error(err))
		return Page[models.Comment]{}, err
	}
	return Page[models.Comment]{Items: comments, Total: total, Page: page}, nil
}

func (s *CommentService) Get(ctx context.Context, titleID, reviewID, commentID uint) (*models.Comment, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	return comment, nil
}

func (s *CommentService) Create(ctx context.Context, actor permission.Actor, titleID, reviewID uint, text string) (*models.Comment, error) {
	if err := authorize(permission.AuthenticatedOrReadOnly(http.MethodPost, actor)); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{ReviewID: reviewID, AuthorID: actor.UserID, Text: text}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, ErrNotFound
		}
		logger.Log.Error("Failed to create comment", zap.Uint("review_id", reviewID), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("review_id", reviewID),
		zap.String("author_id", actor.UserID.String()),
	)
	return s.Get(ctx, titleID, reviewID, comment.ID)
}

func (s *CommentService) Update(ctx context.Context, actor permission.Actor, titleID, reviewID, commentID uint, text *string) (*models.Comment, error) {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(permission.AuthorOrStaffOrReadOnly(http.MethodPatch, actor, comment.AuthorID)); err != nil {
		return nil, err
	}
	if text == nil {
		return comment, nil
	}

	comment.Text = *text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		logger.Log.Error("Failed to update comment", zap.Uint("comment_id", comment.ID), zap.Error(err))
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, actor permission.Actor, titleID, reviewID, commentID uint) error {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := authorize(permission.AuthorOrStaffOrReadOnly(http.MethodDelete, actor, comment.AuthorID)); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, comment); err != nil {
		logger.Log.Error("Failed to delete comment", zap.Uint("comment_id", comment.ID), zap.Error(err))
		return err
	}

	logger.Log.Info("Comment deleted",
		zap.Uint("comment_id", comment.ID),
		zap.String("actor_id", actor.UserID.String()),
	)
	return nil
}

// requireReview checks that the review exists and belongs to the title.
func (s *CommentService) requireReview(ctx context.Context, titleID, reviewID uint) error {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrNotFound
	}
	return nil
}
