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

// ReviewPatch changes only the non-nil fields.
type ReviewPatch struct {
	Text  *string
	Score *int
}

type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	titleRepo  *repository.TitleRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, titleRepo *repository.TitleRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *ReviewService) List(ctx context.Context, titleID uint, page repository.Page) (Page[models.Review], error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return Page[models.Review]{}, err
	}
	reviews, total, err := s.reviewRepo.ListByTitle(ctx, titleID, page)
	if err != nil {
		logger.Log.Error("Failed to list reviews", zap.Uint("title_id", titleID), zap.Error(err))
		return Page[models.Review]{}, err
	}
	return Page[models.Review]{Items: reviews, Total: total, Page: page}, nil
}

func (s *ReviewService) Get(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}
	return review, nil
}

// Create stores the actor's review of the title. Each author reviews a title
// at most once.
func (s *ReviewService) Create(ctx context.Context, actor permission.Actor, titleID uint, text string, score int) (*models.Review, error) {
	if err := authorize(permission.AuthenticatedOrReadOnly(http.MethodPost, actor)); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if err := models.ValidateScore(score); err != nil {
		return nil, fieldError("score", err.Error())
	}

	exists, err := s.reviewRepo.ExistsForAuthor(ctx, titleID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Log.Warn("Duplicate review rejected",
			zap.Uint("title_id", titleID),
			zap.String("author_id", actor.UserID.String()),
		)
		return nil, &ValidationError{Detail: DuplicateReviewMessage}
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     text,
		Score:    score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, s.writeError(err)
	}

	logger.Log.Info("Review created",
		zap.Uint("review_id", review.ID),
		zap.Uint("title_id", titleID),
		zap.String("author_id", actor.UserID.String()),
	)
	return s.Get(ctx, titleID, review.ID)
}

func (s *ReviewService) Update(ctx context.Context, actor permission.Actor, titleID, reviewID uint, patch ReviewPatch) (*models.Review, error) {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := authorize(permission.AuthorOrStaffOrReadOnly(http.MethodPatch, actor, review.AuthorID)); err != nil {
		return nil, err
	}

	if patch.Score != nil {
		if err := models.ValidateScore(*patch.Score); err != nil {
			return nil, fieldError("score", err.Error())
		}
		review.Score = *patch.Score
	}
	if patch.Text != nil {
		review.Text = *patch.Text
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, s.writeError(err)
	}

	logger.Log.Info("Review updated",
		zap.Uint("review_id", review.ID),
		zap.String("actor_id", actor.UserID.String()),
	)
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, actor permission.Actor, titleID, reviewID uint) error {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := authorize(permission.AuthorOrStaffOrReadOnly(http.MethodDelete, actor, review.AuthorID)); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, review); err != nil {
		logger.Log.Error("Failed to delete review", zap.Uint("review_id", review.ID), zap.Error(err))
		return err
	}

	logger.Log.Info("Review deleted",
		zap.Uint("review_id", review.ID),
		zap.String("actor_id", actor.UserID.String()),
	)
	return nil
}

func (s *ReviewService) requireTitle(ctx context.Context, titleID uint) error {
	exists, err := s.titleRepo.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (s *ReviewService) writeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return &ValidationError{Detail: DuplicateReviewMessage}
	case errors.Is(err, models.ErrScoreOutOfRange):
		return fieldError("score", err.Error())
	case errors.Is(err, repository.ErrForeignKey):
		return ErrNotFound
	}
	logger.Log.Error("Failed to write review", zap.Error(err))
	return err
}
