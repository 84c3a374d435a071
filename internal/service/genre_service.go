package service

import (
	"context"
	"errors"

	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

type GenreService struct {
	genreRepo *repository.GenreRepository
}

func NewGenreService(genreRepo *repository.GenreRepository) *GenreService {
	return &GenreService{genreRepo: genreRepo}
}

func (s *GenreService) List(ctx context.Context, search string, page repository.Page) (Page[models.Genre], error) {
	genres, total, err := s.genreRepo.List(ctx, search, page)
	if err != nil {
		logger.Log.Error("Failed to list genres", zap.Error(err))
		return Page[models.Genre]{}, err
	}
	return Page[models.Genre]{Items: genres, Total: total, Page: page}, nil
}

func (s *GenreService) Create(ctx context.Context, name, slug string) (*models.Genre, error) {
	existing, err := s.genreRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fieldError("slug", "genre with this slug already exists")
	}

	genre := &models.Genre{Name: name, Slug: slug}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fieldError("slug", "genre with this slug already exists")
		}
		logger.Log.Error("Failed to create genre", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Genre created", zap.String("slug", slug))
	return genre, nil
}

func (s *GenreService) Delete(ctx context.Context, slug string) error {
	if err := s.genreRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		logger.Log.Error("Failed to delete genre", zap.String("slug", slug), zap.Error(err))
		return err
	}
	logger.Log.Info("Genre deleted", zap.String("slug", slug))
	return nil
}
