package service

import (
	"context"
	"errors"

	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

type CategoryService struct {
	categoryRepo *repository.CategoryRepository
}

func NewCategoryService(categoryRepo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) List(ctx context.Context, search string, page repository.Page) (Page[models.Category], error) {
	categories, total, err := s.categoryRepo.List(ctx, search, page)
	if err != nil {
		logger.Log.Error("Failed to list categories", zap.Error(err))
		return Page[models.Category]{}, err
	}
	return Page[models.Category]{Items: categories, Total: total, Page: page}, nil
}

func (s *CategoryService) Create(ctx context.Context, name, slug string) (*models.Category, error) {
	existing, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fieldError("slug", "category with this slug already exists")
	}

	category := &models.Category{Name: name, Slug: slug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fieldError("slug", "category with this slug already exists")
		}
		logger.Log.Error("Failed to create category", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Category created", zap.String("slug", slug))
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, slug string) error {
	if err := s.categoryRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		logger.Log.Error("Failed to delete category", zap.String("slug", slug), zap.Error(err))
		return err
	}
	logger.Log.Info("Category deleted", zap.String("slug", slug))
	return nil
}
