package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

// TitleInput is the write projection of a new title. Genres and Category are
// slugs; a nil or empty Category leaves the title uncategorised.
type TitleInput struct {
	Name        string
	Year        *int
	Description string
	Genres      []string
	Category    *string
}

// TitlePatch changes only the non-nil fields. Category "" removes the
// category; Genres pointing at an empty slice removes every genre.
type TitlePatch struct {
	Name        *string
	Year        *int
	Description *string
	Genres      *[]string
	Category    *string
}

type TitleService struct {
	titleRepo    *repository.TitleRepository
	categoryRepo *repository.CategoryRepository
	genreRepo    *repository.GenreRepository
	now          func() time.Time
}

func NewTitleService(titleRepo *repository.TitleRepository, categoryRepo *repository.CategoryRepository, genreRepo *repository.GenreRepository) *TitleService {
	return &TitleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		now:          time.Now,
	}
}

// WithClock replaces the time source the release year is checked against.
func (s *TitleService) WithClock(now func() time.Time) *TitleService {
	s.now = now
	return s
}

func (s *TitleService) List(ctx context.Context, filter repository.TitleFilter, page repository.Page) (Page[models.Title], error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page)
	if err != nil {
		logger.Log.Error("Failed to list titles", zap.Error(err))
		return Page[models.Title]{}, err
	}
	return Page[models.Title]{Items: titles, Total: total, Page: page}, nil
}

func (s *TitleService) Get(ctx context.Context, id uint) (*models.Title, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, ErrNotFound
	}
	return title, nil
}

func (s *TitleService) Create(ctx context.Context, in TitleInput) (*models.Title, error) {
	verr := &ValidationError{}
	if err := models.ValidateYear(in.Year, s.now()); err != nil {
		verr.Add("year", err.Error())
	}
	genres, err := s.resolveGenres(ctx, verr, in.Genres)
	if err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, verr, in.Category)
	if err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		CategoryID:  categoryID,
	}
	if err := s.titleRepo.Create(ctx, title, genres); err != nil {
		return nil, s.writeError(err)
	}

	logger.Log.Info("Title created",
		zap.Uint("title_id", title.ID),
		zap.String("name", title.Name),
	)
	return s.Get(ctx, title.ID)
}

func (s *TitleService) Update(ctx context.Context, id uint, patch TitlePatch) (*models.Title, error) {
	title, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if patch.Year != nil {
		if err := models.ValidateYear(patch.Year, s.now()); err != nil {
			verr.Add("year", err.Error())
		}
	}

	var genres []models.Genre
	if patch.Genres != nil {
		genres, err = s.resolveGenres(ctx, verr, *patch.Genres)
		if err != nil {
			return nil, err
		}
	}

	categoryID := title.CategoryID
	if patch.Category != nil {
		categoryID, err = s.resolveCategory(ctx, verr, patch.Category)
		if err != nil {
			return nil, err
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	if patch.Name != nil {
		title.Name = *patch.Name
	}
	if patch.Year != nil {
		title.Year = patch.Year
	}
	if patch.Description != nil {
		title.Description = *patch.Description
	}
	title.CategoryID = categoryID

	if err := s.titleRepo.Update(ctx, title, genres); err != nil {
		return nil, s.writeError(err)
	}

	logger.Log.Info("Title updated", zap.Uint("title_id", title.ID))
	return s.Get(ctx, title.ID)
}

func (s *TitleService) Delete(ctx context.Context, id uint) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		logger.Log.Error("Failed to delete title", zap.Uint("title_id", id), zap.Error(err))
		return err
	}
	logger.Log.Info("Title deleted", zap.Uint("title_id", id))
	return nil
}

// resolveGenres maps slugs to stored genres. Repeated slugs collapse into
// one link. The result is non-nil so that an empty list clears the links.
func (s *TitleService) resolveGenres(ctx context.Context, verr *ValidationError, slugs []string) ([]models.Genre, error) {
	seen := make(map[string]struct{}, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		unique = append(unique, slug)
	}

	genres, err := s.genreRepo.GetBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(unique) {
		found := make(map[string]struct{}, len(genres))
		for _, g := range genres {
			found[g.Slug] = struct{}{}
		}
		var missing []string
		for _, slug := range unique {
			if _, ok := found[slug]; !ok {
				missing = append(missing, slug)
			}
		}
		verr.Add("genre", fmt.Sprintf("unknown genre slug(s): %s", strings.Join(missing, ", ")))
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	return genres, nil
}

func (s *TitleService) resolveCategory(ctx context.Context, verr *ValidationError, slug *string) (*uint, error) {
	if slug == nil || *slug == "" {
		return nil, nil
	}
	category, err := s.categoryRepo.GetBySlug(ctx, *slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		verr.Add("category", fmt.Sprintf("unknown category slug: %s", *slug))
		return nil, nil
	}
	return &category.ID, nil
}

func (s *TitleService) writeError(err error) error {
	switch {
	case errors.Is(err, models.ErrYearInFuture):
		return fieldError("year", err.Error())
	case errors.Is(err, repository.ErrForeignKey):
		return &ValidationError{Detail: "referenced category or genre no longer exists"}
	}
	logger.Log.Error("Failed to write title", zap.Error(err))
	return err
}
