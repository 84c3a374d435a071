// Package seed loads initial data: a superuser and YAML content fixtures.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/internal/service"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type SlugFixture struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type TitleFixture struct {
	Name        string   `yaml:"name"`
	Year        *int     `yaml:"year"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Genres      []string `yaml:"genres"`
}

// Fixtures is the document read by the fixtures command.
type Fixtures struct {
	Categories []SlugFixture  `yaml:"categories"`
	Genres     []SlugFixture  `yaml:"genres"`
	Titles     []TitleFixture `yaml:"titles"`
}

// Summary counts what Apply created and skipped.
type Summary struct {
	Created int
	Skipped int
}

// LoadFixtures decodes a YAML fixture document. Unknown keys are rejected.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixtures
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

// Seeder writes fixtures through the same services the API uses, so the
// same validation applies.
type Seeder struct {
	userRepo     *repository.UserRepository
	categoryRepo *repository.CategoryRepository
	genreRepo    *repository.GenreRepository
	titleRepo    *repository.TitleRepository
	titles       *service.TitleService
}

func NewSeeder(db *gorm.DB) *Seeder {
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	return &Seeder{
		userRepo:     repository.NewUserRepository(db),
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		titleRepo:    titleRepo,
		titles:       service.NewTitleService(titleRepo, categoryRepo, genreRepo),
	}
}

// EnsureSuperuser creates an active admin superuser unless the username is
// already taken. It reports whether a user was created.
func (s *Seeder) EnsureSuperuser(ctx context.Context, username, email string) (*models.User, bool, error) {
	if username == "" || email == "" {
		return nil, false, errors.New("username and email are required")
	}
	if username == models.ReservedUsername {
		return nil, false, fmt.Errorf("username %q is reserved", username)
	}
	if utf8.RuneCountInString(username) > models.UsernameMaxLength {
		return nil, false, fmt.Errorf("username must be at most %d characters", models.UsernameMaxLength)
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		Role:        models.RoleAdmin,
		IsSuperuser: true,
		IsActive:    true,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create superuser: %w", err)
	}

	logger.Log.Info("Superuser created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return user, true, nil
}

// Apply inserts every fixture that is not present yet. Categories and genres
// are matched by slug, titles by name and year.
func (s *Seeder) Apply(ctx context.Context, f *Fixtures) (Summary, error) {
	var sum Summary

	for _, c := range f.Categories {
		existing, err := s.categoryRepo.GetBySlug(ctx, c.Slug)
		if err != nil {
			return sum, err
		}
		if existing != nil {
			sum.Skipped++
			continue
		}
		if err := s.categoryRepo.Create(ctx, &models.Category{Name: c.Name, Slug: c.Slug}); err != nil {
			return sum, fmt.Errorf("category %s: %w", c.Slug, err)
		}
		sum.Created++
	}

	for _, g := range f.Genres {
		existing, err := s.genreRepo.GetBySlug(ctx, g.Slug)
		if err != nil {
			return sum, err
		}
		if existing != nil {
			sum.Skipped++
			continue
		}
		if err := s.genreRepo.Create(ctx, &models.Genre{Name: g.Name, Slug: g.Slug}); err != nil {
			return sum, fmt.Errorf("genre %s: %w", g.Slug, err)
		}
		sum.Created++
	}

	for _, t := range f.Titles {
		existing, err := s.titleRepo.FindByNameAndYear(ctx, t.Name, t.Year)
		if err != nil {
			return sum, err
		}
		if existing != nil {
			sum.Skipped++
			continue
		}

		in := service.TitleInput{
			Name:        t.Name,
			Year:        t.Year,
			Description: t.Description,
			Genres:      t.Genres,
		}
		if t.Category != "" {
			category := t.Category
			in.Category = &category
		}
		if _, err := s.titles.Create(ctx, in); err != nil {
			return sum, fmt.Errorf("title %q: %w", t.Name, err)
		}
		sum.Created++
	}

	logger.Log.Info("Fixtures applied",
		zap.Int("created", sum.Created),
		zap.Int("skipped", sum.Skipped),
	)
	return sum, nil
}
