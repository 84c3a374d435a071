package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/yamdb/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ratingColumn computes the mean review score per title. It is NULL for a
// title without reviews.
const ratingColumn = "(SELECT CAST(AVG(reviews.score) AS FLOAT) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleFilter narrows title lists. Zero values disable a filter.
type TitleFilter struct {
	Category string
	Genre    string
	Name     string
	Year     *int
}

type TitleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

func (r *TitleRepository) withRelations(q *gorm.DB) *gorm.DB {
	return q.Select("titles.*, "+ratingColumn).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name ASC") })
}

func (r *TitleRepository) applyFilter(q *gorm.DB, f TitleFilter) *gorm.DB {
	if f.Category != "" {
		q = q.Where("titles.category_id IN (?)",
			r.db.Model(&models.Category{}).
				Select("id").
				Where("LOWER(slug) = ?", strings.ToLower(f.Category)))
	}
	if f.Genre != "" {
		q = q.Where("titles.id IN (?)",
			r.db.Table("title_genres").
				Select("title_genres.title_id").
				Joins("JOIN genres ON genres.id = title_genres.genre_id").
				Where("LOWER(genres.slug) = ?", strings.ToLower(f.Genre)))
	}
	if f.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	return q
}

// List returns one page of titles with category, genres and rating loaded.
func (r *TitleRepository) List(ctx context.Context, filter TitleFilter, page Page) ([]models.Title, int64, error) {
	base := r.applyFilter(r.db.WithContext(ctx).Model(&models.Title{}), filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var titles []models.Title
	err := page.apply(r.withRelations(r.applyFilter(r.db.WithContext(ctx).Model(&models.Title{}), filter))).
		Order("titles.name DESC").
		Order("titles.id DESC").
		Find(&titles).Error
	if err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

// GetByID returns (nil, nil) when the title does not exist.
func (r *TitleRepository) GetByID(ctx context.Context, id uint) (*models.Title, error) {
	var title models.Title
	err := r.withRelations(r.db.WithContext(ctx).Model(&models.Title{})).
		Where("titles.id = ?", id).
		First(&title).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &title, nil
}

func (r *TitleRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create inserts the title and links it to genres in one transaction. The
// genres must already exist.
func (r *TitleRepository) Create(ctx context.Context, title *models.Title, genres []models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(title).Error; err != nil {
			return translate(err)
		}
		return r.replaceGenres(tx, title, genres)
	})
}

// Update writes the scalar columns of title. A nil genres slice leaves the
// links untouched; an empty one removes them all.
func (r *TitleRepository) Update(ctx context.Context, title *models.Title, genres []models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(title).
			Omit(clause.Associations).
			Select("name", "year", "description", "category_id").
			Updates(title).Error
		if err != nil {
			return translate(err)
		}
		if genres == nil {
			return nil
		}
		return r.replaceGenres(tx, title, genres)
	})
}

func (r *TitleRepository) replaceGenres(tx *gorm.DB, title *models.Title, genres []models.Genre) error {
	if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", title.ID).Error; err != nil {
		return err
	}
	for _, g := range genres {
		err := tx.Exec("INSERT INTO title_genres (title_id, genre_id) VALUES (?, ?)", title.ID, g.ID).Error
		if err != nil {
			return translate(err)
		}
	}
	return nil
}

// Delete removes the title together with its genre links, reviews and
// comments.
func (r *TitleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Title{}, id)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// FindByNameAndYear returns (nil, nil) when no title matches exactly.
func (r *TitleRepository) FindByNameAndYear(ctx context.Context, name string, year *int) (*models.Title, error) {
	q := r.db.WithContext(ctx).Where("name = ?", name)
	if year != nil {
		q = q.Where("year = ?", *year)
	} else {
		q = q.Where("year IS NULL")
	}

	var title models.Title
	if err := q.First(&title).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &title, nil
}
