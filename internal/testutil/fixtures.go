package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/utils"
	"gorm.io/gorm"
)

// TestJWTSecret signs every token issued in tests.
const TestJWTSecret = "test-secret-key-that-is-at-least-32-chars"

// CreateTestUser inserts an active user with the given role.
func CreateTestUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// AccessTokenFor issues a valid access token for user.
func AccessTokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user, TestJWTSecret, time.Hour, utils.AccessToken)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

func CreateTestCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slug}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create category %s: %v", slug, err)
	}
	return category
}

func CreateTestGenre(t *testing.T, db *gorm.DB, name, slug string) *models.Genre {
	t.Helper()
	genre := &models.Genre{Name: name, Slug: slug}
	if err := db.Create(genre).Error; err != nil {
		t.Fatalf("Failed to create genre %s: %v", slug, err)
	}
	return genre
}

// CreateTestTitle inserts a title linked to the given category and genres.
func CreateTestTitle(t *testing.T, db *gorm.DB, name string, year int, category *models.Category, genres ...*models.Genre) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: &year}
	if category != nil {
		title.CategoryID = &category.ID
	}
	if err := db.Omit("Genres", "Category").Create(title).Error; err != nil {
		t.Fatalf("Failed to create title %s: %v", name, err)
	}
	for _, g := range genres {
		if err := db.Exec("INSERT INTO title_genres (title_id, genre_id) VALUES (?, ?)", title.ID, g.ID).Error; err != nil {
			t.Fatalf("Failed to link genre %s: %v", g.Slug, err)
		}
	}
	return title
}

func CreateTestReview(t *testing.T, db *gorm.DB, title *models.Title, author *models.User, score int) *models.Review {
	t.Helper()
	review := &models.Review{
		TitleID:  title.ID,
		AuthorID: author.ID,
		Text:     fmt.Sprintf("%s thinks %s deserves %d", author.Username, title.Name, score),
		Score:    score,
	}
	if err := db.Omit("Title", "Author").Create(review).Error; err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	return review
}

func CreateTestComment(t *testing.T, db *gorm.DB, review *models.Review, author *models.User, text string) *models.Comment {
	t.Helper()
	comment := &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: text}
	if err := db.Omit("Review", "Author").Create(comment).Error; err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	return comment
}
