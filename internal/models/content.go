package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinScore = 1
	MaxScore = 10
)

var (
	ErrYearInFuture    = errors.New("year cannot be in the future")
	ErrScoreOutOfRange = fmt.Errorf("score must be between %d and %d", MinScore, MaxScore)
)

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"type:varchar(256);not null" json:"name"`
	Slug string `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"type:varchar(256);not null" json:"name"`
	Slug string `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
}

type Title struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(256);not null;index"`
	Year        *int      `gorm:"index"`
	Description string    `gorm:"type:text;not null;default:''"`
	CategoryID  *uint     `gorm:"index"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Genres      []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`

	// Rating is the mean review score, filled in by read queries only.
	Rating *float64 `gorm:"->;-:migration"`
}

// ValidateYear rejects release years after the current one.
func ValidateYear(year *int, now time.Time) error {
	if year != nil && *year > now.Year() {
		return ErrYearInFuture
	}
	return nil
}

func (t *Title) BeforeSave(tx *gorm.DB) error {
	return ValidateYear(t.Year, time.Now())
}

type Review struct {
	ID       uint      `gorm:"primaryKey"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_reviews_title_author"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_title_author;index"`
	Text     string    `gorm:"type:text;not null"`
	Score    int       `gorm:"not null;check:score >= 1 AND score <= 10"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`

	Title  Title `gorm:"constraint:OnDelete:CASCADE;"`
	Author User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return ErrScoreOutOfRange
	}
	return nil
}

func (r *Review) BeforeSave(tx *gorm.DB) error {
	return ValidateScore(r.Score)
}

type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	ReviewID uint      `gorm:"not null;index"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`

	Review Review `gorm:"constraint:OnDelete:CASCADE;"`
	Author User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}
