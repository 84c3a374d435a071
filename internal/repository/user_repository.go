package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yamdb/backend/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// first returns (nil, nil) when nothing matches.
func (r *UserRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of users ordered by username, optionally
// filtered by a case-insensitive username substring.
func (r *UserRepository) ListUsers(ctx context.Context, search string, page Page) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := page.apply(q).Order("username ASC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// profileColumns are the columns a profile edit may write. Activation and
// the confirmation code are owned by the signup flow.
var profileColumns = []string{"username", "email", "first_name", "last_name", "bio", "role"}

// UpdateProfile writes the editable profile fields of user, leaving
// is_active and the confirmation code untouched.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Select(profileColumns).
		Updates(user)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetConfirmationCode stores the hash of a freshly mailed code, replacing any
// previous one.
func (r *UserRepository) SetConfirmationCode(ctx context.Context, id uuid.UUID, codeHash string, sentAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"confirmation_code":    codeHash,
			"confirmation_sent_at": sentAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user; their reviews and comments go with them.
func (r *UserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeConfirmationCode clears the stored code hash and activates the user,
// but only while the hash is still the one the caller verified. It reports
// false when a concurrent exchange got there first.
func (r *UserRepository) ConsumeConfirmationCode(ctx context.Context, id uuid.UUID, codeHash string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND confirmation_code = ?", id, codeHash).
		Updates(map[string]interface{}{
			"confirmation_code": nil,
			"is_active":         true,
		})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}
