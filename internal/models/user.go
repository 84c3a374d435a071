package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservedUsername is routed to the caller's own profile and can never be
// taken by an account.
const ReservedUsername = "me"

// UsernameMaxLength bounds usernames on every write path.
const UsernameMaxLength = 20

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role in ascending order of privilege.
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// IsStaff reports whether the role may edit or delete content written by
// other users.
func (r Role) IsStaff() bool {
	return r == RoleModerator || r == RoleAdmin
}

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Username    string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	FirstName   string    `gorm:"type:varchar(150);not null;default:''" json:"first_name"`
	LastName    string    `gorm:"type:varchar(150);not null;default:''" json:"last_name"`
	Bio         string    `gorm:"type:text;not null;default:''" json:"bio"`
	Role        Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"-"`
	IsActive    bool      `gorm:"not null;default:false" json:"-"`

	// ConfirmationCode holds the argon2id hash of the last code mailed to the
	// user. It is cleared once the code has been exchanged for tokens.
	ConfirmationCode   *string    `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	ConfirmationSentAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
