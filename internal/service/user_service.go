package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/permission"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

// UserInput is the admin projection of a new user.
type UserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      models.Role
}

// UserPatch holds the fields a partial update changes. Nil means unchanged.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *models.Role
}

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(ctx context.Context, search string, page repository.Page) (Page[models.User], error) {
	users, total, err := s.userRepo.ListUsers(ctx, search, page)
	if err != nil {
		logger.Log.Error("Failed to list users", zap.Error(err))
		return Page[models.User]{}, err
	}
	return Page[models.User]{Items: users, Total: total, Page: page}, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	verr := &ValidationError{}
	checkReserved(verr, in.Username)
	checkRole(verr, in.Role)
	if err := s.checkUnique(ctx, verr, nil, in.Username, in.Email); err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      in.Role,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, s.writeError(err)
	}

	logger.Log.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, username string, patch UserPatch) (*models.User, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, patch)
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	user, err := s.Get(ctx, username)
	if err != nil {
		return err
	}
	if err := s.userRepo.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		logger.Log.Error("Failed to delete user",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("User deleted",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return nil
}

// Me loads the caller's own account.
func (s *UserService) Me(ctx context.Context, actor permission.Actor) (*models.User, error) {
	if err := authorize(permission.Authenticated(http.MethodGet, actor)); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateMe edits the caller's own account. Role changes are dropped.
func (s *UserService) UpdateMe(ctx context.Context, actor permission.Actor, patch UserPatch) (*models.User, error) {
	user, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	patch.Role = nil
	return s.apply(ctx, user, patch)
}

func (s *UserService) apply(ctx context.Context, user *models.User, patch UserPatch) (*models.User, error) {
	verr := &ValidationError{}
	username, email := "", ""
	if patch.Username != nil && *patch.Username != user.Username {
		username = *patch.Username
		checkReserved(verr, username)
	}
	if patch.Email != nil && *patch.Email != user.Email {
		email = *patch.Email
	}
	if patch.Role != nil {
		checkRole(verr, *patch.Role)
	}
	if err := s.checkUnique(ctx, verr, user, username, email); err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, s.writeError(err)
	}

	logger.Log.Debug("User updated", zap.String("user_id", user.ID.String()))
	return user, nil
}

// checkUnique records conflicts with accounts other than self. Empty values
// are skipped.
func (s *UserService) checkUnique(ctx context.Context, verr *ValidationError, self *models.User, username, email string) error {
	if username != "" {
		other, err := s.userRepo.GetUserByUsername(ctx, username)
		if err != nil {
			return err
		}
		if other != nil && (self == nil || other.ID != self.ID) {
			verr.Add("username", "a user with this username already exists")
		}
	}
	if email != "" {
		other, err := s.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if other != nil && (self == nil || other.ID != self.ID) {
			verr.Add("email", "a user with this email already exists")
		}
	}
	return nil
}

func (s *UserService) writeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return &ValidationError{Detail: "a user with this email or username already exists"}
	}
	logger.Log.Error("Failed to write user", zap.Error(err))
	return err
}

func checkReserved(verr *ValidationError, username string) {
	if username == models.ReservedUsername {
		verr.Add("username", fmt.Sprintf("username %q is reserved", models.ReservedUsername))
	}
}

func checkRole(verr *ValidationError, role models.Role) {
	if !role.Valid() {
		verr.Add("role", fmt.Sprintf("%q is not a valid role", role))
	}
}
