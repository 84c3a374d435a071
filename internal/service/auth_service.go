package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yamdb/backend/internal/config"
	"github.com/yamdb/backend/internal/mailer"
	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/internal/utils"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo   *repository.UserRepository
	mailer     mailer.Mailer
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	codeTTL    time.Duration
	now        func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, m mailer.Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		mailer:     m,
		jwtSecret:  cfg.JWTSecret,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		codeTTL:    cfg.ConfirmationCodeTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for code expiry.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Signup registers the (email, username) pair, or finds it again, and mails
// a fresh confirmation code. Any earlier code stops working.
func (s *AuthService) Signup(ctx context.Context, email, username string) (*models.User, error) {
	start := time.Now()

	logger.Log.Debug("Processing signup",
		zap.String("username", username),
		zap.String("email", email),
	)

	if username == models.ReservedUsername {
		logger.Log.Warn("Signup with reserved username rejected")
		return nil, fieldError("username", fmt.Sprintf("username %q is reserved", models.ReservedUsername))
	}

	byEmail, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}
	byUsername, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	user := byEmail
	if byEmail == nil || byUsername == nil || byEmail.ID != byUsername.ID {
		verr := &ValidationError{}
		if byEmail != nil {
			verr.Add("email", "a user with this email already exists")
		}
		if byUsername != nil {
			verr.Add("username", "a user with this username already exists")
		}
		if !verr.Empty() {
			logger.Log.Warn("Signup conflicts with another account",
				zap.String("username", username),
				zap.String("email", email),
			)
			return nil, verr
		}
		user = nil
	}

	code, err := utils.GenerateConfirmationCode()
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashCode(code)
	if err != nil {
		logger.Log.Error("Failed to hash confirmation code", zap.Error(err))
		return nil, err
	}
	sentAt := s.now()

	if user == nil {
		user = &models.User{
			Username:           username,
			Email:              email,
			Role:               models.RoleUser,
			ConfirmationCode:   &hash,
			ConfirmationSentAt: &sentAt,
		}
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, &ValidationError{Detail: "a user with this email or username already exists"}
			}
			logger.Log.Error("Failed to create user",
				zap.String("username", username),
				zap.Error(err),
			)
			return nil, err
		}
	} else {
		if err := s.userRepo.SetConfirmationCode(ctx, user.ID, hash, sentAt); err != nil {
			logger.Log.Error("Failed to store confirmation code",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		user.ConfirmationCode = &hash
		user.ConfirmationSentAt = &sentAt
	}

	msg := mailer.Message{
		To:      user.Email,
		Subject: "YaMDb confirmation code",
		Body: fmt.Sprintf("Hello %s,\n\nyour confirmation code is %s\nIt is valid for %s.\n",
			user.Username, code, s.codeTTL),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Log.Error("Failed to send confirmation code",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("send confirmation code: %w", err)
	}

	logger.Log.Info("Confirmation code sent",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

// ObtainToken exchanges a confirmation code for an access/refresh pair. The
// code is consumed on success.
func (s *AuthService) ObtainToken(ctx context.Context, username, code string) (*utils.TokenPair, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Log.Error("Failed to get user by username",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		logger.Log.Warn("Token requested for unknown user", zap.String("username", username))
		return nil, ErrNotFound
	}

	if user.ConfirmationCode == nil || user.ConfirmationSentAt == nil {
		logger.Log.Warn("Token requested without pending code", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidConfirmationCode
	}
	if s.now().Sub(*user.ConfirmationSentAt) > s.codeTTL {
		logger.Log.Warn("Confirmation code expired", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidConfirmationCode
	}

	valid, err := utils.VerifyCode(code, *user.ConfirmationCode)
	if err != nil {
		logger.Log.Error("Failed to verify confirmation code",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, ErrInvalidConfirmationCode
	}
	if !valid {
		logger.Log.Warn("Confirmation code mismatch", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidConfirmationCode
	}

	consumed, err := s.userRepo.ConsumeConfirmationCode(ctx, user.ID, *user.ConfirmationCode)
	if err != nil {
		logger.Log.Error("Failed to consume confirmation code",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if !consumed {
		return nil, ErrInvalidConfirmationCode
	}

	pair, err := utils.GenerateTokenPair(user, s.jwtSecret, s.accessTTL, s.refreshTTL)
	if err != nil {
		logger.Log.Error("Failed to generate JWT tokens",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Tokens issued",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return pair, nil
}

// RefreshToken issues a new access token for a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refresh string) (string, error) {
	claims, err := utils.ValidateToken(refresh, s.jwtSecret, utils.RefreshToken)
	if err != nil {
		logger.Log.Warn("Refresh token rejected", zap.Error(err))
		return "", ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		logger.Log.Warn("Refresh token for deleted user", zap.String("user_id", claims.UserID.String()))
		return "", ErrInvalidToken
	}

	access, err := utils.GenerateToken(user, s.jwtSecret, s.accessTTL, utils.AccessToken)
	if err != nil {
		logger.Log.Error("Failed to generate access token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return "", err
	}
	return access, nil
}
