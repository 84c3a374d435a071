package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/internal/testutil"
)

type UserRepositoryTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	repo   *repository.UserRepository
	ctx    context.Context
}

func (s *UserRepositoryTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.repo = repository.NewUserRepository(s.testDB.DB)
	s.ctx = context.Background()
}

func (s *UserRepositoryTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *UserRepositoryTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

// pending inserts an inactive user waiting to exchange codeHash.
func (s *UserRepositoryTestSuite) pending(username, codeHash string) *models.User {
	sentAt := time.Now()
	user := &models.User{
		Username:           username,
		Email:              username + "@example.com",
		ConfirmationCode:   &codeHash,
		ConfirmationSentAt: &sentAt,
	}
	s.Require().NoError(s.repo.CreateUser(s.ctx, user))
	return user
}

func (s *UserRepositoryTestSuite) reload(id uuid.UUID) *models.User {
	user, err := s.repo.GetUserByID(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(user)
	return user
}

func (s *UserRepositoryTestSuite) TestUpdateProfileKeepsConsumedCode() {
	created := s.pending("alice", "hash-1")

	// A profile edit that loaded the user before the code was exchanged.
	stale := s.reload(created.ID)

	consumed, err := s.repo.ConsumeConfirmationCode(s.ctx, created.ID, "hash-1")
	s.Require().NoError(err)
	s.Require().True(consumed)

	stale.Bio = "late edit"
	stale.Role = models.RoleModerator
	s.Require().NoError(s.repo.UpdateProfile(s.ctx, stale))

	stored := s.reload(created.ID)
	s.Equal("late edit", stored.Bio)
	s.Equal(models.RoleModerator, stored.Role)
	s.True(stored.IsActive, "activation survives a stale profile write")
	s.Nil(stored.ConfirmationCode, "consumed code is not written back")

	again, err := s.repo.ConsumeConfirmationCode(s.ctx, created.ID, "hash-1")
	s.Require().NoError(err)
	s.False(again)
}

func (s *UserRepositoryTestSuite) TestUpdateProfileMissingUser() {
	err := s.repo.UpdateProfile(s.ctx, &models.User{ID: uuid.New(), Username: "ghost", Email: "ghost@example.com"})
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *UserRepositoryTestSuite) TestUpdateProfileDuplicateUsername() {
	s.pending("alice", "hash-a")
	bob := s.pending("bob", "hash-b")

	bob.Username = "alice"
	s.ErrorIs(s.repo.UpdateProfile(s.ctx, bob), repository.ErrDuplicate)
}

func (s *UserRepositoryTestSuite) TestSetConfirmationCodeLeavesActivation() {
	created := s.pending("alice", "hash-1")
	consumed, err := s.repo.ConsumeConfirmationCode(s.ctx, created.ID, "hash-1")
	s.Require().NoError(err)
	s.Require().True(consumed)

	sentAt := time.Now().Add(time.Minute)
	s.Require().NoError(s.repo.SetConfirmationCode(s.ctx, created.ID, "hash-2", sentAt))

	stored := s.reload(created.ID)
	s.True(stored.IsActive)
	s.Require().NotNil(stored.ConfirmationCode)
	s.Equal("hash-2", *stored.ConfirmationCode)
	s.Equal("alice", stored.Username)

	s.ErrorIs(s.repo.SetConfirmationCode(s.ctx, uuid.New(), "hash-3", sentAt), repository.ErrNotFound)
}

func TestUserRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}
