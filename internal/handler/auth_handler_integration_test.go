package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yamdb/backend/internal/config"
	"github.com/yamdb/backend/internal/handler"
	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/internal/service"
	"github.com/yamdb/backend/internal/testutil"
	"github.com/yamdb/backend/pkg/logger"
)

// AuthHandlerIntegrationTestSuite exercises the auth endpoints against a real
// database.
type AuthHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	mailer *testutil.RecordingMailer
	router *gin.Engine
}

func (s *AuthHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)
	handler.RegisterValidators()

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.mailer = &testutil.RecordingMailer{}

	userRepo := repository.NewUserRepository(s.testDB.DB)
	authService := service.NewAuthService(userRepo, s.mailer, &config.Config{
		JWTSecret:           testutil.TestJWTSecret,
		AccessTokenTTL:      time.Hour,
		RefreshTokenTTL:     24 * time.Hour,
		ConfirmationCodeTTL: time.Hour,
	})
	authHandler := handler.NewAuthHandler(authService)

	s.router = gin.New()
	s.router.POST("/auth/signup", authHandler.Signup)
	s.router.POST("/auth/token", authHandler.Token)
	s.router.POST("/auth/token/refresh", authHandler.Refresh)
}

func (s *AuthHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *AuthHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.mailer.Reset()
}

func (s *AuthHandlerIntegrationTestSuite) TestSignupSuccess() {
	w := testutil.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/signup",
		map[string]string{"email": "alice@example.com", "username": "alice"}, "")

	s.Equal(http.StatusOK, w.Code)
	body := testutil.DecodeJSON(s.T(), w)
	s.Equal(map[string]interface{}{"email": "alice@example.com", "username": "alice"}, body)
	s.Len(s.mailer.Messages, 1)
}

func (s *AuthHandlerIntegrationTestSuite) TestSignupDuplicateEmail() {
	testutil.CreateTestUser(s.T(), s.testDB.DB, "alice", models.RoleUser)

	w := testutil.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/signup",
		map[string]string{"email": "alice@example.com", "username": "alice2"}, "")

	s.Equal(http.StatusBadRequest, w.Code)
	body := testutil.DecodeJSON(s.T(), w)
	s.Contains(body["fields"], "email")
	s.Empty(s.mailer.Messages)
}

func (s *AuthHandlerIntegrationTestSuite) TestSignupInvalidInput() {
	testCases := []struct {
		name  string
		body  interface{}
		field string
	}{
		{"missing email", map[string]string{"username": "alice"}, "email"},
		{"missing username", map[string]string{"email": "alice@example.com"}, "username"},
		{"bad email", map[string]string{"email": "alice", "username": "alice"}, "email"},
		{"bad username", map[string]string{"email": "a@example.com", "username": "al ice"}, "username"},
		{"reserved username", map[string]string{"email": "a@example.com", "username": "me"}, "username"},
		{"wrong type", map[string]interface{}{"email": 42, "username": "alice"}, "email"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := testutil.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/signup", tc.body, "")
			s.Equal(http.StatusBadRequest, w.Code)
			body := testutil.DecodeJSON(s.T(), w)
			s.Contains(body["fields"], tc.field)
		})
	}
}

func (s *AuthHandlerIntegrationTestSuite) TestSignupEmptyBody() {
	w := testutil.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/signup", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("request body is empty", testutil.DecodeJSON(s.T(), w)["error"])
}

func (s *AuthHandlerIntegrationTestSuite) TestTokenSuccess() {
	testutil.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/signup",
		map[string]string{"email": "alice@example.com", "username": "alice"}, "")
	code := s.mailer.LastCode("alice@example.com")

	w := testutil.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/token",
		map[string]string{"username": "alice", "confirmation_code": code}, "")

	s.Equal(http.StatusOK, w.Code)
	body := testutil.DecodeJSON(s.T(), w)
	s.NotEmpty(body["access"])
	s.NotEmpty(body["refresh"])
}

func (s *AuthHandlerIntegrationTestSuite) TestTokenWrongCode() {
	testutil.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/signup",
		map[string]string{"email": "alice@example.com", "username": "alice"}, "")

	w := testutil.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/token",
		map[string]string{"username": "alice", "confirmation_code": "WRONG"}, "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("invalid confirmation code", testutil.DecodeJSON(s.T(), w)["error"])
}

func (s *AuthHandlerIntegrationTestSuite) TestRefreshRejectsGarbage() {
	w := testutil.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/token/refresh",
		map[string]string{"refresh": "not-a-token"}, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerIntegrationTestSuite))
}
