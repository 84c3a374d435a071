package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/permission"
	"github.com/yamdb/backend/internal/utils"
)

const testSecret = "test-secret-key-that-is-at-least-32-chars"

type stubUsers map[uuid.UUID]*models.User

func (s stubUsers) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return s[id], nil
}

type brokenUsers struct{}

func (brokenUsers) GetUserByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, errors.New("db down")
}

func authRouter(users UserFinder, policy permission.Policy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Authenticate(testSecret, users))
	handler := func(c *gin.Context) {
		actor := CurrentActor(c)
		c.JSON(http.StatusOK, gin.H{"username": actor.Username, "authenticated": actor.Authenticated})
	}
	if policy != nil {
		router.Any("/test", RequirePolicy(policy), handler)
	} else {
		router.Any("/test", handler)
	}
	return router
}

func send(router http.Handler, method, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newUser(role models.Role) *models.User {
	return &models.User{ID: uuid.New(), Username: "u-" + string(role), Role: role}
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	w := send(authRouter(stubUsers{}, nil), http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	user := newUser(models.RoleUser)
	token, err := utils.GenerateToken(user, testSecret, time.Hour, utils.AccessToken)
	require.NoError(t, err)

	w := send(authRouter(stubUsers{user.ID: user}, nil), http.MethodGet, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"u-user"`)
}

func TestAuthenticate_Rejections(t *testing.T) {
	user := newUser(models.RoleUser)
	refresh, err := utils.GenerateToken(user, testSecret, time.Hour, utils.RefreshToken)
	require.NoError(t, err)
	expired, err := utils.GenerateToken(user, testSecret, -time.Minute, utils.AccessToken)
	require.NoError(t, err)
	orphan, err := utils.GenerateToken(newUser(models.RoleAdmin), testSecret, time.Hour, utils.AccessToken)
	require.NoError(t, err)

	router := authRouter(stubUsers{user.ID: user}, nil)
	cases := map[string]string{
		"no bearer prefix": "Token abc",
		"garbage":          "Bearer not-a-jwt",
		"refresh token":    "Bearer " + refresh,
		"expired":          "Bearer " + expired,
		"deleted user":     "Bearer " + orphan,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, send(router, http.MethodGet, header).Code)
		})
	}
}

func TestAuthenticate_LookupFailure(t *testing.T) {
	user := newUser(models.RoleUser)
	token, err := utils.GenerateToken(user, testSecret, time.Hour, utils.AccessToken)
	require.NoError(t, err)

	w := send(authRouter(brokenUsers{}, nil), http.MethodGet, "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequirePolicy(t *testing.T) {
	plain := newUser(models.RoleUser)
	admin := newUser(models.RoleAdmin)
	users := stubUsers{plain.ID: plain, admin.ID: admin}
	router := authRouter(users, permission.AdminOrReadOnly)

	plainToken, err := utils.GenerateToken(plain, testSecret, time.Hour, utils.AccessToken)
	require.NoError(t, err)
	adminToken, err := utils.GenerateToken(admin, testSecret, time.Hour, utils.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, send(router, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusUnauthorized, send(router, http.MethodPost, "").Code)
	assert.Equal(t, http.StatusForbidden, send(router, http.MethodPost, "Bearer "+plainToken).Code)
	assert.Equal(t, http.StatusOK, send(router, http.MethodPost, "Bearer "+adminToken).Code)
}
