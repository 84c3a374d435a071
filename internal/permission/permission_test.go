package permission

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/yamdb/backend/internal/models"
)

func actorWithRole(role models.Role) Actor {
	return Actor{
		UserID:        uuid.New(),
		Username:      string(role) + "-user",
		Role:          role,
		Authenticated: true,
	}
}

var unsafeMethods = []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete}

func TestIsSafeMethod(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, IsSafeMethod(m), m)
	}
	for _, m := range unsafeMethods {
		assert.False(t, IsSafeMethod(m), m)
	}
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name   string
		actor  Actor
		method string
		want   Decision
	}{
		{"anonymous read", Anonymous(), http.MethodGet, Unauthenticated},
		{"user read", actorWithRole(models.RoleUser), http.MethodGet, Forbidden},
		{"moderator write", actorWithRole(models.RoleModerator), http.MethodPost, Forbidden},
		{"admin read", actorWithRole(models.RoleAdmin), http.MethodGet, Allow},
		{"admin delete", actorWithRole(models.RoleAdmin), http.MethodDelete, Allow},
		{"superuser with user role", Actor{Role: models.RoleUser, IsSuperuser: true, Authenticated: true}, http.MethodPatch, Allow},
		{"anonymous superuser flag", Actor{IsSuperuser: true}, http.MethodGet, Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdminOnly(tt.method, tt.actor))
		})
	}
}

func TestAdminOrReadOnly(t *testing.T) {
	for _, role := range models.Roles {
		assert.Equal(t, Allow, AdminOrReadOnly(http.MethodGet, actorWithRole(role)))
	}
	assert.Equal(t, Allow, AdminOrReadOnly(http.MethodGet, Anonymous()))

	for _, m := range unsafeMethods {
		assert.Equal(t, Unauthenticated, AdminOrReadOnly(m, Anonymous()), m)
		assert.Equal(t, Forbidden, AdminOrReadOnly(m, actorWithRole(models.RoleUser)), m)
		assert.Equal(t, Forbidden, AdminOrReadOnly(m, actorWithRole(models.RoleModerator)), m)
		assert.Equal(t, Allow, AdminOrReadOnly(m, actorWithRole(models.RoleAdmin)), m)
	}
}

func TestAuthorOrStaffOrReadOnly(t *testing.T) {
	author := actorWithRole(models.RoleUser)
	other := actorWithRole(models.RoleUser)

	assert.Equal(t, Allow, AuthorOrStaffOrReadOnly(http.MethodGet, Anonymous(), author.UserID))
	assert.Equal(t, Unauthenticated, AuthorOrStaffOrReadOnly(http.MethodPatch, Anonymous(), author.UserID))

	for _, m := range unsafeMethods {
		assert.Equal(t, Allow, AuthorOrStaffOrReadOnly(m, author, author.UserID), m)
		assert.Equal(t, Forbidden, AuthorOrStaffOrReadOnly(m, other, author.UserID), m)
		assert.Equal(t, Allow, AuthorOrStaffOrReadOnly(m, actorWithRole(models.RoleModerator), author.UserID), m)
		assert.Equal(t, Allow, AuthorOrStaffOrReadOnly(m, actorWithRole(models.RoleAdmin), author.UserID), m)
	}
}

func TestAuthenticatedGates(t *testing.T) {
	user := actorWithRole(models.RoleUser)

	assert.Equal(t, Allow, AuthenticatedOrReadOnly(http.MethodGet, Anonymous()))
	assert.Equal(t, Unauthenticated, AuthenticatedOrReadOnly(http.MethodPost, Anonymous()))
	assert.Equal(t, Allow, AuthenticatedOrReadOnly(http.MethodPost, user))

	assert.Equal(t, Unauthenticated, Authenticated(http.MethodGet, Anonymous()))
	assert.Equal(t, Allow, Authenticated(http.MethodPatch, user))
}

func TestDecisionStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, Allow.StatusCode())
	assert.Equal(t, http.StatusUnauthorized, Unauthenticated.StatusCode())
	assert.Equal(t, http.StatusForbidden, Forbidden.StatusCode())
	assert.True(t, Allow.Allowed())
	assert.False(t, Forbidden.Allowed())
}
