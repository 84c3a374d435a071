// Package permission holds the authorization gates applied to every request.
// Each gate is a pure function of the request method and the caller, so the
// gates can be combined freely and tested in isolation.
package permission

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/yamdb/backend/internal/models"
)

// Actor is the caller of a request as seen by the gates. The zero value is an
// anonymous caller.
type Actor struct {
	UserID        uuid.UUID
	Username      string
	Role          models.Role
	IsSuperuser   bool
	Authenticated bool
}

// Anonymous returns an unauthenticated actor.
func Anonymous() Actor {
	return Actor{}
}

// FromUser builds an authenticated actor from a stored user.
func FromUser(u *models.User) Actor {
	return Actor{
		UserID:        u.ID,
		Username:      u.Username,
		Role:          u.Role,
		IsSuperuser:   u.IsSuperuser,
		Authenticated: true,
	}
}

func (a Actor) isAdmin() bool {
	return a.Authenticated && a.Role.IsAdmin()
}

type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

// Allowed is a convenience for callers that only care about the outcome.
func (d Decision) Allowed() bool {
	return d == Allow
}

// StatusCode maps a decision to the HTTP status a denied request receives.
func (d Decision) StatusCode() int {
	switch d {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	}
	return http.StatusOK
}

// IsSafeMethod reports whether method never mutates state.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Policy is a list-level gate.
type Policy func(method string, actor Actor) Decision

func deny(actor Actor) Decision {
	if !actor.Authenticated {
		return Unauthenticated
	}
	return Forbidden
}

// AdminOnly lets superusers and authenticated admins through, whatever the
// method.
func AdminOnly(method string, actor Actor) Decision {
	if actor.IsSuperuser && actor.Authenticated {
		return Allow
	}
	if actor.isAdmin() {
		return Allow
	}
	return deny(actor)
}

// AdminOrReadOnly lets anyone read and only admins write.
func AdminOrReadOnly(method string, actor Actor) Decision {
	if IsSafeMethod(method) || actor.isAdmin() {
		return Allow
	}
	return deny(actor)
}

// AuthenticatedOrReadOnly lets anyone read and any signed-in user write.
func AuthenticatedOrReadOnly(method string, actor Actor) Decision {
	if IsSafeMethod(method) || actor.Authenticated {
		return Allow
	}
	return Unauthenticated
}

// Authenticated requires a signed-in user for every method.
func Authenticated(method string, actor Actor) Decision {
	if actor.Authenticated {
		return Allow
	}
	return Unauthenticated
}

// AuthorOrStaffOrReadOnly is the object-level gate for reviews and comments:
// anyone may read, the author may write, and moderators and admins may write
// anything.
func AuthorOrStaffOrReadOnly(method string, actor Actor, authorID uuid.UUID) Decision {
	if IsSafeMethod(method) {
		return Allow
	}
	if !actor.Authenticated {
		return Unauthenticated
	}
	if actor.UserID == authorID || actor.Role.IsStaff() {
		return Allow
	}
	return Forbidden
}
