package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/yamdb/backend/internal/permission"
	"github.com/yamdb/backend/internal/repository"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("you do not have permission to perform this action")
	ErrUnauthenticated         = errors.New("authentication credentials were not provided")
	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
	ErrInvalidToken            = errors.New("token is invalid or expired")
)

// DuplicateReviewMessage is returned when an author reviews a title twice.
const DuplicateReviewMessage = "you have already reviewed this title"

// ValidationError carries per-field messages back to the client.
type ValidationError struct {
	Detail string
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether nothing was recorded.
func (e *ValidationError) Empty() bool {
	return e.Detail == "" && len(e.Fields) == 0
}

func fieldError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// authorize turns a gate decision into the matching service error.
func authorize(d permission.Decision) error {
	switch d {
	case permission.Unauthenticated:
		return ErrUnauthenticated
	case permission.Forbidden:
		return ErrForbidden
	}
	return nil
}

// Page is one page of a list result.
type Page[T any] struct {
	Items []T
	Total int64
	Page  repository.Page
}

// TotalPages is zero for an empty result.
func (p Page[T]) TotalPages() int {
	if p.Page.Size == 0 {
		return 0
	}
	return int((p.Total + int64(p.Page.Size) - 1) / int64(p.Page.Size))
}
