package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/internal/service"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

// PageResponse is the envelope of every list endpoint.
type PageResponse[T any] struct {
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	Results    []T   `json:"results"`
}

func newPageResponse[T, R any](p service.Page[T], convert func(*T) R) PageResponse[R] {
	results := make([]R, 0, len(p.Items))
	for i := range p.Items {
		results = append(results, convert(&p.Items[i]))
	}
	return PageResponse[R]{
		Count:      p.Total,
		Page:       p.Page.Number,
		PageSize:   p.Page.Size,
		TotalPages: p.TotalPages(),
		Results:    results,
	}
}

// respondError renders a service error with the matching status code.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr)
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidConfirmationCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondValidation(c *gin.Context, verr *service.ValidationError) {
	body := gin.H{"error": verr.Error()}
	if len(verr.Fields) > 0 {
		body["fields"] = verr.Fields
	}
	c.JSON(http.StatusBadRequest, body)
}

// bindJSON decodes the body into req and writes a 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Log.Warn("Request parsing failed",
			zap.String("path", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		respondValidation(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) *service.ValidationError {
	verr := &service.ValidationError{}

	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), validationMessage(fe))
		}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		verr.Add(typeErr.Field, "expected "+typeErr.Type.String())
	case errors.Is(err, io.EOF):
		verr.Detail = "request body is empty"
	default:
		verr.Detail = "invalid request body"
	}
	return verr
}

// pageFromQuery reads ?page and ?page_size; bad values fall back to defaults.
func pageFromQuery(c *gin.Context) repository.Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return repository.NewPage(number, size)
}

// idParam parses a numeric path segment. A malformed id is a missing object.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

func fieldErr(field, msg string) *service.ValidationError {
	verr := &service.ValidationError{}
	verr.Add(field, msg)
	return verr
}
