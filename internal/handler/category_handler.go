package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/service"
)

// SlugRequest creates a category or a genre.
type SlugRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

func identity[T any](v *T) T { return *v }

type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	page, err := h.categoryService.List(c.Request.Context(), c.Query("search"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page, identity[models.Category]))
}

// POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req SlugRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// DELETE /categories/:slug
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type GenreHandler struct {
	genreService *service.GenreService
}

func NewGenreHandler(genreService *service.GenreService) *GenreHandler {
	return &GenreHandler{genreService: genreService}
}

// GET /genres
func (h *GenreHandler) List(c *gin.Context) {
	page, err := h.genreService.List(c.Request.Context(), c.Query("search"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page, identity[models.Genre]))
}

// POST /genres
func (h *GenreHandler) Create(c *gin.Context) {
	var req SlugRequest
	if !bindJSON(c, &req) {
		return
	}
	genre, err := h.genreService.Create(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}

// DELETE /genres/:slug
func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.genreService.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
