package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/repository"
	"github.com/yamdb/backend/internal/service"
)

type TitleHandler struct {
	titleService *service.TitleService
}

func NewTitleHandler(titleService *service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// TitleResponse is the read projection: nested genres and category plus the
// computed rating.
type TitleResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Year        *int             `json:"year"`
	Rating      *float64         `json:"rating"`
	Description string           `json:"description"`
	Genre       []models.Genre   `json:"genre"`
	Category    *models.Category `json:"category"`
}

func newTitleResponse(t *models.Title) TitleResponse {
	genres := t.Genres
	if genres == nil {
		genres = []models.Genre{}
	}
	return TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
		Category:    t.Category,
	}
}

// TitleWriteResponse echoes a write back with slugs in place of objects.
type TitleWriteResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Year        *int     `json:"year"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

func newTitleWriteResponse(t *models.Title) TitleWriteResponse {
	slugs := make([]string, 0, len(t.Genres))
	for _, g := range t.Genres {
		slugs = append(slugs, g.Slug)
	}
	resp := TitleWriteResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Genre:       slugs,
	}
	if t.Category != nil {
		resp.Category = &t.Category.Slug
	}
	return resp
}

type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        *int     `json:"year"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" binding:"dive,slug"`
	Category    *string  `json:"category"`
}

type UpdateTitleRequest struct {
	Name        *string   `json:"name" binding:"omitnil,min=1,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre" binding:"omitnil,dive,slug"`
	Category    *string   `json:"category"`
}

// List supports ?category, ?genre, ?name and ?year.
// GET /titles
func (h *TitleHandler) List(c *gin.Context) {
	filter := repository.TitleFilter{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondValidation(c, fieldErr("year", "enter a whole number"))
			return
		}
		filter.Year = &year
	}

	page, err := h.titleService.List(c.Request.Context(), filter, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page, newTitleResponse))
}

// GET /titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	title, err := h.titleService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTitleResponse(title))
}

// POST /titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req CreateTitleRequest
	if !bindJSON(c, &req) {
		return
	}
	title, err := h.titleService.Create(c.Request.Context(), service.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Genres:      req.Genre,
		Category:    req.Category,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTitleWriteResponse(title))
}

// PATCH /titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	var req UpdateTitleRequest
	if !bindJSON(c, &req) {
		return
	}
	title, err := h.titleService.Update(c.Request.Context(), id, service.TitlePatch{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Genres:      req.Genre,
		Category:    req.Category,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTitleWriteResponse(title))
}

// DELETE /titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	if err := h.titleService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
