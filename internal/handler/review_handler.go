package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yamdb/backend/internal/middleware"
	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/service"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type ReviewResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func newReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

type CreateReviewRequest struct {
	Text  string `json:"text" binding:"required"`
	Score *int   `json:"score" binding:"required"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text" binding:"omitnil,min=1"`
	Score *int    `json:"score"`
}

// GET /titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	page, err := h.reviewService.List(c.Request.Context(), titleID, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page, newReviewResponse))
}

// GET /titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	review, err := h.reviewService.Get(c.Request.Context(), titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(review))
}

// POST /titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := idParam(c, "title_id")
	if !ok {
		return
	}
	var req CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Create(c.Request.Context(), middleware.CurrentActor(c), titleID, req.Text, *req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newReviewResponse(review))
}

// PATCH /titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	var req UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Update(c.Request.Context(), middleware.CurrentActor(c), titleID, reviewID, service.ReviewPatch{
		Text:  req.Text,
		Score: req.Score,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(review))
}

// DELETE /titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), middleware.CurrentActor(c), titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func reviewPath(c *gin.Context) (titleID, reviewID uint, ok bool) {
	if titleID, ok = idParam(c, "title_id"); !ok {
		return 0, 0, false
	}
	if reviewID, ok = idParam(c, "review_id"); !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}
