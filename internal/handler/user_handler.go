package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yamdb/backend/internal/middleware"
	"github.com/yamdb/backend/internal/models"
	"github.com/yamdb/backend/internal/service"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UserResponse is the public projection of an account.
type UserResponse struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

type CreateUserRequest struct {
	Username  string      `json:"username" binding:"required,max=20,username"`
	Email     string      `json:"email" binding:"required,email,max=254"`
	FirstName string      `json:"first_name" binding:"max=150"`
	LastName  string      `json:"last_name" binding:"max=150"`
	Bio       string      `json:"bio" binding:"max=2000"`
	Role      models.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

type UpdateUserRequest struct {
	Username  *string      `json:"username" binding:"omitnil,min=1,max=20,username"`
	Email     *string      `json:"email" binding:"omitnil,email,max=254"`
	FirstName *string      `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string      `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string      `json:"bio" binding:"omitempty,max=2000"`
	Role      *models.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateMeRequest has no role: users cannot promote themselves.
type UpdateMeRequest struct {
	Username  *string `json:"username" binding:"omitnil,min=1,max=20,username"`
	Email     *string `json:"email" binding:"omitnil,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string `json:"bio" binding:"omitempty,max=2000"`
}

// List returns users, optionally filtered by ?search.
// GET /users
func (h *UserHandler) List(c *gin.Context) {
	page, err := h.userService.List(c.Request.Context(), c.Query("search"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page, newUserResponse))
}

// Create adds a user.
// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), service.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Log.Info("Admin created user",
		zap.String("admin", middleware.CurrentActor(c).Username),
		zap.String("username", user.Username),
	)
	c.JSON(http.StatusCreated, newUserResponse(user))
}

// Get returns one user.
// GET /users/:username
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// Update changes any field of a user, role included.
// PATCH /users/:username
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("username"), service.UserPatch{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// Delete removes a user with all of their reviews and comments.
// DELETE /users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	username := c.Param("username")
	if err := h.userService.Delete(c.Request.Context(), username); err != nil {
		respondError(c, err)
		return
	}

	logger.Log.Info("Admin deleted user",
		zap.String("admin", middleware.CurrentActor(c).Username),
		zap.String("username", username),
	)
	c.Status(http.StatusNoContent)
}

// Me returns the caller's own account.
// GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateMe edits the caller's own account.
// PATCH /users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), middleware.CurrentActor(c), service.UserPatch{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}
