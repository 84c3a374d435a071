package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yamdb/backend/internal/config"
	"github.com/yamdb/backend/internal/handler"
	"github.com/yamdb/backend/internal/middleware"
	"github.com/yamdb/backend/internal/permission"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.CategoryHandler
	Genres     *handler.GenreHandler
	Titles     *handler.TitleHandler
	Reviews    *handler.ReviewHandler
	Comments   *handler.CommentHandler
	Health     *handler.HealthHandler
}

// New builds the engine. A nil limiter disables rate limiting.
func New(cfg *config.Config, h Handlers, users middleware.UserFinder, limiter middleware.Limiter) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.HSTSMiddleware(cfg.IsProduction()))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api/v1")
	api.GET("/health", h.Health.Health)

	auth := api.Group("/auth")
	if limiter != nil {
		auth.Use(middleware.RateLimit(limiter))
	}
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/token", h.Auth.Token)
		auth.POST("/token/refresh", h.Auth.Refresh)
	}

	authed := api.Group("", middleware.Authenticate(cfg.JWTSecret, users))

	adminOrReadOnly := middleware.RequirePolicy(permission.AdminOrReadOnly)
	categories := authed.Group("/categories", adminOrReadOnly)
	{
		categories.GET("", h.Categories.List)
		categories.POST("", h.Categories.Create)
		categories.DELETE("/:slug", h.Categories.Delete)
	}
	genres := authed.Group("/genres", adminOrReadOnly)
	{
		genres.GET("", h.Genres.List)
		genres.POST("", h.Genres.Create)
		genres.DELETE("/:slug", h.Genres.Delete)
	}
	titles := authed.Group("/titles")
	{
		titles.GET("", adminOrReadOnly, h.Titles.List)
		titles.POST("", adminOrReadOnly, h.Titles.Create)
		titles.GET("/:title_id", adminOrReadOnly, h.Titles.Get)
		titles.PATCH("/:title_id", adminOrReadOnly, h.Titles.Update)
		titles.DELETE("/:title_id", adminOrReadOnly, h.Titles.Delete)

		// Object-level checks for edits happen in the services.
		reviews := titles.Group("/:title_id/reviews", middleware.RequirePolicy(permission.AuthenticatedOrReadOnly))
		{
			reviews.GET("", h.Reviews.List)
			reviews.POST("", h.Reviews.Create)
			reviews.GET("/:review_id", h.Reviews.Get)
			reviews.PATCH("/:review_id", h.Reviews.Update)
			reviews.DELETE("/:review_id", h.Reviews.Delete)

			comments := reviews.Group("/:review_id/comments")
			{
				comments.GET("", h.Comments.List)
				comments.POST("", h.Comments.Create)
				comments.GET("/:comment_id", h.Comments.Get)
				comments.PATCH("/:comment_id", h.Comments.Update)
				comments.DELETE("/:comment_id", h.Comments.Delete)
			}
		}
	}

	accounts := authed.Group("/users")
	{
		me := middleware.RequirePolicy(permission.Authenticated)
		accounts.GET("/me", me, h.Users.Me)
		accounts.PATCH("/me", me, h.Users.UpdateMe)

		adminOnly := middleware.RequirePolicy(permission.AdminOnly)
		accounts.GET("", adminOnly, h.Users.List)
		accounts.POST("", adminOnly, h.Users.Create)
		accounts.GET("/:username", adminOnly, h.Users.Get)
		accounts.PATCH("/:username", adminOnly, h.Users.Update)
		accounts.DELETE("/:username", adminOnly, h.Users.Delete)
	}

	return r
}

// corsConfig allows the configured origins, or any origin without
// credentials when none are configured.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
