package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"explorer/backend/internal/auth"
	"explorer/backend/internal/config"
	"explorer/backend/internal/ws"
)

// Server wraps the REST API server
type Server struct {
	handler *Handler
	router  *gin.Engine
	hub     *ws.Hub
}

// NewServer creates a new API server
func NewServer(db *gorm.DB, cfg *config.Config, tokens *auth.Service, search Searcher, image ImageGenerator, hub *ws.Hub) *Server {
	handler := NewHandler(db, tokens, search, image, hub)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestID())

	// CORS for the Vite dev frontend
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.AllowOrigin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "AI Content Explorer Backend"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public auth endpoints
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.GET("/validate", handler.Authenticate(), handler.Validate)
	}

	// Activity endpoints (any authenticated user)
	searchGroup := router.Group("/search")
	searchGroup.Use(handler.Authenticate())
	{
		searchGroup.POST("/query", handler.SearchQuery)
	}

	imageGroup := router.Group("/image")
	imageGroup.Use(handler.Authenticate())
	{
		imageGroup.POST("/generate", handler.GenerateImage)
	}

	// Dashboard: self-scoped history access
	dashboard := router.Group("/dashboard")
	dashboard.Use(handler.Authenticate())
	{
		dashboard.GET("/", handler.ListOwnHistory)
		dashboard.PUT("/:id", handler.UpdateOwnHistory)
		dashboard.DELETE("/:id", handler.DeleteOwnHistory)
	}

	// Admin endpoints
	admin := router.Group("/admin")
	admin.Use(handler.Authenticate(), handler.RequireAdmin())
	{
		admin.GET("/users", handler.ListUsers)
		admin.POST("/users", handler.CreateUser)
		admin.GET("/users/:id", handler.GetUser)
		admin.PUT("/users/:id", handler.UpdateUser)
		admin.DELETE("/users/:id", handler.DeleteUser)
		admin.PUT("/users/:id/role", handler.ChangeUserRole)
		admin.GET("/users/:id/history", handler.GetUserHistory)
		admin.GET("/stats", handler.GetStats)
	}

	// Live activity feed for admin dashboards
	router.GET("/ws/activity", handler.AuthenticateQuery(), handler.RequireAdmin(), ws.HandleActivityFeed(hub))

	return &Server{
		handler: handler,
		router:  router,
		hub:     hub,
	}
}

// GetHub returns the activity feed hub
func (s *Server) GetHub() *ws.Hub {
	return s.hub
}

// GetRouter returns the router
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
