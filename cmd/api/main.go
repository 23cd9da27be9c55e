package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/kojish2018/video-ai-creator/auth"
	"github.com/kojish2018/video-ai-creator/internal/config"
	"github.com/kojish2018/video-ai-creator/internal/platform"
	"github.com/kojish2018/video-ai-creator/series"
	"github.com/kojish2018/video-ai-creator/videos"
)

type Server struct {
	Cfg    *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine
}

func NewServer() (*Server, error) {
	cfg := config.Load()

	db := platform.NewDBConnection(cfg)
	rdb := platform.NewRedisClient(cfg)

	router := gin.Default()

	// Add database to context middleware
	router.Use(func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	})

	// Add CORS middleware for the frontend
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", os.Getenv("FRONTEND_URL"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	server := &Server{
		Cfg:    cfg,
		DB:     db,
		Redis:  rdb,
		Router: router,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.Router.GET("/health", func(c *gin.Context) {
		sqlDB, err := s.DB.DB()
		if err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}

		if err := sqlDB.Ping(); err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Create handlers
	authHandler := auth.NewHandler(s.DB)
	seriesHandler := series.NewHandler(s.DB, s.Redis)
	videoHandler := videos.NewHandler(s.DB, s.Redis)

	s.Router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Video Creator API v1"})
	})

	// Auth routes (public - no auth middleware)
	authRoutes := s.Router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)

		// Protected auth route - requires auth middleware
		authRoutes.GET("/me", auth.AuthMiddleware(), authHandler.GetCurrentUser)
	}

	// Protected routes that require authentication
	protected := s.Router.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		// Series routes
		seriesRoutes := protected.Group("/series")
		{
			seriesRoutes.POST("", seriesHandler.CreateSeries)
			seriesRoutes.GET("", seriesHandler.GetUserSeries)
			seriesRoutes.GET("/:id/videos", seriesHandler.GetSeriesVideos)
		}

		// Video routes
		videoRoutes := protected.Group("/videos")
		{
			videoRoutes.POST("", videoHandler.CreateVideo)
			videoRoutes.GET("", videoHandler.ListVideos)
			videoRoutes.GET("/:id", videoHandler.GetVideo)
			videoRoutes.POST("/:id/retry", videoHandler.RetryVideo)
		}
	}
}

func (s *Server) Run() error {
	port := s.Cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	return s.Router.Run(":" + port)
}

func main() {
	server, err := NewServer()
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	if err := server.Run(); err != nil {
		log.Fatal("Failed to run server:", err)
	}
}
