package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"clipforge/config"
	"clipforge/handlers"
)

const version = "1.3.0"

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration; credential gaps abort here, before anything
	// touches the network
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Info().Str("config", cfg.String()).Msg("Configuration loaded")

	// Create Gin router
	router := gin.Default()

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Liveness and metadata endpoints
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "Video Generation API",
			"status":  "running",
			"version": version,
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": version})
	})

	// Initialize handlers
	videoHandler := handlers.NewVideoHandler(cfg)
	avatarHandler := handlers.NewAvatarHandler(cfg)

	// Video generation routes. Each request runs its pipeline to
	// completion on its own goroutine; concurrency across requests is
	// unbounded, an inherited simplicity-over-robustness tradeoff.
	router.POST("/generate-video", videoHandler.GenerateVideo)
	router.POST("/generate-video-with-prefix", videoHandler.GenerateVideoWithPrefix)
	router.POST("/generate-avatar-video", avatarHandler.GenerateAvatarVideo)
	router.POST("/convert-to-base64", videoHandler.ConvertToBase64)
	router.GET("/supported-formats", videoHandler.SupportedFormats)

	// Avatar provider pass-through listings
	router.GET("/available-voices", avatarHandler.ListVoices)
	router.GET("/voices", avatarHandler.ListVoices)
	router.GET("/avatars", avatarHandler.ListAvatars)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	log.Info().Str("addr", addr).Msg("Starting server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
