package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"profilescope/internal/github"
	"profilescope/internal/handlers"
	"profilescope/internal/middleware"
	"profilescope/internal/services"
	"profilescope/pkg/config"
	"profilescope/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init()
	gin.SetMode(cfg.Server.Mode)

	// Shared Gemini client for assessment and chat
	ctx := context.Background()
	genaiClient, err := services.NewGenAIClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		logger.Fatalf("Failed to initialize model client: %v", err)
	}

	// Initialize dependencies
	contributionsClient := github.NewContributionsClient(cfg.GitHub.ContributionsURL)
	streakService := services.NewStreakService()
	profileService := services.NewProfileService(
		func(token string) (services.ProfileFetcher, error) {
			return github.NewClient(token, cfg.GitHub.APIBaseURL)
		},
		contributionsClient,
		streakService,
	)
	assessmentService := services.NewAssessmentService(genaiClient, cfg.Gemini.Model)
	chatService := services.NewChatService(
		genaiClient,
		cfg.Chat.Model,
		time.Duration(cfg.Chat.SessionTTL)*time.Minute,
		time.Duration(cfg.Chat.SweepInterval)*time.Minute,
		cfg.Chat.MaxSessions,
	)

	chatService.StartJanitor()
	defer chatService.StopJanitor()

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	setupRoutes(router, profileService, assessmentService, chatService)

	// Setup server
	server := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		// WriteTimeout also bounds how long a chat reply may stream
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Infof("Server stopped")
}

func setupRoutes(router *gin.Engine, profileService *services.ProfileService, assessmentService *services.AssessmentService, chatService *services.ChatService) {
	analyzeHandler := handlers.NewAnalyzeHandler(profileService, assessmentService, chatService)
	chatHandler := handlers.NewChatHandler(chatService)

	router.GET("/healthz", handlers.Health)

	api := router.Group("/api")
	{
		api.POST("/analyze", analyzeHandler.Analyze)
		api.POST("/chat/:session/messages", chatHandler.SendMessage)
	}
}
