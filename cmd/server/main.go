package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ai-doctor-helper/internal/config"
	"ai-doctor-helper/internal/handler"
	"ai-doctor-helper/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}
	// Wiring
	container := config.NewContainer()

	authService := service.NewAuthService(
		container.SupabaseClient,
		container.ProfileRepository,
		container.Logger,
	)
	authMiddleware := handler.NewAuthMiddleware(authService, container.Logger)

	// Handlers
	chatHandler := handler.NewChatHandler(
		container.QuotaService,
		container.PlanService,
		container.ProfileRepository,
		container.AIService,
		container.Logger,
	)
	usageHandler := handler.NewUsageHandler(
		container.QuotaService,
		container.PlanService,
		container.ProfileRepository,
		container.Logger,
	)
	planHandler := handler.NewPlanHandler(
		container.PlanService,
		container.FAQRepository,
		container.Logger,
	)
	adminHandler := handler.NewAdminHandler(container)

	// Router
	router := handler.NewRouter(
		chatHandler,
		usageHandler,
		planHandler,
		adminHandler,
		authMiddleware,
	)

	// start server
	server := &http.Server{
		Addr:    ":" + container.Config.GetServerPort(),
		Handler: router,
	}

	// Run server
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()
	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")
	_ = server.Close()

	container.Logger.Info("Server exited")
}
