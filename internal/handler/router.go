package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	chatHandler *ChatHandler,
	usageHandler *UsageHandler,
	planHandler *PlanHandler,
	adminHandler *AdminHandler,
	authMiddleware *AuthMiddleware,
) http.Handler {
	router := mux.NewRouter()

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"ai-doctor-helper"}`))
	}).Methods("GET")

	// Public content routes
	api.HandleFunc("/plans", planHandler.GetPlans).Methods("GET")
	api.HandleFunc("/faq", planHandler.GetFAQ).Methods("GET")

	// Gated AI routes: authenticated users are quota-checked, anonymous
	// requests pass through ungated.
	gated := api.PathPrefix("").Subrouter()
	gated.Use(authMiddleware.Optional)
	gated.HandleFunc("/chat", chatHandler.Chat).Methods("POST")
	gated.HandleFunc("/image-analysis", chatHandler.AnalyzeImage).Methods("POST")
	gated.HandleFunc("/health-report", chatHandler.AnalyzeHealthReport).Methods("POST")

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware.Middleware)
	protected.HandleFunc("/usage/stats", usageHandler.GetStats).Methods("GET")

	// Admin routes (X-Admin-Secret checked per handler)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/plans", adminHandler.ListPlans).Methods("GET")
	admin.HandleFunc("/plans", adminHandler.CreatePlan).Methods("POST")
	admin.HandleFunc("/plans/{id}", adminHandler.UpdatePlan).Methods("PUT")
	admin.HandleFunc("/plans/{id}", adminHandler.DeletePlan).Methods("DELETE")
	admin.HandleFunc("/faq", adminHandler.ListFAQ).Methods("GET")
	admin.HandleFunc("/faq", adminHandler.CreateFAQ).Methods("POST")
	admin.HandleFunc("/faq/{id}", adminHandler.UpdateFAQ).Methods("PUT")
	admin.HandleFunc("/faq/{id}", adminHandler.DeleteFAQ).Methods("DELETE")
	admin.HandleFunc("/users/{id}/plan", adminHandler.SetUserPlan).Methods("PUT")
	admin.HandleFunc("/users/{id}/status", adminHandler.SetAccountDisabled).Methods("PUT")
	admin.HandleFunc("/users/{id}/usage", adminHandler.GetUserUsage).Methods("GET")
	admin.HandleFunc("/billing/sync", adminHandler.SyncPrices).Methods("POST")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000", // Next.js dev server
			"http://localhost:3001", // Alternative dev port
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Accept-Language",
			"Authorization",
			"Content-Type",
			"X-Admin-Secret",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
