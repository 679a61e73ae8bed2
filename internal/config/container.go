package config

import (
	"ai-doctor-helper/internal/domain"
	"ai-doctor-helper/internal/repository"
	"ai-doctor-helper/internal/service"
	"ai-doctor-helper/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient

	PlanRepository        domain.PlanRepository
	InteractionRepository domain.InteractionRepository
	ProfileRepository     domain.ProfileRepository
	FAQRepository         domain.FAQRepository

	PlanService    domain.PlanService
	QuotaService   domain.QuotaService
	AIService      domain.AIService
	BillingService *service.BillingService
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Initialize Supabase client
	supabaseClient := repository.NewSupabaseClient(config, appLogger)
	if err := supabaseClient.Initialize(); err != nil {
		appLogger.Warn("Supabase client not initialized", "error", err)
	}

	// Initialize repositories
	planRepo := repository.NewSupabasePlanRepository(supabaseClient, appLogger)
	interactionRepo := repository.NewSupabaseInteractionRepository(supabaseClient, appLogger)
	profileRepo := repository.NewSupabaseProfileRepository(supabaseClient, appLogger)
	faqRepo := repository.NewSupabaseFAQRepository(supabaseClient, appLogger)

	// Initialize services
	planService := service.NewPlanService(planRepo, appLogger)
	quotaService := service.NewQuotaService(planService, interactionRepo, appLogger, config.QuotaFailOpen())
	billingService := service.NewBillingService(planRepo, appLogger, config.GetStripeAPIKey())

	// Vertex AI is optional in local development; gated endpoints return 503
	// until GCP_PROJECT_ID and credentials are configured.
	var aiService domain.AIService
	if config.GetGCPProjectID() != "" {
		svc, err := service.NewAIService(appLogger, config.GetGCPProjectID(), config.GetGCPLocation())
		if err != nil {
			appLogger.Error("Failed to initialize AI service", err)
		} else {
			aiService = svc
		}
	} else {
		appLogger.Warn("GCP_PROJECT_ID not set, AI service disabled")
	}

	return &Container{
		Config:                config,
		Logger:                appLogger,
		SupabaseClient:        supabaseClient,
		PlanRepository:        planRepo,
		InteractionRepository: interactionRepo,
		ProfileRepository:     profileRepo,
		FAQRepository:         faqRepo,
		PlanService:           planService,
		QuotaService:          quotaService,
		AIService:             aiService,
		BillingService:        billingService,
	}
}
