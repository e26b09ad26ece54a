package routes

import (
	"IDMS/cache"
	"IDMS/config"
	"IDMS/controllers"
	"IDMS/handlers"
	"IDMS/metrics"
	"IDMS/middlewares"
	"IDMS/repositories"
	"IDMS/services"
	"IDMS/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(store cache.Cache, cfg *config.AppConfig, db *gorm.DB, m *metrics.Metrics, notifiers ...services.Notifier) (http.Handler, error) {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := utils.NewTokenManager(cfg.SymmetricKey)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.LoggingMiddleware(m))
	router.Use(middlewares.SecurityHeaders())
	if len(cfg.CORSOrigins) > 0 {
		router.Use(middlewares.CorsMiddleware(cfg.CORSOrigins))
	}
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	// Initialize repositories, services, and handlers
	diseaseRepo := repositories.NewDiseaseRepository(db, store)
	sessionRepo := repositories.NewSessionRepository(db)
	diagnosisRepo := repositories.NewDiagnosisRepository(db, store)
	treatmentPlanRepo := repositories.NewTreatmentPlanRepository(db, store)

	analyzer := services.NewSymptomAnalyzer(diseaseRepo, sessionRepo, m)
	diseaseService := services.NewDiseaseService(diseaseRepo)
	sessionService := services.NewSessionService(sessionRepo, diagnosisRepo, analyzer, notifiers...)
	diagnosisService := services.NewDiagnosisService(diagnosisRepo, treatmentPlanRepo, diseaseRepo, m, notifiers...)
	treatmentPlanService := services.NewTreatmentPlanService(treatmentPlanRepo, diagnosisRepo, m)

	// Register routes
	api := router.Group("/api", middlewares.ValidateBearerToken(cfg.GetBearerToken()))
	controllers.SetupClinicalRoutes(api, tokens, controllers.ClinicalHandlers{
		Diseases:       handlers.NewDiseaseHandler(diseaseService),
		Sessions:       handlers.NewSymptomSessionHandler(sessionService),
		Diagnoses:      handlers.NewDiagnosisHandler(diagnosisService),
		TreatmentPlans: handlers.NewTreatmentPlanHandler(treatmentPlanService),
	})

	controllers.SetupRootRoute(router, db, m)

	return router, nil
}
