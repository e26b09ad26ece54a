package controllers

import (
	"IDMS/handlers"
	"IDMS/middlewares"
	"IDMS/models"
	"IDMS/utils"

	"github.com/gin-gonic/gin"
)

// ClinicalHandlers groups the handlers served under /api.
type ClinicalHandlers struct {
	Diseases       *handlers.DiseaseHandler
	Sessions       *handlers.SymptomSessionHandler
	Diagnoses      *handlers.DiagnosisHandler
	TreatmentPlans *handlers.TreatmentPlanHandler
}

// SetupClinicalRoutes registers the symptom checker, diagnosis and treatment plan routes.
// api must already carry the client key check.
func SetupClinicalRoutes(api *gin.RouterGroup, tokens *utils.TokenManager, h ClinicalHandlers) {
	authenticated := middlewares.TokenAuthMiddleware(tokens)
	clinical := middlewares.RoleAuthMiddleware(models.ClinicalRoles...)
	admin := middlewares.RoleAuthMiddleware(models.RoleAdmin)
	patient := middlewares.RoleAuthMiddleware(models.RolePatient)

	diseases := api.Group("/diseases")
	{
		diseases.GET("", h.Diseases.GetAllDiseases)
		diseases.GET("/:id", h.Diseases.GetDiseaseByID)
		diseases.POST("/:id/evaluate", h.Diseases.EvaluateDisease)
		diseases.POST("", authenticated, admin, h.Diseases.CreateDisease)
		diseases.PUT("/:id", authenticated, admin, h.Diseases.UpdateDisease)
		diseases.DELETE("/:id", authenticated, admin, h.Diseases.DeleteDisease)
		diseases.POST("/initialize", authenticated, admin, h.Diseases.InitializeDiseases)
	}

	// Anonymous visitors may run a symptom check and read it back by session id.
	sessions := api.Group("/symptom-sessions")
	{
		sessions.POST("", middlewares.OptionalTokenAuthMiddleware(tokens), h.Sessions.CreateSession)
		sessions.GET("", authenticated, h.Sessions.GetAllSessions)
		sessions.GET("/statistics", authenticated, clinical, h.Sessions.GetStatistics)
		sessions.GET("/:session_id", middlewares.OptionalTokenAuthMiddleware(tokens), h.Sessions.GetSession)
		sessions.POST("/:session_id/custom-symptoms", middlewares.OptionalTokenAuthMiddleware(tokens), h.Sessions.AddCustomSymptom)
		sessions.POST("/:session_id/reanalyze", middlewares.OptionalTokenAuthMiddleware(tokens), h.Sessions.ReanalyzeSession)
		sessions.GET("/:session_id/analyses", middlewares.OptionalTokenAuthMiddleware(tokens), h.Sessions.GetAnalyses)
		sessions.POST("/:session_id/diagnosis", authenticated, patient, h.Sessions.CreateDiagnosis)
	}

	diagnoses := api.Group("/patient-diagnoses", authenticated)
	{
		diagnoses.GET("", h.Diagnoses.GetAllDiagnoses)
		diagnoses.POST("", patient, h.Diagnoses.CreateDiagnosis)
		diagnoses.GET("/:id", h.Diagnoses.GetDiagnosisByID)
		diagnoses.GET("/:id/treatment-plan", h.Diagnoses.GetTreatmentPlan)
		diagnoses.POST("/:id/confirm", clinical, h.Diagnoses.ConfirmDiagnosis)
		diagnoses.POST("/:id/reject", clinical, h.Diagnoses.RejectDiagnosis)
		diagnoses.POST("/:id/assign-doctor", clinical, h.Diagnoses.AssignDoctor)
	}

	plans := api.Group("/treatment-plans", authenticated)
	{
		plans.GET("", h.TreatmentPlans.GetAllTreatmentPlans)
		plans.GET("/:id", h.TreatmentPlans.GetTreatmentPlanByID)
		plans.POST("", clinical, h.TreatmentPlans.CreateTreatmentPlan)
		plans.PUT("/:id", clinical, h.TreatmentPlans.UpdateTreatmentPlan)
		plans.DELETE("/:id", clinical, h.TreatmentPlans.DeleteTreatmentPlan)
		plans.POST("/:id/medications", clinical, h.TreatmentPlans.AddMedication)
		plans.POST("/:id/procedures", clinical, h.TreatmentPlans.AddProcedure)
		plans.POST("/:id/complete", clinical, h.TreatmentPlans.CompleteTreatmentPlan)
	}
}
