package handlers

import (
	"IDMS/middlewares"
	"IDMS/models"
	"IDMS/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// sessionResponse is a session with its analyses and the emergency signs it reports.
type sessionResponse struct {
	*models.SymptomCheckerSession
	EmergencySymptoms    []string                 `json:"emergency_symptoms"`
	EmergencyRecommended bool                     `json:"emergency_recommended"`
	Analyses             []models.DiseaseAnalysis `json:"analyses"`
}

func newSessionResponse(session *models.SymptomCheckerSession, analyses []models.DiseaseAnalysis) sessionResponse {
	emergency := models.DetectEmergencySymptoms(session.AllSymptoms())
	if analyses == nil {
		analyses = []models.DiseaseAnalysis{}
	}
	return sessionResponse{
		SymptomCheckerSession: session,
		EmergencySymptoms:     emergency,
		EmergencyRecommended:  session.SeverityLevel == models.SeverityCritical || len(emergency) > 0,
		Analyses:              analyses,
	}
}

type SymptomSessionHandler struct {
	service *services.SessionService
}

func NewSymptomSessionHandler(service *services.SessionService) *SymptomSessionHandler {
	return &SymptomSessionHandler{service: service}
}

// respondSession writes the session together with its current analysis records.
func (h *SymptomSessionHandler) respondSession(c *gin.Context, session *models.SymptomCheckerSession, status int) {
	analyses, err := h.service.Analyses(c.Request.Context(), middlewares.CurrentUser(c), session.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, newSessionResponse(session, analyses), status)
}

func (h *SymptomSessionHandler) CreateSession(c *gin.Context) {
	var input services.SessionInput
	if !bindJSON(c, &input) {
		return
	}
	session, err := h.service.Create(c.Request.Context(), middlewares.CurrentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondSession(c, session, http.StatusCreated)
}

func (h *SymptomSessionHandler) GetSession(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), middlewares.CurrentUser(c), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondSession(c, session, http.StatusOK)
}

func (h *SymptomSessionHandler) GetAllSessions(c *gin.Context) {
	sessions, err := h.service.List(c.Request.Context(), middlewares.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, sessions, http.StatusOK)
}

type customSymptomRequest struct {
	Symptom string `json:"symptom"`
}

func (h *SymptomSessionHandler) AddCustomSymptom(c *gin.Context) {
	var req customSymptomRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.service.AddCustomSymptom(c.Request.Context(), middlewares.CurrentUser(c), c.Param("session_id"), req.Symptom)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondSession(c, session, http.StatusOK)
}

func (h *SymptomSessionHandler) ReanalyzeSession(c *gin.Context) {
	session, err := h.service.Reanalyze(c.Request.Context(), middlewares.CurrentUser(c), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondSession(c, session, http.StatusOK)
}

func (h *SymptomSessionHandler) GetAnalyses(c *gin.Context) {
	analyses, err := h.service.Analyses(c.Request.Context(), middlewares.CurrentUser(c), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, analyses, http.StatusOK)
}

// CreateDiagnosis files a self-reported diagnosis from the session result.
func (h *SymptomSessionHandler) CreateDiagnosis(c *gin.Context) {
	diagnosis, err := h.service.CreateDiagnosis(c.Request.Context(), middlewares.CurrentUser(c), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, diagnosis, http.StatusCreated)
}

func (h *SymptomSessionHandler) GetStatistics(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			middlewares.HttpError(c, "Invalid days", http.StatusBadRequest, err, nil)
			return
		}
		days = parsed
	}
	stats, err := h.service.Statistics(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, stats, http.StatusOK)
}
