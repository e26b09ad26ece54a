package handlers

import (
	"IDMS/middlewares"
	"IDMS/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DiseaseHandler struct {
	service *services.DiseaseService
}

func NewDiseaseHandler(service *services.DiseaseService) *DiseaseHandler {
	return &DiseaseHandler{service: service}
}

func (h *DiseaseHandler) CreateDisease(c *gin.Context) {
	var input services.DiseaseInput
	if !bindJSON(c, &input) {
		return
	}
	disease, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, disease, http.StatusCreated)
}

func (h *DiseaseHandler) GetDiseaseByID(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	disease, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, disease, http.StatusOK)
}

func (h *DiseaseHandler) GetAllDiseases(c *gin.Context) {
	diseases, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, diseases, http.StatusOK)
}

func (h *DiseaseHandler) UpdateDisease(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input services.DiseaseInput
	if !bindJSON(c, &input) {
		return
	}
	disease, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, disease, http.StatusOK)
}

func (h *DiseaseHandler) DeleteDisease(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// InitializeDiseases loads the malaria and pneumonia presets.
func (h *DiseaseHandler) InitializeDiseases(c *gin.Context) {
	diseases, err := h.service.InitializeDefaults(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{"message": "Default diseases initialized", "diseases": diseases}, http.StatusOK)
}

type evaluateRequest struct {
	Symptoms []string `json:"symptoms"`
}

// EvaluateDisease scores a symptom list against one disease without storing anything.
func (h *DiseaseHandler) EvaluateDisease(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req evaluateRequest
	if !bindJSON(c, &req) {
		return
	}
	evaluation, err := h.service.Evaluate(c.Request.Context(), id, req.Symptoms)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, evaluation, http.StatusOK)
}
