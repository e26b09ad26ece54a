package handlers

import (
	"IDMS/middlewares"
	"IDMS/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TreatmentPlanHandler struct {
	service *services.TreatmentPlanService
}

func NewTreatmentPlanHandler(service *services.TreatmentPlanService) *TreatmentPlanHandler {
	return &TreatmentPlanHandler{service: service}
}

func (h *TreatmentPlanHandler) CreateTreatmentPlan(c *gin.Context) {
	var input services.TreatmentPlanInput
	if !bindJSON(c, &input) {
		return
	}
	plan, err := h.service.Create(c.Request.Context(), middlewares.CurrentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, plan, http.StatusCreated)
}

func (h *TreatmentPlanHandler) GetTreatmentPlanByID(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.service.Get(c.Request.Context(), middlewares.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, plan, http.StatusOK)
}

// GetAllTreatmentPlans lists plans, optionally narrowed by the diagnosis_id query parameter.
func (h *TreatmentPlanHandler) GetAllTreatmentPlans(c *gin.Context) {
	var diagnosisID uint
	if raw := c.Query("diagnosis_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			middlewares.HttpError(c, "Invalid diagnosis_id", http.StatusBadRequest, err, nil)
			return
		}
		diagnosisID = uint(parsed)
	}
	plans, err := h.service.List(c.Request.Context(), middlewares.CurrentUser(c), diagnosisID)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, plans, http.StatusOK)
}

func (h *TreatmentPlanHandler) UpdateTreatmentPlan(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input services.TreatmentPlanInput
	if !bindJSON(c, &input) {
		return
	}
	plan, err := h.service.Update(c.Request.Context(), middlewares.CurrentUser(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, plan, http.StatusOK)
}

func (h *TreatmentPlanHandler) DeleteTreatmentPlan(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middlewares.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TreatmentPlanHandler) AddMedication(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input services.MedicationInput
	if !bindJSON(c, &input) {
		return
	}
	plan, err := h.service.AddMedication(c.Request.Context(), middlewares.CurrentUser(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, plan, http.StatusOK)
}

func (h *TreatmentPlanHandler) AddProcedure(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input services.ProcedureInput
	if !bindJSON(c, &input) {
		return
	}
	plan, err := h.service.AddProcedure(c.Request.Context(), middlewares.CurrentUser(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, plan, http.StatusOK)
}

func (h *TreatmentPlanHandler) CompleteTreatmentPlan(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.service.MarkCompleted(c.Request.Context(), middlewares.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, plan, http.StatusOK)
}
