package handlers

import (
	"IDMS/middlewares"
	"IDMS/models"
	"IDMS/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DiagnosisHandler struct {
	service *services.DiagnosisService
}

func NewDiagnosisHandler(service *services.DiagnosisService) *DiagnosisHandler {
	return &DiagnosisHandler{service: service}
}

func (h *DiagnosisHandler) CreateDiagnosis(c *gin.Context) {
	var input services.DiagnosisInput
	if !bindJSON(c, &input) {
		return
	}
	diagnosis, err := h.service.Create(c.Request.Context(), middlewares.CurrentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, diagnosis, http.StatusCreated)
}

func (h *DiagnosisHandler) GetDiagnosisByID(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	diagnosis, err := h.service.Get(c.Request.Context(), middlewares.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, diagnosis, http.StatusOK)
}

// GetAllDiagnoses lists diagnoses, filtered by the patient_id, treating_doctor_id
// and status query parameters.
func (h *DiagnosisHandler) GetAllDiagnoses(c *gin.Context) {
	filter := models.DiagnosisFilter{
		PatientID:        c.Query("patient_id"),
		TreatingDoctorID: c.Query("treating_doctor_id"),
		Status:           models.DiagnosisStatus(c.Query("status")),
	}
	diagnoses, err := h.service.List(c.Request.Context(), middlewares.CurrentUser(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, diagnoses, http.StatusOK)
}

func (h *DiagnosisHandler) ConfirmDiagnosis(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input services.DecisionInput
	if !bindJSON(c, &input) {
		return
	}
	diagnosis, err := h.service.Confirm(c.Request.Context(), middlewares.CurrentUser(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, diagnosis, http.StatusOK)
}

func (h *DiagnosisHandler) RejectDiagnosis(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input services.DecisionInput
	if !bindJSON(c, &input) {
		return
	}
	diagnosis, err := h.service.Reject(c.Request.Context(), middlewares.CurrentUser(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, diagnosis, http.StatusOK)
}

type assignDoctorRequest struct {
	DoctorID string `json:"doctor_id"`
}

func (h *DiagnosisHandler) AssignDoctor(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req assignDoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	diagnosis, err := h.service.AssignDoctor(c.Request.Context(), middlewares.CurrentUser(c), id, req.DoctorID)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, diagnosis, http.StatusOK)
}

func (h *DiagnosisHandler) GetTreatmentPlan(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.service.TreatmentPlan(c.Request.Context(), middlewares.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, plan, http.StatusOK)
}
