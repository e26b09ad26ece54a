package services

import (
	"IDMS/metrics"
	"IDMS/models"
	"IDMS/repositories"
	"IDMS/utils"
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// DiagnosisInput is a diagnosis a patient files directly, without a symptom session.
type DiagnosisInput struct {
	DiseaseID        uint            `json:"disease_id"`
	SelectedSymptoms []string        `json:"selected_symptoms"`
	CustomSymptoms   []string        `json:"custom_symptoms"`
	Severity         models.Severity `json:"severity"`
	Temperature      *float64        `json:"temperature"`
	HeartRate        *int            `json:"heart_rate"`
	BloodPressure    string          `json:"blood_pressure"`
	OxygenSaturation *int            `json:"oxygen_saturation"`
}

func (in DiagnosisInput) Validate() error {
	if err := utils.ValidateSymptoms(in.SelectedSymptoms, in.CustomSymptoms); err != nil {
		return err
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.DiseaseID, validation.Required),
		validation.Field(&in.Severity, validation.In(models.Severities...)),
		validation.Field(&in.Temperature, utils.TemperatureRules...),
		validation.Field(&in.HeartRate, utils.HeartRateRules...),
		validation.Field(&in.BloodPressure, validation.Length(0, 20)),
		validation.Field(&in.OxygenSaturation, utils.OxygenSaturationRules...),
	)
}

// DecisionInput is a clinician's confirm or reject request.
type DecisionInput struct {
	Notes       string                 `json:"notes"`
	TestResults map[string]interface{} `json:"test_results"`
}

// DiagnosisService drives the diagnosis lifecycle:
// self_reported -> doctor_confirmed | doctor_rejected.
type DiagnosisService struct {
	diagnoses repositories.DiagnosisRepository
	plans     *repositories.TreatmentPlanRepository
	diseases  repositories.DiseaseRepository
	metrics   *metrics.Metrics
	notifiers notifiers
	now       Clock
}

func NewDiagnosisService(diagnoses repositories.DiagnosisRepository, plans *repositories.TreatmentPlanRepository, diseases repositories.DiseaseRepository, m *metrics.Metrics, n ...Notifier) *DiagnosisService {
	return &DiagnosisService{
		diagnoses: diagnoses,
		plans:     plans,
		diseases:  diseases,
		metrics:   m,
		notifiers: n,
		now:       systemClock,
	}
}

// WithClock replaces the time source used for confirmation timestamps.
func (s *DiagnosisService) WithClock(clock Clock) *DiagnosisService {
	s.now = clock
	return s
}

// Create files a self-reported diagnosis for patient.
func (s *DiagnosisService) Create(ctx context.Context, patient *models.CurrentUser, input DiagnosisInput) (*models.PatientDiagnosis, error) {
	if patient == nil {
		return nil, ErrForbidden
	}
	if err := input.Validate(); err != nil {
		return nil, invalid(err)
	}

	disease, err := s.diseases.GetByID(ctx, input.DiseaseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid(validation.Errors{"disease_id": err})
		}
		return nil, err
	}

	diagnosis := &models.PatientDiagnosis{
		PatientID: patient.ID,
		DiseaseID: disease.ID,
		Status:    models.StatusSelfReported,
		Symptoms: datatypes.NewJSONType(models.SymptomSnapshot{
			Selected: utils.CleanSymptoms(input.SelectedSymptoms),
			Custom:   utils.CleanSymptoms(input.CustomSymptoms),
		}),
		Severity:         input.Severity,
		Temperature:      input.Temperature,
		HeartRate:        input.HeartRate,
		BloodPressure:    strings.TrimSpace(input.BloodPressure),
		OxygenSaturation: input.OxygenSaturation,
		TestResults:      datatypes.JSONMap{},
	}
	if err := s.diagnoses.Create(ctx, diagnosis); err != nil {
		return nil, err
	}
	diagnosis.Disease = disease
	s.metrics.RecordDiagnosisTransition(string(diagnosis.Status))
	return diagnosis, nil
}

// Get returns a diagnosis the caller may see: their own, or any for clinical staff.
func (s *DiagnosisService) Get(ctx context.Context, user *models.CurrentUser, id uint) (*models.PatientDiagnosis, error) {
	diagnosis, err := s.diagnoses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccessDiagnosis(user, diagnosis) {
		return nil, ErrForbidden
	}
	return diagnosis, nil
}

// List returns diagnoses matching filter. Patients are always limited to their own.
func (s *DiagnosisService) List(ctx context.Context, user *models.CurrentUser, filter models.DiagnosisFilter) ([]models.PatientDiagnosis, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	if filter.Status != "" {
		if err := validation.Validate(filter.Status, validation.In(models.DiagnosisStatuses...)); err != nil {
			return nil, invalid(validation.Errors{"status": err})
		}
	}
	if !user.IsClinician() {
		filter.PatientID = user.ID
	}
	return s.diagnoses.List(ctx, filter)
}

// Confirm records a clinician's confirmation and makes sure the diagnosis has
// exactly one treatment plan. Confirming again overwrites the decision metadata
// and keeps the existing plan.
func (s *DiagnosisService) Confirm(ctx context.Context, doctor *models.CurrentUser, id uint, input DecisionInput) (*models.PatientDiagnosis, error) {
	if !doctor.IsClinician() {
		return nil, ErrForbidden
	}
	diagnosis, err := s.diagnoses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doctorID := doctor.ID
	diagnosis.Status = models.StatusDoctorConfirmed
	diagnosis.TreatingDoctorID = &doctorID
	diagnosis.DoctorNotes = input.Notes
	diagnosis.TestResults = datatypes.JSONMap(input.TestResults)
	if diagnosis.TestResults == nil {
		diagnosis.TestResults = datatypes.JSONMap{}
	}
	diagnosis.ConfirmedByID = &doctorID
	diagnosis.ConfirmedAt = &now

	hadPlan := diagnosis.TreatmentPlan != nil
	plan, err := s.diagnoses.SaveConfirmation(ctx, diagnosis, models.NewPlanForDiagnosis(diagnosis, doctorID))
	if err != nil {
		return nil, err
	}
	diagnosis.TreatmentPlan = plan

	s.metrics.RecordDiagnosisTransition(string(diagnosis.Status))
	if !hadPlan {
		s.metrics.RecordTreatmentPlanOperation("created")
	}
	log.Info().
		Uint("diagnosis_id", diagnosis.ID).
		Str("doctor_id", doctorID).
		Uint("treatment_plan_id", plan.ID).
		Msg("diagnosis confirmed")

	s.notifiers.diagnosisDecision(ctx, diagnosis)
	return diagnosis, nil
}

// Reject records a clinician's rejection. An existing treatment plan is left alone.
func (s *DiagnosisService) Reject(ctx context.Context, doctor *models.CurrentUser, id uint, input DecisionInput) (*models.PatientDiagnosis, error) {
	if !doctor.IsClinician() {
		return nil, ErrForbidden
	}
	diagnosis, err := s.diagnoses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doctorID := doctor.ID
	diagnosis.Status = models.StatusDoctorRejected
	diagnosis.DoctorNotes = input.Notes
	diagnosis.ConfirmedByID = &doctorID
	diagnosis.ConfirmedAt = &now

	if err := s.diagnoses.Update(ctx, diagnosis); err != nil {
		return nil, err
	}

	s.metrics.RecordDiagnosisTransition(string(diagnosis.Status))
	log.Info().Uint("diagnosis_id", diagnosis.ID).Str("doctor_id", doctorID).Msg("diagnosis rejected")

	s.notifiers.diagnosisDecision(ctx, diagnosis)
	return diagnosis, nil
}

// AssignDoctor sets the treating doctor without changing the status.
func (s *DiagnosisService) AssignDoctor(ctx context.Context, user *models.CurrentUser, id uint, doctorID string) (*models.PatientDiagnosis, error) {
	if !user.IsClinician() {
		return nil, ErrForbidden
	}
	doctorID = strings.TrimSpace(doctorID)
	if err := validation.Validate(doctorID, validation.Required, validation.Length(1, 64)); err != nil {
		return nil, invalid(validation.Errors{"doctor_id": err})
	}

	diagnosis, err := s.diagnoses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	diagnosis.TreatingDoctorID = &doctorID
	if err := s.diagnoses.Update(ctx, diagnosis); err != nil {
		return nil, err
	}
	return diagnosis, nil
}

// TreatmentPlan returns the plan attached to a diagnosis.
func (s *DiagnosisService) TreatmentPlan(ctx context.Context, user *models.CurrentUser, id uint) (*models.TreatmentPlan, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	return s.plans.GetByDiagnosisID(ctx, id)
}

func canAccessDiagnosis(user *models.CurrentUser, diagnosis *models.PatientDiagnosis) bool {
	if user == nil {
		return false
	}
	return user.IsClinician() || user.ID == diagnosis.PatientID
}
