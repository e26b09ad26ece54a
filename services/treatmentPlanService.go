package services

import (
	"IDMS/metrics"
	"IDMS/models"
	"IDMS/repositories"
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/datatypes"
)

// ErrPlanCompleted is returned when a completed plan is edited.
var ErrPlanCompleted = errors.New("treatment plan is already completed")

// TreatmentPlanInput creates or replaces the editable fields of a plan.
type TreatmentPlanInput struct {
	DiagnosisID         uint   `json:"diagnosis_id"`
	Duration            string `json:"duration"`
	FollowUpRequired    bool   `json:"follow_up_required"`
	FollowUpInterval    int    `json:"follow_up_interval"`
	Instructions        string `json:"instructions"`
	SupervisingDoctorID string `json:"supervising_doctor_id"`
}

func (in TreatmentPlanInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Duration, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.FollowUpInterval,
			validation.When(in.FollowUpRequired, validation.Required),
			validation.Min(0)),
		validation.Field(&in.SupervisingDoctorID, validation.Length(0, 64)),
	)
}

// MedicationInput is one medication to append to a plan.
type MedicationInput struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

// ProcedureInput is one procedure to append to a plan.
type ProcedureInput struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	ScheduledDate *time.Time `json:"scheduled_date"`
}

// TreatmentPlanService manages plans after a diagnosis is confirmed.
type TreatmentPlanService struct {
	repository *repositories.TreatmentPlanRepository
	diagnoses  repositories.DiagnosisRepository
	metrics    *metrics.Metrics
	now        Clock
}

func NewTreatmentPlanService(repository *repositories.TreatmentPlanRepository, diagnoses repositories.DiagnosisRepository, m *metrics.Metrics) *TreatmentPlanService {
	return &TreatmentPlanService{repository: repository, diagnoses: diagnoses, metrics: m, now: systemClock}
}

// WithClock replaces the time source used for added_at and completed_at stamps.
func (s *TreatmentPlanService) WithClock(clock Clock) *TreatmentPlanService {
	s.now = clock
	return s
}

// Create adds a plan to a diagnosis that has none. A second plan for the same
// diagnosis fails with repositories.ErrDuplicate.
func (s *TreatmentPlanService) Create(ctx context.Context, user *models.CurrentUser, input TreatmentPlanInput) (*models.TreatmentPlan, error) {
	if !user.IsClinician() {
		return nil, ErrForbidden
	}
	if err := validation.Validate(input.DiagnosisID, validation.Required); err != nil {
		return nil, invalid(validation.Errors{"diagnosis_id": err})
	}
	if err := input.Validate(); err != nil {
		return nil, invalid(err)
	}

	if _, err := s.diagnoses.GetByID(ctx, input.DiagnosisID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid(validation.Errors{"diagnosis_id": err})
		}
		return nil, err
	}

	supervisor := input.SupervisingDoctorID
	if supervisor == "" {
		supervisor = user.ID
	}
	plan := &models.TreatmentPlan{
		DiagnosisID:         input.DiagnosisID,
		Medications:         datatypes.JSONSlice[models.Medication]{},
		Procedures:          datatypes.JSONSlice[models.Procedure]{},
		Duration:            strings.TrimSpace(input.Duration),
		Status:              models.PlanActive,
		FollowUpRequired:    input.FollowUpRequired,
		FollowUpInterval:    input.FollowUpInterval,
		Instructions:        input.Instructions,
		SupervisingDoctorID: supervisor,
		CreatedByID:         user.ID,
	}
	if err := s.repository.Create(ctx, plan); err != nil {
		return nil, err
	}
	s.metrics.RecordTreatmentPlanOperation("created")
	return plan, nil
}

// Get returns a plan the caller may see: staff see every plan, patients only
// plans of their own diagnoses.
func (s *TreatmentPlanService) Get(ctx context.Context, user *models.CurrentUser, id uint) (*models.TreatmentPlan, error) {
	plan, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, user, plan.DiagnosisID); err != nil {
		return nil, err
	}
	return plan, nil
}

// List returns every plan, or the plan of one diagnosis when diagnosisID is set.
func (s *TreatmentPlanService) List(ctx context.Context, user *models.CurrentUser, diagnosisID uint) ([]models.TreatmentPlan, error) {
	if diagnosisID == 0 {
		if !user.IsClinician() {
			return nil, ErrForbidden
		}
		return s.repository.GetAll(ctx)
	}

	if err := s.authorize(ctx, user, diagnosisID); err != nil {
		return nil, err
	}
	plan, err := s.repository.GetByDiagnosisID(ctx, diagnosisID)
	if errors.Is(err, repositories.ErrNotFound) {
		return []models.TreatmentPlan{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []models.TreatmentPlan{*plan}, nil
}

// Update replaces the duration, follow-up and instruction fields.
func (s *TreatmentPlanService) Update(ctx context.Context, user *models.CurrentUser, id uint, input TreatmentPlanInput) (*models.TreatmentPlan, error) {
	if !user.IsClinician() {
		return nil, ErrForbidden
	}
	if err := input.Validate(); err != nil {
		return nil, invalid(err)
	}
	return s.repository.Modify(ctx, id, func(plan *models.TreatmentPlan) error {
		if plan.Status == models.PlanCompleted {
			return invalid(ErrPlanCompleted)
		}
		plan.Duration = strings.TrimSpace(input.Duration)
		plan.FollowUpRequired = input.FollowUpRequired
		plan.FollowUpInterval = input.FollowUpInterval
		plan.Instructions = input.Instructions
		if input.SupervisingDoctorID != "" {
			plan.SupervisingDoctorID = input.SupervisingDoctorID
		}
		return nil
	})
}

func (s *TreatmentPlanService) Delete(ctx context.Context, user *models.CurrentUser, id uint) error {
	if !user.IsClinician() {
		return ErrForbidden
	}
	return s.repository.Delete(ctx, id)
}

// AddMedication appends a medication stamped with the current time.
func (s *TreatmentPlanService) AddMedication(ctx context.Context, user *models.CurrentUser, id uint, input MedicationInput) (*models.TreatmentPlan, error) {
	if !user.IsClinician() {
		return nil, ErrForbidden
	}
	medication := models.Medication{
		Name:      strings.TrimSpace(input.Name),
		Dosage:    strings.TrimSpace(input.Dosage),
		Frequency: strings.TrimSpace(input.Frequency),
	}
	if err := medication.Validate(); err != nil {
		return nil, invalid(err)
	}

	plan, err := s.repository.Modify(ctx, id, func(plan *models.TreatmentPlan) error {
		plan.AddMedication(medication.Name, medication.Dosage, medication.Frequency, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTreatmentPlanOperation("medication_added")
	return plan, nil
}

// AddProcedure appends a procedure stamped with the current time.
func (s *TreatmentPlanService) AddProcedure(ctx context.Context, user *models.CurrentUser, id uint, input ProcedureInput) (*models.TreatmentPlan, error) {
	if !user.IsClinician() {
		return nil, ErrForbidden
	}
	procedure := models.Procedure{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if err := procedure.Validate(); err != nil {
		return nil, invalid(err)
	}

	plan, err := s.repository.Modify(ctx, id, func(plan *models.TreatmentPlan) error {
		plan.AddProcedure(procedure.Name, procedure.Description, input.ScheduledDate, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTreatmentPlanOperation("procedure_added")
	return plan, nil
}

// MarkCompleted closes the plan. Completing an already completed plan refreshes
// completed_at.
func (s *TreatmentPlanService) MarkCompleted(ctx context.Context, user *models.CurrentUser, id uint) (*models.TreatmentPlan, error) {
	if !user.IsClinician() {
		return nil, ErrForbidden
	}
	plan, err := s.repository.Modify(ctx, id, func(plan *models.TreatmentPlan) error {
		plan.MarkCompleted(s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTreatmentPlanOperation("completed")
	return plan, nil
}

func (s *TreatmentPlanService) authorize(ctx context.Context, user *models.CurrentUser, diagnosisID uint) error {
	if user.IsClinician() {
		return nil
	}
	if user == nil {
		return ErrForbidden
	}
	diagnosis, err := s.diagnoses.GetByID(ctx, diagnosisID)
	if err != nil {
		return err
	}
	if diagnosis.PatientID != user.ID {
		return ErrForbidden
	}
	return nil
}
