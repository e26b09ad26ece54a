package services

import (
	"IDMS/models"
	"IDMS/repositories"
	"IDMS/utils"
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	DefaultStatisticsDays = 30
	MaxStatisticsDays     = 365
)

// ErrNoPrimaryDisease is returned when a diagnosis is requested from a session
// whose analysis did not single out a disease.
var ErrNoPrimaryDisease = errors.New("session has no primary suspected disease")

// SessionInput is the intake form of a symptom check.
type SessionInput struct {
	SelectedSymptoms []string `json:"selected_symptoms"`
	CustomSymptoms   []string `json:"custom_symptoms"`
	Location         string   `json:"location"`
	AgeRange         string   `json:"age_range"`
	Gender           string   `json:"gender"`
	Temperature      *float64 `json:"temperature"`
	HeartRate        *int     `json:"heart_rate"`
}

func (in SessionInput) Validate() error {
	if err := utils.ValidateSymptoms(in.SelectedSymptoms, in.CustomSymptoms); err != nil {
		return err
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Location, validation.Length(0, 255)),
		validation.Field(&in.AgeRange, validation.In(models.AgeRanges...)),
		validation.Field(&in.Gender, validation.In(models.Genders...)),
		validation.Field(&in.Temperature, utils.TemperatureRules...),
		validation.Field(&in.HeartRate, utils.HeartRateRules...),
	)
}

// SessionService runs symptom checks and turns their results into diagnoses.
type SessionService struct {
	sessions  repositories.SessionRepository
	diagnoses repositories.DiagnosisRepository
	analyzer  *SymptomAnalyzer
	notifiers notifiers
	now       Clock
}

func NewSessionService(sessions repositories.SessionRepository, diagnoses repositories.DiagnosisRepository, analyzer *SymptomAnalyzer, n ...Notifier) *SessionService {
	return &SessionService{
		sessions:  sessions,
		diagnoses: diagnoses,
		analyzer:  analyzer,
		notifiers: n,
		now:       systemClock,
	}
}

// Create analyzes a new session for user (nil for anonymous visitors). The
// session row and its analysis records are written in one transaction, so a
// failed analysis leaves nothing behind.
func (s *SessionService) Create(ctx context.Context, user *models.CurrentUser, input SessionInput) (*models.SymptomCheckerSession, error) {
	if err := input.Validate(); err != nil {
		return nil, invalid(err)
	}

	session := &models.SymptomCheckerSession{
		ID:               uuid.New().String(),
		SelectedSymptoms: datatypes.JSONSlice[string](utils.CleanSymptoms(input.SelectedSymptoms)),
		CustomSymptoms:   datatypes.JSONSlice[string](utils.CleanSymptoms(input.CustomSymptoms)),
		Location:         strings.TrimSpace(input.Location),
		AgeRange:         input.AgeRange,
		Gender:           input.Gender,
		Temperature:      input.Temperature,
		HeartRate:        input.HeartRate,
	}
	if user != nil {
		session.UserID = &user.ID
	}

	return s.analyze(ctx, session)
}

// Get returns a session. Patients may only read their own sessions; anonymous
// sessions are readable by anyone holding the session id.
func (s *SessionService) Get(ctx context.Context, user *models.CurrentUser, id string) (*models.SymptomCheckerSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccessSession(user, session) {
		return nil, ErrForbidden
	}
	return session, nil
}

// List returns the caller's sessions, or every session for clinical staff.
func (s *SessionService) List(ctx context.Context, user *models.CurrentUser) ([]models.SymptomCheckerSession, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	if user.IsClinician() {
		return s.sessions.List(ctx, "")
	}
	return s.sessions.List(ctx, user.ID)
}

// AddCustomSymptom appends a free-text symptom and re-analyzes the session.
func (s *SessionService) AddCustomSymptom(ctx context.Context, user *models.CurrentUser, id, symptom string) (*models.SymptomCheckerSession, error) {
	if err := utils.ValidateSymptom(symptom); err != nil {
		return nil, invalid(validation.Errors{"symptom": err})
	}

	session, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if len(session.AllSymptoms()) >= utils.MaxSymptoms {
		return nil, invalid(validation.Errors{"symptom": utils.ErrTooManySymptoms})
	}

	session.CustomSymptoms = append(session.CustomSymptoms, strings.TrimSpace(symptom))
	return s.analyze(ctx, session)
}

// Reanalyze scores the session again against the current disease profiles.
func (s *SessionService) Reanalyze(ctx context.Context, user *models.CurrentUser, id string) (*models.SymptomCheckerSession, error) {
	session, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, session)
}

// Analyses returns the analysis records of a session, highest score first.
func (s *SessionService) Analyses(ctx context.Context, user *models.CurrentUser, id string) ([]models.DiseaseAnalysis, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	return s.sessions.ListAnalyses(ctx, id)
}

// CreateDiagnosis promotes the session result into a self-reported diagnosis
// for patient. The session must have a primary suspected disease.
func (s *SessionService) CreateDiagnosis(ctx context.Context, patient *models.CurrentUser, id string) (*models.PatientDiagnosis, error) {
	if patient == nil {
		return nil, ErrForbidden
	}
	session, err := s.Get(ctx, patient, id)
	if err != nil {
		return nil, err
	}

	diagnosis := DiagnosisFromSession(session, patient.ID)
	if diagnosis == nil {
		return nil, invalid(ErrNoPrimaryDisease)
	}
	if err := s.diagnoses.Create(ctx, diagnosis); err != nil {
		return nil, err
	}
	diagnosis.Disease = session.PrimarySuspectedDisease
	return diagnosis, nil
}

// Statistics summarises sessions created in the last days days.
func (s *SessionService) Statistics(ctx context.Context, days int) (*models.SessionStatistics, error) {
	if days == 0 {
		days = DefaultStatisticsDays
	}
	if err := validation.Validate(days, validation.Min(1), validation.Max(MaxStatisticsDays)); err != nil {
		return nil, invalid(validation.Errors{"days": err})
	}

	since := s.now().AddDate(0, 0, -days)
	stats, err := s.sessions.Statistics(ctx, since)
	if err != nil {
		return nil, err
	}
	stats.Days = days
	return stats, nil
}

// DiagnosisFromSession builds the diagnosis a patient files from a session, or
// nil when the session has no primary suspected disease.
func DiagnosisFromSession(session *models.SymptomCheckerSession, patientID string) *models.PatientDiagnosis {
	if session.PrimarySuspectedDiseaseID == nil {
		return nil
	}

	sessionID := session.ID
	return &models.PatientDiagnosis{
		PatientID: patientID,
		DiseaseID: *session.PrimarySuspectedDiseaseID,
		SessionID: &sessionID,
		Status:    models.StatusSelfReported,
		Symptoms: datatypes.NewJSONType(models.SymptomSnapshot{
			Selected: append([]string{}, session.SelectedSymptoms...),
			Custom:   append([]string{}, session.CustomSymptoms...),
		}),
		Severity:    session.SeverityLevel,
		Temperature: session.Temperature,
		HeartRate:   session.HeartRate,
		TestResults: datatypes.JSONMap{},
	}
}

// analyze runs the analyzer and alerts when the session has just reached severe
// or critical. A run that leaves the severity where it was stays quiet.
func (s *SessionService) analyze(ctx context.Context, session *models.SymptomCheckerSession) (*models.SymptomCheckerSession, error) {
	previous := session.SeverityLevel
	analyzed, err := s.analyzer.Analyze(ctx, session)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", analyzed.ID).
		Int("risk_score", analyzed.OverallRiskScore).
		Str("severity", string(analyzed.SeverityLevel)).
		Msg("symptom session analyzed")

	if analyzed.SeverityLevel == previous {
		return analyzed, nil
	}
	switch analyzed.SeverityLevel {
	case models.SeveritySevere, models.SeverityCritical:
		s.notifiers.highSeverity(ctx, analyzed)
	}
	return analyzed, nil
}

func canAccessSession(user *models.CurrentUser, session *models.SymptomCheckerSession) bool {
	if session.UserID == nil {
		return true
	}
	if user == nil {
		return false
	}
	return user.IsClinician() || user.ID == *session.UserID
}
