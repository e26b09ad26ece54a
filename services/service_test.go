package services

import (
	"IDMS/cache"
	"IDMS/database"
	"IDMS/metrics"
	"IDMS/models"
	"IDMS/repositories"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	patient      = &models.CurrentUser{ID: "patient-1", Email: "patient@example.com", Role: models.RolePatient}
	otherPatient = &models.CurrentUser{ID: "patient-2", Email: "other@example.com", Role: models.RolePatient}
	doctor       = &models.CurrentUser{ID: "doctor-1", Email: "doctor@example.com", Role: models.RoleDoctor}
	nurse        = &models.CurrentUser{ID: "nurse-1", Email: "nurse@example.com", Role: models.RoleNurse}
)

type fixture struct {
	db        *gorm.DB
	diseases  repositories.DiseaseRepository
	sessions  repositories.SessionRepository
	diagnoses repositories.DiagnosisRepository
	plans     *repositories.TreatmentPlanRepository
	metrics   *metrics.Metrics
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	store := cache.NewMemoryCache(time.Minute)
	return &fixture{
		db:        db,
		diseases:  repositories.NewDiseaseRepository(db, store),
		sessions:  repositories.NewSessionRepository(db),
		diagnoses: repositories.NewDiagnosisRepository(db, store),
		plans:     repositories.NewTreatmentPlanRepository(db, store),
		metrics:   metrics.New(),
		notifier:  &recordingNotifier{},
	}
}

func fixedClock() time.Time {
	return testNow
}

func (f *fixture) analyzer() *SymptomAnalyzer {
	return NewSymptomAnalyzer(f.diseases, f.sessions, f.metrics).WithClock(fixedClock)
}

func (f *fixture) sessionService() *SessionService {
	s := NewSessionService(f.sessions, f.diagnoses, f.analyzer(), f.notifier)
	s.now = fixedClock
	return s
}

func (f *fixture) diagnosisService() *DiagnosisService {
	return NewDiagnosisService(f.diagnoses, f.plans, f.diseases, f.metrics, f.notifier).WithClock(fixedClock)
}

func (f *fixture) treatmentPlanService() *TreatmentPlanService {
	return NewTreatmentPlanService(f.plans, f.diagnoses, f.metrics).WithClock(fixedClock)
}

func (f *fixture) addDisease(t *testing.T, name string, weights models.SymptomWeights) *models.Disease {
	t.Helper()
	d := &models.Disease{
		Name:               name,
		DiseaseType:        models.DiseaseTypeOther,
		CommonSymptoms:     datatypes.JSONSlice[string]{},
		CommonTreatments:   datatypes.JSONSlice[string]{},
		SymptomWeights:     datatypes.NewJSONType(weights),
		MildThreshold:      15,
		ModerateThreshold:  35,
		SevereThreshold:    60,
		EmergencyThreshold: 80,
	}
	require.NoError(t, f.diseases.Create(context.Background(), d))
	return d
}

func (f *fixture) addSession(t *testing.T, owner *models.CurrentUser, symptoms ...string) *models.SymptomCheckerSession {
	t.Helper()
	session := &models.SymptomCheckerSession{
		ID:               fmt.Sprintf("session-%d", time.Now().UnixNano()),
		SelectedSymptoms: datatypes.JSONSlice[string](symptoms),
		CustomSymptoms:   datatypes.JSONSlice[string]{},
	}
	if owner != nil {
		session.UserID = &owner.ID
	}
	require.NoError(t, f.sessions.Create(context.Background(), session))
	return session
}

func (f *fixture) addDiagnosis(t *testing.T, diseaseID uint, severity models.Severity) *models.PatientDiagnosis {
	t.Helper()
	diagnosis := &models.PatientDiagnosis{
		PatientID:   patient.ID,
		DiseaseID:   diseaseID,
		Status:      models.StatusSelfReported,
		Severity:    severity,
		TestResults: datatypes.JSONMap{},
	}
	require.NoError(t, f.diagnoses.Create(context.Background(), diagnosis))
	return diagnosis
}

func (f *fixture) planCount(t *testing.T, diagnosisID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.TreatmentPlan{}).Where("diagnosis_id = ?", diagnosisID).Count(&count).Error)
	return count
}

// recordingNotifier captures notifications instead of delivering them.
type recordingNotifier struct {
	mu        sync.Mutex
	sessions  []string
	decisions []models.DiagnosisStatus
	fail      bool
}

func (n *recordingNotifier) NotifyHighSeverity(_ context.Context, session *models.SymptomCheckerSession) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sessions = append(n.sessions, session.ID)
	if n.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (n *recordingNotifier) NotifyDiagnosisDecision(_ context.Context, diagnosis *models.PatientDiagnosis) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, diagnosis.Status)
	if n.fail {
		return errors.New("broker unavailable")
	}
	return nil
}

func assertInvalid(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	return validationErr
}
