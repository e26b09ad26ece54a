package services

import (
	"IDMS/models"
	"IDMS/repositories"
	"IDMS/utils"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_CreateAnalyzesImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	malaria := f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10, "seizures": 20})

	session, err := f.sessionService().Create(ctx, patient, SessionInput{
		SelectedSymptoms: []string{" fever ", "seizures"},
		AgeRange:         "26-35",
		Gender:           "F",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	require.NotNil(t, session.UserID)
	assert.Equal(t, patient.ID, *session.UserID)
	assert.Equal(t, []string{"fever", "seizures"}, []string(session.SelectedSymptoms))
	assert.Equal(t, 30, session.OverallRiskScore)
	require.NotNil(t, session.PrimarySuspectedDisease)
	assert.Equal(t, malaria.Name, session.PrimarySuspectedDisease.Name)
}

func TestSessionService_CreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	svc := f.sessionService()
	temperature := 150.0

	tests := []struct {
		name  string
		input SessionInput
	}{
		{"no symptoms", SessionInput{}},
		{"blank symptom", SessionInput{SelectedSymptoms: []string{"fever", "  "}}},
		{"unknown age range", SessionInput{SelectedSymptoms: []string{"fever"}, AgeRange: "100+"}},
		{"unknown gender", SessionInput{SelectedSymptoms: []string{"fever"}, Gender: "X"}},
		{"temperature out of range", SessionInput{SelectedSymptoms: []string{"fever"}, Temperature: &temperature}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), nil, tt.input)
			assertInvalid(t, err)
		})
	}

	t.Run("too many symptoms", func(t *testing.T) {
		symptoms := make([]string, utils.MaxSymptoms+1)
		for i := range symptoms {
			symptoms[i] = fmt.Sprintf("symptom_%d", i)
		}
		_, err := svc.Create(context.Background(), nil, SessionInput{SelectedSymptoms: symptoms})
		verr := assertInvalid(t, err)
		assert.ErrorIs(t, verr.Err, utils.ErrTooManySymptoms)
	})
}

func TestSessionService_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.sessionService()
	f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10})

	anonymous, err := svc.Create(ctx, nil, SessionInput{SelectedSymptoms: []string{"fever"}})
	require.NoError(t, err)
	owned, err := svc.Create(ctx, patient, SessionInput{SelectedSymptoms: []string{"fever"}})
	require.NoError(t, err)

	_, err = svc.Get(ctx, nil, anonymous.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, otherPatient, anonymous.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, patient, owned.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, doctor, owned.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, otherPatient, owned.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(ctx, nil, owned.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, patient, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	mine, err := svc.List(ctx, patient)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(ctx, nurse)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(ctx, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSessionService_AddCustomSymptomReanalyzes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.sessionService()
	f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10, "seizures": 20})

	session, err := svc.Create(ctx, patient, SessionInput{SelectedSymptoms: []string{"fever"}})
	require.NoError(t, err)
	assert.Equal(t, 10, session.OverallRiskScore)

	session, err = svc.AddCustomSymptom(ctx, patient, session.ID, "Seizures")
	require.NoError(t, err)
	assert.Equal(t, []string{"Seizures"}, []string(session.CustomSymptoms))
	assert.Equal(t, 30, session.OverallRiskScore)

	_, err = svc.AddCustomSymptom(ctx, patient, session.ID, "   ")
	assertInvalid(t, err)

	_, err = svc.AddCustomSymptom(ctx, otherPatient, session.ID, "cough")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSessionService_AddCustomSymptomRespectsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.sessionService()

	symptoms := make([]string, utils.MaxSymptoms)
	for i := range symptoms {
		symptoms[i] = fmt.Sprintf("symptom_%d", i)
	}
	session, err := svc.Create(ctx, nil, SessionInput{SelectedSymptoms: symptoms})
	require.NoError(t, err)

	_, err = svc.AddCustomSymptom(ctx, nil, session.ID, "one_more")
	verr := assertInvalid(t, err)
	assert.Contains(t, verr.Error(), utils.ErrTooManySymptoms.Error())
}

func TestSessionService_ReanalyzePicksUpProfileChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.sessionService()
	f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10})

	session, err := svc.Create(ctx, nil, SessionInput{SelectedSymptoms: []string{"cough"}})
	require.NoError(t, err)
	assert.Equal(t, 1, session.OverallRiskScore)

	pneumonia := f.addDisease(t, "Pneumonia", models.SymptomWeights{"cough": 25})
	session, err = svc.Reanalyze(ctx, nil, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, session.OverallRiskScore)
	require.NotNil(t, session.PrimarySuspectedDiseaseID)
	assert.Equal(t, pneumonia.ID, *session.PrimarySuspectedDiseaseID)

	analyses, err := svc.Analyses(ctx, nil, session.ID)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, pneumonia.ID, analyses[0].DiseaseID)
}

func TestSessionService_NotifiesOnHighSeverity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notifier.fail = true
	svc := f.sessionService()
	f.addDisease(t, "Malaria", models.SymptomWeights{"seizures": 30, "loss_of_consciousness": 30, "confusion": 25})

	mild, err := svc.Create(ctx, nil, SessionInput{SelectedSymptoms: []string{"headache"}})
	require.NoError(t, err)
	critical, err := svc.Create(ctx, nil, SessionInput{SelectedSymptoms: []string{"seizures", "loss_of_consciousness", "confusion"}})
	require.NoError(t, err, "notification failures must not fail the request")

	assert.Equal(t, models.SeverityCritical, critical.SeverityLevel)
	assert.Equal(t, []string{critical.ID}, f.notifier.sessions)
	assert.NotContains(t, f.notifier.sessions, mild.ID)
}

func TestSessionService_CreateDiagnosisFromSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.sessionService()
	malaria := f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10, "seizures": 20})
	temperature := 101.5

	session, err := svc.Create(ctx, patient, SessionInput{
		SelectedSymptoms: []string{"fever", "seizures"},
		CustomSymptoms:   []string{"night sweats"},
		Temperature:      &temperature,
	})
	require.NoError(t, err)

	diagnosis, err := svc.CreateDiagnosis(ctx, patient, session.ID)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, diagnosis.PatientID)
	assert.Equal(t, malaria.ID, diagnosis.DiseaseID)
	assert.Equal(t, models.StatusSelfReported, diagnosis.Status)
	assert.Equal(t, session.SeverityLevel, diagnosis.Severity)
	require.NotNil(t, diagnosis.SessionID)
	assert.Equal(t, session.ID, *diagnosis.SessionID)
	assert.Equal(t, []string{"fever", "seizures"}, diagnosis.Symptoms.Data().Selected)
	assert.Equal(t, []string{"night sweats"}, diagnosis.Symptoms.Data().Custom)
	require.NotNil(t, diagnosis.Temperature)
	assert.Equal(t, temperature, *diagnosis.Temperature)

	_, err = svc.CreateDiagnosis(ctx, otherPatient, session.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSessionService_CreateDiagnosisNeedsPrimaryDisease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.sessionService()

	session, err := svc.Create(ctx, patient, SessionInput{SelectedSymptoms: []string{"fever"}})
	require.NoError(t, err)

	_, err = svc.CreateDiagnosis(ctx, patient, session.ID)
	verr := assertInvalid(t, err)
	assert.ErrorIs(t, verr.Err, ErrNoPrimaryDisease)
}

func TestSessionService_Statistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.sessionService()
	f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10})

	_, err := svc.Create(ctx, nil, SessionInput{SelectedSymptoms: []string{"fever"}})
	require.NoError(t, err)

	// Sessions are stamped with the wall clock, so widen the window past the fixed test clock.
	stats, err := svc.Statistics(ctx, MaxStatisticsDays)
	require.NoError(t, err)
	assert.Equal(t, MaxStatisticsDays, stats.Days)
	assert.Equal(t, int64(1), stats.TotalSessions)

	_, err = svc.Statistics(ctx, MaxStatisticsDays+1)
	assertInvalid(t, err)
	_, err = svc.Statistics(ctx, -1)
	assertInvalid(t, err)
}

func TestSessionService_AddCustomSymptomPersistsWithoutDiseases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.sessionService()

	session, err := svc.Create(ctx, nil, SessionInput{SelectedSymptoms: []string{"fever"}})
	require.NoError(t, err)

	_, err = svc.AddCustomSymptom(ctx, nil, session.ID, "seizures")
	require.NoError(t, err)

	stored, err := f.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"seizures"}, []string(stored.CustomSymptoms))

	f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10, "seizures": 20})
	session, err = svc.Reanalyze(ctx, nil, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, session.OverallRiskScore)
}

func TestSessionService_NotifiesOnlyWhenSeverityChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.sessionService()
	f.addDisease(t, "Malaria", models.SymptomWeights{"seizures": 30, "loss_of_consciousness": 30, "confusion": 25})

	session, err := svc.Create(ctx, nil, SessionInput{SelectedSymptoms: []string{"seizures", "loss_of_consciousness", "confusion"}})
	require.NoError(t, err)
	require.Equal(t, models.SeverityCritical, session.SeverityLevel)
	require.Len(t, f.notifier.sessions, 1)

	session, err = svc.AddCustomSymptom(ctx, nil, session.ID, "headache")
	require.NoError(t, err)
	assert.Equal(t, models.SeverityCritical, session.SeverityLevel)

	_, err = svc.Reanalyze(ctx, nil, session.ID)
	require.NoError(t, err)
	assert.Len(t, f.notifier.sessions, 1)
}

// brokenDiseases fails every listing so the analyzer cannot score.
type brokenDiseases struct {
	repositories.DiseaseRepository
}

func (brokenDiseases) GetAll(context.Context) ([]models.Disease, error) {
	return nil, errors.New("connection reset")
}

func TestSessionService_CreateLeavesNothingWhenAnalysisFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	analyzer := NewSymptomAnalyzer(brokenDiseases{f.diseases}, f.sessions, f.metrics).WithClock(fixedClock)
	svc := NewSessionService(f.sessions, f.diagnoses, analyzer, f.notifier)

	_, err := svc.Create(ctx, nil, SessionInput{SelectedSymptoms: []string{"fever"}})
	require.Error(t, err)

	stored, err := f.sessions.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, stored)
}
