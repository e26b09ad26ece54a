package services

import (
	"IDMS/models"
	"IDMS/repositories"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreatmentPlanService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.treatmentPlanService()
	malaria := f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10})
	diagnosis := f.addDiagnosis(t, malaria.ID, models.SeverityModerate)

	input := TreatmentPlanInput{DiagnosisID: diagnosis.ID, Duration: "14 days", FollowUpRequired: true, FollowUpInterval: 5}

	_, err := svc.Create(ctx, patient, input)
	assert.ErrorIs(t, err, ErrForbidden)

	plan, err := svc.Create(ctx, doctor, input)
	require.NoError(t, err)
	assert.Equal(t, "14 days", plan.Duration)
	assert.Equal(t, models.PlanActive, plan.Status)
	assert.Equal(t, doctor.ID, plan.SupervisingDoctorID)
	assert.Equal(t, doctor.ID, plan.CreatedByID)

	_, err = svc.Create(ctx, doctor, input)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	// Confirming afterwards attaches the existing plan instead of adding one.
	confirmed, err := f.diagnosisService().Confirm(ctx, doctor, diagnosis.ID, DecisionInput{})
	require.NoError(t, err)
	assert.Equal(t, plan.ID, confirmed.TreatmentPlan.ID)
	assert.Equal(t, int64(1), f.planCount(t, diagnosis.ID))
}

func TestTreatmentPlanService_CreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.treatmentPlanService()
	malaria := f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10})
	diagnosis := f.addDiagnosis(t, malaria.ID, models.SeverityModerate)

	tests := []struct {
		name  string
		input TreatmentPlanInput
	}{
		{"missing diagnosis", TreatmentPlanInput{Duration: "7 days"}},
		{"unknown diagnosis", TreatmentPlanInput{DiagnosisID: diagnosis.ID + 100, Duration: "7 days"}},
		{"missing duration", TreatmentPlanInput{DiagnosisID: diagnosis.ID}},
		{"follow-up without interval", TreatmentPlanInput{DiagnosisID: diagnosis.ID, Duration: "7 days", FollowUpRequired: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, doctor, tt.input)
			assertInvalid(t, err)
		})
	}
}

func TestTreatmentPlanService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.treatmentPlanService()
	malaria := f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10})
	diagnosis := f.addDiagnosis(t, malaria.ID, models.SeveritySevere)

	confirmed, err := f.diagnosisService().Confirm(ctx, doctor, diagnosis.ID, DecisionInput{})
	require.NoError(t, err)
	planID := confirmed.TreatmentPlan.ID

	plan, err := svc.AddMedication(ctx, doctor, planID, MedicationInput{Name: "Artemether-lumefantrine", Dosage: "4 tablets", Frequency: "twice daily"})
	require.NoError(t, err)
	require.Len(t, plan.Medications, 1)
	assert.Equal(t, testNow, plan.Medications[0].AddedAt)

	_, err = svc.AddMedication(ctx, doctor, planID, MedicationInput{Name: "Paracetamol"})
	assertInvalid(t, err)

	scheduled := testNow.Add(48 * time.Hour)
	plan, err = svc.AddProcedure(ctx, nurse, planID, ProcedureInput{Name: "Repeat blood smear", ScheduledDate: &scheduled})
	require.NoError(t, err)
	require.Len(t, plan.Procedures, 1)
	require.NotNil(t, plan.Procedures[0].ScheduledDate)
	assert.True(t, scheduled.Equal(*plan.Procedures[0].ScheduledDate))

	plan, err = svc.Update(ctx, doctor, planID, TreatmentPlanInput{Duration: "10 days", Instructions: "Finish the full course"})
	require.NoError(t, err)
	assert.Equal(t, "10 days", plan.Duration)
	assert.Equal(t, "Finish the full course", plan.Instructions)
	assert.Len(t, plan.Medications, 1)

	plan, err = svc.MarkCompleted(ctx, doctor, planID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanCompleted, plan.Status)
	assert.Equal(t, models.CompletedDuration, plan.Duration)
	require.NotNil(t, plan.CompletedAt)
	assert.Equal(t, testNow, *plan.CompletedAt)

	_, err = svc.Update(ctx, doctor, planID, TreatmentPlanInput{Duration: "3 days"})
	verr := assertInvalid(t, err)
	assert.ErrorIs(t, verr.Err, ErrPlanCompleted)

	stored, err := svc.Get(ctx, patient, planID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanCompleted, stored.Status)
	assert.Len(t, stored.Procedures, 1)
}

func TestTreatmentPlanService_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.treatmentPlanService()
	malaria := f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10})
	diagnosis := f.addDiagnosis(t, malaria.ID, models.SeverityMild)

	confirmed, err := f.diagnosisService().Confirm(ctx, doctor, diagnosis.ID, DecisionInput{})
	require.NoError(t, err)
	planID := confirmed.TreatmentPlan.ID

	_, err = svc.Get(ctx, otherPatient, planID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(ctx, nil, planID)
	assert.ErrorIs(t, err, ErrForbidden)

	plans, err := svc.List(ctx, patient, diagnosis.ID)
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	_, err = svc.List(ctx, patient, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	plans, err = svc.List(ctx, doctor, 0)
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	_, err = svc.AddMedication(ctx, patient, planID, MedicationInput{Name: "x", Dosage: "y", Frequency: "z"})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, patient, planID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, doctor, planID))
	_, err = svc.Get(ctx, doctor, planID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
