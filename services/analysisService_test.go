package services

import (
	"IDMS/models"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_NoDiseasesLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.addSession(t, nil, "fever", "cough")

	analyzed, err := f.analyzer().Analyze(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 0, analyzed.OverallRiskScore)
	assert.Nil(t, analyzed.PrimarySuspectedDiseaseID)

	stored, err := f.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.OverallRiskScore)
	assert.Nil(t, stored.PrimarySuspectedDiseaseID)
	assert.Empty(t, stored.SeverityLevel)

	analyses, err := f.sessions.ListAnalyses(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, analyses)
}

func TestAnalyze_ScenarioA(t *testing.T) {
	f := newFixture(t)
	malaria := f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10, "seizures": 20})
	session := f.addSession(t, nil, "fever", "seizures")

	analyzed, err := f.analyzer().Analyze(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, 30, analyzed.OverallRiskScore)
	require.NotNil(t, analyzed.PrimarySuspectedDiseaseID)
	assert.Equal(t, malaria.ID, *analyzed.PrimarySuspectedDiseaseID)
	assert.Equal(t, models.SeverityMild, analyzed.SeverityLevel)
	assert.Equal(t, models.RecommendationFor(models.SeverityMild), analyzed.Recommendation)
	assert.False(t, analyzed.NeedsFollowup)
}

func TestAnalyze_ScenarioBCountsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10, "seizures": 20})
	session := f.addSession(t, nil, "fever", "seizures", "seizures")

	analyzed, err := f.analyzer().Analyze(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 50, analyzed.OverallRiskScore)
	assert.Equal(t, models.SeverityModerate, analyzed.SeverityLevel)

	analyses, err := f.sessions.ListAnalyses(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, 60, analyses[0].ProbabilityPercentage)
	assert.Equal(t, models.SeverityModerate, analyses[0].SeverityAssessment)
}

func TestAnalyze_ScenarioCSchedulesUrgentFollowup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 15, "seizures": 20, "loss_of_consciousness": 25, "confusion": 25})
	session := f.addSession(t, nil, "fever", "seizures", "loss_of_consciousness", "confusion")

	analyzed, err := f.analyzer().Analyze(ctx, session)
	require.NoError(t, err)

	assert.Equal(t, 85, analyzed.OverallRiskScore)
	assert.Equal(t, models.SeverityCritical, analyzed.SeverityLevel)
	assert.True(t, analyzed.NeedsFollowup)
	require.NotNil(t, analyzed.FollowupDate)
	assert.Equal(t, testNow.Add(2*time.Hour), *analyzed.FollowupDate)

	analyses, err := f.sessions.ListAnalyses(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, 90, analyses[0].ProbabilityPercentage)
}

func TestAnalyze_SevereFollowupAfterOneDay(t *testing.T) {
	f := newFixture(t)
	f.addDisease(t, "Pneumonia", models.SymptomWeights{"difficulty_breathing": 40, "cough": 25})
	session := f.addSession(t, nil, "difficulty_breathing", "cough")

	analyzed, err := f.analyzer().Analyze(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, models.SeveritySevere, analyzed.SeverityLevel)
	assert.True(t, analyzed.NeedsFollowup)
	require.NotNil(t, analyzed.FollowupDate)
	assert.Equal(t, testNow.Add(24*time.Hour), *analyzed.FollowupDate)
}

func TestAnalyze_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10})
	f.addDisease(t, "Pneumonia", models.SymptomWeights{"cough": 12})
	session := f.addSession(t, nil, "fever", "cough")
	analyzer := f.analyzer()

	first, err := analyzer.Analyze(ctx, session)
	require.NoError(t, err)
	firstScore, firstPrimary, firstSeverity := first.OverallRiskScore, *first.PrimarySuspectedDiseaseID, first.SeverityLevel

	second, err := analyzer.Analyze(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, firstScore, second.OverallRiskScore)
	assert.Equal(t, firstPrimary, *second.PrimarySuspectedDiseaseID)
	assert.Equal(t, firstSeverity, second.SeverityLevel)

	analyses, err := f.sessions.ListAnalyses(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, analyses, 2)
}

func TestAnalyze_TieKeepsFirstEvaluatedDisease(t *testing.T) {
	f := newFixture(t)
	first := f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10})
	f.addDisease(t, "Pneumonia", models.SymptomWeights{"fever": 10})
	session := f.addSession(t, nil, "fever")

	analyzed, err := f.analyzer().Analyze(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, analyzed.PrimarySuspectedDiseaseID)
	assert.Equal(t, first.ID, *analyzed.PrimarySuspectedDiseaseID)
}

func TestAnalyze_StrictlyHigherLaterDiseaseWins(t *testing.T) {
	f := newFixture(t)
	f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 10})
	later := f.addDisease(t, "Pneumonia", models.SymptomWeights{"fever": 11})
	session := f.addSession(t, nil, "fever")

	analyzed, err := f.analyzer().Analyze(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, analyzed.PrimarySuspectedDiseaseID)
	assert.Equal(t, later.ID, *analyzed.PrimarySuspectedDiseaseID)
	assert.Equal(t, 11, analyzed.OverallRiskScore)
}

func TestAnalyze_NoPositiveScoreKeepsPreviousAssessment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDisease(t, "Malaria", models.SymptomWeights{"fever": 0})
	session := f.addSession(t, nil, "fever")
	session.SeverityLevel = models.SeveritySevere
	session.Recommendation = "previous advice"
	require.NoError(t, f.sessions.Update(ctx, session))

	analyzed, err := f.analyzer().Analyze(ctx, session)
	require.NoError(t, err)

	assert.Equal(t, 0, analyzed.OverallRiskScore)
	assert.Nil(t, analyzed.PrimarySuspectedDiseaseID)
	assert.Equal(t, models.SeveritySevere, analyzed.SeverityLevel)
	assert.Equal(t, "previous advice", analyzed.Recommendation)
}

func TestAnalyze_FollowupIsNeverCleared(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDisease(t, "Malaria", models.SymptomWeights{"seizures": 85, "fever": 1})
	session := f.addSession(t, nil, "seizures")
	analyzer := f.analyzer()

	_, err := analyzer.Analyze(ctx, session)
	require.NoError(t, err)
	require.True(t, session.NeedsFollowup)

	session.SelectedSymptoms = []string{"fever"}
	analyzed, err := analyzer.Analyze(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, models.SeverityMild, analyzed.SeverityLevel)
	assert.True(t, analyzed.NeedsFollowup)
	assert.NotNil(t, analyzed.FollowupDate)
}
