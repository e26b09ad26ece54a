package services

import (
	"IDMS/metrics"
	"IDMS/models"
	"IDMS/repositories"
	"context"
	"fmt"
	"time"
)

const (
	criticalFollowupDelay = 2 * time.Hour
	severeFollowupDelay   = 24 * time.Hour
)

// SymptomAnalyzer scores a session against every stored disease profile.
type SymptomAnalyzer struct {
	diseases repositories.DiseaseRepository
	sessions repositories.SessionRepository
	metrics  *metrics.Metrics
	now      Clock
}

func NewSymptomAnalyzer(diseases repositories.DiseaseRepository, sessions repositories.SessionRepository, m *metrics.Metrics) *SymptomAnalyzer {
	return &SymptomAnalyzer{diseases: diseases, sessions: sessions, metrics: m, now: systemClock}
}

// WithClock replaces the time source used for follow-up dates and record timestamps.
func (a *SymptomAnalyzer) WithClock(clock Clock) *SymptomAnalyzer {
	a.now = clock
	return a
}

// Analyze scores the combined symptoms of session against every disease, stores
// one record per disease and updates the session outputs, all in one transaction.
//
// The highest score wins; on a tie the disease evaluated first keeps the lead.
// When nothing scores above zero the severity, recommendation and follow-up
// fields keep their previous values. Follow-up is only ever set, never cleared.
// With no diseases stored the outputs are left untouched and only the session
// itself is saved. A session that does not exist yet is inserted in the same
// transaction as its records.
func (a *SymptomAnalyzer) Analyze(ctx context.Context, session *models.SymptomCheckerSession) (*models.SymptomCheckerSession, error) {
	start := time.Now()

	diseases, err := a.diseases.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load diseases: %w", err)
	}
	if len(diseases) == 0 {
		if err := a.sessions.SaveAnalysis(ctx, session, nil); err != nil {
			return nil, err
		}
		return session, nil
	}

	now := a.now()
	symptoms := session.AllSymptoms()
	analyses := make([]models.DiseaseAnalysis, 0, len(diseases))

	var primary *models.Disease
	maxScore := 0
	for i := range diseases {
		disease := &diseases[i]
		score := disease.Score(symptoms)

		analyses = append(analyses, models.DiseaseAnalysis{
			SessionID:             session.ID,
			DiseaseID:             disease.ID,
			CalculatedScore:       score,
			ProbabilityPercentage: disease.Probability(score),
			SeverityAssessment:    disease.Severity(score),
			CreatedAt:             now,
		})

		if score > maxScore {
			maxScore = score
			primary = disease
		}
	}

	session.OverallRiskScore = maxScore
	session.PrimarySuspectedDisease = primary
	session.PrimarySuspectedDiseaseID = nil
	if primary != nil {
		session.PrimarySuspectedDiseaseID = &primary.ID
		applyPrimary(session, primary, maxScore, now)
	}

	if err := a.sessions.SaveAnalysis(ctx, session, analyses); err != nil {
		return nil, err
	}

	a.metrics.ObserveAnalysis(string(session.SeverityLevel), time.Since(start))
	return session, nil
}

func applyPrimary(session *models.SymptomCheckerSession, primary *models.Disease, score int, now time.Time) {
	session.SeverityLevel = primary.Severity(score)
	session.Recommendation = primary.Recommend(score)

	switch session.SeverityLevel {
	case models.SeverityCritical:
		followup := now.Add(criticalFollowupDelay)
		session.NeedsFollowup = true
		session.FollowupDate = &followup
	case models.SeveritySevere:
		followup := now.Add(severeFollowupDelay)
		session.NeedsFollowup = true
		session.FollowupDate = &followup
	}
}
