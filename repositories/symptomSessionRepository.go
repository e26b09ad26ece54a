package repositories

import (
	"IDMS/models"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository stores symptom checker sessions and their analysis records.
type SessionRepository interface {
	Create(ctx context.Context, session *models.SymptomCheckerSession) error
	GetByID(ctx context.Context, id string) (*models.SymptomCheckerSession, error)
	List(ctx context.Context, userID string) ([]models.SymptomCheckerSession, error)
	Update(ctx context.Context, session *models.SymptomCheckerSession) error
	SaveAnalysis(ctx context.Context, session *models.SymptomCheckerSession, analyses []models.DiseaseAnalysis) error
	ListAnalyses(ctx context.Context, sessionID string) ([]models.DiseaseAnalysis, error)
	Statistics(ctx context.Context, since time.Time) (*models.SessionStatistics, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.SymptomCheckerSession) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error; err != nil {
		return translate(err, "failed to create symptom session")
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*models.SymptomCheckerSession, error) {
	var session models.SymptomCheckerSession
	err := r.db.WithContext(ctx).
		Preload("PrimarySuspectedDisease").
		First(&session, "session_id = ?", id).Error
	if err != nil {
		return nil, translate(err, "failed to get symptom session")
	}
	return &session, nil
}

// List returns the sessions of one user, or every session when userID is empty.
func (r *sessionRepository) List(ctx context.Context, userID string) ([]models.SymptomCheckerSession, error) {
	query := r.db.WithContext(ctx).Preload("PrimarySuspectedDisease").Order("created_at DESC")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var sessions []models.SymptomCheckerSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, translate(err, "failed to list symptom sessions")
	}
	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.SymptomCheckerSession) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(session).Error; err != nil {
		return translate(err, "failed to update symptom session")
	}
	return nil
}

// SaveAnalysis writes the session outputs and upserts one record per
// (session, disease) in a single transaction. Concurrent calls for the same
// session are not serialized; the last commit wins.
func (r *sessionRepository) SaveAnalysis(ctx context.Context, session *models.SymptomCheckerSession, analyses []models.DiseaseAnalysis) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(session).Error; err != nil {
			return err
		}
		if len(analyses) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "disease_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"calculated_score", "probability_percentage", "severity_assessment",
			}),
		}).Omit(clause.Associations).Create(&analyses).Error
	})
	return translate(err, "failed to save analysis")
}

// ListAnalyses returns the records of a session, highest score first.
func (r *sessionRepository) ListAnalyses(ctx context.Context, sessionID string) ([]models.DiseaseAnalysis, error) {
	var analyses []models.DiseaseAnalysis
	err := r.db.WithContext(ctx).
		Preload("Disease").
		Where("session_id = ?", sessionID).
		Order("calculated_score DESC").
		Order("disease_id ASC").
		Find(&analyses).Error
	if err != nil {
		return nil, translate(err, "failed to list analyses")
	}
	return analyses, nil
}

func (r *sessionRepository) Statistics(ctx context.Context, since time.Time) (*models.SessionStatistics, error) {
	stats := &models.SessionStatistics{BySeverity: []models.LabelCount{}, ByDisease: []models.LabelCount{}}
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.SymptomCheckerSession{}).
			Where("symptom_checker_session.created_at >= ?", since)
	}

	if err := base().Count(&stats.TotalSessions).Error; err != nil {
		return nil, translate(err, "failed to count sessions")
	}

	err := base().
		Select("symptom_checker_session.severity_level AS label, COUNT(*) AS count").
		Where("symptom_checker_session.severity_level <> ''").
		Group("symptom_checker_session.severity_level").
		Order("count DESC").
		Scan(&stats.BySeverity).Error
	if err != nil {
		return nil, translate(err, "failed to group sessions by severity")
	}

	err = base().
		Select("disease.name AS label, COUNT(*) AS count").
		Joins("JOIN disease ON disease.id = symptom_checker_session.primary_suspected_disease_id").
		Group("disease.name").
		Order("count DESC").
		Scan(&stats.ByDisease).Error
	if err != nil {
		return nil, translate(err, "failed to group sessions by disease")
	}
	return stats, nil
}
