package repositories

import (
	"IDMS/cache"
	"IDMS/models"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DiagnosisRepository stores patient diagnoses.
type DiagnosisRepository interface {
	Create(ctx context.Context, diagnosis *models.PatientDiagnosis) error
	GetByID(ctx context.Context, id uint) (*models.PatientDiagnosis, error)
	List(ctx context.Context, filter models.DiagnosisFilter) ([]models.PatientDiagnosis, error)
	Update(ctx context.Context, diagnosis *models.PatientDiagnosis) error
	// SaveConfirmation stores the diagnosis and, in the same transaction, creates
	// plan unless the diagnosis already has one. It returns the plan now attached.
	SaveConfirmation(ctx context.Context, diagnosis *models.PatientDiagnosis, plan *models.TreatmentPlan) (*models.TreatmentPlan, error)
}

type diagnosisRepository struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewDiagnosisRepository(db *gorm.DB, cache cache.Cache) DiagnosisRepository {
	return &diagnosisRepository{db: db, cache: cache}
}

func (r *diagnosisRepository) Create(ctx context.Context, diagnosis *models.PatientDiagnosis) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(diagnosis).Error; err != nil {
		return translate(err, "failed to create diagnosis")
	}
	return nil
}

func (r *diagnosisRepository) GetByID(ctx context.Context, id uint) (*models.PatientDiagnosis, error) {
	var diagnosis models.PatientDiagnosis
	err := r.db.WithContext(ctx).
		Preload("Disease").
		Preload("TreatmentPlan").
		First(&diagnosis, id).Error
	if err != nil {
		return nil, translate(err, "failed to get diagnosis")
	}
	return &diagnosis, nil
}

func (r *diagnosisRepository) List(ctx context.Context, filter models.DiagnosisFilter) ([]models.PatientDiagnosis, error) {
	query := r.db.WithContext(ctx).Preload("Disease").Order("created_at DESC").Order("id DESC")
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.TreatingDoctorID != "" {
		query = query.Where("treating_doctor_id = ?", filter.TreatingDoctorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var diagnoses []models.PatientDiagnosis
	if err := query.Find(&diagnoses).Error; err != nil {
		return nil, translate(err, "failed to list diagnoses")
	}
	return diagnoses, nil
}

func (r *diagnosisRepository) Update(ctx context.Context, diagnosis *models.PatientDiagnosis) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(diagnosis).Error; err != nil {
		return translate(err, "failed to update diagnosis")
	}
	return nil
}

func (r *diagnosisRepository) SaveConfirmation(ctx context.Context, diagnosis *models.PatientDiagnosis, plan *models.TreatmentPlan) (*models.TreatmentPlan, error) {
	var attached models.TreatmentPlan
	created := false

	err := withLock(ctx, r.cache, diagnosisPlanLockKey(diagnosis.ID), func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Save(diagnosis).Error; err != nil {
				return err
			}

			err := tx.Where("diagnosis_id = ?", diagnosis.ID).First(&attached).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if err := tx.Create(plan).Error; err != nil {
				return err
			}
			attached = *plan
			created = true
			return nil
		})
	})
	if err != nil {
		return nil, translate(err, "failed to save confirmation")
	}

	if created {
		invalidate(ctx, r.cache, treatmentPlansCacheKey)
	}
	return &attached, nil
}
