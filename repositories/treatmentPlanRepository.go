package repositories

import (
	"IDMS/cache"
	"IDMS/models"
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	TreatmentPlanCacheExpiry = 7 * 24 * time.Hour
	treatmentPlansCacheKey   = "treatment_plans_cache"
)

// TreatmentPlanRepository stores treatment plans. At most one plan exists per diagnosis.
type TreatmentPlanRepository struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewTreatmentPlanRepository(db *gorm.DB, cache cache.Cache) *TreatmentPlanRepository {
	return &TreatmentPlanRepository{db: db, cache: cache}
}

// Create inserts a plan. A second plan for the same diagnosis fails with ErrDuplicate.
func (r *TreatmentPlanRepository) Create(ctx context.Context, plan *models.TreatmentPlan) error {
	err := withLock(ctx, r.cache, diagnosisPlanLockKey(plan.DiagnosisID), func() error {
		return r.db.WithContext(ctx).Create(plan).Error
	})
	if err != nil {
		return translate(err, "failed to create treatment plan")
	}
	invalidate(ctx, r.cache, treatmentPlansCacheKey)
	return nil
}

func (r *TreatmentPlanRepository) GetByID(ctx context.Context, id uint) (*models.TreatmentPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var plan models.TreatmentPlan
	if getCached(ctx, r.cache, treatmentPlanCacheKey(id), &plan) {
		return &plan, nil
	}

	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, translate(err, "failed to get treatment plan")
	}
	setCached(ctx, r.cache, treatmentPlanCacheKey(id), plan, TreatmentPlanCacheExpiry)
	return &plan, nil
}

func (r *TreatmentPlanRepository) GetByDiagnosisID(ctx context.Context, diagnosisID uint) (*models.TreatmentPlan, error) {
	var plan models.TreatmentPlan
	if err := r.db.WithContext(ctx).Where("diagnosis_id = ?", diagnosisID).First(&plan).Error; err != nil {
		return nil, translate(err, "failed to get treatment plan for diagnosis")
	}
	return &plan, nil
}

// GetAll lists every plan, newest first. Only the unfiltered listing is cached.
func (r *TreatmentPlanRepository) GetAll(ctx context.Context) ([]models.TreatmentPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var plans []models.TreatmentPlan
	if getCached(ctx, r.cache, treatmentPlansCacheKey, &plans) {
		return plans, nil
	}

	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&plans).Error; err != nil {
		return nil, translate(err, "failed to list treatment plans")
	}
	setCached(ctx, r.cache, treatmentPlansCacheKey, plans, TreatmentPlanCacheExpiry)
	return plans, nil
}

// Modify loads the plan under its lock, applies fn and saves the result, so
// concurrent appends to the medication and procedure lists are not lost.
func (r *TreatmentPlanRepository) Modify(ctx context.Context, id uint, fn func(plan *models.TreatmentPlan) error) (*models.TreatmentPlan, error) {
	var plan models.TreatmentPlan
	err := withLock(ctx, r.cache, fmt.Sprintf("treatment_plan_lock:%d", id), func() error {
		if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
			return err
		}
		if err := fn(&plan); err != nil {
			return err
		}
		return r.db.WithContext(ctx).Save(&plan).Error
	})
	if err != nil {
		return nil, translate(err, "failed to update treatment plan")
	}
	invalidate(ctx, r.cache, treatmentPlanCacheKey(id), treatmentPlansCacheKey)
	return &plan, nil
}

func (r *TreatmentPlanRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.TreatmentPlan{}, id)
	if result.Error != nil {
		return translate(result.Error, "failed to delete treatment plan")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	invalidate(ctx, r.cache, treatmentPlanCacheKey(id), treatmentPlansCacheKey)
	return nil
}
