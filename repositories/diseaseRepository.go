package repositories

import (
	"IDMS/cache"
	"IDMS/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DiseaseCacheExpiry = 24 * time.Hour
	diseasesCacheKey   = "diseases_cache"
)

// DiseaseRepository stores disease profiles. GetAll returns them in id order,
// which is the order the analyzer evaluates them in.
type DiseaseRepository interface {
	Create(ctx context.Context, disease *models.Disease) error
	GetByID(ctx context.Context, id uint) (*models.Disease, error)
	GetByName(ctx context.Context, name string) (*models.Disease, error)
	GetAll(ctx context.Context) ([]models.Disease, error)
	Update(ctx context.Context, disease *models.Disease) error
	Upsert(ctx context.Context, disease *models.Disease) error
	Delete(ctx context.Context, id uint) error
}

type diseaseRepository struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewDiseaseRepository(db *gorm.DB, cache cache.Cache) DiseaseRepository {
	return &diseaseRepository{db: db, cache: cache}
}

func (r *diseaseRepository) Create(ctx context.Context, disease *models.Disease) error {
	if err := r.db.WithContext(ctx).Create(disease).Error; err != nil {
		return translate(err, "failed to create disease")
	}
	invalidate(ctx, r.cache, diseasesCacheKey)
	return nil
}

func (r *diseaseRepository) GetByID(ctx context.Context, id uint) (*models.Disease, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var disease models.Disease
	if getCached(ctx, r.cache, diseaseCacheKey(id), &disease) {
		return &disease, nil
	}

	if err := r.db.WithContext(ctx).First(&disease, id).Error; err != nil {
		return nil, translate(err, "failed to get disease")
	}
	setCached(ctx, r.cache, diseaseCacheKey(id), disease, DiseaseCacheExpiry)
	return &disease, nil
}

func (r *diseaseRepository) GetByName(ctx context.Context, name string) (*models.Disease, error) {
	var disease models.Disease
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&disease).Error; err != nil {
		return nil, translate(err, "failed to get disease by name")
	}
	return &disease, nil
}

func (r *diseaseRepository) GetAll(ctx context.Context) ([]models.Disease, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var diseases []models.Disease
	if getCached(ctx, r.cache, diseasesCacheKey, &diseases) {
		return diseases, nil
	}

	if err := r.db.WithContext(ctx).Order("id ASC").Find(&diseases).Error; err != nil {
		return nil, translate(err, "failed to list diseases")
	}
	setCached(ctx, r.cache, diseasesCacheKey, diseases, DiseaseCacheExpiry)
	return diseases, nil
}

func (r *diseaseRepository) Update(ctx context.Context, disease *models.Disease) error {
	result := r.db.WithContext(ctx).Model(disease).Select("*").Omit("id", "created_at").Updates(disease)
	if result.Error != nil {
		return translate(result.Error, "failed to update disease")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	invalidate(ctx, r.cache, diseasesCacheKey, diseaseCacheKey(disease.ID))
	return nil
}

// Upsert inserts the profile or overwrites the stored one with the same name.
func (r *diseaseRepository) Upsert(ctx context.Context, disease *models.Disease) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(disease).Error
	if err != nil {
		return translate(err, "failed to upsert disease")
	}

	// The returned id is not reliable across drivers when the row already existed.
	stored, err := r.GetByName(ctx, disease.Name)
	if err != nil {
		return err
	}
	*disease = *stored
	invalidate(ctx, r.cache, diseasesCacheKey, diseaseCacheKey(disease.ID))
	return nil
}

// Delete refuses to remove a disease any diagnosis still points at. Analyses are
// removed and sessions lose their primary suspicion.
func (r *diseaseRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var references int64
		if err := tx.Model(&models.PatientDiagnosis{}).Where("disease_id = ?", id).Count(&references).Error; err != nil {
			return err
		}
		if references > 0 {
			return fmt.Errorf("disease %d is used by %d diagnoses: %w", id, references, ErrProtected)
		}

		if err := tx.Where("disease_id = ?", id).Delete(&models.DiseaseAnalysis{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.SymptomCheckerSession{}).
			Where("primary_suspected_disease_id = ?", id).
			Update("primary_suspected_disease_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Disease{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProtected) || errors.Is(err, ErrNotFound) {
			return err
		}
		return translate(err, "failed to delete disease")
	}
	invalidate(ctx, r.cache, diseasesCacheKey, diseaseCacheKey(id))
	return nil
}
