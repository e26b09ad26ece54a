package services

import (
	"IDMS/models"
	"IDMS/repositories"
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// DiseaseInput is the writable part of a disease profile.
type DiseaseInput struct {
	Name               string                `json:"name"`
	DiseaseType        string                `json:"disease_type"`
	ICDCode            string                `json:"icd_code"`
	Description        string                `json:"description"`
	IsContagious       bool                  `json:"is_contagious"`
	CommonSymptoms     []string              `json:"common_symptoms"`
	CommonTreatments   []string              `json:"common_treatments"`
	SymptomWeights     models.SymptomWeights `json:"symptom_weights"`
	MildThreshold      *int                  `json:"mild_threshold"`
	ModerateThreshold  *int                  `json:"moderate_threshold"`
	SevereThreshold    *int                  `json:"severe_threshold"`
	EmergencyThreshold *int                  `json:"emergency_threshold"`
}

// apply copies the input onto d. Omitted thresholds keep the value already on d.
func (in DiseaseInput) apply(d *models.Disease) {
	d.Name = in.Name
	d.DiseaseType = in.DiseaseType
	if d.DiseaseType == "" {
		d.DiseaseType = models.DiseaseTypeOther
	}
	d.ICDCode = in.ICDCode
	d.Description = in.Description
	d.IsContagious = in.IsContagious
	d.CommonSymptoms = datatypes.JSONSlice[string](nonNil(in.CommonSymptoms))
	d.CommonTreatments = datatypes.JSONSlice[string](nonNil(in.CommonTreatments))
	d.SymptomWeights = datatypes.NewJSONType(models.NormalizeWeights(in.SymptomWeights))
	setIfPresent(&d.MildThreshold, in.MildThreshold)
	setIfPresent(&d.ModerateThreshold, in.ModerateThreshold)
	setIfPresent(&d.SevereThreshold, in.SevereThreshold)
	setIfPresent(&d.EmergencyThreshold, in.EmergencyThreshold)
}

// Evaluation is the result of scoring a symptom list against one disease.
type Evaluation struct {
	DiseaseID      uint            `json:"disease_id"`
	DiseaseName    string          `json:"disease_name"`
	Score          int             `json:"score"`
	Severity       models.Severity `json:"severity"`
	Probability    int             `json:"probability_percentage"`
	Recommendation string          `json:"recommendation"`
}

// DiseaseService manages the disease catalogue.
type DiseaseService struct {
	repository repositories.DiseaseRepository
}

func NewDiseaseService(repository repositories.DiseaseRepository) *DiseaseService {
	return &DiseaseService{repository: repository}
}

func (s *DiseaseService) Create(ctx context.Context, input DiseaseInput) (*models.Disease, error) {
	disease := newDiseaseWithDefaults()
	input.apply(disease)
	if err := disease.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.repository.Create(ctx, disease); err != nil {
		return nil, err
	}
	return disease, nil
}

func (s *DiseaseService) GetByID(ctx context.Context, id uint) (*models.Disease, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *DiseaseService) GetAll(ctx context.Context) ([]models.Disease, error) {
	return s.repository.GetAll(ctx)
}

func (s *DiseaseService) Update(ctx context.Context, id uint, input DiseaseInput) (*models.Disease, error) {
	disease, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(disease)
	if err := disease.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.repository.Update(ctx, disease); err != nil {
		return nil, err
	}
	return disease, nil
}

// Delete fails with repositories.ErrProtected while any diagnosis references the disease.
func (s *DiseaseService) Delete(ctx context.Context, id uint) error {
	return s.repository.Delete(ctx, id)
}

// InitializeDefaults installs or refreshes the built-in malaria and pneumonia profiles.
func (s *DiseaseService) InitializeDefaults(ctx context.Context) ([]models.Disease, error) {
	presets := models.DefaultDiseases()
	for i := range presets {
		if err := presets[i].Validate(); err != nil {
			return nil, invalid(err)
		}
		if err := s.repository.Upsert(ctx, &presets[i]); err != nil {
			return nil, err
		}
		log.Info().Str("disease", presets[i].Name).Uint("id", presets[i].ID).Msg("disease profile initialized")
	}
	return presets, nil
}

// Evaluate scores symptoms against a single disease without storing anything.
func (s *DiseaseService) Evaluate(ctx context.Context, id uint, symptoms []string) (*Evaluation, error) {
	disease, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	score := disease.Score(symptoms)
	return &Evaluation{
		DiseaseID:      disease.ID,
		DiseaseName:    disease.Name,
		Score:          score,
		Severity:       disease.Severity(score),
		Probability:    disease.Probability(score),
		Recommendation: disease.Recommend(score),
	}, nil
}

func newDiseaseWithDefaults() *models.Disease {
	return &models.Disease{
		DiseaseType:        models.DiseaseTypeOther,
		MildThreshold:      20,
		ModerateThreshold:  40,
		SevereThreshold:    70,
		EmergencyThreshold: 80,
	}
}

func setIfPresent(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
