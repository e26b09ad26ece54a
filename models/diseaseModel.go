package models

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/datatypes"
)

// Severity is the four-tier classification shared by analyses, sessions and diagnoses.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// Severities lists every tier from lowest to highest.
var Severities = []interface{}{SeverityMild, SeverityModerate, SeveritySevere, SeverityCritical}

const (
	DiseaseTypeMalaria   = "malaria"
	DiseaseTypePneumonia = "pneumonia"
	DiseaseTypeOther     = "other"
)

// DefaultSymptomWeight is applied to symptoms a disease has no weight for.
const DefaultSymptomWeight = 1

// FallbackRecommendation is returned when a severity has no canned advice.
const FallbackRecommendation = "Please consult a healthcare provider."

var recommendations = map[Severity]string{
	SeverityMild:     "Monitor your symptoms, rest and stay hydrated. Consult a healthcare provider if symptoms persist or worsen.",
	SeverityModerate: "Schedule an appointment with a healthcare provider within 24-48 hours for proper evaluation.",
	SeveritySevere:   "Seek medical attention today. Visit a clinic or healthcare facility as soon as possible.",
	SeverityCritical: "Seek emergency medical care immediately. Go to the nearest emergency room or call an ambulance.",
}

// SymptomWeights maps a lowercase symptom key to its contribution to a disease score.
type SymptomWeights map[string]int

// Disease is a weighted symptom profile for one disease.
type Disease struct {
	ID                 uint                               `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name               string                             `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	DiseaseType        string                             `gorm:"column:disease_type;size:20;not null;default:other" json:"disease_type"`
	ICDCode            string                             `gorm:"column:icd_code;size:10" json:"icd_code"`
	Description        string                             `gorm:"column:description;type:text" json:"description"`
	IsContagious       bool                               `gorm:"column:is_contagious;not null;default:false" json:"is_contagious"`
	CommonSymptoms     datatypes.JSONSlice[string]        `gorm:"column:common_symptoms" json:"common_symptoms"`
	CommonTreatments   datatypes.JSONSlice[string]        `gorm:"column:common_treatments" json:"common_treatments"`
	SymptomWeights     datatypes.JSONType[SymptomWeights] `gorm:"column:symptom_weights" json:"symptom_weights"`
	MildThreshold      int                                `gorm:"column:mild_threshold;not null;default:20" json:"mild_threshold"`
	ModerateThreshold  int                                `gorm:"column:moderate_threshold;not null;default:40" json:"moderate_threshold"`
	SevereThreshold    int                                `gorm:"column:severe_threshold;not null;default:70" json:"severe_threshold"`
	EmergencyThreshold int                                `gorm:"column:emergency_threshold;not null;default:80" json:"emergency_threshold"`
	CreatedAt          time.Time                          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time                          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Disease) TableName() string {
	return "disease"
}

// Score sums the weight of every symptom, case-insensitively. Repeated symptoms count
// once per occurrence and unknown symptoms contribute DefaultSymptomWeight.
func (d *Disease) Score(symptoms []string) int {
	weights := d.SymptomWeights.Data()
	score := 0
	for _, symptom := range symptoms {
		weight, ok := weights[strings.ToLower(symptom)]
		if !ok {
			weight = DefaultSymptomWeight
		}
		score += weight
	}
	return score
}

// Severity maps a score onto the disease thresholds, highest tier first.
func (d *Disease) Severity(score int) Severity {
	switch {
	case score >= d.EmergencyThreshold:
		return SeverityCritical
	case score >= d.SevereThreshold:
		return SeveritySevere
	case score >= d.ModerateThreshold:
		return SeverityModerate
	default:
		return SeverityMild
	}
}

// Recommend returns the patient-facing advice for a score.
func (d *Disease) Recommend(score int) string {
	return RecommendationFor(d.Severity(score))
}

// Probability is a coarse likelihood bucket, not a calibrated probability.
func (d *Disease) Probability(score int) int {
	switch {
	case score >= d.EmergencyThreshold:
		return 90
	case score >= d.SevereThreshold:
		return 75
	case score >= d.ModerateThreshold:
		return 60
	case score >= d.MildThreshold:
		return 40
	default:
		return 20
	}
}

// RecommendationFor returns the canned advice for a severity.
func RecommendationFor(severity Severity) string {
	if text, ok := recommendations[severity]; ok {
		return text
	}
	return FallbackRecommendation
}

// Validate checks the profile before it is stored. Thresholds must not decrease
// from mild to emergency.
func (d Disease) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&d.DiseaseType, validation.In(DiseaseTypeMalaria, DiseaseTypePneumonia, DiseaseTypeOther)),
		validation.Field(&d.ICDCode, validation.Length(0, 10)),
		validation.Field(&d.MildThreshold, validation.By(notBelow(0, "zero"))),
		validation.Field(&d.ModerateThreshold, validation.By(notBelow(d.MildThreshold, "mild_threshold"))),
		validation.Field(&d.SevereThreshold, validation.By(notBelow(d.ModerateThreshold, "moderate_threshold"))),
		validation.Field(&d.EmergencyThreshold, validation.By(notBelow(d.SevereThreshold, "severe_threshold"))),
		validation.Field(&d.SymptomWeights, validation.By(nonNegativeWeights)),
	)
}

func notBelow(floor int, name string) validation.RuleFunc {
	return func(value interface{}) error {
		if v, _ := value.(int); v < floor {
			return errors.New("must not be less than " + name)
		}
		return nil
	}
}

func nonNegativeWeights(value interface{}) error {
	weights, _ := value.(datatypes.JSONType[SymptomWeights])
	for symptom, weight := range weights.Data() {
		if weight < 0 {
			return errors.New("weight for " + symptom + " must not be negative")
		}
	}
	return nil
}

// NormalizeWeights lowercases every key so lookups in Score are case-insensitive
// on both sides.
func NormalizeWeights(weights SymptomWeights) SymptomWeights {
	out := make(SymptomWeights, len(weights))
	for symptom, weight := range weights {
		out[strings.ToLower(strings.TrimSpace(symptom))] = weight
	}
	return out
}

// EmergencySymptoms are symptoms that warrant urgent care regardless of score.
var EmergencySymptoms = []string{
	"difficulty_breathing",
	"chest_pain",
	"severe_chest_pain",
	"confusion",
	"seizures",
	"loss_of_consciousness",
	"blue_lips_or_fingernails",
	"severe_abdominal_pain",
	"high_fever",
	"severe_headache",
	"stroke_symptoms",
}

// DetectEmergencySymptoms returns the reported symptoms that are emergency signs,
// in the order they were reported, without repeats.
func DetectEmergencySymptoms(symptoms []string) []string {
	emergency := make(map[string]bool, len(EmergencySymptoms))
	for _, s := range EmergencySymptoms {
		emergency[s] = true
	}

	found := []string{}
	seen := map[string]bool{}
	for _, s := range symptoms {
		key := strings.ToLower(strings.TrimSpace(s))
		if emergency[key] && !seen[key] {
			seen[key] = true
			found = append(found, key)
		}
	}
	return found
}
