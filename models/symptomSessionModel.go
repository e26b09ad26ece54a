package models

import (
	"time"

	"gorm.io/datatypes"
)

// AgeRanges are the accepted age brackets for a symptom check.
var AgeRanges = []interface{}{"0-12", "13-17", "18-25", "26-35", "36-50", "51-65", "65+"}

// Genders are the accepted gender codes: male, female, other, undisclosed.
var Genders = []interface{}{"M", "F", "O", "U"}

// SymptomCheckerSession is one symptom check by a patient or an anonymous visitor.
type SymptomCheckerSession struct {
	ID                        string                      `gorm:"primaryKey;column:session_id;size:36" json:"session_id"`
	UserID                    *string                     `gorm:"column:user_id;size:64;index" json:"user_id"`
	SelectedSymptoms          datatypes.JSONSlice[string] `gorm:"column:selected_symptoms" json:"selected_symptoms"`
	CustomSymptoms            datatypes.JSONSlice[string] `gorm:"column:custom_symptoms" json:"custom_symptoms"`
	Location                  string                      `gorm:"column:location;size:255" json:"location"`
	AgeRange                  string                      `gorm:"column:age_range;size:20" json:"age_range"`
	Gender                    string                      `gorm:"column:gender;size:1" json:"gender"`
	Temperature               *float64                    `gorm:"column:temperature" json:"temperature"`
	HeartRate                 *int                        `gorm:"column:heart_rate" json:"heart_rate"`
	OverallRiskScore          int                         `gorm:"column:overall_risk_score;not null;default:0" json:"overall_risk_score"`
	PrimarySuspectedDiseaseID *uint                       `gorm:"column:primary_suspected_disease_id;index" json:"primary_suspected_disease_id"`
	PrimarySuspectedDisease   *Disease                    `gorm:"foreignKey:PrimarySuspectedDiseaseID;constraint:OnDelete:SET NULL;" json:"primary_suspected_disease,omitempty"`
	SeverityLevel             Severity                    `gorm:"column:severity_level;size:20" json:"severity_level"`
	Recommendation            string                      `gorm:"column:recommendation;type:text" json:"recommendation"`
	NeedsFollowup             bool                        `gorm:"column:needs_followup;not null;default:false" json:"needs_followup"`
	FollowupDate              *time.Time                  `gorm:"column:followup_date" json:"followup_date"`
	CreatedAt                 time.Time                   `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt                 time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Analyses                  []DiseaseAnalysis           `gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Diagnoses                 []PatientDiagnosis          `gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:SET NULL;" json:"-"`
}

func (SymptomCheckerSession) TableName() string {
	return "symptom_checker_session"
}

// AllSymptoms returns the selected symptoms followed by the custom ones.
// Duplicates across the two lists are kept.
func (s *SymptomCheckerSession) AllSymptoms() []string {
	all := make([]string, 0, len(s.SelectedSymptoms)+len(s.CustomSymptoms))
	all = append(all, s.SelectedSymptoms...)
	return append(all, s.CustomSymptoms...)
}

// DiseaseAnalysis is the score of one disease for one session.
type DiseaseAnalysis struct {
	ID                    uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	SessionID             string    `gorm:"column:session_id;size:36;not null;uniqueIndex:idx_analysis_session_disease" json:"session_id"`
	DiseaseID             uint      `gorm:"column:disease_id;not null;uniqueIndex:idx_analysis_session_disease" json:"disease_id"`
	Disease               *Disease  `gorm:"foreignKey:DiseaseID;constraint:OnDelete:CASCADE;" json:"disease,omitempty"`
	CalculatedScore       int       `gorm:"column:calculated_score;not null" json:"calculated_score"`
	ProbabilityPercentage int       `gorm:"column:probability_percentage;not null" json:"probability_percentage"`
	SeverityAssessment    Severity  `gorm:"column:severity_assessment;size:20;not null" json:"severity_assessment"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (DiseaseAnalysis) TableName() string {
	return "disease_analysis"
}

// LabelCount is one row of a grouped count.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// SessionStatistics summarises symptom checks over a time window.
type SessionStatistics struct {
	Days          int          `json:"days"`
	TotalSessions int64        `json:"total_sessions"`
	BySeverity    []LabelCount `json:"by_severity"`
	ByDisease     []LabelCount `json:"by_disease"`
}
