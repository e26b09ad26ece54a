package models

import (
	"time"

	"gorm.io/datatypes"
)

// DiagnosisStatus tracks a diagnosis from patient report to clinician decision.
type DiagnosisStatus string

const (
	StatusSelfReported    DiagnosisStatus = "self_reported"
	StatusDoctorConfirmed DiagnosisStatus = "doctor_confirmed"
	StatusDoctorRejected  DiagnosisStatus = "doctor_rejected"
	// StatusModified is accepted in filters but no operation sets it yet.
	StatusModified DiagnosisStatus = "modified"
)

// DiagnosisStatuses lists every status for validation.
var DiagnosisStatuses = []interface{}{StatusSelfReported, StatusDoctorConfirmed, StatusDoctorRejected, StatusModified}

// SymptomSnapshot freezes the symptoms a diagnosis was reported with.
type SymptomSnapshot struct {
	Selected []string `json:"selected"`
	Custom   []string `json:"custom"`
}

// PatientDiagnosis is a patient's reported condition awaiting or carrying a clinician decision.
type PatientDiagnosis struct {
	ID               uint                                `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PatientID        string                              `gorm:"column:patient_id;size:64;not null;index" json:"patient_id"`
	DiseaseID        uint                                `gorm:"column:disease_id;not null;index" json:"disease_id"`
	Disease          *Disease                            `gorm:"foreignKey:DiseaseID;constraint:OnDelete:RESTRICT;" json:"disease,omitempty"`
	SessionID        *string                             `gorm:"column:session_id;size:36;index" json:"session_id"`
	TreatingDoctorID *string                             `gorm:"column:treating_doctor_id;size:64;index" json:"treating_doctor_id"`
	Status           DiagnosisStatus                     `gorm:"column:status;size:20;not null;default:self_reported;index" json:"status"`
	Symptoms         datatypes.JSONType[SymptomSnapshot] `gorm:"column:symptoms" json:"symptoms"`
	DoctorNotes      string                              `gorm:"column:doctor_notes;type:text" json:"doctor_notes"`
	TestResults      datatypes.JSONMap                   `gorm:"column:test_results" json:"test_results"`
	Severity         Severity                            `gorm:"column:severity;size:20" json:"severity"`
	Temperature      *float64                            `gorm:"column:temperature" json:"temperature"`
	HeartRate        *int                                `gorm:"column:heart_rate" json:"heart_rate"`
	BloodPressure    string                              `gorm:"column:blood_pressure;size:20" json:"blood_pressure"`
	OxygenSaturation *int                                `gorm:"column:oxygen_saturation" json:"oxygen_saturation"`
	ConfirmedByID    *string                             `gorm:"column:confirmed_by_id;size:64" json:"confirmed_by_id"`
	ConfirmedAt      *time.Time                          `gorm:"column:confirmed_at" json:"confirmed_at"`
	TreatmentPlan    *TreatmentPlan                      `gorm:"foreignKey:DiagnosisID;constraint:OnDelete:CASCADE;" json:"treatment_plan,omitempty"`
	CreatedAt        time.Time                           `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time                           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PatientDiagnosis) TableName() string {
	return "patient_diagnosis"
}

// NeedsFollowUp reports whether a plan created for this diagnosis requires follow-up visits.
func (d *PatientDiagnosis) NeedsFollowUp() bool {
	switch d.Severity {
	case SeverityModerate, SeveritySevere, SeverityCritical:
		return true
	}
	return false
}

// FollowUpIntervalDays is the default follow-up cadence for a new plan.
func (d *PatientDiagnosis) FollowUpIntervalDays() int {
	switch d.Severity {
	case SeverityModerate, SeveritySevere:
		return 7
	}
	return 3
}

// DiagnosisFilter narrows a diagnosis listing. Empty fields match everything.
type DiagnosisFilter struct {
	PatientID        string
	TreatingDoctorID string
	Status           DiagnosisStatus
}
