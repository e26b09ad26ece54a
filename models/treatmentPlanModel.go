package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/datatypes"
)

// PlanStatus is the lifecycle state of a treatment plan.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
)

const (
	// DefaultPlanDuration is used for plans created on diagnosis confirmation.
	DefaultPlanDuration = "7 days"
	// CompletedDuration replaces the duration text once a plan is completed.
	CompletedDuration = "Completed"
)

// Medication is one prescribed drug on a plan.
type Medication struct {
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Frequency string    `json:"frequency"`
	AddedAt   time.Time `json:"added_at"`
}

func (m Medication) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.Dosage, validation.Required, validation.Length(1, 100)),
		validation.Field(&m.Frequency, validation.Required, validation.Length(1, 100)),
	)
}

// Procedure is one scheduled or performed procedure on a plan.
type Procedure struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	AddedAt       time.Time  `json:"added_at"`
}

func (p Procedure) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
	)
}

// TreatmentPlan is the single plan attached to a diagnosis.
type TreatmentPlan struct {
	ID                  uint                            `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DiagnosisID         uint                            `gorm:"column:diagnosis_id;not null;uniqueIndex" json:"diagnosis_id"`
	Medications         datatypes.JSONSlice[Medication] `gorm:"column:medications" json:"medications"`
	Procedures          datatypes.JSONSlice[Procedure]  `gorm:"column:procedures" json:"procedures"`
	Duration            string                          `gorm:"column:duration;size:100;not null" json:"duration"`
	Status              PlanStatus                      `gorm:"column:status;size:20;not null;default:active" json:"status"`
	FollowUpRequired    bool                            `gorm:"column:follow_up_required;not null;default:false" json:"follow_up_required"`
	FollowUpInterval    int                             `gorm:"column:follow_up_interval;not null" json:"follow_up_interval"`
	Instructions        string                          `gorm:"column:instructions;type:text" json:"instructions"`
	SupervisingDoctorID string                          `gorm:"column:supervising_doctor_id;size:64;not null;index" json:"supervising_doctor_id"`
	CreatedByID         string                          `gorm:"column:created_by_id;size:64;not null" json:"created_by_id"`
	CompletedAt         *time.Time                      `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt           time.Time                       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time                       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TreatmentPlan) TableName() string {
	return "treatment_plan"
}

// NewPlanForDiagnosis builds the default plan a confirming clinician starts with.
func NewPlanForDiagnosis(d *PatientDiagnosis, doctorID string) *TreatmentPlan {
	return &TreatmentPlan{
		DiagnosisID:         d.ID,
		Medications:         datatypes.JSONSlice[Medication]{},
		Procedures:          datatypes.JSONSlice[Procedure]{},
		Duration:            DefaultPlanDuration,
		Status:              PlanActive,
		FollowUpRequired:    d.NeedsFollowUp(),
		FollowUpInterval:    d.FollowUpIntervalDays(),
		SupervisingDoctorID: doctorID,
		CreatedByID:         doctorID,
	}
}

// AddMedication appends a medication stamped with now.
func (p *TreatmentPlan) AddMedication(name, dosage, frequency string, now time.Time) {
	p.Medications = append(p.Medications, Medication{
		Name:      name,
		Dosage:    dosage,
		Frequency: frequency,
		AddedAt:   now,
	})
}

// AddProcedure appends a procedure stamped with now.
func (p *TreatmentPlan) AddProcedure(name, description string, scheduledDate *time.Time, now time.Time) {
	p.Procedures = append(p.Procedures, Procedure{
		Name:          name,
		Description:   description,
		ScheduledDate: scheduledDate,
		AddedAt:       now,
	})
}

// MarkCompleted closes the plan. Duration is overwritten so clients that only read
// the duration text still see the plan as finished.
func (p *TreatmentPlan) MarkCompleted(now time.Time) {
	p.Status = PlanCompleted
	p.Duration = CompletedDuration
	p.CompletedAt = &now
}
