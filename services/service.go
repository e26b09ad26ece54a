package services

import (
	"IDMS/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidInput wraps every rejected-input error, including validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when the caller may not act on the record.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries field-level validation details alongside ErrInvalidInput.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidInput, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}

// Notifier receives clinically significant events. Delivery is best effort.
type Notifier interface {
	NotifyHighSeverity(ctx context.Context, session *models.SymptomCheckerSession) error
	NotifyDiagnosisDecision(ctx context.Context, diagnosis *models.PatientDiagnosis) error
}

type notifiers []Notifier

func (n notifiers) highSeverity(ctx context.Context, session *models.SymptomCheckerSession) {
	for _, notifier := range n {
		if err := notifier.NotifyHighSeverity(ctx, session); err != nil {
			log.Error().Err(err).Str("session_id", session.ID).Msg("high severity notification failed")
		}
	}
}

func (n notifiers) diagnosisDecision(ctx context.Context, diagnosis *models.PatientDiagnosis) {
	for _, notifier := range n {
		if err := notifier.NotifyDiagnosisDecision(ctx, diagnosis); err != nil {
			log.Error().Err(err).Uint("diagnosis_id", diagnosis.ID).Msg("diagnosis notification failed")
		}
	}
}

// Clock returns the current time. Tests replace it to pin timestamps.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
