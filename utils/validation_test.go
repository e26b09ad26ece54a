package utils

import (
	"fmt"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
)

func TestValidateSymptoms(t *testing.T) {
	tooMany := make([]string, MaxSymptoms+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("s%d", i)
	}

	assert.ErrorIs(t, ValidateSymptoms(nil, nil), ErrNoSymptoms)
	assert.ErrorIs(t, ValidateSymptoms(tooMany, nil), ErrTooManySymptoms)
	assert.ErrorIs(t, ValidateSymptoms(tooMany[:10], tooMany[10:]), ErrTooManySymptoms)
	assert.NoError(t, ValidateSymptoms(tooMany[:MaxSymptoms], nil))
	assert.NoError(t, ValidateSymptoms([]string{"fever"}, []string{"night sweats"}))

	err := ValidateSymptoms([]string{"fever"}, []string{" "})
	if assert.Error(t, err) {
		errs, ok := err.(validation.Errors)
		if assert.True(t, ok) {
			assert.Contains(t, errs, "custom_symptoms")
		}
	}

	assert.ErrorIs(t, ValidateSymptom(strings.Repeat("a", 101)), ErrSymptomTooLong)
}

func TestVitalRules(t *testing.T) {
	low, normal := 80.0, 98.6
	assert.Error(t, validation.Validate(&low, TemperatureRules...))
	assert.NoError(t, validation.Validate(&normal, TemperatureRules...))

	var missing *float64
	assert.NoError(t, validation.Validate(missing, TemperatureRules...))

	assert.Error(t, validation.Validate(250, HeartRateRules...))
	assert.Error(t, validation.Validate(101, OxygenSaturationRules...))
}

func TestCleanSymptoms(t *testing.T) {
	assert.Equal(t, []string{"fever", "night sweats"}, CleanSymptoms([]string{" fever", "night sweats "}))
	assert.Equal(t, []string{}, CleanSymptoms(nil))
}

func TestValidateEmails(t *testing.T) {
	assert.NoError(t, ValidateEmails([]string{"oncall@example.com"}))
	assert.Error(t, ValidateEmails([]string{"oncall"}))
	assert.Error(t, ValidateEmails(nil))
}
