package utils

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// MaxSymptoms caps the symptoms a single check may carry.
const MaxSymptoms = 20

// Validation errors
var (
	ErrNoSymptoms      = errors.New("at least one symptom is required")
	ErrTooManySymptoms = errors.New("no more than 20 symptoms can be reported")
	ErrBlankSymptom    = errors.New("symptoms cannot be blank")
	ErrSymptomTooLong  = errors.New("symptoms must be at most 100 characters")
)

// Vital sign ranges accepted on intake. Temperature is in Fahrenheit.
var (
	TemperatureRules      = []validation.Rule{validation.Min(90.0), validation.Max(110.0)}
	HeartRateRules        = []validation.Rule{validation.Min(30), validation.Max(220)}
	OxygenSaturationRules = []validation.Rule{validation.Min(0), validation.Max(100)}
)

// ValidateSymptom checks a single symptom key or free-text symptom.
func ValidateSymptom(symptom string) error {
	symptom = strings.TrimSpace(symptom)
	if symptom == "" {
		return ErrBlankSymptom
	}
	if len(symptom) > 100 {
		return ErrSymptomTooLong
	}
	return nil
}

// ValidateSymptoms checks the combined selected and custom lists of one check.
func ValidateSymptoms(selected, custom []string) error {
	total := len(selected) + len(custom)
	switch {
	case total == 0:
		return ErrNoSymptoms
	case total > MaxSymptoms:
		return ErrTooManySymptoms
	}

	errs := validation.Errors{}
	for _, s := range selected {
		if err := ValidateSymptom(s); err != nil {
			errs["selected_symptoms"] = err
			break
		}
	}
	for _, s := range custom {
		if err := ValidateSymptom(s); err != nil {
			errs["custom_symptoms"] = err
			break
		}
	}
	return errs.Filter()
}

// CleanSymptoms trims whitespace around every entry.
func CleanSymptoms(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

// ValidateEmails checks a list of notification recipients.
func ValidateEmails(addresses []string) error {
	return validation.Validate(addresses, validation.Required, validation.Each(validation.Required, is.Email))
}
