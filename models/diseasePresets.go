package models

import "gorm.io/datatypes"

// MalariaDisease returns the built-in malaria profile.
func MalariaDisease() Disease {
	return Disease{
		Name:         "Malaria",
		DiseaseType:  DiseaseTypeMalaria,
		ICDCode:      "B54",
		Description:  "Mosquito-borne infectious disease caused by Plasmodium parasites.",
		IsContagious: false,
		CommonSymptoms: datatypes.JSONSlice[string]{
			"fever", "chills", "sweating", "headache", "nausea", "vomiting", "muscle_aches",
			"fatigue", "abdominal_pain", "diarrhea", "pale_skin", "confusion", "seizures",
			"loss_of_consciousness",
		},
		CommonTreatments: datatypes.JSONSlice[string]{
			"Artemisinin-based combination therapy (ACT)",
			"Chloroquine where parasites remain sensitive",
			"Oral rehydration and antipyretics",
			"Intravenous artesunate for severe malaria",
		},
		SymptomWeights: datatypes.NewJSONType(SymptomWeights{
			"fever":                 15,
			"chills":                12,
			"sweating":              8,
			"headache":              7,
			"nausea":                5,
			"vomiting":              7,
			"muscle_aches":          5,
			"fatigue":               4,
			"abdominal_pain":        5,
			"diarrhea":              4,
			"pale_skin":             8,
			"confusion":             18,
			"seizures":              20,
			"loss_of_consciousness": 25,
		}),
		MildThreshold:      15,
		ModerateThreshold:  35,
		SevereThreshold:    60,
		EmergencyThreshold: 80,
	}
}

// PneumoniaDisease returns the built-in pneumonia profile.
func PneumoniaDisease() Disease {
	return Disease{
		Name:         "Pneumonia",
		DiseaseType:  DiseaseTypePneumonia,
		ICDCode:      "J18.9",
		Description:  "Infection that inflames the air sacs in one or both lungs.",
		IsContagious: true,
		CommonSymptoms: datatypes.JSONSlice[string]{
			"cough", "fever", "chills", "shortness_of_breath", "difficulty_breathing",
			"chest_pain", "rapid_breathing", "fatigue", "sweating", "loss_of_appetite",
			"muscle_aches", "confusion", "blue_lips_or_fingernails",
		},
		CommonTreatments: datatypes.JSONSlice[string]{
			"Antibiotics for bacterial pneumonia",
			"Antipyretics and fluids",
			"Oxygen therapy when saturation is low",
			"Hospital admission for severe cases",
		},
		SymptomWeights: datatypes.NewJSONType(SymptomWeights{
			"cough":                    12,
			"fever":                    10,
			"chills":                   6,
			"shortness_of_breath":      15,
			"difficulty_breathing":     18,
			"chest_pain":               12,
			"rapid_breathing":          15,
			"fatigue":                  4,
			"sweating":                 4,
			"loss_of_appetite":         3,
			"muscle_aches":             3,
			"confusion":                15,
			"blue_lips_or_fingernails": 25,
		}),
		MildThreshold:      15,
		ModerateThreshold:  30,
		SevereThreshold:    55,
		EmergencyThreshold: 75,
	}
}

// DefaultDiseases returns the profiles installed by the initialize action.
func DefaultDiseases() []Disease {
	return []Disease{MalariaDisease(), PneumoniaDisease()}
}
