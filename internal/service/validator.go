package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/glucoscholar-server/internal/domain"
)

// Validation error texts surfaced to the caller per field.
const (
	errAgeRange     = "Age must be 0-120 years"
	errAgeInvalid   = "Invalid age"
	errBMIRange     = "BMI must be 10-50"
	errBMIInvalid   = "Invalid BMI"
	errHbA1cRange   = "HbA1c must be 3-20%"
	errGlucoseRange = "Glucose must be 70-300 mg/dL"
	errNumbersOnly  = "Numbers only"
	errGenderSet    = "Enter: Male/Female"
	errBinarySet    = "Enter: 0 or 1"
)

// Validator checks raw prediction inputs against the model's domain
// constraints. Categorical checks for smoking history consult the encoder
// table so the accepted set always matches what the classifier was
// trained on.
type Validator struct {
	encoders domain.EncoderTable
}

// NewValidator creates a validator backed by the model's encoder table
func NewValidator(encoders domain.EncoderTable) *Validator {
	return &Validator{encoders: encoders}
}

// Validate checks all eight fields and returns the typed patient record
// together with a field-keyed error map. An empty map means the record is
// ready for classification. A case-insensitive smoking history match is
// canonicalized to the encoder's exact casing in the returned record.
func (v *Validator) Validate(input *domain.PredictionInput) (domain.PatientRecord, domain.ValidationResult) {
	record := domain.PatientRecord{}
	result := domain.ValidationResult{}

	if age, err := parseNumber(input.Age); err != nil {
		result[domain.FieldAge] = errAgeInvalid
	} else if age <= 0 || age > 120 {
		result[domain.FieldAge] = errAgeRange
	} else {
		record.Age = age
	}

	if bmi, err := parseNumber(input.BMI); err != nil {
		result[domain.FieldBMI] = errBMIInvalid
	} else if bmi < 10 || bmi > 50 {
		result[domain.FieldBMI] = errBMIRange
	} else {
		record.BMI = bmi
	}

	if hba1c, err := parseNumber(input.HbA1cLevel); err != nil {
		result[domain.FieldHbA1cLevel] = errNumbersOnly
	} else if hba1c < 3 || hba1c > 20 {
		result[domain.FieldHbA1cLevel] = errHbA1cRange
	} else {
		record.HbA1cLevel = hba1c
	}

	if glucose, err := parseNumber(input.BloodGlucoseLevel); err != nil {
		result[domain.FieldBloodGlucoseLevel] = errNumbersOnly
	} else if glucose < 70 || glucose > 300 {
		result[domain.FieldBloodGlucoseLevel] = errGlucoseRange
	} else {
		record.BloodGlucoseLevel = glucose
	}

	gender := strings.TrimSpace(input.Gender)
	if gender != "Male" && gender != "Female" {
		result[domain.FieldGender] = errGenderSet
	} else {
		record.Gender = gender
	}

	if flag, ok := parseBinary(input.Hypertension); !ok {
		result[domain.FieldHypertension] = errBinarySet
	} else {
		record.Hypertension = flag
	}

	if flag, ok := parseBinary(input.HeartDisease); !ok {
		result[domain.FieldHeartDisease] = errBinarySet
	} else {
		record.HeartDisease = flag
	}

	if canonical, ok := v.matchSmokingHistory(input.SmokingHistory); !ok {
		classes := v.encoders.SmokingHistoryClasses()
		result[domain.FieldSmokingHistory] = "Enter: " + strings.Join(classes, "/")
	} else {
		record.SmokingHistory = canonical
	}

	return record, result
}

// matchSmokingHistory resolves a raw smoking history value to the
// encoder's exact-cased class, matching case-insensitively.
func (v *Validator) matchSmokingHistory(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	for _, class := range v.encoders.SmokingHistoryClasses() {
		if strings.EqualFold(class, trimmed) {
			return class, true
		}
	}
	return "", false
}

// parseNumber parses a numeric field. ParseFloat accepts "NaN" and
// "Inf", which slip through every interval check, so non-finite values
// are rejected here before any range comparison sees them.
func parseNumber(value string) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("non-finite number %q", value)
	}
	return parsed, nil
}

func parseBinary(value string) (int, bool) {
	switch strings.TrimSpace(value) {
	case "0":
		return 0, true
	case "1":
		return 1, true
	}
	return 0, false
}
