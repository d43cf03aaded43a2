package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucoscholar-server/internal/domain"
	"github.com/glucoscholar-server/internal/model"
)

func testEncoders(t *testing.T) domain.EncoderTable {
	t.Helper()
	encoders, err := model.NewEncoders(model.DefaultArtifact())
	require.NoError(t, err)
	return encoders
}

// validInput returns an input that passes every check.
func validInput() *domain.PredictionInput {
	return &domain.PredictionInput{
		Gender:            "Female",
		Age:               "45",
		Hypertension:      "0",
		HeartDisease:      "0",
		SmokingHistory:    "Never",
		BMI:               "22",
		HbA1cLevel:        "5.5",
		BloodGlucoseLevel: "90",
	}
}

func TestValidator_ValidInput(t *testing.T) {
	validator := NewValidator(testEncoders(t))

	record, result := validator.Validate(validInput())

	assert.True(t, result.Valid())
	assert.Equal(t, "Female", record.Gender)
	assert.Equal(t, 45.0, record.Age)
	assert.Equal(t, "Never", record.SmokingHistory)
}

func TestValidator_NumericRanges(t *testing.T) {
	validator := NewValidator(testEncoders(t))

	tests := []struct {
		name    string
		mutate  func(*domain.PredictionInput)
		field   string
		message string
	}{
		{"age zero", func(in *domain.PredictionInput) { in.Age = "0" }, domain.FieldAge, "Age must be 0-120 years"},
		{"age above max", func(in *domain.PredictionInput) { in.Age = "121" }, domain.FieldAge, "Age must be 0-120 years"},
		{"age non-numeric", func(in *domain.PredictionInput) { in.Age = "forty" }, domain.FieldAge, "Invalid age"},
		{"bmi below min", func(in *domain.PredictionInput) { in.BMI = "9.9" }, domain.FieldBMI, "BMI must be 10-50"},
		{"bmi above max", func(in *domain.PredictionInput) { in.BMI = "50.1" }, domain.FieldBMI, "BMI must be 10-50"},
		{"bmi non-numeric", func(in *domain.PredictionInput) { in.BMI = "abc" }, domain.FieldBMI, "Invalid BMI"},
		{"hba1c below min", func(in *domain.PredictionInput) { in.HbA1cLevel = "2.9" }, domain.FieldHbA1cLevel, "HbA1c must be 3-20%"},
		{"hba1c non-numeric", func(in *domain.PredictionInput) { in.HbA1cLevel = "x" }, domain.FieldHbA1cLevel, "Numbers only"},
		{"glucose below min", func(in *domain.PredictionInput) { in.BloodGlucoseLevel = "69" }, domain.FieldBloodGlucoseLevel, "Glucose must be 70-300 mg/dL"},
		{"glucose above max", func(in *domain.PredictionInput) { in.BloodGlucoseLevel = "301" }, domain.FieldBloodGlucoseLevel, "Glucose must be 70-300 mg/dL"},
		{"glucose non-numeric", func(in *domain.PredictionInput) { in.BloodGlucoseLevel = "" }, domain.FieldBloodGlucoseLevel, "Numbers only"},
		// ParseFloat accepts NaN and Inf spellings; they must never
		// validate, since every interval comparison on NaN is false.
		{"age NaN", func(in *domain.PredictionInput) { in.Age = "NaN" }, domain.FieldAge, "Invalid age"},
		{"age Inf", func(in *domain.PredictionInput) { in.Age = "+Inf" }, domain.FieldAge, "Invalid age"},
		{"bmi NaN", func(in *domain.PredictionInput) { in.BMI = "nan" }, domain.FieldBMI, "Invalid BMI"},
		{"hba1c Inf", func(in *domain.PredictionInput) { in.HbA1cLevel = "Infinity" }, domain.FieldHbA1cLevel, "Numbers only"},
		{"glucose NaN", func(in *domain.PredictionInput) { in.BloodGlucoseLevel = "NaN" }, domain.FieldBloodGlucoseLevel, "Numbers only"},
		{"glucose negative Inf", func(in *domain.PredictionInput) { in.BloodGlucoseLevel = "-Inf" }, domain.FieldBloodGlucoseLevel, "Numbers only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			_, result := validator.Validate(input)

			require.Contains(t, result, tt.field)
			assert.Equal(t, tt.message, result[tt.field])
			assert.Len(t, result, 1)
		})
	}
}

func TestValidator_BoundaryValuesAccepted(t *testing.T) {
	validator := NewValidator(testEncoders(t))

	input := validInput()
	input.Age = "120"
	input.BMI = "10"
	input.HbA1cLevel = "20"
	input.BloodGlucoseLevel = "300"

	_, result := validator.Validate(input)
	assert.True(t, result.Valid())

	input = validInput()
	input.Age = "0.5"
	input.BMI = "50"
	input.HbA1cLevel = "3"
	input.BloodGlucoseLevel = "70"

	_, result = validator.Validate(input)
	assert.True(t, result.Valid())
}

func TestValidator_Gender(t *testing.T) {
	validator := NewValidator(testEncoders(t))

	input := validInput()
	input.Gender = "Other"

	_, result := validator.Validate(input)
	assert.Equal(t, "Enter: Male/Female", result[domain.FieldGender])

	// Gender matching is case-sensitive
	input.Gender = "female"
	_, result = validator.Validate(input)
	assert.Equal(t, "Enter: Male/Female", result[domain.FieldGender])
}

func TestValidator_BinaryFlags(t *testing.T) {
	validator := NewValidator(testEncoders(t))

	input := validInput()
	input.Hypertension = "2"
	input.HeartDisease = "yes"

	_, result := validator.Validate(input)
	assert.Equal(t, "Enter: 0 or 1", result[domain.FieldHypertension])
	assert.Equal(t, "Enter: 0 or 1", result[domain.FieldHeartDisease])
}

func TestValidator_SmokingHistoryCanonicalized(t *testing.T) {
	validator := NewValidator(testEncoders(t))

	input := validInput()
	input.SmokingHistory = "never"

	record, result := validator.Validate(input)
	assert.True(t, result.Valid())
	assert.Equal(t, "Never", record.SmokingHistory)

	input.SmokingHistory = "no info"
	record, result = validator.Validate(input)
	assert.True(t, result.Valid())
	assert.Equal(t, "No Info", record.SmokingHistory)
}

func TestValidator_SmokingHistoryUnknown(t *testing.T) {
	validator := NewValidator(testEncoders(t))

	input := validInput()
	input.SmokingHistory = "xyz"

	_, result := validator.Validate(input)
	assert.Equal(t, "Enter: Current/Ever/Former/Never/No Info/Not Current", result[domain.FieldSmokingHistory])
}
