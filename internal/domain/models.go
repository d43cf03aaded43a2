package domain

import (
	"time"
)

// Core Types

// Field names shared by validation, persistence and reporting. They match
// the column names of the predictions table.
const (
	FieldGender            = "gender"
	FieldAge               = "age"
	FieldHypertension      = "hypertension"
	FieldHeartDisease      = "heart_disease"
	FieldSmokingHistory    = "smoking_history"
	FieldBMI               = "bmi"
	FieldHbA1cLevel        = "HbA1c_level"
	FieldBloodGlucoseLevel = "blood_glucose_level"
)

// Prediction labels returned by the classifier.
const (
	LabelNotDiabetic = 0
	LabelDiabetic    = 1
)

// Human-readable prediction results.
const (
	ResultDiabetic    = "Diabetic"
	ResultNotDiabetic = "Not Diabetic"
)

// PredictionInput carries the eight raw fields of one prediction request
// exactly as entered. All fields are strings; the Validator is responsible
// for parsing and range-checking them.
type PredictionInput struct {
	Gender            string `json:"gender"`
	Age               string `json:"age"`
	Hypertension      string `json:"hypertension"`
	HeartDisease      string `json:"heart_disease"`
	SmokingHistory    string `json:"smoking_history"`
	BMI               string `json:"bmi"`
	HbA1cLevel        string `json:"HbA1c_level"`
	BloodGlucoseLevel string `json:"blood_glucose_level"`
}

// PatientRecord is the validated, typed form of a prediction request.
// Invariant: all eight fields are present and range-valid before the
// record reaches the classifier.
type PatientRecord struct {
	Gender            string  `json:"gender"`
	Age               float64 `json:"age"`
	Hypertension      int     `json:"hypertension"`
	HeartDisease      int     `json:"heart_disease"`
	SmokingHistory    string  `json:"smoking_history"`
	BMI               float64 `json:"bmi"`
	HbA1cLevel        float64 `json:"HbA1c_level"`
	BloodGlucoseLevel float64 `json:"blood_glucose_level"`
}

// ValidationResult maps a field name to its error message. An empty map
// means the input is valid. Created fresh per validation pass.
type ValidationResult map[string]string

// Valid reports whether the validation pass found no errors.
func (v ValidationResult) Valid() bool {
	return len(v) == 0
}

// PredictionOutcome is the immutable record of one successful
// classification. It is appended to the record store and never mutated
// or deleted afterwards.
type PredictionOutcome struct {
	ID              int64         `json:"id,omitempty"`
	Patient         PatientRecord `json:"patient"`
	Prediction      int           `json:"prediction"`
	Result          string        `json:"result"`
	Recommendations []string      `json:"recommendations"`
	Warnings        []string      `json:"warnings,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
}

// PredictionRow mirrors one persisted predictions row as returned by a
// date-range query.
type PredictionRow struct {
	ID                int64     `json:"id"`
	Gender            string    `json:"gender"`
	Age               float64   `json:"age"`
	Hypertension      int       `json:"hypertension"`
	HeartDisease      int       `json:"heart_disease"`
	SmokingHistory    string    `json:"smoking_history"`
	BMI               float64   `json:"bmi"`
	HbA1cLevel        float64   `json:"HbA1c_level"`
	BloodGlucoseLevel float64   `json:"blood_glucose_level"`
	PredictionResult  string    `json:"prediction_result"`
	Timestamp         time.Time `json:"timestamp"`
}

// DatasetSummary aggregates the classification results of a batch dataset
// analysis.
type DatasetSummary struct {
	Dataset            string  `json:"dataset"`
	TotalCases         int     `json:"total_cases"`
	DiabeticCases      int     `json:"diabetic_cases"`
	NonDiabeticCases   int     `json:"non_diabetic_cases"`
	DiabeticPercentage float64 `json:"diabetic_percentage"`
	Note               string  `json:"note,omitempty"`
}
