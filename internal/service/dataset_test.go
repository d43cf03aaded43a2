package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// thresholdClassifier labels a row diabetic when its glucose feature
// exceeds 140.
type thresholdClassifier struct{}

func (thresholdClassifier) Predict(features []float64) (int, error) {
	if features[7] > 140 {
		return 1, nil
	}
	return 0, nil
}

const datasetHeader = "gender,age,hypertension,heart_disease,smoking_history,bmi,HbA1c_level,blood_glucose_level\n"

func TestDatasetService_Analyze(t *testing.T) {
	svc := NewDatasetService(quietLogger(), testEncoders(t), thresholdClassifier{})

	data := datasetHeader +
		"Female,44,0,0,Never,25.1,5.5,120\n" +
		"Male,61,1,0,Former,29.4,6.8,210\n" +
		"Female,38,0,0,Current,22.0,6.1,155\n" +
		"Male,52,0,1,Never,31.2,5.9,130\n"

	summary, err := svc.Analyze(strings.NewReader(data), "patients.csv")
	require.NoError(t, err)

	assert.Equal(t, "patients.csv", summary.Dataset)
	assert.Equal(t, 4, summary.TotalCases)
	assert.Equal(t, 2, summary.DiabeticCases)
	assert.Equal(t, 2, summary.NonDiabeticCases)
	assert.InDelta(t, 50.0, summary.DiabeticPercentage, 0.001)
	assert.Empty(t, summary.Note)
}

func TestDatasetService_UnknownCategoriesMappedToDefaults(t *testing.T) {
	svc := NewDatasetService(quietLogger(), testEncoders(t), thresholdClassifier{})

	data := datasetHeader +
		"Unknown,44,0,0,vaping,25.1,5.5,120\n"

	summary, err := svc.Analyze(strings.NewReader(data), "odd.csv")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalCases)
	assert.Equal(t, unknownCategoryNote, summary.Note)
}

func TestDatasetService_MissingColumns(t *testing.T) {
	svc := NewDatasetService(quietLogger(), testEncoders(t), thresholdClassifier{})

	data := "gender,age\nFemale,44\n"

	_, err := svc.Analyze(strings.NewReader(data), "bad.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing required columns")
	assert.Contains(t, err.Error(), "blood_glucose_level")
}

func TestDatasetService_MalformedNumericRow(t *testing.T) {
	svc := NewDatasetService(quietLogger(), testEncoders(t), thresholdClassifier{})

	data := datasetHeader +
		"Female,44,0,0,Never,not-a-bmi,5.5,120\n"

	_, err := svc.Analyze(strings.NewReader(data), "bad.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestDatasetService_EmptyDataset(t *testing.T) {
	svc := NewDatasetService(quietLogger(), testEncoders(t), thresholdClassifier{})

	_, err := svc.Analyze(strings.NewReader(datasetHeader), "empty.csv")
	assert.Error(t, err)
}

func TestDatasetService_ExtraColumnsIgnored(t *testing.T) {
	svc := NewDatasetService(quietLogger(), testEncoders(t), thresholdClassifier{})

	data := "patient_id," + datasetHeader[:len(datasetHeader)-1] + ",notes\n" +
		"p1,Female,44,0,0,Never,25.1,5.5,120,ok\n"

	summary, err := svc.Analyze(strings.NewReader(data), "wide.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalCases)
}
