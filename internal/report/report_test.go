package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/glucoscholar-server/internal/domain"
)

func sampleRows() []domain.PredictionRow {
	return []domain.PredictionRow{
		{
			ID: 1, Gender: "Female", Age: 44, Hypertension: 0, HeartDisease: 0,
			SmokingHistory: "Never", BMI: 25.1, HbA1cLevel: 5.5, BloodGlucoseLevel: 120,
			PredictionResult: domain.ResultNotDiabetic,
			Timestamp:        time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			ID: 2, Gender: "Male", Age: 61, Hypertension: 1, HeartDisease: 0,
			SmokingHistory: "Former", BMI: 29.4, HbA1cLevel: 6.8, BloodGlucoseLevel: 210,
			PredictionResult: domain.ResultDiabetic,
			Timestamp:        time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestCSVFilename(t *testing.T) {
	name := CSVFilename(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "diabetes_report_2026-03-01_to_2026-03-31.csv", name)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvColumns, records[0])
	assert.Equal(t, []string{"1", "Female", "44", "0", "0", "Never", "25.1", "5.5", "120", "Not Diabetic"}, records[1])
	assert.Equal(t, []string{"2", "Male", "61", "1", "0", "Former", "29.4", "6.8", "210", "Diabetic"}, records[2])
}

func TestWriteCSV_NoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "empty export still carries the header")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvColumns, rows[0])
	assert.Equal(t, "Male", rows[2][1])
	assert.Equal(t, "Diabetic", rows[2][9])
}

func TestPDFFilename(t *testing.T) {
	name := PDFFilename(time.Date(2026, 3, 5, 9, 30, 15, 0, time.UTC))
	assert.Equal(t, "Diabetes_Report_20260305-093015.pdf", name)
}

func TestPDFText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"emoji prefix stripped", "🟥 Medical Alert: Predictive results indicate diabetes risk. Please consult a healthcare professional immediately.",
			"Medical Alert: Predictive results indicate diabetes risk. Please consult a healthcare professional immediately."},
		{"emoji with variation selector", "⚖️ Weight Management: Aim for 5-10% weight loss through diet and exercise",
			"Weight Management: Aim for 5-10% weight loss through diet and exercise"},
		{"plain ascii untouched", "Schedule follow-up tests", "Schedule follow-up tests"},
		{"latin-1 kept", "Glucose 140 mg/dL ±5", "Glucose 140 mg/dL ±5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pdfText(tt.in))
		})
	}
}

func TestWritePDF_EmojiRecommendations(t *testing.T) {
	var buf bytes.Buffer
	data := PatientReport{
		Age: "61", Gender: "Male", BMI: "29.4", HbA1cLevel: "6.8",
		BloodGlucose: "210", Result: domain.ResultDiabetic,
		Recommendations: []string{
			"🍬 Blood Sugar Management: Monitor fasting and post-meal glucose levels regularly",
			"❤️ Blood Pressure: Maintain sodium intake <2g/day and monitor BP weekly",
		},
	}

	require.NoError(t, WritePDF(&buf, data))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	data := PatientReport{
		Age:          "61",
		Gender:       "Male",
		BMI:          "29.4",
		HbA1cLevel:   "6.8",
		BloodGlucose: "210",
		Result:       domain.ResultDiabetic,
		Recommendations: []string{
			"Consult a doctor immediately",
			"Schedule follow-up tests",
		},
	}

	require.NoError(t, WritePDF(&buf, data))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output must be a PDF document")
	assert.Greater(t, buf.Len(), 1000)
}
