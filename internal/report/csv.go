package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/glucoscholar-server/internal/domain"
)

// csvColumns is the export header, matching the predictions table column
// order.
var csvColumns = []string{
	"ID", "Gender", "Age", "Hypertension", "Heart Disease",
	"Smoking History", "BMI", "HbA1c Level", "Blood Glucose Level",
	"Prediction Result",
}

// CSVFilename returns the export filename for an inclusive date range.
func CSVFilename(start, end time.Time) string {
	return fmt.Sprintf("diabetes_report_%s_to_%s.csv",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// WriteCSV writes the prediction rows as a CSV document with the export
// header.
func WriteCSV(w io.Writer, rows []domain.PredictionRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ID, 10),
			row.Gender,
			formatNumber(row.Age),
			strconv.Itoa(row.Hypertension),
			strconv.Itoa(row.HeartDisease),
			row.SmokingHistory,
			formatNumber(row.BMI),
			formatNumber(row.HbA1cLevel),
			formatNumber(row.BloodGlucoseLevel),
			row.PredictionResult,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", row.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatNumber renders a float without trailing zeros, so 45.0 exports as
// "45" and 25.13 as "25.13".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
