package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/glucoscholar-server/internal/domain"
)

const xlsxSheetName = "Predictions"

// XLSXFilename returns the spreadsheet export filename for an inclusive
// date range.
func XLSXFilename(start, end time.Time) string {
	return fmt.Sprintf("diabetes_report_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// WriteXLSX writes the prediction rows as a spreadsheet with a bold
// header row.
func WriteXLSX(w io.Writer, rows []domain.PredictionRow) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for col, title := range csvColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("converting coordinates: %w", err)
		}
		if err := f.SetCellValue(xlsxSheetName, cell, title); err != nil {
			return fmt.Errorf("writing header cell: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("styling header cell: %w", err)
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.ID, row.Gender, row.Age, row.Hypertension, row.HeartDisease,
			row.SmokingHistory, row.BMI, row.HbA1cLevel, row.BloodGlucoseLevel,
			row.PredictionResult,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("converting coordinates: %w", err)
			}
			if err := f.SetCellValue(xlsxSheetName, cell, value); err != nil {
				return fmt.Errorf("writing cell %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing spreadsheet: %w", err)
	}
	return nil
}
