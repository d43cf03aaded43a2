package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/glucoscholar-server/internal/domain"
)

// unknownCategoryNote is appended to the summary when any row carried a
// category the encoders do not know.
const unknownCategoryNote = "Note: Some records contained unknown categories and were mapped to default values."

// requiredColumns is the expected dataset header, in classifier feature
// order.
var requiredColumns = []string{
	domain.FieldGender,
	domain.FieldAge,
	domain.FieldHypertension,
	domain.FieldHeartDisease,
	domain.FieldSmokingHistory,
	domain.FieldBMI,
	domain.FieldHbA1cLevel,
	domain.FieldBloodGlucoseLevel,
}

// DatasetService classifies every row of an uploaded CSV dataset and
// summarizes the label distribution.
type DatasetService struct {
	log        *logrus.Logger
	encoders   domain.EncoderTable
	classifier domain.Classifier
}

// NewDatasetService creates a dataset batch analyzer
func NewDatasetService(logger *logrus.Logger, encoders domain.EncoderTable, classifier domain.Classifier) *DatasetService {
	return &DatasetService{
		log:        logger,
		encoders:   encoders,
		classifier: classifier,
	}
}

// Analyze reads a CSV dataset, substitutes unknown categories with the
// encoder defaults, classifies each row and returns the aggregate summary.
// The header must contain all eight required columns; extra columns are
// ignored.
func (s *DatasetService) Analyze(r io.Reader, name string) (*domain.DatasetSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.TrimSpace(col)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("Missing required columns: %s", strings.Join(missing, ", "))
	}

	summary := &domain.DatasetSummary{Dataset: name}
	substituted := false

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset row %d: %w", line, err)
		}

		features, usedDefault, err := s.rowFeatures(row, columns)
		if err != nil {
			return nil, fmt.Errorf("dataset row %d: %w", line, err)
		}
		substituted = substituted || usedDefault

		label, err := s.classifier.Predict(features)
		if err != nil {
			return nil, fmt.Errorf("classifying dataset row %d: %w", line, err)
		}

		summary.TotalCases++
		if label == domain.LabelDiabetic {
			summary.DiabeticCases++
		} else {
			summary.NonDiabeticCases++
		}
	}

	if summary.TotalCases == 0 {
		return nil, fmt.Errorf("dataset contains no rows")
	}

	summary.DiabeticPercentage = float64(summary.DiabeticCases) / float64(summary.TotalCases) * 100
	if substituted {
		summary.Note = unknownCategoryNote
	}

	s.log.WithFields(logrus.Fields{
		"dataset":      name,
		"total_cases":  summary.TotalCases,
		"diabetic":     summary.DiabeticCases,
		"non_diabetic": summary.NonDiabeticCases,
	}).Info("Dataset analysis completed")

	return summary, nil
}

// rowFeatures builds the encoded feature vector for one dataset row. The
// second return value reports whether an unknown category was replaced by
// the encoder default.
func (s *DatasetService) rowFeatures(row []string, columns map[string]int) ([]float64, bool, error) {
	cell := func(field string) string {
		idx := columns[field]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	usedDefault := false

	genderCode, ok := s.encoders.EncodeGender(cell(domain.FieldGender))
	if !ok {
		genderCode, _ = s.encoders.EncodeGender(s.encoders.GenderClasses()[0])
		usedDefault = true
	}

	smokingCode, ok := s.encoders.EncodeSmokingHistory(cell(domain.FieldSmokingHistory))
	if !ok {
		smokingCode, _ = s.encoders.EncodeSmokingHistory(s.encoders.SmokingHistoryClasses()[0])
		usedDefault = true
	}

	numeric := func(field string) (float64, error) {
		value, err := parseNumber(cell(field))
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q", field, cell(field))
		}
		return value, nil
	}

	age, err := numeric(domain.FieldAge)
	if err != nil {
		return nil, usedDefault, err
	}
	hypertension, err := numeric(domain.FieldHypertension)
	if err != nil {
		return nil, usedDefault, err
	}
	heartDisease, err := numeric(domain.FieldHeartDisease)
	if err != nil {
		return nil, usedDefault, err
	}
	bmi, err := numeric(domain.FieldBMI)
	if err != nil {
		return nil, usedDefault, err
	}
	hba1c, err := numeric(domain.FieldHbA1cLevel)
	if err != nil {
		return nil, usedDefault, err
	}
	glucose, err := numeric(domain.FieldBloodGlucoseLevel)
	if err != nil {
		return nil, usedDefault, err
	}

	return []float64{
		float64(genderCode),
		age,
		hypertension,
		heartDisease,
		float64(smokingCode),
		bmi,
		hba1c,
		glucose,
	}, usedDefault, nil
}
