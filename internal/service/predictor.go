package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/glucoscholar-server/internal/domain"
)

// PredictionResponse is the orchestrator's reply to one prediction
// request. Either Errors is non-empty (the request was rejected before
// classification) or the prediction fields are populated.
type PredictionResponse struct {
	Result          string                  `json:"result,omitempty"`
	Prediction      int                     `json:"prediction"`
	Recommendations []string                `json:"recommendations,omitempty"`
	Warnings        []string                `json:"warnings,omitempty"`
	Errors          domain.ValidationResult `json:"errors,omitempty"`
	Saved           bool                    `json:"saved"`
	SaveError       string                  `json:"save_error,omitempty"`
	Timestamp       time.Time               `json:"timestamp"`
}

// Rejected reports whether validation stopped the request.
func (r *PredictionResponse) Rejected() bool {
	return len(r.Errors) > 0
}

// PredictionService sequences one prediction request through validation,
// encoding, classification, recommendation and persistence. Requests run
// one at a time; the service holds no per-request state.
type PredictionService struct {
	log        *logrus.Logger
	encoders   domain.EncoderTable
	classifier domain.Classifier
	validator  *Validator
	engine     *RecommendationEngine
	store      domain.RecordStore
}

// NewPredictionService creates the prediction orchestrator
func NewPredictionService(
	logger *logrus.Logger,
	encoders domain.EncoderTable,
	classifier domain.Classifier,
	store domain.RecordStore,
) *PredictionService {
	return &PredictionService{
		log:        logger,
		encoders:   encoders,
		classifier: classifier,
		validator:  NewValidator(encoders),
		engine:     NewRecommendationEngine(logger),
		store:      store,
	}
}

// Validator exposes the service's input validator for callers that only
// need field checking.
func (s *PredictionService) Validator() *Validator {
	return s.validator
}

// Engine exposes the recommendation engine for the report path.
func (s *PredictionService) Engine() *RecommendationEngine {
	return s.engine
}

// Predict runs the full pipeline for one request. A validation failure is
// a terminal rejection with no side effects. A classifier failure is fatal
// to the request and nothing is persisted. A persistence failure is
// reported in the response but never hides the computed prediction.
func (s *PredictionService) Predict(ctx context.Context, input *domain.PredictionInput) (*PredictionResponse, error) {
	record, validation := s.validator.Validate(input)
	if !validation.Valid() {
		s.log.WithField("field_errors", len(validation)).Info("Prediction request rejected by validation")
		return &PredictionResponse{Errors: validation, Timestamp: time.Now()}, nil
	}

	features, warnings := s.encode(&record)

	label, err := s.classifier.Predict(features)
	if err != nil {
		s.log.WithError(err).Error("Classifier invocation failed")
		return nil, fmt.Errorf("%s: classifying patient record: %w", domain.ErrClassification, err)
	}

	result := domain.ResultNotDiabetic
	if label == domain.LabelDiabetic {
		result = domain.ResultDiabetic
	}

	recommendations := s.engine.Recommendations(label, record)

	outcome := &domain.PredictionOutcome{
		Patient:         record,
		Prediction:      label,
		Result:          result,
		Recommendations: recommendations,
		Warnings:        warnings,
		Timestamp:       time.Now(),
	}

	response := &PredictionResponse{
		Result:          result,
		Prediction:      label,
		Recommendations: recommendations,
		Warnings:        warnings,
		Saved:           true,
		Timestamp:       outcome.Timestamp,
	}

	if err := s.store.Append(ctx, outcome); err != nil {
		// Storage outages must not hide a valid prediction from the
		// caller: surface the failure alongside the result.
		s.log.WithError(err).Error("Failed to save prediction")
		response.Saved = false
		response.SaveError = fmt.Sprintf("Failed to save prediction: %v", err)
	}

	s.log.WithFields(logrus.Fields{
		"result":          result,
		"recommendations": len(recommendations),
		"warnings":        len(warnings),
		"saved":           response.Saved,
	}).Info("Prediction completed")

	return response, nil
}

// encode maps the categorical fields to their integer codes and assembles
// the fixed-order feature vector. An unknown category is substituted with
// the encoder's first known class; the substitution is surfaced as a
// warning rather than silently applied.
func (s *PredictionService) encode(record *domain.PatientRecord) ([]float64, []string) {
	var warnings []string

	genderCode, ok := s.encoders.EncodeGender(record.Gender)
	if !ok {
		fallback := s.encoders.GenderClasses()[0]
		s.log.WithFields(logrus.Fields{
			"value":   record.Gender,
			"default": fallback,
		}).Warn("Unknown gender category, substituting default")
		warnings = append(warnings, fmt.Sprintf("Unknown gender category. Using default: %s", fallback))
		record.Gender = fallback
		genderCode, _ = s.encoders.EncodeGender(fallback)
	}

	smokingCode, ok := s.encoders.EncodeSmokingHistory(record.SmokingHistory)
	if !ok {
		fallback := s.encoders.SmokingHistoryClasses()[0]
		s.log.WithFields(logrus.Fields{
			"value":   record.SmokingHistory,
			"default": fallback,
		}).Warn("Unknown smoking history category, substituting default")
		warnings = append(warnings, fmt.Sprintf("Unknown smoking history category. Using default: %s", fallback))
		record.SmokingHistory = fallback
		smokingCode, _ = s.encoders.EncodeSmokingHistory(fallback)
	}

	return []float64{
		float64(genderCode),
		record.Age,
		float64(record.Hypertension),
		float64(record.HeartDisease),
		float64(smokingCode),
		record.BMI,
		record.HbA1cLevel,
		record.BloodGlucoseLevel,
	}, warnings
}
