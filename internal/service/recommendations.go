package service

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/glucoscholar-server/internal/domain"
)

// Advisory strings emitted by the recommendation rules. Their wording and
// order are fixed; reports and the API surface them verbatim.
const (
	recMedicalAlert  = "🟥 Medical Alert: Predictive results indicate diabetes risk. Please consult a healthcare professional immediately."
	recScheduleTests = "🔔 Recommendation: Schedule fasting blood glucose and HbA1c tests with your doctor."
	recNoRisk        = "🟩 Predictive results show no diabetes risk. Maintain regular checkups."
	recWeightLoss    = "⚖️ Weight Management: Aim for 5-10% weight loss through diet and exercise"
	recExercise      = "🏃 Exercise: 150 mins/week moderate activity (brisk walking, cycling)"
	recNutrition     = "⚖️ Nutrition: Consult dietitian for healthy weight gain strategies"
	recBloodSugar    = "🍬 Blood Sugar Management: Monitor fasting and post-meal glucose levels regularly"
	recCessation     = "🚭 Smoking Cessation: Consider nicotine replacement therapy or counseling"
	recBloodPressure = "❤️ Blood Pressure: Maintain sodium intake <2g/day and monitor BP weekly"
)

// RecommendationEngine derives the ordered advisory list for a prediction.
// Each rule contributes independently; a rule that cannot read its inputs
// is skipped (and logged) rather than failing the list, so recommendation
// generation never fails the prediction flow.
type RecommendationEngine struct {
	log *logrus.Logger
}

// NewRecommendationEngine creates a recommendation engine
func NewRecommendationEngine(logger *logrus.Logger) *RecommendationEngine {
	return &RecommendationEngine{log: logger}
}

// ruleInputs carries the per-rule inputs. Nil pointers mark values that
// could not be parsed; the corresponding rule contributes nothing.
type ruleInputs struct {
	positive       bool
	bmi            *float64
	glucose        *float64
	smokingHistory string
	hypertension   *int
}

// Recommendations applies the fixed rule table to a validated record
func (e *RecommendationEngine) Recommendations(prediction int, record domain.PatientRecord) []string {
	hypertension := record.Hypertension
	return e.apply(ruleInputs{
		positive:       prediction == domain.LabelDiabetic,
		bmi:            &record.BMI,
		glucose:        &record.BloodGlucoseLevel,
		smokingHistory: record.SmokingHistory,
		hypertension:   &hypertension,
	})
}

// RecommendationsFromRaw applies the rule table to unvalidated string
// fields, as used by the report path where inputs come straight from a
// stored or user-supplied form. Malformed numeric fields skip their rule.
func (e *RecommendationEngine) RecommendationsFromRaw(result string, fields map[string]string) []string {
	inputs := ruleInputs{
		positive:       result == domain.ResultDiabetic,
		smokingHistory: fields[domain.FieldSmokingHistory],
	}

	if bmi, err := parseNumber(fields[domain.FieldBMI]); err != nil {
		e.log.WithField("value", fields[domain.FieldBMI]).Warn("Invalid BMI value, skipping BMI rule")
	} else {
		inputs.bmi = &bmi
	}

	if glucose, err := parseNumber(fields[domain.FieldBloodGlucoseLevel]); err != nil {
		e.log.WithField("value", fields[domain.FieldBloodGlucoseLevel]).Warn("Invalid glucose value, skipping glucose rule")
	} else {
		inputs.glucose = &glucose
	}

	if flag, err := strconv.Atoi(strings.TrimSpace(fields[domain.FieldHypertension])); err != nil {
		e.log.WithField("value", fields[domain.FieldHypertension]).Warn("Invalid hypertension value, skipping hypertension rule")
	} else {
		inputs.hypertension = &flag
	}

	return e.apply(inputs)
}

// apply concatenates the present contributions in rule order.
func (e *RecommendationEngine) apply(inputs ruleInputs) []string {
	recommendations := make([]string, 0, 7)
	recommendations = append(recommendations, predictionRule(inputs)...)
	recommendations = append(recommendations, bmiRule(inputs)...)
	recommendations = append(recommendations, glucoseRule(inputs)...)
	recommendations = append(recommendations, smokingRule(inputs)...)
	recommendations = append(recommendations, hypertensionRule(inputs)...)
	return recommendations
}

func predictionRule(inputs ruleInputs) []string {
	if inputs.positive {
		return []string{recMedicalAlert, recScheduleTests}
	}
	return []string{recNoRisk}
}

func bmiRule(inputs ruleInputs) []string {
	if inputs.bmi == nil {
		return nil
	}
	switch {
	case *inputs.bmi >= 25:
		return []string{recWeightLoss, recExercise}
	case *inputs.bmi < 18.5:
		return []string{recNutrition}
	}
	return nil
}

func glucoseRule(inputs ruleInputs) []string {
	if inputs.glucose == nil || *inputs.glucose <= 140 {
		return nil
	}
	return []string{recBloodSugar}
}

func smokingRule(inputs ruleInputs) []string {
	switch strings.ToLower(strings.TrimSpace(inputs.smokingHistory)) {
	case "current", "former":
		return []string{recCessation}
	}
	return nil
}

func hypertensionRule(inputs ruleInputs) []string {
	if inputs.hypertension == nil || *inputs.hypertension != 1 {
		return nil
	}
	return []string{recBloodPressure}
}
