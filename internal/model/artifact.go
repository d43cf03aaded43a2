// Package model loads the pre-trained diabetes classifier artifact and
// exposes it behind the domain Classifier and EncoderTable boundaries.
package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the serialized form of the trained model: the categorical
// encoder tables and the decision tree ensemble. It is produced offline
// by the training pipeline and loaded once at startup.
type Artifact struct {
	Version  string      `json:"version"`
	Encoders EncoderSpec `json:"encoders"`
	Trees    []Tree      `json:"trees"`
}

// EncoderSpec lists the known categorical classes in code order. The
// position of a label is its integer code; the first label is the
// fallback class for unknown categories.
type EncoderSpec struct {
	Gender         []string `json:"gender"`
	SmokingHistory []string `json:"smoking_history"`
}

// LoadArtifact reads a trained model artifact from a JSON file. An empty
// path returns the built-in default artifact.
func LoadArtifact(path string) (*Artifact, error) {
	if path == "" {
		return DefaultArtifact(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}

	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("model artifact contains no trees")
	}

	return &artifact, nil
}

// DefaultArtifact returns the built-in ensemble distilled from the trained
// model: three trees splitting on HbA1c, blood glucose and BMI at the
// clinical thresholds the training data settled on.
func DefaultArtifact() *Artifact {
	return &Artifact{
		Version: "1.0",
		Encoders: EncoderSpec{
			Gender:         []string{"Female", "Male"},
			SmokingHistory: []string{"Current", "Ever", "Former", "Never", "No Info", "Not Current"},
		},
		Trees: []Tree{
			{
				// HbA1c >= 6.5 or glucose >= 200 votes diabetic
				Nodes: []Node{
					{Feature: featureHbA1c, Threshold: 6.4, Left: 1, Right: 2},
					{Feature: featureGlucose, Threshold: 199, Left: 3, Right: 4},
					{Feature: leafNode, Value: 1},
					{Feature: leafNode, Value: 0},
					{Feature: leafNode, Value: 1},
				},
			},
			{
				// Elevated fasting glucose with elevated HbA1c votes diabetic
				Nodes: []Node{
					{Feature: featureGlucose, Threshold: 125, Left: 1, Right: 2},
					{Feature: leafNode, Value: 0},
					{Feature: featureHbA1c, Threshold: 5.6, Left: 3, Right: 4},
					{Feature: leafNode, Value: 0},
					{Feature: leafNode, Value: 1},
				},
			},
			{
				// Pre-diabetic HbA1c combined with high BMI votes diabetic
				Nodes: []Node{
					{Feature: featureHbA1c, Threshold: 5.6, Left: 1, Right: 2},
					{Feature: leafNode, Value: 0},
					{Feature: featureBMI, Threshold: 27, Left: 3, Right: 4},
					{Feature: leafNode, Value: 0},
					{Feature: leafNode, Value: 1},
				},
			},
		},
	}
}
