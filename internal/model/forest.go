package model

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// FeatureCount is the width of the classifier input vector: gender code,
// age, hypertension, heart disease, smoking code, bmi, HbA1c, glucose.
const FeatureCount = 8

// Feature vector positions.
const (
	featureGender       = 0
	featureAge          = 1
	featureHypertension = 2
	featureHeartDisease = 3
	featureSmoking      = 4
	featureBMI          = 5
	featureHbA1c        = 6
	featureGlucose      = 7
)

// leafNode marks a node without children; its Value holds the label.
const leafNode = -1

// Node is one decision point in a tree. Feature and Threshold drive the
// split; Left is taken when the feature value is <= Threshold.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     int     `json:"value"`
}

// Tree is a single decision tree stored as a flat node array rooted at
// index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// predict walks the tree for one feature vector. Traversal is bounded by
// the node count so a malformed artifact cannot loop forever.
func (t *Tree) predict(features []float64) (int, error) {
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, fmt.Errorf("tree node index %d out of range", idx)
		}
		node := t.Nodes[idx]
		if node.Feature == leafNode {
			return node.Value, nil
		}
		if node.Feature < 0 || node.Feature >= len(features) {
			return 0, fmt.Errorf("tree references unknown feature %d", node.Feature)
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return 0, fmt.Errorf("tree traversal did not terminate")
}

// Forest is a majority-vote decision tree ensemble. It implements the
// domain Classifier boundary.
type Forest struct {
	trees []Tree
	log   *logrus.Logger
}

// NewForest creates a classifier from a loaded model artifact
func NewForest(artifact *Artifact, logger *logrus.Logger) (*Forest, error) {
	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("model artifact contains no trees")
	}
	for i, tree := range artifact.Trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d has no nodes", i)
		}
	}

	logger.WithFields(logrus.Fields{
		"version": artifact.Version,
		"trees":   len(artifact.Trees),
	}).Info("Classifier model loaded")

	return &Forest{
		trees: artifact.Trees,
		log:   logger,
	}, nil
}

// Predict classifies one encoded feature vector, returning 1 when the
// majority of trees vote diabetic and 0 otherwise.
func (f *Forest) Predict(features []float64) (int, error) {
	if len(features) != FeatureCount {
		return 0, fmt.Errorf("expected %d features, got %d", FeatureCount, len(features))
	}

	votes := 0
	for i := range f.trees {
		label, err := f.trees[i].predict(features)
		if err != nil {
			return 0, fmt.Errorf("evaluating tree %d: %w", i, err)
		}
		if label == 1 {
			votes++
		}
	}

	if votes*2 > len(f.trees) {
		return 1, nil
	}
	return 0, nil
}
