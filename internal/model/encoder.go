package model

import (
	"fmt"
)

// Encoders holds the fixed label-to-code mappings derived from the trained
// model's known categories. It implements the domain EncoderTable boundary
// and is read-only after construction.
type Encoders struct {
	genderClasses  []string
	smokingClasses []string
	genderCodes    map[string]int
	smokingCodes   map[string]int
}

// NewEncoders builds the encoder table from a model artifact
func NewEncoders(artifact *Artifact) (*Encoders, error) {
	if len(artifact.Encoders.Gender) == 0 {
		return nil, fmt.Errorf("model artifact defines no gender classes")
	}
	if len(artifact.Encoders.SmokingHistory) == 0 {
		return nil, fmt.Errorf("model artifact defines no smoking history classes")
	}

	e := &Encoders{
		genderClasses:  artifact.Encoders.Gender,
		smokingClasses: artifact.Encoders.SmokingHistory,
		genderCodes:    make(map[string]int, len(artifact.Encoders.Gender)),
		smokingCodes:   make(map[string]int, len(artifact.Encoders.SmokingHistory)),
	}
	for code, label := range e.genderClasses {
		e.genderCodes[label] = code
	}
	for code, label := range e.smokingClasses {
		e.smokingCodes[label] = code
	}
	return e, nil
}

// GenderClasses returns the known gender labels in code order
func (e *Encoders) GenderClasses() []string {
	return e.genderClasses
}

// SmokingHistoryClasses returns the known smoking history labels in code order
func (e *Encoders) SmokingHistoryClasses() []string {
	return e.smokingClasses
}

// EncodeGender maps a gender label to its integer code
func (e *Encoders) EncodeGender(label string) (int, bool) {
	code, ok := e.genderCodes[label]
	return code, ok
}

// EncodeSmokingHistory maps a smoking history label to its integer code
func (e *Encoders) EncodeSmokingHistory(label string) (int, bool) {
	code, ok := e.smokingCodes[label]
	return code, ok
}
