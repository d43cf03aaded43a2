package domain

import (
	"context"
	"time"
)

// Classifier is the opaque prediction model boundary. It consumes the
// fixed-order 8-element feature vector (gender code, age, hypertension,
// heart disease, smoking code, bmi, HbA1c, glucose) and returns 0 or 1.
type Classifier interface {
	Predict(features []float64) (int, error)
}

// EncoderTable exposes the categorical label sets known to the trained
// model and their integer codes. Read-only for the lifetime of the
// process.
type EncoderTable interface {
	// GenderClasses returns the known gender labels in code order.
	GenderClasses() []string

	// SmokingHistoryClasses returns the known smoking history labels in
	// code order.
	SmokingHistoryClasses() []string

	// EncodeGender maps a gender label to its integer code. The second
	// return value is false when the label is unknown.
	EncodeGender(label string) (int, bool)

	// EncodeSmokingHistory maps a smoking history label to its integer
	// code. The second return value is false when the label is unknown.
	EncodeSmokingHistory(label string) (int, bool)
}

// RecordStore is the append-only log of past predictions. No update or
// delete operations are defined.
type RecordStore interface {
	// Append persists one immutable prediction outcome and assigns its ID.
	Append(ctx context.Context, outcome *PredictionOutcome) error

	// QueryRange returns rows whose timestamp date falls within
	// [start, end] inclusive, in insertion order.
	QueryRange(ctx context.Context, start, end time.Time) ([]PredictionRow, error)

	// Close closes the store and releases resources.
	Close() error
}

// TextExtractor is the OCR boundary: it accepts an image path and returns
// the extracted text or fails with an I/O or decoding error.
type TextExtractor interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// SearchProvider is the web search boundary: it accepts a text query and
// returns an ordered list of URLs. Rate-limited upstreams degrade to a
// fixed default resource list instead of failing.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]string, error)
}
