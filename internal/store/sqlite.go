package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glucoscholar-server/internal/domain"
)

// timestampLayout is the format predictions timestamps are stored in, so
// that SQLite's date() function can bucket them for range queries.
const timestampLayout = "2006-01-02 15:04:05"

// SQLiteStore implements the RecordStore interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite prediction store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the predictions table and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS predictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		gender TEXT NOT NULL,
		age REAL NOT NULL,
		hypertension INTEGER NOT NULL,
		heart_disease INTEGER NOT NULL,
		smoking_history TEXT NOT NULL,
		bmi REAL NOT NULL,
		HbA1c_level REAL NOT NULL,
		blood_glucose_level REAL NOT NULL,
		prediction_result TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_timestamp ON predictions(timestamp);
	`

	_, err := db.Exec(schema)
	return err
}

// Append persists one prediction outcome and sets its ID. Rows are only
// ever inserted, never updated or deleted.
func (s *SQLiteStore) Append(ctx context.Context, outcome *domain.PredictionOutcome) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (
			gender, age, hypertension, heart_disease,
			smoking_history, bmi, HbA1c_level, blood_glucose_level,
			prediction_result, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		outcome.Patient.Gender,
		outcome.Patient.Age,
		outcome.Patient.Hypertension,
		outcome.Patient.HeartDisease,
		outcome.Patient.SmokingHistory,
		outcome.Patient.BMI,
		outcome.Patient.HbA1cLevel,
		outcome.Patient.BloodGlucoseLevel,
		outcome.Result,
		outcome.Timestamp.Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	outcome.ID = id

	return nil
}

// QueryRange returns all predictions whose timestamp date falls within the
// inclusive [start, end] range, in insertion order.
func (s *SQLiteStore) QueryRange(ctx context.Context, start, end time.Time) ([]domain.PredictionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, gender, age, hypertension, heart_disease,
			smoking_history, bmi, HbA1c_level, blood_glucose_level,
			prediction_result, timestamp
		FROM predictions
		WHERE date(timestamp) BETWEEN ? AND ?
		ORDER BY id
	`, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var result []domain.PredictionRow
	for rows.Next() {
		row, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanPrediction scans a row into a PredictionRow struct.
func scanPrediction(s scanner) (domain.PredictionRow, error) {
	var row domain.PredictionRow
	var ts string

	err := s.Scan(
		&row.ID, &row.Gender, &row.Age, &row.Hypertension, &row.HeartDisease,
		&row.SmokingHistory, &row.BMI, &row.HbA1cLevel, &row.BloodGlucoseLevel,
		&row.PredictionResult, &ts,
	)
	if err != nil {
		return row, err
	}

	// modernc.org/sqlite may hand back the raw stored string or an
	// RFC 3339 form depending on how the value was written.
	for _, layout := range []string{timestampLayout, time.RFC3339} {
		if parsed, perr := time.Parse(layout, ts); perr == nil {
			row.Timestamp = parsed
			break
		}
	}

	return row, nil
}

// Count returns the total number of stored predictions.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM predictions").Scan(&count)
	return count, err
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
