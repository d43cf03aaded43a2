package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/glucoscholar-server/internal/domain"
)

// PostgresStore implements the RecordStore interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL prediction store.
// It expects the database and schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL prediction store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Append persists one prediction outcome and sets its ID.
func (s *PostgresStore) Append(ctx context.Context, outcome *domain.PredictionOutcome) error {
	query := `
		INSERT INTO predictions (
			gender, age, hypertension, heart_disease,
			smoking_history, bmi, hba1c_level, blood_glucose_level,
			prediction_result, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		outcome.Patient.Gender,
		outcome.Patient.Age,
		outcome.Patient.Hypertension,
		outcome.Patient.HeartDisease,
		outcome.Patient.SmokingHistory,
		outcome.Patient.BMI,
		outcome.Patient.HbA1cLevel,
		outcome.Patient.BloodGlucoseLevel,
		outcome.Result,
		outcome.Timestamp,
	).Scan(&outcome.ID)

	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	return nil
}

// QueryRange returns all predictions whose timestamp date falls within the
// inclusive [start, end] range, in insertion order.
func (s *PostgresStore) QueryRange(ctx context.Context, start, end time.Time) ([]domain.PredictionRow, error) {
	query := `
		SELECT id, gender, age, hypertension, heart_disease,
			smoking_history, bmi, hba1c_level, blood_glucose_level,
			prediction_result, timestamp
		FROM predictions
		WHERE timestamp::date BETWEEN $1 AND $2
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var result []domain.PredictionRow
	for rows.Next() {
		var row domain.PredictionRow
		err := rows.Scan(
			&row.ID, &row.Gender, &row.Age, &row.Hypertension, &row.HeartDisease,
			&row.SmokingHistory, &row.BMI, &row.HbA1cLevel, &row.BloodGlucoseLevel,
			&row.PredictionResult, &row.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// Count returns the total number of stored predictions.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM predictions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return count, nil
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
