package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucoscholar-server/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "predictions.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func outcomeAt(ts time.Time, result string) *domain.PredictionOutcome {
	return &domain.PredictionOutcome{
		Patient: domain.PatientRecord{
			Gender:            "Female",
			Age:               45,
			Hypertension:      0,
			HeartDisease:      0,
			SmokingHistory:    "Never",
			BMI:               22.5,
			HbA1cLevel:        5.5,
			BloodGlucoseLevel: 90,
		},
		Prediction: domain.LabelNotDiabetic,
		Result:     result,
		Timestamp:  ts,
	}
}

func TestSQLiteStore_AppendAssignsIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := outcomeAt(time.Now(), domain.ResultNotDiabetic)
	second := outcomeAt(time.Now(), domain.ResultDiabetic)

	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSQLiteStore_QueryRangeInclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 12, 0, 0, 0, time.UTC)
	}

	require.NoError(t, s.Append(ctx, outcomeAt(day(1), domain.ResultNotDiabetic)))
	require.NoError(t, s.Append(ctx, outcomeAt(day(5), domain.ResultDiabetic)))
	require.NoError(t, s.Append(ctx, outcomeAt(day(10), domain.ResultNotDiabetic)))
	require.NoError(t, s.Append(ctx, outcomeAt(day(15), domain.ResultDiabetic)))

	// Boundary days are included on both ends
	rows, err := s.QueryRange(ctx, day(5), day(10))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].ID)
	assert.Equal(t, int64(3), rows[1].ID)
	assert.Equal(t, domain.ResultDiabetic, rows[0].PredictionResult)

	// Whole month, insertion order preserved
	rows, err = s.QueryRange(ctx, day(1), day(31))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.Equal(t, int64(i+1), row.ID)
	}
}

func TestSQLiteStore_QueryRangeEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, outcomeAt(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), domain.ResultNotDiabetic)))

	rows, err := s.QueryRange(ctx,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteStore_RowSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	outcome := outcomeAt(time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC), domain.ResultDiabetic)
	outcome.Patient.Gender = "Male"
	outcome.Patient.BMI = 31.2
	outcome.Patient.HbA1cLevel = 7.1
	require.NoError(t, s.Append(ctx, outcome))

	rows, err := s.QueryRange(ctx,
		time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Male", row.Gender)
	assert.Equal(t, 31.2, row.BMI)
	assert.Equal(t, 7.1, row.HbA1cLevel)
	assert.Equal(t, domain.ResultDiabetic, row.PredictionResult)
	assert.Equal(t, 2026, row.Timestamp.Year())
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "predictions.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, outcomeAt(time.Now(), domain.ResultNotDiabetic)))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
