package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-f/statement-resolver/internal/common"
	"github.com/calder-f/statement-resolver/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	storage, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, storage.Migrate(context.Background()))
	return storage
}

func TestMigrate_Idempotent(t *testing.T) {
	storage := createTestStorage(t)

	// Running migrations again on an up-to-date database is a no-op.
	require.NoError(t, storage.Migrate(context.Background()))

	var current int
	err := storage.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, current)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.Error(t, err)
}

func TestCorrectionRoundTrip(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	correction := &model.Correction{
		ISIN:           "XS2530201644",
		Field:          model.CorrectionFieldMarketValue,
		CorrectedValue: 199080,
		Notes:          "statement page 3",
	}
	require.NoError(t, storage.SaveCorrection(ctx, correction))

	got, err := storage.GetCorrection(ctx, "XS2530201644")
	require.NoError(t, err)
	assert.Equal(t, correction.ISIN, got.ISIN)
	assert.Equal(t, correction.Field, got.Field)
	assert.InDelta(t, correction.CorrectedValue, got.CorrectedValue, 0.001)
	assert.Equal(t, correction.Notes, got.Notes)
}

func TestGetCorrection_NotFound(t *testing.T) {
	storage := createTestStorage(t)

	_, err := storage.GetCorrection(context.Background(), "XS9999999999")
	assert.ErrorIs(t, err, common.ErrCorrectionNotFound)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveCorrection_UpsertKeepsOneRowPerISIN(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveCorrection(ctx, &model.Correction{
		ISIN:           "XS2530201644",
		Field:          model.CorrectionFieldMarketValue,
		CorrectedValue: 199080,
	}))
	require.NoError(t, storage.SaveCorrection(ctx, &model.Correction{
		ISIN:           "XS2530201644",
		Field:          model.CorrectionFieldMarketValue,
		CorrectedValue: 200500,
	}))

	all, err := storage.Corrections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.InDelta(t, 200500, all[0].CorrectedValue, 0.001)

	// Both writes remain in the audit history.
	var count int
	require.NoError(t, storage.db.QueryRow(
		`SELECT COUNT(*) FROM correction_history WHERE isin = ?`, "XS2530201644").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestCorrections_SnapshotOrderedByISIN(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	for _, isin := range []string{"US0378331005", "CH0244767585", "XS2530201644"} {
		require.NoError(t, storage.SaveCorrection(ctx, &model.Correction{
			ISIN:           isin,
			Field:          model.CorrectionFieldMarketValue,
			CorrectedValue: 1000,
		}))
	}

	all, err := storage.Corrections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "CH0244767585", all[0].ISIN)
	assert.Equal(t, "US0378331005", all[1].ISIN)
	assert.Equal(t, "XS2530201644", all[2].ISIN)
}

func TestDeleteCorrection(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveCorrection(ctx, &model.Correction{
		ISIN:           "XS2530201644",
		Field:          model.CorrectionFieldMarketValue,
		CorrectedValue: 199080,
	}))
	require.NoError(t, storage.DeleteCorrection(ctx, "XS2530201644"))

	_, err := storage.GetCorrection(ctx, "XS2530201644")
	assert.ErrorIs(t, err, common.ErrCorrectionNotFound)

	err = storage.DeleteCorrection(ctx, "XS2530201644")
	assert.ErrorIs(t, err, common.ErrCorrectionNotFound)
}

func TestSaveLearnedValue_VersionBumpsOnUpdate(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveLearnedValue(ctx, &model.LearnedValue{
		ISIN:   "XS2530201644",
		Value:  199080,
		Source: "manual",
	}))
	require.NoError(t, storage.SaveLearnedValue(ctx, &model.LearnedValue{
		ISIN:   "XS2530201644",
		Value:  200500,
		Source: "manual",
	}))

	all, err := storage.LearnedValues(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.InDelta(t, 200500, all[0].Value, 0.001)
	assert.Equal(t, 2, all[0].Version)
	assert.Equal(t, "manual", all[0].Source)
}

func TestSaveCorrection_Validation(t *testing.T) {
	storage := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		correction *model.Correction
	}{
		{name: "nil correction", correction: nil},
		{name: "missing isin", correction: &model.Correction{Field: model.CorrectionFieldMarketValue, CorrectedValue: 1}},
		{name: "missing field", correction: &model.Correction{ISIN: "XS2530201644"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, storage.SaveCorrection(ctx, tt.correction))
		})
	}
}
