package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calder-f/statement-resolver/internal/common"
	"github.com/calder-f/statement-resolver/internal/model"
)

// SaveCorrection inserts or replaces a correction and appends it to the
// audit history.
func (s *SQLiteStorage) SaveCorrection(ctx context.Context, correction *model.Correction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCorrection(correction); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO corrections (isin, field, corrected_value, corrected_name, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(isin) DO UPDATE SET
			field = excluded.field,
			corrected_value = excluded.corrected_value,
			corrected_name = excluded.corrected_name,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP
	`, correction.ISIN, correction.Field, correction.CorrectedValue, correction.CorrectedName, correction.Notes); err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO correction_history (isin, field, corrected_value, corrected_name, notes)
		VALUES (?, ?, ?, ?, ?)
	`, correction.ISIN, correction.Field, correction.CorrectedValue, correction.CorrectedName, correction.Notes); err != nil {
		return fmt.Errorf("failed to record correction history: %w", err)
	}

	return tx.Commit()
}

// GetCorrection fetches the correction for one ISIN.
func (s *SQLiteStorage) GetCorrection(ctx context.Context, isin string) (*model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(isin, "isin"); err != nil {
		return nil, err
	}

	var c model.Correction
	err := s.db.QueryRowContext(ctx, `
		SELECT isin, field, corrected_value, corrected_name, notes
		FROM corrections WHERE isin = ?
	`, isin).Scan(&c.ISIN, &c.Field, &c.CorrectedValue, &c.CorrectedName, &c.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrCorrectionNotFound, isin)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get correction: %w", err)
	}
	return &c, nil
}

// Corrections returns a consistent snapshot of all corrections, ordered by
// ISIN. A single query gives snapshot semantics under SQLite's isolation;
// concurrent writes are never partially visible to one run.
func (s *SQLiteStorage) Corrections(ctx context.Context) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT isin, field, corrected_value, corrected_name, notes
		FROM corrections ORDER BY isin
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Correction
	for rows.Next() {
		var c model.Correction
		if err := rows.Scan(&c.ISIN, &c.Field, &c.CorrectedValue, &c.CorrectedName, &c.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCorrection removes the correction for one ISIN.
func (s *SQLiteStorage) DeleteCorrection(ctx context.Context, isin string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(isin, "isin"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM corrections WHERE isin = ?`, isin)
	if err != nil {
		return fmt.Errorf("failed to delete correction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", common.ErrCorrectionNotFound, isin)
	}
	return nil
}
