package storage

import (
	"context"
	"fmt"

	"github.com/calder-f/statement-resolver/internal/model"
)

// SaveLearnedValue upserts a confirmed value for an ISIN, bumping the
// version counter on every update.
func (s *SQLiteStorage) SaveLearnedValue(ctx context.Context, learned *model.LearnedValue) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLearnedValue(learned); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learned_values (isin, value, version, source, updated_at)
		VALUES (?, ?, 1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(isin) DO UPDATE SET
			value = excluded.value,
			version = learned_values.version + 1,
			source = excluded.source,
			updated_at = CURRENT_TIMESTAMP
	`, learned.ISIN, learned.Value, learned.Source)
	if err != nil {
		return fmt.Errorf("failed to save learned value: %w", err)
	}
	return nil
}

// LearnedValues returns a consistent snapshot of the learning store.
func (s *SQLiteStorage) LearnedValues(ctx context.Context) ([]model.LearnedValue, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT isin, value, version, source FROM learned_values ORDER BY isin
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list learned values: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.LearnedValue
	for rows.Next() {
		var lv model.LearnedValue
		if err := rows.Scan(&lv.ISIN, &lv.Value, &lv.Version, &lv.Source); err != nil {
			return nil, fmt.Errorf("failed to scan learned value: %w", err)
		}
		out = append(out, lv)
	}
	return out, rows.Err()
}
