package resolver

import (
	"context"

	"github.com/calder-f/statement-resolver/internal/model"
)

// CorrectionStore supplies human correction overrides. Implementations must
// return a consistent snapshot per call; new corrections written
// concurrently by an annotation interface must never be partially visible
// inside one processing run.
type CorrectionStore interface {
	Corrections(ctx context.Context) ([]model.Correction, error)
}

// LearningStore carries confirmed values across runs. The resolver reads a
// snapshot at the start of a run and only surfaces agreement or
// disagreement in diagnostics; learned values never override computation.
type LearningStore interface {
	LearnedValues(ctx context.Context) ([]model.LearnedValue, error)
}
