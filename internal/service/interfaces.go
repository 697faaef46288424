// Package service defines the interfaces for the resolver's collaborators.
package service

import (
	"context"

	"github.com/calder-f/statement-resolver/internal/model"
)

// Storage defines the contract for the persistence layer backing human
// corrections and the cross-run learning store.
type Storage interface {
	// Correction operations
	SaveCorrection(ctx context.Context, correction *model.Correction) error
	GetCorrection(ctx context.Context, isin string) (*model.Correction, error)
	Corrections(ctx context.Context) ([]model.Correction, error)
	DeleteCorrection(ctx context.Context, isin string) error

	// Learning operations
	SaveLearnedValue(ctx context.Context, learned *model.LearnedValue) error
	LearnedValues(ctx context.Context) ([]model.LearnedValue, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
