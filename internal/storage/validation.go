package storage

import (
	"context"
	"fmt"

	"github.com/calder-f/statement-resolver/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

func validateCorrection(c *model.Correction) error {
	if c == nil {
		return fmt.Errorf("correction cannot be nil")
	}
	if err := validateString(c.ISIN, "isin"); err != nil {
		return err
	}
	switch c.Field {
	case model.CorrectionFieldMarketValue:
		if c.CorrectedValue <= 0 {
			return fmt.Errorf("corrected value must be positive")
		}
	case model.CorrectionFieldName:
		if err := validateString(c.CorrectedName, "corrected name"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown correction field %q", c.Field)
	}
	return nil
}

func validateLearnedValue(lv *model.LearnedValue) error {
	if lv == nil {
		return fmt.Errorf("learned value cannot be nil")
	}
	if err := validateString(lv.ISIN, "isin"); err != nil {
		return err
	}
	if lv.Value <= 0 {
		return fmt.Errorf("learned value must be positive")
	}
	return nil
}
