// Package validate cross-checks resolved securities against the document's
// declared portfolio total.
package validate

import (
	"math"

	"github.com/calder-f/statement-resolver/internal/model"
)

// Config holds the validator thresholds, in percent.
type Config struct {
	PassThreshold float64
	WarnThreshold float64
	// TotalProximity is the maximum byte distance between a total keyword
	// (or a 100.00% marker) and the number it labels.
	TotalProximity int
}

// DefaultConfig returns the validator defaults: PASS at 2%, WARN at 10%.
func DefaultConfig() Config {
	return Config{
		PassThreshold:  2.0,
		WarnThreshold:  10.0,
		TotalProximity: 80,
	}
}

// Validator implements the portfolio total cross-check.
type Validator struct {
	cfg Config
}

// New creates a Validator.
func New(cfg Config) *Validator {
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = DefaultConfig().PassThreshold
	}
	if cfg.WarnThreshold <= cfg.PassThreshold {
		cfg.WarnThreshold = DefaultConfig().WarnThreshold
	}
	if cfg.TotalProximity <= 0 {
		cfg.TotalProximity = DefaultConfig().TotalProximity
	}
	return &Validator{cfg: cfg}
}

// DetectTotal extracts the declared portfolio total from the token stream:
// the largest number labeled by a "total"/"portfolio total" keyword or
// sitting next to a 100.00% allocation marker. Returns nil when the
// document declares no total.
func (v *Validator) DetectTotal(tokens []model.Token) *float64 {
	var best *float64

	consider := func(value float64) {
		if best == nil || value > *best {
			val := value
			best = &val
		}
	}

	for _, tok := range tokens {
		if tok.Kind != model.TokenNumber {
			continue
		}
		for _, label := range tokens {
			switch label.Kind {
			case model.TokenKeyword:
				if label.Code != "total" && label.Code != "portfolio_total" {
					continue
				}
			case model.TokenPercentage:
				if math.Abs(label.Value-100) >= 0.001 {
					continue
				}
			default:
				continue
			}
			if label.Line == tok.Line && abs(label.Position-tok.Position) <= v.cfg.TotalProximity {
				consider(tok.Value)
				break
			}
		}
	}
	return best
}

// Validate compares the computed sum of resolved values against the
// declared total. It only reports; the caller's securities are never
// discarded or auto-corrected, whatever the outcome.
func (v *Validator) Validate(computed float64, declared *float64) model.PortfolioValidation {
	if declared == nil || *declared == 0 {
		return model.PortfolioValidation{
			Status:        model.ValidationFail,
			DeclaredTotal: nil,
			ComputedTotal: computed,
			DeltaPercent:  0,
		}
	}

	delta := math.Abs(computed-*declared) / *declared * 100

	status := model.ValidationFail
	switch {
	case delta <= v.cfg.PassThreshold:
		status = model.ValidationPass
	case delta <= v.cfg.WarnThreshold:
		status = model.ValidationWarn
	}

	return model.PortfolioValidation{
		Status:        status,
		DeclaredTotal: declared,
		ComputedTotal: computed,
		DeltaPercent:  delta,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
