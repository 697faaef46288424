// Package window assembles the bounded token neighborhood around a security
// identifier.
package window

import (
	"github.com/calder-f/statement-resolver/internal/model"
)

// Config holds the window radii. Statements commonly spread one security
// over several rows (currency/quantity line, ISIN line, maturity/coupon
// lines), so the line radius trades precision for recall; false positives
// are resolved downstream by the classifier.
type Config struct {
	// LineRadius is the number of lines included on each side of the
	// identifier's first occurrence.
	LineRadius int
	// CharRadius is the byte distance included on each side.
	CharRadius int
}

// DefaultConfig returns the default window radii.
func DefaultConfig() Config {
	return Config{
		LineRadius: 15,
		CharRadius: 600,
	}
}

// Builder produces context windows from a full token stream.
type Builder struct {
	cfg Config
}

// NewBuilder creates a Builder with the given radii.
func NewBuilder(cfg Config) *Builder {
	if cfg.LineRadius <= 0 {
		cfg.LineRadius = DefaultConfig().LineRadius
	}
	if cfg.CharRadius <= 0 {
		cfg.CharRadius = DefaultConfig().CharRadius
	}
	return &Builder{cfg: cfg}
}

// Build returns the tokens within the configured line or character radius
// of the identifier's first occurrence. Document boundaries clip the window
// without error; an identifier at the top or bottom of the document simply
// gets a smaller window.
func (b *Builder) Build(id model.SecurityIdentifier, tokens []model.Token) []model.Token {
	var out []model.Token
	for _, tok := range tokens {
		if abs(tok.Line-id.FirstLine) <= b.cfg.LineRadius ||
			abs(tok.Position-id.FirstOccurrence) <= b.cfg.CharRadius {
			out = append(out, tok)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
