// Package resolver orchestrates the statement value resolution pipeline:
// tokenize, window, classify, fuse, validate.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/calder-f/statement-resolver/internal/classify"
	"github.com/calder-f/statement-resolver/internal/common"
	"github.com/calder-f/statement-resolver/internal/fusion"
	"github.com/calder-f/statement-resolver/internal/model"
	"github.com/calder-f/statement-resolver/internal/tokenizer"
	"github.com/calder-f/statement-resolver/internal/validate"
	"github.com/calder-f/statement-resolver/internal/window"
)

// Config aggregates the tunables of every pipeline stage.
type Config struct {
	Tokenizer  tokenizer.Config
	Window     window.Config
	Classifier classify.Config
	Fusion     fusion.Config
	Validator  validate.Config
	// DefaultCurrency is used when the document carries no currency tokens.
	DefaultCurrency string
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Tokenizer:       tokenizer.DefaultConfig(),
		Window:          window.DefaultConfig(),
		Classifier:      classify.DefaultConfig(),
		Fusion:          fusion.DefaultConfig(),
		Validator:       validate.DefaultConfig(),
		DefaultCurrency: "USD",
	}
}

// Resolver runs the full pipeline over one document's extracted text. A
// Resolver is stateless between runs; documents may be processed
// concurrently with independent Resolve calls.
type Resolver struct {
	tok         *tokenizer.Tokenizer
	windows     *window.Builder
	classifier  *classify.Classifier
	selector    *fusion.Selector
	validator   *validate.Validator
	corrections CorrectionStore
	learnings   LearningStore
	cfg         Config
}

// New creates a Resolver. Both stores may be nil, disabling the correction
// patch pass and the learning diagnostics respectively.
func New(cfg Config, corrections CorrectionStore, learnings LearningStore) (*Resolver, error) {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = DefaultConfig().DefaultCurrency
	}
	tok, err := tokenizer.New(cfg.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("failed to build tokenizer: %w", err)
	}
	return &Resolver{
		tok:         tok,
		windows:     window.NewBuilder(cfg.Window),
		classifier:  classify.New(cfg.Classifier),
		selector:    fusion.NewSelector(cfg.Fusion),
		validator:   validate.New(cfg.Validator),
		corrections: corrections,
		learnings:   learnings,
		cfg:         cfg,
	}, nil
}

// Resolve processes one document's text and returns the structured result.
// Per-security failures are recovered locally into the unresolved list;
// only empty or undecodable input is fatal.
func (r *Resolver) Resolve(ctx context.Context, text string) (*model.Result, error) {
	runID := uuid.NewString()
	slog.Debug("starting resolution run", "run_id", runID, "bytes", len(text))

	tokens, diags, err := r.tok.Tokenize(text)
	if err != nil {
		return nil, err
	}

	ids := tokenizer.Identifiers(tokens)
	majority := tokenizer.MajorityCurrency(tokens, r.cfg.DefaultCurrency)
	docTotal := r.validator.DetectTotal(tokens)
	p95 := classify.Percentile95(tokens)
	lines := strings.Split(text, "\n")

	result := &model.Result{
		RunID:       runID,
		Diagnostics: diags,
	}

	for _, id := range ids {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		win := r.windows.Build(id, tokens)
		candidates := r.classifier.Classify(id, win, docTotal, p95)

		sel, err := r.selector.Select(candidates)
		if err != nil {
			if !errors.Is(err, common.ErrNoCandidateFound) {
				return nil, fmt.Errorf("selection failed for %s: %w", id.Code, err)
			}
			result.Unresolved = append(result.Unresolved, id.Code)
			result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
				Stage:   "fusion",
				Message: fmt.Sprintf("no viable value candidate for %s", id.Code),
				Line:    id.FirstLine,
			})
			continue
		}

		result.Securities = append(result.Securities, model.ResolvedSecurity{
			ISIN:            id.Code,
			Name:            nameFromContext(lines, id),
			MarketValue:     sel.Candidate.Value,
			Currency:        nearestCurrency(win, id, majority),
			Confidence:      sel.Confidence,
			SelectionMethod: sel.Method,
		})
	}

	if err := r.applyCorrections(ctx, result); err != nil {
		return nil, err
	}
	if err := r.compareLearned(ctx, result); err != nil {
		return nil, err
	}

	result.PortfolioTotal = r.validator.Validate(result.ComputedSum(), docTotal)
	if result.PortfolioTotal.Status == model.ValidationFail {
		slog.Warn("portfolio validation failed",
			"run_id", runID,
			"computed", result.PortfolioTotal.ComputedTotal,
			"delta_percent", result.PortfolioTotal.DeltaPercent)
	}

	slog.Info("resolution run complete",
		"run_id", runID,
		"securities", len(result.Securities),
		"unresolved", len(result.Unresolved),
		"status", result.PortfolioTotal.Status)
	return result, nil
}

// applyCorrections patches resolved securities with human overrides, keyed
// by ISIN. Corrections are the final word: they set full confidence and the
// audit trail records the human source.
func (r *Resolver) applyCorrections(ctx context.Context, result *model.Result) error {
	if r.corrections == nil {
		return nil
	}
	corrections, err := r.corrections.Corrections(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corrections: %w", err)
	}
	byISIN := make(map[string]model.Correction, len(corrections))
	for _, c := range corrections {
		byISIN[c.ISIN] = c
	}

	for i := range result.Securities {
		c, ok := byISIN[result.Securities[i].ISIN]
		if !ok {
			continue
		}
		switch c.Field {
		case model.CorrectionFieldMarketValue:
			result.Securities[i].MarketValue = c.CorrectedValue
			result.Securities[i].Confidence = 1.0
			result.Securities[i].SelectionMethod = model.SelectedHumanCorrection
		case model.CorrectionFieldName:
			result.Securities[i].Name = c.CorrectedName
		}
	}
	return nil
}

// compareLearned surfaces agreement or disagreement with previously
// confirmed values. Learned values never replace computed ones.
func (r *Resolver) compareLearned(ctx context.Context, result *model.Result) error {
	if r.learnings == nil {
		return nil
	}
	learned, err := r.learnings.LearnedValues(ctx)
	if err != nil {
		return fmt.Errorf("failed to load learned values: %w", err)
	}
	byISIN := make(map[string]model.LearnedValue, len(learned))
	for _, lv := range learned {
		byISIN[lv.ISIN] = lv
	}

	for _, sec := range result.Securities {
		lv, ok := byISIN[sec.ISIN]
		if !ok || lv.Value == 0 {
			continue
		}
		if math.Abs(sec.MarketValue-lv.Value)/lv.Value > 0.005 {
			result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
				Stage: "learning",
				Message: fmt.Sprintf("%s resolved to %.2f but a confirmed value %.2f (v%d) exists",
					sec.ISIN, sec.MarketValue, lv.Value, lv.Version),
			})
		}
	}
	return nil
}

// nearestCurrency picks the currency token closest to the identifier, or
// the document majority when the window has none.
func nearestCurrency(win []model.Token, id model.SecurityIdentifier, fallback string) string {
	best, bestDist := fallback, -1
	for _, tok := range win {
		if tok.Kind != model.TokenCurrency {
			continue
		}
		d := tok.Position - id.FirstOccurrence
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = tok.Code, d
		}
	}
	return best
}
