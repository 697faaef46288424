// Package fusion combines classified value candidates into a single selected
// value per security.
package fusion

import (
	"fmt"
	"math"
	"sort"

	"github.com/calder-f/statement-resolver/internal/common"
	"github.com/calder-f/statement-resolver/internal/model"
)

// Config holds the fusion tunables.
type Config struct {
	// ZScoreThreshold is the median-centered z-score above which a
	// same-class candidate is discarded as an outlier.
	ZScoreThreshold float64
	// ClassWeight is the weight of the selected candidate's class
	// confidence in the composite; the remainder weighs statistical
	// consistency across same-class candidates.
	ClassWeight float64
}

// DefaultConfig returns the fusion defaults.
func DefaultConfig() Config {
	return Config{
		ZScoreThreshold: 2.0,
		ClassWeight:     0.7,
	}
}

// Selection is the outcome of fusing one security's candidates.
type Selection struct {
	Candidate  model.ValueCandidate
	Confidence float64
	Method     model.SelectionMethod
	Considered int
	Discarded  int
}

// Selector implements candidate fusion. It is deterministic: identical
// candidate sets always produce identical selections.
type Selector struct {
	cfg Config
}

// NewSelector creates a Selector with the given configuration.
func NewSelector(cfg Config) *Selector {
	if cfg.ZScoreThreshold <= 0 {
		cfg.ZScoreThreshold = DefaultConfig().ZScoreThreshold
	}
	if cfg.ClassWeight <= 0 || cfg.ClassWeight > 1 {
		cfg.ClassWeight = DefaultConfig().ClassWeight
	}
	return &Selector{cfg: cfg}
}

// Select fuses the classified candidates for one security into at most one
// value. Unrelated and summary-total candidates are filtered first; market
// values are preferred over nominals and accrued interest. Returns
// common.ErrNoCandidateFound when nothing viable remains.
func (s *Selector) Select(candidates []model.ValueCandidate) (*Selection, error) {
	viable := filterViable(candidates)
	if len(viable) == 0 {
		return nil, fmt.Errorf("%w: %d candidates, none viable", common.ErrNoCandidateFound, len(candidates))
	}

	class, method := preferredClass(viable)
	sameClass := byClass(viable, class)

	survivors, discarded := s.rejectOutliers(sameClass)
	if len(survivors) == 0 {
		// Never return zero when at least one candidate exists: fall back
		// to the highest-confidence candidate of the class.
		best := bestByConfidence(sameClass)
		return &Selection{
			Candidate:  best,
			Confidence: s.composite(best, sameClass),
			Method:     model.SelectedOutlierFallback,
			Considered: len(candidates),
			Discarded:  len(sameClass) - 1,
		}, nil
	}

	// Highest class confidence wins, proximity only breaks ties: ordering
	// by distance first would let a closer low-confidence candidate
	// displace a stronger one the moment it appears, so selections would
	// not be stable as candidates accumulate. Ties break on row locality
	// first (a value on the identifier's own line beats a byte-closer
	// value on a neighboring row), then byte distance, then the value
	// itself for full determinism.
	sort.SliceStable(survivors, func(i, j int) bool {
		if survivors[i].Confidence != survivors[j].Confidence {
			return survivors[i].Confidence > survivors[j].Confidence
		}
		if survivors[i].LineDistance != survivors[j].LineDistance {
			return survivors[i].LineDistance < survivors[j].LineDistance
		}
		if survivors[i].CharDistance != survivors[j].CharDistance {
			return survivors[i].CharDistance < survivors[j].CharDistance
		}
		return survivors[i].Value < survivors[j].Value
	})
	selected := survivors[0]

	return &Selection{
		Candidate:  selected,
		Confidence: s.composite(selected, sameClass),
		Method:     method,
		Considered: len(candidates),
		Discarded:  discarded,
	}, nil
}

// filterViable drops unrelated and summary-total candidates; a document
// total must never be attributed to an individual security.
func filterViable(candidates []model.ValueCandidate) []model.ValueCandidate {
	var out []model.ValueCandidate
	for _, c := range candidates {
		if c.Class == model.ClassUnrelated || c.Class == model.ClassSummaryTotal {
			continue
		}
		out = append(out, c)
	}
	return out
}

// preferredClass picks the strongest available class in fixed preference
// order and maps it to the audit-trail selection method.
func preferredClass(viable []model.ValueCandidate) (model.SemanticClass, model.SelectionMethod) {
	present := make(map[model.SemanticClass]bool, len(viable))
	for _, c := range viable {
		present[c.Class] = true
	}
	switch {
	case present[model.ClassMarketValue]:
		return model.ClassMarketValue, model.SelectedMarketValue
	case present[model.ClassNominal]:
		return model.ClassNominal, model.SelectedNominalFallback
	default:
		return model.ClassAccruedInterest, model.SelectedAccruedFallback
	}
}

func byClass(candidates []model.ValueCandidate, class model.SemanticClass) []model.ValueCandidate {
	var out []model.ValueCandidate
	for _, c := range candidates {
		if c.Class == class {
			out = append(out, c)
		}
	}
	return out
}

// rejectOutliers discards candidates whose median-centered z-score exceeds
// the threshold. With fewer than three candidates there is no meaningful
// spread to reject against.
func (s *Selector) rejectOutliers(candidates []model.ValueCandidate) (survivors []model.ValueCandidate, discarded int) {
	if len(candidates) < 3 {
		return candidates, 0
	}

	values := make([]float64, len(candidates))
	for i, c := range candidates {
		values[i] = c.Value
	}
	med := median(values)
	sd := stddev(values)
	if sd == 0 {
		return candidates, 0
	}

	for _, c := range candidates {
		if math.Abs(c.Value-med)/sd > s.cfg.ZScoreThreshold {
			discarded++
			continue
		}
		survivors = append(survivors, c)
	}
	return survivors, discarded
}

func bestByConfidence(candidates []model.ValueCandidate) model.ValueCandidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
			continue
		}
		if c.Confidence == best.Confidence &&
			(c.LineDistance < best.LineDistance ||
				(c.LineDistance == best.LineDistance && c.CharDistance < best.CharDistance)) {
			best = c
		}
	}
	return best
}

// composite blends the selected candidate's class confidence with the
// inverse coefficient of variation across all same-class candidates:
// tighter clustering means higher confidence.
func (s *Selector) composite(selected model.ValueCandidate, sameClass []model.ValueCandidate) float64 {
	values := make([]float64, len(sameClass))
	for i, c := range sameClass {
		values[i] = c.Value
	}
	consistency := 1 / (1 + coefficientOfVariation(values))
	conf := s.cfg.ClassWeight*selected.Confidence + (1-s.cfg.ClassWeight)*consistency
	return math.Min(conf, 1.0)
}
