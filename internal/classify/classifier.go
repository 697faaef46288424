// Package classify assigns a semantic class to each numeric candidate found
// in a security's context window.
package classify

import (
	"math"
	"sort"

	"github.com/calder-f/statement-resolver/internal/model"
)

// Config holds the classifier tunables.
type Config struct {
	// KeywordProximity is the maximum byte distance between a number and a
	// keyword for the keyword to count as context.
	KeywordProximity int
	// PlausibleMin/PlausibleMax bound the magnitude range of a single
	// security position for the low-confidence fallback.
	PlausibleMin float64
	PlausibleMax float64
	// TotalTolerance is the relative tolerance for treating a candidate as
	// equal to the detected portfolio total.
	TotalTolerance float64
	// P95Factor scales the document's 95th-percentile magnitude; candidates
	// above p95*P95Factor are summary totals on magnitude alone.
	P95Factor float64
	// CouponMax is the highest percentage still read as a coupon rate.
	CouponMax float64
	Rules     []Rule
}

// DefaultConfig returns the classifier defaults.
func DefaultConfig() Config {
	return Config{
		KeywordProximity: 50,
		PlausibleMin:     1_000,
		PlausibleMax:     10_000_000,
		TotalTolerance:   0.005,
		P95Factor:        1.5,
		CouponMax:        15,
		Rules:            DefaultRules(),
	}
}

// Classifier turns window tokens into classified value candidates.
type Classifier struct {
	cfg   Config
	rules []Rule
}

// New creates a Classifier. Rules are evaluated in descending priority.
func New(cfg Config) *Classifier {
	if len(cfg.Rules) == 0 {
		cfg.Rules = DefaultRules()
	}
	rules := make([]Rule, len(cfg.Rules))
	copy(rules, cfg.Rules)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return &Classifier{cfg: cfg, rules: rules}
}

// Classify produces one ValueCandidate per Number token in the window.
// docTotal, when non-nil, is the detected portfolio total: any candidate
// matching it within tolerance is force-classified as a summary total so a
// document total can never be attributed to an individual security. p95 is
// the 95th-percentile magnitude across all Number tokens in the document.
func (c *Classifier) Classify(id model.SecurityIdentifier, window []model.Token, docTotal *float64, p95 float64) []model.ValueCandidate {
	var out []model.ValueCandidate
	for _, tok := range window {
		if tok.Kind != model.TokenNumber {
			continue
		}
		class, conf, rule := c.classifyToken(tok, id, window, docTotal, p95)
		out = append(out, model.ValueCandidate{
			Security:     id.Code,
			Value:        tok.Value,
			LineDistance: abs(tok.Line - id.FirstLine),
			CharDistance: abs(tok.Position - id.FirstOccurrence),
			Class:        class,
			Confidence:   conf,
			RuleName:     rule,
		})
	}
	return out
}

func (c *Classifier) classifyToken(tok model.Token, id model.SecurityIdentifier, window []model.Token, docTotal *float64, p95 float64) (model.SemanticClass, float64, string) {
	// Total guard runs before every rule: a value equal to the detected
	// portfolio total is a summary figure no matter what surrounds it.
	if docTotal != nil && withinTolerance(tok.Value, *docTotal, c.cfg.TotalTolerance) {
		return model.ClassSummaryTotal, 0.99, "portfolio total guard"
	}

	for _, rule := range c.rules {
		if dist, sameLine, ok := c.nearestKeyword(tok, window, rule.Keywords); ok && dist <= c.cfg.KeywordProximity {
			conf := rule.Confidence
			if sameLine {
				conf = math.Min(conf+0.05, 1.0)
			}
			return rule.Class, conf, rule.Name
		}

		// Structural companions evaluated at the owning rule's priority.
		switch rule.Class {
		case model.ClassNominal:
			if c.looksLikeNominal(tok, window) {
				return model.ClassNominal, 0.90, "currency amount with coupon rate"
			}
		case model.ClassSummaryTotal:
			if c.looksLikeTotal(tok, window, p95) {
				return model.ClassSummaryTotal, 0.85, "summary total magnitude"
			}
		}
	}

	if tok.Value >= c.cfg.PlausibleMin && tok.Value <= c.cfg.PlausibleMax {
		conf := 0.5
		if tok.Line == id.FirstLine {
			conf = 0.6
		}
		return model.ClassMarketValue, conf, "plausible magnitude fallback"
	}

	return model.ClassUnrelated, 0.2, "no contextual evidence"
}

// nearestKeyword finds the closest Keyword token whose code is in codes,
// returning its byte distance and whether it shares the number's line.
func (c *Classifier) nearestKeyword(tok model.Token, window []model.Token, codes []string) (dist int, sameLine, ok bool) {
	want := make(map[string]bool, len(codes))
	for _, code := range codes {
		want[code] = true
	}

	best := -1
	for _, kw := range window {
		if kw.Kind != model.TokenKeyword || !want[kw.Code] {
			continue
		}
		d := abs(kw.Position - tok.Position)
		if best < 0 || d < best {
			best = d
			sameLine = kw.Line == tok.Line
		}
	}
	if best < 0 {
		return 0, false, false
	}
	return best, sameLine, true
}

// looksLikeNominal detects the <currency><amount> <coupon%> row shape
// ("USD200'000 0.25%"): a currency token ending at the number's start and a
// coupon-sized percentage shortly after the number.
func (c *Classifier) looksLikeNominal(tok model.Token, window []model.Token) bool {
	end := tok.Position + len(tok.Raw)

	var fusedCurrency bool
	for _, cur := range window {
		if cur.Kind != model.TokenCurrency || cur.Line != tok.Line {
			continue
		}
		gap := tok.Position - (cur.Position + len(cur.Raw))
		if gap >= 0 && gap <= 1 {
			fusedCurrency = true
			break
		}
	}
	if !fusedCurrency {
		return false
	}

	for _, pct := range window {
		if pct.Kind != model.TokenPercentage || pct.Line != tok.Line {
			continue
		}
		gap := pct.Position - end
		if gap >= 0 && gap <= 20 && pct.Value > 0 && pct.Value <= c.cfg.CouponMax {
			return true
		}
	}
	return false
}

// looksLikeTotal detects summary figures without a keyword: either a
// "100.00%" allocation marker nearby, or a magnitude far beyond the 95th
// percentile of the document's numbers.
func (c *Classifier) looksLikeTotal(tok model.Token, window []model.Token, p95 float64) bool {
	for _, pct := range window {
		if pct.Kind != model.TokenPercentage {
			continue
		}
		if math.Abs(pct.Value-100) < 0.001 && abs(pct.Position-tok.Position) <= c.cfg.KeywordProximity {
			return true
		}
	}
	return p95 > 0 && tok.Value > p95*c.cfg.P95Factor
}

// Percentile95 computes the 95th-percentile magnitude over all Number
// tokens in the stream. Zero when the document has no numbers.
func Percentile95(tokens []model.Token) float64 {
	var values []float64
	for _, tok := range tokens {
		if tok.Kind == model.TokenNumber {
			values = append(values, tok.Value)
		}
	}
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	idx := int(math.Ceil(0.95*float64(len(values)))) - 1
	if idx < 0 {
		idx = 0
	}
	return values[idx]
}

func withinTolerance(a, b, tol float64) bool {
	if b == 0 {
		return a == 0
	}
	return math.Abs(a-b) <= math.Abs(b)*tol
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
