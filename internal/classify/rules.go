package classify

import "github.com/calder-f/statement-resolver/internal/model"

// Rule is one keyword-proximity classification rule. Higher-priority rules
// are checked first; the first matching rule wins.
type Rule struct {
	Name       string
	Class      model.SemanticClass
	Keywords   []string // canonical keyword-token codes that trigger the rule
	Priority   int
	Confidence float64 // base confidence when the rule matches
}

// DefaultRules returns the default classification rule set. The scattered
// per-statement regex variants this replaces all reduce to keyword lists
// and confidences here.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "market value keyword",
			Class:      model.ClassMarketValue,
			Keywords:   []string{"market_value", "countervalue", "current_value"},
			Priority:   100,
			Confidence: 0.90,
		},
		{
			Name:       "nominal keyword",
			Class:      model.ClassNominal,
			Keywords:   []string{"nominal", "face_value", "principal"},
			Priority:   90,
			Confidence: 0.85,
		},
		{
			Name:       "summary total keyword",
			Class:      model.ClassSummaryTotal,
			Keywords:   []string{"total", "portfolio_total"},
			Priority:   80,
			Confidence: 0.85,
		},
		{
			Name:       "accrued interest keyword",
			Class:      model.ClassAccruedInterest,
			Keywords:   []string{"accrued", "interest"},
			Priority:   70,
			Confidence: 0.80,
		},
	}
}
