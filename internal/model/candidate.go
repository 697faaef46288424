package model

// SemanticClass is the meaning assigned to a numeric candidate by the
// classifier.
type SemanticClass string

// Semantic class constants.
const (
	ClassMarketValue     SemanticClass = "MARKET_VALUE"
	ClassNominal         SemanticClass = "NOMINAL"
	ClassAccruedInterest SemanticClass = "ACCRUED_INTEREST"
	ClassSummaryTotal    SemanticClass = "SUMMARY_TOTAL"
	ClassUnrelated       SemanticClass = "UNRELATED"
)

// ValueCandidate is a numeric token considered as a possible value for one
// security. Confidence reflects the strength of the contextual evidence, not
// a learned probability.
type ValueCandidate struct {
	Security     string // identifier code this candidate belongs to
	Value        float64
	LineDistance int // absolute line distance from the identifier
	CharDistance int // absolute byte distance from the identifier
	Class        SemanticClass
	Confidence   float64 // 0.0-1.0
	RuleName     string  // classifier rule that produced the class
}
