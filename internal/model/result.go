package model

// ValidationStatus summarizes the portfolio cross-check outcome.
type ValidationStatus string

// Validation status constants.
const (
	ValidationPass ValidationStatus = "PASS"
	ValidationWarn ValidationStatus = "WARN"
	ValidationFail ValidationStatus = "FAIL"
)

// PortfolioValidation is the validator's report for one document.
type PortfolioValidation struct {
	Status        ValidationStatus `json:"status"`
	DeclaredTotal *float64         `json:"declared"` // nil when no total was found
	ComputedTotal float64          `json:"computed"`
	DeltaPercent  float64          `json:"deltaPercent"`
}

// Diagnostic is a non-fatal observation accumulated while processing.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Result is the structured output of one document-processing pass.
type Result struct {
	RunID          string              `json:"runId"`
	Securities     []ResolvedSecurity  `json:"securities"`
	PortfolioTotal PortfolioValidation `json:"portfolioTotal"`
	// Unresolved lists identifiers found in the document for which no
	// confident value could be selected.
	Unresolved  []string     `json:"unresolved"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// ComputedSum returns the sum of all resolved market values.
func (r *Result) ComputedSum() float64 {
	var sum float64
	for _, s := range r.Securities {
		sum += s.MarketValue
	}
	return sum
}
