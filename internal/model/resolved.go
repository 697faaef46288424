package model

// SelectionMethod records which rule chose a security's final value.
type SelectionMethod string

// Selection method constants.
const (
	SelectedMarketValue     SelectionMethod = "MARKET_VALUE"
	SelectedNominalFallback SelectionMethod = "NOMINAL_FALLBACK"
	SelectedAccruedFallback SelectionMethod = "ACCRUED_FALLBACK"
	SelectedOutlierFallback SelectionMethod = "OUTLIER_FALLBACK"
	SelectedHumanCorrection SelectionMethod = "HUMAN_CORRECTION"
)

// ResolvedSecurity is the final output record for one security. It is
// created once per processing pass and never mutated afterwards, except by
// an explicit human-correction override applied before output.
type ResolvedSecurity struct {
	ISIN            string          `json:"isin"`
	Name            string          `json:"name"`
	MarketValue     float64         `json:"marketValue"`
	Currency        string          `json:"currency"`
	Confidence      float64         `json:"confidence"`
	SelectionMethod SelectionMethod `json:"selectionMethod"`
}

// Correction is a human-supplied override for one resolved security,
// applied as a final patch pass keyed by ISIN.
type Correction struct {
	ISIN           string  `json:"isin"`
	Field          string  `json:"field"` // "marketValue" or "name"
	CorrectedValue float64 `json:"correctedValue,omitempty"`
	CorrectedName  string  `json:"correctedName,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// Correction field names.
const (
	CorrectionFieldMarketValue = "marketValue"
	CorrectionFieldName        = "name"
)

// LearnedValue is one entry of the keyword-learning store: a per-ISIN value
// confirmed by a past correction, carried across runs with a version counter.
type LearnedValue struct {
	ISIN    string
	Value   float64
	Version int
	Source  string // where the confirmation came from (run ID or "manual")
}
