package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-f/statement-resolver/internal/common"
	"github.com/calder-f/statement-resolver/internal/model"
)

func candidate(class model.SemanticClass, value, confidence float64, charDist int) model.ValueCandidate {
	return model.ValueCandidate{
		Security:     "XS2530201644",
		Value:        value,
		Class:        class,
		Confidence:   confidence,
		CharDistance: charDist,
	}
}

func TestSelect_PrefersMarketValueOverNominal(t *testing.T) {
	s := NewSelector(DefaultConfig())

	sel, err := s.Select([]model.ValueCandidate{
		candidate(model.ClassNominal, 200000, 0.90, 10),
		candidate(model.ClassMarketValue, 199080, 0.95, 40),
	})
	require.NoError(t, err)
	assert.InDelta(t, 199080, sel.Candidate.Value, 0.001)
	assert.Equal(t, model.SelectedMarketValue, sel.Method)
}

func TestSelect_NominalFallbackWhenNoMarketValue(t *testing.T) {
	s := NewSelector(DefaultConfig())

	sel, err := s.Select([]model.ValueCandidate{
		candidate(model.ClassNominal, 200000, 0.85, 10),
		candidate(model.ClassAccruedInterest, 1520, 0.80, 20),
	})
	require.NoError(t, err)
	assert.InDelta(t, 200000, sel.Candidate.Value, 0.001)
	assert.Equal(t, model.SelectedNominalFallback, sel.Method)
}

func TestSelect_FiltersSummaryTotalsAndUnrelated(t *testing.T) {
	s := NewSelector(DefaultConfig())

	_, err := s.Select([]model.ValueCandidate{
		candidate(model.ClassSummaryTotal, 19464431, 0.99, 5),
		candidate(model.ClassUnrelated, 12, 0.2, 8),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoCandidateFound)
}

func TestSelect_EmptyInput(t *testing.T) {
	s := NewSelector(DefaultConfig())

	_, err := s.Select(nil)
	assert.ErrorIs(t, err, common.ErrNoCandidateFound)
}

func TestSelect_OutlierRejection(t *testing.T) {
	s := NewSelector(DefaultConfig())

	// Five clustered values and one far outlier with the shortest
	// distance: the outlier must not win.
	sel, err := s.Select([]model.ValueCandidate{
		candidate(model.ClassMarketValue, 198000, 0.6, 100),
		candidate(model.ClassMarketValue, 199000, 0.6, 110),
		candidate(model.ClassMarketValue, 199080, 0.9, 120),
		candidate(model.ClassMarketValue, 200000, 0.6, 130),
		candidate(model.ClassMarketValue, 201000, 0.6, 140),
		candidate(model.ClassMarketValue, 9500000, 0.6, 10),
	})
	require.NoError(t, err)
	assert.InDelta(t, 199080, sel.Candidate.Value, 0.001)
	assert.Equal(t, 1, sel.Discarded)
}

func TestSelect_NeverReturnsEmptyWhenCandidatesExist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ZScoreThreshold = 0.000001 // degenerate threshold rejects everything
	s := NewSelector(cfg)

	sel, err := s.Select([]model.ValueCandidate{
		candidate(model.ClassMarketValue, 100000, 0.5, 50),
		candidate(model.ClassMarketValue, 200000, 0.9, 60),
		candidate(model.ClassMarketValue, 300000, 0.6, 70),
		candidate(model.ClassMarketValue, 400000, 0.55, 80),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SelectedOutlierFallback, sel.Method)
	// Falls back to the highest-confidence candidate.
	assert.InDelta(t, 200000, sel.Candidate.Value, 0.001)
}

func TestSelect_Monotonicity(t *testing.T) {
	s := NewSelector(DefaultConfig())

	base := []model.ValueCandidate{
		candidate(model.ClassMarketValue, 199080, 0.95, 120),
		candidate(model.ClassMarketValue, 198500, 0.55, 200),
	}
	before, err := s.Select(base)
	require.NoError(t, err)

	// Adding a low-confidence candidate, even a closer one, must never
	// change the selected value.
	after, err := s.Select(append(base,
		candidate(model.ClassMarketValue, 150000, 0.5, 10)))
	require.NoError(t, err)
	assert.Equal(t, before.Candidate.Value, after.Candidate.Value)
}

func TestSelect_TieBreakByDistance(t *testing.T) {
	s := NewSelector(DefaultConfig())

	sel, err := s.Select([]model.ValueCandidate{
		candidate(model.ClassMarketValue, 150000, 0.9, 80),
		candidate(model.ClassMarketValue, 199080, 0.9, 20),
	})
	require.NoError(t, err)
	assert.InDelta(t, 199080, sel.Candidate.Value, 0.001)
}

func TestSelect_ConfidenceRewardsTightClustering(t *testing.T) {
	s := NewSelector(DefaultConfig())

	tight, err := s.Select([]model.ValueCandidate{
		candidate(model.ClassMarketValue, 199000, 0.8, 10),
		candidate(model.ClassMarketValue, 199100, 0.8, 20),
		candidate(model.ClassMarketValue, 199200, 0.8, 30),
	})
	require.NoError(t, err)

	loose, err := s.Select([]model.ValueCandidate{
		candidate(model.ClassMarketValue, 50000, 0.8, 10),
		candidate(model.ClassMarketValue, 199100, 0.8, 20),
		candidate(model.ClassMarketValue, 900000, 0.8, 30),
	})
	require.NoError(t, err)

	assert.Greater(t, tight.Confidence, loose.Confidence)
}

func TestStats(t *testing.T) {
	values := []float64{1, 2, 3, 4, 100}

	assert.InDelta(t, 22, mean(values), 0.001)
	assert.InDelta(t, 3, median(values), 0.001)
	assert.InDelta(t, 2.5, median([]float64{1, 2, 3, 4}), 0.001)
	assert.Zero(t, stddev([]float64{42}))
	assert.Zero(t, coefficientOfVariation(nil))
}
