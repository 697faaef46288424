package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-f/statement-resolver/internal/model"
)

var testID = model.SecurityIdentifier{Code: "XS2530201644", FirstLine: 5, FirstOccurrence: 500}

func number(line, pos int, value float64, raw string) model.Token {
	return model.Token{Kind: model.TokenNumber, Raw: raw, Value: value, Line: line, Position: pos}
}

func keyword(line, pos int, code string) model.Token {
	return model.Token{Kind: model.TokenKeyword, Code: code, Line: line, Position: pos}
}

func findCandidate(t *testing.T, candidates []model.ValueCandidate, value float64) model.ValueCandidate {
	t.Helper()
	for _, c := range candidates {
		if c.Value == value {
			return c
		}
	}
	t.Fatalf("no candidate with value %v", value)
	return model.ValueCandidate{}
}

func TestClassify_MarketValueKeyword(t *testing.T) {
	c := New(DefaultConfig())

	win := []model.Token{
		keyword(6, 600, "market_value"),
		number(6, 620, 199080, "199'080"),
	}

	candidates := c.Classify(testID, win, nil, 0)
	require.Len(t, candidates, 1)
	assert.Equal(t, model.ClassMarketValue, candidates[0].Class)
	// Same-line keyword match earns the boosted confidence.
	assert.InDelta(t, 0.95, candidates[0].Confidence, 0.001)
	assert.Equal(t, 1, candidates[0].LineDistance)
	assert.Equal(t, 120, candidates[0].CharDistance)
}

func TestClassify_NominalKeyword(t *testing.T) {
	c := New(DefaultConfig())

	win := []model.Token{
		keyword(5, 480, "nominal"),
		number(5, 510, 200000, "200'000"),
	}

	candidates := c.Classify(testID, win, nil, 0)
	require.Len(t, candidates, 1)
	assert.Equal(t, model.ClassNominal, candidates[0].Class)
}

func TestClassify_NominalFromCurrencyCouponShape(t *testing.T) {
	c := New(DefaultConfig())

	// USD200'000 0.25% with no keyword in sight.
	win := []model.Token{
		{Kind: model.TokenCurrency, Code: "USD", Raw: "USD", Line: 6, Position: 600},
		number(6, 603, 200000, "200'000"),
		{Kind: model.TokenPercentage, Raw: "0.25%", Value: 0.25, Line: 6, Position: 611},
	}

	candidates := c.Classify(testID, win, nil, 0)
	cand := findCandidate(t, candidates, 200000)
	assert.Equal(t, model.ClassNominal, cand.Class)
	assert.InDelta(t, 0.90, cand.Confidence, 0.001)
}

func TestClassify_TotalKeyword(t *testing.T) {
	c := New(DefaultConfig())

	win := []model.Token{
		keyword(20, 2000, "portfolio_total"),
		number(20, 2020, 19464431, "19'464'431"),
	}

	candidates := c.Classify(testID, win, nil, 0)
	require.Len(t, candidates, 1)
	assert.Equal(t, model.ClassSummaryTotal, candidates[0].Class)
}

func TestClassify_TotalGuardOverridesKeywords(t *testing.T) {
	c := New(DefaultConfig())
	total := 19464431.0

	// Even a market-value keyword cannot rescue a number equal to the
	// detected portfolio total.
	win := []model.Token{
		keyword(6, 600, "market_value"),
		number(6, 620, 19464431, "19'464'431"),
	}

	candidates := c.Classify(testID, win, &total, 0)
	require.Len(t, candidates, 1)
	assert.Equal(t, model.ClassSummaryTotal, candidates[0].Class)
	assert.InDelta(t, 0.99, candidates[0].Confidence, 0.001)
}

func TestClassify_TotalByMagnitude(t *testing.T) {
	c := New(DefaultConfig())

	// p95 of the document sits at 2M; a 19M figure with no context is a
	// summary total on magnitude alone.
	candidates := c.Classify(testID, []model.Token{
		number(6, 620, 19464431, "19'464'431"),
	}, nil, 2000000)
	require.Len(t, candidates, 1)
	assert.Equal(t, model.ClassSummaryTotal, candidates[0].Class)
}

func TestClassify_HundredPercentMarksTotal(t *testing.T) {
	c := New(DefaultConfig())

	win := []model.Token{
		number(30, 3000, 19464431, "19'464'431"),
		{Kind: model.TokenPercentage, Value: 100, Line: 30, Position: 3030},
	}

	candidates := c.Classify(testID, win, nil, 0)
	require.Len(t, candidates, 1)
	assert.Equal(t, model.ClassSummaryTotal, candidates[0].Class)
}

func TestClassify_AccruedInterestKeyword(t *testing.T) {
	c := New(DefaultConfig())

	win := []model.Token{
		keyword(7, 700, "accrued"),
		number(7, 720, 1520, "1'520"),
	}

	candidates := c.Classify(testID, win, nil, 0)
	require.Len(t, candidates, 1)
	assert.Equal(t, model.ClassAccruedInterest, candidates[0].Class)
}

func TestClassify_PlausibleMagnitudeFallback(t *testing.T) {
	c := New(DefaultConfig())

	tests := []struct {
		name      string
		token     model.Token
		wantClass model.SemanticClass
		wantConf  float64
	}{
		{
			name:      "plausible value on identifier line",
			token:     number(5, 520, 199080, "199'080"),
			wantClass: model.ClassMarketValue,
			wantConf:  0.6,
		},
		{
			name:      "plausible value on another line",
			token:     number(8, 820, 199080, "199'080"),
			wantClass: model.ClassMarketValue,
			wantConf:  0.5,
		},
		{
			name:      "tiny value is unrelated",
			token:     number(5, 520, 12, "12"),
			wantClass: model.ClassUnrelated,
		},
		{
			name:      "huge value is unrelated without p95 context",
			token:     number(5, 520, 99000000, "99'000'000"),
			wantClass: model.ClassUnrelated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := c.Classify(testID, []model.Token{tt.token}, nil, 0)
			require.Len(t, candidates, 1)
			assert.Equal(t, tt.wantClass, candidates[0].Class)
			if tt.wantConf > 0 {
				assert.InDelta(t, tt.wantConf, candidates[0].Confidence, 0.001)
			}
		})
	}
}

func TestClassify_KeywordBeyondProximityIgnored(t *testing.T) {
	c := New(DefaultConfig())

	win := []model.Token{
		keyword(6, 600, "market_value"),
		number(6, 700, 199080, "199'080"), // 100 bytes away, beyond the 50-byte proximity
	}

	candidates := c.Classify(testID, win, nil, 0)
	require.Len(t, candidates, 1)
	assert.Equal(t, "plausible magnitude fallback", candidates[0].RuleName)
}

func TestPercentile95(t *testing.T) {
	var tokens []model.Token
	for i := 1; i <= 20; i++ {
		tokens = append(tokens, number(i, i*10, float64(i*1000), ""))
	}
	assert.InDelta(t, 19000, Percentile95(tokens), 0.001)

	assert.Zero(t, Percentile95(nil))
}
