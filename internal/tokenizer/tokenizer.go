// Package tokenizer turns raw statement text into a stream of typed tokens.
package tokenizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/calder-f/statement-resolver/internal/common"
	"github.com/calder-f/statement-resolver/internal/model"
)

// Config holds the tunable parts of tokenization.
type Config struct {
	// Currencies is the ISO-code allow-list for Currency tokens.
	Currencies []string
	// Keywords are phrases emitted as Keyword tokens for the classifier.
	Keywords []string
}

// DefaultConfig returns the tokenizer defaults.
func DefaultConfig() Config {
	return Config{
		Currencies: []string{"USD", "CHF", "EUR", "GBP", "JPY", "CAD", "AUD"},
		Keywords: []string{
			"portfolio total",
			"market value",
			"countervalue",
			"current value",
			"face value",
			"nominal",
			"principal",
			"accrued",
			"interest",
			"maturity",
			"coupon",
			"total",
		},
	}
}

// Tokenizer scans document text into model.Token values. A Tokenizer is
// safe for concurrent use; each Tokenize call is independent.
type Tokenizer struct {
	cfg        Config
	anchoredID *regexp.Regexp
	bareID     *regexp.Regexp
	date       *regexp.Regexp
	percent    *regexp.Regexp
	fusedAmt   *regexp.Regexp
	currency   *regexp.Regexp
	keyword    *regexp.Regexp
	number     *regexp.Regexp
	swissVote  *regexp.Regexp
	commaVote  *regexp.Regexp
}

// New creates a Tokenizer from the given configuration.
func New(cfg Config) (*Tokenizer, error) {
	if len(cfg.Currencies) == 0 {
		return nil, fmt.Errorf("%w: empty currency allow-list", common.ErrInvalidConfig)
	}
	curAlt := strings.Join(cfg.Currencies, "|")

	kw := make([]string, 0, len(cfg.Keywords))
	for _, phrase := range cfg.Keywords {
		kw = append(kw, strings.ReplaceAll(regexp.QuoteMeta(phrase), ` `, `\s+`))
	}

	amount := `\d{1,3}(?:'\d{3})+(?:[.,]\d{1,2})?|\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?|\d+(?:[.,]\d+)?`

	t := &Tokenizer{
		cfg:        cfg,
		anchoredID: regexp.MustCompile(`\bISIN[:\s]*([A-Z]{2}[A-Z0-9]{9}[0-9])\b`),
		bareID:     regexp.MustCompile(`\b[A-Z]{2}[A-Z0-9]{9}[0-9]\b`),
		date:       regexp.MustCompile(`\b\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b`),
		percent:    regexp.MustCompile(`\b(\d{1,3}(?:[.,]\d{1,4})?)\s?%`),
		fusedAmt:   regexp.MustCompile(`\b(` + curAlt + `)\s?(` + amount + `)\b`),
		currency:   regexp.MustCompile(`\b(?:` + curAlt + `)\b`),
		keyword:    regexp.MustCompile(`(?i)\b(?:` + strings.Join(kw, "|") + `)\b`),
		number:     regexp.MustCompile(`\b(?:` + amount + `)\b`),
		swissVote:  regexp.MustCompile(`\d'\d{3}`),
		commaVote:  regexp.MustCompile(`\d,\d{3}`),
	}
	return t, nil
}

// Tokenize scans text and returns the ordered token stream plus any
// non-fatal diagnostics. Empty or non-UTF-8 input is the only fatal case.
func (t *Tokenizer) Tokenize(text string) ([]model.Token, []model.Diagnostic, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrMalformedInput, common.ErrEmptyDocument)
	}
	if !utf8.ValidString(text) {
		return nil, nil, fmt.Errorf("%w: input is not valid UTF-8", common.ErrMalformedInput)
	}

	swiss := t.isSwissLocale(text)

	var tokens []model.Token
	var diags []model.Diagnostic

	offset := 0
	for lineNo, line := range strings.Split(text, "\n") {
		lt, ld := t.tokenizeLine(line, lineNo, offset, swiss)
		tokens = append(tokens, lt...)
		diags = append(diags, ld...)
		offset += len(line) + 1
	}

	return tokens, diags, nil
}

// isSwissLocale runs the document-level majority vote on grouping style:
// apostrophe grouping wins when it appears at least as often as comma
// grouping.
func (t *Tokenizer) isSwissLocale(text string) bool {
	apos := len(t.swissVote.FindAllString(text, -1))
	comma := len(t.commaVote.FindAllString(text, -1))
	return apos > 0 && apos >= comma
}

// tokenizeLine scans one line. Higher-priority token kinds consume their
// spans first so that, for example, digits inside a date or an ISIN are
// never re-emitted as Number tokens.
func (t *Tokenizer) tokenizeLine(line string, lineNo, offset int, swiss bool) ([]model.Token, []model.Diagnostic) {
	var tokens []model.Token
	var diags []model.Diagnostic
	consumed := make([]bool, len(line))

	emit := func(kind model.TokenKind, start, end int, code string, value float64) {
		mark(consumed, start, end)
		tokens = append(tokens, model.Token{
			Kind:     kind,
			Raw:      line[start:end],
			Code:     code,
			Value:    value,
			Position: offset + start,
			Line:     lineNo,
		})
	}

	// Security identifiers, anchored first. Anchored codes only need the
	// structural shape; bare codes must also pass the Luhn check.
	for _, m := range t.anchoredID.FindAllStringSubmatchIndex(line, -1) {
		code := line[m[2]:m[3]]
		if !ValidISINShape(code) {
			diags = append(diags, model.Diagnostic{
				Stage:   "tokenizer",
				Message: fmt.Sprintf("rejected malformed identifier %q", code),
				Line:    lineNo,
			})
			mark(consumed, m[0], m[1])
			continue
		}
		emit(model.TokenSecurityID, m[2], m[3], code, 0)
		mark(consumed, m[0], m[1])
	}
	for _, m := range t.bareID.FindAllStringIndex(line, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		code := line[m[0]:m[1]]
		if !ValidISIN(code) {
			continue
		}
		emit(model.TokenSecurityID, m[0], m[1], code, 0)
	}

	for _, m := range t.date.FindAllStringIndex(line, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		emit(model.TokenDate, m[0], m[1], "", 0)
	}

	for _, m := range t.percent.FindAllStringSubmatchIndex(line, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		v, err := ParseAmount(line[m[2]:m[3]], swiss)
		if err != nil {
			diags = append(diags, model.Diagnostic{
				Stage:   "tokenizer",
				Message: fmt.Sprintf("dropped malformed percentage %q: %v", line[m[0]:m[1]], err),
				Line:    lineNo,
			})
			mark(consumed, m[0], m[1])
			continue
		}
		emit(model.TokenPercentage, m[0], m[1], "", v)
	}

	// Fused currency amounts ("USD200'000") yield both a Currency and a
	// Number token, since no word boundary separates them.
	for _, m := range t.fusedAmt.FindAllStringSubmatchIndex(line, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		v, err := ParseAmount(line[m[4]:m[5]], swiss)
		if err != nil {
			diags = append(diags, model.Diagnostic{
				Stage:   "tokenizer",
				Message: fmt.Sprintf("dropped malformed amount %q: %v", line[m[4]:m[5]], err),
				Line:    lineNo,
			})
			mark(consumed, m[0], m[1])
			continue
		}
		emit(model.TokenCurrency, m[2], m[3], line[m[2]:m[3]], 0)
		emit(model.TokenNumber, m[4], m[5], "", v)
	}

	for _, m := range t.currency.FindAllStringIndex(line, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		emit(model.TokenCurrency, m[0], m[1], line[m[0]:m[1]], 0)
	}

	for _, m := range t.keyword.FindAllStringIndex(line, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		code := strings.ToLower(line[m[0]:m[1]])
		code = strings.Join(strings.Fields(code), "_")
		emit(model.TokenKeyword, m[0], m[1], code, 0)
	}

	for _, m := range t.number.FindAllStringIndex(line, -1) {
		if overlaps(consumed, m[0], m[1]) {
			continue
		}
		v, err := ParseAmount(line[m[0]:m[1]], swiss)
		if err != nil {
			// Malformed numerics are dropped and logged, never fatal.
			diags = append(diags, model.Diagnostic{
				Stage:   "tokenizer",
				Message: fmt.Sprintf("dropped malformed number %q: %v", line[m[0]:m[1]], err),
				Line:    lineNo,
			})
			mark(consumed, m[0], m[1])
			continue
		}
		emit(model.TokenNumber, m[0], m[1], "", v)
	}

	sortByPosition(tokens)
	return tokens, diags
}

// Identifiers collects the unique security identifiers from a token stream.
// Duplicate occurrences (holdings table plus footnote) reconcile onto the
// first occurrence.
func Identifiers(tokens []model.Token) []model.SecurityIdentifier {
	byCode := make(map[string]int)
	var ids []model.SecurityIdentifier

	for _, tok := range tokens {
		if tok.Kind != model.TokenSecurityID {
			continue
		}
		if i, seen := byCode[tok.Code]; seen {
			ids[i].Occurrences++
			continue
		}
		byCode[tok.Code] = len(ids)
		ids = append(ids, model.SecurityIdentifier{
			Code:            tok.Code,
			FirstOccurrence: tok.Position,
			FirstLine:       tok.Line,
			Occurrences:     1,
		})
	}
	return ids
}

// MajorityCurrency returns the most frequent currency code in the stream,
// or fallback when the document carries none.
func MajorityCurrency(tokens []model.Token, fallback string) string {
	counts := make(map[string]int)
	best, bestN := fallback, 0
	for _, tok := range tokens {
		if tok.Kind != model.TokenCurrency {
			continue
		}
		counts[tok.Code]++
		if counts[tok.Code] > bestN {
			best, bestN = tok.Code, counts[tok.Code]
		}
	}
	return best
}

func mark(consumed []bool, start, end int) {
	for i := start; i < end && i < len(consumed); i++ {
		consumed[i] = true
	}
}

func overlaps(consumed []bool, start, end int) bool {
	for i := start; i < end && i < len(consumed); i++ {
		if consumed[i] {
			return true
		}
	}
	return false
}

func sortByPosition(tokens []model.Token) {
	for i := 1; i < len(tokens); i++ {
		for j := i; j > 0 && tokens[j].Position < tokens[j-1].Position; j-- {
			tokens[j], tokens[j-1] = tokens[j-1], tokens[j]
		}
	}
}
