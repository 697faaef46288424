package cli

import (
	"fmt"
	"strings"

	"github.com/calder-f/statement-resolver/internal/model"
)

// RenderResult renders one resolution result as a styled terminal report.
func RenderResult(result *model.Result) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Statement Resolution"))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render("run " + result.RunID))
	b.WriteString("\n\n")

	if len(result.Securities) > 0 {
		b.WriteString(HeaderStyle.Render(fmt.Sprintf("%-14s %-34s %4s %16s %6s  %s",
			"ISIN", "Name", "Cur", "Market Value", "Conf", "Method")))
		b.WriteString("\n")
		for _, sec := range result.Securities {
			b.WriteString(fmt.Sprintf("%-14s %-34s %4s %16s %5.0f%%  %s\n",
				sec.ISIN,
				truncate(sec.Name, 34),
				sec.Currency,
				formatAmount(sec.MarketValue),
				sec.Confidence*100,
				SubtleStyle.Render(string(sec.SelectionMethod))))
		}
		b.WriteString("\n")
	}

	for _, isin := range result.Unresolved {
		b.WriteString(FormatWarning("unresolved: " + isin))
		b.WriteString("\n")
	}

	b.WriteString(BoxStyle.Render(renderValidation(result.PortfolioTotal)))
	b.WriteString("\n")

	if len(result.Diagnostics) > 0 {
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("%d diagnostics (run with --log-level debug for details)", len(result.Diagnostics))))
		b.WriteString("\n")
	}

	return b.String()
}

func renderValidation(v model.PortfolioValidation) string {
	declared := "none"
	if v.DeclaredTotal != nil {
		declared = formatAmount(*v.DeclaredTotal)
	}
	line := fmt.Sprintf("computed %s / declared %s (Δ %.2f%%)",
		formatAmount(v.ComputedTotal), declared, v.DeltaPercent)

	switch v.Status {
	case model.ValidationPass:
		return FormatSuccess("portfolio total PASS: " + line)
	case model.ValidationWarn:
		return FormatWarning("portfolio total WARN: " + line)
	default:
		return FormatError("portfolio total FAIL: " + line)
	}
}

// formatAmount renders an amount with apostrophe grouping, matching the
// statements this tool reads.
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	return strings.Join(grouped, "'") + "." + parts[1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
