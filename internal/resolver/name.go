package resolver

import (
	"regexp"
	"strings"

	"github.com/calder-f/statement-resolver/internal/model"
)

var (
	letterRun = regexp.MustCompile(`[A-Za-z][A-Za-z .,&/%-]{7,}`)
	noiseWord = regexp.MustCompile(`(?i)^(isin|valorn|maturity|coupon|total|page)\b`)
)

// nameFromContext extracts a best-effort security description from the
// lines around the identifier. Statements usually carry the description on
// the identifier's line or the one or two lines above it. Falls back to a
// placeholder when nothing plausible is found.
func nameFromContext(lines []string, id model.SecurityIdentifier) string {
	best := ""
	for off := -2; off <= 2; off++ {
		ln := id.FirstLine + off
		if ln < 0 || ln >= len(lines) {
			continue
		}
		line := strings.ReplaceAll(lines[ln], id.Code, " ")
		for _, run := range letterRun.FindAllString(line, -1) {
			run = strings.TrimSpace(run)
			if noiseWord.MatchString(run) {
				continue
			}
			if len(run) > len(best) {
				best = run
			}
		}
		// The identifier's own line wins outright when it has a usable run.
		if off == 0 && best != "" {
			break
		}
	}
	if best == "" {
		return "Security " + id.Code
	}
	return best
}
