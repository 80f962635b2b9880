package bankcsv

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyMarks = strings.NewReplacer("원", "", "₩", "", "€", "", "KRW", "", "EUR", "", " ", "", " ", "")

	// thousandsOnly matches amounts like "1,234,567" where every comma groups three digits.
	thousandsOnly = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)
)

// parseAmount parses Korean ("1,234,567원"), European ("-1.234,56") and
// plain ("1234.56") amounts. The separator that appears last is the decimal
// mark when both are present.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimPrefix(currencyMarks.Replace(strings.TrimSpace(s)), "+")

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0 && thousandsOnly.MatchString(clean):
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0:
		clean = strings.Replace(clean, ",", ".", 1)
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	return decimal.NewFromString(clean)
}
