package extract

import (
	"regexp"
	"strconv"

	"github.com/dvloznov/spendwise/internal/domain"
)

// amountPattern matches an optional dollar sign followed by digits with an
// optional 1-2 digit decimal fraction; the first match in the text wins.
var amountPattern = regexp.MustCompile(`\$?(\d+(?:\.\d{1,2})?)`)

// FallbackExtractor is the deterministic regex-backed extraction strategy.
// It never consults the model and never fails.
type FallbackExtractor struct{}

// Extract scans the text for an amount. Category is always
// "Uncategorized", the description is the full original text and the date
// is left unset. Confidence is set by the caller, which knows which
// failure path led here.
func (FallbackExtractor) Extract(text string) Candidate {
	c := Candidate{
		Category:    UncategorizedCategory,
		Description: text,
	}

	if m := amountPattern.FindStringSubmatch(text); m != nil {
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
			currency := domain.DefaultCurrency
			c.Amount = &amount
			c.Currency = &currency
		}
	}

	return c
}
