package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultVATRate is the Italian standard VAT rate, used whenever a project
// does not configure its own default.
const DefaultVATRate = 22.0

// vatTextPatterns extract a VAT percentage from free text, e.g. "IVA 10%",
// "vat al 4", "22% IVA".
var vatTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:iva|vat|imposta)\s*(?:al\s*)?(\d{1,3}(?:[.,]\d+)?)\s*%?`),
	regexp.MustCompile(`(?i)(\d{1,3}(?:[.,]\d+)?)\s*%?\s*(?:di\s+)?(?:iva|vat|imposta)`),
}

// vatInclusivePattern and vatExclusivePattern detect whether quoted prices
// already contain VAT ("IVA inclusa/compresa") or not ("IVA esclusa").
var (
	vatInclusivePattern = regexp.MustCompile(`(?i)iva\s+(?:inclusa|compresa|incl)`)
	vatExclusivePattern = regexp.MustCompile(`(?i)iva\s+(?:esclusa|escl)`)
)

// NormalizeVATRate resolves a raw VAT rate string to a usable percentage.
// Accepted inputs: a plain number ("22", "4,5"), a percentage ("10%"), or
// free text mentioning IVA/VAT with a number. Empty, unparseable or
// out-of-range input falls back to projectDefault; a malformed rate must
// never abort processing.
func NormalizeVATRate(raw string, projectDefault float64) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return projectDefault
	}

	if rate, ok := parseRate(strings.TrimSuffix(s, "%")); ok {
		return rate
	}
	if rate, ok := ExtractVATRate(s); ok {
		return rate
	}
	return projectDefault
}

// ExtractVATRate searches free text for a VAT rate mention and returns the
// first in-range match.
func ExtractVATRate(text string) (float64, bool) {
	for _, re := range vatTextPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if rate, ok := parseRate(m[1]); ok {
			return rate, true
		}
	}
	return 0, false
}

// DetectVATInclusive reports whether free text declares prices as
// VAT-inclusive. An explicit "IVA esclusa" wins over nothing; absent any
// mention, prices are assumed VAT-exclusive, the usual convention in
// construction quotations.
func DetectVATInclusive(text string) bool {
	if vatExclusivePattern.MatchString(text) {
		return false
	}
	return vatInclusivePattern.MatchString(text)
}

func parseRate(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil || rate < 0 || rate > 100 {
		return 0, false
	}
	return rate, true
}

// PriceInput describes one unit price to break down by VAT treatment.
type PriceInput struct {
	UnitPrice   float64
	VATRate     float64
	IncludesVAT bool
}

// PriceBreakdown carries a unit price in both VAT treatments.
type PriceBreakdown struct {
	UnitPriceExVAT  float64
	UnitPriceIncVAT float64
	VATAmount       float64
	VATRate         float64
}

// NormalizePrice computes the VAT-exclusive and VAT-inclusive unit prices
// from a raw price and its treatment. All outputs are rounded to 2 decimals.
// Zero and negative prices pass through the same formulas unchanged.
func NormalizePrice(in PriceInput) PriceBreakdown {
	multiplier := 1 + in.VATRate/100

	var exVAT, incVAT float64
	if in.IncludesVAT {
		incVAT = in.UnitPrice
		exVAT = in.UnitPrice / multiplier
	} else {
		exVAT = in.UnitPrice
		incVAT = in.UnitPrice * multiplier
	}

	exVAT = round2(exVAT)
	incVAT = round2(incVAT)

	return PriceBreakdown{
		UnitPriceExVAT:  exVAT,
		UnitPriceIncVAT: incVAT,
		VATAmount:       round2(incVAT - exVAT),
		VATRate:         in.VATRate,
	}
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
