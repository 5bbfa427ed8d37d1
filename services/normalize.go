package services

import (
	"fmt"
	"strings"
	"time"
)

// RawOfferLine is one priced item as produced by an external parser,
// before any unit or VAT normalization. Only Description is mandatory.
type RawOfferLine struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	UOM         string  `json:"uom"`
	Qty         float64 `json:"qty"`
	UnitPrice   float64 `json:"unitPrice"`
	VATRate     string  `json:"vatRate"` // as transcribed from the source, may be empty
	Notes       string  `json:"notes"`
	Exclusions  string  `json:"exclusions"`
	LeadTime    string  `json:"leadTime"`
}

// RawOffer is one vendor's parsed offer.
type RawOffer struct {
	VendorName  string         `json:"vendorName"`
	VendorEmail string         `json:"vendorEmail"`
	SourceFile  string         `json:"sourceFile"`
	SourceType  string         `json:"sourceType"`
	Lines       []RawOfferLine `json:"lines"`
}

// NormalizedOfferLine is a line after unit and VAT normalization. The
// original unit and price are kept for traceability.
type NormalizedOfferLine struct {
	Code              string  `json:"code"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	UOM               string  `json:"uom"`
	OriginalUOM       string  `json:"originalUom"`
	Qty               float64 `json:"qty"`
	UnitPriceExVAT    float64 `json:"unitPriceExVat"`
	UnitPriceIncVAT   float64 `json:"unitPriceIncVat"`
	OriginalUnitPrice float64 `json:"originalUnitPrice"`
	TotalExVAT        float64 `json:"totalExVat"`
	TotalIncVAT       float64 `json:"totalIncVat"`
	VATRate           float64 `json:"vatRate"`
	Notes             string  `json:"notes"`
	Exclusions        string  `json:"exclusions"`
	LeadTime          string  `json:"leadTime"`
}

// NormalizedOffer is one vendor's full offer with normalized lines and
// aggregate totals.
type NormalizedOffer struct {
	VendorName     string                `json:"vendorName"`
	VendorEmail    string                `json:"vendorEmail"`
	SourceFile     string                `json:"sourceFile"`
	SourceType     string                `json:"sourceType"`
	NormalizedAt   time.Time             `json:"normalizedAt"`
	DefaultVATRate float64               `json:"defaultVatRate"`
	Lines          []NormalizedOfferLine `json:"lines"`
	TotalExVAT     float64               `json:"totalExVat"`
	TotalIncVAT    float64               `json:"totalIncVat"`
}

// NormalizeOffer transforms a raw parsed offer into a NormalizedOffer:
// units are converted to their canonical form (project preferences first,
// then the static table), unit prices are inversely rescaled so line totals
// stay invariant, and the effective VAT rate is resolved from the explicit
// field, the line's free text, or the project default, in that order.
//
// Malformed individual fields never fail the call; unknown units and
// unparseable VAT rates degrade to documented defaults. Only structurally
// invalid input (missing vendor name, a line without a description) returns
// an error.
func NormalizeOffer(raw RawOffer, defaultVATRate float64, uomPrefs map[string]string) (NormalizedOffer, error) {
	if strings.TrimSpace(raw.VendorName) == "" {
		return NormalizedOffer{}, fmt.Errorf("normalize offer: missing vendor name")
	}

	offer := NormalizedOffer{
		VendorName:     raw.VendorName,
		VendorEmail:    raw.VendorEmail,
		SourceFile:     raw.SourceFile,
		SourceType:     raw.SourceType,
		NormalizedAt:   time.Now(),
		DefaultVATRate: defaultVATRate,
		Lines:          make([]NormalizedOfferLine, 0, len(raw.Lines)),
	}

	for i, line := range raw.Lines {
		if strings.TrimSpace(line.Description) == "" {
			return NormalizedOffer{}, fmt.Errorf("normalize offer %q: line %d: missing description", raw.VendorName, i+1)
		}

		rawUnit := strings.ToLower(strings.TrimSpace(line.UOM))
		canonical := resolveCanonicalUOM(rawUnit, uomPrefs)

		qty := ConvertUOM(line.Qty, rawUnit, canonical)
		unitPrice := ConvertUnitPrice(line.UnitPrice, rawUnit, canonical)

		vatRate := resolveLineVATRate(line, defaultVATRate)
		includesVAT := DetectVATInclusive(line.Notes + " " + line.Description)

		breakdown := NormalizePrice(PriceInput{
			UnitPrice:   unitPrice,
			VATRate:     vatRate,
			IncludesVAT: includesVAT,
		})

		normalized := NormalizedOfferLine{
			Code:              strings.TrimSpace(line.Code),
			Description:       strings.TrimSpace(line.Description),
			Category:          line.Category,
			UOM:               canonical,
			OriginalUOM:       line.UOM,
			Qty:               qty,
			UnitPriceExVAT:    breakdown.UnitPriceExVAT,
			UnitPriceIncVAT:   breakdown.UnitPriceIncVAT,
			OriginalUnitPrice: line.UnitPrice,
			TotalExVAT:        round2(qty * breakdown.UnitPriceExVAT),
			TotalIncVAT:       round2(qty * breakdown.UnitPriceIncVAT),
			VATRate:           breakdown.VATRate,
			Notes:             line.Notes,
			Exclusions:        line.Exclusions,
			LeadTime:          line.LeadTime,
		}

		offer.Lines = append(offer.Lines, normalized)
		offer.TotalExVAT += normalized.TotalExVAT
		offer.TotalIncVAT += normalized.TotalIncVAT
	}

	offer.TotalExVAT = round2(offer.TotalExVAT)
	offer.TotalIncVAT = round2(offer.TotalIncVAT)

	return offer, nil
}

// resolveCanonicalUOM checks project-level preferences before the static
// conversion table.
func resolveCanonicalUOM(rawUnit string, uomPrefs map[string]string) string {
	if preferred, ok := uomPrefs[rawUnit]; ok && preferred != "" {
		return strings.ToLower(strings.TrimSpace(preferred))
	}
	return NormalizeUOM(rawUnit)
}

// resolveLineVATRate resolves the effective VAT rate for a line: the explicit
// field first, then free text on notes and description, then the default.
func resolveLineVATRate(line RawOfferLine, defaultVATRate float64) float64 {
	if strings.TrimSpace(line.VATRate) != "" {
		return NormalizeVATRate(line.VATRate, defaultVATRate)
	}
	if rate, ok := ExtractVATRate(line.Notes + " " + line.Description); ok {
		return rate
	}
	return defaultVATRate
}
