// Package services provides the offer normalization and comparison engine
// along with pricing, formatting and export helpers.
package services

import "strings"

// uomConversion maps a source unit to its canonical unit within a single
// physical dimension. Factor rescales a quantity: canonicalQty = qty * Factor.
type uomConversion struct {
	From     string
	To       string
	Factor   float64
	Category string
}

// uomConversions is the static conversion table. Entries only connect units
// of the same dimension; cross-dimension lookups are simply absent and fall
// back to the identity conversion.
var uomConversions = []uomConversion{
	// length → m
	{"m", "m", 1, "length"},
	{"ml", "m", 1, "length"}, // metri lineari
	{"cm", "m", 0.01, "length"},
	{"dm", "m", 0.1, "length"},
	{"mm", "m", 0.001, "length"},
	{"km", "m", 1000, "length"},

	// area → mq
	{"mq", "mq", 1, "area"},
	{"m2", "mq", 1, "area"},
	{"m²", "mq", 1, "area"},
	{"cmq", "mq", 0.0001, "area"},
	{"dmq", "mq", 0.01, "area"},
	{"are", "mq", 100, "area"},
	{"ha", "mq", 10000, "area"},

	// volume → mc
	{"mc", "mc", 1, "volume"},
	{"m3", "mc", 1, "volume"},
	{"m³", "mc", 1, "volume"},
	{"cmc", "mc", 0.000001, "volume"},
	{"dmc", "mc", 0.001, "volume"},
	{"l", "mc", 0.001, "volume"},
	{"litri", "mc", 0.001, "volume"},

	// weight → kg
	{"kg", "kg", 1, "weight"},
	{"g", "kg", 0.001, "weight"},
	{"hg", "kg", 0.1, "weight"},
	{"q.le", "kg", 100, "weight"},
	{"quintali", "kg", 100, "weight"},
	{"t", "kg", 1000, "weight"},
	{"tonnellate", "kg", 1000, "weight"},

	// quantity → nr
	{"nr", "nr", 1, "quantity"},
	{"pz", "nr", 1, "quantity"},
	{"pezzi", "nr", 1, "quantity"},
	{"unità", "nr", 1, "quantity"},
	{"un", "nr", 1, "quantity"},
	{"colli", "nr", 1, "quantity"},

	// time
	{"h", "h", 1, "time"},
	{"ore", "h", 1, "time"},
	{"gg", "gg", 1, "time"},
	{"giorni", "gg", 1, "time"},
	{"sett", "sett", 1, "time"},
	{"settimane", "sett", 1, "time"},
	{"mesi", "mesi", 1, "time"},
}

// NormalizeUOM resolves a raw unit string to its canonical unit. Matching is
// case-insensitive and ignores surrounding whitespace. Unknown units pass
// through unchanged (lowercased and trimmed): an unrecognized unit must never
// block a comparison.
func NormalizeUOM(raw string) string {
	unit := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range uomConversions {
		if c.From == unit {
			return c.To
		}
	}
	return unit
}

// conversionFactor returns the multiplier that converts a quantity from one
// unit to another. The table stores source→canonical entries, so the reverse
// direction is derived as the inverse factor.
func conversionFactor(from, to string) (float64, bool) {
	if from == to {
		return 1, true
	}
	for _, c := range uomConversions {
		if c.From == from && c.To == to {
			return c.Factor, true
		}
		if c.From == to && c.To == from && c.Factor != 0 {
			return 1 / c.Factor, true
		}
	}
	return 0, false
}

// ConvertUOM converts a quantity between two units. When no mapping exists
// for the pair, the quantity is returned unchanged (no-op, never an error).
func ConvertUOM(qty float64, from, to string) float64 {
	f := strings.ToLower(strings.TrimSpace(from))
	t := strings.ToLower(strings.TrimSpace(to))
	if f == t {
		return qty
	}
	factor, ok := conversionFactor(f, t)
	if !ok {
		return qty
	}
	return qty * factor
}

// ConvertUnitPrice rescales a unit price across a unit change. The price
// moves inversely to the quantity so that qty*unitPrice stays invariant
// under the conversion.
func ConvertUnitPrice(price float64, from, to string) float64 {
	f := strings.ToLower(strings.TrimSpace(from))
	t := strings.ToLower(strings.TrimSpace(to))
	if f == t {
		return price
	}
	factor, ok := conversionFactor(f, t)
	if !ok || factor == 0 {
		return price
	}
	return price / factor
}
