package services

// CanonicalUOMOptions returns the list of canonical unit-of-measure options
// offered to the dashboard when editing RFP items.
var CanonicalUOMOptions = []string{
	"nr",
	"m",
	"mq",
	"mc",
	"kg",
	"h",
	"gg",
	"sett",
	"mesi",
	"a corpo",
}

// VATRateOptions returns the Italian VAT rate options.
var VATRateOptions = []float64{0, 4, 5, 10, 22}
