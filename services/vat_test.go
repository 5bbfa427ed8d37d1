package services

import (
	"math"
	"testing"
)

func TestNormalizeVATRate(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		def    float64
		expect float64
	}{
		{"plain number", "22", 22, 22},
		{"reduced rate", "10", 22, 10},
		{"percent suffix", "4%", 22, 4},
		{"decimal comma", "4,5", 22, 4.5},
		{"empty falls back", "", 22, 22},
		{"empty with custom default", "", 10, 10},
		{"whitespace falls back", "   ", 22, 22},
		{"free text iva", "IVA 10%", 22, 10},
		{"free text vat", "vat al 4", 22, 4},
		{"number before keyword", "22% IVA", 10, 22},
		{"negative falls back", "-5", 22, 22},
		{"above 100 falls back", "250", 22, 22},
		{"garbage falls back", "da concordare", 22, 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeVATRate(tt.raw, tt.def)
			if got != tt.expect {
				t.Errorf("NormalizeVATRate(%q, %v) = %v, want %v", tt.raw, tt.def, got, tt.expect)
			}
		})
	}
}

func TestExtractVATRate(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		expectRate float64
		expectOK   bool
	}{
		{"iva with percent", "prezzi IVA 10% inclusa", 10, true},
		{"imposta keyword", "imposta 4", 4, true},
		{"no mention", "consegna in cantiere", 0, false},
		{"keyword without number", "IVA da definire", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := ExtractVATRate(tt.text)
			if ok != tt.expectOK || rate != tt.expectRate {
				t.Errorf("ExtractVATRate(%q) = (%v, %v), want (%v, %v)",
					tt.text, rate, ok, tt.expectRate, tt.expectOK)
			}
		})
	}
}

func TestDetectVATInclusive(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect bool
	}{
		{"inclusa", "prezzi IVA inclusa", true},
		{"compresa", "IVA compresa nel prezzo", true},
		{"esclusa", "IVA esclusa", false},
		{"esclusa wins over nothing", "fornitura, IVA esclusa", false},
		{"no mention defaults to exclusive", "consegna franco cantiere", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectVATInclusive(tt.text)
			if got != tt.expect {
				t.Errorf("DetectVATInclusive(%q) = %v, want %v", tt.text, got, tt.expect)
			}
		})
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name        string
		in          PriceInput
		expectExVAT float64
		expectInc   float64
		expectVAT   float64
	}{
		{
			name:        "exclusive input",
			in:          PriceInput{UnitPrice: 100, VATRate: 22, IncludesVAT: false},
			expectExVAT: 100,
			expectInc:   122,
			expectVAT:   22,
		},
		{
			name:        "inclusive input",
			in:          PriceInput{UnitPrice: 122, VATRate: 22, IncludesVAT: true},
			expectExVAT: 100,
			expectInc:   122,
			expectVAT:   22,
		},
		{
			name:        "reduced rate",
			in:          PriceInput{UnitPrice: 100, VATRate: 10, IncludesVAT: false},
			expectExVAT: 100,
			expectInc:   110,
			expectVAT:   10,
		},
		{
			name:        "rounded to 2 decimals",
			in:          PriceInput{UnitPrice: 33.33, VATRate: 22, IncludesVAT: false},
			expectExVAT: 33.33,
			expectInc:   40.66,
			expectVAT:   7.33,
		},
		{
			name:        "zero price passes through",
			in:          PriceInput{UnitPrice: 0, VATRate: 22, IncludesVAT: false},
			expectExVAT: 0,
			expectInc:   0,
			expectVAT:   0,
		},
		{
			name:        "negative price keeps sign",
			in:          PriceInput{UnitPrice: -100, VATRate: 22, IncludesVAT: false},
			expectExVAT: -100,
			expectInc:   -122,
			expectVAT:   -22,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePrice(tt.in)
			if math.Abs(got.UnitPriceExVAT-tt.expectExVAT) > 0.001 {
				t.Errorf("UnitPriceExVAT = %v, want %v", got.UnitPriceExVAT, tt.expectExVAT)
			}
			if math.Abs(got.UnitPriceIncVAT-tt.expectInc) > 0.001 {
				t.Errorf("UnitPriceIncVAT = %v, want %v", got.UnitPriceIncVAT, tt.expectInc)
			}
			if math.Abs(got.VATAmount-tt.expectVAT) > 0.001 {
				t.Errorf("VATAmount = %v, want %v", got.VATAmount, tt.expectVAT)
			}
		})
	}
}

// Breaking a price out of VAT and back in must return the original value.
func TestNormalizePrice_RoundTrip(t *testing.T) {
	for _, rate := range []float64{4, 10, 22} {
		inc := NormalizePrice(PriceInput{UnitPrice: 250, VATRate: rate, IncludesVAT: false}).UnitPriceIncVAT
		back := NormalizePrice(PriceInput{UnitPrice: inc, VATRate: rate, IncludesVAT: true}).UnitPriceExVAT
		if math.Abs(back-250) > 0.01 {
			t.Errorf("round trip at %v%%: got %v, want 250", rate, back)
		}
	}
}
