package services

import (
	"regexp"
	"strconv"
	"strings"
)

// leadTimePatterns map Italian delivery phrasing to a day multiplier.
var leadTimePatterns = []struct {
	re   *regexp.Regexp
	days float64
}{
	{regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:giorni|giorno|gg)`), 1},
	{regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:settimane|settimana|sett)`), 7},
	{regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:mesi|mese)`), 30},
	{regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:ore|ora)`), 1.0 / 24},
}

var bareNumberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParseLeadTimeDays converts a free-text lead time ("15 giorni", "2 settimane",
// "48 ore") into days. Text with no recognizable unit falls back to the first
// bare number, read as days; text with no number at all yields 0.
func ParseLeadTimeDays(text string) float64 {
	for _, p := range leadTimePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			continue
		}
		return n * p.days
	}

	if m := bareNumberPattern.FindString(text); m != "" {
		n, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
		if err == nil {
			return n
		}
	}
	return 0
}
