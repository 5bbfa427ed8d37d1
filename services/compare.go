package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// leadTimeBenchmarkDays is the delivery window against which lead-time
// scores are computed: at or below 0 days scores 1, at 60 days or more 0.
const leadTimeBenchmarkDays = 30.0

// ScoringWeights controls how the three vendor sub-scores combine into the
// total score. Any scale works; the orchestrator normalizes them to sum to 1
// before use, so only the ratios matter.
type ScoringWeights struct {
	Price      float64 `json:"price"`
	LeadTime   float64 `json:"leadTime"`
	Compliance float64 `json:"compliance"`
}

// DefaultWeights returns the standard 60/20/20 weighting.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{Price: 60, LeadTime: 20, Compliance: 20}
}

// normalized rescales the weights to sum to 1. All-zero weights fall back
// to the defaults.
func (w ScoringWeights) normalized() ScoringWeights {
	sum := w.Price + w.LeadTime + w.Compliance
	if sum == 0 {
		w = DefaultWeights()
		sum = w.Price + w.LeadTime + w.Compliance
	}
	return ScoringWeights{
		Price:      w.Price / sum,
		LeadTime:   w.LeadTime / sum,
		Compliance: w.Compliance / sum,
	}
}

// VendorOfferStatus records one vendor's standing on one comparison item.
// Every vendor in the comparison has an entry for every item, with
// HasOffer=false when the vendor did not price it.
type VendorOfferStatus struct {
	VendorName      string  `json:"vendorName"`
	HasOffer        bool    `json:"hasOffer"`
	IsExcluded      bool    `json:"isExcluded"`
	UnitPriceExVAT  float64 `json:"unitPriceExVat"`
	UnitPriceIncVAT float64 `json:"unitPriceIncVat"`
	TotalExVAT      float64 `json:"totalExVat"`
	TotalIncVAT     float64 `json:"totalIncVat"`
	VATRate         float64 `json:"vatRate"`
	Notes           string  `json:"notes"`
	Exclusions      string  `json:"exclusions"`
	LeadTime        string  `json:"leadTime"`
}

// BestOffer identifies the winning vendor for one item. UnitPrice is
// VAT-inclusive; Savings is per unit versus the worst qualifying offer.
type BestOffer struct {
	VendorName     string  `json:"vendorName"`
	UnitPrice      float64 `json:"unitPrice"`
	Savings        float64 `json:"savings"`
	SavingsPercent float64 `json:"savingsPercent"`
}

// ComparisonItem is one canonical item across all vendors, identified by
// (code, or lowercased trimmed description) plus unit of measure. Offers is
// ordered by the comparison's input offer order; tie-breaks depend on it.
type ComparisonItem struct {
	Key         string              `json:"key"`
	Code        string              `json:"code"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	UOM         string              `json:"uom"`
	Qty         float64             `json:"qty"`
	Offers      []VendorOfferStatus `json:"offers"`
	BestOffer   *BestOffer          `json:"bestOffer,omitempty"`
}

// Offer returns the status entry for a vendor, or nil if the vendor is not
// part of the comparison.
func (it *ComparisonItem) Offer(vendorName string) *VendorOfferStatus {
	for i := range it.Offers {
		if it.Offers[i].VendorName == vendorName {
			return &it.Offers[i]
		}
	}
	return nil
}

// VendorScore is one vendor's aggregate standing in a comparison.
type VendorScore struct {
	VendorName      string  `json:"vendorName"`
	TotalScore      float64 `json:"totalScore"`
	PriceScore      float64 `json:"priceScore"`
	LeadTimeScore   float64 `json:"leadTimeScore"`
	ComplianceScore float64 `json:"complianceScore"`
	TotalExVAT      float64 `json:"totalExVat"`
	TotalIncVAT     float64 `json:"totalIncVat"`
	ItemsOffered    int     `json:"itemsOffered"`
	ItemsExcluded   int     `json:"itemsExcluded"`
	MissingItems    int     `json:"missingItems"`
	AvgLeadTimeDays float64 `json:"avgLeadTimeDays"`
}

// ComparisonSummary aggregates the headline numbers of a comparison.
type ComparisonSummary struct {
	TotalItems        int     `json:"totalItems"`
	TotalVendors      int     `json:"totalVendors"`
	BestOverallVendor string  `json:"bestOverallVendor"`
	TotalSavings      float64 `json:"totalSavings"`
	AverageSavings    float64 `json:"averageSavings"`
}

// ComparisonResult is the full output of CompareOffers.
type ComparisonResult struct {
	ID           string            `json:"id"`
	GeneratedAt  time.Time         `json:"generatedAt"`
	Items        []ComparisonItem  `json:"items"`
	VendorScores []VendorScore     `json:"vendorScores"`
	Summary      ComparisonSummary `json:"summary"`
}

// itemKey builds the composite identity of a line: external code when
// present, otherwise the lowercased trimmed description, suffixed with the
// unit of measure. Lines with the same description but different canonical
// units stay distinct items; no cross-unit reconciliation happens here.
func itemKey(line NormalizedOfferLine) string {
	id := line.Code
	if id == "" {
		id = strings.ToLower(strings.TrimSpace(line.Description))
	}
	return id + "_" + line.UOM
}

// BuildMatrix merges normalized offers into per-item comparison rows. The
// first pass collects the union of item keys in encounter order, seeding
// each item from the first line seen for its key; the second pass records
// every vendor's entry for every item, defaulting to HasOffer=false.
func BuildMatrix(offers []NormalizedOffer) []ComparisonItem {
	var items []ComparisonItem
	index := make(map[string]int)

	for _, offer := range offers {
		for _, line := range offer.Lines {
			key := itemKey(line)
			if _, seen := index[key]; seen {
				continue
			}
			index[key] = len(items)
			items = append(items, ComparisonItem{
				Key:         key,
				Code:        line.Code,
				Description: line.Description,
				Category:    line.Category,
				UOM:         line.UOM,
				Qty:         line.Qty,
			})
		}
	}

	for i := range items {
		items[i].Offers = make([]VendorOfferStatus, len(offers))
	}

	for vi, offer := range offers {
		for i := range items {
			items[i].Offers[vi] = VendorOfferStatus{VendorName: offer.VendorName}
		}
		for _, line := range offer.Lines {
			entry := &items[index[itemKey(line)]].Offers[vi]
			entry.HasOffer = true
			entry.IsExcluded = strings.TrimSpace(line.Exclusions) != ""
			entry.UnitPriceExVAT = line.UnitPriceExVAT
			entry.UnitPriceIncVAT = line.UnitPriceIncVAT
			entry.TotalExVAT = line.TotalExVAT
			entry.TotalIncVAT = line.TotalIncVAT
			entry.VATRate = line.VATRate
			entry.Notes = line.Notes
			entry.Exclusions = line.Exclusions
			entry.LeadTime = line.LeadTime
		}
	}

	return items
}

// priceBounds returns the global minimum and maximum VAT-inclusive unit
// price across every vendor's offered items. Zero and negative prices are
// left out of the pool.
func priceBounds(items []ComparisonItem) (min, max float64, ok bool) {
	for _, item := range items {
		for _, o := range item.Offers {
			if !o.HasOffer || o.UnitPriceIncVAT <= 0 {
				continue
			}
			if !ok || o.UnitPriceIncVAT < min {
				min = o.UnitPriceIncVAT
			}
			if !ok || o.UnitPriceIncVAT > max {
				max = o.UnitPriceIncVAT
			}
			ok = true
		}
	}
	return min, max, ok
}

// ScoreVendor computes one vendor's price, lead-time and compliance
// sub-scores and combines them with the (already normalized) weights.
//
// The global price pool excludes zero and negative prices but the vendor's
// own average does not, so a vendor mixing zero or negative prices with
// positive ones can score outside [0,1]. That asymmetry is a recorded
// product decision, not an accident; do not patch it here.
func ScoreVendor(offer NormalizedOffer, items []ComparisonItem, weights ScoringWeights) VendorScore {
	score := VendorScore{
		VendorName:  offer.VendorName,
		TotalExVAT:  offer.TotalExVAT,
		TotalIncVAT: offer.TotalIncVAT,
	}

	var priceSum float64
	var leadTimeSum float64
	var leadTimeCount int

	for _, item := range items {
		entry := item.Offer(offer.VendorName)
		if entry == nil || !entry.HasOffer {
			continue
		}
		score.ItemsOffered++
		if entry.IsExcluded {
			score.ItemsExcluded++
		}
		priceSum += entry.UnitPriceIncVAT
		if strings.TrimSpace(entry.LeadTime) != "" {
			leadTimeSum += ParseLeadTimeDays(entry.LeadTime)
			leadTimeCount++
		}
	}
	score.MissingItems = len(items) - score.ItemsOffered

	// Price: position of the vendor's average against the global spread.
	if score.ItemsOffered > 0 {
		avg := priceSum / float64(score.ItemsOffered)
		min, max, ok := priceBounds(items)
		switch {
		case !ok || max == min:
			score.PriceScore = 1
		default:
			score.PriceScore = 1 - (avg-min)/(max-min)
		}
	}

	// Lead time: average declared days against a fixed 30-day benchmark.
	// Vendors that never state a lead time get a neutral 0.5, not a penalty.
	if leadTimeCount > 0 {
		avgDays := leadTimeSum / float64(leadTimeCount)
		score.AvgLeadTimeDays = avgDays
		score.LeadTimeScore = clamp01(1 - (avgDays-leadTimeBenchmarkDays)/leadTimeBenchmarkDays)
	} else {
		score.LeadTimeScore = 0.5
	}

	// Compliance: coverage minus half-weighted exclusions, floored at zero.
	if len(items) > 0 {
		total := float64(len(items))
		coverage := float64(score.ItemsOffered) / total
		excluded := float64(score.ItemsExcluded) / total
		score.ComplianceScore = math.Max(0, coverage-0.5*excluded)
	}

	score.TotalScore = weights.Price*score.PriceScore +
		weights.LeadTime*score.LeadTimeScore +
		weights.Compliance*score.ComplianceScore

	return score
}

// AnnotateBestOffers fills each item's BestOffer from its qualifying
// entries (offered and not excluded). Savings are computed per unit against
// the worst qualifying price; equal minimal prices are won by the first
// vendor in input order. Items with no qualifying entry keep a nil
// BestOffer.
func AnnotateBestOffers(items []ComparisonItem) {
	for i := range items {
		item := &items[i]

		var best, worst *VendorOfferStatus
		for j := range item.Offers {
			o := &item.Offers[j]
			if !o.HasOffer || o.IsExcluded {
				continue
			}
			if best == nil || o.UnitPriceIncVAT < best.UnitPriceIncVAT {
				best = o
			}
			if worst == nil || o.UnitPriceIncVAT > worst.UnitPriceIncVAT {
				worst = o
			}
		}
		if best == nil {
			continue
		}

		savings := worst.UnitPriceIncVAT - best.UnitPriceIncVAT
		var savingsPercent float64
		if worst.UnitPriceIncVAT != 0 {
			savingsPercent = savings / worst.UnitPriceIncVAT * 100
		}

		item.BestOffer = &BestOffer{
			VendorName:     best.VendorName,
			UnitPrice:      best.UnitPriceIncVAT,
			Savings:        savings,
			SavingsPercent: savingsPercent,
		}
	}
}

// CompareOffers runs the full comparison pipeline: matrix construction,
// vendor scoring, best-offer annotation and summary. An empty offer list
// yields an empty result, not an error; only structurally invalid offers
// (missing vendor name) fail.
func CompareOffers(offers []NormalizedOffer, weights ScoringWeights) (*ComparisonResult, error) {
	for i, offer := range offers {
		if strings.TrimSpace(offer.VendorName) == "" {
			return nil, fmt.Errorf("compare offers: offer %d: missing vendor name", i+1)
		}
	}

	w := weights.normalized()
	items := BuildMatrix(offers)

	scores := make([]VendorScore, 0, len(offers))
	for _, offer := range offers {
		scores = append(scores, ScoreVendor(offer, items, w))
	}

	AnnotateBestOffers(items)

	summary := ComparisonSummary{
		TotalItems:   len(items),
		TotalVendors: len(scores),
	}
	for _, item := range items {
		if item.BestOffer != nil {
			summary.TotalSavings += item.BestOffer.Savings * item.Qty
		}
	}
	if len(items) > 0 {
		summary.AverageSavings = summary.TotalSavings / float64(len(items))
	}
	// Best overall vendor: strictly maximal total score, first in input
	// order on ties.
	if len(scores) > 0 {
		best := scores[0]
		for _, s := range scores[1:] {
			if s.TotalScore > best.TotalScore {
				best = s
			}
		}
		summary.BestOverallVendor = best.VendorName
	}

	return &ComparisonResult{
		ID:           newComparisonID(),
		GeneratedAt:  time.Now(),
		Items:        items,
		VendorScores: scores,
		Summary:      summary,
	}, nil
}

// ValidationReport is the advisory output of ValidateComparison. Warnings
// are informational; callers decide whether to block on them.
type ValidationReport struct {
	IsValid  bool     `json:"isValid"`
	Warnings []string `json:"warnings"`
}

// ValidateComparison checks a result for conditions worth surfacing before
// an award: an empty comparison, fewer than two vendors, and items nobody
// priced. It never fails; the warnings are advisory.
func ValidateComparison(result *ComparisonResult) ValidationReport {
	report := ValidationReport{IsValid: true, Warnings: []string{}}

	if len(result.Items) == 0 {
		report.IsValid = false
		report.Warnings = append(report.Warnings, "comparison contains no items")
	}
	if len(result.VendorScores) < 2 {
		report.IsValid = false
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("comparison has %d vendor(s); at least 2 are needed for a meaningful ranking", len(result.VendorScores)))
	}

	unoffered := 0
	for _, item := range result.Items {
		hasAny := false
		for _, o := range item.Offers {
			if o.HasOffer {
				hasAny = true
				break
			}
		}
		if !hasAny {
			unoffered++
		}
	}
	if unoffered > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d item(s) received no offer from any vendor", unoffered))
	}

	return report
}

func newComparisonID() string {
	return fmt.Sprintf("cmp-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
