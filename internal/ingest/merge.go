package ingest

import (
	"strings"

	"finetl/pkg/contracts/domain"
)

// MergeResult carries the costed allocations plus the count of rows that
// found no rate card entry.
type MergeResult struct {
	Costed    []domain.CostedAllocation
	Unmatched int
}

func rateKey(market, department, role string) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(market) + "|" + norm(department) + "|" + norm(role)
}

// MergeRates left-joins allocations against rate card entries on the
// case-insensitive (market, department, role) triple and derives forecasted
// cost and revenue from hours. Every allocation survives the join; rows
// without a matching rate keep zero rates and are counted in Unmatched.
// When several rate entries share a key, the first one wins.
func MergeRates(allocations []domain.AllocationRecord, rates []domain.RateCardEntry) MergeResult {
	index := make(map[string]domain.RateCardEntry, len(rates))
	for _, r := range rates {
		k := rateKey(r.Market, r.Department, r.Role)
		if _, ok := index[k]; !ok {
			index[k] = r
		}
	}

	result := MergeResult{Costed: make([]domain.CostedAllocation, 0, len(allocations))}
	for _, a := range allocations {
		costed := domain.CostedAllocation{AllocationRecord: a}
		if r, ok := index[rateKey(a.Market, a.Department, a.Role)]; ok {
			costed.Matched = true
			costed.CostRate = r.CostRate
			costed.BillRate = r.BillRate
			costed.ForecastedCost = a.Hours * r.CostRate
			costed.ForecastedRevenue = a.Hours * r.BillRate
		} else {
			result.Unmatched++
		}
		result.Costed = append(result.Costed, costed)
	}
	return result
}
