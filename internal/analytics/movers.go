package analytics

import (
	"sort"

	"IndexSentinel/internal/model"
)

// DefaultTopN is the number of gainers and losers reported.
const DefaultTopN = 5

// TopGainersLosers returns up to n quotes with the largest and smallest percent change.
// Gainers are ordered descending, losers ascending; ties keep input order.
func TopGainersLosers(quotes []model.Quote, n int) (gainers, losers []model.GainerLoser) {
	if n <= 0 {
		return []model.GainerLoser{}, []model.GainerLoser{}
	}

	desc := toMovers(quotes)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].PercentChange > desc[j].PercentChange })

	asc := toMovers(quotes)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].PercentChange < asc[j].PercentChange })

	return head(desc, n), head(asc, n)
}

func toMovers(quotes []model.Quote) []model.GainerLoser {
	out := make([]model.GainerLoser, len(quotes))
	for i, q := range quotes {
		out[i] = model.GainerLoser{Symbol: q.Symbol, PercentChange: q.PercentChange}
	}
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
