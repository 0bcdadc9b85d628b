package analytics

import (
	"math"
	"sort"

	"IndexSentinel/internal/model"
)

// Default thresholds relative to the window extremes.
const (
	DefaultHighThreshold = 0.70
	DefaultLowThreshold  = 1.20
)

// ExtremeOptions configures BelowHighAboveLow. Zero fields take defaults.
type ExtremeOptions struct {
	HighThreshold float64
	LowThreshold  float64
	Limit         int
}

func (o ExtremeOptions) withDefaults() ExtremeOptions {
	if o.HighThreshold == 0 {
		o.HighThreshold = DefaultHighThreshold
	}
	if o.LowThreshold == 0 {
		o.LowThreshold = DefaultLowThreshold
	}
	if o.Limit <= 0 {
		o.Limit = DefaultTopN
	}
	return o
}

// Range is the latest close and the extremes of a series.
type Range struct {
	Current float64
	High    float64
	Low     float64
}

// EvaluateRange scans the whole fetched window. The window is whatever history
// the source returned (nominally one year), not a calendar-aligned 52 weeks.
func EvaluateRange(s model.PriceSeries) Outcome[Range] {
	if s.Len() == 0 {
		return skipped[Range]("no history")
	}
	closes := s.Closes()
	if err := validateCloses(closes); err != nil {
		return failed[Range](err)
	}
	high, low := math.Inf(-1), math.Inf(1)
	for _, c := range closes {
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}
	}
	return computed(Range{Current: closes[len(closes)-1], High: high, Low: low})
}

type rankedDeviation struct {
	entry model.ExtremeDeviation
	ratio float64
}

// BelowHighAboveLow finds symbols trading at or below HighThreshold of their
// window high and at or above LowThreshold of their window low. The below-high
// set is ranked most depressed first, the above-low set most elevated first.
// A symbol may appear in both.
func BelowHighAboveLow(store SeriesLookup, opts ExtremeOptions, sink Sink) (belowHigh, aboveLow []model.ExtremeDeviation) {
	opts = opts.withDefaults()

	var below, above []rankedDeviation
	for _, sym := range store.Symbols() {
		series, _ := store.Get(sym)
		o := EvaluateRange(series)
		if o.Status == StatusFailed {
			o.Err = &PerSymbolAnalysisError{Symbol: sym, Analysis: AnalysisRange, Err: o.Err}
		}
		emit(sink, sym, AnalysisRange, o)
		if o.Status != StatusComputed {
			continue
		}

		r := o.Value
		if r.Current <= opts.HighThreshold*r.High {
			below = append(below, rankedDeviation{
				entry: model.ExtremeDeviation{Symbol: sym, CurrentPrice: r.Current, ExtremePrice: r.High},
				ratio: r.Current / r.High,
			})
		}
		if r.Current >= opts.LowThreshold*r.Low {
			above = append(above, rankedDeviation{
				entry: model.ExtremeDeviation{Symbol: sym, CurrentPrice: r.Current, ExtremePrice: r.Low},
				ratio: r.Current / r.Low,
			})
		}
	}

	sort.SliceStable(below, func(i, j int) bool { return below[i].ratio < below[j].ratio })
	sort.SliceStable(above, func(i, j int) bool { return above[i].ratio > above[j].ratio })

	return entries(head(below, opts.Limit)), entries(head(above, opts.Limit))
}

func entries(ranked []rankedDeviation) []model.ExtremeDeviation {
	out := make([]model.ExtremeDeviation, len(ranked))
	for i, r := range ranked {
		out[i] = r.entry
	}
	return out
}
