package analytics

import (
	"errors"
	"fmt"
	"sort"

	"IndexSentinel/internal/model"
)

// ReturnWindow is the number of trading observations in the trailing return.
const ReturnWindow = 30

// EvaluateReturn computes the percent change from the window-th most recent
// close to the latest close. The window counts observations, not calendar days.
func EvaluateReturn(s model.PriceSeries, window int) Outcome[float64] {
	if window <= 0 {
		return failed[float64](errors.New("window must be positive"))
	}
	if s.Len() < window {
		return skipped[float64](fmt.Sprintf("need %d observations, have %d", window, s.Len()))
	}
	closes := s.Closes()
	baseIdx, lastIdx := len(closes)-window, len(closes)-1
	for _, i := range []int{baseIdx, lastIdx} {
		if err := validateClose(i, closes[i]); err != nil {
			return failed[float64](err)
		}
	}
	return computed((closes[lastIdx] - closes[baseIdx]) / closes[baseIdx] * 100)
}

// ThirtyDayReturns ranks every symbol with enough history by its 30-observation
// return, highest first. Callers truncate as needed.
func ThirtyDayReturns(store SeriesLookup, sink Sink) []model.ReturnEntry {
	return NDayReturns(store, ReturnWindow, sink)
}

// NDayReturns is ThirtyDayReturns with a configurable window.
func NDayReturns(store SeriesLookup, window int, sink Sink) []model.ReturnEntry {
	out := make([]model.ReturnEntry, 0)
	for _, sym := range store.Symbols() {
		series, _ := store.Get(sym)
		o := EvaluateReturn(series, window)
		if o.Status == StatusFailed {
			o.Err = &PerSymbolAnalysisError{Symbol: sym, Analysis: AnalysisReturn, Err: o.Err}
		}
		emit(sink, sym, AnalysisReturn, o)
		if o.Status == StatusComputed {
			out = append(out, model.ReturnEntry{Symbol: sym, ReturnPercent: o.Value})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReturnPercent > out[j].ReturnPercent })
	return out
}
