package analytics

import (
	"fmt"
	"math"

	"IndexSentinel/internal/model"
)

// Analysis names used in diagnostics.
const (
	AnalysisRange  = "52-week range"
	AnalysisReturn = "30-day return"
)

// SeriesLookup is the read side of the historical series store.
// Symbols must return a stable order so rankings are deterministic.
type SeriesLookup interface {
	Symbols() []string
	Get(symbol string) (model.PriceSeries, bool)
}

// Status classifies a per-symbol evaluation.
type Status int

const (
	StatusComputed Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusComputed:
		return "computed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the result of evaluating one symbol: a value, a skip, or a failure.
type Outcome[T any] struct {
	Status Status
	Value  T
	Reason string // set when skipped
	Err    error  // set when failed
}

func computed[T any](v T) Outcome[T] { return Outcome[T]{Status: StatusComputed, Value: v} }

func skipped[T any](reason string) Outcome[T] {
	return Outcome[T]{Status: StatusSkipped, Reason: reason}
}

func failed[T any](err error) Outcome[T] { return Outcome[T]{Status: StatusFailed, Err: err} }

// PerSymbolAnalysisError reports that one symbol could not be analysed.
// It never aborts a batch.
type PerSymbolAnalysisError struct {
	Symbol   string
	Analysis string
	Err      error
}

func (e *PerSymbolAnalysisError) Error() string {
	return fmt.Sprintf("%s for %s: %v", e.Analysis, e.Symbol, e.Err)
}

func (e *PerSymbolAnalysisError) Unwrap() error { return e.Err }

// Diagnostic describes a symbol that did not contribute to a result set.
type Diagnostic struct {
	Symbol   string
	Analysis string
	Status   Status
	Reason   string
	Err      error
}

// Sink receives diagnostics for skipped and failed symbols.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(d Diagnostic)

func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Diagnostics is a Sink that keeps everything it receives.
type Diagnostics []Diagnostic

func (ds *Diagnostics) Report(d Diagnostic) { *ds = append(*ds, d) }

// Count returns how many diagnostics carry the given status.
func (ds Diagnostics) Count(status Status) int {
	n := 0
	for _, d := range ds {
		if d.Status == status {
			n++
		}
	}
	return n
}

func emit[T any](sink Sink, symbol, analysis string, o Outcome[T]) {
	if sink == nil || o.Status == StatusComputed {
		return
	}
	sink.Report(Diagnostic{
		Symbol:   symbol,
		Analysis: analysis,
		Status:   o.Status,
		Reason:   o.Reason,
		Err:      o.Err,
	})
}

// validateCloses rejects closes that cannot be used as prices.
func validateCloses(closes []float64) error {
	for i, c := range closes {
		if err := validateClose(i, c); err != nil {
			return err
		}
	}
	return nil
}

func validateClose(i int, c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return fmt.Errorf("close at index %d is not finite", i)
	}
	if c <= 0 {
		return fmt.Errorf("close at index %d is not positive: %v", i, c)
	}
	return nil
}
