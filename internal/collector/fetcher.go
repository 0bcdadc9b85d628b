package collector

import (
	"context"
	"fmt"

	"IndexSentinel/internal/model"
)

// QuoteSource supplies the raw live quote table of an index.
type QuoteSource interface {
	FetchSnapshot(ctx context.Context) ([]map[string]any, error)
	Name() string
}

// HistorySource supplies chronological daily bars for one symbol.
// An empty result is not an error.
type HistorySource interface {
	FetchDailyBars(ctx context.Context, symbol, period string) ([]model.OHLCV, error)
	Name() string
}

// SourceUnavailableError means an external source could not produce data.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func unavailable(source string, format string, args ...any) error {
	return &SourceUnavailableError{Source: source, Err: fmt.Errorf(format, args...)}
}
