package collector

import (
	"context"
	"errors"
	"time"

	"IndexSentinel/internal/model"
)

// MockQuoteSource returns a fixed table for development and testing.
type MockQuoteSource struct {
	Rows []map[string]any
	Err  error
}

func (m *MockQuoteSource) Name() string { return "mock" }

func (m *MockQuoteSource) FetchSnapshot(_ context.Context) ([]map[string]any, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rows, nil
}

// MockHistorySource returns controllable bars per symbol.
// Symbols without an entry get generated bars around BasePrice, unless BasePrice is zero.
type MockHistorySource struct {
	BasePrice float64
	Days      int
	Bars      map[string][]model.OHLCV
	Errs      map[string]error
}

func (m *MockHistorySource) Name() string { return "mock" }

func (m *MockHistorySource) FetchDailyBars(ctx context.Context, symbol, _ string) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	if m.BasePrice == 0 {
		return nil, nil
	}
	days := m.Days
	if days == 0 {
		days = 252
	}
	return GenerateBars(m.BasePrice, days, time.Now()), nil
}

// GenerateBars builds a gently rising daily series ending at end.
func GenerateBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// ErrMockUnavailable can be used to simulate a failing source.
var ErrMockUnavailable = errors.New("mock source offline")
