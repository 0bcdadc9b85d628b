package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"IndexSentinel/internal/model"
)

// FinanceGoSource implements HistorySource on top of the finance-go chart client.
type FinanceGoSource struct {
	Now func() time.Time
}

func NewFinanceGoSource() *FinanceGoSource {
	return &FinanceGoSource{Now: time.Now}
}

func (f *FinanceGoSource) Name() string { return "financego" }

func (f *FinanceGoSource) FetchDailyBars(ctx context.Context, symbol, period string) ([]model.OHLCV, error) {
	end := f.Now()
	start, err := PeriodStart(period, end)
	if err != nil {
		return nil, err
	}

	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var bars []model.OHLCV
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := iter.Bar()
		c := toFloat(b.Close)
		if c == 0 {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   toFloat(b.Open),
			High:   toFloat(b.High),
			Low:    toFloat(b.Low),
			Close:  c,
			Volume: float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("finance-go chart %s: %w", symbol, err)
	}
	return bars, nil
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
