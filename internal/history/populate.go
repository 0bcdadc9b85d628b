package history

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"IndexSentinel/internal/collector"
	"IndexSentinel/internal/model"
)

// Options controls population of a Store.
type Options struct {
	Period      string // lookback passed to the source, e.g. "1y"
	Concurrency int
}

// Populate fetches history for every symbol. Symbols whose fetch fails or returns
// nothing are logged and left out; only context cancellation fails the call.
func Populate(ctx context.Context, src collector.HistorySource, symbols []string, opts Options, logger *zap.Logger) (*Store, error) {
	if opts.Period == "" {
		opts.Period = "1y"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	results := make([]model.PriceSeries, len(symbols))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logger.Info("fetching historical data", zap.String("symbol", sym))
			bars, err := src.FetchDailyBars(gctx, sym, opts.Period)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Error("historical fetch failed", zap.String("symbol", sym), zap.Error(err))
				return nil
			}
			if len(bars) == 0 {
				logger.Warn("no historical data", zap.String("symbol", sym))
				return nil
			}
			results[i] = model.NewPriceSeries(sym, bars)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store := NewStore()
	for _, ps := range results {
		store.Put(ps)
	}
	logger.Info("historical data loaded",
		zap.String("source", src.Name()),
		zap.Int("requested", len(symbols)),
		zap.Int("loaded", store.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return store, nil
}
