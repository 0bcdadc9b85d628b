package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"IndexSentinel/internal/model"
	"IndexSentinel/internal/saver"
)

// CachedSource archives fetched bars per symbol and day, and serves repeated
// requests for the same day from the archive.
type CachedSource struct {
	Source HistorySource
	Dir    string
	Codec  saver.Codec
	Now    func() time.Time
	Logger *zap.Logger
}

// NewCachedSource wraps src; format selects the archive codec.
func NewCachedSource(src HistorySource, dir, format string, logger *zap.Logger) (*CachedSource, error) {
	codec := saver.NewCodec(format)
	if codec == nil {
		return nil, fmt.Errorf("unsupported cache format %q (use: csv, parquet, json)", format)
	}
	return &CachedSource{Source: src, Dir: dir, Codec: codec, Now: time.Now, Logger: logger}, nil
}

func (c *CachedSource) Name() string { return c.Source.Name() + "+cache" }

// Path returns the archive file for symbol and period on the current day.
func (c *CachedSource) Path(symbol, period string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "^", "_").Replace(symbol)
	day := c.Now().Format("2006-01-02")
	return filepath.Join(c.Dir, safe, fmt.Sprintf("%s_%s_%s.%s", safe, period, day, c.Codec.Extension()))
}

func (c *CachedSource) FetchDailyBars(ctx context.Context, symbol, period string) ([]model.OHLCV, error) {
	path := c.Path(symbol, period)
	if _, err := os.Stat(path); err == nil {
		bars, err := c.Codec.Load(path)
		if err == nil {
			c.Logger.Debug("history cache hit", zap.String("symbol", symbol), zap.String("path", path))
			return saver.ToOHLCV(bars), nil
		}
		c.Logger.Warn("history cache unreadable, refetching", zap.String("path", path), zap.Error(err))
	}

	bars, err := c.Source.FetchDailyBars(ctx, symbol, period)
	if err != nil || len(bars) == 0 {
		return bars, err
	}
	if err := c.store(path, bars); err != nil {
		c.Logger.Warn("history cache write failed", zap.String("path", path), zap.Error(err))
	}
	return bars, nil
}

func (c *CachedSource) store(path string, bars []model.OHLCV) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return c.Codec.Save(saver.FromOHLCV(bars), path)
}
