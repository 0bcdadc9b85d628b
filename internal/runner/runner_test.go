package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"IndexSentinel/internal/analytics"
	"IndexSentinel/internal/collector"
	"IndexSentinel/internal/model"
	"IndexSentinel/internal/recorder"
	"IndexSentinel/internal/snapshot"
)

type captureRecorder struct {
	mu   sync.Mutex
	runs []recorder.RunRecord
}

func (c *captureRecorder) RecordRun(rec *recorder.RunRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, *rec)
	return nil
}

func (c *captureRecorder) Close() error { return nil }

type captureNotifier struct {
	messages []string
}

func (c *captureNotifier) Notify(_ context.Context, text string) error {
	c.messages = append(c.messages, text)
	return nil
}

func linearBars(start, step float64, n int) []model.OHLCV {
	end := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := start + step*float64(i)
		bars[i] = model.OHLCV{Time: end.AddDate(0, 0, i-n+1), Open: c, High: c, Low: c, Close: c}
	}
	return bars
}

func fixture(t *testing.T) (*Runner, *captureRecorder, *captureNotifier, string) {
	t.Helper()
	quotes := &collector.MockQuoteSource{Rows: []map[string]any{
		{"symbol": "AAA", "pChange": 1.5},
		{"symbol": "BBB", "pChange": "-2.0%"},
		{"symbol": "CCC", "pChange": 0.5},
		{"symbol": "DDD", "pChange": 0.0},
	}}
	broken := linearBars(50, 1, 40)
	broken[10].Close = 0
	hist := &collector.MockHistorySource{
		Bars: map[string][]model.OHLCV{
			"AAA.NS": linearBars(100, 1, 40),  // 100 -> 139, far above its low
			"BBB.NS": linearBars(200, -3, 40), // 200 -> 83, far below its high
			"DDD.NS": broken,
		},
		Errs: map[string]error{"CCC.NS": errors.New("timeout")},
	}
	rec := &captureRecorder{}
	n := &captureNotifier{}
	path := filepath.Join(t.TempDir(), "out", "report.txt")
	r := New(quotes, hist, rec, n, Options{
		IndexName:    "NIFTY 50",
		SymbolSuffix: ".NS",
		Period:       "1y",
		Concurrency:  2,
		TopN:         5,
		ReportPath:   path,
	}, zap.NewNop())
	return r, rec, n, path
}

func TestRun_Success(t *testing.T) {
	r, rec, n, path := fixture(t)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.RunID)

	got := res.Results
	require.Len(t, got.Gainers, 4)
	assert.Equal(t, "AAA", got.Gainers[0].Symbol)
	assert.Equal(t, "BBB", got.Losers[0].Symbol)

	require.Len(t, got.BelowHigh, 1)
	assert.Equal(t, "BBB.NS", got.BelowHigh[0].Symbol)
	assert.Equal(t, 200.0, got.BelowHigh[0].ExtremePrice)
	require.Len(t, got.AboveLow, 1)
	assert.Equal(t, "AAA.NS", got.AboveLow[0].Symbol)
	assert.Equal(t, 100.0, got.AboveLow[0].ExtremePrice)

	require.Len(t, got.Returns, 2)
	assert.Equal(t, "AAA.NS", got.Returns[0].Symbol)
	assert.InDelta(t, (139.0-110.0)/110.0*100, got.Returns[0].ReturnPercent, 1e-9)

	// DDD.NS has a zero close: it fails both series analyses without aborting the run.
	assert.Equal(t, 2, res.Diagnostics.Count(analytics.StatusFailed))
	for _, d := range res.Diagnostics {
		var perr *analytics.PerSymbolAnalysisError
		require.ErrorAs(t, d.Err, &perr)
		assert.Equal(t, "DDD.NS", perr.Symbol)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Report, string(data))
	assert.True(t, strings.HasPrefix(res.Report, "----- Top 5 Gainers -----\n"))

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, res.RunID, run.ID)
	assert.Equal(t, recorder.StatusOK, run.Status)
	assert.Equal(t, 4, run.QuoteCount)
	assert.Equal(t, 3, run.HistoryCount)
	assert.Equal(t, 2, run.Failed)
	assert.Same(t, res.Results, run.Results)

	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "<pre>")
	assert.Contains(t, n.messages[0], "AAA.NS")

	last, ok := r.LastReport()
	assert.True(t, ok)
	assert.Equal(t, res.Report, last)
}

func TestRun_SourceUnavailable(t *testing.T) {
	r, rec, n, path := fixture(t)
	r.Quotes = &collector.MockQuoteSource{Err: &collector.SourceUnavailableError{
		Source: "nse", Err: collector.ErrMockUnavailable,
	}}

	res, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)

	var srcErr *collector.SourceUnavailableError
	assert.ErrorAs(t, err, &srcErr)
	assert.ErrorIs(t, err, collector.ErrMockUnavailable)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no report on a failed run")

	require.Len(t, rec.runs, 1)
	assert.Equal(t, recorder.StatusFailed, rec.runs[0].Status)
	assert.Contains(t, rec.runs[0].Error, "mock source offline")
	assert.Nil(t, rec.runs[0].Results)

	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "analysis failed")

	_, ok := r.LastReport()
	assert.False(t, ok)
}

func TestRun_MalformedSnapshot(t *testing.T) {
	r, rec, _, _ := fixture(t)
	r.Quotes = &collector.MockQuoteSource{Rows: []map[string]any{
		{"symbol": "AAA", "pChange": 1.0},
		{"symbol": "BBB", "pChange": "n/a"},
	}}

	_, err := r.Run(context.Background())
	var mErr *snapshot.MalformedQuoteError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, 1, mErr.Row)
	require.Len(t, rec.runs, 1)
	assert.Equal(t, recorder.StatusFailed, rec.runs[0].Status)
}

func TestRun_EmptySnapshot(t *testing.T) {
	r, _, _, _ := fixture(t)
	r.Quotes = &collector.MockQuoteSource{}

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Results.Gainers)
	assert.Empty(t, res.Results.Returns)
	assert.Contains(t, res.Report, "----- Top 5 Stocks by 30-Day Return -----")
}

func TestRun_RejectsOverlap(t *testing.T) {
	r, rec, _, _ := fixture(t)
	assert.False(t, r.Running())
	r.mu.Lock()
	_, err := r.Run(context.Background())
	r.mu.Unlock()

	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Empty(t, rec.runs)
}

func TestNew_Defaults(t *testing.T) {
	rows := make([]map[string]any, 7)
	for i := range rows {
		rows[i] = map[string]any{"symbol": string(rune('A' + i)), "pChange": float64(i)}
	}
	r := New(&collector.MockQuoteSource{Rows: rows}, &collector.MockHistorySource{}, nil, nil, Options{}, nil)
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Results.AboveLow)

	// rows shown under the "Top 5" headers never exceed five
	require.Len(t, res.Results.Gainers, analytics.DefaultTopN)
	require.Len(t, res.Results.Losers, analytics.DefaultTopN)
	assert.Equal(t, "G", res.Results.Gainers[0].Symbol)
	assert.Equal(t, "A", res.Results.Losers[0].Symbol)
	assert.Equal(t, 5, strings.Count(strings.Split(res.Report, "----- Top 5 Losers -----")[0], "%\n"))
}

type observingQuotes struct {
	r    *Runner
	busy bool
}

func (o *observingQuotes) Name() string { return "observing" }

func (o *observingQuotes) FetchSnapshot(context.Context) ([]map[string]any, error) {
	o.busy = o.r.Running()
	return nil, nil
}

func TestRunning_TrueOnlyDuringRun(t *testing.T) {
	r, _, _, _ := fixture(t)
	q := &observingQuotes{r: r}
	r.Quotes = q

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, q.busy)
	assert.False(t, r.Running())
}
