// Package runner executes one complete analysis of an index snapshot.
package runner

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"IndexSentinel/internal/analytics"
	"IndexSentinel/internal/collector"
	"IndexSentinel/internal/history"
	"IndexSentinel/internal/notifier"
	"IndexSentinel/internal/recorder"
	"IndexSentinel/internal/report"
	"IndexSentinel/internal/snapshot"
)

// ErrRunInProgress is returned when Run is called while another run is active.
var ErrRunInProgress = errors.New("analysis run already in progress")

// Options control a single run.
type Options struct {
	IndexName    string
	SymbolSuffix string // appended to snapshot symbols for the history source, e.g. ".NS"
	Period       string
	Concurrency  int
	TopN         int // gainers and losers per side; zero means analytics.DefaultTopN
	Extremes     analytics.ExtremeOptions
	ReportPath   string // empty disables writing the report file
}

// Result is the outcome of a successful run.
type Result struct {
	RunID       string
	Report      string
	Results     *report.Results
	Diagnostics analytics.Diagnostics
}

// Runner wires the sources, analytics and outputs together.
type Runner struct {
	Quotes   collector.QuoteSource
	History  collector.HistorySource
	Recorder recorder.Recorder
	Notifier notifier.Notifier
	Opts     Options
	Logger   *zap.Logger
	Now      func() time.Time

	mu      sync.Mutex
	running atomic.Bool
	lastMu  sync.RWMutex
	last    string
}

// New creates a Runner. Nil recorder and notifier fall back to no-ops.
func New(quotes collector.QuoteSource, hist collector.HistorySource, rec recorder.Recorder, n notifier.Notifier, opts Options, logger *zap.Logger) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if n == nil {
		n = notifier.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Quotes:   quotes,
		History:  hist,
		Recorder: rec,
		Notifier: n,
		Opts:     opts,
		Logger:   logger,
		Now:      time.Now,
	}
}

type stats struct {
	quotes  int
	history int
	skipped int
	failed  int
}

// Run performs one analysis. Only one run executes at a time; a concurrent
// call returns ErrRunInProgress immediately.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if !r.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.mu.Unlock()
	r.running.Store(true)
	defer r.running.Store(false)

	id := uuid.NewString()
	started := r.Now()
	logger := r.Logger.With(zap.String("run_id", id), zap.String("index", r.Opts.IndexName))
	logger.Info("analysis run started")

	res, st, err := r.analyze(ctx, logger)

	rec := &recorder.RunRecord{
		ID:           id,
		StartedAt:    started,
		Duration:     r.Now().Sub(started),
		Index:        r.Opts.IndexName,
		Source:       r.History.Name(),
		QuoteCount:   st.quotes,
		HistoryCount: st.history,
		Skipped:      st.skipped,
		Failed:       st.failed,
	}
	if err != nil {
		logger.Error("analysis run failed", zap.Error(err))
		rec.Status = recorder.StatusFailed
		rec.Error = err.Error()
		r.record(logger, rec)
		r.notify(ctx, logger, fmt.Sprintf("❌ <b>%s analysis failed</b>\n\n%s",
			html.EscapeString(r.Opts.IndexName), html.EscapeString(err.Error())))
		return nil, fmt.Errorf("run %s: %w", id, err)
	}

	res.RunID = id
	rec.Status = recorder.StatusOK
	rec.Results = res.Results
	r.record(logger, rec)

	r.lastMu.Lock()
	r.last = res.Report
	r.lastMu.Unlock()

	r.notify(ctx, logger, report.FormatTelegram(r.Opts.IndexName+" daily analysis", res.Report))
	logger.Info("analysis run finished",
		zap.Duration("elapsed", rec.Duration),
		zap.Int("skipped", st.skipped),
		zap.Int("failed", st.failed))
	return res, nil
}

// Running reports whether a run is currently executing.
func (r *Runner) Running() bool { return r.running.Load() }

// LastReport returns the text of the most recent successful run.
func (r *Runner) LastReport() (string, bool) {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()
	return r.last, r.last != ""
}

func (r *Runner) analyze(ctx context.Context, logger *zap.Logger) (*Result, stats, error) {
	var st stats

	rows, err := r.Quotes.FetchSnapshot(ctx)
	if err != nil {
		return nil, st, fmt.Errorf("fetch snapshot: %w", err)
	}
	quotes, err := snapshot.Normalize(rows)
	if err != nil {
		return nil, st, fmt.Errorf("normalize snapshot: %w", err)
	}
	st.quotes = len(quotes)
	logger.Info("snapshot loaded", zap.String("source", r.Quotes.Name()), zap.Int("quotes", len(quotes)))

	topN := r.Opts.TopN
	if topN == 0 {
		topN = analytics.DefaultTopN
	}
	gainers, losers := analytics.TopGainersLosers(quotes, topN)

	tickers := make([]string, len(quotes))
	for i, q := range quotes {
		tickers[i] = q.Symbol + r.Opts.SymbolSuffix
	}
	store, err := history.Populate(ctx, r.History, tickers, history.Options{
		Period:      r.Opts.Period,
		Concurrency: r.Opts.Concurrency,
	}, logger)
	if err != nil {
		return nil, st, fmt.Errorf("populate history: %w", err)
	}
	st.history = store.Len()

	var diags analytics.Diagnostics
	sink := analytics.SinkFunc(func(d analytics.Diagnostic) {
		diags.Report(d)
		fields := []zap.Field{
			zap.String("symbol", d.Symbol),
			zap.String("analysis", d.Analysis),
		}
		if d.Status == analytics.StatusFailed {
			logger.Warn("symbol analysis failed", append(fields, zap.Error(d.Err))...)
			return
		}
		logger.Debug("symbol skipped", append(fields, zap.String("reason", d.Reason))...)
	})

	belowHigh, aboveLow := analytics.BelowHighAboveLow(store, r.Opts.Extremes, sink)
	returns := analytics.ThirtyDayReturns(store, sink)
	st.skipped = diags.Count(analytics.StatusSkipped)
	st.failed = diags.Count(analytics.StatusFailed)

	results := &report.Results{
		Gainers:   gainers,
		Losers:    losers,
		BelowHigh: belowHigh,
		AboveLow:  aboveLow,
		Returns:   returns,
	}
	text := report.Format(results)
	if r.Opts.ReportPath != "" {
		if err := report.WriteFile(r.Opts.ReportPath, text); err != nil {
			return nil, st, fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", zap.String("path", r.Opts.ReportPath))
	}

	return &Result{Report: text, Results: results, Diagnostics: diags}, st, nil
}

func (r *Runner) record(logger *zap.Logger, rec *recorder.RunRecord) {
	if err := r.Recorder.RecordRun(rec); err != nil {
		logger.Error("record run failed", zap.Error(err))
	}
}

func (r *Runner) notify(ctx context.Context, logger *zap.Logger, text string) {
	if err := r.Notifier.Notify(ctx, text); err != nil {
		logger.Error("send notification failed", zap.Error(err))
	}
}
