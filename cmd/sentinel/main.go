package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"IndexSentinel/internal/analytics"
	"IndexSentinel/internal/collector"
	"IndexSentinel/internal/config"
	"IndexSentinel/internal/logx"
	"IndexSentinel/internal/notifier"
	"IndexSentinel/internal/recorder"
	"IndexSentinel/internal/runner"
	"IndexSentinel/internal/scheduler"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	logger, err := logx.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("IndexSentinel exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("IndexSentinel starting", zap.String("index", cfg.Index.Name))

	quotes, hist, err := sources(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("data sources ready",
		zap.String("quotes", quotes.Name()),
		zap.String("history", hist.Name()))

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	var (
		notify notifier.Notifier = notifier.Noop{}
		tn     *notifier.TelegramNotifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		notify = tn
	}

	r := runner.New(quotes, hist, rec, notify, runner.Options{
		IndexName:    cfg.Index.Name,
		SymbolSuffix: cfg.Index.SymbolSuffix,
		Period:       cfg.History.Period,
		Concurrency:  cfg.History.Concurrency,
		Extremes: analytics.ExtremeOptions{
			HighThreshold: cfg.Analytics.HighThreshold,
			LowThreshold:  cfg.Analytics.LowThreshold,
		},
		ReportPath: cfg.ReportPath(),
	}, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if os.Getenv("RUN_ONCE") == "true" {
		res, err := r.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Print(res.Report)
		return nil
	}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	sched := scheduler.NewScheduler(ctx, r, loc, logger)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, executing analysis now")
		go sched.RunNow()
	}

	logger.Info("IndexSentinel is running, press Ctrl+C to stop",
		zap.String("cron", cfg.Schedule.DailyCron),
		zap.String("timezone", cfg.Schedule.Timezone))
	<-ctx.Done()
	logger.Info("shutdown signal received, stopping")
	return nil
}

func sources(cfg *config.Config, logger *zap.Logger) (collector.QuoteSource, collector.HistorySource, error) {
	var (
		quotes collector.QuoteSource = collector.NewNSESource(cfg.Index.QuoteURL, cfg.Index.PrimeURL, cfg.Proxy, logger)
		hist   collector.HistorySource
	)
	switch strings.ToLower(cfg.History.Provider) {
	case "yahoo":
		hist = collector.NewYahooSource(cfg.Proxy)
	case "financego":
		hist = collector.NewFinanceGoSource()
	case "rest":
		hist = collector.NewRESTSource(cfg.History.BaseURL, cfg.History.APIKey, cfg.Proxy)
	case "mock":
		quotes = &collector.MockQuoteSource{Rows: demoRows}
		hist = &collector.MockHistorySource{BasePrice: 1000}
	default:
		return nil, nil, fmt.Errorf("unknown history provider %q", cfg.History.Provider)
	}

	if cfg.History.CacheDir != "" {
		cached, err := collector.NewCachedSource(hist, cfg.History.CacheDir, cfg.History.CacheFormat, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init history cache: %w", err)
		}
		hist = cached
	}
	return quotes, hist, nil
}

// demoRows feeds the mock provider so the whole pipeline can run offline.
var demoRows = []map[string]any{
	{"symbol": "RELIANCE", "pChange": 1.42},
	{"symbol": "TCS", "pChange": -0.87},
	{"symbol": "HDFCBANK", "pChange": 0.35},
	{"symbol": "INFY", "pChange": "-1.96%"},
	{"symbol": "ICICIBANK", "pChange": 2.11},
	{"symbol": "ITC", "pChange": 0.04},
	{"symbol": "LT", "pChange": -0.52},
}
