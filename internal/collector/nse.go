package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Default NSE endpoints for the NIFTY 50 index.
const (
	DefaultNSEQuoteURL = "https://www.nseindia.com/api/equity-stockIndices?index=NIFTY%2050"
	DefaultNSEPrimeURL = "https://www.nseindia.com/market-data/live-equity-market?symbol=NIFTY%2050"
)

// browserHeaders makes API requests look like they come from the NSE web page.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36",
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Origin":             "https://www.nseindia.com",
	"sec-ch-ua":          `"Chromium";v="112", "Google Chrome";v="112", "Not:A-Brand";v="99"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"Windows"`,
	"Sec-Fetch-Dest":     "empty",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Site":     "same-origin",
}

// NSESource fetches the live constituent table of an NSE index.
// The landing page is requested first so the session carries the cookies the API expects.
type NSESource struct {
	QuoteURL string
	PrimeURL string

	client *resty.Client
	logger *zap.Logger
}

// NewNSESource creates a session-backed quote source with optional proxy support.
func NewNSESource(quoteURL, primeURL, proxyURL string, logger *zap.Logger) *NSESource {
	if quoteURL == "" {
		quoteURL = DefaultNSEQuoteURL
	}
	if primeURL == "" {
		primeURL = DefaultNSEPrimeURL
	}
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeaders(browserHeaders).
		SetHeader("Referer", primeURL)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &NSESource{
		QuoteURL: quoteURL,
		PrimeURL: primeURL,
		client:   client,
		logger:   logger,
	}
}

func (s *NSESource) Name() string { return "nse" }

// FetchSnapshot primes the session and returns the rows of the "data" array,
// without the index's own aggregate row.
func (s *NSESource) FetchSnapshot(ctx context.Context) ([]map[string]any, error) {
	s.logger.Info("priming NSE session", zap.String("url", s.PrimeURL))
	if _, err := s.client.R().SetContext(ctx).Get(s.PrimeURL); err != nil {
		return nil, &SourceUnavailableError{Source: s.Name(), Err: err}
	}

	s.logger.Info("requesting live data", zap.String("url", s.QuoteURL))
	resp, err := s.client.R().SetContext(ctx).Get(s.QuoteURL)
	if err != nil {
		return nil, &SourceUnavailableError{Source: s.Name(), Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, unavailable(s.Name(), "status %d", resp.StatusCode())
	}

	rows, err := decodeDataRows(resp.Body())
	if err != nil {
		return nil, &SourceUnavailableError{Source: s.Name(), Err: err}
	}
	rows = dropIndexRow(rows)
	s.logger.Info("live data fetched", zap.Int("records", len(rows)))
	return rows, nil
}

var errNoDataKey = errors.New(`expected key "data" not found in response`)

func decodeDataRows(body []byte) ([]map[string]any, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	raw, ok := payload["data"]
	if !ok {
		return nil, errNoDataKey
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// dropIndexRow removes the aggregate row NSE lists first with priority 1.
func dropIndexRow(rows []map[string]any) []map[string]any {
	out := rows[:0:0]
	for _, r := range rows {
		if p, ok := r["priority"].(float64); ok && p == 1 {
			continue
		}
		out = append(out, r)
	}
	return out
}
