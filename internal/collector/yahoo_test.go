package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYahooServer(t *testing.T, status int, body string) *YahooSource {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") || r.URL.Query().Get("range") != "1y" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return &YahooSource{BaseURL: srv.URL, Client: srv.Client()}
}

func TestYahooSource_SkipsNullBarsAndSorts(t *testing.T) {
	body := `{"chart":{"result":[{
		"timestamp":[1700172800,1700000000,1700086400],
		"indicators":{"quote":[{
			"open":[12,10,null],"high":[13,11,null],"low":[11,9,null],
			"close":[12.5,10.5,null],"volume":[300,100,null]
		}]}
	}],"error":null}}`
	src := newYahooServer(t, http.StatusOK, body)

	bars, err := src.FetchDailyBars(context.Background(), "TCS.NS", "1y")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 10.5, bars[0].Close)
	assert.Equal(t, 12.5, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestYahooSource_EmptyResultIsNotAnError(t *testing.T) {
	src := newYahooServer(t, http.StatusOK, `{"chart":{"result":[],"error":null}}`)
	bars, err := src.FetchDailyBars(context.Background(), "GONE.NS", "1y")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestYahooSource_Errors(t *testing.T) {
	src := newYahooServer(t, http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	_, err := src.FetchDailyBars(context.Background(), "GONE.NS", "1y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")

	src = newYahooServer(t, http.StatusTooManyRequests, `Too Many Requests`)
	_, err = src.FetchDailyBars(context.Background(), "TCS.NS", "1y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
