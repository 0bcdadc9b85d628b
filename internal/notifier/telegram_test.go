package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTelegram struct {
	mu       sync.Mutex
	messages []map[string]string
	updates  string
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/botTOKEN/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		f.mu.Lock()
		f.messages = append(f.messages, payload)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/botTOKEN/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(f.updates))
	})
	return mux
}

func newTestNotifier(t *testing.T, f *fakeTelegram) *TelegramNotifier {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "1234", "", zap.NewNop())
	n.APIBase = srv.URL
	return n
}

func TestTelegramNotifier_Notify(t *testing.T) {
	f := &fakeTelegram{}
	n := newTestNotifier(t, f)

	require.NoError(t, n.Notify(context.Background(), "<pre>report</pre>"))
	require.Len(t, f.messages, 1)
	assert.Equal(t, "1234", f.messages[0]["chat_id"])
	assert.Equal(t, "HTML", f.messages[0]["parse_mode"])
	assert.Equal(t, "<pre>report</pre>", f.messages[0]["text"])
}

func TestTelegramNotifier_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	n := NewTelegramNotifier("TOKEN", "1234", "", zap.NewNop())
	n.APIBase = srv.URL

	err := n.SendWithRetry(context.Background(), "hi", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTelegramNotifier_PollDispatchesCommands(t *testing.T) {
	f := &fakeTelegram{updates: `{"ok":true,"result":[
		{"update_id":7,"message":{"text":" /last "}},
		{"update_id":8,"message":null}
	]}`}
	n := newTestNotifier(t, f)

	var got []string
	offset, err := n.poll(context.Background(), n.Client, 0, func(cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	})
	require.NoError(t, err)
	assert.Equal(t, 9, offset)
	assert.Equal(t, []string{"/last"}, got)
	require.Len(t, f.messages, 1)
	assert.Equal(t, "reply to /last", f.messages[0]["text"])
}

func TestNoop(t *testing.T) {
	var n Notifier = Noop{}
	assert.NoError(t, n.Notify(context.Background(), "x"))
}
