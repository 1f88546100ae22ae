package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"FxPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBotAPI struct {
	sendOK   bool
	getMe    atomic.Int32
	lastChat atomic.Value
	lastText atomic.Value
}

func (f *fakeBotAPI) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		f.getMe.Add(1)
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"fx","username":"fx_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.lastChat.Store(r.Form.Get("chat_id"))
		f.lastText.Store(r.Form.Get("text"))
		if !f.sendOK {
			_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":1700000000,"chat":{"id":-100,"type":"group"}}}`)
	default:
		http.NotFound(w, r)
	}
}

func newFake(t *testing.T, sendOK bool) (*fakeBotAPI, *Notifier) {
	t.Helper()
	f := &fakeBotAPI{sendOK: sendOK}
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)
	return f, New(WithEndpoint(srv.URL+"/bot%s/%s"), WithTimeout(2*time.Second))
}

func TestSendDeliversMessage(t *testing.T) {
	f, n := newFake(t, true)

	require.NoError(t, n.Send(context.Background(), "123:abc", "-100", "hello"))
	require.NoError(t, n.Send(context.Background(), "123:abc", "-100", "again"))

	assert.Equal(t, "-100", f.lastChat.Load())
	assert.Equal(t, "again", f.lastText.Load())
	assert.Equal(t, int32(1), f.getMe.Load(), "bot client is reused per token")
}

func TestSendToChannelName(t *testing.T) {
	f, n := newFake(t, true)
	require.NoError(t, n.Send(context.Background(), "123:abc", "@fx_signals", "hi"))
	assert.Equal(t, "@fx_signals", f.lastChat.Load())
}

func TestSendReportsAPIError(t *testing.T) {
	_, n := newFake(t, false)
	err := n.Send(context.Background(), "123:abc", "-100", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendRequiresCredentials(t *testing.T) {
	n := New()
	require.Error(t, n.Send(context.Background(), "", "-100", "x"))
	require.Error(t, n.Send(context.Background(), "t", " ", "x"))
}

func TestFormatSignal(t *testing.T) {
	start := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	s := &models.Signal{Pair: "EUR/USD", Action: models.ActionSell, Confidence: 93, StartTime: start, EndTime: start.Add(models.WindowLength), Analysis: "Lower highs"}
	msg := FormatSignal(s, "London", time.FixedZone("UTC+3", 3*3600))

	assert.Contains(t, msg, "EUR/USD SELL")
	assert.Contains(t, msg, "Confidence: 93%")
	assert.Contains(t, msg, "13:00 - 13:05")
	assert.Contains(t, msg, "Session: London")
	assert.Contains(t, msg, "Lower highs")
}
