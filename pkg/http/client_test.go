package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "fxpulse-calendar/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "USD", r.URL.Query().Get("currency"))
		assert.Equal(t, "week", r.URL.Query().Get("range"))
		switch r.URL.Path {
		case "/fail":
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
		default:
			_, _ = w.Write([]byte(`[{"title":"CPI"}]`))
		}
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("fxpulse-calendar/1.0"), WithTimeout(time.Second))
	query := url.Values{"currency": {"USD"}}

	var out []struct {
		Title string `json:"title"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/feed?range=week", query, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "CPI", out[0].Title)

	err := c.GetJSON(context.Background(), srv.URL+"/fail?range=week", query, &out)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Len(t, se.Body, maxErrorBody)
}

func TestGetJSONRejectsBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out []string
	assert.Error(t, NewClient().GetJSON(context.Background(), srv.URL, nil, &out))
}
