package app

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/printhart/printhart/internal/shared"
)

func TestSessionCommitFailureIsLogged(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, "printhart_session", "test-secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.Set("k", "v")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// Redis goes away before the response is written; the commit failure
	// must surface in the log instead of vanishing.
	mr.Close()

	w := &committingResponseWriter{
		ResponseWriter: httptest.NewRecorder(),
		sess:           sess,
		manager:        sm,
		req:            req,
		logger:         logger,
	}
	w.WriteHeader(http.StatusOK)

	require.Contains(t, buf.String(), "session commit failed")
	require.Contains(t, buf.String(), "/orders")
}

func TestSessionCommitSuccessLogsNothing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, "printhart_session", "test-secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.Set("k", "v")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rec := httptest.NewRecorder()
	w := &committingResponseWriter{
		ResponseWriter: rec,
		sess:           sess,
		manager:        sm,
		req:            req,
		logger:         logger,
	}
	w.WriteHeader(http.StatusOK)

	require.Empty(t, buf.String())
	require.NotEmpty(t, rec.Result().Cookies())
}
