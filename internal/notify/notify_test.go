package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskScope/internal/metrics"
)

type recordingSender struct {
	mu    sync.Mutex
	texts []string
	fail  map[string]bool
}

func (s *recordingSender) Send(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[text] {
		return errors.New("telegram status 429")
	}
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func TestQueueDeliversInOrder(t *testing.T) {
	sender := &recordingSender{}
	q := NewQueue(sender, 8, 5*time.Millisecond, nil, nil)
	q.Notify("one")
	q.Notify("two")
	q.Notify("three")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	require.Eventually(t, func() bool { return len(sender.sent()) == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, []string{"one", "two", "three"}, sender.sent())
}

func TestQueueDropsWhenFull(t *testing.T) {
	m := metrics.New()
	q := NewQueue(&recordingSender{}, 1, time.Second, m, nil)

	q.Notify("kept")
	q.Notify("dropped")

	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("dropped")))
}

func TestQueueSendFailureDropsMessage(t *testing.T) {
	m := metrics.New()
	sender := &recordingSender{fail: map[string]bool{"bad": true}}
	q := NewQueue(sender, 8, 5*time.Millisecond, m, nil)
	q.Notify("bad")
	q.Notify("good")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = q.Run(ctx) }()

	require.Eventually(t, func() bool { return len(sender.sent()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"good"}, sender.sent())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("failed")))
	assert.Zero(t, q.Len())
}

func TestTelegramSender(t *testing.T) {
	var got sendMessageRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	s := NewTelegramSender(srv.URL+"/", "123:abc", "-100", srv.Client())
	require.NoError(t, s.Send(context.Background(), "<b>hi</b>"))

	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "-100", got.ChatID)
	assert.Equal(t, "<b>hi</b>", got.Text)
	assert.Equal(t, "HTML", got.ParseMode)
}

func TestTelegramSenderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	s := NewTelegramSender(srv.URL, "t", "c", srv.Client())
	err := s.Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")

	unconfigured := NewTelegramSender(srv.URL, "", "", nil)
	assert.Error(t, unconfigured.Send(context.Background(), "x"))
}
