package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drepo "Sentinel/internal/domain/repository"
	apphttp "Sentinel/pkg/http"
	applogger "Sentinel/pkg/logger"
	"Sentinel/pkg/metrics"
)

func TestLinePush(t *testing.T) {
	var got linePush
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bot/message/push", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewLineNotifier(apphttp.NewClient(), srv.URL+"/", "tok", "U123")
	require.NoError(t, n.Push(context.Background(), "", "hello"))
	assert.Equal(t, "U123", got.To)
	assert.Equal(t, []lineMessage{{Type: "text", Text: "hello"}}, got.Messages)
}

func TestLineReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bot/message/reply", r.URL.Path)
		var body lineReply
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rt", body.ReplyToken)
	}))
	defer srv.Close()

	require.NoError(t, NewLineNotifier(apphttp.NewClient(), srv.URL, "tok", "").Reply(context.Background(), "rt", "ok"))
}

func TestLinePushWithoutDestination(t *testing.T) {
	n := NewLineNotifier(apphttp.NewClient(), "http://unused", "tok", "")
	assert.ErrorIs(t, n.Push(context.Background(), "", "x"), ErrNoDestination)
}

func TestTextMessagesChunking(t *testing.T) {
	long := strings.Repeat("界", lineMaxTextRunes*2+10)
	msgs := textMessages(long)
	require.Len(t, msgs, 3)
	assert.Len(t, []rune(msgs[0].Text), lineMaxTextRunes)
	assert.Len(t, []rune(msgs[2].Text), 10)

	huge := strings.Repeat("a", lineMaxTextRunes*7)
	assert.Len(t, textMessages(huge), lineMaxMessages)
}

type fakePublisher struct {
	key   string
	value any
	err   error
}

func (p *fakePublisher) Topic() string { return "sentinel.digests" }

func (p *fakePublisher) Publish(_ context.Context, key string, value any) error {
	p.key, p.value = key, value
	return p.err
}

func TestKafkaNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := NewKafkaNotifier(pub)
	n.now = func() time.Time { return time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC) }

	require.NoError(t, n.Push(context.Background(), "U1", "digest"))
	assert.Equal(t, "U1", pub.key)
	d, ok := pub.value.(Digest)
	require.True(t, ok)
	assert.Equal(t, "digest", d.Text)
	assert.Len(t, d.ID, 36)

	pub.err = errors.New("broker down")
	assert.ErrorContains(t, n.Push(context.Background(), "U1", "digest"), "kafka publish sentinel.digests")
}

type stubNotifier struct {
	name  string
	err   error
	texts []string
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Push(_ context.Context, _, text string) error {
	s.texts = append(s.texts, text)
	return s.err
}

type pushRecorder struct {
	metrics.Nop
	results map[string]bool
}

func (p *pushRecorder) RecordPush(channel string, ok bool) { p.results[channel] = ok }

func TestFanoutDeliversToAllAndJoinsErrors(t *testing.T) {
	rec := &pushRecorder{results: map[string]bool{}}

	good := &stubNotifier{name: "log"}
	bad := &stubNotifier{name: "line", err: errors.New("401")}
	f := NewFanout([]drepo.Notifier{bad, good}, time.Second, rec, applogger.Nop())

	err := f.Push(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, []string{"hi"}, good.texts)
	assert.Equal(t, []string{"hi"}, bad.texts)

	assert.Equal(t, map[string]bool{"line": false, "log": true}, rec.results)
}
