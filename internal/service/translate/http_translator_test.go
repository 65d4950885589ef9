package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "Sentinel/pkg/http"
)

func TestTranslateJoinsSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "zh-TW", r.URL.Query().Get("tl"))
		assert.Equal(t, "Bitcoin rallies. ETF approved.", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[[["比特幣上漲。","Bitcoin rallies.",null,null,1],["ETF獲批。","ETF approved.",null,null,1]],null,"en"]`))
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(apphttp.NewClient(), srv.URL, "zh-TW")
	got, err := tr.Translate(context.Background(), "Bitcoin rallies. ETF approved.")
	require.NoError(t, err)
	assert.Equal(t, "比特幣上漲。ETF獲批。", got)
}

func TestTranslateEmptyTextSkipsCall(t *testing.T) {
	tr := NewHTTPTranslator(apphttp.NewClient(), "http://127.0.0.1:1", "zh-TW")
	got, err := tr.Translate(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, "  ", got)
}

func TestTranslateBadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"quota"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPTranslator(apphttp.NewClient(), srv.URL, "zh-TW").Translate(context.Background(), "x")
	require.Error(t, err)
}
