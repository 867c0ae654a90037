package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmorgan81/imageination/internal/api"
	"github.com/dmorgan81/imageination/internal/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPBackendGenerate(t *testing.T) {
	var got api.GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(api.RateLimited())
	}))
	defer srv.Close()

	b := &HTTPBackend{Client: srv.Client(), BaseURL: srv.URL + "/"}
	resp, err := b.Generate(context.Background(), "a red cube", image.DefaultSettings)
	require.NoError(t, err)
	assert.Equal(t, Response{Status: http.StatusTooManyRequests, Error: api.MsgRateLimited, IsRateLimit: true}, resp)

	assert.Equal(t, "a red cube", got.Prompt)
	require.NotNil(t, got.Params)
	assert.Equal(t, image.DefaultSettings, *got.Params)
}

func TestHTTPBackendGenerateBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	b := &HTTPBackend{Client: srv.Client(), BaseURL: srv.URL}
	_, err := b.Generate(context.Background(), "a red cube", image.DefaultSettings)
	assert.ErrorContains(t, err, "502")
}

func TestHTTPBackendSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/prompt", r.URL.Path)
		_ = json.NewEncoder(w).Encode(api.PromptResponse{Prompt: "a lighthouse at dusk"})
	}))
	defer srv.Close()

	b := &HTTPBackend{Client: srv.Client(), BaseURL: srv.URL}
	p, err := b.Suggest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a lighthouse at dusk", p)
}

func TestHTTPBackendSuggestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"no prompt suggestions configured"}`)
	}))
	defer srv.Close()

	b := &HTTPBackend{Client: srv.Client(), BaseURL: srv.URL}
	_, err := b.Suggest(context.Background())
	assert.ErrorContains(t, err, "404")
}
