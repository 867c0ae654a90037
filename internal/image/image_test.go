package image

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultSettings, Settings{}.WithDefaults())

	s := Settings{Width: 512, GuidanceScale: 7}.WithDefaults()
	assert.Equal(t, Settings{Width: 512, Height: 1024, GuidanceScale: 7, NumInferenceSteps: 50}, s)
}

func TestControlsSnap(t *testing.T) {
	got := DefaultControls.Snap(Settings{Width: 2000, Height: 600, GuidanceScale: 3.3, NumInferenceSteps: 5})
	assert.Equal(t, Settings{Width: 1024, Height: 576, GuidanceScale: 3.5, NumInferenceSteps: 20}, got)

	assert.Equal(t, DefaultSettings, DefaultControls.Snap(DefaultSettings))
}

func TestNewProviderError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error string", `{"error":"Max requests total reached on image generation inference"}`, "Max requests total reached on image generation inference"},
		{"error list", `{"error":["bad width","bad height"]}`, "bad width; bad height"},
		{"detail", `{"detail":"Invalid key"}`, "Invalid key"},
		{"plain text", "upstream exploded\n", "upstream exploded"},
		{"empty", "", "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newProviderError("test", http.StatusServiceUnavailable, []byte(tt.body))
			assert.Equal(t, tt.want, err.Message)
			assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestHuggingFaceGenerator(t *testing.T) {
	image := make([]byte, 1024)
	var got hfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/black-forest-labs/FLUX.1-dev", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(image)
	}))
	defer srv.Close()

	g := &HuggingFaceGenerator{Client: srv.Client(), Key: "hf_test", BaseURL: srv.URL + "/models/", Model: "black-forest-labs/FLUX.1-dev"}
	data, err := g.Generate(context.Background(), Params{Prompt: "a red cube", Settings: DefaultSettings})
	require.NoError(t, err)
	assert.Len(t, data, 1024)
	assert.Equal(t, "a red cube", got.Inputs)
	assert.Equal(t, hfParameters{Width: 1024, Height: 1024, GuidanceScale: 3.5, NumInferenceSteps: 50}, got.Parameters)
}

func TestHuggingFaceGeneratorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"Max requests total reached"}`)
	}))
	defer srv.Close()

	g := &HuggingFaceGenerator{Client: srv.Client(), BaseURL: srv.URL, Model: "m"}
	_, err := g.Generate(context.Background(), Params{Prompt: "p", Settings: DefaultSettings})

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "huggingface", perr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	assert.Equal(t, "Max requests total reached", perr.Message)
}

func TestDezgoGenerator(t *testing.T) {
	var got dezgoRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text2image", r.URL.Path)
		assert.Equal(t, "dz_test", r.Header.Get("X-Dezgo-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("x-input-seed", "42")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	}))
	defer srv.Close()

	g := &DezgoGenerator{Client: srv.Client(), Key: "dz_test", BaseURL: srv.URL}
	settings := Settings{Width: 512, Height: 768, GuidanceScale: 7.5, NumInferenceSteps: 30}
	data, err := g.Generate(context.Background(), Params{Prompt: "a kitten", Settings: settings})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	assert.Equal(t, dezgoRequest{Prompt: "a kitten", Width: 512, Height: 768, Guidance: 7.5, Steps: 30, Format: "jpg"}, got)
}

func TestDezgoGeneratorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"prompt rejected"}`)
	}))
	defer srv.Close()

	g := &DezgoGenerator{Client: srv.Client(), BaseURL: srv.URL}
	_, err := g.Generate(context.Background(), Params{Prompt: "p", Settings: DefaultSettings})
	assert.EqualError(t, err, "prompt rejected")
}
