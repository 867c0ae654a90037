package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmorgan81/imageination/internal/api"
	"github.com/dmorgan81/imageination/internal/image"
	"github.com/dmorgan81/imageination/internal/log"
)

// HTTPBackend calls a relay served over HTTP.
type HTTPBackend struct {
	Client  *http.Client
	BaseURL string
}

type generateResponse struct {
	Image       string `json:"image"`
	Error       string `json:"error"`
	IsRateLimit bool   `json:"isRateLimit"`
}

func (b *HTTPBackend) Generate(ctx context.Context, prompt string, settings image.Settings) (Response, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("http backend")

	body, err := json.Marshal(api.GenerateRequest{Prompt: prompt, Params: &settings})
	if err != nil {
		return Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url("/api/generate"), bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.Client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decoding %s response: %w", resp.Status, err)
	}
	log.Debug("relay answered", "status", resp.StatusCode, "rate_limited", out.IsRateLimit)

	return Response{
		Status:      resp.StatusCode,
		Image:       out.Image,
		Error:       out.Error,
		IsRateLimit: out.IsRateLimit,
	}, nil
}

// Suggest asks the relay for a prompt suggestion.
func (b *HTTPBackend) Suggest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url("/api/prompt"), nil)
	if err != nil {
		return "", err
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("prompt suggestion: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out api.PromptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Prompt, nil
}

func (b *HTTPBackend) url(path string) string {
	return strings.TrimSuffix(b.BaseURL, "/") + path
}
