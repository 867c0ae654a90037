package image

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ProviderError is a non-success answer from an inference provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// newProviderError extracts a message from a failed response body. Providers
// answer with {"error": "..."} or {"detail": "..."}; anything else is used verbatim.
func newProviderError(provider string, status int, body []byte) *ProviderError {
	var payload struct {
		Error  any `json:"error"`
		Detail any `json:"detail"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, v := range []any{payload.Error, payload.Detail} {
			if s := messageOf(v); s != "" {
				msg = s
				break
			}
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &ProviderError{Provider: provider, StatusCode: status, Message: msg}
}

func messageOf(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			if s := messageOf(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		if m, ok := v["message"].(string); ok {
			return m
		}
		if m, ok := v["msg"].(string); ok {
			return m
		}
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
