// Package api holds the JSON contract of the generate endpoint and the mapping
// from relay outcomes to HTTP statuses, shared by every transport.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmorgan81/imageination/internal/image"
	"github.com/dmorgan81/imageination/internal/prompt"
	"github.com/dmorgan81/imageination/internal/relay"
	"github.com/samber/lo"
)

const (
	MsgInvalidPrompt = "Invalid prompt. Please provide a text description."
	MsgRateLimited   = "Rate limit reached. Please wait a minute before generating another image."
)

type GenerateRequest struct {
	Prompt string          `json:"prompt"`
	Params *image.Settings `json:"params,omitempty"`
}

type GenerateResponse struct {
	Image string `json:"image"`
}

type ErrorResponse struct {
	Error       string `json:"error"`
	IsRateLimit bool   `json:"isRateLimit,omitempty"`
}

type PromptResponse struct {
	Prompt string `json:"prompt"`
}

// DecodeGenerate parses a generate body. A body that is not an object with a
// string prompt is reported as an empty prompt.
func DecodeGenerate(body []byte) (relay.Request, error) {
	var in GenerateRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return relay.Request{}, fmt.Errorf("%w: %v", relay.ErrEmptyPrompt, err)
	}
	return relay.Request{
		Prompt:   in.Prompt,
		Settings: lo.FromPtr(in.Params),
	}, nil
}

// Render turns a relay outcome into a status code and a JSON-ready body.
func Render(res relay.Result, err error) (int, any) {
	if err == nil {
		return http.StatusOK, GenerateResponse{Image: res.Image}
	}

	var serr *relay.SettingsError
	var ferr *relay.FailedError
	switch {
	case errors.As(err, &serr):
		return http.StatusBadRequest, ErrorResponse{Error: "Invalid generation parameters: " + strings.Join(serr.Fields, ", ")}
	case errors.Is(err, relay.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Error: MsgInvalidPrompt}
	case errors.Is(err, relay.ErrRateLimited):
		return http.StatusTooManyRequests, RateLimited()
	case errors.As(err, &ferr):
		return http.StatusInternalServerError, ErrorResponse{Error: "Generation failed: " + ferr.Err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Generation failed: " + err.Error()}
	}
}

func RateLimited() ErrorResponse {
	return ErrorResponse{Error: MsgRateLimited, IsRateLimit: true}
}

// RenderPrompt turns a prompt suggestion lookup into a status code and body.
func RenderPrompt(p string, err error) (int, any) {
	switch {
	case err == nil:
		return http.StatusOK, PromptResponse{Prompt: p}
	case errors.Is(err, prompt.ErrNoPrompts):
		return http.StatusNotFound, ErrorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error()}
	}
}
