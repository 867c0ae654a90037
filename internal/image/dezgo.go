package image

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/dmorgan81/imageination/internal/log"
	"github.com/samber/do"
)

type DezgoGenerator struct {
	Client  *http.Client
	Key     string
	BaseURL string
	Model   string
}

func NewDezgoGenerator(i *do.Injector) (Generator, error) {
	return &DezgoGenerator{
		Client:  do.MustInvoke[*http.Client](i),
		Key:     do.MustInvokeNamed[string](i, "dezgo_key"),
		BaseURL: do.MustInvokeNamed[string](i, "dezgo_base_url"),
		Model:   do.MustInvokeNamed[string](i, "dezgo_model"),
	}, nil
}

type dezgoRequest struct {
	Prompt   string  `json:"prompt"`
	Model    string  `json:"model,omitempty"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Guidance float64 `json:"guidance"`
	Steps    int     `json:"steps"`
	Format   string  `json:"format"`
}

func (g *DezgoGenerator) Generate(ctx context.Context, params Params) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("dezgo").With("settings", params.Settings)
	log.Info("generating image via api.dezgo.com")

	body, err := json.Marshal(dezgoRequest{
		Prompt:   params.Prompt,
		Model:    g.Model,
		Width:    params.Width,
		Height:   params.Height,
		Guidance: params.GuidanceScale,
		Steps:    params.NumInferenceSteps,
		Format:   "jpg",
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimSuffix(g.BaseURL, "/") + "/text2image"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("X-Dezgo-Key", g.Key)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		perr := newProviderError("dezgo", resp.StatusCode, data)
		log.Warn("dezgo generation failed", "status", resp.StatusCode, "error", perr.Message)
		return nil, perr
	}

	log.Info("received image via api.dezgo.com", "seed", resp.Header.Get("x-input-seed"), "bytes", len(data))
	return data, nil
}
