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

type HuggingFaceGenerator struct {
	Client  *http.Client
	Key     string
	BaseURL string
	Model   string
}

func NewHuggingFaceGenerator(i *do.Injector) (Generator, error) {
	return &HuggingFaceGenerator{
		Client:  do.MustInvoke[*http.Client](i),
		Key:     do.MustInvokeNamed[string](i, "huggingface_key"),
		BaseURL: do.MustInvokeNamed[string](i, "huggingface_base_url"),
		Model:   do.MustInvokeNamed[string](i, "huggingface_model"),
	}, nil
}

type hfParameters struct {
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	GuidanceScale     float64 `json:"guidance_scale"`
	NumInferenceSteps int     `json:"num_inference_steps"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

func (g *HuggingFaceGenerator) Generate(ctx context.Context, params Params) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("huggingface").With("model", g.Model, "settings", params.Settings)
	log.Info("generating image via hugging face inference")

	body, err := json.Marshal(hfRequest{
		Inputs: params.Prompt,
		Parameters: hfParameters{
			Width:             params.Width,
			Height:            params.Height,
			GuidanceScale:     params.GuidanceScale,
			NumInferenceSteps: params.NumInferenceSteps,
		},
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimSuffix(g.BaseURL, "/") + "/" + g.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/jpeg")
	if g.Key != "" {
		req.Header.Set("Authorization", "Bearer "+g.Key)
	}

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
		perr := newProviderError("huggingface", resp.StatusCode, data)
		log.Warn("hugging face inference failed", "status", resp.StatusCode, "error", perr.Message)
		return nil, perr
	}

	log.Info("received image via hugging face inference", "bytes", len(data))
	return data, nil
}
