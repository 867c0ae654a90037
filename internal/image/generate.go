package image

import (
	"context"

	"github.com/samber/lo"
)

// Settings are the tunable generation parameters, named as they travel on the wire.
type Settings struct {
	Width             int     `json:"width" validate:"min=512,max=1024"`
	Height            int     `json:"height" validate:"min=512,max=1024"`
	GuidanceScale     float64 `json:"guidanceScale" validate:"min=1,max=20"`
	NumInferenceSteps int     `json:"numInferenceSteps" validate:"min=20,max=100"`
}

var DefaultSettings = Settings{
	Width:             1024,
	Height:            1024,
	GuidanceScale:     3.5,
	NumInferenceSteps: 50,
}

// WithDefaults fills every zero field from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	return Settings{
		Width:             lo.Ternary(s.Width != 0, s.Width, DefaultSettings.Width),
		Height:            lo.Ternary(s.Height != 0, s.Height, DefaultSettings.Height),
		GuidanceScale:     lo.Ternary(s.GuidanceScale != 0, s.GuidanceScale, DefaultSettings.GuidanceScale),
		NumInferenceSteps: lo.Ternary(s.NumInferenceSteps != 0, s.NumInferenceSteps, DefaultSettings.NumInferenceSteps),
	}
}

type Params struct {
	Prompt string
	Settings
}

type Generator interface {
	Generate(context.Context, Params) ([]byte, error)
}
