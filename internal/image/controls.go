package image

import "github.com/samber/lo"

type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// Snap clamps v into the range and rounds it to the nearest step from Min.
func (r Range) Snap(v float64) float64 {
	v = lo.Clamp(v, r.Min, r.Max)
	if r.Step <= 0 {
		return v
	}
	steps := int((v-r.Min)/r.Step + 0.5)
	return lo.Clamp(r.Min+float64(steps)*r.Step, r.Min, r.Max)
}

type Controls struct {
	Width             Range
	Height            Range
	GuidanceScale     Range
	NumInferenceSteps Range
}

var DefaultControls = Controls{
	Width:             Range{Min: 512, Max: 1024, Step: 64},
	Height:            Range{Min: 512, Max: 1024, Step: 64},
	GuidanceScale:     Range{Min: 1, Max: 20, Step: 0.5},
	NumInferenceSteps: Range{Min: 20, Max: 100, Step: 1},
}

// Snap moves every setting onto a value the editor controls can represent.
func (c Controls) Snap(s Settings) Settings {
	return Settings{
		Width:             int(c.Width.Snap(float64(s.Width))),
		Height:            int(c.Height.Snap(float64(s.Height))),
		GuidanceScale:     c.GuidanceScale.Snap(s.GuidanceScale),
		NumInferenceSteps: int(c.NumInferenceSteps.Snap(float64(s.NumInferenceSteps))),
	}
}
