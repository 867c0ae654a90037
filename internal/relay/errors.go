package relay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmorgan81/imageination/internal/image"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrRateLimited      = errors.New("rate limited")
	ErrGenerationFailed = errors.New("generation failed")

	ErrEmptyPrompt = fmt.Errorf("%w: prompt is empty", ErrInvalidInput)
)

// RateLimitIndicator is the provider message fragment that signals an exhausted quota.
const RateLimitIndicator = "Max requests total reached"

// FailedError carries the provider failure behind ErrGenerationFailed.
type FailedError struct {
	Err error
}

func (e *FailedError) Error() string {
	return "generation failed: " + e.Err.Error()
}

func (e *FailedError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}

// SettingsError lists the generation settings that fell outside their bounds.
type SettingsError struct {
	Fields []string
}

func (e *SettingsError) Error() string {
	return "settings out of range: " + strings.Join(e.Fields, ", ")
}

func (e *SettingsError) Unwrap() error {
	return ErrInvalidInput
}

// IsRateLimited reports whether a provider failure means the quota is exhausted.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var perr *image.ProviderError
	if errors.As(err, &perr) && perr.StatusCode == 429 {
		return true
	}
	return strings.Contains(err.Error(), RateLimitIndicator)
}

func classify(err error) error {
	if IsRateLimited(err) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return &FailedError{Err: err}
}
