package relay

import (
	"context"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/dmorgan81/imageination/internal/image"
	"github.com/dmorgan81/imageination/internal/log"
	"github.com/go-playground/validator/v10"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const DataURIPrefix = "data:image/jpeg;base64,"

type Request struct {
	Prompt   string
	Settings image.Settings
}

type Result struct {
	Image string
}

// Relay forwards one generation request to a provider. It keeps no state
// between calls and is safe for concurrent use.
type Relay struct {
	generator image.Generator
	validate  *validator.Validate
}

func NewRelay(i *do.Injector) (*Relay, error) {
	return New(do.MustInvoke[image.Generator](i), do.MustInvokeNamed[bool](i, "strict_params")), nil
}

// New builds a relay. With strict set, settings outside the editor ranges are
// rejected instead of being passed through.
func New(generator image.Generator, strict bool) *Relay {
	r := &Relay{generator: generator}
	if strict {
		r.validate = validator.New(validator.WithRequiredStructEnabled())
		r.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		})
	}
	return r
}

func (r *Relay) Generate(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res, err := r.generate(ctx, req)

	o := outcome(err)
	generationsTotal.WithLabelValues(o).Inc()
	generationDuration.WithLabelValues(o).Observe(time.Since(start).Seconds())
	return res, err
}

func (r *Relay) generate(ctx context.Context, req Request) (Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("relay")

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		log.Info("rejecting empty prompt")
		return Result{}, ErrEmptyPrompt
	}

	settings := req.Settings.WithDefaults()
	if r.validate != nil {
		if err := r.validate.Struct(settings); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return Result{}, err
			}
			fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string { return fe.Field() })
			log.Info("rejecting out of range settings", "fields", fields)
			return Result{}, &SettingsError{Fields: fields}
		}
	}

	log = log.With("prompt", prompt, "settings", settings)
	log.Info("relaying generation request")

	data, err := r.generator.Generate(ctx, image.Params{Prompt: prompt, Settings: settings})
	if err != nil {
		err = classify(err)
		log.Warn("generation request failed", "error", err, "rate_limited", errors.Is(err, ErrRateLimited))
		return Result{}, err
	}

	log.Info("generation request succeeded", "bytes", len(data))
	return Result{Image: EncodeDataURI(data)}, nil
}

func EncodeDataURI(data []byte) string {
	return DataURIPrefix + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI returns the bytes held by a base64 data URI of any media type.
func DecodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, errors.New("not a base64 data uri")
	}
	return base64.StdEncoding.DecodeString(payload)
}
