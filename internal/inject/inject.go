package inject

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	appconfig "github.com/dmorgan81/imageination/internal/config"
	"github.com/dmorgan81/imageination/internal/handler"
	"github.com/dmorgan81/imageination/internal/image"
	"github.com/dmorgan81/imageination/internal/log"
	"github.com/dmorgan81/imageination/internal/page"
	"github.com/dmorgan81/imageination/internal/param"
	"github.com/dmorgan81/imageination/internal/prompt"
	"github.com/dmorgan81/imageination/internal/relay"
	"github.com/dmorgan81/imageination/internal/server"
	"github.com/samber/do"
)

func Setup(ctx context.Context, cfg *appconfig.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[*appconfig.Config](injector, cfg)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: cfg.ProviderTimeout})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	fetcher := func() param.Fetcher {
		return do.MustInvoke[param.Fetcher](injector)
	}

	do.ProvideNamed[string](injector, "huggingface_key", func(i *do.Injector) (string, error) {
		return param.Resolve(ctx, fetcher, cfg.HuggingFace.Key, cfg.HuggingFace.KeyParam)
	})
	do.ProvideNamedValue[string](injector, "huggingface_base_url", cfg.HuggingFace.BaseURL)
	do.ProvideNamedValue[string](injector, "huggingface_model", cfg.HuggingFace.Model)
	do.ProvideNamed[string](injector, "dezgo_key", func(i *do.Injector) (string, error) {
		return param.Resolve(ctx, fetcher, cfg.Dezgo.Key, cfg.Dezgo.KeyParam)
	})
	do.ProvideNamedValue[string](injector, "dezgo_base_url", cfg.Dezgo.BaseURL)
	do.ProvideNamedValue[string](injector, "dezgo_model", cfg.Dezgo.Model)
	do.ProvideNamed[[]string](injector, "prompts", func(i *do.Injector) ([]string, error) {
		return param.ResolveAll(ctx, fetcher, cfg.Prompts, cfg.PromptsParam)
	})
	do.ProvideNamedValue[bool](injector, "strict_params", cfg.StrictParams)

	switch cfg.Provider {
	case appconfig.ProviderDezgo:
		do.Provide[image.Generator](injector, image.NewDezgoGenerator)
	default:
		do.Provide[image.Generator](injector, image.NewHuggingFaceGenerator)
	}

	do.ProvideValue[page.Params](injector, page.Params{
		Title:    "Imageination",
		Model:    modelName(cfg),
		Controls: image.DefaultControls,
		Defaults: image.DefaultSettings,
		Cooldown: 60,
	})
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*prompt.Randomizer](injector, prompt.NewRandomizer)
	do.Provide[*relay.Relay](injector, relay.NewRelay)

	do.Provide[*server.Server](injector, server.NewServer)
	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}

func modelName(cfg *appconfig.Config) string {
	if cfg.Provider == appconfig.ProviderDezgo {
		return cfg.Dezgo.Model
	}
	return cfg.HuggingFace.Model
}
