package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dmorgan81/imageination/internal/api"
	"github.com/dmorgan81/imageination/internal/log"
	"github.com/dmorgan81/imageination/internal/page"
	"github.com/dmorgan81/imageination/internal/prompt"
	"github.com/dmorgan81/imageination/internal/relay"
	"github.com/samber/do"
)

type Request = events.APIGatewayV2HTTPRequest

type Response = events.APIGatewayV2HTTPResponse

// Handler serves the relay behind an API Gateway HTTP API.
type Handler struct {
	relay      *relay.Relay
	randomizer *prompt.Randomizer
	templator  *page.Templator
	page       page.Params
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		relay:      do.MustInvoke[*relay.Relay](i),
		randomizer: do.MustInvoke[*prompt.Randomizer](i),
		templator:  do.MustInvoke[*page.Templator](i),
		page:       do.MustInvoke[page.Params](i),
	}, nil
}

func (h *Handler) Handle(ctx context.Context, request Request) (Response, error) {
	method := request.RequestContext.HTTP.Method
	path := strings.TrimSuffix(request.RawPath, "/")
	logger := log.FromContextOrDiscard(ctx).WithGroup("Handler").With(
		"request_id", request.RequestContext.RequestID,
		"method", method,
		"path", request.RawPath,
	)
	logger.Info("handling lambda invocation")
	ctx = log.NewContext(ctx, logger)

	switch {
	case method == http.MethodPost && path == "/api/generate":
		body, err := requestBody(request)
		var res relay.Result
		if err == nil {
			var req relay.Request
			if req, err = api.DecodeGenerate(body); err == nil {
				res, err = h.relay.Generate(ctx, req)
			}
		}
		if err != nil {
			logger.Warn("generate failed", "error", err)
		}
		return jsonResponse(api.Render(res, err))
	case method == http.MethodGet && path == "/api/prompt":
		return jsonResponse(api.RenderPrompt(h.randomizer.Randomize(ctx)))
	case method == http.MethodGet && path == "":
		html, err := h.templator.Template(ctx, h.page)
		if err != nil {
			return Response{}, err
		}
		return Response{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
			Body:       string(html),
		}, nil
	default:
		return jsonResponse(http.StatusNotFound, api.ErrorResponse{Error: "not found"})
	}
}

func requestBody(request Request) ([]byte, error) {
	if !request.IsBase64Encoded {
		return []byte(request.Body), nil
	}
	body, err := base64.StdEncoding.DecodeString(request.Body)
	if err != nil {
		return nil, errors.Join(relay.ErrEmptyPrompt, err)
	}
	return body, nil
}

func jsonResponse(status int, payload any) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, err
	}
	return Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}
