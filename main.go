package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/imageination/internal/config"
	"github.com/dmorgan81/imageination/internal/handler"
	"github.com/dmorgan81/imageination/internal/inject"
	"github.com/dmorgan81/imageination/internal/log"
	"github.com/dmorgan81/imageination/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, cfg.LogLevel)
	ctx := log.NewContext(context.Background(), logger)
	injector := inject.Setup(ctx, cfg)

	// the lambda runtime sets this for every function invocation environment
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		handler := do.MustInvoke[*handler.Handler](injector)
		lambda.StartWithOptions(handler.Handle, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
			_ = injector.Shutdown()
		}))
		return
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := do.MustInvoke[*server.Server](injector)
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}
	_ = injector.Shutdown()
}
