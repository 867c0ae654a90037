// Command imagectl drives the generate flow from a terminal: each line read
// from stdin is submitted as a prompt, honoring the rate-limit cooldown.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dmorgan81/imageination/internal/client"
	"github.com/dmorgan81/imageination/internal/image"
	"github.com/dmorgan81/imageination/internal/log"
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "relay base url")
		out      = flag.String("out", "generated-image.jpg", "file the last generated image is written to")
		width    = flag.Int("width", image.DefaultSettings.Width, "image width")
		height   = flag.Int("height", image.DefaultSettings.Height, "image height")
		guidance = flag.Float64("guidance", image.DefaultSettings.GuidanceScale, "guidance scale")
		steps    = flag.Int("steps", image.DefaultSettings.NumInferenceSteps, "inference steps")
		suggest  = flag.Bool("suggest", false, "print a prompt suggestion and exit")
		level    = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.NewContext(ctx, log.New(os.Stderr, *level))

	backend := &client.HTTPBackend{Client: &http.Client{Timeout: 3 * time.Minute}, BaseURL: *baseURL}
	if *suggest {
		p, err := backend.Suggest(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(p)
		return
	}

	session := client.NewSession(backend)
	defer session.Close()
	session.SetParams(image.Settings{Width: *width, Height: *height, GuidanceScale: *guidance, NumInferenceSteps: *steps})

	fmt.Fprint(os.Stderr, "prompt> ")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		session.SetPrompt(strings.TrimSpace(scanner.Text()))

		err := session.Submit(ctx)
		switch {
		case err == nil:
			if err := session.Download(*out); err != nil {
				fmt.Fprintln(os.Stderr, err)
			} else {
				fmt.Fprintf(os.Stderr, "image written to %s\n", *out)
			}
		case errors.Is(err, client.ErrRateLimited):
			fmt.Fprintf(os.Stderr, "%s (retry in %ds)\n", session.State().Error, session.State().Cooldown)
		default:
			fmt.Fprintln(os.Stderr, session.State().Error)
		}
		if ctx.Err() != nil {
			return
		}
		fmt.Fprint(os.Stderr, "prompt> ")
	}
}
