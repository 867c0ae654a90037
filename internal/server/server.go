package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/dmorgan81/imageination/internal/api"
	"github.com/dmorgan81/imageination/internal/config"
	"github.com/dmorgan81/imageination/internal/log"
	"github.com/dmorgan81/imageination/internal/page"
	"github.com/dmorgan81/imageination/internal/prompt"
	"github.com/dmorgan81/imageination/internal/relay"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"golang.org/x/sync/errgroup"
)

const maxBodyBytes = 64 << 10

// the gin collectors live in the default registry and may only be created once
var ginMetrics = sync.OnceValue(func() *ginprometheus.Prometheus {
	return ginprometheus.NewPrometheus("gin")
})

type Server struct {
	relay      *relay.Relay
	randomizer *prompt.Randomizer
	templator  *page.Templator
	page       page.Params
	cfg        *config.Config
}

func NewServer(i *do.Injector) (*Server, error) {
	return &Server{
		relay:      do.MustInvoke[*relay.Relay](i),
		randomizer: do.MustInvoke[*prompt.Randomizer](i),
		templator:  do.MustInvoke[*page.Templator](i),
		page:       do.MustInvoke[page.Params](i),
		cfg:        do.MustInvoke[*config.Config](i),
	}, nil
}

// Router builds the gin engine. ctx supplies the base logger.
func (s *Server) Router(ctx context.Context) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(log.FromContextOrDiscard(ctx)))
	router.Use(gin.Recovery())
	ginMetrics().Use(router)

	if len(s.cfg.CORSAllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = s.cfg.CORSAllowedOrigins
		corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", requestIDHeader}
		corsConfig.MaxAge = 12 * time.Hour
		router.Use(cors.New(corsConfig))
	}

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", health)
	router.HEAD("/health", health)

	router.GET("/", s.index)

	apiGroup := router.Group("/api")
	apiGroup.GET("/prompt", s.suggest)
	apiGroup.POST("/generate", append(s.limiter(), s.generate)...)

	return router
}

// limiter caps generate calls per client IP. An exhausted client gets the same
// answer as a provider rate limit so it applies the same cooldown.
func (s *Server) limiter() []gin.HandlerFunc {
	if s.cfg.RateLimitPerMinute == 0 {
		return nil
	}
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: s.cfg.RateLimitPerMinute,
	})
	return []gin.HandlerFunc{ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			log.FromContextOrDiscard(c.Request.Context()).Warn("inbound rate limit exceeded",
				"ip", c.ClientIP(), "reset", info.ResetTime)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.RateLimited())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})}
}

func (s *Server) index(c *gin.Context) {
	html, err := s.templator.Template(c.Request.Context(), s.page)
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) suggest(c *gin.Context) {
	p, err := s.randomizer.Randomize(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(api.RenderPrompt(p, err))
}

func (s *Server) generate(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	var res relay.Result
	if err == nil {
		var req relay.Request
		if req, err = api.DecodeGenerate(body); err == nil {
			res, err = s.relay.Generate(ctx, req)
		}
	} else {
		err = errors.Join(relay.ErrEmptyPrompt, err)
	}

	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(api.Render(res, err))
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	logger := log.FromContextOrDiscard(ctx)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(ctx),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.ProviderTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
