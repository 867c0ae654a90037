package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmorgan81/imageination/internal/image"
	"github.com/dmorgan81/imageination/internal/log"
	"github.com/dmorgan81/imageination/internal/relay"
	"github.com/samber/lo"
)

// CooldownSeconds is how long submissions stay blocked after a rate-limit answer.
const CooldownSeconds = 60

const msgFailed = "Failed to generate image"

var (
	ErrCoolingDown = errors.New("cooling down")
	ErrBusy        = errors.New("a generation is already in flight")
	ErrRateLimited = errors.New("rate limited")
	ErrFailed      = errors.New("generation failed")
	ErrNoImage     = errors.New("no image to download")
)

type Response struct {
	Status      int
	Image       string
	Error       string
	IsRateLimit bool
}

// Backend performs exactly one generate call.
type Backend interface {
	Generate(context.Context, string, image.Settings) (Response, error)
}

type State struct {
	Prompt   string
	Params   image.Settings
	Loading  bool
	Error    string
	Image    string
	Cooldown int
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.t.C
}

func (t timeTicker) Stop() {
	t.t.Stop()
}

type Option func(*Session)

// WithTicker replaces the one-second ticker driving the cooldown.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(s *Session) {
		s.newTicker = newTicker
	}
}

// WithOnChange registers a callback invoked with a snapshot after every state change.
func WithOnChange(fn func(State)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// Session is the submission flow of one user: the form state, the in-flight
// request and the cooldown timer.
type Session struct {
	backend   Backend
	newTicker func(time.Duration) Ticker
	onChange  func(State)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSession(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		newTicker: func(d time.Duration) Ticker {
			return timeTicker{time.NewTicker(d)}
		},
		state: State{Params: image.DefaultSettings},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SetPrompt(prompt string) {
	s.update(func(st *State) { st.Prompt = prompt })
}

// SetParams stores params snapped onto the editor ranges.
func (s *Session) SetParams(params image.Settings) {
	s.update(func(st *State) { st.Params = image.DefaultControls.Snap(params) })
}

func (s *Session) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	st := s.state
	s.mu.Unlock()
	s.notify(st)
}

func (s *Session) notify(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}

// Submit sends the current prompt and params unless a cooldown or another
// submission is active. The outcome is recorded in State and returned.
func (s *Session) Submit(ctx context.Context) error {
	logger := log.FromContextOrDiscard(ctx).WithGroup("session")

	s.mu.Lock()
	if s.state.Cooldown > 0 {
		s.state.Error = fmt.Sprintf("Please wait %d seconds before generating another image", s.state.Cooldown)
		st := s.state
		s.mu.Unlock()
		s.notify(st)
		return fmt.Errorf("%w: %d seconds left", ErrCoolingDown, st.Cooldown)
	}
	if s.state.Loading {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state.Loading = true
	s.state.Error = ""
	s.state.Image = ""
	st := s.state
	s.mu.Unlock()
	s.notify(st)

	logger.Info("submitting prompt", "prompt", st.Prompt)
	resp, err := s.backend.Generate(ctx, st.Prompt, st.Params)

	s.mu.Lock()
	s.state.Loading = false
	var result error
	switch {
	case err != nil:
		s.state.Error = lo.Ternary(err.Error() != "", err.Error(), msgFailed)
		result = fmt.Errorf("%w: %w", ErrFailed, err)
	case resp.Status == http.StatusTooManyRequests || resp.IsRateLimit:
		s.startCooldownLocked(CooldownSeconds)
		s.state.Error = lo.Ternary(resp.Error != "", resp.Error, msgFailed)
		result = fmt.Errorf("%w: %s", ErrRateLimited, s.state.Error)
	case resp.Error != "" || resp.Image == "":
		s.state.Error = lo.Ternary(resp.Error != "", resp.Error, msgFailed)
		result = fmt.Errorf("%w: %s", ErrFailed, s.state.Error)
	default:
		s.state.Image = resp.Image
	}
	st = s.state
	s.mu.Unlock()
	s.notify(st)

	if result != nil {
		logger.Warn("submission failed", "error", result, "cooldown", st.Cooldown)
	}
	return result
}

// startCooldownLocked replaces any running countdown with a fresh one of n seconds.
func (s *Session) startCooldownLocked(n int) {
	s.stopCooldownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.state.Cooldown = n
	s.cancel, s.done = cancel, done
	go s.countdown(ctx, s.newTicker(time.Second), done)
}

func (s *Session) stopCooldownLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel, s.done = nil, nil
	}
}

func (s *Session) countdown(ctx context.Context, t Ticker, done chan struct{}) {
	defer close(done)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			s.mu.Lock()
			if ctx.Err() != nil {
				s.mu.Unlock()
				return
			}
			s.state.Cooldown = max(s.state.Cooldown-1, 0)
			st := s.state
			if st.Cooldown == 0 {
				s.cancel()
				s.cancel, s.done = nil, nil
			}
			s.mu.Unlock()
			s.notify(st)
			if st.Cooldown == 0 {
				return
			}
		}
	}
}

// Reset clears the form state and cancels any running cooldown.
func (s *Session) Reset() {
	s.mu.Lock()
	s.stopCooldownLocked()
	s.state = State{Params: image.DefaultSettings}
	st := s.state
	s.mu.Unlock()
	s.notify(st)
}

// Close cancels the cooldown timer and waits for it to exit.
func (s *Session) Close() error {
	s.mu.Lock()
	done := s.done
	s.stopCooldownLocked()
	s.mu.Unlock()

	if done != nil {
		<-done
	}
	return nil
}

// Download writes the decoded image to path.
func (s *Session) Download(path string) error {
	img := s.State().Image
	if img == "" {
		return ErrNoImage
	}
	data, err := relay.DecodeDataURI(img)
	if err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		path = "generated-image.jpg"
	}
	return os.WriteFile(path, data, 0600)
}
