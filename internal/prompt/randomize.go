package prompt

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/dmorgan81/imageination/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

var ErrNoPrompts = errors.New("no prompt suggestions configured")

// Randomizer hands out prompt suggestions. It never fills in a prompt on the
// relay's behalf.
type Randomizer struct {
	prompts []string
	mu      sync.Mutex
	rnd     *rand.Rand
}

func NewRandomizer(i *do.Injector) (*Randomizer, error) {
	prompts := do.MustInvokeNamed[[]string](i, "prompts")
	return New(prompts, time.Now().UTC().Unix()), nil
}

func New(prompts []string, seed int64) *Randomizer {
	prompts = lo.Filter(lo.Map(prompts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}), func(p string, _ int) bool {
		return p != ""
	})
	return &Randomizer{prompts: prompts, rnd: rand.New(rand.NewSource(seed))}
}

func (r *Randomizer) Randomize(ctx context.Context) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("randomizer")
	if len(r.prompts) == 0 {
		return "", ErrNoPrompts
	}

	r.mu.Lock()
	idx := r.rnd.Intn(len(r.prompts))
	r.mu.Unlock()

	log.Debug("picked prompt suggestion", "index", idx)
	return r.prompts[idx], nil
}
