package scene

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/coreman2200/particlecloud/internal/particle"
	"github.com/coreman2200/particlecloud/internal/template"
)

// Controller owns the active particle collection and swaps it on template
// switches. Readers on other goroutines see either the old or the new store,
// never a mix.
type Controller struct {
	lib       *template.Library
	rng       *rand.Rand
	disposers []Disposer
	log       zerolog.Logger

	store atomic.Pointer[particle.Store]
	gen   uint64
}

func NewController(lib *template.Library, rng *rand.Rand, disposers []Disposer, log zerolog.Logger) *Controller {
	return &Controller{lib: lib, rng: rng, disposers: disposers, log: log}
}

// SwitchTo disposes the outgoing collection and installs a fresh one for id.
// An id the library does not know panics before anything is disposed.
func (c *Controller) SwitchTo(id template.ID) *particle.Store {
	t := c.lib.MustLookup(id)

	if old := c.store.Load(); old != nil {
		for _, d := range c.disposers {
			d.Dispose(old.Template(), old.Generation())
		}
	}
	c.gen++
	s := particle.Rebuild(c.lib, id, c.gen, c.rng)
	c.store.Store(s)

	c.log.Info().
		Str("template", string(id)).
		Int("count", t.Count).
		Uint64("generation", c.gen).
		Msg("template active")
	return s
}

// Next switches to the template after the active one.
func (c *Controller) Next() *particle.Store {
	return c.SwitchTo(c.lib.Next(c.Active()))
}

// Store returns the active collection, nil before the first switch.
func (c *Controller) Store() *particle.Store { return c.store.Load() }

// Active returns the active template id, empty before the first switch.
func (c *Controller) Active() template.ID {
	if s := c.store.Load(); s != nil {
		return s.Template()
	}
	return ""
}
