package template

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrUnknownTemplate = errors.New("unknown template")

// Library maps template ids to their generators and keeps the cyclic order
// used by the peace-sign switch. Build it at startup; it is read-only after.
type Library struct {
	order []ID
	m     map[ID]Template
}

func NewLibrary() *Library { return &Library{m: map[ID]Template{}} }

// Register adds t to the library, appending it to the cyclic order the first
// time its id is seen.
func (l *Library) Register(t Template) {
	if t.Gen == nil || t.ID == "" {
		return
	}
	if _, ok := l.m[t.ID]; !ok {
		l.order = append(l.order, t.ID)
	}
	l.m[t.ID] = t
}

// Default returns the six built-in templates in their switch order.
func Default() *Library {
	l := NewLibrary()
	for _, d := range []struct {
		id    ID
		hex   string
		count int
		gen   Generator
	}{
		{Spiral, "#00ffff", 2000, SpiralShape{}},
		{Heart, "#ff1493", 1500, HeartShape{}},
		{Flower, "#ff69b4", 2000, FlowerShape{}},
		{Saturn, "#ffd700", 2500, SaturnShape{}},
		{Fireworks, "#ff4500", 3000, FireworksShape{}},
		{Galaxy, "#9370db", 2500, GalaxyShape{}},
	} {
		c, _ := colorful.Hex(d.hex)
		l.Register(Template{ID: d.id, Color: c, Count: d.count, Gen: d.gen})
	}
	return l
}

// Override replaces the color and/or count of a registered template.
// Empty hex or a zero count leaves that field untouched.
func (l *Library) Override(id ID, hex string, count int) error {
	t, err := l.Lookup(id)
	if err != nil {
		return err
	}
	if hex != "" {
		c, err := colorful.Hex(hex)
		if err != nil {
			return fmt.Errorf("template %s color %q: %w", id, hex, err)
		}
		t.Color = c
	}
	if count < 0 {
		return fmt.Errorf("template %s: negative count %d", id, count)
	}
	if count > 0 {
		t.Count = count
	}
	l.m[id] = t
	return nil
}

func (l *Library) Lookup(id ID) (Template, error) {
	t, ok := l.m[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, string(id))
	}
	return t, nil
}

// MustLookup is Lookup for ids that come from the library itself, where a miss
// means the switch order is broken.
func (l *Library) MustLookup(id ID) Template {
	t, err := l.Lookup(id)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse resolves a user-supplied name.
func (l *Library) Parse(name string) (ID, error) {
	id := ID(name)
	if _, err := l.Lookup(id); err != nil {
		return "", err
	}
	return id, nil
}

// Next returns the template after id in cyclic order.
func (l *Library) Next(id ID) ID {
	for i, o := range l.order {
		if o == id {
			return l.order[(i+1)%len(l.order)]
		}
	}
	panic(fmt.Errorf("%w: %q has no successor", ErrUnknownTemplate, string(id)))
}

// Order returns a copy of the switch order.
func (l *Library) Order() []ID {
	return append([]ID(nil), l.order...)
}

// Palette maps every template to its base color.
func (l *Library) Palette() map[ID]colorful.Color {
	out := make(map[ID]colorful.Color, len(l.m))
	for id, t := range l.m {
		out[id] = t.Color
	}
	return out
}

// Position evaluates template id at index out of total.
func (l *Library) Position(id ID, index, total int, rng *rand.Rand) Vec3 {
	return l.MustLookup(id).Gen.Position(index, total, rng)
}
