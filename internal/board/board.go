// Package board models the cutting board: whole vegetables are chopped
// until sliced, and only sliced vegetables may leave the board.
package board

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/xid"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// DefaultTimeToSlice is how long the knife must work a vegetable.
const DefaultTimeToSlice = 1500 * time.Millisecond

// Vegetable is a raw ingredient entity on the board.
type Vegetable struct {
	ID       string
	Name     string // normalized ingredient token
	Progress time.Duration
	Sliced   bool
	seq      int
}

// Option configures the board.
type Option func(*Board)

// WithTimeToSlice sets the chopping time per vegetable.
func WithTimeToSlice(d time.Duration) Option {
	return func(b *Board) {
		b.timeToSlice = d
	}
}

// Board holds vegetables waiting to be chopped or moved to the pot.
type Board struct {
	log         *logger.Logger
	timeToSlice time.Duration
	veg         map[string]*Vegetable
	seq         int
}

// New creates an empty cutting board.
func New(log *logger.Logger, opts ...Option) *Board {
	b := &Board{
		log:         log,
		timeToSlice: DefaultTimeToSlice,
		veg:         make(map[string]*Vegetable),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Spawn puts a whole vegetable on the board.
func (b *Board) Spawn(name string) (*Vegetable, error) {
	tok, err := domain.NormalizeIngredient(name)
	if err != nil {
		return nil, fmt.Errorf("spawning %q: %w", name, err)
	}
	b.seq++
	v := &Vegetable{ID: xid.New().String(), Name: tok, seq: b.seq}
	b.veg[v.ID] = v
	b.log.Debug("spawned %s (%s)", v.Name, v.ID)
	return v, nil
}

// Chop works the knife over a vegetable for dt. It reports whether the
// vegetable is sliced afterwards.
func (b *Board) Chop(id string, dt time.Duration) (bool, error) {
	v, ok := b.veg[id]
	if !ok {
		return false, fmt.Errorf("chopping %s: %w", id, domain.ErrNotFound)
	}
	if v.Sliced {
		return true, nil
	}
	v.Progress += dt
	if v.Progress >= b.timeToSlice {
		v.Sliced = true
		b.log.Debug("%s sliced", v.Name)
	}
	return v.Sliced, nil
}

// Take removes a sliced vegetable from the board and returns its
// ingredient token. Whole vegetables stay put.
func (b *Board) Take(id string) (string, error) {
	v, ok := b.veg[id]
	if !ok {
		return "", fmt.Errorf("taking %s: %w", id, domain.ErrNotFound)
	}
	if !v.Sliced {
		return "", fmt.Errorf("taking %s: %w", v.Name, domain.ErrNotSliced)
	}
	delete(b.veg, id)
	return v.Name, nil
}

// Find returns the oldest vegetable with the given name. With wantSliced
// only sliced vegetables match.
func (b *Board) Find(name string, wantSliced bool) (*Vegetable, bool) {
	tok, err := domain.NormalizeIngredient(name)
	if err != nil {
		return nil, false
	}
	for _, v := range b.List() {
		if v.Name != tok || (wantSliced && !v.Sliced) {
			continue
		}
		return v, true
	}
	return nil, false
}

// List returns the vegetables in spawn order.
func (b *Board) List() []*Vegetable {
	out := make([]*Vegetable, 0, len(b.veg))
	for _, v := range b.veg {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Clear removes every vegetable.
func (b *Board) Clear() {
	b.veg = make(map[string]*Vegetable)
}

// TimeToSlice returns the chopping time per vegetable.
func (b *Board) TimeToSlice() time.Duration { return b.timeToSlice }
