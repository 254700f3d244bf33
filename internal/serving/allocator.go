// Package serving implements the serving area: a fixed pool of slots that
// finished dishes travel to before they count as served.
package serving

import (
	"fmt"
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/motion"
)

// DefaultMoveSpeed is the journey fraction covered per second.
const DefaultMoveSpeed = 3.0

// DefaultPositions returns the fallback layout: five slots one unit apart,
// centred on the area origin.
func DefaultPositions() []domain.Vec2 {
	return []domain.Vec2{{X: -2}, {X: -1}, {X: 0}, {X: 1}, {X: 2}}
}

// Option configures the allocator.
type Option func(*Allocator)

// WithPositions sets slot positions relative to the origin. An empty list
// keeps the default layout.
func WithPositions(ps []domain.Vec2) Option {
	return func(a *Allocator) {
		if len(ps) > 0 {
			a.positions = append([]domain.Vec2(nil), ps...)
		}
	}
}

// WithOrigin sets the serving area position.
func WithOrigin(o domain.Vec2) Option {
	return func(a *Allocator) {
		a.origin = o
	}
}

// WithMoveSpeed sets how fast dishes travel to their slot.
func WithMoveSpeed(s float64) Option {
	return func(a *Allocator) {
		a.moveSpeed = s
	}
}

// WithEvents sets where slot and placement events go.
func WithEvents(sink domain.EventSink) Option {
	return func(a *Allocator) {
		a.events = sink
	}
}

type slot struct {
	index   int
	pos     domain.Vec2
	dish    *domain.Dish
	inbound *placement
}

func (s *slot) ref() domain.SlotRef {
	return domain.SlotRef{Index: s.index, Position: s.pos}
}

func (s *slot) available() bool {
	return s.dish == nil && s.inbound == nil
}

// placement is a dish travelling to a reserved slot.
type placement struct {
	dish *domain.Dish
	slot *slot
	tr   *motion.Transition
}

// Allocator owns the serving slots. It is not safe for concurrent use; the
// simulation loop is its only caller.
type Allocator struct {
	score     domain.ScoreSink
	events    domain.EventSink
	log       *logger.Logger
	origin    domain.Vec2
	positions []domain.Vec2
	moveSpeed float64

	slots    []*slot
	inflight []*placement // in start order
}

// New creates a serving area that credits served dishes to score.
func New(score domain.ScoreSink, log *logger.Logger, opts ...Option) *Allocator {
	a := &Allocator{
		score:     score,
		log:       log,
		positions: DefaultPositions(),
		moveSpeed: DefaultMoveSpeed,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.slots = make([]*slot, len(a.positions))
	for i, p := range a.positions {
		a.slots[i] = &slot{index: i, pos: a.origin.Add(p)}
	}

	a.log.Debug("serving area with %d slots at %s", len(a.slots), a.origin)
	return a
}

// HasFreeSlot reports whether PlaceDish can currently succeed.
func (a *Allocator) HasFreeSlot() bool {
	return a.FreeCount() > 0
}

// PlaceDish reserves the first available slot in index order and starts
// moving the dish there. It fails with ErrNoFreeSlot without touching any
// slot; the caller decides whether to try again later.
func (a *Allocator) PlaceDish(d *domain.Dish) (domain.SlotRef, error) {
	if d == nil {
		return domain.SlotRef{}, fmt.Errorf("placing dish: %w", domain.ErrNotFound)
	}
	switch d.Status {
	case domain.DishReady:
	case domain.DishInFlight:
		return domain.SlotRef{}, domain.ErrDishInFlight
	default:
		return domain.SlotRef{}, fmt.Errorf("dish %s is %s: %w", d.ID, d.Status, domain.ErrDishNotReady)
	}

	var target *slot
	for _, s := range a.slots {
		if s.available() {
			target = s
			break
		}
	}
	if target == nil {
		a.log.Info("no free slot for %s", d.Name)
		return domain.SlotRef{}, domain.ErrNoFreeSlot
	}

	d.Status = domain.DishInFlight
	d.Interactive = false
	p := &placement{
		dish: d,
		slot: target,
		tr:   motion.FromSpeed(d.Position, target.pos, a.moveSpeed),
	}
	target.inbound = p
	a.inflight = append(a.inflight, p)

	a.publish(domain.PlacementStarted{DishID: d.ID, Slot: target.ref()})
	a.log.Debug("moving %s to slot %d %s", d.ID, target.index, target.pos)
	return target.ref(), nil
}

// Tick advances every travelling dish. Dishes that arrive are committed to
// their slot, become interactive again and are credited to the score.
func (a *Allocator) Tick(dt time.Duration) {
	if len(a.inflight) == 0 {
		return
	}

	pending := a.inflight
	a.inflight = nil
	for _, p := range pending {
		pos, done := p.tr.Advance(dt)
		p.dish.Position = pos
		if !done {
			a.inflight = append(a.inflight, p)
			continue
		}
		a.commit(p)
	}
}

func (a *Allocator) commit(p *placement) {
	s, d := p.slot, p.dish
	s.inbound = nil
	s.dish = d
	d.Status = domain.DishServed
	d.Interactive = true

	if a.score != nil {
		a.score.AddScore(d.Score)
	}
	a.publish(domain.SlotChanged{Slot: s.ref(), Occupied: true, DishID: d.ID})
	a.publish(domain.DishServedEvent{DishID: d.ID, Name: d.Name, Score: d.Score, Slot: s.ref()})
	a.log.Info("served %s in slot %d (+%d)", d.Name, s.index, d.Score)
}

// FreeSlot empties the slot holding the dish.
func (a *Allocator) FreeSlot(dishID string) error {
	for _, s := range a.slots {
		if s.inbound != nil && s.inbound.dish.ID == dishID {
			return domain.ErrDishInFlight
		}
		if s.dish == nil || s.dish.ID != dishID {
			continue
		}
		s.dish = nil
		a.publish(domain.SlotChanged{Slot: s.ref(), Occupied: false, DishID: dishID})
		a.log.Debug("slot %d freed", s.index)
		return nil
	}
	return fmt.Errorf("freeing slot for dish %s: %w", dishID, domain.ErrNotFound)
}

// CancelDish aborts a dish's placement and releases the reserved slot.
func (a *Allocator) CancelDish(dishID string) error {
	for i, p := range a.inflight {
		if p.dish.ID != dishID {
			continue
		}
		a.inflight = append(a.inflight[:i], a.inflight[i+1:]...)
		a.cancel(p)
		return nil
	}
	return fmt.Errorf("cancelling dish %s: %w", dishID, domain.ErrNotFound)
}

// CancelSession aborts placements of dishes cooked in the given session.
// Returns the number of cancelled placements.
func (a *Allocator) CancelSession(sessionID string) int {
	n := 0
	pending := a.inflight
	a.inflight = nil
	for _, p := range pending {
		if p.dish.SessionID == sessionID {
			a.cancel(p)
			n++
			continue
		}
		a.inflight = append(a.inflight, p)
	}
	return n
}

// CancelAll aborts every placement in progress.
func (a *Allocator) CancelAll() int {
	n := len(a.inflight)
	for _, p := range a.inflight {
		a.cancel(p)
	}
	a.inflight = nil
	return n
}

func (a *Allocator) cancel(p *placement) {
	p.slot.inbound = nil
	p.dish.Status = domain.DishCancelled
	p.dish.Interactive = false
	a.publish(domain.PlacementCancelled{DishID: p.dish.ID, Slot: p.slot.ref()})
	a.log.Debug("placement of %s into slot %d cancelled", p.dish.ID, p.slot.index)
}

// Reset cancels all placements and empties every slot.
func (a *Allocator) Reset() {
	a.CancelAll()
	for _, s := range a.slots {
		if s.dish == nil {
			continue
		}
		id := s.dish.ID
		s.dish = nil
		a.publish(domain.SlotChanged{Slot: s.ref(), Occupied: false, DishID: id})
	}
}

// OccupiedCount returns how many slots hold a dish.
func (a *Allocator) OccupiedCount() int {
	n := 0
	for _, s := range a.slots {
		if s.dish != nil {
			n++
		}
	}
	return n
}

// FreeCount returns how many slots can accept a new placement. Slots
// reserved by a travelling dish are neither free nor occupied.
func (a *Allocator) FreeCount() int {
	n := 0
	for _, s := range a.slots {
		if s.available() {
			n++
		}
	}
	return n
}

// InFlightCount returns how many dishes are travelling.
func (a *Allocator) InFlightCount() int { return len(a.inflight) }

// Capacity returns the number of slots.
func (a *Allocator) Capacity() int { return len(a.slots) }

// Slots returns a snapshot of every slot in index order.
func (a *Allocator) Slots() []domain.Slot {
	out := make([]domain.Slot, len(a.slots))
	for i, s := range a.slots {
		out[i] = domain.Slot{Index: s.index, Position: s.pos, Dish: s.dish}
	}
	return out
}

// SlotOf returns the slot holding or awaiting the dish.
func (a *Allocator) SlotOf(dishID string) (domain.SlotRef, bool) {
	for _, s := range a.slots {
		if s.dish != nil && s.dish.ID == dishID {
			return s.ref(), true
		}
		if s.inbound != nil && s.inbound.dish.ID == dishID {
			return s.ref(), true
		}
	}
	return domain.SlotRef{}, false
}

func (a *Allocator) publish(e domain.Event) {
	if a.events != nil {
		a.events.Publish(e)
	}
}
