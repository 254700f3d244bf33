// Package engine wires the pot, the cutting board and the serving area
// into one kitchen. It turns player input into simulation calls, reacts to
// simulation events and builds the snapshots the display renders.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/board"
	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/pot"
	"github.com/hammamikhairi/ottokitchen/internal/serving"
)

// Scorer is the score accumulator the engine credits and reports.
type Scorer interface {
	domain.ScoreSink
	Total() int
	Best() int
	Served() int
	Reset()
}

// Option configures the engine.
type Option func(*Engine)

// WithPotOptions passes options through to the pot.
func WithPotOptions(opts ...pot.Option) Option {
	return func(e *Engine) {
		e.potOpts = append(e.potOpts, opts...)
	}
}

// WithServingOptions passes options through to the serving allocator.
func WithServingOptions(opts ...serving.Option) Option {
	return func(e *Engine) {
		e.servingOpts = append(e.servingOpts, opts...)
	}
}

// WithBoardOptions passes options through to the cutting board.
func WithBoardOptions(opts ...board.Option) Option {
	return func(e *Engine) {
		e.boardOpts = append(e.boardOpts, opts...)
	}
}

// WithCues plays a sound cue on gameplay moments.
func WithCues(p domain.CuePlayer) Option {
	return func(e *Engine) {
		e.cues = p
	}
}

// WithStirThreshold sets how far the pot must move to count as a stir.
func WithStirThreshold(d float64) Option {
	return func(e *Engine) {
		e.stirThreshold = d
	}
}

// WithCancelInFlightOnClear makes ForceClear also abort the placements of
// the pot's latest dish while it is still travelling to the serving area.
func WithCancelInFlightOnClear(on bool) Option {
	return func(e *Engine) {
		e.cancelInFlightOnClear = on
	}
}

// WithAutoServe sends every finished dish to the serving area as soon as
// it is ready instead of waiting for the player.
func WithAutoServe(on bool) Option {
	return func(e *Engine) {
		e.autoServe = on
	}
}

// WithEventSink forwards every simulation event after the engine has
// handled it.
func WithEventSink(sink domain.EventSink) Option {
	return func(e *Engine) {
		e.forward = sink
	}
}

// WithIDFunc overrides dish ID generation. Used by tests.
func WithIDFunc(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// Engine is the kitchen. It is not safe for concurrent use: the
// simulation loop owns it and every call must come from that goroutine.
type Engine struct {
	pot      *pot.Pot
	board    *board.Board
	serving  *serving.Allocator
	score    Scorer
	notifier domain.Notifier
	cues     domain.CuePlayer
	forward  domain.EventSink
	log      *logger.Logger
	newID    func() string

	potOpts     []pot.Option
	servingOpts []serving.Option
	boardOpts   []board.Option

	stirThreshold         float64
	cancelInFlightOnClear bool
	autoServe             bool

	potPos  domain.Vec2
	stir    *pot.StirDetector
	stirred bool

	chopping    string // vegetable under the knife
	lastSession string // pot session that produced the latest dish

	dishes map[string]*domain.Dish
	ready  []string // dish IDs waiting at the pot, oldest first

	queue    []domain.Event
	elapsed  time.Duration
	lastNote string
}

// New builds a kitchen over the given recipe table.
func New(recipes []*domain.Recipe, score Scorer, notifier domain.Notifier, log *logger.Logger, opts ...Option) (*Engine, error) {
	e := &Engine{
		score:         score,
		notifier:      notifier,
		log:           log,
		newID:         generateID,
		stirThreshold: pot.DefaultStirThreshold,
		dishes:        make(map[string]*domain.Dish),
	}
	for _, opt := range opts {
		opt(e)
	}

	p, err := pot.New(recipes, e, log.Named("pot"), e.potOpts...)
	if err != nil {
		return nil, fmt.Errorf("building pot: %w", err)
	}
	e.pot = p
	e.board = board.New(log.Named("board"), e.boardOpts...)

	servingOpts := append([]serving.Option{serving.WithEvents(e)}, e.servingOpts...)
	var sink domain.ScoreSink
	if score != nil {
		sink = score
	}
	e.serving = serving.New(sink, log.Named("serving"), servingOpts...)
	e.stir = pot.NewStirDetector(e.stirThreshold, e.potPos)

	return e, nil
}

// Publish queues a simulation event. The pot and the serving allocator
// call it; the queue is drained after every input.
func (e *Engine) Publish(ev domain.Event) {
	e.queue = append(e.queue, ev)
}

// Recipes returns the recipe table in matching order.
func (e *Engine) Recipes() []*domain.Recipe {
	return e.pot.Recipes()
}

// AddIngredient drops an ingredient token straight into the pot.
func (e *Engine) AddIngredient(ctx context.Context, name string) error {
	err := e.pot.AddIngredient(name)
	if err != nil {
		e.cue(domain.CueError)
		e.say(ctx, lineRejected(name))
	}
	return errors.Join(err, e.flush(ctx))
}

// SpawnVegetable puts a whole vegetable on the cutting board.
func (e *Engine) SpawnVegetable(ctx context.Context, name string) (*board.Vegetable, error) {
	v, err := e.board.Spawn(name)
	if err != nil {
		e.say(ctx, lineRejected(name))
		return nil, err
	}
	e.say(ctx, lineSpawned(v.Name))
	return v, nil
}

// Chop puts the knife on a vegetable. Slicing progresses with Tick.
func (e *Engine) Chop(ctx context.Context, vegID string) error {
	sliced, err := e.board.Chop(vegID, 0)
	if err != nil {
		return err
	}
	if sliced {
		e.chopping = ""
		return nil
	}
	e.chopping = vegID
	return nil
}

// ChopByName chops the oldest whole vegetable with the given name.
func (e *Engine) ChopByName(ctx context.Context, name string) (*board.Vegetable, error) {
	tok, err := domain.NormalizeIngredient(name)
	if err != nil {
		return nil, err
	}
	for _, v := range e.board.List() {
		if v.Name == tok && !v.Sliced {
			return v, e.Chop(ctx, v.ID)
		}
	}
	return nil, fmt.Errorf("no whole %s on the board: %w", tok, domain.ErrNotFound)
}

// DropIntoPot moves a sliced vegetable from the board into the pot.
func (e *Engine) DropIntoPot(ctx context.Context, vegID string) error {
	name, err := e.board.Take(vegID)
	if err != nil {
		if errors.Is(err, domain.ErrNotSliced) {
			e.say(ctx, lineNotSliced())
		}
		return err
	}
	if e.chopping == vegID {
		e.chopping = ""
	}
	return e.AddIngredient(ctx, name)
}

// DropByName drops the oldest sliced vegetable with the given name.
func (e *Engine) DropByName(ctx context.Context, name string) error {
	v, ok := e.board.Find(name, true)
	if !ok {
		if _, whole := e.board.Find(name, false); whole {
			e.say(ctx, lineNotSliced())
			return fmt.Errorf("%s: %w", name, domain.ErrNotSliced)
		}
		return fmt.Errorf("no sliced %s on the board: %w", name, domain.ErrNotFound)
	}
	return e.DropIntoPot(ctx, v.ID)
}

// MovePot drags the pot to a new position. Moving it far enough while
// cooking counts as a stir for the next tick.
func (e *Engine) MovePot(ctx context.Context, pos domain.Vec2) {
	e.potPos = pos
	if e.stir.Moved(pos) && e.pot.Cooking() {
		e.stirred = true
		e.log.Debug("stirred by drag to %s", pos)
	}
}

// Stir stirs the pot. It speeds up the next tick only while cooking.
func (e *Engine) Stir(ctx context.Context) error {
	if !e.pot.Cooking() {
		return domain.ErrNotCooking
	}
	e.stirred = true
	return nil
}

// Tick advances the whole kitchen by dt.
func (e *Engine) Tick(ctx context.Context, dt time.Duration) error {
	if dt < 0 {
		dt = 0
	}
	e.elapsed += dt

	if e.chopping != "" {
		sliced, err := e.board.Chop(e.chopping, dt)
		switch {
		case err != nil:
			e.chopping = ""
		case sliced:
			if v, ok := e.vegetable(e.chopping); ok {
				e.say(ctx, lineSliced(v.Name))
			}
			e.chopping = ""
		}
	}

	var cookErr error
	if e.pot.Cooking() {
		cookErr = e.pot.Tick(dt, e.stirred)
		if errors.Is(cookErr, domain.ErrMissingResult) {
			e.cue(domain.CueError)
			e.urgent(ctx, lineMissingResult())
		}
	}
	e.stirred = false

	e.serving.Tick(dt)
	return errors.Join(cookErr, e.flush(ctx))
}

// ServeDish sends a ready dish to the first free slot in the serving area.
// A full serving area returns ErrNoFreeSlot and leaves the dish where it is.
func (e *Engine) ServeDish(ctx context.Context, dishID string) (domain.SlotRef, error) {
	d, ok := e.dishes[dishID]
	if !ok {
		return domain.SlotRef{}, fmt.Errorf("dish %s: %w", dishID, domain.ErrNotFound)
	}
	ref, err := e.serving.PlaceDish(d)
	if err != nil {
		if errors.Is(err, domain.ErrNoFreeSlot) {
			e.cue(domain.CueError)
			e.urgent(ctx, lineServingFull())
		}
		return ref, errors.Join(err, e.flush(ctx))
	}
	e.unready(dishID)
	return ref, e.flush(ctx)
}

// ServeNext serves the oldest dish waiting at the pot.
func (e *Engine) ServeNext(ctx context.Context) (domain.SlotRef, error) {
	if len(e.ready) == 0 {
		return domain.SlotRef{}, fmt.Errorf("no dish waiting: %w", domain.ErrNotFound)
	}
	return e.ServeDish(ctx, e.ready[0])
}

// RemoveDish takes a served dish off its slot, freeing it.
func (e *Engine) RemoveDish(ctx context.Context, dishID string) error {
	if err := e.serving.FreeSlot(dishID); err != nil {
		return err
	}
	delete(e.dishes, dishID)
	return e.flush(ctx)
}

// RemoveSlot frees the slot at the given index.
func (e *Engine) RemoveSlot(ctx context.Context, index int) error {
	for _, s := range e.serving.Slots() {
		if s.Index == index {
			if s.Dish == nil {
				return fmt.Errorf("slot %d is empty: %w", index, domain.ErrNotFound)
			}
			return e.RemoveDish(ctx, s.Dish.ID)
		}
	}
	return fmt.Errorf("slot %d: %w", index, domain.ErrNotFound)
}

// ForceClear empties the pot immediately, cooking or not. A session only
// yields its dish when it ends, so with WithCancelInFlightOnClear the
// placements cancelled are those of the session that produced the pot's
// latest dish. Dishes from older sessions keep travelling.
func (e *Engine) ForceClear(ctx context.Context) error {
	e.pot.ForceClear()
	e.stirred = false
	if e.cancelInFlightOnClear && e.lastSession != "" {
		if n := e.serving.CancelSession(e.lastSession); n > 0 {
			e.log.Info("cancelled %d dishes in flight from session %s", n, e.lastSession)
		}
	}
	return e.flush(ctx)
}

// Reset starts a fresh round: the pot, the board and the serving area are
// emptied, every placement is cancelled and the score is zeroed.
func (e *Engine) Reset(ctx context.Context) error {
	e.pot.ForceClear()
	e.serving.Reset()
	e.board.Clear()
	e.chopping = ""
	e.lastSession = ""
	e.stirred = false
	e.dishes = make(map[string]*domain.Dish)
	e.ready = nil
	if e.score != nil {
		e.score.Reset()
	}
	err := e.flush(ctx)
	e.say(ctx, lineReset())
	return err
}

// Dish returns a copy of a dish known to the kitchen.
func (e *Engine) Dish(id string) (domain.Dish, bool) {
	d, ok := e.dishes[id]
	if !ok {
		return domain.Dish{}, false
	}
	return *d, true
}

// ReadyDishes returns the IDs of dishes waiting at the pot, oldest first.
func (e *Engine) ReadyDishes() []string {
	return append([]string(nil), e.ready...)
}

func (e *Engine) vegetable(id string) (*board.Vegetable, bool) {
	for _, v := range e.board.List() {
		if v.ID == id {
			return v, true
		}
	}
	return nil, false
}

func (e *Engine) unready(id string) {
	for i, r := range e.ready {
		if r == id {
			e.ready = append(e.ready[:i], e.ready[i+1:]...)
			return
		}
	}
}
