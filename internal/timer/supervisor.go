// Package timer runs the kitchen simulation loop. The supervisor owns the
// kitchen: it ticks it on a fixed interval, runs player commands between
// ticks and publishes a snapshot after each change.
package timer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/engine"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// ErrStopped is returned by Do when the loop is not running.
var ErrStopped = errors.New("simulation stopped")

// Kitchen is what the supervisor drives. *engine.Engine satisfies it.
type Kitchen interface {
	Tick(ctx context.Context, dt time.Duration) error
	Snapshot() *engine.Snapshot
}

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the kitchen advances.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithMaxStep caps the time a single tick may advance, so a stalled
// process does not finish every dish at once when it resumes.
func WithMaxStep(d time.Duration) Option {
	return func(s *Supervisor) {
		s.maxStep = d
	}
}

// WithOnUpdate registers a callback run on the loop goroutine after every
// published snapshot. It must not block.
func WithOnUpdate(fn func(*engine.Snapshot)) Option {
	return func(s *Supervisor) {
		s.onUpdate = fn
	}
}

// WithWatcher enables the watcher with the given options.
func WithWatcher(opts ...WatcherOption) Option {
	return func(s *Supervisor) {
		s.watch = true
		s.watcherOpts = opts
	}
}

type command struct {
	fn   func(ctx context.Context) error
	done chan error
}

// Supervisor runs the simulation loop. All kitchen access goes through
// it: ticks and commands never overlap.
type Supervisor struct {
	kitchen      Kitchen
	notifier     domain.Notifier
	log          *logger.Logger
	tickInterval time.Duration
	maxStep      time.Duration
	onUpdate     func(*engine.Snapshot)

	watch       bool
	watcherOpts []WatcherOption
	watcher     *Watcher

	cmds chan command
	snap atomic.Pointer[engine.Snapshot]

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a supervisor for the kitchen.
func New(kitchen Kitchen, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		kitchen:      kitchen,
		notifier:     notifier,
		log:          log,
		tickInterval: 50 * time.Millisecond,
		maxStep:      250 * time.Millisecond,
		cmds:         make(chan command),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(kitchen.Snapshot())
	return s
}

// Start begins the simulation loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("simulation already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.done = make(chan struct{})

	go s.loop(childCtx, s.done)

	if s.watch {
		s.watcher = NewWatcher(s, s.notifier, s.log.Named("watcher"), s.watcherOpts...)
		go s.watcher.Run(childCtx)
	}

	s.log.Info("simulation started (tick=%s)", s.tickInterval)
}

// Stop shuts the loop down and waits for it to exit.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	done := s.done
	s.mu.Unlock()

	<-done
	s.log.Info("simulation stopped")
}

// Do runs fn on the simulation goroutine between ticks and returns its
// error. It blocks until fn has run or ctx is done.
func (s *Supervisor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	running, done := s.running, s.done
	s.mu.Unlock()
	if !running {
		return ErrStopped
	}

	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case s.cmds <- cmd:
	case <-done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the latest published kitchen state. Safe from any
// goroutine.
func (s *Supervisor) Snapshot() *engine.Snapshot {
	return s.snap.Load()
}

func (s *Supervisor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			s.step(ctx, dt)
		case cmd := <-s.cmds:
			cmd.done <- cmd.fn(ctx)
			s.publish()
		}
	}
}

// step advances the kitchen once. Errors from a tick are reported but do
// not stop the loop.
func (s *Supervisor) step(ctx context.Context, dt time.Duration) {
	if s.maxStep > 0 && dt > s.maxStep {
		dt = s.maxStep
	}
	if err := s.kitchen.Tick(ctx, dt); err != nil {
		s.log.Warn("tick: %v", err)
	}
	s.publish()
}

func (s *Supervisor) publish() {
	snap := s.kitchen.Snapshot()
	s.snap.Store(snap)
	if s.onUpdate != nil {
		s.onUpdate(snap)
	}
}
