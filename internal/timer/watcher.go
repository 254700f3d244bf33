package timer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/engine"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// SnapshotSource provides the latest kitchen state.
type SnapshotSource interface {
	Snapshot() *engine.Snapshot
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher looks at the kitchen.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithRepeatAfter sets how long the watcher waits before repeating the
// same nudge.
func WithRepeatAfter(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.repeatAfter = d
	}
}

// Watcher periodically reads the kitchen snapshot and nudges the player
// when the kitchen is stuck: the serving area is full while dishes wait,
// or the pot holds something no recipe can use. It runs on a slower cycle
// than the simulation and never touches the kitchen directly.
type Watcher struct {
	source      SnapshotSource
	notifier    domain.Notifier
	log         *logger.Logger
	interval    time.Duration
	repeatAfter time.Duration

	last   string
	lastAt time.Time
}

// NewWatcher creates a watcher over a snapshot source.
func NewWatcher(source SnapshotSource, notifier domain.Notifier, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:      source,
		notifier:    notifier,
		log:         log,
		interval:    5 * time.Second,
		repeatAfter: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the watcher loop. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watcher started (interval=%s)", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case now := <-ticker.C:
			w.check(ctx, now)
		}
	}
}

// check runs one watcher cycle.
func (w *Watcher) check(ctx context.Context, now time.Time) {
	snap := w.source.Snapshot()
	if snap == nil {
		return
	}
	w.log.Debug("pot=%s ingredients=%d ready=%d free=%d in flight=%d",
		snap.PotState, len(snap.Ingredients), len(snap.Ready), snap.Free, snap.InFlight)

	msg, urgent := buildMessage(snap)
	if msg == "" {
		w.last = ""
		return
	}
	if msg == w.last && now.Sub(w.lastAt) < w.repeatAfter {
		return
	}
	w.last, w.lastAt = msg, now

	notify := w.notifier.Notify
	if urgent {
		notify = w.notifier.NotifyUrgent
	}
	if err := notify(ctx, msg); err != nil {
		w.log.Error("notify: %v", err)
	}
}

// buildMessage decides what to tell the player. The second result marks
// messages that block progress.
func buildMessage(snap *engine.Snapshot) (string, bool) {
	if len(snap.Ready) > 0 && snap.Full() {
		names := make([]string, len(snap.Ready))
		for i, d := range snap.Ready {
			names[i] = d.Name
		}
		return fmt.Sprintf("%s waiting and no room to serve. Remove a dish.", joinNames(names)), true
	}

	if snap.PotState == domain.PotIdle && len(snap.Ingredients) > 0 && !snap.Reachable {
		return fmt.Sprintf("The pot has %s and nothing cooks with that. Clear it.",
			joinNames(snap.Ingredients)), false
	}

	var sliced []string
	for _, v := range snap.Board {
		if v.Sliced {
			sliced = append(sliced, v.Name)
		}
	}
	if len(sliced) > 0 && snap.PotState != domain.PotCooking {
		return fmt.Sprintf("Sliced %s on the board. Drop it in the pot.", joinNames(sliced)), false
	}

	return "", false
}

// joinNames formats a list as "a", "a and b" or "a, b and c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
