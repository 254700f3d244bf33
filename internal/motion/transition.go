// Package motion replaces suspend/resume animations with plain transition
// records that the simulation loop advances every tick.
package motion

import (
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
)

// Transition is a timed linear move from Start to End.
type Transition struct {
	Start    domain.Vec2
	End      domain.Vec2
	Elapsed  time.Duration
	Duration time.Duration
}

// New creates a transition lasting d. A non-positive d completes on the
// first Advance.
func New(start, end domain.Vec2, d time.Duration) *Transition {
	return &Transition{Start: start, End: end, Duration: d}
}

// FromSpeed creates a transition whose journey fraction grows by speed
// per second, so it lasts 1/speed seconds.
func FromSpeed(start, end domain.Vec2, speed float64) *Transition {
	if speed <= 0 {
		return New(start, end, 0)
	}
	return New(start, end, time.Duration(float64(time.Second)/speed))
}

// Progress returns the journey fraction in [0, 1].
func (t *Transition) Progress() float64 {
	if t.Duration <= 0 || t.Elapsed >= t.Duration {
		return 1
	}
	return float64(t.Elapsed) / float64(t.Duration)
}

// Position returns the interpolated position for the current progress.
func (t *Transition) Position() domain.Vec2 {
	return t.Start.Lerp(t.End, t.Progress())
}

// Done reports whether the transition reached its end.
func (t *Transition) Done() bool {
	return t.Progress() >= 1
}

// Advance moves the transition forward by dt and returns the new position
// and whether it has arrived. On arrival the position is exactly End.
func (t *Transition) Advance(dt time.Duration) (domain.Vec2, bool) {
	if dt > 0 {
		t.Elapsed += dt
	}
	if t.Done() {
		return t.End, true
	}
	return t.Position(), false
}
