package domain

import "time"

// PotState is the cooking state machine: Idle -> Cooking -> Complete -> Idle.
type PotState int

const (
	PotIdle PotState = iota
	PotCooking
	PotComplete
)

// String returns a human-readable pot state.
func (s PotState) String() string {
	switch s {
	case PotIdle:
		return "idle"
	case PotCooking:
		return "cooking"
	case PotComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// CookingSession is the pot's mutable state. It lives only in memory and
// is discarded on completion or forced reset.
type CookingSession struct {
	ID          string
	Ingredients []string
	Recipe      *Recipe // nil until a recipe matches
	Remaining   time.Duration
	State       PotState
}

// Progress returns the cooking progress in [0, 1]. Zero when nothing is cooking.
func (s *CookingSession) Progress() float64 {
	if s.Recipe == nil || s.Recipe.CookingTime <= 0 {
		return 0
	}
	p := 1 - float64(s.Remaining)/float64(s.Recipe.CookingTime)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
