package domain

import "time"

// Event is emitted by the simulation for the presentation layer.
type Event interface {
	EventName() string
}

// EventSink receives simulation events. Publish is called on the
// simulation goroutine and must not block.
type EventSink interface {
	Publish(e Event)
}

// EventFunc adapts a function to an EventSink.
type EventFunc func(e Event)

// Publish calls f(e).
func (f EventFunc) Publish(e Event) { f(e) }

type IngredientAdded struct {
	SessionID  string
	Ingredient string
	Count      int // ingredients now in the pot
}

type CookingStarted struct {
	SessionID   string
	RecipeID    string
	RecipeName  string
	CookingTime time.Duration
}

// DishReadyEvent is emitted when cooking completes with a configured result.
type DishReadyEvent struct {
	SessionID string
	RecipeID  string
	Result    DishSpec
	Position  Vec2
}

// PotCleared is emitted whenever the session is discarded. Reason is nil
// after a normal completion.
type PotCleared struct {
	SessionID string
	Forced    bool
	Reason    error
}

type PlacementStarted struct {
	DishID string
	Slot   SlotRef
}

type PlacementCancelled struct {
	DishID string
	Slot   SlotRef
}

type DishServedEvent struct {
	DishID string
	Name   string
	Score  int
	Slot   SlotRef
}

// SlotChanged is emitted whenever a slot's occupancy flips.
type SlotChanged struct {
	Slot     SlotRef
	Occupied bool
	DishID   string
}

func (IngredientAdded) EventName() string    { return "ingredient_added" }
func (CookingStarted) EventName() string     { return "cooking_started" }
func (DishReadyEvent) EventName() string     { return "dish_ready" }
func (PotCleared) EventName() string         { return "pot_cleared" }
func (PlacementStarted) EventName() string   { return "placement_started" }
func (PlacementCancelled) EventName() string { return "placement_cancelled" }
func (DishServedEvent) EventName() string    { return "dish_served" }
func (SlotChanged) EventName() string        { return "slot_changed" }
