package engine

import (
	"context"
	"errors"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
)

// flush drains the event queue. Handlers may queue further events; they
// are processed in the same pass.
func (e *Engine) flush(ctx context.Context) error {
	var errs []error
	for len(e.queue) > 0 {
		ev := e.queue[0]
		e.queue = e.queue[1:]
		if err := e.handle(ctx, ev); err != nil {
			errs = append(errs, err)
		}
		if e.forward != nil {
			e.forward.Publish(ev)
		}
	}
	e.queue = nil
	return errors.Join(errs...)
}

func (e *Engine) handle(ctx context.Context, ev domain.Event) error {
	e.log.Debug("event %s", ev.EventName())

	switch ev := ev.(type) {
	case domain.IngredientAdded:
		e.cue(domain.CueAddIngredient)
		if !e.pot.Cooking() && !e.pot.Reachable() {
			e.say(ctx, lineNoRecipe(e.pot.Ingredients()))
		}

	case domain.CookingStarted:
		e.cue(domain.CueCookingStarted)
		e.say(ctx, lineCookingStarted(ev.RecipeName, ev.CookingTime))

	case domain.DishReadyEvent:
		return e.dishReady(ctx, ev)

	case domain.PotCleared:
		if ev.Forced {
			e.say(ctx, linePotCleared())
		}

	case domain.PlacementStarted:
		e.cue(domain.CuePlaceDish)

	case domain.PlacementCancelled:
		if d, ok := e.dishes[ev.DishID]; ok {
			delete(e.dishes, ev.DishID)
			e.say(ctx, linePlacementCancelled(d.Name))
		}

	case domain.DishServedEvent:
		e.say(ctx, lineServed(ev.Name, ev.Score, e.total()))
	}
	return nil
}

// dishReady spawns the finished dish at the pot. With auto-serve on it
// goes straight to the serving area; a full area leaves it waiting.
func (e *Engine) dishReady(ctx context.Context, ev domain.DishReadyEvent) error {
	d := &domain.Dish{
		ID:          e.newID(),
		ResultID:    ev.Result.ID,
		Name:        ev.Result.Name,
		Score:       ev.Result.Score,
		SessionID:   ev.SessionID,
		Position:    e.potPos.Add(ev.Position),
		Status:      domain.DishReady,
		Interactive: true,
	}
	if d.Name == "" {
		d.Name = ev.RecipeID
	}
	e.dishes[d.ID] = d
	e.ready = append(e.ready, d.ID)
	e.lastSession = ev.SessionID

	e.cue(domain.CueDishReady)
	e.say(ctx, lineDishReady(d.Name))

	if !e.autoServe {
		return nil
	}
	if _, err := e.serving.PlaceDish(d); err != nil {
		if errors.Is(err, domain.ErrNoFreeSlot) {
			e.cue(domain.CueError)
			e.urgent(ctx, lineServingFull())
			return nil
		}
		return err
	}
	e.unready(d.ID)
	return nil
}

func (e *Engine) total() int {
	if e.score == nil {
		return 0
	}
	return e.score.Total()
}

func (e *Engine) cue(c domain.Cue) {
	if e.cues != nil {
		e.cues.Play(c)
	}
}

// say delivers a message to the player. Delivery failures are logged and
// never stop the simulation.
func (e *Engine) say(ctx context.Context, msg string) {
	e.lastNote = msg
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, msg); err != nil {
		e.log.Warn("notify: %v", err)
	}
}

func (e *Engine) urgent(ctx context.Context, msg string) {
	e.lastNote = msg
	if e.notifier == nil {
		return
	}
	if err := e.notifier.NotifyUrgent(ctx, msg); err != nil {
		e.log.Warn("notify: %v", err)
	}
}
