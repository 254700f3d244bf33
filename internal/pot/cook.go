package pot

import (
	"fmt"
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
)

// Tick counts the cooking time down by dt. A stir in the same tick takes
// off another dt/2. When the time runs out the dish is completed.
func (p *Pot) Tick(dt time.Duration, stirred bool) error {
	if p.session.State != domain.PotCooking {
		return domain.ErrNotCooking
	}
	if dt < 0 {
		dt = 0
	}

	p.session.Remaining -= dt
	if stirred {
		p.session.Remaining -= dt / 2
	}

	if p.session.Remaining > 0 {
		return nil
	}
	p.session.State = domain.PotComplete
	return p.CompleteCooking()
}

// CompleteCooking emits the finished dish and clears the pot. The pot is
// cleared even when no dish can be produced; a recipe without a result
// yields ErrMissingResult.
func (p *Pot) CompleteCooking() error {
	r := p.session.Recipe
	if r == nil {
		return domain.ErrNotCooking
	}
	id := p.session.ID

	var reason error
	if r.Result == nil {
		reason = fmt.Errorf("completing %s: %w", r.ID, domain.ErrMissingResult)
		p.log.Error("session %s: %v", id, reason)
	} else {
		res := *r.Result
		if res.Score == 0 {
			res.Score = domain.DefaultDishScore
		}
		p.publish(domain.DishReadyEvent{
			SessionID: id,
			RecipeID:  r.ID,
			Result:    res,
			Position:  p.contentPoint,
		})
		p.log.Info("%s is ready", r.ResultName())
	}

	p.clear()
	p.publish(domain.PotCleared{SessionID: id, Reason: reason})
	return reason
}
