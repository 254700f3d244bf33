// Package pot implements the recipe engine: it accumulates ingredient
// tokens, matches them against the recipe table, counts the cooking time
// down and hands the finished dish to the rest of the kitchen.
package pot

import (
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// Option configures the pot.
type Option func(*Pot)

// WithContentPoint sets where finished dishes appear.
func WithContentPoint(p domain.Vec2) Option {
	return func(pt *Pot) {
		pt.contentPoint = p
	}
}

// WithIDFunc overrides session ID generation. Used by tests.
func WithIDFunc(fn func() string) Option {
	return func(pt *Pot) {
		pt.newID = fn
	}
}

type entry struct {
	recipe *domain.Recipe
	want   domain.Multiset
}

// Pot is the recipe engine. It is not safe for concurrent use; the
// simulation loop is its only caller.
type Pot struct {
	table        []entry
	events       domain.EventSink
	log          *logger.Logger
	contentPoint domain.Vec2
	newID        func() string

	session domain.CookingSession
}

// New creates a pot over the given recipe table. Table order is the
// matching order. Ingredient names are normalized like additions.
func New(recipes []*domain.Recipe, events domain.EventSink, log *logger.Logger, opts ...Option) (*Pot, error) {
	p := &Pot{
		events: events,
		log:    log,
		newID:  func() string { return xid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, r := range recipes {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("loading recipe table: %w", err)
		}
		r, err := r.Normalized()
		if err != nil {
			return nil, fmt.Errorf("loading recipe table: %w", err)
		}
		p.table = append(p.table, entry{recipe: r, want: domain.NewMultiset(r.Ingredients)})
	}

	p.log.Debug("pot ready with %d recipes", len(p.table))
	return p, nil
}

// AddIngredient drops a normalized ingredient into the pot and tries to
// match a recipe. While cooking, the ingredient is kept but not matched.
func (p *Pot) AddIngredient(name string) error {
	tok, err := domain.NormalizeIngredient(name)
	if err != nil {
		p.log.Warn("rejected ingredient %q: %v", name, err)
		return fmt.Errorf("adding %q: %w", name, err)
	}

	if p.session.ID == "" {
		p.session.ID = p.newID()
	}
	p.session.Ingredients = append(p.session.Ingredients, tok)
	p.publish(domain.IngredientAdded{
		SessionID:  p.session.ID,
		Ingredient: tok,
		Count:      len(p.session.Ingredients),
	})
	p.log.Debug("added %s, %d in pot", tok, len(p.session.Ingredients))

	if p.session.State != domain.PotIdle {
		p.log.Debug("already cooking %s, %s not matched", p.session.Recipe.Name, tok)
		return nil
	}

	p.TryMatchRecipe()
	return nil
}

// TryMatchRecipe selects the first recipe whose ingredient multiset equals
// the pot's exactly and starts cooking it. It reports whether a new match
// happened; while already cooking it returns the current recipe and false.
func (p *Pot) TryMatchRecipe() (*domain.Recipe, bool) {
	if p.session.State != domain.PotIdle {
		return p.session.Recipe, false
	}
	if len(p.session.Ingredients) == 0 {
		return nil, false
	}

	have := domain.NewMultiset(p.session.Ingredients)
	for _, e := range p.table {
		if !e.want.Equal(have) {
			continue
		}
		p.start(e.recipe)
		return e.recipe, true
	}
	return nil, false
}

func (p *Pot) start(r *domain.Recipe) {
	p.session.Recipe = r
	p.session.Remaining = r.CookingTime
	p.session.State = domain.PotCooking

	p.publish(domain.CookingStarted{
		SessionID:   p.session.ID,
		RecipeID:    r.ID,
		RecipeName:  r.Name,
		CookingTime: r.CookingTime,
	})
	p.log.Info("cooking %s (%s)", r.Name, r.CookingTime)
}

// ForceClear discards the session, cooking or not.
func (p *Pot) ForceClear() {
	if p.session.ID == "" {
		return
	}
	id := p.session.ID
	p.clear()
	p.publish(domain.PotCleared{SessionID: id, Forced: true})
	p.log.Info("pot cleared by force (session %s)", id)
}

func (p *Pot) clear() {
	p.session = domain.CookingSession{}
}

func (p *Pot) publish(e domain.Event) {
	if p.events != nil {
		p.events.Publish(e)
	}
}

// State returns the pot state.
func (p *Pot) State() domain.PotState { return p.session.State }

// Cooking reports whether a recipe is counting down.
func (p *Pot) Cooking() bool { return p.session.State == domain.PotCooking }

// Ingredients returns a copy of the accumulated ingredients.
func (p *Pot) Ingredients() []string {
	return append([]string(nil), p.session.Ingredients...)
}

// CurrentRecipe returns the matched recipe, or nil.
func (p *Pot) CurrentRecipe() *domain.Recipe { return p.session.Recipe }

// Remaining returns the cooking time left, zero when not cooking.
func (p *Pot) Remaining() time.Duration {
	if !p.Cooking() || p.session.Remaining < 0 {
		return 0
	}
	return p.session.Remaining
}

// Progress returns the cooking progress in [0, 1].
func (p *Pot) Progress() float64 { return p.session.Progress() }

// Session returns a copy of the current session.
func (p *Pot) Session() domain.CookingSession {
	s := p.session
	s.Ingredients = p.Ingredients()
	return s
}

// Recipes returns the recipe table in matching order.
func (p *Pot) Recipes() []*domain.Recipe {
	out := make([]*domain.Recipe, len(p.table))
	for i, e := range p.table {
		out[i] = e.recipe
	}
	return out
}

// Reachable reports whether the pot contents can still become some recipe
// by adding more ingredients.
func (p *Pot) Reachable() bool {
	have := domain.NewMultiset(p.session.Ingredients)
	for _, e := range p.table {
		if have.SubsetOf(e.want) {
			return true
		}
	}
	return false
}
