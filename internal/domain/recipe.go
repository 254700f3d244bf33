// Package domain defines the core types and interfaces for the kitchen simulation.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"fmt"
	"time"
)

// DefaultDishScore is awarded for a served dish when the recipe does not say otherwise.
const DefaultDishScore = 100

// DefaultCookingTime is used when a recipe is configured without a duration.
const DefaultCookingTime = 5 * time.Second

// Recipe is an immutable recipe definition. Recipes are loaded once and
// shared read-only between cooking sessions.
type Recipe struct {
	ID          string
	Name        string
	Ingredients []string // unordered multiset, normalized names
	Result      *DishSpec
	CookingTime time.Duration
}

// DishSpec describes the dish a recipe produces. A nil spec on a recipe
// means the result was never configured.
type DishSpec struct {
	ID    string
	Name  string
	Score int
}

// Validate checks that a recipe can take part in matching. A missing
// Result is allowed here: it is only reported when cooking completes.
func (r *Recipe) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecipe)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("%w: %s has no ingredients", ErrInvalidRecipe, r.ID)
	}
	for _, ing := range r.Ingredients {
		if ing == "" {
			return fmt.Errorf("%w: %s has an empty ingredient", ErrInvalidRecipe, r.ID)
		}
	}
	if r.CookingTime < 0 {
		return fmt.Errorf("%w: %s has negative cooking time", ErrInvalidRecipe, r.ID)
	}
	return nil
}

// Normalized returns a copy of r whose ingredients are normalized the way
// the pot normalizes additions, so "Potato(Clone)" in a table still
// matches a dropped potato.
func (r *Recipe) Normalized() (*Recipe, error) {
	out := *r
	out.Ingredients = make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		name, err := NormalizeIngredient(ing)
		if err != nil {
			return nil, fmt.Errorf("%w: %s has ingredient %q: %w", ErrInvalidRecipe, r.ID, ing, err)
		}
		out.Ingredients[i] = name
	}
	return &out, nil
}

// ResultName returns the dish name, falling back to the recipe name.
func (r *Recipe) ResultName() string {
	if r.Result != nil && r.Result.Name != "" {
		return r.Result.Name
	}
	return r.Name
}
