// Package recipe provides recipe source implementations.
package recipe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeSource = (*MemorySource)(nil)

// MemorySource holds recipes in memory, in the order they were added.
// Order matters: the pot starts the first recipe that matches.
// Safe for concurrent reads.
type MemorySource struct {
	mu    sync.RWMutex
	order []*domain.Recipe
	byID  map[string]*domain.Recipe
	log   *logger.Logger
}

// NewMemorySource creates a recipe source preloaded with built-in recipes.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := NewEmptySource(log)
	src.seed()
	return src
}

// NewEmptySource creates a recipe source with no recipes.
func NewEmptySource(log *logger.Logger) *MemorySource {
	return &MemorySource{
		byID: make(map[string]*domain.Recipe),
		log:  log,
	}
}

// List returns all recipes in table order.
func (s *MemorySource) List(ctx context.Context) ([]*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all recipes, count=%d", len(s.order))

	out := make([]*domain.Recipe, len(s.order))
	copy(out, s.order)
	return out, nil
}

// Get returns a recipe by ID.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

// Add appends a recipe to the table. Ingredient names are normalized on
// the way in. Adding an existing ID replaces the recipe in place and keeps
// its position.
func (s *MemorySource) Add(r *domain.Recipe) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r, err := r.Normalized()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[r.ID]; ok {
		for i, existing := range s.order {
			if existing.ID == r.ID {
				s.order[i] = r
				break
			}
		}
		s.byID[r.ID] = r
		s.log.Info("recipe replaced: %s", r.Name)
		return nil
	}
	s.order = append(s.order, r)
	s.byID[r.ID] = r
	return nil
}

// Len returns the number of recipes.
func (s *MemorySource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// seed populates the source with built-in recipes.
func (s *MemorySource) seed() {
	for _, r := range builtins() {
		if err := s.Add(r); err != nil {
			s.log.Error("built-in recipe %s rejected: %v", r.ID, err)
		}
	}
	s.log.Debug("seeded %d recipes", len(s.order))
}

func builtins() []*domain.Recipe {
	return []*domain.Recipe{
		{
			ID:          "potato-onion-soup",
			Name:        "Potato Soup",
			Ingredients: []string{"potato", "onion"},
			Result:      &domain.DishSpec{ID: "soup", Name: "Potato Soup", Score: 100},
			CookingTime: 5 * time.Second,
		},
		{
			ID:          "tomato-soup",
			Name:        "Tomato Soup",
			Ingredients: []string{"tomato", "tomato", "onion"},
			Result:      &domain.DishSpec{ID: "tomato-soup", Name: "Tomato Soup", Score: 150},
			CookingTime: 6 * time.Second,
		},
		{
			ID:          "garden-stew",
			Name:        "Garden Stew",
			Ingredients: []string{"potato", "carrot", "onion", "tomato"},
			Result:      &domain.DishSpec{ID: "stew", Name: "Garden Stew", Score: 250},
			CookingTime: 8 * time.Second,
		},
		{
			ID:          "mash",
			Name:        "Mashed Potatoes",
			Ingredients: []string{"potato", "potato"},
			Result:      &domain.DishSpec{ID: "mash", Name: "Mashed Potatoes"},
			CookingTime: 4 * time.Second,
		},
	}
}
