package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrNoFreeSlot        = errors.New("no free serving slot")
	ErrMissingResult     = errors.New("recipe has no result dish configured")
	ErrInvalidIngredient = errors.New("invalid ingredient name")
	ErrInvalidRecipe     = errors.New("invalid recipe")
	ErrNotCooking        = errors.New("pot is not cooking")
	ErrDishInFlight      = errors.New("dish is still moving to its slot")
	ErrDishNotReady      = errors.New("dish is not ready to serve")
	ErrNotSliced         = errors.New("vegetable is not sliced yet")
)
