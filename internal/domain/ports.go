package domain

import "context"

//go:generate mockgen -destination ../mocks/mock_domain.go -package mocks github.com/hammamikhairi/ottokitchen/internal/domain RecipeSource,Notifier,ScoreSink,CuePlayer

// RecipeSource provides the recipe table. List returns recipes in their
// configured order, which is also the matching order.
type RecipeSource interface {
	List(ctx context.Context) ([]*Recipe, error)
	Get(ctx context.Context, id string) (*Recipe, error)
}

// PrefStore is a flat key-value preference store. Getters return the
// fallback when the key is absent.
type PrefStore interface {
	GetFloat(ctx context.Context, key string, fallback float64) (float64, error)
	SetFloat(ctx context.Context, key string, v float64) error
	GetInt(ctx context.Context, key string, fallback int) (int, error)
	SetInt(ctx context.Context, key string, v int) error
	GetString(ctx context.Context, key, fallback string) (string, error)
	SetString(ctx context.Context, key, v string) error
	HasKey(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// IntentParser converts raw player input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}

// Notifier delivers messages to the player.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// ScoreSink is the external score accumulator credited when a dish is served.
type ScoreSink interface {
	AddScore(points int)
}

// Cue is a short sound effect tied to a gameplay moment.
type Cue int

const (
	CueAddIngredient Cue = iota
	CueCookingStarted
	CueDishReady
	CuePlaceDish
	CueError
)

// String returns the cue name.
func (c Cue) String() string {
	switch c {
	case CueAddIngredient:
		return "add"
	case CueCookingStarted:
		return "cooking"
	case CueDishReady:
		return "ready"
	case CuePlaceDish:
		return "place"
	case CueError:
		return "error"
	default:
		return "unknown"
	}
}

// CuePlayer plays sound effects. Play must not block the caller.
type CuePlayer interface {
	Play(cue Cue)
}
