package domain

// DishStatus tracks a dish from the pot to the serving area.
type DishStatus int

const (
	DishReady DishStatus = iota
	DishInFlight
	DishServed
	DishCancelled
)

// String returns a human-readable dish status.
func (s DishStatus) String() string {
	switch s {
	case DishReady:
		return "ready"
	case DishInFlight:
		return "in-flight"
	case DishServed:
		return "served"
	case DishCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Dish is a finished recipe output. The serving allocator is its only
// mutator once placement starts.
type Dish struct {
	ID          string
	ResultID    string
	Name        string
	Score       int
	SessionID   string // cooking session that produced it
	Position    Vec2
	Status      DishStatus
	Interactive bool // click and drag affordances
}

// Ready reports whether the player can click the dish to serve it.
func (d *Dish) Ready() bool {
	return d.Status == DishReady && d.Interactive
}
