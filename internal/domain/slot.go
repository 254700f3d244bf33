package domain

// Slot is one fixed serving position. Occupancy is derived from Dish so
// the flag and the reference cannot disagree.
type Slot struct {
	Index    int
	Position Vec2
	Dish     *Dish
}

// Occupied reports whether a dish sits in the slot.
func (s Slot) Occupied() bool { return s.Dish != nil }

// SlotRef identifies a slot returned by a successful placement.
type SlotRef struct {
	Index    int
	Position Vec2
}
