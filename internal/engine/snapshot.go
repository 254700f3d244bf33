package engine

import (
	"sort"
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
)

// Snapshot is an immutable copy of the kitchen, safe to hand to other
// goroutines.
type Snapshot struct {
	Elapsed time.Duration

	PotState    domain.PotState
	Recipe      string // matched recipe name, empty when idle
	Progress    float64
	Remaining   time.Duration
	Ingredients []string
	Reachable   bool
	PotPosition domain.Vec2

	Board  []VegetableView
	Ready  []domain.Dish // waiting at the pot
	Moving []domain.Dish // travelling to a slot
	Slots  []SlotView

	InFlight int
	Free     int
	Occupied int

	Score  int
	Best   int
	Served int

	Message string // last line said to the player
}

// VegetableView is a vegetable on the cutting board.
type VegetableView struct {
	ID       string
	Name     string
	Sliced   bool
	Progress float64 // 0..1
	Chopping bool
}

// SlotView is one serving slot. Dish is nil when the slot is empty.
type SlotView struct {
	Index    int
	Position domain.Vec2
	Dish     *domain.Dish
	Reserved bool // a dish is travelling here
}

// Full reports whether no slot can take another dish.
func (s *Snapshot) Full() bool { return s.Free == 0 }

// Snapshot copies the current kitchen state.
func (e *Engine) Snapshot() *Snapshot {
	sess := e.pot.Session()
	snap := &Snapshot{
		Elapsed:     e.elapsed,
		PotState:    sess.State,
		Progress:    sess.Progress(),
		Remaining:   e.pot.Remaining(),
		Ingredients: sess.Ingredients,
		Reachable:   e.pot.Reachable(),
		PotPosition: e.potPos,
		InFlight:    e.serving.InFlightCount(),
		Free:        e.serving.FreeCount(),
		Occupied:    e.serving.OccupiedCount(),
		Message:     e.lastNote,
	}
	if sess.Recipe != nil {
		snap.Recipe = sess.Recipe.Name
	}
	if e.score != nil {
		snap.Score = e.score.Total()
		snap.Best = e.score.Best()
		snap.Served = e.score.Served()
	}

	slice := float64(e.board.TimeToSlice())
	for _, v := range e.board.List() {
		vv := VegetableView{ID: v.ID, Name: v.Name, Sliced: v.Sliced, Chopping: v.ID == e.chopping}
		if v.Sliced {
			vv.Progress = 1
		} else if slice > 0 {
			vv.Progress = min(float64(v.Progress)/slice, 1)
		}
		snap.Board = append(snap.Board, vv)
	}

	for _, id := range e.ready {
		if d, ok := e.dishes[id]; ok {
			snap.Ready = append(snap.Ready, *d)
		}
	}

	for _, d := range e.dishes {
		if d.Status == domain.DishInFlight {
			snap.Moving = append(snap.Moving, *d)
		}
	}
	sort.Slice(snap.Moving, func(i, j int) bool { return snap.Moving[i].ID < snap.Moving[j].ID })

	for _, s := range e.serving.Slots() {
		sv := SlotView{Index: s.Index, Position: s.Position}
		if s.Dish != nil {
			d := *s.Dish
			sv.Dish = &d
		} else if _, reserved := e.reservedFor(s.Index); reserved {
			sv.Reserved = true
		}
		snap.Slots = append(snap.Slots, sv)
	}
	return snap
}

func (e *Engine) reservedFor(index int) (string, bool) {
	for id, d := range e.dishes {
		if d.Status != domain.DishInFlight {
			continue
		}
		if ref, ok := e.serving.SlotOf(id); ok && ref.Index == index {
			return id, true
		}
	}
	return "", false
}
