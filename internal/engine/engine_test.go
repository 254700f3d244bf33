package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/hammamikhairi/ottokitchen/internal/board"
	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/mocks"
	"github.com/hammamikhairi/ottokitchen/internal/score"
	"github.com/hammamikhairi/ottokitchen/internal/serving"
)

type recordingNotifier struct {
	mu     sync.Mutex
	normal []string
	urgent []string
}

func (n *recordingNotifier) Notify(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.normal = append(n.normal, msg)
	return nil
}

func (n *recordingNotifier) NotifyUrgent(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urgent = append(n.urgent, msg)
	return nil
}

func testRecipes() []*domain.Recipe {
	return []*domain.Recipe{
		{
			ID:          "soup",
			Name:        "Soup",
			Ingredients: []string{"potato", "onion"},
			Result:      &domain.DishSpec{ID: "soup", Name: "Soup", Score: 100},
			CookingTime: 5 * time.Second,
		},
		{
			ID:          "mash",
			Name:        "Mash",
			Ingredients: []string{"potato", "potato"},
			Result:      &domain.DishSpec{ID: "mash", Name: "Mash", Score: 50},
			CookingTime: time.Second,
		},
		{
			ID:          "broken",
			Name:        "Broken",
			Ingredients: []string{"turnip"},
			CookingTime: time.Second,
		},
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("dish-%d", n)
	}
}

func setupKitchen(t *testing.T, opts ...Option) (*Engine, *recordingNotifier, *score.Accumulator) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	notifier := &recordingNotifier{}
	acc := score.New(nil, log)
	opts = append([]Option{WithIDFunc(sequentialIDs())}, opts...)
	eng, err := New(testRecipes(), acc, notifier, log, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng, notifier, acc
}

func cookMash(t *testing.T, eng *Engine) string {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := eng.AddIngredient(ctx, "potato"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := eng.Tick(ctx, time.Second); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if ready := eng.ReadyDishes(); len(ready) > 0 {
		return ready[len(ready)-1]
	}
	moving := eng.Snapshot().Moving
	if len(moving) == 0 {
		t.Fatal("expected a finished dish")
	}
	return moving[len(moving)-1].ID
}

func TestFullRound(t *testing.T) {
	eng, _, acc := setupKitchen(t)
	ctx := context.Background()

	for _, name := range []string{"potato", "onion"} {
		v, err := eng.SpawnVegetable(ctx, name)
		if err != nil {
			t.Fatalf("spawn %s: %v", name, err)
		}
		if err := eng.DropIntoPot(ctx, v.ID); !errors.Is(err, domain.ErrNotSliced) {
			t.Fatalf("expected ErrNotSliced for whole %s, got %v", name, err)
		}
		if err := eng.Chop(ctx, v.ID); err != nil {
			t.Fatalf("chop: %v", err)
		}
		if err := eng.Tick(ctx, board.DefaultTimeToSlice); err != nil {
			t.Fatalf("tick: %v", err)
		}
		if err := eng.DropIntoPot(ctx, v.ID); err != nil {
			t.Fatalf("drop %s: %v", name, err)
		}
	}

	snap := eng.Snapshot()
	if snap.PotState != domain.PotCooking || snap.Recipe != "Soup" {
		t.Fatalf("expected Soup cooking, got %s %q", snap.PotState, snap.Recipe)
	}
	if len(snap.Board) != 0 {
		t.Fatalf("expected empty board, got %d", len(snap.Board))
	}

	if err := eng.Tick(ctx, 5*time.Second); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if eng.Snapshot().PotState != domain.PotIdle {
		t.Fatal("expected pot cleared after completion")
	}

	ref, err := eng.ServeNext(ctx)
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	if ref.Index != 0 {
		t.Fatalf("expected slot 0, got %d", ref.Index)
	}

	snap = eng.Snapshot()
	if snap.InFlight != 1 || snap.Free != 4 || snap.Occupied != 0 {
		t.Fatalf("in flight=%d free=%d occupied=%d", snap.InFlight, snap.Free, snap.Occupied)
	}
	if !snap.Slots[0].Reserved {
		t.Fatal("expected slot 0 reserved while the dish travels")
	}

	if err := eng.Tick(ctx, 400*time.Millisecond); err != nil {
		t.Fatalf("tick: %v", err)
	}
	snap = eng.Snapshot()
	if snap.Occupied != 1 || snap.InFlight != 0 {
		t.Fatalf("expected dish committed, occupied=%d in flight=%d", snap.Occupied, snap.InFlight)
	}
	if acc.Total() != 100 || snap.Score != 100 {
		t.Fatalf("expected score 100, got %d", acc.Total())
	}
	d := snap.Slots[0].Dish
	if d == nil || d.Status != domain.DishServed || !d.Interactive {
		t.Fatalf("unexpected dish in slot 0: %+v", d)
	}
	if d.Position != serving.DefaultPositions()[0] {
		t.Fatalf("dish at %s, want %s", d.Position, serving.DefaultPositions()[0])
	}
}

func TestServingAreaFull(t *testing.T) {
	eng, notifier, _ := setupKitchen(t,
		WithServingOptions(serving.WithPositions([]domain.Vec2{{X: 0}})),
	)
	ctx := context.Background()

	first := cookMash(t, eng)
	if _, err := eng.ServeNext(ctx); err != nil {
		t.Fatalf("serve first: %v", err)
	}
	if err := eng.Tick(ctx, time.Second); err != nil {
		t.Fatalf("tick: %v", err)
	}

	second := cookMash(t, eng)
	if _, err := eng.ServeDish(ctx, second); !errors.Is(err, domain.ErrNoFreeSlot) {
		t.Fatalf("expected ErrNoFreeSlot, got %v", err)
	}
	if got := eng.ReadyDishes(); len(got) != 1 || got[0] != second {
		t.Fatalf("expected %s still waiting, got %v", second, got)
	}
	if d, _ := eng.Dish(second); !d.Ready() {
		t.Fatalf("expected %s to stay ready, status %s", second, d.Status)
	}
	if len(notifier.urgent) != 1 {
		t.Fatalf("expected one urgent message, got %v", notifier.urgent)
	}

	if err := eng.RemoveDish(ctx, first); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ref, err := eng.ServeNext(ctx)
	if err != nil {
		t.Fatalf("serve second: %v", err)
	}
	if ref.Index != 0 {
		t.Fatalf("expected freed slot 0, got %d", ref.Index)
	}
}

func TestForceClearInFlightPolicy(t *testing.T) {
	tests := []struct {
		name         string
		cancel       bool
		wantInFlight int
	}{
		{"keeps placements by default", false, 1},
		{"cancels placements when configured", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _, _ := setupKitchen(t, WithCancelInFlightOnClear(tt.cancel))
			ctx := context.Background()

			id := cookMash(t, eng)
			if _, err := eng.ServeDish(ctx, id); err != nil {
				t.Fatalf("serve: %v", err)
			}
			if err := eng.AddIngredient(ctx, "potato"); err != nil {
				t.Fatalf("add: %v", err)
			}
			if err := eng.ForceClear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}

			snap := eng.Snapshot()
			if len(snap.Ingredients) != 0 || snap.PotState != domain.PotIdle {
				t.Fatalf("expected empty pot, got %v %s", snap.Ingredients, snap.PotState)
			}
			if snap.InFlight != tt.wantInFlight {
				t.Fatalf("expected %d in flight, got %d", tt.wantInFlight, snap.InFlight)
			}
			_, known := eng.Dish(id)
			if known != !tt.cancel {
				t.Fatalf("dish known=%v after clear", known)
			}
			if tt.cancel && snap.Free != 5 {
				t.Fatalf("expected reserved slot released, free=%d", snap.Free)
			}
		})
	}
}

func TestForceClearCancelsOnlyLatestSession(t *testing.T) {
	eng, _, _ := setupKitchen(t,
		WithCancelInFlightOnClear(true),
		WithServingOptions(serving.WithMoveSpeed(0.1)),
	)
	ctx := context.Background()

	first := cookMash(t, eng)
	if _, err := eng.ServeDish(ctx, first); err != nil {
		t.Fatalf("serve first: %v", err)
	}
	second := cookMash(t, eng)
	if _, err := eng.ServeDish(ctx, second); err != nil {
		t.Fatalf("serve second: %v", err)
	}
	if n := eng.Snapshot().InFlight; n != 2 {
		t.Fatalf("expected 2 in flight, got %d", n)
	}

	if err := eng.ForceClear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n := eng.Snapshot().InFlight; n != 1 {
		t.Fatalf("expected 1 in flight, got %d", n)
	}
	if _, ok := eng.Dish(first); !ok {
		t.Fatal("older dish should keep travelling")
	}
	if _, ok := eng.Dish(second); ok {
		t.Fatal("latest dish should be cancelled")
	}

	// Nothing left from the latest session.
	if err := eng.ForceClear(ctx); err != nil {
		t.Fatalf("clear again: %v", err)
	}
	if n := eng.Snapshot().InFlight; n != 1 {
		t.Fatalf("expected 1 in flight, got %d", n)
	}
}

func TestDropByName(t *testing.T) {
	eng, notifier, _ := setupKitchen(t)
	ctx := context.Background()

	v, err := eng.SpawnVegetable(ctx, "onion")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if err := eng.DropByName(ctx, "Onion"); !errors.Is(err, domain.ErrNotSliced) {
		t.Fatalf("expected ErrNotSliced for a whole onion, got %v", err)
	}
	if last := notifier.normal[len(notifier.normal)-1]; last != lineNotSliced() {
		t.Fatalf("expected not-sliced hint, got %q", last)
	}
	if err := eng.DropByName(ctx, "leek"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for leek, got %v", err)
	}

	if err := eng.Chop(ctx, v.ID); err != nil {
		t.Fatalf("chop: %v", err)
	}
	if err := eng.Tick(ctx, board.DefaultTimeToSlice); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if err := eng.DropByName(ctx, "onion"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	snap := eng.Snapshot()
	if len(snap.Ingredients) != 1 || snap.Ingredients[0] != "onion" || len(snap.Board) != 0 {
		t.Fatalf("expected onion in the pot, got %v with %d on the board", snap.Ingredients, len(snap.Board))
	}
}

func TestMissingResultNotifies(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	notifier.EXPECT().NotifyUrgent(gomock.Any(), lineMissingResult()).Return(nil).Times(1)

	log := logger.New(logger.LevelOff, nil)
	eng, err := New(testRecipes(), score.New(nil, log), notifier, log)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx := context.Background()

	if err := eng.AddIngredient(ctx, "turnip"); err != nil {
		t.Fatalf("add: %v", err)
	}
	err = eng.Tick(ctx, time.Second)
	if !errors.Is(err, domain.ErrMissingResult) {
		t.Fatalf("expected ErrMissingResult, got %v", err)
	}
	snap := eng.Snapshot()
	if snap.PotState != domain.PotIdle || len(snap.Ready) != 0 {
		t.Fatalf("expected idle pot and no dish, got %s with %d ready", snap.PotState, len(snap.Ready))
	}
}

func TestStirShortensCooking(t *testing.T) {
	eng, _, _ := setupKitchen(t)
	ctx := context.Background()

	if err := eng.Stir(ctx); !errors.Is(err, domain.ErrNotCooking) {
		t.Fatalf("expected ErrNotCooking while idle, got %v", err)
	}

	eng.AddIngredient(ctx, "potato")
	eng.AddIngredient(ctx, "onion")

	eng.MovePot(ctx, domain.Vec2{X: 1})
	if err := eng.Tick(ctx, 2*time.Second); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := eng.Snapshot().Remaining; got != 2*time.Second {
		t.Fatalf("expected 2s remaining after stirred tick, got %v", got)
	}

	// Small drags don't count.
	eng.MovePot(ctx, domain.Vec2{X: 1.2})
	if err := eng.Tick(ctx, time.Second); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := eng.Snapshot().Remaining; got != time.Second {
		t.Fatalf("expected 1s remaining, got %v", got)
	}

	if err := eng.Stir(ctx); err != nil {
		t.Fatalf("stir: %v", err)
	}
	if err := eng.Tick(ctx, 700*time.Millisecond); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(eng.ReadyDishes()) != 1 {
		t.Fatal("expected stir to finish the soup")
	}
}

func TestCuesAndAutoServe(t *testing.T) {
	ctrl := gomock.NewController(t)
	cues := mocks.NewMockCuePlayer(ctrl)
	gomock.InOrder(
		cues.EXPECT().Play(domain.CueAddIngredient),
		cues.EXPECT().Play(domain.CueAddIngredient),
		cues.EXPECT().Play(domain.CueCookingStarted),
		cues.EXPECT().Play(domain.CueDishReady),
		cues.EXPECT().Play(domain.CuePlaceDish),
	)

	var names []string
	sink := domain.EventFunc(func(ev domain.Event) { names = append(names, ev.EventName()) })

	eng, _, acc := setupKitchen(t, WithCues(cues), WithAutoServe(true), WithEventSink(sink))
	ctx := context.Background()

	cookMash(t, eng)
	if snap := eng.Snapshot(); len(snap.Ready) != 0 || len(snap.Moving) != 1 {
		t.Fatalf("expected the dish to leave on its own, ready=%d moving=%d", len(snap.Ready), len(snap.Moving))
	}
	if err := eng.Tick(ctx, time.Second); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if acc.Total() != 50 {
		t.Fatalf("expected 50 points, got %d", acc.Total())
	}

	want := []string{
		"ingredient_added", "ingredient_added", "cooking_started",
		"dish_ready", "pot_cleared", "placement_started",
		"slot_changed", "dish_served",
	}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Fatalf("events = %v\nwant %v", names, want)
	}
}

func TestUnreachableContentsNudge(t *testing.T) {
	eng, notifier, _ := setupKitchen(t)
	ctx := context.Background()

	eng.AddIngredient(ctx, "onion")
	if len(notifier.normal) != 0 {
		t.Fatalf("onion can still become soup, got %v", notifier.normal)
	}
	eng.AddIngredient(ctx, "onion")
	if len(notifier.normal) != 1 {
		t.Fatalf("expected a nudge for two onions, got %v", notifier.normal)
	}
	if !errors.Is(eng.AddIngredient(ctx, "  "), domain.ErrInvalidIngredient) {
		t.Fatal("expected blank ingredient to be rejected")
	}
}

func TestReset(t *testing.T) {
	eng, _, acc := setupKitchen(t, WithAutoServe(true))
	ctx := context.Background()

	cookMash(t, eng)
	eng.Tick(ctx, time.Second)
	eng.SpawnVegetable(ctx, "carrot")
	eng.AddIngredient(ctx, "potato")

	if err := eng.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	snap := eng.Snapshot()
	if acc.Total() != 0 || snap.Occupied != 0 || snap.Free != 5 {
		t.Fatalf("score=%d occupied=%d free=%d", acc.Total(), snap.Occupied, snap.Free)
	}
	if len(snap.Board) != 0 || len(snap.Ingredients) != 0 {
		t.Fatal("expected empty board and pot")
	}
}

func TestRemoveSlot(t *testing.T) {
	eng, _, _ := setupKitchen(t, WithAutoServe(true))
	ctx := context.Background()

	if err := eng.RemoveSlot(ctx, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty slot, got %v", err)
	}
	id := cookMash(t, eng)
	if err := eng.RemoveDish(ctx, id); !errors.Is(err, domain.ErrDishInFlight) {
		t.Fatalf("expected ErrDishInFlight, got %v", err)
	}
	eng.Tick(ctx, time.Second)
	if err := eng.RemoveSlot(ctx, 0); err != nil {
		t.Fatalf("remove slot: %v", err)
	}
	if eng.Snapshot().Occupied != 0 {
		t.Fatal("expected slot freed")
	}
	if err := eng.RemoveSlot(ctx, 9); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for bad index, got %v", err)
	}
}
