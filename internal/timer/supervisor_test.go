package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/engine"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/score"
)

// mockNotifier collects notifications for testing.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgent = append(m.urgent, msg)
	return nil
}

func (m *mockNotifier) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages), len(m.urgent)
}

// fakeKitchen records the time it was advanced by. Only the loop
// goroutine touches it, tests read it through Do.
type fakeKitchen struct {
	ticks   int
	elapsed time.Duration
	last    time.Duration
	err     error
}

func (k *fakeKitchen) Tick(_ context.Context, dt time.Duration) error {
	k.ticks++
	k.elapsed += dt
	k.last = dt
	return k.err
}

func (k *fakeKitchen) Snapshot() *engine.Snapshot {
	return &engine.Snapshot{Elapsed: k.elapsed}
}

func TestSupervisorTicksAndRunsCommands(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	kitchen := &fakeKitchen{}
	sup := New(kitchen, &mockNotifier{}, log, WithTickInterval(5*time.Millisecond))
	ctx := context.Background()

	if err := sup.Do(ctx, func(context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped before start, got %v", err)
	}

	sup.Start(ctx)
	time.Sleep(60 * time.Millisecond)

	var ticks int
	if err := sup.Do(ctx, func(context.Context) error {
		ticks = kitchen.ticks
		return nil
	}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if ticks == 0 {
		t.Fatal("expected the kitchen to tick")
	}

	boom := errors.New("boom")
	if err := sup.Do(ctx, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected command error, got %v", err)
	}

	sup.Stop()
	if sup.Snapshot().Elapsed == 0 {
		t.Fatal("expected a published snapshot with elapsed time")
	}
	if err := sup.Do(ctx, func(context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after stop, got %v", err)
	}
}

func TestSupervisorCapsStep(t *testing.T) {
	kitchen := &fakeKitchen{err: errors.New("ignored")}
	var updates int
	sup := New(kitchen, &mockNotifier{}, logger.New(logger.LevelOff, nil),
		WithMaxStep(100*time.Millisecond),
		WithOnUpdate(func(*engine.Snapshot) { updates++ }),
	)

	sup.step(context.Background(), 3*time.Second)
	if kitchen.last != 100*time.Millisecond {
		t.Fatalf("expected capped step, got %v", kitchen.last)
	}
	if updates != 1 {
		t.Fatalf("expected one update, got %d", updates)
	}
	if sup.Snapshot().Elapsed != 100*time.Millisecond {
		t.Fatalf("snapshot not republished after step")
	}
}

func TestSupervisorCooksAndServes(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	notifier := &mockNotifier{}
	acc := score.New(nil, log)
	recipes := []*domain.Recipe{{
		ID:          "mash",
		Name:        "Mash",
		Ingredients: []string{"potato", "potato"},
		Result:      &domain.DishSpec{ID: "mash", Name: "Mash", Score: 50},
		CookingTime: 200 * time.Millisecond,
	}}
	eng, err := engine.New(recipes, acc, notifier, log, engine.WithAutoServe(true))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	sup := New(eng, notifier, log, WithTickInterval(5*time.Millisecond))
	ctx := context.Background()
	sup.Start(ctx)
	defer sup.Stop()

	for i := 0; i < 2; i++ {
		if err := sup.Do(ctx, func(ctx context.Context) error {
			return eng.AddIngredient(ctx, "potato")
		}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if st := sup.Snapshot().PotState; st != domain.PotCooking {
		t.Fatalf("expected cooking right after the command, got %s", st)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sup.Snapshot().Score == 0 {
		if time.Now().After(deadline) {
			t.Fatal("dish never served")
		}
		time.Sleep(5 * time.Millisecond)
	}

	snap := sup.Snapshot()
	if snap.Occupied != 1 || snap.Score != 50 {
		t.Fatalf("occupied=%d score=%d", snap.Occupied, snap.Score)
	}
	if normal, _ := notifier.counts(); normal == 0 {
		t.Fatal("expected cooking messages")
	}
}

func TestDoHonoursContext(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	sup := New(&fakeKitchen{}, &mockNotifier{}, log, WithTickInterval(time.Hour))
	sup.Start(context.Background())
	defer sup.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	go sup.Do(context.Background(), func(context.Context) error {
		<-release
		return nil
	})

	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := sup.Do(ctx, func(context.Context) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	close(release)
}
