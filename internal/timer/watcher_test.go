package timer

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/engine"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

type staticSource struct {
	snap atomic.Pointer[engine.Snapshot]
}

func (s *staticSource) Snapshot() *engine.Snapshot { return s.snap.Load() }

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name       string
		snap       engine.Snapshot
		wantSubstr string
		wantUrgent bool
	}{
		{
			name:       "full with dishes waiting",
			snap:       engine.Snapshot{Ready: []domain.Dish{{Name: "Soup"}, {Name: "Mash"}}, Free: 0},
			wantSubstr: "Soup and Mash waiting",
			wantUrgent: true,
		},
		{
			name:       "full but nothing waiting",
			snap:       engine.Snapshot{Free: 0, Reachable: true},
			wantSubstr: "",
		},
		{
			name:       "unreachable pot",
			snap:       engine.Snapshot{PotState: domain.PotIdle, Ingredients: []string{"onion", "onion"}, Free: 5},
			wantSubstr: "onion and onion",
		},
		{
			name:       "reachable pot",
			snap:       engine.Snapshot{PotState: domain.PotIdle, Ingredients: []string{"onion"}, Reachable: true, Free: 5},
			wantSubstr: "",
		},
		{
			name: "sliced vegetables idle",
			snap: engine.Snapshot{
				Reachable: true,
				Free:      5,
				Board:     []engine.VegetableView{{Name: "potato", Sliced: true}, {Name: "carrot"}},
			},
			wantSubstr: "Sliced potato",
		},
		{
			name: "sliced vegetables while cooking",
			snap: engine.Snapshot{
				PotState:  domain.PotCooking,
				Reachable: true,
				Free:      5,
				Board:     []engine.VegetableView{{Name: "potato", Sliced: true}},
			},
			wantSubstr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, urgent := buildMessage(&tt.snap)
			if tt.wantSubstr == "" {
				if msg != "" {
					t.Fatalf("expected silence, got %q", msg)
				}
				return
			}
			if !strings.Contains(msg, tt.wantSubstr) {
				t.Fatalf("message %q does not contain %q", msg, tt.wantSubstr)
			}
			if urgent != tt.wantUrgent {
				t.Fatalf("urgent = %v, want %v", urgent, tt.wantUrgent)
			}
		})
	}
}

func TestWatcherDoesNotRepeatItself(t *testing.T) {
	src := &staticSource{}
	src.snap.Store(&engine.Snapshot{Ready: []domain.Dish{{Name: "Soup"}}})
	notifier := &mockNotifier{}
	w := NewWatcher(src, notifier, logger.New(logger.LevelOff, nil), WithRepeatAfter(time.Minute))
	ctx := context.Background()
	now := time.Now()

	w.check(ctx, now)
	w.check(ctx, now.Add(time.Second))
	if _, urgent := notifier.counts(); urgent != 1 {
		t.Fatalf("expected one urgent nudge, got %d", urgent)
	}

	w.check(ctx, now.Add(2*time.Minute))
	if _, urgent := notifier.counts(); urgent != 2 {
		t.Fatalf("expected the nudge to repeat after a minute, got %d", urgent)
	}

	// A calm kitchen resets the memory.
	src.snap.Store(&engine.Snapshot{Free: 5, Reachable: true})
	w.check(ctx, now.Add(2*time.Minute+time.Second))
	src.snap.Store(&engine.Snapshot{Ready: []domain.Dish{{Name: "Soup"}}})
	w.check(ctx, now.Add(2*time.Minute+2*time.Second))
	if _, urgent := notifier.counts(); urgent != 3 {
		t.Fatalf("expected a fresh nudge, got %d", urgent)
	}
}

func TestWatcherRun(t *testing.T) {
	src := &staticSource{}
	src.snap.Store(&engine.Snapshot{PotState: domain.PotIdle, Ingredients: []string{"shoe"}, Free: 5})
	notifier := &mockNotifier{}
	w := NewWatcher(src, notifier, logger.New(logger.LevelOff, nil), WithWatchInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	time.Sleep(80 * time.Millisecond)
	cancel()

	if normal, _ := notifier.counts(); normal != 1 {
		t.Fatalf("expected exactly one nudge, got %d", normal)
	}
}

func TestJoinNames(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a and b"},
		{[]string{"a", "b", "c"}, "a, b and c"},
	}
	for _, tt := range tests {
		if got := joinNames(tt.in); got != tt.want {
			t.Fatalf("joinNames(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
