// Package score keeps the running score and the persisted best score.
package score

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/storage"
)

// Compile-time interface check.
var _ domain.ScoreSink = (*Accumulator)(nil)

// Accumulator totals served-dish points. AddScore is called from the
// simulation loop; Total may be read from any goroutine.
type Accumulator struct {
	prefs  domain.PrefStore
	log    *logger.Logger
	total  atomic.Int64
	best   atomic.Int64
	served atomic.Int64
}

// New creates an accumulator. prefs may be nil, in which case the best
// score lives only in memory.
func New(prefs domain.PrefStore, log *logger.Logger) *Accumulator {
	return &Accumulator{prefs: prefs, log: log}
}

// Load reads the best score from the preference store.
func (a *Accumulator) Load(ctx context.Context) error {
	if a.prefs == nil {
		return nil
	}
	best, err := a.prefs.GetInt(ctx, storage.KeyBestScore, 0)
	if err != nil {
		return fmt.Errorf("loading best score: %w", err)
	}
	a.best.Store(int64(best))
	return nil
}

// AddScore credits points for a served dish.
func (a *Accumulator) AddScore(points int) {
	total := a.total.Add(int64(points))
	a.served.Add(1)
	a.log.Info("+%d points, total %d", points, total)
}

// Total returns the current round's score.
func (a *Accumulator) Total() int { return int(a.total.Load()) }

// Served returns how many dishes were served this round.
func (a *Accumulator) Served() int { return int(a.served.Load()) }

// Best returns the best score seen, including the current round.
func (a *Accumulator) Best() int {
	best, total := a.best.Load(), a.total.Load()
	if total > best {
		return int(total)
	}
	return int(best)
}

// Commit persists the best score and the round counter. It reports
// whether the current round set a new record.
func (a *Accumulator) Commit(ctx context.Context) (bool, error) {
	total := a.total.Load()
	record := total > a.best.Load()
	if record {
		a.best.Store(total)
	}
	if a.prefs == nil {
		return record, nil
	}

	if record {
		if err := a.prefs.SetInt(ctx, storage.KeyBestScore, int(total)); err != nil {
			return record, fmt.Errorf("saving best score: %w", err)
		}
	}
	rounds, err := a.prefs.GetInt(ctx, storage.KeyRoundsPlayed, 0)
	if err != nil {
		return record, fmt.Errorf("reading rounds: %w", err)
	}
	if err := a.prefs.SetInt(ctx, storage.KeyRoundsPlayed, rounds+1); err != nil {
		return record, fmt.Errorf("saving rounds: %w", err)
	}
	return record, nil
}

// Reset starts a new round.
func (a *Accumulator) Reset() {
	a.total.Store(0)
	a.served.Store(0)
}
