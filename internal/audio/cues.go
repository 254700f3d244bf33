package audio

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/storage"
)

// Compile-time interface checks.
var (
	_ domain.CuePlayer = (*Cues)(nil)
	_ domain.CuePlayer = NoOp{}
)

// Sink plays raw PCM. *Player satisfies it.
type Sink interface {
	PlayPCM(pcm []byte) error
}

// CuesOption configures the cue player.
type CuesOption func(*Cues)

// WithQueueSize sets how many cues may wait for playback before new ones
// are dropped.
func WithQueueSize(n int) CuesOption {
	return func(c *Cues) {
		c.queue = make(chan domain.Cue, n)
	}
}

// Cues turns gameplay cues into sounds. Play never blocks: cues are
// queued for a background goroutine and dropped when it falls behind.
type Cues struct {
	sink   Sink
	log    *logger.Logger
	queue  chan domain.Cue
	volume atomic.Uint64 // float64 bits
}

// NewCues creates a cue player at the default effects volume.
func NewCues(sink Sink, log *logger.Logger, opts ...CuesOption) *Cues {
	c := &Cues{
		sink:  sink,
		log:   log,
		queue: make(chan domain.Cue, 8),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetVolume(storage.DefaultVolume)
	return c
}

// LoadVolume reads the effects volume from the preference store.
func (c *Cues) LoadVolume(ctx context.Context, prefs domain.PrefStore) error {
	v, err := prefs.GetFloat(ctx, storage.KeyEffectsVolume, storage.DefaultVolume)
	if err != nil {
		return err
	}
	c.SetVolume(v)
	return nil
}

// SetVolume sets the effects volume, clamped to [0, 1].
func (c *Cues) SetVolume(v float64) {
	v = max(0, min(v, 1))
	c.volume.Store(math.Float64bits(v))
}

// Volume returns the effects volume.
func (c *Cues) Volume() float64 {
	return math.Float64frombits(c.volume.Load())
}

// Play queues a cue.
func (c *Cues) Play(cue domain.Cue) {
	select {
	case c.queue <- cue:
	default:
		c.log.Debug("cue %s dropped, queue full", cue)
	}
}

// Run plays queued cues until ctx is cancelled.
func (c *Cues) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cue := <-c.queue:
			vol := c.Volume()
			if vol == 0 {
				continue
			}
			if err := c.sink.PlayPCM(Synthesize(cue, vol, SampleRate)); err != nil {
				c.log.Warn("playing cue %s: %v", cue, err)
			}
		}
	}
}

// NoOp discards every cue. Used when audio is disabled or unavailable.
type NoOp struct{}

// Play does nothing.
func (NoOp) Play(domain.Cue) {}
