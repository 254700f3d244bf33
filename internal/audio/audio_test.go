package audio

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/storage"
)

type recordingSink struct {
	mu    sync.Mutex
	clips [][]byte
}

func (s *recordingSink) PlayPCM(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips = append(s.clips, pcm)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

func peak(pcm []byte) int {
	best := 0
	for i := 0; i+1 < len(pcm); i += 2 {
		v := int(int16(binary.LittleEndian.Uint16(pcm[i:])))
		if v < 0 {
			v = -v
		}
		best = max(best, v)
	}
	return best
}

func TestToneLengthAndSilence(t *testing.T) {
	pcm := Tone(440, 100*time.Millisecond, 1, 8000)
	assert.Len(t, pcm, 800*2)
	assert.Greater(t, peak(pcm), 20000)

	rest := Tone(0, 50*time.Millisecond, 1, 8000)
	assert.Len(t, rest, 400*2)
	assert.Zero(t, peak(rest))
}

func TestSynthesizeScalesWithVolume(t *testing.T) {
	for cue := range cueNotes {
		loud := Synthesize(cue, 1, 8000)
		quiet := Synthesize(cue, 0.25, 8000)
		require.NotEmpty(t, loud, "cue %s", cue)
		assert.Len(t, quiet, len(loud))
		assert.Less(t, peak(quiet), peak(loud), "cue %s", cue)
		assert.Zero(t, peak(Synthesize(cue, 0, 8000)))
	}
}

func TestCueStreamSequencesNotes(t *testing.T) {
	sr := beep.SampleRate(8000)
	for cue, notes := range cueNotes {
		want := 0
		for _, n := range notes {
			want += sr.N(n.dur)
		}
		assert.Len(t, Render(CueStream(cue, 1, sr), sr), want*2, "cue %s", cue)
	}
	assert.Empty(t, Render(CueStream(domain.Cue(99), 1, sr), sr))
}

func TestCuesVolume(t *testing.T) {
	ctx := context.Background()
	log := logger.New(logger.LevelOff, nil)
	c := NewCues(&recordingSink{}, log)
	assert.Equal(t, storage.DefaultVolume, c.Volume())

	c.SetVolume(3)
	assert.Equal(t, 1.0, c.Volume())

	prefs := storage.NewMemoryStore(log)
	require.NoError(t, prefs.SetFloat(ctx, storage.KeyEffectsVolume, 0.2))
	require.NoError(t, c.LoadVolume(ctx, prefs))
	assert.Equal(t, 0.2, c.Volume())
}

func TestCuesPlayInBackground(t *testing.T) {
	sink := &recordingSink{}
	c := NewCues(sink, logger.New(logger.LevelOff, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.Play(domain.CueDishReady)
	c.Play(domain.CuePlaceDish)
	assert.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)

	c.SetVolume(0)
	c.Play(domain.CueError)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, sink.count(), "muted cues are skipped")
}

func TestCuesDropWhenFull(t *testing.T) {
	c := NewCues(&recordingSink{}, logger.New(logger.LevelOff, nil), WithQueueSize(1))
	done := make(chan struct{})
	go func() {
		c.Play(domain.CueAddIngredient)
		c.Play(domain.CueAddIngredient)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Play blocked with a full queue")
	}
	assert.Len(t, c.queue, 1)

	NoOp{}.Play(domain.CueError)
}
