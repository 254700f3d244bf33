package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
)

// note is one tone in a cue.
type note struct {
	freq float64 // Hz, 0 is a rest
	dur  time.Duration
}

// cueNotes gives each gameplay moment its own short jingle.
var cueNotes = map[domain.Cue][]note{
	domain.CueAddIngredient:  {{660, 60 * time.Millisecond}},
	domain.CueCookingStarted: {{440, 90 * time.Millisecond}, {554, 90 * time.Millisecond}, {659, 120 * time.Millisecond}},
	domain.CueDishReady:      {{784, 100 * time.Millisecond}, {0, 40 * time.Millisecond}, {1046, 160 * time.Millisecond}},
	domain.CuePlaceDish:      {{523, 70 * time.Millisecond}, {392, 90 * time.Millisecond}},
	domain.CueError:          {{196, 180 * time.Millisecond}},
}

const (
	// fade is the attack/release ramp on every note, long enough to avoid clicks.
	fade = 5 * time.Millisecond
	// headroom keeps full volume clear of clipping.
	headroom = 0.8
)

// CueStream returns the cue's notes in sequence at the given volume in
// [0, 1]. Unknown cues are silent and empty.
func CueStream(c domain.Cue, volume float64, sr beep.SampleRate) beep.Streamer {
	notes := cueNotes[c]
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		parts = append(parts, tone(n.freq, n.dur, sr))
	}
	return withVolume(beep.Seq(parts...), volume)
}

// Synthesize renders a cue as 16-bit little-endian mono PCM.
func Synthesize(c domain.Cue, volume float64, sampleRate int) []byte {
	sr := beep.SampleRate(sampleRate)
	return Render(CueStream(c, volume, sr), sr)
}

// Tone renders a single sine note. A zero frequency renders silence.
func Tone(freq float64, d time.Duration, volume float64, sampleRate int) []byte {
	sr := beep.SampleRate(sampleRate)
	return Render(withVolume(tone(freq, d, sr), volume), sr)
}

// Render drains a finite stream into 16-bit little-endian mono PCM, the
// format Player is opened with.
func Render(s beep.Streamer, sr beep.SampleRate) []byte {
	format := beep.Format{SampleRate: sr, NumChannels: ChannelCount, Precision: 2}
	frame := make([]byte, format.Width())
	buf := make([][2]float64, 512)

	var out []byte
	for {
		n, ok := s.Stream(buf)
		for _, sample := range buf[:n] {
			format.EncodeSigned(frame, sample)
			out = append(out, frame...)
		}
		if !ok || n == 0 {
			return out
		}
	}
}

func tone(freq float64, d time.Duration, sr beep.SampleRate) beep.Streamer {
	n := sr.N(d)
	if freq <= 0 {
		return beep.Silence(n)
	}
	return &fader{
		streamer: beep.Take(n, &sine{freq: freq, rate: sr}),
		total:    n,
		ramp:     sr.N(fade),
	}
}

// withVolume scales a stream linearly. Zero volume is silent, since
// effects.Volume works in log space.
func withVolume(s beep.Streamer, volume float64) beep.Streamer {
	volume = max(0, min(volume, 1)) * headroom
	if volume == 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(volume)}
}

// sine is an endless sine generator; wrap it in beep.Take.
type sine struct {
	freq  float64
	rate  beep.SampleRate
	phase float64
}

func (g *sine) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * g.phase)
		samples[i][0], samples[i][1] = v, v
		g.phase += g.freq / float64(g.rate)
		g.phase -= math.Floor(g.phase)
	}
	return len(samples), true
}

func (g *sine) Err() error { return nil }

// fader ramps a note of total samples in and out.
type fader struct {
	streamer beep.Streamer
	pos      int
	total    int
	ramp     int
}

func (f *fader) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.streamer.Stream(samples)
	for i := range samples[:n] {
		gain := 1.0
		switch {
		case f.pos < f.ramp:
			gain = float64(f.pos) / float64(f.ramp)
		case f.total-f.pos < f.ramp:
			gain = float64(f.total-f.pos) / float64(f.ramp)
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		f.pos++
	}
	return n, ok
}

func (f *fader) Err() error { return f.streamer.Err() }
