// Package voice turns spoken commands into text using a local Whisper
// model. Transcripts feed the same command parser as typed input.
package voice

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithRecordDuration sets how long each recording chunk lasts.
func WithRecordDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.recordDuration = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) { e.tempDir = dir }
}

// WithWakeWords makes the ear ignore anything that does not start with
// one of the given phrases. With no wake words every utterance counts.
func WithWakeWords(words ...string) EarOption {
	return func(e *Ear) { e.wakeWords = words }
}

// Ear records short chunks from the microphone, transcribes them with
// whisper and sends each non-empty command through C.
type Ear struct {
	whisperBin string
	modelPath  string
	tempDir    string
	log        *logger.Logger

	wakeWords      []string
	recordDuration time.Duration

	mu     sync.Mutex
	muted  bool
	textCh chan string
}

// NewEar creates a voice input listener.
//
//   - whisperBin: path to the whisper-cli executable
//   - modelPath:  path to the GGML model file
func NewEar(whisperBin, modelPath string, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:     whisperBin,
		modelPath:      modelPath,
		tempDir:        ".otto-stt",
		log:            log,
		recordDuration: 2 * time.Second,
		textCh:         make(chan string, 8),
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, err := exec.LookPath(e.whisperBin); err != nil {
		log.Error("whisper binary %q not found in PATH: %v", e.whisperBin, err)
	}
	if err := os.MkdirAll(e.tempDir, 0o755); err != nil {
		log.Error("creating %s: %v", e.tempDir, err)
	}
	return e
}

// C returns the channel that receives transcribed commands.
func (e *Ear) C() <-chan string {
	return e.textCh
}

// Mute temporarily disables listening.
func (e *Ear) Mute() {
	e.mu.Lock()
	e.muted = true
	e.mu.Unlock()
	e.log.Debug("muted")
}

// Unmute re-enables listening.
func (e *Ear) Unmute() {
	e.mu.Lock()
	e.muted = false
	e.mu.Unlock()
	e.log.Debug("unmuted")
}

func (e *Ear) isMuted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// Run starts the listening loop. Blocks until ctx is cancelled.
// Call this in a goroutine.
func (e *Ear) Run(ctx context.Context) {
	e.log.Info("started (chunk=%s, wake=%v)", e.recordDuration, e.wakeWords)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("stopped")
			return
		default:
		}

		if e.isMuted() {
			time.Sleep(200 * time.Millisecond)
			continue
		}

		text := e.recordChunk(ctx, e.recordDuration)
		cmd, ok := e.command(text)
		if !ok {
			continue
		}
		e.log.Info("heard command: %q", cmd)

		select {
		case e.textCh <- cmd:
		case <-ctx.Done():
		}
	}
}

// command cleans a transcript and applies the wake word filter.
func (e *Ear) command(text string) (string, bool) {
	text = cleanTranscription(text)
	if text == "" {
		return "", false
	}
	if len(e.wakeWords) == 0 {
		return text, true
	}
	rest, ok := stripWakeWord(text, e.wakeWords)
	if !ok || rest == "" {
		e.log.Debug("ignored %q", text)
		return "", false
	}
	return rest, true
}

// recordChunk does one recording cycle with the given duration and
// returns the transcribed text.
func (e *Ear) recordChunk(ctx context.Context, duration time.Duration) string {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := e.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		e.whisperBin,
		e.modelPath,
		e.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		e.log.Error("transcriber init failed: %v", err)
		time.Sleep(2 * time.Second)
		return ""
	}

	if err := t.Start(); err != nil {
		e.log.Error("recording start failed: %v", err)
		time.Sleep(2 * time.Second)
		return ""
	}

	select {
	case <-time.After(duration):
	case <-ctx.Done():
		t.Stop()
		wg.Wait()
		return ""
	}

	t.Stop()
	wg.Wait()

	return result
}
