package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottokitchen/internal/audio"
	"github.com/hammamikhairi/ottokitchen/internal/conversation"
	"github.com/hammamikhairi/ottokitchen/internal/display"
	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/engine"
	"github.com/hammamikhairi/ottokitchen/internal/timer"
	"github.com/hammamikhairi/ottokitchen/internal/voice"
)

// uiOutput prints through the terminal UI.
type uiOutput struct{ ui *display.UI }

func (o uiOutput) Info(text string)   { o.ui.PrintInfo(text) }
func (o uiOutput) Hint(text string)   { o.ui.PrintHint(text) }
func (o uiOutput) Urgent(text string) { o.ui.PrintUrgent(text) }

func newPlayCmd(g *globals) *cobra.Command {
	var (
		noAudio   bool
		useVoice  bool
		wakeWords []string
		autoServe bool
		clearAll  bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a round in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noAudio {
				g.cfg.Audio = false
			}
			return play(cmd.Context(), g, playOptions{
				voice:     useVoice,
				wakeWords: wakeWords,
				autoServe: autoServe,
				clearAll:  clearAll,
			})
		},
	}
	f := cmd.Flags()
	f.BoolVar(&noAudio, "no-audio", false, "disable sound effects")
	f.BoolVar(&useVoice, "voice", false, "enable voice input via local Whisper STT")
	f.StringSliceVar(&wakeWords, "wake-word", nil, "only act on speech that starts with one of these words")
	f.BoolVar(&autoServe, "auto-serve", false, "send finished dishes to the serving area immediately")
	f.BoolVar(&clearAll, "clear-cancels-moving", false, "clearing the pot also recalls dishes on their way to a slot")
	return cmd
}

type playOptions struct {
	voice     bool
	wakeWords []string
	autoServe bool
	clearAll  bool
}

func play(ctx context.Context, g *globals, opts playOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := g.log
	cfg := g.cfg

	// The notifier is built before the UI exists; nothing is printed
	// until the supervisor starts.
	var ui *display.UI
	notifier := conversation.NewCLINotifier(log.Named("notify"), func(format string, a ...interface{}) {
		ui.Printf(format, a...)
	})

	var cues *audio.Cues
	var cuePlayer domain.CuePlayer = audio.NoOp{}
	if cfg.Audio {
		player, err := audio.NewPlayer(log.Named("audio"))
		if err != nil {
			log.Error("audio player init failed, sound disabled: %v", err)
		} else {
			defer player.Stop()
			cues = audio.NewCues(player, log.Named("cues"))
			cuePlayer = cues
			go cues.Run(ctx)
		}
	}

	k, err := newKitchen(ctx, cfg, notifier, log,
		engine.WithCues(cuePlayer),
		engine.WithAutoServe(opts.autoServe),
		engine.WithCancelInFlightOnClear(opts.clearAll),
	)
	if err != nil {
		return err
	}
	if cues != nil {
		if err := cues.LoadVolume(ctx, k.prefs); err != nil {
			log.Warn("loading volume: %v", err)
		}
	}

	sup := timer.New(k.eng, notifier, log.Named("timer"),
		timer.WithTickInterval(cfg.TickInterval),
		timer.WithWatcher(),
	)
	ui = display.NewUI(sup)

	var ear *voice.Ear
	if opts.voice {
		if _, err := os.Stat(cfg.WhisperModel); err != nil {
			return fmt.Errorf("whisper model not found at %s: %w", cfg.WhisperModel, err)
		}
		ear = voice.NewEar(cfg.WhisperBin, cfg.WhisperModel, log.Named("voice"),
			voice.WithRecordDuration(time.Duration(cfg.RecordSecs)*time.Second),
			voice.WithWakeWords(opts.wakeWords...),
		)
		go ear.Run(ctx)
		log.Info("voice input enabled (bin=%s, model=%s, chunk=%ds)", cfg.WhisperBin, cfg.WhisperModel, cfg.RecordSecs)
	}

	sup.Start(ctx)
	defer sup.Stop()

	a := &app{
		eng:   k.eng,
		score: k.score,
		prefs: k.prefs,
		cues:  cues,
		out:   uiOutput{ui: ui},
		log:   log.Named("app"),
		exec:  sup.Do,
		wait: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
	}

	subtitles := []string{"Type 'help' for commands, 'quit' to exit."}
	if ear != nil {
		subtitles = append([]string{"Voice mode ON. Speak a command, or type one."}, subtitles...)
	}
	fmt.Println(display.RenderBanner(subtitles...))

	inputDone := make(chan struct{})
	go func() {
		defer close(inputDone)
		ready := make(chan struct{})
		go func() {
			ui.WaitReady()
			close(ready)
		}()
		select {
		case <-ready:
		case <-ctx.Done():
			return
		}
		runInput(ctx, a, ui, ear)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	<-inputDone

	// Ctrl+C skips the quit command; save the score anyway.
	if !a.closed {
		a.commitScore(context.Background())
	}
	return nil
}

// runInput reads typed and spoken commands until the player quits.
func runInput(ctx context.Context, a *app, ui *display.UI, ear *voice.Ear) {
	parser := conversation.NewKeywordParser(a.log.Named("parser"))

	ui.PrintChat("Welcome to the kitchen. Here's what's cooking today:")
	if err := a.showRecipes(ctx); err != nil {
		a.log.Error("listing recipes: %v", err)
	}

	// A nil channel never delivers, so the select ignores voice when
	// it is off.
	var voiceCh <-chan string
	if ear != nil {
		voiceCh = ear.C()
	}
	uiCh := ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		case input = <-voiceCh:
			ui.PrintVoice(input)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		intent, err := parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}
		if a.handle(ctx, intent) {
			ui.PrintChat("Kitchen closed. See you next shift.")
			return
		}
	}
}
