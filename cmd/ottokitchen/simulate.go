package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottokitchen/internal/conversation"
	"github.com/hammamikhairi/ottokitchen/internal/engine"
)

// plainOutput prints to a writer without styling.
type plainOutput struct{ w io.Writer }

func (p plainOutput) Info(text string)   { fmt.Fprintln(p.w, text) }
func (p plainOutput) Hint(text string)   { fmt.Fprintln(p.w, "  "+text) }
func (p plainOutput) Urgent(text string) { fmt.Fprintln(p.w, "! "+text) }

func newSimulateCmd(g *globals) *cobra.Command {
	var (
		script    string
		step      time.Duration
		autoServe bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a command script against the kitchen without a terminal UI",
		Long: `Simulate reads one command per line from --script (or stdin) and ` +
			`runs it against a fresh kitchen. Time only passes on "wait <duration>" ` +
			`lines, in fixed steps. Lines starting with # are comments.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if script != "" && script != "-" {
				f, err := os.Open(script)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runSimulation(cmd.Context(), g, in, cmd.OutOrStdout(), step, autoServe)
		},
	}
	cmd.Flags().StringVarP(&script, "script", "s", "", "command script (default: stdin)")
	cmd.Flags().DurationVar(&step, "step", 50*time.Millisecond, "simulated time per tick")
	cmd.Flags().BoolVar(&autoServe, "auto-serve", false, "send finished dishes to the serving area immediately")
	return cmd
}

// runSimulation drives the engine from a script on the calling goroutine.
func runSimulation(ctx context.Context, g *globals, in io.Reader, out io.Writer, step time.Duration, autoServe bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if step <= 0 {
		return fmt.Errorf("step must be positive, got %s", step)
	}

	notifier := conversation.NewCLINotifier(g.log.Named("notify"), func(format string, a ...interface{}) {
		fmt.Fprintf(out, format+"\n", a...)
	}, conversation.WithPlainText())

	k, err := newKitchen(ctx, g.cfg, notifier, g.log, engine.WithAutoServe(autoServe))
	if err != nil {
		return err
	}

	a := &app{
		eng:   k.eng,
		score: k.score,
		prefs: k.prefs,
		out:   plainOutput{w: out},
		log:   g.log.Named("app"),
		exec: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
		wait: func(ctx context.Context, d time.Duration) error {
			for d > 0 {
				dt := min(step, d)
				if err := k.eng.Tick(ctx, dt); err != nil {
					g.log.Warn("tick: %v", err)
				}
				d -= dt
			}
			return nil
		},
	}

	parser := conversation.NewKeywordParser(g.log.Named("parser"))
	scanner := bufio.NewScanner(in)
	quit := false
	for !quit && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fmt.Fprintf(out, "> %s\n", line)

		intent, err := parser.Parse(ctx, line)
		if err != nil {
			g.log.Error("parsing input: %v", err)
			continue
		}
		quit = a.handle(ctx, intent)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	if !a.closed {
		a.commitScore(ctx)
	}
	fmt.Fprintln(out, "--")
	for _, line := range statusLines(k.eng.Snapshot()) {
		fmt.Fprintln(out, line)
	}
	return nil
}
