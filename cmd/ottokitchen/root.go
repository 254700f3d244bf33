package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/hammamikhairi/ottokitchen/internal/config"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// globals holds what the root command resolves before any subcommand runs.
type globals struct {
	envFile string
	verbose bool
	quiet   bool
	logFile string
	recipes string
	db      string

	cfg config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "ottokitchen",
		Short: "A tiny kitchen: chop, cook and serve.",
		Long: `Ottokitchen simulates a kitchen station. Vegetables are chopped on ` +
			`the board and dropped into the pot; a matching recipe cooks ` +
			`into a dish that is carried to a free serving slot.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&g.envFile, "env", ".env", "dotenv file with OTTOKITCHEN_* settings")
	f.BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose/debug logging")
	f.BoolVarP(&g.quiet, "quiet", "q", false, "disable all logging")
	f.StringVar(&g.logFile, "log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	f.StringVar(&g.recipes, "recipes", "", "JSON recipe table (default: built-in recipes)")
	f.StringVar(&g.db, "db", "", "SQLite preferences file (empty string keeps them in memory)")

	root.AddCommand(
		newPlayCmd(g),
		newSimulateCmd(g),
		newRecipesCmd(g),
		newPrefsCmd(g),
	)
	return root
}

// setup loads the configuration, applies explicit flags on top and opens
// the log output.
func (g *globals) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(g.envFile)
	if err != nil {
		// Bad values fall back to defaults; report them and carry on.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-file") {
		cfg.LogFile = g.logFile
	}
	if flags.Changed("recipes") {
		cfg.RecipesFile = g.recipes
	}
	if flags.Changed("db") {
		cfg.DBPath = g.db
	}
	if g.verbose {
		cfg.LogLevel = logger.LevelVerbose
	}
	if g.quiet {
		cfg.LogLevel = logger.LevelOff
	}
	g.cfg = cfg

	logOut := openLogOutput(cfg.LogFile)

	// Third-party libraries log through the standard package.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	g.log = logger.New(cfg.LogLevel, logOut)
	g.log.Debug("config: tick=%s slots=%d recipes=%q db=%q", cfg.TickInterval, len(cfg.Slots), cfg.RecipesFile, cfg.DBPath)
	return nil
}

// openLogOutput keeps logs in a file so the terminal stays clean. It
// falls back to stderr when the file cannot be opened.
func openLogOutput(path string) io.Writer {
	if path == "" || path == "stderr" {
		return os.Stderr
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not create %s: %v (logging to stderr)\n", dir, err)
			return os.Stderr
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (logging to stderr)\n", path, err)
		return os.Stderr
	}
	atexit.Register(func() { f.Close() })
	return f
}
