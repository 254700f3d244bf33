// Package config collects runtime settings from a .env file and
// OTTOKITCHEN_* environment variables. Command-line flags are applied on
// top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/ottokitchen/internal/board"
	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/pot"
	"github.com/hammamikhairi/ottokitchen/internal/serving"
)

// Prefix is prepended to every environment variable name.
const Prefix = "OTTOKITCHEN_"

// Environment variable names, without the prefix.
const (
	EnvTickInterval  = "TICK_INTERVAL"
	EnvStirThreshold = "STIR_THRESHOLD"
	EnvMoveSpeed     = "MOVE_SPEED"
	EnvSlots         = "SLOTS"
	EnvTimeToSlice   = "TIME_TO_SLICE"
	EnvRecipes       = "RECIPES"
	EnvDB            = "DB"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFile       = "LOG_FILE"
	EnvAudio         = "AUDIO"
	EnvWhisperBin    = "WHISPER_BIN"
	EnvWhisperModel  = "WHISPER_MODEL"
	EnvRecordSecs    = "RECORD_SECS"
)

// Config holds every tunable of a kitchen run.
type Config struct {
	TickInterval  time.Duration
	StirThreshold float64
	MoveSpeed     float64
	Slots         []domain.Vec2
	TimeToSlice   time.Duration

	RecipesFile string // empty means the built-in table
	DBPath      string // empty means in-memory preferences

	LogLevel logger.Level
	LogFile  string // "stderr" logs to the console

	Audio        bool
	WhisperBin   string
	WhisperModel string
	RecordSecs   int
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		TickInterval:  50 * time.Millisecond,
		StirThreshold: pot.DefaultStirThreshold,
		MoveSpeed:     serving.DefaultMoveSpeed,
		Slots:         serving.DefaultPositions(),
		TimeToSlice:   board.DefaultTimeToSlice,
		DBPath:        ".otto-kitchen/prefs.db",
		LogLevel:      logger.LevelNormal,
		LogFile:       ".otto-logs/kitchen.log",
		Audio:         true,
		WhisperBin:    "whisper-cli",
		WhisperModel:  "bin/ggml-small.bin",
		RecordSecs:    2,
	}
}

// Load reads the given .env files (".env" when none are named), then
// builds a Config from the process environment. Missing .env files are
// not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(name string) (string, bool) {
		v, ok := lookup(Prefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	var errs []error
	if v, ok := get(EnvTickInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s%s: invalid duration %q", Prefix, EnvTickInterval, v))
		} else {
			cfg.TickInterval = d
		}
	}
	if v, ok := get(EnvStirThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			errs = append(errs, fmt.Errorf("%s%s: invalid number %q", Prefix, EnvStirThreshold, v))
		} else {
			cfg.StirThreshold = f
		}
	}
	if v, ok := get(EnvMoveSpeed); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			errs = append(errs, fmt.Errorf("%s%s: invalid number %q", Prefix, EnvMoveSpeed, v))
		} else {
			cfg.MoveSpeed = f
		}
	}
	if v, ok := get(EnvSlots); ok {
		slots, err := ParseSlots(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", Prefix, EnvSlots, err))
		} else {
			cfg.Slots = slots
		}
	}
	if v, ok := get(EnvTimeToSlice); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s%s: invalid duration %q", Prefix, EnvTimeToSlice, v))
		} else {
			cfg.TimeToSlice = d
		}
	}
	if v, ok := get(EnvRecipes); ok {
		cfg.RecipesFile = v
	}
	if v, ok := lookup(Prefix + EnvDB); ok {
		// An explicitly empty value selects in-memory preferences.
		cfg.DBPath = strings.TrimSpace(v)
	}
	if v, ok := get(EnvLogLevel); ok {
		lvl, err := logger.ParseLevel(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", Prefix, EnvLogLevel, err))
		} else {
			cfg.LogLevel = lvl
		}
	}
	if v, ok := get(EnvLogFile); ok {
		cfg.LogFile = v
	}
	if v, ok := get(EnvAudio); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: invalid bool %q", Prefix, EnvAudio, v))
		} else {
			cfg.Audio = b
		}
	}
	if v, ok := get(EnvWhisperBin); ok {
		cfg.WhisperBin = v
	}
	if v, ok := get(EnvWhisperModel); ok {
		cfg.WhisperModel = v
	}
	if v, ok := get(EnvRecordSecs); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%s%s: invalid count %q", Prefix, EnvRecordSecs, v))
		} else {
			cfg.RecordSecs = n
		}
	}

	return cfg, errors.Join(errs...)
}

// ParseSlots parses slot positions written as "x:y" pairs separated by
// commas. A bare number is an x offset with y = 0.
func ParseSlots(s string) ([]domain.Vec2, error) {
	var out []domain.Vec2
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		xs, ys, hasY := strings.Cut(part, ":")
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("bad slot %q", part)
		}
		var y float64
		if hasY {
			if y, err = strconv.ParseFloat(strings.TrimSpace(ys), 64); err != nil {
				return nil, fmt.Errorf("bad slot %q", part)
			}
		}
		out = append(out, domain.Vec2{X: x, Y: y})
	}
	if len(out) == 0 {
		return nil, errors.New("no slots")
	}
	return out, nil
}
