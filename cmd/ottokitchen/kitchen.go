package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tebeka/atexit"

	"github.com/hammamikhairi/ottokitchen/internal/board"
	"github.com/hammamikhairi/ottokitchen/internal/config"
	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/engine"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/recipe"
	"github.com/hammamikhairi/ottokitchen/internal/score"
	"github.com/hammamikhairi/ottokitchen/internal/serving"
	"github.com/hammamikhairi/ottokitchen/internal/storage"
)

// prefStore is a preference store that can also enumerate its keys.
type prefStore interface {
	domain.PrefStore
	Keys(ctx context.Context) ([]string, error)
}

var (
	_ prefStore = (*storage.MemoryStore)(nil)
	_ prefStore = (*storage.SQLiteStore)(nil)
)

// openPrefs opens the SQLite preference file, or an in-memory store when
// no path is configured. The SQLite handle is closed at exit.
func openPrefs(path string, log *logger.Logger) (prefStore, error) {
	if path == "" {
		return storage.NewMemoryStore(log.Named("prefs")), nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	store, err := storage.OpenSQLite(path, log.Named("prefs"))
	if err != nil {
		return nil, err
	}
	atexit.Register(func() {
		if err := store.Close(); err != nil {
			log.Error("closing prefs: %v", err)
		}
	})
	return store, nil
}

// loadRecipes returns the configured recipe table in matching order.
func loadRecipes(ctx context.Context, path string, log *logger.Logger) ([]*domain.Recipe, error) {
	var src domain.RecipeSource
	if path == "" {
		src = recipe.NewMemorySource(log.Named("recipes"))
	} else {
		fileSrc, err := recipe.LoadFile(path, log.Named("recipes"))
		if err != nil {
			return nil, err
		}
		src = fileSrc
	}
	return src.List(ctx)
}

// kitchen bundles what every front end needs to run a round.
type kitchen struct {
	eng   *engine.Engine
	score *score.Accumulator
	prefs prefStore
}

// newKitchen wires recipes, preferences, the score and the engine from cfg.
func newKitchen(ctx context.Context, cfg config.Config, notifier domain.Notifier, log *logger.Logger, opts ...engine.Option) (*kitchen, error) {
	recipes, err := loadRecipes(ctx, cfg.RecipesFile, log)
	if err != nil {
		return nil, fmt.Errorf("loading recipes: %w", err)
	}

	prefs, err := openPrefs(cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("opening prefs: %w", err)
	}

	acc := score.New(prefs, log.Named("score"))
	if err := acc.Load(ctx); err != nil {
		log.Warn("loading best score: %v", err)
	}

	base := []engine.Option{
		engine.WithStirThreshold(cfg.StirThreshold),
		engine.WithServingOptions(
			serving.WithPositions(cfg.Slots),
			serving.WithMoveSpeed(cfg.MoveSpeed),
		),
		engine.WithBoardOptions(board.WithTimeToSlice(cfg.TimeToSlice)),
	}
	eng, err := engine.New(recipes, acc, notifier, log, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("building kitchen: %w", err)
	}
	log.Info("kitchen ready: %d recipes, %d serving slots", len(recipes), len(cfg.Slots))
	return &kitchen{eng: eng, score: acc, prefs: prefs}, nil
}
