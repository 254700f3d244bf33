package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/ottokitchen/internal/audio"
	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/engine"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
	"github.com/hammamikhairi/ottokitchen/internal/score"
	"github.com/hammamikhairi/ottokitchen/internal/storage"
)

// output is where the app prints listings and errors. Engine messages go
// through the notifier instead.
type output interface {
	Info(text string)
	Hint(text string)
	Urgent(text string)
}

// app turns parsed intents into kitchen calls. It is shared by the
// interactive and the scripted front ends; they differ in how calls reach
// the simulation goroutine and how time passes.
type app struct {
	eng   *engine.Engine
	score *score.Accumulator
	prefs domain.PrefStore
	cues  *audio.Cues // nil when audio is disabled
	out   output
	log   *logger.Logger

	// exec runs fn on the goroutine that owns the engine.
	exec func(ctx context.Context, fn func(ctx context.Context) error) error
	// wait lets simulated time pass.
	wait func(ctx context.Context, d time.Duration) error

	closed bool // score already committed by quit
}

// handle runs one intent. It reports whether the player asked to quit.
func (a *app) handle(ctx context.Context, intent *domain.Intent) bool {
	a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)

	var err error
	switch intent.Type {
	case domain.IntentHelp:
		a.showHelp()
	case domain.IntentListRecipes:
		err = a.showRecipes(ctx)
	case domain.IntentSpawn:
		err = a.exec(ctx, func(ctx context.Context) error {
			_, err := a.eng.SpawnVegetable(ctx, intent.Payload)
			return err
		})
	case domain.IntentChop:
		err = a.exec(ctx, func(ctx context.Context) error {
			_, err := a.eng.ChopByName(ctx, intent.Payload)
			return err
		})
	case domain.IntentDrop:
		err = a.exec(ctx, func(ctx context.Context) error {
			return a.eng.DropByName(ctx, intent.Payload)
		})
	case domain.IntentAdd:
		err = a.exec(ctx, func(ctx context.Context) error {
			return a.eng.AddIngredient(ctx, intent.Payload)
		})
	case domain.IntentStir:
		err = a.exec(ctx, a.eng.Stir)
	case domain.IntentMove:
		err = a.move(ctx, intent.Payload)
	case domain.IntentServe:
		err = a.serve(ctx, intent.Payload)
	case domain.IntentRemove:
		err = a.remove(ctx, intent.Payload)
	case domain.IntentClear:
		err = a.exec(ctx, a.eng.ForceClear)
	case domain.IntentReset:
		a.commitScore(ctx)
		err = a.exec(ctx, a.eng.Reset)
	case domain.IntentStatus:
		err = a.status(ctx)
	case domain.IntentVolume:
		err = a.volume(ctx, intent.Payload)
	case domain.IntentWait:
		err = a.waitFor(ctx, intent.Payload)
	case domain.IntentQuit:
		a.commitScore(ctx)
		a.closed = true
		return true
	case domain.IntentUnknown:
		a.out.Hint(fmt.Sprintf("Didn't catch %q. Type help for commands.", intent.Payload))
	}

	if err != nil {
		a.log.Debug("%s failed: %v", intent.Type, err)
		if msg := describeErr(err); msg != "" {
			a.out.Urgent(msg)
		}
	}
	return false
}

// describeErr turns an error into a player-facing line. Errors the
// engine already announced return "".
func describeErr(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoFreeSlot), errors.Is(err, domain.ErrNotSliced):
		return ""
	case errors.Is(err, domain.ErrNotCooking):
		return "Nothing is cooking."
	case errors.Is(err, domain.ErrDishInFlight):
		return "That dish is still on its way."
	case errors.Is(err, domain.ErrInvalidIngredient):
		return ""
	case errors.Is(err, domain.ErrNotFound):
		return "Can't find that."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func (a *app) showRecipes(ctx context.Context) error {
	var recipes []*domain.Recipe
	if err := a.exec(ctx, func(context.Context) error {
		recipes = a.eng.Recipes()
		return nil
	}); err != nil {
		return err
	}
	for _, line := range recipeLines(recipes) {
		a.out.Info(line)
	}
	return nil
}

// recipeLines formats the recipe table, one recipe per line.
func recipeLines(recipes []*domain.Recipe) []string {
	lines := make([]string, 0, len(recipes))
	for i, r := range recipes {
		points := domain.DefaultDishScore
		if r.Result != nil && r.Result.Score > 0 {
			points = r.Result.Score
		}
		line := fmt.Sprintf("%d. %-18s %-32s %5s  %d pts",
			i+1, r.Name, strings.Join(r.Ingredients, " + "), formatDuration(r.CookingTime), points)
		if r.Result == nil {
			line += "  (no dish configured)"
		}
		lines = append(lines, line)
	}
	return lines
}

func (a *app) move(ctx context.Context, payload string) error {
	fields := strings.Fields(payload)
	if len(fields) != 2 {
		return fmt.Errorf("move needs x and y, got %q", payload)
	}
	x, errX := strconv.ParseFloat(fields[0], 64)
	y, errY := strconv.ParseFloat(fields[1], 64)
	if err := errors.Join(errX, errY); err != nil {
		return fmt.Errorf("bad position %q: %w", payload, err)
	}
	return a.exec(ctx, func(ctx context.Context) error {
		a.eng.MovePot(ctx, domain.Vec2{X: x, Y: y})
		return nil
	})
}

// serve sends the oldest ready dish, every ready dish ("all"), or the
// ready dish with the given name or ID.
func (a *app) serve(ctx context.Context, which string) error {
	return a.exec(ctx, func(ctx context.Context) error {
		switch which {
		case "":
			_, err := a.eng.ServeNext(ctx)
			return err
		case "all", "everything":
			for range a.eng.ReadyDishes() {
				if _, err := a.eng.ServeNext(ctx); err != nil {
					return err
				}
			}
			return nil
		}
		for _, id := range a.eng.ReadyDishes() {
			d, _ := a.eng.Dish(id)
			if d.ID == which || strings.EqualFold(d.Name, which) {
				_, err := a.eng.ServeDish(ctx, id)
				return err
			}
		}
		return fmt.Errorf("no ready %s: %w", which, domain.ErrNotFound)
	})
}

// remove frees a slot by index or by dish ID.
func (a *app) remove(ctx context.Context, which string) error {
	return a.exec(ctx, func(ctx context.Context) error {
		if idx, err := strconv.Atoi(which); err == nil {
			return a.eng.RemoveSlot(ctx, idx)
		}
		return a.eng.RemoveDish(ctx, which)
	})
}

func (a *app) status(ctx context.Context) error {
	var snap *engine.Snapshot
	if err := a.exec(ctx, func(context.Context) error {
		snap = a.eng.Snapshot()
		return nil
	}); err != nil {
		return err
	}
	for _, line := range statusLines(snap) {
		a.out.Info(line)
	}
	return nil
}

// statusLines describes the kitchen for the status command.
func statusLines(s *engine.Snapshot) []string {
	var lines []string
	switch {
	case s.Recipe != "":
		lines = append(lines, fmt.Sprintf("Pot:     cooking %s, %d%% (%s left)",
			s.Recipe, int(s.Progress*100), formatDuration(s.Remaining)))
	case len(s.Ingredients) > 0:
		lines = append(lines, fmt.Sprintf("Pot:     %s", strings.Join(s.Ingredients, ", ")))
	default:
		lines = append(lines, "Pot:     empty")
	}

	if len(s.Board) > 0 {
		items := make([]string, len(s.Board))
		for i, v := range s.Board {
			state := "whole"
			if v.Sliced {
				state = "sliced"
			} else if v.Chopping {
				state = fmt.Sprintf("%d%%", int(v.Progress*100))
			}
			items[i] = fmt.Sprintf("%s (%s)", v.Name, state)
		}
		lines = append(lines, "Board:   "+strings.Join(items, ", "))
	}

	for _, d := range s.Ready {
		lines = append(lines, fmt.Sprintf("Ready:   %s [%s]", d.Name, d.ID))
	}
	for _, sl := range s.Slots {
		switch {
		case sl.Dish != nil:
			lines = append(lines, fmt.Sprintf("Slot %d:  %s [%s]", sl.Index, sl.Dish.Name, sl.Dish.ID))
		case sl.Reserved:
			lines = append(lines, fmt.Sprintf("Slot %d:  (dish on the way)", sl.Index))
		}
	}
	lines = append(lines, fmt.Sprintf("Serving: %d/%d taken, %d moving", s.Occupied, len(s.Slots), s.InFlight))
	lines = append(lines, fmt.Sprintf("Score:   %d (best %d, %d served)", s.Score, s.Best, s.Served))
	return lines
}

func (a *app) volume(ctx context.Context, payload string) error {
	v, err := strconv.ParseFloat(payload, 64)
	if err != nil || v < 0 || v > 1 {
		a.out.Hint("Volume is a number from 0 to 1.")
		return nil
	}
	if a.cues != nil {
		a.cues.SetVolume(v)
	}
	if err := a.prefs.SetFloat(ctx, storage.KeyEffectsVolume, v); err != nil {
		return fmt.Errorf("saving volume: %w", err)
	}
	a.out.Hint(fmt.Sprintf("Effects volume %.0f%%.", v*100))
	return nil
}

func (a *app) waitFor(ctx context.Context, payload string) error {
	d, err := time.ParseDuration(payload)
	if err != nil || d < 0 {
		a.out.Hint(fmt.Sprintf("Can't wait %q. Try 2s or 500ms.", payload))
		return nil
	}
	return a.wait(ctx, d)
}

// commitScore saves the round's score. The accumulator is atomic, so it
// does not need the simulation goroutine.
func (a *app) commitScore(ctx context.Context) {
	record, err := a.score.Commit(ctx)
	if err != nil {
		a.log.Error("saving score: %v", err)
		return
	}
	if record && a.score.Best() > 0 {
		a.out.Info(fmt.Sprintf("New best score: %d!", a.score.Best()))
	}
}

func (a *app) showHelp() {
	for _, line := range []string{
		"Commands:",
		"  recipes / list       Show the recipe table",
		"  spawn <veg>          Put a whole vegetable on the board",
		"  chop <veg>           Slice a vegetable (takes a moment)",
		"  drop <veg>           Drop a sliced vegetable into the pot",
		"  add <ingredient>     Add an ingredient straight to the pot",
		"  stir                 Stir the pot to cook faster",
		"  move <x> <y>         Drag the pot (big drags stir too)",
		"  serve [dish|all]     Send ready dishes to the serving area",
		"  remove <slot|id>     Take a dish off the serving area",
		"  clear                Empty the pot",
		"  reset                Start a new round",
		"  status               Show the kitchen",
		"  volume <0..1>        Set the effects volume",
		"  help                 Show this message",
		"  quit / exit          Save the score and leave",
	} {
		a.out.Info(line)
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm%ds", m, s)
}
