package engine

import (
	"fmt"
	"strings"
	"time"
)

// Every player-facing string lives here. Keep lines short.

func lineRejected(name string) string {
	return fmt.Sprintf("Can't use %q.", name)
}

func lineSpawned(name string) string {
	return fmt.Sprintf("A %s is on the board.", name)
}

func lineSliced(name string) string {
	return fmt.Sprintf("%s sliced.", capitalize(name))
}

func lineNotSliced() string {
	return "Slice it first."
}

func lineNoRecipe(ingredients []string) string {
	return fmt.Sprintf("Nothing cooks with %s. Clear the pot.", strings.Join(ingredients, ", "))
}

func lineCookingStarted(recipe string, d time.Duration) string {
	return fmt.Sprintf("Cooking %s, %s.", recipe, formatDuration(d))
}

func lineDishReady(name string) string {
	return fmt.Sprintf("%s is ready. Serve it.", name)
}

func lineMissingResult() string {
	return "That recipe has no dish. The pot was emptied."
}

func linePotCleared() string {
	return "Pot cleared."
}

func lineServingFull() string {
	return "The serving area is full. Remove a dish first."
}

func linePlacementCancelled(name string) string {
	return fmt.Sprintf("%s was dropped on the way.", name)
}

func lineServed(name string, points, total int) string {
	return fmt.Sprintf("Served %s. +%d (total %d)", name, points, total)
}

func lineReset() string {
	return "Fresh kitchen."
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	secs := d.Seconds()
	if secs == float64(int(secs)) {
		return fmt.Sprintf("%ds", int(secs))
	}
	return fmt.Sprintf("%.1fs", secs)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
