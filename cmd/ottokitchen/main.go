// Ottokitchen is a small kitchen game: chop vegetables, cook recipes in a
// pot and get the dishes onto the serving counter.
//
// Usage:
//
//	ottokitchen play [--voice] [--no-audio]
//	ottokitchen simulate [--script file] [--step 100ms]
//	ottokitchen recipes
//	ottokitchen prefs list
package main

import "github.com/tebeka/atexit"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
