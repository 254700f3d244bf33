package domain

// IntentType classifies what the player wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentListRecipes
	IntentSpawn // put a whole vegetable on the board
	IntentChop  // slice a vegetable on the board
	IntentDrop  // drop a sliced vegetable into the pot
	IntentAdd   // add an already-sliced ingredient straight to the pot
	IntentStir
	IntentMove   // drag the pot to a position
	IntentWait   // let time pass, used by scripted runs
	IntentServe  // click a ready dish
	IntentRemove // take a dish off the serving area
	IntentClear  // force-clear the pot
	IntentReset  // restart the round
	IntentStatus
	IntentVolume
	IntentQuit
	IntentHelp
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	for name, t := range intentNames {
		if t == i {
			return name
		}
	}
	return "unknown"
}

// Intent represents a parsed player action.
type Intent struct {
	Type    IntentType
	Payload string // optional argument, e.g. the ingredient name
}

// intentNames maps snake_case names to IntentType values.
var intentNames = map[string]IntentType{
	"list_recipes": IntentListRecipes,
	"spawn":        IntentSpawn,
	"chop":         IntentChop,
	"drop":         IntentDrop,
	"add":          IntentAdd,
	"stir":         IntentStir,
	"move":         IntentMove,
	"wait":         IntentWait,
	"serve":        IntentServe,
	"remove":       IntentRemove,
	"clear":        IntentClear,
	"reset":        IntentReset,
	"status":       IntentStatus,
	"volume":       IntentVolume,
	"quit":         IntentQuit,
	"help":         IntentHelp,
	"unknown":      IntentUnknown,
}

// IntentFromString converts a snake_case intent name to an IntentType.
// Returns IntentUnknown for unrecognized names.
func IntentFromString(name string) IntentType {
	if t, ok := intentNames[name]; ok {
		return t
	}
	return IntentUnknown
}
