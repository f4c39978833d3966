package engine

import (
	"strings"

	"github.com/tatianab/lone-garrison/internal/content"
	"github.com/tatianab/lone-garrison/internal/models"
)

// ActionKind is the closed set of discrete actions a command can
// resolve to. ActionIdle is the fallback for anything unmatched.
type ActionKind string

const (
	ActionRetreat       ActionKind = "retreat"
	ActionStartGame     ActionKind = "start-game"
	ActionMassCharge    ActionKind = "mass-charge"
	ActionRaid          ActionKind = "raid"
	ActionScavenge      ActionKind = "scavenge"
	ActionScout         ActionKind = "scout"
	ActionSupplyRequest ActionKind = "supply-request"
	ActionMove          ActionKind = "move"
	ActionFortify       ActionKind = "fortify"
	ActionRest          ActionKind = "rest"
	ActionHeal          ActionKind = "heal"
	ActionRaiseFlag     ActionKind = "raise-flag"
	ActionSpeech        ActionKind = "speech"
	ActionIdle          ActionKind = "idle"
)

// classifyOrder is the fixed priority: retreat and game-control intents
// first, aggressive actions before passive ones, idle as fallback.
// A command matching several kinds resolves to the earliest.
var classifyOrder = []ActionKind{
	ActionRetreat,
	ActionStartGame,
	ActionMassCharge,
	ActionRaid,
	ActionScavenge,
	ActionScout,
	ActionSupplyRequest,
	ActionMove,
	ActionFortify,
	ActionRest,
	ActionHeal,
	ActionRaiseFlag,
	ActionSpeech,
}

// Classify maps a raw command to exactly one action kind using the
// language's keyword tables. Pure; no state is read or written.
func Classify(command string, lang models.Language, lib *content.Library) ActionKind {
	cmd := strings.ToLower(strings.TrimSpace(command))
	for _, kind := range classifyOrder {
		if matchesAny(cmd, lib.ActionKeywords(string(kind), lang)) {
			return kind
		}
	}
	return ActionIdle
}

func matchesAny(cmd string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(cmd, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
