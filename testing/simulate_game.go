// Command simulate_game plays a scripted run through the defense from
// the first order to an ending, printing every turn. It runs fully
// offline on a fixed seed, which makes it a quick smoke check for the
// whole pipeline.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tatianab/lone-garrison/internal/engine"
)

const maxTurns = 60

// script cycles through a cautious defender's routine once the
// tutorial is done.
var script = []string{
	"fortify the ground floor",
	"observe the enemy positions",
	"treat the wounded",
	"search the warehouse for supplies",
	"give a speech to the men",
	"let the men rest",
}

func main() {
	ctx := context.Background()

	eng, err := engine.New(ctx, engine.Options{Seed: 1937})
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer eng.Close()

	state := eng.NewGame()

	commands := append([]string{
		engine.StartCommand,
		"fortify the ground floor",
		"let the men rest",
	}, repeatScript()...)

	for turn, cmd := range commands {
		if turn >= maxTurns || state.IsGameOver {
			break
		}
		fmt.Printf("--- Turn %d: %q ---\n", turn+1, cmd)

		res, err := eng.ProcessTurn(ctx, state, cmd, "")
		if err != nil {
			log.Fatalf("Turn failed: %v", err)
		}
		res.Patch.Apply(state)

		fmt.Println(res.Narrative)
		if res.Dilemma != nil {
			// The bot always takes the cautious second option.
			fmt.Printf("[dilemma: %s]\n", res.Dilemma.Title)
			resolve, err := eng.ProcessTurn(ctx, state, res.Dilemma.Options[1].ActionCmd, "")
			if err != nil {
				log.Fatalf("Dilemma resolution failed: %v", err)
			}
			resolve.Patch.Apply(state)
			fmt.Println(resolve.Narrative)
		}
		fmt.Printf("[day %d %s | soldiers %d | wounded %d | morale %d | siege %d | event %s]\n\n",
			state.Day, state.CurrentTime, state.Soldiers, state.Wounded, state.Morale, state.SiegeMeter, res.Event)
	}

	fmt.Println(strings.Repeat("=", 40))
	if state.IsGameOver {
		fmt.Printf("Result: %s\nRank: %s\n%s\n", state.GameResult, state.FinalRank, state.FinalReport)
	} else {
		fmt.Printf("Still holding after %d turns: day %d, %d survivors.\n",
			maxTurns, state.Day, state.TotalSurvivors())
	}
}

func repeatScript() []string {
	var out []string
	for len(out) < maxTurns {
		out = append(out, script...)
	}
	return out
}
