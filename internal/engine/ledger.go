package engine

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/tatianab/lone-garrison/internal/content"
	"github.com/tatianab/lone-garrison/internal/models"
)

const fortifyMaterialCost = 200

// actionOutcome is what one discrete action produced before the shared
// turn pipeline (clock advance, siege roll, combat) runs. A refusal has
// Executed false and mutates nothing; the pipeline is skipped for it.
type actionOutcome struct {
	Lines      []string
	Notes      []string
	TimeCost   int
	SiegeDelta int
	Effect     models.VisualEffect
	Executed   bool
}

// applyAction mutates the working state with the direct effects of one
// classified action and reports its narrative lines and pipeline costs.
func applyAction(rng *rand.Rand, s *models.GameState, kind ActionKind, command string, lang models.Language, lib *content.Library) actionOutcome {
	cmd := strings.ToLower(strings.TrimSpace(command))

	switch kind {
	case ActionRaid:
		return applyRaid(rng, s, lib)
	case ActionMassCharge:
		return applyMassCharge(rng, s, lib)
	case ActionScavenge:
		return applyScavenge(rng, s, lib)
	case ActionScout:
		return applyScout(rng, s, lib)
	case ActionSupplyRequest:
		return refusal(rng, lib, "supply_blocked")
	case ActionMove:
		return applyMove(rng, s, cmd, lang, lib)
	case ActionFortify:
		return applyFortify(rng, s, cmd, lang, lib)
	case ActionRest:
		return applyRest(rng, s, lib)
	case ActionHeal:
		return applyHeal(rng, s, lib)
	case ActionRaiseFlag:
		return applyRaiseFlag(rng, s, lib)
	case ActionSpeech:
		return applySpeech(rng, s, lib)
	}
	return actionOutcome{}
}

// refusal is narrative-only feedback. No state change, no time passes.
func refusal(rng *rand.Rand, lib *content.Library, pool string) actionOutcome {
	return actionOutcome{Lines: []string{pick(rng, lib.Pool(pool))}}
}

func applyRaid(rng *rand.Rand, s *models.GameState, lib *content.Library) actionOutcome {
	hour := hourOf(s.CurrentTime)
	if hour >= 5 {
		return refusal(rng, lib, "raid_day_block")
	}

	out := actionOutcome{TimeCost: 60, SiegeDelta: 5, Executed: true}
	s.AggressiveCount++

	if rng.Float64() < 0.4 {
		died := rng.Intn(6)
		var ammoGain, medGain int
		if rng.Float64() > 0.3 {
			ammoGain = rng.Intn(600)
		}
		if rng.Float64() > 0.5 {
			medGain = rng.Intn(30)
		}
		s.Soldiers = max(0, s.Soldiers-died)
		s.Ammo += ammoGain
		s.Medkits += medGain
		addMorale(s, 10-died*2)

		if line := applyNamedDeath(rng, s, died, lib); line != "" {
			out.Lines = append(out.Lines, line)
		}
		out.Lines = append(out.Lines, pick(rng, lib.Pool("raid_success")))
		if died > 0 {
			out.Notes = append(out.Notes, fmt.Sprintf("Killed in action: %d", died))
		}
		if ammoGain > 0 {
			out.Notes = append(out.Notes, fmt.Sprintf("Captured rifle rounds: +%d", ammoGain))
		}
		if medGain > 0 {
			out.Notes = append(out.Notes, fmt.Sprintf("Captured medkits: +%d", medGain))
		}
		out.Notes = append(out.Notes, "Raid succeeded: morale +10")
	} else {
		died := 10 + rng.Intn(11)
		s.Soldiers = max(0, s.Soldiers-died)
		addMorale(s, -15-died*2)

		if line := applyNamedDeath(rng, s, died, lib); line != "" {
			out.Lines = append(out.Lines, line)
		}
		out.Lines = append(out.Lines, pick(rng, lib.Pool("raid_fail")))
		out.Notes = append(out.Notes,
			fmt.Sprintf("Killed in action: %d", died),
			"Raid repulsed: morale -15")
		out.Effect = models.EffectHeavyDamage
	}
	return out
}

func applyMassCharge(rng *rand.Rand, s *models.GameState, lib *content.Library) actionOutcome {
	out := actionOutcome{TimeCost: 90, SiegeDelta: 20, Executed: true}
	s.AggressiveCount++

	if rng.Float64() < 0.25 {
		died := 5 + rng.Intn(8)
		kills := 30 + rng.Intn(31) + s.ActiveSquadCount()*5
		s.Soldiers = max(0, s.Soldiers-died)
		s.EnemiesKilled += kills
		addMorale(s, 12-died*2)

		if line := applyNamedDeath(rng, s, died, lib); line != "" {
			out.Lines = append(out.Lines, line)
		}
		out.Lines = append(out.Lines, pick(rng, lib.Pool("mass_charge_success")))
		out.Notes = append(out.Notes,
			fmt.Sprintf("Killed in action: %d", died),
			fmt.Sprintf("Enemy dead: %d", kills))
	} else {
		died := 15 + rng.Intn(16)
		s.Soldiers = max(0, s.Soldiers-died)
		addMorale(s, -20-died*2)

		if line := applyNamedDeath(rng, s, died, lib); line != "" {
			out.Lines = append(out.Lines, line)
		}
		out.Lines = append(out.Lines, pick(rng, lib.Pool("mass_charge_fail")))
		out.Notes = append(out.Notes,
			fmt.Sprintf("Killed in action: %d", died),
			"Charge broken: morale -20")
		out.Effect = models.EffectHeavyDamage
	}
	return out
}

func applyScavenge(rng *rand.Rand, s *models.GameState, lib *content.Library) actionOutcome {
	out := actionOutcome{TimeCost: 30, SiegeDelta: 10, Executed: true}
	switch roll := rng.Float64(); {
	case roll < 0.4:
		gain := 50 + rng.Intn(100)
		s.Ammo += gain
		out.Lines = append(out.Lines, pick(rng, lib.Pool("scavenge_ammo")))
		out.Notes = append(out.Notes, fmt.Sprintf("Found rifle rounds: +%d", gain))
	case roll < 0.6:
		if rng.Float64() > 0.5 {
			s.Medkits += 2
			out.Lines = append(out.Lines, pick(rng, lib.Pool("scavenge_medkits")))
			out.Notes = append(out.Notes, "Found medkits: +2")
		} else {
			s.Material += 50
			out.Lines = append(out.Lines, pick(rng, lib.Pool("scavenge_material")))
			out.Notes = append(out.Notes, "Found building material: +50")
		}
	case roll < 0.9:
		out.Lines = append(out.Lines, pick(rng, lib.Pool("scavenge_nothing")))
	default:
		addMorale(s, -1)
		out.Lines = append(out.Lines, pick(rng, lib.Pool("scavenge_bad")))
		out.Notes = append(out.Notes, "Fruitless search: morale -1")
	}
	return out
}

func applyScout(rng *rand.Rand, s *models.GameState, lib *content.Library) actionOutcome {
	out := actionOutcome{TimeCost: 15, SiegeDelta: 5, Executed: true}
	out.Lines = append(out.Lines, pick(rng, lib.Pool("scout_lines")))
	if rng.Float64() < 0.2 {
		s.EnemiesKilled += 10
		out.Lines = append(out.Lines, pick(rng, lib.Pool("scout_sniper")))
		out.Notes = append(out.Notes, "Sniper kills: 10")
	}
	return out
}

func applyMove(rng *rand.Rand, s *models.GameState, cmd string, lang models.Language, lib *content.Library) actionOutcome {
	dest, ok := lib.LocationFor(cmd, lang)
	if !ok {
		return refusal(rng, lib, "move_unknown")
	}
	s.Location = dest
	line := strings.ReplaceAll(pick(rng, lib.Pool("move")), "{dest}", string(dest))
	return actionOutcome{
		Lines:      []string{line},
		TimeCost:   15,
		SiegeDelta: 5,
		Executed:   true,
	}
}

func applyFortify(rng *rand.Rand, s *models.GameState, cmd string, lang models.Language, lib *content.Library) actionOutcome {
	target := s.Location
	if loc, ok := lib.LocationFor(cmd, lang); ok {
		target = loc
	}
	if s.FortLevel[target] >= models.FortLevelCap {
		return refusal(rng, lib, "build_max")
	}
	if s.Material < fortifyMaterialCost {
		return refusal(rng, lib, "build_no_material")
	}

	s.Material -= fortifyMaterialCost
	s.FortBuildCount[target]++
	s.FortLevel[target] = min(models.FortLevelCap, s.FortBuildCount[target]/2)

	out := actionOutcome{
		Lines:      []string{pick(rng, lib.Pool("build"))},
		TimeCost:   120,
		SiegeDelta: 15,
		Executed:   true,
	}
	out.Notes = append(out.Notes,
		fmt.Sprintf("Material spent: %d", fortifyMaterialCost),
		fmt.Sprintf("Works at the %s: progress +1", target))
	if rng.Float64() < 0.3 {
		if fatigue := rng.Intn(6); fatigue > 0 {
			addMorale(s, -fatigue)
			out.Notes = append(out.Notes, fmt.Sprintf("Exhaustion: morale -%d", fatigue))
		}
	}
	return out
}

func applyRest(rng *rand.Rand, s *models.GameState, lib *content.Library) actionOutcome {
	addMorale(s, 10)
	s.Health = min(100, s.Health+5)
	s.LastRestTurn = s.TurnCount + 1
	return actionOutcome{
		Lines:      []string{pick(rng, lib.Pool("rest"))},
		Notes:      []string{"Morale +10", "Position condition +5"},
		TimeCost:   120,
		SiegeDelta: 35,
		Executed:   true,
	}
}

func applyHeal(rng *rand.Rand, s *models.GameState, lib *content.Library) actionOutcome {
	if s.Wounded <= 0 || s.Medkits <= 0 {
		return refusal(rng, lib, "heal_fail")
	}
	healed := min(s.Wounded, min(s.Medkits, 2+rng.Intn(4)))
	s.Medkits -= healed
	s.Wounded -= healed
	s.Soldiers += healed
	s.WoundedTimer = max(0, s.WoundedTimer-healed*90)
	addMorale(s, healed*2)

	return actionOutcome{
		Lines: []string{pick(rng, lib.Pool("heal_success"))},
		Notes: []string{
			fmt.Sprintf("Medkits spent: %d", healed),
			fmt.Sprintf("Wounded returned to duty: %d", healed),
			fmt.Sprintf("Morale +%d", healed*2),
		},
		TimeCost:   60,
		SiegeDelta: 10,
		Executed:   true,
	}
}

func applyRaiseFlag(rng *rand.Rand, s *models.GameState, lib *content.Library) actionOutcome {
	if s.HasFlagRaised {
		return refusal(rng, lib, "flag_info")
	}
	if s.Location != models.LocationRooftop {
		return refusal(rng, lib, "flag_fail")
	}
	if !s.FlagWarned {
		s.FlagWarned = true
		return actionOutcome{
			Lines:      []string{pick(rng, lib.Pool("flag_warn"))},
			TimeCost:   5,
			SiegeDelta: 5,
			Executed:   true,
		}
	}

	s.HasFlagRaised = true
	s.MinMorale = 30
	addMorale(s, 30)
	return actionOutcome{
		Lines:      []string{pick(rng, lib.Pool("flag_success"))},
		Notes:      []string{"Morale +30"},
		TimeCost:   30,
		SiegeDelta: 50,
		Executed:   true,
	}
}

func applySpeech(rng *rand.Rand, s *models.GameState, lib *content.Library) actionOutcome {
	addMorale(s, 3)
	return actionOutcome{
		Lines:      []string{pick(rng, lib.Pool("speech"))},
		Notes:      []string{"Morale +3"},
		TimeCost:   60,
		SiegeDelta: 10,
		Executed:   true,
	}
}

// addMorale adjusts morale within [MinMorale, 100]. The floor only
// exists once the flag has been raised.
func addMorale(s *models.GameState, delta int) {
	s.Morale += delta
	if s.Morale > 100 {
		s.Morale = 100
	}
	if s.Morale < s.MinMorale {
		s.Morale = s.MinMorale
	}
}
