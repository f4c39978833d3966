package engine

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/tatianab/lone-garrison/internal/models"
)

// StartCommand begins (or restarts) a playthrough when sent verbatim.
const StartCommand = "start_game"

// resolvePrefix marks a dilemma option command: resolve:<id>:<index>.
const resolvePrefix = "resolve:"

const notesSeparator = "━━━━━━━━━━━━━━"

// ProcessTurn resolves one player command against a state snapshot and
// returns the narrative plus a patch describing every change. The input
// state is never mutated; callers apply the patch themselves. history
// is recent log text handed to the narrator for continuity.
func (e *Engine) ProcessTurn(ctx context.Context, prev *models.GameState, command, history string) (*models.TurnResult, error) {
	cmd := strings.ToLower(strings.TrimSpace(command))
	s := prev.Clone()

	if prev.IsGameOver && cmd != StartCommand {
		return &models.TurnResult{
			Narrative: pick(e.rng, e.lib.Pool("battle_over")),
			Event:     models.EventNone,
			Effect:    models.EffectNone,
		}, nil
	}

	if cmd == StartCommand {
		return e.startGame(prev), nil
	}

	if res, ok := e.easterEgg(prev, s, cmd); ok {
		return res, nil
	}

	if strings.HasPrefix(cmd, resolvePrefix) {
		return e.resolveDilemma(prev, s, cmd), nil
	}

	kind := Classify(cmd, e.lang, e.lib)

	// Withdrawal and restart orders are honored even mid-tutorial.
	if kind == ActionRetreat {
		return e.retreat(prev, s), nil
	}
	if kind == ActionStartGame {
		return e.startGame(prev), nil
	}

	if s.TutorialStep > 0 && s.TutorialStep < 3 {
		return e.tutorialTurn(prev, s, kind), nil
	}

	if kind == ActionIdle {
		return e.idleTurn(ctx, prev, command, cmd), nil
	}

	// Cash in the active tactical card when its suggested action is the
	// one ordered.
	var notes []string
	if s.ActiveCard != nil && Classify(s.ActiveCard.ActionCmd, e.lang, e.lib) == kind {
		notes = append(notes, fmt.Sprintf("Opportunity seized: %s", s.ActiveCard.Title))
		s.ActiveCard = nil
	}

	out := applyAction(e.rng, s, kind, command, e.lang, e.lib)
	if !out.Executed {
		// A refusal costs nothing: the card stays available too.
		return &models.TurnResult{
			Narrative: strings.Join(out.Lines, "\n\n"),
			Event:     models.EventNone,
			Effect:    models.EffectNone,
		}, nil
	}

	lines := out.Lines
	notes = append(notes, out.Notes...)
	event := models.EventNone
	effect := out.Effect
	if effect == "" {
		effect = models.EffectNone
	}
	var attackLoc models.Location

	s.TurnCount++
	prevTime := s.CurrentTime
	s.CurrentTime = addMinutes(prevTime, out.TimeCost)
	s.SiegeMeter = min(100, s.SiegeMeter+out.SiegeDelta)

	meter, plan := rollAttack(e.rng, s.SiegeMeter, s.Day, hourOf(s.CurrentTime), s.HasFlagRaised)
	s.SiegeMeter = meter

	// Untreated wounded bleed out on a 12-hour clock.
	if s.Wounded > 0 {
		s.WoundedTimer += out.TimeCost
		if s.WoundedTimer >= 720 {
			toll := min(s.Wounded, 1+e.rng.Intn(5))
			s.Wounded -= toll
			addMorale(s, -toll)
			lines = append(lines, pick(e.rng, e.lib.Pool("wounded_death")))
			notes = append(notes,
				fmt.Sprintf("Wounded died of their injuries: %d", toll),
				fmt.Sprintf("Morale -%d", toll))
			s.WoundedTimer = 660
		}
	} else {
		s.WoundedTimer = 0
	}

	if plan.Triggered {
		event = models.EventAttack
		if effect != models.EffectHeavyDamage {
			effect = models.EffectShake
		}
		var heavy bool
		lines, notes, attackLoc, heavy = e.applyAttack(s, plan, lines, notes)
		if heavy {
			effect = models.EffectHeavyDamage
		}
	}

	// Low morale risks desertion in the night.
	if s.Morale < 30 && e.rng.Float64() < 0.4 {
		lost := 5 + e.rng.Intn(10)
		s.Soldiers = max(0, s.Soldiers-lost)
		lines = append(lines, pick(e.rng, e.lib.Pool("mutiny")))
		notes = append(notes, fmt.Sprintf("Deserters and missing: %d", lost))
	}

	if clockWrapped(prevTime, s.CurrentTime) {
		s.Day++
		event = models.EventNewDay
		notes = append(notes, fmt.Sprintf("Day %d begins", s.Day))
	}

	if s.ActiveCard == nil && !s.IsGameOver && e.rng.Float64() < 0.1 {
		if card := e.drawCard(s); card != nil {
			notes = append(notes, fmt.Sprintf("Opportunity: %s", card.Title))
		}
	}

	flagJustRaised := !prev.HasFlagRaised && s.HasFlagRaised
	lines, event, effect = e.checkEndings(s, lines, event, effect)

	narrative := strings.Join(lines, "\n\n")
	if e.narrator != nil && !s.IsGameOver && !flagJustRaised {
		if enhanced, err := e.narrator.Embellish(ctx, notes, s, command, history, narrative); err == nil {
			narrative = enhanced
		}
	}
	if len(notes) > 0 {
		narrative += "\n\n" + notesSeparator + "\n" + strings.Join(notes, "\n")
	}

	result := &models.TurnResult{
		Narrative:      narrative,
		Patch:          models.Diff(prev, s),
		Event:          event,
		Effect:         effect,
		AttackLocation: attackLoc,
		EnemyIntel:     e.lib.IntelForDay(s.Day),
	}
	if !s.IsGameOver && event != models.EventAttack && e.rng.Float64() < 0.2 {
		if d := e.drawDilemma(s); d != nil {
			result.Dilemma = d
			result.Patch = models.Diff(prev, s)
		}
	}
	return result, nil
}

// startGame resets to the opening state and enters the tutorial.
func (e *Engine) startGame(prev *models.GameState) *models.TurnResult {
	s := models.NewGameState()
	s.TutorialStep = 1
	return &models.TurnResult{
		Narrative:  pick(e.rng, e.lib.Pool("start_game")),
		Patch:      models.Diff(prev, s),
		Event:      models.EventNone,
		Effect:     models.EffectNone,
		EnemyIntel: e.lib.IntelForDay(0),
	}
}

func (e *Engine) easterEgg(prev, s *models.GameState, cmd string) (*models.TurnResult, bool) {
	switch {
	case strings.Contains(cmd, "long live the 88th"),
		strings.Contains(cmd, "八十八师万岁"),
		strings.Contains(cmd, "88师万岁"):
		s.Morale = 100
		s.Health = min(100, s.Health+10)
		return &models.TurnResult{
			Narrative: pick(e.rng, e.lib.Pool("easter_egg_rally")) + "\n\n" + notesSeparator + "\nMorale restored to 100",
			Patch:     models.Diff(prev, s),
			Event:     models.EventNone,
			Effect:    models.EffectShake,
		}, true
	case strings.Contains(cmd, "xie jinyuan"), strings.Contains(cmd, "谢晋元"):
		return &models.TurnResult{
			Narrative: pick(e.rng, e.lib.Pool("commander_bio")),
			Event:     models.EventNone,
			Effect:    models.EffectNone,
		}, true
	}
	return nil, false
}

// tutorialTurn walks the two scripted opening orders. Anything else is
// nudged back on script without changing state.
func (e *Engine) tutorialTurn(prev, s *models.GameState, kind ActionKind) *models.TurnResult {
	switch s.TutorialStep {
	case 1:
		if kind != ActionFortify {
			return &models.TurnResult{
				Narrative: pick(e.rng, e.lib.Pool("tutorial_need_fortify")),
				Event:     models.EventNone,
				Effect:    models.EffectNone,
			}
		}
		s.TutorialStep = 2
		s.FortLevel[models.LocationGate] = 2
		s.FortBuildCount[models.LocationGate] = 4
		s.CurrentTime = "21:00"
		return &models.TurnResult{
			Narrative: pick(e.rng, e.lib.Pool("tutorial_fortified")) + "\n\n" + notesSeparator + "\nGate works at Lv.2",
			Patch:     models.Diff(prev, s),
			Event:     models.EventNone,
			Effect:    models.EffectShake,
		}
	default: // step 2
		if kind != ActionRest {
			return &models.TurnResult{
				Narrative: pick(e.rng, e.lib.Pool("tutorial_need_rest")),
				Event:     models.EventNone,
				Effect:    models.EffectNone,
			}
		}
		s.TutorialStep = 3
		s.Day = 1
		s.CurrentTime = "08:00"
		s.SiegeMeter = 20
		addMorale(s, 15)
		s.Health = min(100, s.Health+10)
		return &models.TurnResult{
			Narrative:  pick(e.rng, e.lib.Pool("tutorial_rested")) + "\n\n" + notesSeparator + "\nMorale +15\nPosition condition +10",
			Patch:      models.Diff(prev, s),
			Event:      models.EventNewDay,
			Effect:     models.EffectNone,
			EnemyIntel: e.lib.IntelForDay(1),
		}
	}
}

// retreat resolves a withdrawal order by day: too early is desertion,
// late enough is the ordered retreat ending, anything between is denied.
func (e *Engine) retreat(prev, s *models.GameState) *models.TurnResult {
	switch {
	case s.Day <= 1:
		return e.finishGame(prev, s, models.EndingDefeatDeserter, models.EventGameOver)
	case s.Day >= 4:
		return e.finishGame(prev, s, models.EndingVictoryRetreat, models.EventVictory)
	default:
		return &models.TurnResult{
			Narrative: pick(e.rng, e.lib.Pool("retreat_denied")),
			Event:     models.EventNone,
			Effect:    models.EffectNone,
		}
	}
}

func (e *Engine) finishGame(prev, s *models.GameState, ending models.Ending, event models.EventKind) *models.TurnResult {
	s.IsGameOver = true
	s.GameResult = ending
	rank, report := scoreFor(s, ending)
	s.FinalRank = rank
	s.FinalReport = report
	return &models.TurnResult{
		Narrative: endingNarrative(ending, rank, report),
		Patch:     models.Diff(prev, s),
		Event:     event,
		Effect:    models.EffectNone,
	}
}

// idleTurn answers conversational input without touching the state.
func (e *Engine) idleTurn(ctx context.Context, prev *models.GameState, command, cmd string) *models.TurnResult {
	narrative := ""
	if e.narrator != nil {
		if text, err := e.narrator.Freeform(ctx, command, prev); err == nil {
			narrative = text
		}
	}
	if narrative == "" {
		narrative = pick(e.rng, e.lib.ChatterResponse(cmd, e.lang))
	}
	return &models.TurnResult{
		Narrative: narrative,
		Event:     models.EventNone,
		Effect:    models.EffectNone,
	}
}

// applyAttack plays out a triggered assault against the working state:
// ammunition drain, the casualty split, heavy-weapon losses, structural
// and fortification damage, and the morale swing.
func (e *Engine) applyAttack(s *models.GameState, plan attackPlan, lines, notes []string) ([]string, []string, models.Location, bool) {
	melee := s.Ammo <= 0 && s.SupportAmmo <= 0
	if melee {
		lines = append(lines, pick(e.rng, e.lib.Pool("bayonet_fight")))
		notes = append(notes, "Out of ammunition: bayonets")
	}

	avgFort := float64(s.FortLevel[models.LocationGate]+s.FortLevel[models.LocationSecondFloor]) / 2
	squads := s.ActiveSquadCount()
	outcome := ResolveCombat(e.rng, CombatInput{
		Scale:        plan.Scale,
		AvgFortLevel: avgFort,
		ActiveSquads: squads,
		Kind:         plan.Kind,
		Melee:        melee,
	})

	var attackLoc models.Location
	switch plan.Kind {
	case DamageBombing:
		lines = append(lines, pick(e.rng, e.lib.Pool("attack_bombing")))
		attackLoc = models.LocationRooftop
	case DamageArtillery:
		lines = append(lines, pick(e.rng, e.lib.Pool("attack_artillery")))
		attackLoc = models.LocationGate
		if e.rng.Float64() > 0.5 {
			attackLoc = models.LocationSecondFloor
		}
	default:
		pool := "attack_infantry"
		switch plan.Scale {
		case ScaleLarge:
			pool = "attack_infantry_large"
		case ScaleMedium:
			pool = "attack_infantry_medium"
		}
		lines = append(lines, pick(e.rng, e.lib.Pool(pool)))
		attackLoc = models.LocationGate
	}
	heavy := plan.Scale == ScaleLarge || plan.Kind == DamageBombing

	// Ammunition drain scales with the engagement, capped by stock.
	ammoUsed := 0
	supportUsed := 0
	grenadeDemand := float64(outcome.EnemyCount) * (1 + e.rng.Float64())
	if !melee {
		ammoUsed = min(s.Ammo, int(float64(outcome.EnemiesKilled)*(40+e.rng.Float64()*40)))
		supportDemand := float64(squads) * (500 + e.rng.Float64()*1000)
		if plan.Scale == ScaleLarge {
			supportDemand *= 2
		}
		supportUsed = min(s.SupportAmmo, int(supportDemand))
	} else {
		grenadeDemand *= 0.5
	}
	grenadesUsed := min(s.Grenades, int(grenadeDemand))
	s.Ammo -= ammoUsed
	s.SupportAmmo -= supportUsed
	s.Grenades -= grenadesUsed
	if ammoUsed > 0 {
		notes = append(notes, fmt.Sprintf("Rifle rounds spent: %d", ammoUsed))
	}
	if supportUsed > 0 {
		notes = append(notes, fmt.Sprintf("Machine-gun rounds spent: %d", supportUsed))
	}
	if grenadesUsed > 0 {
		notes = append(notes, fmt.Sprintf("Grenades spent: %d", grenadesUsed))
	}

	// Casualties fall first on the wounded, then split among the fit.
	deaths := 0
	injuries := 0
	if outcome.Casualties > 0 {
		woundedDeaths := min(s.Wounded, int(math.Ceil(float64(outcome.Casualties)*0.3)))
		deaths += woundedDeaths
		remaining := outcome.Casualties - woundedDeaths

		healthyDeaths := min(s.Soldiers, remaining*4/10)
		injuries = min(s.Soldiers-healthyDeaths, remaining-healthyDeaths)
		deaths += healthyDeaths

		s.Wounded = max(0, s.Wounded-woundedDeaths+injuries)
		s.Soldiers = max(0, s.Soldiers-healthyDeaths-injuries)
	}

	// Heavy fire can take a support squad with it.
	if squads > 0 && (plan.Scale == ScaleLarge || plan.Kind != DamageInfantry) && e.rng.Float64() < 0.3 {
		for i := range s.SupportSquads {
			if s.SupportSquads[i].Status == models.SquadActive {
				s.SupportSquads[i].Status = models.SquadDestroyed
				s.SupportSquads[i].Count = 0
				lines = append(lines, pick(e.rng, e.lib.Pool("squad_destroyed")))
				notes = append(notes,
					fmt.Sprintf("%s destroyed", s.SupportSquads[i].Name),
					"Heavy weapons lost: morale -15")
				addMorale(s, -15)
				deaths += 5
				break
			}
		}
	}

	structureDmg := 2
	if plan.Scale == ScaleLarge {
		structureDmg = 10
	}
	if plan.Kind == DamageBombing {
		structureDmg += 15
	}
	s.Health = max(0, s.Health-structureDmg)

	degradeChance := 0.2
	if plan.Scale == ScaleLarge {
		degradeChance = 0.7
	}
	if e.rng.Float64() < degradeChance && s.FortLevel[attackLoc] > 0 {
		s.FortLevel[attackLoc]--
		s.FortBuildCount[attackLoc] = s.FortLevel[attackLoc] * 2
		lines = append(lines, pick(e.rng, e.lib.Pool("fort_damage")))
		notes = append(notes, fmt.Sprintf("Works at the %s reduced to Lv.%d", attackLoc, s.FortLevel[attackLoc]))
	}

	s.EnemiesKilled += outcome.EnemiesKilled
	s.WavesRepelled++

	if deaths > 0 {
		if line := applyNamedDeath(e.rng, s, deaths, e.lib); line != "" {
			lines = append(lines, line)
		}
		notes = append(notes, fmt.Sprintf("Killed in action: %d", deaths))
	}
	if injuries > 0 {
		notes = append(notes, fmt.Sprintf("New wounded: %d", injuries))
	}
	notes = append(notes, fmt.Sprintf("Enemy dead: %d", outcome.EnemiesKilled))

	moraleGain := outcome.EnemiesKilled / 8
	if plan.Scale == ScaleLarge && deaths < 5 {
		moraleGain += 8
	} else if plan.Scale == ScaleMedium && deaths == 0 {
		moraleGain += 3
	}
	moraleLoss := deaths * 2
	addMorale(s, moraleGain-moraleLoss)
	if moraleGain > 0 {
		notes = append(notes, fmt.Sprintf("The toll told: morale +%d", moraleGain))
	}
	if moraleLoss > 0 {
		notes = append(notes, fmt.Sprintf("Losses felt: morale -%d", moraleLoss))
	}

	return lines, notes, attackLoc, heavy
}

// checkEndings applies the terminal conditions after all turn effects.
func (e *Engine) checkEndings(s *models.GameState, lines []string, event models.EventKind, effect models.VisualEffect) ([]string, models.EventKind, models.VisualEffect) {
	switch {
	case s.Soldiers < soldierFloor || s.Health <= 0:
		s.IsGameOver = true
		s.GameResult = evaluateDefeat(s)
		event = models.EventGameOver
		effect = models.EffectHeavyDamage
	case s.Day > victoryDay:
		s.IsGameOver = true
		s.GameResult = models.EndingVictoryHold
		event = models.EventVictory
	default:
		return lines, event, effect
	}
	rank, report := scoreFor(s, s.GameResult)
	s.FinalRank = rank
	s.FinalReport = report
	lines = append(lines, endingNarrative(s.GameResult, rank, report))
	return lines, event, effect
}

func (e *Engine) drawCard(s *models.GameState) *models.TacticalCard {
	var available []models.TacticalCard
	for _, c := range e.lib.Cards {
		if !slices.Contains(s.UsedCards, c.ID) {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		return nil
	}
	card := pick(e.rng, available)
	s.ActiveCard = &card
	s.UsedCards = append(s.UsedCards, card.ID)
	return &card
}

func (e *Engine) drawDilemma(s *models.GameState) *models.Dilemma {
	var available []models.Dilemma
	for _, d := range e.lib.Dilemmas {
		if !slices.Contains(s.TriggeredEvents, d.ID) {
			available = append(available, d)
		}
	}
	if len(available) == 0 {
		return nil
	}
	d := pick(e.rng, available)
	return &d
}

// resolveDilemma applies one chosen dilemma branch. Dilemmas resolve
// outside the normal pipeline: no clock, siege, or combat follows.
func (e *Engine) resolveDilemma(prev, s *models.GameState, cmd string) *models.TurnResult {
	parts := strings.Split(cmd, ":")
	if len(parts) != 3 {
		return &models.TurnResult{
			Narrative: pick(e.rng, e.lib.Pool("didnt_understand")),
			Event:     models.EventNone,
			Effect:    models.EffectNone,
		}
	}
	id := parts[1]
	option, _ := strconv.Atoi(parts[2])

	if !slices.Contains(s.TriggeredEvents, id) {
		s.TriggeredEvents = append(s.TriggeredEvents, id)
	}

	var lines, notes []string
	effect := models.EffectNone
	rng := e.rng

	recordDeaths := func(died int) {
		if died <= 0 {
			return
		}
		s.Soldiers = max(0, s.Soldiers-died)
		addMorale(s, -died*2)
		if line := applyNamedDeath(rng, s, died, e.lib); line != "" {
			lines = append(lines, line)
		}
		notes = append(notes,
			fmt.Sprintf("Killed in action: %d", died),
			fmt.Sprintf("Morale -%d", died*2))
	}

	switch {
	case id == "student_run" && option == 0:
		lines = append(lines, pick(rng, e.lib.Pool("dilemma_student_run_cover")))
		s.Medkits += 10
		notes = append(notes, "Medkits received: +10")
		recordDeaths(rng.Intn(16))
		effect = models.EffectHeavyDamage
	case id == "student_run":
		lines = append(lines, pick(rng, e.lib.Pool("dilemma_student_run_hold")))
		addMorale(s, -3)
		notes = append(notes, "Morale -3")

	case id == "smuggler_boat" && option == 0:
		if rng.Float64() < 0.5 {
			lines = append(lines, pick(rng, e.lib.Pool("dilemma_smuggler_trap")))
			recordDeaths(10 + rng.Intn(10))
			effect = models.EffectHeavyDamage
		} else {
			lines = append(lines, pick(rng, e.lib.Pool("dilemma_smuggler_deal")))
			s.Ammo += 3000
			notes = append(notes, "Rifle rounds received: +3000")
		}
	case id == "smuggler_boat":
		lines = append(lines, pick(rng, e.lib.Pool("dilemma_smuggler_refuse")))

	case id == "puppet_defector" && option == 0:
		if rng.Float64() < 0.3 {
			lines = append(lines, pick(rng, e.lib.Pool("dilemma_defector_trap")))
			if s.FortLevel[models.LocationGate] > 0 {
				s.FortLevel[models.LocationGate]--
				s.FortBuildCount[models.LocationGate] = s.FortLevel[models.LocationGate] * 2
			}
			notes = append(notes, "Gate works level -1")
			effect = models.EffectHeavyDamage
		} else {
			lines = append(lines, pick(rng, e.lib.Pool("dilemma_defector_deal")))
			s.Grenades += 50
			notes = append(notes, "Grenades received: +50")
		}
	case id == "puppet_defector":
		lines = append(lines, pick(rng, e.lib.Pool("dilemma_defector_refuse")))
		addMorale(s, -2)
		notes = append(notes, "Morale -2")

	case id == "wrecked_truck" && option == 0:
		lines = append(lines, pick(rng, e.lib.Pool("dilemma_truck_dash")))
		s.Ammo += 2000
		notes = append(notes, "Rifle rounds recovered: +2000")
		recordDeaths(1 + rng.Intn(5))
	case id == "wrecked_truck":
		lines = append(lines, pick(rng, e.lib.Pool("dilemma_truck_leave")))
		addMorale(s, -2)
		notes = append(notes, "Morale -2")

	case id == "stray_airdrop" && option == 0:
		if rng.Float64() > 0.3 {
			lines = append(lines, pick(rng, e.lib.Pool("dilemma_airdrop_climb")))
			s.Medkits += 5
			s.Material += 100
			addMorale(s, 5)
			notes = append(notes, "Medkits +5", "Building material +100", "Morale +5")
		} else {
			lines = append(lines, pick(rng, e.lib.Pool("dilemma_airdrop_fall")))
			s.Soldiers = max(0, s.Soldiers-1)
			addMorale(s, -5)
			notes = append(notes, "Fatal fall: 1 man", "Morale -5")
		}
	case id == "stray_airdrop":
		lines = append(lines, pick(rng, e.lib.Pool("dilemma_airdrop_shoot")))
		s.Material += 50
		notes = append(notes, "Building material +50")

	case id == "brit_ceasefire" && option == 0:
		lines = append(lines, pick(rng, e.lib.Pool("dilemma_ceasefire_comply")))
		addMorale(s, -5)
		s.Medkits += 5
		notes = append(notes, "Morale -5", "Medkits received: +5")
	case id == "brit_ceasefire":
		lines = append(lines, pick(rng, e.lib.Pool("dilemma_ceasefire_refuse")))
		addMorale(s, 5)
		notes = append(notes, "Morale +5")

	default:
		lines = append(lines, pick(rng, e.lib.Pool("didnt_understand")))
	}

	narrative := strings.Join(lines, "\n\n")
	if len(notes) > 0 {
		narrative += "\n\n" + notesSeparator + "\n" + strings.Join(notes, "\n")
	}
	return &models.TurnResult{
		Narrative: narrative,
		Patch:     models.Diff(prev, s),
		Event:     models.EventNone,
		Effect:    effect,
	}
}

