package engine

import (
	"math/rand"
	"testing"

	"github.com/tatianab/lone-garrison/internal/models"
)

func TestFortifyConsumesMaterial(t *testing.T) {
	lib := loadLibrary(t)
	s := models.NewGameState()
	s.TutorialStep = 3
	rng := rand.New(rand.NewSource(1))

	out := applyAction(rng, s, ActionFortify, "fortify the gate", models.LangEN, lib)
	if !out.Executed {
		t.Fatal("fortify refused with full stocks")
	}
	if s.Material != 4500-fortifyMaterialCost {
		t.Errorf("material = %d, want %d", s.Material, 4500-fortifyMaterialCost)
	}
	if s.FortBuildCount[models.LocationGate] != 3 {
		t.Errorf("gate build count = %d, want 3", s.FortBuildCount[models.LocationGate])
	}
	if s.FortLevel[models.LocationGate] != 1 {
		t.Errorf("gate level = %d, want 1 (3 builds / 2)", s.FortLevel[models.LocationGate])
	}
	if out.TimeCost != 120 || out.SiegeDelta != 15 {
		t.Errorf("cost = %d min / siege %d, want 120 / 15", out.TimeCost, out.SiegeDelta)
	}
}

func TestFortifyRefusals(t *testing.T) {
	lib := loadLibrary(t)
	rng := rand.New(rand.NewSource(2))

	s := models.NewGameState()
	s.Material = 100
	out := applyAction(rng, s, ActionFortify, "fortify the gate", models.LangEN, lib)
	if out.Executed {
		t.Error("fortify executed without material")
	}
	if s.Material != 100 || s.FortBuildCount[models.LocationGate] != 2 {
		t.Error("refusal mutated state")
	}

	s = models.NewGameState()
	out = applyAction(rng, s, ActionFortify, "fortify the basement", models.LangEN, lib)
	if out.Executed {
		t.Error("fortify executed at max level")
	}
	if s.FortLevel[models.LocationBasement] != 3 {
		t.Error("refusal mutated the basement works")
	}
}

func TestHealArithmetic(t *testing.T) {
	lib := loadLibrary(t)
	s := models.NewGameState()
	s.Wounded = 10
	s.WoundedTimer = 400
	startSoldiers := s.Soldiers
	startMorale := s.Morale
	rng := rand.New(rand.NewSource(3))

	out := applyAction(rng, s, ActionHeal, "treat the wounded", models.LangEN, lib)
	if !out.Executed {
		t.Fatal("heal refused with wounded and medkits on hand")
	}
	treated := 10 - s.Wounded
	if treated < 2 || treated > 5 {
		t.Fatalf("treated %d wounded, want 2..5", treated)
	}
	if s.Soldiers != startSoldiers+treated {
		t.Errorf("soldiers = %d, want %d", s.Soldiers, startSoldiers+treated)
	}
	if s.Medkits != 40-treated {
		t.Errorf("medkits = %d, want %d", s.Medkits, 40-treated)
	}
	if s.Morale != min(100, startMorale+treated*2) {
		t.Errorf("morale = %d, want %d", s.Morale, startMorale+treated*2)
	}
	if want := max(0, 400-treated*90); s.WoundedTimer != want {
		t.Errorf("wounded timer = %d, want %d", s.WoundedTimer, want)
	}
}

func TestHealRefusesWithNothingToDo(t *testing.T) {
	lib := loadLibrary(t)
	s := models.NewGameState()
	rng := rand.New(rand.NewSource(4))
	if out := applyAction(rng, s, ActionHeal, "treat the wounded", models.LangEN, lib); out.Executed {
		t.Error("heal executed with zero wounded")
	}
	s.Wounded = 5
	s.Medkits = 0
	if out := applyAction(rng, s, ActionHeal, "treat the wounded", models.LangEN, lib); out.Executed {
		t.Error("heal executed with zero medkits")
	}
}

func TestRestEffects(t *testing.T) {
	lib := loadLibrary(t)
	s := models.NewGameState()
	s.Health = 80
	s.TurnCount = 7
	rng := rand.New(rand.NewSource(5))

	out := applyAction(rng, s, ActionRest, "let the men rest", models.LangEN, lib)
	if !out.Executed || out.TimeCost != 120 || out.SiegeDelta != 35 {
		t.Fatalf("rest outcome = %+v", out)
	}
	if s.Morale != 90 || s.Health != 85 {
		t.Errorf("morale/health = %d/%d, want 90/85", s.Morale, s.Health)
	}
	if s.LastRestTurn != 8 {
		t.Errorf("last rest turn = %d, want 8", s.LastRestTurn)
	}
}

func TestRaidBlockedInDaylight(t *testing.T) {
	lib := loadLibrary(t)
	s := models.NewGameState()
	s.CurrentTime = "14:00"
	rng := rand.New(rand.NewSource(6))

	out := applyAction(rng, s, ActionRaid, "raid the enemy camp", models.LangEN, lib)
	if out.Executed {
		t.Error("raid executed in daylight")
	}
	if s.AggressiveCount != 0 {
		t.Error("blocked raid counted as aggression")
	}
}

func TestRaidAtNightCountsAggression(t *testing.T) {
	lib := loadLibrary(t)
	s := models.NewGameState()
	s.CurrentTime = "02:00"
	rng := rand.New(rand.NewSource(7))

	out := applyAction(rng, s, ActionRaid, "raid the enemy camp", models.LangEN, lib)
	if !out.Executed {
		t.Fatal("night raid refused")
	}
	if s.AggressiveCount != 1 {
		t.Errorf("aggressive count = %d, want 1", s.AggressiveCount)
	}
	if out.TimeCost != 60 {
		t.Errorf("raid time cost = %d, want 60", out.TimeCost)
	}
}

func TestFlagSequence(t *testing.T) {
	lib := loadLibrary(t)
	s := models.NewGameState()
	rng := rand.New(rand.NewSource(8))

	// Not on the roof: refused.
	if out := applyAction(rng, s, ActionRaiseFlag, "raise the flag", models.LangEN, lib); out.Executed {
		t.Fatal("flag raised away from the rooftop")
	}

	s.Location = models.LocationRooftop
	out := applyAction(rng, s, ActionRaiseFlag, "raise the flag", models.LangEN, lib)
	if !out.Executed || !s.FlagWarned || s.HasFlagRaised {
		t.Fatalf("first rooftop order should only warn: %+v, warned=%v raised=%v", out, s.FlagWarned, s.HasFlagRaised)
	}

	out = applyAction(rng, s, ActionRaiseFlag, "raise the flag", models.LangEN, lib)
	if !out.Executed || !s.HasFlagRaised {
		t.Fatal("second rooftop order should raise the flag")
	}
	if s.Morale != 100 {
		t.Errorf("morale = %d, want 100 (80 + 30 clamped)", s.Morale)
	}
	if s.MinMorale != 30 {
		t.Errorf("min morale = %d, want 30", s.MinMorale)
	}
	if out.SiegeDelta != 50 {
		t.Errorf("siege delta = %d, want 50", out.SiegeDelta)
	}

	// Already flying: informational refusal.
	if out := applyAction(rng, s, ActionRaiseFlag, "raise the flag", models.LangEN, lib); out.Executed {
		t.Error("third order executed against a flying flag")
	}
}

func TestMoraleFloorAfterFlag(t *testing.T) {
	s := models.NewGameState()
	s.MinMorale = 30
	s.Morale = 32
	addMorale(s, -50)
	if s.Morale != 30 {
		t.Errorf("morale = %d, want floor 30", s.Morale)
	}
	addMorale(s, 200)
	if s.Morale != 100 {
		t.Errorf("morale = %d, want cap 100", s.Morale)
	}
}

func TestMoveUpdatesLocation(t *testing.T) {
	lib := loadLibrary(t)
	s := models.NewGameState()
	rng := rand.New(rand.NewSource(9))

	out := applyAction(rng, s, ActionMove, "move to the rooftop", models.LangEN, lib)
	if !out.Executed {
		t.Fatal("move refused")
	}
	if s.Location != models.LocationRooftop {
		t.Errorf("location = %q, want rooftop", s.Location)
	}

	prev := s.Location
	out = applyAction(rng, s, ActionMove, "move to the moon", models.LangEN, lib)
	if out.Executed || s.Location != prev {
		t.Error("move to unknown position executed")
	}
}

func TestSupplyRequestIsAlwaysRefused(t *testing.T) {
	lib := loadLibrary(t)
	s := models.NewGameState()
	before := *s
	rng := rand.New(rand.NewSource(10))

	out := applyAction(rng, s, ActionSupplyRequest, "request supplies", models.LangEN, lib)
	if out.Executed {
		t.Error("supply request executed; the blockade is total")
	}
	if s.Ammo != before.Ammo || s.Medkits != before.Medkits {
		t.Error("refusal mutated stocks")
	}
}
