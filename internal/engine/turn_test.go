package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/tatianab/lone-garrison/internal/models"
)

func newTestEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	e, err := New(context.Background(), Options{Seed: seed})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

// freePlayState is a mid-battle state parked in the small hours with a
// cold siege meter, so a single cheap action cannot trigger an attack
// and scenario tests stay deterministic.
func freePlayState() *models.GameState {
	s := models.NewGameState()
	s.TutorialStep = 3
	s.Day = 1
	s.CurrentTime = "02:00"
	s.SiegeMeter = 0
	return s
}

func processTurn(t *testing.T, e *Engine, s *models.GameState, command string) *models.TurnResult {
	t.Helper()
	res, err := e.ProcessTurn(context.Background(), s, command, "")
	if err != nil {
		t.Fatalf("ProcessTurn(%q): %v", command, err)
	}
	return res
}

func TestStartGameEntersTutorial(t *testing.T) {
	e := newTestEngine(t, 1)
	s := models.NewGameState()

	res := processTurn(t, e, s, StartCommand)
	res.Patch.Apply(s)

	if s.TutorialStep != 1 {
		t.Errorf("tutorial step = %d, want 1", s.TutorialStep)
	}
	if s.Day != 0 || s.CurrentTime != "19:00" {
		t.Errorf("opening clock = day %d %s, want day 0 19:00", s.Day, s.CurrentTime)
	}
	if res.EnemyIntel == "" {
		t.Error("no opening intel")
	}
}

func TestTutorialFlow(t *testing.T) {
	e := newTestEngine(t, 2)
	s := models.NewGameState()
	processTurn(t, e, s, StartCommand).Patch.Apply(s)

	// Off-script orders are nudged back without touching state.
	res := processTurn(t, e, s, "give a speech")
	if !res.Patch.IsZero() {
		t.Fatal("off-script tutorial order changed state")
	}

	res = processTurn(t, e, s, "fortify the ground floor")
	res.Patch.Apply(s)
	if s.TutorialStep != 2 {
		t.Fatalf("tutorial step = %d, want 2", s.TutorialStep)
	}
	if s.FortLevel[models.LocationGate] != 2 || s.FortBuildCount[models.LocationGate] != 4 {
		t.Errorf("gate works = Lv.%d (%d builds), want Lv.2 (4 builds)",
			s.FortLevel[models.LocationGate], s.FortBuildCount[models.LocationGate])
	}
	if s.CurrentTime != "21:00" {
		t.Errorf("time = %s, want 21:00", s.CurrentTime)
	}

	res = processTurn(t, e, s, "let the men rest")
	res.Patch.Apply(s)
	if s.TutorialStep != 3 {
		t.Fatalf("tutorial step = %d, want 3", s.TutorialStep)
	}
	if s.Day != 1 || s.CurrentTime != "08:00" {
		t.Errorf("clock = day %d %s, want day 1 08:00", s.Day, s.CurrentTime)
	}
	if s.SiegeMeter != 20 {
		t.Errorf("siege meter = %d, want 20", s.SiegeMeter)
	}
	if s.Morale != 95 {
		t.Errorf("morale = %d, want 95", s.Morale)
	}
	if res.Event != models.EventNewDay {
		t.Errorf("event = %q, want new_day", res.Event)
	}
}

func TestRetreatDuringTutorial(t *testing.T) {
	for _, step := range []int{1, 2} {
		e := newTestEngine(t, int64(20+step))
		s := models.NewGameState()
		processTurn(t, e, s, StartCommand).Patch.Apply(s)
		if step == 2 {
			processTurn(t, e, s, "fortify the ground floor").Patch.Apply(s)
		}

		res := processTurn(t, e, s, "retreat across the bridge")
		res.Patch.Apply(s)
		if !s.IsGameOver || s.GameResult != models.EndingDefeatDeserter {
			t.Errorf("step %d: retreat gave over=%v result=%q, want defeat_deserter",
				step, s.IsGameOver, s.GameResult)
		}
		if res.Event != models.EventGameOver {
			t.Errorf("step %d: event = %q, want game_over", step, res.Event)
		}
	}
}

func TestStartGameKeywordRestartsMidBattle(t *testing.T) {
	e := newTestEngine(t, 9)
	s := freePlayState()
	s.Soldiers = 200
	s.Morale = 40

	res := processTurn(t, e, s, "start_game now")
	res.Patch.Apply(s)

	if res.Narrative == "" {
		t.Error("restart got no narrative")
	}
	if s.TutorialStep != 1 {
		t.Errorf("tutorial step = %d, want 1", s.TutorialStep)
	}
	if s.Soldiers != 354 || s.Day != 0 || s.CurrentTime != "19:00" {
		t.Errorf("restart left stale state: %d soldiers, day %d %s",
			s.Soldiers, s.Day, s.CurrentTime)
	}
}

func TestIdleTurnLeavesStateUntouched(t *testing.T) {
	e := newTestEngine(t, 3)
	s := freePlayState()

	res := processTurn(t, e, s, "who are you")
	if !res.Patch.IsZero() {
		t.Error("conversational input changed state")
	}
	if res.Narrative == "" {
		t.Error("conversational input got no response")
	}
	if res.Event != models.EventNone {
		t.Errorf("event = %q, want none", res.Event)
	}
}

func TestSpeechTurnAdvancesClock(t *testing.T) {
	e := newTestEngine(t, 4)
	s := freePlayState()

	res := processTurn(t, e, s, "give a speech to the men")
	res.Patch.Apply(s)

	if s.Morale != 83 {
		t.Errorf("morale = %d, want 83", s.Morale)
	}
	if s.CurrentTime != "03:00" {
		t.Errorf("time = %s, want 03:00", s.CurrentTime)
	}
	if s.SiegeMeter != 10 {
		t.Errorf("siege meter = %d, want 10", s.SiegeMeter)
	}
	if s.TurnCount != 1 {
		t.Errorf("turn count = %d, want 1", s.TurnCount)
	}
	if res.EnemyIntel == "" {
		t.Error("executed turn carried no intel")
	}
}

func TestProcessTurnDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t, 5)
	s := freePlayState()
	snapshot := s.Clone()

	for _, cmd := range []string{"give a speech", "search the basement", "observe the enemy", "hello"} {
		processTurn(t, e, s, cmd)
	}
	if !models.Diff(snapshot, s).IsZero() {
		t.Error("ProcessTurn mutated its input state")
	}
}

func TestRetreatGates(t *testing.T) {
	e := newTestEngine(t, 6)

	early := freePlayState()
	res := processTurn(t, e, early, "fall back across the bridge")
	res.Patch.Apply(early)
	if !early.IsGameOver || early.GameResult != models.EndingDefeatDeserter {
		t.Errorf("day 1 retreat = %q, want defeat_deserter", early.GameResult)
	}

	mid := freePlayState()
	mid.Day = 3
	res = processTurn(t, e, mid, "fall back across the bridge")
	if !res.Patch.IsZero() {
		t.Error("denied retreat changed state")
	}
	if res.Event != models.EventNone {
		t.Errorf("denied retreat event = %q, want none", res.Event)
	}

	late := freePlayState()
	late.Day = 4
	res = processTurn(t, e, late, "fall back across the bridge")
	res.Patch.Apply(late)
	if !late.IsGameOver || late.GameResult != models.EndingVictoryRetreat {
		t.Errorf("day 4 retreat = %q, want victory_retreat", late.GameResult)
	}
	if res.Event != models.EventVictory {
		t.Errorf("event = %q, want victory", res.Event)
	}
	if late.FinalRank == "" || late.FinalReport == "" {
		t.Error("ending carried no rank or report")
	}
}

func TestBattleOverGuard(t *testing.T) {
	e := newTestEngine(t, 7)
	s := freePlayState()
	s.IsGameOver = true
	s.GameResult = models.EndingDefeatGeneric

	res := processTurn(t, e, s, "fortify the gate")
	if !res.Patch.IsZero() {
		t.Error("post-game command changed state")
	}
	if res.Narrative == "" {
		t.Error("post-game command got no response")
	}

	// start_game still restarts.
	res = processTurn(t, e, s, StartCommand)
	res.Patch.Apply(s)
	if s.IsGameOver || s.TutorialStep != 1 {
		t.Error("start command did not restart a finished game")
	}
}

func TestCollapseEndsTheGame(t *testing.T) {
	e := newTestEngine(t, 8)
	s := freePlayState()
	s.Soldiers = 15

	res := processTurn(t, e, s, "give a speech to the men")
	res.Patch.Apply(s)
	if !s.IsGameOver {
		t.Fatal("game continued below the soldier floor")
	}
	if s.GameResult != models.EndingDefeatGeneric {
		t.Errorf("ending = %q, want defeat_generic", s.GameResult)
	}
	if res.Event != models.EventGameOver {
		t.Errorf("event = %q, want game_over", res.Event)
	}
	if res.Effect != models.EffectHeavyDamage {
		t.Errorf("effect = %q, want heavy-damage", res.Effect)
	}
}

func TestMartyrEndingWithFlagFlying(t *testing.T) {
	e := newTestEngine(t, 9)
	s := freePlayState()
	s.Soldiers = 15
	s.HasFlagRaised = true
	s.MinMorale = 30

	res := processTurn(t, e, s, "give a speech to the men")
	res.Patch.Apply(s)
	if s.GameResult != models.EndingDefeatMartyr {
		t.Errorf("ending = %q, want defeat_martyr", s.GameResult)
	}
}

func TestRecklessEndingAfterRepeatedOffensives(t *testing.T) {
	e := newTestEngine(t, 10)
	s := freePlayState()
	s.Soldiers = 15
	s.AggressiveCount = 4

	res := processTurn(t, e, s, "give a speech to the men")
	res.Patch.Apply(s)
	if s.GameResult != models.EndingDefeatAssault {
		t.Errorf("ending = %q, want defeat_assault", s.GameResult)
	}
}

func TestHoldVictoryPastDayFive(t *testing.T) {
	e := newTestEngine(t, 11)
	s := freePlayState()
	s.Day = 5
	s.CurrentTime = "23:30"

	res := processTurn(t, e, s, "let the men rest")
	res.Patch.Apply(s)
	if !s.IsGameOver || s.GameResult != models.EndingVictoryHold {
		t.Fatalf("ending = %q (over=%v), want victory_hold", s.GameResult, s.IsGameOver)
	}
	if s.Day != 6 {
		t.Errorf("day = %d, want 6", s.Day)
	}
	if res.Event != models.EventVictory {
		t.Errorf("event = %q, want victory", res.Event)
	}
}

func TestFullMeterTriggersAttack(t *testing.T) {
	e := newTestEngine(t, 12)
	s := freePlayState()
	s.SiegeMeter = 100

	res := processTurn(t, e, s, "give a speech to the men")
	if res.Event != models.EventAttack {
		t.Fatalf("event = %q, want attack", res.Event)
	}
	if res.AttackLocation == "" {
		t.Error("attack carried no location")
	}
	res.Patch.Apply(s)
	if s.SiegeMeter > 50 {
		t.Errorf("siege meter = %d after release, want <= 50", s.SiegeMeter)
	}
	if s.EnemiesKilled == 0 {
		t.Error("an assault was repelled without enemy losses")
	}
	if s.WavesRepelled != 1 {
		t.Errorf("waves repelled = %d, want 1", s.WavesRepelled)
	}
}

func TestDilemmaResolutionMarksTriggered(t *testing.T) {
	e := newTestEngine(t, 13)
	s := freePlayState()

	res := processTurn(t, e, s, "resolve:brit_ceasefire:1")
	res.Patch.Apply(s)
	if s.Morale != 85 {
		t.Errorf("morale = %d, want 85", s.Morale)
	}
	found := false
	for _, id := range s.TriggeredEvents {
		if id == "brit_ceasefire" {
			found = true
		}
	}
	if !found {
		t.Error("resolved dilemma not recorded as triggered")
	}
	if res.Event != models.EventNone {
		t.Errorf("event = %q, want none", res.Event)
	}
}

func TestDilemmaComplyTradesMoraleForMedkits(t *testing.T) {
	e := newTestEngine(t, 14)
	s := freePlayState()

	res := processTurn(t, e, s, "resolve:brit_ceasefire:0")
	res.Patch.Apply(s)
	if s.Morale != 75 {
		t.Errorf("morale = %d, want 75", s.Morale)
	}
	if s.Medkits != 45 {
		t.Errorf("medkits = %d, want 45", s.Medkits)
	}
}

func TestEasterEggRestoresMorale(t *testing.T) {
	e := newTestEngine(t, 15)
	s := freePlayState()
	s.Morale = 40
	s.Health = 85

	res := processTurn(t, e, s, "long live the 88th division")
	res.Patch.Apply(s)
	if s.Morale != 100 {
		t.Errorf("morale = %d, want 100", s.Morale)
	}
	if s.Health != 95 {
		t.Errorf("health = %d, want 95", s.Health)
	}
	if res.Effect != models.EffectShake {
		t.Errorf("effect = %q, want shake", res.Effect)
	}
}

func TestCommanderBioIsNarrativeOnly(t *testing.T) {
	e := newTestEngine(t, 16)
	s := freePlayState()

	res := processTurn(t, e, s, "tell me about xie jinyuan")
	if !res.Patch.IsZero() {
		t.Error("biography request changed state")
	}
	if res.Narrative == "" {
		t.Error("biography request got no response")
	}
}

func TestWoundedAttrition(t *testing.T) {
	e := newTestEngine(t, 17)
	s := freePlayState()
	s.Wounded = 8
	s.WoundedTimer = 700

	res := processTurn(t, e, s, "give a speech to the men")
	res.Patch.Apply(s)
	if s.Wounded >= 8 {
		t.Errorf("wounded = %d, want fewer than 8 after the timer ran out", s.Wounded)
	}
	if s.WoundedTimer != 660 {
		t.Errorf("wounded timer = %d, want 660", s.WoundedTimer)
	}
	if !strings.Contains(res.Narrative, "\n") {
		t.Error("attrition produced no narrative line")
	}
}

func TestChineseCommandFlow(t *testing.T) {
	e, err := New(context.Background(), Options{Seed: 18, Lang: models.LangZH})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()
	s := freePlayState()

	res, err := e.ProcessTurn(context.Background(), s, "鼓舞士气", "")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	res.Patch.Apply(s)
	if s.Morale != 83 {
		t.Errorf("morale = %d, want 83", s.Morale)
	}
}
