package models

// Location is one of the fixed defensive positions inside the warehouse.
type Location string

const (
	LocationGate        Location = "ground-floor gate"
	LocationSecondFloor Location = "second-floor position"
	LocationRooftop     Location = "rooftop"
	LocationBasement    Location = "basement"
)

// AllLocations returns the positions in display order.
func AllLocations() []Location {
	return []Location{LocationGate, LocationSecondFloor, LocationRooftop, LocationBasement}
}

// Language selects which keyword tables the classifier matches against.
type Language string

const (
	LangEN Language = "en"
	LangZH Language = "zh"
)

// Ending classifies a finished game.
type Ending string

const (
	EndingOngoing        Ending = "ongoing"
	EndingVictoryHold    Ending = "victory_hold"    // held the position to the end
	EndingVictoryRetreat Ending = "victory_retreat" // ordered withdrawal, day 4+
	EndingDefeatAssault  Ending = "defeat_assault"  // bled out through reckless attacks
	EndingDefeatMartyr   Ending = "defeat_martyr"   // overrun with the flag flying
	EndingDefeatDeserter Ending = "defeat_deserter" // fled in the first days
	EndingDefeatGeneric  Ending = "defeat_generic"
)

type SoldierStatus string

const (
	SoldierAlive SoldierStatus = "alive"
	SoldierDead  SoldierStatus = "dead"
)

// Soldier is a named member of the roster. Dead soldiers stay on the
// roster forever; they are never revived or removed.
type Soldier struct {
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name"`
	Origin      string        `yaml:"origin" json:"origin"`
	Trait       string        `yaml:"trait" json:"trait"`
	Status      SoldierStatus `yaml:"status" json:"status"`
	DeathReason string        `yaml:"death_reason,omitempty" json:"death_reason,omitempty"`
}

type SquadStatus string

const (
	SquadActive    SquadStatus = "active"
	SquadDestroyed SquadStatus = "destroyed"
	SquadDisbanded SquadStatus = "disbanded"
)

// SupportSquad is a heavy-weapon team. Destroyed squads keep their record
// with the count forced to zero.
type SupportSquad struct {
	Name     string      `yaml:"name" json:"name"`
	Location Location    `yaml:"location" json:"location"`
	Count    int         `yaml:"count" json:"count"`
	Status   SquadStatus `yaml:"status" json:"status"`
}

// DilemmaOption is one selectable branch of a dilemma. ActionCmd is the
// command string the presentation layer sends back to resolve it.
type DilemmaOption struct {
	Label     string `yaml:"label" json:"label"`
	ActionCmd string `yaml:"action_cmd" json:"action_cmd"`
	RiskText  string `yaml:"risk_text,omitempty" json:"risk_text,omitempty"`
}

// Dilemma is a one-shot branching prompt surfaced between turns.
type Dilemma struct {
	ID          string          `yaml:"id" json:"id"`
	Title       string          `yaml:"title" json:"title"`
	Description string          `yaml:"description" json:"description"`
	Options     []DilemmaOption `yaml:"options" json:"options"`
}

// TacticalCard is a one-time opportunity the player may cash in by
// issuing its command.
type TacticalCard struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	EffectText  string `yaml:"effect_text" json:"effect_text"`
	ActionCmd   string `yaml:"action_cmd" json:"action_cmd"`
}

// GameState is the complete dynamic state of one playthrough. It is
// owned by the orchestrator and mutated only between turns, via Patch.
type GameState struct {
	Location Location `yaml:"location" json:"location"`

	Soldiers     int `yaml:"soldiers" json:"soldiers"`
	Wounded      int `yaml:"wounded" json:"wounded"`
	WoundedTimer int `yaml:"wounded_timer" json:"wounded_timer"` // minutes since last triage

	Roster        []Soldier      `yaml:"roster" json:"roster"`
	SupportSquads []SupportSquad `yaml:"support_squads" json:"support_squads"`

	Morale    int `yaml:"morale" json:"morale"`
	MinMorale int `yaml:"min_morale" json:"min_morale"`
	Health    int `yaml:"health" json:"health"` // structural integrity

	Day          int    `yaml:"day" json:"day"`
	CurrentTime  string `yaml:"current_time" json:"current_time"` // "HH:MM"
	TurnCount    int    `yaml:"turn_count" json:"turn_count"`
	LastRestTurn int    `yaml:"last_rest_turn" json:"last_rest_turn"`

	TutorialStep int           `yaml:"tutorial_step" json:"tutorial_step"` // 0 start, 3 free play
	SiegeMeter   int           `yaml:"siege_meter" json:"siege_meter"`     // 0-100
	ActiveCard   *TacticalCard `yaml:"active_card,omitempty" json:"active_card,omitempty"`

	Ammo        int `yaml:"ammo" json:"ammo"`                 // small-arms rounds
	SupportAmmo int `yaml:"support_ammo" json:"support_ammo"` // heavy-weapon rounds
	Grenades    int `yaml:"grenades" json:"grenades"`
	Material    int `yaml:"material" json:"material"` // sandbags, timber, rubble
	Medkits     int `yaml:"medkits" json:"medkits"`

	HasFlagRaised bool `yaml:"has_flag_raised" json:"has_flag_raised"`
	FlagWarned    bool `yaml:"flag_warned" json:"flag_warned"`

	EnemiesKilled   int      `yaml:"enemies_killed" json:"enemies_killed"`
	AggressiveCount int      `yaml:"aggressive_count" json:"aggressive_count"`
	TriggeredEvents []string `yaml:"triggered_events" json:"triggered_events"`
	UsedCards       []string `yaml:"used_cards" json:"used_cards"`

	SoldierDistribution map[Location]int `yaml:"soldier_distribution" json:"soldier_distribution"`
	FortLevel           map[Location]int `yaml:"fort_level" json:"fort_level"`
	FortBuildCount      map[Location]int `yaml:"fort_build_count" json:"fort_build_count"`

	IsGameOver    bool   `yaml:"is_game_over" json:"is_game_over"`
	GameResult    Ending `yaml:"game_result" json:"game_result"`
	FinalRank     string `yaml:"final_rank,omitempty" json:"final_rank,omitempty"`
	FinalReport   string `yaml:"final_report,omitempty" json:"final_report,omitempty"`
	WavesRepelled int    `yaml:"waves_repelled" json:"waves_repelled"`
}

// FortLevelCap is the highest fortification tier a position can reach.
const FortLevelCap = 3

// NewGameState returns the fixed starting position: the battalion as it
// stood on the first evening, before the tutorial.
func NewGameState() *GameState {
	return &GameState{
		Location: LocationGate,
		Soldiers: 354,
		Roster: []Soldier{
			{ID: "s1", Name: "Chen Shusheng", Origin: "Hubei", Trait: "volunteer for anything", Status: SoldierAlive},
			{ID: "s2", Name: "Yang Ruifu", Origin: "Tianjin", Trait: "company commander", Status: SoldierAlive},
			{ID: "s3", Name: "Wan Lianqing", Origin: "Hubei", Trait: "marksman", Status: SoldierAlive},
			{ID: "s4", Name: "Shi Dali", Origin: "Shandong", Trait: "strong as an ox", Status: SoldierAlive},
			{ID: "s5", Name: "Zhu Shengzhong", Origin: "Hubei", Trait: "short temper", Status: SoldierAlive},
			{ID: "s6", Name: "Qi Jiaming", Origin: "Sichuan", Trait: "old campaigner", Status: SoldierAlive},
			{ID: "s7", Name: "Tang Di", Origin: "Hunan", Trait: "company clerk", Status: SoldierAlive},
			{ID: "s8", Name: "Lei Xiong", Origin: "Hubei", Trait: "machine gunner", Status: SoldierAlive},
			{ID: "s9", Name: "Little Hubei", Origin: "Hubei", Trait: "youngest in the battalion", Status: SoldierAlive},
			{ID: "s10", Name: "Old Gourd", Origin: "Henan", Trait: "cook", Status: SoldierAlive},
			{ID: "s11", Name: "Wang Kanshan", Origin: "Zhejiang", Trait: "spotter", Status: SoldierAlive},
			{ID: "s12", Name: "Li Tiezhu", Origin: "Hebei", Trait: "sapper", Status: SoldierAlive},
		},
		SupportSquads: []SupportSquad{
			{Name: "1st Machine-Gun Company", Location: LocationGate, Count: 30, Status: SquadActive},
			{Name: "2nd Machine-Gun Company", Location: LocationSecondFloor, Count: 30, Status: SquadActive},
		},
		Morale:      80,
		MinMorale:   0,
		Health:      100,
		Day:         0,
		CurrentTime: "19:00",
		SiegeMeter:  10,
		Ammo:        45000,
		SupportAmmo: 18000,
		Grenades:    1000,
		Material:    4500,
		Medkits:     40,
		SoldierDistribution: map[Location]int{
			LocationGate:        140,
			LocationSecondFloor: 180,
			LocationRooftop:     10,
			LocationBasement:    24,
		},
		FortLevel: map[Location]int{
			LocationGate:        1,
			LocationSecondFloor: 1,
			LocationRooftop:     0,
			LocationBasement:    3,
		},
		FortBuildCount: map[Location]int{
			LocationGate:        2,
			LocationSecondFloor: 2,
			LocationRooftop:     0,
			LocationBasement:    6,
		},
		TriggeredEvents: []string{},
		UsedCards:       []string{},
		GameResult:      EndingOngoing,
	}
}

// Clone returns a deep copy. The orchestrator works on a clone so the
// caller's state is untouched until the patch is applied.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Roster = append([]Soldier(nil), s.Roster...)
	out.SupportSquads = append([]SupportSquad(nil), s.SupportSquads...)
	out.TriggeredEvents = append([]string(nil), s.TriggeredEvents...)
	out.UsedCards = append([]string(nil), s.UsedCards...)
	out.SoldierDistribution = cloneIntMap(s.SoldierDistribution)
	out.FortLevel = cloneIntMap(s.FortLevel)
	out.FortBuildCount = cloneIntMap(s.FortBuildCount)
	if s.ActiveCard != nil {
		card := *s.ActiveCard
		out.ActiveCard = &card
	}
	return &out
}

func cloneIntMap(m map[Location]int) map[Location]int {
	if m == nil {
		return nil
	}
	out := make(map[Location]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ActiveSquadCount reports how many support squads can still fire.
func (s *GameState) ActiveSquadCount() int {
	n := 0
	for _, sq := range s.SupportSquads {
		if sq.Status == SquadActive {
			n++
		}
	}
	return n
}

// TotalSurvivors counts everyone still standing: riflemen, wounded, and
// the members of active support squads.
func (s *GameState) TotalSurvivors() int {
	total := s.Soldiers + s.Wounded
	for _, sq := range s.SupportSquads {
		if sq.Status == SquadActive {
			total += sq.Count
		}
	}
	return total
}

// LivingRoster returns the indexes of roster members still alive.
func (s *GameState) LivingRoster() []int {
	var idx []int
	for i, sol := range s.Roster {
		if sol.Status == SoldierAlive {
			idx = append(idx, i)
		}
	}
	return idx
}

// EventKind tags what a turn amounted to, for the presentation layer.
type EventKind string

const (
	EventNone     EventKind = "none"
	EventAttack   EventKind = "attack"
	EventNewDay   EventKind = "new_day"
	EventGameOver EventKind = "game_over"
	EventVictory  EventKind = "victory"
)

// VisualEffect is a cosmetic hint for the presentation layer.
type VisualEffect string

const (
	EffectNone        VisualEffect = "none"
	EffectShake       VisualEffect = "shake"
	EffectHeavyDamage VisualEffect = "heavy-damage"
)

// TurnResult is the immutable output of one orchestrator invocation.
type TurnResult struct {
	Narrative      string       `yaml:"narrative" json:"narrative"`
	Patch          Patch        `yaml:"patch" json:"patch"`
	Event          EventKind    `yaml:"event" json:"event"`
	Effect         VisualEffect `yaml:"effect" json:"effect"`
	AttackLocation Location     `yaml:"attack_location,omitempty" json:"attack_location,omitempty"`
	Dilemma        *Dilemma     `yaml:"dilemma,omitempty" json:"dilemma,omitempty"`
	EnemyIntel     string       `yaml:"enemy_intel,omitempty" json:"enemy_intel,omitempty"`
}

// LogEntry is one line of the game log.
type LogEntry struct {
	ID     string `yaml:"id" json:"id"`
	Sender string `yaml:"sender" json:"sender"` // "system" or "user"
	Text   string `yaml:"text" json:"text"`
}
