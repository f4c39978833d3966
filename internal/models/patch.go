package models

import (
	"maps"
	"slices"
)

// Patch is a partial GameState update. Nil fields are untouched; slices
// and maps replace the previous value wholesale when set. The
// orchestrator computes its turn on a clone of the state and returns
// Diff(prev, next); the presentation layer applies it with Apply, which
// is the only place a live GameState is ever mutated.
type Patch struct {
	Location *Location `yaml:"location,omitempty" json:"location,omitempty"`

	Soldiers     *int `yaml:"soldiers,omitempty" json:"soldiers,omitempty"`
	Wounded      *int `yaml:"wounded,omitempty" json:"wounded,omitempty"`
	WoundedTimer *int `yaml:"wounded_timer,omitempty" json:"wounded_timer,omitempty"`

	Roster        []Soldier      `yaml:"roster,omitempty" json:"roster,omitempty"`
	SupportSquads []SupportSquad `yaml:"support_squads,omitempty" json:"support_squads,omitempty"`

	Morale    *int `yaml:"morale,omitempty" json:"morale,omitempty"`
	MinMorale *int `yaml:"min_morale,omitempty" json:"min_morale,omitempty"`
	Health    *int `yaml:"health,omitempty" json:"health,omitempty"`

	Day          *int    `yaml:"day,omitempty" json:"day,omitempty"`
	CurrentTime  *string `yaml:"current_time,omitempty" json:"current_time,omitempty"`
	TurnCount    *int    `yaml:"turn_count,omitempty" json:"turn_count,omitempty"`
	LastRestTurn *int    `yaml:"last_rest_turn,omitempty" json:"last_rest_turn,omitempty"`

	TutorialStep *int `yaml:"tutorial_step,omitempty" json:"tutorial_step,omitempty"`
	SiegeMeter   *int `yaml:"siege_meter,omitempty" json:"siege_meter,omitempty"`

	ActiveCard      *TacticalCard `yaml:"active_card,omitempty" json:"active_card,omitempty"`
	ClearActiveCard bool          `yaml:"clear_active_card,omitempty" json:"clear_active_card,omitempty"`

	Ammo        *int `yaml:"ammo,omitempty" json:"ammo,omitempty"`
	SupportAmmo *int `yaml:"support_ammo,omitempty" json:"support_ammo,omitempty"`
	Grenades    *int `yaml:"grenades,omitempty" json:"grenades,omitempty"`
	Material    *int `yaml:"material,omitempty" json:"material,omitempty"`
	Medkits     *int `yaml:"medkits,omitempty" json:"medkits,omitempty"`

	HasFlagRaised *bool `yaml:"has_flag_raised,omitempty" json:"has_flag_raised,omitempty"`
	FlagWarned    *bool `yaml:"flag_warned,omitempty" json:"flag_warned,omitempty"`

	EnemiesKilled   *int     `yaml:"enemies_killed,omitempty" json:"enemies_killed,omitempty"`
	AggressiveCount *int     `yaml:"aggressive_count,omitempty" json:"aggressive_count,omitempty"`
	TriggeredEvents []string `yaml:"triggered_events,omitempty" json:"triggered_events,omitempty"`
	UsedCards       []string `yaml:"used_cards,omitempty" json:"used_cards,omitempty"`

	SoldierDistribution map[Location]int `yaml:"soldier_distribution,omitempty" json:"soldier_distribution,omitempty"`
	FortLevel           map[Location]int `yaml:"fort_level,omitempty" json:"fort_level,omitempty"`
	FortBuildCount      map[Location]int `yaml:"fort_build_count,omitempty" json:"fort_build_count,omitempty"`

	IsGameOver    *bool   `yaml:"is_game_over,omitempty" json:"is_game_over,omitempty"`
	GameResult    *Ending `yaml:"game_result,omitempty" json:"game_result,omitempty"`
	FinalRank     *string `yaml:"final_rank,omitempty" json:"final_rank,omitempty"`
	FinalReport   *string `yaml:"final_report,omitempty" json:"final_report,omitempty"`
	WavesRepelled *int    `yaml:"waves_repelled,omitempty" json:"waves_repelled,omitempty"`
}

// Diff records every field where next differs from prev. Composite
// fields are captured as copies so the patch stays immutable even if
// next is mutated afterwards.
func Diff(prev, next *GameState) Patch {
	var p Patch
	if prev.Location != next.Location {
		p.Location = ptr(next.Location)
	}
	p.Soldiers = diffInt(prev.Soldiers, next.Soldiers)
	p.Wounded = diffInt(prev.Wounded, next.Wounded)
	p.WoundedTimer = diffInt(prev.WoundedTimer, next.WoundedTimer)
	if !slices.Equal(prev.Roster, next.Roster) {
		p.Roster = append([]Soldier(nil), next.Roster...)
	}
	if !slices.Equal(prev.SupportSquads, next.SupportSquads) {
		p.SupportSquads = append([]SupportSquad(nil), next.SupportSquads...)
	}
	p.Morale = diffInt(prev.Morale, next.Morale)
	p.MinMorale = diffInt(prev.MinMorale, next.MinMorale)
	p.Health = diffInt(prev.Health, next.Health)
	p.Day = diffInt(prev.Day, next.Day)
	if prev.CurrentTime != next.CurrentTime {
		p.CurrentTime = ptr(next.CurrentTime)
	}
	p.TurnCount = diffInt(prev.TurnCount, next.TurnCount)
	p.LastRestTurn = diffInt(prev.LastRestTurn, next.LastRestTurn)
	p.TutorialStep = diffInt(prev.TutorialStep, next.TutorialStep)
	p.SiegeMeter = diffInt(prev.SiegeMeter, next.SiegeMeter)
	switch {
	case next.ActiveCard == nil && prev.ActiveCard != nil:
		p.ClearActiveCard = true
	case next.ActiveCard != nil && (prev.ActiveCard == nil || *prev.ActiveCard != *next.ActiveCard):
		card := *next.ActiveCard
		p.ActiveCard = &card
	}
	p.Ammo = diffInt(prev.Ammo, next.Ammo)
	p.SupportAmmo = diffInt(prev.SupportAmmo, next.SupportAmmo)
	p.Grenades = diffInt(prev.Grenades, next.Grenades)
	p.Material = diffInt(prev.Material, next.Material)
	p.Medkits = diffInt(prev.Medkits, next.Medkits)
	p.HasFlagRaised = diffBool(prev.HasFlagRaised, next.HasFlagRaised)
	p.FlagWarned = diffBool(prev.FlagWarned, next.FlagWarned)
	p.EnemiesKilled = diffInt(prev.EnemiesKilled, next.EnemiesKilled)
	p.AggressiveCount = diffInt(prev.AggressiveCount, next.AggressiveCount)
	if !slices.Equal(prev.TriggeredEvents, next.TriggeredEvents) {
		p.TriggeredEvents = append([]string(nil), next.TriggeredEvents...)
	}
	if !slices.Equal(prev.UsedCards, next.UsedCards) {
		p.UsedCards = append([]string(nil), next.UsedCards...)
	}
	if !maps.Equal(prev.SoldierDistribution, next.SoldierDistribution) {
		p.SoldierDistribution = cloneIntMap(next.SoldierDistribution)
	}
	if !maps.Equal(prev.FortLevel, next.FortLevel) {
		p.FortLevel = cloneIntMap(next.FortLevel)
	}
	if !maps.Equal(prev.FortBuildCount, next.FortBuildCount) {
		p.FortBuildCount = cloneIntMap(next.FortBuildCount)
	}
	p.IsGameOver = diffBool(prev.IsGameOver, next.IsGameOver)
	if prev.GameResult != next.GameResult {
		p.GameResult = ptr(next.GameResult)
	}
	if prev.FinalRank != next.FinalRank {
		p.FinalRank = ptr(next.FinalRank)
	}
	if prev.FinalReport != next.FinalReport {
		p.FinalReport = ptr(next.FinalReport)
	}
	p.WavesRepelled = diffInt(prev.WavesRepelled, next.WavesRepelled)
	return p
}

// Apply merges the patch into s.
func (p Patch) Apply(s *GameState) {
	setIf(&s.Location, p.Location)
	setIf(&s.Soldiers, p.Soldiers)
	setIf(&s.Wounded, p.Wounded)
	setIf(&s.WoundedTimer, p.WoundedTimer)
	if p.Roster != nil {
		s.Roster = append([]Soldier(nil), p.Roster...)
	}
	if p.SupportSquads != nil {
		s.SupportSquads = append([]SupportSquad(nil), p.SupportSquads...)
	}
	setIf(&s.Morale, p.Morale)
	setIf(&s.MinMorale, p.MinMorale)
	setIf(&s.Health, p.Health)
	setIf(&s.Day, p.Day)
	setIf(&s.CurrentTime, p.CurrentTime)
	setIf(&s.TurnCount, p.TurnCount)
	setIf(&s.LastRestTurn, p.LastRestTurn)
	setIf(&s.TutorialStep, p.TutorialStep)
	setIf(&s.SiegeMeter, p.SiegeMeter)
	if p.ClearActiveCard {
		s.ActiveCard = nil
	} else if p.ActiveCard != nil {
		card := *p.ActiveCard
		s.ActiveCard = &card
	}
	setIf(&s.Ammo, p.Ammo)
	setIf(&s.SupportAmmo, p.SupportAmmo)
	setIf(&s.Grenades, p.Grenades)
	setIf(&s.Material, p.Material)
	setIf(&s.Medkits, p.Medkits)
	setIf(&s.HasFlagRaised, p.HasFlagRaised)
	setIf(&s.FlagWarned, p.FlagWarned)
	setIf(&s.EnemiesKilled, p.EnemiesKilled)
	setIf(&s.AggressiveCount, p.AggressiveCount)
	if p.TriggeredEvents != nil {
		s.TriggeredEvents = append([]string(nil), p.TriggeredEvents...)
	}
	if p.UsedCards != nil {
		s.UsedCards = append([]string(nil), p.UsedCards...)
	}
	if p.SoldierDistribution != nil {
		s.SoldierDistribution = cloneIntMap(p.SoldierDistribution)
	}
	if p.FortLevel != nil {
		s.FortLevel = cloneIntMap(p.FortLevel)
	}
	if p.FortBuildCount != nil {
		s.FortBuildCount = cloneIntMap(p.FortBuildCount)
	}
	setIf(&s.IsGameOver, p.IsGameOver)
	setIf(&s.GameResult, p.GameResult)
	setIf(&s.FinalRank, p.FinalRank)
	setIf(&s.FinalReport, p.FinalReport)
	setIf(&s.WavesRepelled, p.WavesRepelled)
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Location == nil && p.Soldiers == nil && p.Wounded == nil &&
		p.WoundedTimer == nil && p.Roster == nil && p.SupportSquads == nil &&
		p.Morale == nil && p.MinMorale == nil && p.Health == nil &&
		p.Day == nil && p.CurrentTime == nil && p.TurnCount == nil &&
		p.LastRestTurn == nil && p.TutorialStep == nil && p.SiegeMeter == nil &&
		p.ActiveCard == nil && !p.ClearActiveCard &&
		p.Ammo == nil && p.SupportAmmo == nil && p.Grenades == nil &&
		p.Material == nil && p.Medkits == nil &&
		p.HasFlagRaised == nil && p.FlagWarned == nil &&
		p.EnemiesKilled == nil && p.AggressiveCount == nil &&
		p.TriggeredEvents == nil && p.UsedCards == nil &&
		p.SoldierDistribution == nil && p.FortLevel == nil && p.FortBuildCount == nil &&
		p.IsGameOver == nil && p.GameResult == nil && p.FinalRank == nil &&
		p.FinalReport == nil && p.WavesRepelled == nil
}

func ptr[T any](v T) *T { return &v }

func diffInt(a, b int) *int {
	if a == b {
		return nil
	}
	return &b
}

func diffBool(a, b bool) *bool {
	if a == b {
		return nil
	}
	return &b
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
