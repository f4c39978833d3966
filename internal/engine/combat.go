package engine

import (
	"math"
	"math/rand"
)

// AttackScale sizes an enemy assault.
type AttackScale string

const (
	ScaleSmall  AttackScale = "SMALL"
	ScaleMedium AttackScale = "MEDIUM"
	ScaleLarge  AttackScale = "LARGE"
)

// DamageKind is the delivery method of an assault.
type DamageKind string

const (
	DamageInfantry  DamageKind = "INFANTRY"
	DamageArtillery DamageKind = "ARTILLERY"
	DamageBombing   DamageKind = "BOMBING"
)

// CombatInput is everything the resolver needs; it reads no game state.
type CombatInput struct {
	Scale        AttackScale
	AvgFortLevel float64 // 0..3, averaged over the engaged positions
	ActiveSquads int
	Kind         DamageKind
	Melee        bool // both ammunition pools dry: cold steel only
}

// CombatOutcome is the resolver's verdict. All counts are >= 0.
type CombatOutcome struct {
	Casualties    int
	EnemiesKilled int
	EnemyCount    int
}

// ResolveCombat computes one engagement. Deterministic for a fixed rng,
// so encounters can be replayed in tests.
func ResolveCombat(rng *rand.Rand, in CombatInput) CombatOutcome {
	var power float64
	var enemyCount int
	switch in.Scale {
	case ScaleMedium:
		power = 15 + rng.Float64()*15
		enemyCount = 15 + rng.Intn(25)
	case ScaleLarge:
		power = 40 + rng.Float64()*40
		enemyCount = 50 + rng.Intn(100)
	default: // SMALL
		power = 5 + rng.Float64()*5
		enemyCount = 5 + rng.Intn(5)
	}

	switch in.Kind {
	case DamageArtillery:
		power *= 1.5
	case DamageBombing:
		power *= 2.0
	}

	// Lv0 10%, Lv1 35%, Lv2 60%, Lv3 85%; each squad adds 5%.
	mitigation := 0.1 + in.AvgFortLevel*0.25 + float64(in.ActiveSquads)*0.05
	mitigation = math.Min(0.95, mitigation)
	if in.Melee {
		mitigation = 0 // fortifications mean nothing at knife range
	}

	casualties := math.Ceil(power * (1 - mitigation))
	casualties = math.Floor(casualties * (0.8 + rng.Float64()*0.4))

	killEfficiency := 0.5 + in.AvgFortLevel*0.2 + float64(in.ActiveSquads)*0.3
	kills := int(float64(enemyCount) * killEfficiency)
	if maxKills := int(float64(enemyCount) * 1.2); kills > maxKills {
		kills = maxKills // reserves get caught too, but only so many
	}

	out := CombatOutcome{
		Casualties:    int(casualties),
		EnemiesKilled: kills,
		EnemyCount:    enemyCount,
	}
	if out.Casualties < 0 {
		out.Casualties = 0
	}
	if out.EnemiesKilled < 0 {
		out.EnemiesKilled = 0
	}
	return out
}
