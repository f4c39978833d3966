package engine

import "math/rand"

// attackPlan is the scheduler's decision for one turn.
type attackPlan struct {
	Triggered bool
	Scale     AttackScale
	Kind      DamageKind
}

const siegeAttackDecrement = 50

// rollAttack runs the escalation scheduler: given the meter after this
// turn's increase, decide whether an assault fires and what shape it
// takes. Returns the meter after any trigger decrement. The air-raid
// roll is independent of the main meter and only live in daylight;
// flying the flag makes the garrison a much better target.
func rollAttack(rng *rand.Rand, meter, day, hour int, flagRaised bool) (int, attackPlan) {
	var plan attackPlan

	if meter > 10 && rng.Float64()*100 < float64(meter) {
		plan.Triggered = true
		meter -= siegeAttackDecrement
		if meter < 0 {
			meter = 0
		}

		switch {
		case meter > 80 || (day >= 3 && rng.Float64() < 0.3):
			plan.Scale = ScaleLarge
		case meter > 40:
			plan.Scale = ScaleMedium
		default:
			plan.Scale = ScaleSmall
		}

		if hour >= 8 && hour <= 18 && rng.Float64() < 0.6 {
			plan.Kind = DamageArtillery
		} else {
			plan.Kind = DamageInfantry
		}
		return meter, plan
	}

	// Secondary roll: air attack even when the meter held.
	if flagRaised && hour >= 6 && hour <= 17 && rng.Float64() < 0.4 {
		return meter, attackPlan{Triggered: true, Scale: ScaleMedium, Kind: DamageBombing}
	}
	if hour >= 8 && hour <= 16 && rng.Float64() < 0.25 {
		return meter, attackPlan{Triggered: true, Scale: ScaleSmall, Kind: DamageBombing}
	}
	return meter, plan
}
