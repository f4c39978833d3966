package engine

import (
	"math/rand"
	"testing"
)

func TestRollAttackQuietMeterNightNeverFires(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		meter, plan := rollAttack(rng, 10, 1, 3, false)
		if plan.Triggered {
			t.Fatalf("attack fired with meter 10 at night (iteration %d)", i)
		}
		if meter != 10 {
			t.Fatalf("meter changed without a trigger: %d", meter)
		}
	}
}

func TestRollAttackFullMeterAlwaysFires(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 200; i++ {
		meter, plan := rollAttack(rng, 100, 1, 3, false)
		if !plan.Triggered {
			t.Fatalf("full meter did not fire (iteration %d)", i)
		}
		if meter != 100-siegeAttackDecrement {
			t.Fatalf("meter after trigger = %d, want %d", meter, 100-siegeAttackDecrement)
		}
		if plan.Kind == DamageBombing {
			t.Fatal("main assault resolved as bombing")
		}
	}
}

func TestRollAttackMeterFloorsAtZero(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 500; i++ {
		meter, plan := rollAttack(rng, 30, 1, 3, false)
		if plan.Triggered && meter != 0 {
			t.Fatalf("meter went negative or was not floored: %d", meter)
		}
	}
}

func TestRollAttackArtilleryOnlyInDaylight(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < 500; i++ {
		_, plan := rollAttack(rng, 100, 1, 2, false)
		if plan.Triggered && plan.Kind == DamageArtillery {
			t.Fatal("artillery fired at 02:00")
		}
	}
}

func TestRollAttackFlagDrawsBombers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sawBombing := false
	for i := 0; i < 500; i++ {
		_, plan := rollAttack(rng, 0, 1, 10, true)
		if plan.Triggered {
			if plan.Kind != DamageBombing {
				t.Fatalf("zero meter trigger was not bombing: %+v", plan)
			}
			sawBombing = true
		}
	}
	if !sawBombing {
		t.Fatal("flag raised in daylight never drew an air attack in 500 rolls")
	}
}

func TestRollAttackNoBombingAtNight(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 500; i++ {
		_, plan := rollAttack(rng, 0, 1, 2, true)
		if plan.Triggered {
			t.Fatalf("air attack at 02:00: %+v", plan)
		}
	}
}
