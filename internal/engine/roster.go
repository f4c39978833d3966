package engine

import (
	"math/rand"
	"strings"

	"github.com/tatianab/lone-garrison/internal/content"
	"github.com/tatianab/lone-garrison/internal/models"
)

// applyNamedDeath gives aggregate casualties a face. With a chance
// scaling with the death count it marks one living roster member dead
// and returns a flavor line; the aggregate soldier counts are tracked
// separately and stay authoritative. Returns "" when nobody named fell.
func applyNamedDeath(rng *rand.Rand, s *models.GameState, deaths int, lib *content.Library) string {
	if deaths <= 0 {
		return ""
	}
	chance := float64(deaths) * 0.1
	if chance > 1.0 {
		chance = 1.0
	}
	living := s.LivingRoster()
	if len(living) == 0 || rng.Float64() >= chance {
		return ""
	}

	idx := living[rng.Intn(len(living))]
	s.Roster[idx].Status = models.SoldierDead
	s.Roster[idx].DeathReason = "combat"

	victim := s.Roster[idx]
	tmpl := pick(rng, lib.Pool("death_flavor"))
	return strings.NewReplacer(
		"{name}", victim.Name,
		"{origin}", victim.Origin,
		"{trait}", victim.Trait,
	).Replace(tmpl)
}

func pick[T any](rng *rand.Rand, pool []T) T {
	return pool[rng.Intn(len(pool))]
}
