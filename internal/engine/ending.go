package engine

import (
	"fmt"

	"github.com/tatianab/lone-garrison/internal/models"
)

const (
	soldierFloor        = 20 // fewer effectives than this and the position falls
	victoryDay          = 5  // survive past this day to win by endurance
	aggressionThreshold = 3  // more offensives than this marks a reckless commander
)

// evaluateDefeat sub-classifies a lost position by the flags the
// playthrough accumulated, in priority order.
func evaluateDefeat(s *models.GameState) models.Ending {
	if s.AggressiveCount > aggressionThreshold {
		return models.EndingDefeatAssault
	}
	if s.HasFlagRaised {
		return models.EndingDefeatMartyr
	}
	return models.EndingDefeatGeneric
}

// scoreFor produces the final rank and report for an ending. For hold
// and generic outcomes the wording is banded by survivor count.
func scoreFor(s *models.GameState, ending models.Ending) (rank, report string) {
	switch ending {
	case models.EndingDefeatDeserter:
		return "The Coward",
			"You abandoned the battalion before the battle had truly begun. Your name survives only on a charge sheet."
	case models.EndingDefeatAssault:
		return "The Reckless Gambler",
			"The orders said hold. You attacked, and attacked again, until there was no one left to hold anything. The position fell early, and for nothing."
	case models.EndingDefeatMartyr:
		return "Heroes of the Nation",
			"The garrison died to the last post, and the flag was still flying when the building fell. That image will outlive every man who saw it."
	case models.EndingVictoryRetreat:
		return "The Lone Battalion",
			"Under orders, you brought the survivors across the bridge into the concession. A bitter ending, disarmed by neutrals, but the battalion lives, and so does what it proved."
	}

	survivors := s.TotalSurvivors()
	rank = "Duty Done"
	report = fmt.Sprintf("You completed the assignment, at terrible cost. %d men walked out; %d of the enemy did not.", survivors, s.EnemiesKilled)
	switch {
	case survivors > 300:
		rank = "A Legend of the Defense"
		report = fmt.Sprintf("A miracle: %d men still standing at the end, with %d enemy dead in front of the walls. This defense will be taught for a century.", survivors, s.EnemiesKilled)
	case survivors > 200:
		rank = "Backbone of the Nation"
		report = fmt.Sprintf("You brought the bulk of the battalion through: %d survivors, %d enemy killed. The army needed this, and you delivered it.", survivors, s.EnemiesKilled)
	case survivors > 100:
		rank = "Fought to the End"
		report = fmt.Sprintf("More than half the battalion is gone, %d remain, but the flag never came down and %d of the enemy paid for the ground.", survivors, s.EnemiesKilled)
	}

	if ending == models.EndingDefeatGeneric {
		report = fmt.Sprintf("The warehouse fell and the battalion fell with it. The enemy counted %d dead for their prize.", s.EnemiesKilled)
	}
	return rank, report
}

// endingNarrative is the deterministic closing text per ending kind.
func endingNarrative(ending models.Ending, rank, report string) string {
	switch ending {
	case models.EndingDefeatDeserter:
		return "You did not even wait for the general assault. At the bridgehead, out of uniform, you walk into the muzzles of the gendarmerie post.\n\nThere are dead men in this army, but no runaways.\n\nEnding: The Coward"
	case models.EndingVictoryRetreat:
		return "In the small hours the order finally comes down from the regiment: withdraw. The battalion crosses the bridge at a dead run under searchlights and machine-gun fire, into the concession and out of the battle. The world already knows its name.\n\nEnding: The Lone Battalion"
	case models.EndingDefeatAssault:
		return fmt.Sprintf("After one reckless offensive too many there is no one left standing to hold the line. The enemy steps over the wreckage of your attacks and into the warehouse.\n\nEnding: %s\n%s", rank, report)
	case models.EndingDefeatMartyr:
		return fmt.Sprintf("The warehouse is breached at last. But above the smoke the flag is still there, and for a long moment nobody on either side gives an order.\n\nEnding: %s\n%s", rank, report)
	case models.EndingVictoryHold:
		return fmt.Sprintf("Six days. Against everything across the river, the position held for six full days, with the whole world watching.\n\nEnding: %s\n%s", rank, report)
	default:
		return fmt.Sprintf("The battle for the warehouse is over.\n\nFinal assessment: %s\n%s", rank, report)
	}
}
