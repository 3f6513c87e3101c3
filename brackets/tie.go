package brackets

import (
	"strconv"

	"github.com/Dosada05/tournament-draws/models"
)

// tieScore sums the collection values won by each side of a TEAM matchUp.
func tieScore(tieFormat *models.TieFormat, parent *models.MatchUp) [2]int {
	values := make(map[string]int)
	if tieFormat != nil {
		for _, c := range tieFormat.CollectionDefinitions {
			values[c.CollectionID] = c.MatchUpValue
		}
	}
	var score [2]int
	for _, tie := range parent.TieMatchUps {
		if tie.WinningSide != 1 && tie.WinningSide != 2 {
			continue
		}
		value := values[tie.CollectionID]
		if value == 0 {
			value = 1
		}
		score[tie.WinningSide-1] += value
	}
	return score
}

// tieWinner returns the side that reached the value goal, or 0.
func tieWinner(tieFormat *models.TieFormat, score [2]int) int {
	goal := 0
	if tieFormat != nil {
		goal = tieFormat.WinCriteria.ValueGoal
		if goal == 0 {
			goal = tieFormat.TotalValue()/2 + 1
		}
	}
	if goal == 0 {
		return 0
	}
	for side := 1; side <= 2; side++ {
		if score[side-1] >= goal {
			return side
		}
	}
	return 0
}

// setTieOutcome scores a collection matchUp and derives the TEAM result.
func (a *advancer) setTieOutcome(loc *MatchUpLocation, status models.MatchUpStatus, params OutcomeParams) error {
	s, parent, tie := loc.Structure, loc.TieParent, loc.MatchUp
	if status.Decisive() {
		for i := 0; i < 2; i++ {
			if slotAt(s, parent, i).participantID == "" {
				return newError(ErrIncompatibleMatchUpStatus, "team sides must be assigned", "matchUpId", parent.MatchUpID)
			}
		}
	}
	tieFormat := structureTieFormat(a.dd, s)

	previous := *tie
	tie.WinningSide, tie.MatchUpStatus, tie.Score = params.WinningSide, status, params.Score
	winner := tieWinner(tieFormat, tieScore(tieFormat, parent))

	if parent.WinningSide != 0 && parent.WinningSide != winner && a.downstreamHasResult(s, parent) {
		tie.WinningSide, tie.MatchUpStatus, tie.Score = previous.WinningSide, previous.MatchUpStatus, previous.Score
		return newError(ErrIncompatibleMatchUpStatus, "team result feeds a played matchUp", "matchUpId", parent.MatchUpID)
	}
	a.touch(tie)
	a.applyTieResult(loc, tieFormat, winner)
	return nil
}

func (a *advancer) removeTieOutcome(loc *MatchUpLocation) {
	tie := loc.MatchUp
	clearOutcome(tie)
	tie.MatchUpStatus = models.MatchUpStatusToBePlayed
	a.touch(tie)
	tieFormat := structureTieFormat(a.dd, loc.Structure)
	a.applyTieResult(loc, tieFormat, tieWinner(tieFormat, tieScore(tieFormat, loc.TieParent)))
}

// applyTieResult updates the parent TEAM matchUp once its tie score changes.
func (a *advancer) applyTieResult(loc *MatchUpLocation, tieFormat *models.TieFormat, winner int) {
	s, parent := loc.Structure, loc.TieParent
	score := tieScore(tieFormat, parent)
	if parent.WinningSide != 0 && parent.WinningSide != winner {
		a.removeAdvancement(s, parent)
		parent.WinningSide = 0
	}
	parent.Score = &models.Score{
		ScoreStringSide1: strconv.Itoa(score[0]) + "-" + strconv.Itoa(score[1]),
		ScoreStringSide2: strconv.Itoa(score[1]) + "-" + strconv.Itoa(score[0]),
	}
	switch {
	case winner != 0 && parent.WinningSide == 0:
		parent.WinningSide = winner
		parent.MatchUpStatus = models.MatchUpStatusCompleted
		a.directParticipants(s, parent)
	case winner == 0:
		parent.MatchUpStatus = models.MatchUpStatusInProgress
		if score == [2]int{} {
			parent.Score = nil
			parent.MatchUpStatus = a.restingStatus(s, parent)
		}
	}
	a.touch(parent)
	if loc.Container != nil {
		a.afterGroupChange(loc.Container, s)
	}
}
