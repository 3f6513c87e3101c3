package brackets

import (
	"hash/fnv"
	"math/rand"
	"strconv"

	"github.com/Dosada05/tournament-draws/models"
)

// TargetMatchUpParams identifies a source round position leaving through a
// link.
type TargetMatchUpParams struct {
	DrawDefinition          *models.DrawDefinition
	TargetLink              *models.DrawLink
	SourceRoundPosition     int
	SourceRoundMatchUpCount int
}

// TargetMatchUp is the matchUp and slot a participant lands in.
type TargetMatchUp struct {
	Structure                *models.Structure
	MatchUp                  *models.MatchUp
	MatchUpDrawPositionIndex int
	// DrawPosition is the target slot's position; 0 when the slot is filled
	// by advancement within the structure.
	DrawPosition int
}

// GetTargetMatchUp resolves where a participant from sourceRoundPosition
// lands in the link's target round. TOP_DOWN keeps the computed round
// position, BOTTOM_UP reflects it, RANDOM applies a permutation seeded from
// the target structure and round, and DRAW reads target.drawPositions.
func GetTargetMatchUp(params TargetMatchUpParams) (*TargetMatchUp, error) {
	link := params.TargetLink
	if link == nil {
		return nil, newError(ErrMissingTargetLink, "")
	}
	if params.DrawDefinition == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	structure := FindStructure(params.DrawDefinition, link.Target.StructureID)
	if structure == nil {
		return nil, newError(ErrStructureNotFound, "link target", "structureId", link.Target.StructureID)
	}
	rm := GetRoundMatchUps(structure.MatchUps)
	roundMatchUps := rm.RoundMatchUps[link.Target.RoundNumber]
	targetCount := len(roundMatchUps)
	if targetCount == 0 {
		return nil, newError(ErrMatchUpNotFound, "empty target round", "structureId", structure.StructureID, "roundNumber", link.Target.RoundNumber)
	}
	sourcePosition, sourceCount := params.SourceRoundPosition, params.SourceRoundMatchUpCount
	if sourcePosition < 1 || sourceCount < 1 {
		return nil, newError(ErrInvalidValues, "source round position and count are required")
	}

	if link.Target.FeedProfile == models.FeedProfileDraw {
		if sourcePosition > len(link.Target.DrawPositions) {
			return nil, newError(ErrInvalidValues, "no target drawPosition for source", "sourceRoundPosition", sourcePosition)
		}
		drawPosition := link.Target.DrawPositions[sourcePosition-1]
		for _, m := range roundMatchUps {
			for idx, dp := range m.DrawPositions {
				if dp == drawPosition {
					return &TargetMatchUp{Structure: structure, MatchUp: m, MatchUpDrawPositionIndex: idx, DrawPosition: dp}, nil
				}
			}
		}
		return nil, newError(ErrMatchUpNotFound, "target drawPosition not in round", "drawPosition", drawPosition)
	}

	relative, denominator := sourcePosition, sourceCount
	if pi := link.Target.PositionInterleave; pi != nil {
		relative = sourcePosition + pi.Offset + (sourcePosition-1)*pi.Interleave
		denominator = sourceCount * (pi.Interleave + 1)
	}
	roundPosition := ceilDiv(targetCount*relative, denominator)
	index := 1 - relative%2
	if profile := rm.RoundProfile[link.Target.RoundNumber]; profile.FeedRound {
		index = 0
	}

	switch link.Target.FeedProfile {
	case models.FeedProfileBottomUp:
		roundPosition = targetCount + 1 - roundPosition
	case models.FeedProfileRandom:
		roundPosition = randomFeedOrder(structure.StructureID, link.Target.RoundNumber, targetCount)[roundPosition-1]
	}
	if roundPosition < 1 || roundPosition > targetCount {
		return nil, newError(ErrMatchUpNotFound, "target roundPosition out of range", "roundPosition", roundPosition)
	}

	target := roundMatchUps[roundPosition-1]
	result := &TargetMatchUp{Structure: structure, MatchUp: target, MatchUpDrawPositionIndex: index}
	if index < len(target.DrawPositions) {
		result.DrawPosition = target.DrawPositions[index]
	}
	return result, nil
}

// randomFeedOrder is a permutation of 1..count, stable for a structure round
// so that retries and removals resolve to the same target.
func randomFeedOrder(structureID string, roundNumber, count int) []int {
	h := fnv.New64a()
	h.Write([]byte(structureID))
	h.Write([]byte(strconv.Itoa(roundNumber)))
	perm := rand.New(rand.NewSource(int64(h.Sum64()))).Perm(count)
	for i := range perm {
		perm[i]++
	}
	return perm
}

// nextRoundTarget resolves where a winner advances inside its own structure.
// A feed round keeps the roundPosition and takes slot 1; a halving round
// pairs roundPositions; lucky draw rounds fill slots in order.
func nextRoundTarget(structure *models.Structure, m *models.MatchUp) *TargetMatchUp {
	rm := GetRoundMatchUps(structure.MatchUps)
	next := rm.RoundMatchUps[m.RoundNumber+1]
	current := rm.RoundMatchUps[m.RoundNumber]
	if len(next) == 0 || len(current) == 0 {
		return nil
	}
	var roundPosition, slot int
	switch {
	case rm.RoundProfile[m.RoundNumber+1].FeedRound:
		roundPosition, slot = m.RoundPosition, 1
	case len(next)*2 == len(current):
		roundPosition, slot = ceilDiv(m.RoundPosition, 2), 1-m.RoundPosition%2
	default:
		roundPosition, slot = luckyDrawTarget(m.RoundPosition)
	}
	for _, candidate := range next {
		if candidate.RoundPosition == roundPosition {
			return &TargetMatchUp{Structure: structure, MatchUp: candidate, MatchUpDrawPositionIndex: slot}
		}
	}
	return nil
}

// PositionTargets describes where the winner and loser of a matchUp go.
type PositionTargets struct {
	WinnerLink   *models.DrawLink
	LoserLink    *models.DrawLink
	WinnerTarget *TargetMatchUp
	LoserTarget  *TargetMatchUp
}

// GetPositionTargets resolves both outgoing targets of a matchUp.
func GetPositionTargets(dd *models.DrawDefinition, structure *models.Structure, m *models.MatchUp) (*PositionTargets, error) {
	targets := &PositionTargets{}
	count := roundCount(structure, m.RoundNumber)

	targets.WinnerLink = FindLink(dd.Links, models.LinkTypeWinner, structure.StructureID, m.RoundNumber)
	if targets.WinnerLink != nil {
		target, err := GetTargetMatchUp(TargetMatchUpParams{
			DrawDefinition:          dd,
			TargetLink:              targets.WinnerLink,
			SourceRoundPosition:     m.RoundPosition,
			SourceRoundMatchUpCount: count,
		})
		if err != nil {
			return nil, err
		}
		targets.WinnerTarget = target
	} else {
		targets.WinnerTarget = nextRoundTarget(structure, m)
	}

	targets.LoserLink = FindLink(dd.Links, models.LinkTypeLoser, structure.StructureID, m.RoundNumber)
	if targets.LoserLink != nil {
		target, err := GetTargetMatchUp(TargetMatchUpParams{
			DrawDefinition:          dd,
			TargetLink:              targets.LoserLink,
			SourceRoundPosition:     m.RoundPosition,
			SourceRoundMatchUpCount: count,
		})
		if err != nil {
			return nil, err
		}
		targets.LoserTarget = target
	}
	return targets, nil
}

func roundCount(structure *models.Structure, round int) int {
	count := 0
	for _, m := range structure.MatchUps {
		if m.RoundNumber == round {
			count++
		}
	}
	return count
}
