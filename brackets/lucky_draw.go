package brackets

import (
	"context"

	"github.com/Dosada05/tournament-draws/models"
)

// LuckyDrawGenerator builds draws of any size. Each round pairs the
// remaining participants; an odd number of winners leaves one slot in the
// next round for a lucky loser.
type LuckyDrawGenerator struct{}

func NewLuckyDrawGenerator() StructureGenerator {
	return &LuckyDrawGenerator{}
}

func (g *LuckyDrawGenerator) GetName() string {
	return "LuckyDraw"
}

func (g *LuckyDrawGenerator) Generate(ctx context.Context, params GenerateParams) (*StructuresResult, error) {
	counts := luckyDrawRoundCounts(params.DrawSize)
	scope := structureScope(params.stage(), params.stageSequence())
	name := params.StructureName
	if name == "" {
		name = defaultStructureName(params.stage())
	}
	structure := &models.Structure{
		StructureID:       params.IDs.Next(scope),
		StructureName:     name,
		StructureType:     models.StructureTypeItem,
		Stage:             params.stage(),
		StageSequence:     params.stageSequence(),
		FinishingPosition: models.FinishingPositionRoundOutcome,
		MatchUpFormat:     params.MatchUpFormat,
		TieFormat:         params.TieFormat,
	}
	// an odd drawSize gets one extra position, filled by a bye when positioned
	for dp := 1; dp <= 2*counts[0]; dp++ {
		structure.PositionAssignments = append(structure.PositionAssignments, &models.PositionAssignment{DrawPosition: dp})
	}

	maxRound := len(counts)
	for i, count := range counts {
		round := i + 1
		for rp := 1; rp <= count; rp++ {
			m := &models.MatchUp{
				MatchUpID:      params.IDs.Next(scope, round, rp),
				MatchUpType:    params.MatchUpType,
				RoundNumber:    round,
				RoundPosition:  rp,
				DrawPositions:  []int{0, 0},
				MatchUpStatus:  models.MatchUpStatusToBePlayed,
				MatchUpFormat:  params.MatchUpFormat,
				FinishingRound: maxRound + 1 - round,
			}
			if round == 1 {
				m.DrawPositions[0] = 2*rp - 1
				m.DrawPositions[1] = 2 * rp
			}
			if params.TieFormat != nil {
				m.TieMatchUps = generateTieMatchUps(&params, params.TieFormat, scope, round, rp)
			}
			structure.MatchUps = append(structure.MatchUps, m)
		}
	}
	return &StructuresResult{Structures: []*models.Structure{structure}, Links: []*models.DrawLink{}}, nil
}

// luckyDrawRoundCounts returns matchUps per round for a lucky draw.
func luckyDrawRoundCounts(drawSize int) []int {
	var counts []int
	participants := drawSize
	for participants > 1 {
		matchUps := (participants + 1) / 2
		counts = append(counts, matchUps)
		participants = matchUps
		if participants > 1 && participants%2 == 1 {
			participants++
		}
	}
	return counts
}

// luckyDrawTarget returns the roundPosition and slot a winner takes in the
// next round of a lucky draw. Winners fill slots in order, so with an odd
// number of winners the last slot stays open for a lucky loser.
func luckyDrawTarget(sourceRoundPosition int) (int, int) {
	return ceilDiv(sourceRoundPosition, 2), 1 - sourceRoundPosition%2
}

// IsLuckyDraw reports whether the structure has lucky-draw shape: some round
// after the first holds more than half of the previous round's matchUps
// without being a feed round.
func IsLuckyDraw(structure *models.Structure) bool {
	rm := GetRoundMatchUps(structure.MatchUps)
	for _, round := range rm.RoundNumbers {
		profile := rm.RoundProfile[round]
		prev, ok := rm.RoundProfile[round-1]
		if !ok || profile.FeedRound {
			continue
		}
		if profile.MatchUpsCount*2 > prev.MatchUpsCount {
			return true
		}
	}
	return false
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
