package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

const defaultGroupSize = 4

// PlayoffGroup routes the participants finishing at FinishingPositions in
// every round robin group into one playoff structure.
type PlayoffGroup struct {
	FinishingPositions []int           `json:"finishingPositions"`
	StructureName      string          `json:"structureName,omitempty"`
	DrawType           models.DrawType `json:"drawType,omitempty"`
}

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() StructureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate builds one container with balanced groups of contiguous draw
// positions. Each group is a full mesh scheduled with the circle method.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) (*StructuresResult, error) {
	groupSize := params.GroupSize
	if groupSize == 0 {
		groupSize = defaultGroupSize
	}
	if groupSize < 2 {
		return nil, newError(ErrInvalidValues, "groupSize must be at least 2", "groupSize", groupSize)
	}
	if groupSize > params.DrawSize {
		groupSize = params.DrawSize
	}

	scope := structureScope(params.stage(), params.stageSequence())
	name := params.StructureName
	if name == "" {
		name = defaultStructureName(params.stage())
	}
	container := &models.Structure{
		StructureID:       params.IDs.Next(scope),
		StructureName:     name,
		StructureType:     models.StructureTypeContainer,
		Stage:             params.stage(),
		StageSequence:     params.stageSequence(),
		FinishingPosition: models.FinishingPositionWinRatio,
		MatchUpFormat:     params.MatchUpFormat,
		TieFormat:         params.TieFormat,
	}

	offset := 0
	for i, size := range groupSizes(params.DrawSize, groupSize) {
		groupNumber := i + 1
		groupScope := fmt.Sprintf("%s-G%d", scope, groupNumber)
		group := &models.Structure{
			StructureID:       params.IDs.Next(groupScope),
			StructureName:     fmt.Sprintf("Group %d", groupNumber),
			StructureType:     models.StructureTypeItem,
			Stage:             params.stage(),
			StageSequence:     params.stageSequence(),
			FinishingPosition: models.FinishingPositionWinRatio,
			MatchUpFormat:     params.MatchUpFormat,
			TieFormat:         params.TieFormat,
		}
		groupPositions := positions.GenerateRange(offset+1, offset+size+1)
		for _, dp := range groupPositions {
			group.PositionAssignments = append(group.PositionAssignments, &models.PositionAssignment{DrawPosition: dp})
		}
		for _, pairing := range circleSchedule(groupPositions) {
			m := &models.MatchUp{
				MatchUpID:     params.IDs.Next(groupScope, pairing.round, pairing.position),
				MatchUpType:   params.MatchUpType,
				RoundNumber:   pairing.round,
				RoundPosition: pairing.position,
				DrawPositions: []int{pairing.drawPositions[0], pairing.drawPositions[1]},
				MatchUpStatus: models.MatchUpStatusToBePlayed,
				MatchUpFormat: params.MatchUpFormat,
			}
			if params.TieFormat != nil {
				m.TieMatchUps = generateTieMatchUps(&params, params.TieFormat, groupScope, pairing.round, pairing.position)
			}
			group.MatchUps = append(group.MatchUps, m)
		}
		container.Structures = append(container.Structures, group)
		offset += size
	}

	result := &StructuresResult{Structures: []*models.Structure{container}, Links: []*models.DrawLink{}}
	if params.DrawType != models.DrawTypeRoundRobinWithPlayoff {
		return result, nil
	}

	playoffGroups := params.PlayoffGroups
	if len(playoffGroups) == 0 {
		playoffGroups = []PlayoffGroup{{FinishingPositions: []int{1}, StructureName: "Playoff"}}
	}
	playoffs, err := buildRRPlayoffStructures(ctx, &params, container, playoffGroups)
	if err != nil {
		return nil, err
	}
	result.Structures = append(result.Structures, playoffs.Structures...)
	result.Links = append(result.Links, playoffs.Links...)
	return result, nil
}

// groupSizes splits drawSize into ceil(drawSize/groupSize) groups whose sizes
// differ by at most one; larger groups come first.
func groupSizes(drawSize, groupSize int) []int {
	groups := (drawSize + groupSize - 1) / groupSize
	sizes := make([]int, groups)
	for i := range sizes {
		sizes[i] = drawSize / groups
		if i < drawSize%groups {
			sizes[i]++
		}
	}
	return sizes
}

type rrPairing struct {
	round         int
	position      int
	drawPositions [2]int
}

// circleSchedule pairs every position with every other once. The first
// position stays fixed while the rest rotate; with an odd count a phantom
// position gives one participant a rest each round.
func circleSchedule(drawPositions []int) []rrPairing {
	slots := append([]int(nil), drawPositions...)
	if len(slots)%2 == 1 {
		slots = append(slots, 0)
	}
	n := len(slots)
	var pairings []rrPairing
	for round := 1; round < n; round++ {
		position := 0
		for i := 0; i < n/2; i++ {
			a, b := slots[i], slots[n-1-i]
			if a == 0 || b == 0 {
				continue
			}
			if a > b {
				a, b = b, a
			}
			position++
			pairings = append(pairings, rrPairing{round: round, position: position, drawPositions: [2]int{a, b}})
		}
		// rotate everything but the first slot one step clockwise
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return pairings
}
