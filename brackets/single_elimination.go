package brackets

import (
	"context"
	"strconv"

	"github.com/Dosada05/tournament-draws/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() StructureGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// Generate builds log2(drawSize) rounds; round K holds drawSize/2^K matchUps.
// Positions are slotted upstream, the generator only builds the shape.
func (g *SingleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) (*StructuresResult, error) {
	name := params.StructureName
	if name == "" {
		name = defaultStructureName(params.stage())
	}
	structure := buildTree(&params, treeShape{
		StructureName: name,
		Scope:         structureScope(params.stage(), params.stageSequence()),
		Stage:         params.stage(),
		StageSequence: params.stageSequence(),
		BaseSize:      params.DrawSize,
	})
	return &StructuresResult{Structures: []*models.Structure{structure}, Links: []*models.DrawLink{}}, nil
}

func defaultStructureName(stage models.Stage) string {
	switch stage {
	case models.StageQualifying:
		return "Qualifying"
	case models.StageConsolation:
		return "Consolation"
	case models.StagePlayoff:
		return "Playoff"
	case models.StageVoluntaryConsolation:
		return "Voluntary Consolation"
	}
	return "Main"
}

// structureScope is the id segment for prefix-derived ids.
func structureScope(stage models.Stage, stageSequence int) string {
	if stageSequence > 1 {
		return string(stage) + "-" + strconv.Itoa(stageSequence)
	}
	return string(stage)
}
