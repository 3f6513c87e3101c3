package brackets

import (
	"context"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// DoubleEliminationGenerator builds a main tree, a backdraw fed by every main
// round and a two-position decider between the two structure winners.
type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() StructureGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

func (g *DoubleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) (*StructuresResult, error) {
	drawSize := params.DrawSize
	if drawSize < 4 {
		return nil, newError(ErrInvalidDrawSize, "double elimination requires at least 4 positions", "drawSize", drawSize)
	}
	roundsCount := positions.Log2(drawSize)

	mainName := params.StructureName
	if mainName == "" {
		mainName = "Main"
	}
	main := buildTree(&params, treeShape{
		StructureName: mainName,
		Scope:         structureScope(models.StageMain, 1),
		Stage:         models.StageMain,
		StageSequence: 1,
		BaseSize:      drawSize,
	})
	backdraw, links := consolationStructure(&params, main, consolationSpec{
		name:          "Backdraw",
		stageSequence: 1,
		fedRounds:     positions.GenerateRange(1, roundsCount+1),
	})
	decider := buildTree(&params, treeShape{
		StructureName: "Decider",
		Scope:         structureScope(models.StagePlayoff, 1),
		Stage:         models.StagePlayoff,
		StageSequence: 1,
		BaseSize:      2,
	})

	backdrawRounds := GetRoundMatchUps(backdraw.MatchUps).MaxRound
	links = append(links,
		newDrawWinnerLink(main.StructureID, roundsCount, decider.StructureID, 1, []int{1}),
		newDrawWinnerLink(backdraw.StructureID, backdrawRounds, decider.StructureID, 1, []int{2}),
	)
	return &StructuresResult{
		Structures: []*models.Structure{main, backdraw, decider},
		Links:      links,
	}, nil
}
