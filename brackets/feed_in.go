package brackets

import (
	"context"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// FeedInGenerator builds a single main structure of any size: extra
// positions above the previous power of two join in feed rounds.
type FeedInGenerator struct{}

func NewFeedInGenerator() StructureGenerator {
	return &FeedInGenerator{}
}

func (g *FeedInGenerator) GetName() string {
	return "FeedIn"
}

func (g *FeedInGenerator) Generate(ctx context.Context, params GenerateParams) (*StructuresResult, error) {
	base, feedRounds := feedInShape(params.DrawSize)
	name := params.StructureName
	if name == "" {
		name = defaultStructureName(params.stage())
	}
	structure := buildTree(&params, treeShape{
		StructureName: name,
		Scope:         structureScope(params.stage(), params.stageSequence()),
		Stage:         params.stage(),
		StageSequence: params.stageSequence(),
		BaseSize:      base,
		FeedRounds:    feedRounds,
	})
	return &StructuresResult{Structures: []*models.Structure{structure}, Links: []*models.DrawLink{}}, nil
}

// ConsolationGenerator builds a main structure plus backdraw structures fed
// by main losers: the feed-in championship family and the first round /
// first match / Curtis consolations.
type ConsolationGenerator struct{}

func NewConsolationGenerator() StructureGenerator {
	return &ConsolationGenerator{}
}

func (g *ConsolationGenerator) GetName() string {
	return "Consolation"
}

func (g *ConsolationGenerator) Generate(ctx context.Context, params GenerateParams) (*StructuresResult, error) {
	drawSize := params.DrawSize
	if drawSize < 4 {
		return nil, newError(ErrInvalidDrawSize, "consolation draws require at least 4 positions", "drawSize", drawSize)
	}
	roundsCount := positions.Log2(drawSize)

	mainName := params.StructureName
	if mainName == "" {
		mainName = "Main"
	}
	main := buildTree(&params, treeShape{
		StructureName: mainName,
		Scope:         structureScope(models.StageMain, params.stageSequence()),
		Stage:         models.StageMain,
		StageSequence: params.stageSequence(),
		BaseSize:      drawSize,
	})
	result := &StructuresResult{Structures: []*models.Structure{main}}

	if params.DrawType == models.DrawTypeCurtisConsolation {
		g.curtis(&params, result, main, roundsCount)
		return result, nil
	}

	var fedRounds []int
	switch params.DrawType {
	case models.DrawTypeFeedInChampionship:
		last := roundsCount
		if drawSize <= 4 && !params.FeedPolicy.feedMainFinal() {
			last = roundsCount - 1
		}
		fedRounds = positions.GenerateRange(1, last+1)
	case models.DrawTypeFeedInChampionshipToSF:
		fedRounds = positions.GenerateRange(1, roundsCount)
	case models.DrawTypeFeedInChampionshipToQF:
		fedRounds = positions.GenerateRange(1, roundsCount-1)
	case models.DrawTypeFeedInChampionshipToR16:
		fedRounds = positions.GenerateRange(1, roundsCount-2)
	case models.DrawTypeModifiedFeedInChampionship, models.DrawTypeFirstMatchLoserConsolation:
		fedRounds = []int{1, 2}
	case models.DrawTypeFirstRoundLoserConsolation:
		fedRounds = []int{1}
	default:
		return nil, newError(ErrInvalidDrawType, string(params.DrawType))
	}
	fedRounds = clampRounds(fedRounds, roundsCount)
	if len(fedRounds) == 0 {
		fedRounds = []int{1}
	}

	structure, links := consolationStructure(&params, main, consolationSpec{
		name:          "Consolation",
		stageSequence: 1,
		fedRounds:     fedRounds,
	})
	if params.DrawType == models.DrawTypeFirstMatchLoserConsolation {
		for _, link := range links {
			if link.Source.RoundNumber == 2 {
				link.LinkCondition = models.LinkConditionFirstMatchUp
			}
		}
	}
	result.Structures = append(result.Structures, structure)
	result.Links = append(result.Links, links...)
	return result, nil
}

// curtis feeds rounds 1-2 into a first consolation and rounds 3-4 into a
// second one; smaller draws get a 3-4 playoff for semifinal losers instead.
func (g *ConsolationGenerator) curtis(params *GenerateParams, result *StructuresResult, main *models.Structure, roundsCount int) {
	if roundsCount >= 5 {
		first, firstLinks := consolationStructure(params, main, consolationSpec{name: "Consolation 1", stageSequence: 1, fedRounds: []int{1, 2}})
		second, secondLinks := consolationStructure(params, main, consolationSpec{name: "Consolation 2", stageSequence: 2, fedRounds: []int{3, 4}})
		result.Structures = append(result.Structures, first, second)
		result.Links = append(result.Links, firstLinks...)
		result.Links = append(result.Links, secondLinks...)
		return
	}

	var fedRounds []int
	for _, round := range []int{1, 2} {
		if round < roundsCount-1 {
			fedRounds = append(fedRounds, round)
		}
	}
	if len(fedRounds) > 0 {
		structure, links := consolationStructure(params, main, consolationSpec{name: "Consolation 1", stageSequence: 1, fedRounds: fedRounds})
		result.Structures = append(result.Structures, structure)
		result.Links = append(result.Links, links...)
	}

	playoff := buildTree(params, treeShape{
		StructureName:   "3-4 Playoff",
		Scope:           structureScope(models.StagePlayoff, 1),
		Stage:           models.StagePlayoff,
		StageSequence:   1,
		BaseSize:        2,
		FinishingOffset: 2,
	})
	result.Structures = append(result.Structures, playoff)
	result.Links = append(result.Links, newLoserLink(main.StructureID, roundsCount-1, playoff.StructureID, 1, models.FeedProfileTopDown))
}

type consolationSpec struct {
	name          string
	stageSequence int
	fedRounds     []int
}

// consolationStructure builds a backdraw fed by the contiguous main rounds in
// spec.fedRounds. The first fed round fills consolation round 1; main round r
// after it feeds consolation round 2*(r-first), alternating BOTTOM_UP and
// TOP_DOWN so rematches are pushed apart.
func consolationStructure(params *GenerateParams, main *models.Structure, spec consolationSpec) (*models.Structure, []*models.DrawLink) {
	first := spec.fedRounds[0]
	base := params.DrawSize >> uint(first)

	feedRounds := make(map[int]bool)
	for _, r := range spec.fedRounds[1:] {
		feedRounds[2*(r-first)] = true
	}
	structure := buildTree(params, treeShape{
		StructureName: spec.name,
		Scope:         structureScope(models.StageConsolation, spec.stageSequence),
		Stage:         models.StageConsolation,
		StageSequence: spec.stageSequence,
		BaseSize:      base,
		FeedRounds:    feedRounds,
	})

	var links []*models.DrawLink
	for _, r := range spec.fedRounds {
		targetRound, profile := 1, models.FeedProfileTopDown
		if r > first {
			targetRound = 2 * (r - first)
			if (r-first)%2 == 1 {
				profile = models.FeedProfileBottomUp
			}
		}
		links = append(links, newLoserLink(main.StructureID, r, structure.StructureID, targetRound, profile))
	}
	return structure, links
}

func clampRounds(rounds []int, max int) []int {
	var out []int
	for _, r := range rounds {
		if r >= 1 && r <= max {
			out = append(out, r)
		}
	}
	return out
}
