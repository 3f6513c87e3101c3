package brackets

import (
	"context"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// PlayoffAttribute names a structure reached by an exit profile.
type PlayoffAttribute struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

var compassAttributes = map[string]PlayoffAttribute{
	"0":       {Name: "East", Abbreviation: "E"},
	"0-1":     {Name: "West", Abbreviation: "W"},
	"0-2":     {Name: "North", Abbreviation: "N"},
	"0-3":     {Name: "Northeast", Abbreviation: "NE"},
	"0-1-1":   {Name: "South", Abbreviation: "S"},
	"0-1-2":   {Name: "Southwest", Abbreviation: "SW"},
	"0-2-1":   {Name: "Northwest", Abbreviation: "NW"},
	"0-1-1-1": {Name: "Southeast", Abbreviation: "SE"},
}

var olympicAttributes = map[string]PlayoffAttribute{
	"0":     {Name: "East", Abbreviation: "E"},
	"0-1":   {Name: "West", Abbreviation: "W"},
	"0-2":   {Name: "North", Abbreviation: "N"},
	"0-1-1": {Name: "South", Abbreviation: "S"},
}

// PlayoffGenerator builds COMPASS, OLYMPIC and PLAY_OFF draws: a root
// elimination tree whose round losers recursively feed child trees.
type PlayoffGenerator struct{}

func NewPlayoffGenerator() StructureGenerator {
	return &PlayoffGenerator{}
}

func (g *PlayoffGenerator) GetName() string {
	return "Playoff"
}

func (g *PlayoffGenerator) Generate(ctx context.Context, params GenerateParams) (*StructuresResult, error) {
	tree := &playoffTree{params: &params, result: &StructuresResult{}}
	switch params.DrawType {
	case models.DrawTypeCompass:
		tree.attributes, tree.roundOffsetLimit = compassAttributes, 3
	case models.DrawTypeOlympic:
		tree.attributes, tree.roundOffsetLimit = olympicAttributes, 2
	default:
		tree.roundOffsetLimit = params.RoundOffsetLimit
	}
	if params.PlayoffAttributes != nil {
		tree.attributes = params.PlayoffAttributes
	}
	if params.DrawType != models.DrawTypePlayoff && params.RoundOffsetLimit > 0 {
		tree.roundOffsetLimit = params.RoundOffsetLimit
	}
	tree.build(params.DrawSize, "0", 0, 0, params.stageSequence(), params.stage())
	return tree.result, nil
}

type playoffTree struct {
	params           *GenerateParams
	attributes       map[string]PlayoffAttribute
	roundOffsetLimit int
	result           *StructuresResult
}

// build adds the structure for exitProfile and, for each of its rounds
// within the offset limit, a child structure fed by that round's losers.
func (t *playoffTree) build(drawSize int, exitProfile string, roundOffset, finishingOffset, stageSequence int, stage models.Stage) *models.Structure {
	name, abbreviation := t.naming(exitProfile, drawSize, finishingOffset)
	structure := buildTree(t.params, treeShape{
		StructureName:   name,
		Abbreviation:    abbreviation,
		Scope:           "P" + exitProfile,
		Stage:           stage,
		StageSequence:   stageSequence,
		ExitProfile:     exitProfile,
		BaseSize:        drawSize,
		FinishingOffset: finishingOffset,
	})
	t.result.Structures = append(t.result.Structures, structure)
	t.addChildren(structure, drawSize, positions.GenerateRange(1, positions.Log2(drawSize)+1), roundOffset, finishingOffset)
	return structure
}

func (t *playoffTree) addChildren(parent *models.Structure, drawSize int, rounds []int, roundOffset, finishingOffset int) []*models.Structure {
	var children []*models.Structure
	for _, round := range rounds {
		childSize := drawSize >> uint(round)
		if childSize < 2 {
			continue
		}
		if t.roundOffsetLimit < 0 || (t.roundOffsetLimit > 0 && roundOffset+round > t.roundOffsetLimit) {
			continue
		}
		exitProfile := parent.ExitProfile + "-" + strconv.Itoa(round)
		child := t.build(childSize, exitProfile, roundOffset+round, finishingOffset+childSize, parent.StageSequence+1, models.StagePlayoff)
		t.result.Links = append(t.result.Links, newLoserLink(parent.StructureID, round, child.StructureID, 1, models.FeedProfileTopDown))
		children = append(children, child)
	}
	return children
}

func (t *playoffTree) naming(exitProfile string, drawSize, finishingOffset int) (string, string) {
	if attr, ok := t.attributes[exitProfile]; ok {
		return attr.Name, attr.Abbreviation
	}
	if exitProfile == "0" {
		name := t.params.StructureName
		if name == "" {
			name = "Main"
		}
		return name, ""
	}
	finishing := positions.RangeString([]int{finishingOffset + 1, finishingOffset + drawSize})
	return "Playoff " + finishing, "P" + strings.ReplaceAll(finishing, "-", "")
}

// exitRoundOffset sums the rounds along an exit profile ("0-1-2" is 3).
func exitRoundOffset(exitProfile string) int {
	total := 0
	for _, part := range strings.Split(exitProfile, "-") {
		n, err := strconv.Atoi(part)
		if err == nil {
			total += n
		}
	}
	return total
}
