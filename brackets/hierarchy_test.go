package brackets

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

func TestBuildDrawHierarchyGenerated(t *testing.T) {
	for _, size := range []int{4, 8, 16, 32} {
		result := mustGenerate(t, GenerateParams{DrawType: models.DrawTypeSingleElimination, DrawSize: size})
		hierarchy, err := BuildDrawHierarchy(result.MatchUps(), "")
		if err != nil {
			t.Fatalf("size %d: BuildDrawHierarchy error = %v", size, err)
		}
		root := hierarchy.Hierarchy
		if root == nil {
			t.Fatalf("size %d: no hierarchy", size)
		}
		if got := len(root.Leaves()); got != size {
			t.Errorf("size %d: leaves = %d", size, got)
		}
		if got, want := root.Depth(), positions.Log2(size); got != want {
			t.Errorf("size %d: depth = %d, want %d", size, got, want)
		}
		if len(hierarchy.MissingMatchUps) != 0 {
			t.Errorf("size %d: synthesized %d matchUps for a complete draw", size, len(hierarchy.MissingMatchUps))
		}
		leaves := root.Leaves()
		for i, leaf := range leaves {
			if leaf.DrawPosition != i+1 {
				t.Errorf("size %d: leaf %d drawPosition = %d", size, i, leaf.DrawPosition)
				break
			}
		}
	}
}

func TestBuildDrawHierarchyFeedIn(t *testing.T) {
	result := mustGenerate(t, GenerateParams{DrawType: models.DrawTypeFeedIn, DrawSize: 12})
	hierarchy, err := BuildDrawHierarchy(result.MatchUps(), "")
	if err != nil {
		t.Fatalf("BuildDrawHierarchy error = %v", err)
	}
	if got := len(hierarchy.Hierarchy.Leaves()); got != 12 {
		t.Errorf("leaves = %d, want 12", got)
	}
}

func TestBuildDrawHierarchyMissingMatchUps(t *testing.T) {
	if _, err := BuildDrawHierarchy(nil, ""); !errors.Is(err, ErrMissingMatchUps) {
		t.Fatalf("error = %v, want MISSING_MATCHUPS", err)
	}
	result, err := BuildDrawHierarchy([]*models.MatchUp{{MatchUpID: "bad", RoundNumber: 0}}, "")
	if err != nil {
		t.Fatalf("invalid matchUps: error = %v", err)
	}
	if result.Hierarchy != nil {
		t.Errorf("invalid matchUps produced a hierarchy")
	}
}

func TestBuildDrawHierarchySynthesizesByes(t *testing.T) {
	matchUps := []*models.MatchUp{
		{MatchUpID: "m2", RoundNumber: 1, RoundPosition: 2, DrawPositions: []int{3, 4}},
		{MatchUpID: "m3", RoundNumber: 1, RoundPosition: 3, DrawPositions: []int{5, 6}},
		{MatchUpID: "m4", RoundNumber: 1, RoundPosition: 4, DrawPositions: []int{7, 8}},
		{MatchUpID: "s1", RoundNumber: 2, RoundPosition: 1, DrawPositions: []int{1, 3},
			Sides: []models.Side{{SideNumber: 1, DrawPosition: 1, ParticipantID: "seed"}}},
		{MatchUpID: "s2", RoundNumber: 2, RoundPosition: 2, DrawPositions: []int{5, 7}},
		{MatchUpID: "f", RoundNumber: 3, RoundPosition: 1, DrawPositions: []int{1, 5}},
	}
	result, err := BuildDrawHierarchy(matchUps, "")
	if err != nil {
		t.Fatalf("BuildDrawHierarchy error = %v", err)
	}
	if len(result.MissingMatchUps) != 1 {
		t.Fatalf("missing matchUps = %d, want 1", len(result.MissingMatchUps))
	}
	bye := result.MissingMatchUps[0]
	if bye.MatchUpStatus != models.MatchUpStatusBye || bye.RoundPosition != 1 {
		t.Errorf("synthesized bye = %+v", bye)
	}
	leaves := result.Hierarchy.Leaves()
	if len(leaves) != 8 {
		t.Fatalf("leaves = %d, want 8", len(leaves))
	}
	if leaves[0].ParticipantID != "seed" || !leaves[1].Bye {
		t.Errorf("bye leaves = %+v %+v", leaves[0], leaves[1])
	}
	if len(matchUps) != 6 || matchUps[3].Sides[0].ParticipantID != "seed" {
		t.Errorf("input matchUps were modified")
	}
}

func TestBuildDrawHierarchyPlaceholderRounds(t *testing.T) {
	result := mustGenerate(t, GenerateParams{DrawType: models.DrawTypeSingleElimination, DrawSize: 8})
	firstRound := GetRoundMatchUps(result.Structures[0].MatchUps).RoundMatchUps[1]
	hierarchy, err := BuildDrawHierarchy(firstRound, "")
	if err != nil {
		t.Fatalf("BuildDrawHierarchy error = %v", err)
	}
	if hierarchy.MaxRound != 1 || hierarchy.FinalRound != 3 {
		t.Errorf("maxRound = %d finalRound = %d, want 1 and 3", hierarchy.MaxRound, hierarchy.FinalRound)
	}
	if len(hierarchy.MissingMatchUps) != 3 {
		t.Errorf("placeholders = %d, want 3", len(hierarchy.MissingMatchUps))
	}
	if got := hierarchy.Hierarchy.Depth(); got != 3 {
		t.Errorf("depth = %d, want 3", got)
	}
}

func TestBuildDrawHierarchyTypeFilter(t *testing.T) {
	tieFormat := &models.TieFormat{CollectionDefinitions: []models.CollectionDefinition{
		{CollectionID: "S", MatchUpType: models.MatchUpTypeSingles, MatchUpCount: 2},
	}}
	result := mustGenerate(t, GenerateParams{
		DrawType:    models.DrawTypeSingleElimination,
		DrawSize:    4,
		MatchUpType: models.MatchUpTypeTeam,
		TieFormat:   tieFormat,
	})
	var all []*models.MatchUp
	for _, m := range result.MatchUps() {
		all = append(all, m)
		all = append(all, m.TieMatchUps...)
	}
	hierarchy, err := BuildDrawHierarchy(all, "")
	if err != nil {
		t.Fatalf("BuildDrawHierarchy error = %v", err)
	}
	if got := len(hierarchy.MatchUps); got != 3 {
		t.Errorf("hierarchy matchUps = %d, want the 3 TEAM matchUps", got)
	}
}

func TestCollapseHierarchy(t *testing.T) {
	result := mustGenerate(t, GenerateParams{DrawType: models.DrawTypeSingleElimination, DrawSize: 16})
	hierarchy, err := BuildDrawHierarchy(result.MatchUps(), "")
	if err != nil {
		t.Fatalf("BuildDrawHierarchy error = %v", err)
	}
	root := hierarchy.Hierarchy

	CollapseHierarchy(root, 2)
	if len(root.Children) != 2 {
		t.Fatalf("root children hidden")
	}
	semi := root.Children[0]
	if len(semi.Children) != 2 {
		t.Fatalf("level 1 children hidden")
	}
	quarter := semi.Children[0]
	if quarter.Children != nil || len(quarter.Hidden) != 2 {
		t.Errorf("level 2 node should hide its children")
	}
	if got := len(root.Leaves()); got != 16 {
		t.Errorf("leaves after collapse = %d, want 16", got)
	}

	CollapseHierarchy(root, 5)
	if quarter.Children == nil || quarter.Hidden != nil {
		t.Errorf("expansion did not restore children")
	}
}

func leafPositions(node *HierarchyNode) []int {
	var out []int
	for _, leaf := range node.Leaves() {
		out = append(out, leaf.DrawPosition)
	}
	return out
}

func TestBuildDrawHierarchyWithoutRoundPositions(t *testing.T) {
	matchUps := []*models.MatchUp{
		{MatchUpID: "r1-a", RoundNumber: 1, DrawPositions: []int{1, 2}},
		{MatchUpID: "r1-c", RoundNumber: 1, DrawPositions: []int{5, 6}},
		{MatchUpID: "r1-b", RoundNumber: 1, DrawPositions: []int{3, 4}},
		{MatchUpID: "r1-d", RoundNumber: 1, DrawPositions: []int{7, 8}},
		{MatchUpID: "r2-b", RoundNumber: 2, DrawPositions: []int{5, 7}},
		{MatchUpID: "r2-a", RoundNumber: 2, DrawPositions: []int{1, 3}},
		{MatchUpID: "final", RoundNumber: 3, DrawPositions: []int{1, 5}},
	}
	result, err := BuildDrawHierarchy(matchUps, "")
	if err != nil {
		t.Fatalf("BuildDrawHierarchy error = %v", err)
	}
	root := result.Hierarchy
	if root == nil || root.MatchUpID != "final" {
		t.Fatalf("root = %+v, want final", root)
	}
	want := map[string][]int{
		"r2-a": {1, 2, 3, 4},
		"r2-b": {5, 6, 7, 8},
	}
	for _, child := range root.Children {
		if got := leafPositions(child); !reflect.DeepEqual(got, want[child.MatchUpID]) {
			t.Errorf("%s leaves = %v, want %v", child.MatchUpID, got, want[child.MatchUpID])
		}
	}
	if got := leafPositions(root); !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("root leaves = %v", got)
	}
}
