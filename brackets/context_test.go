package brackets

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

func TestGetRoundNames(t *testing.T) {
	tests := []struct {
		name     string
		drawType models.DrawType
		drawSize int
		index    int
		want     map[int]RoundName
	}{
		{"single elimination 8", models.DrawTypeSingleElimination, 8, 0, map[int]RoundName{
			1: {"Quarterfinals", "QF"},
			2: {"Semifinals", "SF"},
			3: {"Final", "F"},
		}},
		{"single elimination 16", models.DrawTypeSingleElimination, 16, 0, map[int]RoundName{
			1: {"Round of 16", "R16"},
			2: {"Quarterfinals", "QF"},
			3: {"Semifinals", "SF"},
			4: {"Final", "F"},
		}},
		{"consolation 8", models.DrawTypeFeedInChampionship, 8, 1, map[int]RoundName{
			1: {"C-Round 1", "C-R1"},
			2: {"C-Round 2", "C-R2"},
			3: {"C-Round 3", "C-R3"},
			4: {"C-Round 4", "C-R4"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustGenerate(t, GenerateParams{DrawType: tt.drawType, DrawSize: tt.drawSize})
			got := GetRoundNames(result.Structures[tt.index], nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetRoundNames = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetRoundNamesPolicyOverride(t *testing.T) {
	result := mustGenerate(t, GenerateParams{DrawType: models.DrawTypeSingleElimination, DrawSize: 4})
	policies := ResolvePolicies(PolicySource{RoundNaming: &RoundNamingPolicy{Names: map[int]string{1: "Championship"}}})
	got := GetRoundNames(result.Structures[0], &policies)
	if got[2].Name != "Championship" || got[1].Name != "Semifinals" {
		t.Errorf("round names = %v", got)
	}
}

func TestAttachedPoliciesNameRounds(t *testing.T) {
	result, err := GenerateDrawDefinition(context.Background(), GenerateDrawDefinitionParams{
		DrawID:   "draw",
		DrawType: models.DrawTypeSingleElimination,
		DrawSize: 4,
		IDPrefix: "t",
		Policies: PolicySource{RoundNaming: &RoundNamingPolicy{Names: map[int]string{1: "Championship"}}},
	})
	if err != nil {
		t.Fatalf("GenerateDrawDefinition error = %v", err)
	}
	dd := result.DrawDefinition
	if AppliedPolicies(dd).RoundNaming == nil {
		t.Fatalf("round naming not attached to the draw")
	}

	final, err := GetAllStructureMatchUps(dd, dd.Structures[0].StructureID, ContextParams{RoundNumbers: []int{2}})
	if err != nil {
		t.Fatalf("GetAllStructureMatchUps error = %v", err)
	}
	if len(final) != 1 || final[0].RoundName != "Championship" {
		t.Errorf("final round = %+v", final)
	}

	plain := newTestDraw(t, models.DrawTypeSingleElimination, 4)
	if _, ok := models.FindExtension(plain.Extensions, AppliedPoliciesExtension); ok {
		t.Errorf("draw without policies carries an applied policies extension")
	}
}

func TestGetAllStructureMatchUps(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeRoundRobin, 8)
	container := dd.Structures[0]
	fillPositions(container)
	participants := map[string]*models.Participant{"P1": {ParticipantID: "P1", ParticipantName: "One"}}

	all, err := GetAllStructureMatchUps(dd, container.StructureID, ContextParams{Participants: participants})
	if err != nil {
		t.Fatalf("GetAllStructureMatchUps error = %v", err)
	}
	if len(all) != 12 {
		t.Fatalf("matchUps = %d, want 12", len(all))
	}
	found := false
	for _, m := range all {
		if m.ContainerID != container.StructureID || m.DrawID != dd.DrawID {
			t.Errorf("matchUp %s context = %s/%s", m.MatchUpID, m.DrawID, m.ContainerID)
		}
		for _, side := range m.Sides {
			if side.ParticipantID == "P1" && side.Participant != nil && side.Participant.ParticipantName == "One" {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("participant P1 not hydrated")
	}

	all[0].MatchUpStatus = models.MatchUpStatusCompleted
	if container.Structures[0].MatchUps[0].MatchUpStatus == models.MatchUpStatusCompleted {
		t.Errorf("hydrated matchUp shares state with the draw")
	}

	firstRound, err := GetAllStructureMatchUps(dd, container.StructureID, ContextParams{RoundNumbers: []int{1}})
	if err != nil {
		t.Fatalf("GetAllStructureMatchUps error = %v", err)
	}
	if len(firstRound) != 4 {
		t.Errorf("round 1 matchUps = %d, want 4", len(firstRound))
	}

	if _, err := GetAllStructureMatchUps(dd, "", ContextParams{}); !errors.Is(err, ErrMissingStructureID) {
		t.Errorf("missing id: error = %v", err)
	}
}

func TestGetAllDrawMatchUpsTies(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeFeedInChampionship, 8)
	all, err := GetAllDrawMatchUps(dd, ContextParams{})
	if err != nil {
		t.Fatalf("GetAllDrawMatchUps error = %v", err)
	}
	if len(all) != 13 {
		t.Errorf("matchUps = %d, want 13", len(all))
	}
	feed := 0
	for _, m := range all {
		if m.FeedRound {
			feed++
			if m.Stage != models.StageConsolation {
				t.Errorf("feed round outside consolation: %s", m.MatchUpID)
			}
		}
	}
	if feed != 3 {
		t.Errorf("feed round matchUps = %d, want 3", feed)
	}
}

func TestResolvePolicies(t *testing.T) {
	explicit := PolicySource{Seeding: &SeedingPolicy{Positioning: positions.PositioningWaterfall}}
	applied := PolicySource{
		Seeding:   &SeedingPolicy{Positioning: positions.PositioningAdjacent, SeedsCount: 4},
		Avoidance: &AvoidancePolicy{Attributes: []string{"nationality"}},
	}
	got := ResolvePolicies(explicit, applied)
	if got.Seeding.Positioning != positions.PositioningWaterfall {
		t.Errorf("positioning = %s, want explicit WATERFALL", got.Seeding.Positioning)
	}
	if got.Seeding.SeedsCount != 4 {
		t.Errorf("seedsCount = %d, want 4 from applied", got.Seeding.SeedsCount)
	}
	if !reflect.DeepEqual(got.Avoidance.Attributes, []string{"nationality"}) {
		t.Errorf("avoidance = %v", got.Avoidance.Attributes)
	}
	if got.RoundNaming.Names[1] != "Final" {
		t.Errorf("default round names lost")
	}
	if defaults := DefaultPolicies(); defaults.Seeding.Positioning != positions.PositioningCluster {
		t.Errorf("default positioning = %s", defaults.Seeding.Positioning)
	}
}

func TestFeedMainFinalPolicy(t *testing.T) {
	feed := true
	tests := []struct {
		policy *FeedPolicy
		links  int
	}{
		{nil, 1},
		{&FeedPolicy{}, 1},
		{&FeedPolicy{FeedMainFinal: &feed}, 2},
	}
	for _, tt := range tests {
		result := mustGenerate(t, GenerateParams{DrawType: models.DrawTypeFeedInChampionship, DrawSize: 4, FeedPolicy: tt.policy})
		if len(result.Links) != tt.links {
			t.Errorf("policy %+v: links = %d, want %d", tt.policy, len(result.Links), tt.links)
		}
	}
}

func TestGetTargetMatchUp(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeFeedInChampionship, 16)
	main, consolation := dd.Structures[0], dd.Structures[1]
	topDown := FindLink(dd.Links, models.LinkTypeLoser, main.StructureID, 1)
	bottomUp := FindLink(dd.Links, models.LinkTypeLoser, main.StructureID, 2)
	if topDown == nil || bottomUp == nil {
		t.Fatalf("loser links missing")
	}
	if bottomUp.Target.FeedProfile != models.FeedProfileBottomUp {
		t.Errorf("round 2 feed profile = %s", bottomUp.Target.FeedProfile)
	}

	tests := []struct {
		name          string
		link          *models.DrawLink
		sourcePos     int
		sourceCount   int
		roundPosition int
		index         int
	}{
		{"top down first", topDown, 1, 8, 1, 0},
		{"top down third", topDown, 3, 8, 2, 0},
		{"top down fourth", topDown, 4, 8, 2, 1},
		{"bottom up first", bottomUp, 1, 4, 4, 0},
		{"bottom up last", bottomUp, 4, 4, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := GetTargetMatchUp(TargetMatchUpParams{
				DrawDefinition:          dd,
				TargetLink:              tt.link,
				SourceRoundPosition:     tt.sourcePos,
				SourceRoundMatchUpCount: tt.sourceCount,
			})
			if err != nil {
				t.Fatalf("GetTargetMatchUp error = %v", err)
			}
			if target.Structure != consolation {
				t.Errorf("target structure = %s", target.Structure.StructureID)
			}
			if target.MatchUp.RoundPosition != tt.roundPosition || target.MatchUpDrawPositionIndex != tt.index {
				t.Errorf("target = rp %d index %d, want rp %d index %d",
					target.MatchUp.RoundPosition, target.MatchUpDrawPositionIndex, tt.roundPosition, tt.index)
			}
		})
	}

	if _, err := GetTargetMatchUp(TargetMatchUpParams{DrawDefinition: dd}); !errors.Is(err, ErrMissingTargetLink) {
		t.Errorf("nil link: error = %v, want MISSING_TARGET_LINK", err)
	}
}

func TestGetTargetMatchUpInterleave(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeFeedInChampionship, 16)
	base := *FindLink(dd.Links, models.LinkTypeLoser, dd.Structures[0].StructureID, 1)

	slots := make(map[[2]int]bool)
	for offset := 0; offset <= 1; offset++ {
		link := base
		link.Target.PositionInterleave = &models.PositionInterleave{Offset: offset, Interleave: 1}
		for sp := 1; sp <= 4; sp++ {
			target, err := GetTargetMatchUp(TargetMatchUpParams{
				DrawDefinition:          dd,
				TargetLink:              &link,
				SourceRoundPosition:     sp,
				SourceRoundMatchUpCount: 4,
			})
			if err != nil {
				t.Fatalf("offset %d sp %d: error = %v", offset, sp, err)
			}
			if target.MatchUpDrawPositionIndex != offset {
				t.Errorf("offset %d sp %d: index = %d", offset, sp, target.MatchUpDrawPositionIndex)
			}
			slots[[2]int{target.MatchUp.RoundPosition, target.MatchUpDrawPositionIndex}] = true
		}
	}
	if len(slots) != 8 {
		t.Errorf("interleaved sources used %d distinct slots, want 8", len(slots))
	}
}

func TestGetTargetMatchUpRandom(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeFeedInChampionship, 16)
	link := *FindLink(dd.Links, models.LinkTypeLoser, dd.Structures[0].StructureID, 1)
	link.Target.FeedProfile = models.FeedProfileRandom

	resolve := func() [][2]int {
		var out [][2]int
		for sp := 1; sp <= 8; sp++ {
			target, err := GetTargetMatchUp(TargetMatchUpParams{
				DrawDefinition:          dd,
				TargetLink:              &link,
				SourceRoundPosition:     sp,
				SourceRoundMatchUpCount: 8,
			})
			if err != nil {
				t.Fatalf("sp %d: error = %v", sp, err)
			}
			out = append(out, [2]int{target.MatchUp.RoundPosition, target.MatchUpDrawPositionIndex})
		}
		return out
	}
	first := resolve()
	if second := resolve(); !reflect.DeepEqual(first, second) {
		t.Errorf("random feed is not stable: %v then %v", first, second)
	}
	seen := make(map[[2]int]bool)
	for _, slot := range first {
		if seen[slot] {
			t.Errorf("slot %v used twice", slot)
		}
		seen[slot] = true
	}
}

func TestGetTargetMatchUpDrawProfile(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeDoubleElimination, 8)
	main, decider := dd.Structures[0], dd.Structures[2]
	link := FindLink(dd.Links, models.LinkTypeWinner, main.StructureID, 3)
	if link == nil {
		t.Fatalf("decider link missing")
	}
	target, err := GetTargetMatchUp(TargetMatchUpParams{
		DrawDefinition:          dd,
		TargetLink:              link,
		SourceRoundPosition:     1,
		SourceRoundMatchUpCount: 1,
	})
	if err != nil {
		t.Fatalf("GetTargetMatchUp error = %v", err)
	}
	if target.Structure != decider || target.DrawPosition != 1 || target.MatchUpDrawPositionIndex != 0 {
		t.Errorf("decider target = %s dp %d index %d", target.Structure.StructureID, target.DrawPosition, target.MatchUpDrawPositionIndex)
	}
}
