package brackets

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Dosada05/tournament-draws/models"
)

func TestGetAvailablePlayoffProfiles(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeSingleElimination, 8)
	profiles, err := GetAvailablePlayoffProfiles(dd, dd.Structures[0].StructureID)
	if err != nil {
		t.Fatalf("GetAvailablePlayoffProfiles error = %v", err)
	}
	want := []PlayoffProfile{
		{RoundNumber: 1, FinishingPositions: []int{5, 6, 7, 8}, FinishingPositionRange: "5-8", ParticipantsCount: 4},
		{RoundNumber: 2, FinishingPositions: []int{3, 4}, FinishingPositionRange: "3-4", ParticipantsCount: 2},
	}
	if !reflect.DeepEqual(profiles, want) {
		t.Errorf("profiles = %+v, want %+v", profiles, want)
	}

	if _, err := GetAvailablePlayoffProfiles(dd, "missing"); !errors.Is(err, ErrStructureNotFound) {
		t.Errorf("missing structure: error = %v", err)
	}
}

func TestGenerateAndPopulatePlayoffStructures(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeSingleElimination, 8)
	main := dd.Structures[0]
	fillPositions(main)
	for rp := 1; rp <= 4; rp++ {
		decide(t, dd, matchUpAt(t, main, 1, rp), 1)
	}

	result, err := GenerateAndPopulatePlayoffStructures(context.Background(), dd, PlayoffStructuresParams{
		SourceStructureID: main.StructureID,
		RoundNumbers:      []int{1},
		IDPrefix:          "po",
	})
	if err != nil {
		t.Fatalf("GenerateAndPopulatePlayoffStructures error = %v", err)
	}
	if len(result.Structures) != 1 || len(result.Links) != 1 {
		t.Fatalf("structures = %d links = %d, want 1 and 1", len(result.Structures), len(result.Links))
	}
	playoff := result.Structures[0]
	if playoff.Stage != models.StagePlayoff {
		t.Errorf("stage = %s", playoff.Stage)
	}
	if len(playoff.MatchUps) != 3 {
		t.Errorf("playoff matchUps = %d, want 3", len(playoff.MatchUps))
	}
	var placed []string
	for _, pa := range playoff.PositionAssignments {
		placed = append(placed, pa.ParticipantID)
	}
	if want := []string{"P2", "P4", "P6", "P8"}; !reflect.DeepEqual(placed, want) {
		t.Errorf("playoff participants = %v, want %v", placed, want)
	}
	if got := matchUpAt(t, main, 1, 1).LoserMatchUpID; got != matchUpAt(t, playoff, 1, 1).MatchUpID {
		t.Errorf("loserMatchUpId = %q not annotated to the playoff", got)
	}

	profiles, err := GetAvailablePlayoffProfiles(dd, main.StructureID)
	if err != nil {
		t.Fatalf("GetAvailablePlayoffProfiles error = %v", err)
	}
	if len(profiles) != 1 || profiles[0].RoundNumber != 2 {
		t.Errorf("profiles after playoff = %+v, want round 2 only", profiles)
	}

	_, err = GenerateAndPopulatePlayoffStructures(context.Background(), dd, PlayoffStructuresParams{
		SourceStructureID: main.StructureID,
		RoundNumbers:      []int{1},
	})
	if !errors.Is(err, ErrExistingPlayoffStructure) {
		t.Errorf("second playoff for round 1: error = %v, want EXISTING_PLAYOFF_STRUCTURE", err)
	}
	_, err = GenerateAndPopulatePlayoffStructures(context.Background(), dd, PlayoffStructuresParams{
		SourceStructureID: main.StructureID,
		RoundNumbers:      []int{3},
	})
	if !errors.Is(err, ErrInvalidPlayoffPosition) {
		t.Errorf("playoff for the final: error = %v, want INVALID_PLAYOFF_POSITION", err)
	}
}

// completeGroup decides every group matchUp for the lower draw position.
func completeGroup(t *testing.T, dd *models.DrawDefinition, group *models.Structure) {
	t.Helper()
	for _, m := range group.MatchUps {
		side := 1
		if m.DrawPositions[1] < m.DrawPositions[0] {
			side = 2
		}
		decide(t, dd, m, side)
	}
}

func TestTallyGroup(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeRoundRobin, 4)
	group := dd.Structures[0].Structures[0]
	fillPositions(group)

	tally, err := TallyGroup(group)
	if err != nil {
		t.Fatalf("TallyGroup error = %v", err)
	}
	if tally.Complete {
		t.Errorf("fresh group reported complete")
	}

	completeGroup(t, dd, group)
	tally, err = TallyGroup(group)
	if err != nil {
		t.Fatalf("TallyGroup error = %v", err)
	}
	if !tally.Complete {
		t.Fatalf("finished group reported incomplete")
	}
	var order []string
	for _, st := range tally.Standings {
		order = append(order, st.ParticipantID)
	}
	if want := []string{"P1", "P2", "P3", "P4"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if tally.Standings[0].MatchUpsWon != 3 || tally.Standings[3].MatchUpsLost != 3 {
		t.Errorf("standings = %+v", tally.Standings)
	}
	finishers := groupFinishers(group)
	if finishers[1] != "P1" || finishers[4] != "P4" {
		t.Errorf("tally extension finishers = %v", finishers)
	}

	if _, err := TallyGroup(dd.Structures[0]); !errors.Is(err, ErrInvalidStructure) {
		t.Errorf("container tally: error = %v", err)
	}
}

func TestTallyGroupHeadToHead(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeRoundRobin, 3)
	group := dd.Structures[0].Structures[0]
	fillPositions(group)
	// P3 beats P1, P1 beats P2, P2 beats P3: a three-way tie on wins falls
	// through to sets and then draw position.
	for _, m := range group.MatchUps {
		a, b := m.DrawPositions[0], m.DrawPositions[1]
		side := 1
		switch {
		case a == 1 && b == 3, a == 3 && b == 1:
			if a == 1 {
				side = 2
			}
		case a == 2 && b == 3:
			side = 1
		case a == 3 && b == 2:
			side = 2
		}
		decide(t, dd, m, side)
	}
	tally, err := TallyGroup(group)
	if err != nil {
		t.Fatalf("TallyGroup error = %v", err)
	}
	var order []string
	for _, st := range tally.Standings {
		order = append(order, st.ParticipantID)
	}
	if want := []string{"P1", "P2", "P3"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestRoundRobinWithPlayoffPopulation(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeRoundRobinWithPlayoff, 8)
	if len(dd.Structures) != 2 || len(dd.Links) != 1 {
		t.Fatalf("structures = %d links = %d, want 2 and 1", len(dd.Structures), len(dd.Links))
	}
	container, playoff := dd.Structures[0], dd.Structures[1]
	if len(container.Structures) != 2 {
		t.Fatalf("groups = %d, want 2", len(container.Structures))
	}
	fillPositions(container)
	first, second := container.Structures[0], container.Structures[1]

	completeGroup(t, dd, first)
	final := playoff.MatchUps[0]
	if got := participantAtSlot(playoff, final, 0); got != "P1" {
		t.Errorf("group 1 winner in playoff = %q, want P1", got)
	}
	if got := participantAtSlot(playoff, final, 1); got != "" {
		t.Errorf("group 2 slot filled early with %q", got)
	}

	completeGroup(t, dd, second)
	if got := participantAtSlot(playoff, final, 1); got != "P5" {
		t.Errorf("group 2 winner in playoff = %q, want P5", got)
	}

	if _, err := RemoveMatchUpOutcome(dd, first.MatchUps[0].MatchUpID, nil); err != nil {
		t.Fatalf("RemoveMatchUpOutcome error = %v", err)
	}
	if got := participantAtSlot(playoff, final, 0); got != "" {
		t.Errorf("incomplete group still placed %q", got)
	}
}

func TestGenerateAndPopulateRRPlayoffStructures(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeRoundRobinWithPlayoff, 8)
	container := dd.Structures[0]
	fillPositions(container)
	completeGroup(t, dd, container.Structures[0])

	result, err := GenerateAndPopulatePlayoffStructures(context.Background(), dd, PlayoffStructuresParams{
		SourceStructureID: container.StructureID,
		PlayoffGroups:     []PlayoffGroup{{FinishingPositions: []int{2}, StructureName: "Silver"}},
		IDPrefix:          "rr",
	})
	if err != nil {
		t.Fatalf("GenerateAndPopulatePlayoffStructures error = %v", err)
	}
	if len(result.Structures) != 1 || result.Structures[0].StructureName != "Silver" {
		t.Fatalf("structures = %+v", result.Structures)
	}
	if want := []string{container.Structures[1].StructureID}; !reflect.DeepEqual(result.IncompleteGroups, want) {
		t.Errorf("incomplete groups = %v, want %v", result.IncompleteGroups, want)
	}
	silver := result.Structures[0]
	if got := participantAtSlot(silver, silver.MatchUps[0], 0); got != "P2" {
		t.Errorf("group 1 runner-up = %q, want P2", got)
	}

	_, err = GenerateAndPopulatePlayoffStructures(context.Background(), dd, PlayoffStructuresParams{
		SourceStructureID: container.StructureID,
		PlayoffGroups:     []PlayoffGroup{{FinishingPositions: []int{1}}},
	})
	if !errors.Is(err, ErrExistingPlayoffStructure) {
		t.Errorf("reused finishing position: error = %v, want EXISTING_PLAYOFF_STRUCTURE", err)
	}
	_, err = GenerateAndPopulatePlayoffStructures(context.Background(), dd, PlayoffStructuresParams{
		SourceStructureID: container.StructureID,
		PlayoffGroups:     []PlayoffGroup{{FinishingPositions: []int{9}}},
	})
	if !errors.Is(err, ErrInvalidPlayoffPosition) {
		t.Errorf("unknown finishing position: error = %v, want INVALID_PLAYOFF_POSITION", err)
	}
}
