package brackets

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tournament-draws/models"
)

func TestSetMatchUpOutcomeAdvancesWinner(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeSingleElimination, 8)
	main := dd.Structures[0]
	fillPositions(main)

	first := matchUpAt(t, main, 1, 1)
	result, err := SetMatchUpOutcome(dd, OutcomeParams{MatchUpID: first.MatchUpID, WinningSide: 2})
	if err != nil {
		t.Fatalf("SetMatchUpOutcome error = %v", err)
	}
	if first.MatchUpStatus != models.MatchUpStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", first.MatchUpStatus)
	}
	if len(result.ModifiedMatchUp) < 2 {
		t.Errorf("modified matchUps = %d, want the decided matchUp and its target", len(result.ModifiedMatchUp))
	}
	next := matchUpAt(t, main, 2, 1)
	if next.DrawPositions[0] != 2 {
		t.Errorf("round 2 slot 1 drawPosition = %d, want 2", next.DrawPositions[0])
	}
	if got := next.Side(1).ParticipantID; got != "P2" {
		t.Errorf("round 2 side 1 participant = %q, want P2", got)
	}
	if got := GetAdvancingParticipantID(main, first); got != "P2" {
		t.Errorf("advancing participant = %q, want P2", got)
	}
}

func TestRemoveMatchUpOutcomeRestoresDraw(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeSingleElimination, 8)
	main := dd.Structures[0]
	fillPositions(main)
	before := snapshot(t, dd)

	first := matchUpAt(t, main, 1, 1)
	decide(t, dd, first, 1)
	if _, err := RemoveMatchUpOutcome(dd, first.MatchUpID, nil); err != nil {
		t.Fatalf("RemoveMatchUpOutcome error = %v", err)
	}
	if after := snapshot(t, dd); after != before {
		t.Errorf("draw differs after set then remove\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestRemoveMatchUpOutcomeCascades(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeSingleElimination, 8)
	main := dd.Structures[0]
	fillPositions(main)

	decide(t, dd, matchUpAt(t, main, 1, 2), 1)
	before := snapshot(t, dd)

	first := matchUpAt(t, main, 1, 1)
	decide(t, dd, first, 1)
	semi := matchUpAt(t, main, 2, 1)
	decide(t, dd, semi, 2)
	final := matchUpAt(t, main, 3, 1)
	if final.DrawPositions[0] != 3 {
		t.Fatalf("final slot 1 drawPosition = %d, want 3", final.DrawPositions[0])
	}

	if _, err := RemoveMatchUpOutcome(dd, first.MatchUpID, nil); err != nil {
		t.Fatalf("RemoveMatchUpOutcome error = %v", err)
	}
	if semi.HasResult() {
		t.Errorf("downstream semifinal result was kept")
	}
	if final.DrawPositions[0] != 0 {
		t.Errorf("final slot still holds drawPosition %d", final.DrawPositions[0])
	}
	if after := snapshot(t, dd); after != before {
		t.Errorf("cascade removal did not restore the earlier state")
	}
}

func TestSetMatchUpOutcomeRefusals(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeSingleElimination, 8)
	main := dd.Structures[0]

	first := matchUpAt(t, main, 1, 1)
	_, err := SetMatchUpOutcome(dd, OutcomeParams{MatchUpID: first.MatchUpID, WinningSide: 1})
	if !errors.Is(err, ErrIncompatibleMatchUpStatus) {
		t.Errorf("unpositioned matchUp: error = %v, want INCOMPATIBLE_MATCHUP_STATUS", err)
	}

	fillPositions(main)
	tests := []struct {
		name   string
		params OutcomeParams
		want   error
	}{
		{"bye status", OutcomeParams{MatchUpID: first.MatchUpID, MatchUpStatus: models.MatchUpStatusBye}, ErrInvalidMatchUpStatus},
		{"bad side", OutcomeParams{MatchUpID: first.MatchUpID, WinningSide: 3}, ErrInvalidWinningSide},
		{"side without decision", OutcomeParams{MatchUpID: first.MatchUpID, WinningSide: 1, MatchUpStatus: models.MatchUpStatusInProgress}, ErrInvalidWinningSide},
		{"missing matchUp", OutcomeParams{MatchUpID: "nope", WinningSide: 1}, ErrMatchUpNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SetMatchUpOutcome(dd, tt.params); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	decide(t, dd, first, 1)
	decide(t, dd, matchUpAt(t, main, 1, 2), 1)
	decide(t, dd, matchUpAt(t, main, 2, 1), 1)
	_, err = SetMatchUpOutcome(dd, OutcomeParams{MatchUpID: first.MatchUpID, WinningSide: 2})
	if !errors.Is(err, ErrIncompatibleMatchUpStatus) {
		t.Errorf("winner change with downstream result: error = %v, want INCOMPATIBLE_MATCHUP_STATUS", err)
	}
	if first.WinningSide != 1 {
		t.Errorf("refused change mutated winningSide to %d", first.WinningSide)
	}
}

func TestChangingWinnerMovesParticipant(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeSingleElimination, 4)
	main := dd.Structures[0]
	fillPositions(main)

	first := matchUpAt(t, main, 1, 1)
	decide(t, dd, first, 1)
	decide(t, dd, first, 2)
	final := matchUpAt(t, main, 2, 1)
	if got := participantAtSlot(main, final, 0); got != "P2" {
		t.Errorf("final slot 1 participant = %q, want P2", got)
	}
}

func TestLoserFeedsConsolation(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeFeedInChampionship, 8)
	main, consolation := dd.Structures[0], dd.Structures[1]
	fillPositions(main)

	first := matchUpAt(t, main, 1, 1)
	decide(t, dd, first, 1)
	if first.LoserMatchUpID == "" {
		t.Fatalf("loserMatchUpId not annotated")
	}
	target := matchUpAt(t, consolation, 1, 1)
	if target.MatchUpID != first.LoserMatchUpID {
		t.Errorf("loserMatchUpId = %s, want %s", first.LoserMatchUpID, target.MatchUpID)
	}
	if got := participantAtSlot(consolation, target, 0); got != "P2" {
		t.Errorf("consolation participant = %q, want P2", got)
	}

	if _, err := RemoveMatchUpOutcome(dd, first.MatchUpID, nil); err != nil {
		t.Fatalf("RemoveMatchUpOutcome error = %v", err)
	}
	if got := participantAtSlot(consolation, target, 0); got != "" {
		t.Errorf("consolation still holds %q after removal", got)
	}
}

func TestAutomatedPositioningAdvancesByes(t *testing.T) {
	dd := newTestDraw(t, models.DrawTypeSingleElimination, 8)
	report, err := AutomatedPositioning(dd, PositioningParams{
		StructureID: dd.Structures[0].StructureID,
		Entries:     testEntries(6),
	})
	if err != nil {
		t.Fatalf("AutomatedPositioning error = %v", err)
	}
	if len(report.Byes) != 2 {
		t.Fatalf("byes = %v, want 2", report.Byes)
	}
	main := dd.Structures[0]
	byeMatchUps := 0
	for _, m := range GetRoundMatchUps(main.MatchUps).RoundMatchUps[1] {
		if m.MatchUpStatus != models.MatchUpStatusBye {
			continue
		}
		byeMatchUps++
		next := matchUpAt(t, main, 2, (m.RoundPosition+1)/2)
		slot := 1 - m.RoundPosition%2
		if participantAtSlot(main, next, slot) == "" {
			t.Errorf("bye winner of round position %d did not advance", m.RoundPosition)
		}
	}
	if byeMatchUps != 2 {
		t.Errorf("bye matchUps = %d, want 2", byeMatchUps)
	}

	_, err = AutomatedPositioning(dd, PositioningParams{StructureID: main.StructureID, Entries: testEntries(6)})
	if !errors.Is(err, ErrDrawPositionAssigned) {
		t.Errorf("second positioning: error = %v, want DRAW_POSITION_ASSIGNED", err)
	}
}

func TestTeamMatchUpScoredFromTies(t *testing.T) {
	tieFormat := &models.TieFormat{CollectionDefinitions: []models.CollectionDefinition{
		{CollectionID: "S", MatchUpType: models.MatchUpTypeSingles, MatchUpCount: 3},
	}}
	result, err := GenerateDrawDefinition(context.Background(), GenerateDrawDefinitionParams{
		DrawType:  models.DrawTypeSingleElimination,
		DrawSize:  4,
		TieFormat: tieFormat,
		IDPrefix:  "t",
	})
	if err != nil {
		t.Fatalf("GenerateDrawDefinition error = %v", err)
	}
	dd := result.DrawDefinition
	main := dd.Structures[0]
	fillPositions(main)
	parent := matchUpAt(t, main, 1, 1)
	if len(parent.TieMatchUps) != 3 {
		t.Fatalf("tie matchUps = %d, want 3", len(parent.TieMatchUps))
	}

	decide(t, dd, parent.TieMatchUps[0], 1)
	if parent.MatchUpStatus != models.MatchUpStatusInProgress || parent.WinningSide != 0 {
		t.Errorf("after one tie: status %s winningSide %d", parent.MatchUpStatus, parent.WinningSide)
	}
	decide(t, dd, parent.TieMatchUps[1], 1)
	if parent.WinningSide != 1 || parent.MatchUpStatus != models.MatchUpStatusCompleted {
		t.Fatalf("after two ties: status %s winningSide %d", parent.MatchUpStatus, parent.WinningSide)
	}
	final := matchUpAt(t, main, 2, 1)
	if got := participantAtSlot(main, final, 0); got != "P1" {
		t.Errorf("team winner not advanced, slot holds %q", got)
	}

	if _, err := RemoveMatchUpOutcome(dd, parent.TieMatchUps[1].MatchUpID, nil); err != nil {
		t.Fatalf("RemoveMatchUpOutcome error = %v", err)
	}
	if parent.WinningSide != 0 {
		t.Errorf("team result kept after tie removal")
	}
	if final.DrawPositions[0] != 0 {
		t.Errorf("team advancement kept after tie removal")
	}
}

func TestTieWinner(t *testing.T) {
	format := &models.TieFormat{CollectionDefinitions: []models.CollectionDefinition{
		{CollectionID: "S", MatchUpCount: 4},
		{CollectionID: "D", MatchUpCount: 1, MatchUpValue: 2},
	}}
	tests := []struct {
		score [2]int
		want  int
	}{
		{[2]int{3, 3}, 0},
		{[2]int{4, 2}, 1},
		{[2]int{1, 5}, 2},
	}
	for _, tt := range tests {
		if got := tieWinner(format, tt.score); got != tt.want {
			t.Errorf("tieWinner(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
	if got := tieWinner(nil, [2]int{5, 0}); got != 0 {
		t.Errorf("tieWinner without format = %d", got)
	}
}
