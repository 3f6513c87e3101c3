package brackets

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/Dosada05/tournament-draws/models"
)

func testEntries(n int) []models.Entry {
	entries := make([]models.Entry, n)
	for i := range entries {
		entries[i] = models.Entry{ParticipantID: fmt.Sprintf("P%d", i+1), EntryPosition: i + 1}
	}
	return entries
}

func mustGenerate(t *testing.T, params GenerateParams) *StructuresResult {
	t.Helper()
	if params.IDPrefix == "" && params.IDs == nil {
		params.IDPrefix = "t"
	}
	result, err := GenerateStructures(context.Background(), params)
	if err != nil {
		t.Fatalf("GenerateStructures(%s, %d) error = %v", params.DrawType, params.DrawSize, err)
	}
	return result
}

// newTestDraw generates a draw without positioning; fillPositions places
// participant P<n> at draw position n.
func newTestDraw(t *testing.T, drawType models.DrawType, drawSize int) *models.DrawDefinition {
	t.Helper()
	result, err := GenerateDrawDefinition(context.Background(), GenerateDrawDefinitionParams{
		DrawID:   "draw",
		DrawType: drawType,
		DrawSize: drawSize,
		IDPrefix: "t",
	})
	if err != nil {
		t.Fatalf("GenerateDrawDefinition(%s, %d) error = %v", drawType, drawSize, err)
	}
	return result.DrawDefinition
}

func fillPositions(s *models.Structure) {
	if s.IsContainer() {
		for _, group := range s.Structures {
			fillPositions(group)
		}
		return
	}
	for _, pa := range s.PositionAssignments {
		if !pa.Filled() {
			pa.ParticipantID = fmt.Sprintf("P%d", pa.DrawPosition)
		}
	}
	syncSides(s)
}

func matchUpAt(t *testing.T, s *models.Structure, round, roundPosition int) *models.MatchUp {
	t.Helper()
	for _, m := range s.MatchUps {
		if m.RoundNumber == round && m.RoundPosition == roundPosition {
			return m
		}
	}
	t.Fatalf("structure %s has no matchUp at round %d position %d", s.StructureID, round, roundPosition)
	return nil
}

func decide(t *testing.T, dd *models.DrawDefinition, m *models.MatchUp, winningSide int) {
	t.Helper()
	if _, err := SetMatchUpOutcome(dd, OutcomeParams{MatchUpID: m.MatchUpID, WinningSide: winningSide}); err != nil {
		t.Fatalf("SetMatchUpOutcome(%s, %d) error = %v", m.MatchUpID, winningSide, err)
	}
}

func snapshot(t *testing.T, dd *models.DrawDefinition) string {
	t.Helper()
	raw, err := json.Marshal(dd)
	if err != nil {
		t.Fatalf("marshal draw: %v", err)
	}
	return string(raw)
}

func participantAtSlot(s *models.Structure, m *models.MatchUp, index int) string {
	return slotAt(s, m, index).participantID
}
