package brackets

import (
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-draws/models"
)

// OutcomeParams records a matchUp result.
type OutcomeParams struct {
	MatchUpID     string
	WinningSide   int
	MatchUpStatus models.MatchUpStatus
	Score         *models.Score
	Logger        *slog.Logger
}

// OutcomeResult reports the matchUps touched by an outcome change.
type OutcomeResult struct {
	MatchUp         *models.MatchUp   `json:"matchUp"`
	ModifiedMatchUp []*models.MatchUp `json:"modifiedMatchUps,omitempty"`
}

// advancer applies and reverses participant movement for one draw.
type advancer struct {
	dd       *models.DrawDefinition
	logger   *slog.Logger
	modified map[string]*models.MatchUp
	order    []*models.MatchUp
}

func newAdvancer(dd *models.DrawDefinition, logger *slog.Logger) *advancer {
	if logger == nil {
		logger = slog.Default()
	}
	return &advancer{dd: dd, logger: logger, modified: make(map[string]*models.MatchUp)}
}

func (a *advancer) touch(m *models.MatchUp) {
	if _, ok := a.modified[m.MatchUpID]; !ok {
		a.modified[m.MatchUpID] = m
		a.order = append(a.order, m)
	}
}

// slot describes what occupies one side of a matchUp.
type slot struct {
	drawPosition  int
	participantID string
	bye           bool
	qualifier     bool
}

func (s slot) filled() bool { return s.participantID != "" || s.bye }

func slotAt(s *models.Structure, m *models.MatchUp, index int) slot {
	if len(m.DrawPositions) == 0 {
		if index < len(m.Sides) {
			return slot{participantID: m.Sides[index].ParticipantID}
		}
		return slot{}
	}
	if index >= len(m.DrawPositions) || m.DrawPositions[index] == 0 {
		return slot{}
	}
	dp := m.DrawPositions[index]
	out := slot{drawPosition: dp}
	if pa := positionAssignment(s, dp); pa != nil {
		out.participantID, out.bye, out.qualifier = pa.ParticipantID, pa.Bye, pa.Qualifier
	}
	return out
}

// syncSides rebuilds the sides of every positioned matchUp in the structure
// from its position assignments.
func syncSides(s *models.Structure) {
	for _, m := range s.MatchUps {
		if len(m.DrawPositions) == 0 {
			continue
		}
		sides := make([]models.Side, 0, 2)
		for i, dp := range m.DrawPositions {
			side := models.Side{SideNumber: i + 1, DrawPosition: dp}
			if pa := positionAssignment(s, dp); dp != 0 && pa != nil {
				side.ParticipantID, side.Bye, side.Qualifier = pa.ParticipantID, pa.Bye, pa.Qualifier
			}
			sides = append(sides, side)
		}
		m.Sides = sides
		for _, tie := range m.TieMatchUps {
			tie.Sides = append([]models.Side(nil), sides...)
		}
	}
}

// GetAdvancingParticipantID returns the winner's participantId, or for a BYE
// matchUp whichever side holds a participant.
func GetAdvancingParticipantID(s *models.Structure, m *models.MatchUp) string {
	if m.MatchUpStatus == models.MatchUpStatusBye {
		for i := 0; i < 2; i++ {
			if sl := slotAt(s, m, i); sl.participantID != "" {
				return sl.participantID
			}
		}
		return ""
	}
	if m.WinningSide == 1 || m.WinningSide == 2 {
		return slotAt(s, m, m.WinningSide-1).participantID
	}
	return ""
}

// SetMatchUpOutcome records a result and moves the winner and loser along
// the structure and its links. A changed winner is refused with
// INCOMPATIBLE_MATCHUP_STATUS while a downstream matchUp holds a result.
func SetMatchUpOutcome(dd *models.DrawDefinition, params OutcomeParams) (*OutcomeResult, error) {
	loc, err := FindMatchUp(dd, params.MatchUpID)
	if err != nil {
		return nil, err
	}
	a := newAdvancer(dd, params.Logger)
	status := params.MatchUpStatus
	if status == "" {
		status = models.MatchUpStatusCompleted
		if params.WinningSide == 0 {
			status = models.MatchUpStatusInProgress
		}
	}
	if status == models.MatchUpStatusBye {
		return nil, newError(ErrInvalidMatchUpStatus, "BYE is assigned by positioning")
	}
	if status.Decisive() && params.WinningSide != 1 && params.WinningSide != 2 {
		return nil, newError(ErrInvalidWinningSide, "decisive status requires winningSide 1 or 2", "winningSide", params.WinningSide)
	}
	if !status.Decisive() && params.WinningSide != 0 {
		return nil, newError(ErrInvalidWinningSide, fmt.Sprintf("%s takes no winningSide", status))
	}

	if loc.TieParent != nil {
		if err := a.setTieOutcome(loc, status, params); err != nil {
			return nil, err
		}
		return a.result(loc.MatchUp), nil
	}

	s, m := loc.Structure, loc.MatchUp
	if m.MatchUpStatus == models.MatchUpStatusBye {
		return nil, newError(ErrIncompatibleMatchUpStatus, "matchUp is a BYE", "matchUpId", m.MatchUpID)
	}
	if status.Decisive() {
		for i := 0; i < 2; i++ {
			if sl := slotAt(s, m, i); sl.participantID == "" {
				return nil, newError(ErrIncompatibleMatchUpStatus, "both sides must hold participants", "matchUpId", m.MatchUpID)
			}
		}
	}
	if m.WinningSide != 0 && m.WinningSide != params.WinningSide {
		if a.downstreamHasResult(s, m) {
			return nil, newError(ErrIncompatibleMatchUpStatus, "downstream matchUp has a result", "matchUpId", m.MatchUpID)
		}
		a.removeAdvancement(s, m)
	}

	advance := status.Decisive() && m.WinningSide != params.WinningSide
	m.MatchUpStatus = status
	m.WinningSide = params.WinningSide
	m.Score = params.Score
	a.touch(m)
	if advance {
		a.directParticipants(s, m)
	}
	if loc.Container != nil {
		a.afterGroupChange(loc.Container, s)
	}
	return a.result(m), nil
}

// RemoveMatchUpOutcome clears a result and reverses everything it caused,
// removing downstream results first.
func RemoveMatchUpOutcome(dd *models.DrawDefinition, matchUpID string, logger *slog.Logger) (*OutcomeResult, error) {
	loc, err := FindMatchUp(dd, matchUpID)
	if err != nil {
		return nil, err
	}
	a := newAdvancer(dd, logger)
	if loc.TieParent != nil {
		a.removeTieOutcome(loc)
		return a.result(loc.MatchUp), nil
	}
	if !loc.MatchUp.HasResult() {
		return a.result(loc.MatchUp), nil
	}
	a.removeOutcome(loc.Structure, loc.MatchUp)
	if loc.Container != nil {
		a.afterGroupChange(loc.Container, loc.Structure)
	}
	return a.result(loc.MatchUp), nil
}

func (a *advancer) result(m *models.MatchUp) *OutcomeResult {
	return &OutcomeResult{MatchUp: m, ModifiedMatchUp: a.order}
}

func (a *advancer) removeOutcome(s *models.Structure, m *models.MatchUp) {
	if m.WinningSide != 0 {
		a.removeAdvancement(s, m)
	}
	clearOutcome(m)
	m.MatchUpStatus = a.restingStatus(s, m)
	a.touch(m)
}

// restingStatus is BYE when a bye occupies a slot, otherwise TO_BE_PLAYED.
func (a *advancer) restingStatus(s *models.Structure, m *models.MatchUp) models.MatchUpStatus {
	for i := 0; i < 2; i++ {
		if slotAt(s, m, i).bye {
			return models.MatchUpStatusBye
		}
	}
	return models.MatchUpStatusToBePlayed
}

// directParticipants sends the winner and loser of m to their targets. A
// failing target is logged and skipped so other targets still resolve.
func (a *advancer) directParticipants(s *models.Structure, m *models.MatchUp) {
	if len(m.DrawPositions) == 0 || s.FinishingPosition == models.FinishingPositionWinRatio {
		return
	}
	targets, err := GetPositionTargets(a.dd, s, m)
	if err != nil {
		a.logger.Warn("position targets unresolved",
			slog.String("matchUpId", m.MatchUpID),
			slog.Any("error", err),
		)
		return
	}
	winnerIndex := m.WinningSide - 1
	winner := slotAt(s, m, winnerIndex)
	loser := slotAt(s, m, 1-winnerIndex)

	if t := targets.WinnerTarget; t != nil {
		if targets.WinnerLink != nil {
			if err := a.assign(t, winner.participantID, winner.bye); err != nil {
				a.logger.Warn("direct winner failed",
					slog.String("matchUpId", m.MatchUpID),
					slog.Any("error", err),
				)
			}
		} else {
			t.MatchUp.DrawPositions[t.MatchUpDrawPositionIndex] = winner.drawPosition
			syncSides(s)
			a.touch(t.MatchUp)
			a.checkByeAdvance(s, t.MatchUp)
		}
	}

	if t := targets.LoserTarget; t != nil {
		participantID, bye := loser.participantID, loser.bye
		if targets.LoserLink.LinkCondition == models.LinkConditionFirstMatchUp && !bye && a.playedBefore(s, m, loser.drawPosition) {
			participantID, bye = "", true
		}
		if err := a.assign(t, participantID, bye); err != nil {
			a.logger.Warn("direct loser failed",
				slog.String("matchUpId", m.MatchUpID),
				slog.Any("error", err),
			)
		}
	}
}

// playedBefore reports whether the position took part in a played matchUp
// in an earlier round of the structure.
func (a *advancer) playedBefore(s *models.Structure, m *models.MatchUp, drawPosition int) bool {
	for _, other := range s.MatchUps {
		if other.RoundNumber >= m.RoundNumber || other.MatchUpStatus == models.MatchUpStatusBye {
			continue
		}
		for _, dp := range other.DrawPositions {
			if dp == drawPosition && other.HasResult() {
				return true
			}
		}
	}
	return false
}

// assign places a participant (or bye) at a linked target position.
func (a *advancer) assign(t *TargetMatchUp, participantID string, bye bool) error {
	pa := positionAssignment(t.Structure, t.DrawPosition)
	if pa == nil {
		return newError(ErrInvalidValues, "target position missing", "structureId", t.Structure.StructureID, "drawPosition", t.DrawPosition)
	}
	if pa.Filled() && (pa.ParticipantID != participantID || pa.Bye != bye) {
		return newError(ErrDrawPositionAssigned, "", "structureId", t.Structure.StructureID, "drawPosition", t.DrawPosition)
	}
	pa.ParticipantID, pa.Bye = participantID, bye
	syncSides(t.Structure)
	a.touch(t.MatchUp)
	a.checkByeAdvance(t.Structure, t.MatchUp)
	return nil
}

// checkByeAdvance completes a matchUp holding a bye once its other side is
// known: the participant (or, for a double bye, a bye) advances.
func (a *advancer) checkByeAdvance(s *models.Structure, m *models.MatchUp) {
	if m.WinningSide != 0 || m.HasResult() {
		return
	}
	first, second := slotAt(s, m, 0), slotAt(s, m, 1)
	if !first.bye && !second.bye {
		return
	}
	m.MatchUpStatus = models.MatchUpStatusBye
	a.touch(m)
	if !first.filled() || !second.filled() {
		return
	}
	switch {
	case first.bye && !second.bye:
		m.WinningSide = 2
	default:
		m.WinningSide = 1
	}
	a.directParticipants(s, m)
}

// downstreamHasResult reports whether a target fed by m has a result.
func (a *advancer) downstreamHasResult(s *models.Structure, m *models.MatchUp) bool {
	if len(m.DrawPositions) == 0 {
		return false
	}
	targets, err := GetPositionTargets(a.dd, s, m)
	if err != nil {
		return false
	}
	for _, t := range []*TargetMatchUp{targets.WinnerTarget, targets.LoserTarget} {
		if t == nil {
			continue
		}
		if t.MatchUp.HasResult() {
			return true
		}
		if t.MatchUp.MatchUpStatus == models.MatchUpStatusBye && t.MatchUp.WinningSide != 0 && a.downstreamHasResult(t.Structure, t.MatchUp) {
			return true
		}
	}
	return false
}

// removeAdvancement undoes directParticipants for m's current winningSide.
func (a *advancer) removeAdvancement(s *models.Structure, m *models.MatchUp) {
	if len(m.DrawPositions) == 0 || s.FinishingPosition == models.FinishingPositionWinRatio {
		return
	}
	targets, err := GetPositionTargets(a.dd, s, m)
	if err != nil {
		a.logger.Warn("position targets unresolved during removal",
			slog.String("matchUpId", m.MatchUpID),
			slog.Any("error", err),
		)
		return
	}
	winnerIndex := m.WinningSide - 1
	winner := slotAt(s, m, winnerIndex)

	if t := targets.WinnerTarget; t != nil {
		if targets.WinnerLink != nil {
			a.unassign(t)
		} else if t.MatchUp.DrawPositions[t.MatchUpDrawPositionIndex] == winner.drawPosition {
			a.releaseTarget(t.Structure, t.MatchUp)
			t.MatchUp.DrawPositions[t.MatchUpDrawPositionIndex] = 0
			t.MatchUp.MatchUpStatus = a.restingStatus(t.Structure, t.MatchUp)
			syncSides(s)
			a.touch(t.MatchUp)
		}
	}
	if t := targets.LoserTarget; t != nil {
		a.unassign(t)
	}
}

// releaseTarget removes whatever the target matchUp did with the participant
// about to leave it: its own result, or a bye advancement.
func (a *advancer) releaseTarget(s *models.Structure, m *models.MatchUp) {
	switch {
	case m.HasResult():
		a.removeOutcome(s, m)
	case m.MatchUpStatus == models.MatchUpStatusBye && m.WinningSide != 0:
		a.removeAdvancement(s, m)
		m.WinningSide = 0
		a.touch(m)
	}
}

func (a *advancer) unassign(t *TargetMatchUp) {
	pa := positionAssignment(t.Structure, t.DrawPosition)
	if pa == nil || !pa.Filled() {
		return
	}
	a.releaseTarget(t.Structure, t.MatchUp)
	pa.ParticipantID, pa.Bye = "", false
	t.MatchUp.MatchUpStatus = a.restingStatus(t.Structure, t.MatchUp)
	syncSides(t.Structure)
	a.touch(t.MatchUp)
}

// AdvanceByes completes every BYE matchUp of a structure whose sides are
// known, propagating byes through the draw.
func AdvanceByes(dd *models.DrawDefinition, structureID string, logger *slog.Logger) error {
	s := FindStructure(dd, structureID)
	if s == nil {
		return newError(ErrStructureNotFound, "", "structureId", structureID)
	}
	a := newAdvancer(dd, logger)
	syncSides(s)
	rm := GetRoundMatchUps(s.MatchUps)
	for _, round := range rm.RoundNumbers {
		for _, m := range rm.RoundMatchUps[round] {
			a.checkByeAdvance(s, m)
		}
	}
	return nil
}
