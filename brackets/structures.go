package brackets

import (
	"log/slog"

	"github.com/Dosada05/tournament-draws/models"
)

// FindStructure returns the structure with the given id, searching container
// groups too.
func FindStructure(dd *models.DrawDefinition, structureID string) *models.Structure {
	if dd == nil || structureID == "" {
		return nil
	}
	var walk func([]*models.Structure) *models.Structure
	walk = func(list []*models.Structure) *models.Structure {
		for _, s := range list {
			if s.StructureID == structureID {
				return s
			}
			if found := walk(s.Structures); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(dd.Structures)
}

// findContainer returns the container holding the group, or nil.
func findContainer(dd *models.DrawDefinition, groupID string) *models.Structure {
	for _, s := range dd.Structures {
		for _, child := range s.Structures {
			if child.StructureID == groupID {
				return s
			}
		}
	}
	return nil
}

// MatchUpLocation places a matchUp inside its draw.
type MatchUpLocation struct {
	Structure *models.Structure
	Container *models.Structure
	MatchUp   *models.MatchUp
	// TieParent is set when MatchUp is a collection matchUp of a TEAM tie.
	TieParent *models.MatchUp
}

// FindMatchUp locates a matchUp, including tie matchUps.
func FindMatchUp(dd *models.DrawDefinition, matchUpID string) (*MatchUpLocation, error) {
	if dd == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	if matchUpID == "" {
		return nil, newError(ErrMissingMatchUpID, "")
	}
	var found *MatchUpLocation
	var walk func(list []*models.Structure, container *models.Structure)
	walk = func(list []*models.Structure, container *models.Structure) {
		for _, s := range list {
			if found != nil {
				return
			}
			if s.IsContainer() {
				walk(s.Structures, s)
				continue
			}
			for _, m := range s.MatchUps {
				if m.MatchUpID == matchUpID {
					found = &MatchUpLocation{Structure: s, Container: container, MatchUp: m}
					return
				}
				for _, tie := range m.TieMatchUps {
					if tie.MatchUpID == matchUpID {
						found = &MatchUpLocation{Structure: s, Container: container, MatchUp: tie, TieParent: m}
						return
					}
				}
			}
		}
	}
	walk(dd.Structures, nil)
	if found == nil {
		return nil, newError(ErrMatchUpNotFound, "", "matchUpId", matchUpID)
	}
	return found, nil
}

// structureTieFormat resolves the tie format for a structure: its own, the
// container's, then the draw's.
func structureTieFormat(dd *models.DrawDefinition, s *models.Structure) *models.TieFormat {
	if s.TieFormat != nil {
		return s.TieFormat
	}
	if container := findContainer(dd, s.StructureID); container != nil && container.TieFormat != nil {
		return container.TieFormat
	}
	return dd.TieFormat
}

func positionAssignment(s *models.Structure, drawPosition int) *models.PositionAssignment {
	for _, pa := range s.PositionAssignments {
		if pa.DrawPosition == drawPosition {
			return pa
		}
	}
	return nil
}

// isFixedSlot reports whether a matchUp slot is set at generation (round 1 or
// the fed slot of a feed round) rather than by advancement.
func isFixedSlot(rm *RoundMatchUps, m *models.MatchUp, index int) bool {
	if m.RoundNumber == 1 {
		return true
	}
	profile := rm.RoundProfile[m.RoundNumber]
	return profile != nil && profile.FeedRound && index == 0
}

// downstreamStructures returns structureID plus every structure reachable
// from it through links, in discovery order.
func downstreamStructures(dd *models.DrawDefinition, structureID string) []string {
	seen := map[string]bool{structureID: true}
	order := []string{structureID}
	for i := 0; i < len(order); i++ {
		for _, link := range dd.Links {
			if link.Source.StructureID == order[i] && !seen[link.Target.StructureID] {
				seen[link.Target.StructureID] = true
				order = append(order, link.Target.StructureID)
			}
		}
	}
	return order
}

func structureHasResults(s *models.Structure) bool {
	for _, m := range s.AllMatchUps() {
		if m.HasResult() {
			return true
		}
		for _, tie := range m.TieMatchUps {
			if tie.HasResult() {
				return true
			}
		}
	}
	return false
}

// RemoveStructure deletes a structure, every structure fed from it and their
// links. Recorded results block removal unless force is set.
func RemoveStructure(dd *models.DrawDefinition, structureID string, force bool) ([]string, error) {
	if dd == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	if structureID == "" {
		return nil, newError(ErrMissingStructureID, "")
	}
	if FindStructure(dd, structureID) == nil {
		return nil, newError(ErrStructureNotFound, "", "structureId", structureID)
	}
	if findContainer(dd, structureID) != nil {
		return nil, newError(ErrInvalidStructure, "groups are removed with their container", "structureId", structureID)
	}

	removed := downstreamStructures(dd, structureID)
	drop := make(map[string]bool, len(removed))
	for _, id := range removed {
		drop[id] = true
		if s := FindStructure(dd, id); s != nil && !force && structureHasResults(s) {
			return nil, newError(ErrScoresPresent, "", "structureId", id)
		}
	}

	kept := dd.Structures[:0]
	for _, s := range dd.Structures {
		if !drop[s.StructureID] {
			kept = append(kept, s)
		}
	}
	dd.Structures = kept
	links := dd.Links[:0]
	for _, link := range dd.Links {
		if !drop[link.Source.StructureID] && !drop[link.Target.StructureID] {
			links = append(links, link)
		}
	}
	dd.Links = links
	AnnotateGoesTo(dd, nil)
	return removed, nil
}

// ResetStructure clears results, advanced positions and assignments of a
// structure and of every structure fed from it, keeping their shape.
func ResetStructure(dd *models.DrawDefinition, structureID string, force bool) error {
	if dd == nil {
		return newError(ErrMissingDrawDefinition, "")
	}
	if FindStructure(dd, structureID) == nil {
		return newError(ErrStructureNotFound, "", "structureId", structureID)
	}
	ids := downstreamStructures(dd, structureID)
	if !force {
		for _, id := range ids {
			if structureHasResults(FindStructure(dd, id)) {
				return newError(ErrScoresPresent, "", "structureId", id)
			}
		}
	}
	for _, id := range ids {
		resetLeaf(FindStructure(dd, id))
	}
	return nil
}

func resetLeaf(s *models.Structure) {
	if s.IsContainer() {
		for _, child := range s.Structures {
			resetLeaf(child)
		}
		return
	}
	rm := GetRoundMatchUps(s.MatchUps)
	for _, m := range s.MatchUps {
		clearOutcome(m)
		m.MatchUpStatus = models.MatchUpStatusToBePlayed
		for i := range m.DrawPositions {
			if s.FinishingPosition != models.FinishingPositionWinRatio && !isFixedSlot(rm, m, i) {
				m.DrawPositions[i] = 0
			}
		}
		for _, tie := range m.TieMatchUps {
			clearOutcome(tie)
			tie.MatchUpStatus = models.MatchUpStatusToBePlayed
			tie.Sides = nil
		}
		if !IsAdHoc(s) {
			m.Sides = nil
		}
	}
	for _, pa := range s.PositionAssignments {
		pa.ParticipantID, pa.Bye, pa.SeedValue = "", false, 0
		pa.Extensions = nil
	}
	s.SeedAssignments = nil
}

func clearOutcome(m *models.MatchUp) {
	m.WinningSide = 0
	m.Score = nil
}

// PruneDrawDefinition drops ad hoc matchUps that were never played and have
// no participants. It returns the number of matchUps removed.
func PruneDrawDefinition(dd *models.DrawDefinition) int {
	if dd == nil {
		return 0
	}
	pruned := 0
	for _, s := range dd.Structures {
		if !IsAdHoc(s) {
			continue
		}
		kept := s.MatchUps[:0]
		for _, m := range s.MatchUps {
			empty := true
			for _, side := range m.Sides {
				if side.ParticipantID != "" {
					empty = false
				}
			}
			if empty && !m.HasResult() {
				pruned++
				continue
			}
			kept = append(kept, m)
		}
		s.MatchUps = kept
	}
	return pruned
}

// AnnotateGoesTo records winnerMatchUpId and loserMatchUpId on every
// elimination matchUp of the draw.
func AnnotateGoesTo(dd *models.DrawDefinition, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, s := range dd.Structures {
		if s.IsContainer() || IsAdHoc(s) || s.FinishingPosition == models.FinishingPositionWinRatio {
			continue
		}
		for _, m := range s.MatchUps {
			m.WinnerMatchUpID, m.LoserMatchUpID = "", ""
			targets, err := GetPositionTargets(dd, s, m)
			if err != nil {
				logger.Warn("goesTo resolution failed",
					slog.String("matchUpId", m.MatchUpID),
					slog.Any("error", err),
				)
				continue
			}
			if targets.WinnerTarget != nil {
				m.WinnerMatchUpID = targets.WinnerTarget.MatchUp.MatchUpID
			}
			if targets.LoserTarget != nil {
				m.LoserMatchUpID = targets.LoserTarget.MatchUp.MatchUpID
			}
		}
	}
}
