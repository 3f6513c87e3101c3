package brackets

import (
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/Dosada05/tournament-draws/models"
)

// TallyExtension is written on group position assignments once every group
// matchUp is finished.
const TallyExtension = "TALLY"

// GroupStanding is one participant's line in a round robin group.
type GroupStanding struct {
	ParticipantID string `json:"participantId"`
	DrawPosition  int    `json:"drawPosition"`
	MatchUpsWon   int    `json:"matchUpsWon"`
	MatchUpsLost  int    `json:"matchUpsLost"`
	SetsWon       int    `json:"setsWon"`
	SetsLost      int    `json:"setsLost"`
	GroupOrder    int    `json:"groupOrder"`
}

// GroupTally orders a group. Complete is false while any matchUp between
// assigned participants is unfinished.
type GroupTally struct {
	StructureID string          `json:"structureId"`
	Standings   []GroupStanding `json:"standings"`
	Complete    bool            `json:"complete"`
}

type tallyValue struct {
	GroupOrder   int `json:"groupOrder"`
	MatchUpsWon  int `json:"matchUpsWon"`
	MatchUpsLost int `json:"matchUpsLost"`
}

func finished(status models.MatchUpStatus) bool {
	switch status {
	case models.MatchUpStatusDoubleWalkover, models.MatchUpStatusCancelled, models.MatchUpStatusAbandoned:
		return true
	}
	return status.Decisive()
}

// TallyGroup ranks a group by matchUps won, then the head-to-head result
// when exactly two participants are level, then set difference, then draw
// position.
func TallyGroup(group *models.Structure) (*GroupTally, error) {
	if group == nil {
		return nil, newError(ErrMissingStructureID, "")
	}
	if group.IsContainer() {
		return nil, newError(ErrInvalidStructure, "tally a group, not its container", "structureId", group.StructureID)
	}

	byID := make(map[string]*GroupStanding)
	var standings []*GroupStanding
	for _, pa := range group.PositionAssignments {
		if pa.ParticipantID == "" {
			continue
		}
		st := &GroupStanding{ParticipantID: pa.ParticipantID, DrawPosition: pa.DrawPosition}
		byID[pa.ParticipantID] = st
		standings = append(standings, st)
	}

	beat := make(map[[2]string]bool)
	complete := len(standings) > 0
	for _, m := range group.MatchUps {
		first, second := slotAt(group, m, 0), slotAt(group, m, 1)
		if first.participantID == "" || second.participantID == "" {
			if !first.bye && !second.bye {
				complete = false
			}
			continue
		}
		if !finished(m.MatchUpStatus) {
			complete = false
			continue
		}
		if m.WinningSide != 1 && m.WinningSide != 2 {
			continue
		}
		winner, loser := first.participantID, second.participantID
		if m.WinningSide == 2 {
			winner, loser = loser, winner
		}
		byID[winner].MatchUpsWon++
		byID[loser].MatchUpsLost++
		beat[[2]string{winner, loser}] = true

		if m.Score == nil {
			continue
		}
		for _, set := range m.Score.Sets {
			side := set.WinningSide
			if side == 0 {
				switch {
				case set.Side1Score > set.Side2Score:
					side = 1
				case set.Side2Score > set.Side1Score:
					side = 2
				}
			}
			switch side {
			case 1:
				byID[first.participantID].SetsWon++
				byID[second.participantID].SetsLost++
			case 2:
				byID[second.participantID].SetsWon++
				byID[first.participantID].SetsLost++
			}
		}
	}

	level := make(map[int]int)
	for _, st := range standings {
		level[st.MatchUpsWon]++
	}
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.MatchUpsWon != b.MatchUpsWon {
			return a.MatchUpsWon > b.MatchUpsWon
		}
		if level[a.MatchUpsWon] == 2 {
			if beat[[2]string{a.ParticipantID, b.ParticipantID}] {
				return true
			}
			if beat[[2]string{b.ParticipantID, a.ParticipantID}] {
				return false
			}
		}
		if da, db := a.SetsWon-a.SetsLost, b.SetsWon-b.SetsLost; da != db {
			return da > db
		}
		return a.DrawPosition < b.DrawPosition
	})

	tally := &GroupTally{StructureID: group.StructureID, Complete: complete}
	for i, st := range standings {
		st.GroupOrder = i + 1
		tally.Standings = append(tally.Standings, *st)
	}
	return tally, nil
}

// writeTally stores the group order on position assignments when the group is
// complete and clears it otherwise.
func writeTally(group *models.Structure, tally *GroupTally) error {
	byID := make(map[string]GroupStanding, len(tally.Standings))
	for _, st := range tally.Standings {
		byID[st.ParticipantID] = st
	}
	for _, pa := range group.PositionAssignments {
		st, ok := byID[pa.ParticipantID]
		if !tally.Complete || !ok {
			pa.Extensions = models.RemoveExtension(pa.Extensions, TallyExtension)
			continue
		}
		extensions, err := models.SetExtension(pa.Extensions, TallyExtension, tallyValue{
			GroupOrder:   st.GroupOrder,
			MatchUpsWon:  st.MatchUpsWon,
			MatchUpsLost: st.MatchUpsLost,
		})
		if err != nil {
			return err
		}
		pa.Extensions = extensions
	}
	return nil
}

// groupFinishers reads the TALLY extension: groupOrder -> participantId.
func groupFinishers(group *models.Structure) map[int]string {
	out := make(map[int]string)
	for _, pa := range group.PositionAssignments {
		ext, ok := models.FindExtension(pa.Extensions, TallyExtension)
		if !ok {
			continue
		}
		var value tallyValue
		if err := json.Unmarshal(ext.Value, &value); err != nil || value.GroupOrder == 0 {
			continue
		}
		out[value.GroupOrder] = pa.ParticipantID
	}
	return out
}

// afterGroupChange re-tallies a group and refreshes the playoff positions its
// finishers occupy.
func (a *advancer) afterGroupChange(container, group *models.Structure) {
	tally, err := TallyGroup(group)
	if err != nil {
		a.logger.Warn("group tally failed", slog.String("structureId", group.StructureID), slog.Any("error", err))
		return
	}
	if err := writeTally(group, tally); err != nil {
		a.logger.Warn("group tally not stored", slog.String("structureId", group.StructureID), slog.Any("error", err))
		return
	}
	for _, link := range a.dd.Links {
		if link.LinkType == models.LinkTypePosition && link.Source.StructureID == container.StructureID {
			a.placeGroupFinishers(container, link)
		}
	}
}

// placeGroupFinishers fills the target positions of a POSITION link. The
// finisher at FinishingPositions[f] of group g takes
// Target.DrawPositions[f*groups+g]; an incomplete group leaves its positions
// empty.
func (a *advancer) placeGroupFinishers(container *models.Structure, link *models.DrawLink) {
	target := FindStructure(a.dd, link.Target.StructureID)
	if target == nil {
		a.logger.Warn("position link target missing", slog.String("structureId", link.Target.StructureID))
		return
	}
	groupsCount := len(container.Structures)
	for fi, finishingPosition := range link.Source.FinishingPositions {
		for gi, group := range container.Structures {
			index := fi*groupsCount + gi
			if index >= len(link.Target.DrawPositions) {
				continue
			}
			a.placeAt(target, link.Target.DrawPositions[index], groupFinishers(group)[finishingPosition])
		}
	}
}

func (a *advancer) placeAt(s *models.Structure, drawPosition int, participantID string) {
	pa := positionAssignment(s, drawPosition)
	if pa == nil || pa.Bye || pa.ParticipantID == participantID {
		return
	}
	t := entryTarget(s, drawPosition)
	if t == nil {
		pa.ParticipantID = participantID
		return
	}
	a.unassign(t)
	if participantID == "" {
		return
	}
	if err := a.assign(t, participantID, false); err != nil {
		a.logger.Warn("group finisher not placed",
			slog.String("structureId", s.StructureID),
			slog.Int("drawPosition", drawPosition),
			slog.Any("error", err),
		)
	}
}

// entryTarget finds the first matchUp a draw position plays in.
func entryTarget(s *models.Structure, drawPosition int) *TargetMatchUp {
	var found *TargetMatchUp
	for _, m := range s.MatchUps {
		for idx, dp := range m.DrawPositions {
			if dp != drawPosition {
				continue
			}
			if found == nil || m.RoundNumber < found.MatchUp.RoundNumber {
				found = &TargetMatchUp{Structure: s, MatchUp: m, MatchUpDrawPositionIndex: idx, DrawPosition: dp}
			}
		}
	}
	return found
}
