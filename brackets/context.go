package brackets

import (
	"fmt"

	"github.com/Dosada05/tournament-draws/models"
)

// ContextParams controls matchUp hydration.
type ContextParams struct {
	Participants       map[string]*models.Participant
	Policies           *Policies
	IncludeTieMatchUps bool
	// RoundNumbers, when set, keeps only those rounds.
	RoundNumbers []int
}

// SideInContext is a side with its participant resolved.
type SideInContext struct {
	models.Side
	Participant *models.Participant `json:"participant,omitempty"`
}

// MatchUpInContext is a read view of a matchUp. It is built from a clone, so
// changing it never touches the draw definition.
type MatchUpInContext struct {
	*models.MatchUp
	Sides                []SideInContext `json:"sides,omitempty"`
	DrawID               string          `json:"drawId"`
	StructureID          string          `json:"structureId"`
	StructureName        string          `json:"structureName"`
	ContainerID          string          `json:"containerStructureId,omitempty"`
	Stage                models.Stage    `json:"stage"`
	StageSequence        int             `json:"stageSequence"`
	RoundName            string          `json:"roundName,omitempty"`
	AbbreviatedRoundName string          `json:"abbreviatedRoundName,omitempty"`
	FeedRound            bool            `json:"feedRound,omitempty"`
	TieParentID          string          `json:"matchUpTieId,omitempty"`
}

// RoundName is the display name of one round.
type RoundName struct {
	Name        string
	Abbreviated string
}

// GetRoundNames names every round of a leaf structure. Elimination rounds
// after the last feed round are named by matchUps count (Final, Semifinals,
// ...); other rounds are numbered. Stage affixes prefix the result.
func GetRoundNames(structure *models.Structure, policies *Policies) map[int]RoundName {
	if policies == nil {
		defaults := DefaultPolicies()
		policies = &defaults
	}
	naming := policies.RoundNaming
	rm := GetRoundMatchUps(structure.MatchUps)
	lastFeed := 0
	for _, round := range rm.RoundNumbers {
		if rm.RoundProfile[round].FeedRound {
			lastFeed = round
		}
	}
	elimination := structure.FinishingPosition != models.FinishingPositionWinRatio && !IsAdHoc(structure)
	affix := naming.Affixes[string(structure.Stage)]

	out := make(map[int]RoundName, len(rm.RoundNumbers))
	for _, round := range rm.RoundNumbers {
		count := rm.RoundProfile[round].MatchUpsCount
		name := RoundName{Name: fmt.Sprintf("Round %d", round), Abbreviated: fmt.Sprintf("R%d", round)}
		if elimination && round > lastFeed {
			name = RoundName{Name: fmt.Sprintf("Round of %d", count*2), Abbreviated: fmt.Sprintf("R%d", count*2)}
			if n, ok := naming.Names[count]; ok {
				name.Name = n
			}
			if a, ok := naming.Abbreviations[count]; ok {
				name.Abbreviated = a
			}
		}
		if affix != "" {
			name.Name = affix + "-" + name.Name
			name.Abbreviated = affix + "-" + name.Abbreviated
		}
		out[round] = name
	}
	return out
}

// GetAllStructureMatchUps returns hydrated copies of a structure's matchUps;
// for a container, the matchUps of all its groups.
func GetAllStructureMatchUps(dd *models.DrawDefinition, structureID string, params ContextParams) ([]*MatchUpInContext, error) {
	if dd == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	if structureID == "" {
		return nil, newError(ErrMissingStructureID, "")
	}
	structure := FindStructure(dd, structureID)
	if structure == nil {
		return nil, newError(ErrStructureNotFound, "", "structureId", structureID)
	}
	return hydrateStructure(dd, structure, findContainer(dd, structureID), params), nil
}

// GetAllDrawMatchUps hydrates the matchUps of every structure in the draw.
func GetAllDrawMatchUps(dd *models.DrawDefinition, params ContextParams) ([]*MatchUpInContext, error) {
	if dd == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	var out []*MatchUpInContext
	for _, s := range dd.Structures {
		out = append(out, hydrateStructure(dd, s, nil, params)...)
	}
	return out, nil
}

func hydrateStructure(dd *models.DrawDefinition, s, container *models.Structure, params ContextParams) []*MatchUpInContext {
	if s.IsContainer() {
		var out []*MatchUpInContext
		for _, group := range s.Structures {
			out = append(out, hydrateStructure(dd, group, s, params)...)
		}
		return out
	}
	keep := make(map[int]bool, len(params.RoundNumbers))
	for _, r := range params.RoundNumbers {
		keep[r] = true
	}
	policies := params.Policies
	if policies == nil {
		resolved := DrawPolicies(dd)
		policies = &resolved
	}
	names := GetRoundNames(s, policies)
	rm := GetRoundMatchUps(s.MatchUps)

	var out []*MatchUpInContext
	for _, round := range rm.RoundNumbers {
		if len(keep) > 0 && !keep[round] {
			continue
		}
		for _, m := range rm.RoundMatchUps[round] {
			hydrated := hydrate(dd, s, container, m, params)
			hydrated.RoundName = names[round].Name
			hydrated.AbbreviatedRoundName = names[round].Abbreviated
			hydrated.FeedRound = rm.RoundProfile[round].FeedRound
			out = append(out, hydrated)
			if !params.IncludeTieMatchUps {
				continue
			}
			for _, tie := range m.TieMatchUps {
				child := hydrate(dd, s, container, tie, params)
				child.RoundName, child.AbbreviatedRoundName = hydrated.RoundName, hydrated.AbbreviatedRoundName
				child.TieParentID = m.MatchUpID
				out = append(out, child)
			}
		}
	}
	return out
}

func hydrate(dd *models.DrawDefinition, s, container *models.Structure, m *models.MatchUp, params ContextParams) *MatchUpInContext {
	clone := m.Clone()
	if clone.MatchUpFormat == "" {
		clone.MatchUpFormat = dd.MatchUpFormat
	}
	out := &MatchUpInContext{
		MatchUp:       clone,
		DrawID:        dd.DrawID,
		StructureID:   s.StructureID,
		StructureName: s.StructureName,
		Stage:         s.Stage,
		StageSequence: s.StageSequence,
	}
	if container != nil {
		out.ContainerID = container.StructureID
	}
	sides := clone.Sides
	if len(sides) == 0 {
		for i := range clone.DrawPositions {
			sides = append(sides, models.Side{SideNumber: i + 1, DrawPosition: clone.DrawPositions[i]})
		}
	}
	for _, side := range sides {
		in := SideInContext{Side: side}
		if side.ParticipantID != "" && params.Participants != nil {
			in.Participant = params.Participants[side.ParticipantID]
		}
		out.Sides = append(out.Sides, in)
	}
	return out
}
