package brackets

import (
	"log/slog"
	"sort"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// PositioningParams places entries into an empty structure.
type PositioningParams struct {
	StructureID string
	Entries     []models.Entry
	// Participants supplies avoidance attributes, keyed by participantId.
	Participants map[string]*models.Participant
	// QualifiersCount reserves positions for participants arriving from
	// qualifying.
	QualifiersCount int
	Policies        Policies
	Logger          *slog.Logger
}

// PositioningReport describes what automated positioning did.
type PositioningReport struct {
	StructureID string                      `json:"structureId"`
	Assignments []models.PositionAssignment `json:"assignments"`
	Byes        []int                       `json:"byes,omitempty"`
	Qualifiers  []int                       `json:"qualifiers,omitempty"`
	Conflicts   []Conflict                  `json:"conflicts,omitempty"`
}

// Conflict records first round opponents (or group members) that share an
// avoided attribute because no other placement remained.
type Conflict struct {
	StructureID    string   `json:"structureId"`
	ParticipantIDs []string `json:"participantIds"`
	Attribute      string   `json:"attribute"`
	Value          string   `json:"value"`
}

// orderEntries puts seeded entries first by seedValue, the rest by
// entryPosition, and drops entries that take no position.
func orderEntries(entries []models.Entry, seedsCount int) (seeded, unseeded []models.Entry) {
	for _, e := range entries {
		if !e.Accepted() {
			continue
		}
		if e.SeedValue > 0 {
			seeded = append(seeded, e)
		} else {
			unseeded = append(unseeded, e)
		}
	}
	sort.SliceStable(seeded, func(i, j int) bool { return seeded[i].SeedValue < seeded[j].SeedValue })
	sort.SliceStable(unseeded, func(i, j int) bool { return unseeded[i].EntryPosition < unseeded[j].EntryPosition })
	if seedsCount > 0 && len(seeded) > seedsCount {
		for i := range seeded[seedsCount:] {
			seeded[seedsCount+i].SeedValue = 0
		}
		sort.SliceStable(seeded[seedsCount:], func(i, j int) bool {
			return seeded[seedsCount+i].EntryPosition < seeded[seedsCount+j].EntryPosition
		})
		unseeded = append(seeded[seedsCount:], unseeded...)
		seeded = seeded[:seedsCount]
	}
	return seeded, unseeded
}

// AutomatedPositioning seeds, places byes and qualifier slots, then fills the
// remaining positions while keeping participants that share an avoidance
// attribute apart where possible. Byes are advanced immediately.
func AutomatedPositioning(dd *models.DrawDefinition, params PositioningParams) (*PositioningReport, error) {
	if dd == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	if params.StructureID == "" {
		return nil, newError(ErrMissingStructureID, "")
	}
	structure := FindStructure(dd, params.StructureID)
	if structure == nil {
		return nil, newError(ErrStructureNotFound, "", "structureId", params.StructureID)
	}
	for _, pa := range structure.AllPositionAssignments() {
		if pa.ParticipantID != "" {
			return nil, newError(ErrDrawPositionAssigned, "structure already positioned", "drawPosition", pa.DrawPosition)
		}
	}
	policies := params.Policies
	if policies.Seeding.Positioning == "" {
		policies = ResolvePolicies(PolicySource{Seeding: &params.Policies.Seeding, Avoidance: &params.Policies.Avoidance})
	}
	seeded, unseeded := orderEntries(params.Entries, policies.Seeding.SeedsCount)

	p := &positioner{
		structure:    structure,
		participants: params.Participants,
		attributes:   policies.Avoidance.Attributes,
		report:       &PositioningReport{StructureID: structure.StructureID},
	}
	var err error
	if structure.IsContainer() {
		err = p.positionGroups(seeded, unseeded)
	} else {
		err = p.positionTree(seeded, unseeded, params.QualifiersCount, policies.Seeding.Positioning)
	}
	if err != nil {
		return nil, err
	}

	if structure.IsContainer() {
		for _, group := range structure.Structures {
			syncSides(group)
		}
	} else if err := AdvanceByes(dd, structure.StructureID, params.Logger); err != nil {
		return nil, err
	}
	sort.Slice(p.report.Assignments, func(i, j int) bool {
		return p.report.Assignments[i].DrawPosition < p.report.Assignments[j].DrawPosition
	})
	return p.report, nil
}

type positioner struct {
	structure    *models.Structure
	participants map[string]*models.Participant
	attributes   []string
	report       *PositioningReport
}

func (p *positioner) place(s *models.Structure, drawPosition int, entry models.Entry, seedNumber int) {
	pa := positionAssignment(s, drawPosition)
	pa.ParticipantID = entry.ParticipantID
	if seedNumber > 0 {
		pa.SeedValue = entry.SeedValue
		s.SeedAssignments = append(s.SeedAssignments, &models.SeedAssignment{
			SeedNumber:    seedNumber,
			SeedValue:     entry.SeedValue,
			ParticipantID: entry.ParticipantID,
		})
	}
	p.report.Assignments = append(p.report.Assignments, *pa)
}

// clash returns the first avoided attribute two participants share.
func (p *positioner) clash(a, b string) (string, string, bool) {
	pa, pb := p.participants[a], p.participants[b]
	if pa == nil || pb == nil {
		return "", "", false
	}
	for _, attribute := range p.attributes {
		if v := pa.Attribute(attribute); v != "" && v == pb.Attribute(attribute) {
			return attribute, v, true
		}
	}
	return "", "", false
}

func (p *positioner) positionTree(seeded, unseeded []models.Entry, qualifiersCount int, positioning positions.Positioning) error {
	s := p.structure
	var open []int
	for _, pa := range s.PositionAssignments {
		if !pa.Bye && !pa.Qualifier {
			open = append(open, pa.DrawPosition)
		}
	}
	entriesCount := len(seeded) + len(unseeded)
	if entriesCount+qualifiersCount > len(open) {
		return newError(ErrInvalidValues, "more entries than draw positions",
			"entries", entriesCount, "qualifiers", qualifiersCount, "positions", len(open))
	}

	var order, byes []int
	if drawSize := len(s.PositionAssignments); positions.IsPowerOf2(drawSize) && len(open) == drawSize {
		order, byes = positions.EntryPositions(drawSize, entriesCount+qualifiersCount, positioning)
	} else {
		// fed and padded shapes: lowest positions first, byes last
		order = open[:entriesCount+qualifiersCount]
		byes = open[entriesCount+qualifiersCount:]
	}

	for _, dp := range byes {
		positionAssignment(s, dp).Bye = true
		p.report.Byes = append(p.report.Byes, dp)
	}
	for i, entry := range seeded {
		p.place(s, order[i], entry, i+1)
	}
	remaining := append([]int(nil), order[len(seeded):]...)

	// qualifier slots take the tail of the order
	for _, dp := range remaining[len(remaining)-qualifiersCount:] {
		positionAssignment(s, dp).Qualifier = true
		p.report.Qualifiers = append(p.report.Qualifiers, dp)
	}
	remaining = remaining[:len(remaining)-qualifiersCount]

	opponent := firstRoundOpponents(s)
	for _, entry := range unseeded {
		chosen := 0
		for i, dp := range remaining {
			other := positionAssignment(s, opponent[dp])
			if other == nil || other.ParticipantID == "" {
				chosen = i
				break
			}
			if _, _, bad := p.clash(entry.ParticipantID, other.ParticipantID); !bad {
				chosen = i
				break
			}
		}
		dp := remaining[chosen]
		remaining = append(remaining[:chosen], remaining[chosen+1:]...)
		p.place(s, dp, entry, 0)
		if other := positionAssignment(s, opponent[dp]); other != nil && other.ParticipantID != "" {
			if attribute, value, bad := p.clash(entry.ParticipantID, other.ParticipantID); bad {
				p.report.Conflicts = append(p.report.Conflicts, Conflict{
					StructureID:    s.StructureID,
					ParticipantIDs: []string{other.ParticipantID, entry.ParticipantID},
					Attribute:      attribute,
					Value:          value,
				})
			}
		}
	}
	return nil
}

// firstRoundOpponents maps each fixed position to the position it first
// meets.
func firstRoundOpponents(s *models.Structure) map[int]int {
	out := make(map[int]int)
	for _, m := range s.MatchUps {
		if m.RoundNumber == 1 && len(m.DrawPositions) == 2 {
			out[m.DrawPositions[0]] = m.DrawPositions[1]
			out[m.DrawPositions[1]] = m.DrawPositions[0]
		}
	}
	return out
}

// positionGroups spreads seeds over groups in serpentine order, then fills
// each open position with the first entry not clashing with its group.
func (p *positioner) positionGroups(seeded, unseeded []models.Entry) error {
	groups := p.structure.Structures
	if len(groups) == 0 {
		return newError(ErrInvalidStructure, "container has no groups", "structureId", p.structure.StructureID)
	}
	open := make([][]int, len(groups))
	total := 0
	for g, group := range groups {
		for _, pa := range group.PositionAssignments {
			if !pa.Bye {
				open[g] = append(open[g], pa.DrawPosition)
				total++
			}
		}
	}
	if len(seeded)+len(unseeded) > total {
		return newError(ErrInvalidValues, "more entries than draw positions",
			"entries", len(seeded)+len(unseeded), "positions", total)
	}

	members := make([][]string, len(groups))
	take := func(g int, entry models.Entry, seedNumber int) {
		p.place(groups[g], open[g][0], entry, seedNumber)
		open[g] = open[g][1:]
		members[g] = append(members[g], entry.ParticipantID)
	}

	for i, entry := range seeded {
		round, offset := i/len(groups), i%len(groups)
		g := offset
		if round%2 == 1 {
			g = len(groups) - 1 - offset
		}
		if len(open[g]) == 0 {
			unseeded = append([]models.Entry{entry}, unseeded...)
			continue
		}
		take(g, entry, i+1)
	}

	for g := 0; g < len(groups) && len(unseeded) > 0; g++ {
		for len(open[g]) > 0 && len(unseeded) > 0 {
			chosen := 0
		candidates:
			for i, entry := range unseeded {
				for _, member := range members[g] {
					if _, _, bad := p.clash(entry.ParticipantID, member); bad {
						continue candidates
					}
				}
				chosen = i
				break
			}
			entry := unseeded[chosen]
			unseeded = append(unseeded[:chosen], unseeded[chosen+1:]...)
			for _, member := range members[g] {
				if attribute, value, bad := p.clash(entry.ParticipantID, member); bad {
					p.report.Conflicts = append(p.report.Conflicts, Conflict{
						StructureID:    groups[g].StructureID,
						ParticipantIDs: []string{member, entry.ParticipantID},
						Attribute:      attribute,
						Value:          value,
					})
					break
				}
			}
			take(g, entry, 0)
		}
	}

	for g, group := range groups {
		for _, dp := range open[g] {
			positionAssignment(group, dp).Bye = true
			p.report.Byes = append(p.report.Byes, dp)
		}
	}
	return nil
}

// AssignLuckyLoser places a participant who lost in the previous round into
// the open slot of a lucky draw round.
func AssignLuckyLoser(dd *models.DrawDefinition, structureID string, roundNumber int, participantID string, logger *slog.Logger) (*models.MatchUp, error) {
	if dd == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	if participantID == "" {
		return nil, newError(ErrMissingValue, "participantId")
	}
	s := FindStructure(dd, structureID)
	if s == nil {
		return nil, newError(ErrStructureNotFound, "", "structureId", structureID)
	}
	if !IsLuckyDraw(s) {
		return nil, newError(ErrInvalidStructure, "not a lucky draw", "structureId", structureID)
	}
	rm := GetRoundMatchUps(s.MatchUps)
	previous := rm.RoundMatchUps[roundNumber-1]
	round := rm.RoundMatchUps[roundNumber]
	if len(previous)%2 == 0 || len(round) == 0 {
		return nil, newError(ErrNoAvailableLuckyLoserTarget, "", "roundNumber", roundNumber)
	}
	target := round[len(round)-1]
	if target.DrawPositions[1] != 0 {
		return nil, newError(ErrNoAvailableLuckyLoserTarget, "lucky loser already assigned", "matchUpId", target.MatchUpID)
	}

	drawPosition := 0
	for _, m := range previous {
		if (m.WinningSide != 1 && m.WinningSide != 2) || m.MatchUpStatus == models.MatchUpStatusBye {
			continue
		}
		if loser := slotAt(s, m, 2-m.WinningSide); loser.participantID == participantID {
			drawPosition = loser.drawPosition
		}
	}
	if drawPosition == 0 {
		return nil, newError(ErrInvalidValues, "participant did not lose in the previous round", "participantId", participantID)
	}
	target.DrawPositions[1] = drawPosition
	syncSides(s)
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("lucky loser assigned",
		slog.String("matchUpId", target.MatchUpID),
		slog.String("participantId", participantID),
	)
	return target, nil
}
