package brackets

import (
	"context"
	"sort"

	"github.com/Dosada05/tournament-draws/models"
)

// AdHocGenerator builds an empty structure; matchUps are added round by round
// with GenerateAdHocMatchUps and AddAdHocMatchUps.
type AdHocGenerator struct{}

func NewAdHocGenerator() StructureGenerator {
	return &AdHocGenerator{}
}

func (g *AdHocGenerator) GetName() string {
	return "AdHoc"
}

func (g *AdHocGenerator) Generate(ctx context.Context, params GenerateParams) (*StructuresResult, error) {
	name := params.StructureName
	if name == "" {
		name = defaultStructureName(params.stage())
	}
	structure := &models.Structure{
		StructureID:       params.IDs.Next(structureScope(params.stage(), params.stageSequence())),
		StructureName:     name,
		StructureType:     models.StructureTypeItem,
		Stage:             params.stage(),
		StageSequence:     params.stageSequence(),
		FinishingPosition: models.FinishingPositionWinRatio,
		MatchUpFormat:     params.MatchUpFormat,
		TieFormat:         params.TieFormat,
		MatchUps:          []*models.MatchUp{},
	}
	return &StructuresResult{Structures: []*models.Structure{structure}, Links: []*models.DrawLink{}}, nil
}

// IsAdHoc reports whether the structure holds draw-position-free matchUps.
func IsAdHoc(structure *models.Structure) bool {
	if structure == nil || structure.IsContainer() || len(structure.PositionAssignments) > 0 {
		return false
	}
	for _, m := range structure.MatchUps {
		if len(m.DrawPositions) > 0 {
			return false
		}
	}
	return true
}

// AdHocMatchUpsParams configures GenerateAdHocMatchUps. Pairings are used
// as given; with Automated, ParticipantIDs are paired so that participants
// who have met least often meet; otherwise MatchUpsCount empty matchUps are
// created.
type AdHocMatchUpsParams struct {
	StructureID    string
	RoundNumber    int
	Pairings       [][2]string
	ParticipantIDs []string
	Automated      bool
	MatchUpsCount  int
	UUIDs          []string
	IDPrefix       string
	IDs            *IDGenerator
}

// AdHocMatchUpsResult lists the new matchUps and participants left unpaired.
type AdHocMatchUpsResult struct {
	MatchUps   []*models.MatchUp `json:"matchUps"`
	Unassigned []string          `json:"unassignedParticipantIds,omitempty"`
}

// GenerateAdHocMatchUps builds matchUps for one round without touching the
// draw definition.
func GenerateAdHocMatchUps(dd *models.DrawDefinition, params AdHocMatchUpsParams) (*AdHocMatchUpsResult, error) {
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
	if !IsAdHoc(structure) {
		return nil, newError(ErrInvalidStructure, "structure is not ad hoc", "structureId", params.StructureID)
	}

	ids := params.IDs
	if ids == nil {
		ids = NewIDGenerator(params.UUIDs, params.IDPrefix)
	}
	roundNumber := params.RoundNumber
	if roundNumber == 0 {
		for _, m := range structure.MatchUps {
			if m.RoundNumber > roundNumber {
				roundNumber = m.RoundNumber
			}
		}
		roundNumber++
	}
	roundPosition := 0
	for _, m := range structure.MatchUps {
		if m.RoundNumber == roundNumber && m.RoundPosition > roundPosition {
			roundPosition = m.RoundPosition
		}
	}

	pairings := params.Pairings
	result := &AdHocMatchUpsResult{}
	if params.Automated {
		pairings, result.Unassigned = automatedPairings(structure, params.ParticipantIDs)
	}

	scope := structureScope(structure.Stage, structure.StageSequence)
	newMatchUp := func() *models.MatchUp {
		roundPosition++
		m := &models.MatchUp{
			MatchUpID:     ids.Next(scope, roundNumber, roundPosition),
			MatchUpType:   dd.MatchUpType,
			RoundNumber:   roundNumber,
			RoundPosition: roundPosition,
			MatchUpStatus: models.MatchUpStatusToBePlayed,
			MatchUpFormat: structure.MatchUpFormat,
			Sides:         []models.Side{{SideNumber: 1}, {SideNumber: 2}},
		}
		if tieFormat := structureTieFormat(dd, structure); tieFormat != nil {
			gp := &GenerateParams{IDs: ids, MatchUpFormat: structure.MatchUpFormat}
			m.TieMatchUps = generateTieMatchUps(gp, tieFormat, scope, roundNumber, roundPosition)
		}
		return m
	}

	for _, pair := range pairings {
		m := newMatchUp()
		m.Sides[0].ParticipantID = pair[0]
		m.Sides[1].ParticipantID = pair[1]
		result.MatchUps = append(result.MatchUps, m)
	}
	if len(pairings) == 0 {
		for i := 0; i < params.MatchUpsCount; i++ {
			result.MatchUps = append(result.MatchUps, newMatchUp())
		}
	}
	return result, nil
}

// AddAdHocMatchUps appends generated matchUps to an ad hoc structure.
func AddAdHocMatchUps(dd *models.DrawDefinition, structureID string, matchUps []*models.MatchUp) error {
	if dd == nil {
		return newError(ErrMissingDrawDefinition, "")
	}
	structure := FindStructure(dd, structureID)
	if structure == nil {
		return newError(ErrStructureNotFound, "", "structureId", structureID)
	}
	if !IsAdHoc(structure) {
		return newError(ErrInvalidStructure, "structure is not ad hoc", "structureId", structureID)
	}
	existing := make(map[string]bool)
	for _, m := range dd.AllMatchUps() {
		existing[m.MatchUpID] = true
	}
	for _, m := range matchUps {
		if len(m.DrawPositions) > 0 {
			return newError(ErrInvalidValues, "ad hoc matchUps carry no drawPositions", "matchUpId", m.MatchUpID)
		}
		if existing[m.MatchUpID] {
			return newError(ErrInvalidValues, "duplicate matchUpId", "matchUpId", m.MatchUpID)
		}
	}
	structure.MatchUps = append(structure.MatchUps, matchUps...)
	return nil
}

// automatedPairings pairs participants greedily, each taking the remaining
// opponent with the fewest previous encounters. An odd participant out is
// returned unassigned.
func automatedPairings(structure *models.Structure, participantIDs []string) ([][2]string, []string) {
	encounters := make(map[[2]string]int)
	played := make(map[string]int)
	for _, m := range structure.MatchUps {
		if len(m.Sides) < 2 || m.Sides[0].ParticipantID == "" || m.Sides[1].ParticipantID == "" {
			continue
		}
		encounters[pairKey(m.Sides[0].ParticipantID, m.Sides[1].ParticipantID)]++
		played[m.Sides[0].ParticipantID]++
		played[m.Sides[1].ParticipantID]++
	}

	pool := append([]string(nil), participantIDs...)
	// fewer matchUps played pairs first
	sort.SliceStable(pool, func(i, j int) bool { return played[pool[i]] < played[pool[j]] })

	var pairings [][2]string
	for len(pool) > 1 {
		first := pool[0]
		best := 1
		for i := 2; i < len(pool); i++ {
			if encounters[pairKey(first, pool[i])] < encounters[pairKey(first, pool[best])] {
				best = i
			}
		}
		pairings = append(pairings, [2]string{first, pool[best]})
		pool = append(pool[1:best], pool[best+1:]...)
	}
	return pairings, pool
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
