package brackets

import (
	"sort"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// treeShape describes an elimination tree. Round 1 holds BaseSize/2
// matchUps; a round listed in FeedRounds keeps the previous round's matchUp
// count and receives one fed position per matchUp, every other round halves.
type treeShape struct {
	StructureID     string
	StructureName   string
	Abbreviation    string
	Scope           string
	Stage           models.Stage
	StageSequence   int
	ExitProfile     string
	BaseSize        int
	FeedRounds      map[int]bool
	RoundLimit      int
	FinishingOffset int
}

// roundCounts returns the matchUp count of each round, index 0 = round 1.
func (t treeShape) roundCounts() []int {
	if t.BaseSize < 2 {
		return nil
	}
	counts := []int{t.BaseSize / 2}
	for round := 2; ; round++ {
		c := counts[len(counts)-1]
		if t.FeedRounds[round] {
			counts = append(counts, c)
			continue
		}
		if c == 1 {
			break
		}
		counts = append(counts, c/2)
	}
	if t.RoundLimit > 0 && len(counts) > t.RoundLimit {
		counts = counts[:t.RoundLimit]
	}
	return counts
}

// DrawSize is the number of positions the tree holds: round 1 plus fed.
func (t treeShape) DrawSize() int {
	size := t.BaseSize
	for i, c := range t.roundCounts() {
		if t.FeedRounds[i+1] {
			size += c
		}
	}
	return size
}

// buildTree generates the structure. Fed positions take the lowest numbers,
// the latest feed round lowest of all; round 1 follows.
func buildTree(params *GenerateParams, shape treeShape) *models.Structure {
	counts := shape.roundCounts()
	structureID := shape.StructureID
	if structureID == "" {
		structureID = params.IDs.Next(shape.Scope)
	}
	structure := &models.Structure{
		StructureID:           structureID,
		StructureName:         shape.StructureName,
		StructureAbbreviation: shape.Abbreviation,
		StructureType:         models.StructureTypeItem,
		Stage:                 shape.Stage,
		StageSequence:         shape.StageSequence,
		ExitProfile:           shape.ExitProfile,
		FinishingPosition:     models.FinishingPositionRoundOutcome,
		RoundLimit:            shape.RoundLimit,
		MatchUpFormat:         params.MatchUpFormat,
		TieFormat:             params.TieFormat,
	}
	if len(counts) == 0 {
		return structure
	}
	for dp := 1; dp <= shape.DrawSize(); dp++ {
		structure.PositionAssignments = append(structure.PositionAssignments, &models.PositionAssignment{DrawPosition: dp})
	}

	var feedRounds []int
	fedTotal := 0
	for i, c := range counts {
		if shape.FeedRounds[i+1] {
			feedRounds = append(feedRounds, i+1)
			fedTotal += c
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(feedRounds)))
	fedStart := make(map[int]int, len(feedRounds))
	next := 1
	for _, round := range feedRounds {
		fedStart[round] = next
		next += counts[round-1]
	}

	laterFed := make([]int, len(counts)+1)
	for i := len(counts) - 1; i >= 0; i-- {
		laterFed[i] = laterFed[i+1]
		if i+1 < len(counts) && shape.FeedRounds[i+2] {
			laterFed[i] += counts[i+1]
		}
	}

	maxRound := len(counts)
	for i, count := range counts {
		round := i + 1
		for rp := 1; rp <= count; rp++ {
			m := &models.MatchUp{
				MatchUpID:      params.IDs.Next(shape.Scope, round, rp),
				MatchUpType:    params.MatchUpType,
				RoundNumber:    round,
				RoundPosition:  rp,
				DrawPositions:  []int{0, 0},
				MatchUpStatus:  models.MatchUpStatusToBePlayed,
				MatchUpFormat:  params.MatchUpFormat,
				FinishingRound: maxRound + 1 - round,
			}
			switch {
			case round == 1:
				m.DrawPositions[0] = fedTotal + 2*rp - 1
				m.DrawPositions[1] = fedTotal + 2*rp
			case shape.FeedRounds[round]:
				m.DrawPositions[0] = fedStart[round] + rp - 1
			}
			better := count + laterFed[i]
			m.FinishingPositionRange = &models.FinishingPositionRange{
				Winner: []int{shape.FinishingOffset + 1, shape.FinishingOffset + better},
				Loser:  []int{shape.FinishingOffset + better + 1, shape.FinishingOffset + better + count},
			}
			if params.TieFormat != nil {
				m.TieMatchUps = generateTieMatchUps(params, params.TieFormat, shape.Scope, round, rp)
			}
			structure.MatchUps = append(structure.MatchUps, m)
		}
	}
	return structure
}

// feedInShape spreads drawSize-base extra positions over feed rounds,
// largest rounds first.
func feedInShape(drawSize int) (base int, feedRounds map[int]bool) {
	base = positions.PreviousPowerOf2(drawSize)
	extra := drawSize - base
	feedRounds = make(map[int]bool)
	c := base / 2
	for round := 2; c >= 1 && extra > 0; round++ {
		if extra >= c && !feedRounds[round-1] {
			feedRounds[round] = true
			extra -= c
			continue
		}
		if c == 1 {
			break
		}
		c /= 2
	}
	return base, feedRounds
}

// generateTieMatchUps creates the collection matchUps of one TEAM matchUp.
func generateTieMatchUps(params *GenerateParams, tieFormat *models.TieFormat, scope string, round, rp int) []*models.MatchUp {
	var out []*models.MatchUp
	for _, collection := range tieFormat.CollectionDefinitions {
		format := collection.MatchUpFormat
		if format == "" {
			format = params.MatchUpFormat
		}
		for position := 1; position <= collection.MatchUpCount; position++ {
			out = append(out, &models.MatchUp{
				MatchUpID:          params.IDs.Next(scope, round, rp, collection.CollectionID, position),
				MatchUpType:        collection.MatchUpType,
				RoundNumber:        round,
				RoundPosition:      rp,
				MatchUpStatus:      models.MatchUpStatusToBePlayed,
				MatchUpFormat:      format,
				CollectionID:       collection.CollectionID,
				CollectionPosition: position,
			})
		}
	}
	return out
}
