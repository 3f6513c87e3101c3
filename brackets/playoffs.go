package brackets

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// PlayoffStructuresParams selects the playoffs to attach to a source
// structure. Elimination sources use RoundNumbers (every available round
// when empty); round robin containers use PlayoffGroups.
type PlayoffStructuresParams struct {
	SourceStructureID string
	RoundNumbers      []int
	PlayoffGroups     []PlayoffGroup
	PlayoffAttributes map[string]PlayoffAttribute
	// RoundOffsetLimit > 0 also builds nested playoffs for the new
	// structures' own rounds up to that depth.
	RoundOffsetLimit int

	UUIDs    []string
	IDPrefix string
	IDs      *IDGenerator
	Logger   *slog.Logger
}

// PlayoffResult lists what a composer added to the draw.
type PlayoffResult struct {
	Structures       []*models.Structure `json:"structures"`
	Links            []*models.DrawLink  `json:"links"`
	ModifiedMatchUps []*models.MatchUp   `json:"modifiedMatchUps,omitempty"`
	// IncompleteGroups lists groups whose finishers could not be placed yet.
	IncompleteGroups []string `json:"incompleteGroups,omitempty"`
}

// PlayoffProfile is one playoff a structure can still feed.
type PlayoffProfile struct {
	RoundNumber            int    `json:"roundNumber,omitempty"`
	FinishingPositions     []int  `json:"finishingPositions"`
	FinishingPositionRange string `json:"finishingPositionRange,omitempty"`
	ParticipantsCount      int    `json:"participantsCount"`
}

func (p *PlayoffStructuresParams) ids() *IDGenerator {
	if p.IDs == nil {
		p.IDs = NewIDGenerator(p.UUIDs, p.IDPrefix)
	}
	return p.IDs
}

// GetAvailablePlayoffProfiles lists the rounds (or, for a round robin
// container, the group finishing positions) not yet feeding a playoff.
func GetAvailablePlayoffProfiles(dd *models.DrawDefinition, structureID string) ([]PlayoffProfile, error) {
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

	if structure.IsContainer() {
		used := make(map[int]bool)
		for _, link := range dd.Links {
			if link.LinkType == models.LinkTypePosition && link.Source.StructureID == structureID {
				for _, f := range link.Source.FinishingPositions {
					used[f] = true
				}
			}
		}
		maxGroupSize := 0
		for _, group := range structure.Structures {
			if len(group.PositionAssignments) > maxGroupSize {
				maxGroupSize = len(group.PositionAssignments)
			}
		}
		profiles := []PlayoffProfile{}
		for f := 1; f <= maxGroupSize; f++ {
			if used[f] {
				continue
			}
			profiles = append(profiles, PlayoffProfile{
				FinishingPositions: []int{f},
				ParticipantsCount:  groupFinishersCount(structure, f),
			})
		}
		return profiles, nil
	}

	if IsAdHoc(structure) || structure.FinishingPosition == models.FinishingPositionWinRatio {
		return nil, newError(ErrInvalidStructure, "structure has no elimination rounds", "structureId", structureID)
	}
	rm := GetRoundMatchUps(structure.MatchUps)
	profiles := []PlayoffProfile{}
	for _, round := range rm.RoundNumbers {
		if FindLink(dd.Links, models.LinkTypeLoser, structureID, round) != nil {
			continue
		}
		matchUps := rm.RoundMatchUps[round]
		count := len(matchUps)
		if count < 2 || !positions.IsPowerOf2(count) {
			continue
		}
		profile := PlayoffProfile{RoundNumber: round, ParticipantsCount: count}
		if fpr := matchUps[0].FinishingPositionRange; fpr != nil && len(fpr.Loser) == 2 {
			profile.FinishingPositions = positions.GenerateRange(fpr.Loser[0], fpr.Loser[1]+1)
			profile.FinishingPositionRange = positions.RangeString(fpr.Loser)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func groupFinishersCount(container *models.Structure, finishingPosition int) int {
	count := 0
	for _, group := range container.Structures {
		if len(group.PositionAssignments) >= finishingPosition {
			count++
		}
	}
	return count
}

// GenerateAndPopulatePlayoffStructures attaches playoff structures fed by the
// losers of the selected source rounds, then advances results already
// recorded in the source into them.
func GenerateAndPopulatePlayoffStructures(ctx context.Context, dd *models.DrawDefinition, params PlayoffStructuresParams) (*PlayoffResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dd == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	if params.SourceStructureID == "" {
		return nil, newError(ErrMissingStructureID, "")
	}
	source := FindStructure(dd, params.SourceStructureID)
	if source == nil {
		return nil, newError(ErrStructureNotFound, "", "structureId", params.SourceStructureID)
	}
	if source.IsContainer() {
		result, err := GenerateAndPopulateRRPlayoffStructures(ctx, dd, params)
		if err != nil {
			return nil, Decorate(err, "generateAndPopulatePlayoffStructures")
		}
		return result, nil
	}

	available, err := GetAvailablePlayoffProfiles(dd, source.StructureID)
	if err != nil {
		return nil, err
	}
	byRound := make(map[int]PlayoffProfile, len(available))
	for _, profile := range available {
		byRound[profile.RoundNumber] = profile
	}
	rounds := params.RoundNumbers
	if len(rounds) == 0 {
		for _, profile := range available {
			rounds = append(rounds, profile.RoundNumber)
		}
	}
	if len(rounds) == 0 {
		return nil, newError(ErrInvalidPlayoffPosition, "no rounds available for playoffs", "structureId", source.StructureID)
	}
	for _, round := range rounds {
		if FindLink(dd.Links, models.LinkTypeLoser, source.StructureID, round) != nil {
			return nil, newError(ErrExistingPlayoffStructure, "", "structureId", source.StructureID, "roundNumber", round)
		}
		if _, ok := byRound[round]; !ok {
			return nil, newError(ErrInvalidPlayoffPosition, "round cannot feed a playoff", "roundNumber", round)
		}
	}

	gp := &GenerateParams{
		MatchUpType:   dd.MatchUpType,
		MatchUpFormat: source.MatchUpFormat,
		TieFormat:     source.TieFormat,
		IDs:           params.ids(),
		Logger:        params.Logger,
	}
	tree := &playoffTree{params: gp, attributes: params.PlayoffAttributes, roundOffsetLimit: -1, result: &StructuresResult{}}
	if params.RoundOffsetLimit > 0 {
		tree.roundOffsetLimit = params.RoundOffsetLimit
	}
	parentProfile := source.ExitProfile
	if parentProfile == "" {
		parentProfile = "0"
	}
	for _, round := range rounds {
		profile := byRound[round]
		finishingOffset := 0
		if len(profile.FinishingPositions) > 0 {
			finishingOffset = profile.FinishingPositions[0] - 1
		}
		exitProfile := parentProfile + "-" + strconv.Itoa(round)
		child := tree.build(profile.ParticipantsCount, exitProfile, exitRoundOffset(exitProfile), finishingOffset, source.StageSequence+1, models.StagePlayoff)
		tree.result.Links = append(tree.result.Links, newLoserLink(source.StructureID, round, child.StructureID, 1, models.FeedProfileTopDown))
	}

	dd.Structures = append(dd.Structures, tree.result.Structures...)
	dd.Links = append(dd.Links, tree.result.Links...)

	a := newAdvancer(dd, params.Logger)
	rm := GetRoundMatchUps(source.MatchUps)
	for _, round := range rounds {
		for _, m := range rm.RoundMatchUps[round] {
			if m.WinningSide != 0 {
				a.directParticipants(source, m)
			}
		}
	}
	AnnotateGoesTo(dd, params.Logger)

	return &PlayoffResult{
		Structures:       tree.result.Structures,
		Links:            tree.result.Links,
		ModifiedMatchUps: a.order,
	}, nil
}

// GenerateAndPopulateRRPlayoffStructures attaches playoffs fed by round robin
// group finishers and places finishers of groups that are already complete.
// Incomplete groups are reported, not treated as failures.
func GenerateAndPopulateRRPlayoffStructures(ctx context.Context, dd *models.DrawDefinition, params PlayoffStructuresParams) (*PlayoffResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dd == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	container := FindStructure(dd, params.SourceStructureID)
	if container == nil {
		return nil, newError(ErrStructureNotFound, "", "structureId", params.SourceStructureID)
	}
	if !container.IsContainer() {
		return nil, newError(ErrInvalidStructure, "source is not a round robin container", "structureId", container.StructureID)
	}

	groups := params.PlayoffGroups
	if len(groups) == 0 {
		groups = []PlayoffGroup{{FinishingPositions: []int{1}}}
	}
	available, err := GetAvailablePlayoffProfiles(dd, container.StructureID)
	if err != nil {
		return nil, err
	}
	free := make(map[int]bool, len(available))
	for _, profile := range available {
		free[profile.FinishingPositions[0]] = true
	}
	for _, group := range groups {
		for _, f := range group.FinishingPositions {
			if !free[f] {
				if f >= 1 && positionLinkUses(dd, container.StructureID, f) {
					return nil, newError(ErrExistingPlayoffStructure, "", "finishingPosition", f)
				}
				return nil, newError(ErrInvalidPlayoffPosition, "", "finishingPosition", f)
			}
		}
	}

	gp := &GenerateParams{
		MatchUpType:   dd.MatchUpType,
		MatchUpFormat: container.MatchUpFormat,
		TieFormat:     container.TieFormat,
		StageSequence: container.StageSequence,
		IDs:           params.ids(),
		Logger:        params.Logger,
	}
	built, err := buildRRPlayoffStructures(ctx, gp, container, groups)
	if err != nil {
		return nil, err
	}
	dd.Structures = append(dd.Structures, built.Structures...)
	dd.Links = append(dd.Links, built.Links...)

	result := &PlayoffResult{Structures: built.Structures, Links: built.Links}
	a := newAdvancer(dd, params.Logger)
	for _, group := range container.Structures {
		a.afterGroupChange(container, group)
		tally, err := TallyGroup(group)
		if err == nil && !tally.Complete {
			result.IncompleteGroups = append(result.IncompleteGroups, group.StructureID)
		}
	}
	if len(result.IncompleteGroups) > 0 {
		a.logger.Info("playoff positions pending",
			slog.String("code", ErrIncompleteSourceStructure.Name()),
			slog.Int("groups", len(result.IncompleteGroups)),
		)
	}
	AnnotateGoesTo(dd, params.Logger)
	result.ModifiedMatchUps = a.order
	return result, nil
}

func positionLinkUses(dd *models.DrawDefinition, containerID string, finishingPosition int) bool {
	for _, link := range dd.Links {
		if link.LinkType != models.LinkTypePosition || link.Source.StructureID != containerID {
			continue
		}
		for _, f := range link.Source.FinishingPositions {
			if f == finishingPosition {
				return true
			}
		}
	}
	return false
}

// buildRRPlayoffStructures generates one elimination playoff per group of
// finishing positions. Finishers take the playoff's seed order, all group
// winners first, and the positions left over are byes.
func buildRRPlayoffStructures(ctx context.Context, params *GenerateParams, container *models.Structure, groups []PlayoffGroup) (*StructuresResult, error) {
	result := &StructuresResult{Structures: []*models.Structure{}, Links: []*models.DrawLink{}}
	for i, group := range groups {
		participants := 0
		for _, f := range group.FinishingPositions {
			if f < 1 {
				return nil, newError(ErrInvalidPlayoffPosition, "", "finishingPosition", f)
			}
			participants += groupFinishersCount(container, f)
		}
		if participants < 2 {
			params.logger().Debug("playoff skipped", slog.Int("participants", participants))
			continue
		}
		drawType := group.DrawType
		if drawType == "" {
			drawType = models.DrawTypeSingleElimination
		}
		switch drawType {
		case models.DrawTypeRoundRobin, models.DrawTypeRoundRobinWithPlayoff, models.DrawTypeAdHoc,
			models.DrawTypeLuckyDraw, models.DrawTypeFeedIn:
			return nil, newError(ErrInvalidDrawType, "playoffs are elimination structures", "drawType", drawType)
		}
		generator, err := GetGenerator(drawType)
		if err != nil {
			return nil, err
		}
		name := group.StructureName
		if name == "" {
			name = "Playoff " + positions.RangeString(group.FinishingPositions)
		}
		drawSize := positions.NextPowerOf2(participants)
		if drawSize < 4 && drawType != models.DrawTypeSingleElimination {
			drawType = models.DrawTypeSingleElimination
			generator = NewSingleEliminationGenerator()
		}
		generated, err := generator.Generate(ctx, GenerateParams{
			DrawSize:      drawSize,
			DrawType:      drawType,
			MatchUpType:   params.MatchUpType,
			MatchUpFormat: params.MatchUpFormat,
			TieFormat:     params.TieFormat,
			StructureName: name,
			Stage:         models.StagePlayoff,
			StageSequence: container.StageSequence + 1 + i,
			FeedPolicy:    params.FeedPolicy,
			IDs:           params.IDs,
			Logger:        params.Logger,
		})
		if err != nil {
			return nil, Decorate(err, generator.GetName())
		}
		root := generated.Structures[0]
		entries, byes := positions.EntryPositions(drawSize, participants, positions.PositioningCluster)
		for _, dp := range byes {
			if pa := positionAssignment(root, dp); pa != nil {
				pa.Bye = true
			}
		}
		markByes(root)

		link := newPositionLink(container.StructureID, group.FinishingPositions, root.StructureID)
		link.Target.DrawPositions = entries
		result.Structures = append(result.Structures, generated.Structures...)
		result.Links = append(result.Links, generated.Links...)
		result.Links = append(result.Links, link)
	}
	return result, nil
}

// markByes refreshes sides and flags first round matchUps holding a bye.
func markByes(s *models.Structure) {
	syncSides(s)
	for _, m := range s.MatchUps {
		if m.RoundNumber != 1 {
			continue
		}
		for _, side := range m.Sides {
			if side.Bye {
				m.MatchUpStatus = models.MatchUpStatusBye
			}
		}
	}
}
