package brackets

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// NewDrawParams describes an empty draw definition.
type NewDrawParams struct {
	DrawID        string
	DrawName      string
	DrawType      models.DrawType
	EventID       string
	MatchUpType   models.MatchUpType
	MatchUpFormat string
	TieFormat     *models.TieFormat
	Entries       []models.Entry
}

// NewDrawDefinition returns a draw definition without structures. A missing
// DrawID gets a random UUID.
func NewDrawDefinition(params NewDrawParams) *models.DrawDefinition {
	drawID := params.DrawID
	if drawID == "" {
		drawID = NewIDGenerator(nil, "").Next()
	}
	matchUpType := params.MatchUpType
	if matchUpType == "" {
		matchUpType = models.MatchUpTypeSingles
	}
	now := time.Now().UTC()
	return &models.DrawDefinition{
		DrawID:        drawID,
		DrawName:      params.DrawName,
		DrawType:      params.DrawType,
		EventID:       params.EventID,
		MatchUpType:   matchUpType,
		MatchUpFormat: params.MatchUpFormat,
		TieFormat:     params.TieFormat,
		Entries:       append([]models.Entry(nil), params.Entries...),
		Structures:    []*models.Structure{},
		Links:         []*models.DrawLink{},
		UpdatedAt:     &now,
	}
}

// CoerceDrawType applies the draw type coercion rules: a draw of two
// positions is always single elimination, except ad hoc draws or when
// coercion is disabled.
func CoerceDrawType(drawType models.DrawType, drawSize int, disabled bool) models.DrawType {
	if drawType == "" {
		drawType = models.DrawTypeSingleElimination
	}
	if disabled || drawType == models.DrawTypeAdHoc {
		return drawType
	}
	if drawSize == 2 {
		return models.DrawTypeSingleElimination
	}
	return drawType
}

// ResolveDrawSize returns the explicit drawSize, or the entry count rounded
// up to a power of 2 for types that need one.
func ResolveDrawSize(drawType models.DrawType, drawSize, entriesCount int) int {
	if drawSize > 0 {
		return drawSize
	}
	if RequiresPowerOf2(drawType) {
		return positions.NextPowerOf2(entriesCount)
	}
	return entriesCount
}

// GenerateDrawDefinitionParams configures GenerateDrawDefinition.
type GenerateDrawDefinitionParams struct {
	DrawID        string
	DrawName      string
	EventID       string
	DrawType      models.DrawType
	DrawSize      int
	Entries       []models.Entry
	MatchUpType   models.MatchUpType
	MatchUpFormat string
	TieFormat     *models.TieFormat

	GroupSize         int
	PlayoffGroups     []PlayoffGroup
	PlayoffAttributes map[string]PlayoffAttribute
	RoundOffsetLimit  int

	// Policies are explicit for this call; AppliedPolicies were attached to
	// the event earlier. Explicit wins, defaults fill the rest.
	Policies        PolicySource
	AppliedPolicies PolicySource
	Participants    map[string]*models.Participant

	// Automated positions entries (and ad hoc pairings) after generation.
	Automated       bool
	DisableCoercion bool
	// RoundsCount pre-generates rounds of an AD_HOC draw.
	RoundsCount int

	QualifyingProfiles   []QualifyingProfile
	VoluntaryConsolation *VoluntaryConsolationParams

	UUIDs    []string
	IDPrefix string
	Logger   *slog.Logger
}

// GenerateDrawDefinitionResult is the assembled draw with diagnostics.
type GenerateDrawDefinitionResult struct {
	DrawDefinition     *models.DrawDefinition `json:"drawDefinition"`
	PositioningReports []*PositioningReport   `json:"positioningReports,omitempty"`
	Conflicts          []Conflict             `json:"conflicts,omitempty"`
}

func splitEntries(entries []models.Entry) (main, qualifying []models.Entry) {
	for _, e := range entries {
		if !e.Accepted() {
			continue
		}
		if e.EntryStage == models.StageQualifying {
			qualifying = append(qualifying, e)
		} else {
			main = append(main, e)
		}
	}
	return main, qualifying
}

// GenerateDrawDefinition assembles a complete draw: main structures and
// links, automated positioning, ad hoc rounds, qualifying structures and a
// voluntary consolation.
func GenerateDrawDefinition(ctx context.Context, params GenerateDrawDefinitionParams) (*GenerateDrawDefinitionResult, error) {
	const stack = "generateDrawDefinition"
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if params.MatchUpFormat != "" && params.TieFormat != nil {
		return nil, newError(ErrInvalidMatchUpFormat, "matchUpFormat and tieFormat are mutually exclusive")
	}
	if params.TieFormat != nil {
		if params.MatchUpType == "" {
			params.MatchUpType = models.MatchUpTypeTeam
		}
		if len(params.TieFormat.CollectionDefinitions) == 0 {
			return nil, newError(ErrInvalidTieFormat, "tieFormat has no collections")
		}
	}
	policies := ResolvePolicies(params.Policies, params.AppliedPolicies)

	mainEntries, qualifyingEntries := splitEntries(params.Entries)
	qualifiersCount := 0
	for _, profile := range params.QualifyingProfiles {
		qualifiersCount += profile.QualifyingPositions
	}
	drawType := params.DrawType
	if drawType == "" {
		drawType = models.DrawTypeSingleElimination
	}
	drawSize := ResolveDrawSize(drawType, params.DrawSize, len(mainEntries)+qualifiersCount)
	drawType = CoerceDrawType(drawType, drawSize, params.DisableCoercion)

	dd := NewDrawDefinition(NewDrawParams{
		DrawID:        params.DrawID,
		DrawName:      params.DrawName,
		DrawType:      drawType,
		EventID:       params.EventID,
		MatchUpType:   params.MatchUpType,
		MatchUpFormat: params.MatchUpFormat,
		TieFormat:     params.TieFormat,
		Entries:       params.Entries,
	})
	if err := AttachPolicies(dd, mergeSources(params.Policies, params.AppliedPolicies)); err != nil {
		return nil, Decorate(err, stack)
	}
	ids := NewIDGenerator(params.UUIDs, params.IDPrefix)
	generated, err := GenerateStructures(ctx, GenerateParams{
		DrawSize:          drawSize,
		DrawType:          drawType,
		MatchUpType:       dd.MatchUpType,
		MatchUpFormat:     params.MatchUpFormat,
		TieFormat:         params.TieFormat,
		GroupSize:         params.GroupSize,
		PlayoffGroups:     params.PlayoffGroups,
		PlayoffAttributes: params.PlayoffAttributes,
		RoundOffsetLimit:  params.RoundOffsetLimit,
		FeedPolicy:        &policies.Feed,
		IDs:               ids,
		Logger:            logger,
	})
	if err != nil {
		return nil, Decorate(err, stack)
	}
	dd.Structures = append(dd.Structures, generated.Structures...)
	dd.Links = append(dd.Links, generated.Links...)
	result := &GenerateDrawDefinitionResult{DrawDefinition: dd}
	main := generated.Structures[0]

	if drawType == models.DrawTypeAdHoc {
		if err := generateAdHocRounds(dd, main, mainEntries, params, ids); err != nil {
			return nil, Decorate(err, stack)
		}
	} else if params.Automated || qualifiersCount > 0 {
		report, err := AutomatedPositioning(dd, PositioningParams{
			StructureID:     main.StructureID,
			Entries:         mainEntries,
			Participants:    params.Participants,
			QualifiersCount: qualifiersCount,
			Policies:        policies,
			Logger:          logger,
		})
		if err != nil {
			return nil, Decorate(err, stack)
		}
		result.PositioningReports = append(result.PositioningReports, report)
		result.Conflicts = append(result.Conflicts, report.Conflicts...)
	}

	for _, profile := range params.QualifyingProfiles {
		qualifying, err := GenerateQualifyingStructure(ctx, dd, QualifyingParams{
			Profile:       profile,
			MatchUpFormat: params.MatchUpFormat,
			IDs:           ids,
			Logger:        logger,
		})
		if err != nil {
			return nil, Decorate(err, stack)
		}
		if !params.Automated || len(qualifyingEntries) == 0 {
			continue
		}
		entries := qualifyingEntries
		if len(entries) > profile.DrawSize {
			entries = entries[:profile.DrawSize]
		}
		qualifyingEntries = qualifyingEntries[len(entries):]
		report, err := AutomatedPositioning(dd, PositioningParams{
			StructureID:  qualifying.Structures[0].StructureID,
			Entries:      entries,
			Participants: params.Participants,
			Policies:     policies,
			Logger:       logger,
		})
		if err != nil {
			return nil, Decorate(err, stack)
		}
		result.PositioningReports = append(result.PositioningReports, report)
		result.Conflicts = append(result.Conflicts, report.Conflicts...)
	}

	if params.VoluntaryConsolation != nil {
		vc := *params.VoluntaryConsolation
		if vc.IDs == nil {
			vc.IDs = ids
		}
		if _, err := AddVoluntaryConsolationStructure(ctx, dd, vc); err != nil {
			return nil, Decorate(err, stack)
		}
	}

	if err := ValidateLinks(dd); err != nil {
		return nil, Decorate(err, stack)
	}
	AnnotateGoesTo(dd, logger)
	logger.Debug("draw definition generated",
		slog.String("drawId", dd.DrawID),
		slog.String("drawType", string(drawType)),
		slog.Int("drawSize", drawSize),
		slog.Int("structures", len(dd.Structures)),
	)
	return result, nil
}

func generateAdHocRounds(dd *models.DrawDefinition, structure *models.Structure, entries []models.Entry, params GenerateDrawDefinitionParams, ids *IDGenerator) error {
	participantIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		participantIDs = append(participantIDs, e.ParticipantID)
	}
	for round := 1; round <= params.RoundsCount; round++ {
		adHoc, err := GenerateAdHocMatchUps(dd, AdHocMatchUpsParams{
			StructureID:    structure.StructureID,
			RoundNumber:    round,
			ParticipantIDs: participantIDs,
			Automated:      params.Automated,
			MatchUpsCount:  ceilDiv(len(participantIDs), 2),
			IDs:            ids,
		})
		if err != nil {
			return err
		}
		if err := AddAdHocMatchUps(dd, structure.StructureID, adHoc.MatchUps); err != nil {
			return err
		}
	}
	return nil
}
