package brackets

import (
	"context"
	"log/slog"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// QualifyingProfile describes one qualifying structure feeding the main
// draw: DrawSize entrants play down to QualifyingPositions qualifiers.
type QualifyingProfile struct {
	StructureName       string `json:"structureName,omitempty"`
	StageSequence       int    `json:"stageSequence,omitempty"`
	DrawSize            int    `json:"drawSize"`
	QualifyingPositions int    `json:"qualifyingPositions"`
}

// QualifyingParams attaches a qualifying structure to the main structure.
type QualifyingParams struct {
	Profile       QualifyingProfile
	MatchUpFormat string
	IDs           *IDGenerator
	Logger        *slog.Logger
}

// mainStructure returns the first MAIN stage structure.
func mainStructure(dd *models.DrawDefinition) *models.Structure {
	for _, s := range dd.Structures {
		if s.Stage == models.StageMain && s.StageSequence <= 1 {
			return s
		}
	}
	return nil
}

// openQualifierPositions lists main positions reserved for qualifiers that no
// link feeds yet.
func openQualifierPositions(dd *models.DrawDefinition, main *models.Structure) []int {
	fed := make(map[int]bool)
	for _, link := range dd.Links {
		if link.Target.StructureID == main.StructureID && link.Target.FeedProfile == models.FeedProfileDraw {
			for _, dp := range link.Target.DrawPositions {
				fed[dp] = true
			}
		}
	}
	var out []int
	for _, pa := range main.PositionAssignments {
		if pa.Qualifier && !pa.Filled() && !fed[pa.DrawPosition] {
			out = append(out, pa.DrawPosition)
		}
	}
	return out
}

// GenerateQualifyingStructure builds a qualifying tree that stops when
// QualifyingPositions participants remain and links its last round winners
// to the main draw's qualifier positions.
func GenerateQualifyingStructure(ctx context.Context, dd *models.DrawDefinition, params QualifyingParams) (*StructuresResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dd == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	profile := params.Profile
	if profile.StageSequence < 1 {
		profile.StageSequence = 1
	}
	main := mainStructure(dd)
	if main == nil {
		return nil, newError(ErrStructureNotFound, "main structure required for qualifying")
	}
	for _, s := range dd.Structures {
		if s.Stage == models.StageQualifying && s.StageSequence == profile.StageSequence {
			return nil, newError(ErrExistingStage, "", "stage", models.StageQualifying, "stageSequence", profile.StageSequence)
		}
	}
	if profile.DrawSize == 0 {
		return nil, newError(ErrMissingDrawSize, "qualifying drawSize")
	}
	if profile.DrawSize < 2 || !positions.IsPowerOf2(profile.DrawSize) {
		return nil, newError(ErrInvalidDrawSize, "qualifying drawSize must be a power of 2", "drawSize", profile.DrawSize)
	}
	qualifiers := profile.QualifyingPositions
	if qualifiers < 1 || qualifiers*2 > profile.DrawSize || !positions.IsPowerOf2(qualifiers) {
		return nil, newError(ErrInvalidValues, "qualifyingPositions must be a power of 2 no greater than half the drawSize",
			"qualifyingPositions", qualifiers)
	}
	targets := openQualifierPositions(dd, main)
	if len(targets) < qualifiers {
		return nil, newError(ErrInvalidValues, "not enough qualifier positions in main structure",
			"required", qualifiers, "available", len(targets))
	}
	for _, dp := range targets[:qualifiers] {
		if entryTarget(main, dp) == nil || entryTarget(main, dp).MatchUp.RoundNumber != 1 {
			return nil, newError(ErrInvalidValues, "qualifier positions must play in round 1", "drawPosition", dp)
		}
	}

	ids := params.IDs
	if ids == nil {
		ids = NewIDGenerator(nil, "")
	}
	name := profile.StructureName
	if name == "" {
		name = defaultStructureName(models.StageQualifying)
	}
	roundLimit := positions.Log2(profile.DrawSize / qualifiers)
	gp := &GenerateParams{
		MatchUpType:   dd.MatchUpType,
		MatchUpFormat: params.MatchUpFormat,
		TieFormat:     dd.TieFormat,
		IDs:           ids,
		Logger:        params.Logger,
	}
	structure := buildTree(gp, treeShape{
		StructureName: name,
		Scope:         structureScope(models.StageQualifying, profile.StageSequence),
		Stage:         models.StageQualifying,
		StageSequence: profile.StageSequence,
		BaseSize:      profile.DrawSize,
		RoundLimit:    roundLimit,
	})
	link := newDrawWinnerLink(structure.StructureID, roundLimit, main.StructureID, 1, targets[:qualifiers])

	dd.Structures = append(dd.Structures, structure)
	dd.Links = append(dd.Links, link)
	gp.logger().Debug("qualifying structure added",
		slog.String("structureId", structure.StructureID),
		slog.Int("qualifiers", qualifiers),
	)
	return &StructuresResult{Structures: []*models.Structure{structure}, Links: []*models.DrawLink{link}}, nil
}

// VoluntaryConsolationParams adds an unlinked consolation any eliminated
// participant may enter. DrawSize 0 builds an ad hoc structure.
type VoluntaryConsolationParams struct {
	StructureName string
	DrawSize      int
	MatchUpFormat string
	IDs           *IDGenerator
}

// AddVoluntaryConsolationStructure appends the voluntary consolation stage.
func AddVoluntaryConsolationStructure(ctx context.Context, dd *models.DrawDefinition, params VoluntaryConsolationParams) (*models.Structure, error) {
	if dd == nil {
		return nil, newError(ErrMissingDrawDefinition, "")
	}
	for _, s := range dd.Structures {
		if s.Stage == models.StageVoluntaryConsolation {
			return nil, newError(ErrExistingStage, "", "stage", models.StageVoluntaryConsolation)
		}
	}
	drawType := models.DrawTypeAdHoc
	if params.DrawSize > 0 {
		drawType = models.DrawTypeSingleElimination
	}
	result, err := GenerateStructures(ctx, GenerateParams{
		DrawSize:      params.DrawSize,
		DrawType:      drawType,
		MatchUpType:   dd.MatchUpType,
		MatchUpFormat: params.MatchUpFormat,
		TieFormat:     dd.TieFormat,
		StructureName: params.StructureName,
		Stage:         models.StageVoluntaryConsolation,
		IDs:           params.IDs,
	})
	if err != nil {
		return nil, Decorate(err, "addVoluntaryConsolationStructure")
	}
	structure := result.Structures[0]
	dd.Structures = append(dd.Structures, structure)
	return structure, nil
}
