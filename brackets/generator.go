package brackets

import (
	"context"
	"log/slog"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// GenerateParams configures one structure generator run.
type GenerateParams struct {
	DrawSize      int
	DrawType      models.DrawType
	MatchUpType   models.MatchUpType
	MatchUpFormat string
	TieFormat     *models.TieFormat

	StructureName string
	Stage         models.Stage
	StageSequence int

	// Round robin
	GroupSize     int
	PlayoffGroups []PlayoffGroup

	// Playoff trees
	PlayoffAttributes map[string]PlayoffAttribute
	RoundOffsetLimit  int

	FeedPolicy *FeedPolicy

	// Ids: UUIDs are consumed first, then IDPrefix-derived ids. IDs, when
	// set, overrides both and is shared with the caller.
	UUIDs    []string
	IDPrefix string
	IDs      *IDGenerator

	Logger *slog.Logger
}

func (p *GenerateParams) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *GenerateParams) stage() models.Stage {
	if p.Stage == "" {
		return models.StageMain
	}
	return p.Stage
}

func (p *GenerateParams) stageSequence() int {
	if p.StageSequence < 1 {
		return 1
	}
	return p.StageSequence
}

// StructuresResult is the output of every generator.
type StructuresResult struct {
	Structures []*models.Structure `json:"structures"`
	Links      []*models.DrawLink  `json:"links"`
}

// MatchUps returns every matchUp of every generated structure.
func (r *StructuresResult) MatchUps() []*models.MatchUp {
	var out []*models.MatchUp
	for _, s := range r.Structures {
		out = append(out, s.AllMatchUps()...)
	}
	return out
}

// StructureGenerator builds the structures and links of one draw type.
// Generators never mutate anything but the result they return.
type StructureGenerator interface {
	Generate(ctx context.Context, params GenerateParams) (*StructuresResult, error)

	GetName() string
}

// GetGenerator maps a draw type to its generator.
func GetGenerator(drawType models.DrawType) (StructureGenerator, error) {
	switch drawType {
	case models.DrawTypeSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.DrawTypeRoundRobin, models.DrawTypeRoundRobinWithPlayoff:
		return NewRoundRobinGenerator(), nil
	case models.DrawTypeFeedIn:
		return NewFeedInGenerator(), nil
	case models.DrawTypeFeedInChampionship,
		models.DrawTypeFeedInChampionshipToSF,
		models.DrawTypeFeedInChampionshipToQF,
		models.DrawTypeFeedInChampionshipToR16,
		models.DrawTypeModifiedFeedInChampionship,
		models.DrawTypeFirstMatchLoserConsolation,
		models.DrawTypeFirstRoundLoserConsolation,
		models.DrawTypeCurtisConsolation:
		return NewConsolationGenerator(), nil
	case models.DrawTypeCompass, models.DrawTypeOlympic, models.DrawTypePlayoff:
		return NewPlayoffGenerator(), nil
	case models.DrawTypeDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	case models.DrawTypeLuckyDraw:
		return NewLuckyDrawGenerator(), nil
	case models.DrawTypeAdHoc:
		return NewAdHocGenerator(), nil
	}
	return nil, newError(ErrUnrecognizedDrawType, string(drawType), "drawType", drawType)
}

// RequiresPowerOf2 reports whether the draw type needs a power-of-two size.
func RequiresPowerOf2(drawType models.DrawType) bool {
	switch drawType {
	case models.DrawTypeFeedIn, models.DrawTypeLuckyDraw, models.DrawTypeAdHoc,
		models.DrawTypeRoundRobin, models.DrawTypeRoundRobinWithPlayoff:
		return false
	}
	return true
}

// ValidateDrawSize applies the size rules shared by all draw types.
func ValidateDrawSize(drawType models.DrawType, drawSize int) error {
	if drawType == models.DrawTypeAdHoc {
		if drawSize < 0 {
			return newError(ErrInvalidDrawSize, "negative drawSize", "drawSize", drawSize)
		}
		return nil
	}
	if drawSize == 0 {
		return newError(ErrMissingDrawSize, "", "drawType", drawType)
	}
	switch drawType {
	case models.DrawTypeRoundRobin, models.DrawTypeRoundRobinWithPlayoff:
		if drawSize < 3 {
			return newError(ErrInvalidDrawSize, "round robin requires at least 3 positions", "drawSize", drawSize)
		}
		return nil
	}
	if drawSize < 2 {
		return newError(ErrInvalidDrawSize, "", "drawSize", drawSize)
	}
	if RequiresPowerOf2(drawType) && !positions.IsPowerOf2(drawSize) {
		return newError(ErrInvalidDrawSize, "drawSize must be a power of 2", "drawSize", drawSize, "drawType", drawType)
	}
	return nil
}

// GenerateStructures validates params and runs the generator for
// params.DrawType.
func GenerateStructures(ctx context.Context, params GenerateParams) (*StructuresResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	generator, err := GetGenerator(params.DrawType)
	if err != nil {
		return nil, err
	}
	if err := ValidateDrawSize(params.DrawType, params.DrawSize); err != nil {
		return nil, err
	}
	if params.TieFormat != nil && params.MatchUpType != models.MatchUpTypeTeam {
		return nil, newError(ErrInvalidTieFormat, "tieFormat requires TEAM matchUpType")
	}
	if params.IDs == nil {
		params.IDs = NewIDGenerator(params.UUIDs, params.IDPrefix)
	}
	result, err := generator.Generate(ctx, params)
	if err != nil {
		return nil, Decorate(err, generator.GetName())
	}
	params.logger().Debug("structures generated",
		slog.String("drawType", string(params.DrawType)),
		slog.Int("drawSize", params.DrawSize),
		slog.Int("structures", len(result.Structures)),
		slog.Int("links", len(result.Links)),
	)
	return result, nil
}
