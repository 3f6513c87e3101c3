package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/cache"
	"github.com/Dosada05/tournament-draws/hub"
	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/repositories"
	"github.com/Dosada05/tournament-draws/storage"
	"golang.org/x/sync/errgroup"
)

// participantBatchSize bounds the ids sent in one participant lookup.
const participantBatchSize = 200

// Notifier delivers draw change messages to subscribers of a room.
type Notifier interface {
	BroadcastToRoom(room string, message interface{})
}

type DrawService interface {
	GenerateDraw(ctx context.Context, eventID string, input GenerateDrawInput) (*GenerateDrawOutput, error)
	GetDraw(ctx context.Context, drawID string) (*models.DrawRecord, error)
	ListEventDraws(ctx context.Context, eventID string) ([]*models.DrawSummary, error)
	GetStructureMatchUps(ctx context.Context, drawID, structureID string, roundNumbers []int) ([]*brackets.MatchUpInContext, error)
	SetMatchUpOutcome(ctx context.Context, drawID, matchUpID string, input OutcomeInput) (*brackets.OutcomeResult, error)
	RemoveMatchUpOutcome(ctx context.Context, drawID, matchUpID string) (*brackets.OutcomeResult, error)
	AddPlayoffStructures(ctx context.Context, drawID string, input PlayoffInput) (*brackets.PlayoffResult, error)
	RemoveStructure(ctx context.Context, drawID, structureID string, force bool) ([]string, error)
	GetHierarchy(ctx context.Context, drawID, structureID string, depth int) (*brackets.HierarchyResult, error)
	ExportDraw(ctx context.Context, drawID string) (*ExportResult, error)
}

type GenerateDrawInput struct {
	DrawID               string                       `json:"drawId,omitempty"`
	DrawName             string                       `json:"drawName,omitempty"`
	DrawType             models.DrawType              `json:"drawType"`
	DrawSize             int                          `json:"drawSize,omitempty"`
	Entries              []models.Entry               `json:"entries,omitempty"`
	MatchUpType          models.MatchUpType           `json:"matchUpType,omitempty"`
	MatchUpFormat        string                       `json:"matchUpFormat,omitempty"`
	TieFormat            *models.TieFormat            `json:"tieFormat,omitempty"`
	GroupSize            int                          `json:"groupSize,omitempty"`
	PlayoffGroups        []brackets.PlayoffGroup      `json:"playoffGroups,omitempty"`
	QualifyingProfiles   []brackets.QualifyingProfile `json:"qualifyingProfiles,omitempty"`
	VoluntaryConsolation *VoluntaryConsolationInput   `json:"voluntaryConsolation,omitempty"`
	Policies             brackets.PolicySource        `json:"policies,omitempty"`
	Automated            bool                         `json:"automated,omitempty"`
	RoundsCount          int                          `json:"roundsCount,omitempty"`
	DisableCoercion      bool                         `json:"disableCoercion,omitempty"`
}

type VoluntaryConsolationInput struct {
	StructureName string `json:"structureName,omitempty"`
	DrawSize      int    `json:"drawSize,omitempty"`
}

type GenerateDrawOutput struct {
	Draw               *models.DrawRecord            `json:"draw"`
	PositioningReports []*brackets.PositioningReport `json:"positioningReports,omitempty"`
	Conflicts          []brackets.Conflict           `json:"conflicts,omitempty"`
}

type OutcomeInput struct {
	WinningSide   int                  `json:"winningSide,omitempty"`
	MatchUpStatus models.MatchUpStatus `json:"matchUpStatus,omitempty"`
	Score         *models.Score        `json:"score,omitempty"`
}

type PlayoffInput struct {
	StructureID       string                               `json:"structureId"`
	RoundNumbers      []int                                `json:"roundNumbers,omitempty"`
	PlayoffGroups     []brackets.PlayoffGroup              `json:"playoffGroups,omitempty"`
	PlayoffAttributes map[string]brackets.PlayoffAttribute `json:"playoffAttributes,omitempty"`
	RoundOffsetLimit  int                                  `json:"roundOffsetLimit,omitempty"`
}

type ExportResult struct {
	DrawID  string            `json:"drawId"`
	Version int               `json:"version"`
	Objects []*storage.Object `json:"objects"`
}

type drawService struct {
	drawRepo        repositories.DrawRepository
	participantRepo repositories.ParticipantRepository
	cache           cache.DrawCache
	store           storage.ObjectStore
	notifier        Notifier
	logger          *slog.Logger
	locks           *drawLocks
	now             func() time.Time
}

// NewDrawService wires the draw engine to persistence. store may be nil,
// which disables exports.
func NewDrawService(
	drawRepo repositories.DrawRepository,
	participantRepo repositories.ParticipantRepository,
	drawCache cache.DrawCache,
	store storage.ObjectStore,
	notifier Notifier,
	logger *slog.Logger,
) DrawService {
	if drawCache == nil {
		drawCache = cache.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &drawService{
		drawRepo:        drawRepo,
		participantRepo: participantRepo,
		cache:           drawCache,
		store:           store,
		notifier:        notifier,
		logger:          logger,
		locks:           newDrawLocks(),
		now:             time.Now,
	}
}

func (s *drawService) GenerateDraw(ctx context.Context, eventID string, input GenerateDrawInput) (*GenerateDrawOutput, error) {
	if eventID == "" {
		return nil, ErrEventIDRequired
	}

	ids := make([]string, 0, len(input.Entries))
	for _, e := range input.Entries {
		ids = append(ids, e.ParticipantID)
	}
	participants, err := s.loadParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}

	params := brackets.GenerateDrawDefinitionParams{
		DrawID:             input.DrawID,
		DrawName:           input.DrawName,
		EventID:            eventID,
		DrawType:           input.DrawType,
		DrawSize:           input.DrawSize,
		Entries:            input.Entries,
		MatchUpType:        input.MatchUpType,
		MatchUpFormat:      input.MatchUpFormat,
		TieFormat:          input.TieFormat,
		GroupSize:          input.GroupSize,
		PlayoffGroups:      input.PlayoffGroups,
		QualifyingProfiles: input.QualifyingProfiles,
		Policies:           input.Policies,
		Participants:       participants,
		Automated:          input.Automated,
		RoundsCount:        input.RoundsCount,
		DisableCoercion:    input.DisableCoercion,
		Logger:             s.logger,
	}
	if vc := input.VoluntaryConsolation; vc != nil {
		params.VoluntaryConsolation = &brackets.VoluntaryConsolationParams{
			StructureName: vc.StructureName,
			DrawSize:      vc.DrawSize,
			MatchUpFormat: input.MatchUpFormat,
		}
	}

	generated, err := brackets.GenerateDrawDefinition(ctx, params)
	if err != nil {
		return nil, err
	}
	dd := generated.DrawDefinition
	now := s.now().UTC()
	dd.UpdatedAt = &now

	rec := &models.DrawRecord{
		DrawID:     dd.DrawID,
		EventID:    eventID,
		DrawName:   dd.DrawName,
		DrawType:   dd.DrawType,
		Definition: dd,
	}
	if err := s.drawRepo.Create(ctx, nil, rec); err != nil {
		return nil, mapDrawRepoError(err)
	}
	s.logger.InfoContext(ctx, "draw generated",
		slog.String("draw_id", rec.DrawID),
		slog.String("event_id", eventID),
		slog.String("draw_type", string(rec.DrawType)),
		slog.Int("structures", len(dd.Structures)),
	)
	s.storeInCache(ctx, rec)
	s.broadcast(rec.DrawID, hub.MessageDrawUpdated, drawUpdatedPayload(rec))

	return &GenerateDrawOutput{
		Draw:               rec,
		PositioningReports: generated.PositioningReports,
		Conflicts:          generated.Conflicts,
	}, nil
}

func (s *drawService) GetDraw(ctx context.Context, drawID string) (*models.DrawRecord, error) {
	rec, err := s.cache.Get(ctx, drawID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "draw cache read failed", slog.String("draw_id", drawID), slog.Any("error", err))
	}

	rec, err = s.drawRepo.GetByID(ctx, drawID)
	if err != nil {
		return nil, mapDrawRepoError(err)
	}
	s.storeInCache(ctx, rec)
	return rec, nil
}

func (s *drawService) ListEventDraws(ctx context.Context, eventID string) ([]*models.DrawSummary, error) {
	if eventID == "" {
		return nil, ErrEventIDRequired
	}
	summaries, err := s.drawRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draws of event %s: %w", eventID, err)
	}
	return summaries, nil
}

func (s *drawService) GetStructureMatchUps(ctx context.Context, drawID, structureID string, roundNumbers []int) ([]*brackets.MatchUpInContext, error) {
	rec, err := s.GetDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}
	structure := brackets.FindStructure(rec.Definition, structureID)
	if structure == nil {
		// let the engine report the missing id with its own code
		return brackets.GetAllStructureMatchUps(rec.Definition, structureID, brackets.ContextParams{})
	}

	var ids []string
	for _, pa := range structure.AllPositionAssignments() {
		if pa.ParticipantID != "" {
			ids = append(ids, pa.ParticipantID)
		}
	}
	participants, err := s.loadParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}
	return brackets.GetAllStructureMatchUps(rec.Definition, structureID, brackets.ContextParams{
		Participants:       participants,
		IncludeTieMatchUps: true,
		RoundNumbers:       roundNumbers,
	})
}

func (s *drawService) SetMatchUpOutcome(ctx context.Context, drawID, matchUpID string, input OutcomeInput) (*brackets.OutcomeResult, error) {
	var result *brackets.OutcomeResult
	_, err := s.mutate(ctx, drawID, func(dd *models.DrawDefinition) error {
		var err error
		result, err = brackets.SetMatchUpOutcome(dd, brackets.OutcomeParams{
			MatchUpID:     matchUpID,
			WinningSide:   input.WinningSide,
			MatchUpStatus: input.MatchUpStatus,
			Score:         input.Score,
			Logger:        s.logger,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(drawID, hub.MessageMatchUpUpdated, matchUpsPayload(drawID, result))
	return result, nil
}

func (s *drawService) RemoveMatchUpOutcome(ctx context.Context, drawID, matchUpID string) (*brackets.OutcomeResult, error) {
	var result *brackets.OutcomeResult
	_, err := s.mutate(ctx, drawID, func(dd *models.DrawDefinition) error {
		var err error
		result, err = brackets.RemoveMatchUpOutcome(dd, matchUpID, s.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(drawID, hub.MessageMatchUpUpdated, matchUpsPayload(drawID, result))
	return result, nil
}

func (s *drawService) AddPlayoffStructures(ctx context.Context, drawID string, input PlayoffInput) (*brackets.PlayoffResult, error) {
	var result *brackets.PlayoffResult
	rec, err := s.mutate(ctx, drawID, func(dd *models.DrawDefinition) error {
		var err error
		result, err = brackets.GenerateAndPopulatePlayoffStructures(ctx, dd, brackets.PlayoffStructuresParams{
			SourceStructureID: input.StructureID,
			RoundNumbers:      input.RoundNumbers,
			PlayoffGroups:     input.PlayoffGroups,
			PlayoffAttributes: input.PlayoffAttributes,
			RoundOffsetLimit:  input.RoundOffsetLimit,
			Logger:            s.logger,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(drawID, hub.MessageDrawUpdated, drawUpdatedPayload(rec))
	return result, nil
}

func (s *drawService) RemoveStructure(ctx context.Context, drawID, structureID string, force bool) ([]string, error) {
	var removed []string
	rec, err := s.mutate(ctx, drawID, func(dd *models.DrawDefinition) error {
		var err error
		removed, err = brackets.RemoveStructure(dd, structureID, force)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(drawID, hub.MessageDrawUpdated, drawUpdatedPayload(rec))
	return removed, nil
}

func (s *drawService) GetHierarchy(ctx context.Context, drawID, structureID string, depth int) (*brackets.HierarchyResult, error) {
	rec, err := s.GetDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}
	return structureHierarchy(rec.Definition, structureID, depth)
}

func structureHierarchy(dd *models.DrawDefinition, structureID string, depth int) (*brackets.HierarchyResult, error) {
	if structureID == "" {
		return nil, brackets.ErrMissingStructureID
	}
	structure := brackets.FindStructure(dd, structureID)
	if structure == nil {
		return nil, fmt.Errorf("%w: %s", brackets.ErrStructureNotFound, structureID)
	}
	if structure.IsContainer() || structure.FinishingPosition == models.FinishingPositionWinRatio {
		return nil, fmt.Errorf("%w: structure %s has no elimination tree", brackets.ErrInvalidStructure, structureID)
	}
	result, err := brackets.BuildDrawHierarchy(structure.MatchUps, dd.MatchUpType)
	if err != nil {
		return nil, err
	}
	if depth > 0 && result.Hierarchy != nil {
		brackets.CollapseHierarchy(result.Hierarchy, depth)
	}
	return result, nil
}

// ExportDraw uploads the draw document and the hierarchy of every
// elimination structure, concurrently.
func (s *drawService) ExportDraw(ctx context.Context, drawID string) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportDisabled
	}
	rec, err := s.GetDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}

	artifacts := map[string]interface{}{"draw.json": rec}
	for _, structure := range rec.Definition.Structures {
		if structure.IsContainer() || structure.FinishingPosition == models.FinishingPositionWinRatio || brackets.IsAdHoc(structure) {
			continue
		}
		hierarchy, err := structureHierarchy(rec.Definition, structure.StructureID, 0)
		if err != nil {
			return nil, err
		}
		artifacts["hierarchy-"+structure.StructureID+".json"] = hierarchy
	}

	result := &ExportResult{DrawID: rec.DrawID, Version: rec.Version}
	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	for name, artifact := range artifacts {
		name, artifact := name, artifact
		g.Go(func() error {
			body, err := json.Marshal(artifact)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", name, err)
			}
			obj, err := s.store.Put(gCtx, storage.ExportKey(rec.DrawID, rec.Version, name), "application/json", bytes.NewReader(body))
			if err != nil {
				return err
			}
			mu.Lock()
			result.Objects = append(result.Objects, obj)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "draw export failed", slog.String("draw_id", drawID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to export draw %s: %w", drawID, err)
	}
	sortObjects(result.Objects)
	s.logger.InfoContext(ctx, "draw exported", slog.String("draw_id", drawID), slog.Int("objects", len(result.Objects)))
	return result, nil
}

// mutate applies fn to the stored draw under the draw's lock and persists
// the result. A failing fn leaves the stored draw untouched.
func (s *drawService) mutate(ctx context.Context, drawID string, fn func(dd *models.DrawDefinition) error) (*models.DrawRecord, error) {
	unlock := s.locks.lock(drawID)
	defer unlock()

	rec, err := s.drawRepo.GetByID(ctx, drawID)
	if err != nil {
		return nil, mapDrawRepoError(err)
	}
	if err := fn(rec.Definition); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec.Definition.UpdatedAt = &now
	rec.DrawName = rec.Definition.DrawName
	rec.DrawType = rec.Definition.DrawType
	if err := s.drawRepo.Update(ctx, nil, rec); err != nil {
		if errors.Is(err, repositories.ErrDrawVersionConflict) {
			// another process wrote first; whatever is cached is stale
			s.invalidate(ctx, drawID)
		}
		return nil, mapDrawRepoError(err)
	}
	s.storeInCache(ctx, rec)
	return rec, nil
}

// loadParticipants fetches participants in batches, concurrently. Unknown
// ids are skipped.
func (s *drawService) loadParticipants(ctx context.Context, ids []string) (map[string]*models.Participant, error) {
	participants := make(map[string]*models.Participant, len(ids))
	ids = uniqueNonEmpty(ids)
	if len(ids) == 0 || s.participantRepo == nil {
		return participants, nil
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	for start := 0; start < len(ids); start += participantBatchSize {
		batch := ids[start:min(start+participantBatchSize, len(ids))]
		g.Go(func() error {
			found, err := s.participantRepo.FindByIDs(gCtx, batch)
			if err != nil {
				return fmt.Errorf("failed to load participants: %w", err)
			}
			mu.Lock()
			for id, p := range found {
				participants[id] = p
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (s *drawService) storeInCache(ctx context.Context, rec *models.DrawRecord) {
	if err := s.cache.Set(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "draw cache write failed", slog.String("draw_id", rec.DrawID), slog.Any("error", err))
		s.invalidate(ctx, rec.DrawID)
	}
}

func (s *drawService) invalidate(ctx context.Context, drawID string) {
	if err := s.cache.Invalidate(ctx, drawID); err != nil {
		s.logger.WarnContext(ctx, "draw cache invalidation failed", slog.String("draw_id", drawID), slog.Any("error", err))
	}
}

func (s *drawService) broadcast(drawID, messageType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	room := hub.RoomForDraw(drawID)
	s.notifier.BroadcastToRoom(room, hub.Message{Type: messageType, Payload: payload, RoomID: room})
}

func mapDrawRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrDrawNotFound):
		return ErrDrawNotFound
	case errors.Is(err, repositories.ErrDrawConflict):
		return ErrDrawConflict
	case errors.Is(err, repositories.ErrDrawVersionConflict):
		return ErrDrawVersionConflict
	}
	return fmt.Errorf("draw repository: %w", err)
}

// drawLocks serializes writers of the same draw within this process.
type drawLocks struct {
	mu    sync.Mutex
	locks map[string]*drawLock
}

type drawLock struct {
	mu   sync.Mutex
	refs int
}

func newDrawLocks() *drawLocks {
	return &drawLocks{locks: make(map[string]*drawLock)}
}

func (l *drawLocks) lock(drawID string) func() {
	l.mu.Lock()
	dl, ok := l.locks[drawID]
	if !ok {
		dl = &drawLock{}
		l.locks[drawID] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.mu.Lock()
	return func() {
		dl.mu.Unlock()
		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.locks, drawID)
		}
		l.mu.Unlock()
	}
}
