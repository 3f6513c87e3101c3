package services

import (
	"sort"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/storage"
)

// --- Общие хелперы ---

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func sortObjects(objects []*storage.Object) {
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
}

// --- Payloads of websocket messages ---

type drawUpdated struct {
	DrawID     string          `json:"drawId"`
	Version    int             `json:"version"`
	DrawType   models.DrawType `json:"drawType"`
	Structures int             `json:"structures"`
}

func drawUpdatedPayload(rec *models.DrawRecord) drawUpdated {
	p := drawUpdated{DrawID: rec.DrawID, Version: rec.Version, DrawType: rec.DrawType}
	if rec.Definition != nil {
		p.Structures = len(rec.Definition.Structures)
	}
	return p
}

type matchUpsUpdated struct {
	DrawID   string            `json:"drawId"`
	MatchUps []*models.MatchUp `json:"matchUps"`
}

func matchUpsPayload(drawID string, result *brackets.OutcomeResult) matchUpsUpdated {
	p := matchUpsUpdated{DrawID: drawID}
	if result != nil {
		p.MatchUps = result.ModifiedMatchUp
	}
	return p
}
