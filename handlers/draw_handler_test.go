package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/services"
	"github.com/go-chi/chi/v5"
)

// MockDrawService returns errNotMocked for every method without a func.
type MockDrawService struct {
	GenerateDrawFunc         func(ctx context.Context, eventID string, input services.GenerateDrawInput) (*services.GenerateDrawOutput, error)
	GetDrawFunc              func(ctx context.Context, drawID string) (*models.DrawRecord, error)
	GetStructureMatchUpsFunc func(ctx context.Context, drawID, structureID string, rounds []int) ([]*brackets.MatchUpInContext, error)
	SetMatchUpOutcomeFunc    func(ctx context.Context, drawID, matchUpID string, input services.OutcomeInput) (*brackets.OutcomeResult, error)
	RemoveStructureFunc      func(ctx context.Context, drawID, structureID string, force bool) ([]string, error)
	GetHierarchyFunc         func(ctx context.Context, drawID, structureID string, depth int) (*brackets.HierarchyResult, error)
}

var errNotMocked = errors.New("not mocked")

func (m *MockDrawService) GenerateDraw(ctx context.Context, eventID string, input services.GenerateDrawInput) (*services.GenerateDrawOutput, error) {
	if m.GenerateDrawFunc != nil {
		return m.GenerateDrawFunc(ctx, eventID, input)
	}
	return nil, errNotMocked
}

func (m *MockDrawService) GetDraw(ctx context.Context, drawID string) (*models.DrawRecord, error) {
	if m.GetDrawFunc != nil {
		return m.GetDrawFunc(ctx, drawID)
	}
	return nil, errNotMocked
}

func (m *MockDrawService) ListEventDraws(ctx context.Context, eventID string) ([]*models.DrawSummary, error) {
	return nil, errNotMocked
}

func (m *MockDrawService) GetStructureMatchUps(ctx context.Context, drawID, structureID string, rounds []int) ([]*brackets.MatchUpInContext, error) {
	if m.GetStructureMatchUpsFunc != nil {
		return m.GetStructureMatchUpsFunc(ctx, drawID, structureID, rounds)
	}
	return nil, errNotMocked
}

func (m *MockDrawService) SetMatchUpOutcome(ctx context.Context, drawID, matchUpID string, input services.OutcomeInput) (*brackets.OutcomeResult, error) {
	if m.SetMatchUpOutcomeFunc != nil {
		return m.SetMatchUpOutcomeFunc(ctx, drawID, matchUpID, input)
	}
	return nil, errNotMocked
}

func (m *MockDrawService) RemoveMatchUpOutcome(ctx context.Context, drawID, matchUpID string) (*brackets.OutcomeResult, error) {
	return nil, errNotMocked
}

func (m *MockDrawService) AddPlayoffStructures(ctx context.Context, drawID string, input services.PlayoffInput) (*brackets.PlayoffResult, error) {
	return nil, errNotMocked
}

func (m *MockDrawService) RemoveStructure(ctx context.Context, drawID, structureID string, force bool) ([]string, error) {
	if m.RemoveStructureFunc != nil {
		return m.RemoveStructureFunc(ctx, drawID, structureID, force)
	}
	return nil, errNotMocked
}

func (m *MockDrawService) GetHierarchy(ctx context.Context, drawID, structureID string, depth int) (*brackets.HierarchyResult, error) {
	if m.GetHierarchyFunc != nil {
		return m.GetHierarchyFunc(ctx, drawID, structureID, depth)
	}
	return nil, errNotMocked
}

func (m *MockDrawService) ExportDraw(ctx context.Context, drawID string) (*services.ExportResult, error) {
	return nil, services.ErrExportDisabled
}

func newTestRouter(svc services.DrawService) *chi.Mux {
	h := NewDrawHandler(svc)
	r := chi.NewRouter()
	r.Post("/events/{eventID}/draws", h.GenerateHandler)
	r.Get("/draws/{drawID}", h.GetHandler)
	r.Get("/draws/{drawID}/structures/{structureID}/matchups", h.MatchUpsHandler)
	r.Get("/draws/{drawID}/structures/{structureID}/hierarchy", h.HierarchyHandler)
	r.Put("/draws/{drawID}/matchups/{matchUpID}/outcome", h.SetOutcomeHandler)
	r.Delete("/draws/{drawID}/structures/{structureID}", h.RemoveStructureHandler)
	r.Post("/draws/{drawID}/export", h.ExportHandler)
	return r
}

func serve(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %s", rec.Body.String())
		}
	}
	return rec, decoded
}

func TestGenerateHandler(t *testing.T) {
	var gotEvent string
	var gotInput services.GenerateDrawInput
	svc := &MockDrawService{
		GenerateDrawFunc: func(ctx context.Context, eventID string, input services.GenerateDrawInput) (*services.GenerateDrawOutput, error) {
			gotEvent, gotInput = eventID, input
			if input.DrawType == "KNOCKOUT" {
				return nil, fmt.Errorf("generate: %w", brackets.ErrUnrecognizedDrawType)
			}
			return &services.GenerateDrawOutput{Draw: &models.DrawRecord{DrawID: "d1", Version: 1}}, nil
		},
	}
	router := newTestRouter(svc)

	rec, body := serve(t, router, http.MethodPost, "/events/e1/draws", `{"drawType":"SINGLE_ELIMINATION","drawSize":8}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}
	if gotEvent != "e1" || gotInput.DrawSize != 8 || gotInput.DrawType != models.DrawTypeSingleElimination {
		t.Errorf("service called with %s %+v", gotEvent, gotInput)
	}

	rec, body = serve(t, router, http.MethodPost, "/events/e1/draws", `{"drawType":"KNOCKOUT"}`)
	if rec.Code != http.StatusBadRequest || body["code"] != "UNRECOGNIZED_DRAW_TYPE" {
		t.Errorf("engine error: status = %d body = %v", rec.Code, body)
	}

	rec, _ = serve(t, router, http.MethodPost, "/events/e1/draws", `{"drawSize":"eight"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d", rec.Code)
	}
	rec, _ = serve(t, router, http.MethodPost, "/events/e1/draws", `{"unknown":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     int
		wantCode string
	}{
		{"draw not found", services.ErrDrawNotFound, http.StatusNotFound, ""},
		{"version conflict", services.ErrDrawVersionConflict, http.StatusConflict, ""},
		{"structure not found", fmt.Errorf("x: %w", brackets.ErrStructureNotFound), http.StatusNotFound, "STRUCTURE_NOT_FOUND"},
		{"scores present", brackets.Decorate(brackets.ErrScoresPresent, "removeStructure"), http.StatusConflict, "SCORES_PRESENT"},
		{"invalid winning side", brackets.ErrInvalidWinningSide, http.StatusBadRequest, "INVALID_WINNING_SIDE"},
		{"export disabled", services.ErrExportDisabled, http.StatusServiceUnavailable, ""},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDrawService{
				GetDrawFunc: func(ctx context.Context, drawID string) (*models.DrawRecord, error) { return nil, tt.err },
			}
			rec, body := serve(t, newTestRouter(svc), http.MethodGet, "/draws/d1", "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.wantCode != "" && body["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", body["code"], tt.wantCode)
			}
			if body["error"] == nil {
				t.Errorf("no error message in %v", body)
			}
		})
	}
}

func TestMatchUpsHandlerRounds(t *testing.T) {
	var gotRounds []int
	svc := &MockDrawService{
		GetStructureMatchUpsFunc: func(ctx context.Context, drawID, structureID string, rounds []int) ([]*brackets.MatchUpInContext, error) {
			gotRounds = rounds
			return []*brackets.MatchUpInContext{}, nil
		},
	}
	router := newTestRouter(svc)

	rec, _ := serve(t, router, http.MethodGet, "/draws/d1/structures/s1/matchups?rounds=1,2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !reflect.DeepEqual(gotRounds, []int{1, 2}) {
		t.Errorf("rounds = %v", gotRounds)
	}
	rec, _ = serve(t, router, http.MethodGet, "/draws/d1/structures/s1/matchups?rounds=0", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid rounds status = %d", rec.Code)
	}
}

func TestHierarchyHandlerDepth(t *testing.T) {
	var gotDepth int
	svc := &MockDrawService{
		GetHierarchyFunc: func(ctx context.Context, drawID, structureID string, depth int) (*brackets.HierarchyResult, error) {
			gotDepth = depth
			return &brackets.HierarchyResult{MaxRound: 3}, nil
		},
	}
	router := newTestRouter(svc)
	rec, body := serve(t, router, http.MethodGet, "/draws/d1/structures/s1/hierarchy?depth=2", "")
	if rec.Code != http.StatusOK || gotDepth != 2 || body["maxRound"] != float64(3) {
		t.Errorf("status = %d depth = %d body = %v", rec.Code, gotDepth, body)
	}
	rec, _ = serve(t, router, http.MethodGet, "/draws/d1/structures/s1/hierarchy?depth=-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative depth status = %d", rec.Code)
	}
}

func TestSetOutcomeHandler(t *testing.T) {
	svc := &MockDrawService{
		SetMatchUpOutcomeFunc: func(ctx context.Context, drawID, matchUpID string, input services.OutcomeInput) (*brackets.OutcomeResult, error) {
			if input.WinningSide != 2 || input.Score == nil {
				return nil, brackets.ErrInvalidWinningSide
			}
			return &brackets.OutcomeResult{MatchUp: &models.MatchUp{MatchUpID: matchUpID, WinningSide: 2}}, nil
		},
	}
	rec, body := serve(t, newTestRouter(svc), http.MethodPut, "/draws/d1/matchups/m1/outcome",
		`{"winningSide":2,"score":{"scoreStringSide1":"3-6 4-6","scoreStringSide2":"6-3 6-4"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	matchUp, _ := body["matchUp"].(map[string]interface{})
	if matchUp["matchUpId"] != "m1" {
		t.Errorf("matchUp = %v", body["matchUp"])
	}
}

func TestRemoveStructureHandlerForce(t *testing.T) {
	var gotForce bool
	svc := &MockDrawService{
		RemoveStructureFunc: func(ctx context.Context, drawID, structureID string, force bool) ([]string, error) {
			gotForce = force
			return []string{structureID}, nil
		},
	}
	rec, body := serve(t, newTestRouter(svc), http.MethodDelete, "/draws/d1/structures/s2?force=true", "")
	if rec.Code != http.StatusOK || !gotForce {
		t.Fatalf("status = %d force = %v", rec.Code, gotForce)
	}
	if ids, _ := body["removedStructureIds"].([]interface{}); len(ids) != 1 || ids[0] != "s2" {
		t.Errorf("body = %v", body)
	}
}

func TestExportHandlerDisabled(t *testing.T) {
	rec, _ := serve(t, newTestRouter(&MockDrawService{}), http.MethodPost, "/draws/d1/export", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}
