package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/Dosada05/tournament-draws/cache"
	"github.com/Dosada05/tournament-draws/hub"
	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/repositories"
	"github.com/Dosada05/tournament-draws/storage"
)

// MockDrawRepository keeps draws as encoded documents, so every read
// returns a fresh copy the way the database does. Func fields override
// single methods.
type MockDrawRepository struct {
	mu       sync.Mutex
	docs     map[string][]byte
	versions map[string]int
	gets     int

	UpdateFunc func(ctx context.Context, rec *models.DrawRecord) error
}

func NewMockDrawRepository() *MockDrawRepository {
	return &MockDrawRepository{docs: map[string][]byte{}, versions: map[string]int{}}
}

func (m *MockDrawRepository) Create(ctx context.Context, exec repositories.SQLExecutor, rec *models.DrawRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[rec.DrawID]; ok {
		return repositories.ErrDrawConflict
	}
	rec.Version = 1
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	return m.put(rec)
}

func (m *MockDrawRepository) put(rec *models.DrawRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	m.docs[rec.DrawID] = doc
	m.versions[rec.DrawID] = rec.Version
	return nil
}

func (m *MockDrawRepository) GetByID(ctx context.Context, drawID string) (*models.DrawRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	doc, ok := m.docs[drawID]
	if !ok {
		return nil, repositories.ErrDrawNotFound
	}
	rec := &models.DrawRecord{}
	if err := json.Unmarshal(doc, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (m *MockDrawRepository) GetByIDs(ctx context.Context, drawIDs []string) ([]*models.DrawRecord, error) {
	var out []*models.DrawRecord
	for _, id := range drawIDs {
		rec, err := m.GetByID(ctx, id)
		if err == nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MockDrawRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.DrawSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.DrawSummary
	for _, doc := range m.docs {
		rec := &models.DrawRecord{}
		if err := json.Unmarshal(doc, rec); err != nil {
			return nil, err
		}
		if rec.EventID == eventID {
			out = append(out, &models.DrawSummary{DrawID: rec.DrawID, EventID: rec.EventID, DrawType: rec.DrawType, Version: rec.Version})
		}
	}
	return out, nil
}

func (m *MockDrawRepository) Update(ctx context.Context, exec repositories.SQLExecutor, rec *models.DrawRecord) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.versions[rec.DrawID]
	if !ok {
		return repositories.ErrDrawNotFound
	}
	if current != rec.Version {
		return repositories.ErrDrawVersionConflict
	}
	rec.Version++
	rec.UpdatedAt = time.Now()
	return m.put(rec)
}

func (m *MockDrawRepository) Delete(ctx context.Context, exec repositories.SQLExecutor, drawID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[drawID]; !ok {
		return repositories.ErrDrawNotFound
	}
	delete(m.docs, drawID)
	delete(m.versions, drawID)
	return nil
}

func (m *MockDrawRepository) Version(drawID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[drawID]
}

func (m *MockDrawRepository) Gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

type MockParticipantRepository struct {
	FindByIDsFunc func(ctx context.Context, ids []string) (map[string]*models.Participant, error)
}

func (m *MockParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	return nil
}

func (m *MockParticipantRepository) FindByID(ctx context.Context, id string) (*models.Participant, error) {
	found, err := m.FindByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if p, ok := found[id]; ok {
		return p, nil
	}
	return nil, repositories.ErrParticipantNotFound
}

func (m *MockParticipantRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*models.Participant, error) {
	if m.FindByIDsFunc != nil {
		return m.FindByIDsFunc(ctx, ids)
	}
	found := make(map[string]*models.Participant, len(ids))
	for _, id := range ids {
		found[id] = &models.Participant{ParticipantID: id, ParticipantName: "Player " + id}
	}
	return found, nil
}

func (m *MockParticipantRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Participant, error) {
	return nil, nil
}

// MockCache is an in-memory DrawCache.
type MockCache struct {
	mu          sync.Mutex
	records     map[string][]byte
	invalidated []string
}

func NewMockCache() *MockCache {
	return &MockCache{records: map[string][]byte{}}
}

func (c *MockCache) Get(ctx context.Context, drawID string) (*models.DrawRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.records[drawID]
	if !ok {
		return nil, cache.ErrMiss
	}
	rec := &models.DrawRecord{}
	return rec, json.Unmarshal(doc, rec)
}

func (c *MockCache) Set(ctx context.Context, rec *models.DrawRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[rec.DrawID] = doc
	return nil
}

func (c *MockCache) Invalidate(ctx context.Context, drawID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, drawID)
	c.invalidated = append(c.invalidated, drawID)
	return nil
}

type MockNotifier struct {
	mu       sync.Mutex
	messages []hub.Message
}

func (n *MockNotifier) BroadcastToRoom(room string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if msg, ok := message.(hub.Message); ok {
		n.messages = append(n.messages, msg)
	}
}

func (n *MockNotifier) Types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.messages))
	for _, m := range n.messages {
		out = append(out, m.Type)
	}
	return out
}

type MockStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	PutFunc func(key string) error
}

func (s *MockStore) Put(ctx context.Context, key string, contentType string, body io.Reader) (*storage.Object, error) {
	if s.PutFunc != nil {
		if err := s.PutFunc(key); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = buf.Bytes()
	return &storage.Object{Key: key, Location: s.URL(key)}, nil
}

func (s *MockStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MockStore) URL(key string) string {
	return "https://exports.example.com/" + key
}
