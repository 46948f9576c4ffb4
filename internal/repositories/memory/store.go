// Package memory provides an in-memory implementation of repositories.Store,
// used by tests and by deployments that run without MongoDB.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/repositories"
)

var _ repositories.Store = (*MemoryStore)(nil)

// MemoryStore keeps participants, history and configuration in maps.
type MemoryStore struct {
	mu           sync.RWMutex
	participants map[string]models.Participant
	history      []models.HistoryEntry
	config       *models.DrawConfig
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		participants: make(map[string]models.Participant),
	}
}

// Participant operations

func (s *MemoryStore) LoadParticipants(ctx context.Context) ([]models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (s *MemoryStore) SaveParticipant(ctx context.Context, participant models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants[participant.ID] = participant
	return nil
}

func (s *MemoryStore) SaveAllParticipants(ctx context.Context, participants []models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = make(map[string]models.Participant, len(participants))
	for _, p := range participants {
		s.participants[p.ID] = p
	}
	return nil
}

// Config operations

func (s *MemoryStore) LoadConfig(ctx context.Context) (models.DrawConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return models.DrawConfig{}, repositories.ErrNotFound
	}
	return *s.config, nil
}

func (s *MemoryStore) SaveConfig(ctx context.Context, config models.DrawConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = &config
	return nil
}

// History operations

func (s *MemoryStore) AppendHistory(ctx context.Context, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Winners = append([]models.HistoryWinner(nil), entry.Winners...)
	s.history = append(s.history, entry)
	return nil
}

func (s *MemoryStore) LoadHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HistoryEntry, len(s.history))
	copy(out, s.history)
	return out, nil
}

func (s *MemoryStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = make(map[string]models.Participant)
	s.history = nil
	s.config = nil
	return nil
}
