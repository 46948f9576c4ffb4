package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/repositories/memory"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

// scriptedGenerator returns queued sequences first, then falls back to a seeded generator.
type scriptedGenerator struct {
	mu       sync.Mutex
	queue    []string
	fallback *RandomGenerator
}

func newScriptedGenerator(values ...string) *scriptedGenerator {
	return &scriptedGenerator{queue: values, fallback: NewSeededGenerator(42)}
}

func (g *scriptedGenerator) Generate(length int, alphabet []rune) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) > 0 {
		v := g.queue[0]
		g.queue = g.queue[1:]
		return v
	}
	return g.fallback.Generate(length, alphabet)
}

// flakyStore wraps a MemoryStore and fails selected operations.
type flakyStore struct {
	*memory.MemoryStore
	mu                  sync.Mutex
	failSaveParticipant bool
	failSaveAll         bool
	failAppendHistory   bool
	failSaveConfig      bool
	failClearAll        bool
	failLoad            bool
	afterSaveAll        func()
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: memory.NewMemoryStore()}
}

func (s *flakyStore) set(f func(s *flakyStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s)
}

func (s *flakyStore) fail(flag *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *flag
}

func (s *flakyStore) SaveParticipant(ctx context.Context, p models.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.fail(&s.failSaveParticipant) {
		return errStoreDown
	}
	return s.MemoryStore.SaveParticipant(ctx, p)
}

func (s *flakyStore) SaveAllParticipants(ctx context.Context, ps []models.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.fail(&s.failSaveAll) {
		return errStoreDown
	}
	if err := s.MemoryStore.SaveAllParticipants(ctx, ps); err != nil {
		return err
	}
	s.mu.Lock()
	hook := s.afterSaveAll
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (s *flakyStore) AppendHistory(ctx context.Context, entry models.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.fail(&s.failAppendHistory) {
		return errStoreDown
	}
	return s.MemoryStore.AppendHistory(ctx, entry)
}

func (s *flakyStore) SaveConfig(ctx context.Context, cfg models.DrawConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.fail(&s.failSaveConfig) {
		return errStoreDown
	}
	return s.MemoryStore.SaveConfig(ctx, cfg)
}

func (s *flakyStore) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.fail(&s.failClearAll) {
		return errStoreDown
	}
	return s.MemoryStore.ClearAll(ctx)
}

func (s *flakyStore) LoadParticipants(ctx context.Context) ([]models.Participant, error) {
	if s.fail(&s.failLoad) {
		return nil, errStoreDown
	}
	return s.MemoryStore.LoadParticipants(ctx)
}

// letterSettings uses a two-letter alphabet so tokens are easy to write by hand.
func letterSettings(capacity, winners int) Settings {
	return Settings{
		SequenceLength:       5,
		Alphabet:             "AB",
		DefaultCapacityLimit: capacity,
		DefaultWinnerCount:   winners,
	}
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// newTestEngine builds a loaded engine over store. The first generated value is the initial target.
func newTestEngine(t *testing.T, store *flakyStore, settings Settings, gen Generator) *Engine {
	t.Helper()
	if gen == nil {
		gen = NewSeededGenerator(7)
	}
	e, err := New(store, settings, WithGenerator(gen), WithIDFunc(sequentialIDs()), WithClock(fixedClock()))
	require.NoError(t, err)
	require.NoError(t, e.Load(context.Background()))
	return e
}

func registerAll(t *testing.T, e *Engine, entries ...models.BulkEntry) []models.Participant {
	t.Helper()
	out := make([]models.Participant, 0, len(entries))
	for _, entry := range entries {
		p, err := e.RegisterManual(context.Background(), entry.DisplayName, entry.Token)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}
