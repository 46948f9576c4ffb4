// Package engine implements the draw and eligibility rules of the prize drawing:
// participant registration, the three draw variants, target rotation and the
// history ledger. All state lives in one Engine value and every operation runs
// under its lock, so no two operations ever interleave.
//
// Storage is the source of truth. Each operation validates first, writes to the
// Store, and only then updates memory. Writes are not cancelled by the caller's
// context once started. If a multi-step write fails part way the engine undoes
// what it can and reloads everything from the Store before returning the error.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/repositories"
	"github.com/google/uuid"
)

const (
	reloadTimeout = 10 * time.Second
	writeTimeout  = 10 * time.Second
)

// writeContext detaches store writes from the caller's cancellation. Once an
// operation starts writing it runs to completion or fails on writeTimeout.
func writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
}

// Settings are the fixed parameters of an engine.
type Settings struct {
	SequenceLength       int
	Alphabet             string
	DefaultCapacityLimit int
	DefaultWinnerCount   int
}

// DefaultSettings returns the settings of the original drawing.
func DefaultSettings() Settings {
	return Settings{
		SequenceLength:       DefaultSequenceLength,
		Alphabet:             DefaultAlphabet,
		DefaultCapacityLimit: 10,
		DefaultWinnerCount:   1,
	}
}

// Validate checks that the settings describe a usable drawing.
func (s Settings) Validate() error {
	if s.SequenceLength < 1 {
		return fmt.Errorf("sequence length must be positive, got %d: %w", s.SequenceLength, ErrInvalidValue)
	}
	if s.Alphabet == "" {
		return fmt.Errorf("alphabet must not be empty: %w", ErrInvalidValue)
	}
	return ValidateLimits(s.DefaultCapacityLimit, s.DefaultWinnerCount)
}

// Option customises an Engine.
type Option func(*Engine)

// WithGenerator replaces the random sequence generator.
func WithGenerator(g Generator) Option {
	return func(e *Engine) { e.gen = g }
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDFunc replaces the participant and history id generator.
func WithIDFunc(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// Engine owns the registry, configuration and ledger of one drawing.
type Engine struct {
	mu       sync.Mutex
	store    repositories.Store
	settings Settings
	alphabet []rune
	gen      Generator
	now      func() time.Time
	newID    func() string

	registry *Registry
	config   *ConfigStore
	ledger   *Ledger
}

// New creates an engine backed by store. Call Load before serving any
// operation; it restores persisted state and sets the target value.
func New(store repositories.Store, settings Settings, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("engine: store is required")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("engine settings: %w", err)
	}
	e := &Engine{
		store:    store,
		settings: settings,
		alphabet: []rune(settings.Alphabet),
		gen:      NewRandomGenerator(),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:    func() string { return uuid.New().String() },
		registry: NewRegistry(),
		ledger:   NewLedger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.config = NewConfigStore(models.DrawConfig{
		CapacityLimit: settings.DefaultCapacityLimit,
		WinnerCount:   settings.DefaultWinnerCount,
	}, settings.SequenceLength)
	return e, nil
}

// Settings returns the engine's fixed parameters.
func (e *Engine) Settings() Settings {
	return e.settings
}

func (e *Engine) generate() string {
	return e.gen.Generate(e.settings.SequenceLength, e.alphabet)
}

func (e *Engine) defaultConfig(previousTarget string) models.DrawConfig {
	target := e.generate()
	if previousTarget != "" {
		target = e.rotateTarget(previousTarget)
	}
	return models.DrawConfig{
		CapacityLimit: e.settings.DefaultCapacityLimit,
		WinnerCount:   e.settings.DefaultWinnerCount,
		TargetValue:   target,
		UpdatedAt:     e.now(),
	}
}

// Load replaces in-memory state with what the store holds. A missing
// configuration is created from defaults; a configuration without a target
// gets a freshly generated one. Both are written back.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLocked(ctx)
}

func (e *Engine) loadLocked(ctx context.Context) error {
	cfg, err := e.store.LoadConfig(ctx)
	dirty := false
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		cfg = e.defaultConfig("")
		dirty = true
	case err != nil:
		return fmt.Errorf("%w: load config: %w", ErrPersistence, err)
	}
	if verr := ValidateLimits(cfg.CapacityLimit, cfg.WinnerCount); verr != nil {
		slog.Warn("Stored draw limits are invalid, restoring defaults", "error", verr,
			"capacityLimit", cfg.CapacityLimit, "winnerCount", cfg.WinnerCount)
		cfg.CapacityLimit = e.settings.DefaultCapacityLimit
		cfg.WinnerCount = e.settings.DefaultWinnerCount
		dirty = true
	}
	if cfg.TargetValue == "" {
		cfg.TargetValue = e.generate()
		dirty = true
	}
	if dirty {
		cfg.UpdatedAt = e.now()
		if err := e.store.SaveConfig(ctx, cfg); err != nil {
			return fmt.Errorf("%w: save config: %w", ErrPersistence, err)
		}
	}

	participants, err := e.store.LoadParticipants(ctx)
	if err != nil {
		return fmt.Errorf("%w: load participants: %w", ErrPersistence, err)
	}
	history, err := e.store.LoadHistory(ctx)
	if err != nil {
		return fmt.Errorf("%w: load history: %w", ErrPersistence, err)
	}

	e.config.Set(cfg)
	e.registry.Replace(participants)
	e.ledger.Replace(history)
	return nil
}

// resync reloads state after a failed write that may have been partially
// applied, and returns cause, joined with the reload error if that failed too.
func (e *Engine) resync(ctx context.Context, cause error) error {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
	defer cancel()
	if err := e.loadLocked(rctx); err != nil {
		slog.Error("Engine state may be stale: reload after failed write also failed",
			"cause", cause, "error", err)
		return errors.Join(cause, fmt.Errorf("reload after failed write: %w", err))
	}
	slog.Warn("Engine state reloaded after failed write", "cause", cause)
	return cause
}

// Register adds a participant with a freshly generated token.
func (e *Engine) Register(ctx context.Context, displayName string) (models.Participant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registerLocked(ctx, displayName, "", true)
}

// RegisterManual adds a participant with the given token.
func (e *Engine) RegisterManual(ctx context.Context, displayName, token string) (models.Participant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registerLocked(ctx, displayName, token, false)
}

func (e *Engine) registerLocked(ctx context.Context, displayName, token string, generate bool) (models.Participant, error) {
	cfg := e.config.Get()
	if err := e.registry.CheckAdmission(displayName, cfg.CapacityLimit); err != nil {
		return models.Participant{}, err
	}
	if generate {
		token = e.generate()
	} else if err := e.config.ValidateToken(token); err != nil {
		return models.Participant{}, err
	}

	p := models.Participant{
		ID:           e.newID(),
		DisplayName:  strings.TrimSpace(displayName),
		Token:        token,
		PrizeStatus:  models.PrizeStatusNone,
		Seq:          e.registry.NextSeq(),
		RegisteredAt: e.now(),
	}
	wctx, cancel := writeContext(ctx)
	defer cancel()
	if err := e.store.SaveParticipant(wctx, p); err != nil {
		return models.Participant{}, fmt.Errorf("%w: save participant: %w", ErrPersistence, err)
	}
	e.registry.Add(p)
	return p, nil
}

// BulkRegister registers every entry it can with RegisterManual semantics.
// Entries that fail validation are skipped and reported; the rest are kept.
// A persistence failure stops the batch and is returned with what was added so far.
func (e *Engine) BulkRegister(ctx context.Context, entries []models.BulkEntry) (models.BulkResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := models.BulkResult{
		Skipped:      []models.SkippedEntry{},
		Participants: []models.Participant{},
	}
	for i, entry := range entries {
		p, err := e.registerLocked(ctx, entry.DisplayName, strings.TrimSpace(entry.Token), false)
		if errors.Is(err, ErrPersistence) {
			return result, err
		}
		if err != nil {
			result.Skipped = append(result.Skipped, models.SkippedEntry{
				Index:  i,
				Entry:  entry,
				Reason: err.Error(),
				Code:   Code(err),
			})
			continue
		}
		result.Added++
		result.Participants = append(result.Participants, p)
	}
	return result, nil
}

// Participants returns every participant in registration order.
func (e *Engine) Participants() []models.Participant {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.ListAll()
}

// Eligible returns participants without a prize that are not in excludeIDs.
func (e *Engine) Eligible(excludeIDs []string) []models.Participant {
	exclude := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[id] = struct{}{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.ListEligible(exclude)
}

// Config returns the current draw configuration.
func (e *Engine) Config() models.DrawConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config.Get()
}

// History returns every recorded draw, oldest first.
func (e *Engine) History() []models.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.All()
}

// Snapshot returns the complete observable state.
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() models.Snapshot {
	cfg := e.config.Get()
	snap := models.Snapshot{
		Config:       cfg,
		Participants: e.registry.ListAll(),
		History:      e.ledger.All(),
		LastWinners:  []models.HistoryWinner{},
		TargetValue:  cfg.TargetValue,
	}
	if last, ok := e.ledger.Last(); ok {
		ts := last.Timestamp
		snap.LastDrawTime = &ts
		snap.LastWinners = append(snap.LastWinners, last.Winners...)
	}
	return snap
}

// UpdateConfig sets the capacity limit and winner count together.
func (e *Engine) UpdateConfig(ctx context.Context, capacityLimit, winnerCount int) (models.DrawConfig, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.config.WithLimits(capacityLimit, winnerCount)
	if err != nil {
		return models.DrawConfig{}, err
	}
	next.UpdatedAt = e.now()
	wctx, cancel := writeContext(ctx)
	defer cancel()
	if err := e.store.SaveConfig(wctx, next); err != nil {
		return models.DrawConfig{}, fmt.Errorf("%w: save config: %w", ErrPersistence, err)
	}
	e.config.Set(next)
	return next, nil
}

// SetTargetValue overrides the current target value.
func (e *Engine) SetTargetValue(ctx context.Context, target string) (models.DrawConfig, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.config.WithTarget(target)
	if err != nil {
		return models.DrawConfig{}, err
	}
	next.UpdatedAt = e.now()
	wctx, cancel := writeContext(ctx)
	defer cancel()
	if err := e.store.SaveConfig(wctx, next); err != nil {
		return models.DrawConfig{}, fmt.Errorf("%w: save config: %w", ErrPersistence, err)
	}
	e.config.Set(next)
	return next, nil
}

// Reset clears participants and history, restores the default limits and
// starts a new round with a new target value.
func (e *Engine) Reset(ctx context.Context) (models.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.defaultConfig(e.config.Get().TargetValue)
	wctx, cancel := writeContext(ctx)
	defer cancel()
	if err := e.store.ClearAll(wctx); err != nil {
		return models.Snapshot{}, e.resync(ctx, fmt.Errorf("%w: clear all: %w", ErrPersistence, err))
	}
	if err := e.store.SaveConfig(wctx, cfg); err != nil {
		return models.Snapshot{}, e.resync(ctx, fmt.Errorf("%w: save config: %w", ErrPersistence, err))
	}
	e.registry.ResetAll()
	e.ledger.Clear()
	e.config.Set(cfg)
	return e.snapshotLocked(), nil
}
