package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ArowuTest/sequence-draw-backend/internal/engine"
	"github.com/ArowuTest/sequence-draw-backend/internal/metrics"
	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/utils"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// ImportResult is the outcome of a CSV import
type ImportResult struct {
	models.BulkResult
	RowErrors []utils.RowError `json:"rowErrors"`
}

// DrawServiceImpl gates engine operations on privileges, then publishes
// the outcome and records metrics
type DrawServiceImpl struct {
	engine   *engine.Engine
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewDrawService creates a new DrawServiceImpl. notifier and m may be nil.
func NewDrawService(e *engine.Engine, notifier Notifier, m *metrics.Metrics) *DrawServiceImpl {
	s := &DrawServiceImpl{
		engine:   e,
		notifier: notifier,
		metrics:  m,
	}
	s.metrics.SetParticipants(len(e.Participants()))
	return s
}

func (s *DrawServiceImpl) publish(event string, data interface{}) {
	snap := s.engine.Snapshot()
	s.metrics.SetParticipants(len(snap.Participants))
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(event, Event{Data: data, Snapshot: snap})
}

func requirePrivilege(privileged bool, operation string) error {
	if !privileged {
		slog.Warn("Rejected unprivileged operator operation", "operation", operation)
		return fmt.Errorf("%s: %w", operation, ErrNotPrivileged)
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "OK"
	}
	return engine.Code(err)
}

// Register adds a participant with a generated token
func (s *DrawServiceImpl) Register(ctx context.Context, displayName string) (models.Participant, error) {
	p, err := s.engine.Register(ctx, displayName)
	s.metrics.ObserveRegistration(outcome(err))
	if err != nil {
		slog.Warn("Registration rejected", "displayName", displayName, "code", engine.Code(err), "error", err)
		return models.Participant{}, err
	}
	slog.Info("Participant registered", "participantId", p.ID, "displayName", p.DisplayName, "seq", p.Seq)
	s.publish(EventParticipantAdded, p)
	return p, nil
}

// RegisterManual adds a participant with an explicit token
func (s *DrawServiceImpl) RegisterManual(ctx context.Context, privileged bool, displayName, token string) (models.Participant, error) {
	if err := requirePrivilege(privileged, "manual registration"); err != nil {
		return models.Participant{}, err
	}
	p, err := s.engine.RegisterManual(ctx, displayName, token)
	s.metrics.ObserveRegistration(outcome(err))
	if err != nil {
		slog.Warn("Manual registration rejected", "displayName", displayName, "code", engine.Code(err), "error", err)
		return models.Participant{}, err
	}
	slog.Info("Participant registered manually", "participantId", p.ID, "displayName", p.DisplayName, "seq", p.Seq)
	s.publish(EventParticipantAdded, p)
	return p, nil
}

// BulkRegister registers entries, skipping and reporting invalid ones
func (s *DrawServiceImpl) BulkRegister(ctx context.Context, privileged bool, entries []models.BulkEntry) (models.BulkResult, error) {
	if err := requirePrivilege(privileged, "bulk registration"); err != nil {
		return models.BulkResult{}, err
	}
	return s.bulkRegister(ctx, entries)
}

func (s *DrawServiceImpl) bulkRegister(ctx context.Context, entries []models.BulkEntry) (models.BulkResult, error) {
	result, err := s.engine.BulkRegister(ctx, entries)
	for i := 0; i < result.Added; i++ {
		s.metrics.ObserveRegistration("OK")
	}
	for _, skipped := range result.Skipped {
		s.metrics.ObserveRegistration(skipped.Code)
	}
	if err != nil {
		s.metrics.ObserveRegistration(engine.Code(err))
		slog.Error("Bulk registration stopped by persistence failure", "added", result.Added, "error", err)
	} else {
		slog.Info("Bulk registration finished", "entries", len(entries), "added", result.Added, "skipped", len(result.Skipped))
	}
	if result.Added > 0 {
		s.publish(EventParticipantsImported, result)
	}
	return result, err
}

// ImportCSV parses a participant CSV and bulk registers its rows
func (s *DrawServiceImpl) ImportCSV(ctx context.Context, privileged bool, r io.Reader) (ImportResult, error) {
	if err := requirePrivilege(privileged, "CSV import"); err != nil {
		return ImportResult{}, err
	}
	parsed, err := utils.ParseParticipantsCSV(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", engine.ErrInvalidValue, err)
	}
	result, err := s.bulkRegister(ctx, parsed.Entries)
	return ImportResult{BulkResult: result, RowErrors: parsed.RowErrors}, err
}

// Draw runs a draw of the given kind
func (s *DrawServiceImpl) Draw(ctx context.Context, privileged bool, kind models.DrawKind, excludeIDs []string) (models.DrawResult, error) {
	if err := requirePrivilege(privileged, "draw"); err != nil {
		return models.DrawResult{}, err
	}
	result, err := s.engine.Draw(ctx, kind, excludeIDs)
	s.metrics.ObserveDraw(string(kind), outcome(err), len(result.Winners))
	if err != nil {
		slog.Warn("Draw failed", "kind", kind, "code", engine.Code(err), "error", err)
		return models.DrawResult{}, err
	}

	winnerIDs := make([]string, len(result.Winners))
	for i, w := range result.Winners {
		winnerIDs[i] = w.ID
	}
	slog.Info("Draw executed", "kind", kind, "drawSeq", result.Entry.Seq, "target", result.Entry.TargetValueAtDraw,
		"poolSize", result.EligiblePoolSize, "winners", winnerIDs, "excluded", len(excludeIDs))
	s.publish(EventDrawResult, result)
	return result, nil
}

// UpdateConfig sets capacity limit and winner count together
func (s *DrawServiceImpl) UpdateConfig(ctx context.Context, privileged bool, capacityLimit, winnerCount int) (models.DrawConfig, error) {
	if err := requirePrivilege(privileged, "config update"); err != nil {
		return models.DrawConfig{}, err
	}
	cfg, err := s.engine.UpdateConfig(ctx, capacityLimit, winnerCount)
	if err != nil {
		slog.Warn("Config update rejected", "capacityLimit", capacityLimit, "winnerCount", winnerCount, "error", err)
		return models.DrawConfig{}, err
	}
	slog.Info("Config updated", "capacityLimit", cfg.CapacityLimit, "winnerCount", cfg.WinnerCount)
	s.publish(EventConfigUpdated, cfg)
	return cfg, nil
}

// SetTargetValue overrides the target value
func (s *DrawServiceImpl) SetTargetValue(ctx context.Context, privileged bool, target string) (models.DrawConfig, error) {
	if err := requirePrivilege(privileged, "target override"); err != nil {
		return models.DrawConfig{}, err
	}
	cfg, err := s.engine.SetTargetValue(ctx, target)
	if err != nil {
		slog.Warn("Target override rejected", "error", err)
		return models.DrawConfig{}, err
	}
	slog.Info("Target value overridden", "target", cfg.TargetValue)
	s.publish(EventConfigUpdated, cfg)
	return cfg, nil
}

// Reset clears participants and history and starts a new round
func (s *DrawServiceImpl) Reset(ctx context.Context, privileged bool) (models.Snapshot, error) {
	if err := requirePrivilege(privileged, "reset"); err != nil {
		return models.Snapshot{}, err
	}
	snap, err := s.engine.Reset(ctx)
	if err != nil {
		slog.Error("Reset failed", "error", err)
		return models.Snapshot{}, err
	}
	slog.Info("System reset", "capacityLimit", snap.Config.CapacityLimit, "winnerCount", snap.Config.WinnerCount)
	s.publish(EventSystemReset, snap.Config)
	return snap, nil
}

// Participants returns every participant in registration order
func (s *DrawServiceImpl) Participants() []models.Participant {
	return s.engine.Participants()
}

// Eligible returns participants who can still be drawn, minus excludeIDs
func (s *DrawServiceImpl) Eligible(excludeIDs []string) []models.Participant {
	return s.engine.Eligible(excludeIDs)
}

// Config returns the current configuration
func (s *DrawServiceImpl) Config() models.DrawConfig {
	return s.engine.Config()
}

// History returns every draw, oldest first
func (s *DrawServiceImpl) History() []models.HistoryEntry {
	return s.engine.History()
}

// Snapshot returns the complete observable state
func (s *DrawServiceImpl) Snapshot() models.Snapshot {
	return s.engine.Snapshot()
}
