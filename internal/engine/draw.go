package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
)

// drawPolicy holds what differs between the draw kinds. Selection itself is shared.
type drawPolicy struct {
	status            models.PrizeStatus
	honoursExclusions bool
	rotatesTarget     bool
}

var drawPolicies = map[models.DrawKind]drawPolicy{
	models.DrawKindPrimary: {
		status:        models.PrizeStatusPrimaryWinner,
		rotatesTarget: true,
	},
	models.DrawKindSupplementary: {
		status: models.PrizeStatusSupplementaryWinner,
	},
	models.DrawKindFiltered: {
		status:            models.PrizeStatusSupplementaryWinner,
		honoursExclusions: true,
	},
}

// selectWinners ranks pool by score against target, highest first, keeping
// pool order among equal scores, and returns the first winnerCount entries.
func selectWinners(pool []models.Participant, target string, winnerCount int) ([]models.ScoredParticipant, error) {
	if len(pool) == 0 {
		return nil, ErrNoEligibleParticipants
	}
	scored := make([]models.ScoredParticipant, len(pool))
	for i, p := range pool {
		scored[i] = models.ScoredParticipant{Participant: p, Score: Score(p.Token, target)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	n := winnerCount
	if n > len(scored) {
		n = len(scored)
	}
	if n < 0 {
		n = 0
	}
	return scored[:n], nil
}

// PerformPrimaryDraw draws from every participant without a prize and ends
// the round by rotating the target value.
func (e *Engine) PerformPrimaryDraw(ctx context.Context) (models.DrawResult, error) {
	return e.Draw(ctx, models.DrawKindPrimary, nil)
}

// PerformSupplementaryDraw draws from every participant without a prize and
// keeps the current target value.
func (e *Engine) PerformSupplementaryDraw(ctx context.Context) (models.DrawResult, error) {
	return e.Draw(ctx, models.DrawKindSupplementary, nil)
}

// PerformFilteredDraw is a supplementary draw that also leaves out the
// participants listed in excludeIDs.
func (e *Engine) PerformFilteredDraw(ctx context.Context, excludeIDs []string) (models.DrawResult, error) {
	return e.Draw(ctx, models.DrawKindFiltered, excludeIDs)
}

// Draw runs a draw of the given kind: winner statuses, a history entry and,
// for primary draws, target rotation. Nothing changes when validation fails
// or when a write fails; the store is rolled back and memory reloaded.
// excludeIDs is only honoured by filtered draws.
func (e *Engine) Draw(ctx context.Context, kind models.DrawKind, excludeIDs []string) (models.DrawResult, error) {
	policy, ok := drawPolicies[kind]
	if !ok {
		return models.DrawResult{}, fmt.Errorf("draw kind %q: %w", kind, ErrInvalidValue)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var exclude map[string]struct{}
	if policy.honoursExclusions {
		exclude = make(map[string]struct{}, len(excludeIDs))
		for _, id := range excludeIDs {
			exclude[id] = struct{}{}
		}
	}

	cfg := e.config.Get()
	pool := e.registry.ListEligible(exclude)
	winners, err := selectWinners(pool, cfg.TargetValue, cfg.WinnerCount)
	if err != nil {
		return models.DrawResult{}, err
	}

	now := e.now()
	won := make(map[string]struct{}, len(winners))
	recorded := make([]models.HistoryWinner, 0, len(winners))
	for i := range winners {
		winners[i].PrizeStatus = policy.status
		won[winners[i].ID] = struct{}{}
		recorded = append(recorded, models.HistoryWinner{
			ParticipantID: winners[i].ID,
			DisplayName:   winners[i].DisplayName,
			Token:         winners[i].Token,
			Score:         winners[i].Score,
		})
	}
	entry := models.HistoryEntry{
		ID:                e.newID(),
		Seq:               e.ledger.NextSeq(),
		Timestamp:         now,
		TargetValueAtDraw: cfg.TargetValue,
		DrawKind:          kind,
		EligiblePoolSize:  len(pool),
		Winners:           recorded,
	}

	next := cfg
	if policy.rotatesTarget {
		next.TargetValue = e.rotateTarget(cfg.TargetValue)
		next.UpdatedAt = now
	}

	updated := e.registry.ListAll()
	for i := range updated {
		if _, ok := won[updated[i].ID]; ok {
			updated[i].PrizeStatus = policy.status
		}
	}

	if err := e.persistDraw(ctx, cfg, next, policy.rotatesTarget, updated, entry); err != nil {
		return models.DrawResult{}, err
	}

	for _, w := range winners {
		if err := e.registry.MarkWinner(w.ID, policy.status); err != nil {
			// Eligibility filtering makes this unreachable; resync rather than keep a half-applied draw.
			return models.DrawResult{}, e.resync(ctx, err)
		}
	}
	e.ledger.Append(entry)
	e.config.Set(next)

	return models.DrawResult{
		Kind:             kind,
		Winners:          winners,
		EligiblePoolSize: len(pool),
		Entry:            entry,
		Config:           next,
	}, nil
}

// persistDraw writes a draw so that winner statuses never outlive a missing
// history entry. The rotated target and the statuses go first and the history
// entry last; if any step fails the earlier ones are restored. Writes are
// detached from ctx cancellation.
func (e *Engine) persistDraw(ctx context.Context, prev, next models.DrawConfig, rotate bool,
	updated []models.Participant, entry models.HistoryEntry) error {
	wctx, cancel := writeContext(ctx)
	defer cancel()

	before := e.registry.ListAll()
	var restoreConfig, restoreParticipants bool
	fail := func(cause error) error {
		var undo []error
		if restoreParticipants {
			if err := e.store.SaveAllParticipants(wctx, before); err != nil {
				undo = append(undo, fmt.Errorf("restore participants: %w", err))
			}
		}
		if restoreConfig {
			if err := e.store.SaveConfig(wctx, prev); err != nil {
				undo = append(undo, fmt.Errorf("restore config: %w", err))
			}
		}
		if len(undo) > 0 {
			slog.Error("Failed to roll back draw writes", "cause", cause, "error", errors.Join(undo...))
			cause = errors.Join(append([]error{cause}, undo...)...)
		}
		return e.resync(ctx, cause)
	}

	if rotate {
		restoreConfig = true
		if err := e.store.SaveConfig(wctx, next); err != nil {
			return fail(fmt.Errorf("%w: save config: %w", ErrPersistence, err))
		}
	}
	// A failed bulk write may still have applied some documents.
	restoreParticipants = true
	if err := e.store.SaveAllParticipants(wctx, updated); err != nil {
		return fail(fmt.Errorf("%w: save participants: %w", ErrPersistence, err))
	}
	if err := e.store.AppendHistory(wctx, entry); err != nil {
		return fail(fmt.Errorf("%w: append history: %w", ErrPersistence, err))
	}
	return nil
}

// rotateTarget generates a new target that differs from previous whenever the
// alphabet makes that possible.
func (e *Engine) rotateTarget(previous string) string {
	const maxAttempts = 32
	next := e.generate()
	for i := 1; i < maxAttempts && next == previous && len(e.alphabet) > 1; i++ {
		next = e.generate()
	}
	return next
}
