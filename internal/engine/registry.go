package engine

import (
	"fmt"
	"strings"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"golang.org/x/text/cases"
)

// Registry owns the participant set in registration order. It is not safe for
// concurrent use; the Engine serialises access to it.
type Registry struct {
	participants []models.Participant
	byID         map[string]int
	byName       map[string]string // folded display name -> id
	nextSeq      int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.ResetAll()
	return r
}

func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// CheckAdmission validates that a participant named displayName may join while
// capacityLimit participants are allowed.
func (r *Registry) CheckAdmission(displayName string, capacityLimit int) error {
	if strings.TrimSpace(displayName) == "" {
		return fmt.Errorf("display name is required: %w", ErrInvalidValue)
	}
	if len(r.participants) >= capacityLimit {
		return fmt.Errorf("%d of %d places taken: %w", len(r.participants), capacityLimit, ErrCapacityExceeded)
	}
	if _, taken := r.byName[foldName(displayName)]; taken {
		return fmt.Errorf("%q: %w", strings.TrimSpace(displayName), ErrDuplicateName)
	}
	return nil
}

// NextSeq returns the registration sequence number the next participant gets.
func (r *Registry) NextSeq() int64 {
	return r.nextSeq
}

// Add stores p. Callers must have passed CheckAdmission.
func (r *Registry) Add(p models.Participant) {
	r.byID[p.ID] = len(r.participants)
	r.byName[foldName(p.DisplayName)] = p.ID
	r.participants = append(r.participants, p)
	if p.Seq >= r.nextSeq {
		r.nextSeq = p.Seq + 1
	}
}

// ListAll returns a copy of every participant in registration order.
func (r *Registry) ListAll() []models.Participant {
	out := make([]models.Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// ListEligible returns participants without a prize whose id is not excluded,
// in registration order.
func (r *Registry) ListEligible(excludeIDs map[string]struct{}) []models.Participant {
	out := make([]models.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		if !p.IsEligible() {
			continue
		}
		if _, excluded := excludeIDs[p.ID]; excluded {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MarkWinner sets the prize status of a participant. Setting the status it
// already has is a no-op; replacing a different prize status is refused.
func (r *Registry) MarkWinner(id string, status models.PrizeStatus) error {
	i, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrParticipantNotFound)
	}
	current := r.participants[i].PrizeStatus
	if current == status {
		return nil
	}
	if !r.participants[i].IsEligible() {
		return fmt.Errorf("%s holds %s, cannot become %s: %w", id, current, status, ErrStatusConflict)
	}
	r.participants[i].PrizeStatus = status
	return nil
}

// ResetAll removes every participant.
func (r *Registry) ResetAll() {
	r.participants = nil
	r.byID = make(map[string]int)
	r.byName = make(map[string]string)
	r.nextSeq = 1
}

// Replace swaps the whole participant set, used when reloading from storage.
// Participants are expected in registration order.
func (r *Registry) Replace(participants []models.Participant) {
	r.ResetAll()
	for _, p := range participants {
		if p.PrizeStatus == "" {
			p.PrizeStatus = models.PrizeStatusNone
		}
		r.Add(p)
	}
}
