package services

import (
	"context"
	"errors"
	"io"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
)

// ErrNotPrivileged is returned when an operator-only operation is called
// without operator privileges
var ErrNotPrivileged = errors.New("operation requires operator privileges")

// ErrInvalidCredentials is returned by Login for an unknown user or wrong password
var ErrInvalidCredentials = errors.New("invalid username or password")

// Event names published to the Notifier
const (
	EventParticipantAdded     = "participantAdded"
	EventParticipantsImported = "participantsImported"
	EventDrawResult           = "drawResult"
	EventConfigUpdated        = "configUpdated"
	EventSystemReset          = "systemReset"
)

// Notifier receives an event after every successful mutation
type Notifier interface {
	Publish(event string, payload interface{})
}

// Event is the payload published with every event: what changed plus the
// resulting state
type Event struct {
	Data     interface{}     `json:"data"`
	Snapshot models.Snapshot `json:"snapshot"`
}

// DrawService defines the operations of the prize drawing. Operator-only
// operations take privileged, which the transport derives from the caller's
// credentials.
type DrawService interface {
	// Register adds a participant with a generated token. Open to everyone.
	Register(ctx context.Context, displayName string) (models.Participant, error)

	// RegisterManual adds a participant with an explicit token
	RegisterManual(ctx context.Context, privileged bool, displayName, token string) (models.Participant, error)

	// BulkRegister registers entries, skipping and reporting invalid ones
	BulkRegister(ctx context.Context, privileged bool, entries []models.BulkEntry) (models.BulkResult, error)

	// ImportCSV parses a participant CSV and bulk registers its rows
	ImportCSV(ctx context.Context, privileged bool, r io.Reader) (ImportResult, error)

	// Draw runs a primary, supplementary or filtered draw
	Draw(ctx context.Context, privileged bool, kind models.DrawKind, excludeIDs []string) (models.DrawResult, error)

	// UpdateConfig sets capacity limit and winner count together
	UpdateConfig(ctx context.Context, privileged bool, capacityLimit, winnerCount int) (models.DrawConfig, error)

	// SetTargetValue overrides the target value
	SetTargetValue(ctx context.Context, privileged bool, target string) (models.DrawConfig, error)

	// Reset clears participants and history and starts a new round
	Reset(ctx context.Context, privileged bool) (models.Snapshot, error)

	Participants() []models.Participant
	Eligible(excludeIDs []string) []models.Participant
	Config() models.DrawConfig
	History() []models.HistoryEntry
	Snapshot() models.Snapshot
}

// AuthService defines the operator authentication operations
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
}
