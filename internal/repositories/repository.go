package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("not found")

// ParticipantRepository defines the interface for participant data operations
type ParticipantRepository interface {
	// LoadParticipants returns every participant in registration order
	LoadParticipants(ctx context.Context) ([]models.Participant, error)
	SaveParticipant(ctx context.Context, participant models.Participant) error
	// SaveAllParticipants replaces the stored participant set with participants
	SaveAllParticipants(ctx context.Context, participants []models.Participant) error
}

// ConfigRepository defines the interface for the singleton draw configuration
type ConfigRepository interface {
	// LoadConfig returns ErrNotFound when no configuration was ever saved
	LoadConfig(ctx context.Context) (models.DrawConfig, error)
	SaveConfig(ctx context.Context, config models.DrawConfig) error
}

// HistoryRepository defines the interface for the draw history ledger
type HistoryRepository interface {
	AppendHistory(ctx context.Context, entry models.HistoryEntry) error
	// LoadHistory returns every entry, oldest first
	LoadHistory(ctx context.Context) ([]models.HistoryEntry, error)
}

// Store is the full persistence boundary of the draw engine
type Store interface {
	ParticipantRepository
	ConfigRepository
	HistoryRepository
	// ClearAll removes participants, history and configuration
	ClearAll(ctx context.Context) error
}
