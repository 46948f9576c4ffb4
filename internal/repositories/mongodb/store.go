// Package mongodb stores the drawing in three MongoDB collections:
// participants, draw_history and config.
package mongodb

import (
	"context"
	"fmt"

	"github.com/ArowuTest/sequence-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store implements repositories.Store on top of a MongoDB database
type Store struct {
	*ParticipantRepository
	*ConfigRepository
	*HistoryRepository
}

var _ repositories.Store = (*Store)(nil)

// NewStore creates a Store over db
func NewStore(db *mongo.Database) *Store {
	return &Store{
		ParticipantRepository: NewParticipantRepository(db),
		ConfigRepository:      NewConfigRepository(db),
		HistoryRepository:     NewHistoryRepository(db),
	}
}

// EnsureIndexes creates the indexes the store sorts on
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := s.ParticipantRepository.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to index participants: %w", err)
	}
	_, err := s.HistoryRepository.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "seq", Value: 1}},
		Options: options.Index().SetName("seq_1").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to index draw history: %w", err)
	}
	return nil
}

// ClearAll removes every participant, draw and the configuration
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.ParticipantRepository.clear(ctx); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := s.HistoryRepository.clear(ctx); err != nil {
		return fmt.Errorf("failed to clear draw history: %w", err)
	}
	if err := s.ConfigRepository.clear(ctx); err != nil {
		return fmt.Errorf("failed to clear draw config: %w", err)
	}
	return nil
}
