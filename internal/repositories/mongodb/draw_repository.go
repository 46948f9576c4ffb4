package mongodb

import (
	"context"
	"fmt"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HistoryRepository implements the repositories.HistoryRepository interface
type HistoryRepository struct {
	collection *mongo.Collection
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *mongo.Database) *HistoryRepository {
	return &HistoryRepository{
		collection: db.Collection("draw_history"),
	}
}

var _ repositories.HistoryRepository = (*HistoryRepository)(nil)

// AppendHistory inserts a completed draw
func (r *HistoryRepository) AppendHistory(ctx context.Context, entry models.HistoryEntry) error {
	if entry.Winners == nil {
		entry.Winners = []models.HistoryWinner{}
	}
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append draw %d: %w", entry.Seq, err)
	}
	return nil
}

// LoadHistory returns every draw sorted by sequence ascending
func (r *HistoryRepository) LoadHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	opts := options.Find().SetSort(bson.M{"seq": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load draw history: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.HistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode draw history: %w", err)
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

func (r *HistoryRepository) clear(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}
