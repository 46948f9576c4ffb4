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

// ParticipantRepository implements the repositories.ParticipantRepository interface
type ParticipantRepository struct {
	collection *mongo.Collection
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *mongo.Database) *ParticipantRepository {
	return &ParticipantRepository{
		collection: db.Collection("participants"),
	}
}

var _ repositories.ParticipantRepository = (*ParticipantRepository)(nil)

// LoadParticipants returns every participant sorted by registration sequence
func (r *ParticipantRepository) LoadParticipants(ctx context.Context) ([]models.Participant, error) {
	opts := options.Find().SetSort(bson.M{"seq": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	defer cursor.Close(ctx)

	var participants []models.Participant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants: %w", err)
	}
	if participants == nil {
		participants = []models.Participant{}
	}
	return participants, nil
}

// SaveParticipant upserts a single participant by ID
func (r *ParticipantRepository) SaveParticipant(ctx context.Context, participant models.Participant) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": participant.ID}, participant, opts); err != nil {
		return fmt.Errorf("failed to save participant %s: %w", participant.ID, err)
	}
	return nil
}

// SaveAllParticipants upserts every participant and deletes any stored
// participant missing from the list.
func (r *ParticipantRepository) SaveAllParticipants(ctx context.Context, participants []models.Participant) error {
	ids := make([]string, 0, len(participants))
	if len(participants) > 0 {
		writes := make([]mongo.WriteModel, 0, len(participants))
		for _, p := range participants {
			ids = append(ids, p.ID)
			writes = append(writes, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": p.ID}).
				SetReplacement(p).
				SetUpsert(true))
		}
		if _, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
			return fmt.Errorf("failed to save participants: %w", err)
		}
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return fmt.Errorf("failed to prune participants: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) clear(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}

// EnsureIndexes creates the registration order index.
func (r *ParticipantRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "seq", Value: 1}},
		Options: options.Index().SetName("seq_1"),
	})
	return err
}
