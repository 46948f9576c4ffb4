package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// drawConfigID is the _id of the single configuration document.
const drawConfigID = "draw_config"

type configDocument struct {
	ID                string `bson:"_id"`
	models.DrawConfig `bson:",inline"`
}

// ConfigRepository implements the repositories.ConfigRepository interface
type ConfigRepository struct {
	collection *mongo.Collection
}

// NewConfigRepository creates a new ConfigRepository
func NewConfigRepository(db *mongo.Database) *ConfigRepository {
	return &ConfigRepository{
		collection: db.Collection("config"),
	}
}

var _ repositories.ConfigRepository = (*ConfigRepository)(nil)

// LoadConfig returns the stored configuration or repositories.ErrNotFound
func (r *ConfigRepository) LoadConfig(ctx context.Context) (models.DrawConfig, error) {
	var doc configDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": drawConfigID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DrawConfig{}, repositories.ErrNotFound
	}
	if err != nil {
		return models.DrawConfig{}, fmt.Errorf("failed to load draw config: %w", err)
	}
	return doc.DrawConfig, nil
}

// SaveConfig upserts the configuration document
func (r *ConfigRepository) SaveConfig(ctx context.Context, config models.DrawConfig) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": drawConfigID}, configDocument{ID: drawConfigID, DrawConfig: config}, opts)
	if err != nil {
		return fmt.Errorf("failed to save draw config: %w", err)
	}
	return nil
}

func (r *ConfigRepository) clear(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}
