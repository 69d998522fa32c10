package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/internal/repositories"
)

// LogRepository is the MongoDB-backed audit log. The collection is
// append-only: there are no update or delete operations.
type LogRepository struct {
	collection *mongo.Collection
}

// NewLogRepository creates a new LogRepository
func NewLogRepository(db *mongo.Database) repositories.LogRepository {
	return &LogRepository{
		collection: db.Collection("Logs"),
	}
}

func (r *LogRepository) Append(ctx context.Context, entry *models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	// createdAt is assigned at write time, server-side relative to every
	// caller of the HTTP API.
	entry.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *LogRepository) FindRecent(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.LogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.LogEntry{}
	}
	return entries, nil
}
