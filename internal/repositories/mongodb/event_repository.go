package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/internal/repositories"
)

// EventRepository is the MongoDB-backed event store
type EventRepository struct {
	collection *mongo.Collection
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *mongo.Database) repositories.EventRepository {
	return &EventRepository{
		collection: db.Collection("Events"),
	}
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *EventRepository) Raw(ctx context.Context, id string) (map[string]interface{}, error) {
	var doc bson.M
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}(doc), nil
}

func (r *EventRepository) Set(ctx context.Context, event *models.Event) error {
	if event.Photos == nil {
		event.Photos = []models.Photo{}
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": event.ID}, event, options.Replace().SetUpsert(true))
	return err
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]*models.Event, error) {
	opts := options.Find().SetSort(bson.M{"date": -1})
	return r.find(ctx, bson.M{}, opts)
}

func (r *EventRepository) FindUpcoming(ctx context.Context, from time.Time, limit int) ([]*models.Event, error) {
	opts := options.Find().SetSort(bson.M{"date": 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	filter := bson.M{
		"date":  bson.M{"$gte": from},
		"draft": bson.M{"$ne": true},
	}
	return r.find(ctx, filter, opts)
}

func (r *EventRepository) FindPast(ctx context.Context, before time.Time, limit int) ([]*models.Event, error) {
	opts := options.Find().SetSort(bson.M{"date": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	filter := bson.M{
		"date":  bson.M{"$lt": before},
		"draft": bson.M{"$ne": true},
	}
	return r.find(ctx, filter, opts)
}

func (r *EventRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Event, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.Event{}
	}
	return events, nil
}

// UpdatePhotos rewrites the photo sequence inside a single transaction. The
// driver retries transient conflicts; exhaustion surfaces as an error and
// leaves the stored sequence as it was.
func (r *EventRepository) UpdatePhotos(ctx context.Context, id string, fn func(photos []models.Photo) ([]models.Photo, error)) error {
	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var doc struct {
			Photos []models.Photo `bson:"photos"`
		}
		err := r.collection.FindOne(sc, bson.M{"_id": id}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		photos, err := fn(doc.Photos)
		if err != nil {
			return nil, err
		}
		if photos == nil {
			photos = []models.Photo{}
		}

		_, err = r.collection.UpdateOne(sc, bson.M{"_id": id}, bson.M{"$set": bson.M{"photos": photos}})
		return nil, err
	})
	return err
}

func (r *EventRepository) RemovePhoto(ctx context.Context, id string, photo models.Photo) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"photos": bson.M{"key": photo.Key}},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
