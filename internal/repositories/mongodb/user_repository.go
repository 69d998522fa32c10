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

// UserRepository is the MongoDB-backed identity record store
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) repositories.UserRepository {
	return &UserRepository{
		collection: db.Collection("Users"),
	}
}

func (r *UserRepository) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"email":       user.Email,
			"displayName": user.DisplayName,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.UID}, update, options.Update().SetUpsert(true))
	return err
}

func (r *UserRepository) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{
		"$set": bson.M{
			"customClaims": claims,
			"updatedAt":    time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
