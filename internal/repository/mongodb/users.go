package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// UserStore persists users.
type UserStore struct {
	coll *mongo.Collection
}

// Insert stores a new user; a duplicate firebase UID is a conflict.
func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: user %s already exists", models.ErrConflict, user.FirebaseUID)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByUID loads a user by external auth UID.
func (s *UserStore) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"firebaseUid": uid}, "user")
}

// Replace overwrites the stored user.
func (s *UserStore) Replace(ctx context.Context, user *models.User) error {
	return replaceByID(ctx, s.coll, bson.M{"_id": user.ID}, user, "user")
}
