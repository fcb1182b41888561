package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chethanac15/eStore/models"
)

type WishlistRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.Wishlist, error)
	Toggle(ctx context.Context, userID string, productID primitive.ObjectID) (*models.Wishlist, error)
}

type MongoWishlistRepository struct {
	collection *mongo.Collection
}

func NewMongoWishlistRepository(db *mongo.Database) *MongoWishlistRepository {
	return &MongoWishlistRepository{
		collection: db.Collection("wishlists"),
	}
}

func (r *MongoWishlistRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// GetByUser returns the user's wishlist, creating an empty one on first use.
func (r *MongoWishlistRepository) GetByUser(ctx context.Context, userID string) (*models.Wishlist, error) {
	update := bson.M{
		"$setOnInsert": bson.M{
			"user_id":     userID,
			"product_ids": []primitive.ObjectID{},
			"updated_at":  time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var wishlist models.Wishlist
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&wishlist)
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// Toggle removes the product when present, otherwise adds it.
func (r *MongoWishlistRepository) Toggle(ctx context.Context, userID string, productID primitive.ObjectID) (*models.Wishlist, error) {
	now := time.Now().UTC()

	// Try removal first: only matches when the product is in the list.
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID, "product_ids": productID},
		bson.M{
			"$pull": bson.M{"product_ids": productID},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return nil, err
	}

	if res.ModifiedCount == 0 {
		// Not present: add it, creating the wishlist if needed.
		opts := options.Update().SetUpsert(true)
		_, err = r.collection.UpdateOne(ctx,
			bson.M{"user_id": userID},
			bson.M{
				"$addToSet": bson.M{"product_ids": productID},
				"$set":      bson.M{"updated_at": now},
			},
			opts,
		)
		if err != nil {
			return nil, err
		}
	}

	var wishlist models.Wishlist
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wishlist); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.Wishlist{UserID: userID, ProductIDs: []primitive.ObjectID{}}, nil
		}
		return nil, err
	}
	return &wishlist, nil
}
