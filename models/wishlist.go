package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wishlist holds the set of products a user has saved. One document per user.
type Wishlist struct {
	ID         primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID     string               `json:"userId" bson:"user_id"`
	ProductIDs []primitive.ObjectID `json:"productIds" bson:"product_ids"`
	UpdatedAt  time.Time            `json:"updatedAt" bson:"updated_at"`
}
