package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product lives in the catalog collection. Price is in minor currency units
// (cents); the checkout flow never does floating-point money arithmetic.
// Stock is mutated only through the conditional decrement in the repository.
type Product struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Price       int64              `json:"price" bson:"price"`
	Stock       int                `json:"stock" bson:"stock"`
	Category    string             `json:"category,omitempty" bson:"category,omitempty"`
	ImageURL    string             `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	IsActive    bool               `json:"isActive" bson:"is_active"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}
