package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chethanac15/eStore/apperrors"
	"github.com/chethanac15/eStore/models"
	"github.com/chethanac15/eStore/repository"
)

// ProductStore is the slice of the catalog the checkout flow needs.
type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	DecrementStockIfAvailable(ctx context.Context, id primitive.ObjectID, quantity int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

// Pricer validates a requested cart against the live catalog and computes the
// authoritative total. All arithmetic is in int64 minor currency units.
type Pricer struct {
	products ProductStore
}

func NewPricer(products ProductStore) *Pricer {
	return &Pricer{products: products}
}

// ValidateAndPrice checks each line in input order and rewrites it into an
// OrderItem snapshotting the product's current name and unit price. It stops
// at the first failing line. The stock check here is an optimistic pre-check;
// the conditional decrement at commit time is the authority.
func (p *Pricer) ValidateAndPrice(ctx context.Context, items []models.CartItem) ([]models.OrderItem, int64, *apperrors.Error) {
	if len(items) == 0 {
		return nil, 0, apperrors.ErrEmptyCart
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	var totalAmount int64

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, 0, apperrors.Validation("Quantity must be at least 1")
		}

		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, 0, apperrors.Validation("Invalid product ID: " + item.ProductID)
		}

		product, err := p.products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, 0, apperrors.ProductNotFound(item.ProductID)
			}
			return nil, 0, apperrors.Internal(err)
		}

		if !product.IsActive {
			return nil, 0, apperrors.ProductInactive(product.Name)
		}
		if product.Stock < item.Quantity {
			return nil, 0, apperrors.InsufficientStock(product.Name)
		}

		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
		totalAmount += product.Price * int64(item.Quantity)
	}

	return orderItems, totalAmount, nil
}
