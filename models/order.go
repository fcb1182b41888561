package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses an order can carry. Only "paid" is ever written by the
// checkout flow; the rest exist for later reconciliation.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Fulfillment statuses. The current status of an order is always the status
// of the last entry in its StatusHistory.
const (
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// CartItem is a client-supplied order line. It is never persisted as-is;
// the pricing engine rewrites it into an OrderItem with server-side prices.
type CartItem struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// OrderItem snapshots a product's name and unit price at confirmation time.
// Price is in minor currency units (cents).
type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"product_id"`
	Name      string             `json:"name" bson:"name"`
	Price     int64              `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

type ShippingAddress struct {
	Street  string `json:"street" bson:"street" binding:"required"`
	City    string `json:"city" bson:"city" binding:"required"`
	State   string `json:"state" bson:"state" binding:"required"`
	ZipCode string `json:"zipCode" bson:"zip_code" binding:"required"`
	Country string `json:"country" bson:"country" binding:"required"`
}

type StatusEntry struct {
	Status  string    `json:"status" bson:"status"`
	Date    time.Time `json:"date" bson:"date"`
	Comment string    `json:"comment,omitempty" bson:"comment,omitempty"`
}

type TrackingInfo struct {
	Carrier        string `json:"carrier" bson:"carrier"`
	TrackingNumber string `json:"trackingNumber" bson:"tracking_number"`
	TrackingURL    string `json:"trackingUrl,omitempty" bson:"tracking_url,omitempty"`
}

// Order is the root aggregate of the ledger. TotalAmount equals the sum of
// item price*quantity at creation and is never recomputed afterwards.
// PaymentIntentID carries a unique index: at most one order per payment
// authorization.
type Order struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	OrderNumber     string             `json:"orderNumber" bson:"order_number"`
	UserID          string             `json:"userId" bson:"user_id"`
	Items           []OrderItem        `json:"items" bson:"items"`
	TotalAmount     int64              `json:"totalAmount" bson:"total_amount"`
	ShippingAddress ShippingAddress    `json:"shippingAddress" bson:"shipping_address"`
	PaymentIntentID string             `json:"paymentIntentId" bson:"payment_intent_id"`
	PaymentStatus   string             `json:"paymentStatus" bson:"payment_status"`
	OrderStatus     string             `json:"orderStatus" bson:"order_status"`
	StatusHistory   []StatusEntry      `json:"statusHistory" bson:"status_history"`
	TrackingInfo    *TrackingInfo      `json:"trackingInfo,omitempty" bson:"tracking_info,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updated_at"`
}

// ValidOrderStatus reports whether s is a known fulfillment status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
