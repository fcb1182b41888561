package models

import "time"

// OrderCreatedEvent is the payload published to Kafka/SNS after an order is
// committed. Delivery is best-effort; consumers must tolerate duplicates.
type OrderCreatedEvent struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	ItemCount   int       `json:"item_count"`
	Timestamp   time.Time `json:"timestamp"`
}
