package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chethanac15/eStore/apperrors"
	"github.com/chethanac15/eStore/models"
	"github.com/chethanac15/eStore/repository"
)

// Notifier delivers a best-effort admin notification after an order commits.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
}

// EventPublisher fans an order-created event out to messaging infrastructure.
// Best-effort, never on the request's critical path.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order)
}

type CreateIntentRequest struct {
	Items           []models.CartItem      `json:"items" binding:"required"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
}

type CreateIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string                 `json:"paymentIntentId" binding:"required"`
	Items           []models.CartItem      `json:"items" binding:"required"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
}

// CheckoutService drives the two-step checkout: intent creation, then
// confirmation. Confirmation is the exactly-once boundary; everything before
// the order insert is side-effect-free or compensated.
type CheckoutService struct {
	orders   repository.OrderRepository
	products ProductStore
	pricer   *Pricer
	gateway  PaymentGateway
	notifier Notifier       // may be nil
	events   EventPublisher // may be nil
	currency string
	logger   *zap.Logger
}

func NewCheckoutService(
	orders repository.OrderRepository,
	products ProductStore,
	pricer *Pricer,
	gateway PaymentGateway,
	notifier Notifier,
	events EventPublisher,
	currency string,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		products: products,
		pricer:   pricer,
		gateway:  gateway,
		notifier: notifier,
		events:   events,
		currency: currency,
		logger:   logger,
	}
}

// CreateIntent validates and prices the cart, then creates a payment
// authorization for the computed total. No order is created and no stock is
// touched; repeating this step just creates a fresh unused authorization.
func (s *CheckoutService) CreateIntent(ctx context.Context, userID string, req *CreateIntentRequest) (*CreateIntentResponse, *apperrors.Error) {
	orderItems, totalAmount, appErr := s.pricer.ValidateAndPrice(ctx, req.Items)
	if appErr != nil {
		return nil, appErr
	}

	pi, err := s.gateway.CreateIntent(ctx, totalAmount, s.currency, map[string]string{
		"user_id": userID,
	})
	if err != nil {
		s.logger.Error("Failed to create payment intent", zap.Error(err), zap.String("user_id", userID))
		return nil, apperrors.Gateway(err)
	}

	s.logger.Info("Payment intent created",
		zap.String("payment_intent_id", pi.ID),
		zap.String("user_id", userID),
		zap.Int64("amount", totalAmount),
		zap.Int("items", len(orderItems)),
	)

	return &CreateIntentResponse{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
		Amount:          totalAmount,
	}, nil
}

// ConfirmPayment verifies the authorization with the gateway, re-prices the
// cart, decrements stock and records the order. It is safe to call more than
// once for the same payment intent: the first call creates the order, every
// later call returns it unchanged.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, userID string, req *ConfirmPaymentRequest) (*models.Order, *apperrors.Error) {
	if req.PaymentIntentID == "" {
		return nil, apperrors.Validation("Payment intent ID is required")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.ErrEmptyCart
	}

	// Authoritative status check. The client's claim of success is never
	// trusted.
	pi, err := s.gateway.RetrieveIntent(ctx, req.PaymentIntentID)
	if err != nil {
		s.logger.Error("Failed to retrieve payment intent", zap.Error(err), zap.String("payment_intent_id", req.PaymentIntentID))
		return nil, apperrors.Gateway(err)
	}
	if pi.Status != PaymentIntentStatusSucceeded {
		return nil, apperrors.ErrPaymentNotCompleted
	}

	// Idempotency: a retried confirmation returns the existing order.
	existing, err := s.orders.FindByPaymentIntentID(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if existing != nil {
		s.logger.Info("Confirmation retried for already-recorded order",
			zap.String("payment_intent_id", req.PaymentIntentID),
			zap.String("order_id", existing.ID.Hex()),
		)
		return existing, nil
	}

	// Re-price against current catalog state; prices and stock may have
	// changed since intent creation.
	orderItems, totalAmount, appErr := s.pricer.ValidateAndPrice(ctx, req.Items)
	if appErr != nil {
		return nil, appErr
	}

	if pi.Amount != totalAmount {
		// The charge covers a stale total. Record the authoritative one;
		// reconciliation is an operator concern.
		s.logger.Warn("Payment intent amount differs from current total",
			zap.String("payment_intent_id", pi.ID),
			zap.Int64("authorized", pi.Amount),
			zap.Int64("current_total", totalAmount),
		)
	}

	// Commit stock. Each decrement is a single conditional update; on any
	// failure, already-applied decrements are compensated so the whole
	// operation is all-or-nothing.
	applied, appErr := s.decrementStock(ctx, orderItems)
	if appErr != nil {
		s.rollbackStock(ctx, applied)
		return nil, appErr
	}

	now := time.Now().UTC()
	order := &models.Order{
		OrderNumber:     newOrderNumber(now),
		UserID:          userID,
		Items:           orderItems,
		TotalAmount:     totalAmount,
		ShippingAddress: req.ShippingAddress,
		PaymentIntentID: req.PaymentIntentID,
		PaymentStatus:   models.PaymentStatusPaid,
		OrderStatus:     models.OrderStatusProcessing,
		StatusHistory: []models.StatusEntry{{
			Status:  models.OrderStatusProcessing,
			Date:    now,
			Comment: "Order placed successfully",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		// A concurrent confirmation won the unique-index race. Its decrements
		// stand; ours must be undone before returning the winner's order.
		if errors.Is(err, repository.ErrDuplicatePaymentIntent) {
			s.rollbackStock(ctx, orderItems)
			winner, ferr := s.orders.FindByPaymentIntentID(ctx, req.PaymentIntentID)
			if ferr != nil || winner == nil {
				return nil, apperrors.Internal(ferr)
			}
			s.logger.Info("Lost idempotency race, returning winner's order",
				zap.String("payment_intent_id", req.PaymentIntentID),
				zap.String("order_id", winner.ID.Hex()),
			)
			return winner, nil
		}
		s.rollbackStock(ctx, orderItems)
		s.logger.Error("Failed to create order", zap.Error(err), zap.String("payment_intent_id", req.PaymentIntentID))
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID),
		zap.Int64("total_amount", totalAmount),
	)

	// Post-commit side effects are fire-and-forget; their failure never rolls
	// back the order.
	s.notifyAsync(order)

	return order, nil
}

func (s *CheckoutService) decrementStock(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, *apperrors.Error) {
	applied := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if err := s.products.DecrementStockIfAvailable(ctx, item.ProductID, item.Quantity); err != nil {
			switch {
			case errors.Is(err, repository.ErrInsufficientStock):
				return applied, apperrors.InsufficientStock(item.Name)
			case errors.Is(err, repository.ErrProductNotFound):
				return applied, apperrors.ProductNotFound(item.ProductID.Hex())
			default:
				return applied, apperrors.Internal(err)
			}
		}
		applied = append(applied, item)
	}
	return applied, nil
}

func (s *CheckoutService) rollbackStock(ctx context.Context, applied []models.OrderItem) {
	for _, item := range applied {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			// A failed compensation leaks reserved stock; loud log so an
			// operator can reconcile.
			s.logger.Error("Stock rollback failed",
				zap.String("product_id", item.ProductID.Hex()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}

func (s *CheckoutService) notifyAsync(order *models.Order) {
	if s.notifier != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := s.notifier.OrderPlaced(ctx, order); err != nil {
				s.logger.Warn("Order notification failed",
					zap.String("order_id", order.ID.Hex()),
					zap.Error(err),
				)
			}
		}()
	}
	if s.events != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.events.PublishOrderCreated(ctx, order)
		}()
	}
}

func newOrderNumber(now time.Time) string {
	return "ORD-" + now.Format("20060102-150405") + "-" + uuid.New().String()[:8]
}
