package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/chethanac15/eStore/apperrors"
	"github.com/chethanac15/eStore/middleware"
	"github.com/chethanac15/eStore/models"
	"github.com/chethanac15/eStore/repository"
)

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

type UpdateOrderRequest struct {
	Status   string               `json:"status" binding:"required"`
	Comment  string               `json:"comment"`
	Tracking *models.TrackingInfo `json:"tracking"`
}

// OrderService covers the read paths and operator status updates.
type OrderService struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, logger: logger}
}

// GetOrder returns an order if the requester owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, requesterID, role, orderID string) (*models.Order, *apperrors.Error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperrors.ErrOrderNotFound
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Internal(err)
	}

	if order.UserID != requesterID && role != middleware.AdminRole {
		return nil, apperrors.ErrForbidden
	}
	return order, nil
}

// ListUserOrders retrieves paginated orders for a specific user.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string, page, limit int) (*OrderListResponse, *apperrors.Error) {
	orders, total, err := s.orders.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return listResponse(orders, total, page, limit), nil
}

// ListOrders retrieves paginated orders: all of them for admins, the
// requester's own otherwise. The ownership filter is part of the query, not a
// post-filter, so counts never leak.
func (s *OrderService) ListOrders(ctx context.Context, requesterID, role string, page, limit int) (*OrderListResponse, *apperrors.Error) {
	var (
		orders []models.Order
		total  int64
		err    error
	)
	if role == middleware.AdminRole {
		orders, total, err = s.orders.FindAll(ctx, page, limit)
	} else {
		orders, total, err = s.orders.FindByUserID(ctx, requesterID, page, limit)
	}
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return listResponse(orders, total, page, limit), nil
}

// UpdateStatus appends a fulfillment status entry and optionally attaches
// tracking info. Admin-only; the route enforces the role.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, req *UpdateOrderRequest) (*models.Order, *apperrors.Error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperrors.ErrOrderNotFound
	}
	if !models.ValidOrderStatus(req.Status) {
		return nil, apperrors.Validation("Invalid order status: " + req.Status)
	}

	order, err := s.orders.AppendStatus(ctx, id, req.Status, req.Comment)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Internal(err)
	}

	if req.Tracking != nil {
		order, err = s.orders.AttachTracking(ctx, id, req.Tracking)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("status", req.Status),
	)
	return order, nil
}

func listResponse(orders []models.Order, total int64, page, limit int) *OrderListResponse {
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
