package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chethanac15/eStore/apperrors"
	"github.com/chethanac15/eStore/middleware"
	"github.com/chethanac15/eStore/services"
)

type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
}

func NewOrderController(checkout *services.CheckoutService, orders *services.OrderService) *OrderController {
	return &OrderController{
		checkout: checkout,
		orders:   orders,
	}
}

// CreatePaymentIntent prices the cart and opens a payment authorization.
func (oc *OrderController) CreatePaymentIntent(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.CreateIntentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	resp, appErr := oc.checkout.CreateIntent(ctx.Request.Context(), userID, &req)
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

// ConfirmPayment verifies the authorization and records the order. Safe to
// retry; a repeated call returns the already-created order.
func (oc *OrderController) ConfirmPayment(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.ConfirmPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, appErr := oc.checkout.ConfirmPayment(ctx.Request.Context(), userID, &req)
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": order})
}

// GetMyOrders returns paginated orders for the authenticated user.
func (oc *OrderController) GetMyOrders(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(ctx)

	result, appErr := oc.orders.ListUserOrders(ctx.Request.Context(), userID, page, limit)
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetOrderByID returns a single order for its owner or an admin.
func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, appErr := oc.orders.GetOrder(ctx.Request.Context(), userID, middleware.GetRole(ctx), ctx.Param("id"))
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// ListOrders returns all orders for admins, the caller's own otherwise.
func (oc *OrderController) ListOrders(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(ctx)

	result, appErr := oc.orders.ListOrders(ctx.Request.Context(), userID, middleware.GetRole(ctx), page, limit)
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// UpdateOrder appends a fulfillment status entry and optionally attaches
// tracking info. Admin-only (enforced by route middleware).
func (oc *OrderController) UpdateOrder(ctx *gin.Context) {
	var req services.UpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, appErr := oc.orders.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), &req)
	if appErr != nil {
		apperrors.Respond(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const MaxLimit = 100
	const DefaultPage = 1
	const DefaultLimit = 10

	page := ctx.DefaultQuery("page", "1")
	limit := ctx.DefaultQuery("limit", "10")

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(page); err == nil && p > 0 {
		pageInt = p
	}

	if l, err := strconv.Atoi(limit); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}

	return pageInt, limitInt
}
