package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chethanac15/eStore/middleware"
	"github.com/chethanac15/eStore/services"
)

// PaymentController serves the simplified intent endpoint: a caller-supplied
// amount, no cart validation. The storefront uses it for flows where the
// total is already known client-side; the order endpoints never trust it.
type PaymentController struct {
	gateway  services.PaymentGateway
	currency string
	mockMode bool
	logger   *zap.Logger
}

func NewPaymentController(gateway services.PaymentGateway, currency string, mockMode bool, logger *zap.Logger) *PaymentController {
	return &PaymentController{
		gateway:  gateway,
		currency: currency,
		mockMode: mockMode,
		logger:   logger,
	}
}

// CreatePaymentIntent opens an authorization for the given amount. When the
// service runs without Stripe credentials the response is flagged mock.
func (pc *PaymentController) CreatePaymentIntent(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Amount int64 `json:"amount" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pi, err := pc.gateway.CreateIntent(c.Request.Context(), req.Amount, pc.currency, map[string]string{
		"user_id": userID,
	})
	if err != nil {
		pc.logger.Error("Failed to create payment intent", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment processor unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clientSecret":    pi.ClientSecret,
		"paymentIntentId": pi.ID,
		"mock":            pc.mockMode,
	})
}
