package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/chethanac15/eStore/controllers"
	"github.com/chethanac15/eStore/middleware"
)

// Register wires all application routes.
func Register(
	r *gin.Engine,
	auth gin.HandlerFunc,
	orderController *controllers.OrderController,
	paymentController *controllers.PaymentController,
	productController *controllers.ProductController,
	reviewController *controllers.ReviewController,
	wishlistController *controllers.WishlistController,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// Public catalog reads.
	products := r.Group("/products")
	products.GET("", productController.GetProducts)
	products.GET("/:id", productController.GetProductByID)

	// Checkout and order history. The two checkout endpoints are rate
	// limited per IP to blunt double-click storms; confirmation stays safe
	// to retry regardless.
	checkoutLimit := middleware.RateLimitMiddleware(rate.Every(time.Minute/30), 10)

	orders := r.Group("/orders")
	orders.Use(auth)
	orders.POST("/create-payment-intent", checkoutLimit, orderController.CreatePaymentIntent)
	orders.POST("/confirm-payment", checkoutLimit, orderController.ConfirmPayment)
	orders.GET("/myorders", orderController.GetMyOrders)
	orders.GET("", orderController.ListOrders)
	orders.GET("/:id", orderController.GetOrderByID)
	orders.PUT("/:id", middleware.AdminOnly(), orderController.UpdateOrder)

	// Simplified intent endpoint; returns a mock client secret when no live
	// processor credentials are configured.
	payment := r.Group("/payment")
	payment.Use(auth)
	payment.POST("/create-payment-intent", checkoutLimit, paymentController.CreatePaymentIntent)

	reviews := r.Group("/reviews")
	reviews.GET("/:productId", reviewController.GetReviews)
	reviews.POST("/:productId", auth, reviewController.AddReview)
	reviews.DELETE("/:id", auth, reviewController.DeleteReview)

	wishlist := r.Group("/wishlist")
	wishlist.Use(auth)
	wishlist.GET("", wishlistController.GetWishlist)
	wishlist.PUT("/:productId", wishlistController.ToggleProduct)
}
