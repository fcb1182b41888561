package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/chethanac15/eStore/middleware"
	"github.com/chethanac15/eStore/models"
	"github.com/chethanac15/eStore/repository"
)

type ReviewController struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewReviewController(reviews repository.ReviewRepository, products repository.ProductRepository, logger *zap.Logger) *ReviewController {
	return &ReviewController{
		reviews:  reviews,
		products: products,
		logger:   logger,
	}
}

// GetReviews returns a paginated page of reviews for a product, newest first.
func (rc *ReviewController) GetReviews(ctx *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(ctx.Param("productId"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	page, limit := parsePaginationParams(ctx)

	reviews, total, err := rc.reviews.FindByProduct(ctx.Request.Context(), productID, page, limit)
	if err != nil {
		rc.logger.Error("Failed to fetch reviews", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"reviews":      reviews,
		"currentPage":  page,
		"totalReviews": total,
	})
}

// AddReview creates a review; one per user per product.
func (rc *ReviewController) AddReview(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(ctx.Param("productId"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if _, err := rc.products.FindByID(ctx.Request.Context(), productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := rc.reviews.Create(ctx.Request.Context(), review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this product"})
			return
		}
		rc.logger.Error("Failed to create review", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"review": review})
}

// DeleteReview removes a review. Owner or admin only.
func (rc *ReviewController) DeleteReview(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reviewID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	review, err := rc.reviews.FindByID(ctx.Request.Context(), reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if review.UserID != userID && middleware.GetRole(ctx) != middleware.AdminRole {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this review"})
		return
	}

	if err := rc.reviews.Delete(ctx.Request.Context(), reviewID); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
