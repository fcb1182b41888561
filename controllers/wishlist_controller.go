package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/chethanac15/eStore/middleware"
	"github.com/chethanac15/eStore/models"
	"github.com/chethanac15/eStore/repository"
)

type WishlistController struct {
	wishlists repository.WishlistRepository
	products  repository.ProductRepository
	logger    *zap.Logger
}

func NewWishlistController(wishlists repository.WishlistRepository, products repository.ProductRepository, logger *zap.Logger) *WishlistController {
	return &WishlistController{
		wishlists: wishlists,
		products:  products,
		logger:    logger,
	}
}

// GetWishlist returns the caller's saved products.
func (wc *WishlistController) GetWishlist(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wishlist, err := wc.wishlists.GetByUser(ctx.Request.Context(), userID)
	if err != nil {
		wc.logger.Error("Failed to fetch wishlist", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlist"})
		return
	}

	products, err := wc.resolveProducts(ctx, wishlist.ProductIDs)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlist"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

// ToggleProduct adds the product to the wishlist, or removes it if present.
func (wc *WishlistController) ToggleProduct(ctx *gin.Context) {
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

	wishlist, err := wc.wishlists.Toggle(ctx.Request.Context(), userID, productID)
	if err != nil {
		wc.logger.Error("Failed to toggle wishlist product", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	products, err := wc.resolveProducts(ctx, wishlist.ProductIDs)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

func (wc *WishlistController) resolveProducts(ctx *gin.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	products, _, err := wc.products.Find(ctx.Request.Context(), bson.M{"_id": bson.M{"$in": ids}}, 1, len(ids))
	if err != nil {
		wc.logger.Error("Failed to resolve wishlist products", zap.Error(err))
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}
