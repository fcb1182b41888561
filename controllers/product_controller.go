package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/chethanac15/eStore/repository"
)

// ProductController serves the public catalog read endpoints. Catalog
// administration lives elsewhere; this service only reads.
type ProductController struct {
	products repository.ProductRepository
	cache    *CacheManager // may be nil
	logger   *zap.Logger
}

func NewProductController(products repository.ProductRepository, cache *CacheManager, logger *zap.Logger) *ProductController {
	return &ProductController{
		products: products,
		cache:    cache,
		logger:   logger,
	}
}

// GetProducts returns a paginated page of active products.
func (pc *ProductController) GetProducts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	category := ctx.Query("category")

	if cached, ok := pc.cache.GetProductList(ctx.Request.Context(), page, limit, category); ok {
		ctx.JSON(http.StatusOK, cached)
		return
	}

	filter := bson.M{"is_active": true}
	if category != "" {
		filter["category"] = category
	}

	products, total, err := pc.products.Find(ctx.Request.Context(), filter, page, limit)
	if err != nil {
		pc.logger.Error("Failed to fetch products", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	response := gin.H{
		"products": products,
		"page":     page,
		"limit":    limit,
		"total":    total,
	}
	pc.cache.SetProductListAsync(page, limit, category, response)

	ctx.JSON(http.StatusOK, response)
}

// GetProductByID returns a single product.
func (pc *ProductController) GetProductByID(ctx *gin.Context) {
	idStr := ctx.Param("id")

	if cached, ok := pc.cache.GetProduct(ctx.Request.Context(), idStr); ok {
		ctx.JSON(http.StatusOK, gin.H{"product": cached})
		return
	}

	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	product, err := pc.products.FindByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		pc.logger.Error("Failed to fetch product", zap.String("product_id", idStr), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	pc.cache.SetProductAsync(idStr, product)
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}
