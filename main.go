package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chethanac15/eStore/config"
	"github.com/chethanac15/eStore/controllers"
	"github.com/chethanac15/eStore/database"
	"github.com/chethanac15/eStore/kafka"
	"github.com/chethanac15/eStore/logger"
	"github.com/chethanac15/eStore/middleware"
	awspkg "github.com/chethanac15/eStore/pkg/aws"
	"github.com/chethanac15/eStore/repository"
	"github.com/chethanac15/eStore/routes"
	"github.com/chethanac15/eStore/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.Initialize(cfg.Env)
	defer log.Sync()

	// --- Storage ---

	mongoClient, db, err := database.Connect(cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Close(mongoClient); err != nil {
			log.Error("Failed to close MongoDB", zap.Error(err))
		}
	}()
	log.Info("Connected to MongoDB", zap.String("database", cfg.MongoDB))

	productRepo := repository.NewMongoProductRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	reviewRepo := repository.NewMongoReviewRepository(db)
	wishlistRepo := repository.NewMongoWishlistRepository(db)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer indexCancel()
	if err := orderRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal("Failed to ensure order indexes", zap.Error(err))
	}
	if err := reviewRepo.EnsureIndexes(indexCtx); err != nil {
		log.Warn("Failed to ensure review indexes", zap.Error(err))
	}
	if err := wishlistRepo.EnsureIndexes(indexCtx); err != nil {
		log.Warn("Failed to ensure wishlist indexes", zap.Error(err))
	}

	// --- Optional product read cache ---

	var productCache *controllers.CacheManager
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warn("Failed to parse REDIS_URL, product cache disabled", zap.Error(err))
		} else {
			redisClient = redis.NewClient(redisOpts)
			productCache = controllers.NewCacheManager(redisClient)
			log.Info("Product cache enabled")
		}
	}

	// --- Payment gateway: live Stripe or explicit mock ---

	var gateway services.PaymentGateway
	mockMode := cfg.StripeSecretKey == ""
	if mockMode {
		gateway = services.NewMockGateway(200*time.Millisecond, log)
	} else {
		gateway = services.NewStripeGateway(cfg.StripeSecretKey)
		log.Info("Stripe payment gateway configured")
	}

	// --- Best-effort notification and event fan-out ---

	var notifier services.Notifier
	if n, err := services.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.AdminEmail); err != nil {
		log.Warn("Admin email notifications disabled", zap.Error(err))
	} else {
		notifier = n
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic, log)
		defer producer.Close()
	}

	var snsClient awspkg.SNSPublisher
	if cfg.SNSTopicArn != "" {
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			log.Warn("SNS publishing disabled", zap.Error(err))
		} else {
			snsClient = awspkg.NewSNSClient(awsCfg)
		}
	}

	var events services.EventPublisher
	if producer != nil || snsClient != nil {
		events = services.NewOrderEventPublisher(producer, snsClient, cfg.SNSTopicArn, cfg.Currency, log)
	}

	// --- Services and controllers ---

	pricer := services.NewPricer(productRepo)
	checkoutService := services.NewCheckoutService(orderRepo, productRepo, pricer, gateway, notifier, events, cfg.Currency, log)
	orderService := services.NewOrderService(orderRepo, log)

	orderController := controllers.NewOrderController(checkoutService, orderService)
	paymentController := controllers.NewPaymentController(gateway, cfg.Currency, mockMode, log)
	productController := controllers.NewProductController(productRepo, productCache, log)
	reviewController := controllers.NewReviewController(reviewRepo, productRepo, log)
	wishlistController := controllers.NewWishlistController(wishlistRepo, productRepo, log)

	// --- HTTP server ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	auth := middleware.AuthMiddleware([]byte(cfg.JWTSecret))
	routes.Register(r, auth, orderController, paymentController, productController, reviewController, wishlistController)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("eStore backend starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down eStore backend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}

	log.Info("eStore backend stopped gracefully")
}
