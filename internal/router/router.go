// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrichain/agrichain-backend/internal/config"
	"github.com/agrichain/agrichain-backend/internal/handlers"
	"github.com/agrichain/agrichain-backend/internal/middleware"
	"github.com/agrichain/agrichain-backend/internal/models"
	"github.com/agrichain/agrichain-backend/internal/services"
	"github.com/agrichain/agrichain-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	ledgerService := services.NewLedgerService(db, cfg)
	walletService := services.NewWalletService(db, cfg)

	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db)
	batchService := services.NewBatchService(db, walletService, ledgerService)
	eventService := services.NewEventService(db, batchService, storageService)
	commerceService := services.NewCommerceService(db, walletService, batchService)
	traceService := services.NewTraceabilityService(db, ledgerService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	farmerHandler := handlers.NewFarmerHandler(productService, batchService, eventService)
	distributorHandler := handlers.NewDistributorHandler(batchService)
	transporterHandler := handlers.NewTransporterHandler(batchService, eventService)
	shopHandler := handlers.NewShopHandler(batchService)
	commerceHandler := handlers.NewCommerceHandler(commerceService)
	traceHandler := handlers.NewTraceabilityHandler(traceService, ledgerService)
	walletHandler := handlers.NewWalletHandler(walletService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	api := r.Group("/api")

	// Public auth routes
	auth := api.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}
	api.GET("/auth/me", middleware.AuthRequired(), authHandler.Me)

	// Public traceability routes (QR code scans, no auth)
	trace := api.Group("/traceability")
	trace.Use(middleware.TraceRateLimit())
	{
		trace.GET("/batch/:batch_code", traceHandler.TraceBatch)
		trace.GET("/batch/:batch_code/genealogy", traceHandler.Genealogy)
		trace.GET("/batch/:batch_code/events", traceHandler.Events)
		trace.GET("/product/:id/ledger", traceHandler.ProductLedger)
	}

	// Farmer routes
	farmer := api.Group("/farmer")
	farmer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleFarmer))
	{
		farmer.POST("/products", farmerHandler.CreateProduct)
		farmer.GET("/products", farmerHandler.GetMyProducts)
		farmer.POST("/add-batch", farmerHandler.AddBatch)
		farmer.GET("/my-batches", farmerHandler.GetMyBatches)
		farmer.POST("/log-event", farmerHandler.LogEvent)
		farmer.POST("/events/:id/attachments", middleware.UploadRateLimit(), farmerHandler.AddAttachment)
		farmer.POST("/events/:id/device-data", farmerHandler.AddDeviceData)
	}

	// Distributor routes
	distributor := api.Group("/distributor")
	distributor.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleDistributor))
	{
		distributor.GET("/marketplace", distributorHandler.Marketplace)
		distributor.POST("/buy", distributorHandler.Buy)
		distributor.POST("/batches/:id/split", distributorHandler.Split)
		distributor.GET("/inventory", distributorHandler.Inventory)
		distributor.POST("/ship", distributorHandler.Ship)
	}

	// Transporter routes
	transporter := api.Group("/transporter")
	transporter.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleTransporter))
	{
		transporter.GET("/jobs", transporterHandler.Jobs)
		transporter.POST("/deliver", transporterHandler.Deliver)
		transporter.POST("/log-event", transporterHandler.LogEvent)
	}

	// Shop routes
	shop := api.Group("/shop")
	shop.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleShopkeeper))
	{
		shop.GET("/inventory", shopHandler.Inventory)
		shop.POST("/sell", shopHandler.Sell)
	}

	// Commerce routes (any authenticated chain participant)
	commerce := api.Group("/commerce")
	commerce.Use(middleware.AuthRequired())
	{
		commerce.POST("/orders", commerceHandler.CreateOrder)
		commerce.GET("/orders", commerceHandler.GetMyOrders)
		commerce.GET("/orders/:id", commerceHandler.GetOrder)
	}

	// Wallet routes
	wallet := api.Group("/wallet")
	wallet.Use(middleware.AuthRequired())
	{
		wallet.GET("/balance", walletHandler.Balance)
		wallet.GET("/history", walletHandler.History)
		wallet.POST("/topup", walletHandler.CreateTopUp)
		wallet.POST("/topup/confirm", walletHandler.ConfirmTopUp)
	}

	return r
}
