package main

import (
	"fmt"

	_ "invoicer/api/swagger" // swagger docs
	"invoicer/internal/ccv"
	"invoicer/internal/config"
	"invoicer/internal/database"
	"invoicer/internal/email"
	"invoicer/internal/handler"
	"invoicer/internal/logger"
	"invoicer/internal/middleware"
	"invoicer/internal/repository"
	"invoicer/internal/service"
	"invoicer/internal/stock"
	"invoicer/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Invoicer API
// @version         1.0
// @description     Invoicing service with payment tracking and shop stock synchronization.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("connected to postgres")

	// WebSocket hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Shop catalog client; when unconfigured, reconciliation degrades to
	// failed outcomes and the products proxy returns 503.
	var catalog stock.Catalog
	if cfg.Shop.Enabled() {
		catalog = ccv.NewClient(ccv.Config{
			BaseURL:   cfg.Shop.BaseURL,
			APIKey:    cfg.Shop.APIKey,
			APISecret: cfg.Shop.APISecret,
			Timeout:   cfg.Shop.Timeout,
		}, log)
	} else {
		log.Warn().Msg("shop integration not configured, stock sync disabled")
		catalog = ccv.NewClient(ccv.Config{}, log)
	}
	reconciler := stock.NewReconciler(catalog, cfg.Shop.Timeout, log)

	// Email sender
	var sender email.Sender
	if cfg.SMTP.Enabled() {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log)
	} else {
		log.Warn().Msg("smtp not configured, invoice email disabled")
	}

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	operationRepo := repository.NewOperationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	operationsService := service.NewOperationsService(operationRepo, log)
	settingsService := service.NewSettingsService(settingsRepo, operationsService, log)
	userService := service.NewUserService(userRepo, operationsService, []byte(cfg.JWTSecret), log)
	statsService := service.NewStatsService(invoiceRepo)
	invoiceService := service.NewInvoiceService(
		invoiceRepo, txManager, reconciler, operationsService, settingsService, sender, wsHub, log,
	)

	userHandler := handler.NewUserHandler(userService, cfg.IsProduction())
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	productHandler := handler.NewProductHandler(catalogOrNil(cfg, catalog))
	settingsHandler := handler.NewSettingsHandler(settingsService)
	dashboardHandler := handler.NewDashboardHandler(statsService)
	operationsHandler := handler.NewOperationsHandler(operationsService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, []byte(cfg.JWTSecret))
	})

	auth := middleware.RequireAuth([]byte(cfg.JWTSecret))
	root := router.Group("")
	userHandler.RegisterRoutes(root, auth)
	invoiceHandler.RegisterRoutes(root, auth)
	productHandler.RegisterRoutes(root, auth)
	settingsHandler.RegisterRoutes(root, auth)
	dashboardHandler.RegisterRoutes(root, auth)
	operationsHandler.RegisterRoutes(root, auth)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("server listening")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// catalogOrNil hides the catalog from the products proxy when the shop is
// unconfigured, so it answers 503 instead of relaying credential errors.
func catalogOrNil(cfg *config.Config, catalog stock.Catalog) stock.Catalog {
	if !cfg.Shop.Enabled() {
		return nil
	}
	return catalog
}
