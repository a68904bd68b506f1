package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	config "github.com/syberke/TechStore/configs"
	"github.com/syberke/TechStore/internal/checkout"
	"github.com/syberke/TechStore/internal/customers"
	"github.com/syberke/TechStore/internal/db"
	"github.com/syberke/TechStore/internal/handlers"
	"github.com/syberke/TechStore/internal/notifier"
	"github.com/syberke/TechStore/internal/orders"
	"github.com/syberke/TechStore/internal/payment"
	"github.com/syberke/TechStore/internal/upload"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	gormDB, err := db.Init(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	logrus.Info("Database connected and migrated successfully")

	emailNotifier, err := notifier.NewEmailNotifier(context.Background(), cfg.Email)
	if err != nil {
		logrus.Fatalf("Failed to initialize email notifier: %v", err)
	}

	registry := customers.NewRegistry(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	gateway := payment.NewClient(cfg.Midtrans)
	checkoutService := checkout.NewService(gormDB, registry, orderRepo, gateway, emailNotifier)

	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	productHandler := handlers.NewProductHandler(gormDB)
	contactHandler := handlers.NewContactHandler(emailNotifier)
	uploadHandler := handlers.NewUploadHandler(upload.NewClient(cfg.Cloudinary))

	r := gin.Default()

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── storefront API ──
	api := r.Group("/api")
	{
		api.GET("/products", productHandler.ListProducts)
		api.POST("/products", productHandler.CreateProduct)
		api.POST("/checkout", checkoutHandler.Checkout)
		api.POST("/contact", contactHandler.SendMessage)
		api.POST("/upload", uploadHandler.UploadImage)
	}

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logrus.Fatalf("Server exited: %v", err)
	}
}
