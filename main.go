package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"restaurant-orders-api/config"
	"restaurant-orders-api/handlers"
	"restaurant-orders-api/middleware"
	"restaurant-orders-api/models"
	"restaurant-orders-api/realtime"
	"restaurant-orders-api/routes"
	"restaurant-orders-api/store"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	db, err := config.OpenDB(cfg.DatabasePath, log)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}

	cache := store.NewCache(cfg.RedisAddr)
	defer cache.Close()

	seedAdmin(db, log)

	carts := &store.CartStore{DB: db, TaxRateBP: cfg.TaxRateBP, MaxQty: cfg.MaxQtyPerLine, TTL: cfg.CartTTL}
	orders := &store.OrderStore{DB: db, Cache: cache, TaxRateBP: cfg.TaxRateBP}
	reservations := &store.ReservationStore{DB: db, OpenHourSlots: cfg.OpenHourSlots, MaxPartySize: cfg.MaxPartySize}
	catalog := &store.CatalogStore{DB: db}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	hub := realtime.NewHub(log)
	go hub.Run(bgCtx)

	authMW := middleware.NewAuth(cfg.JWTSecret, cfg.TokenTTL, cache)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for the storefront and console frontends
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Cart-Session")
		c.Header("Access-Control-Expose-Headers", "X-Cart-Session")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "restaurant-orders-api"})
	})

	routes.Setup(r, routes.Handlers{
		Auth:              &handlers.AuthHandler{DB: db, Auth: authMW, Log: log},
		Public:            &handlers.PublicHandler{Catalog: catalog, Orders: orders, Log: log},
		Cart:              &handlers.CartHandler{Carts: carts, Log: log},
		Checkout:          &handlers.CheckoutHandler{Orders: orders, Log: log},
		Reservations:      &handlers.ReservationHandler{Reservations: reservations, Log: log},
		AdminOrders:       &handlers.AdminOrdersHandler{Orders: orders, Hub: hub, Log: log},
		AdminReservations: &handlers.AdminReservationsHandler{Reservations: reservations, Hub: hub, Log: log},
		AdminCatalog:      &handlers.AdminCatalogHandler{Catalog: catalog, Log: log},
		AuthMW:            authMW,
		Hub:               hub,
	})

	go sweepCarts(bgCtx, carts, log)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// sweepCarts periodically drops expired session carts.
func sweepCarts(ctx context.Context, carts *store.CartStore, log *logrus.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := carts.SweepExpired(ctx)
			if err != nil {
				log.WithError(err).Warn("cart sweep failed")
			} else if n > 0 {
				log.WithField("carts", n).Info("expired carts removed")
			}
		}
	}
}

// seedAdmin creates the initial console account when none exists yet.
func seedAdmin(db *gorm.DB, log *logrus.Logger) {
	var count int64
	if err := db.Model(&models.AdminUser{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Warn("no admin account exists and ADMIN_EMAIL/ADMIN_PASSWORD unset")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Error("admin seed failed")
		return
	}
	admin := models.AdminUser{Name: "Administrator", Email: email, PasswordHash: string(hash)}
	if err := db.Create(&admin).Error; err != nil {
		log.WithError(err).Error("admin seed failed")
		return
	}
	log.WithField("email", email).Info("seeded initial admin account")
}
