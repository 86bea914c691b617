package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ahmedchetoui/Delta-sub000/internal/config"
	"github.com/Ahmedchetoui/Delta-sub000/internal/http/handlers"
	"github.com/Ahmedchetoui/Delta-sub000/internal/http/handlers/admin"
	"github.com/Ahmedchetoui/Delta-sub000/internal/http/middleware"
	"github.com/Ahmedchetoui/Delta-sub000/internal/mailer"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/analytics"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/catalog"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/email"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/inventory"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/orders"
	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/cache"
)

// NewRouter wires the full application: middleware chain, module services and
// both API groups.
func NewRouter(logger *slog.Logger, db *gorm.DB, cfg config.Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	sessCfg := middleware.SessionCfg{
		DB:         db,
		CookieName: cfg.SessionCookie,
		Secure:     cfg.SecureCookies,
		TTL:        cfg.SessionTTL,
	}
	r.Use(middleware.SessionMiddleware(sessCfg))

	// zincirin sonu: c.Errors -> JSON gövde
	r.Use(middleware.ErrorHandler(logger))

	// modül servisleri
	catalogRepo := catalog.NewGormRepo(db)
	ledger := inventory.NewGormLedger(db, logger)
	store := orders.NewGormStore(db)

	var mailSvc mailer.Service
	if cfg.SMTP.Host != "" {
		mailSvc = mailer.NewSMTPMailer(cfg.SMTP)
	} else {
		mailSvc = &mailer.Mock{}
	}
	notifier := email.NewNotifier(mailSvc, cfg.SMTP.From, cfg.SMTP.FromName, logger)

	pricing := orders.PricingPolicy{
		Currency:              cfg.Currency,
		FlatShippingCents:     cfg.FlatShippingCents,
		FreeShippingOverCents: cfg.FreeShippingOverCents,
	}
	orderSvc := orders.NewService(store, catalogRepo, ledger, pricing, notifier, logger)

	analyticsSvc := analytics.NewService(db, analytics.Options{
		TopN:              cfg.AnalyticsTopN,
		LowStockThreshold: cfg.LowStockThreshold,
		Currency:          cfg.Currency,
	}, logger)
	var reporter admin.Reporter = analyticsSvc
	if cfg.RedisAddr != "" {
		c := cache.NewRedisCache(cfg.RedisAddr, "delta-analytics")
		reporter = analytics.NewCachedService(analyticsSvc, c, logger)
	}

	// handler'lar
	authH := handlers.NewAuthHandler(db, sessCfg)
	productsH := handlers.NewProductsHandler(catalogRepo)
	ordersH := handlers.NewOrdersHandler(orderSvc)
	guestH := handlers.NewGuestOrdersHandler(orderSvc)
	adminOrdersH := admin.NewOrdersHandler(store, orderSvc)
	adminAnalyticsH := admin.NewAnalyticsHandler(reporter, logger)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authH.Login)
		api.POST("/auth/logout", authH.Logout)

		api.GET("/products", productsH.List)
		api.GET("/products/:id", productsH.Get)

		// misafir ya da oturumlu
		api.POST("/orders", ordersH.Create)
		api.GET("/orders/track", guestH.Track)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth())
		{
			authed.GET("/orders", ordersH.List)
			authed.GET("/orders/:id", ordersH.Get)
			authed.POST("/orders/:id/cancel", ordersH.Cancel)
		}
	}

	adm := r.Group("/api/v1/admin")
	adm.Use(middleware.RequireAdmin())
	{
		adm.GET("/orders", adminOrdersH.List)
		adm.GET("/orders/:id", adminOrdersH.Detail)
		adm.PATCH("/orders/:id/status", adminOrdersH.UpdateStatus)
		adm.POST("/orders/:id/cancel", adminOrdersH.Cancel)

		adm.GET("/analytics/:dimension", adminAnalyticsH.Report)
	}

	return r
}
