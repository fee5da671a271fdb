package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/billing"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/client"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/handlers"
	"github.com/BruksfildServices01/clinic-scheduler/internal/idempotency"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
	ucAuth "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/auth"
	ucBilling "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/billing"
	ucBooking "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/booking"
	ucCatalog "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/catalog"
	ucClient "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/client"
)

// Repositories are the stores behind the use cases; GORM in production,
// the in-memory store in tests and --memory mode.
type Repositories struct {
	Bookings booking.Repository
	Billing  billing.Repository
	Clients  client.Repository
	Catalog  catalog.Repository
	Users    user.Repository
	Audit    audit.Store
}

// Deps carries the singletons built in main. Guard, Metrics, Gatherer and
// Health may be nil.
type Deps struct {
	Config   *config.Config
	Repos    Repositories
	Recorder audit.Recorder
	Guard    *idempotency.Guard
	Clock    timezone.Clock
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Health   func(ctx context.Context) error
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(d.Log, d.Metrics))
	r.Use(middleware.CORSMiddleware(d.Config.CORSOrigins))

	// ======================================================
	// USE CASES
	// ======================================================
	bookingDeps := ucBooking.Deps{
		Bookings: d.Repos.Bookings,
		Clients:  d.Repos.Clients,
		Catalog:  d.Repos.Catalog,
		Guard:    d.Guard,
		Audit:    d.Recorder,
		Clock:    d.Clock,
		Log:      d.Log.Named("booking"),
		Metrics:  d.Metrics,
	}
	policy := ucBooking.Policy{
		SlotMinutes: d.Config.SlotMinutes,
		HorizonDays: d.Config.BookingHorizonDays,
	}

	billingDeps := ucBilling.Deps{
		Billing:  d.Repos.Billing,
		Bookings: d.Repos.Bookings,
		Catalog:  d.Repos.Catalog,
		Audit:    d.Recorder,
		Clock:    d.Clock,
		Log:      d.Log.Named("billing"),
		Metrics:  d.Metrics,
	}

	clientDeps := ucClient.Deps{
		Clients: d.Repos.Clients,
		Audit:   d.Recorder,
		Clock:   d.Clock,
		Log:     d.Log.Named("client"),
	}

	login := ucAuth.NewLogin(ucAuth.Deps{
		Users:  d.Repos.Users,
		Audit:  d.Recorder,
		Clock:  d.Clock,
		Log:    d.Log.Named("auth"),
		Secret: d.Config.JWTSecret,
		TTL:    d.Config.JWTTTL,
	})

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(login)
	meHandler := handlers.NewMeHandler(d.Repos.Users)
	clientHandler := handlers.NewClientHandler(clientDeps)
	catalogHandler := handlers.NewCatalogHandler(ucCatalog.NewService(d.Repos.Catalog, d.Recorder, d.Log.Named("catalog")))
	bookingHandler := handlers.NewBookingHandler(bookingDeps, policy)
	billingHandler := handlers.NewBillingHandler(billingDeps)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.Repos.Audit, d.Clock)

	// ======================================================
	// OPERATIONS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)

		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Config.JWTSecret, d.Clock))
		{
			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// CLIENTS
			// ------------------------------
			secured.POST("/clients", clientHandler.Create)
			secured.GET("/clients", clientHandler.List)
			secured.GET("/clients/:id", clientHandler.Get)
			secured.PATCH("/clients/:id/deactivate", clientHandler.Deactivate)

			// ------------------------------
			// CATALOG
			// ------------------------------
			secured.GET("/practitioners", catalogHandler.ListPractitioners)
			secured.GET("/services", catalogHandler.ListServices)
			secured.GET("/services/:id", catalogHandler.GetService)

			admin := secured.Group("/")
			admin.Use(middleware.RequireAccess(string(user.AccessAdmin), string(user.AccessManager)))
			{
				admin.POST("/practitioners", catalogHandler.CreatePractitioner)
				admin.POST("/services", catalogHandler.CreateService)
				admin.GET("/audit-logs", auditLogsHandler.List)
			}

			// ------------------------------
			// BOOKINGS
			// ------------------------------
			secured.POST("/bookings", bookingHandler.Create)
			secured.GET("/bookings", bookingHandler.List)
			secured.GET("/bookings/:id", bookingHandler.Get)
			secured.PATCH("/bookings/:id/status", bookingHandler.UpdateStatus)
			secured.PATCH("/bookings/:id/start", bookingHandler.Start)
			secured.PATCH("/bookings/:id/finish", bookingHandler.Finish)
			secured.PATCH("/bookings/:id/no-show", bookingHandler.MarkNoShow)
			secured.PATCH("/bookings/:id/cancel", bookingHandler.Cancel)
			secured.DELETE("/bookings/:id", bookingHandler.Delete)

			// ------------------------------
			// SERVICE-LINES & PAYMENTS
			// ------------------------------
			secured.GET("/bookings/:id/services", billingHandler.ListServices)
			secured.POST("/bookings/:id/services", billingHandler.AttachService)
			secured.DELETE("/bookings/:id/services/:service_id", billingHandler.DetachService)
			secured.PATCH("/service-lines/:id/price", billingHandler.Reprice)
			secured.POST("/service-lines/:id/payments", billingHandler.AddPayment)
			secured.DELETE("/payments/:id", billingHandler.DeletePayment)
			secured.GET("/bookings/:id/payments/summary", billingHandler.Summary)
			secured.POST("/bookings/:id/checkout", billingHandler.Checkout)
		}
	}
}
