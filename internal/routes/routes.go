package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/handlers"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/barbershop-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/analytics"
	ucAppointment "github.com/BruksfildServices01/barbershop-booking/internal/usecase/appointment"
)

// Dependencies are the process-wide singletons built in main. Cache and
// Logos are optional.
type Dependencies struct {
	DB          *gorm.DB
	Config      *config.Config
	Audit       *audit.Dispatcher
	Cache       *cache.SlotCache
	Logos       handlers.LogoUploader
	Clock       timezone.Clock
	ReadyChecks []handlers.ReadyCheck
}

func RegisterRoutes(r *gin.Engine, d Dependencies) {
	cfg := d.Config

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.CORSMiddleware(),
		limiter.Middleware(),
	)

	// ======================================================
	// INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)
	analyticsRepo := infraRepo.NewAnalyticsGormRepository(d.DB)

	deps := ucAppointment.Deps{
		Repo:  appointmentRepo,
		Audit: d.Audit,
		Clock: d.Clock,
		Limits: availability.Limits{
			DefaultSlot:        cfg.SlotDefault,
			MaxSlot:            cfg.SlotMax,
			DefaultHorizonDays: cfg.HorizonDefaultDays,
			MaxHorizonDays:     cfg.HorizonMaxDays,
		},
	}

	var staffCache handlers.StaffCacheInvalidator
	if d.Cache != nil {
		deps.Cache = d.Cache
		staffCache = d.Cache
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	healthHandler := handlers.NewHealthHandler(d.ReadyChecks...)
	authHandler := handlers.NewAuthHandler(d.DB, cfg, d.Audit)
	meHandler := handlers.NewMeHandler(d.DB)
	barbershopHandler := handlers.NewBarbershopHandler(d.DB, d.Logos, d.Audit)
	staffHandler := handlers.NewStaffHandler(d.DB, d.Audit)
	serviceHandler := handlers.NewServiceHandler(d.DB, d.Audit)
	scheduleHandler := handlers.NewScheduleHandler(d.DB, staffCache, d.Audit)
	customerHandler := handlers.NewCustomerHandler(d.DB)
	clientHandler := handlers.NewClientHandler(d.DB)
	appointmentHandler := handlers.NewAppointmentHandler(d.DB, deps)
	paymentHandler := handlers.NewPaymentHandler(d.DB, d.Audit)
	reviewHandler := handlers.NewReviewHandler(d.DB, d.Audit)
	analyticsHandler := handlers.NewAnalyticsHandler(analytics.NewService(analyticsRepo, d.Clock))
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)

	// ======================================================
	// OPERATIONS
	// ======================================================
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	auth := middleware.AuthMiddleware(cfg)

	// ------------------------------
	// PUBLIC
	// ------------------------------
	public := api.Group("/public/:slug")
	{
		public.GET("", barbershopHandler.Public)
		public.GET("/services", serviceHandler.Public)
		public.GET("/staff", staffHandler.Public)
		public.GET("/reviews", reviewHandler.Public)
		public.GET("/availability", appointmentHandler.PublicAvailability)
		public.GET("/available-staff", appointmentHandler.PublicAvailableStaff)
		public.GET("/next-slot", appointmentHandler.PublicNextSlot)

		booking := public.Group("/appointments", auth, middleware.RequireRoles(policy.RoleClient))
		booking.POST("", appointmentHandler.CreatePublic)
		booking.PATCH("/:id/cancel", appointmentHandler.CancelPublic)
	}

	// ------------------------------
	// AUTH
	// ------------------------------
	api.POST("/auth/register", authHandler.RegisterOwner)
	api.POST("/auth/register/client", authHandler.RegisterClient)
	api.POST("/auth/login", authHandler.Login)

	// ------------------------------
	// AUTHENTICATED
	// ------------------------------
	secured := api.Group("/", auth)
	{
		secured.GET("/me", meHandler.GetMe)
		secured.GET("/client/appointments", clientHandler.MyAppointments)
		secured.POST("/reviews", reviewHandler.Create)
	}

	// ------------------------------
	// STAFF (BARBER / OWNER)
	// ------------------------------
	staff := api.Group("/me", auth, middleware.RequireRoles(policy.RoleBarber, policy.RoleOwner))
	{
		staff.GET("/barbershop", barbershopHandler.GetMeBarbershop)
		staff.PATCH("/barbershop", barbershopHandler.UpdateMeBarbershop)
		staff.POST("/barbershop/logo", barbershopHandler.UploadLogo)

		staff.GET("/staff", staffHandler.List)
		staff.POST("/staff", staffHandler.Create)

		staff.GET("/services", serviceHandler.List)
		staff.POST("/services", serviceHandler.Create)
		staff.PATCH("/services/:id", serviceHandler.Update)

		staff.GET("/schedule", scheduleHandler.Get)
		staff.PUT("/schedule", scheduleHandler.Put)

		staff.GET("/customers", customerHandler.List)

		staff.GET("/availability", appointmentHandler.Availability)

		staff.POST("/appointments", appointmentHandler.Create)
		staff.GET("/appointments", appointmentHandler.ListByDate)
		staff.GET("/appointments/month", appointmentHandler.ListByMonth)
		staff.PATCH("/appointments/:id/confirm", appointmentHandler.Confirm)
		staff.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
		staff.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
		staff.PATCH("/appointments/:id/reschedule", appointmentHandler.Reschedule)

		staff.POST("/appointments/:id/payment", paymentHandler.Create)
		staff.GET("/appointments/:id/payment", paymentHandler.GetForAppointment)
		staff.PATCH("/payments/:id/pay", paymentHandler.MarkPaid)
		staff.PATCH("/payments/:id/refund", paymentHandler.Refund)

		staff.GET("/analytics", analyticsHandler.Overview)
		staff.GET("/analytics/staff/:id", analyticsHandler.StaffStats)
		staff.GET("/analytics/export", analyticsHandler.Export)

		staff.GET("/audit-logs", auditLogsHandler.List)
	}

	// ------------------------------
	// PLATFORM ADMIN
	// ------------------------------
	admin := api.Group("/admin", auth, middleware.RequireRoles(policy.RoleAdmin))
	{
		admin.GET("/dashboard", analyticsHandler.Dashboard)
	}
}
