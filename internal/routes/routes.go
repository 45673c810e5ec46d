package routes

import (
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/venora-platform/booking-engine/internal/audit"
	"github.com/venora-platform/booking-engine/internal/config"
	"github.com/venora-platform/booking-engine/internal/handlers"
	"github.com/venora-platform/booking-engine/internal/middleware"
	"github.com/venora-platform/booking-engine/internal/models"
	"github.com/venora-platform/booking-engine/internal/usecase/reservation"
	"github.com/venora-platform/booking-engine/internal/usecase/timeslot"
)

// Dependencies bundles everything the route tree needs to build its
// handlers, so main.go stays a pure wiring script.
type Dependencies struct {
	DB              *gorm.DB
	Config          *config.Config
	Engine          *reservation.Engine
	SlotGenerator   *timeslot.Generator
	AuditDispatcher *audit.Dispatcher
}

// RegisterRoutes mounts the full §6 HTTP surface.
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Config)
	meHandler := handlers.NewMeHandler(deps.DB)
	storeHandler := handlers.NewStoreHandler(deps.DB)
	treatmentHandler := handlers.NewTreatmentHandler(deps.DB)
	resourceHandler := handlers.NewResourceHandler(deps.DB)
	staffHandler := handlers.NewStaffHandler(deps.DB)
	timeslotHandler := handlers.NewTimeslotHandler(deps.DB, deps.SlotGenerator)
	bookingHandler := handlers.NewBookingHandler(deps.DB, deps.Engine, deps.AuditDispatcher)
	webhookHandler := handlers.NewWebhookHandler(deps.DB, deps.Config.WebhookDefaultSecret)
	auditLogsHandler := handlers.NewAuditLogsHandler(deps.DB)

	auth := middleware.AuthMiddleware(deps.Config)

	api := r.Group("/api/v1")

	// --- Public / unauthenticated ---
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/stores/:storeId/availability", timeslotHandler.ListAvailability)

	// --- Authenticated, no store scope required ---
	authed := api.Group("")
	authed.Use(auth)
	authed.GET("/me", meHandler.GetMe)

	// Stores: creation is a super_admin-only operation; listing is
	// self-scoping per caller role.
	authed.POST("/stores", middleware.RequireRole(models.RoleSuperAdmin), storeHandler.Create)
	authed.GET("/stores", storeHandler.List)
	authed.GET("/stores/:storeId", storeHandler.Get)

	// Everything under /stores/:storeId/* that mutates tenant configuration
	// is store-scoped: super_admin bypasses, store_admin/staff must match.
	storeScoped := authed.Group("/stores/:storeId")
	storeScoped.Use(middleware.RequireStoreScope("storeId"))
	{
		storeScoped.PUT("", middleware.RequireRole(models.RoleStoreAdmin), storeHandler.Update)
		storeScoped.PATCH("/quotas", middleware.RequireRole(models.RoleStoreAdmin), storeHandler.UpdateQuotas)

		storeScoped.POST("/treatments", middleware.RequireRole(models.RoleStoreAdmin), treatmentHandler.Create)
		storeScoped.GET("/treatments", treatmentHandler.List)

		storeScoped.POST("/resources", middleware.RequireRole(models.RoleStoreAdmin), resourceHandler.Create)
		storeScoped.GET("/resources", resourceHandler.List)

		storeScoped.POST("/staff", middleware.RequireRole(models.RoleStoreAdmin), staffHandler.Create)
		storeScoped.GET("/staff", middleware.RequireRole(models.RoleStaff), staffHandler.List)

		storeScoped.POST("/timeslots/generate", middleware.RequireRole(models.RoleStoreAdmin), timeslotHandler.Generate)

		storeScoped.POST("/webhooks", middleware.RequireRole(models.RoleSuperAdmin), webhookHandler.Create)
		storeScoped.GET("/webhooks", middleware.RequireRole(models.RoleSuperAdmin), webhookHandler.List)
		storeScoped.GET("/webhooks/health", middleware.RequireRole(models.RoleSuperAdmin), webhookHandler.Health)

		storeScoped.GET("/audit-logs", middleware.RequireRole(models.RoleStoreAdmin), auditLogsHandler.List)
	}

	authed.PUT("/treatments/:treatmentId", middleware.RequireRole(models.RoleStoreAdmin), treatmentHandler.Update)
	authed.GET("/treatments/:treatmentId", treatmentHandler.Get)
	authed.DELETE("/treatments/:treatmentId", middleware.RequireRole(models.RoleStoreAdmin), treatmentHandler.Deactivate)

	authed.PUT("/resources/:resourceId", middleware.RequireRole(models.RoleStoreAdmin), resourceHandler.Update)
	authed.DELETE("/resources/:resourceId", middleware.RequireRole(models.RoleStoreAdmin), resourceHandler.Deactivate)

	authed.PUT("/staff/:staffId", middleware.RequireRole(models.RoleStoreAdmin), staffHandler.Update)

	authed.PUT("/webhooks/:subscriptionId", middleware.RequireRole(models.RoleSuperAdmin), webhookHandler.Update)
	authed.DELETE("/webhooks/:subscriptionId", middleware.RequireRole(models.RoleSuperAdmin), webhookHandler.Delete)

	// Bookings: any authenticated caller may create; Get/Modify/Cancel/
	// Complete/MarkNoShow all load the booking first and call
	// enforceBookingAccess, which restricts customers to their own booking
	// and staff/store_admin to their own store's bookings.
	authed.POST("/bookings", bookingHandler.Create)
	authed.GET("/bookings", bookingHandler.List)
	authed.GET("/bookings/:bookingId", bookingHandler.Get)
	authed.PUT("/bookings/:bookingId", bookingHandler.Modify)
	authed.POST("/bookings/:bookingId/cancel", bookingHandler.Cancel)
	authed.POST("/bookings/:bookingId/approve", middleware.RequireRole(models.RoleStaff), bookingHandler.Approve)
	authed.POST("/bookings/:bookingId/check-in", middleware.RequireRole(models.RoleStaff), bookingHandler.CheckIn)
	authed.POST("/bookings/:bookingId/complete", middleware.RequireRole(models.RoleStaff), bookingHandler.Complete)
	authed.POST("/bookings/:bookingId/no-show", middleware.RequireRole(models.RoleStaff), bookingHandler.MarkNoShow)
}
