package router

import (
	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoint implementations mounted under the API prefix
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Branch      *handler.BranchHandler
	Catalog     *handler.CatalogHandler
	Customer    *handler.CustomerHandler
	Transaction *handler.TransactionHandler
	LineItem    *handler.LineItemHandler
	Scheduling  *handler.SchedulingHandler
	Marketing   *handler.MarketingHandler
	Analytics   *handler.AnalyticsHandler
	System      *handler.SystemHandler
	Realtime    *handler.RealtimeHandler
}

// Guards are the per-group middleware. Any of them may be nil.
type Guards struct {
	// Authenticate validates the bearer token on every protected route
	Authenticate gin.HandlerFunc
	// AuthenticateSocket also accepts the token as a query parameter
	AuthenticateSocket gin.HandlerFunc
	// AfterAuth runs once the caller is known (span attributes, profiling labels)
	AfterAuth []gin.HandlerFunc
	// LoginLimit throttles credential attempts
	LoginLimit gin.HandlerFunc
	// Superadmin rejects branch-scoped callers
	Superadmin gin.HandlerFunc
}

// SetupAPI registers every SWAS route group on r and mounts them
func SetupAPI(r *Router, h Handlers, g Guards) {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)
	system.GET("/system/info", h.System.GetSystemInfo)

	public := NewDomainGroup("auth", "/auth")
	public.POST("/login", g.LoginLimit, h.Auth.Login)
	public.POST("/refresh", g.LoginLimit, h.Auth.RefreshToken)

	realtime := NewDomainGroup("realtime", "/ws")
	realtime.Use(g.AuthenticateSocket)
	realtime.Use(g.AfterAuth...)
	realtime.GET("", h.Realtime.Subscribe)

	r.Register(system).
		Register(public).
		Register(realtime).
		Register(protectedRoutes(h, g))
	r.Setup()
}

func protectedRoutes(h Handlers, g Guards) *DomainGroup {
	api := NewDomainGroup("protected", "")
	api.Use(g.Authenticate)
	api.Use(g.AfterAuth...)
	super := g.Superadmin

	session := api.Group("session", "/auth")
	session.POST("/logout", h.Auth.Logout)
	session.GET("/me", h.Auth.GetCurrentUser)

	users := api.Group("users", "/users")
	users.Use(super)
	users.GET("", h.User.List)
	users.POST("", h.User.Create)
	users.DELETE("/:id", h.User.Delete)

	branches := api.Group("branches", "/branches")
	branches.GET("", h.Branch.List)
	branches.GET("/:id", h.Branch.Get)
	branches.POST("", super, h.Branch.Create)
	branches.PUT("/:id", super, h.Branch.Update)

	services := api.Group("services", "/services")
	services.GET("", h.Catalog.List)
	services.POST("/quote", h.Catalog.Quote)
	services.GET("/:id", h.Catalog.Get)
	services.POST("", super, h.Catalog.Add)

	customers := api.Group("customers", "/customers")
	customers.GET("", h.Customer.List)
	customers.GET("/lookup", h.Customer.Lookup)
	customers.GET("/:id", h.Customer.Get)
	customers.PUT("/:id", h.Customer.Update)
	customers.DELETE("/:id", h.Customer.Delete)

	api.POST("/service-requests", h.Transaction.CreateServiceRequest)

	transactions := api.Group("transactions", "/transactions")
	transactions.GET("", h.Transaction.List)
	transactions.GET("/:id", h.Transaction.Get)
	transactions.POST("/:id/payments", h.Transaction.ApplyPayment)
	transactions.GET("/:id/receipt", h.Transaction.Receipt)

	lineItems := api.Group("line-items", "/line-items")
	lineItems.GET("", h.LineItem.List)
	lineItems.GET("/status/:status", h.LineItem.ListByStatus)
	lineItems.PATCH("/status", h.LineItem.UpdateStatus)
	lineItems.GET("/:id", h.LineItem.Get)
	lineItems.GET("/:id/status-dates", h.LineItem.GetStatusDates)
	lineItems.PUT("/:id/status-dates", h.LineItem.UpsertStatusDates)
	lineItems.POST("/:id/images", h.LineItem.RequestImageUpload)

	appointments := api.Group("appointments", "/appointments")
	appointments.GET("", h.Scheduling.ListAppointments)
	appointments.GET("/approved", h.Scheduling.ListApproved)
	appointments.GET("/pending", h.Scheduling.ListPending)
	appointments.POST("", h.Scheduling.CreateAppointment)
	appointments.PATCH("/:id/status", h.Scheduling.UpdateAppointmentStatus)

	unavailability := api.Group("unavailability", "/unavailability")
	unavailability.GET("", h.Scheduling.ListUnavailability)
	unavailability.POST("", h.Scheduling.CreateUnavailability)
	unavailability.DELETE("/:id", h.Scheduling.DeleteUnavailability)

	announcements := api.Group("announcements", "/announcements")
	announcements.GET("", h.Marketing.ListAnnouncements)
	announcements.POST("", h.Marketing.CreateAnnouncement)
	announcements.PUT("/:id", h.Marketing.UpdateAnnouncement)
	announcements.DELETE("/:id", h.Marketing.DeleteAnnouncement)

	promos := api.Group("promos", "/promos")
	promos.GET("", h.Marketing.ListPromos)
	promos.GET("/active", h.Marketing.ListActivePromos)
	promos.GET("/:id", h.Marketing.GetPromo)
	promos.POST("", h.Marketing.CreatePromo)
	promos.PUT("/:id", h.Marketing.UpdatePromo)
	promos.DELETE("/:id", h.Marketing.DeletePromo)

	analytics := api.Group("analytics", "/analytics")
	analytics.GET("/daily-revenue", h.Analytics.DailyRevenue)
	analytics.GET("/daily-revenue/export", h.Analytics.ExportDailyRevenue)
	analytics.GET("/monthly-revenue", h.Analytics.MonthlyRevenue)
	analytics.GET("/forecast", h.Analytics.Forecast)
	analytics.GET("/top-services", h.Analytics.TopServices)
	analytics.GET("/sales-breakdown", h.Analytics.SalesBreakdown)
	analytics.POST("/refresh", super, h.Analytics.Refresh)

	return api
}
