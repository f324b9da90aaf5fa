package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"crmcore/internal/domain"
	"crmcore/internal/handler"
	"crmcore/internal/middleware"
	"crmcore/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth              *handler.AuthHandler
	User              *handler.UserHandler
	Customer          *handler.CustomerHandler
	Invoice           *handler.DocumentHandler
	Quotation         *handler.DocumentHandler
	InvoiceDelivery   *handler.DeliveryHandler
	QuotationDelivery *handler.DeliveryHandler
	Payment           *handler.PaymentHandler
	Report            *handler.ReportHandler
	Health            *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(authSvc service.AuthService, h *Handlers, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// User management
	users := protected.Group("/users")
	users.POST("", adminOnly, h.User.Create)
	users.GET("", adminOnly, h.User.List)
	users.GET("/:id", h.User.GetByID)
	users.PUT("/:id", h.User.Update)
	users.DELETE("/:id", adminOnly, h.User.Delete)

	// Customers
	customers := protected.Group("/customers")
	customers.POST("", h.Customer.Create)
	customers.GET("", h.Customer.List)
	customers.GET("/:id", h.Customer.GetByID)
	customers.PUT("/:id", h.Customer.Update)
	customers.DELETE("/:id", adminOnly, h.Customer.Delete)

	// Invoices
	invoices := protected.Group("/invoices")
	mountDocumentRoutes(invoices, h.Invoice, h.InvoiceDelivery, adminOnly)
	invoices.POST("/:id/payments", h.Payment.Record)
	invoices.GET("/:id/payments", h.Payment.List)

	// Quotations
	quotations := protected.Group("/quotations")
	mountDocumentRoutes(quotations, h.Quotation, h.QuotationDelivery, adminOnly)
	quotations.POST("/:id/convert", h.Quotation.Convert)

	// Transactions
	transactions := protected.Group("/transactions")
	transactions.GET("/:id", h.Payment.GetTransaction)
	transactions.PATCH("/:id", adminOnly, h.Payment.Correct)

	// Reports
	reports := protected.Group("/reports")
	reports.GET("/documents.csv", h.Report.DocumentsCSV)
	reports.GET("/documents.xlsx", h.Report.DocumentsXLSX)

	return r
}

func mountDocumentRoutes(g *gin.RouterGroup, docH *handler.DocumentHandler, deliveryH *handler.DeliveryHandler, adminOnly gin.HandlerFunc) {
	g.POST("", docH.Create)
	g.GET("", docH.List)
	g.GET("/:id", docH.GetByID)
	g.PUT("/:id/items", docH.ReplaceItems)
	g.GET("/:id/audit", docH.Audit)
	g.POST("/:id/send", deliveryH.Send)
	g.DELETE("/:id", adminOnly, docH.Delete)
}
