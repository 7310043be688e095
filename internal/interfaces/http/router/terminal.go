package router

import (
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig configures the local API engine
type EngineConfig struct {
	Logger       *zap.Logger
	Meter        metric.Meter // nil disables request metrics
	AllowOrigins []string
	MaxBodyBytes int64
}

// NewEngine creates a gin engine with the local API middleware chain
func NewEngine(cfg EngineConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.Recovery(cfg.Logger),
		logger.GinMiddleware(cfg.Logger),
		middleware.CORSWithConfig(middleware.DefaultCORSConfig(cfg.AllowOrigins...)),
		middleware.HTTPMetrics(cfg.Meter),
	)
	if cfg.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}
	return engine
}

// TerminalRoutes returns the /terminal route group
func TerminalRoutes(th *handler.TerminalHandler, kh *handler.KeyHandler, rh *handler.ReceiptHandler) *DomainGroup {
	terminal := NewDomainGroup("terminal", "/terminal").Use(middleware.NoStore())

	terminal.GET("/state", th.GetState)
	terminal.POST("/keys", kh.Keys)
	terminal.GET("/keymap", kh.Keymap)
	terminal.POST("/sale/new", th.NewSale)
	terminal.POST("/recovery", th.ResolveRecovery)

	terminal.Group("session", "/session").
		POST("", th.OpenSession).
		POST("/refresh", th.RefreshSession)

	terminal.Group("cart", "/cart").
		DELETE("", th.ClearCart).
		POST("/items", th.AddItem).
		PATCH("/items/:product_id", th.UpdateLine).
		DELETE("/items/:product_id", th.RemoveLine).
		PUT("/discount", th.SetBillDiscount).
		PUT("/notes", th.SetNotes).
		PUT("/customer", th.SetCustomer)

	terminal.GET("/products", th.SearchProducts)
	terminal.Group("customers", "/customers").
		GET("", th.SearchCustomers).
		POST("", th.CreateCustomer)

	terminal.Group("checkout", "/checkout").
		POST("", th.BeginCheckout).
		DELETE("", th.CancelCheckout).
		POST("/tenders", th.AddTender).
		DELETE("/tenders/:index", th.RemoveTender).
		POST("/complete", th.CompleteCheckout)

	terminal.Group("drafts", "/drafts").
		GET("", th.ListDrafts).
		POST("", th.Suspend).
		POST("/:id/resume", th.ResumeDraft)

	terminal.Group("receipt", "/receipt").
		GET("", rh.LastReceipt).
		GET("/print", rh.PrintReceipt)

	return terminal
}
