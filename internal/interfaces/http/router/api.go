package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tbeauty/backend/internal/interfaces/http/handler"
)

// Handlers bundles the handlers served by the API
type Handlers struct {
	Order     *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Payment   *handler.PaymentHandler
	Invoice   *handler.InvoiceHandler
	System    *handler.SystemHandler
}

// APIGroups returns the versioned resource groups
func APIGroups(h Handlers) []RouteRegistrar {
	orders := NewResource("/orders").
		GET("", h.Order.List).
		POST("", h.Order.Create).
		GET("/:id", h.Order.GetByID).
		POST("/:id/confirm", h.Order.Confirm).
		POST("/:id/cancel", h.Order.Cancel).
		POST("/:id/process", h.Order.Process).
		POST("/:id/ship", h.Order.Ship).
		POST("/:id/deliver", h.Order.Deliver).
		PUT("/:id/charges", h.Order.UpdateCharges)
	orders.Nest("/:id/items").
		POST("/:item_id/allocate", h.Order.AllocateItem).
		POST("/:item_id/fulfill", h.Order.FulfillItem)

	inventory := NewResource("/inventory").
		GET("", h.Inventory.List).
		POST("", h.Inventory.Add).
		GET("/stats", h.Inventory.Stats).
		GET("/:sku", h.Inventory.GetBySKU).
		PUT("/:sku", h.Inventory.Edit).
		DELETE("/:sku", h.Inventory.Delete).
		POST("/:sku/adjust-stock", h.Inventory.AdjustStock).
		GET("/:sku/adjustments", h.Inventory.Adjustments)

	payments := NewResource("/payments").
		GET("", h.Payment.List).
		POST("", h.Payment.Record).
		GET("/:id", h.Payment.GetByID).
		POST("/:id/verify", h.Payment.Verify).
		POST("/:id/invoice", h.Payment.DeriveInvoice)

	invoices := NewResource("/invoices").
		GET("", h.Invoice.List).
		POST("", h.Invoice.Create).
		GET("/:id", h.Invoice.GetByID).
		POST("/:id/send", h.Invoice.Send).
		POST("/:id/mark-paid", h.Invoice.MarkPaid).
		POST("/:id/mark-overdue", h.Invoice.MarkOverdue)

	registrars := []RouteRegistrar{orders, inventory, payments, invoices}
	if h.System != nil {
		registrars = append(registrars, NewResource("/system").GET("/info", h.System.Info))
	}
	return registrars
}

// MountOperational registers the unversioned /health and /metrics endpoints.
// metrics may be nil.
func MountOperational(engine *gin.Engine, system *handler.SystemHandler, metrics http.Handler) {
	engine.GET("/health", system.Health)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics))
	}
}
