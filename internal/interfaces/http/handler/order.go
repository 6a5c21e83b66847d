package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/tbeauty/backend/internal/application/order"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/interfaces/http/dto"
	"github.com/tbeauty/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List godoc
// @Summary  List orders
// @Tags     orders
// @Param    status query string false "pending|confirmed|processing|shipped|delivered|cancelled"
// @Param    payment_status query string false "pending|paid|partial|refunded"
// @Param    search query string false "order number, customer name or email"
// @Router   /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderapp.ListFilter
	var page dto.ListRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		h.BindError(c, err)
		return
	}
	filter.Page, filter.PageSize = page.Resolve()

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, "orders", orders, total, filter.Page, filter.PageSize)
}

// Create godoc
// @Summary  Create a pending order
// @Tags     orders
// @Router   /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.Create(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary  Get an order
// @Tags     orders
// @Router   /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

type orderTransition func(ctx context.Context, sess shared.Session, id uuid.UUID) (*orderapp.OrderResponse, error)

func (h *OrderHandler) transition(c *gin.Context, fn orderTransition) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := fn(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Confirm godoc
// @Summary  Confirm a pending order
// @Tags     orders
// @Failure  422 {object} dto.Response "order is not pending"
// @Router   /orders/{id}/confirm [post]
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.transition(c, h.orderService.Confirm)
}

// Cancel godoc
// @Summary  Cancel a pending or confirmed order
// @Tags     orders
// @Param    reason query string true "cancellation reason"
// @Router   /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req orderapp.CancelOrderRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.Reason == "" && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	h.transition(c, func(ctx context.Context, sess shared.Session, id uuid.UUID) (*orderapp.OrderResponse, error) {
		return h.orderService.Cancel(ctx, sess, id, req)
	})
}

// Process moves a confirmed order to processing
func (h *OrderHandler) Process(c *gin.Context) {
	h.transition(c, h.orderService.Process)
}

// Ship moves a processing order to shipped
func (h *OrderHandler) Ship(c *gin.Context) {
	h.transition(c, h.orderService.Ship)
}

// Deliver moves a shipped order to delivered
func (h *OrderHandler) Deliver(c *gin.Context) {
	h.transition(c, h.orderService.Deliver)
}

// UpdateCharges godoc
// @Summary  Replace discount, tax and shipping
// @Tags     orders
// @Router   /orders/{id}/charges [put]
func (h *OrderHandler) UpdateCharges(c *gin.Context) {
	var req orderapp.UpdateChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.transition(c, func(ctx context.Context, sess shared.Session, id uuid.UUID) (*orderapp.OrderResponse, error) {
		return h.orderService.UpdateCharges(ctx, sess, id, req)
	})
}

// AllocateItem reserves quantity of one order line
func (h *OrderHandler) AllocateItem(c *gin.Context) {
	h.itemQuantity(c, h.orderService.AllocateItem)
}

// FulfillItem records shipped quantity of one order line
func (h *OrderHandler) FulfillItem(c *gin.Context) {
	h.itemQuantity(c, h.orderService.FulfillItem)
}

type itemQuantityFunc func(ctx context.Context, sess shared.Session, id, itemID uuid.UUID, req orderapp.ItemQuantityRequest) (*orderapp.OrderResponse, error)

func (h *OrderHandler) itemQuantity(c *gin.Context, fn itemQuantityFunc) {
	itemID, ok := h.pathUUID(c, "item_id")
	if !ok {
		return
	}
	var req orderapp.ItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.transition(c, func(ctx context.Context, sess shared.Session, id uuid.UUID) (*orderapp.OrderResponse, error) {
		return fn(ctx, sess, id, itemID, req)
	})
}
