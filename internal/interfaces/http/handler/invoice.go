package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoiceapp "github.com/tbeauty/backend/internal/application/invoice"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/interfaces/http/dto"
	"github.com/tbeauty/backend/internal/interfaces/http/middleware"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoiceapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoiceapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List godoc
// @Summary  List invoices
// @Tags     invoices
// @Param    status query string false "draft|sent|paid|overdue"
// @Param    customer_id query int false "customer"
// @Router   /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter invoiceapp.ListFilter
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

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, "invoices", invoices, total, filter.Page, filter.PageSize)
}

// Create godoc
// @Summary  Create a draft invoice
// @Description  Totals are computed from the lines; client totals are ignored.
// @Tags     invoices
// @Router   /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoiceapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.invoiceService.Create(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID returns one invoice
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Send moves a draft invoice to sent
func (h *InvoiceHandler) Send(c *gin.Context) {
	h.transition(c, h.invoiceService.Send)
}

// MarkPaid settles a sent or overdue invoice in full
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	h.transition(c, h.invoiceService.MarkPaid)
}

// MarkOverdue flags a sent invoice as overdue
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	h.transition(c, h.invoiceService.MarkOverdue)
}

func (h *InvoiceHandler) transition(c *gin.Context, fn func(context.Context, shared.Session, uuid.UUID) (*invoiceapp.InvoiceResponse, error)) {
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
