package handler

import (
	"github.com/gin-gonic/gin"
	invoiceapp "github.com/tbeauty/backend/internal/application/invoice"
	paymentapp "github.com/tbeauty/backend/internal/application/payment"
	"github.com/tbeauty/backend/internal/interfaces/http/dto"
	"github.com/tbeauty/backend/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
	invoiceService *invoiceapp.InvoiceService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.PaymentService, invoiceService *invoiceapp.InvoiceService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		invoiceService: invoiceService,
	}
}

// List godoc
// @Summary  List payments
// @Tags     payments
// @Param    payment_method query string false "cash|bank_transfer|pos|mobile_money"
// @Param    is_verified query bool false "verification state"
// @Param    date_range query string false "YYYY-MM-DD,YYYY-MM-DD"
// @Router   /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var filter paymentapp.ListFilter
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

	payments, total, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, "payments", payments, total, filter.Page, filter.PageSize)
}

// Record godoc
// @Summary  Record an unverified payment
// @Tags     payments
// @Router   /payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	var req paymentapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.paymentService.Record(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID returns one payment
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Verify godoc
// @Summary  Verify a payment
// @Description  Verifying an already verified payment returns it unchanged.
// @Tags     payments
// @Router   /payments/{id}/verify [post]
func (h *PaymentHandler) Verify(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.paymentService.Verify(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeriveInvoice godoc
// @Summary  Derive an invoice from a verified payment
// @Tags     payments
// @Failure  422 {object} dto.Response "payment is not verified"
// @Router   /payments/{id}/invoice [post]
func (h *PaymentHandler) DeriveInvoice(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.invoiceService.DeriveFromPayment(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
