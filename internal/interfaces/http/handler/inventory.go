package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/tbeauty/backend/internal/application/inventory"
	"github.com/tbeauty/backend/internal/interfaces/http/dto"
	"github.com/tbeauty/backend/internal/interfaces/http/middleware"
)

// InventoryHandler handles stock ledger endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// List godoc
// @Summary  List inventory rows
// @Tags     inventory
// @Param    search query string false "sku, product name, color or shade"
// @Param    low_stock_only query bool false "only rows at or below minimum stock"
// @Param    out_of_stock_only query bool false "only rows with zero stock"
// @Router   /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	var filter inventoryapp.ListFilter
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

	items, total, err := h.inventoryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, "inventory", items, total, filter.Page, filter.PageSize)
}

// Add godoc
// @Summary  Add a stock row
// @Tags     inventory
// @Failure  409 {object} dto.Response "product already stocked at this location"
// @Router   /inventory [post]
func (h *InventoryHandler) Add(c *gin.Context) {
	var req inventoryapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.inventoryService.Add(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Stats returns ledger-wide stock counts and valuation
func (h *InventoryHandler) Stats(c *gin.Context) {
	resp, err := h.inventoryService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetBySKU returns one stock row
func (h *InventoryHandler) GetBySKU(c *gin.Context) {
	resp, err := h.inventoryService.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Edit godoc
// @Summary  Replace the editable fields of a stock row
// @Description  Stock changes made here carry no audit reason; prefer adjust-stock.
// @Tags     inventory
// @Router   /inventory/{sku} [put]
func (h *InventoryHandler) Edit(c *gin.Context) {
	var req inventoryapp.EditItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.inventoryService.Edit(c.Request.Context(), middleware.GetSession(c), c.Param("sku"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a stock row
func (h *InventoryHandler) Delete(c *gin.Context) {
	if err := h.inventoryService.Delete(c.Request.Context(), middleware.GetSession(c), c.Param("sku")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AdjustStock godoc
// @Summary  Set the absolute stock of a SKU
// @Tags     inventory
// @Param    new_quantity query int true "target quantity, >= 0"
// @Param    reason query string true "audit reason"
// @Router   /inventory/{sku}/adjust-stock [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	// query parameters win; a JSON body is accepted for clients that post one
	if req.NewQuantity == nil && req.Reason == "" && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	resp, err := h.inventoryService.AdjustStock(c.Request.Context(), middleware.GetSession(c), c.Param("sku"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Adjustments returns the audit trail of a SKU, newest first
func (h *InventoryHandler) Adjustments(c *gin.Context) {
	var page dto.ListRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.BindError(c, err)
		return
	}
	pageNum, pageSize := page.Resolve()

	adjustments, total, err := h.inventoryService.Adjustments(c.Request.Context(), c.Param("sku"), pageNum, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, "adjustments", adjustments, total, pageNum, pageSize)
}
