package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// AddInventory creates a stock row. existing is the caller's current view of
// the inventory; a product already present there is rejected locally.
func (c *Client) AddInventory(ctx context.Context, s Session, req AddInventoryRequest, existing []InventoryItem) (*InventoryItem, error) {
	for _, item := range existing {
		if item.ProductID == req.ProductID {
			return nil, illegal("add inventory", "Product %d already has an inventory record (%s)", req.ProductID, item.SKU)
		}
	}

	raw, err := c.do(ctx, s, request{method: http.MethodPost, path: "/inventory", body: req})
	if err != nil {
		return nil, err
	}
	var item InventoryItem
	if err := decodeInto(raw, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListInventory returns one page of stock rows
func (c *Client) ListInventory(ctx context.Context, s Session, f InventoryFilter) (*Page[InventoryItem], error) {
	q := pageQuery(url.Values{}, f.Page, f.Size)
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Brand != "" {
		q.Set("brand", f.Brand)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.LowStockOnly {
		q.Set("low_stock_only", "true")
	}
	if f.OutOfStockOnly {
		q.Set("out_of_stock_only", "true")
	}

	raw, err := c.do(ctx, s, request{method: http.MethodGet, path: "/inventory", query: q})
	if err != nil {
		return nil, err
	}
	return decodeList[InventoryItem](raw, "inventory")
}

// AdjustStock sets the stock of sku to newQuantity, recording reason
func (c *Client) AdjustStock(ctx context.Context, s Session, sku string, newQuantity int, reason string) (*AdjustStockResult, error) {
	if newQuantity < 0 {
		return nil, illegal("adjust stock", "Stock quantity cannot be negative")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, illegal("adjust stock", "A reason is required to adjust stock")
	}

	q := url.Values{}
	q.Set("new_quantity", strconv.Itoa(newQuantity))
	q.Set("reason", reason)
	raw, err := c.do(ctx, s, request{
		method: http.MethodPost,
		path:   "/inventory/" + sku + "/adjust-stock",
		query:  q,
	})
	if err != nil {
		return nil, err
	}
	var out AdjustStockResult
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InventoryStats returns the stock summary
func (c *Client) InventoryStats(ctx context.Context, s Session) (*InventoryStats, error) {
	raw, err := c.do(ctx, s, request{method: http.MethodGet, path: "/inventory/stats"})
	if err != nil {
		return nil, err
	}
	var stats InventoryStats
	if err := decodeInto(raw, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
