// Package models contains the GORM persistence models. Domain aggregates
// carry no ORM tags; each model converts with ToDomain / FromDomain.
//
// Tables:
//   - orders, order_items: order aggregate (order.go)
//   - inventory_items, stock_adjustments: stock ledger (inventory.go)
//   - payments: payment aggregate (payment.go)
//   - invoices, invoice_items: invoice snapshots (invoice.go)
//   - products, customers: read-only catalog projection (catalog.go)
package models
