package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	inventoryapp "github.com/tbeauty/backend/internal/application/inventory"
	invoiceapp "github.com/tbeauty/backend/internal/application/invoice"
	orderapp "github.com/tbeauty/backend/internal/application/order"
	paymentapp "github.com/tbeauty/backend/internal/application/payment"
	"github.com/tbeauty/backend/internal/domain/catalog"
	"github.com/tbeauty/backend/internal/infrastructure/auth"
	"github.com/tbeauty/backend/internal/infrastructure/config"
	"github.com/tbeauty/backend/internal/infrastructure/lock"
	"github.com/tbeauty/backend/internal/infrastructure/persistence"
	"github.com/tbeauty/backend/internal/infrastructure/persistence/models"
	"github.com/tbeauty/backend/internal/interfaces/http/handler"
	"github.com/tbeauty/backend/internal/interfaces/http/middleware"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field  string `json:"field"`
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

type apiServer struct {
	t      *testing.T
	engine *gin.Engine
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.ProductModel{},
		&models.CustomerModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.InventoryItemModel{},
		&models.StockAdjustmentModel{},
		&models.PaymentModel{},
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
	))
	return db
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	db := openTestDB(t)
	ctx := context.Background()
	cat := persistence.NewGormCatalogRepository(db)
	require.NoError(t, cat.UpsertProducts(ctx, []catalog.Product{
		{ID: 1, Name: "Velvet Matte Lipstick", Brand: catalog.InlineRef(3, "Luxe"), Category: catalog.InlineRef(4, "Lips"), IsActive: true},
		{ID: 2, Name: "Hydrating Primer", IsActive: true},
	}))
	require.NoError(t, cat.UpsertCustomers(ctx, []catalog.Customer{{ID: 1, Name: "Ngozi Obi", Email: "ngozi@example.com"}}))

	locker := lock.NewLocalLocker(time.Second)
	orders := persistence.NewGormOrderRepository(db)
	payments := persistence.NewGormPaymentRepository(db)

	inventoryService := inventoryapp.NewInventoryService(persistence.NewGormInventoryRepository(db), cat, locker, nil)
	orderService := orderapp.NewOrderService(orders, cat, cat, inventoryService, locker, nil)
	paymentService := paymentapp.NewPaymentService(payments, orders, locker, nil)
	invoiceService := invoiceapp.NewInvoiceService(persistence.NewGormInvoiceRepository(db), cat, orders, payments, locker, nil)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Session(middleware.SessionConfig{
		Tokens: auth.NewSessionTokens(config.SessionConfig{JWTSecret: "api-test-secret-of-32-characters"}),
	}))
	database, err := persistence.Wrap(db)
	require.NoError(t, err)
	system := handler.NewSystemHandler(database, "test")
	r := NewRouter(engine)
	r.Register(APIGroups(Handlers{
		Order:     handler.NewOrderHandler(orderService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Payment:   handler.NewPaymentHandler(paymentService, invoiceService),
		Invoice:   handler.NewInvoiceHandler(invoiceService),
		System:    system,
	})...)
	r.Setup()
	MountOperational(engine, system, nil)

	return &apiServer{t: t, engine: engine}
}

func (s *apiServer) do(method, path string, body any) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.UserIDHeader, "u-9")
	req.Header.Set(middleware.UserNameHeader, "amaka")

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNoContent && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type orderView struct {
	ID            string `json:"id"`
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	CreatedBy     string `json:"created_by"`
	TotalAmount   string `json:"total_amount"`
	Items         []struct {
		ID string `json:"id"`
	} `json:"items"`
}

func (s *apiServer) createOrder() orderView {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/orders", gin.H{
		"customer_id": 1,
		"items": []gin.H{
			{"product_id": 1, "quantity": 2, "unit_price": "15.50"},
		},
	})
	require.Equal(s.t, http.StatusCreated, code)
	return decodeData[orderView](s.t, env)
}

func TestAPI_Routes(t *testing.T) {
	s := newAPIServer(t)
	routes := NewRouter(s.engine).Routes()
	assert.Contains(t, routes, "POST /api/v1/inventory/:sku/adjust-stock")
	assert.Contains(t, routes, "POST /api/v1/payments/:id/invoice")
	assert.Contains(t, routes, "POST /api/v1/orders/:id/items/:item_id/fulfill")
	assert.Contains(t, routes, "GET /health")
	assert.NotContains(t, routes, "GET /metrics")
}

func TestAPI_OrderLifecycle(t *testing.T) {
	s := newAPIServer(t)
	created := s.createOrder()
	assert.True(t, strings.HasPrefix(created.OrderNumber, "SO-"))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "amaka", created.CreatedBy)

	base := "/api/v1/orders/" + created.ID

	code, env := s.do(http.MethodPost, base+"/confirm", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "confirmed", decodeData[orderView](t, env).Status)

	t.Run("confirming twice is an invalid state", func(t *testing.T) {
		code, env := s.do(http.MethodPost, base+"/confirm", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_INVALID_STATE", env.Error.Code)
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		code, env := s.do(http.MethodPost, base+"/cancel", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_VALIDATION", env.Error.Code)
		assert.Equal(t, "reason is required", env.Error.Message)
	})

	t.Run("allocate then fulfill a line", func(t *testing.T) {
		itemPath := base + "/items/" + created.Items[0].ID
		code, _ := s.do(http.MethodPost, itemPath+"/allocate", gin.H{"quantity": 2})
		assert.Equal(t, http.StatusOK, code)
		code, env := s.do(http.MethodPost, itemPath+"/fulfill", gin.H{"quantity": 0})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "quantity is required", env.Error.Message)
	})

	t.Run("cancel with a query reason", func(t *testing.T) {
		code, env := s.do(http.MethodPost, base+"/cancel?reason=customer+request", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "cancelled", decodeData[orderView](t, env).Status)
	})

	t.Run("list", func(t *testing.T) {
		code, env := s.do(http.MethodGet, "/api/v1/orders?status=cancelled&page=1&size=10", nil)
		require.Equal(t, http.StatusOK, code)
		list := decodeData[struct {
			Orders []orderView `json:"orders"`
			Total  int64       `json:"total"`
		}](t, env)
		assert.Equal(t, int64(1), list.Total)
		require.Len(t, list.Orders, 1)
		assert.Equal(t, created.ID, list.Orders[0].ID)
		require.NotNil(t, env.Meta)
		assert.Equal(t, 10, env.Meta.PageSize)
	})
}

func TestAPI_OrderErrors(t *testing.T) {
	s := newAPIServer(t)

	t.Run("missing customer and items", func(t *testing.T) {
		code, env := s.do(http.MethodPost, "/api/v1/orders", gin.H{})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		require.NotNil(t, env.Error)
		fields := make([]string, len(env.Error.Details))
		for i, d := range env.Error.Details {
			fields[i] = d.Field
		}
		assert.ElementsMatch(t, []string{"customer_id", "items"}, fields)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		code, env := s.do(http.MethodGet, "/api/v1/orders?status=archived", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, "status is not a valid order status", env.Error.Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		code, env := s.do(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "ERR_BAD_REQUEST", env.Error.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		code, env := s.do(http.MethodGet, "/api/v1/orders/00000000-0000-0000-0000-000000000001", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

type itemView struct {
	SKU          string `json:"sku"`
	CurrentStock int    `json:"current_stock"`
	StockStatus  string `json:"stock_status"`
	Product      *struct {
		Name string `json:"name"`
	} `json:"product"`
}

func TestAPI_Inventory(t *testing.T) {
	s := newAPIServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/inventory", gin.H{
		"product_id":    1,
		"location":      "main_warehouse",
		"current_stock": 10,
		"minimum_stock": 5,
		"cost_price":    "4.00",
		"selling_price": "15.50",
	})
	require.Equal(t, http.StatusCreated, code)
	item := decodeData[itemView](t, env)
	require.NotEmpty(t, item.SKU)
	assert.Equal(t, "in_stock", item.StockStatus)
	base := "/api/v1/inventory/" + item.SKU

	t.Run("one row per product", func(t *testing.T) {
		code, env := s.do(http.MethodPost, "/api/v1/inventory", gin.H{"product_id": 1, "location": "retail_store"})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "ERR_CONFLICT", env.Error.Code)
	})

	t.Run("unknown location", func(t *testing.T) {
		code, env := s.do(http.MethodPost, "/api/v1/inventory", gin.H{"product_id": 2, "location": "garage"})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, "location is not a valid location", env.Error.Message)
	})

	t.Run("adjust stock is an absolute set and idempotent", func(t *testing.T) {
		for i, wantChanged := range []bool{true, false} {
			code, env := s.do(http.MethodPost, base+"/adjust-stock?new_quantity=3&reason=damaged+in+transit", nil)
			require.Equal(t, http.StatusOK, code, "attempt %d", i)
			resp := decodeData[struct {
				Item       itemView `json:"item"`
				Adjustment struct {
					PreviousQuantity int  `json:"previous_quantity"`
					NewQuantity      int  `json:"new_quantity"`
					Changed          bool `json:"changed"`
				} `json:"adjustment"`
			}](t, env)
			assert.Equal(t, 3, resp.Item.CurrentStock)
			assert.Equal(t, "low_stock", resp.Item.StockStatus)
			assert.Equal(t, 3, resp.Adjustment.NewQuantity)
			assert.Equal(t, wantChanged, resp.Adjustment.Changed)
		}
	})

	t.Run("adjust stock accepts a json body", func(t *testing.T) {
		code, env := s.do(http.MethodPost, base+"/adjust-stock", gin.H{"new_quantity": 0, "reason": "sold out at fair"})
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(env.Data), `"out_of_stock"`)
	})

	t.Run("adjust stock rejects bad input", func(t *testing.T) {
		code, env := s.do(http.MethodPost, base+"/adjust-stock?new_quantity=4", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, "reason is required", env.Error.Message)

		code, env = s.do(http.MethodPost, base+"/adjust-stock?new_quantity=-1&reason=x", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, "new_quantity is negative", env.Error.Message)

		code, _ = s.do(http.MethodPost, base+"/adjust-stock?new_quantity=many&reason=x", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("audit trail", func(t *testing.T) {
		code, env := s.do(http.MethodGet, base+"/adjustments", nil)
		require.Equal(t, http.StatusOK, code)
		trail := decodeData[struct {
			Adjustments []struct {
				NewQuantity int    `json:"new_quantity"`
				Actor       string `json:"actor"`
			} `json:"adjustments"`
			Total int64 `json:"total"`
		}](t, env)
		assert.Equal(t, int64(3), trail.Total)
		require.Len(t, trail.Adjustments, 3)
		quantities := make([]int, len(trail.Adjustments))
		for i, adj := range trail.Adjustments {
			quantities[i] = adj.NewQuantity
			assert.Equal(t, "amaka", adj.Actor)
		}
		assert.ElementsMatch(t, []int{3, 3, 0}, quantities)
	})

	t.Run("list and stats", func(t *testing.T) {
		code, env := s.do(http.MethodGet, "/api/v1/inventory?out_of_stock_only=true", nil)
		require.Equal(t, http.StatusOK, code)
		list := decodeData[struct {
			Inventory []itemView `json:"inventory"`
			Total     int64      `json:"total"`
		}](t, env)
		require.Len(t, list.Inventory, 1)
		require.NotNil(t, list.Inventory[0].Product)
		assert.Equal(t, "Velvet Matte Lipstick", list.Inventory[0].Product.Name)

		code, env = s.do(http.MethodGet, "/api/v1/inventory/stats", nil)
		require.Equal(t, http.StatusOK, code)
		stats := decodeData[struct {
			TotalItems int64 `json:"total_items"`
			OutOfStock int64 `json:"out_of_stock"`
		}](t, env)
		assert.Equal(t, int64(1), stats.TotalItems)
		assert.Equal(t, int64(1), stats.OutOfStock)
	})

	t.Run("delete", func(t *testing.T) {
		code, _ := s.do(http.MethodDelete, base, nil)
		assert.Equal(t, http.StatusNoContent, code)
		code, _ = s.do(http.MethodGet, base, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestAPI_PaymentToInvoice(t *testing.T) {
	s := newAPIServer(t)
	o := s.createOrder()

	code, env := s.do(http.MethodPost, "/api/v1/payments", gin.H{
		"order_id":       o.ID,
		"amount":         "31.00",
		"payment_method": "bank_transfer",
		"bank_name":      "First Bank",
	})
	require.Equal(t, http.StatusCreated, code)
	pay := decodeData[struct {
		ID         string `json:"id"`
		Reference  string `json:"payment_reference"`
		IsVerified bool   `json:"is_verified"`
	}](t, env)
	assert.True(t, strings.HasPrefix(pay.Reference, "PAY-"))
	assert.False(t, pay.IsVerified)

	paymentPath := "/api/v1/payments/" + pay.ID

	t.Run("unverified payments cannot be invoiced", func(t *testing.T) {
		code, env := s.do(http.MethodPost, paymentPath+"/invoice", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, "ERR_INVALID_STATE", env.Error.Code)
	})

	code, env = s.do(http.MethodPost, paymentPath+"/verify", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"is_verified":true`)

	type invoiceView struct {
		ID            string `json:"id"`
		InvoiceNumber string `json:"invoice_number"`
		Status        string `json:"status"`
		TotalAmount   string `json:"total_amount"`
		AmountPaid    string `json:"amount_paid"`
	}

	code, env = s.do(http.MethodPost, paymentPath+"/invoice", nil)
	require.Equal(t, http.StatusCreated, code)
	inv := decodeData[invoiceView](t, env)
	assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "INV-"))
	assert.Equal(t, "draft", inv.Status)

	t.Run("deriving again returns the same invoice", func(t *testing.T) {
		code, env := s.do(http.MethodPost, paymentPath+"/invoice", nil)
		require.Equal(t, http.StatusCreated, code)
		assert.Equal(t, inv.InvoiceNumber, decodeData[invoiceView](t, env).InvoiceNumber)
	})

	invoicePath := "/api/v1/invoices/" + inv.ID
	for _, step := range []struct{ action, status string }{
		{"send", "sent"},
		{"mark-overdue", "overdue"},
		{"mark-paid", "paid"},
	} {
		code, env := s.do(http.MethodPost, invoicePath+"/"+step.action, nil)
		require.Equal(t, http.StatusOK, code, step.action)
		assert.Equal(t, step.status, decodeData[invoiceView](t, env).Status)
	}

	code, env = s.do(http.MethodGet, invoicePath, nil)
	require.Equal(t, http.StatusOK, code)
	paid := decodeData[invoiceView](t, env)
	assert.Equal(t, paid.TotalAmount, paid.AmountPaid)

	code, env = s.do(http.MethodPost, invoicePath+"/send", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "ERR_INVALID_STATE", env.Error.Code)

	t.Run("list payments and invoices", func(t *testing.T) {
		code, env := s.do(http.MethodGet, "/api/v1/payments?is_verified=true&payment_method=bank_transfer", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(env.Data), `"total":1`)

		code, env = s.do(http.MethodGet, "/api/v1/invoices?status=paid", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(env.Data), `"total":1`)

		code, _ = s.do(http.MethodGet, "/api/v1/payments?payment_method=cheque", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
	})
}

func TestAPI_CreateInvoice(t *testing.T) {
	s := newAPIServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/invoices", gin.H{
		"customer_id": 1,
		"description": "Bridal makeup kit",
		"tax_amount":  "1.50",
		"items": []gin.H{
			{"description": "Lipstick", "quantity": 2, "unit_price": "10.00"},
			{"description": "Primer", "quantity": 1, "unit_price": "8.50"},
		},
	})
	require.Equal(t, http.StatusCreated, code, string(env.Data))
	assert.Contains(t, string(env.Data), `"total_amount":"30`)
}

func TestAPI_Health(t *testing.T) {
	s := newAPIServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}
