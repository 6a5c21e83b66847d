package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func echo(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body+c.Param("id")+c.Param("item_id"))
	}
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	assert.Empty(t, r.Routes())

	r.Register(NewResource("/orders").GET("/:id", echo("order ")))
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/orders/o-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "order o-1", w.Body.String())
	assert.Equal(t, []string{"GET /api/v1/orders/:id"}, r.Routes())
}

func TestRouter_APIVersion(t *testing.T) {
	engine := gin.New()
	NewRouter(engine, WithAPIVersion("v2")).
		Register(NewResource("/payments").GET("", echo("payments"))).
		Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/payments").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/payments").Code)
}

func TestResource_Methods(t *testing.T) {
	engine := gin.New()
	res := NewResource("/inventory").
		GET("", echo("list")).
		POST("", echo("add")).
		PUT("/:id", echo("edit ")).
		DELETE("/:id", echo("delete "))
	res.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/v1/inventory", "list"},
		{http.MethodPost, "/api/v1/inventory", "add"},
		{http.MethodPut, "/api/v1/inventory/SKU-1", "edit SKU-1"},
		{http.MethodDelete, "/api/v1/inventory/SKU-1", "delete SKU-1"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestResource_Nest(t *testing.T) {
	engine := gin.New()
	orders := NewResource("/orders").GET("/:id", echo("order "))
	orders.Nest("/:id/items").POST("/:item_id/allocate", echo("allocate "))
	orders.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodPost, "/api/v1/orders/o-1/items/i-2/allocate")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "allocate o-1i-2", w.Body.String())

	assert.Equal(t, "order o-1", serve(engine, http.MethodGet, "/api/v1/orders/o-1").Body.String())
}
