package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GymAurCode/in-ven-tory/internal/apierror"
	"github.com/GymAurCode/in-ven-tory/internal/dto"
	"github.com/GymAurCode/in-ven-tory/internal/middleware"
	"github.com/GymAurCode/in-ven-tory/internal/model"
	"github.com/GymAurCode/in-ven-tory/internal/repository"
	"github.com/GymAurCode/in-ven-tory/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestEngine(store *repository.MemoryStore) *gin.Engine {
	sales := service.NewSaleService(store, store, nil, nil)
	stats := service.NewStatsService(store, store, nil)
	h := NewSalesHandler(sales, stats, "Test Shop")

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	g := r.Group("/api/sales")
	g.GET("", h.ListSales)
	g.GET("/stats", h.GetStats)
	g.GET("/products", h.ProductsForSale)
	g.POST("", h.RecordSale)
	g.GET("/:id", h.GetSale)
	g.GET("/:id/receipt", h.Receipt)
	g.GET("/product/:productId", h.ListByProduct)
	return r
}

func seed(store *repository.MemoryStore, stock int) model.Product {
	return store.PutProduct(model.Product{
		Name:           "Widget",
		SellingPrice:   decimal.NewFromInt(25),
		CostPrice:      decimal.NewFromInt(10),
		QuantityOnHand: stock,
	})
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) apierror.APIError {
	t.Helper()
	var e apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestRecordSale_Created(t *testing.T) {
	store := repository.NewMemoryStore()
	p := seed(store, 10)
	r := newTestEngine(store)

	w := do(r, http.MethodPost, "/api/sales", gin.H{"product_id": p.ID.String(), "quantity": 3, "description": "walk-in"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.RecordSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Sale completed successfully", resp.Message)
	assert.True(t, resp.IncomeGenerated.Equal(decimal.NewFromInt(75)))
	assert.True(t, resp.CostRecorded.Equal(decimal.NewFromInt(30)))
	assert.True(t, resp.ProfitGenerated.Equal(decimal.NewFromInt(45)))
	assert.Equal(t, 7, resp.StockRemaining)
	assert.Equal(t, "Widget", resp.Sale.ProductName)
	require.NotNil(t, resp.Sale.Description)
	assert.Equal(t, "walk-in", *resp.Sale.Description)
}

func TestRecordSale_BadRequests(t *testing.T) {
	store := repository.NewMemoryStore()
	p := seed(store, 2)
	r := newTestEngine(store)

	cases := []struct {
		name   string
		body   interface{}
		status int
		code   string
		detail string
	}{
		{"missing fields", gin.H{}, http.StatusBadRequest, apierror.CodeInvalidRequest, "Product ID and quantity are required"},
		{"zero quantity", gin.H{"product_id": p.ID.String(), "quantity": 0}, http.StatusBadRequest, apierror.CodeInvalidRequest, "Quantity must be greater than 0"},
		{"malformed id", gin.H{"product_id": "nope", "quantity": 1}, http.StatusBadRequest, apierror.CodeInvalidRequest, "Product ID is not a valid identifier"},
		{"unknown product", gin.H{"product_id": uuid.NewString(), "quantity": 1}, http.StatusNotFound, apierror.CodeNotFound, "Product not found"},
		{"too many", gin.H{"product_id": p.ID.String(), "quantity": 5}, http.StatusBadRequest, apierror.CodeInsufficientStock, "Insufficient stock. Available: 2, Requested: 5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/sales", tc.body)
			assert.Equal(t, tc.status, w.Code)
			e := decodeAPIError(t, w)
			assert.Equal(t, tc.code, e.Code)
			assert.Equal(t, tc.detail, e.Detail)
		})
	}

	w := do(r, http.MethodPost, "/api/sales", gin.H{"product_id": p.ID.String(), "quantity": 5})
	e := decodeAPIError(t, w)
	require.NotNil(t, e.Available)
	require.NotNil(t, e.Requested)
	assert.Equal(t, 2, *e.Available)
	assert.Equal(t, 5, *e.Requested)
}

func TestRecordSale_InvalidJSON(t *testing.T) {
	r := newTestEngine(repository.NewMemoryStore())
	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordSale_StorageFailureIs500(t *testing.T) {
	store := repository.NewMemoryStore()
	p := seed(store, 5)
	store.FailOn(repository.StepInsertIncome, errors.New("connection reset by peer"))
	r := newTestEngine(store)

	w := do(r, http.MethodPost, "/api/sales", gin.H{"product_id": p.ID.String(), "quantity": 1})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")

	stock, err := store.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stock.QuantityOnHand)
}

func TestListAndGetSale(t *testing.T) {
	store := repository.NewMemoryStore()
	p := seed(store, 10)
	other := seed(store, 10)
	r := newTestEngine(store)

	w := do(r, http.MethodPost, "/api/sales", gin.H{"product_id": p.ID.String(), "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.RecordSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/sales", gin.H{"product_id": other.ID.String(), "quantity": 2}).Code)

	var list dto.SaleListResponse
	w = do(r, http.MethodGet, "/api/sales", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Sales, 2)

	w = do(r, http.MethodGet, "/api/sales/product/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Sales, 1)
	assert.Equal(t, created.Sale.ID, list.Sales[0].ID)

	w = do(r, http.MethodGet, "/api/sales?product_id=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var detail dto.SaleDetailResponse
	w = do(r, http.MethodGet, "/api/sales/"+created.Sale.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, 1, detail.Sale.Quantity)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/sales/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/sales/not-a-uuid", nil).Code)
}

func TestStatsAndProducts(t *testing.T) {
	store := repository.NewMemoryStore()
	p := seed(store, 4)
	store.PutProduct(model.Product{Name: "Sold out", SellingPrice: decimal.NewFromInt(1), CostPrice: decimal.NewFromInt(1)})
	r := newTestEngine(store)

	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/sales", gin.H{"product_id": p.ID.String(), "quantity": 4}).Code)

	var stats dto.SalesStatsResponse
	w := do(r, http.MethodGet, "/api/sales/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.TotalSales)
	assert.EqualValues(t, 4, stats.TotalQuantitySold)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(100)))
	assert.Len(t, stats.RecentSales, 1)

	var products dto.ProductsForSaleResponse
	w = do(r, http.MethodGet, "/api/sales/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Empty(t, products.Products)
}

func TestReceipt(t *testing.T) {
	store := repository.NewMemoryStore()
	p := seed(store, 3)
	sale := store.PutSale(model.Sale{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    1,
		UnitPrice:   p.SellingPrice,
		TotalPrice:  p.SellingPrice,
	})
	r := newTestEngine(store)

	w := do(r, http.MethodGet, "/api/sales/"+sale.ID.String()+"/receipt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/sales/"+uuid.NewString()+"/receipt", nil).Code)
}
