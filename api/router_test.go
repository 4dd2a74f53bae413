package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"retail_sales/internal/money"
	"retail_sales/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type capturePublisher struct {
	events []sales.Event
}

func (p *capturePublisher) Publish(_ context.Context, e sales.Event) error {
	p.events = append(p.events, e)
	return nil
}

func initRoutesTests(t *testing.T) (*gin.Engine, *capturePublisher) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	logger := zaptest.NewLogger(t)
	publisher := &capturePublisher{}
	svc := sales.NewService(sales.NewLocalStorage(), publisher, logger)
	InitRoutes(router, svc, logger)

	return router, publisher
}

type envelope[T any] struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    T             `json:"data"`
	Errors  []errorDetail `json:"errors"`
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createBody(customerID, branchID string, items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"customer_id":   customerID,
		"customer_name": "Alice",
		"branch_id":     branchID,
		"branch_name":   "Main",
		"items":         items,
	}
}

func item(quantity int, unitPrice interface{}) map[string]interface{} {
	return map[string]interface{}{
		"product_id":   uuid.NewString(),
		"product_name": "Widget",
		"quantity":     quantity,
		"unit_price":   unitPrice,
	}
}

// TestSalesHappyPath_FullFlow prueba el flujo completo de POST -> GET -> cancel -> search.
func TestSalesHappyPath_FullFlow(t *testing.T) {
	router, publisher := initRoutesTests(t)
	customerID := uuid.NewString()

	var saleID string

	t.Run("POST_CreateSale", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/sales", createBody(customerID, uuid.NewString(), item(5, 10.00), item(12, "3.00")))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[createSaleResponse](t, w)
		assert.True(t, resp.Success)
		assert.NotEqual(t, uuid.Nil, resp.Data.SaleID)
		assert.Regexp(t, `^\d{8}-[0-9A-F]{8}$`, resp.Data.SaleNumber)
		assert.Equal(t, "73.80", resp.Data.TotalAmount.String())
		assert.Contains(t, w.Body.String(), `"total_amount":73.80`)

		saleID = resp.Data.SaleID.String()
	})

	if saleID == "" {
		t.Fatal("Sale ID was not successfully generated in POST_CreateSale step.")
	}
	require.Len(t, publisher.events, 1)
	assert.Equal(t, sales.EventSaleCreated, publisher.events[0].Type)

	t.Run("GET_SaleByID", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/sales/"+saleID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[saleResponse](t, w)
		assert.Equal(t, saleID, resp.Data.ID.String())
		assert.Equal(t, "Alice", resp.Data.CustomerName)
		assert.Equal(t, "Main", resp.Data.BranchName)
		assert.False(t, resp.Data.IsCancelled)
		require.Len(t, resp.Data.Items, 2)
		assert.Equal(t, 0.1, resp.Data.Items[0].Discount)
		assert.Equal(t, "45.00", resp.Data.Items[0].TotalPrice.String())
		assert.Equal(t, 0.2, resp.Data.Items[1].Discount)
		assert.Equal(t, "28.80", resp.Data.Items[1].TotalPrice.String())
	})

	t.Run("POST_CancelSale", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, fmt.Sprintf("/sales/%s/cancel", saleID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[saleResponse](t, w)
		assert.True(t, resp.Data.IsCancelled)

		w = doJSON(router, http.MethodPost, fmt.Sprintf("/sales/%s/cancel", saleID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		errResp := decode[json.RawMessage](t, w)
		require.Len(t, errResp.Errors, 1)
		assert.Equal(t, "DomainRule", errResp.Errors[0].Error)
	})

	t.Run("GET_SearchSales", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/sales?customer_id="+customerID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[searchSalesResponse](t, w)
		require.Len(t, resp.Data.Results, 1)
		assert.Equal(t, saleID, resp.Data.Results[0].ID.String())
		assert.Equal(t, 1, resp.Data.Metadata.Quantity)
		assert.Equal(t, 1, resp.Data.Metadata.Cancelled)
		assert.Equal(t, 0, resp.Data.Metadata.Active)
		assert.True(t, money.MustParse("73.80").Equal(resp.Data.Metadata.TotalAmount))

		w = doJSON(router, http.MethodGet, "/sales?state=active", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[searchSalesResponse](t, w).Data.Results)
	})
}

func TestCreateSale_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantDetail string
	}{
		{
			name:       "empty customer",
			body:       createBody("", uuid.NewString(), item(1, 1)),
			wantStatus: http.StatusBadRequest,
			wantDetail: "Customer ID is required.",
		},
		{
			name:       "malformed customer",
			body:       createBody("not-a-uuid", uuid.NewString(), item(1, 1)),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "quantity above limit",
			body:       createBody(uuid.NewString(), uuid.NewString(), item(21, 1)),
			wantStatus: http.StatusBadRequest,
			wantDetail: "cannot sell more than 20 units of the same item in a single transaction",
		},
		{
			name:       "zero quantity",
			body:       createBody(uuid.NewString(), uuid.NewString(), item(0, 1)),
			wantStatus: http.StatusBadRequest,
			wantDetail: "Quantity must be greater than zero.",
		},
		{
			name:       "no items",
			body:       createBody(uuid.NewString(), uuid.NewString()),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, publisher := initRoutesTests(t)

			w := doJSON(router, http.MethodPost, "/sales", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			resp := decode[json.RawMessage](t, w)
			assert.False(t, resp.Success)
			require.NotEmpty(t, resp.Errors)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, resp.Errors[0].Detail)
			}
			assert.Empty(t, publisher.events)
		})
	}
}

func TestGetSale_NotFoundAndBadID(t *testing.T) {
	router, _ := initRoutesTests(t)

	w := doJSON(router, http.MethodGet, "/sales/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/sales/xyz", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchSales_InvalidState(t *testing.T) {
	router, _ := initRoutesTests(t)

	w := doJSON(router, http.MethodGet, "/sales?state=pending", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPing(t *testing.T) {
	router, _ := initRoutesTests(t)

	w := doJSON(router, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
