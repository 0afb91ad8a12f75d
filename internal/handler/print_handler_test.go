// internal/handler/print_handler_test.go
package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"print-service/internal/receipt"
	"print-service/internal/transport"
)

type recordingRenderer struct {
	calls int
	fail  error
}

func (r *recordingRenderer) Print(ctx context.Context, sale *receipt.Sale, opts *receipt.Options) error {
	r.calls++
	return r.fail
}

func newTestRouter(t *testing.T, renderer *recordingRenderer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	printer := transport.NewService(&transport.Config{
		ConnectionType: transport.ConnectionFallback,
	}, zap.NewNop())
	printer.SetRenderer(renderer)

	h := NewPrintHandler(printer, nil, receipt.DefaultOptions(), zap.NewNop())

	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func saleBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"sale": receipt.Sale{
			ID:            uuid.New(),
			OrderNumber:   301,
			SaleType:      receipt.SaleTypeRetail,
			PaymentMethod: receipt.PaymentCash,
			Items: []receipt.SaleItem{
				{Name: "Paracetamol 500mg", Quantity: 1, Price: decimal.NewFromInt(25)},
			},
			CreatedAt: time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	return body
}

func TestPrintReceiptEndpoint(t *testing.T) {
	renderer := &recordingRenderer{}
	router := newTestRouter(t, renderer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/print/receipt", bytes.NewReader(saleBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, renderer.calls)

	var result transport.PrintResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
}

func TestPrintReceiptRejectsEmptyItems(t *testing.T) {
	renderer := &recordingRenderer{}
	router := newTestRouter(t, renderer)

	body, err := json.Marshal(map[string]interface{}{
		"sale": map[string]interface{}{
			"id":             uuid.New(),
			"order_number":   1,
			"sale_type":      "retail",
			"payment_method": "CASH",
			"items":          []interface{}{},
		},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/print/receipt", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, renderer.calls)
}

func TestPrintRawNotSupportedOnFallback(t *testing.T) {
	router := newTestRouter(t, &recordingRenderer{})

	body, err := json.Marshal(PrintRawRequest{
		Data: base64.StdEncoding.EncodeToString([]byte{0x1B, 0x40}),
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/print/raw", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)

	var result transport.PrintResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.Error)
	assert.Equal(t, transport.ErrNotImplemented, result.Error.Code)
}

func TestPrintRawRejectsBadBase64(t *testing.T) {
	router := newTestRouter(t, &recordingRenderer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/print/raw",
		bytes.NewReader([]byte(`{"data":"not-base64!!"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewReturnsBase64Buffer(t *testing.T) {
	renderer := &recordingRenderer{}
	router := newTestRouter(t, renderer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/print/preview", bytes.NewReader(saleBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, renderer.calls, "preview must not touch the printer")

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Data      string `json:"data"`
			ByteCount int    `json:"byte_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)

	decoded, err := base64.StdEncoding.DecodeString(response.Data.Data)
	require.NoError(t, err)
	assert.Equal(t, response.Data.ByteCount, len(decoded))
	assert.Equal(t, []byte{0x1B, 0x40}, decoded[:2])
}

func TestStatusEndpoint(t *testing.T) {
	router := newTestRouter(t, &recordingRenderer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/printer/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data transport.StatusInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "DISCONNECTED", response.Data.State)
	assert.Equal(t, "fallback", response.Data.ConnectionType)
}

func TestConnectAndDisconnectEndpoints(t *testing.T) {
	router := newTestRouter(t, &recordingRenderer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/printer/connect", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/printer/disconnect", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMergeOptionsKeepsConfiguredFlags(t *testing.T) {
	configured := receipt.DefaultOptions()
	h := NewPrintHandler(nil, nil, configured, zap.NewNop())

	merged := h.mergeOptions(&receipt.Options{StoreSubtitle: "Branch 2"})
	require.NotNil(t, merged.CutPaper)
	require.NotNil(t, merged.PrintBarcode)
	assert.True(t, *merged.CutPaper, "cut default survives a partial override")
	assert.True(t, *merged.PrintBarcode, "barcode default survives a partial override")
	assert.Equal(t, "Branch 2", merged.StoreSubtitle)

	merged = h.mergeOptions(&receipt.Options{CutPaper: receipt.Bool(false)})
	assert.False(t, *merged.CutPaper)
	assert.True(t, *merged.PrintBarcode)
}

func TestListJobsWithoutHistory(t *testing.T) {
	router := newTestRouter(t, &recordingRenderer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/print/jobs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
