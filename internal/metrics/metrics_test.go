package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemonet1337/zaiStockView/pkg/inventory"
)

func TestObserveStats(t *testing.T) {
	m := New()

	m.ObserveStats(
		inventory.StatsSummary{TotalSKU: 15, TotalQuantity: 10815, LowStockCount: 6, PendingInbound: 5},
		inventory.StatusCounts{Total: 15, Normal: 9, Low: 4, Out: 2},
	)

	assert.Equal(t, float64(15), testutil.ToFloat64(m.itemsTotal))
	assert.Equal(t, float64(10815), testutil.ToFloat64(m.quantityTotal))
	assert.Equal(t, float64(6), testutil.ToFloat64(m.lowStockItems))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.pendingInbound))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.itemsByStatus.WithLabelValues("out")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.itemsByStatus.WithLabelValues("low")))
}

func TestMiddleware(t *testing.T) {
	m := New()

	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.HandleFunc("/api/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/42", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.httpRequestsTotal.WithLabelValues("404", http.MethodGet, "/api/v1/items/{id}")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.httpRequestsInFlight))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{code="404",method="GET",path="/api/v1/items/{id}"} 1`)
}
