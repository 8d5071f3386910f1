package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/compmath/schedule-bot/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics_NilMeter(t *testing.T) {
	engine := gin.New()
	engine.Use(HTTPMetrics(nil))
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := testutil.PerformRequest(engine, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_RecordsRoutePattern(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	engine := gin.New()
	engine.Use(HTTPMetrics(provider.Meter("http.server")))
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	testutil.PerformRequest(engine, http.MethodGet, "/health", nil, nil)
	testutil.PerformRequest(engine, http.MethodGet, "/health", nil, nil)
	testutil.PerformRequest(engine, http.MethodGet, "/missing", nil, nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	totals := map[string]int64{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "http_server_request_total" {
			continue
		}
		for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
			route, _ := dp.Attributes.Value("http.route")
			totals[route.AsString()] += dp.Value
		}
	}
	assert.Equal(t, map[string]int64{"/health": 2, "unmatched": 1}, totals)
}
