package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedRouter(t *testing.T, handler gin.HandlerFunc) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	router := gin.New()
	router.Use(
		RequestID(nil),
		Tracing(TracingConfig{Enabled: true, ServiceName: "swas-test", TracerProvider: tp}),
		SpanErrorMarker(),
		func(c *gin.Context) {
			c.Set(logger.GinUserIDKey, "maria")
			c.Set(logger.GinBranchIDKey, "SMVAL-B-NCR")
			c.Next()
		},
		TracingAttributeInjector(),
	)
	router.GET("/api/v1/line-items/:id", handler)
	return router, sr
}

func attrMap(attrs []attribute.KeyValue) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value.Emit()
	}
	return m
}

func TestTracing_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTracing_SpanCarriesCallerIdentity(t *testing.T) {
	router, sr := newTracedRouter(t, func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/line-items/2026-10-00001-001-SMVAL", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/api/v1/line-items/:id")
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "req-7", attrs["request_id"])
	assert.Equal(t, "maria", attrs["user_id"])
	assert.Equal(t, "SMVAL-B-NCR", attrs["branch_id"])
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestSpanErrorMarker(t *testing.T) {
	t.Run("server errors mark the span", func(t *testing.T) {
		router, sr := newTracedRouter(t, func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/line-items/x", nil))

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("client errors do not", func(t *testing.T) {
		router, sr := newTracedRouter(t, func(c *gin.Context) { c.Status(http.StatusNotFound) })
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/line-items/x", nil))

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	})
}
