package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/interfaces/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("promos", "/promos")
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	g.GET("", ok).POST("", ok).PUT("/:id", ok).PATCH("/:id", ok).DELETE("/:id", ok)

	NewRouter(engine).Register(g).Setup()

	for _, tt := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/promos"},
		{http.MethodPost, "/api/v1/promos"},
		{http.MethodPut, "/api/v1/promos/PROMO-001"},
		{http.MethodPatch, "/api/v1/promos/PROMO-001"},
		{http.MethodDelete, "/api/v1/promos/PROMO-001"},
	} {
		assert.Equal(t, http.StatusOK, serve(engine, tt.method, tt.path).Code, "%s %s", tt.method, tt.path)
	}
}

func TestDomainGroup_SubgroupsInheritMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("protected", "")
	g.Use(func(c *gin.Context) {
		c.Header("X-Guard", "applied")
		c.Next()
	})
	g.Group("branches", "/branches").GET("", func(c *gin.Context) { c.Status(http.StatusOK) })

	NewRouter(engine).Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/branches")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "applied", w.Header().Get("X-Guard"))
}

func TestDomainGroup_SkipsNilMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("x", "/x")
	g.Use(nil)
	g.GET("", nil, func(c *gin.Context) { c.Status(http.StatusNoContent) })

	NewRouter(engine).Register(g).Setup()
	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodGet, "/api/v1/x").Code)
}

func TestRouter_UseScopesToAPI(t *testing.T) {
	engine := gin.New()
	engine.GET("/outside", func(c *gin.Context) { c.Status(http.StatusOK) })
	g := NewDomainGroup("x", "/x")
	g.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })

	NewRouter(engine).Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusTeapot) }).Register(g).Setup()

	assert.Equal(t, http.StatusTeapot, serve(engine, http.MethodGet, "/api/v1/x").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/outside").Code)
}

// apiHandlers builds handlers whose services are never reached: every test
// request below is answered by a guard or by the dependency-free system routes.
func apiHandlers() Handlers {
	return Handlers{
		Auth:        handler.NewAuthHandler(nil),
		User:        handler.NewUserHandler(nil),
		Branch:      handler.NewBranchHandler(nil),
		Catalog:     handler.NewCatalogHandler(nil),
		Customer:    handler.NewCustomerHandler(nil),
		Transaction: handler.NewTransactionHandler(nil),
		LineItem:    handler.NewLineItemHandler(nil),
		Scheduling:  handler.NewSchedulingHandler(nil),
		Marketing:   handler.NewMarketingHandler(nil),
		Analytics:   handler.NewAnalyticsHandler(nil),
		System:      handler.NewSystemHandler(nil, nil, nil),
		Realtime:    handler.NewRealtimeHandler(nil),
	}
}

func abortWith(status int) gin.HandlerFunc {
	return func(c *gin.Context) { c.AbortWithStatus(status) }
}

func TestSetupAPI_Guards(t *testing.T) {
	engine := gin.New()
	SetupAPI(NewRouter(engine), apiHandlers(), Guards{
		Authenticate:       abortWith(http.StatusUnauthorized),
		AuthenticateSocket: abortWith(http.StatusUnauthorized),
		LoginLimit:         abortWith(http.StatusTooManyRequests),
	})

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/system/info", http.StatusOK},
		{http.MethodPost, "/api/v1/auth/login", http.StatusTooManyRequests},
		{http.MethodGet, "/api/v1/auth/me", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/transactions", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/line-items/status/Queued", http.StatusUnauthorized},
		{http.MethodPatch, "/api/v1/line-items/status", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/ws", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, serve(engine, tt.method, tt.path).Code, "%s %s", tt.method, tt.path)
	}
}

func TestSetupAPI_SuperadminRoutes(t *testing.T) {
	engine := gin.New()
	SetupAPI(NewRouter(engine), apiHandlers(), Guards{
		Superadmin: abortWith(http.StatusForbidden),
	})

	for _, tt := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodPost, "/api/v1/users"},
		{http.MethodDelete, "/api/v1/users/SMVAL-STAFF"},
		{http.MethodPost, "/api/v1/branches"},
		{http.MethodPut, "/api/v1/branches/SMVAL-B-NCR"},
		{http.MethodPost, "/api/v1/services"},
		{http.MethodPost, "/api/v1/analytics/refresh"},
	} {
		assert.Equal(t, http.StatusForbidden, serve(engine, tt.method, tt.path).Code, "%s %s", tt.method, tt.path)
	}
}

func TestSetupAPI_RouteTable(t *testing.T) {
	engine := gin.New()
	SetupAPI(NewRouter(engine), apiHandlers(), Guards{})

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/service-requests",
		"POST /api/v1/transactions/:id/payments",
		"GET /api/v1/transactions/:id/receipt",
		"GET /api/v1/line-items/:id/status-dates",
		"PUT /api/v1/line-items/:id/status-dates",
		"POST /api/v1/line-items/:id/images",
		"PATCH /api/v1/appointments/:id/status",
		"POST /api/v1/unavailability",
		"GET /api/v1/promos/active",
		"GET /api/v1/customers/lookup",
		"GET /api/v1/analytics/daily-revenue/export",
		"GET /api/v1/ws",
	} {
		require.True(t, registered[want], "missing route %s", want)
	}
}
