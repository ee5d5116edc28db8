package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	tests := []struct {
		name       string
		db, redis  HealthCheck
		wantStatus int
		wantBody   []string
	}{
		{"all up", ok, ok, http.StatusOK, []string{`"database":"ok"`, `"redis":"ok"`}},
		{"redis disabled", ok, nil, http.StatusOK, []string{`"redis":"disabled"`}},
		{"database down", down, ok, http.StatusServiceUnavailable, []string{`"database":"down"`, `"status":"degraded"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler(tt.db, tt.redis, nil)
			r := newTestRouter(caller{})
			r.GET("/health", h.Health)

			w := doRequest(t, r, http.MethodGet, "/health", nil)
			require.Equal(t, tt.wantStatus, w.Code)
			for _, s := range tt.wantBody {
				assert.Contains(t, w.Body.String(), s)
			}
			assert.NotContains(t, w.Body.String(), "refused")
		})
	}
}

func TestSystemHandler_Info(t *testing.T) {
	h := NewSystemHandler(nil, nil, nil)
	r := newTestRouter(caller{})
	r.GET("/system/info", h.GetSystemInfo)

	w := doRequest(t, r, http.MethodGet, "/system/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SWAS Backend API")
}
