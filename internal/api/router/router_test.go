package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/quote-inbox/internal/api/handler"
	"github.com/d60-Lab/quote-inbox/internal/service"
)

type emptyInbox struct{}

func (emptyInbox) Load(context.Context, service.Viewer) ([]service.InboxRow, error) {
	return []service.InboxRow{}, nil
}

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(handler.NewHandler(emptyInbox{}), Config{JWTSecret: "s", RateLimit: 100, RateBurst: 100, Swagger: true})

	cases := map[string]int{
		"/healthz":            http.StatusOK,
		"/api/v1/inbox":       http.StatusUnauthorized,
		"/swagger/doc.json":   http.StatusOK,
		"/api/v1/nonexistent": http.StatusNotFound,
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, path)
	}
}
