package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/quote-inbox/internal/api/middleware"
	"github.com/d60-Lab/quote-inbox/internal/model"
	"github.com/d60-Lab/quote-inbox/internal/service"
)

const testSecret = "test-secret"

type stubInbox struct {
	rows   []service.InboxRow
	err    error
	viewer service.Viewer
}

func (s *stubInbox) Load(_ context.Context, v service.Viewer) ([]service.InboxRow, error) {
	s.viewer = v
	return s.rows, s.err
}

func token(t *testing.T, sub, role, email string) string {
	t.Helper()
	claims := middleware.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func setupRouter(svc service.InboxService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	r.GET("/api/v1/inbox", middleware.Auth(testSecret), h.GetInbox)
	return r
}

type pageBody struct {
	Code int `json:"code"`
	Data struct {
		Page     int                `json:"page"`
		PageSize int                `json:"page_size"`
		Total    int                `json:"total"`
		List     []service.InboxRow `json:"list"`
	} `json:"data"`
}

func get(r *gin.Engine, url, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetInbox_Paginates(t *testing.T) {
	rows := make([]service.InboxRow, 5)
	for i := range rows {
		rows[i] = service.InboxRow{QuoteID: fmt.Sprintf("t%d", i), NeedsReplyFrom: service.ReplySupplier}
	}
	svc := &stubInbox{rows: rows}
	r := setupRouter(svc)

	w := get(r, "/api/v1/inbox?page=2&page_size=2", token(t, "u-cust", "Customer", "Buyer@Acme.io"))
	require.Equal(t, http.StatusOK, w.Code)

	var body pageBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, 5, body.Data.Total)
	require.Len(t, body.Data.List, 2)
	assert.Equal(t, "t2", body.Data.List[0].QuoteID)
	assert.Equal(t, service.ReplySupplier, body.Data.List[0].NeedsReplyFrom)

	assert.Equal(t, model.RoleCustomer, svc.viewer.Role)
	assert.Equal(t, "u-cust", svc.viewer.UserID)
	assert.Equal(t, "Buyer@Acme.io", svc.viewer.Email)

	w = get(r, "/api/v1/inbox?page=9", token(t, "u-cust", "customer", ""))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Data.List)
	assert.Equal(t, 50, body.Data.PageSize)
}

func TestGetInbox_Errors(t *testing.T) {
	r := setupRouter(&stubInbox{})
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/inbox", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/inbox", "not-a-jwt").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/v1/inbox?page_size=1000", token(t, "u", "admin", "")).Code)

	r = setupRouter(&stubInbox{err: fmt.Errorf("%w: role", service.ErrInvalidViewer)})
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/v1/inbox", token(t, "u", "guest", "")).Code)

	r = setupRouter(&stubInbox{err: errors.New("unexpected")})
	assert.Equal(t, http.StatusInternalServerError, get(r, "/api/v1/inbox", token(t, "u", "admin", "")).Code)
}
