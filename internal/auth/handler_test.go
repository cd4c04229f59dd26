package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type structValidator struct {
	validate *validator.Validate
}

func (v *structValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newTestServer(t *testing.T) (*echo.Echo, *memStore) {
	t.Helper()
	svc, store, _ := newTestService(t)
	h := NewAuthHandler(svc, NewCookieCodec([]byte("test-secret"), false), zap.NewNop())
	e := echo.New()
	e.Validator = &structValidator{validate: validator.New()}
	e.POST("/register", h.Register)
	return e, store
}

func postJSON(e *echo.Echo, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(raw)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterHandler_ReportsFirstViolation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *RegisterRequest)
		reason string
	}{
		{"empty userid", func(r *RegisterRequest) { r.UserID = "" }, "UserID must be exactly 8 digits"},
		{"empty name", func(r *RegisterRequest) { r.Name = "" }, "Name must contain only upper or lower case letters"},
		{"empty userid before bad phone", func(r *RegisterRequest) { r.UserID = ""; r.Phone = "" }, "UserID must be exactly 8 digits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, store := newTestServer(t)
			req := validRegistration()
			tt.mutate(&req)

			rec := postJSON(e, "/register", req)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.reason, resp["error"])
			assert.Zero(t, store.writes)
		})
	}
}

func TestRegisterHandler_Created(t *testing.T) {
	e, store := newTestServer(t)
	rec := postJSON(e, "/register", validRegistration())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotZero(t, store.writes)
}
