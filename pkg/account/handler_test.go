package account

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	service, _, _ := newTestService(t)
	handler := NewHandler(service)

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/register-company", handler.RegisterCompany).Methods("POST")
	r.HandleFunc("/api/auth/login", handler.Login).Methods("POST")
	return r
}

const registerBody = `{
	"email": "owner@example.com",
	"password": "s3cret-pass",
	"fullName": "Jan Kowalski",
	"company": {"name": "Acme", "industry": "Retail", "taxId": "1234567890"}
}`

func TestHandler_RegisterCompany(t *testing.T) {
	t.Run("registers and returns a token", func(t *testing.T) {
		router := newTestRouter(t)

		req := httptest.NewRequest("POST", "/api/auth/register-company", strings.NewReader(registerBody))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var dto AuthResultDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
		assert.NotEmpty(t, dto.Token)
		assert.NotEmpty(t, dto.BusinessId)
	})

	t.Run("second registration with the same email conflicts", func(t *testing.T) {
		router := newTestRouter(t)

		req := httptest.NewRequest("POST", "/api/auth/register-company", strings.NewReader(registerBody))
		router.ServeHTTP(httptest.NewRecorder(), req)

		req = httptest.NewRequest("POST", "/api/auth/register-company", strings.NewReader(registerBody))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing company fields are rejected", func(t *testing.T) {
		router := newTestRouter(t)
		body := `{"email": "owner@example.com", "password": "pass", "company": {"name": "Acme"}}`

		req := httptest.NewRequest("POST", "/api/auth/register-company", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Login(t *testing.T) {
	t.Run("valid credentials return a token", func(t *testing.T) {
		router := newTestRouter(t)
		req := httptest.NewRequest("POST", "/api/auth/register-company", strings.NewReader(registerBody))
		router.ServeHTTP(httptest.NewRecorder(), req)

		req = httptest.NewRequest("POST", "/api/auth/login",
			strings.NewReader(`{"email": "owner@example.com", "password": "s3cret-pass"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var dto AuthResultDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
		assert.NotEmpty(t, dto.Token)
	})

	t.Run("bad credentials are a uniform 401", func(t *testing.T) {
		router := newTestRouter(t)
		req := httptest.NewRequest("POST", "/api/auth/register-company", strings.NewReader(registerBody))
		router.ServeHTTP(httptest.NewRecorder(), req)

		req = httptest.NewRequest("POST", "/api/auth/login",
			strings.NewReader(`{"email": "owner@example.com", "password": "wrong"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
