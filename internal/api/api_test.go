package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSysAPIHandler(t *testing.T) {
	ast := assert.New(t)
	handler := SysAPIHandler(SysAPIConfig{Apikey: "mysecret"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil)
	req.Header.Set(APIKeyHeaderKey, "mysecret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	ast.Equal(http.StatusOK, rec.Code)

	// case of the key must not matter
	req = httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil)
	req.Header.Set(APIKeyHeaderKey, "MySecret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	ast.Equal(http.StatusOK, rec.Code)
}

func TestSysAPIHandlerRejects(t *testing.T) {
	ast := assert.New(t)
	handler := SysAPIHandler(SysAPIConfig{Apikey: "mysecret"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	ast.Equal(http.StatusUnauthorized, rec.Code)
	ast.Equal("application/json", rec.Header().Get("Content-Type"))
	ast.Contains(rec.Body.String(), "missing-apikey")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil)
	req.Header.Set(APIKeyHeaderKey, "wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	ast.Equal(http.StatusUnauthorized, rec.Code)
}

func TestSysAPIHandlerSkipFunc(t *testing.T) {
	ast := assert.New(t)
	cfg := SysAPIConfig{
		Apikey: "mysecret",
		SkipFunc: func(r *http.Request) bool {
			return strings.HasSuffix(r.URL.Path, "/livez")
		},
	}
	handler := SysAPIHandler(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	ast.Equal(http.StatusOK, rec.Code)
}
