package apiv1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func testRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Mount(BackupRoutes())
	router.Mount(RulesRoutes())
	router.Mount(ConfigRoutes())
	return router
}

func TestPostBackupWrongGranularity(t *testing.T) {
	ast := assert.New(t)
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, BaseURL+"/backups/month", nil))
	ast.Equal(http.StatusBadRequest, rec.Code)
	ast.Contains(rec.Body.String(), "wrong-granularity")
}

func TestPostBackupWithoutServices(t *testing.T) {
	ast := assert.New(t)
	router := testRouter()

	// no initialised service backend behind the handler
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, BaseURL+"/backups/hour", nil))
	ast.Equal(http.StatusInternalServerError, rec.Code)
}

func TestGetRulesWithoutServices(t *testing.T) {
	ast := assert.New(t)
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, BaseURL+"/rules", nil))
	ast.Equal(http.StatusInternalServerError, rec.Code)
}

func TestGetConfigMasksSecrets(t *testing.T) {
	ast := assert.New(t)
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, BaseURL+"/config", nil))
	ast.Equal(http.StatusOK, rec.Code)
	ast.Contains(rec.Body.String(), "\"SecretKey\":\"*\"")
	ast.Contains(rec.Body.String(), "\"Password\":\"*\"")
}

func TestGetApikey(t *testing.T) {
	ast := assert.New(t)

	key := getApikey()
	ast.Equal(32, len(key), "md5 hex")
	ast.Equal(key, getApikey(), "the key is stable")
}
