package api

import (
	"net/http"
	"strings"

	"github.com/willie68/GoBackupStore/internal/serror"
)

// APIKeyHeaderKey in this header the right api key should be inserted
const APIKeyHeaderKey = "X-apikey"

// MetricsEndpoint the endpoint the prometheus metrics are served on
const MetricsEndpoint = "/metrics"

// SysAPIConfig configuration of the system api key handler
type SysAPIConfig struct {
	Apikey string
	// SkipFunc requests this function returns true for bypass the apikey check
	SkipFunc func(r *http.Request) bool
}

// SysAPIHandler creates a middleware checking the system api key header
func SysAPIHandler(cfg SysAPIConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.SkipFunc != nil && cfg.SkipFunc(r) {
				next.ServeHTTP(w, r)
				return
			}
			apikey := strings.TrimSpace(r.Header.Get(APIKeyHeaderKey))
			if !strings.EqualFold(apikey, cfg.Apikey) {
				serr := serror.New(http.StatusUnauthorized, "missing-apikey", "apikey header missing or wrong")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(serr.Code)
				_, _ = w.Write([]byte(serr.Error()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
