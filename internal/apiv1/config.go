package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/willie68/GoBackupStore/internal/config"
)

// ConfigRoutes getting all routes for the config endpoint
func ConfigRoutes() (string, *chi.Mux) {
	router := chi.NewRouter()
	router.Get("/", GetConfig)
	return BaseURL + configSubpath, router
}

// GetConfig getting the effective configuration, secrets are masked
// @Summary getting the effective configuration, secrets are masked
// @Tags configs
// @Produce  json
// @Security api_key
// @Success 200 {object} config.Config "the sanitized configuration as json"
// @Router /config [get]
func GetConfig(response http.ResponseWriter, request *http.Request) {
	cfn := config.Get()
	cfn.Storage.SecretKey = "*"
	cfn.Backup.Database.Password = "*"
	render.JSON(response, request, cfn)
}
