package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/willie68/GoBackupStore/internal/serror"
	"github.com/willie68/GoBackupStore/internal/services"
	"github.com/willie68/GoBackupStore/internal/services/objstore"
	"github.com/willie68/GoBackupStore/internal/utils/httputils"
	"github.com/willie68/GoBackupStore/pkg/model"
)

// BackupRoutes getting all routes for the backups endpoint
func BackupRoutes() (string, *chi.Mux) {
	router := chi.NewRouter()
	router.Post("/{granularity}", PostBackup)
	return BaseURL + backupsSubpath, router
}

// RulesRoutes getting all routes for the rules endpoint
func RulesRoutes() (string, *chi.Mux) {
	router := chi.NewRouter()
	router.Get("/", GetRules)
	router.Post("/prune", PostPruneRules)
	router.Delete("/", DeleteRules)
	return BaseURL + rulesSubpath, router
}

// PostBackup runs the full backup pipeline for one granularity now
// @Summary runs dump, upload and rule registration for one granularity
// @Tags backups
// @Produce  json
// @Security api_key
// @Param granularity path string true "hour, day or week"
// @Success 201 {object} model.BackupTarget "the produced backup target"
// @Failure 400 {object} serror.Serr "client error information as json"
// @Failure 500 {object} serror.Serr "server error information as json"
// @Router /backups/{granularity} [post]
func PostBackup(response http.ResponseWriter, request *http.Request) {
	gStr, err := httputils.Param(request, "granularity")
	if err != nil {
		httputils.Err(response, request, err)
		return
	}
	g, err := model.ParseGranularity(gStr)
	if err != nil {
		httputils.Err(response, request, serror.BadRequest(err, "wrong-granularity", err.Error()))
		return
	}
	bm, err := services.GetBackupManager()
	if err != nil {
		httputils.Err(response, request, serror.InternalServerError(err))
		return
	}
	if err := bm.Run(request.Context(), g); err != nil {
		httputils.Err(response, request, serror.InternalServerError(err))
		return
	}
	render.Status(request, http.StatusCreated)
	render.JSON(response, request, struct {
		Granularity model.Granularity `json:"granularity"`
	}{Granularity: g})
}

// GetRules getting the whole lifecycle rule set of the store
// @Summary getting the whole lifecycle rule set, a store without lifecycle configuration yields an empty list
// @Tags rules
// @Produce  json
// @Security api_key
// @Success 200 {array} model.ExpirationRule "the rule set as json"
// @Failure 500 {object} serror.Serr "server error information as json"
// @Router /rules [get]
func GetRules(response http.ResponseWriter, request *http.Request) {
	stg, err := services.GetStorage()
	if err != nil {
		httputils.Err(response, request, serror.InternalServerError(err))
		return
	}
	rules, err := stg.GetRules(request.Context())
	if err != nil {
		if !errors.Is(err, objstore.ErrNoLifecycle) {
			httputils.Err(response, request, serror.InternalServerError(err))
			return
		}
		rules = model.RuleSet{}
	}
	render.JSON(response, request, rules)
}

// PostPruneRules runs a prune pass now
// @Summary runs one rule reconciliation pass, dropping all elapsed rules
// @Tags rules
// @Produce  json
// @Security api_key
// @Success 200 {array} model.ExpirationRule "the surviving rule set as json"
// @Failure 500 {object} serror.Serr "server error information as json"
// @Router /rules/prune [post]
func PostPruneRules(response http.ResponseWriter, request *http.Request) {
	eng, err := services.GetEngine()
	if err != nil {
		httputils.Err(response, request, serror.InternalServerError(err))
		return
	}
	if err := eng.PruneExpired(request.Context()); err != nil {
		httputils.Err(response, request, serror.InternalServerError(err))
		return
	}
	GetRules(response, request)
}

// DeleteRules clears the lifecycle configuration of the store entirely
// @Summary clears the lifecycle configuration of the store
// @Tags rules
// @Produce  json
// @Security api_key
// @Success 200 "the configuration is gone"
// @Failure 500 {object} serror.Serr "server error information as json"
// @Router /rules [delete]
func DeleteRules(response http.ResponseWriter, request *http.Request) {
	stg, err := services.GetStorage()
	if err != nil {
		httputils.Err(response, request, serror.InternalServerError(err))
		return
	}
	if err := stg.ClearRules(request.Context()); err != nil {
		httputils.Err(response, request, serror.InternalServerError(err))
		return
	}
	render.Status(request, http.StatusOK)
	render.JSON(response, request, struct {
		Cleared bool `json:"cleared"`
	}{Cleared: true})
}
