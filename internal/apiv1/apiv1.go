package apiv1

import (
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httptracer"
	"github.com/go-chi/render"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/willie68/GoBackupStore/internal/api"
	"github.com/willie68/GoBackupStore/internal/config"
	"github.com/willie68/GoBackupStore/internal/health"
	"github.com/willie68/GoBackupStore/internal/logging"
	"github.com/willie68/GoBackupStore/internal/services"
)

// APIVersion the actual implemented api version
const APIVersion = "1"

// BaseURL is the url all endpoints will be available under
var BaseURL = fmt.Sprintf("/api/v%s", APIVersion)

// APIKey the apikey of this service
var APIKey string

var logger = logging.New().WithName("apiv1")

const backupsSubpath = "/backups"
const rulesSubpath = "/rules"
const configSubpath = "/config"

// APIRoutes defining all api v1 routes
func APIRoutes(cfn config.Config, trc opentracing.Tracer) (*chi.Mux, error) {
	APIKey = getApikey()
	logger.Infof("baseurl : %s", BaseURL)
	router := chi.NewRouter()
	setDefaultHandler(router, cfn, trc)

	if cfn.Apikey {
		setApikeyHandler(router)
	}

	healthSys, err := services.GetHealthSystem()
	if err != nil {
		return nil, err
	}

	// building the routes
	router.Route("/", func(r chi.Router) {
		r.Mount(BackupRoutes())
		r.Mount(RulesRoutes())
		r.Mount(ConfigRoutes())
		r.Mount(health.NewHealthHandler(healthSys).Routes())
		if cfn.Metrics.Enable {
			r.Mount(api.MetricsEndpoint, promhttp.Handler())
		}
	})
	logger.Infof("%s api routes", config.Servicename)

	walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		logger.Infof("api route: %s %s", method, route)
		return nil
	}

	if err := chi.Walk(router, walkFunc); err != nil {
		logger.Alertf("could not walk api routes. %s", err.Error())
	}

	return router, nil
}

func setApikeyHandler(router *chi.Mux) {
	router.Use(
		api.SysAPIHandler(api.SysAPIConfig{
			Apikey: APIKey,
			SkipFunc: func(r *http.Request) bool {
				path := strings.TrimSuffix(r.URL.Path, "/")
				if strings.HasSuffix(path, "/livez") {
					return true
				}
				if strings.HasSuffix(path, "/readyz") {
					return true
				}
				if strings.HasSuffix(path, api.MetricsEndpoint) {
					return true
				}
				return false
			},
		}),
	)
}

func setDefaultHandler(router *chi.Mux, cfn config.Config, tracer opentracing.Tracer) {
	router.Use(
		render.SetContentType(render.ContentTypeJSON),
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", api.APIKeyHeaderKey},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300, // Maximum value not ignored by any of major browsers
		}),
	)
	if tracer != nil {
		router.Use(httptracer.Tracer(tracer, httptracer.Config{
			ServiceName:    config.Servicename,
			ServiceVersion: "V" + APIVersion,
			SampleRate:     1,
			SkipFunc: func(r *http.Request) bool {
				return false
			},
		}))
	}
	if cfn.Metrics.Enable {
		router.Use(
			api.MetricsHandler(api.MetricsConfig{
				SkipFunc: func(r *http.Request) bool {
					return false
				},
			}),
		)
	}
}

// HealthRoutes returning the health routes only, used for the separate
// health server when tls is active
func HealthRoutes(cfn config.Config, tracer opentracing.Tracer) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		render.SetContentType(render.ContentTypeJSON),
		middleware.Logger,
		middleware.Recoverer,
	)
	if cfn.Metrics.Enable {
		router.Use(
			api.MetricsHandler(api.MetricsConfig{
				SkipFunc: func(r *http.Request) bool {
					return false
				},
			}),
		)
	}

	router.Route("/", func(r chi.Router) {
		healthSys, err := services.GetHealthSystem()
		if err == nil {
			r.Mount(health.NewHealthHandler(healthSys).Routes())
		}
		if cfn.Metrics.Enable {
			r.Mount(api.MetricsEndpoint, promhttp.Handler())
		}
	})
	return router
}

func getApikey() string {
	value := fmt.Sprintf("%s_%s", config.Servicename, "default")
	apikey := fmt.Sprintf("%x", md5.Sum([]byte(value)))
	return strings.ToLower(apikey)
}
