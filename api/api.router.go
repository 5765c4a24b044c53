package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/plalog/plalog/server/hub/api/middleware"
	"github.com/plalog/plalog/server/hub/api/resources"
	_ "github.com/plalog/plalog/server/hub/docs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
	nuts "github.com/vaudience/go-nuts"
	muxprom "gitlab.com/msvechla/mux-prometheus/pkg/middleware"
)

// Options configure the router's surroundings
type Options struct {
	AllowedOrigins []string
	MetricsPath    string
	Registerer     prometheus.Registerer
	Gatherer       prometheus.Gatherer
}

type Router struct {
	router    *mux.Router
	resources *resources.Resources
	opts      Options
	handler   http.Handler
}

func NewRouter(res *resources.Resources, opts Options) *Router {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := &Router{
		router:    mux.NewRouter(),
		resources: res,
		opts:      opts,
	}

	r.setupRoutes()
	r.handler = r.wrap(r.router)
	return r
}

func (r *Router) setupRoutes() {
	instrumentation := muxprom.NewCustomInstrumentation(true, "plalog", "hub", prometheus.DefBuckets, nil, r.opts.Registerer)
	r.router.Use(instrumentation.Middleware)
	r.router.Use(middleware.RequestID)

	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)
	api.Path(r.opts.MetricsPath).Handler(promhttp.HandlerFor(r.opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	api.HandleFunc("/swagger/doc.json", serveSwaggerDoc).Methods(http.MethodGet)

	// Locations
	locations := api.PathPrefix("/locations").Subrouter()
	locations.HandleFunc("", r.resources.Locations.ListLocations).Methods(http.MethodGet)
	locations.HandleFunc("", r.resources.Locations.CreateLocation).Methods(http.MethodPost)
	locations.HandleFunc("/{id}", r.resources.Locations.GetLocation).Methods(http.MethodGet)
	locations.HandleFunc("/{id}", r.resources.Locations.UpdateLocation).Methods(http.MethodPut)
	locations.HandleFunc("/{id}", r.resources.Locations.DeleteLocation).Methods(http.MethodDelete)

	// Environment
	locations.HandleFunc("/{id}/environment/logs", r.resources.Environment.ListLogs).Methods(http.MethodGet)
	locations.HandleFunc("/{id}/environment/logs", r.resources.Environment.CreateLog).Methods(http.MethodPost)
	locations.HandleFunc("/{id}/environment/latest", r.resources.Environment.LatestLog).Methods(http.MethodGet)
	locations.HandleFunc("/{id}/environment/daily", r.resources.Environment.ListDailySummaries).Methods(http.MethodGet)
	locations.HandleFunc("/{id}/environment/stats", r.resources.Environment.EnvironmentStats).Methods(http.MethodGet)
	locations.HandleFunc("/{id}/environment/export", r.resources.Exports.ExportEnvironment).Methods(http.MethodPost)
	api.HandleFunc("/environment/logs/{id}", r.resources.Environment.DeleteLog).Methods(http.MethodDelete)

	// Imports
	imports := api.PathPrefix("/imports").Subrouter()
	imports.HandleFunc("", r.resources.Imports.UploadFile).Methods(http.MethodPost)
	imports.HandleFunc("/{id}", r.resources.Imports.GetSession).Methods(http.MethodGet)
	imports.HandleFunc("/{id}", r.resources.Imports.ResetSession).Methods(http.MethodDelete)
	imports.HandleFunc("/{id}/commit", r.resources.Imports.CommitSession).Methods(http.MethodPost)
}

func (r *Router) wrap(h http.Handler) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(r.opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", middleware.HeaderRequestID}),
		handlers.ExposedHeaders([]string{middleware.HeaderRequestID}),
	)
	recovery := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))
	return recovery(cors(handlers.CompressHandler(h)))
}

func serveSwaggerDoc(w http.ResponseWriter, _ *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		nuts.L.Errorf("[API] Failed to render swagger doc: %v", err)
		http.Error(w, "swagger doc unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}
