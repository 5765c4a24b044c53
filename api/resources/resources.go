// FilePath: server/hub/api/resources/resources.go
package resources

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/gorilla/schema"
	"github.com/plalog/plalog/server/hub/api/middleware"
	"github.com/plalog/plalog/server/hub/internal/envimport"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/gardenservice"
	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/plalog/plalog/server/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune request handling
type Options struct {
	MaxFileSize int64
}

// Resources holds all HTTP resource handlers
type Resources struct {
	Locations   *LocationHandlers
	Environment *EnvironmentHandlers
	Imports     *ImportHandlers
	Exports     *ExportHandlers
	db          Pinger
}

// NewResources creates a new Resources instance
func NewResources(svc *gardenservice.GardenService, db Pinger, opts Options) *Resources {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 20 << 20
	}
	return &Resources{
		Locations:   &LocationHandlers{svc: svc},
		Environment: &EnvironmentHandlers{svc: svc},
		Imports:     &ImportHandlers{svc: svc, maxFileSize: opts.MaxFileSize},
		Exports:     &ExportHandlers{svc: svc},
		db:          db,
	}
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errors.APIError
// @Router /health [get]
func (res *Resources) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := res.db.Ping(ctx); err != nil {
		respondWithError(w, errors.NewUnavailableError("database unreachable", err).WithRequestID(requestID(r)))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": nuts.GetVersion(),
	})
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, convertQueryTime)
	return d
}

// convertQueryTime accepts RFC3339 or a bare YYYY-MM-DD (midnight UTC)
func convertQueryTime(value string) reflect.Value {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return reflect.ValueOf(t)
	}
	if t, err := time.Parse(models.DailyDateLayout, value); err == nil {
		return reflect.ValueOf(t)
	}
	return reflect.Value{}
}

// serviceError maps an error from the service layer to an API error
func serviceError(err error, fallback string) *errors.APIError {
	if apiErr, ok := errors.As(err); ok {
		return apiErr
	}
	switch {
	case stderrors.Is(err, envimport.ErrUnsupportedFormat):
		return errors.NewUnsupportedFormatError(envimport.MsgUnsupportedFormat, err)
	case stderrors.Is(err, envimport.ErrNoData):
		return errors.NewNoDataError(envimport.MsgNoData, err)
	case stderrors.Is(err, envimport.ErrSessionNotFound):
		return errors.NewNotFoundError("import session not found", err)
	case stderrors.Is(err, envimport.ErrInvalidTransition):
		return errors.NewConflictError(err.Error(), err)
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NewNotFoundError("resource not found", err)
	case stderrors.Is(err, repository.ErrDuplicate):
		return errors.NewConflictError("resource already exists", err)
	}
	return errors.NewInternalError(fallback, err)
}

func requestID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}

func getPaginationParams(r *http.Request) (offset, limit int) {
	query := r.URL.Query()
	offset, _ = strconv.Atoi(query.Get("offset"))
	limit, _ = strconv.Atoi(query.Get("limit"))

	if limit <= 0 || limit > 100 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	return offset, limit
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	if err.Code >= http.StatusInternalServerError {
		nuts.L.Errorf("[API] %s", err.Error())
	} else {
		nuts.L.Warnf("[API] %s", err.Error())
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
