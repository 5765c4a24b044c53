package resources

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/gardenservice"
	"github.com/plalog/plalog/server/hub/internal/models"
)

// EnvironmentHandlers serves hourly logs and daily summaries
type EnvironmentHandlers struct {
	svc *gardenservice.GardenService
}

// @Summary List hourly environment logs
// @Description Newest first. from and to accept RFC3339 or YYYY-MM-DD.
// @Tags environment
// @Produce json
// @Param id path string true "Location ID"
// @Param from query string false "Lower bound (inclusive)"
// @Param to query string false "Upper bound (inclusive)"
// @Param limit query int false "Maximum number of logs"
// @Success 200 {array} models.EnvironmentLog
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /locations/{id}/environment/logs [get]
func (h *EnvironmentHandlers) ListLogs(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var filters models.EnvironmentFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(reqID))
		return
	}
	filters.Normalize()

	logs, err := h.svc.ListLogs(r.Context(), mux.Vars(r)["id"], filters)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to list environment logs").WithRequestID(reqID))
		return
	}
	if logs == nil {
		logs = []*models.EnvironmentLog{}
	}

	respondWithJSON(w, http.StatusOK, logs)
}

// @Summary Add a manual environment log
// @Tags environment
// @Accept json
// @Produce json
// @Param id path string true "Location ID"
// @Param log body models.EnvironmentLog true "Reading"
// @Success 201 {object} models.EnvironmentLog
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /locations/{id}/environment/logs [post]
func (h *EnvironmentHandlers) CreateLog(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var log models.EnvironmentLog
	if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(reqID))
		return
	}
	log.LocationID = mux.Vars(r)["id"]

	if err := h.svc.AddManualLog(r.Context(), &log); err != nil {
		respondWithError(w, serviceError(err, "failed to create environment log").WithRequestID(reqID))
		return
	}

	respondWithJSON(w, http.StatusCreated, log)
}

// @Summary Latest environment log
// @Tags environment
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} models.EnvironmentLog
// @Failure 404 {object} errors.APIError
// @Router /locations/{id}/environment/latest [get]
func (h *EnvironmentHandlers) LatestLog(w http.ResponseWriter, r *http.Request) {
	log, err := h.svc.LatestLog(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, serviceError(err, "failed to get latest environment log").WithRequestID(requestID(r)))
		return
	}
	respondWithJSON(w, http.StatusOK, log)
}

// @Summary Delete an environment log
// @Tags environment
// @Param id path string true "Log ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /environment/logs/{id} [delete]
func (h *EnvironmentHandlers) DeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLog(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithError(w, serviceError(err, "failed to delete environment log").WithRequestID(requestID(r)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary List daily environment summaries
// @Tags environment
// @Produce json
// @Param id path string true "Location ID"
// @Param from query string false "First date, YYYY-MM-DD"
// @Param to query string false "Last date, YYYY-MM-DD"
// @Success 200 {array} models.DailyEnvironmentSummary
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /locations/{id}/environment/daily [get]
func (h *EnvironmentHandlers) ListDailySummaries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	summaries, err := h.svc.ListDailySummaries(r.Context(), mux.Vars(r)["id"], query.Get("from"), query.Get("to"))
	if err != nil {
		respondWithError(w, serviceError(err, "failed to list daily summaries").WithRequestID(requestID(r)))
		return
	}
	if summaries == nil {
		summaries = []*models.DailyEnvironmentSummary{}
	}

	respondWithJSON(w, http.StatusOK, summaries)
}

// @Summary Environment statistics
// @Description Rolls up daily summaries: min of daily minimums, max of daily maximums, mean of daily averages
// @Tags environment
// @Produce json
// @Param id path string true "Location ID"
// @Param from query string false "First date, YYYY-MM-DD"
// @Param to query string false "Last date, YYYY-MM-DD"
// @Success 200 {object} models.EnvironmentStats
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /locations/{id}/environment/stats [get]
func (h *EnvironmentHandlers) EnvironmentStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	stats, err := h.svc.EnvironmentStats(r.Context(), mux.Vars(r)["id"], query.Get("from"), query.Get("to"))
	if err != nil {
		respondWithError(w, serviceError(err, "failed to compute environment statistics").WithRequestID(requestID(r)))
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
