package resources

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/plalog/plalog/server/hub/internal/gardenservice"
)

// ExportHandlers write environment backups to the configured storage
type ExportHandlers struct {
	svc *gardenservice.GardenService
}

// @Summary Export a location's environment data
// @Description Writes a JSON backup of the location, its hourly logs and daily summaries
// @Tags export
// @Produce json
// @Param id path string true "Location ID"
// @Success 201 {object} export.Receipt
// @Failure 404 {object} errors.APIError
// @Router /locations/{id}/environment/export [post]
func (h *ExportHandlers) ExportEnvironment(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.svc.Exporter.Export(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, serviceError(err, "failed to export environment data").WithRequestID(requestID(r)))
		return
	}
	respondWithJSON(w, http.StatusCreated, receipt)
}
