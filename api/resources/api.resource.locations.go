package resources

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/gardenservice"
	"github.com/plalog/plalog/server/hub/internal/models"
)

// LocationHandlers encapsulates the location-related HTTP handlers
type LocationHandlers struct {
	svc *gardenservice.GardenService
}

// @Summary Create a location
// @Description Create a place whose environment is logged
// @Tags locations
// @Accept json
// @Produce json
// @Param location body models.Location true "Location details"
// @Success 201 {object} models.Location
// @Failure 400 {object} errors.APIError
// @Router /locations [post]
func (h *LocationHandlers) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var location models.Location
	reqID := requestID(r)

	if err := json.NewDecoder(r.Body).Decode(&location); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(reqID))
		return
	}

	if err := h.svc.CreateLocation(r.Context(), &location); err != nil {
		respondWithError(w, serviceError(err, "failed to create location").WithRequestID(reqID))
		return
	}

	respondWithJSON(w, http.StatusCreated, location)
}

// @Summary Get a location by ID
// @Tags locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} models.Location
// @Failure 404 {object} errors.APIError
// @Router /locations/{id} [get]
func (h *LocationHandlers) GetLocation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	location, err := h.svc.GetLocation(r.Context(), id)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to get location").WithRequestID(requestID(r)))
		return
	}

	respondWithJSON(w, http.StatusOK, location)
}

// @Summary List locations
// @Tags locations
// @Produce json
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {array} models.Location
// @Router /locations [get]
func (h *LocationHandlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	offset, limit := getPaginationParams(r)

	locations, err := h.svc.ListLocations(r.Context(), offset, limit)
	if err != nil {
		respondWithError(w, serviceError(err, "failed to list locations").WithRequestID(requestID(r)))
		return
	}
	if locations == nil {
		locations = []*models.Location{}
	}

	respondWithJSON(w, http.StatusOK, locations)
}

// @Summary Update a location
// @Tags locations
// @Accept json
// @Produce json
// @Param id path string true "Location ID"
// @Param location body models.Location true "Updated location details"
// @Success 200 {object} models.Location
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /locations/{id} [put]
func (h *LocationHandlers) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var location models.Location
	if err := json.NewDecoder(r.Body).Decode(&location); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(reqID))
		return
	}

	location.ID = mux.Vars(r)["id"]
	if err := h.svc.UpdateLocation(r.Context(), &location); err != nil {
		respondWithError(w, serviceError(err, "failed to update location").WithRequestID(reqID))
		return
	}

	respondWithJSON(w, http.StatusOK, location)
}

// @Summary Delete a location
// @Description Delete a location with all of its hourly logs and daily summaries
// @Tags locations
// @Param id path string true "Location ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /locations/{id} [delete]
func (h *LocationHandlers) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.svc.DeleteLocation(r.Context(), id); err != nil {
		respondWithError(w, serviceError(err, "failed to delete location").WithRequestID(requestID(r)))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
