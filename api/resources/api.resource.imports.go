package resources

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/gardenservice"
	"github.com/plalog/plalog/server/hub/internal/models"
)

// ImportHandlers drive the CSV import workflow
type ImportHandlers struct {
	svc         *gardenservice.GardenService
	maxFileSize int64
}

// CommitRequest names the location a previewed upload is merged into
type CommitRequest struct {
	LocationID string `json:"locationId"`
}

// @Summary Upload a CSV for preview
// @Description Detects the CSV dialect, aggregates the rows and opens an import session in the preview step
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Sensor CSV export"
// @Success 201 {object} models.ImportSession
// @Failure 400 {object} errors.APIError
// @Failure 422 {object} errors.APIError
// @Router /imports [post]
func (h *ImportHandlers) UploadFile(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondWithError(w, errors.NewValidationError("file too large or malformed upload", err).WithRequestID(reqID))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid file upload", err).WithRequestID(reqID))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, errors.NewValidationError("failed to read upload", err).WithRequestID(reqID))
		return
	}

	session, err := h.svc.Imports.Select(r.Context(), header.Filename, string(content))
	if err != nil {
		respondWithError(w, serviceError(err, "failed to preview import").WithRequestID(reqID))
		return
	}

	respondWithJSON(w, http.StatusCreated, publicSession(session))
}

// @Summary Get an import session
// @Tags imports
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.ImportSession
// @Failure 404 {object} errors.APIError
// @Router /imports/{id} [get]
func (h *ImportHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Imports.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, serviceError(err, "failed to get import session").WithRequestID(requestID(r)))
		return
	}
	respondWithJSON(w, http.StatusOK, publicSession(session))
}

// @Summary Commit a previewed import
// @Description Merges the upload into the location: existing hours are skipped, existing days are overwritten
// @Tags imports
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body CommitRequest true "Target location"
// @Success 200 {object} models.ImportSession
// @Failure 404 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /imports/{id}/commit [post]
func (h *ImportHandlers) CommitSession(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(reqID))
		return
	}
	if req.LocationID == "" {
		respondWithError(w, errors.NewValidationError("locationId is required", nil).WithRequestID(reqID))
		return
	}

	session, err := h.svc.CommitImport(r.Context(), mux.Vars(r)["id"], req.LocationID)
	if err != nil {
		respondWithError(w, serviceError(err, "import failed").WithRequestID(reqID))
		return
	}

	respondWithJSON(w, http.StatusOK, publicSession(session))
}

// @Summary Discard an import session
// @Tags imports
// @Param id path string true "Session ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /imports/{id} [delete]
func (h *ImportHandlers) ResetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Imports.Reset(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithError(w, serviceError(err, "failed to reset import session").WithRequestID(requestID(r)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// publicSession hides the raw upload from responses
func publicSession(session *models.ImportSession) *models.ImportSession {
	out := *session
	out.Content = ""
	return &out
}
