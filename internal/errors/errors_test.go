package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Codes(t *testing.T) {
	cause := stderrors.New("boom")
	tests := []struct {
		err  *APIError
		code int
		typ  ErrorType
	}{
		{NewValidationError("bad", cause), http.StatusBadRequest, ErrorTypeValidation},
		{NewDatabaseError("db", cause), http.StatusInternalServerError, ErrorTypeDatabase},
		{NewNotFoundError("missing", nil), http.StatusNotFound, ErrorTypeNotFound},
		{NewConflictError("dup", nil), http.StatusConflict, ErrorTypeConflict},
		{NewUnsupportedFormatError("unsupported CSV format", nil), http.StatusUnprocessableEntity, ErrorTypeUnsupportedFormat},
		{NewNoDataError("no data found", nil), http.StatusUnprocessableEntity, ErrorTypeNoData},
		{NewUnavailableError("down", nil), http.StatusServiceUnavailable, ErrorTypeUnavailable},
		{NewInternalError("oops", cause), http.StatusInternalServerError, ErrorTypeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.typ, tt.err.Type)
	}
}

func TestAPIError_Wrapping(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := fmt.Errorf("saving log: %w", NewNotFoundError("location not found", cause))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.ErrorIs(t, err, cause)

	apiErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "req_1", apiErr.WithRequestID("req_1").RequestID)
	assert.Contains(t, apiErr.Error(), "connection reset")
}
