package api

import (
	"errors"
	"net/http"

	"autosales/salesdash/internal/pipeline"
	"autosales/salesdash/internal/pipelineerror"

	"github.com/go-chi/render"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code string, err error) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: err.Error()}
}

func badRequest(err error) *APIError {
	return newAPIError(http.StatusBadRequest, "INVALID_REQUEST", err)
}

// errorFor maps pipeline failures to HTTP responses: missing resources are 404,
// input the pipeline cannot work with is 422, storage trouble is 503 and the
// rest is 500.
func errorFor(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var (
		notFound    *pipelineerror.NotFoundError
		parseErr    *pipelineerror.ParseError
		unknownCol  *pipelineerror.UnknownColumnError
		badMapping  *pipelineerror.InvalidMappingError
		noTemporal  *pipelineerror.MissingTemporalColumnError
		bucketErr   *pipelineerror.BucketError
		noRows      *pipelineerror.NoValidRowsError
		unavailable *pipelineerror.StorageUnavailableError
		genErr      *pipelineerror.GenerationError
		writeErr    *pipelineerror.WriteError
	)

	switch {
	case errors.As(err, &notFound):
		return newAPIError(http.StatusNotFound, "NOT_FOUND", err)
	case errors.As(err, &unknownCol):
		ae := newAPIError(http.StatusUnprocessableEntity, "UNKNOWN_COLUMN", err)
		ae.Details = map[string]string{"field": unknownCol.Field, "column": unknownCol.Column}
		return ae
	case errors.As(err, &badMapping):
		return newAPIError(http.StatusUnprocessableEntity, "INVALID_MAPPING", err)
	case errors.As(err, &noTemporal):
		return newAPIError(http.StatusUnprocessableEntity, "MISSING_TEMPORAL_COLUMN", err)
	case errors.As(err, &bucketErr):
		return newAPIError(http.StatusUnprocessableEntity, "INVALID_TIME_MODE", err)
	case errors.As(err, &noRows):
		return newAPIError(http.StatusUnprocessableEntity, "NO_VALID_ROWS", err)
	case errors.As(err, &parseErr):
		return newAPIError(http.StatusUnprocessableEntity, "PARSE_ERROR", err)
	case errors.Is(err, pipeline.ErrNoInput):
		return badRequest(err)
	case errors.As(err, &unavailable):
		return newAPIError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", err)
	case errors.As(err, &genErr):
		return newAPIError(http.StatusInternalServerError, "GENERATION_FAILED", err)
	case errors.As(err, &writeErr):
		return newAPIError(http.StatusInternalServerError, "WRITE_FAILED", err)
	}
	return newAPIError(http.StatusInternalServerError, "INTERNAL_ERROR", err)
}
