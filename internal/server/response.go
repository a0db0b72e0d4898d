package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/me/rtsched/pkg/model"
)

// requestID generates a unique request identifier.
func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

func respondOK(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusOK, reqID, data, nil, nil)
}

func respondCreated(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusCreated, reqID, data, nil, nil)
}

func respondList(w http.ResponseWriter, reqID string, data any, pg *model.Pagination) {
	respondJSON(w, http.StatusOK, reqID, data, pg, nil)
}

func respondError(w http.ResponseWriter, reqID string, status int, apiErr *model.APIError) {
	respondJSON(w, status, reqID, nil, nil, apiErr)
}

// respondInputError reports a task-set input problem as 400, keeping the
// field details of a validation error.
func respondInputError(w http.ResponseWriter, reqID string, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		apiErr = model.NewValidationError(err.Error())
	}
	respondError(w, reqID, http.StatusBadRequest, apiErr)
}

func respondInternal(w http.ResponseWriter, reqID string, err error) {
	respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
		Code:    model.ErrInternal,
		Message: err.Error(),
	})
}

func respondJSON(w http.ResponseWriter, status int, reqID string, data any, pg *model.Pagination, apiErr *model.APIError) {
	resp := model.Response{
		Status:     "ok",
		RequestID:  reqID,
		Timestamp:  time.Now().UTC(),
		Data:       data,
		Pagination: pg,
		Error:      apiErr,
	}
	if apiErr != nil {
		resp.Status = "error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// decodeJSON reads a JSON body of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewValidationError(fmt.Sprintf("Invalid JSON body: %v", err))
	}
	return nil
}
