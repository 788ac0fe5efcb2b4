package utils

import (
	"encoding/json"
	"net/http"

	"stock-backend/internal/apperrors"
)

// ErrorBody is the envelope every failed request gets
type ErrorBody struct {
	Error *apperrors.AppError `json:"error"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// NoContent answers 204 with an empty body
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes {"error": {"code", "message", "details"}} with the error's status
func Error(w http.ResponseWriter, appErr *apperrors.AppError) {
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	JSON(w, status, ErrorBody{Error: appErr})
}
