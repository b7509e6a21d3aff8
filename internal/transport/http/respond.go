package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"adaptive-quiz-service/internal/domain"
	"go.uber.org/zap"
)

type errorBody struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: apiError{Code: code, Message: message}})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(dst)
}

// statusFor maps a service error onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrInvalidUser),
		errors.Is(err, domain.ErrInvalidHistory):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, domain.ErrHistoryNotFound):
		return http.StatusNotFound, "HISTORY_NOT_FOUND"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, domain.ErrSessionBusy):
		return http.StatusConflict, "SESSION_BUSY"
	case errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrSessionNotCompleted),
		errors.Is(err, domain.ErrNoActiveQuestion):
		return http.StatusConflict, "SESSION_STATE"
	case errors.Is(err, domain.ErrUserConflict):
		return http.StatusConflict, "USER_CONFLICT"
	case errors.Is(err, domain.ErrPoolUnavailable),
		errors.Is(err, domain.ErrInitialization):
		return http.StatusServiceUnavailable, "POOL_UNAVAILABLE"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusBadGateway, "PERSISTENCE_FAILED"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("unhandled service error", zap.Error(err))
		message = "internal server error"
	}
	writeError(w, status, code, message)
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
