package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"willplay/internal/services"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrEncoding   = errors.New("failed to encode")
	ErrInternal   = errors.New("internal error")
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// httpError writes err as plain text, hiding details of unexpected failures.
func httpError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = ErrInternal.Error()
	}
	http.Error(w, msg, status)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error(ErrEncoding.Error(), slog.String("error", err.Error()))
	}
}
