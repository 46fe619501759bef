package services

import "errors"

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("catalog unavailable")
	ErrForbidden       = errors.New("forbidden")
)

const MsgGameNotFound = "Game not found or data unavailable"
