package models

import "errors"

// Domain errors returned by spot, reservation and violation operations.
// Callers match them with errors.Is; the HTTP layer maps them to status codes.
var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrOutsideOperatingHours = errors.New("outside operating hours")
	ErrSlotConflict          = errors.New("time slot conflict")
	ErrInvalidExtension      = errors.New("invalid extension")
	ErrTooEarly              = errors.New("too early to check in")
	ErrExpired               = errors.New("reservation expired")
	ErrInvalidState          = errors.New("invalid state for transition")
	ErrAlreadyCompleted      = errors.New("reservation already completed")
	ErrPartialUpdate         = errors.New("partial update")
	ErrVersionConflict       = errors.New("version conflict")
)
