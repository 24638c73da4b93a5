package utils

import "time"

// Application constants
const (
	AppName    = "ParkWatch"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Response status
	StatusSuccess = "success"
	StatusError   = "error"

	// Error codes surfaced by the API layer
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeOutsideOperatingHours = "OUTSIDE_OPERATING_HOURS"
	ErrCodeSlotConflict          = "SLOT_CONFLICT"
	ErrCodeInvalidExtension      = "INVALID_EXTENSION"
	ErrCodeTooEarly              = "TOO_EARLY"
	ErrCodeExpired               = "EXPIRED"
	ErrCodeInvalidState          = "INVALID_STATE"
	ErrCodeAlreadyCompleted      = "ALREADY_COMPLETED"
	ErrCodePartialUpdate         = "PARTIAL_UPDATE"
	ErrCodeVersionConflict       = "VERSION_CONFLICT"
	ErrCodeInternal              = "INTERNAL_ERROR"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
)

// Reservation limits
const (
	MaxReservationWindow  = 30 * 24 * time.Hour // furthest future start accepted
	MaxReservationLength  = 24 * time.Hour
	MinReservationLength  = 15 * time.Minute
	ReservationCodeLength = 12
)

// Event names broadcast to real-time subscribers.
const (
	EventSpotReservation  = "spot:reservation"
	EventSpotOccupancy    = "spot:occupancy"
	EventSpotSensor       = "spot:sensor"
	EventSpotMaintenance  = "spot:maintenance"
	EventSpotRestrictions = "spot:restrictions"
	EventSpotViolation    = "spot:violation"
)
