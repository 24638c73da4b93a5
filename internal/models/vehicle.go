package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleViolationStatus string

const (
	VehicleViolationNone    VehicleViolationStatus = "none"
	VehicleViolationWarning VehicleViolationStatus = "warning"
	VehicleViolationActive  VehicleViolationStatus = "violation"
)

// Vehicle carries the per-vehicle aggregates mutated as a side effect of
// violation recording. It is keyed by license plate, which is also the weak
// reference stored on spots and violation records.
type Vehicle struct {
	ID              primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	LicensePlate    string                 `json:"license_plate" bson:"license_plate" validate:"required"`
	Make            string                 `json:"make" bson:"make"`
	Model           string                 `json:"model" bson:"model"`
	Color           string                 `json:"color" bson:"color"`
	IsParked        bool                   `json:"is_parked" bson:"is_parked"`
	CurrentSpotID   string                 `json:"current_spot_id" bson:"current_spot_id"`
	EntryTime       *time.Time             `json:"entry_time" bson:"entry_time"`
	ExitTime        *time.Time             `json:"exit_time" bson:"exit_time"`
	ViolationStatus VehicleViolationStatus `json:"violation_status" bson:"violation_status" default:"none"`
	ViolationCount  int                    `json:"violation_count" bson:"violation_count"`
	LastViolation   *time.Time             `json:"last_violation" bson:"last_violation"`
	Notes           string                 `json:"notes" bson:"notes"`
	CreatedAt       time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at" bson:"updated_at"`
}

// RecordViolation applies the aggregate half of a violation report.
func (v *Vehicle) RecordViolation(at time.Time) {
	v.ViolationCount++
	v.LastViolation = &at
	v.ViolationStatus = VehicleViolationActive
}
