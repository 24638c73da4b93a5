package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCheckedIn ReservationStatus = "checked-in"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// Reservation is an embedded sub-document owned by a ParkingSpot. It is never
// referenced from outside the spot except by identity lookup.
type Reservation struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID          string             `json:"owner_id" bson:"owner_id" validate:"required"`
	StartTime        time.Time          `json:"start_time" bson:"start_time" validate:"required"`
	EndTime          time.Time          `json:"end_time" bson:"end_time" validate:"required"`
	Status           ReservationStatus  `json:"status" bson:"status" default:"confirmed"`
	Amount           float64            `json:"amount" bson:"amount"`
	ConfirmationCode string             `json:"confirmation_code" bson:"confirmation_code"`
	CheckInAt        *time.Time         `json:"check_in_at" bson:"check_in_at"`
	CheckOutAt       *time.Time         `json:"check_out_at" bson:"check_out_at"`
	OverstayFee      float64            `json:"overstay_fee" bson:"overstay_fee"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
}

// Overlaps reports whether [r.StartTime, r.EndTime) intersects [start, end).
// Back-to-back intervals do not overlap.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}

// Active reports whether the reservation still holds its time slot.
func (r *Reservation) Active() bool {
	return r.Status == ReservationStatusConfirmed || r.Status == ReservationStatusCheckedIn
}

// Contains reports whether t falls inside the reserved interval.
func (r *Reservation) Contains(t time.Time) bool {
	return !t.Before(r.StartTime) && t.Before(r.EndTime)
}
