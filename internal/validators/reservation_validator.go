package validators

import "time"

type CheckAvailabilityRequest struct {
	StartTime time.Time `json:"start_time" form:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" form:"end_time" validate:"required,gtfield=StartTime"`
}

type CreateReservationRequest struct {
	OwnerID   string    `json:"owner_id" validate:"required,min=1,max=64"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

type ExtendReservationRequest struct {
	NewEndTime time.Time `json:"new_end_time" validate:"required"`
}
