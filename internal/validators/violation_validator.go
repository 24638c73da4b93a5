package validators

import "time"

type EvidenceRequest struct {
	URL       string    `json:"url" validate:"required,url,max=500"`
	Timestamp time.Time `json:"timestamp" validate:"omitempty"`
}

type RecordViolationRequest struct {
	VehicleRef  string            `json:"vehicle_ref" validate:"required,license_plate"`
	Type        string            `json:"type" validate:"required,oneof=overtime no_permit invalid_permit unauthorized_vehicle payment_required"`
	Description string            `json:"description" validate:"omitempty,max=500"`
	Evidence    []EvidenceRequest `json:"evidence" validate:"omitempty,max=10,dive"`
}

type UpdateViolationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending issued appealed resolved"`
}

type IssueFineRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0,max=10000"`
}
