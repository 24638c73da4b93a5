package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ViolationType string
type ViolationStatus string
type FineStatus string

const (
	ViolationTypeOvertime        ViolationType = "overtime"
	ViolationTypeNoPermit        ViolationType = "no_permit"
	ViolationTypeInvalidPermit   ViolationType = "invalid_permit"
	ViolationTypeUnauthorized    ViolationType = "unauthorized_vehicle"
	ViolationTypePaymentRequired ViolationType = "payment_required"

	ViolationStatusPending  ViolationStatus = "pending"
	ViolationStatusIssued   ViolationStatus = "issued"
	ViolationStatusAppealed ViolationStatus = "appealed"
	ViolationStatusResolved ViolationStatus = "resolved"

	FineStatusPending FineStatus = "pending"
	FineStatusPaid    FineStatus = "paid"
	FineStatusWaived  FineStatus = "waived"
)

type Evidence struct {
	URL       string    `json:"url" bson:"url"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type Fine struct {
	Amount float64    `json:"amount" bson:"amount"`
	Status FineStatus `json:"status" bson:"status" default:"pending"`
	PaidAt *time.Time `json:"paid_at" bson:"paid_at"`
}

// ViolationRecord is an embedded sub-document owned by the spot that issued
// it. Vehicle aggregates are mutated as a side effect, never owned here.
type ViolationRecord struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type        ViolationType      `json:"type" bson:"type" validate:"required"`
	VehicleRef  string             `json:"vehicle_ref" bson:"vehicle_ref" validate:"required"`
	Timestamp   time.Time          `json:"timestamp" bson:"timestamp"`
	Description string             `json:"description" bson:"description"`
	Evidence    []Evidence         `json:"evidence" bson:"evidence"`
	Status      ViolationStatus    `json:"status" bson:"status" default:"pending"`
	Fine        *Fine              `json:"fine" bson:"fine"`
}

// Open reports whether the record still counts against the vehicle's
// aggregate violation status.
func (v *ViolationRecord) Open() bool {
	return v.Status == ViolationStatusPending || v.Status == ViolationStatusIssued
}
