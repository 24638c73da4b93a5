package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateSpotRequestValidation(t *testing.T) {
	valid := CreateSpotRequest{
		SpotID:  "A-101",
		Section: "A",
		Type:    "standard",
		Restrictions: &RestrictionsRequest{
			HourlyRate: 10,
			OperatingHours: &OperatingHoursRequest{
				Start: "08:00",
				End:   "20:00",
				Days:  []string{"monday", "friday"},
			},
		},
	}
	assert.Nil(t, ValidateStruct(valid))

	tests := []struct {
		name   string
		mutate func(*CreateSpotRequest)
	}{
		{"missing spot id", func(r *CreateSpotRequest) { r.SpotID = "" }},
		{"bad spot id", func(r *CreateSpotRequest) { r.SpotID = "!!" }},
		{"bad type", func(r *CreateSpotRequest) { r.Type = "valet" }},
		{"bad clock time", func(r *CreateSpotRequest) { r.Restrictions.OperatingHours.Start = "25:00" }},
		{"bad weekday", func(r *CreateSpotRequest) { r.Restrictions.OperatingHours.Days = []string{"someday"} }},
		{"bad permit type", func(r *CreateSpotRequest) { r.Restrictions.PermitTypes = []string{"vip"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			restrictions := *valid.Restrictions
			hours := *valid.Restrictions.OperatingHours
			restrictions.OperatingHours = &hours
			req.Restrictions = &restrictions
			tt.mutate(&req)
			assert.NotNil(t, ValidateStruct(req))
		})
	}
}

func TestSensorReadingRequestValidation(t *testing.T) {
	assert.Nil(t, ValidateStruct(SensorReadingRequest{Occupied: true, VehicleRef: "ABC123", BatteryLevel: 90, Status: "active"}))
	assert.NotNil(t, ValidateStruct(SensorReadingRequest{Status: "sleeping"}))
	assert.NotNil(t, ValidateStruct(SensorReadingRequest{BatteryLevel: 150}))
	assert.NotNil(t, ValidateStruct(SensorReadingRequest{VehicleRef: "!"}))
}

func TestRecordViolationRequestValidation(t *testing.T) {
	assert.Nil(t, ValidateStruct(RecordViolationRequest{VehicleRef: "ABC123", Type: "overtime"}))
	assert.NotNil(t, ValidateStruct(RecordViolationRequest{Type: "overtime"}))
	assert.NotNil(t, ValidateStruct(RecordViolationRequest{VehicleRef: "ABC123", Type: "loitering"}))
	assert.NotNil(t, ValidateStruct(RecordViolationRequest{
		VehicleRef: "ABC123",
		Type:       "overtime",
		Evidence:   []EvidenceRequest{{URL: "not a url"}},
	}))
}
