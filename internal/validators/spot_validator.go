package validators

type OperatingHoursRequest struct {
	Start string   `json:"start" validate:"omitempty,clock_time"`
	End   string   `json:"end" validate:"omitempty,clock_time"`
	Days  []string `json:"days" validate:"omitempty,max=7,dive,weekday"`
}

type RestrictionsRequest struct {
	TimeLimit      int                    `json:"time_limit" validate:"omitempty,min=0,max=1440"` // minutes
	PermitRequired bool                   `json:"permit_required"`
	PermitTypes    []string               `json:"permit_types" validate:"omitempty,max=5,dive,oneof=resident employee visitor handicap electric"`
	HourlyRate     float64                `json:"hourly_rate" validate:"omitempty,min=0,max=1000"`
	OperatingHours *OperatingHoursRequest `json:"operating_hours" validate:"omitempty"`
}

type SpotLocationRequest struct {
	Coordinates []float64 `json:"coordinates" validate:"omitempty,len=2"` // [longitude, latitude]
	Level       int       `json:"level" validate:"omitempty,min=-10,max=200"`
	Building    string    `json:"building" validate:"omitempty,max=100"`
}

type CreateSpotRequest struct {
	SpotID       string               `json:"spot_id" validate:"required,spot_id"`
	Section      string               `json:"section" validate:"required,min=1,max=50"`
	Type         string               `json:"type" validate:"omitempty,oneof=standard handicap electric reserved compact motorcycle"`
	Location     *SpotLocationRequest `json:"location" validate:"omitempty"`
	Restrictions *RestrictionsRequest `json:"restrictions" validate:"omitempty"`
}

type UpdateRestrictionsRequest struct {
	Restrictions RestrictionsRequest `json:"restrictions" validate:"required"`
}

type SensorReadingRequest struct {
	Occupied     bool   `json:"occupied"`
	VehicleRef   string `json:"vehicle_ref" validate:"omitempty,license_plate"`
	BatteryLevel int    `json:"battery_level" validate:"omitempty,min=0,max=100"`
	Status       string `json:"status" validate:"omitempty,oneof=active inactive maintenance"`
}

type SetMaintenanceRequest struct {
	Status string `json:"status" validate:"required,oneof=none scheduled in-progress completed"`
	Notes  string `json:"notes" validate:"omitempty,max=500"`
}

type SetBlockedRequest struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason" validate:"omitempty,max=255"`
}
