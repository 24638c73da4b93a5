package handlers

import (
	"parkwatch/internal/config"
	"parkwatch/internal/models"
	"parkwatch/internal/repositories/interfaces"
	"parkwatch/internal/services"
	"parkwatch/internal/utils"
	"parkwatch/internal/validators"

	"github.com/gin-gonic/gin"
)

type SpotHandler struct {
	spotService services.SpotService
	parkingCfg  *config.ParkingConfig
}

func NewSpotHandler(spotService services.SpotService, parkingCfg *config.ParkingConfig) *SpotHandler {
	return &SpotHandler{
		spotService: spotService,
		parkingCfg:  parkingCfg,
	}
}

// CreateSpot registers a new parking spot
func (h *SpotHandler) CreateSpot(c *gin.Context) {
	var request validators.CreateSpotRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	spot := &models.ParkingSpot{
		SpotID:  request.SpotID,
		Section: request.Section,
		Type:    models.SpotType(request.Type),
	}
	if request.Location != nil {
		spot.Location = models.SpotLocation{
			Coordinates: request.Location.Coordinates,
			Level:       request.Location.Level,
			Building:    request.Location.Building,
		}
	}
	if request.Restrictions != nil {
		spot.Restrictions = restrictionsFromRequest(*request.Restrictions)
	}
	h.applyDefaults(spot)

	if err := h.spotService.CreateSpot(c.Request.Context(), spot); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Spot created successfully", spot)
}

// GetSpot retrieves a single spot by its identifier
func (h *SpotHandler) GetSpot(c *gin.Context) {
	spot, err := h.spotService.GetSpot(c.Request.Context(), c.Param("spot_id"))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Spot retrieved successfully", spot)
}

// ListSpots lists spots filtered by section, type, and status
func (h *SpotHandler) ListSpots(c *gin.Context) {
	filter := interfaces.SpotFilter{
		Section: c.Query("section"),
		Type:    models.SpotType(c.Query("type")),
		Status:  models.SpotStatus(c.Query("status")),
	}
	params := utils.GetPaginationParams(c)

	spots, total, err := h.spotService.ListSpots(c.Request.Context(), filter, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Spots retrieved successfully", spots, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
		Count:      len(spots),
	})
}

// DeleteSpot removes a spot without an active reservation
func (h *SpotHandler) DeleteSpot(c *gin.Context) {
	if err := h.spotService.DeleteSpot(c.Request.Context(), c.Param("spot_id")); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Spot deleted successfully", nil)
}

// UpdateRestrictions replaces the spot's restriction set
func (h *SpotHandler) UpdateRestrictions(c *gin.Context) {
	var request validators.UpdateRestrictionsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	spot, err := h.spotService.UpdateRestrictions(c.Request.Context(), c.Param("spot_id"),
		restrictionsFromRequest(request.Restrictions))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Restrictions updated successfully", spot)
}

// UpdateSensor ingests an occupancy sensor reading
func (h *SpotHandler) UpdateSensor(c *gin.Context) {
	var request validators.SensorReadingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	reading := services.SensorReading{
		Occupied:     request.Occupied,
		VehicleRef:   request.VehicleRef,
		BatteryLevel: request.BatteryLevel,
		Status:       models.SensorStatus(request.Status),
	}
	spot, err := h.spotService.UpdateSensor(c.Request.Context(), c.Param("spot_id"), reading)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Sensor reading applied successfully", spot)
}

// SetMaintenance moves the spot through its maintenance lifecycle
func (h *SpotHandler) SetMaintenance(c *gin.Context) {
	var request validators.SetMaintenanceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	spot, err := h.spotService.SetMaintenance(c.Request.Context(), c.Param("spot_id"),
		models.MaintenanceStatus(request.Status), request.Notes)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Maintenance status updated successfully", spot)
}

// SetBlocked blocks or unblocks a free spot
func (h *SpotHandler) SetBlocked(c *gin.Context) {
	var request validators.SetBlockedRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	spot, err := h.spotService.SetBlocked(c.Request.Context(), c.Param("spot_id"), request.Blocked)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Blocked state updated successfully", spot)
}

// applyDefaults fills unset restriction fields from the configured
// operational defaults.
func (h *SpotHandler) applyDefaults(spot *models.ParkingSpot) {
	if h.parkingCfg == nil {
		return
	}
	if spot.Restrictions.HourlyRate == 0 {
		spot.Restrictions.HourlyRate = h.parkingCfg.DefaultHourlyRate
	}
	if spot.Restrictions.OperatingHours.Start == "" && spot.Restrictions.OperatingHours.End == "" {
		spot.Restrictions.OperatingHours.Start = h.parkingCfg.DefaultOperatingFrom
		spot.Restrictions.OperatingHours.End = h.parkingCfg.DefaultOperatingTo
	}
}

func restrictionsFromRequest(r validators.RestrictionsRequest) models.Restrictions {
	restrictions := models.Restrictions{
		TimeLimit:      r.TimeLimit,
		PermitRequired: r.PermitRequired,
		HourlyRate:     r.HourlyRate,
	}
	for _, pt := range r.PermitTypes {
		restrictions.PermitTypes = append(restrictions.PermitTypes, models.PermitType(pt))
	}
	if r.OperatingHours != nil {
		restrictions.OperatingHours = models.OperatingHours{
			Start: r.OperatingHours.Start,
			End:   r.OperatingHours.End,
			Days:  r.OperatingHours.Days,
		}
	}
	return restrictions
}
