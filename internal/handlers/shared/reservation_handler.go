package handlers

import (
	"parkwatch/internal/services"
	"parkwatch/internal/utils"
	"parkwatch/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationHandler struct {
	reservationService services.ReservationService
}

func NewReservationHandler(reservationService services.ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// CheckAvailability reports whether a window is bookable on a spot
func (h *ReservationHandler) CheckAvailability(c *gin.Context) {
	start, err := utils.ParseTimeISO(c.Query("start_time"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid start_time")
		return
	}
	end, err := utils.ParseTimeISO(c.Query("end_time"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid end_time")
		return
	}

	if err := h.reservationService.CheckAvailability(c.Request.Context(), c.Param("spot_id"), start, end); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Spot is available", gin.H{"available": true})
}

// CreateReservation books a window on a spot
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var request validators.CreateReservationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	reservation, err := h.reservationService.CreateReservation(c.Request.Context(),
		c.Param("spot_id"), request.OwnerID, request.StartTime, request.EndTime)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, "Reservation created successfully", reservation)
}

// ExtendReservation pushes a confirmed reservation's end time out
func (h *ReservationHandler) ExtendReservation(c *gin.Context) {
	reservationID, ok := h.reservationID(c)
	if !ok {
		return
	}

	var request validators.ExtendReservationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	reservation, err := h.reservationService.ExtendReservation(c.Request.Context(),
		c.Param("spot_id"), reservationID, request.NewEndTime)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Reservation extended successfully", reservation)
}

// CancelReservation cancels a reservation; cancelling twice is a no-op
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	reservationID, ok := h.reservationID(c)
	if !ok {
		return
	}

	if err := h.reservationService.CancelReservation(c.Request.Context(), c.Param("spot_id"), reservationID); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Reservation cancelled successfully", nil)
}

// CheckIn marks the reserved vehicle as arrived and occupies the spot
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	reservationID, ok := h.reservationID(c)
	if !ok {
		return
	}

	reservation, err := h.reservationService.CheckIn(c.Request.Context(), c.Param("spot_id"), reservationID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Checked in successfully", reservation)
}

// CheckOut completes the stay, charging any overstay fee
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	reservationID, ok := h.reservationID(c)
	if !ok {
		return
	}

	reservation, err := h.reservationService.CheckOut(c.Request.Context(), c.Param("spot_id"), reservationID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Checked out successfully", reservation)
}

// CurrentReservation returns the reservation covering now, if any
func (h *ReservationHandler) CurrentReservation(c *gin.Context) {
	reservation, err := h.reservationService.CurrentReservation(c.Request.Context(), c.Param("spot_id"))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Current reservation retrieved successfully", reservation)
}

// UpcomingReservations lists future confirmed reservations, optionally
// filtered by owner
func (h *ReservationHandler) UpcomingReservations(c *gin.Context) {
	reservations, err := h.reservationService.UpcomingReservations(c.Request.Context(),
		c.Param("spot_id"), c.Query("owner_id"))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponseWithMeta(c, "Upcoming reservations retrieved successfully", reservations, &utils.Meta{
		Count: len(reservations),
	})
}

func (h *ReservationHandler) reservationID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("reservation_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid reservation ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
