package routes

import (
	handlers "parkwatch/internal/handlers/shared"
	"parkwatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSpotRoutes wires the parking spot surface: registry, reservations,
// occupancy, and violations.
func SetupSpotRoutes(r *gin.RouterGroup, jwtSecret string,
	spotHandler *handlers.SpotHandler,
	reservationHandler *handlers.ReservationHandler,
	violationHandler *handlers.ViolationHandler) {

	spots := r.Group("/spots")
	spots.Use(middleware.AuthRequired(jwtSecret))
	{
		// Registry
		spots.POST("", middleware.AdminRequired(), spotHandler.CreateSpot)
		spots.GET("", spotHandler.ListSpots)
		spots.GET("/:spot_id", spotHandler.GetSpot)
		spots.DELETE("/:spot_id", middleware.AdminRequired(), spotHandler.DeleteSpot)
		spots.PUT("/:spot_id/restrictions", middleware.AdminRequired(), spotHandler.UpdateRestrictions)
		spots.PUT("/:spot_id/maintenance", middleware.EnforcerRequired(), spotHandler.SetMaintenance)
		spots.PUT("/:spot_id/blocked", middleware.EnforcerRequired(), spotHandler.SetBlocked)

		// Sensor ingestion
		spots.PUT("/:spot_id/sensor", spotHandler.UpdateSensor)

		// Reservations
		spots.GET("/:spot_id/availability", reservationHandler.CheckAvailability)
		spots.POST("/:spot_id/reservations", reservationHandler.CreateReservation)
		spots.GET("/:spot_id/reservations/current", reservationHandler.CurrentReservation)
		spots.GET("/:spot_id/reservations/upcoming", reservationHandler.UpcomingReservations)
		spots.PUT("/:spot_id/reservations/:reservation_id/extend", reservationHandler.ExtendReservation)
		spots.DELETE("/:spot_id/reservations/:reservation_id", reservationHandler.CancelReservation)
		spots.POST("/:spot_id/reservations/:reservation_id/checkin", reservationHandler.CheckIn)
		spots.POST("/:spot_id/reservations/:reservation_id/checkout", reservationHandler.CheckOut)

		// Violations
		spots.POST("/:spot_id/violations", middleware.EnforcerRequired(), violationHandler.RecordViolation)
		spots.GET("/:spot_id/violations", violationHandler.ListViolations)
		spots.PUT("/:spot_id/violations/:violation_id/status", middleware.EnforcerRequired(), violationHandler.UpdateViolationStatus)
		spots.POST("/:spot_id/violations/:violation_id/fine", middleware.EnforcerRequired(), violationHandler.IssueFine)
		spots.POST("/:spot_id/violations/:violation_id/fine/pay", violationHandler.MarkFinePaid)
		spots.POST("/:spot_id/violations/:violation_id/fine/waive", middleware.AdminRequired(), violationHandler.WaiveFine)
	}
}
