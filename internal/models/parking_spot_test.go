package models

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestSpot() *ParkingSpot {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return &ParkingSpot{
		SpotID:  "A-101",
		Section: "A",
		Type:    SpotTypeStandard,
		Status:  SpotStatusAvailable,
		Restrictions: Restrictions{
			HourlyRate: 10,
			OperatingHours: OperatingHours{
				Start: "08:00",
				End:   "20:00",
			},
		},
		Sensors:     SensorState{Status: SensorStatusActive},
		Maintenance: MaintenanceInfo{Status: MaintenanceStatusNone},
		CreatedAt:   created,
	}
}

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestReservationLifecycle(t *testing.T) {
	spot := newTestSpot()
	now := at(9, 0)

	res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), now)
	require.NoError(t, err)
	assert.Equal(t, ReservationStatusConfirmed, res.Status)
	assert.Equal(t, 20.0, res.Amount)
	assert.Len(t, res.ConfirmationCode, confirmationCodeLength)

	// Overlapping window is rejected, back-to-back is not.
	_, err = spot.CreateReservation("owner-2", at(11, 0), at(13, 0), now)
	assert.ErrorIs(t, err, ErrSlotConflict)
	backToBack, err := spot.CreateReservation("owner-2", at(12, 0), at(14, 0), now)
	require.NoError(t, err)

	// Check-in opens fifteen minutes before the reserved start.
	_, err = spot.CheckIn(res.ID, at(9, 40))
	assert.ErrorIs(t, err, ErrTooEarly)

	checkedIn, err := spot.CheckIn(res.ID, at(10, 0))
	require.NoError(t, err)
	assert.Equal(t, ReservationStatusCheckedIn, checkedIn.Status)
	assert.True(t, spot.Occupied)
	assert.Equal(t, SpotStatusOccupied, spot.Status)

	// Checking out thirty minutes late charges one started hour.
	completed, err := spot.CheckOut(res.ID, at(12, 30))
	require.NoError(t, err)
	assert.Equal(t, ReservationStatusCompleted, completed.Status)
	assert.Equal(t, 10.0, completed.OverstayFee)
	assert.False(t, spot.Occupied)
	assert.Equal(t, SpotStatusAvailable, spot.Status)

	assert.Equal(t, 1, spot.Statistics.OccupancyCount)
	assert.Equal(t, 150, spot.Statistics.TotalOccupancyTime)
	assert.Equal(t, 25.0, spot.Statistics.Revenue)
	assert.Greater(t, spot.Statistics.TurnoverRate, 0.0)

	// The completed stay no longer blocks its old window.
	require.NoError(t, spot.CheckAvailability(at(10, 0), at(12, 0)))

	// The back-to-back reservation is untouched.
	assert.Equal(t, ReservationStatusConfirmed, spot.FindReservation(backToBack.ID).Status)
}

func TestCheckAvailability(t *testing.T) {
	spot := newTestSpot()

	err := spot.CheckAvailability(at(12, 0), at(12, 0))
	assert.ErrorIs(t, err, ErrValidation)

	err = spot.CheckAvailability(at(7, 0), at(9, 0))
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)

	err = spot.CheckAvailability(at(19, 0), at(21, 0))
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)

	require.NoError(t, spot.CheckAvailability(at(8, 0), at(20, 0)))
}

func TestCheckAvailabilityDayRestriction(t *testing.T) {
	spot := newTestSpot()
	spot.Restrictions.OperatingHours.Days = []string{"monday", "tuesday"}

	// 2025-03-10 is a Monday.
	require.NoError(t, spot.CheckAvailability(at(10, 0), at(11, 0)))

	wednesday := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	err := spot.CheckAvailability(wednesday, wednesday.Add(time.Hour))
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)
}

func TestCheckAvailabilityUnrestrictedHours(t *testing.T) {
	spot := newTestSpot()
	spot.Restrictions.OperatingHours = OperatingHours{}

	require.NoError(t, spot.CheckAvailability(at(2, 0), at(4, 0)))
}

func TestCancelledReservationFreesWindow(t *testing.T) {
	spot := newTestSpot()
	now := at(9, 0)

	res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), now)
	require.NoError(t, err)
	require.NoError(t, spot.CancelReservation(res.ID))

	// Idempotent.
	require.NoError(t, spot.CancelReservation(res.ID))
	assert.Equal(t, ReservationStatusCancelled, spot.FindReservation(res.ID).Status)

	_, err = spot.CreateReservation("owner-2", at(10, 0), at(12, 0), now)
	require.NoError(t, err)
}

func TestCancelCompletedReservation(t *testing.T) {
	spot := newTestSpot()

	res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), at(9, 0))
	require.NoError(t, err)
	_, err = spot.CheckIn(res.ID, at(10, 0))
	require.NoError(t, err)
	_, err = spot.CheckOut(res.ID, at(11, 30))
	require.NoError(t, err)

	err = spot.CancelReservation(res.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestExtendReservation(t *testing.T) {
	spot := newTestSpot()
	now := at(9, 0)

	res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), now)
	require.NoError(t, err)
	later, err := spot.CreateReservation("owner-2", at(14, 0), at(16, 0), now)
	require.NoError(t, err)

	err = spot.ExtendReservation(res.ID, at(11, 0))
	assert.ErrorIs(t, err, ErrInvalidExtension)

	err = spot.ExtendReservation(res.ID, at(21, 0))
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)

	err = spot.ExtendReservation(res.ID, at(15, 0))
	assert.ErrorIs(t, err, ErrSlotConflict)

	require.NoError(t, spot.ExtendReservation(res.ID, at(13, 0)))
	assert.Equal(t, at(13, 0), res.EndTime)
	assert.Equal(t, 30.0, res.Amount)

	// Cancelled neighbours stop blocking the extension.
	require.NoError(t, spot.CancelReservation(later.ID))
	require.NoError(t, spot.ExtendReservation(res.ID, at(15, 0)))

	// Only confirmed reservations can be extended.
	_, err = spot.CheckIn(res.ID, at(10, 0))
	require.NoError(t, err)
	err = spot.ExtendReservation(res.ID, at(16, 0))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCheckInGuards(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		spot := newTestSpot()
		res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), at(9, 0))
		require.NoError(t, err)
		_, err = spot.CheckIn(res.ID, at(12, 1))
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("blocked spot", func(t *testing.T) {
		spot := newTestSpot()
		res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), at(9, 0))
		require.NoError(t, err)
		require.NoError(t, spot.SetBlocked(true))
		_, err = spot.CheckIn(res.ID, at(10, 0))
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("maintenance in progress", func(t *testing.T) {
		spot := newTestSpot()
		res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), at(9, 0))
		require.NoError(t, err)
		require.NoError(t, spot.SetMaintenance(MaintenanceStatusInProgress, "resurfacing", at(9, 30)))
		_, err = spot.CheckIn(res.ID, at(10, 0))
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("cancelled reservation", func(t *testing.T) {
		spot := newTestSpot()
		res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), at(9, 0))
		require.NoError(t, err)
		require.NoError(t, spot.CancelReservation(res.ID))
		_, err = spot.CheckIn(res.ID, at(10, 0))
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("double check-out", func(t *testing.T) {
		spot := newTestSpot()
		res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), at(9, 0))
		require.NoError(t, err)
		_, err = spot.CheckIn(res.ID, at(10, 0))
		require.NoError(t, err)
		_, err = spot.CheckOut(res.ID, at(11, 0))
		require.NoError(t, err)
		_, err = spot.CheckOut(res.ID, at(11, 30))
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestOverstayFee(t *testing.T) {
	end := at(12, 0)
	tests := []struct {
		name     string
		checkOut time.Time
		rate     float64
		want     float64
	}{
		{"on time", at(12, 0), 10, 0},
		{"early", at(11, 30), 10, 0},
		{"one minute over", at(12, 1), 10, 10},
		{"exactly one hour over", at(13, 0), 10, 10},
		{"one hour one minute over", at(13, 1), 10, 20},
		{"free spot", at(13, 0), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverstayFee(end, tt.checkOut, tt.rate))
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name        string
		occupied    bool
		maintenance MaintenanceStatus
		blocked     bool
		want        SpotStatus
	}{
		{"free", false, MaintenanceStatusNone, false, SpotStatusAvailable},
		{"occupied", true, MaintenanceStatusNone, false, SpotStatusOccupied},
		{"blocked", false, MaintenanceStatusNone, true, SpotStatusBlocked},
		{"maintenance wins over occupied", true, MaintenanceStatusInProgress, false, SpotStatusMaintenance},
		{"maintenance wins over blocked", false, MaintenanceStatusInProgress, true, SpotStatusMaintenance},
		{"occupied wins over blocked", true, MaintenanceStatusNone, true, SpotStatusOccupied},
		{"scheduled maintenance stays available", false, MaintenanceStatusScheduled, false, SpotStatusAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.occupied, tt.maintenance, tt.blocked))
		})
	}
}

func TestApplySensorReading(t *testing.T) {
	spot := newTestSpot()

	spot.ApplySensorReading(true, "ABC123", 85, SensorStatusActive, at(10, 0))
	assert.True(t, spot.Occupied)
	assert.Equal(t, "ABC123", spot.CurrentVehicle)
	assert.Equal(t, SpotStatusOccupied, spot.Status)
	assert.Equal(t, 85, spot.Sensors.BatteryLevel)
	require.NotNil(t, spot.LastOccupied)

	// A repeated occupied reading only refreshes the sensor block.
	spot.ApplySensorReading(true, "", 80, SensorStatusActive, at(10, 30))
	assert.Equal(t, "ABC123", spot.CurrentVehicle)
	assert.Equal(t, 0, spot.Statistics.OccupancyCount)

	spot.ApplySensorReading(false, "", 79, SensorStatusActive, at(11, 0))
	assert.False(t, spot.Occupied)
	assert.Empty(t, spot.CurrentVehicle)
	assert.Equal(t, SpotStatusAvailable, spot.Status)
	assert.Equal(t, 1, spot.Statistics.OccupancyCount)
	assert.Equal(t, 60, spot.Statistics.TotalOccupancyTime)
}

// A sensor free reading during a checked-in stay closes the occupancy
// period; the later check-out must not fold the same interval in again.
func TestSensorFreeThenCheckOutCountsOnce(t *testing.T) {
	spot := newTestSpot()

	res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), at(9, 0))
	require.NoError(t, err)
	_, err = spot.CheckIn(res.ID, at(10, 0))
	require.NoError(t, err)

	spot.ApplySensorReading(false, "", 90, SensorStatusActive, at(11, 0))
	assert.Equal(t, 1, spot.Statistics.OccupancyCount)
	assert.Equal(t, 60, spot.Statistics.TotalOccupancyTime)

	completed, err := spot.CheckOut(res.ID, at(11, 30))
	require.NoError(t, err)
	assert.Equal(t, ReservationStatusCompleted, completed.Status)
	assert.Equal(t, 1, spot.Statistics.OccupancyCount, "same stay must not be counted twice")
	assert.Equal(t, 60, spot.Statistics.TotalOccupancyTime)
	assert.Equal(t, 10.0, spot.Statistics.Revenue)
}

func TestSetMaintenance(t *testing.T) {
	spot := newTestSpot()

	err := spot.SetMaintenance("broken", "", at(9, 0))
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, spot.SetMaintenance(MaintenanceStatusInProgress, "repainting lines", at(9, 0)))
	assert.Equal(t, SpotStatusMaintenance, spot.Status)

	require.NoError(t, spot.SetMaintenance(MaintenanceStatusCompleted, "", at(11, 0)))
	assert.Equal(t, SpotStatusAvailable, spot.Status)
	require.NotNil(t, spot.Maintenance.LastMaintenance)
	require.Len(t, spot.Maintenance.History, 1)
	assert.Equal(t, "repainting lines", spot.Maintenance.History[0].Description)
}

func TestSetBlocked(t *testing.T) {
	spot := newTestSpot()
	spot.Occupied = true

	err := spot.SetBlocked(true)
	assert.ErrorIs(t, err, ErrInvalidState)

	spot.Occupied = false
	require.NoError(t, spot.SetBlocked(true))
	assert.Equal(t, SpotStatusBlocked, spot.Status)

	require.NoError(t, spot.SetBlocked(false))
	assert.Equal(t, SpotStatusAvailable, spot.Status)
}

func TestUpcomingReservations(t *testing.T) {
	spot := newTestSpot()
	now := at(9, 0)

	later, err := spot.CreateReservation("owner-1", at(14, 0), at(15, 0), now)
	require.NoError(t, err)
	sooner, err := spot.CreateReservation("owner-2", at(10, 0), at(11, 0), now)
	require.NoError(t, err)
	cancelled, err := spot.CreateReservation("owner-1", at(16, 0), at(17, 0), now)
	require.NoError(t, err)
	require.NoError(t, spot.CancelReservation(cancelled.ID))

	upcoming := spot.UpcomingReservations("", now)
	require.Len(t, upcoming, 2)
	assert.Equal(t, sooner.ID, upcoming[0].ID)
	assert.Equal(t, later.ID, upcoming[1].ID)

	mine := spot.UpcomingReservations("owner-1", now)
	require.Len(t, mine, 1)
	assert.Equal(t, later.ID, mine[0].ID)

	// Reservations already started are not upcoming.
	assert.Empty(t, spot.UpcomingReservations("", at(18, 0)))
}

func TestCurrentReservation(t *testing.T) {
	spot := newTestSpot()

	res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), at(9, 0))
	require.NoError(t, err)

	assert.Nil(t, spot.CurrentReservation(at(9, 30)))
	current := spot.CurrentReservation(at(10, 30))
	require.NotNil(t, current)
	assert.Equal(t, res.ID, current.ID)
	assert.Nil(t, spot.CurrentReservation(at(12, 0)))
}

func TestAppendViolation(t *testing.T) {
	spot := newTestSpot()
	now := at(13, 0)

	rec := spot.AppendViolation(ViolationTypeOvertime, "XYZ789", "meter expired", nil, now)
	assert.Equal(t, ViolationStatusPending, rec.Status)
	assert.False(t, rec.ID.IsZero())
	assert.Equal(t, 1, spot.Statistics.ViolationCount)
	require.NotNil(t, spot.Statistics.LastViolation)
	assert.Equal(t, now, *spot.Statistics.LastViolation)
}

// Whatever order random windows arrive in, accepted reservations never
// overlap each other.
func TestReservationNonOverlapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	spot := newTestSpot()
	spot.Restrictions.OperatingHours = OperatingHours{}
	now := at(0, 0)

	for i := 0; i < 200; i++ {
		start := now.Add(time.Duration(rng.Intn(1440)) * time.Minute)
		end := start.Add(time.Duration(1+rng.Intn(180)) * time.Minute)
		_, err := spot.CreateReservation("owner", start, end, now)
		if err != nil {
			assert.ErrorIs(t, err, ErrSlotConflict)
		}
	}

	active := spot.Reservations
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			overlap := a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime)
			assert.False(t, overlap, "reservations %d and %d overlap", i, j)
		}
	}
}

func TestOperatingHoursWindow(t *testing.T) {
	oh := OperatingHours{Start: "08:00", End: "20:00"}

	assert.True(t, oh.AllowsWindow(at(8, 0), at(20, 0)))
	assert.False(t, oh.AllowsWindow(at(7, 59), at(9, 0)))
	assert.False(t, oh.AllowsWindow(at(19, 0), at(20, 1)))
	assert.True(t, oh.AllowsEnd(at(20, 0)))
	assert.False(t, oh.AllowsEnd(at(20, 1)))

	// Malformed values disable the window check.
	loose := OperatingHours{Start: "soon", End: "later"}
	assert.True(t, loose.AllowsWindow(at(3, 0), at(4, 0)))
}

func TestCheckInLateButBeforeEnd(t *testing.T) {
	spot := newTestSpot()
	res, err := spot.CreateReservation("owner-1", at(10, 0), at(12, 0), at(9, 0))
	require.NoError(t, err)

	checkedIn, err := spot.CheckIn(res.ID, at(11, 45))
	require.NoError(t, err)
	assert.Equal(t, ReservationStatusCheckedIn, checkedIn.Status)
}

func TestLookupUnknownIDs(t *testing.T) {
	spot := newTestSpot()
	missing := primitive.NewObjectID()

	_, err := spot.CheckIn(missing, at(10, 0))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = spot.CheckOut(missing, at(10, 0))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, spot.CancelReservation(missing), ErrNotFound)
	assert.ErrorIs(t, spot.ExtendReservation(missing, at(11, 0)), ErrNotFound)
}
