package services

import (
	"context"
	"fmt"
	"time"

	"parkwatch/internal/models"
	"parkwatch/internal/repositories/interfaces"
	"parkwatch/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReservationService fronts the per-spot reservation ledger and the
// reservation-driven occupancy transitions. All mutations run under the
// per-spot critical section; conflicting bookings race on the lock, not on
// the data.
type ReservationService interface {
	CheckAvailability(ctx context.Context, spotID string, start, end time.Time) error
	CreateReservation(ctx context.Context, spotID, ownerID string, start, end time.Time) (*models.Reservation, error)
	ExtendReservation(ctx context.Context, spotID string, reservationID primitive.ObjectID, newEnd time.Time) (*models.Reservation, error)
	CancelReservation(ctx context.Context, spotID string, reservationID primitive.ObjectID) error
	CheckIn(ctx context.Context, spotID string, reservationID primitive.ObjectID) (*models.Reservation, error)
	CheckOut(ctx context.Context, spotID string, reservationID primitive.ObjectID) (*models.Reservation, error)
	CurrentReservation(ctx context.Context, spotID string) (*models.Reservation, error)
	UpcomingReservations(ctx context.Context, spotID, ownerID string) ([]models.Reservation, error)
}

type reservationService struct {
	spotRepo interfaces.SpotRepository
	notifier NotificationService
	locks    *SpotLocks
	now      func() time.Time
}

func NewReservationService(spotRepo interfaces.SpotRepository, notifier NotificationService, locks *SpotLocks) ReservationService {
	return &reservationService{
		spotRepo: spotRepo,
		notifier: notifier,
		locks:    locks,
		now:      time.Now,
	}
}

func (s *reservationService) mutate(ctx context.Context, spotID string, fn func(*models.ParkingSpot) error) (*models.ParkingSpot, error) {
	unlock := s.locks.lock(spotID)
	defer unlock()

	spot, err := s.spotRepo.GetBySpotID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if err := fn(spot); err != nil {
		return nil, err
	}
	if err := s.spotRepo.Replace(ctx, spot); err != nil {
		return nil, err
	}
	return spot, nil
}

func (s *reservationService) CheckAvailability(ctx context.Context, spotID string, start, end time.Time) error {
	spot, err := s.spotRepo.GetBySpotID(ctx, spotID)
	if err != nil {
		return err
	}
	return spot.CheckAvailability(start, end)
}

func (s *reservationService) CreateReservation(ctx context.Context, spotID, ownerID string, start, end time.Time) (*models.Reservation, error) {
	now := s.now()
	if end.Sub(start) < utils.MinReservationLength {
		return nil, fmt.Errorf("%w: reservation shorter than %s", models.ErrValidation, utils.MinReservationLength)
	}
	if end.Sub(start) > utils.MaxReservationLength {
		return nil, fmt.Errorf("%w: reservation longer than %s", models.ErrValidation, utils.MaxReservationLength)
	}
	if start.After(now.Add(utils.MaxReservationWindow)) {
		return nil, fmt.Errorf("%w: start time too far in the future", models.ErrValidation)
	}

	var created models.Reservation
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		res, err := spot.CreateReservation(ownerID, start, end, now)
		if err != nil {
			return err
		}
		created = *res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotReservation, map[string]interface{}{
		"action":         "created",
		"reservation_id": created.ID.Hex(),
		"owner_id":       created.OwnerID,
		"start_time":     created.StartTime,
		"end_time":       created.EndTime,
		"amount":         created.Amount,
	})
	return &created, nil
}

func (s *reservationService) ExtendReservation(ctx context.Context, spotID string, reservationID primitive.ObjectID, newEnd time.Time) (*models.Reservation, error) {
	var extended models.Reservation
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		if err := spot.ExtendReservation(reservationID, newEnd); err != nil {
			return err
		}
		extended = *spot.FindReservation(reservationID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotReservation, map[string]interface{}{
		"action":         "extended",
		"reservation_id": extended.ID.Hex(),
		"end_time":       extended.EndTime,
		"amount":         extended.Amount,
	})
	return &extended, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, spotID string, reservationID primitive.ObjectID) error {
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		return spot.CancelReservation(reservationID)
	})
	if err != nil {
		return err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotReservation, map[string]interface{}{
		"action":         "cancelled",
		"reservation_id": reservationID.Hex(),
	})
	return nil
}

func (s *reservationService) CheckIn(ctx context.Context, spotID string, reservationID primitive.ObjectID) (*models.Reservation, error) {
	now := s.now()
	var checkedIn models.Reservation
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		res, err := spot.CheckIn(reservationID, now)
		if err != nil {
			return err
		}
		checkedIn = *res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotOccupancy, map[string]interface{}{
		"action":         "check_in",
		"reservation_id": checkedIn.ID.Hex(),
		"occupied":       spot.Occupied,
		"status":         spot.Status,
	})
	return &checkedIn, nil
}

func (s *reservationService) CheckOut(ctx context.Context, spotID string, reservationID primitive.ObjectID) (*models.Reservation, error) {
	now := s.now()
	var checkedOut models.Reservation
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		res, err := spot.CheckOut(reservationID, now)
		if err != nil {
			return err
		}
		checkedOut = *res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotOccupancy, map[string]interface{}{
		"action":         "check_out",
		"reservation_id": checkedOut.ID.Hex(),
		"overstay_fee":   checkedOut.OverstayFee,
		"occupied":       spot.Occupied,
		"status":         spot.Status,
		"statistics":     spot.Statistics,
	})
	return &checkedOut, nil
}

func (s *reservationService) CurrentReservation(ctx context.Context, spotID string) (*models.Reservation, error) {
	spot, err := s.spotRepo.GetBySpotID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	res := spot.CurrentReservation(s.now())
	if res == nil {
		return nil, nil
	}
	copied := *res
	return &copied, nil
}

func (s *reservationService) UpcomingReservations(ctx context.Context, spotID, ownerID string) ([]models.Reservation, error) {
	spot, err := s.spotRepo.GetBySpotID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	return spot.UpcomingReservations(ownerID, s.now()), nil
}
