package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"parkwatch/internal/models"
	"parkwatch/internal/repositories/interfaces"
	"parkwatch/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeSpotRepo keeps spots in memory and mimics the optimistic replace.
type fakeSpotRepo struct {
	mu         sync.Mutex
	spots      map[string]*models.ParkingSpot
	replaceErr error
}

func newFakeSpotRepo(spots ...*models.ParkingSpot) *fakeSpotRepo {
	repo := &fakeSpotRepo{spots: make(map[string]*models.ParkingSpot)}
	for _, s := range spots {
		if s.ID.IsZero() {
			s.ID = primitive.NewObjectID()
		}
		s.Version = 1
		repo.spots[s.SpotID] = s
	}
	return repo
}

func (f *fakeSpotRepo) Create(ctx context.Context, spot *models.ParkingSpot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.spots[spot.SpotID]; ok {
		return fmt.Errorf("%w: duplicate spot %s", models.ErrValidation, spot.SpotID)
	}
	spot.ID = primitive.NewObjectID()
	spot.Version = 1
	f.spots[spot.SpotID] = spot
	return nil
}

func (f *fakeSpotRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ParkingSpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.spots {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: spot %s", models.ErrNotFound, id.Hex())
}

func (f *fakeSpotRepo) GetBySpotID(ctx context.Context, spotID string) (*models.ParkingSpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spots[spotID]
	if !ok {
		return nil, fmt.Errorf("%w: spot %s", models.ErrNotFound, spotID)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSpotRepo) List(ctx context.Context, filter interfaces.SpotFilter, params *utils.PaginationParams) ([]*models.ParkingSpot, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ParkingSpot
	for _, s := range f.spots {
		if filter.Section != "" && s.Section != filter.Section {
			continue
		}
		if filter.Type != "" && s.Type != filter.Type {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSpotRepo) Replace(ctx context.Context, spot *models.ParkingSpot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	stored, ok := f.spots[spot.SpotID]
	if !ok {
		return fmt.Errorf("%w: spot %s", models.ErrNotFound, spot.SpotID)
	}
	if stored.Version != spot.Version {
		return fmt.Errorf("%w: spot %s was modified concurrently", models.ErrVersionConflict, spot.SpotID)
	}
	spot.Version++
	f.spots[spot.SpotID] = spot
	return nil
}

func (f *fakeSpotRepo) HasOpenViolations(ctx context.Context, vehicleRef string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.spots {
		for i := range s.Violations {
			if s.Violations[i].VehicleRef == vehicleRef && s.Violations[i].Open() {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeSpotRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, s := range f.spots {
		if s.ID == id {
			delete(f.spots, key)
			return nil
		}
	}
	return fmt.Errorf("%w: spot %s", models.ErrNotFound, id.Hex())
}

// fakeVehicleRepo records aggregate updates and can fail on demand.
type fakeVehicleRepo struct {
	mu           sync.Mutex
	vehicles     map[string]*models.Vehicle
	violationErr error
	violations   []string
	parkedCalls  []string
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[string]*models.Vehicle)}
}

func (f *fakeVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vehicles[vehicle.LicensePlate] = vehicle
	return nil
}

func (f *fakeVehicleRepo) GetByPlate(ctx context.Context, licensePlate string) (*models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[licensePlate]
	if !ok {
		return nil, fmt.Errorf("%w: vehicle %s", models.ErrNotFound, licensePlate)
	}
	return v, nil
}

func (f *fakeVehicleRepo) Upsert(ctx context.Context, vehicle *models.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vehicles[vehicle.LicensePlate] = vehicle
	return nil
}

func (f *fakeVehicleRepo) ApplyViolation(ctx context.Context, licensePlate string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.violationErr != nil {
		return f.violationErr
	}
	f.violations = append(f.violations, licensePlate)
	if v, ok := f.vehicles[licensePlate]; ok {
		v.RecordViolation(at)
	}
	return nil
}

func (f *fakeVehicleRepo) SetParked(ctx context.Context, licensePlate string, parked bool, spotID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parkedCalls = append(f.parkedCalls, licensePlate)
	return nil
}

// fakeNotifier captures emitted spot events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	SpotID  string
	Section string
	Event   string
	Data    map[string]interface{}
}

func (f *fakeNotifier) SpotEvent(ctx context.Context, spotID, section, event string, data map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, capturedEvent{SpotID: spotID, Section: section, Event: event, Data: data})
}

func (f *fakeNotifier) eventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.events))
	for i, e := range f.events {
		names[i] = e.Event
	}
	return names
}

func testSpot(spotID string) *models.ParkingSpot {
	return &models.ParkingSpot{
		SpotID:  spotID,
		Section: "A",
		Type:    models.SpotTypeStandard,
		Status:  models.SpotStatusAvailable,
		Restrictions: models.Restrictions{
			HourlyRate: 10,
			OperatingHours: models.OperatingHours{
				Start: "08:00",
				End:   "20:00",
			},
		},
		Sensors:     models.SensorState{Status: models.SensorStatusActive},
		Maintenance: models.MaintenanceInfo{Status: models.MaintenanceStatusNone},
		CreatedAt:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}
