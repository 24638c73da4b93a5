package models

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SpotType string
type SpotStatus string
type SensorStatus string
type MaintenanceStatus string
type PermitType string

const (
	SpotTypeStandard   SpotType = "standard"
	SpotTypeHandicap   SpotType = "handicap"
	SpotTypeElectric   SpotType = "electric"
	SpotTypeReserved   SpotType = "reserved"
	SpotTypeCompact    SpotType = "compact"
	SpotTypeMotorcycle SpotType = "motorcycle"

	SpotStatusAvailable   SpotStatus = "available"
	SpotStatusOccupied    SpotStatus = "occupied"
	SpotStatusReserved    SpotStatus = "reserved"
	SpotStatusMaintenance SpotStatus = "maintenance"
	SpotStatusBlocked     SpotStatus = "blocked"

	SensorStatusActive      SensorStatus = "active"
	SensorStatusInactive    SensorStatus = "inactive"
	SensorStatusMaintenance SensorStatus = "maintenance"

	MaintenanceStatusNone       MaintenanceStatus = "none"
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in-progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"

	PermitTypeResident PermitType = "resident"
	PermitTypeEmployee PermitType = "employee"
	PermitTypeVisitor  PermitType = "visitor"
	PermitTypeHandicap PermitType = "handicap"
	PermitTypeElectric PermitType = "electric"
)

// EarlyCheckInWindow is how long before the reserved start a check-in is
// accepted.
const EarlyCheckInWindow = 15 * time.Minute

// OperatingHours is a daily window ("HH:MM" local clock values) plus the set
// of weekdays the spot operates on. An empty window means no restriction; an
// empty day set means every day.
type OperatingHours struct {
	Start string   `json:"start" bson:"start" default:"08:00"`
	End   string   `json:"end" bson:"end" default:"20:00"`
	Days  []string `json:"days" bson:"days"`
}

type Restrictions struct {
	TimeLimit      int            `json:"time_limit" bson:"time_limit"` // minutes, 0 = unlimited
	PermitRequired bool           `json:"permit_required" bson:"permit_required"`
	PermitTypes    []PermitType   `json:"permit_types" bson:"permit_types"`
	HourlyRate     float64        `json:"hourly_rate" bson:"hourly_rate"`
	OperatingHours OperatingHours `json:"operating_hours" bson:"operating_hours"`
}

type SpotLocation struct {
	Coordinates []float64 `json:"coordinates" bson:"coordinates"` // [longitude, latitude]
	Level       int       `json:"level" bson:"level" default:"1"`
	Building    string    `json:"building" bson:"building"`
}

type SensorState struct {
	OccupancySensor bool         `json:"occupancy_sensor" bson:"occupancy_sensor"`
	LastReading     *time.Time   `json:"last_reading" bson:"last_reading"`
	Status          SensorStatus `json:"status" bson:"status" default:"active"`
	BatteryLevel    int          `json:"battery_level" bson:"battery_level"`
}

type MaintenanceRecord struct {
	Date        time.Time `json:"date" bson:"date"`
	Type        string    `json:"type" bson:"type"`
	Description string    `json:"description" bson:"description"`
	PerformedBy string    `json:"performed_by" bson:"performed_by"`
	Cost        float64   `json:"cost" bson:"cost"`
}

type MaintenanceInfo struct {
	Status          MaintenanceStatus   `json:"status" bson:"status" default:"none"`
	Notes           string              `json:"notes" bson:"notes"`
	LastMaintenance *time.Time          `json:"last_maintenance" bson:"last_maintenance"`
	NextScheduled   *time.Time          `json:"next_scheduled" bson:"next_scheduled"`
	History         []MaintenanceRecord `json:"history" bson:"history"`
}

type SpotStatistics struct {
	TotalOccupancyTime int        `json:"total_occupancy_time" bson:"total_occupancy_time"` // minutes
	OccupancyCount     int        `json:"occupancy_count" bson:"occupancy_count"`
	ViolationCount     int        `json:"violation_count" bson:"violation_count"`
	LastViolation      *time.Time `json:"last_violation" bson:"last_violation"`
	Revenue            float64    `json:"revenue" bson:"revenue"`
	TurnoverRate       float64    `json:"turnover_rate" bson:"turnover_rate"` // occupancies per day
}

// ParkingSpot is the unit of mutual exclusion: reservations and violations
// are embedded sub-documents addressed by sub-identity and never aliased
// outside the owning spot. Version backs the optimistic replace in the
// repository.
type ParkingSpot struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SpotID         string             `json:"spot_id" bson:"spot_id" validate:"required"`
	Section        string             `json:"section" bson:"section" validate:"required"`
	Type           SpotType           `json:"type" bson:"type" default:"standard"`
	Status         SpotStatus         `json:"status" bson:"status" default:"available"`
	Occupied       bool               `json:"occupied" bson:"occupied"`
	Blocked        bool               `json:"blocked" bson:"blocked"`
	CurrentVehicle string             `json:"current_vehicle" bson:"current_vehicle"`
	LastOccupied   *time.Time         `json:"last_occupied" bson:"last_occupied"`
	Restrictions   Restrictions       `json:"restrictions" bson:"restrictions"`
	Location       SpotLocation       `json:"location" bson:"location"`
	Sensors        SensorState        `json:"sensors" bson:"sensors"`
	Maintenance    MaintenanceInfo    `json:"maintenance" bson:"maintenance"`
	Statistics     SpotStatistics     `json:"statistics" bson:"statistics"`
	Reservations   []Reservation      `json:"reservations" bson:"reservations"`
	Violations     []ViolationRecord  `json:"violations" bson:"violations"`
	Version        int64              `json:"version" bson:"version"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// DeriveStatus is the single source of the spot status. Maintenance
// in-progress overrides everything; physical occupancy beats a block flag,
// which can only be set while the spot is free anyway.
func DeriveStatus(occupied bool, maintenance MaintenanceStatus, blocked bool) SpotStatus {
	switch {
	case maintenance == MaintenanceStatusInProgress:
		return SpotStatusMaintenance
	case occupied:
		return SpotStatusOccupied
	case blocked:
		return SpotStatusBlocked
	default:
		return SpotStatusAvailable
	}
}

func (s *ParkingSpot) refreshStatus() {
	s.Status = DeriveStatus(s.Occupied, s.Maintenance.Status, s.Blocked)
}

// minuteOfClock parses "HH:MM" into minutes since midnight. Malformed values
// report -1 and callers treat the window as unset.
func minuteOfClock(v string) int {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return -1
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return -1
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func dayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

func (oh OperatingHours) startMinute() int { return minuteOfClock(oh.Start) }
func (oh OperatingHours) endMinute() int   { return minuteOfClock(oh.End) }

// AllowsDay reports whether the spot operates on t's weekday. An empty day
// set allows every day.
func (oh OperatingHours) AllowsDay(t time.Time) bool {
	if len(oh.Days) == 0 {
		return true
	}
	day := dayName(t)
	for _, d := range oh.Days {
		if strings.EqualFold(d, day) {
			return true
		}
	}
	return false
}

// AllowsWindow reports whether [start, end) fits entirely inside the daily
// operating window on an allowed day.
func (oh OperatingHours) AllowsWindow(start, end time.Time) bool {
	if !oh.AllowsDay(start) || !oh.AllowsDay(end) {
		return false
	}
	open, close := oh.startMinute(), oh.endMinute()
	if open < 0 || close < 0 {
		return true
	}
	if minuteOfDay(start) < open || minuteOfDay(start) > close {
		return false
	}
	endMin := minuteOfDay(end)
	if endMin == 0 && end.After(start) {
		endMin = 24 * 60
	}
	return endMin >= open && endMin <= close
}

// AllowsEnd reports whether a reservation may end at t without exceeding the
// daily operating window.
func (oh OperatingHours) AllowsEnd(t time.Time) bool {
	close := oh.endMinute()
	if close < 0 {
		return true
	}
	return oh.AllowsDay(t) && minuteOfDay(t) <= close
}

// CheckAvailability decides whether [start, end) may become a confirmed
// reservation. Back-to-back reservations are allowed.
func (s *ParkingSpot) CheckAvailability(start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	if !s.Restrictions.OperatingHours.AllowsWindow(start, end) {
		return fmt.Errorf("%w: %s-%s on %s", ErrOutsideOperatingHours,
			s.Restrictions.OperatingHours.Start, s.Restrictions.OperatingHours.End, dayName(start))
	}
	for i := range s.Reservations {
		r := &s.Reservations[i]
		if r.Active() && r.Overlaps(start, end) {
			return fmt.Errorf("%w: reservation %s holds %s to %s", ErrSlotConflict,
				r.ID.Hex(), r.StartTime.Format(time.RFC3339), r.EndTime.Format(time.RFC3339))
		}
	}
	return nil
}

// CreateReservation appends a confirmed reservation after the availability
// check passes. The amount is the reserved hours at the spot's hourly rate.
func (s *ParkingSpot) CreateReservation(ownerID string, start, end, now time.Time) (*Reservation, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrValidation)
	}
	if err := s.CheckAvailability(start, end); err != nil {
		return nil, err
	}

	hours := end.Sub(start).Hours()
	res := Reservation{
		ID:               primitive.NewObjectID(),
		OwnerID:          ownerID,
		StartTime:        start,
		EndTime:          end,
		Status:           ReservationStatusConfirmed,
		Amount:           hours * s.Restrictions.HourlyRate,
		ConfirmationCode: newConfirmationCode(),
		CreatedAt:        now,
	}
	s.Reservations = append(s.Reservations, res)
	return &s.Reservations[len(s.Reservations)-1], nil
}

// FindReservation looks a reservation up by sub-identity.
func (s *ParkingSpot) FindReservation(id primitive.ObjectID) *Reservation {
	for i := range s.Reservations {
		if s.Reservations[i].ID == id {
			return &s.Reservations[i]
		}
	}
	return nil
}

// ExtendReservation pushes a confirmed reservation's end time out, re-running
// the conflict check over the added interval only.
func (s *ParkingSpot) ExtendReservation(id primitive.ObjectID, newEnd time.Time) error {
	res := s.FindReservation(id)
	if res == nil {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, id.Hex())
	}
	if res.Status != ReservationStatusConfirmed {
		return fmt.Errorf("%w: only confirmed reservations can be extended", ErrInvalidState)
	}
	if !newEnd.After(res.EndTime) {
		return fmt.Errorf("%w: new end time must be after current end time", ErrInvalidExtension)
	}
	if !s.Restrictions.OperatingHours.AllowsEnd(newEnd) {
		return fmt.Errorf("%w: extension past %s", ErrOutsideOperatingHours, s.Restrictions.OperatingHours.End)
	}

	for i := range s.Reservations {
		other := &s.Reservations[i]
		if other.ID == id || other.Status == ReservationStatusCancelled {
			continue
		}
		if res.EndTime.Before(other.EndTime) && newEnd.After(other.StartTime) {
			return fmt.Errorf("%w: extension collides with reservation %s", ErrSlotConflict, other.ID.Hex())
		}
	}

	res.EndTime = newEnd
	res.Amount = newEnd.Sub(res.StartTime).Hours() * s.Restrictions.HourlyRate
	return nil
}

// CancelReservation moves a reservation to its terminal cancelled status.
// Cancelling twice is a no-op.
func (s *ParkingSpot) CancelReservation(id primitive.ObjectID) error {
	res := s.FindReservation(id)
	if res == nil {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, id.Hex())
	}
	if res.Status == ReservationStatusCompleted {
		return fmt.Errorf("%w: cannot cancel", ErrAlreadyCompleted)
	}
	if res.Status == ReservationStatusCancelled {
		return nil
	}
	res.Status = ReservationStatusCancelled
	return nil
}

// UpcomingReservations lists confirmed reservations starting after now,
// ascending by start time. ownerID narrows the result when non-empty.
func (s *ParkingSpot) UpcomingReservations(ownerID string, now time.Time) []Reservation {
	var out []Reservation
	for i := range s.Reservations {
		r := s.Reservations[i]
		if r.Status != ReservationStatusConfirmed || !r.StartTime.After(now) {
			continue
		}
		if ownerID != "" && r.OwnerID != ownerID {
			continue
		}
		out = append(out, r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].StartTime.Before(out[j-1].StartTime); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// CurrentReservation returns the active reservation whose interval contains
// now. The conflict check guarantees at most one exists.
func (s *ParkingSpot) CurrentReservation(now time.Time) *Reservation {
	for i := range s.Reservations {
		r := &s.Reservations[i]
		if r.Active() && r.Contains(now) {
			return r
		}
	}
	return nil
}

// CheckIn transitions a confirmed reservation to checked-in and marks the
// spot occupied. Check-in opens EarlyCheckInWindow before the reserved start
// and closes at the reserved end.
func (s *ParkingSpot) CheckIn(id primitive.ObjectID, now time.Time) (*Reservation, error) {
	res := s.FindReservation(id)
	if res == nil {
		return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, id.Hex())
	}
	if s.Maintenance.Status == MaintenanceStatusInProgress || s.Blocked {
		return nil, fmt.Errorf("%w: spot is %s", ErrInvalidState, s.Status)
	}
	if res.Status != ReservationStatusConfirmed {
		return nil, fmt.Errorf("%w: reservation is %s", ErrInvalidState, res.Status)
	}
	if now.Before(res.StartTime.Add(-EarlyCheckInWindow)) {
		return nil, fmt.Errorf("%w: check-in opens at %s", ErrTooEarly,
			res.StartTime.Add(-EarlyCheckInWindow).Format(time.RFC3339))
	}
	if now.After(res.EndTime) {
		return nil, fmt.Errorf("%w: reservation ended at %s", ErrExpired, res.EndTime.Format(time.RFC3339))
	}

	checkIn := now
	res.Status = ReservationStatusCheckedIn
	res.CheckInAt = &checkIn
	s.Occupied = true
	s.LastOccupied = &checkIn
	s.refreshStatus()
	return res, nil
}

// CheckOut completes a checked-in reservation, frees the spot, attaches any
// overstay fee and closes the occupancy period for the statistics.
func (s *ParkingSpot) CheckOut(id primitive.ObjectID, now time.Time) (*Reservation, error) {
	res := s.FindReservation(id)
	if res == nil {
		return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, id.Hex())
	}
	if res.Status != ReservationStatusCheckedIn {
		return nil, fmt.Errorf("%w: must check in before checking out", ErrInvalidState)
	}

	checkOut := now
	res.Status = ReservationStatusCompleted
	res.CheckOutAt = &checkOut
	res.OverstayFee = OverstayFee(res.EndTime, now, s.Restrictions.HourlyRate)

	// A sensor free reading may have closed the period already; each interval
	// is folded into the statistics exactly once.
	if s.Occupied {
		periodStart := res.StartTime
		if s.LastOccupied != nil {
			periodStart = *s.LastOccupied
		}
		s.CloseOccupancyPeriod(periodStart, now)
	}

	s.Occupied = false
	s.CurrentVehicle = ""
	s.refreshStatus()
	return res, nil
}

// OverstayFee charges every started hour past the reserved end at the hourly
// rate.
func OverstayFee(end, checkOut time.Time, hourlyRate float64) float64 {
	if !checkOut.After(end) {
		return 0
	}
	overstayMinutes := math.Ceil(checkOut.Sub(end).Minutes())
	return math.Ceil(overstayMinutes/60) * hourlyRate
}

// CloseOccupancyPeriod folds a finished occupancy interval into the spot
// statistics. The state machine guarantees it runs once per interval.
func (s *ParkingSpot) CloseOccupancyPeriod(start, end time.Time) {
	if !end.After(start) {
		return
	}
	duration := int(end.Sub(start).Minutes())
	s.Statistics.TotalOccupancyTime += duration
	s.Statistics.OccupancyCount++

	days := int(math.Ceil(end.Sub(s.CreatedAt).Hours() / 24))
	if days < 1 {
		days = 1
	}
	s.Statistics.TurnoverRate = float64(s.Statistics.OccupancyCount) / float64(days)

	if s.Restrictions.HourlyRate > 0 {
		s.Statistics.Revenue += float64(duration) / 60 * s.Restrictions.HourlyRate
	}
}

// ApplySensorReading folds an occupancy sensor report into the spot. The
// transition false→true stamps the occupancy start; true→false closes the
// occupancy period. Reports that do not toggle occupancy only refresh the
// sensor block.
func (s *ParkingSpot) ApplySensorReading(occupied bool, vehicleRef string, batteryLevel int, status SensorStatus, now time.Time) {
	reading := now
	s.Sensors.LastReading = &reading
	if status != "" {
		s.Sensors.Status = status
	}
	if batteryLevel >= 0 && batteryLevel <= 100 {
		s.Sensors.BatteryLevel = batteryLevel
	}

	switch {
	case occupied && !s.Occupied:
		s.Occupied = true
		s.LastOccupied = &reading
		if vehicleRef != "" {
			s.CurrentVehicle = vehicleRef
		}
	case !occupied && s.Occupied:
		if s.LastOccupied != nil {
			s.CloseOccupancyPeriod(*s.LastOccupied, now)
		}
		s.Occupied = false
		s.CurrentVehicle = ""
	case occupied && vehicleRef != "":
		s.CurrentVehicle = vehicleRef
	}
	s.refreshStatus()
}

// SetMaintenance moves the maintenance sub-state. Entering in-progress forces
// the spot into maintenance regardless of occupancy; leaving it restores the
// derived status.
func (s *ParkingSpot) SetMaintenance(status MaintenanceStatus, notes string, now time.Time) error {
	switch status {
	case MaintenanceStatusNone, MaintenanceStatusScheduled, MaintenanceStatusInProgress, MaintenanceStatusCompleted:
	default:
		return fmt.Errorf("%w: unknown maintenance status %q", ErrValidation, status)
	}

	prev := s.Maintenance.Status
	s.Maintenance.Status = status
	if notes != "" {
		s.Maintenance.Notes = notes
	}
	if prev == MaintenanceStatusInProgress && status == MaintenanceStatusCompleted {
		done := now
		s.Maintenance.LastMaintenance = &done
		s.Maintenance.History = append(s.Maintenance.History, MaintenanceRecord{
			Date:        now,
			Type:        "routine",
			Description: s.Maintenance.Notes,
		})
	}
	s.refreshStatus()
	return nil
}

// SetBlocked toggles the administrative block. Blocking is only legal while
// the spot is free.
func (s *ParkingSpot) SetBlocked(blocked bool) error {
	if blocked && (s.Occupied || s.Maintenance.Status == MaintenanceStatusInProgress) {
		return fmt.Errorf("%w: spot is %s", ErrInvalidState, s.Status)
	}
	s.Blocked = blocked
	s.refreshStatus()
	return nil
}

// AppendViolation records a violation against the spot and bumps the spot
// side of the statistics. The vehicle aggregate half lives in the service.
func (s *ParkingSpot) AppendViolation(vType ViolationType, vehicleRef, description string, evidence []Evidence, now time.Time) *ViolationRecord {
	rec := ViolationRecord{
		ID:          primitive.NewObjectID(),
		Type:        vType,
		VehicleRef:  vehicleRef,
		Timestamp:   now,
		Description: description,
		Evidence:    evidence,
		Status:      ViolationStatusPending,
	}
	s.Violations = append(s.Violations, rec)

	last := now
	s.Statistics.ViolationCount++
	s.Statistics.LastViolation = &last
	return &s.Violations[len(s.Violations)-1]
}

// FindViolation looks a violation record up by sub-identity.
func (s *ParkingSpot) FindViolation(id primitive.ObjectID) *ViolationRecord {
	for i := range s.Violations {
		if s.Violations[i].ID == id {
			return &s.Violations[i]
		}
	}
	return nil
}

const confirmationCodeLength = 12

func newConfirmationCode() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	code := make([]byte, confirmationCodeLength)
	max := big.NewInt(int64(len(charset)))
	for i := range code {
		n, _ := rand.Int(rand.Reader, max)
		code[i] = charset[n.Int64()]
	}
	return string(code)
}
