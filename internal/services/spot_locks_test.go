package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"parkwatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Services sharing one lock set must serialize same-spot writes so the
// optimistic replace never sees a stale version from an in-process peer.
func TestSharedLocksSerializeAcrossServices(t *testing.T) {
	repo := newFakeSpotRepo(testSpot("A-101"))
	vehicles := newFakeVehicleRepo()
	notifier := &fakeNotifier{}
	locks := NewSpotLocks()

	spots := NewSpotService(repo, vehicles, notifier, locks).(*spotService)
	spots.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	reservations := NewReservationService(repo, notifier, locks).(*reservationService)
	reservations.now = spots.now

	ctx := context.Background()
	const workers = 6
	errs := make(chan error, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := tod(10, 0).Add(time.Duration(i) * 30 * time.Minute)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := reservations.CreateReservation(ctx, "A-101", "owner-1", start, start.Add(30*time.Minute))
			errs <- err
		}()
		go func(limit int) {
			defer wg.Done()
			_, err := spots.UpdateRestrictions(ctx, "A-101", models.Restrictions{
				TimeLimit:  limit,
				HourlyRate: 10,
				OperatingHours: models.OperatingHours{
					Start: "08:00",
					End:   "20:00",
				},
			})
			errs <- err
		}(30 * (i + 1))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	spot, err := repo.GetBySpotID(ctx, "A-101")
	require.NoError(t, err)
	assert.Len(t, spot.Reservations, workers)
	assert.Equal(t, int64(1+workers*2), spot.Version, "every write must land on the latest version")
}
