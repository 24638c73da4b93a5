package utils

import (
	"testing"
	"time"

	"parkwatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeISO(t *testing.T) {
	parsed, err := ParseTimeISO("2025-03-10T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC), parsed)

	_, err = ParseTimeISO("10:30")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestMinutesBetween(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 150, MinutesBetween(start, start.Add(150*time.Minute)))
	assert.Equal(t, 0, MinutesBetween(start, start.Add(30*time.Second)))
}

func TestDayBounds(t *testing.T) {
	noon := time.Date(2025, 3, 10, 12, 17, 3, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), StartOfDay(noon))
	assert.Equal(t, 10, EndOfDay(noon).Day())
	assert.Equal(t, 23, EndOfDay(noon).Hour())
}
