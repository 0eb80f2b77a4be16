package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wekeepgrowing/paylink-sync/internal/config"
)

func brisbaneHours(t *testing.T) BusinessHours {
	t.Helper()
	hours, err := NewBusinessHours(config.Default().Scheduler)
	require.NoError(t, err)
	return hours
}

func TestBusinessHours_Contains(t *testing.T) {
	hours := brisbaneHours(t)
	loc := hours.Location

	// 2024-06-03 is a Monday, 2024-06-08 a Saturday.
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday 06:59", time.Date(2024, 6, 3, 6, 59, 0, 0, loc), false},
		{"monday 07:00", time.Date(2024, 6, 3, 7, 0, 0, 0, loc), true},
		{"wednesday noon", time.Date(2024, 6, 5, 12, 0, 0, 0, loc), true},
		{"friday 18:59", time.Date(2024, 6, 7, 18, 59, 59, 0, loc), true},
		{"friday 19:00", time.Date(2024, 6, 7, 19, 0, 0, 0, loc), false},
		{"saturday noon", time.Date(2024, 6, 8, 12, 0, 0, 0, loc), false},
		{"sunday 10:00", time.Date(2024, 6, 9, 10, 0, 0, 0, loc), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hours.Contains(tt.at))
		})
	}
}

func TestBusinessHours_BoundaryHours(t *testing.T) {
	hours := brisbaneHours(t)
	want := map[int]bool{6: false, 7: true, 18: true, 19: false}

	for hour, expected := range want {
		at := time.Date(2024, 6, 4, hour, 30, 0, 0, hours.Location)
		assert.Equal(t, expected, hours.Contains(at), "hour %d", hour)
	}
}

func TestBusinessHours_ConvertsFromOtherZones(t *testing.T) {
	hours := brisbaneHours(t)

	// Brisbane is UTC+10 all year. Sunday 22:00 UTC is Monday 08:00 there.
	assert.True(t, hours.Contains(time.Date(2024, 6, 2, 22, 0, 0, 0, time.UTC)))
	// Friday 09:30 UTC is Friday 19:30 in Brisbane.
	assert.False(t, hours.Contains(time.Date(2024, 6, 7, 9, 30, 0, 0, time.UTC)))
}

func TestNewBusinessHours_UnknownZone(t *testing.T) {
	cfg := config.Default().Scheduler
	cfg.Timezone = "Nowhere/Special"

	_, err := NewBusinessHours(cfg)
	assert.Error(t, err)
}
