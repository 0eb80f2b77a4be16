package scheduler

import (
	"time"

	"github.com/wekeepgrowing/paylink-sync/internal/config"
)

// BusinessHours is a Monday to Friday window of whole hours in one
// timezone. EndHour is exclusive.
type BusinessHours struct {
	Location  *time.Location
	StartHour int
	EndHour   int
}

// NewBusinessHours builds the window described by cfg.
func NewBusinessHours(cfg config.SchedulerConfig) (BusinessHours, error) {
	loc, err := cfg.Location()
	if err != nil {
		return BusinessHours{}, err
	}
	return BusinessHours{Location: loc, StartHour: cfg.StartHour, EndHour: cfg.EndHour}, nil
}

// Contains reports whether t falls inside the window.
func (b BusinessHours) Contains(t time.Time) bool {
	local := t.In(b.Location)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := local.Hour()
	return hour >= b.StartHour && hour < b.EndHour
}
