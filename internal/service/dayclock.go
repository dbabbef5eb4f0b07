package service

import (
	"fmt"
	"time"
)

// DayClock computes the calendar-day key used by daily award windows.
// Every window uses the one configured zone; a user in another locale
// still rolls over at this zone's midnight.
type DayClock struct {
	loc *time.Location
	now func() time.Time
}

func NewDayClock(timezone string) (*DayClock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reward timezone %q: %w", timezone, err)
	}
	return &DayClock{loc: loc, now: time.Now}, nil
}

// DayKey returns the current day as YYYYMMDD in the configured zone.
func (c *DayClock) DayKey() string {
	return c.now().In(c.loc).Format("20060102")
}
