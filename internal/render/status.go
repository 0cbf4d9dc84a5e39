package render

import (
	"fmt"
	"time"
)

// Status is the market-hours banner.
type Status struct {
	Text    string
	Started bool
}

// MarketStatus compares now, in loc, against openHour:00 of the same day.
func MarketStatus(now time.Time, loc *time.Location, openHour int, market string) Status {
	local := now.In(loc)
	open := time.Date(local.Year(), local.Month(), local.Day(), openHour, 0, 0, 0, loc)
	if !local.Before(open) {
		return Status{Text: fmt.Sprintf("%s Market hours started", market), Started: true}
	}
	return Status{Text: fmt.Sprintf("%s Market hours not started", market)}
}
