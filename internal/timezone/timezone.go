package timezone

import (
	"fmt"
	"time"
)

// DefaultOffsetHours is the clinic's fixed UTC offset (UTC+6, no DST).
const DefaultOffsetHours = 6

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

func Location(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}

// Clock supplies "now" in the clinic's local time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct {
	loc *time.Location
}

func NewClock(offsetHours int) SystemClock {
	return SystemClock{loc: Location(offsetHours)}
}

func (c SystemClock) Now() time.Time {
	if c.loc == nil {
		return time.Now().In(Location(DefaultOffsetHours))
	}
	return time.Now().In(c.loc)
}

type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// Date strips the clock from t, keeping its calendar day, as midnight UTC.
// Calendar dates are kept in UTC so that the date column round-trips unchanged.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Today(c Clock) time.Time {
	return Date(c.Now())
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
