package timetable

import (
	"fmt"
	"time"
)

// WeekType is the parity code stored in schedules.week_type
type WeekType int

const (
	// WeekTypeEvery marks an entry that is held every week
	WeekTypeEvery WeekType = 0
	// WeekTypeEven is the parity of the epoch week and every second week after it
	WeekTypeEven WeekType = 1
	// WeekTypeOdd is the other parity
	WeekTypeOdd WeekType = 2
)

// Label returns the Ukrainian adjective used in bot replies
func (w WeekType) Label() string {
	switch w {
	case WeekTypeEven:
		return "парний"
	case WeekTypeOdd:
		return "непарний"
	default:
		return "кожен"
	}
}

// IsValid reports whether w is one of the stored codes
func (w WeekType) IsValid() bool {
	return w == WeekTypeEvery || w == WeekTypeEven || w == WeekTypeOdd
}

// WeekStartLayout is the layout of the configured epoch date
const WeekStartLayout = "2006-01-02"

// Days covered by the timetable, Monday through Saturday
const (
	FirstWeekday = 1
	LastWeekday  = 6
)

// WeekCalculator computes week numbers and parity relative to an epoch date
type WeekCalculator struct {
	epochWeek int
}

// NewWeekCalculator creates a calculator anchored at epoch
func NewWeekCalculator(epoch time.Time) *WeekCalculator {
	return &WeekCalculator{epochWeek: WeekNumber(epoch)}
}

// ParseWeekStart parses a WEEK_START value in YYYY-MM-DD form
func ParseWeekStart(value string) (time.Time, error) {
	t, err := time.Parse(WeekStartLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week start %q: %w", value, err)
	}
	return t, nil
}

// WeekNumber returns the ISO-8601 week of date. A January date that still
// belongs to the last ISO week of the previous year yields 0.
func WeekNumber(date time.Time) int {
	_, week := date.ISOWeek()
	if date.Month() == time.January && week > 50 {
		return 0
	}
	return week
}

// WeekType returns the parity of the week containing date
func (c *WeekCalculator) WeekType(date time.Time) WeekType {
	if (WeekNumber(date)-c.epochWeek)%2 == 0 {
		return WeekTypeEven
	}
	return WeekTypeOdd
}

// DayOfWeek maps a date to the stored day number, Monday=1 ... Sunday=7
func DayOfWeek(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
