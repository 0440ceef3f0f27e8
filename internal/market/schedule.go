// Package market implements the per-slot bounded multi-round double auction
// that clears buy/sell offers between participant devices in a microgrid.
package market

import "fmt"

// Days is the number of weekdays a Schedule cycles over.
const Days = 7

// HoursPerDay is the number of hourly slots in a day.
const HoursPerDay = 24

// Schedule identifies a single hourly time slot by weekday and hour.
// The zero value is the origin slot (weekday 0, hour 0).
type Schedule struct {
	Weekday int
	Hour    int
}

// NewSchedule builds a Schedule, wrapping weekday/hour into their valid
// ranges.
func NewSchedule(weekday, hour int) Schedule {
	return Schedule{Weekday: ((weekday % Days) + Days) % Days, Hour: ((hour % HoursPerDay) + HoursPerDay) % HoursPerDay}
}

// HasPre reports whether Pre is defined for this slot. Only the origin slot
// (weekday 0, hour 0) has no predecessor.
func (s Schedule) HasPre() bool {
	return s.Weekday != 0 || s.Hour != 0
}

// Pre returns the slot immediately before s, decrementing the hour with
// borrow into the weekday. Undefined at the origin slot; callers must check
// HasPre first.
func (s Schedule) Pre() Schedule {
	if s.Hour > 0 {
		return Schedule{Weekday: s.Weekday, Hour: s.Hour - 1}
	}
	return Schedule{Weekday: s.Weekday - 1, Hour: HoursPerDay - 1}
}

// Next returns the slot immediately after s, wrapping the weekday at the
// end of the week.
func (s Schedule) Next() Schedule {
	if s.Hour < HoursPerDay-1 {
		return Schedule{Weekday: s.Weekday, Hour: s.Hour + 1}
	}
	return Schedule{Weekday: (s.Weekday + 1) % Days, Hour: 0}
}

// Less reports whether s sorts before other under lexicographic
// (weekday, hour) order.
func (s Schedule) Less(other Schedule) bool {
	if s.Weekday != other.Weekday {
		return s.Weekday < other.Weekday
	}
	return s.Hour < other.Hour
}

// String renders the slot as "weekday:hour", matching the observer sink's
// datetime field.
func (s Schedule) String() string {
	return fmt.Sprintf("%d:%d", s.Weekday, s.Hour)
}
