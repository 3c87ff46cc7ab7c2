package availability

import (
	"sort"
	"time"

	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// Match looks for a slot whose day and clock window contain start, rendered
// in loc. Only the start instant is checked: a session may begin inside a slot
// and run past its end.
func Match(slots []*Slot, start time.Time, loc *time.Location) (*Slot, bool) {
	if loc == nil {
		loc = time.UTC
	}
	day := timeutil.Weekday(start, loc)
	clock := timeutil.ClockString(start, loc)

	for _, s := range slots {
		if s == nil || s.DayOfWeek != day {
			continue
		}
		if s.Covers(clock) {
			return s, true
		}
	}
	return nil, false
}

// Sort orders slots by day of week, then start time.
func Sort(slots []*Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}
