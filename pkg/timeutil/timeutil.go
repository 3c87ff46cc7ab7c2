// Package timeutil provides the clock abstraction and timezone helpers used by
// the scheduling engine. Instants are stored in UTC; everything that depends on
// a wall clock (weekday, "HH:MM", human formatting) goes through a *time.Location.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLOCK
// ══════════════════════════════════════════════════════════════════════════════

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant until moved. Safe for concurrent use.
type FixedClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixedClock creates a clock frozen at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t.UTC()}
}

// Now returns the frozen instant.
func (c *FixedClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ══════════════════════════════════════════════════════════════════════════════
// TIMEZONES
// ══════════════════════════════════════════════════════════════════════════════

var (
	locCache sync.Map // map[string]*time.Location
)

// LoadLocation resolves an IANA timezone name, caching successful lookups.
// The empty string resolves to UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	if loc, ok := locCache.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timeutil: unknown timezone %q: %w", name, err)
	}
	locCache.Store(name, loc)
	return loc, nil
}

// LocationOrUTC resolves name and falls back to UTC when it is invalid.
func LocationOrUTC(name string) *time.Location {
	loc, err := LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ══════════════════════════════════════════════════════════════════════════════
// WALL CLOCK STRINGS
// ══════════════════════════════════════════════════════════════════════════════

// clockPattern accepts "9:00" as well as "09:00".
var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

// IsClock reports whether s is a valid "H:MM" or "HH:MM" clock string.
func IsClock(s string) bool {
	return clockPattern.MatchString(s)
}

// NormalizeClock converts a valid clock string into zero-padded "HH:MM" so that
// lexical comparison matches chronological order.
func NormalizeClock(s string) (string, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("timeutil: invalid clock %q, want HH:MM", s)
	}
	h, _ := strconv.Atoi(m[1])
	return fmt.Sprintf("%02d:%s", h, m[2]), nil
}

// ClockString renders t's wall clock in loc as "HH:MM".
func ClockString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// Weekday returns t's day of week in loc.
func Weekday(t time.Time, loc *time.Location) time.Weekday {
	return t.In(loc).Weekday()
}

// ══════════════════════════════════════════════════════════════════════════════
// FORMATTING
// ══════════════════════════════════════════════════════════════════════════════

// SessionLayout is the human-readable layout used in notifications,
// e.g. "Jan 2, 2006 at 3:04 PM MST".
const SessionLayout = "Jan 2, 2006 at 3:04 PM MST"

// FormatIn renders t in loc with SessionLayout.
func FormatIn(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(SessionLayout)
}

// MinutesBetween returns the whole minutes from start to end, truncated.
func MinutesBetween(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}
