package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

var online = shared.Meeting{Location: shared.LocationOnline, Type: shared.MeetingVideo}

func mustSlot(t *testing.T, day int, start, end string) *Slot {
	t.Helper()
	s, err := NewSlot(NewSlotParams{ID: "slot", MentorID: "m1", DayOfWeek: day, StartTime: start, EndTime: end, Meeting: online})
	require.NoError(t, err)
	return s
}

func TestNewSlotNormalizes(t *testing.T) {
	s := mustSlot(t, 2, "9:00", "11:30")
	assert.Equal(t, "09:00", s.StartTime)
	assert.Equal(t, "11:30", s.EndTime)
	assert.Equal(t, time.Tuesday, s.DayOfWeek)
}

func TestNewSlotRejects(t *testing.T) {
	tests := []struct {
		name string
		p    NewSlotParams
		err  error
	}{
		{"day too large", NewSlotParams{MentorID: "m1", DayOfWeek: 7, StartTime: "10:00", EndTime: "11:00", Meeting: online}, ErrInvalidDay},
		{"negative day", NewSlotParams{MentorID: "m1", DayOfWeek: -1, StartTime: "10:00", EndTime: "11:00", Meeting: online}, ErrInvalidDay},
		{"bad clock", NewSlotParams{MentorID: "m1", DayOfWeek: 1, StartTime: "25:00", EndTime: "11:00", Meeting: online}, ErrInvalidClock},
		{"overnight", NewSlotParams{MentorID: "m1", DayOfWeek: 1, StartTime: "22:00", EndTime: "01:00", Meeting: online}, ErrOvernightSlot},
		{"empty window", NewSlotParams{MentorID: "m1", DayOfWeek: 1, StartTime: "10:00", EndTime: "10:00", Meeting: online}, ErrOvernightSlot},
		{"in person without venue", NewSlotParams{MentorID: "m1", DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00",
			Meeting: shared.Meeting{Location: shared.LocationInPerson, Type: shared.MeetingInPerson}}, shared.ErrVenueRequired},
		{"audio in person", NewSlotParams{MentorID: "m1", DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00",
			Meeting: shared.Meeting{Location: shared.LocationInPerson, Type: shared.MeetingAudio, Venue: "Hall"}}, shared.ErrIncompatibleMeetingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSlot(tt.p)
			assert.ErrorIs(t, err, tt.err)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestMatchInclusiveBounds(t *testing.T) {
	slots := []*Slot{mustSlot(t, int(time.Tuesday), "14:00", "16:00")}
	// 2026-01-06 is a Tuesday.
	at := func(h, m int) time.Time { return time.Date(2026, 1, 6, h, m, 0, 0, time.UTC) }

	_, ok := Match(slots, at(14, 0), time.UTC)
	assert.True(t, ok, "slot start")
	_, ok = Match(slots, at(16, 0), time.UTC)
	assert.True(t, ok, "slot end, session runs past it")
	_, ok = Match(slots, at(15, 0), time.UTC)
	assert.True(t, ok)

	_, ok = Match(slots, at(13, 59), time.UTC)
	assert.False(t, ok)
	_, ok = Match(slots, at(16, 1), time.UTC)
	assert.False(t, ok)
	_, ok = Match(slots, at(15, 0).Add(24*time.Hour), time.UTC)
	assert.False(t, ok, "wednesday")
}

func TestMatchUsesLocation(t *testing.T) {
	slots := []*Slot{mustSlot(t, int(time.Tuesday), "14:00", "16:00")}
	almaty, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)

	// 15:00 on Tuesday in Almaty.
	start := time.Date(2026, 1, 6, 15, 0, 0, 0, almaty)

	_, ok := Match(slots, start.UTC(), almaty)
	assert.True(t, ok)
	_, ok = Match(slots, start.UTC(), time.UTC)
	assert.False(t, ok)
}

func TestSortByDayThenStart(t *testing.T) {
	slots := []*Slot{
		mustSlot(t, 3, "09:00", "10:00"),
		mustSlot(t, 1, "13:00", "14:00"),
		mustSlot(t, 1, "08:00", "09:00"),
	}
	Sort(slots)

	assert.Equal(t, time.Monday, slots[0].DayOfWeek)
	assert.Equal(t, "08:00", slots[0].StartTime)
	assert.Equal(t, "13:00", slots[1].StartTime)
	assert.Equal(t, time.Wednesday, slots[2].DayOfWeek)
}
