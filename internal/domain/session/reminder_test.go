package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func tags(leads []ReminderLead) []ReminderTag {
	out := make([]ReminderTag, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.Tag)
	}
	return out
}

func TestDueReminders(t *testing.T) {
	start := testNow.Add(3 * 24 * time.Hour)
	s := scheduled("s1", "m1", "st1", start, 60)

	tests := []struct {
		name   string
		before time.Duration
		want   []ReminderTag
	}{
		{"two days ahead", 48 * time.Hour, []ReminderTag{}},
		{"exactly 24h ahead", 24 * time.Hour, []ReminderTag{Reminder24h}},
		{"61 minutes ahead", 61 * time.Minute, []ReminderTag{Reminder24h}},
		{"59 minutes ahead", 59 * time.Minute, []ReminderTag{Reminder24h, Reminder1h}},
		{"10 minutes ahead", 10 * time.Minute, []ReminderTag{Reminder24h, Reminder1h, Reminder15m}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tags(s.DueReminders(start.Add(-tt.before))))
		})
	}
}

func TestDueRemindersSkipsRecordedAndInactive(t *testing.T) {
	start := testNow.Add(30 * time.Minute)
	s := scheduled("s1", "m1", "st1", start, 60)

	assert.True(t, s.RecordReminder(Reminder24h, testNow))
	assert.False(t, s.RecordReminder(Reminder24h, testNow), "second record is a no-op")
	assert.Equal(t, []ReminderTag{Reminder1h}, tags(s.DueReminders(testNow)))
	assert.Len(t, s.RemindersSent, 1)

	assert.Empty(t, s.DueReminders(start), "started sessions get no reminders")

	s.Status = StatusCancelled
	assert.Empty(t, s.DueReminders(testNow))
}

func TestReminderTagValidity(t *testing.T) {
	assert.True(t, Reminder15m.IsValid())
	assert.False(t, ReminderTag("2h").IsValid())
}
