package session

import (
	"time"
)

// ReminderTag identifies a reminder lead-time bucket.
type ReminderTag string

const (
	Reminder24h ReminderTag = "24h"
	Reminder1h  ReminderTag = "1h"
	Reminder15m ReminderTag = "15m"
)

// ReminderLead pairs a tag with how long before the start it fires.
type ReminderLead struct {
	Tag  ReminderTag
	Lead time.Duration
}

// ReminderLeads lists the fixed lead times, longest first.
var ReminderLeads = []ReminderLead{
	{Tag: Reminder24h, Lead: 1440 * time.Minute},
	{Tag: Reminder1h, Lead: 60 * time.Minute},
	{Tag: Reminder15m, Lead: 15 * time.Minute},
}

// IsValid checks if the tag is one of the fixed buckets.
func (t ReminderTag) IsValid() bool {
	for _, l := range ReminderLeads {
		if l.Tag == t {
			return true
		}
	}
	return false
}

// Instant returns when the reminder for this lead is due.
func (l ReminderLead) Instant(start time.Time) time.Time {
	return start.Add(-l.Lead)
}

// DueReminders returns the leads whose instant is at or before now and that
// have not been dispatched yet. Sessions that are not SCHEDULED or already
// started have none.
func (s *Session) DueReminders(now time.Time) []ReminderLead {
	if s.Status != StatusScheduled || !s.StartTime.After(now) {
		return nil
	}

	var due []ReminderLead
	for _, l := range ReminderLeads {
		if l.Instant(s.StartTime).After(now) {
			continue
		}
		if s.HasReminder(l.Tag) {
			continue
		}
		due = append(due, l)
	}
	return due
}

// RecordReminder marks tag as sent at the given instant. It returns false when
// the tag was already recorded.
func (s *Session) RecordReminder(tag ReminderTag, at time.Time) bool {
	if s.HasReminder(tag) {
		return false
	}
	s.ReminderTags = append(s.ReminderTags, tag)
	s.RemindersSent = append(s.RemindersSent, at.UTC())
	return true
}
