package notification

import (
	"fmt"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// Template is a rendered subject and body.
type Template struct {
	Subject string
	Body    string
}

// Render builds the template for event with the session start time shown in
// loc. A nil loc falls back to the session's own timezone.
func Render(event Event, loc *time.Location) (Template, error) {
	if err := event.Validate(); err != nil {
		return Template{}, err
	}
	s := event.Session
	if loc == nil {
		loc = s.Location()
	}
	at := timeutil.FormatIn(s.StartTime, loc)

	switch event.Kind {
	case KindSessionScheduled:
		return Template{
			Subject: "New Mentorship Session Scheduled",
			Body:    fmt.Sprintf("Your mentorship session %q has been scheduled for %s.", s.Title, at),
		}, nil

	case KindSessionUpdated:
		return Template{
			Subject: "Mentorship Session Updated",
			Body:    fmt.Sprintf("Your mentorship session %q has been updated. New time: %s.", s.Title, at),
		}, nil

	case KindSessionCancelled:
		return Template{
			Subject: "Mentorship Session Cancelled",
			Body:    fmt.Sprintf("Your mentorship session %q scheduled for %s has been cancelled.", s.Title, at),
		}, nil

	case KindSessionCompleted:
		return Template{
			Subject: "Mentorship Session Completed",
			Body:    fmt.Sprintf("Your mentorship session %q has been marked as completed. Please provide your feedback.", s.Title),
		}, nil

	case KindFeedbackReceived:
		return Template{
			Subject: "New Feedback Received",
			Body:    fmt.Sprintf("New feedback has been received for your session %q.", s.Title),
		}, nil

	case KindSessionReminder:
		return renderReminder(s, event.Lead.Tag, at), nil
	}

	return Template{}, ErrInvalidEvent
}

func renderReminder(s *session.Session, tag session.ReminderTag, at string) Template {
	switch tag {
	case session.Reminder24h:
		return Template{
			Subject: "Reminder: Mentorship Session Tomorrow",
			Body:    fmt.Sprintf("You have a mentorship session %q scheduled for tomorrow at %s.", s.Title, at),
		}
	case session.Reminder1h:
		return Template{
			Subject: "Reminder: Mentorship Session in 1 Hour",
			Body:    fmt.Sprintf("Your mentorship session %q starts in 1 hour at %s.", s.Title, at),
		}
	default:
		return Template{
			Subject: "Reminder: Mentorship Session in 15 Minutes",
			Body:    fmt.Sprintf("Your mentorship session %q starts in 15 minutes at %s.", s.Title, at),
		}
	}
}
