package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/mentorship-hub/internal/domain/session"
)

func testSession() *session.Session {
	return &session.Session{
		ID:        "s1",
		Title:     "Resume review",
		StartTime: time.Date(2026, 1, 6, 15, 0, 0, 0, time.UTC),
		Timezone:  "UTC",
		Status:    session.StatusScheduled,
	}
}

func TestRenderKinds(t *testing.T) {
	s := testSession()

	tests := []struct {
		kind    Kind
		subject string
	}{
		{KindSessionScheduled, "New Mentorship Session Scheduled"},
		{KindSessionUpdated, "Mentorship Session Updated"},
		{KindSessionCancelled, "Mentorship Session Cancelled"},
		{KindSessionCompleted, "Mentorship Session Completed"},
		{KindFeedbackReceived, "New Feedback Received"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			tpl, err := Render(Event{Kind: tt.kind, Session: s}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, tpl.Subject)
			assert.Contains(t, tpl.Body, `"Resume review"`)
		})
	}
}

func TestRenderReminderPerLead(t *testing.T) {
	s := testSession()
	want := map[session.ReminderTag]string{
		session.Reminder24h: "Reminder: Mentorship Session Tomorrow",
		session.Reminder1h:  "Reminder: Mentorship Session in 1 Hour",
		session.Reminder15m: "Reminder: Mentorship Session in 15 Minutes",
	}

	for _, lead := range session.ReminderLeads {
		lead := lead
		tpl, err := Render(Event{Kind: KindSessionReminder, Session: s, Lead: &lead}, nil)
		require.NoError(t, err)
		assert.Equal(t, want[lead.Tag], tpl.Subject)
	}

	_, err := Render(Event{Kind: KindSessionReminder, Session: s}, nil)
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestRenderUsesRecipientLocation(t *testing.T) {
	s := testSession()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tpl, err := Render(Event{Kind: KindSessionScheduled, Session: s}, ny)
	require.NoError(t, err)
	assert.Contains(t, tpl.Body, "Jan 6, 2026 at 10:00 AM EST")

	tpl, err = Render(Event{Kind: KindSessionScheduled, Session: s}, nil)
	require.NoError(t, err)
	assert.Contains(t, tpl.Body, "Jan 6, 2026 at 3:00 PM UTC")
}

func TestRenderRejectsInvalid(t *testing.T) {
	_, err := Render(Event{Kind: "NOPE", Session: testSession()}, nil)
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = Render(Event{Kind: KindSessionScheduled}, nil)
	assert.ErrorIs(t, err, ErrInvalidEvent)
}
