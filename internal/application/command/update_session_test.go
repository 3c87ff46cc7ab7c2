package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

func (f *fixture) patch(actor shared.Actor, id string, p session.Patch) (*UpdateSessionResult, error) {
	return f.update.Handle(context.Background(), UpdateSessionCommand{Actor: actor, SessionID: id, Patch: p})
}

func TestUpdateCancelNotifiesOtherParty(t *testing.T) {
	f := newFixture(t)
	booked := f.mustBook(t, student1, tuesday(15, 0), 30).Session
	f.recorder.Reset()

	res, err := f.patch(student1, booked.ID, session.Patch{Status: ptr(session.StatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, session.StatusCancelled, res.Session.Status)
	require.NotNil(t, res.Session.CancelledAt)
	assert.Equal(t, "st1", res.Session.LastModifiedBy)

	got := f.recorder.Of(notification.KindSessionCancelled)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].UserID)
	assert.Equal(t, 1, f.metrics.changed["cancel"])

	// a cancelled session no longer blocks the slot
	f.mustBook(t, student2, tuesday(15, 0), 30)
}

func TestUpdateStudentCannotComplete(t *testing.T) {
	f := newFixture(t)
	booked := f.mustBook(t, student1, tuesday(15, 0), 30).Session

	_, err := f.patch(student1, booked.ID, session.Patch{
		Status: ptr(session.StatusCompleted), Notes: ptr("n"), Feedback: ptr("f"),
	})
	assert.ErrorIs(t, err, session.ErrUnauthorizedTransition)

	stored, err := f.store.Sessions().GetByID(context.Background(), booked.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusScheduled, stored.Status)
}

func TestUpdateCompleteThenFeedback(t *testing.T) {
	f := newFixture(t)
	booked := f.mustBook(t, student1, tuesday(15, 0), 30).Session
	f.recorder.Reset()

	res, err := f.patch(mentor, booked.ID, session.Patch{
		Status:        ptr(session.StatusCompleted),
		Notes:         ptr("worked through the resume"),
		Feedback:      ptr("strong progress"),
		StudentRating: ptr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, res.Session.Status)
	require.Len(t, f.recorder.Of(notification.KindSessionCompleted), 1)
	assert.Equal(t, "st1", f.recorder.Of(notification.KindSessionCompleted)[0].UserID)

	res, err = f.patch(student1, booked.ID, session.Patch{StudentFeedback: ptr("very helpful"), MentorRating: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, "very helpful", res.Session.StudentFeedback)
	require.NotNil(t, res.Session.MentorRating)
	assert.Equal(t, 5, *res.Session.MentorRating)

	fb := f.recorder.Of(notification.KindFeedbackReceived)
	require.Len(t, fb, 1)
	assert.Equal(t, "m1", fb[0].UserID)

	// terminal: no way back
	_, err = f.patch(mentor, booked.ID, session.Patch{Status: ptr(session.StatusCancelled)})
	assert.ErrorIs(t, err, session.ErrUnauthorizedTransition)
}

func TestUpdateRescheduleChecksConflictsExcludingSelf(t *testing.T) {
	f := newFixture(t)
	first := f.mustBook(t, student1, tuesday(14, 0), 30).Session
	f.mustBook(t, student2, tuesday(15, 0), 30)
	f.recorder.Reset()

	// moving 10 minutes later only overlaps itself
	res, err := f.patch(mentor, first.ID, session.Patch{
		StartTime: ptr(tuesday(14, 10)), EndTime: ptr(tuesday(14, 40)),
	})
	require.NoError(t, err)
	assert.Equal(t, tuesday(14, 10), res.Session.StartTime)

	upd := f.recorder.Of(notification.KindSessionUpdated)
	require.Len(t, upd, 1)
	assert.Equal(t, "st1", upd[0].UserID)

	// into the buffer of st2's session
	_, err = f.patch(mentor, first.ID, session.Patch{
		StartTime: ptr(tuesday(14, 20)), EndTime: ptr(tuesday(14, 50)),
	})
	assert.ErrorIs(t, err, session.ErrSchedulingConflict)

	// outside availability
	_, err = f.patch(mentor, first.ID, session.Patch{
		StartTime: ptr(tuesday(17, 0)), EndTime: ptr(tuesday(17, 30)),
	})
	assert.ErrorIs(t, err, session.ErrNotAvailable)

	stored, err := f.store.Sessions().GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, tuesday(14, 10), stored.StartTime)
}

func TestUpdateRescheduleClearsReminders(t *testing.T) {
	f := newFixture(t)
	booked := f.mustBook(t, student1, tuesday(15, 0), 30).Session

	_, err := f.reminders.Sweep(context.Background(), tuesday(15, 0).Add(-24*time.Hour))
	require.NoError(t, err)
	stored, err := f.store.Sessions().GetByID(context.Background(), booked.ID)
	require.NoError(t, err)
	require.Equal(t, []session.ReminderTag{session.Reminder24h}, stored.ReminderTags)

	res, err := f.patch(mentor, booked.ID, session.Patch{
		StartTime: ptr(tuesday(15, 30)), EndTime: ptr(tuesday(16, 0)),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Session.ReminderTags)
}

func TestUpdateStudentCannotReschedule(t *testing.T) {
	f := newFixture(t)
	booked := f.mustBook(t, student1, tuesday(15, 0), 30).Session

	_, err := f.patch(student1, booked.ID, session.Patch{StartTime: ptr(tuesday(15, 30))})
	assert.ErrorIs(t, err, session.ErrUnauthorizedTransition)
}

func TestUpdateByStrangerLooksMissing(t *testing.T) {
	f := newFixture(t)
	booked := f.mustBook(t, student1, tuesday(15, 0), 30).Session

	_, err := f.patch(student2, booked.ID, session.Patch{Status: ptr(session.StatusCancelled)})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = f.patch(student1, "missing", session.Patch{Status: ptr(session.StatusCancelled)})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestUpdateRoleMismatch(t *testing.T) {
	f := newFixture(t)
	booked := f.mustBook(t, student1, tuesday(15, 0), 30).Session

	// st1 claiming the alumni role
	_, err := f.patch(shared.NewActor("st1", shared.RoleAlumni), booked.ID, session.Patch{Status: ptr(session.StatusCancelled)})
	assert.ErrorIs(t, err, session.ErrRoleMismatch)
}

func TestUpdateEditDetails(t *testing.T) {
	f := newFixture(t)
	booked := f.mustBook(t, student1, tuesday(15, 0), 30).Session
	f.clock.Advance(time.Hour)

	res, err := f.patch(mentor, booked.ID, session.Patch{Title: ptr("  Interview prep "), Agenda: ptr("mock interview")})
	require.NoError(t, err)
	assert.Equal(t, "Interview prep", res.Session.Title)
	assert.Equal(t, testNow.Add(time.Hour), res.Session.UpdatedAt)
	assert.False(t, res.Session.StartTime.IsZero())
	assert.Equal(t, []session.Change{session.ChangeEditDetails}, res.Changes)
}

// sweepBetweenReadAndWrite runs a reminder sweep right after the second
// GetByID, the one Handle performs inside the transaction.
type sweepBetweenReadAndWrite struct {
	session.Repository
	reads int
	sweep func()
}

func (r *sweepBetweenReadAndWrite) GetByID(ctx context.Context, id string) (*session.Session, error) {
	s, err := r.Repository.GetByID(ctx, id)
	r.reads++
	if r.reads == 2 && r.sweep != nil {
		r.sweep()
	}
	return s, err
}

func TestUpdateKeepsRemindersClaimedDuringEdit(t *testing.T) {
	f := newFixture(t)
	booked := f.mustBook(t, student1, tuesday(15, 0), 30).Session
	f.recorder.Reset()

	sweepAt := tuesday(15, 0).Add(-59 * time.Minute)
	f.clock.Set(sweepAt)

	repo := &sweepBetweenReadAndWrite{Repository: f.store.Sessions()}
	repo.sweep = func() {
		res, err := f.reminders.Sweep(context.Background(), sweepAt)
		require.NoError(t, err)
		require.Equal(t, 2, res.RemindersSent)
	}
	update := NewUpdateSessionHandler(repo, f.store, f.engine, f.recorder, nil, f.metrics)

	res, err := update.Handle(context.Background(), UpdateSessionCommand{
		Actor: mentor, SessionID: booked.ID, Patch: session.Patch{Title: ptr("Mock interview")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mock interview", res.Session.Title)
	assert.ElementsMatch(t, []session.ReminderTag{session.Reminder24h, session.Reminder1h}, res.Session.ReminderTags)
	assert.Len(t, f.recorder.Of(notification.KindSessionReminder), 4)

	next, err := f.reminders.Sweep(context.Background(), sweepAt.Add(30*time.Second))
	require.NoError(t, err)
	assert.Zero(t, next.RemindersSent)
	assert.Len(t, f.recorder.Of(notification.KindSessionReminder), 4)

	stored, err := f.store.Sessions().GetByID(context.Background(), booked.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mock interview", stored.Title)
	assert.Len(t, stored.ReminderTags, 2)
}
