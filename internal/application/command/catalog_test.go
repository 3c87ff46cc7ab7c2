package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

func TestRequestLifecycleUnlocksBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	create := NewCreateRequestHandler(f.store.Requests(), f.store.Users(), f.clock)
	respond := NewRespondRequestHandler(f.store.Requests(), f.clock)

	_, err := f.book(student3, tuesday(15, 0), 30)
	require.ErrorIs(t, err, session.ErrNoAcceptedRequest)

	req, err := create.Handle(ctx, CreateRequestCommand{Actor: student3, AlumniID: "m1", Message: "Could you review my resume?"})
	require.NoError(t, err)
	assert.Equal(t, mentorship.StatusPending, req.Status)

	_, err = create.Handle(ctx, CreateRequestCommand{Actor: student3, AlumniID: "m1", Message: "again"})
	assert.ErrorIs(t, err, mentorship.ErrPendingExists)

	// pending is not enough
	_, err = f.book(student3, tuesday(15, 0), 30)
	assert.ErrorIs(t, err, session.ErrNoAcceptedRequest)

	accepted, err := respond.Handle(ctx, RespondRequestCommand{Actor: mentor, RequestID: req.ID, Status: mentorship.StatusAccepted})
	require.NoError(t, err)
	assert.True(t, accepted.IsAccepted())
	require.NotNil(t, accepted.RespondedAt)

	res := f.mustBook(t, student3, tuesday(15, 0), 30)
	assert.Equal(t, req.ID, res.Session.RequestID)

	// answered requests cannot be answered again
	_, err = respond.Handle(ctx, RespondRequestCommand{Actor: mentor, RequestID: req.ID, Status: mentorship.StatusRejected})
	assert.ErrorIs(t, err, mentorship.ErrRequestNotFound)
}

func TestCreateRequestChecks(t *testing.T) {
	f := newFixture(t)
	create := NewCreateRequestHandler(f.store.Requests(), f.store.Users(), f.clock)
	ctx := context.Background()

	_, err := create.Handle(ctx, CreateRequestCommand{Actor: mentor, AlumniID: "m1", Message: "hi"})
	assert.ErrorIs(t, err, mentorship.ErrOnlyStudents)

	_, err = create.Handle(ctx, CreateRequestCommand{Actor: student3, AlumniID: "nobody", Message: "hi"})
	assert.ErrorIs(t, err, mentorship.ErrNotAMentor)

	_, err = create.Handle(ctx, CreateRequestCommand{Actor: student3, AlumniID: "st1", Message: "hi"})
	assert.ErrorIs(t, err, mentorship.ErrNotAMentor)

	_, err = create.Handle(ctx, CreateRequestCommand{Actor: student3, AlumniID: "m1", Message: "   "})
	assert.ErrorIs(t, err, mentorship.ErrMessageRequired)
}

func TestRespondRequestChecks(t *testing.T) {
	f := newFixture(t)
	create := NewCreateRequestHandler(f.store.Requests(), f.store.Users(), f.clock)
	respond := NewRespondRequestHandler(f.store.Requests(), f.clock)
	ctx := context.Background()

	req, err := create.Handle(ctx, CreateRequestCommand{Actor: student3, AlumniID: "m1", Message: "hello"})
	require.NoError(t, err)

	_, err = respond.Handle(ctx, RespondRequestCommand{Actor: student3, RequestID: req.ID, Status: mentorship.StatusAccepted})
	assert.ErrorIs(t, err, mentorship.ErrOnlyAlumni)

	_, err = respond.Handle(ctx, RespondRequestCommand{Actor: mentor, RequestID: req.ID, Status: mentorship.StatusPending})
	assert.ErrorIs(t, err, mentorship.ErrInvalidResponse)

	other := shared.NewActor("m9", shared.RoleAlumni)
	_, err = respond.Handle(ctx, RespondRequestCommand{Actor: other, RequestID: req.ID, Status: mentorship.StatusAccepted})
	assert.ErrorIs(t, err, mentorship.ErrRequestNotFound)

	rejected, err := respond.Handle(ctx, RespondRequestCommand{Actor: mentor, RequestID: req.ID, Status: mentorship.StatusRejected})
	require.NoError(t, err)
	assert.Equal(t, mentorship.StatusRejected, rejected.Status)

	// a rejected pair may ask again
	_, err = create.Handle(ctx, CreateRequestCommand{Actor: student3, AlumniID: "m1", Message: "second try"})
	assert.NoError(t, err)
}

func TestAddAndDeleteSlot(t *testing.T) {
	f := newFixture(t)
	add := NewAddSlotHandler(f.store.Slots(), f.clock)
	del := NewDeleteSlotHandler(f.store.Slots())
	ctx := context.Background()

	slot, err := add.Handle(ctx, AddSlotCommand{
		Actor: mentor, DayOfWeek: int(time.Wednesday), StartTime: "9:00", EndTime: "11:30", Meeting: videoMeeting,
	})
	require.NoError(t, err)
	assert.Equal(t, "09:00", slot.StartTime)
	assert.Equal(t, time.Wednesday, slot.DayOfWeek)

	// Wednesday now bookable
	f.mustBook(t, student1, tuesday(10, 0).AddDate(0, 0, 1), 60)

	_, err = add.Handle(ctx, AddSlotCommand{Actor: student1, DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", Meeting: videoMeeting})
	assert.ErrorIs(t, err, availability.ErrNotAlumni)

	_, err = add.Handle(ctx, AddSlotCommand{Actor: mentor, DayOfWeek: 1, StartTime: "22:00", EndTime: "01:00", Meeting: videoMeeting})
	assert.ErrorIs(t, err, availability.ErrOvernightSlot)

	_, err = add.Handle(ctx, AddSlotCommand{Actor: mentor, DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00", Meeting: videoMeeting})
	assert.ErrorIs(t, err, availability.ErrInvalidDay)

	other := shared.NewActor("m9", shared.RoleAlumni)
	assert.ErrorIs(t, del.Handle(ctx, DeleteSlotCommand{Actor: other, SlotID: slot.ID}), availability.ErrSlotNotFound)

	require.NoError(t, del.Handle(ctx, DeleteSlotCommand{Actor: mentor, SlotID: slot.ID}))
	assert.ErrorIs(t, del.Handle(ctx, DeleteSlotCommand{Actor: mentor, SlotID: slot.ID}), availability.ErrSlotNotFound)
}

// respondBetweenReadAndWrite answers the request on its own right after
// GetByID, before the handler saves its answer.
type respondBetweenReadAndWrite struct {
	mentorship.Repository
	respond func()
}

func (r *respondBetweenReadAndWrite) GetByID(ctx context.Context, id string) (*mentorship.Request, error) {
	req, err := r.Repository.GetByID(ctx, id)
	if r.respond != nil {
		respond := r.respond
		r.respond = nil
		respond()
	}
	return req, err
}

func TestRespondRequestAnsweredOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	create := NewCreateRequestHandler(f.store.Requests(), f.store.Users(), f.clock)
	accept := NewRespondRequestHandler(f.store.Requests(), f.clock)

	req, err := create.Handle(ctx, CreateRequestCommand{Actor: student3, AlumniID: "m1", Message: "Could you review my resume?"})
	require.NoError(t, err)

	repo := &respondBetweenReadAndWrite{Repository: f.store.Requests()}
	repo.respond = func() {
		_, err := accept.Handle(ctx, RespondRequestCommand{Actor: mentor, RequestID: req.ID, Status: mentorship.StatusAccepted})
		require.NoError(t, err)
	}
	reject := NewRespondRequestHandler(repo, f.clock)

	_, err = reject.Handle(ctx, RespondRequestCommand{Actor: mentor, RequestID: req.ID, Status: mentorship.StatusRejected})
	assert.ErrorIs(t, err, mentorship.ErrRequestNotFound)

	stored, err := f.store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, mentorship.StatusAccepted, stored.Status)
	f.mustBook(t, student3, tuesday(15, 0), 30)
}
