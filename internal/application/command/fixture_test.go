package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alem-hub/mentorship-hub/internal/application/scheduling"
	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/internal/domain/user"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/messaging"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// Monday, 2026-01-05 10:00 UTC.
var testNow = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

// tuesday returns 2026-01-06 at hh:mm UTC.
func tuesday(hh, mm int) time.Time {
	return time.Date(2026, 1, 6, hh, mm, 0, 0, time.UTC)
}

var (
	student1 = shared.NewActor("st1", shared.RoleStudent)
	student2 = shared.NewActor("st2", shared.RoleStudent)
	student3 = shared.NewActor("st3", shared.RoleStudent)
	mentor   = shared.NewActor("m1", shared.RoleAlumni)

	videoMeeting = shared.Meeting{Location: shared.LocationOnline, Type: shared.MeetingVideo, Link: "https://meet.example.com/m1"}
)

type countingMetrics struct {
	mu       sync.Mutex
	booked   int
	rejected map[string]int
	changed  map[string]int
	sent     map[string]int
	failed   int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{rejected: map[string]int{}, changed: map[string]int{}, sent: map[string]int{}}
}

func (m *countingMetrics) SessionBooked() { m.locked(func() { m.booked++ }) }

func (m *countingMetrics) BookingRejected(code string) { m.locked(func() { m.rejected[code]++ }) }

func (m *countingMetrics) SessionChanged(c string) { m.locked(func() { m.changed[c]++ }) }

func (m *countingMetrics) ReminderSent(tag string) { m.locked(func() { m.sent[tag]++ }) }

func (m *countingMetrics) NotificationFailed(string) { m.locked(func() { m.failed++ }) }

func (m *countingMetrics) locked(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

type fixture struct {
	store    *memory.Store
	clock    *timeutil.FixedClock
	recorder *messaging.Recorder
	metrics  *countingMetrics
	engine   *scheduling.Engine

	schedule  *ScheduleSessionHandler
	update    *UpdateSessionHandler
	reminders *SendRemindersHandler
}

// newFixture seeds one mentor with a Tuesday 14:00-16:00 UTC slot and
// accepted requests from st1 and st2. st3 has no request on file.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	clock := timeutil.NewFixedClock(testNow)
	rec := messaging.NewRecorder()
	metrics := newCountingMetrics()
	engine := scheduling.NewEngine(store.Sessions(), store.Slots(), clock)
	ctx := context.Background()

	store.PutUser(&user.User{ID: "m1", Name: "Mentor", Email: "m1@example.com", Role: shared.RoleAlumni})
	for _, id := range []string{"st1", "st2", "st3"} {
		store.PutUser(&user.User{ID: id, Email: id + "@example.com", Role: shared.RoleStudent})
	}

	slot, err := availability.NewSlot(availability.NewSlotParams{
		ID: "slot1", MentorID: "m1", DayOfWeek: int(time.Tuesday),
		StartTime: "14:00", EndTime: "16:00", Meeting: videoMeeting, Now: testNow,
	})
	require.NoError(t, err)
	require.NoError(t, store.Slots().Create(ctx, slot))

	for _, id := range []string{"st1", "st2"} {
		req, err := mentorship.NewRequest("req-"+id, id, "m1", "I would like guidance", testNow)
		require.NoError(t, err)
		require.NoError(t, store.Requests().Create(ctx, req))
		require.NoError(t, req.Accept(testNow))
		require.NoError(t, store.Requests().Update(ctx, req))
	}

	return &fixture{
		store:     store,
		clock:     clock,
		recorder:  rec,
		metrics:   metrics,
		engine:    engine,
		schedule:  NewScheduleSessionHandler(store.Sessions(), store.Requests(), store, engine, rec, nil, metrics),
		update:    NewUpdateSessionHandler(store.Sessions(), store, engine, rec, nil, metrics),
		reminders: NewSendRemindersHandler(store.Sessions(), rec, nil, metrics),
	}
}

func (f *fixture) book(actor shared.Actor, start time.Time, minutes int) (*ScheduleSessionResult, error) {
	return f.schedule.Handle(context.Background(), ScheduleSessionCommand{
		Actor:     actor,
		MentorID:  "m1",
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		Timezone:  "UTC",
		Meeting:   videoMeeting,
		Title:     "Career chat",
	})
}

func (f *fixture) mustBook(t *testing.T, actor shared.Actor, start time.Time, minutes int) *ScheduleSessionResult {
	t.Helper()
	res, err := f.book(actor, start, minutes)
	require.NoError(t, err)
	return res
}

func ptr[T any](v T) *T { return &v }
