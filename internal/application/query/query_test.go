package query

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/mentorship-hub/internal/application/scheduling"
	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

var (
	testNow = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	student = shared.NewActor("st1", shared.RoleStudent)
	mentor  = shared.NewActor("m1", shared.RoleAlumni)
	outside = shared.NewActor("st9", shared.RoleStudent)

	meeting = shared.Meeting{Location: shared.LocationOnline, Type: shared.MeetingVideo, Link: "https://meet.example.com/x"}
)

func seedSession(t *testing.T, store *memory.Store, id string, start time.Time, status session.Status) *session.Session {
	t.Helper()
	s, err := session.NewSession(session.NewSessionParams{
		ID: id, StudentID: "st1", MentorID: "m1", RequestID: "r1",
		StartTime: start, EndTime: start.Add(30 * time.Minute), Timezone: "UTC",
		Meeting: meeting, Title: "Session " + id, CreatedBy: "st1", Now: testNow,
	})
	require.NoError(t, err)
	s.Status = status
	s.Notes = "private notes"
	require.NoError(t, store.Sessions().Create(context.Background(), s))
	return s
}

func TestListSessionsNewestFirstWithFilters(t *testing.T) {
	store := memory.NewStore()
	day := time.Date(2026, 1, 6, 15, 0, 0, 0, time.UTC)
	seedSession(t, store, "a", day, session.StatusScheduled)
	seedSession(t, store, "b", day.AddDate(0, 0, 1), session.StatusCancelled)
	seedSession(t, store, "c", day.AddDate(0, 0, 2), session.StatusScheduled)

	h := NewListSessionsHandler(store.Sessions())
	ctx := context.Background()

	all, err := h.Handle(ctx, ListSessionsQuery{Actor: student})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	scheduled, err := h.Handle(ctx, ListSessionsQuery{Actor: mentor, Status: session.StatusScheduled})
	require.NoError(t, err)
	assert.Len(t, scheduled, 2)

	from := day.Add(time.Hour)
	ranged, err := h.Handle(ctx, ListSessionsQuery{Actor: student, From: &from})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	paged, err := h.Handle(ctx, ListSessionsQuery{Actor: student, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "b", paged[0].ID)

	none, err := h.Handle(ctx, ListSessionsQuery{Actor: outside})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListSessionsValidation(t *testing.T) {
	h := NewListSessionsHandler(memory.NewStore().Sessions())
	ctx := context.Background()

	_, err := h.Handle(ctx, ListSessionsQuery{Actor: student, Status: "DONE"})
	assert.ErrorIs(t, err, session.ErrInvalidStatus)

	from, to := testNow, testNow.Add(-time.Hour)
	_, err = h.Handle(ctx, ListSessionsQuery{Actor: student, From: &from, To: &to})
	assert.Equal(t, "INVALID_RANGE", shared.CodeOf(err))

	q := ListSessionsQuery{Actor: student, Limit: 1000, Offset: -3}
	require.NoError(t, q.Validate())
	assert.Equal(t, MaxPageSize, q.Limit)
	assert.Equal(t, 0, q.Offset)
}

func TestGetSessionHidesNotesFromStudent(t *testing.T) {
	store := memory.NewStore()
	seedSession(t, store, "a", time.Date(2026, 1, 6, 15, 0, 0, 0, time.UTC), session.StatusCompleted)
	h := NewGetSessionHandler(store.Sessions())
	ctx := context.Background()

	asMentor, err := h.Handle(ctx, GetSessionQuery{Actor: mentor, SessionID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "private notes", asMentor.Notes)

	asStudent, err := h.Handle(ctx, GetSessionQuery{Actor: student, SessionID: "a"})
	require.NoError(t, err)
	assert.Empty(t, asStudent.Notes)

	raw, err := json.Marshal(asStudent)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "notes")
	assert.Contains(t, string(raw), `"startTime"`)

	_, err = h.Handle(ctx, GetSessionQuery{Actor: outside, SessionID: "a"})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestCheckSlot(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	slot, err := availability.NewSlot(availability.NewSlotParams{
		ID: "slot1", MentorID: "m1", DayOfWeek: int(time.Tuesday), StartTime: "14:00", EndTime: "16:00", Meeting: meeting, Now: testNow,
	})
	require.NoError(t, err)
	require.NoError(t, store.Slots().Create(ctx, slot))
	existing := seedSession(t, store, "a", time.Date(2026, 1, 6, 15, 0, 0, 0, time.UTC), session.StatusScheduled)

	engine := scheduling.NewEngine(store.Sessions(), store.Slots(), timeutil.NewFixedClock(testNow))
	h := NewCheckSlotHandler(engine, store.Sessions())
	at := func(hh, mm int) time.Time { return time.Date(2026, 1, 6, hh, mm, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		actor   shared.Actor
		q       CheckSlotQuery
		ok      bool
		code    string
		blocker string
	}{
		{"free", student, CheckSlotQuery{StartTime: at(14, 0), EndTime: at(14, 30)}, true, "", ""},
		{"conflict", student, CheckSlotQuery{StartTime: at(15, 10), EndTime: at(15, 40)}, false, "SCHEDULING_CONFLICT", existing.ID},
		{"mentor sees own conflict", mentor, CheckSlotQuery{StartTime: at(15, 10), EndTime: at(15, 40)}, false, "SCHEDULING_CONFLICT", existing.ID},
		{"other student gets no details", outside, CheckSlotQuery{StartTime: at(15, 10), EndTime: at(15, 40)}, false, "SCHEDULING_CONFLICT", ""},
		{"student id is always the actor", outside, CheckSlotQuery{StudentID: "st1", StartTime: at(15, 10), EndTime: at(15, 40)}, false, "SCHEDULING_CONFLICT", ""},
		{"excluded self", student, CheckSlotQuery{StartTime: at(15, 10), EndTime: at(15, 40), ExcludeID: existing.ID}, true, "", ""},
		{"not available", student, CheckSlotQuery{StartTime: at(17, 0), EndTime: at(17, 30)}, false, "NOT_AVAILABLE", ""},
		{"bad duration", student, CheckSlotQuery{StartTime: at(14, 0), EndTime: at(14, 10)}, false, "INVALID_DURATION", ""},
		{"bad zone", student, CheckSlotQuery{StartTime: at(14, 0), EndTime: at(14, 30), Timezone: "Not/AZone"}, false, "INVALID_TIMEZONE", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.q
			q.Actor = tt.actor
			q.MentorID = "m1"
			if q.Timezone == "" {
				q.Timezone = "UTC"
			}
			res, err := h.Handle(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, res.OK)
			assert.Equal(t, tt.code, res.Code)
			assert.Equal(t, tt.blocker, res.ConflictSessionID)
			if !tt.ok {
				assert.NotEmpty(t, res.Reason)
			}
			if tt.code == "SCHEDULING_CONFLICT" && tt.blocker == "" {
				assert.NotContains(t, res.Reason, "UTC", "times of other users' sessions stay hidden")
			}
		})
	}
}

func TestCheckSlotExcludeMustBeOwnSession(t *testing.T) {
	store := memory.NewStore()
	existing := seedSession(t, store, "a", time.Date(2026, 1, 6, 15, 0, 0, 0, time.UTC), session.StatusScheduled)
	engine := scheduling.NewEngine(store.Sessions(), store.Slots(), timeutil.NewFixedClock(testNow))
	h := NewCheckSlotHandler(engine, store.Sessions())

	q := CheckSlotQuery{
		Actor: outside, MentorID: "m1", Timezone: "UTC", ExcludeID: existing.ID,
		StartTime: existing.StartTime, EndTime: existing.EndTime,
	}
	_, err := h.Handle(context.Background(), q)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	q.ExcludeID = "missing"
	_, err = h.Handle(context.Background(), q)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestListSlotsSorted(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	for i, p := range []struct {
		day        time.Weekday
		start, end string
	}{
		{time.Thursday, "10:00", "11:00"},
		{time.Monday, "15:00", "16:00"},
		{time.Monday, "09:00", "10:00"},
	} {
		slot, err := availability.NewSlot(availability.NewSlotParams{
			ID: string(rune('a' + i)), MentorID: "m1", DayOfWeek: int(p.day), StartTime: p.start, EndTime: p.end, Meeting: meeting, Now: testNow,
		})
		require.NoError(t, err)
		require.NoError(t, store.Slots().Create(ctx, slot))
	}

	list, err := NewListSlotsHandler(store.Slots()).Handle(ctx, ListSlotsQuery{MentorID: "m1"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestListRequestsBySide(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	r1, err := mentorship.NewRequest("r1", "st1", "m1", "hello", testNow)
	require.NoError(t, err)
	require.NoError(t, store.Requests().Create(ctx, r1))
	r2, err := mentorship.NewRequest("r2", "st2", "m1", "hi", testNow.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, store.Requests().Create(ctx, r2))
	require.NoError(t, r2.Accept(testNow))
	require.NoError(t, store.Requests().Update(ctx, r2))

	h := NewListRequestsHandler(store.Requests())

	received, err := h.Handle(ctx, ListRequestsQuery{Actor: mentor})
	require.NoError(t, err)
	assert.Len(t, received, 2)

	accepted, err := h.Handle(ctx, ListRequestsQuery{Actor: mentor, Status: mentorship.StatusAccepted})
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "r2", accepted[0].ID)

	sent, err := h.Handle(ctx, ListRequestsQuery{Actor: student})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "r1", sent[0].ID)

	_, err = h.Handle(ctx, ListRequestsQuery{Actor: student, Status: "MAYBE"})
	assert.Error(t, err)
}
