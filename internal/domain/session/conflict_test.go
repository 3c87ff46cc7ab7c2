package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduled(id, mentor, student string, start time.Time, minutes int) *Session {
	return &Session{
		ID:        id,
		MentorID:  mentor,
		StudentID: student,
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		Status:    StatusScheduled,
	}
}

func TestFindConflictBufferBoundary(t *testing.T) {
	start := testNow.Add(48 * time.Hour)
	existing := []*Session{scheduled("s1", "m1", "st1", start, 60)}
	end := start.Add(60 * time.Minute)

	tests := []struct {
		name     string
		gap      time.Duration
		conflict bool
	}{
		{"back to back", 0, true},
		{"14 minutes apart", 14 * time.Minute, true},
		{"15 minutes apart", 15 * time.Minute, false},
		{"an hour apart", time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := Candidate{
				StartTime: end.Add(tt.gap),
				EndTime:   end.Add(tt.gap + 30*time.Minute),
				MentorID:  "m1",
				StudentID: "st2",
			}
			before := Candidate{
				StartTime: start.Add(-tt.gap - 30*time.Minute),
				EndTime:   start.Add(-tt.gap),
				MentorID:  "m1",
				StudentID: "st2",
			}

			assert.Equal(t, tt.conflict, FindConflict(after, existing) != nil, "after")
			assert.Equal(t, tt.conflict, FindConflict(before, existing) != nil, "before")
		})
	}
}

func TestFindConflictParties(t *testing.T) {
	start := testNow.Add(48 * time.Hour)
	existing := []*Session{scheduled("s1", "m1", "st1", start, 30)}

	sameMentor := Candidate{StartTime: start, EndTime: start.Add(30 * time.Minute), MentorID: "m1", StudentID: "st2"}
	c := FindConflict(sameMentor, existing)
	require.NotNil(t, c)
	assert.Equal(t, "s1", c.SessionID)
	assert.Equal(t, PartyMentor, c.Party)
	assert.ErrorIs(t, c.Err(), ErrSchedulingConflict)
	assert.Contains(t, c.Reason(), "mentor")
	assert.True(t, c.Involves("m1"))
	assert.True(t, c.Involves("st1"))
	assert.False(t, c.Involves("st2"))
	assert.False(t, c.Involves(""))

	sameStudent := Candidate{StartTime: start, EndTime: start.Add(30 * time.Minute), MentorID: "m2", StudentID: "st1"}
	c = FindConflict(sameStudent, existing)
	require.NotNil(t, c)
	assert.Equal(t, PartyStudent, c.Party)

	unrelated := Candidate{StartTime: start, EndTime: start.Add(30 * time.Minute), MentorID: "m2", StudentID: "st2"}
	assert.Nil(t, FindConflict(unrelated, existing))
}

func TestFindConflictIgnoresInactiveAndExcluded(t *testing.T) {
	start := testNow.Add(48 * time.Hour)
	cancelled := scheduled("s1", "m1", "st1", start, 30)
	cancelled.Status = StatusCancelled
	completed := scheduled("s2", "m1", "st1", start, 30)
	completed.Status = StatusCompleted
	self := scheduled("s3", "m1", "st1", start, 30)

	candidate := Candidate{
		StartTime: start.Add(10 * time.Minute),
		EndTime:   start.Add(40 * time.Minute),
		MentorID:  "m1",
		StudentID: "st1",
		ExcludeID: "s3",
	}

	assert.Nil(t, FindConflict(candidate, []*Session{cancelled, completed, self, nil}))
}

func TestCandidateOverlapQuery(t *testing.T) {
	start := testNow.Add(time.Hour)
	c := Candidate{StartTime: start, EndTime: start.Add(time.Hour), MentorID: "m1", StudentID: "st1", ExcludeID: "x"}

	q := c.Overlap()
	assert.Equal(t, start.Add(-BufferTime), q.Window.Start)
	assert.Equal(t, start.Add(time.Hour+BufferTime), q.Window.End)
	assert.Equal(t, "x", q.ExcludeID)
}
