package query

import (
	"context"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/application/scheduling"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK SLOT QUERY
// Dry run of the booking checks. Nothing is persisted and no locks are taken,
// so a positive answer is advisory only.
// ══════════════════════════════════════════════════════════════════════════════

// CheckSlotQuery asks whether a booking would pass the time, availability and
// conflict checks. The actor's own side of the candidate is always the actor:
// a student checks as the student, an alumni as the mentor.
type CheckSlotQuery struct {
	Actor     shared.Actor
	MentorID  string
	StudentID string
	StartTime time.Time
	EndTime   time.Time
	Timezone  string
	ExcludeID string // must be a session the actor takes part in
}

// CheckSlotResult is the verdict. Code and Reason are set when OK is false.
// ConflictSessionID is only reported to participants of that session.
type CheckSlotResult struct {
	OK                bool   `json:"ok"`
	Code              string `json:"code,omitempty"`
	Reason            string `json:"reason,omitempty"`
	ConflictSessionID string `json:"conflictSessionId,omitempty"`
}

// CheckSlotHandler handles CheckSlotQuery.
type CheckSlotHandler struct {
	engine   *scheduling.Engine
	sessions session.Repository
}

// NewCheckSlotHandler creates a new CheckSlotHandler.
func NewCheckSlotHandler(engine *scheduling.Engine, sessions session.Repository) *CheckSlotHandler {
	return &CheckSlotHandler{engine: engine, sessions: sessions}
}

// Handle executes the query. Rule failures are part of the result; only
// infrastructure failures and unknown excluded sessions are returned as errors.
func (h *CheckSlotHandler) Handle(ctx context.Context, q CheckSlotQuery) (*CheckSlotResult, error) {
	if err := q.Actor.Validate(); err != nil {
		return nil, err
	}

	candidate := session.Candidate{
		StartTime: q.StartTime.UTC(),
		EndTime:   q.EndTime.UTC(),
		MentorID:  q.MentorID,
		StudentID: q.StudentID,
		ExcludeID: q.ExcludeID,
	}
	if q.Actor.IsStudent() {
		candidate.StudentID = q.Actor.UserID
	} else {
		candidate.MentorID = q.Actor.UserID
	}

	if q.ExcludeID != "" {
		excluded, err := h.sessions.GetByID(ctx, q.ExcludeID)
		if err != nil {
			return nil, err
		}
		if !excluded.IsParty(q.Actor.UserID) {
			return nil, session.ErrSessionNotFound
		}
	}

	if err := session.ValidateTime(candidate.StartTime, candidate.EndTime, q.Timezone, h.engine.Now()); err != nil {
		return reject(err), nil
	}

	ok, err := h.engine.IsAvailable(ctx, candidate.MentorID, candidate.StartTime, q.Timezone)
	if err != nil {
		return nil, err
	}
	if !ok {
		return reject(session.ErrNotAvailable), nil
	}

	conflict, err := h.engine.FindConflict(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		if !conflict.Involves(q.Actor.UserID) {
			return reject(session.ErrSchedulingConflict), nil
		}
		res := reject(conflict.Err())
		res.ConflictSessionID = conflict.SessionID
		return res, nil
	}

	return &CheckSlotResult{OK: true}, nil
}

func reject(err error) *CheckSlotResult {
	return &CheckSlotResult{Code: shared.CodeOf(err), Reason: shared.MessageOf(err)}
}
