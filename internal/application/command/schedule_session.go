package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/mentorship-hub/internal/application/scheduling"
	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE SESSION COMMAND
// Books a session between a student and a mentor. Checks run in a fixed
// order; the first failure is returned and nothing is persisted.
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleSessionCommand contains the data to book a session.
type ScheduleSessionCommand struct {
	Actor     shared.Actor
	StudentID string // defaults to the actor
	MentorID  string

	StartTime time.Time
	EndTime   time.Time
	Timezone  string
	Meeting   shared.Meeting

	Title       string
	Description string
	Agenda      string
}

// Validate checks the caller may book at all.
func (c ScheduleSessionCommand) Validate() error {
	if err := c.Actor.Validate(); err != nil {
		return err
	}
	if !c.Actor.IsStudent() {
		return session.ErrOnlyStudentBooks
	}
	if c.StudentID != "" && c.StudentID != c.Actor.UserID {
		return session.ErrOnlyStudentBooks
	}
	return nil
}

// ScheduleSessionResult contains the booked session.
type ScheduleSessionResult struct {
	Session       *session.Session
	NotifiedCount int
}

// ScheduleSessionHandler handles ScheduleSessionCommand.
type ScheduleSessionHandler struct {
	sessions session.Repository
	requests mentorship.Repository
	tx       session.Transactor
	engine   *scheduling.Engine
	notify   fanout
	metrics  Metrics
}

// NewScheduleSessionHandler creates a new ScheduleSessionHandler.
func NewScheduleSessionHandler(
	sessions session.Repository,
	requests mentorship.Repository,
	tx session.Transactor,
	engine *scheduling.Engine,
	notifier notification.Notifier,
	log *logger.Logger,
	metrics Metrics,
) *ScheduleSessionHandler {
	f := newFanout(notifier, log, metrics)
	return &ScheduleSessionHandler{
		sessions: sessions,
		requests: requests,
		tx:       tx,
		engine:   engine,
		notify:   f,
		metrics:  f.metrics,
	}
}

// Handle executes the schedule session command.
func (h *ScheduleSessionHandler) Handle(ctx context.Context, cmd ScheduleSessionCommand) (*ScheduleSessionResult, error) {
	s, err := h.book(ctx, cmd)
	if err != nil {
		if code := shared.CodeOf(err); code != "" {
			h.metrics.BookingRejected(code)
		}
		return nil, err
	}
	h.metrics.SessionBooked()

	targets := except(cmd.Actor.UserID, s.Participants()...)
	n := h.notify.send(ctx, notification.Event{Kind: notification.KindSessionScheduled, Session: s}, targets...)

	return &ScheduleSessionResult{Session: s, NotifiedCount: n}, nil
}

func (h *ScheduleSessionHandler) book(ctx context.Context, cmd ScheduleSessionCommand) (*session.Session, error) {
	// 1. Caller must be the student
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.engine.Now()

	// 2. Command shape
	s, err := session.NewSession(session.NewSessionParams{
		ID:          uuid.NewString(),
		StudentID:   cmd.Actor.UserID,
		MentorID:    cmd.MentorID,
		StartTime:   cmd.StartTime,
		EndTime:     cmd.EndTime,
		Timezone:    cmd.Timezone,
		Meeting:     cmd.Meeting,
		Title:       cmd.Title,
		Description: cmd.Description,
		Agenda:      cmd.Agenda,
		CreatedBy:   cmd.Actor.UserID,
		Now:         now,
	})
	if err != nil {
		return nil, err
	}

	// 3. An accepted request must exist before any time check
	req, err := h.requests.FindAccepted(ctx, s.StudentID, s.MentorID)
	if err != nil {
		if errors.Is(err, mentorship.ErrRequestNotFound) {
			return nil, session.ErrNoAcceptedRequest
		}
		return nil, fmt.Errorf("schedule_session: failed to load request: %w", err)
	}
	s.RequestID = req.ID

	// 4. Time rules
	if err := session.ValidateTime(s.StartTime, s.EndTime, s.Timezone, now); err != nil {
		return nil, err
	}

	// 5-6. Availability and conflicts are checked under participant locks,
	// together with the insert.
	candidate := session.Candidate{
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		MentorID:  s.MentorID,
		StudentID: s.StudentID,
	}
	err = h.tx.InTx(ctx, s.Participants(), func(ctx context.Context) error {
		if err := h.engine.CheckPlacement(ctx, candidate, s.Timezone); err != nil {
			return err
		}
		return h.sessions.Create(ctx, s)
	})
	if err != nil {
		if shared.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("schedule_session: %w", err)
	}

	return s, nil
}
