package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository implements session.Repository for PostgreSQL.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

var _ session.Repository = (*SessionRepository)(nil)

const sessionColumns = `
	id, student_id, mentor_id, COALESCE(request_id, ''),
	start_time, end_time, timezone, duration, status,
	location, meeting_type, meeting_link, venue,
	title, description, agenda, notes, feedback, student_feedback,
	mentor_rating, student_rating,
	reminder_tags, reminders_sent, last_modified_by,
	completed_at, cancelled_at, created_at, updated_at`

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a session. The exclusion constraints reject a SCHEDULED row
// that falls within the buffer of another one for the same mentor or student.
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `
		INSERT INTO mentorship_sessions (
			id, student_id, mentor_id, request_id,
			start_time, end_time, blocked_until, timezone, duration, status,
			location, meeting_type, meeting_link, venue,
			title, description, agenda, notes, feedback, student_feedback,
			mentor_rating, student_rating,
			reminder_tags, reminders_sent, last_modified_by,
			completed_at, cancelled_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, NULLIF($4, ''),
			$5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20,
			$21, $22,
			$23, $24, $25,
			$26, $27, $28, $29
		)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID, s.StudentID, s.MentorID, s.RequestID,
		s.StartTime, s.EndTime, s.EndTime.Add(session.BufferTime), s.Timezone, s.Duration, string(s.Status),
		string(s.Meeting.Location), string(s.Meeting.Type), s.Meeting.Link, s.Meeting.Venue,
		s.Title, s.Description, s.Agenda, s.Notes, s.Feedback, s.StudentFeedback,
		s.MentorRating, s.StudentRating,
		tagsToStrings(s.ReminderTags), nonNilTimes(s.RemindersSent), s.LastModifiedBy,
		s.CompletedAt, s.CancelledAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if IsExclusionViolation(err) {
			return session.ErrSchedulingConflict
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID returns a session by id.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*session.Session, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+sessionColumns+` FROM mentorship_sessions WHERE id = $1`, id)

	s, err := scanSession(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// Update overwrites the mutable fields of a session. Reminder state is owned
// by ClaimReminder: it is kept as stored unless the start instant moves, in
// which case it is reset.
func (r *SessionRepository) Update(ctx context.Context, s *session.Session) error {
	query := `
		UPDATE mentorship_sessions SET
			reminder_tags = CASE WHEN start_time = $1 THEN reminder_tags ELSE '{}'::text[] END,
			reminders_sent = CASE WHEN start_time = $1 THEN reminders_sent ELSE '{}'::timestamptz[] END,
			start_time = $1,
			end_time = $2,
			blocked_until = $3,
			timezone = $4,
			duration = $5,
			status = $6,
			location = $7,
			meeting_type = $8,
			meeting_link = $9,
			venue = $10,
			title = $11,
			description = $12,
			agenda = $13,
			notes = $14,
			feedback = $15,
			student_feedback = $16,
			mentor_rating = $17,
			student_rating = $18,
			last_modified_by = $19,
			completed_at = $20,
			cancelled_at = $21,
			updated_at = $22
		WHERE id = $23
		RETURNING reminder_tags, reminders_sent
	`

	var (
		tags []string
		sent []time.Time
	)
	err := r.conn.QueryRow(ctx, query,
		s.StartTime, s.EndTime, s.EndTime.Add(session.BufferTime), s.Timezone, s.Duration, string(s.Status),
		string(s.Meeting.Location), string(s.Meeting.Type), s.Meeting.Link, s.Meeting.Venue,
		s.Title, s.Description, s.Agenda, s.Notes, s.Feedback, s.StudentFeedback,
		s.MentorRating, s.StudentRating,
		s.LastModifiedBy, s.CompletedAt, s.CancelledAt, s.UpdatedAt,
		s.ID,
	).Scan(&tags, &sent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.ErrSessionNotFound
		}
		if IsExclusionViolation(err) {
			return session.ErrSchedulingConflict
		}
		return fmt.Errorf("failed to update session: %w", err)
	}
	setReminders(s, tags, sent)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scheduling Queries
// ─────────────────────────────────────────────────────────────────────────────

// FindOverlapping returns SCHEDULED sessions of either party whose range
// intersects the window.
func (r *SessionRepository) FindOverlapping(ctx context.Context, q session.OverlapQuery) ([]*session.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM mentorship_sessions
		WHERE status = 'SCHEDULED'
		  AND (mentor_id = $1 OR student_id = $2)
		  AND start_time < $4
		  AND end_time > $3
		  AND id <> $5
		ORDER BY start_time
	`
	return r.list(ctx, query, q.MentorID, q.StudentID, q.Window.Start, q.Window.End, q.ExcludeID)
}

// FindUpcomingScheduled returns SCHEDULED sessions starting after now. Only
// sessions within the longest reminder lead can have a reminder due, so the
// scan is bounded to that horizon.
func (r *SessionRepository) FindUpcomingScheduled(ctx context.Context, now time.Time) ([]*session.Session, error) {
	horizon := now
	for _, l := range session.ReminderLeads {
		if t := now.Add(l.Lead); t.After(horizon) {
			horizon = t
		}
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM mentorship_sessions
		WHERE status = 'SCHEDULED'
		  AND start_time > $1
		  AND start_time <= $2
		ORDER BY start_time
	`
	return r.list(ctx, query, now, horizon)
}

// ClaimReminder records tag with a conditional update so concurrent sweeps
// race on the row and exactly one wins.
func (r *SessionRepository) ClaimReminder(ctx context.Context, id string, tag session.ReminderTag, at time.Time) (bool, error) {
	query := `
		UPDATE mentorship_sessions SET
			reminder_tags = array_append(reminder_tags, $2),
			reminders_sent = array_append(reminders_sent, $3)
		WHERE id = $1
		  AND status = 'SCHEDULED'
		  AND NOT ($2 = ANY(reminder_tags))
	`

	res, err := r.conn.Exec(ctx, query, id, string(tag), at.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder: %w", err)
	}
	return res.RowsAffected() == 1, nil
}

// ListForParticipant returns the user's sessions, newest start first.
func (r *SessionRepository) ListForParticipant(ctx context.Context, f session.ListFilter) ([]*session.Session, error) {
	var (
		where = []string{"(student_id = $1 OR mentor_id = $1)"}
		args  = []any{f.UserID}
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("start_time <= $%d", len(args)))
	}

	query := `SELECT ` + sessionColumns + ` FROM mentorship_sessions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY start_time DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.list(ctx, query, args...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func (r *SessionRepository) list(ctx context.Context, query string, args ...any) ([]*session.Session, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []*session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		s            session.Session
		status       string
		location     string
		meetingType  string
		mentorRating *int16
		studentRate  *int16
		tags         []string
		sent         []time.Time
	)

	err := row.Scan(
		&s.ID, &s.StudentID, &s.MentorID, &s.RequestID,
		&s.StartTime, &s.EndTime, &s.Timezone, &s.Duration, &status,
		&location, &meetingType, &s.Meeting.Link, &s.Meeting.Venue,
		&s.Title, &s.Description, &s.Agenda, &s.Notes, &s.Feedback, &s.StudentFeedback,
		&mentorRating, &studentRate,
		&tags, &sent, &s.LastModifiedBy,
		&s.CompletedAt, &s.CancelledAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = session.Status(status)
	s.Meeting.Location = shared.Location(location)
	s.Meeting.Type = shared.MeetingType(meetingType)
	s.MentorRating = intPtr(mentorRating)
	s.StudentRating = intPtr(studentRate)
	setReminders(&s, tags, sent)
	s.StartTime = s.StartTime.UTC()
	s.EndTime = s.EndTime.UTC()

	return &s, nil
}

func setReminders(s *session.Session, tags []string, sent []time.Time) {
	s.ReminderTags = make([]session.ReminderTag, 0, len(tags))
	for _, t := range tags {
		s.ReminderTags = append(s.ReminderTags, session.ReminderTag(t))
	}
	s.RemindersSent = make([]time.Time, 0, len(sent))
	for _, t := range sent {
		s.RemindersSent = append(s.RemindersSent, t.UTC())
	}
}

func tagsToStrings(tags []session.ReminderTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, string(t))
	}
	return out
}

func nonNilTimes(ts []time.Time) []time.Time {
	if ts == nil {
		return []time.Time{}
	}
	return ts
}

func intPtr(v *int16) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}
