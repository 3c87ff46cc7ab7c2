package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// AVAILABILITY REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// SlotRepository implements availability.Repository for PostgreSQL.
type SlotRepository struct {
	conn *Connection
}

// NewSlotRepository creates a new SlotRepository.
func NewSlotRepository(conn *Connection) *SlotRepository {
	return &SlotRepository{conn: conn}
}

var _ availability.Repository = (*SlotRepository)(nil)

const slotColumns = `id, mentor_id, day_of_week, start_time, end_time, location, meeting_type, meeting_link, venue, created_at`

// Create inserts a slot.
func (r *SlotRepository) Create(ctx context.Context, s *availability.Slot) error {
	query := `
		INSERT INTO availability_slots (` + slotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.conn.Exec(ctx, query,
		s.ID, s.MentorID, int16(s.DayOfWeek), s.StartTime, s.EndTime,
		string(s.Meeting.Location), string(s.Meeting.Type), s.Meeting.Link, s.Meeting.Venue,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

// GetByID returns a slot by id.
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*availability.Slot, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+slotColumns+` FROM availability_slots WHERE id = $1`, id)
	s, err := scanSlot(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, availability.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return s, nil
}

// Delete removes a slot.
func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM availability_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return availability.ErrSlotNotFound
	}
	return nil
}

// FindByMentorAndDay returns the mentor's slots on day.
func (r *SlotRepository) FindByMentorAndDay(ctx context.Context, mentorID string, day time.Weekday) ([]*availability.Slot, error) {
	return r.list(ctx,
		`SELECT `+slotColumns+` FROM availability_slots WHERE mentor_id = $1 AND day_of_week = $2 ORDER BY start_time`,
		mentorID, int16(day),
	)
}

// ListByMentor returns every slot of the mentor ordered by day, then start.
func (r *SlotRepository) ListByMentor(ctx context.Context, mentorID string) ([]*availability.Slot, error) {
	return r.list(ctx,
		`SELECT `+slotColumns+` FROM availability_slots WHERE mentor_id = $1 ORDER BY day_of_week, start_time`,
		mentorID,
	)
}

func (r *SlotRepository) list(ctx context.Context, query string, args ...any) ([]*availability.Slot, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var out []*availability.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSlot(row pgx.Row) (*availability.Slot, error) {
	var (
		s           availability.Slot
		day         int16
		location    string
		meetingType string
	)
	err := row.Scan(&s.ID, &s.MentorID, &day, &s.StartTime, &s.EndTime,
		&location, &meetingType, &s.Meeting.Link, &s.Meeting.Venue, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.DayOfWeek = time.Weekday(day)
	s.Meeting.Location = shared.Location(location)
	s.Meeting.Type = shared.MeetingType(meetingType)
	return &s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MENTORSHIP REQUEST REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// RequestRepository implements mentorship.Repository for PostgreSQL.
type RequestRepository struct {
	conn *Connection
}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(conn *Connection) *RequestRepository {
	return &RequestRepository{conn: conn}
}

var _ mentorship.Repository = (*RequestRepository)(nil)

const requestColumns = `id, student_id, alumni_id, message, status, created_at, responded_at`

// Create inserts a request. The partial unique index reports a second
// PENDING request for the same pair.
func (r *RequestRepository) Create(ctx context.Context, req *mentorship.Request) error {
	_, err := r.conn.Exec(ctx,
		`INSERT INTO mentorship_requests (`+requestColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.StudentID, req.AlumniID, req.Message, string(req.Status), req.CreatedAt, req.RespondedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return mentorship.ErrPendingExists
		}
		if IsForeignKeyViolation(err) {
			return mentorship.ErrNotAMentor
		}
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// GetByID returns a request by id.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*mentorship.Request, error) {
	return r.one(ctx, `SELECT `+requestColumns+` FROM mentorship_requests WHERE id = $1`, id)
}

// Update writes the status and response time.
func (r *RequestRepository) Update(ctx context.Context, req *mentorship.Request) error {
	tag, err := r.conn.Exec(ctx,
		`UPDATE mentorship_requests SET status = $1, responded_at = $2 WHERE id = $3 AND status = 'PENDING'`,
		string(req.Status), req.RespondedAt, req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return mentorship.ErrRequestNotFound
	}
	return nil
}

// FindPending returns the PENDING request between the pair.
func (r *RequestRepository) FindPending(ctx context.Context, studentID, alumniID string) (*mentorship.Request, error) {
	return r.byStatus(ctx, studentID, alumniID, mentorship.StatusPending)
}

// FindAccepted returns the latest ACCEPTED request between the pair.
func (r *RequestRepository) FindAccepted(ctx context.Context, studentID, alumniID string) (*mentorship.Request, error) {
	return r.byStatus(ctx, studentID, alumniID, mentorship.StatusAccepted)
}

func (r *RequestRepository) byStatus(ctx context.Context, studentID, alumniID string, status mentorship.Status) (*mentorship.Request, error) {
	return r.one(ctx, `
		SELECT `+requestColumns+`
		FROM mentorship_requests
		WHERE student_id = $1 AND alumni_id = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, studentID, alumniID, string(status))
}

// ListForUser returns the requests a student sent or an alumni received.
func (r *RequestRepository) ListForUser(ctx context.Context, f mentorship.ListFilter) ([]*mentorship.Request, error) {
	var side string
	switch f.Role {
	case shared.RoleStudent:
		side = "student_id = $1"
	case shared.RoleAlumni:
		side = "alumni_id = $1"
	default:
		side = "(student_id = $1 OR alumni_id = $1)"
	}

	rows, err := r.conn.Query(ctx, `
		SELECT `+requestColumns+`
		FROM mentorship_requests
		WHERE `+side+` AND ($2::text = '' OR status = $2::text)
		ORDER BY created_at DESC
	`, f.UserID, string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var out []*mentorship.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *RequestRepository) one(ctx context.Context, query string, args ...any) (*mentorship.Request, error) {
	req, err := scanRequest(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if IsNoRows(err) {
			return nil, mentorship.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

func scanRequest(row pgx.Row) (*mentorship.Request, error) {
	var (
		req    mentorship.Request
		status string
	)
	if err := row.Scan(&req.ID, &req.StudentID, &req.AlumniID, &req.Message, &status, &req.CreatedAt, &req.RespondedAt); err != nil {
		return nil, err
	}
	req.Status = mentorship.Status(status)
	return &req, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

var _ user.Repository = (*UserRepository)(nil)

// GetByID returns a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var (
		u    user.User
		role string
	)
	err := r.conn.QueryRow(ctx,
		`SELECT id, name, email, role, timezone, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &role, &u.Timezone, &u.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Role = shared.Role(role)
	return &u, nil
}

// Upsert creates or replaces a user. Used by seeding and tests.
func (r *UserRepository) Upsert(ctx context.Context, u *user.User) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO users (id, name, email, role, timezone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			timezone = EXCLUDED.timezone
	`, u.ID, u.Name, u.Email, string(u.Role), u.Timezone, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
