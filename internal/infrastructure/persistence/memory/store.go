// Package memory is an in-process implementation of every repository
// contract. It backs tests and the development mode of cmd/api; transactions
// are serialized with a single mutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/internal/domain/user"
)

// Store holds all data in maps. The zero value is not usable; call NewStore.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	sessions map[string]*session.Session
	slots    map[string]*availability.Slot
	requests map[string]*mentorship.Request
	users    map[string]*user.User
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*session.Session),
		slots:    make(map[string]*availability.Slot),
		requests: make(map[string]*mentorship.Request),
		users:    make(map[string]*user.User),
	}
}

// Sessions returns the session repository.
func (s *Store) Sessions() *SessionRepository { return &SessionRepository{s} }

// Slots returns the availability repository.
func (s *Store) Slots() *SlotRepository { return &SlotRepository{s} }

// Requests returns the mentorship request repository.
func (s *Store) Requests() *RequestRepository { return &RequestRepository{s} }

// Users returns the user directory.
func (s *Store) Users() *UserRepository { return &UserRepository{s} }

// InTx runs fn while holding the store-wide transaction lock. Lock keys are
// ignored; every transaction excludes every other.
func (s *Store) InTx(ctx context.Context, _ []string, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// PutUser adds or replaces a user.
func (s *Store) PutUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository implements session.Repository.
type SessionRepository struct{ st *Store }

var _ session.Repository = (*SessionRepository)(nil)

// Create stores a copy of sess.
func (r *SessionRepository) Create(_ context.Context, sess *session.Session) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.sessions[sess.ID]; ok {
		return shared.NewDomainError("session", "Create", shared.ErrAlreadyExists, "SESSION_EXISTS", "session already exists")
	}
	r.st.sessions[sess.ID] = sess.Clone()
	return nil
}

// GetByID returns a copy of the session.
func (r *SessionRepository) GetByID(_ context.Context, id string) (*session.Session, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	sess, ok := r.st.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Update replaces the stored session. Reminder state stays as stored unless
// the start instant moves, in which case it is reset. sess receives the
// resulting reminder state.
func (r *SessionRepository) Update(_ context.Context, sess *session.Session) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	stored, ok := r.st.sessions[sess.ID]
	if !ok {
		return session.ErrSessionNotFound
	}

	next := sess.Clone()
	if next.StartTime.Equal(stored.StartTime) {
		next.ReminderTags = append([]session.ReminderTag{}, stored.ReminderTags...)
		next.RemindersSent = append([]time.Time{}, stored.RemindersSent...)
	} else {
		next.ReminderTags = nil
		next.RemindersSent = nil
	}
	r.st.sessions[sess.ID] = next

	sess.ReminderTags = append([]session.ReminderTag{}, next.ReminderTags...)
	sess.RemindersSent = append([]time.Time{}, next.RemindersSent...)
	return nil
}

// FindOverlapping returns SCHEDULED sessions of either party intersecting the window.
func (r *SessionRepository) FindOverlapping(_ context.Context, q session.OverlapQuery) ([]*session.Session, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var out []*session.Session
	for _, sess := range r.st.sessions {
		if sess.Status != session.StatusScheduled || sess.ID == q.ExcludeID {
			continue
		}
		if sess.MentorID != q.MentorID && sess.StudentID != q.StudentID {
			continue
		}
		if q.Window.Overlaps(sess.StartTime, sess.EndTime) {
			out = append(out, sess.Clone())
		}
	}
	sortByStart(out, false)
	return out, nil
}

// FindUpcomingScheduled returns SCHEDULED sessions starting after now.
func (r *SessionRepository) FindUpcomingScheduled(_ context.Context, now time.Time) ([]*session.Session, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var out []*session.Session
	for _, sess := range r.st.sessions {
		if sess.Status == session.StatusScheduled && sess.StartTime.After(now) {
			out = append(out, sess.Clone())
		}
	}
	sortByStart(out, false)
	return out, nil
}

// ClaimReminder records tag if it is absent.
func (r *SessionRepository) ClaimReminder(_ context.Context, id string, tag session.ReminderTag, at time.Time) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	sess, ok := r.st.sessions[id]
	if !ok {
		return false, session.ErrSessionNotFound
	}
	return sess.RecordReminder(tag, at), nil
}

// ListForParticipant filters the user's sessions, newest start first.
func (r *SessionRepository) ListForParticipant(_ context.Context, f session.ListFilter) ([]*session.Session, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var out []*session.Session
	for _, sess := range r.st.sessions {
		if !sess.IsParty(f.UserID) {
			continue
		}
		if f.Status != "" && sess.Status != f.Status {
			continue
		}
		if f.From != nil && sess.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && sess.StartTime.After(*f.To) {
			continue
		}
		out = append(out, sess.Clone())
	}
	sortByStart(out, true)
	return page(out, f.Offset, f.Limit), nil
}

func sortByStart(list []*session.Session, desc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return list[i].StartTime.After(list[j].StartTime)
		}
		return list[i].StartTime.Before(list[j].StartTime)
	})
}

func page[T any](list []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ══════════════════════════════════════════════════════════════════════════════
// AVAILABILITY
// ══════════════════════════════════════════════════════════════════════════════

// SlotRepository implements availability.Repository.
type SlotRepository struct{ st *Store }

var _ availability.Repository = (*SlotRepository)(nil)

func (r *SlotRepository) Create(_ context.Context, slot *availability.Slot) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cp := *slot
	r.st.slots[slot.ID] = &cp
	return nil
}

func (r *SlotRepository) GetByID(_ context.Context, id string) (*availability.Slot, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	slot, ok := r.st.slots[id]
	if !ok {
		return nil, availability.ErrSlotNotFound
	}
	cp := *slot
	return &cp, nil
}

func (r *SlotRepository) Delete(_ context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.slots[id]; !ok {
		return availability.ErrSlotNotFound
	}
	delete(r.st.slots, id)
	return nil
}

func (r *SlotRepository) FindByMentorAndDay(_ context.Context, mentorID string, day time.Weekday) ([]*availability.Slot, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var out []*availability.Slot
	for _, slot := range r.st.slots {
		if slot.MentorID == mentorID && slot.DayOfWeek == day {
			cp := *slot
			out = append(out, &cp)
		}
	}
	availability.Sort(out)
	return out, nil
}

func (r *SlotRepository) ListByMentor(_ context.Context, mentorID string) ([]*availability.Slot, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var out []*availability.Slot
	for _, slot := range r.st.slots {
		if slot.MentorID == mentorID {
			cp := *slot
			out = append(out, &cp)
		}
	}
	availability.Sort(out)
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MENTORSHIP REQUESTS
// ══════════════════════════════════════════════════════════════════════════════

// RequestRepository implements mentorship.Repository.
type RequestRepository struct{ st *Store }

var _ mentorship.Repository = (*RequestRepository)(nil)

func (r *RequestRepository) Create(_ context.Context, req *mentorship.Request) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if req.Status == mentorship.StatusPending {
		for _, other := range r.st.requests {
			if other.Status == mentorship.StatusPending &&
				other.StudentID == req.StudentID && other.AlumniID == req.AlumniID {
				return mentorship.ErrPendingExists
			}
		}
	}
	cp := *req
	r.st.requests[req.ID] = &cp
	return nil
}

func (r *RequestRepository) GetByID(_ context.Context, id string) (*mentorship.Request, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	req, ok := r.st.requests[id]
	if !ok {
		return nil, mentorship.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *RequestRepository) Update(_ context.Context, req *mentorship.Request) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	stored, ok := r.st.requests[req.ID]
	if !ok || stored.Status != mentorship.StatusPending {
		return mentorship.ErrRequestNotFound
	}
	cp := *req
	r.st.requests[req.ID] = &cp
	return nil
}

func (r *RequestRepository) FindPending(ctx context.Context, studentID, alumniID string) (*mentorship.Request, error) {
	return r.findByStatus(studentID, alumniID, mentorship.StatusPending)
}

func (r *RequestRepository) FindAccepted(ctx context.Context, studentID, alumniID string) (*mentorship.Request, error) {
	return r.findByStatus(studentID, alumniID, mentorship.StatusAccepted)
}

func (r *RequestRepository) findByStatus(studentID, alumniID string, status mentorship.Status) (*mentorship.Request, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	for _, req := range r.st.requests {
		if req.StudentID == studentID && req.AlumniID == alumniID && req.Status == status {
			cp := *req
			return &cp, nil
		}
	}
	return nil, mentorship.ErrRequestNotFound
}

func (r *RequestRepository) ListForUser(_ context.Context, f mentorship.ListFilter) ([]*mentorship.Request, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var out []*mentorship.Request
	for _, req := range r.st.requests {
		switch f.Role {
		case shared.RoleStudent:
			if req.StudentID != f.UserID {
				continue
			}
		case shared.RoleAlumni:
			if req.AlumniID != f.UserID {
				continue
			}
		default:
			if !req.IsVisibleTo(f.UserID) {
				continue
			}
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USERS
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository.
type UserRepository struct{ st *Store }

var _ user.Repository = (*UserRepository)(nil)

func (r *UserRepository) GetByID(_ context.Context, id string) (*user.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	u, ok := r.st.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

var _ session.Transactor = (*Store)(nil)
