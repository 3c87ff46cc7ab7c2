package query

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

// Page size bounds for session lists.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST SESSIONS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListSessionsQuery lists the actor's sessions, newest start first.
type ListSessionsQuery struct {
	Actor  shared.Actor
	Status session.Status
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Validate checks the query and applies paging defaults.
func (q *ListSessionsQuery) Validate() error {
	if err := q.Actor.Validate(); err != nil {
		return err
	}
	if q.Status != "" && !q.Status.IsValid() {
		return session.ErrInvalidStatus
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return shared.NewDomainError("session", "List", shared.ErrValidation, "INVALID_RANGE", "to must not be before from")
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

// ListSessionsHandler handles ListSessionsQuery.
type ListSessionsHandler struct {
	sessions session.Repository
}

// NewListSessionsHandler creates a new ListSessionsHandler.
func NewListSessionsHandler(sessions session.Repository) *ListSessionsHandler {
	return &ListSessionsHandler{sessions: sessions}
}

// Handle executes the query.
func (h *ListSessionsHandler) Handle(ctx context.Context, q ListSessionsQuery) ([]SessionDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	list, err := h.sessions.ListForParticipant(ctx, session.ListFilter{
		UserID: q.Actor.UserID,
		Status: q.Status,
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list_sessions: %w", err)
	}

	out := make([]SessionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, NewSessionDTO(s, q.Actor.UserID))
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET SESSION QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetSessionQuery fetches one session the actor is party to.
type GetSessionQuery struct {
	Actor     shared.Actor
	SessionID string
}

// GetSessionHandler handles GetSessionQuery.
type GetSessionHandler struct {
	sessions session.Repository
}

// NewGetSessionHandler creates a new GetSessionHandler.
func NewGetSessionHandler(sessions session.Repository) *GetSessionHandler {
	return &GetSessionHandler{sessions: sessions}
}

// Handle executes the query. Sessions the actor is not part of are reported
// as not found.
func (h *GetSessionHandler) Handle(ctx context.Context, q GetSessionQuery) (*SessionDTO, error) {
	if err := q.Actor.Validate(); err != nil {
		return nil, err
	}

	s, err := h.sessions.GetByID(ctx, q.SessionID)
	if err != nil {
		return nil, err
	}
	if !s.IsParty(q.Actor.UserID) {
		return nil, session.ErrSessionNotFound
	}

	dto := NewSessionDTO(s, q.Actor.UserID)
	return &dto, nil
}
