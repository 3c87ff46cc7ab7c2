package query

import (
	"context"
	"fmt"

	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST SLOTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListSlotsQuery lists a mentor's weekly slots ordered by day, then start.
type ListSlotsQuery struct {
	MentorID string
}

// ListSlotsHandler handles ListSlotsQuery.
type ListSlotsHandler struct {
	slots availability.Repository
}

// NewListSlotsHandler creates a new ListSlotsHandler.
func NewListSlotsHandler(slots availability.Repository) *ListSlotsHandler {
	return &ListSlotsHandler{slots: slots}
}

// Handle executes the query.
func (h *ListSlotsHandler) Handle(ctx context.Context, q ListSlotsQuery) ([]SlotDTO, error) {
	if q.MentorID == "" {
		return nil, availability.ErrMissingMentor
	}

	slots, err := h.slots.ListByMentor(ctx, q.MentorID)
	if err != nil {
		return nil, fmt.Errorf("list_slots: %w", err)
	}
	availability.Sort(slots)

	out := make([]SlotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, NewSlotDTO(s))
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST REQUESTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListRequestsQuery lists requests the actor sent (student) or received (alumni).
type ListRequestsQuery struct {
	Actor  shared.Actor
	Status mentorship.Status
}

// ListRequestsHandler handles ListRequestsQuery.
type ListRequestsHandler struct {
	requests mentorship.Repository
}

// NewListRequestsHandler creates a new ListRequestsHandler.
func NewListRequestsHandler(requests mentorship.Repository) *ListRequestsHandler {
	return &ListRequestsHandler{requests: requests}
}

// Handle executes the query.
func (h *ListRequestsHandler) Handle(ctx context.Context, q ListRequestsQuery) ([]RequestDTO, error) {
	if err := q.Actor.Validate(); err != nil {
		return nil, err
	}
	if q.Status != "" && !q.Status.IsValid() {
		return nil, mentorship.ErrInvalidResponse.WithMessage("status must be PENDING, ACCEPTED or REJECTED")
	}

	list, err := h.requests.ListForUser(ctx, mentorship.ListFilter{
		UserID: q.Actor.UserID,
		Role:   q.Actor.Role,
		Status: q.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("list_requests: %w", err)
	}

	out := make([]RequestDTO, 0, len(list))
	for _, r := range list {
		out = append(out, NewRequestDTO(r))
	}
	return out, nil
}
