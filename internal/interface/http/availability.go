package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alem-hub/mentorship-hub/internal/application/command"
	"github.com/alem-hub/mentorship-hub/internal/application/query"
	"github.com/alem-hub/mentorship-hub/internal/interface/http/handlers"
)

type addSlotBody struct {
	DayOfWeek *int   `json:"dayOfWeek" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	meetingBody
}

// POST /api/v1/availability
func (s *Server) handleAddSlot(w http.ResponseWriter, r *http.Request) {
	var body addSlotBody
	if !decodeJSON(w, r, &body) {
		return
	}

	slot, err := s.deps.AddSlot.Handle(r.Context(), command.AddSlotCommand{
		Actor:     handlers.ActorFromContext(r.Context()),
		DayOfWeek: *body.DayOfWeek,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Meeting:   body.meeting(),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, query.NewSlotDTO(slot))
}

// GET /api/v1/availability?mentorId=
func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	mentorID := strings.TrimSpace(r.URL.Query().Get("mentorId"))
	if mentorID == "" {
		writeJSONError(w, r, http.StatusBadRequest, "INVALID_QUERY", "mentorId is required")
		return
	}

	slots, err := s.deps.ListSlots.Handle(r.Context(), query.ListSlotsQuery{MentorID: mentorID})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, slots, &ResponseMeta{TotalCount: len(slots)})
}

// DELETE /api/v1/availability/{id}
func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteSlot.Handle(r.Context(), command.DeleteSlotCommand{
		Actor:  handlers.ActorFromContext(r.Context()),
		SlotID: chi.URLParam(r, "id"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
