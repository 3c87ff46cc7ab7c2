package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alem-hub/mentorship-hub/internal/application/command"
	"github.com/alem-hub/mentorship-hub/internal/application/query"
	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/interface/http/handlers"
)

type createRequestBody struct {
	AlumniID string `json:"alumniId" validate:"required"`
	Message  string `json:"message"`
}

type respondRequestBody struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
}

// POST /api/v1/mentorship-requests
func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}

	req, err := s.deps.CreateRequest.Handle(r.Context(), command.CreateRequestCommand{
		Actor:    handlers.ActorFromContext(r.Context()),
		AlumniID: body.AlumniID,
		Message:  body.Message,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, query.NewRequestDTO(req))
}

// GET /api/v1/mentorship-requests?status=
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.ListRequests.Handle(r.Context(), query.ListRequestsQuery{
		Actor:  handlers.ActorFromContext(r.Context()),
		Status: mentorship.Status(r.URL.Query().Get("status")),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, list, &ResponseMeta{TotalCount: len(list)})
}

// PATCH /api/v1/mentorship-requests/{id}
func (s *Server) handleRespondRequest(w http.ResponseWriter, r *http.Request) {
	var body respondRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}

	req, err := s.deps.RespondRequest.Handle(r.Context(), command.RespondRequestCommand{
		Actor:     handlers.ActorFromContext(r.Context()),
		RequestID: chi.URLParam(r, "id"),
		Status:    mentorship.Status(body.Status),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, query.NewRequestDTO(req))
}
