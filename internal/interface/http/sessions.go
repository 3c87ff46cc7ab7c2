package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alem-hub/mentorship-hub/internal/application/command"
	"github.com/alem-hub/mentorship-hub/internal/application/query"
	"github.com/alem-hub/mentorship-hub/internal/domain/session"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/internal/interface/http/handlers"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST BODIES
// ══════════════════════════════════════════════════════════════════════════════

// meetingBody is shared by session and slot bodies. Semantic checks such as
// location and type compatibility stay in the domain so their codes surface.
type meetingBody struct {
	Location    string `json:"location" validate:"required"`
	MeetingType string `json:"meetingType" validate:"required"`
	MeetingLink string `json:"meetingLink" validate:"omitempty,max=2048"`
	Venue       string `json:"venue" validate:"omitempty,max=500"`
}

func (m meetingBody) meeting() shared.Meeting {
	return shared.Meeting{
		Location: shared.Location(m.Location),
		Type:     shared.MeetingType(m.MeetingType),
		Link:     m.MeetingLink,
		Venue:    m.Venue,
	}
}

type scheduleSessionBody struct {
	MentorID  string    `json:"mentorId" validate:"required"`
	StudentID string    `json:"studentId"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
	Timezone  string    `json:"timezone" validate:"required"`
	meetingBody

	Title       string `json:"title"`
	Description string `json:"description" validate:"max=5000"`
	Agenda      string `json:"agenda" validate:"max=5000"`
}

type updateSessionBody struct {
	Status *string `json:"status"`

	Title       *string `json:"title"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Agenda      *string `json:"agenda" validate:"omitempty,max=5000"`

	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Timezone    *string    `json:"timezone"`
	Location    *string    `json:"location"`
	MeetingType *string    `json:"meetingType"`
	MeetingLink *string    `json:"meetingLink" validate:"omitempty,max=2048"`
	Venue       *string    `json:"venue" validate:"omitempty,max=500"`

	Notes           *string `json:"notes" validate:"omitempty,max=10000"`
	Feedback        *string `json:"feedback" validate:"omitempty,max=10000"`
	StudentFeedback *string `json:"studentFeedback" validate:"omitempty,max=10000"`
	MentorRating    *int    `json:"mentorRating"`
	StudentRating   *int    `json:"studentRating"`
}

func (b updateSessionBody) patch() session.Patch {
	p := session.Patch{
		Title:           b.Title,
		Description:     b.Description,
		Agenda:          b.Agenda,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Timezone:        b.Timezone,
		MeetingLink:     b.MeetingLink,
		Venue:           b.Venue,
		Notes:           b.Notes,
		Feedback:        b.Feedback,
		StudentFeedback: b.StudentFeedback,
		MentorRating:    b.MentorRating,
		StudentRating:   b.StudentRating,
	}
	if b.Status != nil {
		st := session.Status(*b.Status)
		p.Status = &st
	}
	if b.Location != nil {
		loc := shared.Location(*b.Location)
		p.Location = &loc
	}
	if b.MeetingType != nil {
		mt := shared.MeetingType(*b.MeetingType)
		p.MeetingType = &mt
	}
	return p
}

type checkSlotBody struct {
	MentorID         string    `json:"mentorId" validate:"required"`
	StudentID        string    `json:"studentId"`
	StartTime        time.Time `json:"startTime" validate:"required"`
	EndTime          time.Time `json:"endTime" validate:"required"`
	Timezone         string    `json:"timezone" validate:"required"`
	ExcludeSessionID string    `json:"excludeSessionId"`
}

// sessionResponse wraps a mutated session with the notification count.
type sessionResponse struct {
	Session       query.SessionDTO `json:"session"`
	Changes       []string         `json:"changes,omitempty"`
	NotifiedCount int              `json:"notifiedCount"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// POST /api/v1/sessions
func (s *Server) handleScheduleSession(w http.ResponseWriter, r *http.Request) {
	var body scheduleSessionBody
	if !decodeJSON(w, r, &body) {
		return
	}
	actor := handlers.ActorFromContext(r.Context())

	res, err := s.deps.ScheduleSession.Handle(r.Context(), command.ScheduleSessionCommand{
		Actor:       actor,
		StudentID:   body.StudentID,
		MentorID:    body.MentorID,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Timezone:    body.Timezone,
		Meeting:     body.meeting(),
		Title:       body.Title,
		Description: body.Description,
		Agenda:      body.Agenda,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/sessions/"+res.Session.ID)
	writeJSON(w, r, http.StatusCreated, sessionResponse{
		Session:       query.NewSessionDTO(res.Session, actor.UserID),
		NotifiedCount: res.NotifiedCount,
	})
}

// GET /api/v1/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	from, err := queryTime(r, "from")
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	limit, err := queryInt(r, "limit", query.DefaultPageSize)
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	q := query.ListSessionsQuery{
		Actor:  handlers.ActorFromContext(r.Context()),
		Status: session.Status(r.URL.Query().Get("status")),
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	}
	list, err := s.deps.ListSessions.Handle(r.Context(), q)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	pageSize := limit
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	if pageSize > query.MaxPageSize {
		pageSize = query.MaxPageSize
	}
	writeJSONWithMeta(w, r, http.StatusOK, list, &ResponseMeta{
		TotalCount: len(list),
		PageSize:   pageSize,
		HasMore:    len(list) == pageSize,
	})
}

// GET /api/v1/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.GetSession.Handle(r.Context(), query.GetSessionQuery{
		Actor:     handlers.ActorFromContext(r.Context()),
		SessionID: chi.URLParam(r, "id"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto)
}

// PATCH /api/v1/sessions/{id}
func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var body updateSessionBody
	if !decodeJSON(w, r, &body) {
		return
	}
	actor := handlers.ActorFromContext(r.Context())

	res, err := s.deps.UpdateSession.Handle(r.Context(), command.UpdateSessionCommand{
		Actor:     actor,
		SessionID: chi.URLParam(r, "id"),
		Patch:     body.patch(),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	changes := make([]string, 0, len(res.Changes))
	for _, c := range res.Changes {
		changes = append(changes, string(c))
	}
	writeJSON(w, r, http.StatusOK, sessionResponse{
		Session:       query.NewSessionDTO(res.Session, actor.UserID),
		Changes:       changes,
		NotifiedCount: res.NotifiedCount,
	})
}

// POST /api/v1/sessions/check
func (s *Server) handleCheckSlot(w http.ResponseWriter, r *http.Request) {
	var body checkSlotBody
	if !decodeJSON(w, r, &body) {
		return
	}

	res, err := s.deps.CheckSlot.Handle(r.Context(), query.CheckSlotQuery{
		Actor:     handlers.ActorFromContext(r.Context()),
		MentorID:  body.MentorID,
		StudentID: body.StudentID,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Timezone:  body.Timezone,
		ExcludeID: body.ExcludeSessionID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
