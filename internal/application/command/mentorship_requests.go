package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/alem-hub/mentorship-hub/internal/domain/mentorship"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/internal/domain/user"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE REQUEST COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateRequestCommand asks an alumni for mentorship.
type CreateRequestCommand struct {
	Actor    shared.Actor
	AlumniID string
	Message  string
}

// Validate validates the command.
func (c CreateRequestCommand) Validate() error {
	if err := c.Actor.Validate(); err != nil {
		return err
	}
	if !c.Actor.IsStudent() {
		return mentorship.ErrOnlyStudents
	}
	return nil
}

// CreateRequestHandler handles CreateRequestCommand.
type CreateRequestHandler struct {
	requests mentorship.Repository
	users    user.Repository
	clock    timeutil.Clock
}

// NewCreateRequestHandler creates a new CreateRequestHandler.
func NewCreateRequestHandler(requests mentorship.Repository, users user.Repository, clock timeutil.Clock) *CreateRequestHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &CreateRequestHandler{requests: requests, users: users, clock: clock}
}

// Handle executes the create request command.
func (h *CreateRequestHandler) Handle(ctx context.Context, cmd CreateRequestCommand) (*mentorship.Request, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	alumni, err := h.users.GetByID(ctx, cmd.AlumniID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, mentorship.ErrNotAMentor
		}
		return nil, fmt.Errorf("create_request: failed to load alumni: %w", err)
	}
	if !alumni.IsAlumni() {
		return nil, mentorship.ErrNotAMentor
	}

	_, err = h.requests.FindPending(ctx, cmd.Actor.UserID, cmd.AlumniID)
	switch {
	case err == nil:
		return nil, mentorship.ErrPendingExists
	case !errors.Is(err, mentorship.ErrRequestNotFound):
		return nil, fmt.Errorf("create_request: failed to check pending requests: %w", err)
	}

	req, err := mentorship.NewRequest(uuid.NewString(), cmd.Actor.UserID, cmd.AlumniID, cmd.Message, h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := h.requests.Create(ctx, req); err != nil {
		if shared.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("create_request: failed to save request: %w", err)
	}
	return req, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPOND REQUEST COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RespondRequestCommand accepts or rejects a PENDING request.
type RespondRequestCommand struct {
	Actor     shared.Actor
	RequestID string
	Status    mentorship.Status
}

// Validate validates the command.
func (c RespondRequestCommand) Validate() error {
	if err := c.Actor.Validate(); err != nil {
		return err
	}
	if !c.Actor.IsAlumni() {
		return mentorship.ErrOnlyAlumni
	}
	if c.Status != mentorship.StatusAccepted && c.Status != mentorship.StatusRejected {
		return mentorship.ErrInvalidResponse
	}
	return nil
}

// RespondRequestHandler handles RespondRequestCommand.
type RespondRequestHandler struct {
	requests mentorship.Repository
	clock    timeutil.Clock
}

// NewRespondRequestHandler creates a new RespondRequestHandler.
func NewRespondRequestHandler(requests mentorship.Repository, clock timeutil.Clock) *RespondRequestHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &RespondRequestHandler{requests: requests, clock: clock}
}

// Handle executes the respond request command. Requests addressed to someone
// else, or already answered, are reported as not found.
func (h *RespondRequestHandler) Handle(ctx context.Context, cmd RespondRequestCommand) (*mentorship.Request, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	req, err := h.requests.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	if req.AlumniID != cmd.Actor.UserID || req.Status != mentorship.StatusPending {
		return nil, mentorship.ErrRequestNotFound
	}

	if err := req.Respond(cmd.Status, h.clock.Now()); err != nil {
		return nil, err
	}
	if err := h.requests.Update(ctx, req); err != nil {
		if errors.Is(err, mentorship.ErrRequestNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("respond_request: failed to save request: %w", err)
	}
	return req, nil
}
