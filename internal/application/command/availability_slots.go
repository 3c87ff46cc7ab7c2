package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD SLOT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// AddSlotCommand declares a weekly availability window for the acting alumni.
type AddSlotCommand struct {
	Actor     shared.Actor
	DayOfWeek int
	StartTime string
	EndTime   string
	Meeting   shared.Meeting
}

// Validate validates the command.
func (c AddSlotCommand) Validate() error {
	if err := c.Actor.Validate(); err != nil {
		return err
	}
	if !c.Actor.IsAlumni() {
		return availability.ErrNotAlumni
	}
	return nil
}

// AddSlotHandler handles AddSlotCommand.
type AddSlotHandler struct {
	slots availability.Repository
	clock timeutil.Clock
}

// NewAddSlotHandler creates a new AddSlotHandler.
func NewAddSlotHandler(slots availability.Repository, clock timeutil.Clock) *AddSlotHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &AddSlotHandler{slots: slots, clock: clock}
}

// Handle executes the add slot command.
func (h *AddSlotHandler) Handle(ctx context.Context, cmd AddSlotCommand) (*availability.Slot, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	slot, err := availability.NewSlot(availability.NewSlotParams{
		ID:        uuid.NewString(),
		MentorID:  cmd.Actor.UserID,
		DayOfWeek: cmd.DayOfWeek,
		StartTime: cmd.StartTime,
		EndTime:   cmd.EndTime,
		Meeting:   cmd.Meeting,
		Now:       h.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := h.slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("add_slot: failed to save slot: %w", err)
	}
	return slot, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE SLOT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// DeleteSlotCommand removes one of the acting alumni's slots.
type DeleteSlotCommand struct {
	Actor  shared.Actor
	SlotID string
}

// DeleteSlotHandler handles DeleteSlotCommand.
type DeleteSlotHandler struct {
	slots availability.Repository
}

// NewDeleteSlotHandler creates a new DeleteSlotHandler.
func NewDeleteSlotHandler(slots availability.Repository) *DeleteSlotHandler {
	return &DeleteSlotHandler{slots: slots}
}

// Handle executes the delete slot command. Slots owned by someone else are
// reported as not found.
func (h *DeleteSlotHandler) Handle(ctx context.Context, cmd DeleteSlotCommand) error {
	if err := cmd.Actor.Validate(); err != nil {
		return err
	}

	slot, err := h.slots.GetByID(ctx, cmd.SlotID)
	if err != nil {
		return err
	}
	if !slot.OwnedBy(cmd.Actor.UserID) {
		return availability.ErrSlotNotFound
	}

	if err := h.slots.Delete(ctx, slot.ID); err != nil {
		if shared.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("delete_slot: failed to delete slot: %w", err)
	}
	return nil
}
