package session

import (
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

// Session domain errors. Codes are part of the API contract.
var (
	ErrSessionNotFound    = shared.NewDomainError("session", "Find", shared.ErrNotFound, "SESSION_NOT_FOUND", "session not found")
	ErrInvalidSessionID   = shared.NewDomainError("session", "Validate", shared.ErrInvalidID, "INVALID_SESSION_ID", "session id is required")
	ErrMissingParticipant = shared.NewDomainError("session", "Validate", shared.ErrInvalidInput, "MISSING_PARTICIPANT", "student and mentor are required")
	ErrSelfBooking        = shared.NewDomainError("session", "Validate", shared.ErrInvalidInput, "SELF_BOOKING", "a user cannot book a session with themselves")
	ErrTitleRequired      = shared.NewDomainError("session", "Validate", shared.ErrEmptyValue, "TITLE_REQUIRED", "title is required")
	ErrTitleTooLong       = shared.NewDomainError("session", "Validate", shared.ErrValueOutOfRange, "TITLE_TOO_LONG", "title is too long")

	// Time rules
	ErrInvalidTimezone = shared.NewDomainError("session", "ValidateTime", shared.ErrValidation, "INVALID_TIMEZONE", "timezone is not a valid IANA name")
	ErrPastDate        = shared.NewDomainError("session", "ValidateTime", shared.ErrValidation, "PAST_DATE", "cannot schedule sessions in the past")
	ErrTooFarFuture    = shared.NewDomainError("session", "ValidateTime", shared.ErrValidation, "TOO_FAR_FUTURE", "cannot schedule sessions more than 90 days in advance")
	ErrInvalidDuration = shared.NewDomainError("session", "ValidateTime", shared.ErrValidation, "INVALID_DURATION", "session duration must be between 30 and 180 minutes")

	// Scheduling
	ErrNotAvailable       = shared.NewDomainError("session", "Schedule", shared.ErrNotAvailable, "NOT_AVAILABLE", "mentor is not available at this time")
	ErrSchedulingConflict = shared.NewDomainError("session", "Schedule", shared.ErrConflict, "SCHEDULING_CONFLICT", "this time slot conflicts with another session")
	ErrNoAcceptedRequest  = shared.NewDomainError("session", "Schedule", shared.ErrForbidden, "NO_ACCEPTED_REQUEST", "no accepted mentorship request found")
	ErrOnlyStudentBooks   = shared.NewDomainError("session", "Schedule", shared.ErrUnauthorized, "UNAUTHORIZED", "only the student can schedule a session")

	// Lifecycle
	ErrUnauthorizedTransition = shared.NewDomainError("session", "Update", shared.ErrStateTransition, "UNAUTHORIZED_TRANSITION", "this change is not allowed for your role in the current session state")
	ErrRoleMismatch           = shared.NewDomainError("session", "Update", shared.ErrUnauthorized, "UNAUTHORIZED", "actor role does not match their role in the session")
	ErrEmptyPatch             = shared.NewDomainError("session", "Update", shared.ErrInvalidInput, "EMPTY_UPDATE", "no changes requested")
	ErrMixedChange            = shared.NewDomainError("session", "Update", shared.ErrInvalidInput, "MIXED_UPDATE", "a status change cannot be combined with other amendments")
	ErrCompletionIncomplete   = shared.NewDomainError("session", "Update", shared.ErrInvalidInput, "COMPLETION_REQUIRES_FEEDBACK", "completing a session requires notes and feedback")
	ErrInvalidRating          = shared.NewDomainError("session", "Update", shared.ErrValueOutOfRange, "INVALID_RATING", "rating must be between 1 and 5")
	ErrFeedbackRequired       = shared.NewDomainError("session", "Update", shared.ErrInvalidInput, "FEEDBACK_REQUIRED", "feedback or a rating is required")
	ErrInvalidStatus          = shared.NewDomainError("session", "Update", shared.ErrValidation, "INVALID_STATUS", "status must be SCHEDULED, COMPLETED or CANCELLED")
)
