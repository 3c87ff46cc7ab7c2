package session

// Change is a kind of mutation requested on a session.
type Change string

const (
	ChangeCancel      Change = "cancel"
	ChangeComplete    Change = "complete"
	ChangeFeedback    Change = "feedback"      // student feedback and mentor rating
	ChangeReschedule  Change = "reschedule"    // time, timezone or meeting fields
	ChangeEditDetails Change = "edit_details"  // title, description, agenda
	ChangeReview      Change = "mentor_review" // notes, feedback, student rating outside completion
)

type permissionKey struct {
	role   PartyRole
	status Status
	change Change
}

// permissions is the complete allow-list. Anything absent is rejected.
var permissions = map[permissionKey]bool{
	{PartyStudent, StatusScheduled, ChangeCancel}:     true,
	{PartyMentor, StatusScheduled, ChangeCancel}:      true,
	{PartyMentor, StatusScheduled, ChangeComplete}:    true,
	{PartyMentor, StatusScheduled, ChangeReschedule}:  true,
	{PartyMentor, StatusScheduled, ChangeEditDetails}: true,
	{PartyStudent, StatusCompleted, ChangeFeedback}:   true,
}

// Allowed reports whether role may apply change to a session in status.
func Allowed(role PartyRole, status Status, change Change) bool {
	return permissions[permissionKey{role: role, status: status, change: change}]
}

// Authorize checks every change against the table and returns
// ErrUnauthorizedTransition naming the first rejected one.
func Authorize(role PartyRole, status Status, changes []Change) error {
	for _, c := range changes {
		if !Allowed(role, status, c) {
			return ErrUnauthorizedTransition.WithMessage(
				"a " + string(role) + " cannot " + describe(c) + " a " + string(status) + " session",
			)
		}
	}
	return nil
}

func describe(c Change) string {
	switch c {
	case ChangeCancel:
		return "cancel"
	case ChangeComplete:
		return "complete"
	case ChangeFeedback:
		return "leave feedback on"
	case ChangeReschedule:
		return "reschedule"
	case ChangeEditDetails:
		return "edit"
	case ChangeReview:
		return "review"
	default:
		return string(c)
	}
}
