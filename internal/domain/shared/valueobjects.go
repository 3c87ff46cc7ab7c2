package shared

import (
	"net/url"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROLE
// ══════════════════════════════════════════════════════════════════════════════

// Role is the platform role of an authenticated user.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAlumni  Role = "ALUMNI"
)

// ParseRole parses a role case-insensitively. "MENTOR" is accepted as an alias
// of ALUMNI.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(RoleStudent):
		return RoleStudent, true
	case string(RoleAlumni), "MENTOR":
		return RoleAlumni, true
	default:
		return "", false
	}
}

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleAlumni
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTOR
// ══════════════════════════════════════════════════════════════════════════════

// Actor is the already-authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   Role
}

// NewActor creates an actor.
func NewActor(userID string, role Role) Actor {
	return Actor{UserID: userID, Role: role}
}

// IsStudent reports whether the actor acts as a student.
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }

// IsAlumni reports whether the actor acts as an alumni mentor.
func (a Actor) IsAlumni() bool { return a.Role == RoleAlumni }

// Validate checks the actor carries an identity and a known role.
func (a Actor) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return NewDomainError("auth", "Validate", ErrUnauthorized, "UNAUTHENTICATED", "actor identity is required")
	}
	if !a.Role.IsValid() {
		return NewDomainError("auth", "Validate", ErrUnauthorized, "UNAUTHENTICATED", "actor role is required")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MEETING DESCRIPTOR
// ══════════════════════════════════════════════════════════════════════════════

// Location says where a meeting happens.
type Location string

const (
	LocationOnline   Location = "ONLINE"
	LocationInPerson Location = "IN_PERSON"
)

// IsValid checks if the location is known.
func (l Location) IsValid() bool {
	return l == LocationOnline || l == LocationInPerson
}

// MeetingType says how participants meet.
type MeetingType string

const (
	MeetingVideo    MeetingType = "VIDEO"
	MeetingAudio    MeetingType = "AUDIO"
	MeetingInPerson MeetingType = "IN_PERSON"
)

// IsValid checks if the meeting type is known.
func (m MeetingType) IsValid() bool {
	return m == MeetingVideo || m == MeetingAudio || m == MeetingInPerson
}

// CompatibleWith reports whether the type can be used at location l:
// IN_PERSON needs IN_PERSON, ONLINE takes VIDEO or AUDIO.
func (m MeetingType) CompatibleWith(l Location) bool {
	switch l {
	case LocationInPerson:
		return m == MeetingInPerson
	case LocationOnline:
		return m == MeetingVideo || m == MeetingAudio
	default:
		return false
	}
}

// Meeting describes where and how a session or slot takes place.
type Meeting struct {
	Location Location
	Type     MeetingType
	Link     string
	Venue    string
}

// Meeting validation errors.
var (
	ErrInvalidLocation         = NewDomainError("meeting", "Validate", ErrValidation, "INVALID_LOCATION", "location must be ONLINE or IN_PERSON")
	ErrInvalidMeetingType      = NewDomainError("meeting", "Validate", ErrValidation, "INVALID_MEETING_TYPE", "meeting type must be VIDEO, AUDIO or IN_PERSON")
	ErrIncompatibleMeetingType = NewDomainError("meeting", "Validate", ErrValidation, "INCOMPATIBLE_MEETING_TYPE", "meeting type is not compatible with location")
	ErrVenueRequired           = NewDomainError("meeting", "Validate", ErrValidation, "VENUE_REQUIRED", "venue is required for in-person meetings")
	ErrInvalidMeetingLink      = NewDomainError("meeting", "Validate", ErrValidation, "INVALID_MEETING_LINK", "meeting link must be an http(s) URL")
)

// Validate checks the descriptor is internally consistent.
func (m Meeting) Validate() error {
	if !m.Location.IsValid() {
		return ErrInvalidLocation
	}
	if !m.Type.IsValid() {
		return ErrInvalidMeetingType
	}
	if !m.Type.CompatibleWith(m.Location) {
		return ErrIncompatibleMeetingType
	}
	if m.Location == LocationInPerson && strings.TrimSpace(m.Venue) == "" {
		return ErrVenueRequired
	}
	if m.Link != "" {
		u, err := url.Parse(m.Link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidMeetingLink
		}
	}
	return nil
}
