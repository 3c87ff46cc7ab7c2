// Package user is the participant directory the scheduler reads to address
// notifications and to check roles. Profile management lives elsewhere.
package user

import (
	"context"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
)

// ErrUserNotFound is returned when no user has the id.
var ErrUserNotFound = shared.NewDomainError("user", "Find", shared.ErrNotFound, "USER_NOT_FOUND", "user not found")

// User is a platform participant.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      shared.Role
	Timezone  string // preferred IANA timezone, may be empty
	CreatedAt time.Time
}

// DisplayName returns the name, or the email when the name is blank.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// IsAlumni reports whether the user can mentor.
func (u *User) IsAlumni() bool { return u.Role == shared.RoleAlumni }

// Repository reads users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
