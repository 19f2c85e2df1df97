// Package roles defines the closed set of staff roles, the capabilities each
// role holds and the privilege level used to compare them.
package roles

import (
	"fmt"
	"strings"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
)

// Role is a staff role. Only the constants below are valid.
type Role string

const (
	Administrator Role = "ADMINISTRATOR"
	Supervisor    Role = "SUPERVISOR"
	Technician    Role = "TECHNICIAN"
)

// LeastPrivilegedLevel is the level given to values outside the closed set.
const LeastPrivilegedLevel = int(^uint(0) >> 1)

// ErrUnknownRole is returned for values outside the closed set.
var ErrUnknownRole = fmt.Errorf("roles: %w", httpx.ErrUnknownRole)

// closedSet lists every role, most privileged first.
var closedSet = [...]Role{Administrator, Supervisor, Technician}

// Parse converts stored or submitted text into a Role.
func Parse(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return role, nil
}

// Valid reports whether r belongs to the closed set.
func (r Role) Valid() bool {
	_, ok := r.level()
	return ok
}

func (r Role) String() string {
	return string(r)
}

// level is the single source of privilege ordering. 1 is the most privileged.
func (r Role) level() (int, bool) {
	switch r {
	case Administrator:
		return 1, true
	case Supervisor:
		return 2, true
	case Technician:
		return 3, true
	default:
		return 0, false
	}
}
