package roles

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Definition is the static description of a role.
type Definition struct {
	Role        Role
	Level       int
	Label       string
	Description string
	Permissions PermissionSet
}

// Registry holds every role definition. It is built once at startup, never
// mutated afterwards and safe for concurrent reads.
type Registry struct {
	defs    map[Role]Definition
	ordered []Role
}

// NewRegistry builds the registry from the static role table. It panics if the
// table breaks an invariant, since that is a programming error.
func NewRegistry() *Registry {
	title := cases.Title(language.English)
	reg := &Registry{defs: make(map[Role]Definition, len(closedSet))}
	levels := make(map[int]Role, len(closedSet))
	for _, role := range closedSet {
		level, _ := role.level()
		if other, dup := levels[level]; dup {
			panic(fmt.Sprintf("roles: %s and %s share level %d", other, role, level))
		}
		levels[level] = role
		perms := grantsFor(role)
		if len(perms) == 0 {
			panic(fmt.Sprintf("roles: %s has no permissions", role))
		}
		reg.defs[role] = Definition{
			Role:        role,
			Level:       level,
			Label:       title.String(strings.ToLower(string(role))),
			Description: descriptionFor(role),
			Permissions: perms,
		}
		reg.ordered = append(reg.ordered, role)
	}
	return reg
}

func grantsFor(role Role) PermissionSet {
	switch role {
	case Administrator:
		return newPermissionSet(AllPermissions()...)
	case Supervisor:
		return newPermissionSet(
			PermUsersView,
			PermRolesView,
			PermContentView,
			PermContentManage,
			PermContentPublish,
			PermDonationsView,
			PermComplaintsView,
			PermComplaintsManage,
			PermFilesUpload,
			PermJobsView,
		)
	case Technician:
		return newPermissionSet(
			PermContentView,
			PermContentManage,
			PermComplaintsView,
			PermFilesUpload,
		)
	default:
		return nil
	}
}

func descriptionFor(role Role) string {
	switch role {
	case Administrator:
		return "Full access, including staff accounts and donations."
	case Supervisor:
		return "Publishes content and handles complaints; read-only on staff and donations."
	case Technician:
		return "Maintains content and uploads files."
	default:
		return ""
	}
}

// PermissionsOf returns a copy of the permissions granted to role.
func (r *Registry) PermissionsOf(role Role) (PermissionSet, error) {
	def, err := r.lookup(role)
	if err != nil {
		return nil, err
	}
	return def.Permissions.clone(), nil
}

// LevelOf returns the privilege level of role. Lower is more privileged.
func (r *Registry) LevelOf(role Role) (int, error) {
	def, err := r.lookup(role)
	if err != nil {
		return 0, err
	}
	return def.Level, nil
}

// Has reports whether role holds p. Unknown roles hold nothing.
func (r *Registry) Has(role Role, p Permission) bool {
	def, err := r.lookup(role)
	if err != nil {
		return false
	}
	return def.Permissions.Has(p)
}

// AllRoles returns every role, most privileged first.
func (r *Registry) AllRoles() []Role {
	out := make([]Role, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Describe renders a one-line human description of role.
func (r *Registry) Describe(role Role) (string, error) {
	def, err := r.lookup(role)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (level %d): %s", def.Label, def.Level, def.Description), nil
}

// Definition returns the full definition of role.
func (r *Registry) Definition(role Role) (Definition, error) {
	def, err := r.lookup(role)
	if err != nil {
		return Definition{}, err
	}
	def.Permissions = def.Permissions.clone()
	return def, nil
}

func (r *Registry) lookup(role Role) (Definition, error) {
	def, ok := r.defs[role]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownRole, string(role))
	}
	return def, nil
}
