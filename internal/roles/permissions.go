package roles

import "sort"

// Permission is a symbolic capability checked by route guards.
type Permission string

const (
	PermUsersView   Permission = "users.view"
	PermUsersManage Permission = "users.manage"
	PermRolesView   Permission = "roles.view"

	PermContentView    Permission = "content.view"
	PermContentManage  Permission = "content.manage"
	PermContentPublish Permission = "content.publish"

	PermDonationsView   Permission = "donations.view"
	PermDonationsManage Permission = "donations.manage"

	PermComplaintsView   Permission = "complaints.view"
	PermComplaintsManage Permission = "complaints.manage"

	PermFilesUpload Permission = "files.upload"
	PermAuditView   Permission = "audit.view"
	PermJobsView    Permission = "jobs.view"
)

// AllPermissions lists every capability known to the platform.
func AllPermissions() []Permission {
	return []Permission{
		PermUsersView,
		PermUsersManage,
		PermRolesView,
		PermContentView,
		PermContentManage,
		PermContentPublish,
		PermDonationsView,
		PermDonationsManage,
		PermComplaintsView,
		PermComplaintsManage,
		PermFilesUpload,
		PermAuditView,
		PermJobsView,
	}
}

// PermissionSet is an immutable-by-convention set of permissions.
type PermissionSet map[Permission]struct{}

func newPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has reports whether p is in the set.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the permissions in lexical order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s PermissionSet) clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}
