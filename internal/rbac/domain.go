// Package rbac decides whether an acting identity may perform an action,
// and administers the role assignments those decisions are based on.
package rbac

import "time"

// Role is a closed, enumerated identity classification. Roles are defined
// at build time and carry no independent lifecycle.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleMentor   Role = "mentor"
	RoleTeamLead Role = "team_lead"
	RoleIntern   Role = "intern"
	RoleStaff    Role = "staff"

	// RoleNone is the unassigned state. It grants nothing.
	RoleNone Role = ""
)

// Permission is an opaque resource:action capability token. The space of
// valid permissions is closed.
type Permission string

const (
	PermUserView        Permission = "user:view"
	PermUserAssignRoles Permission = "user:assign_roles"
	PermDocumentUpload  Permission = "document:upload"
	PermDocumentView    Permission = "document:view"
	PermTeamView        Permission = "team:view"
	PermTeamManage      Permission = "team:manage"
	PermReportView      Permission = "report:view"
	PermReportExport    Permission = "report:export"
	PermAuditView       Permission = "audit:view"
)

// Assignment links a subject identity to its current role. A subject holds
// at most one role; removal keeps the row in a no-role state.
type Assignment struct {
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	UpdatedAt time.Time `json:"updated_at"`
}

// grants lists each role's permissions explicitly. There is no inheritance:
// a role that should cover another role's capabilities repeats them here, so
// evaluation stays a flat set lookup.
var grants = map[Role][]Permission{
	RoleAdmin: {
		PermUserView, PermUserAssignRoles,
		PermDocumentUpload, PermDocumentView,
		PermTeamView, PermTeamManage,
		PermReportView, PermReportExport,
		PermAuditView,
	},
	RoleMentor: {
		PermUserView,
		PermDocumentUpload, PermDocumentView,
		PermTeamView,
		PermReportView,
	},
	RoleTeamLead: {
		PermUserView,
		PermDocumentUpload, PermDocumentView,
		PermTeamView, PermTeamManage,
		PermReportView, PermReportExport,
	},
	RoleStaff: {
		PermDocumentUpload, PermDocumentView,
		PermTeamView,
	},
	RoleIntern: {
		PermDocumentView,
	},
}

// grantSets is the lookup form of grants, composed once at startup.
var grantSets = func() map[Role]map[Permission]struct{} {
	sets := make(map[Role]map[Permission]struct{}, len(grants))
	for role, perms := range grants {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}()

// Roles returns the enumerated roles in a stable order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleMentor, RoleTeamLead, RoleStaff, RoleIntern}
}

// ValidRole reports whether candidate names a known role. RoleNone is not a
// valid assignment target; removal goes through its own operation.
func ValidRole(candidate Role) bool {
	_, ok := grants[candidate]
	return ok
}

// PermissionsFor returns the permission set granted to role. An unknown
// role yields an empty set, never an error: absence of permission is the
// safe default.
func PermissionsFor(role Role) []Permission {
	perms := grants[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether role grants perm.
func HasPermission(role Role, perm Permission) bool {
	_, ok := grantSets[role][perm]
	return ok
}

// HasAnyPermission reports whether role grants at least one of perms. An
// empty list is false: absence of a requirement never auto-satisfies an OR.
func HasAnyPermission(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether role grants every element of perms. An
// empty list is vacuously true.
func HasAllPermissions(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}
