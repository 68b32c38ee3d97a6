package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermissionMatchesGrantSet(t *testing.T) {
	all := []Permission{
		PermUserView, PermUserAssignRoles, PermDocumentUpload, PermDocumentView,
		PermTeamView, PermTeamManage, PermReportView, PermReportExport, PermAuditView,
	}
	for _, role := range Roles() {
		granted := make(map[Permission]bool)
		for _, p := range PermissionsFor(role) {
			granted[p] = true
		}
		for _, p := range all {
			assert.Equal(t, granted[p], HasPermission(role, p),
				"role %s permission %s", role, p)
		}
	}
}

func TestUnknownRoleGrantsNothing(t *testing.T) {
	assert.Empty(t, PermissionsFor(Role("superuser")))
	assert.Empty(t, PermissionsFor(RoleNone))
	assert.False(t, HasPermission(Role("superuser"), PermUserView))
	assert.False(t, HasPermission(RoleNone, PermDocumentView))
}

func TestValidRole(t *testing.T) {
	for _, role := range Roles() {
		assert.True(t, ValidRole(role))
	}
	assert.False(t, ValidRole(RoleNone))
	assert.False(t, ValidRole(Role("superuser")))
}

func TestHasAnyPermissionEmptyListIsFalse(t *testing.T) {
	for _, role := range Roles() {
		assert.False(t, HasAnyPermission(role), "role %s", role)
	}
}

func TestHasAllPermissionsEmptyListIsTrue(t *testing.T) {
	for _, role := range Roles() {
		assert.True(t, HasAllPermissions(role), "role %s", role)
	}
	assert.True(t, HasAllPermissions(RoleNone), "even a role-less subject meets no requirement")
}

func TestAnyAllSemantics(t *testing.T) {
	assert.True(t, HasAnyPermission(RoleStaff, PermUserAssignRoles, PermDocumentUpload))
	assert.False(t, HasAllPermissions(RoleStaff, PermUserAssignRoles, PermDocumentUpload))
	assert.True(t, HasAllPermissions(RoleAdmin, PermUserAssignRoles, PermDocumentUpload))
}

func TestStaffUploadsButDoesNotManageUsers(t *testing.T) {
	assert.True(t, HasPermission(RoleStaff, PermDocumentUpload))
	assert.False(t, HasPermission(RoleStaff, PermUserAssignRoles))
}
