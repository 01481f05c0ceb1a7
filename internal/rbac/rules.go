package rbac

const (
	PermDashboardView    = "dashboard:view"
	PermDashboardExport  = "dashboard:export"
	PermCourseImport     = "course:import"
	PermStaffManage      = "staff:manage"
	PermStaffOwnPassword = "staff:change_password"
)

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	"student": {},
	"tutor": {
		PermDashboardView,
		PermStaffOwnPassword,
	},
	"instructor": {
		"dashboard:*",
		PermCourseImport,
		PermStaffOwnPassword,
	},
	"admin": {
		"*", // everything
	},
}
