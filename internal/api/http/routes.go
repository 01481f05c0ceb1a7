package http

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/instructor-dashboard/internal/dashboard"
	"github.com/mind-engage/instructor-dashboard/internal/rbac"
)

// MountCourses registers the dashboard routes under /courses. importer may be
// nil when course data is not stored locally.
func MountCourses(r chi.Router, reg *dashboard.Registry, importer Importer) {
	r.Route("/courses/{courseID}", func(cr chi.Router) {
		cr.With(rbac.Require(rbac.PermDashboardView)).
			Get("/dashboard", DashboardSummaryHandler(reg))
		cr.With(rbac.Require(rbac.PermDashboardView)).
			Get("/dashboard/breakdown", DashboardBreakdownHandler(reg))
		cr.With(rbac.Require(rbac.PermDashboardExport)).
			Get("/dashboard/export.csv", DashboardExportHandler(reg))
		cr.With(rbac.Require(rbac.PermDashboardView)).
			Delete("/dashboard", CloseDashboardHandler(reg))

		if importer != nil {
			cr.With(rbac.Require(rbac.PermCourseImport)).
				Post("/import", ImportCourseHandler(importer))
		}
	})
}

// MountStaff registers account management for dashboard users.
func MountStaff(r chi.Router, db *sql.DB) {
	r.Route("/staff", func(sr chi.Router) {
		sr.With(rbac.Require(rbac.PermStaffManage)).Post("/", BulkUpsertStaffHandler(db))
		sr.With(rbac.Require(rbac.PermStaffManage)).Get("/", ListStaffHandler(db))
		sr.With(rbac.Require(rbac.PermStaffOwnPassword)).Post("/change-password", ChangePasswordHandler(db))
	})
}
