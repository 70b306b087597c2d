package auth

// Permission names seeded into the permissions table. Roles are granted
// subsets of these; the effective set travels inside the access token.
const (
	PermEvaluationsCreate = "evaluations.create"
	PermEvaluationsRead   = "evaluations.read"
	PermEvaluationsUpdate = "evaluations.update"
	PermEvaluationsDelete = "evaluations.delete"

	PermUsersCreate = "users.create"
	PermUsersRead   = "users.read"
	PermUsersUpdate = "users.update"
	PermUsersDelete = "users.delete"

	PermRolesRead   = "roles.read"
	PermRolesManage = "roles.manage"

	PermReportsRead   = "reports.read"
	PermReportsCreate = "reports.create"
	PermReportsDelete = "reports.delete"
	PermReportsExport = "reports.export"
)

// AllPermissions is the seed list, in display order.
var AllPermissions = []string{
	PermEvaluationsCreate,
	PermEvaluationsRead,
	PermEvaluationsUpdate,
	PermEvaluationsDelete,
	PermUsersCreate,
	PermUsersRead,
	PermUsersUpdate,
	PermUsersDelete,
	PermRolesRead,
	PermRolesManage,
	PermReportsRead,
	PermReportsCreate,
	PermReportsDelete,
	PermReportsExport,
}

// DefaultRoleGrants are the grants the seeder installs for the built-in
// roles. Employees hold evaluations.create so they can start their own
// self-assessment; the service keeps them scoped to evaluatee_id = self.
var DefaultRoleGrants = map[string][]string{
	RoleAdmin: AllPermissions,
	RoleManager: {
		PermEvaluationsCreate,
		PermEvaluationsRead,
		PermEvaluationsUpdate,
		PermEvaluationsDelete,
		PermUsersRead,
		PermReportsRead,
		PermReportsCreate,
		PermReportsExport,
	},
	RoleEmployee: {
		PermEvaluationsCreate,
		PermEvaluationsRead,
	},
}
