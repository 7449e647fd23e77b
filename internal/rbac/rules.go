package rbac

// Default policy. EMPLOYEE covers the learner surface; ADMIN covers
// curation, imports, resets and reports.
var RolePermissions = map[string][]string{
	"EMPLOYEE": {
		"progress:view",
		"module:view",
		"quiz:view",
		"quiz:attempt",
		"certificate:view",
		"certificate:issue",
	},
	"ADMIN": {
		"*", // everything
	},
}
