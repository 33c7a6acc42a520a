package rbac

// Roles known to the default policy.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Permissions referenced from code. The full vocabulary lives in
// RolePermissions; these are the ones checked outside route wiring.
const (
	PermCourseManage    = "course:manage"     // grade, regrade, feedback within own courses
	PermCourseManageAny = "course:manage-any" // cross-course elevated access
	PermQuizCreate      = "quiz:create"
	PermAttemptViewAll  = "attempt:view-all"
)

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	RoleStudent: {
		"quiz:view",
		"attempt:create",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
		"attempt:stats",
	},
	RoleTeacher: {
		"quiz:view",
		PermQuizCreate,
		PermCourseManage,
		PermAttemptViewAll,
		"attempt:grade",
		"attempt:stats",
	},
	RoleAdmin: {
		"*", // everything
	},
}
