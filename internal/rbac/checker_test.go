package rbac

import "testing"

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role string
		perm string
		want bool
	}{
		{RoleStudent, "attempt:submit", true},
		{RoleStudent, PermCourseManage, false},
		{RoleStudent, PermAttemptViewAll, false},
		{RoleTeacher, PermCourseManage, true},
		{RoleTeacher, PermQuizCreate, true},
		{RoleTeacher, PermCourseManageAny, false},
		{RoleAdmin, PermCourseManageAny, true},
		{RoleAdmin, "anything:at-all", true},
		{"unknown-role", "quiz:view", false},
		{"", "quiz:view", false},
	}
	for _, tc := range tests {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestWildcardPatterns(t *testing.T) {
	c := NewChecker(map[string][]string{
		"grader": {"attempt:*", "quiz:view"},
	})

	if !c.Has("grader", "attempt:grade") {
		t.Error("prefix wildcard did not match")
	}
	if c.Has("grader", "quiz:create") {
		t.Error("wildcard leaked across prefixes")
	}
	if !c.Any("grader", "quiz:create", "quiz:view") {
		t.Error("Any missed a granted permission")
	}
	if c.All("grader", "attempt:grade", "quiz:create") {
		t.Error("All ignored a missing permission")
	}
}
