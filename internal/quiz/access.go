package quiz

import (
	"fmt"

	"github.com/opencourse/quizd/internal/rbac"
)

// canViewAttempt gates reads that expose answer content and correctness.
// Allowed: holders of the manage-any-course permission, the admin role, the
// attempt's owner, the quiz's owner, and the attempt's assigned grader.
// The learner-facing mutation paths don't use this gate; they scope queries
// by user id instead.
func (s *Service) canViewAttempt(id Identity, a Attempt, q Quiz) error {
	switch {
	case s.checker.Has(id.Role, rbac.PermCourseManageAny):
		return nil
	case id.Role == rbac.RoleAdmin:
		return nil
	case a.UserID == id.UserID:
		return nil
	case q.OwnerID == id.UserID:
		return nil
	case a.GradedBy != "" && a.GradedBy == id.UserID:
		return nil
	}
	return fmt.Errorf("not allowed to view this attempt: %w", ErrForbidden)
}
