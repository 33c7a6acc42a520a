package quiz

import "context"

type AttemptListOpts struct {
	QuizID string // filter by quiz
	UserID string // filter by learner
	Status string // optional: in_progress|completed|graded|abandoned
	Limit  int
	Offset int
	Sort   string // started_at|completed_at desc (default: started_at desc)
}

// Store persists quizzes and attempts. Every method is scoped by org id:
// rows outside the caller's organization are indistinguishable from absent
// ones. Attempt saves are last-write-wins; there is no version token.
type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	// GetQuiz returns the full quiz including answer keys. Callers redact
	// before serving learners.
	GetQuiz(ctx context.Context, orgID, id string) (Quiz, error)

	CreateAttempt(ctx context.Context, a Attempt) error
	SaveAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, orgID, id string) (Attempt, error)
	// GetAttemptForUser additionally requires the attempt to belong to the
	// given user, making cross-user access structurally impossible on the
	// learner-facing paths.
	GetAttemptForUser(ctx context.Context, orgID, id, userID string) (Attempt, error)

	// FindInProgress returns the open attempt for a (quiz, user) pair, or
	// ErrNotFound when none exists.
	FindInProgress(ctx context.Context, orgID, quizID, userID string) (Attempt, error)
	// CountFinished counts attempts with status completed or graded.
	CountFinished(ctx context.Context, orgID, quizID, userID string) (int, error)

	ListAttempts(ctx context.Context, orgID string, opts AttemptListOpts) ([]Attempt, error)
}
