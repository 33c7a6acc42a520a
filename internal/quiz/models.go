package quiz

import "github.com/opencourse/quizd/internal/grading"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptGraded     AttemptStatus = "graded"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// DefaultPassingScore applies when a quiz does not set its own threshold.
const DefaultPassingScore = 60.0

// Quiz is a named assessment owned by a course. Questions are embedded as one
// JSON document in storage; the attempt side only ever reads them.
type Quiz struct {
	ID           string             `json:"id"`
	OrgID        string             `json:"org_id"`
	CourseID     string             `json:"course_id,omitempty"`
	OwnerID      string             `json:"owner_id"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	Status       Status             `json:"status"`
	TimeLimit    int                `json:"time_limit_min,omitempty"` // minutes, 0 = none
	MaxAttempts  int                `json:"max_attempts"`             // <=0 = unlimited
	PassingScore float64            `json:"passing_score"`            // percentage threshold
	TotalPoints  float64            `json:"total_points"`
	Questions    []grading.Question `json:"questions"`
	CreatedAt    int64              `json:"created_at,omitempty"`
}

// PassThreshold returns the effective passing percentage.
func (q Quiz) PassThreshold() float64 {
	if q.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return q.PassingScore
}

// Answer is one question's response inside an attempt. The attempt owns its
// answers wholesale; they are never stored or referenced separately.
type Answer struct {
	QuestionID string      `json:"question_id"`
	Answer     interface{} `json:"answer"` // shape depends on question type
	IsCorrect  bool        `json:"is_correct"`
	Score      float64     `json:"score"`
	Feedback   string      `json:"feedback,omitempty"`
	TimeSpent  int         `json:"time_spent_sec,omitempty"`
	GradedAt   int64       `json:"graded_at,omitempty"`
	GradedBy   string      `json:"graded_by,omitempty"`
}

// Attempt is one learner's run at a quiz. At most one in_progress attempt per
// (quiz, user) pair exists at a time.
type Attempt struct {
	ID              string        `json:"id"`
	OrgID           string        `json:"org_id"`
	QuizID          string        `json:"quiz_id"`
	UserID          string        `json:"user_id"`
	Status          AttemptStatus `json:"status"`
	StartedAt       int64         `json:"started_at"`
	CompletedAt     int64         `json:"completed_at,omitempty"`
	ExpiresAt       int64         `json:"expires_at,omitempty"`
	Score           float64       `json:"score"`
	PercentageScore float64       `json:"percentage_score"`
	Passed          bool          `json:"passed"`
	GradedAt        int64         `json:"graded_at,omitempty"`
	GradedBy        string        `json:"graded_by,omitempty"`
	Answers         []Answer      `json:"answers"`

	// Populated on detail reads, not persisted on the attempt row.
	QuizTitle       string  `json:"quiz_title,omitempty"`
	QuizTotalPoints float64 `json:"quiz_total_points,omitempty"`
}

// AnswerFor returns the saved answer for a question, if any.
func (a *Attempt) AnswerFor(questionID string) *Answer {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == questionID {
			return &a.Answers[i]
		}
	}
	return nil
}

// UpsertAnswer updates the answer for its question in place, or appends it.
func (a *Attempt) UpsertAnswer(ans Answer) {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == ans.QuestionID {
			a.Answers[i] = ans
			return
		}
	}
	a.Answers = append(a.Answers, ans)
}

// AnsweredQuestionIDs lists question ids that already have a saved answer,
// in answer order.
func (a *Attempt) AnsweredQuestionIDs() []string {
	ids := make([]string, 0, len(a.Answers))
	for i := range a.Answers {
		ids = append(ids, a.Answers[i].QuestionID)
	}
	return ids
}
