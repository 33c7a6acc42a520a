package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opencourse/quizd/internal/grading"
	"github.com/opencourse/quizd/internal/rbac"
)

// Identity is the resolved caller: subject and role from the session token,
// org from the tenant resolver.
type Identity struct {
	UserID string
	OrgID  string
	Role   string
}

// Recorder receives lifecycle events. Appends are best-effort; a failed
// append never fails the operation that produced it.
type Recorder interface {
	Record(ctx context.Context, orgID, typ, key string, data interface{})
}

// EnrollmentChecker is the external collaborator deciding whether a learner
// may take quizzes of a course. A nil checker allows everyone.
type EnrollmentChecker interface {
	Enrolled(ctx context.Context, orgID, userID, courseID string) (bool, error)
}

// Service is the quiz attempt state machine: it governs the
// in_progress -> completed/graded transitions, enforces attempt-count and
// expiry constraints, and persists answer mutations one aggregate at a time.
// Attempt saves are last-write-wins; concurrent Navigate calls for the same
// attempt can interleave (accepted risk for a single learner's own session).
type Service struct {
	store   Store
	reg     *grading.Registry
	checker *rbac.Checker
	events  Recorder
	enroll  EnrollmentChecker
	now     func() time.Time
}

type ServiceOption func(*Service)

func WithRecorder(r Recorder) ServiceOption { return func(s *Service) { s.events = r } }

func WithEnrollment(e EnrollmentChecker) ServiceOption { return func(s *Service) { s.enroll = e } }

func WithClock(now func() time.Time) ServiceOption { return func(s *Service) { s.now = now } }

func NewService(store Store, reg *grading.Registry, checker *rbac.Checker, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		reg:     reg,
		checker: checker,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) record(ctx context.Context, orgID, typ, key string, data interface{}) {
	if s.events != nil {
		s.events.Record(ctx, orgID, typ, key, data)
	}
}

/* ------------------------------- results ---------------------------------- */

type StartResult struct {
	Success   bool          `json:"success"`
	AttemptID string        `json:"attempt_id,omitempty"`
	Status    AttemptStatus `json:"status"`
	Message   string        `json:"message"`
}

type NavigateRequest struct {
	AttemptID           string      `json:"attempt_id"`
	CurrentQuestionID   string      `json:"current_question_id,omitempty"`
	CurrentAnswer       interface{} `json:"current_answer,omitempty"`
	TargetQuestionIndex int         `json:"target_question_index"`
	SaveAnswer          bool        `json:"save_answer,omitempty"`
	TimeSpent           int         `json:"time_spent_sec,omitempty"`
}

type NavigateResult struct {
	Success              bool              `json:"success"`
	Message              string            `json:"message"`
	TargetQuestionAnswer *Answer           `json:"target_question_answer,omitempty"`
	TargetQuestionInfo   *grading.Question `json:"target_question_info,omitempty"`
	AnsweredQuestions    []string          `json:"answered_questions"`
}

type SubmitResult struct {
	Success         bool          `json:"success"`
	AttemptID       string        `json:"attempt_id"`
	Status          AttemptStatus `json:"status"`
	Score           float64       `json:"score"`
	PercentageScore float64       `json:"percentage_score"`
	Passed          bool          `json:"passed"`
	Message         string        `json:"message"`
}

type FeedbackRequest struct {
	AttemptID  string `json:"attempt_id"`
	QuestionID string `json:"question_id"`
	Feedback   string `json:"feedback"`
}

type FeedbackResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

/* -------------------------------- start ----------------------------------- */

// Start opens a new attempt or resumes the learner's open one. Errors are
// folded into the result payload; a failed start reports status "abandoned"
// without persisting anything.
func (s *Service) Start(ctx context.Context, id Identity, quizID string) StartResult {
	res, err := s.start(ctx, id, quizID)
	if err != nil {
		return StartResult{Success: false, Status: AttemptAbandoned, Message: err.Error()}
	}
	return res
}

func (s *Service) start(ctx context.Context, id Identity, quizID string) (StartResult, error) {
	q, err := s.store.GetQuiz(ctx, id.OrgID, quizID)
	if err != nil {
		return StartResult{}, err
	}
	if q.Status != StatusPublished {
		return StartResult{}, fmt.Errorf("quiz is not published: %w", ErrConflict)
	}
	if s.enroll != nil && q.CourseID != "" {
		ok, err := s.enroll.Enrolled(ctx, id.OrgID, id.UserID, q.CourseID)
		if err != nil {
			return StartResult{}, err
		}
		if !ok {
			return StartResult{}, fmt.Errorf("not enrolled in course: %w", ErrForbidden)
		}
	}

	if open, err := s.store.FindInProgress(ctx, id.OrgID, quizID, id.UserID); err == nil {
		return StartResult{
			Success:   true,
			AttemptID: open.ID,
			Status:    open.Status,
			Message:   "Resuming existing attempt",
		}, nil
	} else if !isNotFound(err) {
		return StartResult{}, err
	}

	if q.MaxAttempts > 0 {
		n, err := s.store.CountFinished(ctx, id.OrgID, quizID, id.UserID)
		if err != nil {
			return StartResult{}, err
		}
		if n >= q.MaxAttempts {
			return StartResult{}, fmt.Errorf("maximum attempts (%d) reached: %w", q.MaxAttempts, ErrConflict)
		}
	}

	// Time-limit expiry exists in the data model but is not armed here;
	// expiry is only evaluated lazily on Navigate/Submit.
	a := Attempt{
		ID:        uuid.NewString(),
		OrgID:     id.OrgID,
		QuizID:    quizID,
		UserID:    id.UserID,
		Status:    AttemptInProgress,
		StartedAt: s.now().Unix(),
		Answers:   []Answer{},
	}
	if err := s.store.CreateAttempt(ctx, a); err != nil {
		return StartResult{}, err
	}
	s.record(ctx, id.OrgID, "AttemptStarted", a.ID, map[string]string{"quiz_id": quizID, "user_id": id.UserID})
	return StartResult{Success: true, AttemptID: a.ID, Status: a.Status, Message: "Quiz attempt started"}, nil
}

/* ------------------------------- navigate --------------------------------- */

// Navigate moves the learner to another question, optionally saving the
// answer to the question being left. An invalid answer is silently not saved;
// navigation itself still succeeds.
func (s *Service) Navigate(ctx context.Context, id Identity, req NavigateRequest) NavigateResult {
	res, err := s.navigate(ctx, id, req)
	if err != nil {
		return NavigateResult{Success: false, Message: err.Error()}
	}
	return res
}

func (s *Service) navigate(ctx context.Context, id Identity, req NavigateRequest) (NavigateResult, error) {
	a, err := s.store.GetAttemptForUser(ctx, id.OrgID, req.AttemptID, id.UserID)
	if err != nil {
		return NavigateResult{}, err
	}
	if err := s.guardInProgress(a); err != nil {
		return NavigateResult{}, err
	}
	q, err := s.store.GetQuiz(ctx, id.OrgID, a.QuizID)
	if err != nil {
		return NavigateResult{}, err
	}
	if req.TargetQuestionIndex < 0 || req.TargetQuestionIndex >= len(q.Questions) {
		return NavigateResult{}, fmt.Errorf("target question index %d out of range: %w", req.TargetQuestionIndex, ErrValidation)
	}

	msg := ""
	if req.SaveAnswer && req.CurrentQuestionID != "" {
		norm, verr := s.validateAnswer(req.CurrentAnswer, req.CurrentQuestionID, q.Questions)
		if verr == nil {
			a.UpsertAnswer(Answer{QuestionID: req.CurrentQuestionID, Answer: norm, TimeSpent: req.TimeSpent})
			if err := s.store.SaveAttempt(ctx, a); err != nil {
				return NavigateResult{}, err
			}
			msg = "Answer saved"
		}
		// don't block navigation on validation
	}

	target := q.Questions[req.TargetQuestionIndex]
	view := s.displayQuestion(target, true)
	return NavigateResult{
		Success:              true,
		Message:              msg,
		TargetQuestionAnswer: a.AnswerFor(target.ID),
		TargetQuestionInfo:   &view,
		AnsweredQuestions:    a.AnsweredQuestionIDs(),
	}, nil
}

func (s *Service) guardInProgress(a Attempt) error {
	if a.Status != AttemptInProgress {
		return fmt.Errorf("attempt is not in progress: %w", ErrConflict)
	}
	if a.ExpiresAt > 0 && s.now().Unix() > a.ExpiresAt {
		return fmt.Errorf("attempt has expired: %w", ErrConflict)
	}
	return nil
}

func (s *Service) displayQuestion(q grading.Question, hideAnswers bool) grading.Question {
	if p, ok := s.reg.GetProvider(q.Type); ok {
		return p.ProcessQuestionForDisplay(q, hideAnswers)
	}
	return grading.Redact(q, hideAnswers)
}

/* -------------------------------- submit ---------------------------------- */

// Submit scores every saved answer and finalizes the attempt. Scoring is
// idempotent given identical inputs: a later Regrade over an unchanged
// question set reproduces the same totals.
func (s *Service) Submit(ctx context.Context, id Identity, attemptID string) SubmitResult {
	res, err := s.submit(ctx, id, attemptID)
	if err != nil {
		return SubmitResult{Success: false, AttemptID: attemptID, Status: AttemptAbandoned, Message: err.Error()}
	}
	return res
}

func (s *Service) submit(ctx context.Context, id Identity, attemptID string) (SubmitResult, error) {
	a, err := s.store.GetAttemptForUser(ctx, id.OrgID, attemptID, id.UserID)
	if err != nil {
		return SubmitResult{}, err
	}
	if err := s.guardInProgress(a); err != nil {
		return SubmitResult{}, err
	}
	q, err := s.store.GetQuiz(ctx, id.OrgID, a.QuizID)
	if err != nil {
		return SubmitResult{}, err
	}

	s.scoreAttempt(&a, q)
	a.Status = AttemptCompleted
	a.CompletedAt = s.now().Unix()
	if err := s.store.SaveAttempt(ctx, a); err != nil {
		return SubmitResult{}, err
	}
	s.record(ctx, id.OrgID, "AttemptSubmitted", a.ID, map[string]interface{}{
		"quiz_id": a.QuizID, "score": a.Score, "percentage": a.PercentageScore, "passed": a.Passed,
	})
	return SubmitResult{
		Success:         true,
		AttemptID:       a.ID,
		Status:          a.Status,
		Score:           a.Score,
		PercentageScore: a.PercentageScore,
		Passed:          a.Passed,
		Message:         "Quiz attempt submitted",
	}, nil
}

/* ------------------------------- regrade ---------------------------------- */

// Regrade re-runs the identical scoring pass over an already-finished
// attempt, typically after question corrections. Requires course management
// permission.
func (s *Service) Regrade(ctx context.Context, id Identity, attemptID string) SubmitResult {
	res, err := s.regrade(ctx, id, attemptID)
	if err != nil {
		return SubmitResult{Success: false, AttemptID: attemptID, Status: AttemptAbandoned, Message: err.Error()}
	}
	return res
}

func (s *Service) regrade(ctx context.Context, id Identity, attemptID string) (SubmitResult, error) {
	if !s.checker.Has(id.Role, rbac.PermCourseManage) {
		return SubmitResult{}, fmt.Errorf("course management permission required: %w", ErrForbidden)
	}
	a, err := s.store.GetAttempt(ctx, id.OrgID, attemptID)
	if err != nil {
		return SubmitResult{}, err
	}
	if a.Status != AttemptCompleted && a.Status != AttemptGraded {
		return SubmitResult{}, fmt.Errorf("attempt is not completed: %w", ErrConflict)
	}
	q, err := s.store.GetQuiz(ctx, id.OrgID, a.QuizID)
	if err != nil {
		return SubmitResult{}, err
	}

	s.scoreAttempt(&a, q)
	a.Status = AttemptGraded
	a.GradedAt = s.now().Unix()
	a.GradedBy = id.UserID
	if err := s.store.SaveAttempt(ctx, a); err != nil {
		return SubmitResult{}, err
	}
	s.record(ctx, id.OrgID, "AttemptRegraded", a.ID, map[string]interface{}{
		"quiz_id": a.QuizID, "score": a.Score, "graded_by": id.UserID,
	})
	return SubmitResult{
		Success:         true,
		AttemptID:       a.ID,
		Status:          a.Status,
		Score:           a.Score,
		PercentageScore: a.PercentageScore,
		Passed:          a.Passed,
		Message:         "Quiz attempt regraded",
	}, nil
}

/* ------------------------------- feedback --------------------------------- */

// SaveTeacherFeedback attaches grader feedback to a single answer.
func (s *Service) SaveTeacherFeedback(ctx context.Context, id Identity, req FeedbackRequest) FeedbackResult {
	if err := s.saveFeedback(ctx, id, req); err != nil {
		return FeedbackResult{Success: false, Message: err.Error()}
	}
	return FeedbackResult{Success: true, Message: "Feedback saved"}
}

func (s *Service) saveFeedback(ctx context.Context, id Identity, req FeedbackRequest) error {
	if !s.checker.Has(id.Role, rbac.PermCourseManage) {
		return fmt.Errorf("course management permission required: %w", ErrForbidden)
	}
	a, err := s.store.GetAttempt(ctx, id.OrgID, req.AttemptID)
	if err != nil {
		return err
	}
	ans := a.AnswerFor(req.QuestionID)
	if ans == nil {
		return fmt.Errorf("answer not found: %w", ErrNotFound)
	}
	ans.Feedback = req.Feedback
	ans.GradedAt = s.now().Unix()
	ans.GradedBy = id.UserID
	if err := s.store.SaveAttempt(ctx, a); err != nil {
		return err
	}
	s.record(ctx, id.OrgID, "FeedbackSaved", a.ID, map[string]string{"question_id": req.QuestionID})
	return nil
}

/* --------------------------------- reads ---------------------------------- */

// GetAttempt returns the attempt with quiz title/points populated. Unlike the
// learner-facing mutations, this read is permission-gated rather than
// user-scoped so owners and graders can inspect it.
func (s *Service) GetAttempt(ctx context.Context, id Identity, attemptID string) (Attempt, error) {
	a, err := s.store.GetAttempt(ctx, id.OrgID, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	q, err := s.store.GetQuiz(ctx, id.OrgID, a.QuizID)
	if err != nil {
		return Attempt{}, err
	}
	if err := s.canViewAttempt(id, a, q); err != nil {
		return Attempt{}, err
	}
	a.QuizTitle = q.Title
	a.QuizTotalPoints = q.TotalPoints
	return a, nil
}

type AttemptDetails struct {
	AttemptID       string             `json:"attempt_id"`
	QuizTitle       string             `json:"quiz_title"`
	TotalPoints     float64            `json:"total_points"`
	PassingScore    float64            `json:"passing_score"`
	Score           float64            `json:"score"`
	PercentageScore float64            `json:"percentage_score"`
	Passed          bool               `json:"passed"`
	Status          AttemptStatus      `json:"status"`
	StartedAt       int64              `json:"started_at"`
	CompletedAt     int64              `json:"completed_at,omitempty"`
	Questions       []grading.Question `json:"questions"`
	Answers         []Answer           `json:"answers"`
}

// GetAttemptDetails returns the full review view. Correct answers stay hidden
// while the attempt is still in progress.
func (s *Service) GetAttemptDetails(ctx context.Context, id Identity, attemptID string) (AttemptDetails, error) {
	a, err := s.store.GetAttempt(ctx, id.OrgID, attemptID)
	if err != nil {
		return AttemptDetails{}, err
	}
	q, err := s.store.GetQuiz(ctx, id.OrgID, a.QuizID)
	if err != nil {
		return AttemptDetails{}, err
	}
	if err := s.canViewAttempt(id, a, q); err != nil {
		return AttemptDetails{}, err
	}

	hideAnswers := a.Status == AttemptInProgress
	questions := make([]grading.Question, 0, len(q.Questions))
	for _, qu := range q.Questions {
		questions = append(questions, s.displayQuestion(qu, hideAnswers))
	}
	return AttemptDetails{
		AttemptID:       a.ID,
		QuizTitle:       q.Title,
		TotalPoints:     q.TotalPoints,
		PassingScore:    q.PassThreshold(),
		Score:           a.Score,
		PercentageScore: a.PercentageScore,
		Passed:          a.Passed,
		Status:          a.Status,
		StartedAt:       a.StartedAt,
		CompletedAt:     a.CompletedAt,
		Questions:       questions,
		Answers:         a.Answers,
	}, nil
}

type QuizView struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Questions   []grading.Question `json:"questions"`
}

// GetQuizQuestions serves a published quiz with correct-answer fields
// stripped, for the learner-facing question view.
func (s *Service) GetQuizQuestions(ctx context.Context, id Identity, quizID string) (QuizView, error) {
	q, err := s.store.GetQuiz(ctx, id.OrgID, quizID)
	if err != nil {
		return QuizView{}, err
	}
	if q.Status != StatusPublished {
		return QuizView{}, fmt.Errorf("quiz is not published: %w", ErrConflict)
	}
	questions := make([]grading.Question, 0, len(q.Questions))
	for _, qu := range q.Questions {
		questions = append(questions, s.displayQuestion(qu, true))
	}
	return QuizView{ID: q.ID, Title: q.Title, Description: q.Description, Questions: questions}, nil
}

// GetUserQuizAttempts lists the caller's own attempts at a quiz, newest first.
func (s *Service) GetUserQuizAttempts(ctx context.Context, id Identity, quizID string) ([]Attempt, error) {
	return s.store.ListAttempts(ctx, id.OrgID, AttemptListOpts{QuizID: quizID, UserID: id.UserID})
}
