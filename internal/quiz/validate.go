package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/opencourse/quizd/internal/grading"
)

// AnswerSubmission is one raw answer as sent by a client.
type AnswerSubmission struct {
	QuestionID string      `json:"question_id"`
	Answer     interface{} `json:"answer"`
	TimeSpent  int         `json:"time_spent_sec,omitempty"`
}

func findQuestion(questions []grading.Question, id string) *grading.Question {
	for i := range questions {
		if questions[i].ID == id {
			return &questions[i]
		}
	}
	return nil
}

// validateAnswer normalizes one raw answer against its question. The returned
// error wraps ErrValidation or ErrNotFound.
func (s *Service) validateAnswer(raw interface{}, questionID string, questions []grading.Question) (interface{}, error) {
	q := findQuestion(questions, questionID)
	if q == nil {
		return nil, fmt.Errorf("question not found: %w", ErrNotFound)
	}
	p, ok := s.reg.GetProvider(q.Type)
	if !ok {
		return nil, fmt.Errorf("question type %q not supported: %w", q.Type, ErrValidation)
	}
	v := p.ValidateAnswer(raw, *q)
	if !v.IsValid {
		return nil, fmt.Errorf("%s: %w", strings.Join(v.Errors, "; "), ErrValidation)
	}
	return v.Normalized, nil
}

type SaveAnswersRequest struct {
	AttemptID string             `json:"attempt_id"`
	Answers   []AnswerSubmission `json:"answers"`
}

type SaveAnswersResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Saved   int      `json:"saved"`
}

// SaveAnswers persists a whole answer batch in one attempt write. Unlike the
// per-question save on Navigate, the batch is all-or-nothing: every offending
// entry is reported and nothing is saved unless all entries validate.
func (s *Service) SaveAnswers(ctx context.Context, id Identity, req SaveAnswersRequest) SaveAnswersResult {
	a, err := s.store.GetAttemptForUser(ctx, id.OrgID, req.AttemptID, id.UserID)
	if err != nil {
		return SaveAnswersResult{Success: false, Message: err.Error()}
	}
	if err := s.guardInProgress(a); err != nil {
		return SaveAnswersResult{Success: false, Message: err.Error()}
	}
	q, err := s.store.GetQuiz(ctx, id.OrgID, a.QuizID)
	if err != nil {
		return SaveAnswersResult{Success: false, Message: err.Error()}
	}

	answers, errs := s.ValidateAnswers(req.Answers, q.Questions)
	if len(errs) > 0 {
		return SaveAnswersResult{Success: false, Message: "validation failed", Errors: errs}
	}
	for _, ans := range answers {
		a.UpsertAnswer(ans)
	}
	if err := s.store.SaveAttempt(ctx, a); err != nil {
		return SaveAnswersResult{Success: false, Message: err.Error()}
	}
	return SaveAnswersResult{Success: true, Message: "Answers saved", Saved: len(answers)}
}

// ValidateAnswers checks a whole submission batch. It does not short-circuit:
// every offending entry contributes to the error list and is skipped, and the
// batch is valid only when the returned error list is empty.
func (s *Service) ValidateAnswers(subs []AnswerSubmission, questions []grading.Question) ([]Answer, []string) {
	if len(subs) == 0 {
		return nil, []string{"answers must be a non-empty array"}
	}
	var errs []string
	var out []Answer
	for i, sub := range subs {
		if strings.TrimSpace(sub.QuestionID) == "" {
			errs = append(errs, fmt.Sprintf("answers[%d]: question_id is required", i))
			continue
		}
		if sub.Answer == nil {
			errs = append(errs, fmt.Sprintf("answers[%d]: answer is required", i))
			continue
		}
		norm, err := s.validateAnswer(sub.Answer, sub.QuestionID, questions)
		if err != nil {
			errs = append(errs, fmt.Sprintf("answers[%d]: %v", i, err))
			continue
		}
		out = append(out, Answer{QuestionID: sub.QuestionID, Answer: norm, TimeSpent: sub.TimeSpent})
	}
	return out, errs
}
