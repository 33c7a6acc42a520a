package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opencourse/quizd/internal/quiz"
	"github.com/opencourse/quizd/internal/rbac"
	"github.com/opencourse/quizd/internal/tenants"
)

// PUT /quizzes/{quizID}: teacher-side upsert so content exists to attempt.
func PutQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = chi.URLParam(r, "quizID")
		if q.ID == "" || q.Title == "" {
			http.Error(w, "id and title required", http.StatusBadRequest)
			return
		}
		q.OrgID = tenants.OrgFromContext(r.Context())
		if q.OwnerID == "" {
			q.OwnerID = rbac.SubjectFromContext(r.Context())
		}
		if q.Status == "" {
			q.Status = quiz.StatusDraft
		}
		if q.TotalPoints == 0 {
			for _, qu := range q.Questions {
				q.TotalPoints += qu.Points
			}
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"id": q.ID})
	}
}

// GET /quizzes/{quizID}/questions: published quizzes only, answer keys stripped.
func GetQuizQuestionsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.GetQuizQuestions(r.Context(), identityFrom(r), chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, v)
	}
}
