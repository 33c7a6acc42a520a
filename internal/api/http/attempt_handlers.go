package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opencourse/quizd/internal/quiz"
)

// POST /quizzes/{quizID}/attempts
func StartAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		if quizID == "" {
			http.Error(w, "quizID required", http.StatusBadRequest)
			return
		}
		writeJSON(w, svc.Start(r.Context(), identityFrom(r), quizID))
	}
}

// POST /attempts/{attemptID}/navigate
func NavigateHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.NavigateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.AttemptID = chi.URLParam(r, "attemptID")
		writeJSON(w, svc.Navigate(r.Context(), identityFrom(r), req))
	}
}

// POST /attempts/{attemptID}/answers
func SaveAnswersHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.SaveAnswersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.AttemptID = chi.URLParam(r, "attemptID")
		writeJSON(w, svc.SaveAnswers(r.Context(), identityFrom(r), req))
	}
}

// POST /attempts/{attemptID}/submit
func SubmitAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		writeJSON(w, svc.Submit(r.Context(), identityFrom(r), id))
	}
}

// POST /attempts/{attemptID}/regrade
func RegradeAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		writeJSON(w, svc.Regrade(r.Context(), identityFrom(r), id))
	}
}

// POST /attempts/{attemptID}/feedback
func SaveFeedbackHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.FeedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.AttemptID = chi.URLParam(r, "attemptID")
		if req.QuestionID == "" {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}
		writeJSON(w, svc.SaveTeacherFeedback(r.Context(), identityFrom(r), req))
	}
}

// GET /attempts/{attemptID}
func GetAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetAttempt(r.Context(), identityFrom(r), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, a)
	}
}

// GET /attempts/{attemptID}/details
func GetAttemptDetailsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.GetAttemptDetails(r.Context(), identityFrom(r), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, d)
	}
}
