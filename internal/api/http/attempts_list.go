package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/opencourse/quizd/internal/quiz"
	"github.com/opencourse/quizd/internal/rbac"
)

// GET /quizzes/{quizID}/attempts: the caller's own attempts, newest first.
func UserAttemptsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.GetUserQuizAttempts(r.Context(), identityFrom(r), chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []quiz.Attempt{}
		}
		writeJSON(w, list)
	}
}

// GET /quizzes/{quizID}/stats: cross-attempt statistics for the caller.
func AttemptStatsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.GetAttemptStatistics(r.Context(), identityFrom(r), chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, stats)
	}
}

// GET /attempts?quiz_id=...&user_id=...&status=...&limit=50&offset=0&sort=started_at
// RBAC:
// - roles with attempt:view-all can list any filters
// - everyone else only sees their own attempts (user_id is forced to subject)
func ListAttemptsHandler(store quiz.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identityFrom(r)
		if id.Role == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if !checker.Has(id.Role, rbac.PermAttemptViewAll) {
			userID = id.UserID
		}
		list, err := store.ListAttempts(r.Context(), id.OrgID, quiz.AttemptListOpts{
			QuizID: strings.TrimSpace(r.URL.Query().Get("quiz_id")),
			UserID: userID,
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
			Sort:   strings.TrimSpace(r.URL.Query().Get("sort")),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []quiz.Attempt{}
		}
		writeJSON(w, list)
	}
}
