package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/opencourse/quizd/internal/quiz"
	"github.com/opencourse/quizd/internal/rbac"
	"github.com/opencourse/quizd/internal/tenants"
)

// identityFrom assembles the caller identity from what the auth and tenant
// middlewares stashed in the context.
func identityFrom(r *http.Request) quiz.Identity {
	ctx := r.Context()
	return quiz.Identity{
		UserID: rbac.SubjectFromContext(ctx),
		OrgID:  tenants.OrgFromContext(ctx),
		Role:   rbac.RoleFromContext(ctx),
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps service error kinds onto HTTP statuses for the read-oriented
// endpoints (the mutating attempt endpoints answer 200 with success=false
// instead).
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, quiz.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, quiz.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, quiz.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
