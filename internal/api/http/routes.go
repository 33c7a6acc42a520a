package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/opencourse/quizd/internal/quiz"
	"github.com/opencourse/quizd/internal/rbac"
)

// MountAPI wires every quiz-attempt operation under the given (already
// authenticated) router.
func MountAPI(r chi.Router, svc *quiz.Service, store quiz.Store, checker *rbac.Checker) {
	r.Route("/quizzes/{quizID}", func(qr chi.Router) {
		qr.With(rbac.Require(rbac.PermQuizCreate)).Put("/", PutQuizHandler(store))
		qr.With(rbac.Require("quiz:view")).Get("/questions", GetQuizQuestionsHandler(svc))
		qr.With(rbac.Require("attempt:create")).Post("/attempts", StartAttemptHandler(svc))
		qr.With(rbac.RequireAny("attempt:view-own", rbac.PermAttemptViewAll)).Get("/attempts", UserAttemptsHandler(svc))
		qr.With(rbac.Require("attempt:stats")).Get("/stats", AttemptStatsHandler(svc))
	})

	r.Route("/attempts", func(ar chi.Router) {
		ar.With(rbac.Require(rbac.PermAttemptViewAll)).Get("/", ListAttemptsHandler(store, checker))
		ar.Route("/{attemptID}", func(ir chi.Router) {
			ir.With(rbac.RequireAny("attempt:view-own", rbac.PermAttemptViewAll)).Get("/", GetAttemptHandler(svc))
			ir.With(rbac.RequireAny("attempt:view-own", rbac.PermAttemptViewAll)).Get("/details", GetAttemptDetailsHandler(svc))
			ir.With(rbac.Require("attempt:save")).Post("/navigate", NavigateHandler(svc))
			ir.With(rbac.Require("attempt:save")).Post("/answers", SaveAnswersHandler(svc))
			ir.With(rbac.Require("attempt:submit")).Post("/submit", SubmitAttemptHandler(svc))
			ir.With(rbac.Require("attempt:grade")).Post("/regrade", RegradeAttemptHandler(svc))
			ir.With(rbac.Require("attempt:grade")).Post("/feedback", SaveFeedbackHandler(svc))
		})
	})
}
