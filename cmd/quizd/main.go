package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/opencourse/quizd/internal/api/http"
	"github.com/opencourse/quizd/internal/audit"
	"github.com/opencourse/quizd/internal/auth"
	"github.com/opencourse/quizd/internal/config"
	"github.com/opencourse/quizd/internal/db"
	"github.com/opencourse/quizd/internal/grading"
	"github.com/opencourse/quizd/internal/quiz"
	"github.com/opencourse/quizd/internal/rbac"
	"github.com/opencourse/quizd/internal/tenants"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh)

	// --- Core service ---
	registry := grading.NewRegistry(
		grading.WithMaxEditDistance(cfg.FuzzyEditDistance),
		grading.WithPartialCredit(cfg.PartialCredit),
	)
	checker := rbac.NewChecker(nil)
	svc := quiz.NewService(store, registry, checker,
		quiz.WithRecorder(audit.NewLog(dbh)),
	)

	// --- Auth (local JWT) ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Tenancy ---
	resolver := tenants.NewResolver(tenants.Options{
		BaseDomain:   cfg.BaseDomain,
		HostIsTenant: cfg.HostIsTenant,
		HeaderKey:    cfg.OrgHeader,
		DefaultOrg:   cfg.DefaultOrg,
	})

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", cfg.OrgHeader},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(tenants.Middleware(resolver))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, func(req *http.Request) string {
		org, err := resolver.Resolve(req)
		if err != nil {
			return cfg.DefaultOrg
		}
		return org
	}))

	r.Route("/api", func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))
		api.MountAPI(pr, svc, store, checker)
	})

	log.Printf("quizd listening on %s (driver=%s mode=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.Mode)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
