package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/traingate/traingate/internal/api/http"
	"github.com/traingate/traingate/internal/auth"
	"github.com/traingate/traingate/internal/cert"
	"github.com/traingate/traingate/internal/config"
	"github.com/traingate/traingate/internal/db"
	"github.com/traingate/traingate/internal/rbac"
	"github.com/traingate/traingate/internal/storage"
	"github.com/traingate/traingate/internal/training"
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
	store := training.NewSQLStore(dbh, cfg.DBDriver)

	// --- Domain services ---
	engine := training.NewEngine(store)
	evaluator := training.NewEvaluator(store, engine)

	files, err := storage.NewFSStore(cfg.CertBasePath)
	if err != nil {
		log.Fatalf("certificate store: %v", err)
	}
	issuer := cert.NewIssuer(store, engine, files)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", api.LoginHandler(store, authSvc))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Learner surface
		pr.With(rbac.Require("progress:view")).
			Get("/progress", api.ProgressHandler(engine))
		pr.With(rbac.Require("progress:view")).
			Get("/main-modules/{mainModuleID}/progress", api.MainModuleProgressHandler(engine))
		pr.With(rbac.Require("module:view")).
			Get("/modules/{moduleID}/access", api.ModuleAccessHandler(engine))
		pr.With(rbac.Require("quiz:view")).
			Get("/modules/{moduleID}/can-attempt", api.CanAttemptHandler(engine))
		pr.With(rbac.Require("quiz:view")).
			Get("/modules/{moduleID}/quiz", api.GetQuizHandler(store, engine))
		pr.With(rbac.Require("quiz:attempt")).
			Post("/attempts", api.SubmitAttemptHandler(store, evaluator))

		// Certificates
		pr.With(rbac.Require("certificate:view")).
			Get("/certificate", api.CertificateStatusHandler(store, issuer))
		pr.With(rbac.Require("certificate:issue")).
			Post("/certificate", api.IssueCertificateHandler(store, issuer))
		pr.With(rbac.Require("certificate:view")).
			Get("/certificate/download", api.CertificateDownloadHandler(store, issuer))
		pr.With(rbac.Require("certificate:view")).
			Get("/main-modules/{mainModuleID}/certificate", api.MainModuleCertificateStatusHandler(store, issuer))
		pr.With(rbac.Require("certificate:issue")).
			Post("/main-modules/{mainModuleID}/certificate", api.IssueMainModuleCertificateHandler(store, issuer))
		pr.With(rbac.Require("certificate:view")).
			Get("/main-modules/{mainModuleID}/certificate/download", api.MainModuleCertificateDownloadHandler(store, issuer))

		// Admin curation
		pr.With(rbac.Require("modules:manage")).
			Get("/admin/main-modules", api.ListMainModulesHandler(store))
		pr.With(rbac.Require("modules:manage")).
			Post("/admin/main-modules", api.CreateMainModuleHandler(store))
		pr.With(rbac.Require("modules:manage")).
			Put("/admin/main-modules/{mainModuleID}", api.UpdateMainModuleHandler(store))
		pr.With(rbac.Require("modules:manage")).
			Delete("/admin/main-modules/{mainModuleID}", api.DeleteMainModuleHandler(store))
		pr.With(rbac.Require("modules:manage")).
			Get("/admin/main-modules/{mainModuleID}/assign", api.GetAssignmentsHandler(store))
		pr.With(rbac.Require("modules:manage")).
			Patch("/admin/main-modules/{mainModuleID}/assign", api.AssignModulesHandler(store))

		pr.With(rbac.Require("modules:manage")).
			Get("/admin/modules", api.ListModulesHandler(store))
		pr.With(rbac.Require("modules:manage")).
			Post("/admin/modules", api.CreateModuleHandler(store))
		pr.With(rbac.Require("modules:manage")).
			Put("/admin/modules/{moduleID}", api.UpdateModuleHandler(store))
		pr.With(rbac.Require("modules:manage")).
			Delete("/admin/modules/{moduleID}", api.DeleteModuleHandler(store))
		pr.With(rbac.Require("modules:manage")).
			Post("/admin/modules/reorder", api.ReorderModulesHandler(store))

		pr.With(rbac.Require("questions:manage")).
			Get("/admin/modules/{moduleID}/quiz", api.AdminGetQuizHandler(store))
		pr.With(rbac.Require("questions:manage")).
			Put("/admin/quizzes/{quizID}", api.UpdateQuizHandler(store))
		pr.With(rbac.Require("questions:manage")).
			Post("/admin/modules/{moduleID}/questions", api.CreateQuestionHandler(store))
		pr.With(rbac.Require("questions:manage")).
			Put("/admin/questions/{questionID}", api.UpdateQuestionHandler(store))
		pr.With(rbac.Require("questions:manage")).
			Delete("/admin/questions/{questionID}", api.DeleteQuestionHandler(store))
		pr.With(rbac.Require("questions:manage")).
			Post("/admin/questions/import", api.ImportQuestionsHandler(store))

		pr.With(rbac.Require("users:manage")).
			Get("/admin/users", api.ListUsersHandler(store))
		pr.With(rbac.Require("users:manage")).
			Post("/admin/users", api.CreateUserHandler(store))
		pr.With(rbac.Require("users:manage")).
			Patch("/admin/users/{userID}", api.SetUserDisabledHandler(store))
		pr.With(rbac.Require("attempts:reset")).
			Post("/admin/reset-attempts", api.ResetAttemptsHandler(store, issuer))
		pr.With(rbac.Require("reports:view")).
			Get("/admin/reports", api.ReportsHandler(store, engine))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
