package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/performance-evaluation/internal/auth"
	"github.com/frahmantamala/performance-evaluation/internal/course"
	"github.com/frahmantamala/performance-evaluation/internal/evaluation"
	"github.com/frahmantamala/performance-evaluation/internal/report"
	"github.com/frahmantamala/performance-evaluation/internal/role"
	"github.com/frahmantamala/performance-evaluation/internal/transport/middleware"
	"github.com/frahmantamala/performance-evaluation/internal/transport/swagger"
	"github.com/frahmantamala/performance-evaluation/internal/user"
)

type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Role       *role.Handler
	Evaluation *evaluation.Handler
	Course     *course.Handler
	Report     *report.Handler
}

// RegisterAllRoutes mounts the API under /api/v1. Authorization is layered:
// AuthMiddleware rebuilds the actor from the token, permission guards gate
// each route group, and the services apply the per-record scope rules.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, authorizer *auth.Authorizer, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.RefreshToken)
			sr.With(handlers.Auth.OptionalAuthMiddleware).
				Post("/register", handlers.Auth.Register)

			sr.Group(func(pr chi.Router) {
				pr.Use(handlers.Auth.AuthMiddleware)
				pr.Post("/logout", handlers.Auth.Logout)
				pr.Get("/me", handlers.Auth.Me)
			})
		})

		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/team", handlers.User.Team)

				ur.Group(func(gr chi.Router) {
					gr.Use(authorizer.RequirePermission(auth.PermUsersRead))
					gr.Get("/", handlers.User.List)
					gr.Get("/{id}", handlers.User.Get)
				})
				ur.With(authorizer.RequirePermission(auth.PermUsersCreate)).
					Post("/", handlers.User.Create)
				ur.With(authorizer.RequirePermission(auth.PermUsersUpdate)).
					Patch("/{id}", handlers.User.Update)
				ur.With(authorizer.RequirePermission(auth.PermUsersDelete)).
					Delete("/{id}", handlers.User.Deactivate)
				ur.With(authorizer.RequireRole(auth.RoleAdmin)).
					Delete("/{id}/permanent", handlers.User.Delete)
			})

			pr.Route("/roles", func(rr chi.Router) {
				rr.Group(func(gr chi.Router) {
					gr.Use(authorizer.RequirePermission(auth.PermRolesRead))
					gr.Get("/", handlers.Role.List)
					gr.Get("/permissions", handlers.Role.ListPermissions)
					gr.Get("/{id}", handlers.Role.Get)
					gr.Get("/{id}/permissions", handlers.Role.GetPermissions)
				})

				rr.Group(func(gr chi.Router) {
					gr.Use(authorizer.RequirePermission(auth.PermRolesManage))
					gr.Post("/", handlers.Role.Create)
					gr.Put("/{id}", handlers.Role.Update)
					gr.Delete("/{id}", handlers.Role.Delete)
				})
			})

			pr.Route("/evaluations", func(er chi.Router) {
				// every authenticated user can see their own slices
				er.Get("/my-results", handlers.Evaluation.MyResults)
				er.Get("/as-evaluatee", handlers.Evaluation.ListAsEvaluatee)
				er.Get("/as-evaluator", handlers.Evaluation.ListAsEvaluator)

				// progress and submit are evaluatee operations, scoped in the
				// service rather than by permission
				er.Patch("/{id}/progress", handlers.Evaluation.SaveProgress)
				er.Post("/{id}/submit", handlers.Evaluation.Submit)

				er.Post("/{id}/evidences", handlers.Evaluation.UploadEvidence)
				er.Get("/{id}/evidences", handlers.Evaluation.ListEvidences)

				er.Group(func(gr chi.Router) {
					gr.Use(authorizer.RequirePermission(auth.PermEvaluationsRead))
					gr.Get("/", handlers.Evaluation.List)
					gr.Get("/{id}", handlers.Evaluation.Get)
				})
				er.With(authorizer.RequirePermission(auth.PermEvaluationsCreate)).
					Post("/", handlers.Evaluation.Create)
				er.With(authorizer.RequirePermission(auth.PermEvaluationsUpdate)).
					Put("/{id}", handlers.Evaluation.Update)
				er.With(authorizer.RequirePermission(auth.PermEvaluationsDelete)).
					Delete("/{id}", handlers.Evaluation.Delete)
			})

			pr.Get("/evidences/{id}/download", handlers.Evaluation.DownloadEvidence)

			// training progress is always self-scoped, no permission gate
			pr.Route("/courses", func(cr chi.Router) {
				cr.Get("/", handlers.Course.MyCourses)
				cr.Put("/{id}", handlers.Course.UpdateProgress)
			})

			pr.Route("/reports", func(rr chi.Router) {
				rr.Group(func(gr chi.Router) {
					gr.Use(authorizer.RequirePermission(auth.PermReportsRead))
					gr.Get("/", handlers.Report.List)
					gr.Get("/types", handlers.Report.Types)
					gr.Get("/dashboard", handlers.Report.Dashboard)
				})
				rr.With(authorizer.RequirePermission(auth.PermReportsCreate)).
					Post("/", handlers.Report.Create)
				rr.Group(func(gr chi.Router) {
					gr.Use(authorizer.RequirePermission(auth.PermReportsExport))
					gr.Get("/{id}/export/pdf", handlers.Report.ExportPDF)
					gr.Get("/{id}/export/excel", handlers.Report.ExportExcel)
				})
				rr.With(authorizer.RequirePermission(auth.PermReportsDelete)).
					Delete("/{id}", handlers.Report.Delete)
			})
		})
	})
}
