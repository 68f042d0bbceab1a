package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/peoplekit/hrcore/internal/attendance"
	"github.com/peoplekit/hrcore/internal/audit"
	"github.com/peoplekit/hrcore/internal/auth"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/expense"
	"github.com/peoplekit/hrcore/internal/form16"
	"github.com/peoplekit/hrcore/internal/leave"
	"github.com/peoplekit/hrcore/internal/maintenance"
	"github.com/peoplekit/hrcore/internal/memo"
	"github.com/peoplekit/hrcore/internal/profilechange"
	"github.com/peoplekit/hrcore/internal/transport/middleware"
	"github.com/peoplekit/hrcore/internal/transport/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles every mounted handler so the route table reads in one
// place.
type Handlers struct {
	Auth          *auth.Handler
	Memo          *memo.Handler
	Leave         *leave.Handler
	Attendance    *attendance.Handler
	Expense       *expense.Handler
	ProfileChange *profilechange.Handler
	Form16        *form16.Handler
	Audit         *audit.Handler
	Maintenance   *maintenance.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, tokens middleware.TokenValidator, resolver middleware.ActorResolver, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Metrics)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(tokens, resolver, logger))

			pr.Route("/memos", func(mr chi.Router) {
				mr.Post("/", h.Memo.CreateMemo)
				mr.Get("/", h.Memo.ListMemos)
				mr.Get("/{id}", h.Memo.GetMemo)
				mr.Put("/{id}", h.Memo.UpdateMemo)
				mr.Patch("/{id}/submit", h.Memo.SubmitMemo)
				mr.Patch("/{id}/publish", h.Memo.PublishMemo)
				mr.Patch("/{id}/reject", h.Memo.RejectMemo)
				mr.Delete("/{id}", h.Memo.DeleteMemo)
			})

			pr.Route("/leave-requests", func(lr chi.Router) {
				lr.Post("/", h.Leave.SubmitRequest)
				lr.Get("/", h.Leave.ListRequests)
				lr.Get("/{id}", h.Leave.GetRequest)
				lr.Patch("/{id}/approve", h.Leave.ApproveRequest)
				lr.Patch("/{id}/reject", h.Leave.RejectRequest)
			})

			pr.Route("/attendance-corrections", func(ar chi.Router) {
				ar.Post("/", h.Attendance.SubmitCorrection)
				ar.Get("/", h.Attendance.ListCorrections)
				ar.Get("/{id}", h.Attendance.GetCorrection)
				ar.Patch("/{id}/approve", h.Attendance.ApproveCorrection)
				ar.Patch("/{id}/reject", h.Attendance.RejectCorrection)
			})

			pr.Route("/expenses", func(er chi.Router) {
				er.Post("/", h.Expense.SubmitExpense)
				er.Get("/", h.Expense.ListExpenses)
				er.Get("/{id}", h.Expense.GetExpense)
				er.Get("/{id}/receipt", h.Expense.GetExpenseReceipt)
				er.Patch("/{id}/approve", h.Expense.ApproveExpense)
				er.Patch("/{id}/reject", h.Expense.RejectExpense)
				er.Delete("/{id}", h.Expense.DeleteExpense)

				// Paying is a finance action; the gate alone would also
				// reject, but the route group keeps the surface explicit.
				er.Group(func(fr chi.Router) {
					fr.Use(middleware.RequireCapability(authz.CapAdminOrFinance, logger))
					fr.Patch("/{id}/pay", h.Expense.PayExpense)
				})
			})

			pr.Route("/profile-change-requests", func(cr chi.Router) {
				cr.Post("/", h.ProfileChange.SubmitRequest)
				cr.Get("/", h.ProfileChange.ListRequests)
				cr.Get("/{id}", h.ProfileChange.GetRequest)
				cr.Patch("/{id}/approve", h.ProfileChange.ApproveRequest)
				cr.Patch("/{id}/reject", h.ProfileChange.RejectRequest)
			})

			pr.Route("/form16", func(fr chi.Router) {
				fr.Get("/", h.Form16.ListRecords)
				fr.Get("/{id}", h.Form16.GetRecord)

				fr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequireCapability(authz.CapAdminOrFinance, logger))
					wr.Post("/", h.Form16.CreateRecord)
					wr.Put("/{id}", h.Form16.UpdateRecord)
					wr.Delete("/{id}", h.Form16.DeleteRecord)
				})
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(middleware.RequireCapability(authz.CapAdminOrHR, logger))
				ar.Get("/audit", h.Audit.ListEntries)
			})

			pr.Group(func(mr chi.Router) {
				mr.Use(middleware.RequireCapability(authz.CapAdmin, logger))
				mr.Post("/maintenance/delete-override", h.Maintenance.DeleteOverride)
			})
		})
	})
}
