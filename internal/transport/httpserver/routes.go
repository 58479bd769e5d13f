package httpserver

import (
	"net/http"
	"time"

	"club-pass-go/internal/config"
	"club-pass-go/internal/transport/httpserver/handler"
	authmw "club-pass-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *authmw.SessionAuth) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)
		r.Post("/login", handlers.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Post("/logout", handlers.Logout)
			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/member/profile", handlers.Profile)
			r.Get("/member/pass", handlers.Pass)
			r.Post("/member/change-password", handlers.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireAdmin)

				r.Post("/scan", handlers.Scan)
				r.Get("/member-info/{card_number}", handlers.MemberInfo)

				r.Get("/admin/members", handlers.ListMembers)
				r.Get("/admin/attendance", handlers.Attendance)
				r.Get("/admin/stats", handlers.Stats)
				r.Get("/admin/expiring-members", handlers.ExpiringMembers)
				r.Post("/admin/create-admin", handlers.CreateAdmin)
				r.Post("/admin/import", handlers.Import)
				r.Post("/admin/points-adjust", handlers.PointsAdjust)
			})
		})
	})

	return r
}
