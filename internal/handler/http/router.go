package http

import (
	"io"
	"log/slog"

	"github.com/cmlabs-hris/intern-attendance/internal/config"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// NewLogger builds the JSON logger shared by the request log and services.
func NewLogger(w io.Writer, cfg config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "intern-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)
}

func NewRouter(
	logger *slog.Logger,
	cfg config.AppConfig,
	JWTService jwt.Service,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	userHandler UserHandler,
	reportHandler ReportHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Authenticates with an SSE token in the query string
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/me", authHandler.Me)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/office", attendanceHandler.Office)
				r.Post("/geofence", attendanceHandler.CheckGeofence)
				r.Get("/today", attendanceHandler.Today)
				r.Get("/days/{date}", attendanceHandler.Day)
				r.Get("/statistics", attendanceHandler.Statistics)
				r.Get("/history", attendanceHandler.History)

				// Interns only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RoleIntern))
					r.Post("/check-in", attendanceHandler.CheckIn)
					r.Post("/check-out", attendanceHandler.CheckOut)
				})
			})

			r.Get("/notifications", notificationHandler.ListMine)
			r.Get("/notifications/stream-token", notificationHandler.GetSSEToken)
			r.Post("/notifications/{id}/replies", notificationHandler.Reply)

			r.Route("/leaves", func(r chi.Router) {
				r.Get("/", leaveHandler.ListMine)
				r.Get("/{date}", leaveHandler.GetByDate)
				r.Delete("/{id}", leaveHandler.Delete)
				r.With(middleware.RequireRole(user.RoleIntern)).Post("/", leaveHandler.Apply)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", userHandler.List)
					r.Post("/", userHandler.Create)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", userHandler.Get)
						r.Delete("/", userHandler.Delete)
						r.Put("/work-hours", userHandler.UpdateWorkHours)
						r.Get("/statistics", attendanceHandler.UserStatistics)
					})
				})

				r.Route("/attendance", func(r chi.Router) {
					r.Get("/", attendanceHandler.List)
					r.Get("/export", reportHandler.ExportAttendance)
				})

				r.Get("/calendar", reportHandler.Calendar)

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", notificationHandler.ListAll)
					r.Post("/", notificationHandler.Send)
				})

				r.Route("/leaves", func(r chi.Router) {
					r.Get("/", leaveHandler.List)
					r.Post("/{id}/approve", leaveHandler.Approve)
					r.Post("/{id}/deny", leaveHandler.Deny)
				})
			})
		})
	})
	return r
}
