package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Overtime   OvertimeHandler
	CompOff    CompOffHandler
	Audit      AuditHandler
	Employee   EmployeeHandler
}

func NewRouter(app config.AppConfig, JWTService jwt.Service, metricsHandler http.Handler, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-timekeeping"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if app.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(app.RateLimitPerMinute, time.Minute))
		}
		r.Use(middleware.AuditContext)
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/check-out", h.Attendance.CheckOut)
			r.Get("/{id}", h.Attendance.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/corrections", h.Attendance.Correct)
				r.Post("/recalculate", h.Attendance.Recalculate)
			})
		})

		r.Route("/leave-requests", func(r chi.Router) {
			r.Post("/", h.Leave.CreateRequest)
			r.Get("/{id}", h.Leave.GetRequest)
			r.With(middleware.RequireManager).Post("/{id}/review", h.Leave.ReviewRequest)
		})

		r.Route("/overtime-requests", func(r chi.Router) {
			r.Post("/", h.Overtime.CreateRequest)
			r.Get("/approved-hours", h.Overtime.Approved)
			r.Get("/{id}", h.Overtime.GetRequest)
			r.With(middleware.RequireManager).Post("/{id}/review", h.Overtime.ReviewRequest)
		})

		r.Route("/comp-off", func(r chi.Router) {
			r.Get("/employees/{employeeID}/balance", h.CompOff.GetBalance)
			r.Get("/employees/{employeeID}/history", h.CompOff.GetHistory)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/earn", h.CompOff.Earn)
				r.Post("/expire", h.CompOff.ExpireBucket)
				r.Post("/sweep", h.CompOff.Sweep)
				r.Post("/employees/{employeeID}/resolve-halt", h.CompOff.ResolveHalt)
			})

			r.Route("/requests", func(r chi.Router) {
				r.Post("/", h.CompOff.CreateRequest)
				r.Get("/{id}", h.CompOff.GetRequest)
				r.With(middleware.RequireManager).Post("/{id}/review", h.CompOff.ReviewRequest)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/{id}", h.Employee.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", h.Employee.Create)
				r.Delete("/{id}", h.Employee.Delete)
			})
		})

		r.With(middleware.RequireManager).Get("/audit-logs", h.Audit.List)
	})

	return r
}
