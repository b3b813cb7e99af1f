package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/gatehouse/visitor-management/internal/audit"
	"github.com/gatehouse/visitor-management/internal/auth"
	"github.com/gatehouse/visitor-management/internal/dashboard"
	"github.com/gatehouse/visitor-management/internal/notification"
	"github.com/gatehouse/visitor-management/internal/transport/middleware"
	"github.com/gatehouse/visitor-management/internal/transport/swagger"
	"github.com/gatehouse/visitor-management/internal/user"
	"github.com/gatehouse/visitor-management/internal/visitor"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Visitor      *visitor.Handler
	Audit        *audit.Handler
	Notification *notification.Handler
	Dashboard    *dashboard.Handler
}

// Options carries the transport-level settings the router needs.
type Options struct {
	AllowedOrigins   string
	DB               *sqlx.DB
	RedisClient      *redis.Client
	Logger           *slog.Logger
	EnableSwagger    bool
	AuthRateRequests int
	AuthRateWindow   time.Duration
}

// NewRouter assembles the full route table with its middleware stack.
func NewRouter(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(opts.Logger))
	r.Use(middleware.LoggingMiddleware(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	health := NewHealthHandler(opts.DB)
	r.Get("/health", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if opts.EnableSwagger {
		r.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, "./api/openapi.yml")
		})
		swagger.Mount(r)
	}

	// Login and refresh get a tighter rate limit than the rest of the API.
	requests, window := opts.AuthRateRequests, opts.AuthRateWindow
	if requests <= 0 {
		requests = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	authLimiter := middleware.NewRateLimiter(opts.RedisClient, middleware.RateLimitConfig{
		Requests: requests,
		Window:   window,
		KeyFunc:  middleware.ClientIPKeyFunc,
	}, opts.Logger)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Group(func(limited chi.Router) {
				limited.Use(authLimiter.Middleware())
				limited.Post("/register", h.Auth.Register)
				limited.Post("/login", h.Auth.Login)
				limited.Post("/refresh", h.Auth.RefreshToken)
			})
			ar.Group(func(protected chi.Router) {
				protected.Use(h.Auth.AuthMiddleware)
				protected.Get("/me", h.Auth.Me)
				protected.Get("/logout", h.Auth.Logout)
			})
		})

		api.Route("/users", func(ur chi.Router) {
			ur.Use(h.Auth.AuthMiddleware)
			ur.Get("/search/employees", h.User.SearchEmployees)
			ur.Get("/{id}", h.User.GetUserByID)

			ur.Group(func(admin chi.Router) {
				admin.Use(h.Auth.RequireRoles(auth.RoleAdmin))
				admin.Get("/", h.User.GetUsers)
				admin.Patch("/{id}", h.User.UpdateUser)
				admin.Delete("/{id}", h.User.DeleteUser)
			})
		})

		api.Route("/visitors", func(vr chi.Router) {
			vr.Use(h.Auth.AuthMiddleware)

			vr.Get("/", h.Visitor.GetVisitors)
			vr.Get("/{id}", h.Visitor.GetVisitorByID)
			vr.Post("/{id}/cancel", h.Visitor.CancelVisitor)

			vr.Group(func(g chi.Router) {
				g.Use(h.Auth.RequireRoles(auth.RoleAdmin, auth.RoleEmployee, auth.RoleReceptionist))
				g.Post("/", h.Visitor.CreateVisitor)
			})
			vr.Group(func(g chi.Router) {
				g.Use(h.Auth.RequireRoles(auth.RoleAdmin, auth.RoleReceptionist))
				g.Patch("/{id}", h.Visitor.UpdateVisitor)
			})
			vr.Group(func(g chi.Router) {
				g.Use(h.Auth.RequireRoles(auth.RoleAdmin, auth.RoleEmployee))
				g.Post("/{id}/approve", h.Visitor.ApproveVisitor)
			})
			vr.Group(func(g chi.Router) {
				g.Use(h.Auth.RequireRoles(auth.RoleReceptionist))
				g.Post("/{id}/check-in", h.Visitor.CheckInVisitor)
				g.Post("/{id}/check-out", h.Visitor.CheckOutVisitor)
			})
		})

		api.Route("/audit-logs", func(alr chi.Router) {
			alr.Use(h.Auth.AuthMiddleware)
			alr.Use(h.Auth.RequireRoles(auth.RoleAdmin))
			alr.Get("/", h.Audit.GetAuditLogs)
		})

		api.Route("/notifications", func(nr chi.Router) {
			nr.Use(h.Auth.AuthMiddleware)
			nr.Get("/", h.Notification.GetNotifications)
			nr.Patch("/{id}/read", h.Notification.MarkNotificationRead)
			nr.Post("/mark-all-read", h.Notification.MarkAllNotificationsRead)
		})

		api.Route("/dashboard", func(dr chi.Router) {
			dr.Use(h.Auth.AuthMiddleware)
			dr.Get("/stats", h.Dashboard.GetStats)
			dr.Get("/current-visitors", h.Dashboard.GetCurrentVisitors)
		})
	})

	return r
}
