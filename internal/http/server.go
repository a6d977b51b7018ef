package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendwise/internal/auth"
	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/middleware/authn"
	"spendwise/internal/middleware/cors"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/services"
)

const cacheCleanupInterval = 5 * time.Minute

// Services are the use cases exposed under /api.
type Services struct {
	Expenses      *services.ExpenseService
	Bills         *services.BillService
	Savings       *services.SavingsService
	Transactions  *services.TransactionService
	Insights      *services.InsightService
	Notifications *services.NotificationService
	Dashboard     *services.DashboardService
	Accounts      *services.AccountService
}

// Options configure the middleware stack around the handlers.
type Options struct {
	// Production hides error stacks from responses.
	Production         bool
	ClientOrigin       string
	RateLimitPerMinute int

	// TrustedProxies extend the private ranges whose X-Forwarded-For is used.
	TrustedProxies []string
	Location       *time.Location
	Tokens         *auth.JWTManager

	// Registry backs /metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
	Logger   *log.Logger
}

type Server struct {
	http.Server
	svc        Services
	loc        *time.Location
	production bool
	logger     *log.Logger

	caches       *cache.Manager
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// handlerFunc is a handler whose errors are rendered by Server.handle.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	detector := security.NewDetector(reg)
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: opts.RateLimitPerMinute,
		Registerer:        reg,
	})
	caches := cache.NewManager(logger)
	caches.Register(limiter.Cleaner())

	s := &Server{
		svc:        svc,
		loc:        loc,
		production: opts.Production,
		logger:     logger.WithComponent(log.ComponentHTTP),
		caches:     caches,
		limiter:    limiter,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)
	r.Use(trace.NewMiddleware(detector.ExtractClientIP, logger, trace.NewMetrics(reg)).Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(detector.Middleware)
	r.Use(cors.Middleware(opts.ClientOrigin))

	r.NotFound(s.handle(func(w http.ResponseWriter, r *http.Request) error {
		return core.NotFoundf("Not Found - %s", r.URL.Path)
	}))
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = MethodNotAllowedError().Write(w)
	})

	r.Get("/health", s.handle(s.handleHealth))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Middleware(detector.ExtractClientIP, ratelimit.TooManyRequests))

		r.Post("/auth/register", s.handle(s.handleRegister))
		r.Post("/auth/login", s.handle(s.handleLogin))

		r.Group(func(r chi.Router) {
			r.Use(authn.RequireAuth(opts.Tokens))
			r.Get("/profile", s.handle(s.handleGetProfile))
			r.Patch("/profile", s.handle(s.handleUpdateProfile))
			r.Patch("/profile/password", s.handle(s.handleChangePassword))
		})

		r.Group(func(r chi.Router) {
			r.Use(authn.OptionalAuth(opts.Tokens))

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", s.handle(s.handleListExpenses))
				r.Post("/", s.handle(s.handleCreateExpense))
				r.Patch("/{id}", s.handle(s.handleUpdateExpense))
				r.Delete("/{id}", s.handle(s.handleDeleteExpense))
			})
			r.Route("/bills", func(r chi.Router) {
				r.Get("/", s.handle(s.handleListBills))
				r.Post("/", s.handle(s.handleCreateBill))
				r.Patch("/{id}/settle", s.handle(s.handleSettleBill))
				r.Post("/{id}/remind", s.handle(s.handleRemindBill))
				r.Delete("/{id}", s.handle(s.handleDeleteBill))
			})
			r.Route("/savings", func(r chi.Router) {
				r.Get("/", s.handle(s.handleListGoals))
				r.Post("/", s.handle(s.handleCreateGoal))
				r.Patch("/{id}", s.handle(s.handleUpdateGoal))
				r.Post("/{id}/progress", s.handle(s.handleAddProgress))
				r.Delete("/{id}", s.handle(s.handleDeleteGoal))
			})
			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.handle(s.handleListTransactions))
				r.Patch("/{id}", s.handle(s.handleUpdateTransaction))
			})
			r.Route("/insights", func(r chi.Router) {
				r.Get("/overview", s.handle(s.handleInsightOverview))
				r.Get("/recommendations", s.handle(s.handleRecommendations))
				r.Post("/recalculate", s.handle(s.handleRecalculate))
			})
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handle(s.handleListNotifications))
				r.Patch("/{id}/read", s.handle(s.handleMarkRead))
				r.Post("/test", s.handle(s.handleTestNotification))
			})
			r.Get("/dashboard/summary", s.handle(s.handleDashboardSummary))
			r.Get("/dashboard/quick-actions", s.handle(s.handleQuickActions))
		})
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	caches.StartCleanup(cacheCleanupInterval)
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// handle renders the error of h, or of a panic inside it, as a JSON
// {message} body whose status follows the error kind.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.writeError(w, r, fmt.Errorf("panic: %v", rec), string(debug.Stack()))
			}
		}()
		if err := h(w, r); err != nil {
			s.writeError(w, r, err, "")
		}
	}
}

func statusOf(err error) int {
	switch core.KindOf(err) {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, stack string) {
	ctx := r.Context()
	status := statusOf(err)
	logger := log.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "Request failed",
			log.FieldError, err.Error(),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldOwnerID, ownerID(r))
	} else {
		logger.DebugContext(ctx, "Request rejected",
			log.FieldError, err.Error(),
			log.FieldStatusCode, status)
	}

	body := envelope{"message": core.MessageOf(err)}
	if !s.production {
		if stack == "" {
			stack = err.Error()
		}
		body["stack"] = stack
	}
	if werr := NewJSONResponse().Status(status).Body(body).Write(w); werr != nil {
		logger.ErrorContext(ctx, "Failed to write error response", log.FieldError, werr.Error())
	}
}
