package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"rrhh/internal/domain/attendance"
	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/auth"
	"rrhh/internal/domain/dashboard"
	"rrhh/internal/domain/employees"
	"rrhh/internal/domain/notifications"
	"rrhh/internal/domain/org"
	"rrhh/internal/domain/payroll"
	"rrhh/internal/domain/requests"
	"rrhh/internal/domain/sales"
	"rrhh/internal/platform/config"
	"rrhh/internal/platform/crypto"
	"rrhh/internal/platform/db"
	"rrhh/internal/platform/email"
	"rrhh/internal/platform/jobs"
	"rrhh/internal/platform/metrics"
	"rrhh/internal/transport/http/api"
	attendancehandler "rrhh/internal/transport/http/handlers/attendance"
	audithandler "rrhh/internal/transport/http/handlers/audit"
	authhandler "rrhh/internal/transport/http/handlers/auth"
	dashboardhandler "rrhh/internal/transport/http/handlers/dashboard"
	employeeshandler "rrhh/internal/transport/http/handlers/employees"
	jobshandler "rrhh/internal/transport/http/handlers/jobs"
	notificationshandler "rrhh/internal/transport/http/handlers/notifications"
	orghandler "rrhh/internal/transport/http/handlers/org"
	payrollhandler "rrhh/internal/transport/http/handlers/payroll"
	requestshandler "rrhh/internal/transport/http/handlers/requests"
	saleshandler "rrhh/internal/transport/http/handlers/sales"
	"rrhh/internal/transport/http/middleware"
)

const version = "1.0.0"

type App struct {
	Config  config.Config
	Pool    *pgxpool.Pool
	Metrics *metrics.Collector
	Jobs    *jobs.Service
	Router  http.Handler
}

// New connects, migrates and seeds, then builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	collector := metrics.New()
	if err := collector.Register(db.PoolCollectors(pool)...); err != nil {
		pool.Close()
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	runner := jobs.New(jobs.NewStore(pool))
	router, err := NewRouter(cfg, pool, collector, runner)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &App{Config: cfg, Pool: pool, Metrics: collector, Jobs: runner, Router: router}, nil
}

func (a *App) Close() {
	a.Pool.Close()
}

// Run starts the background jobs and serves until ctx is cancelled, then
// drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	a.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", a.Config.Addr, "env", a.Config.Environment, "timezone", a.Config.Timezone)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewRouter builds the full HTTP surface on top of pool and registers the
// scheduled jobs on runner.
func NewRouter(cfg config.Config, pool *pgxpool.Pool, collector *metrics.Collector, runner *jobs.Service) (http.Handler, error) {
	loc := cfg.Location()
	policy, err := attendance.NewPolicy(cfg.WorkStartTime, cfg.LateToleranceMin, cfg.RegularHours)
	if err != nil {
		return nil, fmt.Errorf("attendance policy: %w", err)
	}
	payPolicy := payroll.Policy{
		MonthlyHours:       cfg.PayrollMonthHours,
		OvertimeMultiplier: cfg.OvertimeMultiplier,
		IESSRate:           cfg.IESSRate,
	}

	cipher, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("data encryption: %w", err)
	}

	auditService := audit.New(pool)
	notificationService := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)
	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.JWTExpiresIn)
	employeeStore := employees.NewStore(pool)
	employeeStore.Cipher = cipher
	attendanceStore := attendance.NewStore(pool)
	requestStore := requests.NewStore(pool)
	payrollStore := payroll.NewStore(pool)
	payrollStore.Cipher = cipher

	employeeService := employees.NewService(employeeStore, auditService)
	orgService := org.NewService(org.NewStore(pool), auditService)
	attendanceService := attendance.NewService(attendanceStore, policy, loc, auditService)
	requestService := requests.NewService(requestStore, auditService, loc)
	requestService.Notifier = notificationService
	salesService := sales.NewService(sales.NewStore(pool), auditService, loc)
	payrollService := payroll.NewService(payrollStore, payPolicy, auditService, cfg.CompanyName)
	payrollService.Notifier = notificationService
	dashboardService := dashboard.NewService(dashboard.NewStore(pool), employeeStore, attendanceStore, requestStore, payrollStore, loc)

	idempotency := middleware.NewIdempotencyStore(pool)

	vacationSync := requests.NewVacationSync(requestStore, notificationService, loc)
	runner.Register(jobs.JobVacationSync, cfg.VacationSyncInterval, func(ctx context.Context) (any, error) {
		return vacationSync.Run(ctx)
	})
	runner.Register(jobs.JobIdempotencyCleanup, 6*time.Hour, func(ctx context.Context) (any, error) {
		deleted, err := idempotency.Purge(ctx)
		return map[string]int64{"deleted": deleted}, err
	})

	router := chi.NewRouter()
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimw.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count", "Content-Disposition", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, map[string]any{
			"message": "API de Recursos Humanos",
			"version": version,
			"endpoints": map[string]string{
				"auth":          "/api/auth",
				"employees":     "/api/employees",
				"attendance":    "/api/attendance",
				"requests":      "/api/requests",
				"payroll":       "/api/payroll",
				"departments":   "/api/departments",
				"positions":     "/api/positions",
				"sales":         "/api/sales",
				"dashboard":     "/api/dashboard",
				"audit":         "/api/audit",
				"notifications": "/api/notifications",
				"jobs":          "/api/jobs",
			},
		}, middleware.GetRequestID(r.Context()))
	})
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.Handle("/metrics", collector.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, authService))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(authService, auditService).RegisterRoutes(r)
		employeeshandler.NewHandler(employeeService).RegisterRoutes(r)
		orghandler.NewHandler(orgService).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceService).RegisterRoutes(r)
		requestshandler.NewHandler(requestService).RegisterRoutes(r)
		saleshandler.NewHandler(salesService).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollService, idempotency).RegisterRoutes(r)
		dashboardhandler.NewHandler(dashboardService).RegisterRoutes(r)
		audithandler.NewHandler(auditService).RegisterRoutes(r)
		notificationshandler.NewHandler(notificationService).RegisterRoutes(r)
		jobshandler.NewHandler(runner).RegisterRoutes(r)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", middleware.GetRequestID(r.Context()))
	})
	return router, nil
}
