package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/performance-evaluation/internal"
	"github.com/frahmantamala/performance-evaluation/internal/auth"
	auth_repo "github.com/frahmantamala/performance-evaluation/internal/auth/postgres"
	"github.com/frahmantamala/performance-evaluation/internal/course"
	course_repo "github.com/frahmantamala/performance-evaluation/internal/course/postgres"
	"github.com/frahmantamala/performance-evaluation/internal/evaluation"
	evaluation_repo "github.com/frahmantamala/performance-evaluation/internal/evaluation/postgres"
	"github.com/frahmantamala/performance-evaluation/internal/report"
	report_repo "github.com/frahmantamala/performance-evaluation/internal/report/postgres"
	"github.com/frahmantamala/performance-evaluation/internal/role"
	role_repo "github.com/frahmantamala/performance-evaluation/internal/role/postgres"
	"github.com/frahmantamala/performance-evaluation/internal/transport/rest"
	"github.com/frahmantamala/performance-evaluation/internal/user"
	user_repo "github.com/frahmantamala/performance-evaluation/internal/user/postgres"
	"github.com/frahmantamala/performance-evaluation/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config    *internal.Config
	DB        *sqlx.DB
	GormDB    *gorm.DB
	Router    *chi.Mux
	Handlers  rest.Handlers
	Authz     *auth.Authorizer
	Scheduler *report.Scheduler
	Logger    *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Authz, deps.Logger)

	if deps.Scheduler != nil {
		if err := deps.Scheduler.Start(); err != nil {
			deps.Logger.Error("failed to start report scheduler", "error", err)
			os.Exit(1)
		}
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if deps.Scheduler != nil {
			deps.Scheduler.Stop()
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	lg := logger.L()

	db, gormDB, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	authService := auth.NewService(auth_repo.NewRepository(gormDB), tokenGen, cfg.Security.BCryptCost)
	userService := user.NewService(user_repo.NewRepository(gormDB), cfg.Security.BCryptCost, lg)
	roleService := role.NewService(role_repo.NewRepository(gormDB), lg)
	evaluationService := evaluation.NewService(
		evaluation_repo.NewRepository(gormDB),
		cfg.Evaluation.AllowEmployeeUpdate,
		lg,
	)
	courseService := course.NewService(course_repo.NewRepository(gormDB), lg)
	reportService := report.NewService(report_repo.NewRepository(gormDB), report.NewGenerator(db), lg)

	var scheduler *report.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = report.NewScheduler(reportService, cfg.Scheduler.SystemUserID, lg)
	}

	return &Dependencies{
		Config: cfg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Handlers: rest.Handlers{
			Auth:       auth.NewHandler(authService),
			User:       user.NewHandler(userService),
			Role:       role.NewHandler(roleService),
			Evaluation: evaluation.NewHandler(evaluationService),
			Course:     course.NewHandler(courseService),
			Report:     report.NewHandler(reportService),
		},
		Authz:     auth.NewAuthorizer(lg),
		Scheduler: scheduler,
		Logger:    lg,
	}, nil
}

// initDB opens one pgx connection pool and hands the same pool to both sqlx
// (report recipes) and gorm (repositories).
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	db, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to open gorm over shared pool: %w", err)
	}

	return db, gormDB, nil
}
